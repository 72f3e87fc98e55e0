package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL. One
// row holds the current snapshot document per filter mode; Save replaces
// it in a single upsert, so readers see either the old or the new
// document.
type SnapshotStore struct {
	pool   *Pool
	logger *zap.Logger
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool, logger *zap.Logger) *SnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotStore{pool: pool, logger: logger.Named("pg-snapshot-store")}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Load reads the mode's snapshot row. A missing row or an undecodable
// document degrades to an empty snapshot with nil meta.
func (s *SnapshotStore) Load(ctx context.Context, mode domain.FilterMode) (*domain.WalletSnapshot, *domain.SnapshotMeta, error) {
	query := `
		SELECT document, meta
		FROM wallet_snapshots
		WHERE mode = $1
	`

	var document []byte
	var metaRaw []byte
	err := s.pool.QueryRow(ctx, query, string(mode)).Scan(&document, &metaRaw)
	if err != nil {
		if isNotFoundError(err) {
			return domain.NewWalletSnapshot(), nil, nil
		}
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap domain.WalletSnapshot
	if err := json.Unmarshal(document, &snap); err != nil {
		s.logger.Warn("snapshot document corrupt, starting from empty baseline",
			zap.String("mode", string(mode)),
			zap.Error(err))
		return domain.NewWalletSnapshot(), nil, nil
	}
	if snap.Wallets == nil {
		snap.Wallets = make(map[string][]domain.TokenHolding)
	}
	if snap.Stats == nil {
		snap.Stats = make(map[string]domain.WalletStats)
	}

	var meta *domain.SnapshotMeta
	if len(metaRaw) > 0 {
		meta = &domain.SnapshotMeta{}
		if err := json.Unmarshal(metaRaw, meta); err != nil {
			s.logger.Warn("snapshot meta corrupt, treating as absent",
				zap.String("mode", string(mode)),
				zap.Error(err))
			meta = nil
		}
	}

	return &snap, meta, nil
}

// Save upserts the mode's snapshot row.
func (s *SnapshotStore) Save(ctx context.Context, mode domain.FilterMode, snap *domain.WalletSnapshot, meta *domain.SnapshotMeta) error {
	if snap == nil {
		return storage.ErrInvalidInput
	}

	document, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	var metaRaw []byte
	if meta != nil {
		metaRaw, err = json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode snapshot meta: %w", err)
		}
	}

	query := `
		INSERT INTO wallet_snapshots (mode, document, meta, saved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (mode) DO UPDATE
		SET document = EXCLUDED.document,
		    meta = EXCLUDED.meta,
		    saved_at = EXCLUDED.saved_at
	`

	if _, err := s.pool.Exec(ctx, query, string(mode), document, metaRaw, snap.Timestamp); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
