// Package file persists tracker state as plain files under a data
// directory: JSON snapshot documents (one per filter mode), a JSON change
// ledger, and a CSV price history.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/storage"
)

// SnapshotStore persists one snapshot document per filter mode. Writes
// are atomic: the document is written to a temp file in the same
// directory and renamed over the previous one, so concurrent readers
// never observe a truncated file.
type SnapshotStore struct {
	dir    string
	logger *zap.Logger
}

// snapshotFile is the on-disk document.
type snapshotFile struct {
	Snapshot *domain.WalletSnapshot `json:"snapshot"`
	Meta     *domain.SnapshotMeta   `json:"meta"`
}

// NewSnapshotStore creates a file-backed snapshot store rooted at dir.
func NewSnapshotStore(dir string, logger *zap.Logger) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotStore{dir: dir, logger: logger.Named("snapshot-store")}, nil
}

// Path returns the snapshot filename for a filter mode. Each mode keeps
// its own baseline so switching modes never diffs against the wrong one.
func (s *SnapshotStore) Path(mode domain.FilterMode) string {
	return filepath.Join(s.dir, fmt.Sprintf("snapshot_%s.json", mode))
}

// Load reads the mode's snapshot document. Missing and corrupt files both
// degrade to an empty snapshot with nil meta: the baseline resets instead
// of failing the cycle.
func (s *SnapshotStore) Load(_ context.Context, mode domain.FilterMode) (*domain.WalletSnapshot, *domain.SnapshotMeta, error) {
	raw, err := os.ReadFile(s.Path(mode))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("snapshot unreadable, starting from empty baseline",
				zap.String("path", s.Path(mode)),
				zap.Error(err))
		}
		return domain.NewWalletSnapshot(), nil, nil
	}

	var doc snapshotFile
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Snapshot == nil {
		s.logger.Warn("snapshot corrupt, starting from empty baseline",
			zap.String("path", s.Path(mode)),
			zap.Error(errors.Join(storage.ErrCorrupt, err)))
		return domain.NewWalletSnapshot(), nil, nil
	}

	if doc.Snapshot.Wallets == nil {
		doc.Snapshot.Wallets = make(map[string][]domain.TokenHolding)
	}
	if doc.Snapshot.Stats == nil {
		doc.Snapshot.Stats = make(map[string]domain.WalletStats)
	}
	return doc.Snapshot, doc.Meta, nil
}

// Save atomically replaces the mode's snapshot document.
func (s *SnapshotStore) Save(_ context.Context, mode domain.FilterMode, snap *domain.WalletSnapshot, meta *domain.SnapshotMeta) error {
	if snap == nil {
		return storage.ErrInvalidInput
	}

	raw, err := json.MarshalIndent(snapshotFile{Snapshot: snap, Meta: meta}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return atomicWrite(s.Path(mode), raw)
}

// atomicWrite writes data to a temp file next to path and renames it into
// place.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
