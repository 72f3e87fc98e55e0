package memory

import (
	"context"
	"sync"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
// One snapshot document is kept per filter mode.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[domain.FilterMode]snapshotDoc
}

type snapshotDoc struct {
	snap *domain.WalletSnapshot
	meta *domain.SnapshotMeta
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[domain.FilterMode]snapshotDoc),
	}
}

// Load returns the stored snapshot for the mode, or an empty snapshot
// with nil meta when none was saved yet.
func (s *SnapshotStore) Load(_ context.Context, mode domain.FilterMode) (*domain.WalletSnapshot, *domain.SnapshotMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[mode]
	if !ok {
		return domain.NewWalletSnapshot(), nil, nil
	}
	return copySnapshot(doc.snap), copyMeta(doc.meta), nil
}

// Save replaces the snapshot for the mode.
func (s *SnapshotStore) Save(_ context.Context, mode domain.FilterMode, snap *domain.WalletSnapshot, meta *domain.SnapshotMeta) error {
	if snap == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[mode] = snapshotDoc{snap: copySnapshot(snap), meta: copyMeta(meta)}
	return nil
}

func copySnapshot(snap *domain.WalletSnapshot) *domain.WalletSnapshot {
	out := domain.NewWalletSnapshot()
	out.Timestamp = snap.Timestamp
	for wallet, holdings := range snap.Wallets {
		out.Wallets[wallet] = append([]domain.TokenHolding(nil), holdings...)
	}
	for wallet, stats := range snap.Stats {
		out.Stats[wallet] = stats
	}
	return out
}

func copyMeta(meta *domain.SnapshotMeta) *domain.SnapshotMeta {
	if meta == nil {
		return nil
	}
	out := *meta
	out.MonitoredMints = append([]string(nil), meta.MonitoredMints...)
	return &out
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
