package storage

import (
	"context"

	"solana-wallet-tracker/internal/domain"
)

// DefaultLedgerCap is the retention cap applied to capped ledgers when the
// caller does not configure one.
const DefaultLedgerCap = 25

// SnapshotStore holds exactly one current wallet snapshot per logical
// cache, selected by filter mode. It is the only component that touches
// the persisted snapshot; everything else goes through this interface.
type SnapshotStore interface {
	// Load reads the last persisted snapshot for the mode. A missing or
	// corrupt snapshot degrades to an empty snapshot with nil meta and a
	// nil error; the tracking cycle must never fail because the baseline
	// is unreadable.
	Load(ctx context.Context, mode domain.FilterMode) (*domain.WalletSnapshot, *domain.SnapshotMeta, error)

	// Save atomically replaces the persisted snapshot for the mode.
	// Concurrent readers observe either the old or the new document,
	// never a truncated one.
	Save(ctx context.Context, mode domain.FilterMode, snap *domain.WalletSnapshot, meta *domain.SnapshotMeta) error
}

// ChangeLedger is the append-only, newest-first, retention-capped record
// of change events.
type ChangeLedger interface {
	// Append prepends events (newest first) and truncates the oldest rows
	// beyond the retention cap. It is a critical section: two appends
	// never interleave partially.
	Append(ctx context.Context, events []domain.ChangeEvent) error

	// Recent returns up to limit events, newest first. limit <= 0 means
	// all retained rows.
	Recent(ctx context.Context, limit int) ([]domain.ChangeEvent, error)

	// Clear wipes the ledger. This is the explicit user action, distinct
	// from retention truncation.
	Clear(ctx context.Context) error
}

// PriceHistoryStore records resolved prices per cycle.
type PriceHistoryStore interface {
	// Append adds price points, newest first for capped backends.
	Append(ctx context.Context, points []domain.PricePoint) error

	// Recent returns up to limit points, newest first. limit <= 0 means
	// all retained rows.
	Recent(ctx context.Context, limit int) ([]domain.PricePoint, error)
}
