package memory

import (
	"context"
	"sync"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/storage"
)

// ChangeLedger is an in-memory implementation of storage.ChangeLedger.
// Events are kept newest first and truncated to the retention cap.
type ChangeLedger struct {
	mu     sync.RWMutex
	events []domain.ChangeEvent
	cap    int
}

// NewChangeLedger creates a new in-memory change ledger. cap <= 0 uses
// storage.DefaultLedgerCap.
func NewChangeLedger(cap int) *ChangeLedger {
	if cap <= 0 {
		cap = storage.DefaultLedgerCap
	}
	return &ChangeLedger{cap: cap}
}

// Append prepends events and drops the oldest rows beyond the cap.
func (l *ChangeLedger) Append(_ context.Context, events []domain.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make([]domain.ChangeEvent, 0, len(events)+len(l.events))
	merged = append(merged, events...)
	merged = append(merged, l.events...)
	if len(merged) > l.cap {
		merged = merged[:l.cap]
	}
	l.events = merged
	return nil
}

// Recent returns up to limit events, newest first.
func (l *ChangeLedger) Recent(_ context.Context, limit int) ([]domain.ChangeEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.events)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]domain.ChangeEvent(nil), l.events[:n]...), nil
}

// Clear wipes the ledger.
func (l *ChangeLedger) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = nil
	return nil
}

var _ storage.ChangeLedger = (*ChangeLedger)(nil)
