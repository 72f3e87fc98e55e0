package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/storage"
)

// ChangeLedger persists change events as one JSON array, newest first,
// truncated to the retention cap on every append.
type ChangeLedger struct {
	path   string
	cap    int
	logger *zap.Logger

	mu sync.Mutex
}

// NewChangeLedger creates a file-backed change ledger. cap <= 0 uses
// storage.DefaultLedgerCap.
func NewChangeLedger(dir string, cap int, logger *zap.Logger) (*ChangeLedger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	if cap <= 0 {
		cap = storage.DefaultLedgerCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeLedger{
		path:   filepath.Join(dir, "changes.json"),
		cap:    cap,
		logger: logger.Named("change-ledger"),
	}, nil
}

// Append prepends events and rewrites the file atomically. A corrupt
// existing file is overwritten with the new events alone.
func (l *ChangeLedger) Append(_ context.Context, events []domain.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	existing := l.read()
	merged := make([]domain.ChangeEvent, 0, len(events)+len(existing))
	merged = append(merged, events...)
	merged = append(merged, existing...)
	if len(merged) > l.cap {
		merged = merged[:l.cap]
	}

	return l.write(merged)
}

// Recent returns up to limit events, newest first.
func (l *ChangeLedger) Recent(_ context.Context, limit int) ([]domain.ChangeEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := l.read()
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events, nil
}

// Clear wipes the ledger file.
func (l *ChangeLedger) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear ledger: %w", err)
	}
	return nil
}

func (l *ChangeLedger) read() []domain.ChangeEvent {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("ledger unreadable, treating as empty",
				zap.String("path", l.path),
				zap.Error(err))
		}
		return nil
	}

	var events []domain.ChangeEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		l.logger.Warn("ledger corrupt, treating as empty",
			zap.String("path", l.path),
			zap.Error(errors.Join(storage.ErrCorrupt, err)))
		return nil
	}
	return events
}

func (l *ChangeLedger) write(events []domain.ChangeEvent) error {
	raw, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	return atomicWrite(l.path, raw)
}

var _ storage.ChangeLedger = (*ChangeLedger)(nil)
