package memory

import (
	"context"
	"sync"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of
// storage.PriceHistoryStore. Points are kept newest first; maxPoints <= 0
// means unbounded.
type PriceHistoryStore struct {
	mu        sync.RWMutex
	points    []domain.PricePoint
	maxPoints int
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore(maxPoints int) *PriceHistoryStore {
	return &PriceHistoryStore{maxPoints: maxPoints}
}

// Append prepends points, truncating to maxPoints when configured.
func (s *PriceHistoryStore) Append(_ context.Context, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]domain.PricePoint, 0, len(points)+len(s.points))
	merged = append(merged, points...)
	merged = append(merged, s.points...)
	if s.maxPoints > 0 && len(merged) > s.maxPoints {
		merged = merged[:s.maxPoints]
	}
	s.points = merged
	return nil
}

// Recent returns up to limit points, newest first.
func (s *PriceHistoryStore) Recent(_ context.Context, limit int) ([]domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.points)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]domain.PricePoint(nil), s.points[:n]...), nil
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)
