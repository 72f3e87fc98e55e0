package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/storage"
)

var priceHistoryHeader = []string{"mint", "symbol", "price", "source", "resolved_at"}

// PriceHistoryStore persists resolved prices as a CSV, newest first.
// maxPoints <= 0 means unbounded.
type PriceHistoryStore struct {
	path      string
	maxPoints int
	logger    *zap.Logger

	mu sync.Mutex
}

// NewPriceHistoryStore creates a file-backed price history store.
func NewPriceHistoryStore(dir string, maxPoints int, logger *zap.Logger) (*PriceHistoryStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create price history dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceHistoryStore{
		path:      filepath.Join(dir, "price_history.csv"),
		maxPoints: maxPoints,
		logger:    logger.Named("price-history"),
	}, nil
}

// Append prepends points and rewrites the file atomically.
func (s *PriceHistoryStore) Append(_ context.Context, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.read()
	merged := make([]domain.PricePoint, 0, len(points)+len(existing))
	merged = append(merged, points...)
	merged = append(merged, existing...)
	if s.maxPoints > 0 && len(merged) > s.maxPoints {
		merged = merged[:s.maxPoints]
	}

	return s.write(merged)
}

// Recent returns up to limit points, newest first.
func (s *PriceHistoryStore) Recent(_ context.Context, limit int) ([]domain.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := s.read()
	if limit > 0 && limit < len(points) {
		points = points[:limit]
	}
	return points, nil
}

func (s *PriceHistoryStore) read() []domain.PricePoint {
	f, err := os.Open(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("price history unreadable, treating as empty",
				zap.String("path", s.path),
				zap.Error(err))
		}
		return nil
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		s.logger.Warn("price history corrupt, treating as empty",
			zap.String("path", s.path),
			zap.Error(errors.Join(storage.ErrCorrupt, err)))
		return nil
	}

	var points []domain.PricePoint
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == priceHistoryHeader[0] {
			continue
		}
		if len(row) != len(priceHistoryHeader) {
			continue
		}
		price, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			continue
		}
		resolvedAt, err := strconv.ParseInt(row[4], 10, 64)
		if err != nil {
			continue
		}
		points = append(points, domain.PricePoint{
			Mint:       row[0],
			Symbol:     row[1],
			Price:      price,
			Source:     row[3],
			ResolvedAt: resolvedAt,
		})
	}
	return points
}

func (s *PriceHistoryStore) write(points []domain.PricePoint) error {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(priceHistoryHeader); err != nil {
		return fmt.Errorf("encode price history: %w", err)
	}
	for _, p := range points {
		row := []string{
			p.Mint,
			p.Symbol,
			strconv.FormatFloat(p.Price, 'g', -1, 64),
			p.Source,
			strconv.FormatInt(p.ResolvedAt, 10),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("encode price history: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode price history: %w", err)
	}

	return atomicWrite(s.path, []byte(buf.String()))
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)
