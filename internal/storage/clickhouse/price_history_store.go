package clickhouse

import (
	"context"
	"fmt"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
// The timeseries is append-only and uncapped; retention belongs to table
// TTLs, not the application.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Append inserts price points as one batch.
func (s *PriceHistoryStore) Append(ctx context.Context, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (
			mint, symbol, price, source, resolved_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.Mint, p.Symbol, p.Price, p.Source, uint64(p.ResolvedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// Recent returns up to limit points, newest first.
func (s *PriceHistoryStore) Recent(ctx context.Context, limit int) ([]domain.PricePoint, error) {
	query := `
		SELECT mint, symbol, price, source, resolved_at
		FROM price_history
		ORDER BY resolved_at DESC, mint ASC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		var resolvedAt uint64

		if err := rows.Scan(&p.Mint, &p.Symbol, &p.Price, &p.Source, &resolvedAt); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		p.ResolvedAt = int64(resolvedAt)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history: %w", err)
	}
	return points, nil
}
