package postgres

import (
	"context"
	"fmt"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/storage"
)

// ChangeLedger implements storage.ChangeLedger using PostgreSQL. Rows are
// ordered by a serial id; retention truncation runs inside the same
// transaction as the append.
type ChangeLedger struct {
	pool *Pool
	cap  int
}

// NewChangeLedger creates a new ChangeLedger. cap <= 0 uses
// storage.DefaultLedgerCap.
func NewChangeLedger(pool *Pool, cap int) *ChangeLedger {
	if cap <= 0 {
		cap = storage.DefaultLedgerCap
	}
	return &ChangeLedger{pool: pool, cap: cap}
}

// Compile-time interface check.
var _ storage.ChangeLedger = (*ChangeLedger)(nil)

// Append inserts events and drops rows beyond the retention cap, all in
// one transaction.
func (l *ChangeLedger) Append(ctx context.Context, events []domain.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO change_events (
			change_type, wallet, mint, symbol, name,
			amount, amount_delta, percent_delta,
			price, price_delta, usd_delta, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	// Oldest first, so serial ids preserve detection order within the
	// batch.
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		_, err := tx.Exec(ctx, insert,
			string(e.Type),
			e.Wallet,
			e.Mint,
			e.Symbol,
			e.Name,
			e.Amount,
			e.AmountDelta,
			e.PercentDelta,
			priceValue(e.Price),
			priceValue(e.PriceDelta),
			priceValue(e.USDDelta),
			e.DetectedAt,
		)
		if err != nil {
			return fmt.Errorf("insert change event: %w", err)
		}
	}

	truncate := `
		DELETE FROM change_events
		WHERE id NOT IN (
			SELECT id FROM change_events ORDER BY id DESC LIMIT $1
		)
	`
	if _, err := tx.Exec(ctx, truncate, l.cap); err != nil {
		return fmt.Errorf("truncate change events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (l *ChangeLedger) Recent(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 || limit > l.cap {
		limit = l.cap
	}

	query := `
		SELECT change_type, wallet, mint, symbol, name,
		       amount, amount_delta, percent_delta,
		       price, price_delta, usd_delta, detected_at
		FROM change_events
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := l.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query change events: %w", err)
	}
	defer rows.Close()

	var events []domain.ChangeEvent
	for rows.Next() {
		var e domain.ChangeEvent
		var changeType string
		var price, priceDelta, usdDelta *float64

		err := rows.Scan(
			&changeType, &e.Wallet, &e.Mint, &e.Symbol, &e.Name,
			&e.Amount, &e.AmountDelta, &e.PercentDelta,
			&price, &priceDelta, &usdDelta, &e.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan change event: %w", err)
		}

		e.Type = domain.ChangeType(changeType)
		e.Price = priceFromPtr(price)
		e.PriceDelta = priceFromPtr(priceDelta)
		e.USDDelta = priceFromPtr(usdDelta)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change events: %w", err)
	}
	return events, nil
}

// Clear wipes the ledger.
func (l *ChangeLedger) Clear(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, `DELETE FROM change_events`); err != nil {
		return fmt.Errorf("clear change events: %w", err)
	}
	return nil
}

// priceValue maps Unknown to SQL NULL.
func priceValue(p domain.Price) *float64 {
	if !p.Known {
		return nil
	}
	v := p.Value
	return &v
}

func priceFromPtr(p *float64) domain.Price {
	if p == nil {
		return domain.UnknownPrice
	}
	return domain.KnownPrice(*p)
}
