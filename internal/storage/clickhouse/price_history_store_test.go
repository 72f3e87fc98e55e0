package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-tracker/internal/domain"
)

func TestPriceHistoryStore_AppendAndRecent(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceHistoryStore(conn)

	points := []domain.PricePoint{
		{Mint: "mintA", Symbol: "AAA", Price: 1.5, Source: "jupiter", ResolvedAt: 1700000002000},
		{Mint: "mintB", Symbol: "BBB", Price: 0.25, Source: "birdeye", ResolvedAt: 1700000001000},
	}
	require.NoError(t, store.Append(ctx, points))

	got, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "mintA", got[0].Mint, "newest resolved_at first")
	assert.Equal(t, "jupiter", got[0].Source)
	assert.Equal(t, int64(1700000002000), got[0].ResolvedAt)
}

func TestPriceHistoryStore_RecentLimit(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceHistoryStore(conn)

	points := []domain.PricePoint{
		{Mint: "a", Price: 1, ResolvedAt: 1000},
		{Mint: "b", Price: 2, ResolvedAt: 2000},
		{Mint: "c", Price: 3, ResolvedAt: 3000},
	}
	require.NoError(t, store.Append(ctx, points))

	got, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Mint)
}

func TestPriceHistoryStore_EmptyAppendIsNoop(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPriceHistoryStore(conn)

	require.NoError(t, store.Append(ctx, nil))

	got, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
