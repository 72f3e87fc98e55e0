package file

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-tracker/internal/domain"
)

func TestPriceHistoryStore_RoundtripCSV(t *testing.T) {
	store, err := NewPriceHistoryStore(t.TempDir(), 0, nil)
	require.NoError(t, err)
	ctx := context.Background()

	points := []domain.PricePoint{
		{Mint: "mintA", Symbol: "AAA", Price: 1.5, Source: "jupiter", ResolvedAt: 1700000000000},
		{Mint: "mintB", Symbol: "BBB", Price: 0.000042, Source: "pumpfun", ResolvedAt: 1700000000000},
	}
	require.NoError(t, store.Append(ctx, points))

	got, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, points[0], got[0])
	assert.Equal(t, points[1], got[1])
}

func TestPriceHistoryStore_CapAndOrder(t *testing.T) {
	store, err := NewPriceHistoryStore(t.TempDir(), 3, nil)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		p := domain.PricePoint{Mint: fmt.Sprintf("mint%d", i), Price: float64(i + 1)}
		require.NoError(t, store.Append(ctx, []domain.PricePoint{p}))
	}

	got, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "mint4", got[0].Mint)
	assert.Equal(t, "mint2", got[2].Mint)
}

func TestPriceHistoryStore_RecentLimit(t *testing.T) {
	store, err := NewPriceHistoryStore(t.TempDir(), 0, nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, []domain.PricePoint{
		{Mint: "a"}, {Mint: "b"}, {Mint: "c"},
	}))

	got, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Mint)
}
