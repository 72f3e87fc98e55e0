package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-tracker/internal/domain"
)

func TestSnapshotStore_LoadMissingReturnsEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool, nil)

	snap, meta, err := store.Load(context.Background(), domain.FilterModeDynamic)
	require.NoError(t, err)
	assert.Nil(t, meta)
	assert.Empty(t, snap.Wallets)
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSnapshotStore(pool, nil)

	snap := domain.NewWalletSnapshot()
	snap.Timestamp = 1700000000000
	snap.Wallets["w1"] = []domain.TokenHolding{
		{Wallet: "w1", Mint: "mintA", Symbol: "AAA", RawAmount: 1000, Decimals: 2, Price: domain.KnownPrice(1.5)},
		{Wallet: "w1", Mint: "mintB", Symbol: "UNK", RawAmount: 42, Decimals: 0, Price: domain.UnknownPrice},
	}
	snap.Stats["w1"] = domain.WalletStats{Found: 2, Skipped: 1}
	meta := &domain.SnapshotMeta{
		Mode:           domain.FilterModeDynamic,
		MonitoredMints: []string{"mintA", "mintB"},
		SavedAt:        1700000000000,
	}

	require.NoError(t, store.Save(ctx, domain.FilterModeDynamic, snap, meta))

	got, gotMeta, err := store.Load(ctx, domain.FilterModeDynamic)
	require.NoError(t, err)
	require.NotNil(t, gotMeta)
	assert.Equal(t, meta.MonitoredMints, gotMeta.MonitoredMints)

	require.Len(t, got.Wallets["w1"], 2)
	assert.True(t, got.Wallets["w1"][0].Price.Known)
	assert.False(t, got.Wallets["w1"][1].Price.Known, "Unknown price must survive the roundtrip")
	assert.Equal(t, domain.WalletStats{Found: 2, Skipped: 1}, got.Stats["w1"])
}

func TestSnapshotStore_SaveReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSnapshotStore(pool, nil)

	first := domain.NewWalletSnapshot()
	first.Wallets["w1"] = []domain.TokenHolding{{Wallet: "w1", Mint: "old"}}
	require.NoError(t, store.Save(ctx, domain.FilterModeDynamic, first, nil))

	second := domain.NewWalletSnapshot()
	second.Wallets["w1"] = []domain.TokenHolding{{Wallet: "w1", Mint: "new"}}
	require.NoError(t, store.Save(ctx, domain.FilterModeDynamic, second, nil))

	got, _, err := store.Load(ctx, domain.FilterModeDynamic)
	require.NoError(t, err)
	require.Len(t, got.Wallets["w1"], 1)
	assert.Equal(t, "new", got.Wallets["w1"][0].Mint)
}

func TestSnapshotStore_ModesAreIndependentRows(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSnapshotStore(pool, nil)

	snap := domain.NewWalletSnapshot()
	snap.Wallets["w1"] = []domain.TokenHolding{{Wallet: "w1", Mint: "mintA"}}
	require.NoError(t, store.Save(ctx, domain.FilterModeDynamic, snap, nil))

	other, meta, err := store.Load(ctx, domain.FilterModeAllowlist)
	require.NoError(t, err)
	assert.Nil(t, meta)
	assert.Empty(t, other.Wallets)
}
