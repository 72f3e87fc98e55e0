// Package holdings builds per-wallet token holding snapshots from on-chain
// account listings and the price resolver.
package holdings

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/solana"
)

// nativeDecimals is the lamport precision of the native asset.
const nativeDecimals = 9

// PriceResolver resolves a USD price for a mint. Satisfied by
// *price.Resolver.
type PriceResolver interface {
	Resolve(ctx context.Context, mint string, forceRefresh bool) domain.Price
}

// MetadataResolver resolves display metadata for a mint.
type MetadataResolver interface {
	TokenMetadata(ctx context.Context, mint string) (symbol, name string, err error)
}

// Fetcher assembles wallet holdings. It merges duplicate token accounts
// per mint, prices every distinct mint, and never fails a wallet because
// of a single token.
type Fetcher struct {
	rpc      solana.RPCClient
	resolver PriceResolver
	metadata MetadataResolver
	logger   *zap.Logger

	includeNative bool

	mu        sync.Mutex
	metaCache map[string][2]string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithMetadataResolver installs a metadata source. Without one every
// holding carries the UNK defaults.
func WithMetadataResolver(m MetadataResolver) FetcherOption {
	return func(f *Fetcher) {
		f.metadata = m
	}
}

// WithNativeBalance toggles inclusion of the wallet's native SOL position
// as a wrapped-SOL holding. Enabled by default.
func WithNativeBalance(include bool) FetcherOption {
	return func(f *Fetcher) {
		f.includeNative = include
	}
}

// NewFetcher creates a holdings fetcher.
func NewFetcher(rpc solana.RPCClient, resolver PriceResolver, logger *zap.Logger, opts ...FetcherOption) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	f := &Fetcher{
		rpc:           rpc,
		resolver:      resolver,
		logger:        logger.Named("holdings"),
		includeNative: true,
		metaCache:     make(map[string][2]string),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// FetchWalletHoldings lists the wallet's SPL token accounts, merges
// duplicate mints by summing raw balances, and prices each distinct mint.
// A total listing failure degrades to an empty result with the skip
// recorded in the stats; it never propagates an error, so one broken
// wallet cannot abort a multi-wallet cycle.
func (f *Fetcher) FetchWalletHoldings(ctx context.Context, wallet string) ([]domain.TokenHolding, domain.WalletStats) {
	accounts, err := f.rpc.ListTokenAccounts(ctx, wallet)
	if err != nil {
		f.logger.Warn("wallet listing failed, skipping wallet",
			zap.String("wallet", wallet),
			zap.Error(err))
		return nil, domain.WalletStats{Skipped: 1}
	}

	return f.build(ctx, wallet, accounts)
}

// FetchMonitoredHoldings fetches only the given mints, querying the
// wallet's token accounts per mint. Used in allowlist mode to avoid a
// full program-account scan. A failure on one mint skips that mint only.
func (f *Fetcher) FetchMonitoredHoldings(ctx context.Context, wallet string, mints []string) ([]domain.TokenHolding, domain.WalletStats) {
	var accounts []solana.TokenAccount
	var skipped int

	for _, mint := range mints {
		got, err := f.rpc.ListTokenAccountsForMint(ctx, wallet, mint)
		if err != nil {
			f.logger.Warn("monitored mint listing failed",
				zap.String("wallet", wallet),
				zap.String("mint", mint),
				zap.Error(err))
			skipped++
			continue
		}
		accounts = append(accounts, got...)
	}

	out, stats := f.build(ctx, wallet, accounts)
	stats.Skipped += skipped
	return out, stats
}

type mintBalance struct {
	raw      uint64
	decimals uint8
}

func (f *Fetcher) build(ctx context.Context, wallet string, accounts []solana.TokenAccount) ([]domain.TokenHolding, domain.WalletStats) {
	merged := make(map[string]*mintBalance, len(accounts))
	for _, acc := range accounts {
		if acc.RawAmount == 0 {
			continue
		}
		if b, ok := merged[acc.Mint]; ok {
			b.raw += acc.RawAmount
		} else {
			merged[acc.Mint] = &mintBalance{raw: acc.RawAmount, decimals: acc.Decimals}
		}
	}

	if f.includeNative {
		f.addNative(ctx, wallet, merged)
	}

	mints := make([]string, 0, len(merged))
	for mint := range merged {
		mints = append(mints, mint)
	}
	sort.Strings(mints)

	now := time.Now().Unix()
	out := make([]domain.TokenHolding, 0, len(mints))
	for _, mint := range mints {
		bal := merged[mint]
		symbol, name := f.tokenMetadata(ctx, mint)

		// Pricing failures are per-token: an unresolvable mint still
		// yields a holding, carrying the Unknown sentinel.
		out = append(out, domain.TokenHolding{
			Wallet:     wallet,
			Mint:       mint,
			Symbol:     symbol,
			Name:       name,
			RawAmount:  bal.raw,
			Decimals:   bal.decimals,
			Price:      f.resolver.Resolve(ctx, mint, false),
			ObservedAt: now,
		})
	}

	return out, domain.WalletStats{Found: len(out)}
}

// addNative folds the wallet's SOL balance into the merged map under the
// wrapped-SOL mint, so it is priced and filtered like any other holding.
func (f *Fetcher) addNative(ctx context.Context, wallet string, merged map[string]*mintBalance) {
	lamports, err := f.rpc.GetNativeBalance(ctx, wallet)
	if err != nil {
		f.logger.Warn("native balance fetch failed",
			zap.String("wallet", wallet),
			zap.Error(err))
		return
	}
	if lamports == 0 {
		return
	}

	if b, ok := merged[domain.WrappedSOLMint]; ok {
		b.raw += lamports
	} else {
		merged[domain.WrappedSOLMint] = &mintBalance{raw: lamports, decimals: nativeDecimals}
	}
}

func (f *Fetcher) tokenMetadata(ctx context.Context, mint string) (string, string) {
	f.mu.Lock()
	if cached, ok := f.metaCache[mint]; ok {
		f.mu.Unlock()
		return cached[0], cached[1]
	}
	f.mu.Unlock()

	symbol, name := domain.UnknownSymbol, domain.UnknownTokenName
	if f.metadata != nil {
		s, n, err := f.metadata.TokenMetadata(ctx, mint)
		if err != nil {
			f.logger.Debug("metadata lookup failed",
				zap.String("mint", mint),
				zap.Error(err))
			// Failed lookups are not cached; a later cycle retries.
			return symbol, name
		}
		if s != "" {
			symbol = s
		}
		if n != "" {
			name = n
		}
	}

	f.mu.Lock()
	f.metaCache[mint] = [2]string{symbol, name}
	f.mu.Unlock()
	return symbol, name
}
