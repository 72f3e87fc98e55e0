package price

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"solana-wallet-tracker/internal/domain"
)

// Resolver defaults.
const (
	DefaultCacheTTL         = 60 * time.Second
	DefaultProviderInterval = 1 * time.Second
	DefaultCallTimeout      = 10 * time.Second
)

// Quote is a resolved price together with the provider that answered.
// Source is empty when the price is Unknown.
type Quote struct {
	Price  domain.Price
	Source string
}

// Resolver answers USD price lookups through a waterfall of providers with
// a short-lived cache. It owns the cache exclusively; successful answers
// from any provider refresh it, failures are never cached.
type Resolver struct {
	providers   []Provider
	cache       *cache.Cache
	limiters    map[string]*rate.Limiter
	interval    time.Duration
	callTimeout time.Duration
	logger      *zap.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCacheTTL overrides the cache TTL.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.cache = cache.New(ttl, 2*ttl)
	}
}

// WithProviderInterval overrides the per-provider inter-call delay.
func WithProviderInterval(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.interval = d
	}
}

// WithCallTimeout overrides the per-provider call timeout.
func WithCallTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.callTimeout = d
	}
}

// NewResolver creates a Resolver over providers in waterfall priority
// order.
func NewResolver(logger *zap.Logger, providers []Provider, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Resolver{
		providers:   providers,
		cache:       cache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		interval:    DefaultProviderInterval,
		callTimeout: DefaultCallTimeout,
		logger:      logger.Named("price-resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.limiters = make(map[string]*rate.Limiter, len(providers))
	for _, p := range providers {
		r.limiters[p.Name()] = rate.NewLimiter(rate.Every(r.interval), 1)
	}

	return r
}

// Resolve returns the USD price for the mint, or Unknown when every
// provider fails. It never returns an error; callers treat Unknown as
// "exclude from USD aggregation", not as a zero price.
func (r *Resolver) Resolve(ctx context.Context, mint string, forceRefresh bool) domain.Price {
	return r.ResolveQuote(ctx, mint, forceRefresh).Price
}

// ResolveQuote is Resolve plus the answering provider's name, for price
// history records.
func (r *Resolver) ResolveQuote(ctx context.Context, mint string, forceRefresh bool) Quote {
	if !forceRefresh {
		if cached, ok := r.cache.Get(mint); ok {
			return cached.(Quote)
		}
	}

	for _, p := range r.providers {
		if lim := r.limiters[p.Name()]; lim != nil {
			if err := lim.Wait(ctx); err != nil {
				r.logger.Warn("resolution cancelled", zap.String("mint", mint), zap.Error(err))
				return Quote{Price: domain.UnknownPrice}
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		value, err := p.GetPrice(callCtx, mint)
		cancel()

		if err != nil {
			if !errors.Is(err, ErrNoQuote) {
				r.logger.Debug("provider failed",
					zap.String("provider", p.Name()),
					zap.String("mint", mint),
					zap.Error(err))
			}
			continue
		}

		q := Quote{Price: domain.KnownPrice(value), Source: p.Name()}
		r.cache.SetDefault(mint, q)
		return q
	}

	r.logger.Warn("no provider resolved price", zap.String("mint", mint))
	return Quote{Price: domain.UnknownPrice}
}
