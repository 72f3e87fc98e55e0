// Package tracker orchestrates tracking cycles: fetch all wallets,
// filter, diff against the persisted baseline, persist.
package tracker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/filter"
	"solana-wallet-tracker/internal/price"
	"solana-wallet-tracker/internal/solana"
	"solana-wallet-tracker/internal/storage"
)

// Cycle defaults.
const (
	DefaultInterval    = 60 * time.Second
	DefaultCallTimeout = 15 * time.Second
)

// ErrCycleInFlight is returned when a cycle is requested while one is
// already running for this wallet set.
var ErrCycleInFlight = errors.New("tracking cycle already in flight")

// HoldingsFetcher builds one wallet's holdings. Satisfied by
// *holdings.Fetcher.
type HoldingsFetcher interface {
	FetchWalletHoldings(ctx context.Context, wallet string) ([]domain.TokenHolding, domain.WalletStats)
	FetchMonitoredHoldings(ctx context.Context, wallet string, mints []string) ([]domain.TokenHolding, domain.WalletStats)
}

// ChangeDetector diffs two snapshots. Satisfied by *diff.Detector.
type ChangeDetector interface {
	DetectChanges(prev, curr *domain.WalletSnapshot) map[string]domain.WalletChanges
}

// Quoter reads resolved quotes, typically from the resolver's cache.
// Satisfied by *price.Resolver.
type Quoter interface {
	ResolveQuote(ctx context.Context, mint string, forceRefresh bool) price.Quote
}

// CycleResult is what one completed tracking cycle produced.
type CycleResult struct {
	Snapshot      *domain.WalletSnapshot
	Changes       map[string]domain.WalletChanges
	Events        []domain.ChangeEvent
	BaselineReset bool
}

// Runner executes tracking cycles over a fixed wallet set. Cycles are
// single-flight: a second request while one runs is rejected, and readers
// always see the last completed snapshot.
type Runner struct {
	wallets  []string
	fetcher  HoldingsFetcher
	engine   *filter.Engine
	detector ChangeDetector

	snapshots storage.SnapshotStore
	ledger    storage.ChangeLedger
	history   storage.PriceHistoryStore
	quoter    Quoter

	logger      *zap.Logger
	interval    time.Duration
	callTimeout time.Duration
	now         func() time.Time

	inFlight atomic.Bool
	trigger  chan struct{}

	mu   sync.RWMutex
	last *domain.WalletSnapshot
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithInterval sets the periodic cycle interval.
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithCallTimeout bounds each wallet's fetch.
func WithCallTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.callTimeout = d
		}
	}
}

// WithPriceHistory wires a price-history sink. Each completed cycle
// appends one point per resolved mint.
func WithPriceHistory(history storage.PriceHistoryStore, quoter Quoter) RunnerOption {
	return func(r *Runner) {
		r.history = history
		r.quoter = quoter
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a cycle runner.
func NewRunner(
	wallets []string,
	fetcher HoldingsFetcher,
	engine *filter.Engine,
	detector ChangeDetector,
	snapshots storage.SnapshotStore,
	ledger storage.ChangeLedger,
	logger *zap.Logger,
	opts ...RunnerOption,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Runner{
		wallets:     append([]string(nil), wallets...),
		fetcher:     fetcher,
		engine:      engine,
		detector:    detector,
		snapshots:   snapshots,
		ledger:      ledger,
		logger:      logger.Named("tracker"),
		interval:    DefaultInterval,
		callTimeout: DefaultCallTimeout,
		now:         time.Now,
		trigger:     make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// LastSnapshot returns the most recently completed snapshot, nil before
// the first completed cycle. It never blocks on an in-flight cycle.
func (r *Runner) LastSnapshot() *domain.WalletSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// TriggerRefresh requests a cycle from the Run loop. Requests collapse:
// while one is pending or running, further triggers are no-ops.
func (r *Runner) TriggerRefresh() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// RunCycle executes one tracking cycle. It returns ErrCycleInFlight when
// one is already running; other errors mean the cycle's results could not
// be persisted.
func (r *Runner) RunCycle(ctx context.Context) (*CycleResult, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCycleInFlight
	}
	defer r.inFlight.Store(false)

	policy := r.engine.Policy()

	prev, meta, err := r.snapshots.Load(ctx, policy.Mode)
	if err != nil {
		return nil, err
	}

	// The persisted baseline is only usable if it was taken under the
	// current policy. A mode or allowlist change resets it, so the next
	// diff starts from first-run semantics instead of emitting a flood
	// of bogus events.
	reset := meta == nil ||
		meta.Mode != policy.Mode ||
		!sameMints(meta.MonitoredMints, policy.MonitoredMints)
	if reset {
		if meta != nil {
			r.logger.Info("filter policy changed, resetting baseline",
				zap.String("mode", string(policy.Mode)))
		}
		prev = domain.NewWalletSnapshot()
	}

	curr := domain.NewWalletSnapshot()
	curr.Timestamp = r.now().UnixMilli()

	for _, wallet := range r.wallets {
		holdings, stats := r.fetchWallet(ctx, wallet, policy)

		kept, filterStats := r.engine.Apply(wallet, holdings, prev.Holdings(wallet))
		stats.Found = filterStats.Found
		stats.Skipped += filterStats.Skipped

		curr.Wallets[wallet] = kept
		curr.Stats[wallet] = stats
	}

	changes := r.detector.DetectChanges(prev, curr)

	var events []domain.ChangeEvent
	for _, wallet := range sortedWallets(changes) {
		wc := changes[wallet]
		events = append(events, wc.All()...)
	}

	// Persist only after the full diff: a partial cycle must never
	// become the next baseline.
	saveMeta := &domain.SnapshotMeta{
		Mode:           policy.Mode,
		MonitoredMints: append([]string(nil), policy.MonitoredMints...),
		SavedAt:        curr.Timestamp,
	}
	if err := r.snapshots.Save(ctx, policy.Mode, curr, saveMeta); err != nil {
		return nil, err
	}

	if len(events) > 0 {
		if err := r.ledger.Append(ctx, events); err != nil {
			return nil, err
		}
	}

	r.recordPrices(ctx, curr)

	r.mu.Lock()
	r.last = curr
	r.mu.Unlock()

	r.logger.Info("cycle complete",
		zap.Int("wallets", len(r.wallets)),
		zap.Int("events", len(events)),
		zap.Bool("baseline_reset", reset))

	return &CycleResult{
		Snapshot:      curr,
		Changes:       changes,
		Events:        events,
		BaselineReset: reset,
	}, nil
}

// Run executes cycles on a timer until ctx is done. Manual triggers and
// activity notifications request extra cycles through TriggerRefresh.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-r.trigger:
		}

		if _, err := r.RunCycle(ctx); err != nil {
			if errors.Is(err, ErrCycleInFlight) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("cycle failed", zap.Error(err))
		}
	}
}

// WatchActivity subscribes to account notifications for every tracked
// wallet and requests a refresh whenever one changes. Blocks until ctx is
// done.
func (r *Runner) WatchActivity(ctx context.Context, ws solana.WSClient) error {
	for _, wallet := range r.wallets {
		notifications, err := ws.SubscribeAccount(ctx, wallet)
		if err != nil {
			return err
		}

		go func(wallet string, notifications <-chan solana.AccountNotification) {
			for {
				select {
				case <-ctx.Done():
					return
				case n, ok := <-notifications:
					if !ok {
						return
					}
					r.logger.Debug("wallet activity",
						zap.String("wallet", wallet),
						zap.Uint64("lamports", n.Lamports))
					r.TriggerRefresh()
				}
			}
		}(wallet, notifications)
	}

	<-ctx.Done()
	return ctx.Err()
}

func (r *Runner) fetchWallet(ctx context.Context, wallet string, policy domain.FilterPolicy) ([]domain.TokenHolding, domain.WalletStats) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	if policy.Mode == domain.FilterModeAllowlist {
		return r.fetcher.FetchMonitoredHoldings(fetchCtx, wallet, policy.MonitoredMints)
	}
	return r.fetcher.FetchWalletHoldings(fetchCtx, wallet)
}

// recordPrices appends one history point per distinct resolved mint in
// the snapshot. Quotes come from the resolver cache, so this issues no
// new provider calls. History failures are logged, not fatal: the cycle
// already committed.
func (r *Runner) recordPrices(ctx context.Context, snap *domain.WalletSnapshot) {
	if r.history == nil || r.quoter == nil {
		return
	}

	seen := make(map[string]struct{})
	var points []domain.PricePoint
	resolvedAt := r.now().UnixMilli()

	for _, holdings := range snap.Wallets {
		for _, h := range holdings {
			if _, dup := seen[h.Mint]; dup || !h.Price.Known {
				continue
			}
			seen[h.Mint] = struct{}{}

			q := r.quoter.ResolveQuote(ctx, h.Mint, false)
			if !q.Price.Known {
				continue
			}
			points = append(points, domain.PricePoint{
				Mint:       h.Mint,
				Symbol:     h.Symbol,
				Price:      q.Price.Value,
				Source:     q.Source,
				ResolvedAt: resolvedAt,
			})
		}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Mint < points[j].Mint })

	if len(points) == 0 {
		return
	}
	if err := r.history.Append(ctx, points); err != nil {
		r.logger.Warn("price history append failed", zap.Error(err))
	}
}

// sameMints compares two mint lists ignoring order.
func sameMints(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func sortedWallets(m map[string]domain.WalletChanges) []string {
	out := make([]string, 0, len(m))
	for w := range m {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
