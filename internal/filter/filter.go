// Package filter decides which wallet holdings are relevant under a
// configured policy.
package filter

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"solana-wallet-tracker/internal/domain"
)

// amountEpsilon absorbs floating rounding from raw-to-decimal conversion
// when deciding whether an amount changed.
const amountEpsilon = 1e-9

// Engine applies a FilterPolicy to wallet holdings. Predicates are ANDed;
// a disabled predicate is vacuously true. The engine remembers when each
// (wallet, mint) pair last changed to drive the activity window.
type Engine struct {
	policy domain.FilterPolicy
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	lastChanged map[string]time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine validates the policy and creates a filter engine. An invalid
// policy is rejected here, before any cycle runs with it.
func NewEngine(policy domain.FilterPolicy, logger *zap.Logger, opts ...EngineOption) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("filter policy: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		policy:      policy,
		logger:      logger.Named("filter"),
		now:         time.Now,
		lastChanged: make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Policy returns the engine's policy.
func (e *Engine) Policy() domain.FilterPolicy { return e.policy }

// Apply filters one wallet's holdings. prev is the wallet's previous
// snapshot, consulted by the activity predicate; nil means first run.
// Returned stats count kept holdings as found and dropped ones as
// skipped.
func (e *Engine) Apply(wallet string, holdings, prev []domain.TokenHolding) ([]domain.TokenHolding, domain.WalletStats) {
	prevByMint := make(map[string]domain.TokenHolding, len(prev))
	for _, h := range prev {
		prevByMint[h.Mint] = h
	}

	// The percentage predicate compares against the wallet's total
	// resolvable value before filtering.
	var walletTotal float64
	for _, h := range holdings {
		if usd, ok := h.USDValue(); ok {
			walletTotal += usd
		}
	}

	var kept []domain.TokenHolding
	var stats domain.WalletStats

	for _, h := range holdings {
		if e.keep(wallet, h, prevByMint, walletTotal) {
			kept = append(kept, h)
			stats.Found++
		} else {
			stats.Skipped++
		}
	}

	return kept, stats
}

func (e *Engine) keep(wallet string, h domain.TokenHolding, prevByMint map[string]domain.TokenHolding, walletTotal float64) bool {
	if e.policy.Excluded(h.Mint) {
		return false
	}

	if e.policy.Mode == domain.FilterModeAllowlist && !e.policy.Monitored(h.Mint) {
		return false
	}

	if e.policy.Percentage.Enabled {
		usd, ok := h.USDValue()
		// Unresolvable prices cannot prove relevance.
		if !ok || walletTotal <= 0 {
			return false
		}
		if usd/walletTotal*100 < e.policy.Percentage.ThresholdPct {
			return false
		}
	}

	if e.policy.Amount.Enabled {
		usd, ok := h.USDValue()
		if !ok || usd < e.policy.Amount.ThresholdUSD {
			return false
		}
	}

	if e.policy.Activity.Enabled && !e.active(wallet, h, prevByMint) {
		return false
	}

	return true
}

// active reports whether the holding changed within the activity window.
// A holding with no prior record is always active; an amount change marks
// it active now.
func (e *Engine) active(wallet string, h domain.TokenHolding, prevByMint map[string]domain.TokenHolding) bool {
	now := e.now()
	key := wallet + "|" + h.Mint

	e.mu.Lock()
	defer e.mu.Unlock()

	prev, seen := prevByMint[h.Mint]
	if !seen || math.Abs(h.Amount()-prev.Amount()) > amountEpsilon {
		e.lastChanged[key] = now
		return true
	}

	changed, ok := e.lastChanged[key]
	if !ok {
		// Unchanged and never observed changing (fresh engine): the
		// holding is dormant from this engine's point of view.
		return false
	}

	window := time.Duration(e.policy.Activity.WindowHours) * time.Hour
	return now.Sub(changed) <= window
}
