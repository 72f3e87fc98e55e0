// Package diff detects holding changes between two consecutive filtered
// wallet snapshots.
package diff

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"solana-wallet-tracker/internal/domain"
)

// AmountEpsilon absorbs floating rounding introduced by raw-to-decimal
// conversion. Amounts closer than this are equal.
const AmountEpsilon = 1e-9

// Detector compares snapshots per wallet and per mint.
type Detector struct {
	logger *zap.Logger
	now    func() time.Time
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) DetectorOption {
	return func(d *Detector) {
		d.now = now
	}
}

// NewDetector creates a change detector.
func NewDetector(logger *zap.Logger, opts ...DetectorOption) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Detector{
		logger: logger.Named("diff"),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// DetectChanges diffs two snapshots wallet by wallet. A wallet absent from
// the previous snapshot produces no events at all: the first observation
// is a baseline, not a flood of NEW entries. Events within a category are
// ordered by mint for determinism.
func (d *Detector) DetectChanges(prev, curr *domain.WalletSnapshot) map[string]domain.WalletChanges {
	out := make(map[string]domain.WalletChanges)
	if curr == nil {
		return out
	}

	detectedAt := d.now().UnixMilli()

	for wallet, holdings := range curr.Wallets {
		if prev == nil {
			continue
		}
		prevHoldings, seen := prev.Wallets[wallet]
		if !seen {
			continue
		}

		changes := d.diffWallet(wallet, prevHoldings, holdings, detectedAt)
		if !changes.Empty() {
			out[wallet] = changes
		}
	}

	return out
}

func (d *Detector) diffWallet(wallet string, prev, curr []domain.TokenHolding, detectedAt int64) domain.WalletChanges {
	prevByMint := make(map[string]domain.TokenHolding, len(prev))
	for _, h := range prev {
		prevByMint[h.Mint] = h
	}
	currByMint := make(map[string]domain.TokenHolding, len(curr))
	for _, h := range curr {
		currByMint[h.Mint] = h
	}

	var changes domain.WalletChanges

	for _, mint := range sortedMints(currByMint) {
		h := currByMint[mint]
		p, existed := prevByMint[mint]

		// A zero previous amount carries no basis for deltas; the holding
		// effectively appears now.
		if !existed || p.Amount() <= AmountEpsilon {
			changes.New = append(changes.New, domain.ChangeEvent{
				Type:       domain.ChangeNew,
				Wallet:     wallet,
				Mint:       mint,
				Symbol:     h.Symbol,
				Name:       h.Name,
				Amount:     h.Amount(),
				Price:      h.Price,
				PriceDelta: domain.UnknownPrice,
				USDDelta:   domain.UnknownPrice,
				DetectedAt: detectedAt,
			})
			continue
		}

		if math.Abs(h.Amount()-p.Amount()) <= AmountEpsilon {
			continue
		}

		amountDelta := h.Amount() - p.Amount()
		ev := domain.ChangeEvent{
			Type:         domain.ChangeModified,
			Wallet:       wallet,
			Mint:         mint,
			Symbol:       h.Symbol,
			Name:         h.Name,
			Amount:       h.Amount(),
			AmountDelta:  amountDelta,
			PercentDelta: amountDelta / p.Amount() * 100,
			Price:        h.Price,
			PriceDelta:   h.Price.Sub(p.Price),
			USDDelta:     usdDelta(p, h),
			DetectedAt:   detectedAt,
		}
		changes.Modified = append(changes.Modified, ev)
	}

	for _, mint := range sortedMints(prevByMint) {
		if _, stillHeld := currByMint[mint]; stillHeld {
			continue
		}
		p := prevByMint[mint]

		ev := domain.ChangeEvent{
			Type:       domain.ChangeRemoved,
			Wallet:     wallet,
			Mint:       mint,
			Symbol:     p.Symbol,
			Name:       p.Name,
			Amount:     p.Amount(),
			Price:      p.Price,
			PriceDelta: domain.KnownPrice(0),
			USDDelta:   domain.UnknownPrice,
			DetectedAt: detectedAt,
		}
		// A removal withdraws the holding's entire previous value.
		if usd, ok := p.USDValue(); ok {
			ev.USDDelta = domain.KnownPrice(-usd)
		}
		changes.Removed = append(changes.Removed, ev)
	}

	return changes
}

// usdDelta is current value minus previous value, Unknown unless both
// sides are resolvable.
func usdDelta(prev, curr domain.TokenHolding) domain.Price {
	prevUSD, okPrev := prev.USDValue()
	currUSD, okCurr := curr.USDValue()
	if !okPrev || !okCurr {
		return domain.UnknownPrice
	}
	return domain.KnownPrice(currUSD - prevUSD)
}

func sortedMints(m map[string]domain.TokenHolding) []string {
	out := make([]string, 0, len(m))
	for mint := range m {
		out = append(out, mint)
	}
	sort.Strings(out)
	return out
}
