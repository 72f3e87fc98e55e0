package domain

import "fmt"

// FilterMode selects how holdings are judged relevant.
type FilterMode string

const (
	// FilterModeDynamic keeps holdings by share of portfolio value.
	FilterModeDynamic FilterMode = "dynamic"
	// FilterModeAllowlist keeps only explicitly monitored mints.
	FilterModeAllowlist FilterMode = "allowlist"
)

// PercentageFilter keeps a holding only if its USD value is at least
// ThresholdPct percent of the wallet's total USD value.
type PercentageFilter struct {
	Enabled      bool    `json:"enabled" yaml:"enabled"`
	ThresholdPct float64 `json:"threshold_pct" yaml:"threshold_pct"`
}

// AmountFilter keeps a holding only if its USD value is at least ThresholdUSD.
type AmountFilter struct {
	Enabled      bool    `json:"enabled" yaml:"enabled"`
	ThresholdUSD float64 `json:"threshold_usd" yaml:"threshold_usd"`
}

// ActivityFilter keeps a holding only if it changed within the recency
// window. Holdings with no prior record are always considered active.
type ActivityFilter struct {
	Enabled     bool `json:"enabled" yaml:"enabled"`
	WindowHours int  `json:"window_hours" yaml:"window_hours"`
}

// FilterPolicy is the relevance-filter configuration. Enabled predicates
// are ANDed; a disabled predicate is vacuously true. Mints in the exclusion
// sets are dropped regardless of anything else.
type FilterPolicy struct {
	Mode           FilterMode       `json:"mode" yaml:"mode"`
	MonitoredMints []string         `json:"monitored_mints" yaml:"monitored_mints"`
	Percentage     PercentageFilter `json:"percentage_filter" yaml:"percentage_filter"`
	Amount         AmountFilter     `json:"amount_filter" yaml:"amount_filter"`
	Activity       ActivityFilter   `json:"activity_filter" yaml:"activity_filter"`
	ExtraExcluded  []string         `json:"extra_excluded_mints" yaml:"extra_excluded_mints"`
}

// AlwaysExcludedMints are dropped by every policy: the wrapped native asset
// and the primary stablecoin are plumbing, not positions worth tracking.
var AlwaysExcludedMints = map[string]struct{}{
	WrappedSOLMint: {},
	USDCMint:       {},
}

// Validate surfaces misconfiguration instead of silently clamping it.
func (p *FilterPolicy) Validate() error {
	switch p.Mode {
	case FilterModeDynamic, FilterModeAllowlist:
	default:
		return fmt.Errorf("invalid filter mode %q: use %q or %q", p.Mode, FilterModeDynamic, FilterModeAllowlist)
	}
	if p.Mode == FilterModeAllowlist && len(p.MonitoredMints) == 0 {
		return fmt.Errorf("allowlist mode requires at least one monitored mint")
	}
	if p.Percentage.Enabled && (p.Percentage.ThresholdPct < 0 || p.Percentage.ThresholdPct > 100) {
		return fmt.Errorf("percentage filter threshold %.4f out of range [0, 100]", p.Percentage.ThresholdPct)
	}
	if p.Amount.Enabled && p.Amount.ThresholdUSD < 0 {
		return fmt.Errorf("amount filter threshold %.4f must not be negative", p.Amount.ThresholdUSD)
	}
	if p.Activity.Enabled && p.Activity.WindowHours <= 0 {
		return fmt.Errorf("activity filter window %d must be positive", p.Activity.WindowHours)
	}
	return nil
}

// Excluded reports whether a mint is barred by the fixed or user-extended
// exclusion sets.
func (p *FilterPolicy) Excluded(mint string) bool {
	if _, ok := AlwaysExcludedMints[mint]; ok {
		return true
	}
	for _, m := range p.ExtraExcluded {
		if m == mint {
			return true
		}
	}
	return false
}

// Monitored reports whether a mint is in the allowlist.
func (p *FilterPolicy) Monitored(mint string) bool {
	for _, m := range p.MonitoredMints {
		if m == mint {
			return true
		}
	}
	return false
}
