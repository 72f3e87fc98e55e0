package domain

// ChangeType classifies a detected transition for one (wallet, mint) pair.
type ChangeType string

const (
	ChangeNew      ChangeType = "NEW"
	ChangeRemoved  ChangeType = "REMOVED"
	ChangeModified ChangeType = "MODIFIED"
)

// ChangeEvent is one detected transition between two consecutive filtered
// snapshots. Exactly one event exists per (wallet, mint) pair that changed
// category or amount; unchanged pairs produce none.
//
// Amount is the current amount after the change; for REMOVED it is the
// amount that existed before removal. AmountDelta and PercentDelta are only
// meaningful for MODIFIED. PriceDelta and USDDelta are Unknown when either
// side's price was unresolvable.
type ChangeEvent struct {
	Type         ChangeType `json:"type"`
	Wallet       string     `json:"wallet"`
	Mint         string     `json:"mint"`
	Symbol       string     `json:"symbol"`
	Name         string     `json:"name"`
	Amount       float64    `json:"amount"`
	AmountDelta  float64    `json:"amount_delta"`
	PercentDelta float64    `json:"percent_delta"`
	Price        Price      `json:"price"`
	PriceDelta   Price      `json:"price_delta"`
	USDDelta     Price      `json:"usd_delta"`
	DetectedAt   int64      `json:"detected_at"` // Unix ms of the cycle that produced it
}

// WalletChanges groups a wallet's change events by category.
type WalletChanges struct {
	New      []ChangeEvent `json:"new"`
	Removed  []ChangeEvent `json:"removed"`
	Modified []ChangeEvent `json:"modified"`
}

// Empty reports whether the wallet had no detected changes.
func (c *WalletChanges) Empty() bool {
	return len(c.New) == 0 && len(c.Removed) == 0 && len(c.Modified) == 0
}

// All returns the wallet's events as a single slice, NEW first, then
// REMOVED, then MODIFIED.
func (c *WalletChanges) All() []ChangeEvent {
	out := make([]ChangeEvent, 0, len(c.New)+len(c.Removed)+len(c.Modified))
	out = append(out, c.New...)
	out = append(out, c.Removed...)
	out = append(out, c.Modified...)
	return out
}
