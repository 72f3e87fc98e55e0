package domain

// PricePoint is one resolved price for one mint on one tracking cycle,
// appended to the price-history ledger.
type PricePoint struct {
	Mint       string  `json:"mint"`
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	Source     string  `json:"source"`      // provider that answered
	ResolvedAt int64   `json:"resolved_at"` // Unix ms
}
