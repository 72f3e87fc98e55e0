package domain

import "math"

// Defaults for unresolvable token metadata.
const (
	UnknownSymbol    = "UNK"
	UnknownTokenName = "Unknown Token"
)

// Well-known mint addresses.
const (
	WrappedSOLMint = "So11111111111111111111111111111111111111112"
	USDCMint       = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint       = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

// TokenHolding is one token position in one wallet at one point in time.
// RawAmount is the smallest-unit integer balance; Amount() derives the
// UI amount from it. Mint is unique within a wallet's holding set.
type TokenHolding struct {
	Wallet     string `json:"wallet"`
	Mint       string `json:"mint"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	RawAmount  uint64 `json:"raw_amount"`
	Decimals   uint8  `json:"decimals"`
	Price      Price  `json:"price"`
	ObservedAt int64  `json:"observed_at"` // Unix timestamp in milliseconds
}

// Amount returns the human-scale balance, rawAmount / 10^decimals.
func (h *TokenHolding) Amount() float64 {
	return float64(h.RawAmount) / math.Pow10(int(h.Decimals))
}

// USDValue returns amount * price. The second return is false when the
// price is unknown; the value must then be excluded from USD aggregation.
func (h *TokenHolding) USDValue() (float64, bool) {
	if !h.Price.Known {
		return 0, false
	}
	return h.Amount() * h.Price.Value, true
}
