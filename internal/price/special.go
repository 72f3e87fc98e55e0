package price

import (
	"context"

	"solana-wallet-tracker/internal/domain"
)

// SpecialCaseProvider answers for tokens whose price is known a priori or
// indexed outside the DEX aggregators: stablecoins resolve to exactly 1.0
// and the wrapped native asset falls back to the CoinGecko spot index.
// Every other mint is ErrNoQuote.
type SpecialCaseProvider struct {
	stables   map[string]float64
	coingecko *CoinGeckoClient
}

// NewSpecialCaseProvider creates the stable/native special case. The
// CoinGecko client may be nil, in which case the native asset is not
// handled either.
func NewSpecialCaseProvider(coingecko *CoinGeckoClient) *SpecialCaseProvider {
	return &SpecialCaseProvider{
		stables: map[string]float64{
			domain.USDCMint: 1.0,
			domain.USDTMint: 1.0,
		},
		coingecko: coingecko,
	}
}

// Name identifies the provider.
func (p *SpecialCaseProvider) Name() string { return "special" }

// GetPrice answers for stablecoins and the wrapped native asset only.
func (p *SpecialCaseProvider) GetPrice(ctx context.Context, mint string) (float64, error) {
	if v, ok := p.stables[mint]; ok {
		return v, nil
	}
	if mint == domain.WrappedSOLMint && p.coingecko != nil {
		return p.coingecko.SpotPrice(ctx, "solana")
	}
	return 0, ErrNoQuote
}
