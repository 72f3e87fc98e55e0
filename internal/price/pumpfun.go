package price

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultPumpFunBaseURL is the public Pump.fun API endpoint.
const DefaultPumpFunBaseURL = "https://api.pump.fun"

// PumpFunProvider is the long-tail source for niche listings absent from
// the aggregators. Responses carry a USD price directly or a price in SOL
// that must be converted through the native spot index.
type PumpFunProvider struct {
	baseURL     string
	client      *http.Client
	coingecko   *CoinGeckoClient
	maxAttempts int
	retryDelay  time.Duration
}

// NewPumpFunProvider creates a Pump.fun provider. baseURL "" selects the
// public endpoint. coingecko may be nil; SOL-denominated quotes are then
// unusable and reported as ErrNoQuote.
func NewPumpFunProvider(baseURL string, coingecko *CoinGeckoClient) *PumpFunProvider {
	if baseURL == "" {
		baseURL = DefaultPumpFunBaseURL
	}
	return &PumpFunProvider{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: DefaultProviderTimeout},
		coingecko:   coingecko,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
	}
}

// Name identifies the provider.
func (p *PumpFunProvider) Name() string { return "pumpfun" }

// GetPrice returns the Pump.fun price for the mint.
func (p *PumpFunProvider) GetPrice(ctx context.Context, mint string) (float64, error) {
	reqURL := fmt.Sprintf("%s/pump-scraper/tokenPrice/%s", p.baseURL, url.PathEscape(mint))

	var resp struct {
		USD *float64 `json:"USD"`
		SOL *float64 `json:"SOL"`
	}
	if err := fetchJSON(ctx, p.client, reqURL, nil, p.maxAttempts, p.retryDelay, &resp); err != nil {
		return 0, err
	}

	if resp.USD != nil && *resp.USD > 0 {
		return *resp.USD, nil
	}

	if resp.SOL != nil && *resp.SOL > 0 && p.coingecko != nil {
		solUSD, err := p.coingecko.SpotPrice(ctx, "solana")
		if err != nil {
			return 0, fmt.Errorf("convert SOL quote: %w", err)
		}
		return *resp.SOL * solUSD, nil
	}

	return 0, ErrNoQuote
}
