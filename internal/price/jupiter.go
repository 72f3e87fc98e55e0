package price

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultJupiterBaseURL is the public Jupiter lite price API endpoint.
const DefaultJupiterBaseURL = "https://lite-api.jup.ag"

// JupiterProvider is the secondary DEX-aggregator source. It needs no key.
type JupiterProvider struct {
	baseURL     string
	client      *http.Client
	maxAttempts int
	retryDelay  time.Duration
}

// NewJupiterProvider creates a Jupiter provider. baseURL "" selects the
// public endpoint.
func NewJupiterProvider(baseURL string) *JupiterProvider {
	if baseURL == "" {
		baseURL = DefaultJupiterBaseURL
	}
	return &JupiterProvider{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: DefaultProviderTimeout},
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
	}
}

// Name identifies the provider.
func (p *JupiterProvider) Name() string { return "jupiter" }

// GetPrice returns the Jupiter v2 price for the mint. The API reports
// prices as strings.
func (p *JupiterProvider) GetPrice(ctx context.Context, mint string) (float64, error) {
	reqURL := fmt.Sprintf("%s/price/v2?ids=%s", p.baseURL, url.QueryEscape(mint))

	var resp struct {
		Data map[string]*struct {
			Price string `json:"price"`
		} `json:"data"`
	}
	if err := fetchJSON(ctx, p.client, reqURL, nil, p.maxAttempts, p.retryDelay, &resp); err != nil {
		return 0, err
	}

	entry, ok := resp.Data[mint]
	if !ok || entry == nil || entry.Price == "" {
		return 0, ErrNoQuote
	}

	value, err := strconv.ParseFloat(entry.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse price %q: %v", ErrNoQuote, entry.Price, err)
	}
	if value == 0 {
		return 0, ErrNoQuote
	}
	return value, nil
}
