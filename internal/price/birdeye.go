package price

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBirdeyeBaseURL is the public Birdeye API endpoint.
const DefaultBirdeyeBaseURL = "https://public-api.birdeye.so"

// BirdeyeProvider is the primary aggregator. It is keyed and rate-limited
// upstream, so it sits behind the resolver's throttle.
type BirdeyeProvider struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	maxAttempts int
	retryDelay  time.Duration
}

// NewBirdeyeProvider creates a Birdeye provider. baseURL "" selects the
// public endpoint.
func NewBirdeyeProvider(baseURL, apiKey string) *BirdeyeProvider {
	if baseURL == "" {
		baseURL = DefaultBirdeyeBaseURL
	}
	return &BirdeyeProvider{
		baseURL:     baseURL,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: DefaultProviderTimeout},
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
	}
}

// Name identifies the provider.
func (p *BirdeyeProvider) Name() string { return "birdeye" }

// GetPrice returns the Birdeye price for the mint.
func (p *BirdeyeProvider) GetPrice(ctx context.Context, mint string) (float64, error) {
	if p.apiKey == "" {
		return 0, fmt.Errorf("%w: no API key configured", ErrNoQuote)
	}

	reqURL := fmt.Sprintf("%s/public/price?address=%s", p.baseURL, url.QueryEscape(mint))
	header := http.Header{"X-API-KEY": []string{p.apiKey}}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Value float64 `json:"value"`
		} `json:"data"`
	}
	if err := fetchJSON(ctx, p.client, reqURL, header, p.maxAttempts, p.retryDelay, &resp); err != nil {
		return 0, err
	}

	if !resp.Success || resp.Data.Value == 0 {
		return 0, ErrNoQuote
	}
	return resp.Data.Value, nil
}
