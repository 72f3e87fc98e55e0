package price

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultCoinGeckoBaseURL is the public CoinGecko API endpoint.
const DefaultCoinGeckoBaseURL = "https://api.coingecko.com"

// CoinGeckoClient fetches spot prices from the general-purpose CoinGecko
// index. It is not a waterfall Provider itself; the special-case provider
// uses it for the native asset, which CoinGecko indexes by listing ID
// rather than mint address.
type CoinGeckoClient struct {
	baseURL     string
	client      *http.Client
	maxAttempts int
	retryDelay  time.Duration
}

// NewCoinGeckoClient creates a CoinGecko client. baseURL "" selects the
// public endpoint.
func NewCoinGeckoClient(baseURL string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoBaseURL
	}
	return &CoinGeckoClient{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: DefaultProviderTimeout},
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
	}
}

// SpotPrice returns the USD spot price for a CoinGecko listing ID, e.g.
// "solana".
func (c *CoinGeckoClient) SpotPrice(ctx context.Context, listingID string) (float64, error) {
	reqURL := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd",
		c.baseURL, url.QueryEscape(listingID))

	var resp map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := fetchJSON(ctx, c.client, reqURL, nil, c.maxAttempts, c.retryDelay, &resp); err != nil {
		return 0, err
	}

	entry, ok := resp[listingID]
	if !ok || entry.USD == 0 {
		return 0, ErrNoQuote
	}
	return entry.USD, nil
}
