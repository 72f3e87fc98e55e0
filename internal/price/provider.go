// Package price resolves USD prices for arbitrary tokens across multiple
// unreliable, partially-overlapping external providers.
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default provider HTTP behavior.
const (
	DefaultProviderTimeout = 10 * time.Second
	DefaultMaxAttempts     = 5
	DefaultRetryDelay      = 1 * time.Second
)

// ErrNoQuote means the provider has no answer for this token. It is the
// normal outcome for long-tail tokens; the waterfall proceeds to the next
// provider.
var ErrNoQuote = errors.New("provider has no quote")

// Provider resolves a USD price for one token. A provider error or
// malformed response is reported as an error and never aborts resolution.
type Provider interface {
	// Name identifies the provider in logs and price-history records.
	Name() string

	// GetPrice returns the USD price for the mint, or an error (typically
	// ErrNoQuote) when the provider has no answer.
	GetPrice(ctx context.Context, mint string) (float64, error)
}

// fetchJSON performs a GET with bounded retries and linear backoff on
// transient failures (network errors, 429, 5xx) and decodes the body into
// out. Non-retryable HTTP statuses fail immediately with ErrNoQuote.
func fetchJSON(ctx context.Context, client *http.Client, url string, header http.Header, maxAttempts int, retryDelay time.Duration, out interface{}) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		for k, vals := range header {
			for _, v := range vals {
				req.Header.Add(k, v)
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("%w: decode response: %v", ErrNoQuote, err)
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("transient status %d", resp.StatusCode)
			continue
		default:
			return fmt.Errorf("%w: status %d", ErrNoQuote, resp.StatusCode)
		}
	}

	return fmt.Errorf("max attempts exceeded: %w", lastErr)
}
