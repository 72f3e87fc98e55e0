package price

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"solana-wallet-tracker/internal/domain"
)

func TestBirdeyeProvider_GetPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("missing API key header, got %q", got)
		}
		if got := r.URL.Query().Get("address"); got != "mint1" {
			t.Errorf("unexpected address param %q", got)
		}
		fmt.Fprint(w, `{"success":true,"data":{"value":2.5}}`)
	}))
	defer srv.Close()

	p := NewBirdeyeProvider(srv.URL, "test-key")
	got, err := p.GetPrice(context.Background(), "mint1")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if got != 2.5 {
		t.Errorf("expected 2.5, got %v", got)
	}
}

func TestBirdeyeProvider_NoKeyIsNoQuote(t *testing.T) {
	p := NewBirdeyeProvider("http://invalid.test", "")
	_, err := p.GetPrice(context.Background(), "mint1")
	if !errors.Is(err, ErrNoQuote) {
		t.Fatalf("expected ErrNoQuote, got %v", err)
	}
}

func TestBirdeyeProvider_UnsuccessfulBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success":false}`)
	}))
	defer srv.Close()

	p := NewBirdeyeProvider(srv.URL, "k")
	if _, err := p.GetPrice(context.Background(), "mint1"); !errors.Is(err, ErrNoQuote) {
		t.Fatalf("expected ErrNoQuote, got %v", err)
	}
}

func TestJupiterProvider_GetPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "mint1" {
			t.Errorf("unexpected ids param %q", got)
		}
		fmt.Fprint(w, `{"data":{"mint1":{"price":"1.23"}}}`)
	}))
	defer srv.Close()

	p := NewJupiterProvider(srv.URL)
	got, err := p.GetPrice(context.Background(), "mint1")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if got != 1.23 {
		t.Errorf("expected 1.23, got %v", got)
	}
}

func TestJupiterProvider_MissingEntryIsNoQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":{"other":null}}`)
	}))
	defer srv.Close()

	p := NewJupiterProvider(srv.URL)
	if _, err := p.GetPrice(context.Background(), "mint1"); !errors.Is(err, ErrNoQuote) {
		t.Fatalf("expected ErrNoQuote, got %v", err)
	}
}

func TestSpecialCaseProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != "solana" {
			t.Errorf("unexpected ids param %q", got)
		}
		fmt.Fprint(w, `{"solana":{"usd":150.5}}`)
	}))
	defer srv.Close()

	p := NewSpecialCaseProvider(NewCoinGeckoClient(srv.URL))
	ctx := context.Background()

	for _, stable := range []string{domain.USDCMint, domain.USDTMint} {
		got, err := p.GetPrice(ctx, stable)
		if err != nil {
			t.Fatalf("stable %s: %v", stable, err)
		}
		if got != 1.0 {
			t.Errorf("stable %s: expected 1.0, got %v", stable, got)
		}
	}

	got, err := p.GetPrice(ctx, domain.WrappedSOLMint)
	if err != nil {
		t.Fatalf("wSOL: %v", err)
	}
	if got != 150.5 {
		t.Errorf("wSOL: expected 150.5, got %v", got)
	}

	if _, err := p.GetPrice(ctx, "SomeOtherMint"); !errors.Is(err, ErrNoQuote) {
		t.Fatalf("expected ErrNoQuote for ordinary mint, got %v", err)
	}
}

func TestPumpFunProvider_DirectUSD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pump-scraper/tokenPrice/mint1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"USD":0.004,"SOL":0.00002}`)
	}))
	defer srv.Close()

	p := NewPumpFunProvider(srv.URL, nil)
	got, err := p.GetPrice(context.Background(), "mint1")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if got != 0.004 {
		t.Errorf("expected 0.004, got %v", got)
	}
}

func TestPumpFunProvider_SOLConversion(t *testing.T) {
	gecko := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"solana":{"usd":100}}`)
	}))
	defer gecko.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"SOL":0.5}`)
	}))
	defer srv.Close()

	p := NewPumpFunProvider(srv.URL, NewCoinGeckoClient(gecko.URL))
	got, err := p.GetPrice(context.Background(), "mint1")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if got != 50 {
		t.Errorf("expected 50, got %v", got)
	}
}

func TestFetchJSON_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"data":{"mint1":{"price":"9"}}}`)
	}))
	defer srv.Close()

	p := NewJupiterProvider(srv.URL)
	p.retryDelay = time.Millisecond

	got, err := p.GetPrice(context.Background(), "mint1")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if got != 9 {
		t.Errorf("expected 9, got %v", got)
	}
	if n := hits.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestFetchJSON_NotFoundIsNoQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewJupiterProvider(srv.URL)
	if _, err := p.GetPrice(context.Background(), "mint1"); !errors.Is(err, ErrNoQuote) {
		t.Fatalf("expected ErrNoQuote, got %v", err)
	}
}
