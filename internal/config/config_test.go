package config

import (
	"os"
	"path/filepath"
	"testing"

	"solana-wallet-tracker/internal/domain"
)

// testWallet is a well-formed on-curve base58 key.
const testWallet = "11111111111111111111111111111111"

func validConfig() *Config {
	cfg := Default()
	cfg.RPC.HTTPURL = "https://api.mainnet-beta.solana.com"
	cfg.Wallets = []string{testWallet}
	return cfg
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
rpc:
  http_url: https://rpc.example.com
wallets:
  - ` + testWallet + `
filter:
  mode: allowlist
  monitored_mints:
    - mintA
  amount_filter:
    enabled: true
    threshold_usd: 50
storage:
  backend: memory
tracker:
  interval_seconds: 30
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.RPC.HTTPURL != "https://rpc.example.com" {
		t.Errorf("unexpected rpc url %q", cfg.RPC.HTTPURL)
	}
	if cfg.Filter.Mode != domain.FilterModeAllowlist {
		t.Errorf("unexpected filter mode %q", cfg.Filter.Mode)
	}
	if !cfg.Filter.Amount.Enabled || cfg.Filter.Amount.ThresholdUSD != 50 {
		t.Errorf("amount filter not parsed: %+v", cfg.Filter.Amount)
	}
	if cfg.Tracker.IntervalSeconds != 30 {
		t.Errorf("unexpected interval %d", cfg.Tracker.IntervalSeconds)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected log level %q", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Tracker.CallTimeoutSeconds != 15 {
		t.Errorf("default call timeout lost: %d", cfg.Tracker.CallTimeoutSeconds)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
rpc:
  http_url: https://rpc.example.com
wallets:
  - ` + testWallet + `
storage:
  backend: memory
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SOLANA_RPC_URL", "https://rpc.override.example.com")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RPC.HTTPURL != "https://rpc.override.example.com" {
		t.Errorf("env override lost: %q", cfg.RPC.HTTPURL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env override lost: %q", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing rpc", func(c *Config) { c.RPC.HTTPURL = "" }, true},
		{"no wallets", func(c *Config) { c.Wallets = nil }, true},
		{"malformed wallet", func(c *Config) { c.Wallets = []string{"not-base58-0OIl"} }, true},
		{"short wallet", func(c *Config) { c.Wallets = []string{"abc"} }, true},
		{"bad filter mode", func(c *Config) { c.Filter.Mode = "everything" }, true},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, true},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = BackendPostgres }, true},
		{"postgres with dsn", func(c *Config) {
			c.Storage.Backend = BackendPostgres
			c.Storage.PostgresDSN = "postgres://localhost/tracker"
		}, false},
		{"zero interval", func(c *Config) { c.Tracker.IntervalSeconds = 0 }, true},
		{"watch activity without ws url", func(c *Config) { c.Tracker.WatchActivity = true }, true},
		{"watch activity with ws url", func(c *Config) {
			c.Tracker.WatchActivity = true
			c.RPC.WSURL = "wss://rpc.example.com"
		}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
