// Package config loads tracker configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"solana-wallet-tracker/internal/domain"
	"solana-wallet-tracker/internal/solana"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds the full tracker configuration.
type Config struct {
	RPC       RPCConfig           `yaml:"rpc"`
	Wallets   []string            `yaml:"wallets"`
	Filter    domain.FilterPolicy `yaml:"filter"`
	Providers ProvidersConfig     `yaml:"providers"`
	Storage   StorageConfig       `yaml:"storage"`
	Tracker   TrackerConfig       `yaml:"tracker"`
	Logging   LoggingConfig       `yaml:"logging"`
}

// RPCConfig holds Solana endpoint configuration.
type RPCConfig struct {
	HTTPURL string `yaml:"http_url"`
	WSURL   string `yaml:"ws_url"`
}

// ProvidersConfig holds price-provider endpoints and credentials. Empty
// base URLs fall back to each provider's public endpoint.
type ProvidersConfig struct {
	BirdeyeAPIKey    string `yaml:"birdeye_api_key"`
	BirdeyeBaseURL   string `yaml:"birdeye_base_url"`
	JupiterBaseURL   string `yaml:"jupiter_base_url"`
	CoinGeckoBaseURL string `yaml:"coingecko_base_url"`
	PumpFunBaseURL   string `yaml:"pumpfun_base_url"`
}

// StorageConfig selects the snapshot/ledger backend. The ClickHouse DSN
// is independent: when set, price history goes to ClickHouse regardless
// of the main backend.
type StorageConfig struct {
	Backend         string `yaml:"backend"`
	DataDir         string `yaml:"data_dir"`
	PostgresDSN     string `yaml:"postgres_dsn"`
	ClickhouseDSN   string `yaml:"clickhouse_dsn"`
	LedgerCap       int    `yaml:"ledger_cap"`
	PriceHistoryMax int    `yaml:"price_history_max"`
}

// TrackerConfig holds cycle scheduling knobs.
type TrackerConfig struct {
	IntervalSeconds    int  `yaml:"interval_seconds"`
	CallTimeoutSeconds int  `yaml:"call_timeout_seconds"`
	WatchActivity      bool `yaml:"watch_activity"`
}

// LoggingConfig holds logger construction knobs.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns a config with workable defaults for everything that
// has one.
func Default() *Config {
	return &Config{
		Filter: domain.FilterPolicy{Mode: domain.FilterModeDynamic},
		Storage: StorageConfig{
			Backend: BackendFile,
			DataDir: "data",
		},
		Tracker: TrackerConfig{
			IntervalSeconds:    60,
			CallTimeoutSeconds: 15,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load builds the configuration: defaults, then the YAML file (when path
// is non-empty), then environment overrides. A .env file in the working
// directory is read first; a missing one is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SOLANA_RPC_URL"); v != "" {
		c.RPC.HTTPURL = v
	}
	if v := os.Getenv("SOLANA_WS_URL"); v != "" {
		c.RPC.WSURL = v
	}
	if v := os.Getenv("TRACKER_WALLETS"); v != "" {
		c.Wallets = splitList(v)
	}
	if v := os.Getenv("BIRDEYE_API_KEY"); v != "" {
		c.Providers.BirdeyeAPIKey = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		c.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("TRACKER_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Tracker.IntervalSeconds = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate rejects configurations the tracker cannot run with.
func (c *Config) Validate() error {
	if c.RPC.HTTPURL == "" {
		return fmt.Errorf("rpc http_url is required (or SOLANA_RPC_URL)")
	}
	if len(c.Wallets) == 0 {
		return fmt.Errorf("at least one wallet is required (or TRACKER_WALLETS)")
	}
	for _, w := range c.Wallets {
		if err := solana.ValidateAddress(w); err != nil {
			return fmt.Errorf("wallet: %w", err)
		}
		if !solana.IsOnCurve(w) {
			return fmt.Errorf("wallet %q is not an ed25519 wallet key", w)
		}
	}

	if err := c.Filter.Validate(); err != nil {
		return err
	}

	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("postgres backend requires postgres_dsn (or POSTGRES_DSN)")
	}
	if c.Storage.Backend == BackendFile && c.Storage.DataDir == "" {
		return fmt.Errorf("file backend requires data_dir")
	}

	if c.Tracker.IntervalSeconds <= 0 {
		return fmt.Errorf("tracker interval must be positive, got %d", c.Tracker.IntervalSeconds)
	}
	if c.Tracker.CallTimeoutSeconds <= 0 {
		return fmt.Errorf("tracker call timeout must be positive, got %d", c.Tracker.CallTimeoutSeconds)
	}
	if c.Tracker.WatchActivity && c.RPC.WSURL == "" {
		return fmt.Errorf("watch_activity requires rpc ws_url (or SOLANA_WS_URL)")
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
