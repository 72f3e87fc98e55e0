package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"solana-wallet-tracker/internal/config"
	"solana-wallet-tracker/internal/diff"
	"solana-wallet-tracker/internal/filter"
	"solana-wallet-tracker/internal/holdings"
	"solana-wallet-tracker/internal/logging"
	"solana-wallet-tracker/internal/price"
	"solana-wallet-tracker/internal/solana"
	"solana-wallet-tracker/internal/storage"
	chstore "solana-wallet-tracker/internal/storage/clickhouse"
	filestore "solana-wallet-tracker/internal/storage/file"
	"solana-wallet-tracker/internal/storage/memory"
	"solana-wallet-tracker/internal/storage/migrations"
	pgstore "solana-wallet-tracker/internal/storage/postgres"
	"solana-wallet-tracker/internal/tracker"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	once := flag.Bool("once", false, "Run a single tracking cycle and exit")
	clearEvents := flag.Bool("clear-events", false, "Wipe the change-event ledger and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *once, *clearEvents); err != nil && ctx.Err() == nil {
		logger.Fatal("tracker failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, once, clearEvents bool) error {
	snapshots, ledger, history, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if clearEvents {
		if err := ledger.Clear(ctx); err != nil {
			return fmt.Errorf("clear change events: %w", err)
		}
		logger.Info("change-event ledger cleared")
		return nil
	}

	rpc := solana.NewHTTPClient(cfg.RPC.HTTPURL)

	coingecko := price.NewCoinGeckoClient(cfg.Providers.CoinGeckoBaseURL)
	resolver := price.NewResolver(logger, []price.Provider{
		price.NewBirdeyeProvider(cfg.Providers.BirdeyeBaseURL, cfg.Providers.BirdeyeAPIKey),
		price.NewJupiterProvider(cfg.Providers.JupiterBaseURL),
		price.NewSpecialCaseProvider(coingecko),
		price.NewPumpFunProvider(cfg.Providers.PumpFunBaseURL, coingecko),
	})

	fetcher := holdings.NewFetcher(rpc, resolver, logger)

	engine, err := filter.NewEngine(cfg.Filter, logger)
	if err != nil {
		return err
	}

	opts := []tracker.RunnerOption{
		tracker.WithInterval(time.Duration(cfg.Tracker.IntervalSeconds) * time.Second),
		tracker.WithCallTimeout(time.Duration(cfg.Tracker.CallTimeoutSeconds) * time.Second),
	}
	if history != nil {
		opts = append(opts, tracker.WithPriceHistory(history, resolver))
	}

	runner := tracker.NewRunner(cfg.Wallets, fetcher, engine, diff.NewDetector(logger),
		snapshots, ledger, logger, opts...)

	if once {
		res, err := runner.RunCycle(ctx)
		if err != nil {
			return err
		}
		logger.Info("cycle finished",
			zap.Int("wallets", len(res.Snapshot.Wallets)),
			zap.Int("events", len(res.Events)))
		return nil
	}

	if cfg.Tracker.WatchActivity {
		ws, err := solana.NewWSClient(ctx, cfg.RPC.WSURL, nil, logger)
		if err != nil {
			return fmt.Errorf("connect websocket: %w", err)
		}
		defer ws.Close()

		go func() {
			if err := runner.WatchActivity(ctx, ws); err != nil && ctx.Err() == nil {
				logger.Error("activity watch failed", zap.Error(err))
			}
		}()
	}

	// A first cycle right away establishes the baseline before the timer
	// takes over.
	runner.TriggerRefresh()

	logger.Info("tracker started",
		zap.Int("wallets", len(cfg.Wallets)),
		zap.String("mode", string(cfg.Filter.Mode)),
		zap.String("backend", cfg.Storage.Backend),
		zap.Int("interval_seconds", cfg.Tracker.IntervalSeconds))

	return runner.Run(ctx)
}

// buildStores wires the configured storage backend plus the optional
// ClickHouse price-history sink. The returned cleanup closes whatever
// connections were opened.
func buildStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.SnapshotStore, storage.ChangeLedger, storage.PriceHistoryStore, func(), error) {
	cleanup := func() {}

	var snapshots storage.SnapshotStore
	var ledger storage.ChangeLedger
	var history storage.PriceHistoryStore

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		snapshots = memory.NewSnapshotStore()
		ledger = memory.NewChangeLedger(cfg.Storage.LedgerCap)
		history = memory.NewPriceHistoryStore(cfg.Storage.PriceHistoryMax)

	case config.BackendFile:
		var err error
		snapshots, err = filestore.NewSnapshotStore(cfg.Storage.DataDir, logger)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		ledger, err = filestore.NewChangeLedger(cfg.Storage.DataDir, cfg.Storage.LedgerCap, logger)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		history, err = filestore.NewPriceHistoryStore(cfg.Storage.DataDir, cfg.Storage.PriceHistoryMax, logger)
		if err != nil {
			return nil, nil, nil, nil, err
		}

	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		snapshots = pgstore.NewSnapshotStore(pool, logger)
		ledger = pgstore.NewChangeLedger(pool, cfg.Storage.LedgerCap)
		cleanup = pool.Close

	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		history = chstore.NewPriceHistoryStore(conn)

		prev := cleanup
		cleanup = func() {
			conn.Close()
			prev()
		}
	}

	return snapshots, ledger, history, cleanup, nil
}
