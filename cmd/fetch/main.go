package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eos-swap-lab/internal/eos"
	"eos-swap-lab/internal/ingestion"
	"eos-swap-lab/internal/observability"
	"eos-swap-lab/internal/storage"
	"eos-swap-lab/internal/storage/memory"
	"eos-swap-lab/internal/storage/migrations"
	pgstore "eos-swap-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	account := flag.String("account", "effecttokens", "Token contract account to harvest history for")
	endpoint := flag.String("endpoint", eos.DefaultEndpoint, "EOS v1 history get_actions endpoint")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	pageSize := flag.Int64("page-size", eos.DefaultPageSize, "Actions per history page")
	delay := flag.Duration("delay", time.Second, "Politeness delay between page fetches")
	maxRetries := flag.Int("max-retries", eos.DefaultMaxRetries, "Retry attempts per page fetch")
	follow := flag.Bool("follow", false, "Keep polling for new actions after the history is exhausted")
	pollInterval := flag.Duration("poll-interval", 30*time.Second, "Poll interval in follow mode")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[fetch] ", log.LstdFlags|log.Lshortfile)

	var metrics *observability.Metrics
	if *metricsAddr != "" {
		metrics = observability.NewMetrics("")
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err := run(ctx, logger, metrics, runConfig{
		account:      *account,
		endpoint:     *endpoint,
		postgresDSN:  *postgresDSN,
		useMemory:    *useMemory,
		pageSize:     *pageSize,
		delay:        *delay,
		maxRetries:   *maxRetries,
		follow:       *follow,
		pollInterval: *pollInterval,
	})

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type runConfig struct {
	account      string
	endpoint     string
	postgresDSN  string
	useMemory    bool
	pageSize     int64
	delay        time.Duration
	maxRetries   int
	follow       bool
	pollInterval time.Duration
}

func run(ctx context.Context, logger *log.Logger, metrics *observability.Metrics, cfg runConfig) error {
	if cfg.account == "" {
		return fmt.Errorf("--account is required")
	}
	if !cfg.useMemory && cfg.postgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	var actionStore storage.ActionStore = memory.NewActionStore()
	var cursorStore storage.FetchCursorStore = memory.NewFetchCursorStore()

	if !cfg.useMemory {
		pool, err := pgstore.NewPool(ctx, cfg.postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		actionStore = pgstore.NewActionStore(pool)
		cursorStore = pgstore.NewFetchCursorStore(pool)
	}

	client := eos.NewClient(cfg.endpoint, eos.WithMaxRetries(cfg.maxRetries))

	harvester := ingestion.NewHarvester(ingestion.HarvesterOptions{
		Source:      client,
		ActionStore: actionStore,
		CursorStore: cursorStore,
		Account:     cfg.account,
		PageSize:    cfg.pageSize,
		Delay:       cfg.delay,
		Logger:      logger,
		Metrics:     metrics,
	})

	for {
		result, err := harvester.Run(ctx)
		if err != nil {
			return err
		}
		if !cfg.follow || ctx.Err() != nil {
			return nil
		}

		logger.Printf("History exhausted at position %d, polling again in %v", result.Position, cfg.pollInterval)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(cfg.pollInterval):
		}
	}
}
