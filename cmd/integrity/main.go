package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chaindocs/tradecore/internal/config"
	"github.com/chaindocs/tradecore/internal/integrity"
	"github.com/chaindocs/tradecore/internal/ledger"
	"github.com/chaindocs/tradecore/internal/logging"
	"github.com/chaindocs/tradecore/internal/remote"
)

func main() {
	var (
		workers = flag.Int("workers", 0, "number of concurrent verification workers (0 = config default)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "integrity-cli")

	if cfg.Remote.BaseURL == "" {
		logger.Error("TRADE_API_URL is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ledgerStore, err := buildLedgerStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create ledger store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := ledgerStore.Close(context.Background()); err != nil {
			logger.Warn("closing ledger store failed", "error", err)
		}
	}()

	apiClient := remote.NewClient(remote.Config{
		BaseURL:   cfg.Remote.BaseURL,
		Timeout:   cfg.Remote.RequestTimeout,
		AuthToken: cfg.Remote.AuthToken,
	})

	workerCount := cfg.Integrity.Workers
	if *workers > 0 {
		workerCount = *workers
	}

	checker := integrity.NewChecker(apiClient, ledgerStore, logger, workerCount)
	report, err := checker.Sweep(ctx)
	if err != nil {
		logger.Error("integrity sweep failed", "error", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Checked %d documents, %d failures\n", report.Checked, len(report.Failures))
	for _, failure := range report.Failures {
		fmt.Fprintf(os.Stdout, "  %s (trade %s): %s\n", failure.DocumentID, failure.TradeID, failure.Reason)
	}
	if len(report.Failures) > 0 {
		os.Exit(2)
	}
}

func buildLedgerStore(ctx context.Context, logger *slog.Logger, cfg config.Config) (ledger.Store, error) {
	if cfg.Ledger.URI == "" {
		logger.Warn("LEDGER_URI not set, integrity failures will not be durably recorded")
		return ledger.NewMemoryStore(), nil
	}

	return ledger.NewNeo4jStore(ctx, ledger.Options{
		URI:            cfg.Ledger.URI,
		Database:       cfg.Ledger.Database,
		Username:       cfg.Ledger.Username,
		Password:       cfg.Ledger.Password,
		MaxConnections: cfg.Ledger.MaxConnections,
	})
}
