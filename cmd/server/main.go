package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chaindocs/tradecore/internal/audit"
	"github.com/chaindocs/tradecore/internal/config"
	"github.com/chaindocs/tradecore/internal/domain"
	"github.com/chaindocs/tradecore/internal/integrity"
	"github.com/chaindocs/tradecore/internal/ledger"
	"github.com/chaindocs/tradecore/internal/lifecycle"
	"github.com/chaindocs/tradecore/internal/logging"
	"github.com/chaindocs/tradecore/internal/remote"
	"github.com/chaindocs/tradecore/internal/risk"
	"github.com/chaindocs/tradecore/internal/server"
	"github.com/chaindocs/tradecore/internal/session"
	"github.com/chaindocs/tradecore/internal/tradestore"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	if cfg.Remote.BaseURL == "" {
		logger.Error("TRADE_API_URL is required")
		os.Exit(1)
	}

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

	svcSession := session.New(domain.Actor{
		ID:   cfg.Remote.ServiceID,
		Role: domain.Role(cfg.Remote.ServiceRole),
	}, cfg.Remote.AuthToken)
	defer svcSession.Close()

	apiClient := remote.NewClient(remote.Config{
		BaseURL:   cfg.Remote.BaseURL,
		Timeout:   cfg.Remote.RequestTimeout,
		AuthToken: svcSession.Token(),
	})

	emitter := audit.NewEmitter(ledgerStore, logger)
	go emitter.Run(ctx)

	validator := lifecycle.NewValidator(apiClient)
	store := tradestore.New(apiClient, validator, emitter, logger).
		WithTimeout(cfg.Remote.RequestTimeout)
	assessor := risk.NewAssessor(apiClient, ledgerStore)

	if cfg.Integrity.Enabled {
		checker := integrity.NewChecker(apiClient, ledgerStore, logger, cfg.Integrity.Workers)
		go checker.RunPeriodic(ctx, cfg.Integrity.Interval)
	}

	apiHandlers := server.NewAPIHandlers(logger, store, assessor, ledgerStore)
	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.LedgerHealthService{Store: ledgerStore},
		API:              apiHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	// Give queued audit entries a final chance to reach the ledger.
	if err := emitter.Flush(shutdownCtx); err != nil {
		logger.Warn("audit queue not fully flushed", "error", err)
	}
	cancel()
}

func buildLedgerStore(ctx context.Context, logger *slog.Logger, cfg config.Config) (ledger.Store, error) {
	if cfg.Ledger.URI == "" {
		logger.Warn("LEDGER_URI not set, using in-memory ledger (entries are lost on restart)")
		return ledger.NewMemoryStore(), nil
	}

	opts := ledger.Options{
		URI:            cfg.Ledger.URI,
		Database:       cfg.Ledger.Database,
		Username:       cfg.Ledger.Username,
		Password:       cfg.Ledger.Password,
		MaxConnections: cfg.Ledger.MaxConnections,
	}
	return ledger.NewNeo4jStore(ctx, opts)
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
