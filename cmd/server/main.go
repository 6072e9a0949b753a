package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finautomation/reconciliation-engine/internal/api"
	"github.com/finautomation/reconciliation-engine/internal/config"
	"github.com/finautomation/reconciliation-engine/internal/discrepancy"
	"github.com/finautomation/reconciliation-engine/internal/logging"
	"github.com/finautomation/reconciliation-engine/internal/matcher"
	"github.com/finautomation/reconciliation-engine/internal/parser"
	"github.com/finautomation/reconciliation-engine/internal/retriever"
	"github.com/finautomation/reconciliation-engine/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "", "Path to a YAML config file (defaults apply when empty)")
	flag.Parse()

	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: loading config failed: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := logging.NewLogger(cfg.Logging)

	ledger := retriever.NewHTTPRetriever(cfg.Retriever, logger)

	svc := service.NewReconciliationService(
		parser.NewStatementParser(cfg.Files, logger),
		ledger,
		matcher.NewFuzzyScorer(cfg.Matching),
		discrepancy.NewRuleBasedDetector(ledger, cfg.Matching, logger),
		cfg,
		logger,
	)

	server := api.NewServer(cfg.Server, svc, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
