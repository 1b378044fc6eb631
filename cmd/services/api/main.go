package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/dataset"
	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/pipeline"
	"github.com/epistats/epistats/internal/queue"
	"github.com/epistats/epistats/internal/router"
	"github.com/epistats/epistats/internal/services"
	"github.com/epistats/epistats/internal/storage"
	"github.com/epistats/epistats/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("API service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	data, err := dataset.LoadOrClean(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load data", "error", err, "dir", cfg.Data.Dir)
	}
	logger.Info("Data loaded",
		"countries", len(data.Lookup),
		"from", cfg.Data.StartYear,
		"to", cfg.Data.EndYear)

	service := services.NewSummaryServiceFromConfig(logger, data, cfg)

	store, err := storage.NewSnapshotStoreFromConfig(cfg.Results, logger)
	if err != nil {
		logger.Fatal("Failed to open result store", "error", err, "dir", cfg.Results.Dir)
	}

	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	publisher, err := queue.NewPublisher(cfg.Queue)
	if err != nil {
		logger.Fatal("Failed to connect to Queue", "error", err)
	}
	summaryPublisher := queue.NewSummaryPublisher(publisher, cfg.Queue.Subject)
	defer func() { _ = summaryPublisher.Close() }()

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, router.Deps{
		Service:  service,
		Store:    store,
		Pipeline: pipeline.New(logger, service, store, summaryPublisher),
	}, cfg)

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
