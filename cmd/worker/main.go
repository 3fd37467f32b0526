package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"woosync/internal/config"
	"woosync/internal/connectors/woocommerce"
	"woosync/internal/database"
	"woosync/internal/logger"
	"woosync/internal/worker"
	"woosync/internal/worker/processors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration: %v", err)
	}
	if len(cfg.Brokers()) == 0 {
		logger.Fatal("KAFKA_BROKERS is required")
	}

	var recorder woocommerce.RunRecorder
	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()
		recorder = database.NewRunRepository(db.DB)
	}

	connector := woocommerce.NewFromConfig(cfg, logger, recorder)
	processor := processors.NewEventProcessor(connector, logger.Named("processor"))

	// Initialize worker
	w := worker.New(cfg, logger, worker.NewReader(cfg), processor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting worker on topic %s...", cfg.KafkaTopic)
	if err := w.Run(ctx); err != nil {
		logger.Error("Worker stopped: %v", err)
	}

	logger.Info("Shutting down worker...")
	if err := w.Stop(); err != nil {
		logger.Error("Failed to close reader: %v", err)
	}
}
