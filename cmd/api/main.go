package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"woosync/internal/api"
	"woosync/internal/api/handlers"
	"woosync/internal/config"
	"woosync/internal/connectors/woocommerce"
	"woosync/internal/database"
	"woosync/internal/logger"
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

	// Run history is optional
	var runs handlers.RunReader
	var recorder woocommerce.RunRecorder
	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()
		repo := database.NewRunRepository(db.DB)
		runs, recorder = repo, repo
	} else {
		logger.Warn("DATABASE_URL not set, sync runs will not be recorded")
	}

	connector := woocommerce.NewFromConfig(cfg, logger, recorder)

	// Initialize API server
	server := api.New(cfg, logger, connector, runs)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
