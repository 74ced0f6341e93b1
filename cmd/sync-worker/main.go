package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pocketrithm/internal/amqp"
	"pocketrithm/internal/config"
	"pocketrithm/internal/log"
	"pocketrithm/internal/store"
	"pocketrithm/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting pocketrithm sync worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		logger.Error("Supabase URL and service key are required for the sync worker")
		os.Exit(1)
	}

	local, err := store.NewSQLite(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open local store",
			log.FieldError, err.Error(),
			"path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer local.Close()

	// The worker writes with the service key so row-level security does not
	// block rows owned by other users.
	remote, err := store.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	if err != nil {
		logger.Error("Failed to initialize hosted backend client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer remote.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()
	amqpClient.SetPrefetch(cfg.SyncBatchSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncWorker := worker.NewSyncWorker(local, remote, logger)

	// Periodic progress report.
	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				processed, failed := syncWorker.Stats()
				logger.Info("Sync worker progress",
					"processed", processed,
					"failed", failed)
			}
		}
	}()

	go func() {
		err := amqpClient.ConsumeEntrySync(ctx, func(msg *amqp.EntrySyncMessage) error {
			return syncWorker.HandleMessage(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err.Error())
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()

	// Give the in-flight delivery a moment to finish.
	time.Sleep(2 * time.Second)
	logger.Info("Sync worker stopped")
}
