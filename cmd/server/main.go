package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pocketrithm/internal/amqp"
	"pocketrithm/internal/auth"
	"pocketrithm/internal/budget"
	"pocketrithm/internal/config"
	apphttp "pocketrithm/internal/http"
	"pocketrithm/internal/log"
	"pocketrithm/internal/services"
	"pocketrithm/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	st, publisher, err := buildBackend(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize data backend",
			log.FieldError, err.Error(),
			"backend", cfg.DataBackend)
		os.Exit(1)
	}

	verifier, admin := buildAuth(cfg)

	budgets := budget.NewService(st, logger)
	ledger := services.NewLedger(st, budgets, publisher, logger)
	categories := services.NewCategories(st, logger)
	account := services.NewAccount(st, admin, services.DefaultDeletePolicy(), logger)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:              ":" + cfg.Port,
		RequestsPerMinute: cfg.RateLimitPerMinute,
		Ledger:            ledger,
		Categories:        categories,
		Budgets:           budgets,
		Account:           account,
		Store:             st,
		Verifier:          verifier,
		Logger:            logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		if err := ledger.Close(); err != nil {
			logger.Error("Ledger close error", log.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting pocketrithm server",
		"port", cfg.Port,
		"backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// buildBackend wires the configured store and, in sqlite mode, the AMQP
// publisher that feeds the sync worker.
func buildBackend(cfg *config.Config, logger *log.Logger) (store.Store, services.SyncPublisher, error) {
	switch cfg.DataBackend {
	case "supabase":
		// The server queries without a user JWT, so the anon key would be
		// filtered to zero rows by row-level security. The service-role key
		// bypasses RLS; ownership is enforced by the user_id filter on every
		// store query, and account deletion needs the same privilege for its
		// cross-table purge.
		if cfg.SupabaseServiceKey == "" {
			return nil, nil, fmt.Errorf("supabase backend requires the service-role key")
		}
		st, err := store.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Initialized supabase backend")
		return st, nil, nil

	case "sqlite":
		st, err := store.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)

		if cfg.AMQPURL == "" {
			logger.Warn("AMQP disabled, entries will not replicate to the hosted backend")
			return st, nil, nil
		}
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Initialized AMQP publisher",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
		return st, client, nil

	default:
		logger.Info("Initialized memory backend")
		return store.NewMemory(), nil, nil
	}
}

// buildAuth selects the identity provider: GoTrue when Supabase is
// configured, the permissive local stub otherwise.
func buildAuth(cfg *config.Config) (auth.Verifier, auth.Admin) {
	if cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "" {
		verifier := auth.NewGoTrue(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		adminKey := cfg.SupabaseServiceKey
		if adminKey == "" {
			adminKey = cfg.SupabaseAnonKey
		}
		return verifier, auth.NewGoTrue(cfg.SupabaseURL, adminKey)
	}
	local := auth.NewLocal("local-user")
	return local, local
}
