package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jafarshop/shopgateway/internal/api"
	"github.com/jafarshop/shopgateway/internal/config"
	"github.com/jafarshop/shopgateway/internal/operations"
	"github.com/jafarshop/shopgateway/internal/repository"
	"github.com/jafarshop/shopgateway/internal/repository/postgres"
	"github.com/jafarshop/shopgateway/internal/service"
	"github.com/jafarshop/shopgateway/internal/terminal"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Terminal.shop gateway",
		zap.String("environment", cfg.Environment),
		zap.String("terminal_base_url", cfg.Terminal.BaseURL),
		zap.Bool("terminal_token_set", cfg.Terminal.HasToken()),
		zap.Int("terminal_max_attempts", cfg.Terminal.MaxAttempts),
		zap.Bool("database_enabled", cfg.Database.Enabled()),
	)

	// Optional database for gateway keys and the invocation ledger
	var (
		db    *sql.DB
		repos *repository.Repositories
		opts  []operations.Option
	)
	if cfg.Database.Enabled() {
		db, err = postgres.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			logger.Fatal("Failed to prepare database schema", zap.Error(err))
		}

		repos = postgres.NewRepositories(db, logger)
		opts = append(opts, operations.WithRecorder(repos.Invocation))
	} else {
		logger.Warn("DB_HOST not set; gateway authentication and invocation ledger are disabled")
	}

	// Wire client, services and the operation catalog
	client := terminal.NewClient(cfg.Terminal, logger)
	services := service.NewServices(client, logger)

	catalog, err := operations.NewCatalog(services, logger, opts...)
	if err != nil {
		logger.Fatal("Failed to build operation catalog", zap.Error(err))
	}

	router := api.NewRouter(cfg, catalog, repos, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Terminal.CallBudget() + 10*time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
