// Command api serves the packaged deck statistics artifact over HTTP and
// reloads it whenever the pipeline rewrites it.
//
// Usage:
//
//	champions-api
//	API_PORT=8080 DATA_DIR=./data champions-api

// @title Champions Data API
// @version 1.0
// @description Read-only API over the packaged Marvel Champions deck statistics artifact.
// @host localhost:8000
// @BasePath /
// @schemes http https
// @contact.name Champions Data
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/champions-data/internal/api"
	"github.com/albapepper/champions-data/internal/artifact"
	"github.com/albapepper/champions-data/internal/cache"
	"github.com/albapepper/champions-data/internal/config"
	"github.com/albapepper/champions-data/internal/maintenance"
	"github.com/albapepper/champions-data/internal/metrics"

	_ "github.com/albapepper/champions-data/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	metrics.Init()

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled, cfg.CacheTTL)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled, "ttl", cfg.CacheTTL)

	// Load the artifact. A missing artifact is not fatal: the watcher picks
	// it up once the packager writes it.
	webDir := cfg.Path(config.WebDir)
	store := artifact.NewStore(webDir, logger)
	store.PurgeOnReload(appCache)
	if err := store.Load(); err != nil {
		logger.Warn("No artifact loaded yet; serving 503 until one is written", "dir", webDir, "error", err)
	}

	if err := os.MkdirAll(webDir, 0o755); err != nil {
		logger.Error("Failed to create artifact directory", "dir", webDir, "error", err)
		os.Exit(1)
	}
	go func() {
		if err := store.Watch(ctx); err != nil {
			logger.Error("Artifact watcher stopped", "error", err)
		}
	}()

	// Start maintenance tickers (rescan fallback, cache report)
	go maintenance.Start(ctx, store, appCache, maintenance.DefaultConfig(), logger)

	// Create router
	router := api.NewRouter(store, appCache, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Champions Data API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
