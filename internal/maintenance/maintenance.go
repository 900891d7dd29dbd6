// Package maintenance runs the API's periodic background tasks as Go
// tickers: a polling fallback for artifact reloads on filesystems where
// change events are unreliable, and a cache usage report.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/champions-data/internal/artifact"
	"github.com/albapepper/champions-data/internal/cache"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	RescanInterval time.Duration // Reload the artifact if it changed on disk
	StatsInterval  time.Duration // Log cache hit/miss counters
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		RescanInterval: 5 * time.Minute,
		StatsInterval:  1 * time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, store *artifact.Store, c *cache.Cache, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"rescan", cfg.RescanInterval,
		"stats", cfg.StatsInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Rescan: catch artifact rewrites the watcher missed
	if cfg.RescanInterval > 0 {
		t := time.NewTicker(cfg.RescanInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { rescan(store, logger) })
	}

	// Stats: periodic cache usage line
	if cfg.StatsInterval > 0 {
		t := time.NewTicker(cfg.StatsInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { reportCache(c, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// rescan reloads the artifact when deck_data.json no longer matches the
// loaded snapshot.
func rescan(store *artifact.Store, logger *slog.Logger) {
	stale, err := store.Stale()
	if err != nil {
		logger.Warn("Rescan: failed to stat artifact", "dir", store.Dir(), "error", err)
		return
	}
	if !stale {
		return
	}
	if err := store.Load(); err != nil {
		logger.Warn("Rescan: reload failed; keeping previous snapshot", "error", err)
		return
	}
	logger.Info("Rescan: artifact reloaded", "dir", store.Dir())
}

func reportCache(c *cache.Cache, logger *slog.Logger) {
	stats := c.Stats()
	logger.Info("Cache stats",
		"active_keys", stats["active_keys"],
		"hits", stats["hits"],
		"misses", stats["misses"],
		"purges", stats["purges"])
}
