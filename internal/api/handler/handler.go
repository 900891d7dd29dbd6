// Package handler provides HTTP handlers for all API endpoints.
// Handlers read the in-memory artifact snapshot; encoded bodies are cached
// per snapshot and served with weak ETags.
package handler

import (
	"net/http"
	"time"

	"github.com/albapepper/champions-data/internal/api/respond"
	"github.com/albapepper/champions-data/internal/artifact"
	"github.com/albapepper/champions-data/internal/cache"
	"github.com/albapepper/champions-data/internal/config"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store *artifact.Store
	cache *cache.Cache
	cfg   *config.Config
}

// New creates a Handler with shared dependencies.
func New(store *artifact.Store, c *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{
		store: store,
		cache: c,
		cfg:   cfg,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and available optimizations.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":        "Champions Data API",
		"version":     "1.0.0",
		"status":      "running",
		"environment": h.cfg.Environment,
		"docs":        "/docs",
		"optimizations": []string{
			"in_memory_artifact",
			"hot_reload",
			"gzip_compression",
			"in_memory_cache",
			"etag_support",
		},
	})
}

// HealthCheck returns basic health status plus the loaded artifact.
// @Summary Health check
// @Description Returns health status, timestamp, and the generation of the served artifact. Unhealthy until an artifact is loaded.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	if snap == nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"artifact":  "not_loaded",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"artifact": map[string]interface{}{
			"etag":      snap.ETag,
			"heroes":    len(snap.Data.Heroes),
			"cards":     len(snap.Data.CardIndex),
			"loaded_at": snap.LoadedAt.Format(time.RFC3339),
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, hits, misses, purges).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
