package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/champions-data/internal/api/respond"
	"github.com/albapepper/champions-data/internal/artifact"
	"github.com/albapepper/champions-data/internal/cache"
	"github.com/albapepper/champions-data/internal/cooccurrence"
	"github.com/albapepper/champions-data/internal/metrics"
	"github.com/albapepper/champions-data/internal/packager"
	"github.com/albapepper/champions-data/internal/provider"
)

// serveCached writes the body produced by build, keyed per snapshot so a
// reload never serves a body encoded from the previous artifact. build
// returns nil when the resource does not exist.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, build func(*artifact.Snapshot) (any, bool)) {
	snap := h.store.Current()
	if snap == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "ARTIFACT_NOT_LOADED", "No artifact has been loaded yet")
		return
	}

	cacheKey := snap.ETag + ":" + key
	ttl := h.cache.TTL()

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			metrics.CacheResults.WithLabelValues("not_modified").Inc()
			respond.WriteNotModified(w, etag)
			return
		}
		metrics.CacheResults.WithLabelValues("hit").Inc()
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, ok := build(snap)
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No data found for "+key)
		return
	}
	data, err := provider.Encode(v, "")
	if err != nil {
		// Encoder errors can echo payload fragments; keep them out of production.
		if h.cfg.IsProduction() {
			respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Failed to encode response")
			return
		}
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "ENCODE_FAILED", "Failed to encode response", err.Error())
		return
	}

	metrics.CacheResults.WithLabelValues("miss").Inc()
	etag := h.cache.Set(cacheKey, data)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// ListHeroes returns the hero listing, optionally filtered by name.
// @Summary List heroes
// @Description Returns every hero in the artifact sorted by name. q filters by a case-insensitive substring of the hero or alter-ego name.
// @Tags heroes
// @Produce json
// @Param q query string false "Name filter"
// @Success 200 {array} packager.HeroListing
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/heroes [get]
func (h *Handler) ListHeroes(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	h.serveCached(w, r, "heroes:"+q, func(s *artifact.Snapshot) (any, bool) {
		if q == "" {
			return s.Heroes, true
		}
		out := make([]packager.HeroListing, 0)
		for _, hero := range s.Heroes {
			if matchesName(hero, q) {
				out = append(out, hero)
			}
		}
		return out, true
	})
}

func matchesName(hero packager.HeroListing, q string) bool {
	if strings.Contains(strings.ToLower(hero.Name), q) {
		return true
	}
	return hero.AlterEgo != nil && strings.Contains(strings.ToLower(*hero.AlterEgo), q)
}

// GetHero returns one hero with every aspect bucket.
// @Summary Get hero
// @Description Returns a hero's compressed statistics for every aspect bucket.
// @Tags heroes
// @Produce json
// @Param code path string true "Canonical hero code"
// @Success 200 {object} packager.Hero
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/heroes/{code} [get]
func (h *Handler) GetHero(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	h.serveCached(w, r, "hero:"+code, func(s *artifact.Snapshot) (any, bool) {
		return s.Hero(code)
	})
}

// GetHeroAspect returns a single aspect bucket for a hero.
// @Summary Get hero aspect
// @Description Returns one compressed bucket. aspect is "all" or one of the four aspects.
// @Tags heroes
// @Produce json
// @Param code path string true "Canonical hero code"
// @Param aspect path string true "Bucket" Enums(all, aggression, justice, leadership, protection)
// @Success 200 {object} packager.Aspect
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/heroes/{code}/aspects/{aspect} [get]
func (h *Handler) GetHeroAspect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	bucket, ok := parseBucket(chi.URLParam(r, "aspect"))
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ASPECT",
			"aspect must be one of: all, aggression, justice, leadership, protection")
		return
	}
	h.serveCached(w, r, "hero:"+code+":"+bucket, func(s *artifact.Snapshot) (any, bool) {
		hero, ok := s.Hero(code)
		if !ok {
			return nil, false
		}
		a, ok := hero.Aspects[bucket]
		return a, ok
	})
}

func parseBucket(label string) (string, bool) {
	if strings.EqualFold(label, cooccurrence.BucketAll) {
		return cooccurrence.BucketAll, true
	}
	a, ok := provider.ParseAspect(label)
	return string(a), ok
}

// GetCard returns one card index entry.
// @Summary Get card
// @Description Returns a card's display entry from the artifact's card index.
// @Tags cards
// @Produce json
// @Param code path string true "Card code"
// @Success 200 {object} provider.CardIndexEntry
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/cards/{code} [get]
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	h.serveCached(w, r, "card:"+code, func(s *artifact.Snapshot) (any, bool) {
		c, ok := s.Data.CardIndex[code]
		return c, ok
	})
}

// GetDeckData returns the complete artifact.
// @Summary Get deck data
// @Description Returns deck_data.json as loaded: the card index plus every hero.
// @Tags artifact
// @Produce json
// @Success 200 {object} packager.DeckData
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/deck-data [get]
func (h *Handler) GetDeckData(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "deck-data", func(s *artifact.Snapshot) (any, bool) {
		return s.Data, true
	})
}
