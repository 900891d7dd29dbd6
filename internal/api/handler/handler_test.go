package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/champions-data/internal/artifact"
	"github.com/albapepper/champions-data/internal/cache"
	"github.com/albapepper/champions-data/internal/config"
	"github.com/albapepper/champions-data/internal/cooccurrence"
	"github.com/albapepper/champions-data/internal/packager"
	"github.com/albapepper/champions-data/internal/provider"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func heroResult(code, name string) *cooccurrence.HeroResult {
	return &cooccurrence.HeroResult{
		HeroCode:           code,
		HeroName:           name,
		TotalDecks:         10,
		TotalWeightedDecks: 7.5,
		MostRecentDeckDate: "2024-03-01",
		Aspects: map[string]cooccurrence.Bucket{
			cooccurrence.BucketAll: {
				DeckCount:     10,
				CardFrequency: map[string]float64{"01050": 0.8, "01051": 0.4},
				CardPairs:     map[string]map[string]float64{"01050": {"01051": 0.4}},
				CopyRates:     map[string][2]float64{"01050": {0.5, 0}},
			},
			string(provider.Justice): {
				DeckCount:     4,
				CardFrequency: map[string]float64{"01050": 1},
			},
		},
	}
}

// newTestRouter mounts the handlers on a bare router over a freshly written
// artifact. Passing load=false leaves the store empty.
func newTestRouter(t *testing.T, load bool) (http.Handler, *artifact.Store) {
	t.Helper()
	dir := t.TempDir()
	results := []*cooccurrence.HeroResult{
		heroResult("01001a", "Spider-Man"),
		heroResult("01010a", "Captain Marvel"),
	}
	cards := []provider.Card{
		{Code: "01050", Name: "Swinging Web Kick", TypeName: "Event"},
		{Code: "01001b", Name: "Peter Parker", TypeCode: provider.TypeAlterEgo},
		{Code: "01001a", Name: "Spider-Man", TypeCode: provider.TypeHero},
	}
	data, listing, _ := packager.Build(results, provider.BuildCardIndex(cards), packager.HeroMetadata(cards),
		packager.Params{TopCards: 75, TopPairs: 50})
	_, err := packager.Write(dir, data, listing, 0, discardLogger())
	require.NoError(t, err)

	store := artifact.NewStore(dir, discardLogger())
	if load {
		require.NoError(t, store.Load())
	}
	c := cache.New(true, time.Minute)
	store.PurgeOnReload(c)

	h := New(store, c, &config.Config{Environment: "staging"})
	r := chi.NewRouter()
	r.Get("/", h.Root)
	r.Get("/health", h.HealthCheck)
	r.Get("/health/cache", h.HealthCheckCache)
	r.Get("/heroes", h.ListHeroes)
	r.Get("/heroes/{code}", h.GetHero)
	r.Get("/heroes/{code}/aspects/{aspect}", h.GetHeroAspect)
	r.Get("/cards/{code}", h.GetCard)
	r.Get("/deck-data", h.GetDeckData)
	return r, store
}

func get(t *testing.T, h http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListHeroes(t *testing.T) {
	r, _ := newTestRouter(t, true)

	rec := get(t, r, "/heroes")
	require.Equal(t, http.StatusOK, rec.Code)
	var heroes []packager.HeroListing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &heroes))
	require.Len(t, heroes, 2)
	assert.Equal(t, "Captain Marvel", heroes[0].Name)

	rec = get(t, r, "/heroes?q=parker")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &heroes))
	require.Len(t, heroes, 1)
	assert.Equal(t, "01001a", heroes[0].Code)

	rec = get(t, r, "/heroes?q=nobody")
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetHero(t *testing.T) {
	r, _ := newTestRouter(t, true)

	rec := get(t, r, "/heroes/01001a")
	require.Equal(t, http.StatusOK, rec.Code)
	var hero packager.Hero
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hero))
	assert.Equal(t, "Spider-Man", hero.HeroName)
	require.NotNil(t, hero.AlterEgo)
	assert.Equal(t, "Peter Parker", *hero.AlterEgo)
	assert.Equal(t, 80.0, hero.Aspects[cooccurrence.BucketAll].CardFrequency["01050"])

	rec = get(t, r, "/heroes/99999a")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetHeroAspect(t *testing.T) {
	r, _ := newTestRouter(t, true)

	rec := get(t, r, "/heroes/01001a/aspects/Justice")
	require.Equal(t, http.StatusOK, rec.Code)
	var a packager.Aspect
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, 4, a.DeckCount)

	rec = get(t, r, "/heroes/01001a/aspects/all")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, r, "/heroes/01001a/aspects/protection")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, r, "/heroes/01001a/aspects/pool")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ASPECT")
}

func TestGetCard(t *testing.T) {
	r, _ := newTestRouter(t, true)

	rec := get(t, r, "/cards/01050")
	require.Equal(t, http.StatusOK, rec.Code)
	var entry provider.CardIndexEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	require.NotNil(t, entry.Name)
	assert.Equal(t, "Swinging Web Kick", *entry.Name)
	assert.Nil(t, entry.FactionName)

	assert.Equal(t, http.StatusNotFound, get(t, r, "/cards/nope").Code)
}

func TestCachingAndETag(t *testing.T) {
	r, _ := newTestRouter(t, true)

	first := get(t, r, "/deck-data")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := get(t, r, "/deck-data")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	notModified := get(t, r, "/deck-data", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, notModified.Code)
	assert.Empty(t, notModified.Body.String())
}

func TestReloadPurgesCache(t *testing.T) {
	r, store := newTestRouter(t, true)

	require.Equal(t, "MISS", get(t, r, "/heroes").Header().Get("X-Cache"))
	require.Equal(t, "HIT", get(t, r, "/heroes").Header().Get("X-Cache"))

	require.NoError(t, store.Load())
	assert.Equal(t, "MISS", get(t, r, "/heroes").Header().Get("X-Cache"))
}

func TestNotLoaded(t *testing.T) {
	r, _ := newTestRouter(t, false)

	rec := get(t, r, "/heroes")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "ARTIFACT_NOT_LOADED")

	rec = get(t, r, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_loaded")
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, true)

	rec := get(t, r, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status   string `json:"status"`
		Artifact struct {
			Heroes int `json:"heroes"`
			Cards  int `json:"cards"`
		} `json:"artifact"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, 2, body.Artifact.Heroes)
	assert.Equal(t, 3, body.Artifact.Cards)

	rec = get(t, r, "/health/cache")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hits"`)
}

func TestRootReportsEnvironment(t *testing.T) {
	r, _ := newTestRouter(t, false)

	rec := get(t, r, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Name        string `json:"name"`
		Environment string `json:"environment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Champions Data API", body.Name)
	assert.Equal(t, "staging", body.Environment)
}
