// Package config provides centralized configuration loaded from environment
// variables, with pipeline tunables optionally overridden by a TOML file.
// Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Data layout: file names under DataDir
// --------------------------------------------------------------------------

const (
	RawCardsFile      = "raw/cards.json"
	RawDecksFile      = "raw/decklists_raw.json"
	ProgressFile      = "raw/decklists_progress.db"
	CardIndexFile     = "processed/card_index.json"
	FilteredDecksFile = "processed/filtered_decks.json"
	CooccurrenceDir   = "processed/cooccurrence"
	WebDir            = "web"
	DeckDataFile      = "deck_data.json"
	HeroesFile        = "heroes.json"
)

// Database tables written by the publish stage.
const (
	HeroCooccurrenceTable = "hero_cooccurrence"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Storage
	DataDir string

	// Catalog provider
	MarvelCDBBaseURL   string
	RequestsPerMinute  int
	UserAgent          string
	FetchStartDate     time.Time
	ProgressLogEvery   int
	RetryBackoff       time.Duration
	HTTPRequestTimeout time.Duration

	// Database (publish only)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
	CacheTTL     time.Duration

	// Statistics pipeline
	Pipeline Pipeline
}

// Pipeline holds every tunable of the statistics and packaging stages.
type Pipeline struct {
	FrequencyThreshold float64
	WeightFloor        float64
	HalfLifeDays       float64
	TopCardsPerAspect  int
	TopPairsPerCard    int
	SizeTargetBytes    int64
	MinDeckCards       int
	SmallHeroDecks     int
	Workers            int
}

// DefaultPipeline returns the production defaults.
func DefaultPipeline() Pipeline {
	return Pipeline{
		FrequencyThreshold: 0.05,
		WeightFloor:        0.0,
		HalfLifeDays:       365,
		TopCardsPerAspect:  75,
		TopPairsPerCard:    50,
		SizeTargetBytes:    10 * 1024 * 1024,
		MinDeckCards:       40,
		SmallHeroDecks:     20,
		Workers:            4,
	}
}

// Load reads configuration from environment variables with sensible defaults.
// If PIPELINE_CONFIG points at a TOML file, its values override the env.
func Load() (*Config, error) {
	start, err := time.Parse("2006-01-02", envOr("FETCH_START_DATE", "2019-11-01"))
	if err != nil {
		return nil, fmt.Errorf("FETCH_START_DATE: %w", err)
	}

	def := DefaultPipeline()
	cfg := &Config{
		DataDir: envOr("DATA_DIR", "data"),

		MarvelCDBBaseURL:   envOr("MARVELCDB_BASE_URL", "https://marvelcdb.com/api/public"),
		RequestsPerMinute:  envInt("MARVELCDB_REQUESTS_PER_MINUTE", 60),
		UserAgent:          envOr("MARVELCDB_USER_AGENT", "ChampionsDeckBuilder/1.0"),
		FetchStartDate:     start,
		ProgressLogEvery:   envInt("FETCH_PROGRESS_LOG_EVERY", 30),
		RetryBackoff:       time.Duration(envInt("FETCH_RETRY_BACKOFF_SECONDS", 3)) * time.Second,
		HTTPRequestTimeout: time.Duration(envInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,

		DatabaseURL:    envOr("DATABASE_URL", envOr("NEON_DATABASE_URL", "")),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:4321",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
		CacheTTL:     time.Duration(envInt("CACHE_TTL_MINUTES", 60)) * time.Minute,

		Pipeline: Pipeline{
			FrequencyThreshold: envFloat("FREQUENCY_THRESHOLD", def.FrequencyThreshold),
			WeightFloor:        envFloat("WEIGHT_FLOOR", def.WeightFloor),
			HalfLifeDays:       envFloat("DECAY_HALF_LIFE_DAYS", def.HalfLifeDays),
			TopCardsPerAspect:  envInt("TOP_CARDS_PER_ASPECT", def.TopCardsPerAspect),
			TopPairsPerCard:    envInt("TOP_PAIRS_PER_CARD", def.TopPairsPerCard),
			SizeTargetBytes:    int64(envInt("WEB_SIZE_TARGET_BYTES", int(def.SizeTargetBytes))),
			MinDeckCards:       envInt("MIN_DECK_CARDS", def.MinDeckCards),
			SmallHeroDecks:     envInt("SMALL_HERO_DECKS", def.SmallHeroDecks),
			Workers:            envInt("BUILD_WORKERS", def.Workers),
		},
	}

	if path := os.Getenv("PIPELINE_CONFIG"); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		fileCfg.Apply(cfg)
	}

	if err := cfg.Pipeline.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path joins a data-layout constant onto DataDir.
func (c *Config) Path(rel string) string {
	return filepath.Join(c.DataDir, filepath.FromSlash(rel))
}

// RequireDatabase reports an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL or NEON_DATABASE_URL must be set")
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects tunables that would make the statistics meaningless.
func (p Pipeline) Validate() error {
	if p.FrequencyThreshold < 0 || p.FrequencyThreshold > 1 {
		return fmt.Errorf("frequency threshold must be between 0 and 1, got %g", p.FrequencyThreshold)
	}
	if p.HalfLifeDays <= 0 {
		return fmt.Errorf("decay half-life must be > 0, got %g", p.HalfLifeDays)
	}
	if p.WeightFloor < 0 || p.WeightFloor > 1 {
		return fmt.Errorf("weight floor must be between 0 and 1, got %g", p.WeightFloor)
	}
	if p.TopCardsPerAspect <= 0 {
		return fmt.Errorf("top cards per aspect must be > 0")
	}
	if p.TopPairsPerCard <= 0 {
		return fmt.Errorf("top pairs per card must be > 0")
	}
	if p.MinDeckCards < 0 {
		return fmt.Errorf("min deck cards must be >= 0")
	}
	if p.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	return nil
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
