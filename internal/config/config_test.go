package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG", "")
	t.Setenv("FREQUENCY_THRESHOLD", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("FETCH_START_DATE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPipeline(), cfg.Pipeline)
	assert.Equal(t, "2019-11-01", cfg.FetchStartDate.Format("2006-01-02"))
	assert.Equal(t, filepath.Join("data", "processed", "cooccurrence"), cfg.Path(CooccurrenceDir))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG", "")
	t.Setenv("FREQUENCY_THRESHOLD", "0.1")
	t.Setenv("TOP_CARDS_PER_ASPECT", "20")
	t.Setenv("DATA_DIR", "/srv/champions")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.1, cfg.Pipeline.FrequencyThreshold, 1e-12)
	assert.Equal(t, 20, cfg.Pipeline.TopCardsPerAspect)
	assert.Equal(t, filepath.Join("/srv/champions", "web", "heroes.json"), filepath.Join(cfg.Path(WebDir), HeroesFile))
}

func TestLoadTOMLOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	body := `
[build]
frequency-threshold = 0.2
weight-floor = 0.1

[package]
top-pairs = 10
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("PIPELINE_CONFIG", path)
	t.Setenv("FREQUENCY_THRESHOLD", "0.07")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.2, cfg.Pipeline.FrequencyThreshold, 1e-12)
	assert.InDelta(t, 0.1, cfg.Pipeline.WeightFloor, 1e-12)
	assert.Equal(t, 10, cfg.Pipeline.TopPairsPerCard)
	assert.Equal(t, 75, cfg.Pipeline.TopCardsPerAspect)
}

func TestLoadTOMLFetchStartDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	body := `
[fetch]
start-date = 2021-03-15
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("PIPELINE_CONFIG", path)
	t.Setenv("FETCH_START_DATE", "2020-01-01")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "2021-03-15", cfg.FetchStartDate.Format("2006-01-02"))
	assert.Equal(t, time.UTC, cfg.FetchStartDate.Location())
}

func TestIsProduction(t *testing.T) {
	assert.True(t, (&Config{Environment: "production"}).IsProduction())
	assert.False(t, (&Config{Environment: "development"}).IsProduction())
}

func TestLoadFileMissingIsNotError(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Build.FrequencyThreshold)
}

func TestPipelineValidate(t *testing.T) {
	p := DefaultPipeline()
	require.NoError(t, p.Validate())

	bad := p
	bad.HalfLifeDays = 0
	assert.Error(t, bad.Validate())

	bad = p
	bad.FrequencyThreshold = 1.5
	assert.Error(t, bad.Validate())

	bad = p
	bad.Workers = 0
	assert.Error(t, bad.Validate())
}
