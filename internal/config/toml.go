package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the optional TOML pipeline file. Every field is a
// pointer so that only keys present in the file override the environment.
type FileConfig struct {
	Fetch   FetchFile   `toml:"fetch"`
	Build   BuildFile   `toml:"build"`
	Package PackageFile `toml:"package"`
	Filter  FilterFile  `toml:"filter"`
}

// FetchFile maps [fetch] settings. start-date is a TOML local date.
type FetchFile struct {
	StartDate *time.Time `toml:"start-date"`
}

// BuildFile maps [build] settings.
type BuildFile struct {
	FrequencyThreshold *float64 `toml:"frequency-threshold"`
	WeightFloor        *float64 `toml:"weight-floor"`
	HalfLifeDays       *float64 `toml:"half-life-days"`
	SmallHeroDecks     *int     `toml:"small-hero-decks"`
	Workers            *int     `toml:"workers"`
}

// PackageFile maps [package] settings.
type PackageFile struct {
	TopCards        *int   `toml:"top-cards"`
	TopPairs        *int   `toml:"top-pairs"`
	SizeTargetBytes *int64 `toml:"size-target-bytes"`
}

// FilterFile maps [filter] settings.
type FilterFile struct {
	MinDeckCards *int `toml:"min-deck-cards"`
}

// LoadFile reads a TOML pipeline file. Missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Apply copies every set field onto c.
func (f FileConfig) Apply(c *Config) {
	if d := f.Fetch.StartDate; d != nil {
		c.FetchStartDate = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	p := &c.Pipeline
	setFloat(&p.FrequencyThreshold, f.Build.FrequencyThreshold)
	setFloat(&p.WeightFloor, f.Build.WeightFloor)
	setFloat(&p.HalfLifeDays, f.Build.HalfLifeDays)
	setInt(&p.SmallHeroDecks, f.Build.SmallHeroDecks)
	setInt(&p.Workers, f.Build.Workers)
	setInt(&p.TopCardsPerAspect, f.Package.TopCards)
	setInt(&p.TopPairsPerCard, f.Package.TopPairs)
	if f.Package.SizeTargetBytes != nil {
		p.SizeTargetBytes = *f.Package.SizeTargetBytes
	}
	setInt(&p.MinDeckCards, f.Filter.MinDeckCards)
}

func setFloat(target, value *float64) {
	if value != nil {
		*target = *value
	}
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}
