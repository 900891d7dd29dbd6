// Package filter drops decklists that are incomplete or too small to say
// anything about card choices.
package filter

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/albapepper/champions-data/internal/provider"
)

// Report counts what the filter removed and kept.
type Report struct {
	Total       int
	NoHero      int
	TooFewCards int
	BadDate     int
	Kept        int
	MinCards    int
	HeroCounts  map[string]int // hero name -> kept decks
	AvgDeckSize float64
}

// Removed is the total number of dropped decks.
func (r Report) Removed() int {
	return r.Total - r.Kept
}

// Summary returns a human-readable summary.
func (r Report) Summary() string {
	return fmt.Sprintf("total=%d kept=%d no_hero=%d too_few_cards=%d bad_date=%d heroes=%d avg_size=%.1f",
		r.Total, r.Kept, r.NoHero, r.TooFewCards, r.BadDate, len(r.HeroCounts), r.AvgDeckSize)
}

// HeroCount is one row of the top-heroes report.
type HeroCount struct {
	Name  string
	Decks int
}

// TopHeroes returns the n heroes with the most kept decks.
func (r Report) TopHeroes(n int) []HeroCount {
	out := make([]HeroCount, 0, len(r.HeroCounts))
	for name, count := range r.HeroCounts {
		out = append(out, HeroCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Decks != out[j].Decks {
			return out[i].Decks > out[j].Decks
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Apply keeps decks that have a hero, at least minCards total copies, and
// a parseable creation date. Input order is preserved.
func Apply(decks []provider.Deck, minCards int) ([]provider.Deck, Report) {
	r := Report{
		Total:      len(decks),
		MinCards:   minCards,
		HeroCounts: make(map[string]int),
	}
	kept := make([]provider.Deck, 0, len(decks))
	cards := 0
	for _, d := range decks {
		if d.HeroCode == "" {
			r.NoHero++
			continue
		}
		size := d.CardCount()
		if size < minCards {
			r.TooFewCards++
			continue
		}
		if _, err := provider.ParseTime(d.DateCreation); err != nil {
			r.BadDate++
			continue
		}
		kept = append(kept, d)
		cards += size
		name := d.HeroName
		if name == "" {
			name = "Unknown"
		}
		r.HeroCounts[name]++
	}
	r.Kept = len(kept)
	if r.Kept > 0 {
		r.AvgDeckSize = float64(cards) / float64(r.Kept)
	}
	return kept, r
}

// Log writes the filter report.
func (r Report) Log(logger *slog.Logger) {
	pct := func(n int) string {
		if r.Total == 0 {
			return "0.0"
		}
		return fmt.Sprintf("%.1f", float64(n)*100/float64(r.Total))
	}
	logger.Info("Filter report",
		"total", r.Total,
		"no_hero", r.NoHero,
		"too_few_cards", r.TooFewCards,
		"min_cards", r.MinCards,
		"bad_date", r.BadDate,
		"removed", r.Removed(), "removed_pct", pct(r.Removed()),
		"kept", r.Kept, "kept_pct", pct(r.Kept))
	for i, h := range r.TopHeroes(20) {
		logger.Info("Top hero", "rank", i+1, "hero", h.Name, "decks", h.Decks)
	}
	logger.Info("Deck sizes", "unique_heroes", len(r.HeroCounts), "avg_size", fmt.Sprintf("%.1f", r.AvgDeckSize))
}
