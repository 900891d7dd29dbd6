// Package packager compresses per-hero statistics into the bounded web
// artifact: deck_data.json (card index plus every hero) and heroes.json (a
// flat list for pickers and search).
//
// The packager never re-derives statistics. It only selects and rescales
// values the build stage already computed.
package packager

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/albapepper/champions-data/internal/config"
	"github.com/albapepper/champions-data/internal/cooccurrence"
	"github.com/albapepper/champions-data/internal/provider"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Params bounds the artifact.
type Params struct {
	TopCards int // cards kept per bucket
	TopPairs int // partners kept per kept card
}

// Aspect is a compressed bucket. Every fraction is a percentage with one
// decimal place.
type Aspect struct {
	DeckCount         int                           `json:"deck_count"`
	WeightedDeckCount float64                       `json:"weighted_deck_count"`
	CardFrequency     map[string]float64            `json:"card_frequency"`
	CardPairs         map[string]map[string]float64 `json:"card_pairs"`
	CopyRates         map[string][2]float64         `json:"copy_rates"`
}

// Hero is one hero's entry in deck_data.json.
type Hero struct {
	HeroName           string            `json:"hero_name"`
	AlterEgo           *string           `json:"alter_ego"`
	TotalDecks         int               `json:"total_decks"`
	TotalWeightedDecks float64           `json:"total_weighted_decks"`
	MostRecentDeckDate string            `json:"most_recent_deck_date"`
	Aspects            map[string]Aspect `json:"aspects"`
}

// DeckData is the full web artifact.
type DeckData struct {
	CardIndex provider.CardIndex `json:"card_index"`
	Heroes    map[string]Hero    `json:"heroes"`
}

// HeroListing is one row of heroes.json.
type HeroListing struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	AlterEgo   *string `json:"alter_ego"`
	Traits     string  `json:"traits"`
	ImageSrc   string  `json:"imagesrc"`
	TotalDecks int     `json:"total_decks"`
}

// Stats counts what made it into the artifact.
type Stats struct {
	FrequencyEntries int
	PairEntries      int
}

// --------------------------------------------------------------------------
// Compression
// --------------------------------------------------------------------------

type scored struct {
	code  string
	value float64
}

// topN sorts by value descending, ties by code ascending, and keeps n.
func topN(m map[string]float64, n int, keep func(string) bool) []scored {
	out := make([]scored, 0, len(m))
	for code, v := range m {
		if keep == nil || keep(code) {
			out = append(out, scored{code, v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].value != out[j].value {
			return out[i].value > out[j].value
		}
		return out[i].code < out[j].code
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// percent converts a fraction to a percentage with one decimal, rounding
// the exact product half to even.
func percent(v float64) float64 {
	p, _ := strconv.ParseFloat(strconv.FormatFloat(v*100, 'f', 1, 64), 64)
	return p
}

// CompressAspect keeps the TopCards most frequent cards, and for each kept
// card its TopPairs strongest partners among the other kept cards. Copy
// rates are emitted for kept cards only.
func CompressAspect(b cooccurrence.Bucket, p Params) Aspect {
	top := topN(b.CardFrequency, p.TopCards, nil)
	kept := make(map[string]bool, len(top))
	freq := make(map[string]float64, len(top))
	for _, s := range top {
		kept[s.code] = true
		freq[s.code] = percent(s.value)
	}

	pairs := make(map[string]map[string]float64)
	for a, row := range b.CardPairs {
		if !kept[a] {
			continue
		}
		partners := topN(row, p.TopPairs, func(code string) bool { return kept[code] })
		if len(partners) == 0 {
			continue
		}
		out := make(map[string]float64, len(partners))
		for _, s := range partners {
			out[s.code] = percent(s.value)
		}
		pairs[a] = out
	}

	rates := make(map[string][2]float64)
	for code := range kept {
		if r, ok := b.CopyRates[code]; ok {
			rates[code] = [2]float64{percent(r[0]), percent(r[1])}
		}
	}

	return Aspect{
		DeckCount:         b.DeckCount,
		WeightedDeckCount: b.WeightedDeckCount,
		CardFrequency:     freq,
		CardPairs:         pairs,
		CopyRates:         rates,
	}
}

// --------------------------------------------------------------------------
// Assembly
// --------------------------------------------------------------------------

// Build compresses every hero result and produces the listing, sorted by
// name with ties broken by code.
func Build(results []*cooccurrence.HeroResult, index provider.CardIndex, meta map[string]HeroMeta, p Params) (*DeckData, []HeroListing, Stats) {
	var stats Stats
	data := &DeckData{
		CardIndex: index,
		Heroes:    make(map[string]Hero, len(results)),
	}
	listing := make([]HeroListing, 0, len(results))

	for _, r := range results {
		aspects := make(map[string]Aspect, len(r.Aspects))
		for key, b := range r.Aspects {
			a := CompressAspect(b, p)
			aspects[key] = a
			stats.FrequencyEntries += len(a.CardFrequency)
			for _, row := range a.CardPairs {
				stats.PairEntries += len(row)
			}
		}

		m := meta[r.HeroCode]
		data.Heroes[r.HeroCode] = Hero{
			HeroName:           r.HeroName,
			AlterEgo:           m.AlterEgo,
			TotalDecks:         r.TotalDecks,
			TotalWeightedDecks: r.TotalWeightedDecks,
			MostRecentDeckDate: r.MostRecentDeckDate,
			Aspects:            aspects,
		}
		listing = append(listing, HeroListing{
			Code:       r.HeroCode,
			Name:       r.HeroName,
			AlterEgo:   m.AlterEgo,
			Traits:     m.Traits,
			ImageSrc:   m.ImageSrc,
			TotalDecks: r.TotalDecks,
		})
	}

	sort.Slice(listing, func(i, j int) bool {
		if listing[i].Name != listing[j].Name {
			return listing[i].Name < listing[j].Name
		}
		return listing[i].Code < listing[j].Code
	})
	return data, listing, stats
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

// WriteReport describes the written artifact.
type WriteReport struct {
	DeckDataBytes int64
	HeroesBytes   int64
	OverTarget    bool
}

// Write persists both artifacts into dir. deck_data.json is minified and
// heroes.json pretty-printed. Exceeding sizeTarget is reported, not failed.
func Write(dir string, data *DeckData, listing []HeroListing, sizeTarget int64, logger *slog.Logger) (*WriteReport, error) {
	report := &WriteReport{}

	n, err := provider.WriteJSON(filepath.Join(dir, config.DeckDataFile), data, "")
	if err != nil {
		return nil, fmt.Errorf("write deck data: %w", err)
	}
	report.DeckDataBytes = n

	n, err = provider.WriteJSON(filepath.Join(dir, config.HeroesFile), listing, "  ")
	if err != nil {
		return nil, fmt.Errorf("write hero list: %w", err)
	}
	report.HeroesBytes = n

	logger.Info("Artifact written",
		"deck_data_mb", fmt.Sprintf("%.2f", float64(report.DeckDataBytes)/1024/1024),
		"heroes_kb", fmt.Sprintf("%.1f", float64(report.HeroesBytes)/1024))

	if sizeTarget > 0 && report.DeckDataBytes > sizeTarget {
		report.OverTarget = true
		logger.Warn("deck_data.json exceeds size target; consider lowering the top-card or top-pair caps",
			"bytes", report.DeckDataBytes, "target", sizeTarget)
	}
	return report, nil
}
