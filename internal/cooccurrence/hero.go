// Package cooccurrence computes recency-weighted card statistics per hero
// and aspect: inclusion frequency, pairwise co-occurrence, and copy-count
// rates. One HeroResult is produced per canonical hero and persisted on its
// own, so a partial run leaves complete files behind.
package cooccurrence

import (
	"fmt"
	"time"

	"github.com/albapepper/champions-data/internal/provider"
)

// Params are the tunables of the statistics engine.
type Params struct {
	Threshold float64
	Decay     Decay
}

// HeroResult is the persisted unit of work for one canonical hero.
type HeroResult struct {
	HeroCode           string            `json:"hero_code"`
	HeroName           string            `json:"hero_name"`
	TotalDecks         int               `json:"total_decks"`
	TotalWeightedDecks float64           `json:"total_weighted_decks"`
	DecayHalfLifeDays  float64           `json:"decay_half_life_days"`
	MostRecentDeckDate string            `json:"most_recent_deck_date"`
	Aspects            map[string]Bucket `json:"aspects"`

	// Weights holds every deck's weight, for run-level reporting.
	Weights []float64 `json:"-"`
}

// BuildHero computes the result for one hero. decks must already be filed
// under code (aliases rewritten by the caller). Cards in excluded are the
// hero's signature cards and never counted.
func BuildHero(code string, decks []provider.Submission, excluded map[string]bool, p Params) (*HeroResult, error) {
	if len(decks) == 0 {
		return nil, fmt.Errorf("hero %s: no decks", code)
	}

	latest := decks[0].Created
	for _, d := range decks[1:] {
		if d.Created.After(latest) {
			latest = d.Created
		}
	}

	buckets := make(map[string][]Entry, len(provider.Aspects)+1)
	weights := make([]float64, len(decks))
	var totalWeight float64
	for i, d := range decks {
		w := p.Decay.Weight(AgeDays(latest, d.Created))
		weights[i] = w
		totalWeight += w

		entry := Entry{Weight: w, Slots: cardSlots(d.Slots, excluded)}
		buckets[BucketAll] = append(buckets[BucketAll], entry)
		if d.Aspect != "" {
			key := string(d.Aspect)
			buckets[key] = append(buckets[key], entry)
		}
	}

	aspects := make(map[string]Bucket, len(buckets))
	for key, entries := range buckets {
		if b, ok := ComputeBucket(entries, p.Threshold); ok {
			aspects[key] = b
		}
	}

	return &HeroResult{
		HeroCode:           code,
		HeroName:           decks[0].HeroName,
		TotalDecks:         len(decks),
		TotalWeightedDecks: round(totalWeight, 2),
		DecayHalfLifeDays:  p.Decay.HalfLifeDays,
		MostRecentDeckDate: latest.Format(time.DateOnly),
		Aspects:            aspects,
		Weights:            weights,
	}, nil
}

func cardSlots(slots map[string]int, excluded map[string]bool) map[string]int {
	out := make(map[string]int, len(slots))
	for code, n := range slots {
		if excluded[code] {
			continue
		}
		out[code] = n
	}
	return out
}
