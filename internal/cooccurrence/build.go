package cooccurrence

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/albapepper/champions-data/internal/identity"
	"github.com/albapepper/champions-data/internal/provider"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Input is the read-only snapshot a build runs over.
type Input struct {
	Cards []provider.Card    // raw catalog, for identity resolution
	Index provider.CardIndex // for signature-card exclusion
	Decks []provider.Deck    // filtered decklists
}

// RunOptions configures one build.
type RunOptions struct {
	Params         Params
	OutDir         string
	Workers        int
	SmallHeroDecks int  // heroes below this deck count are reported
	Verify         bool // check every bucket against its published contract
}

// SmallHero is a hero with too few decks for trustworthy statistics.
type SmallHero struct {
	Code  string
	Name  string
	Decks int
}

// RunResult tracks the outcome of a full build.
type RunResult struct {
	HeroesFound   int
	HeroesWritten int
	DecksMerged   int
	DecksSkipped  int
	BytesWritten  int64
	Merges        map[string][]string
	SmallHeroes   []SmallHero
	Weights       WeightStats
	Duration      time.Duration
	Errors        []string
}

// AddErrorf records a formatted error message.
func (r *RunResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary.
func (r *RunResult) Summary() string {
	return fmt.Sprintf("heroes=%d written=%d merged_decks=%d skipped_decks=%d bytes=%d small=%d errors=%d dur=%s",
		r.HeroesFound, r.HeroesWritten, r.DecksMerged, r.DecksSkipped, r.BytesWritten,
		len(r.SmallHeroes), len(r.Errors), r.Duration.Round(time.Millisecond))
}

// --------------------------------------------------------------------------
// Run
// --------------------------------------------------------------------------

// Run resolves hero identities, groups decks under their canonical hero and
// builds every hero on a worker pool. Each hero's file is written as soon as
// it is computed. Per-hero failures are recorded and do not stop the run.
func Run(ctx context.Context, in Input, opts RunOptions, logger *slog.Logger) *RunResult {
	start := time.Now()
	result := &RunResult{}

	excluded := in.Index.HeroFactionCodes()
	logger.Info("Card index loaded", "cards", len(in.Index), "excluded_hero_cards", len(excluded))

	counts := make(map[string]int)
	for _, d := range in.Decks {
		counts[d.HeroCode]++
	}

	res := identity.Resolve(in.Cards, counts)
	result.Merges = res.Groups
	aliases := make([]string, 0, len(res.Aliases))
	for alias := range res.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		canon := res.Aliases[alias]
		logger.Info("Merging alternate hero",
			"alias", alias, "alias_decks", counts[alias],
			"canonical", canon, "canonical_decks", counts[canon])
	}

	byHero := make(map[string][]provider.Submission)
	for _, d := range in.Decks {
		sub, err := provider.NewSubmission(d)
		if err != nil {
			result.DecksSkipped++
			result.AddErrorf("deck %d: %v", d.ID, err)
			continue
		}
		canon := res.Canonical(d.HeroCode)
		if canon != d.HeroCode {
			result.DecksMerged++
			sub.HeroCode = canon
		}
		byHero[canon] = append(byHero[canon], sub)
	}

	codes := make([]string, 0, len(byHero))
	for code := range byHero {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	result.HeroesFound = len(codes)
	logger.Info("Heroes grouped", "heroes", len(codes), "merged_decks", result.DecksMerged)

	if len(codes) == 0 {
		result.Duration = time.Since(start)
		return result
	}

	// Worker pool: one channel of hero codes, N workers
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(codes) {
		workers = len(codes)
	}

	ch := make(chan string, len(codes))
	for _, code := range codes {
		ch <- code
	}
	close(ch)

	var mu sync.Mutex
	var wg sync.WaitGroup
	done := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range ch {
				if err := ctx.Err(); err != nil {
					mu.Lock()
					result.AddErrorf("hero %s: %v", code, err)
					mu.Unlock()
					continue
				}

				hero, size, err := buildOne(code, byHero[code], excluded, opts)

				mu.Lock()
				done++
				if err != nil {
					result.AddErrorf("%v", err)
				} else {
					result.HeroesWritten++
					result.BytesWritten += size
					for _, w := range hero.Weights {
						result.Weights.Add(w, opts.Params.Decay.Floor)
					}
					if hero.TotalDecks < opts.SmallHeroDecks {
						result.SmallHeroes = append(result.SmallHeroes, SmallHero{code, hero.HeroName, hero.TotalDecks})
					}
					if done == 1 || done%10 == 0 {
						logger.Info("Hero built",
							"progress", fmt.Sprintf("%d/%d", done, len(codes)),
							"hero", hero.HeroName, "decks", hero.TotalDecks,
							"buckets", len(hero.Aspects))
					}
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	sort.Slice(result.SmallHeroes, func(i, j int) bool {
		return result.SmallHeroes[i].Code < result.SmallHeroes[j].Code
	})
	result.Duration = time.Since(start)
	return result
}

func buildOne(code string, decks []provider.Submission, excluded map[string]bool, opts RunOptions) (*HeroResult, int64, error) {
	hero, err := BuildHero(code, decks, excluded, opts.Params)
	if err != nil {
		return nil, 0, err
	}
	if opts.Verify {
		for key, b := range hero.Aspects {
			if err := b.Validate(opts.Params.Threshold); err != nil {
				return nil, 0, fmt.Errorf("hero %s bucket %s: %w", code, key, err)
			}
		}
	}
	size, err := WriteResult(opts.OutDir, hero)
	if err != nil {
		return nil, 0, fmt.Errorf("hero %s: %w", code, err)
	}
	return hero, size, nil
}

// --------------------------------------------------------------------------
// Weight distribution
// --------------------------------------------------------------------------

// WeightBin is one histogram bucket of deck weights.
type WeightBin struct {
	Label string
	Count int
}

// WeightStats summarises every deck weight assigned during a run.
type WeightStats struct {
	Count int
	Sum   float64
	Min   float64
	Max   float64
	Bins  [5]int
}

// Add records one weight. Weights within 0.01 of floor land in the first bin.
func (s *WeightStats) Add(w, floor float64) {
	if s.Count == 0 {
		s.Min, s.Max = w, w
	}
	s.Count++
	s.Sum += w
	s.Min = math.Min(s.Min, w)
	s.Max = math.Max(s.Max, w)

	switch {
	case w <= floor+0.01:
		s.Bins[0]++
	case w <= 0.40:
		s.Bins[1]++
	case w <= 0.60:
		s.Bins[2]++
	case w <= 0.80:
		s.Bins[3]++
	default:
		s.Bins[4]++
	}
}

// Mean returns the average weight, or 0 when nothing was recorded.
func (s *WeightStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Histogram labels the bins for reporting.
func (s *WeightStats) Histogram(floor float64) []WeightBin {
	labels := [5]string{
		fmt.Sprintf("w = %.1f (floor)", floor),
		fmt.Sprintf("%.1f < w <= 0.40", floor),
		"0.40 < w <= 0.60",
		"0.60 < w <= 0.80",
		"0.80 < w <= 1.00",
	}
	out := make([]WeightBin, len(labels))
	for i, label := range labels {
		out[i] = WeightBin{Label: label, Count: s.Bins[i]}
	}
	return out
}

// LogReport writes the weight distribution and small-hero list.
func (r *RunResult) LogReport(floor float64, logger *slog.Logger) {
	if r.Weights.Count > 0 {
		logger.Info("Weight distribution",
			"weights", r.Weights.Count,
			"mean", fmt.Sprintf("%.4f", r.Weights.Mean()),
			"min", fmt.Sprintf("%.4f", r.Weights.Min),
			"max", fmt.Sprintf("%.4f", r.Weights.Max))
		for _, bin := range r.Weights.Histogram(floor) {
			logger.Info("Weight bin", "range", bin.Label, "decks", bin.Count,
				"pct", fmt.Sprintf("%.1f", float64(bin.Count)*100/float64(r.Weights.Count)))
		}
	}
	for _, h := range r.SmallHeroes {
		logger.Warn("Hero has few decks", "hero", h.Code, "name", h.Name, "decks", h.Decks)
	}
}
