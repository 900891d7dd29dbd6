// Package fetch downloads the MarvelCDB card catalog and the public
// decklist archive into the raw data directory.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/albapepper/champions-data/internal/progress"
	"github.com/albapepper/champions-data/internal/provider"
)

// Catalog is the remote source both fetches read from.
type Catalog interface {
	GetCards(ctx context.Context) ([]json.RawMessage, error)
	GetDecklistsByDate(ctx context.Context, day time.Time) ([]json.RawMessage, error)
}

// Result tracks counts and errors from a fetch.
type Result struct {
	CardsFetched int
	DaysTotal    int
	DaysFetched  int
	DaysSkipped  int
	DecksFetched int
	DecksTotal   int
	FirstDeck    string
	LastDeck     string
	Interrupted  bool
	Errors       []string
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the fetch.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"cards=%d days=%d/%d skipped=%d new_decks=%d total_decks=%d interrupted=%v errors=%d",
		r.CardsFetched, r.DaysFetched, r.DaysTotal, r.DaysSkipped,
		r.DecksFetched, r.DecksTotal, r.Interrupted, len(r.Errors),
	)
}

// --------------------------------------------------------------------------
// Cards
// --------------------------------------------------------------------------

// Cards fetches the catalog, writes it unmodified to rawPath and the reduced
// card index to indexPath.
func Cards(ctx context.Context, client Catalog, rawPath, indexPath string, logger *slog.Logger) (*Result, error) {
	raw, err := client.GetCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch cards: %w", err)
	}
	if _, err := provider.WriteJSON(rawPath, raw, "  "); err != nil {
		return nil, err
	}
	logger.Info("Saved raw cards", "cards", len(raw), "path", rawPath)

	cards := make([]provider.Card, 0, len(raw))
	for _, r := range raw {
		var c provider.Card
		if err := json.Unmarshal(r, &c); err != nil {
			return nil, fmt.Errorf("decode card: %w", err)
		}
		cards = append(cards, c)
	}

	index := provider.BuildCardIndex(cards)
	if _, err := provider.WriteJSON(indexPath, index, "  "); err != nil {
		return nil, err
	}
	logger.Info("Saved card index", "cards", len(index), "path", indexPath)

	logBreakdown(logger, "faction", cards, func(c provider.Card) string { return c.FactionName })
	logBreakdown(logger, "type", cards, func(c provider.Card) string { return c.TypeName })

	return &Result{CardsFetched: len(raw)}, nil
}

func logBreakdown(logger *slog.Logger, label string, cards []provider.Card, key func(provider.Card) string) {
	counts := make(map[string]int)
	for _, c := range cards {
		k := key(c)
		if k == "" {
			k = "Unknown"
		}
		counts[k]++
	}
	names := make([]string, 0, len(counts))
	for k := range counts {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		logger.Info("Cards by "+label, label, name, "count", counts[name])
	}
}

// --------------------------------------------------------------------------
// Decks
// --------------------------------------------------------------------------

// DeckOptions bounds a decklist fetch.
type DeckOptions struct {
	Start    time.Time
	End      time.Time
	OutPath  string
	LogEvery int
}

// Decks walks every day from Start to End, fetching days not yet in the
// checkpoint. A failed day is skipped and retried on the next run. On
// cancellation the checkpoint is kept; on completion the archive is written
// to OutPath and the checkpoint removed.
func Decks(ctx context.Context, client Catalog, store *progress.Store, opts DeckOptions, logger *slog.Logger) *Result {
	result := &Result{}
	start := truncateDay(opts.Start)
	end := truncateDay(opts.End)
	result.DaysTotal = int(end.Sub(start)/(24*time.Hour)) + 1
	if opts.LogEvery < 1 {
		opts.LogEvery = 30
	}

	cached, _ := store.FetchedCount()
	logger.Info("Fetching decklists",
		"from", start.Format(time.DateOnly), "to", end.Format(time.DateOnly), "days", result.DaysTotal)
	if cached > 0 {
		decks, _ := store.DeckCount()
		logger.Info("Resuming from checkpoint", "days_fetched", cached, "decks_cached", decks)
	}

	done := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		done++
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}

		fetched, err := store.IsFetched(day)
		if err != nil {
			result.AddErrorf("checkpoint %s: %v", day.Format(time.DateOnly), err)
			return result
		}
		if fetched {
			continue
		}

		if done%opts.LogEvery == 0 || day.Equal(start) {
			total, _ := store.DeckCount()
			logger.Info("Fetching day",
				"progress", fmt.Sprintf("%d/%d", done, result.DaysTotal),
				"pct", fmt.Sprintf("%.0f", float64(done)*100/float64(result.DaysTotal)),
				"day", day.Format(time.DateOnly), "decks_so_far", total)
		}

		raw, err := client.GetDecklistsByDate(ctx, day)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				result.Interrupted = true
				break
			}
			result.DaysSkipped++
			logger.Warn("Skipping day", "day", day.Format(time.DateOnly), "error", err)
			continue
		}

		decks := make([]json.RawMessage, 0, len(raw))
		for _, r := range raw {
			d, err := extractDeck(r)
			if err != nil {
				result.AddErrorf("day %s: %v", day.Format(time.DateOnly), err)
				continue
			}
			decks = append(decks, d)
		}
		if err := store.SaveDay(day, decks); err != nil {
			result.AddErrorf("checkpoint %s: %v", day.Format(time.DateOnly), err)
			return result
		}
		result.DaysFetched++
		result.DecksFetched += len(decks)
	}

	if result.Interrupted {
		days, _ := store.FetchedCount()
		decks, _ := store.DeckCount()
		logger.Warn("Interrupted; progress saved, re-run to resume", "days_fetched", days, "decks", decks)
		return result
	}

	all, err := store.Decks()
	if err != nil {
		result.AddErrorf("%v", err)
		return result
	}
	if all == nil {
		all = []json.RawMessage{}
	}
	if _, err := provider.WriteJSON(opts.OutPath, all, "  "); err != nil {
		result.AddErrorf("%v", err)
		return result
	}
	result.DecksTotal = len(all)
	result.FirstDeck, result.LastDeck = dateRange(all)
	logger.Info("Saved decklists", "decks", len(all), "path", opts.OutPath,
		"first", result.FirstDeck, "last", result.LastDeck)

	if err := store.Remove(); err != nil {
		result.AddErrorf("%v", err)
	} else {
		logger.Info("Cleaned up checkpoint")
	}
	return result
}

// extractDeck keeps only the deck fields the pipeline carries.
func extractDeck(raw json.RawMessage) (json.RawMessage, error) {
	var d provider.Deck
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode deck: %w", err)
	}
	return provider.Encode(d, "")
}

func dateRange(decks []json.RawMessage) (first, last string) {
	for _, raw := range decks {
		var d struct {
			DateCreation string `json:"date_creation"`
		}
		if json.Unmarshal(raw, &d) != nil || d.DateCreation == "" {
			continue
		}
		if first == "" || d.DateCreation < first {
			first = d.DateCreation
		}
		if d.DateCreation > last {
			last = d.DateCreation
		}
	}
	return first, last
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
