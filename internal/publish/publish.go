// Package publish mirrors per-hero results into Postgres so other services
// can query them without reading the artifact files.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/champions-data/internal/cooccurrence"
	"github.com/albapepper/champions-data/internal/db"
	"github.com/albapepper/champions-data/internal/provider"
)

// Execer is the slice of pgxpool.Pool the publisher needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Result tracks counts and errors from a publish.
type Result struct {
	HeroesUpserted int
	Duration       time.Duration
	Errors         []string
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the publish.
func (r *Result) Summary() string {
	return fmt.Sprintf("heroes=%d errors=%d dur=%s",
		r.HeroesUpserted, len(r.Errors), r.Duration.Round(time.Millisecond))
}

// Heroes upserts one row per hero. A failed row is recorded and the rest
// still run; cancellation stops the loop.
func Heroes(ctx context.Context, pool Execer, results []*cooccurrence.HeroResult, logger *slog.Logger) Result {
	start := time.Now()
	var result Result

	for _, r := range results {
		if err := ctx.Err(); err != nil {
			result.AddErrorf("publish interrupted: %v", err)
			break
		}
		payload, err := provider.Encode(r.Aspects, "")
		if err != nil {
			result.AddErrorf("hero %s: encode: %v", r.HeroCode, err)
			continue
		}
		_, err = pool.Exec(ctx, db.StmtUpsertHeroCooccurrence,
			r.HeroCode, r.HeroName, r.TotalDecks, r.TotalWeightedDecks,
			r.MostRecentDeckDate, payload,
		)
		if err != nil {
			result.AddErrorf("hero %s: upsert: %v", r.HeroCode, err)
			continue
		}
		result.HeroesUpserted++
	}

	result.Duration = time.Since(start)
	logger.Info("Publish complete", "summary", result.Summary())
	return result
}
