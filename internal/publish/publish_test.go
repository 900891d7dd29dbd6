package publish

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/champions-data/internal/cooccurrence"
	"github.com/albapepper/champions-data/internal/db"
)

type call struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls  []call
	failOn string
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{sql, args})
	if len(args) > 0 && args[0] == f.failOn {
		return pgconn.CommandTag{}, errors.New("constraint violation")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func results() []*cooccurrence.HeroResult {
	bucket := cooccurrence.Bucket{
		DeckCount:         2,
		WeightedDeckCount: 1.5,
		CardFrequency:     map[string]float64{"c1": 1},
		CardPairs:         map[string]map[string]float64{},
		CopyRates:         map[string][2]float64{"c1": {0, 0}},
	}
	return []*cooccurrence.HeroResult{
		{HeroCode: "01001a", HeroName: "Spider-Man", TotalDecks: 2, TotalWeightedDecks: 1.5,
			MostRecentDeckDate: "2024-01-01", Aspects: map[string]cooccurrence.Bucket{"all": bucket}},
		{HeroCode: "02001a", HeroName: "Thor", TotalDecks: 1, TotalWeightedDecks: 1,
			MostRecentDeckDate: "2024-02-01", Aspects: map[string]cooccurrence.Bucket{}},
	}
}

func TestHeroes(t *testing.T) {
	ex := &fakeExecer{}
	res := Heroes(context.Background(), ex, results(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, 2, res.HeroesUpserted)
	assert.Empty(t, res.Errors)
	require.Len(t, ex.calls, 2)
	assert.Equal(t, db.StmtUpsertHeroCooccurrence, ex.calls[0].sql)
	assert.Equal(t, "01001a", ex.calls[0].args[0])
	assert.Equal(t, "2024-01-01", ex.calls[0].args[4])
	assert.JSONEq(t,
		`{"all":{"deck_count":2,"weighted_deck_count":1.5,"card_frequency":{"c1":1},"card_pairs":{},"copy_rates":{"c1":[0,0]}}}`,
		string(ex.calls[0].args[5].([]byte)))
}

func TestHeroesRecordsFailures(t *testing.T) {
	ex := &fakeExecer{failOn: "01001a"}
	res := Heroes(context.Background(), ex, results(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, 1, res.HeroesUpserted)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "01001a")
}

func TestHeroesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := &fakeExecer{}
	res := Heroes(ctx, ex, results(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Zero(t, res.HeroesUpserted)
	assert.Empty(t, ex.calls)
	assert.Len(t, res.Errors, 1)
}
