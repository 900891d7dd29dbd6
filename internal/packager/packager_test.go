package packager

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/champions-data/internal/config"
	"github.com/albapepper/champions-data/internal/cooccurrence"
	"github.com/albapepper/champions-data/internal/provider"
)

var defaultParams = Params{TopCards: 75, TopPairs: 50}

func code(i int) string { return fmt.Sprintf("c%03d", i) }

// wideBucket has n cards with strictly decreasing frequency and a full pair
// row for every card.
func wideBucket(n int) cooccurrence.Bucket {
	b := cooccurrence.Bucket{
		DeckCount:         200,
		WeightedDeckCount: 150.25,
		CardFrequency:     make(map[string]float64),
		CardPairs:         make(map[string]map[string]float64),
		CopyRates:         make(map[string][2]float64),
	}
	for i := 0; i < n; i++ {
		b.CardFrequency[code(i)] = 0.99 - float64(i)*0.005
		b.CopyRates[code(i)] = [2]float64{0.5, 0.25}
		row := make(map[string]float64)
		for j := i + 1; j < n; j++ {
			row[code(j)] = 0.9 - float64(j)*0.004
		}
		if len(row) > 0 {
			b.CardPairs[code(i)] = row
		}
	}
	return b
}

func TestCompressAspectCaps(t *testing.T) {
	a := CompressAspect(wideBucket(120), defaultParams)

	require.Len(t, a.CardFrequency, 75)
	for i := 0; i < 75; i++ {
		assert.Contains(t, a.CardFrequency, code(i))
	}
	assert.Equal(t, 99.0, a.CardFrequency[code(0)])

	assert.Len(t, a.CardPairs[code(0)], 50)
	for a0, row := range a.CardPairs {
		assert.Contains(t, a.CardFrequency, a0)
		for partner := range row {
			assert.Contains(t, a.CardFrequency, partner, "partner %s of %s outside kept set", partner, a0)
		}
	}
	// strongest partners of c000 are c001..c050
	assert.Contains(t, a.CardPairs[code(0)], code(50))
	assert.NotContains(t, a.CardPairs[code(0)], code(51))

	// c074 is the last kept card; its row has no kept partners
	assert.NotContains(t, a.CardPairs, code(74))

	assert.Len(t, a.CopyRates, 75)
	assert.Equal(t, [2]float64{50, 25}, a.CopyRates[code(3)])
	assert.Equal(t, 200, a.DeckCount)
	assert.Equal(t, 150.25, a.WeightedDeckCount)
}

func TestCompressAspectTiesByCode(t *testing.T) {
	b := cooccurrence.Bucket{
		CardFrequency: map[string]float64{"b": 0.5, "a": 0.5, "c": 0.5},
		CardPairs:     map[string]map[string]float64{},
		CopyRates:     map[string][2]float64{},
	}
	a := CompressAspect(b, Params{TopCards: 2, TopPairs: 1})
	assert.Equal(t, map[string]float64{"a": 50, "b": 50}, a.CardFrequency)
}

func TestCompressAspectRounding(t *testing.T) {
	b := cooccurrence.Bucket{
		CardFrequency: map[string]float64{"a": 0.1234, "b": 0.0567},
		CardPairs:     map[string]map[string]float64{"a": {"b": 0.0444}},
		CopyRates:     map[string][2]float64{"a": {0.3333, 0}},
	}
	a := CompressAspect(b, defaultParams)
	assert.Equal(t, 12.3, a.CardFrequency["a"])
	assert.Equal(t, 5.7, a.CardFrequency["b"])
	assert.Equal(t, 4.4, a.CardPairs["a"]["b"])
	assert.Equal(t, [2]float64{33.3, 0}, a.CopyRates["a"])
	assert.NotContains(t, a.CopyRates, "b")
}

func TestPercentHalfEven(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.0625, 6.2},
		{0.0015, 0.1},
		{0.0125, 1.2},
		{0.4625, 46.2},
		{0.1125, 11.2},
		{0.0675, 6.8},
		{1, 100},
		{0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, percent(tc.in), "percent(%v)", tc.in)
	}
}

func TestCompressAspectPairRounding(t *testing.T) {
	partners := map[string]float64{"b": 0.0625, "c": 0.0015, "d": 0.0125, "e": 0.4625, "f": 0.1125}
	b := cooccurrence.Bucket{
		CardFrequency: map[string]float64{"a": 0.9},
		CardPairs:     map[string]map[string]float64{"a": partners},
	}
	for code := range partners {
		b.CardFrequency[code] = 0.5
	}
	a := CompressAspect(b, defaultParams)
	assert.Equal(t, map[string]float64{"b": 6.2, "c": 0.1, "d": 1.2, "e": 46.2, "f": 11.2}, a.CardPairs["a"])
}

func TestHeroMetadata(t *testing.T) {
	cards := []provider.Card{
		{Code: "01001a", Name: "Spider-Man", TypeCode: provider.TypeHero, Traits: "Avenger.", ImageSrc: "/img/01001a.jpg"},
		{Code: "01001b", Name: "Peter Parker", TypeCode: provider.TypeAlterEgo},
		{Code: "02001a", Name: "Nobody", TypeCode: provider.TypeHero},
	}
	meta := HeroMetadata(cards)
	require.NotNil(t, meta["01001a"].AlterEgo)
	assert.Equal(t, "Peter Parker", *meta["01001a"].AlterEgo)
	assert.Equal(t, "Avenger.", meta["01001a"].Traits)
	assert.Nil(t, meta["02001a"].AlterEgo)
}

func heroResult(code, name string) *cooccurrence.HeroResult {
	return &cooccurrence.HeroResult{
		HeroCode:           code,
		HeroName:           name,
		TotalDecks:         12,
		TotalWeightedDecks: 8.5,
		MostRecentDeckDate: "2024-01-02",
		Aspects:            map[string]cooccurrence.Bucket{cooccurrence.BucketAll: wideBucket(3)},
	}
}

func TestBuildAndWrite(t *testing.T) {
	results := []*cooccurrence.HeroResult{
		heroResult("03001a", "Thor"),
		heroResult("01001a", "Spider-Man"),
		heroResult("27001a", "Spider-Man"),
	}
	index := provider.BuildCardIndex([]provider.Card{{Code: "c000", Name: "Card & Co"}})
	data, listing, stats := Build(results, index, nil, defaultParams)

	require.Len(t, listing, 3)
	assert.Equal(t, []string{"01001a", "27001a", "03001a"},
		[]string{listing[0].Code, listing[1].Code, listing[2].Code})
	assert.Equal(t, 9, stats.FrequencyEntries)
	assert.Equal(t, 9, stats.PairEntries)

	dir := t.TempDir()
	report, err := Write(dir, data, listing, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.True(t, report.OverTarget)

	raw, err := os.ReadFile(filepath.Join(dir, config.DeckDataFile))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "\n")
	assert.Contains(t, string(raw), "Card & Co")

	var decoded DeckData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Len(t, decoded.Heroes, 3)
	assert.Nil(t, decoded.Heroes["03001a"].AlterEgo)

	heroes, err := os.ReadFile(filepath.Join(dir, config.HeroesFile))
	require.NoError(t, err)
	assert.Contains(t, string(heroes), "\n  {")
}

func TestWriteWithinTarget(t *testing.T) {
	data, listing, _ := Build(nil, provider.CardIndex{}, nil, defaultParams)
	report, err := Write(t.TempDir(), data, listing, 10*1024*1024, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.False(t, report.OverTarget)
}
