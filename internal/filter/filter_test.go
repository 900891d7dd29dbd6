package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/champions-data/internal/provider"
)

func deck(id int, hero, name string, copies int, date string) provider.Deck {
	slots := make(map[string]int)
	for i := 0; copies > 0; i++ {
		n := 3
		if copies < 3 {
			n = copies
		}
		slots[string(rune('a'+i))] = n
		copies -= n
	}
	return provider.Deck{ID: id, HeroCode: hero, HeroName: name, Slots: slots, DateCreation: date}
}

func TestApply(t *testing.T) {
	const ok = "2022-05-01T00:00:00+00:00"
	decks := []provider.Deck{
		deck(1, "01001a", "Spider-Man", 40, ok),
		deck(2, "", "", 45, ok),
		deck(3, "01001a", "Spider-Man", 39, ok),
		deck(4, "02001a", "Thor", 50, "someday"),
		deck(5, "02001a", "Thor", 50, ok),
		deck(6, "01001a", "Spider-Man", 42, ok),
	}
	kept, r := Apply(decks, 40)

	require.Len(t, kept, 3)
	assert.Equal(t, []int{1, 5, 6}, []int{kept[0].ID, kept[1].ID, kept[2].ID})
	assert.Equal(t, 6, r.Total)
	assert.Equal(t, 1, r.NoHero)
	assert.Equal(t, 1, r.TooFewCards)
	assert.Equal(t, 1, r.BadDate)
	assert.Equal(t, 3, r.Removed())
	assert.InDelta(t, 44.0, r.AvgDeckSize, 1e-9)
	assert.Equal(t, []HeroCount{{"Spider-Man", 2}, {"Thor", 1}}, r.TopHeroes(20))
	assert.Equal(t, []HeroCount{{"Spider-Man", 2}}, r.TopHeroes(1))
}

func TestApplyEmpty(t *testing.T) {
	kept, r := Apply(nil, 40)
	assert.Empty(t, kept)
	assert.Zero(t, r.AvgDeckSize)
	assert.Contains(t, r.Summary(), "total=0")
}
