package cooccurrence

import "sort"

// BucketAll is the aggregate bucket every deck belongs to.
const BucketAll = "all"

// Entry is one deck's contribution to a bucket: its decay weight and its
// slots with the hero's own cards removed.
type Entry struct {
	Weight float64
	Slots  map[string]int
}

// Bucket holds the published statistics for one (hero, aspect) pair.
//
// CardPairs is stored single-direction: CardPairs[a][b] exists only for
// a < b. All fractions share the bucket's total weight as denominator.
type Bucket struct {
	DeckCount         int                           `json:"deck_count"`
	WeightedDeckCount float64                       `json:"weighted_deck_count"`
	CardFrequency     map[string]float64            `json:"card_frequency"`
	CardPairs         map[string]map[string]float64 `json:"card_pairs"`
	CopyRates         map[string][2]float64         `json:"copy_rates"`
}

type pairKey struct{ a, b string }

// ComputeBucket aggregates entries into bucket statistics. It reports false
// when there is nothing to publish: no entries, or a total weight of zero.
func ComputeBucket(entries []Entry, threshold float64) (Bucket, bool) {
	if len(entries) == 0 {
		return Bucket{}, false
	}
	var total float64
	for _, e := range entries {
		total += e.Weight
	}
	if total <= 0 {
		return Bucket{}, false
	}

	with1 := make(map[string]float64)
	with2 := make(map[string]float64)
	with3 := make(map[string]float64)
	for _, e := range entries {
		for code, n := range e.Slots {
			if n >= 1 {
				with1[code] += e.Weight
			}
			if n >= 2 {
				with2[code] += e.Weight
			}
			if n >= 3 {
				with3[code] += e.Weight
			}
		}
	}

	freq := make(map[string]float64, len(with1))
	eligible := make(map[string]bool)
	for code, w := range with1 {
		f := w / total
		freq[code] = f
		if f >= threshold {
			eligible[code] = true
		}
	}

	pairSums := make(map[pairKey]float64)
	var inDeck []string
	for _, e := range entries {
		inDeck = inDeck[:0]
		for code, n := range e.Slots {
			if n >= 1 && eligible[code] {
				inDeck = append(inDeck, code)
			}
		}
		sort.Strings(inDeck)
		for i := 0; i < len(inDeck); i++ {
			for j := i + 1; j < len(inDeck); j++ {
				pairSums[pairKey{inDeck[i], inDeck[j]}] += e.Weight
			}
		}
	}

	pairs := make(map[string]map[string]float64)
	for k, w := range pairSums {
		row, ok := pairs[k.a]
		if !ok {
			row = make(map[string]float64)
			pairs[k.a] = row
		}
		row[k.b] = round(w/total, 4)
	}

	rates := make(map[string][2]float64, len(with1))
	for code, w1 := range with1 {
		if w1 <= 0 {
			continue
		}
		w2 := with2[code]
		var p3 float64
		if w2 > 0 {
			p3 = round(with3[code]/w2, 4)
		}
		rates[code] = [2]float64{round(w2/w1, 4), p3}
	}

	b := Bucket{
		DeckCount:         len(entries),
		WeightedDeckCount: round(total, 2),
		CardFrequency:     freq,
		CardPairs:         pairs,
		CopyRates:         rates,
	}
	prune(&b, threshold)
	return b, true
}
