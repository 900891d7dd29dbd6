package cooccurrence

import "fmt"

// prune drops every frequency below threshold and rounds the survivors to
// four places, then removes copy rates and pair entries that reference a
// card no longer in CardFrequency. Frequencies must be unrounded on entry.
func prune(b *Bucket, threshold float64) {
	for code, f := range b.CardFrequency {
		if f < threshold {
			delete(b.CardFrequency, code)
			continue
		}
		b.CardFrequency[code] = round(f, 4)
	}

	for code := range b.CopyRates {
		if _, ok := b.CardFrequency[code]; !ok {
			delete(b.CopyRates, code)
		}
	}

	for a, row := range b.CardPairs {
		if _, ok := b.CardFrequency[a]; !ok {
			delete(b.CardPairs, a)
			continue
		}
		for partner := range row {
			if _, ok := b.CardFrequency[partner]; !ok {
				delete(row, partner)
			}
		}
		if len(row) == 0 {
			delete(b.CardPairs, a)
		}
	}
}

// roundingSlack absorbs the half-step a four-place rounding can take a
// value below the threshold it was compared against.
const roundingSlack = 0.00005

// Validate checks the published contract of a bucket: every frequency lies
// in [threshold, 1], and every card referenced by CardPairs or CopyRates is
// present in CardFrequency.
func (b Bucket) Validate(threshold float64) error {
	for code, f := range b.CardFrequency {
		if f < threshold-roundingSlack || f > 1 {
			return fmt.Errorf("card %s: frequency %g outside [%g, 1]", code, f, threshold)
		}
	}
	for a, row := range b.CardPairs {
		if _, ok := b.CardFrequency[a]; !ok {
			return fmt.Errorf("pair row %s: card not in frequency table", a)
		}
		for partner, v := range row {
			if _, ok := b.CardFrequency[partner]; !ok {
				return fmt.Errorf("pair %s/%s: partner not in frequency table", a, partner)
			}
			if partner <= a {
				return fmt.Errorf("pair %s/%s: not in canonical order", a, partner)
			}
			if v < 0 || v > 1 {
				return fmt.Errorf("pair %s/%s: fraction %g outside [0, 1]", a, partner, v)
			}
		}
	}
	for code, r := range b.CopyRates {
		if _, ok := b.CardFrequency[code]; !ok {
			return fmt.Errorf("copy rate %s: card not in frequency table", code)
		}
		if r[0] < 0 || r[0] > 1 || r[1] < 0 || r[1] > 1 {
			return fmt.Errorf("copy rate %s: %v outside [0, 1]", code, r)
		}
	}
	return nil
}
