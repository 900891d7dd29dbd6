// Package identity merges alternate printings of one hero into a single
// canonical hero code.
//
// Some heroes ship several hero cards in the same pack (Ant-Man tiny/giant,
// Ironheart level-up forms). Those records share a name and a pack code; the
// printing backing the most deck submissions absorbs the others.
package identity

import "github.com/albapepper/champions-data/internal/provider"

// Resolution is the outcome of one grouping pass.
type Resolution struct {
	// Aliases maps an alternate hero code to its canonical code.
	Aliases map[string]string
	// Groups maps each canonical code that absorbed aliases to every code
	// in its group that had at least one deck, in catalog order.
	Groups map[string][]string
}

// Canonical returns the code decks for code should be filed under.
func (r *Resolution) Canonical(code string) string {
	if canon, ok := r.Aliases[code]; ok {
		return canon
	}
	return code
}

type groupKey struct {
	name string
	pack string
}

// Resolve groups hero records by (name, pack code) and picks a canonical code
// for every group with two or more codes that have submissions. Records
// missing a code, name or pack code are left standalone. Codes with no
// submissions never take part.
func Resolve(cards []provider.Card, deckCounts map[string]int) *Resolution {
	var order []groupKey
	groups := make(map[groupKey][]string)
	for _, c := range cards {
		if c.TypeCode != provider.TypeHero {
			continue
		}
		if c.Code == "" || c.Name == "" || c.PackCode == "" {
			continue
		}
		if deckCounts[c.Code] == 0 {
			continue
		}
		key := groupKey{name: c.Name, pack: c.PackCode}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = appendUnique(groups[key], c.Code)
	}

	res := &Resolution{
		Aliases: make(map[string]string),
		Groups:  make(map[string][]string),
	}
	for _, key := range order {
		codes := groups[key]
		if len(codes) < 2 {
			continue
		}
		primary := codes[0]
		for _, code := range codes[1:] {
			// Strictly greater: ties keep the earlier catalog entry.
			if deckCounts[code] > deckCounts[primary] {
				primary = code
			}
		}
		for _, code := range codes {
			if code != primary {
				res.Aliases[code] = primary
			}
		}
		res.Groups[primary] = codes
	}
	return res
}

func appendUnique(codes []string, code string) []string {
	for _, c := range codes {
		if c == code {
			return codes
		}
	}
	return append(codes, code)
}
