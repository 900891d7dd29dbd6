package packager

import "github.com/albapepper/champions-data/internal/provider"

// HeroMeta is the catalog detail shown next to a hero.
type HeroMeta struct {
	Name     string
	AlterEgo *string
	Traits   string
	ImageSrc string
}

// HeroMetadata derives listing metadata from the raw catalog. A hero's alter
// ego shares its code with the last character replaced by "b".
func HeroMetadata(cards []provider.Card) map[string]HeroMeta {
	heroes := make(map[string]provider.Card)
	alterEgos := make(map[string]provider.Card)
	for _, c := range cards {
		switch c.TypeCode {
		case provider.TypeHero:
			heroes[c.Code] = c
		case provider.TypeAlterEgo:
			alterEgos[c.Code] = c
		}
	}

	meta := make(map[string]HeroMeta, len(heroes))
	for code, h := range heroes {
		m := HeroMeta{Name: h.Name, Traits: h.Traits, ImageSrc: h.ImageSrc}
		if code != "" {
			if ae, ok := alterEgos[code[:len(code)-1]+"b"]; ok && ae.Name != "" {
				name := ae.Name
				m.AlterEgo = &name
			}
		}
		meta[code] = m
	}
	return meta
}
