// Package provider defines canonical data types for the MarvelCDB catalog and
// decklist archive. These structs are the contract between the fetch stage,
// which writes them to disk, and every later stage that reads them back.
//
// Fields the pipeline never interprets are carried as raw JSON so that a
// record survives a load/write round trip unmodified.
package provider

import (
	"encoding/json"
	"time"
)

// Card type and faction labels the pipeline interprets.
const (
	TypeHero     = "hero"
	TypeAlterEgo = "alter_ego"
	FactionHero  = "Hero"
)

// Card is one raw catalog record as served by /cards/.
type Card struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	TypeCode    string          `json:"type_code,omitempty"`
	TypeName    string          `json:"type_name,omitempty"`
	FactionCode string          `json:"faction_code,omitempty"`
	FactionName string          `json:"faction_name,omitempty"`
	PackCode    string          `json:"pack_code,omitempty"`
	PackName    string          `json:"pack_name,omitempty"`
	CardSetName string          `json:"card_set_name,omitempty"`
	Traits      string          `json:"traits,omitempty"`
	ImageSrc    string          `json:"imagesrc,omitempty"`
	Cost        json.RawMessage `json:"cost,omitempty"`
	DeckLimit   json.RawMessage `json:"deck_limit,omitempty"`
}

// CardIndexEntry is the reduced card shape published in card_index.json.
// Absent values serialise as null.
type CardIndexEntry struct {
	Name        *string         `json:"name"`
	TypeName    *string         `json:"type_name"`
	FactionName *string         `json:"faction_name"`
	Cost        json.RawMessage `json:"cost"`
	PackName    *string         `json:"pack_name"`
	ImageSrc    *string         `json:"imagesrc"`
	CardSetName *string         `json:"card_set_name"`
	DeckLimit   json.RawMessage `json:"deck_limit"`
}

// CardIndex maps card code to its index entry.
type CardIndex map[string]CardIndexEntry

// BuildCardIndex reduces the raw catalog to the published index.
func BuildCardIndex(cards []Card) CardIndex {
	index := make(CardIndex, len(cards))
	for _, c := range cards {
		if c.Code == "" {
			continue
		}
		index[c.Code] = CardIndexEntry{
			Name:        strPtr(c.Name),
			TypeName:    strPtr(c.TypeName),
			FactionName: strPtr(c.FactionName),
			Cost:        rawOrNull(c.Cost),
			PackName:    strPtr(c.PackName),
			ImageSrc:    strPtr(c.ImageSrc),
			CardSetName: strPtr(c.CardSetName),
			DeckLimit:   rawOrNull(c.DeckLimit),
		}
	}
	return index
}

// HeroFactionCodes returns every card code whose faction is "Hero". These
// are the signature cards every deck for that hero carries, so they are
// excluded from all counts.
func (idx CardIndex) HeroFactionCodes() map[string]bool {
	out := make(map[string]bool)
	for code, entry := range idx {
		if entry.FactionName != nil && *entry.FactionName == FactionHero {
			out[code] = true
		}
	}
	return out
}

// Deck is one raw public decklist submission.
type Deck struct {
	ID           int             `json:"id"`
	Name         string          `json:"name,omitempty"`
	DateCreation string          `json:"date_creation"`
	UserID       json.RawMessage `json:"user_id,omitempty"`
	HeroCode     string          `json:"hero_code"`
	HeroName     string          `json:"hero_name"`
	Slots        map[string]int  `json:"slots"`
	Tags         json.RawMessage `json:"tags,omitempty"`
	Meta         json.RawMessage `json:"meta,omitempty"`
	Version      json.RawMessage `json:"version,omitempty"`
}

// CardCount is the total number of copies across all slots.
func (d Deck) CardCount() int {
	total := 0
	for _, n := range d.Slots {
		total += n
	}
	return total
}

// Submission is a deck normalised once at ingestion: the creation time is
// parsed and the meta blob resolved to a typed aspect.
type Submission struct {
	ID       int
	HeroCode string
	HeroName string
	Created  time.Time
	Aspect   Aspect // empty when the deck declares no recognised aspect
	Slots    map[string]int
}

// NewSubmission normalises a raw deck. It fails only on an unparseable
// creation date; a malformed meta blob yields a style-less submission.
func NewSubmission(d Deck) (Submission, error) {
	created, err := ParseTime(d.DateCreation)
	if err != nil {
		return Submission{}, err
	}
	aspect, _ := ParseMeta(d.Meta)
	return Submission{
		ID:       d.ID,
		HeroCode: d.HeroCode,
		HeroName: d.HeroName,
		Created:  created,
		Aspect:   aspect,
		Slots:    d.Slots,
	}, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
