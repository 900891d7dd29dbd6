package provider

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Aspect is a deck's declared play style.
type Aspect string

// The closed set of recognised aspects.
const (
	Aggression Aspect = "aggression"
	Justice    Aspect = "justice"
	Leadership Aspect = "leadership"
	Protection Aspect = "protection"
)

// Aspects lists every recognised aspect in bucket order.
var Aspects = []Aspect{Aggression, Justice, Leadership, Protection}

// ParseAspect normalises a label. Anything outside the closed set is
// reported as unrecognised.
func ParseAspect(label string) (Aspect, bool) {
	a := Aspect(strings.ToLower(strings.TrimSpace(label)))
	for _, known := range Aspects {
		if a == known {
			return a, true
		}
	}
	return "", false
}

// ParseMeta resolves the aspect declared in a deck's meta blob. MarvelCDB
// stores the blob as a JSON-encoded string; an inline object is accepted
// too. "aspect" is consulted before "style"; an unrecognised value in one
// falls through to the other. Missing, empty, or malformed blobs mean
// "no aspect".
func ParseMeta(raw json.RawMessage) (Aspect, bool) {
	if len(raw) == 0 {
		return "", false
	}
	body := []byte(raw)
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if encoded == "" {
			return "", false
		}
		body = []byte(encoded)
	}
	var meta map[string]any
	if err := json.Unmarshal(body, &meta); err != nil {
		return "", false
	}
	for _, key := range []string{"aspect", "style"} {
		label, ok := meta[key].(string)
		if !ok {
			continue
		}
		if a, ok := ParseAspect(label); ok {
			return a, true
		}
	}
	return "", false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses an ISO-8601 creation timestamp. Values without a zone
// are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
