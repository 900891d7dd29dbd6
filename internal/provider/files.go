package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadCards reads the raw catalog written by the fetch stage.
func LoadCards(path string) ([]Card, error) {
	var cards []Card
	if err := readJSON(path, &cards); err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	return cards, nil
}

// LoadCardIndex reads card_index.json.
func LoadCardIndex(path string) (CardIndex, error) {
	var index CardIndex
	if err := readJSON(path, &index); err != nil {
		return nil, fmt.Errorf("load card index: %w", err)
	}
	return index, nil
}

// LoadDecks reads a decklist archive (raw or filtered).
func LoadDecks(path string) ([]Deck, error) {
	var decks []Deck
	if err := readJSON(path, &decks); err != nil {
		return nil, fmt.Errorf("load decks: %w", err)
	}
	return decks, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Encode marshals v without HTML escaping. An indent of "" produces
// minified output. The trailing newline added by json.Encoder is dropped.
func Encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteJSON encodes v and writes it to path atomically: the data lands in a
// temp file in the same directory which is then renamed over path, so a
// reader never observes a half-written document.
func WriteJSON(path string, v any, indent string) (int64, error) {
	data, err := Encode(v, indent)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// WriteFileAtomic writes data to path via temp file and rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
