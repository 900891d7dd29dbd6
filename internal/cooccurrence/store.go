package cooccurrence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/albapepper/champions-data/internal/provider"
)

// ResultPath returns the file a hero's result is stored in.
func ResultPath(dir, heroCode string) string {
	return filepath.Join(dir, heroCode+".json")
}

// WriteResult persists one hero, pretty-printed, replacing any earlier file
// atomically. It returns the number of bytes written.
func WriteResult(dir string, r *HeroResult) (int64, error) {
	return provider.WriteJSON(ResultPath(dir, r.HeroCode), r, "  ")
}

// LoadResults reads every hero file in dir, ordered by file name.
func LoadResults(dir string) ([]*HeroResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	results := make([]*HeroResult, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var r HeroResult
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		results = append(results, &r)
	}
	return results, nil
}

// ClearResults removes every hero file in dir so a rebuild cannot leave a
// stale hero behind. It returns how many files were removed.
func ClearResults(dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, err
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			return 0, fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return len(paths), nil
}
