// Package artifact holds the packaged web artifact in memory for the API and
// swaps it atomically whenever the packager rewrites it on disk.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/albapepper/champions-data/internal/cache"
	"github.com/albapepper/champions-data/internal/config"
	"github.com/albapepper/champions-data/internal/metrics"
	"github.com/albapepper/champions-data/internal/packager"
	"github.com/albapepper/champions-data/internal/provider"
)

// Snapshot is one loaded generation of the artifact. It is never mutated
// after being published.
type Snapshot struct {
	Data     *packager.DeckData
	Heroes   []packager.HeroListing
	ETag     string    // of deck_data.json as written
	ModTime  time.Time // of deck_data.json when read
	LoadedAt time.Time
}

// Hero returns one hero's entry.
func (s *Snapshot) Hero(code string) (packager.Hero, bool) {
	h, ok := s.Data.Heroes[code]
	return h, ok
}

// Store serves the current snapshot.
type Store struct {
	dir     string
	current atomic.Pointer[Snapshot]
	logger  *slog.Logger

	mu       sync.Mutex
	onReload []func(*Snapshot)
}

// NewStore creates a store reading from the web artifact directory.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Current returns the loaded snapshot, or nil before the first Load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// OnReload registers fn to run after every successful load.
func (s *Store) OnReload(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// PurgeOnReload clears c whenever a new snapshot is published.
func (s *Store) PurgeOnReload(c *cache.Cache) {
	s.OnReload(func(*Snapshot) { c.Purge() })
}

// Load reads both artifact files and publishes them as the new snapshot.
// On failure the previous snapshot stays in place.
func (s *Store) Load() error {
	snap, err := s.read()
	if err != nil {
		metrics.ArtifactReloads.WithLabelValues("error").Inc()
		return err
	}
	s.current.Store(snap)
	metrics.ArtifactReloads.WithLabelValues("ok").Inc()
	metrics.ArtifactHeroes.Set(float64(len(snap.Data.Heroes)))

	s.mu.Lock()
	hooks := append([]func(*Snapshot){}, s.onReload...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(snap)
	}

	s.logger.Info("Artifact loaded", "heroes", len(snap.Data.Heroes), "cards", len(snap.Data.CardIndex), "etag", snap.ETag)
	return nil
}

// Dir is the directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// Stale reports whether deck_data.json on disk differs from the loaded
// snapshot. A missing file is never stale.
func (s *Store) Stale() (bool, error) {
	fi, err := os.Stat(filepath.Join(s.dir, config.DeckDataFile))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	snap := s.Current()
	if snap == nil {
		return true, nil
	}
	return !fi.ModTime().Equal(snap.ModTime), nil
}

func (s *Store) read() (*Snapshot, error) {
	path := filepath.Join(s.dir, config.DeckDataFile)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat deck data: %w", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck data: %w", err)
	}
	var data packager.DeckData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode deck data: %w", err)
	}
	if data.Heroes == nil {
		data.Heroes = map[string]packager.Hero{}
	}
	if data.CardIndex == nil {
		data.CardIndex = provider.CardIndex{}
	}

	var heroes []packager.HeroListing
	heroesRaw, err := os.ReadFile(filepath.Join(s.dir, config.HeroesFile))
	if err != nil {
		return nil, fmt.Errorf("read hero list: %w", err)
	}
	if err := json.Unmarshal(heroesRaw, &heroes); err != nil {
		return nil, fmt.Errorf("decode hero list: %w", err)
	}

	return &Snapshot{
		Data:     &data,
		Heroes:   heroes,
		ETag:     cache.ComputeETag(raw),
		ModTime:  fi.ModTime(),
		LoadedAt: time.Now().UTC(),
	}, nil
}

// --------------------------------------------------------------------------
// Watching
// --------------------------------------------------------------------------

const debounceInterval = 250 * time.Millisecond

// Watch reloads the store whenever either artifact file is written or
// replaced. Bursts of events are coalesced. Watch blocks until ctx ends.
func (s *Store) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory, not the files: the packager replaces files by
	// rename, which would orphan a watch on the old inode.
	if err := fw.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	var timer *time.Timer
	reload := func() {
		if err := s.Load(); err != nil {
			s.logger.Warn("Artifact reload failed; keeping previous snapshot", "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isArtifact(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(debounceInterval, reload)
			} else {
				timer.Reset(debounceInterval)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Artifact watcher error", "error", err)
		}
	}
}

func isArtifact(path string) bool {
	base := filepath.Base(path)
	return base == config.DeckDataFile || base == config.HeroesFile
}
