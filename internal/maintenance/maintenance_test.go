package maintenance

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/champions-data/internal/artifact"
	"github.com/albapepper/champions-data/internal/cache"
	"github.com/albapepper/champions-data/internal/config"
	"github.com/albapepper/champions-data/internal/cooccurrence"
	"github.com/albapepper/champions-data/internal/packager"
	"github.com/albapepper/champions-data/internal/provider"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeArtifact(t *testing.T, dir string, codes ...string) {
	t.Helper()
	var results []*cooccurrence.HeroResult
	for _, code := range codes {
		results = append(results, &cooccurrence.HeroResult{HeroCode: code, HeroName: "Hero " + code, TotalDecks: 1})
	}
	data, listing, _ := packager.Build(results, provider.CardIndex{}, nil, packager.Params{TopCards: 75, TopPairs: 50})
	_, err := packager.Write(dir, data, listing, 0, discardLogger())
	require.NoError(t, err)
}

func TestRescanReloadsChangedArtifact(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "01001a")
	store := artifact.NewStore(dir, discardLogger())
	require.NoError(t, store.Load())

	writeArtifact(t, dir, "01001a", "02001a")
	later := store.Current().ModTime.Add(time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(dir, config.DeckDataFile), later, later))

	rescan(store, discardLogger())
	assert.Len(t, store.Current().Heroes, 2)

	before := store.Current()
	rescan(store, discardLogger())
	assert.Same(t, before, store.Current(), "unchanged artifact is not reloaded")
}

func TestRescanKeepsSnapshotOnBrokenFile(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "01001a")
	store := artifact.NewStore(dir, discardLogger())
	require.NoError(t, store.Load())
	before := store.Current()

	path := filepath.Join(dir, config.DeckDataFile)
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	later := before.ModTime.Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	rescan(store, discardLogger())
	assert.Same(t, before, store.Current())
}

func TestStartStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewStore(dir, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Start(ctx, store, cache.New(false, time.Minute),
			Config{RescanInterval: 10 * time.Millisecond, StatsInterval: 10 * time.Millisecond}, discardLogger())
		close(done)
	}()

	// the artifact appears after startup and is picked up by polling alone
	time.Sleep(30 * time.Millisecond)
	writeArtifact(t, dir, "01001a")
	require.Eventually(t, func() bool { return store.Current() != nil }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("maintenance did not stop")
	}
}
