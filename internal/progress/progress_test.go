package progress

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestSaveDayAndResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.SaveDay(day(1), []json.RawMessage{json.RawMessage(`{"id":1}`), json.RawMessage(`{"id":2}`)}))
	require.NoError(t, s.SaveDay(day(2), nil))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	ok, err := s.IsFetched(day(1))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.IsFetched(day(2))
	require.NoError(t, err)
	assert.True(t, ok, "an empty day is still fetched")
	ok, err = s.IsFetched(day(3))
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.FetchedCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.SaveDay(day(3), []json.RawMessage{json.RawMessage(`{"id":3}`)}))
	decks, err := s.Decks()
	require.NoError(t, err)
	require.Len(t, decks, 3)
	assert.JSONEq(t, `{"id":1}`, string(decks[0]))
	assert.JSONEq(t, `{"id":3}`, string(decks[2]))

	count, err := s.DeckCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRemoveDeletesCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.FileExists(t, path)

	require.NoError(t, s.Remove())
	assert.NoFileExists(t, path)
	assert.NoError(t, s.Close())
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw", "nested", "progress.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.FileExists(t, path)
	assert.Equal(t, path, s.Path())
}
