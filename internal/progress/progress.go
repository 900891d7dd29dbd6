// Package progress is the resumable checkpoint for the day-by-day decklist
// fetch. Each fetched day is committed in one bbolt transaction together
// with its decks, so an interrupted run resumes exactly where it stopped and
// a crash mid-write cannot lose or duplicate a day.
package progress

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketDates = []byte("fetched_dates")
	bucketDecks = []byte("decks")
)

// Store is a bbolt-backed fetch checkpoint.
type Store struct {
	db     *bolt.DB
	path   string
	closed bool
}

// Open opens (or creates) the checkpoint at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketDates); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketDecks)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the checkpoint file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying bbolt database. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Remove closes the store and deletes the checkpoint file. Called once the
// archive has been written and the checkpoint is no longer needed.
func (s *Store) Remove() error {
	if err := s.Close(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

func dayKey(day time.Time) []byte {
	return []byte(day.Format(time.DateOnly))
}

// IsFetched reports whether day was already committed.
func (s *Store) IsFetched(day time.Time) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketDates).Get(dayKey(day)) != nil
		return nil
	})
	return found, err
}

// SaveDay appends decks and marks day fetched in one transaction.
func (s *Store) SaveDay(day time.Time, decks []json.RawMessage) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDecks)
		for _, d := range decks {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
			if err := b.Put(key, d); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketDates).Put(dayKey(day), []byte(strconv.Itoa(len(decks))))
	})
}

// FetchedCount returns the number of committed days.
func (s *Store) FetchedCount() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketDates).Stats().KeyN
		return nil
	})
	return n, err
}

// DeckCount returns the number of cached decks.
func (s *Store) DeckCount() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketDecks).Stats().KeyN
		return nil
	})
	return n, err
}

// Decks returns every cached deck in insertion order.
func (s *Store) Decks() ([]json.RawMessage, error) {
	var out []json.RawMessage
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDecks).ForEach(func(_, v []byte) error {
			// Copy bytes out of the transaction (bbolt slices are only valid within tx)
			d := make(json.RawMessage, len(v))
			copy(d, v)
			out = append(out, d)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read decks: %w", err)
	}
	return out, nil
}
