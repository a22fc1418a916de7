// Package cache provides a persistent key-value cache for flight data,
// backed by BadgerDB. Every entry is stored inside an envelope carrying
// write time and optional expiry, so staleness can be judged on read
// without relying on Badger's own TTL machinery.
//
// Cache failures are deliberately soft: a read problem reports a miss and
// a write problem is retried once and then logged. Callers never see a
// cache error surface as an operation failure.
package cache

import (
	"encoding/json"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/unklstewy/aero-scope/internal/logging"
)

// envelope wraps every stored value with its write time and expiry.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	ExpiresAt int64           `json:"expiresAt,omitempty"`
}

// Store is a TTL-aware cache over a Badger database.
type Store struct {
	db  *badger.DB
	log zerolog.Logger

	// now and write are swapped out by tests to control expiry and to
	// inject storage failures.
	now   func() time.Time
	write func(key string, raw []byte) error
}

// Open opens an on-disk store at dir, creating it if needed.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// OpenInMemory opens a store with no on-disk state. Used when caching is
// disabled in config and by tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// New wraps an already-open Badger database.
func New(db *badger.DB) *Store {
	s := &Store{
		db:  db,
		log: logging.Component("cache"),
		now: time.Now,
	}
	s.write = s.writeEntry
	return s
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get reads key into out and reports whether a valid entry was found.
// Expired and unreadable entries are evicted and reported as a miss.
func (s *Store) Get(key string, out any) bool {
	var env envelope
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &env)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false
	}
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("evicting unreadable cache entry")
		s.evict(key)
		return false
	}

	if env.ExpiresAt > 0 && s.now().UnixMilli() > env.ExpiresAt {
		s.evict(key)
		return false
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("evicting corrupt cache entry")
		s.evict(key)
		return false
	}
	return true
}

// Set stores value under key with the given TTL. A ttl of zero stores the
// entry without expiry. Write failures trigger one purge-and-retry; a
// second failure is logged and swallowed.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("cache value not serializable")
		return
	}

	nowMs := s.now().UnixMilli()
	env := envelope{Data: data, Timestamp: nowMs}
	if ttl > 0 {
		env.ExpiresAt = nowMs + ttl.Milliseconds()
	}

	raw, err := json.Marshal(env)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("cache envelope not serializable")
		return
	}

	if err := s.write(key, raw); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed, purging expired entries and retrying")
		s.PurgeExpired()
		if err := s.write(key, raw); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("cache write failed after purge")
		}
	}
}

func (s *Store) writeEntry(key string, raw []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
}

// Delete removes key. Removing an absent key is not an error.
func (s *Store) Delete(key string) {
	s.evict(key)
}

func (s *Store) evict(key string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

// Clear removes every entry.
func (s *Store) Clear() {
	if err := s.db.DropAll(); err != nil {
		s.log.Warn().Err(err).Msg("cache clear failed")
	}
}

// PurgeExpired scans the store and deletes every expired entry.
func (s *Store) PurgeExpired() {
	nowMs := s.now().UnixMilli()
	var expired [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var env envelope
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &env)
			})
			if err != nil || (env.ExpiresAt > 0 && nowMs > env.ExpiresAt) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("cache purge scan failed")
		return
	}

	for _, key := range expired {
		s.evict(string(key))
	}
}
