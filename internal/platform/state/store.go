package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Fixed keys for the locally persisted desk state. The sheet URL and the
// remedy cache live under stable names so a restarted desk picks up where it
// left off; operator accounts hang off a shared prefix.
const (
	SheetURLKey    = "remedy_sheet_url"
	RemedyCacheKey = "remedy_cache"
	OperatorPrefix = "operator:"
)

// Store is the embedded key/value store backing local persisted state.
// Values are strings or JSON-marshaled records; keys are fixed names or
// prefixed identifiers.
type Store struct {
	db     *leveldb.DB
	logger zerolog.Logger
}

// Open opens (creating if needed) the store under dir.
func Open(dir string, logger zerolog.Logger) (*Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open state store at %s: %w", dir, err)
	}
	logger.Debug().Str("dir", dir).Msg("state store opened")
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutString stores a raw string value under key.
func (s *Store) PutString(key, val string) error {
	if err := s.db.Put([]byte(key), []byte(val), nil); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// GetString loads a raw string value. The boolean reports whether the key
// exists; a missing key is not an error.
func (s *Store) GetString(key string) (string, bool, error) {
	v, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return string(v), true, nil
}

// PutJSON marshals v and stores it under key.
func (s *Store) PutJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.db.Put([]byte(key), data, nil); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// GetJSON unmarshals the value under key into v. The boolean reports whether
// the key exists.
func (s *Store) GetJSON(key string, v any) (bool, error) {
	data, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) error {
	if err := s.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys returns every key under prefix, in key order.
func (s *Store) Keys(prefix string) ([]string, error) {
	var keys []string
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", prefix, err)
	}
	return keys, nil
}

// Reset deletes every key in the store. Used by the state CLI to start a
// desk over from scratch.
func (s *Store) Reset() error {
	iter := s.db.NewIterator(nil, nil)
	for iter.Next() {
		key := iter.Key()
		if err := s.db.Delete(key, nil); err != nil {
			iter.Release()
			return fmt.Errorf("delete %s: %w", string(key), err)
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("reset scan: %w", err)
	}
	s.logger.Info().Msg("state store reset")
	return nil
}
