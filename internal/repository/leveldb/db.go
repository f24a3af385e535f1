package leveldb

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("not found")

// Key prefixes. Each component persists under its own namespace so a
// crash between two components' writes leaves the others untouched.
const (
	prefixUser      = "user:"
	prefixConsent   = "consent:"
	prefixEmergency = "emergency:"
	prefixRecord    = "record:"
	prefixBlock     = "block:"
	prefixPending   = "pending:"
	keyChainHeight  = "chain:height"
	keyPendingSeq   = "chain:pending_seq"
)

// Store wraps the LevelDB handle shared by all repositories.
type Store struct {
	db *leveldb.DB
}

// Open opens (or creates) the durable store at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store backed by memory only, for tests.
func OpenInMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) putJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.db.Put([]byte(key), data, nil); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) getJSON(key string, v interface{}) error {
	data, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// scanPrefix visits every value stored under the prefix in key order.
func (s *Store) scanPrefix(prefix string, visit func(value []byte) error) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	for iter.Next() {
		if err := visit(iter.Value()); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", prefix, err)
	}
	return nil
}

func (s *Store) has(key string) (bool, error) {
	ok, err := s.db.Has([]byte(key), nil)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return ok, nil
}
