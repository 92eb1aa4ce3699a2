package prefixstore

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"github.com/dreamware/fspq/internal/ferrors"
	bolt "go.etcd.io/bbolt"
)

var rootBucket = []byte("prefix")

// Store maps (prefix, key) pairs to a uint64 value.
type Store struct {
	mu      sync.Mutex
	db      *bolt.DB
	bucket  []byte
	durable bool
	path    string
}

// New opens a memory-mode store under a generated temp directory, removed
// on Close.
func New(name string) (*Store, error) {
	dir, err := os.MkdirTemp("", "fspq-prefixstore-"+name+"-*")
	if err != nil {
		return nil, ferrors.Standard("prefixstore: create temp dir", err)
	}
	s, err := open(filepath.Join(dir, name+".db"), false)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return s, nil
}

// NewDurable opens a durable-mode store rooted at dir/name.db.
func NewDurable(dir, name string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ferrors.Standard("prefixstore: create data dir", err)
	}
	return open(filepath.Join(dir, name+".db"), true)
}

func open(path string, durable bool) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{NoSync: !durable})
	if err != nil {
		return nil, ferrors.Standard("prefixstore: open "+path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, ferrors.Standard("prefixstore: create bucket", err)
	}
	return &Store{db: db, bucket: rootBucket, durable: durable, path: path}, nil
}

func compositeKey(prefix, key uint64) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], prefix)
	binary.BigEndian.PutUint64(buf[8:16], key)
	return buf
}

func prefixBytes(prefix uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, prefix)
	return buf
}

func decodeU64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, ferrors.Standardf("prefixstore: expected 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// Get retrieves the value at (prefix, key), returning ferrors.ErrEmpty if
// absent.
func (s *Store) Get(prefix, key uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get(compositeKey(prefix, key))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return 0, ferrors.Standard("prefixstore: get", err)
	}
	if raw == nil {
		return 0, ferrors.ErrEmpty
	}
	return decodeU64(raw)
}

// Put stores value at (prefix, key), overwriting any existing value.
func (s *Store) Put(prefix, key, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(prefix, key, value)
}

func (s *Store) put(prefix, key, value uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, value)
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(compositeKey(prefix, key), buf)
	}); err != nil {
		return ferrors.Standard("prefixstore: put", err)
	}
	return nil
}

// PutIfAbsent stores value at (prefix, key) only if absent, returning true
// iff inserted.
func (s *Store) PutIfAbsent(prefix, key, value uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, value)

	var inserted bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		ck := compositeKey(prefix, key)
		if b.Get(ck) != nil {
			inserted = false
			return nil
		}
		inserted = true
		return b.Put(ck, buf)
	})
	if err != nil {
		return false, ferrors.Standard("prefixstore: put-if-absent", err)
	}
	return inserted, nil
}

// Update reads the current value at (prefix, key), applies f, and stores
// the result. It fails with ferrors.ErrEmpty if absent.
func (s *Store) Update(prefix, key uint64, f func(uint64) uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get(compositeKey(prefix, key))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return 0, ferrors.Standard("prefixstore: update/get", err)
	}
	if raw == nil {
		return 0, ferrors.ErrEmpty
	}
	current, err := decodeU64(raw)
	if err != nil {
		return 0, err
	}
	next := f(current)
	if err := s.put(prefix, key, next); err != nil {
		return 0, err
	}
	return next, nil
}

// HasPrefix reports whether any key exists under prefix.
func (s *Store) HasPrefix(prefix uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	pb := prefixBytes(prefix)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		k, _ := c.Seek(pb)
		found = k != nil && bytes.HasPrefix(k, pb)
		return nil
	})
	if err != nil {
		return false, ferrors.Standard("prefixstore: has-prefix", err)
	}
	return found, nil
}

// FilterKeysByPrefix returns the sub-keys under prefix whose values satisfy
// predicate, in iteration (ascending key) order.
func (s *Store) FilterKeysByPrefix(prefix uint64, predicate func(uint64) bool) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pb := prefixBytes(prefix)
	var keys []uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.Seek(pb); k != nil && bytes.HasPrefix(k, pb); k, v = c.Next() {
			value, err := decodeU64(v)
			if err != nil {
				return err
			}
			if predicate(value) {
				subKey, err := decodeU64(k[8:16])
				if err != nil {
					return err
				}
				keys = append(keys, subKey)
			}
		}
		return nil
	})
	if err != nil {
		return nil, ferrors.Standard("prefixstore: filter-keys-by-prefix", err)
	}
	return keys, nil
}

// GetAtPrefix returns every value stored under prefix.
func (s *Store) GetAtPrefix(prefix uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pb := prefixBytes(prefix)
	var values []uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.Seek(pb); k != nil && bytes.HasPrefix(k, pb); k, v = c.Next() {
			value, err := decodeU64(v)
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	if err != nil {
		return nil, ferrors.Standard("prefixstore: get-at-prefix", err)
	}
	return values, nil
}

// Close releases the underlying bbolt handle, removing the backing
// directory in memory mode.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := s.db.Close(); err != nil {
		return ferrors.Standard("prefixstore: close", err)
	}
	if !s.durable {
		return os.RemoveAll(dir)
	}
	return nil
}
