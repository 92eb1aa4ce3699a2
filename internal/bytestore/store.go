package bytestore

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/dreamware/fspq/internal/ferrors"
	bolt "go.etcd.io/bbolt"
)

// Store maps a uint64 key to a typed value V, backed by a single bbolt
// bucket. It is safe for concurrent use: every operation is serialized by
// an internal mutex, matching the single-writer-per-queue model this
// package is built for
// (concurrent put_if_absent on one key from multiple callers is still the
// caller's problem to avoid — the store offers no cross-key atomicity
// beyond bbolt's own transaction isolation).
type Store[V any] struct {
	mu      sync.Mutex
	db      *bolt.DB
	bucket  []byte
	codec   Codec[V]
	durable bool
	path    string
}

var rootBucket = []byte("store")

// New opens a memory-mode store: its backing file lives under a generated
// temp directory and is removed when Close is called.
func New[V any](name string, codec Codec[V]) (*Store[V], error) {
	dir, err := os.MkdirTemp("", "fspq-bytestore-"+name+"-*")
	if err != nil {
		return nil, ferrors.Standard("bytestore: create temp dir", err)
	}
	s, err := open[V](filepath.Join(dir, name+".db"), codec, false)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return s, nil
}

// NewDurable opens a durable-mode store rooted at dir/name.db. The
// directory is created if missing and preserved across process lifetimes.
func NewDurable[V any](dir, name string, codec Codec[V]) (*Store[V], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ferrors.Standard("bytestore: create data dir", err)
	}
	return open[V](filepath.Join(dir, name+".db"), codec, true)
}

func open[V any](path string, codec Codec[V], durable bool) (*Store[V], error) {
	// Memory mode skips bbolt's fsync-on-commit: the file lives under a
	// throwaway temp directory and is removed on Close, so durability
	// within a single process lifetime is the only guarantee that matters.
	db, err := bolt.Open(path, 0o644, &bolt.Options{NoSync: !durable})
	if err != nil {
		return nil, ferrors.Standard("bytestore: open "+path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, ferrors.Standard("bytestore: create bucket", err)
	}
	return &Store[V]{
		db:      db,
		bucket:  rootBucket,
		codec:   codec,
		durable: durable,
		path:    path,
	}, nil
}

func keyBytes(key uint64) []byte {
	b, _ := U64Codec.Encode(key)
	return b
}

// Get retrieves the value stored under key, returning ferrors.ErrEmpty if
// absent.
func (s *Store[V]) Get(key uint64) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get(keyBytes(key))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return zero, ferrors.Standard("bytestore: get", err)
	}
	if raw == nil {
		return zero, ferrors.ErrEmpty
	}
	return s.codec.Decode(raw)
}

// Put stores value under key, overwriting any existing value. In durable
// mode the write is flushed (fsynced via bbolt's commit) before returning.
func (s *Store[V]) Put(key uint64, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(key, value)
}

func (s *Store[V]) put(key uint64, value V) error {
	enc, err := s.codec.Encode(value)
	if err != nil {
		return ferrors.Standard("bytestore: encode", err)
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(keyBytes(key), enc)
	}); err != nil {
		return ferrors.Standard("bytestore: put", err)
	}
	return nil
}

// PutIfAbsent stores value under key only if no value is currently present,
// returning true iff the value was inserted. This is the primitive used to
// write "set-once" metadata such as the schema fingerprint and root index.
func (s *Store[V]) PutIfAbsent(key uint64, value V) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted bool
	enc, err := s.codec.Encode(value)
	if err != nil {
		return false, ferrors.Standard("bytestore: encode", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b.Get(keyBytes(key)) != nil {
			inserted = false
			return nil
		}
		inserted = true
		return b.Put(keyBytes(key), enc)
	})
	if err != nil {
		return false, ferrors.Standard("bytestore: put-if-absent", err)
	}
	return inserted, nil
}

// Update reads the current value, applies f, and stores the result,
// returning the new value. It fails with ferrors.ErrEmpty if key is absent.
func (s *Store[V]) Update(key uint64, f func(V) V) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	var raw []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get(keyBytes(key))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return zero, ferrors.Standard("bytestore: update/get", err)
	}
	if raw == nil {
		return zero, ferrors.ErrEmpty
	}
	current, err := s.codec.Decode(raw)
	if err != nil {
		return zero, err
	}
	next := f(current)
	if err := s.put(key, next); err != nil {
		return zero, err
	}
	return next, nil
}

// Close releases the underlying bbolt handle. In memory mode it also
// removes the temp directory the store was created under, matching the
// original implementation's destroy-on-drop semantics for its tmp-backed
// storage.
func (s *Store[V]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := s.db.Close(); err != nil {
		return ferrors.Standard("bytestore: close", err)
	}
	if !s.durable {
		return os.RemoveAll(dir)
	}
	return nil
}
