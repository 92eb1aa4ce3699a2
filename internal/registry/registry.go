package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dreamware/fspq/internal/feature"
	"github.com/dreamware/fspq/internal/fspq"
)

// ErrNotFound is returned when a queue name has no registered instance.
var ErrNotFound = errors.New("registry: queue not found")

// ErrAlreadyExists is returned by Create when name is already registered.
var ErrAlreadyExists = errors.New("registry: queue already exists")

// ErrBusy is returned when a lock could not be acquired without blocking.
// The RPC layer maps this directly to codes.Unavailable.
var ErrBusy = errors.New("registry: update in progress please retry")

// entry pairs a queue with the RWMutex that serializes access to it,
// independent of the registry's own map lock.
type entry struct {
	mu    sync.RWMutex
	queue *fspq.Queue
}

// Registry maps queue names to durable FSPQ instances rooted under a
// shared data directory, one subdirectory per queue name.
type Registry struct {
	mu      sync.RWMutex
	queues  map[string]*entry
	dataDir string
}

// New constructs an empty registry. Every queue it creates is durable,
// rooted at <dataDir>/<name> (spec.md §6 "Persisted layout").
func New(dataDir string) *Registry {
	return &Registry{
		queues:  make(map[string]*entry),
		dataDir: dataDir,
	}
}

// Create constructs a new durable queue named name over featureNames and
// registers it. It rejects a duplicate name without touching disk for the
// rejected call.
func (r *Registry) Create(name string, featureNames []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.queues[name]; exists {
		return ErrAlreadyExists
	}

	q, err := fspq.NewDurable(featureNames, filepath.Join(r.dataDir, name))
	if err != nil {
		return fmt.Errorf("registry: create queue %q: %w", name, err)
	}
	r.queues[name] = &entry{queue: q}
	return nil
}

// lookup returns the entry for name, or ErrNotFound.
func (r *Registry) lookup(name string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.queues[name]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// WithRead runs fn against the named queue under a non-blocking read
// lock. It is used for Peek, Size and GetEpoch.
func (r *Registry) WithRead(name string, fn func(*fspq.Queue) error) error {
	e, err := r.lookup(name)
	if err != nil {
		return err
	}
	if !e.mu.TryRLock() {
		return ErrBusy
	}
	defer e.mu.RUnlock()
	return fn(e.queue)
}

// WithWrite runs fn against the named queue under a non-blocking write
// lock. It is used for Enqueue and Dequeue.
func (r *Registry) WithWrite(name string, fn func(*fspq.Queue) error) error {
	e, err := r.lookup(name)
	if err != nil {
		return err
	}
	if !e.mu.TryLock() {
		return ErrBusy
	}
	defer e.mu.Unlock()
	return fn(e.queue)
}

// Names returns every registered queue name, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.queues))
	for name := range r.queues {
		names = append(names, name)
	}
	return names
}

// CloseAll releases every registered queue's underlying stores.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, e := range r.queues {
		e.mu.Lock()
		if err := e.queue.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.mu.Unlock()
	}
	return firstErr
}

// FeatureValues is a convenience re-export so callers building requests
// against a Registry do not need to import internal/feature directly for
// the single Value type they need.
type FeatureValues = []feature.Value
