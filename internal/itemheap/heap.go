package itemheap

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/dreamware/fspq/internal/ferrors"
	bolt "go.etcd.io/bbolt"
)

// Heap is the sharded item heap: bucket hash -> FIFO of byte payloads.
type Heap struct {
	mu      sync.Mutex
	db      *bolt.DB
	durable bool
	path    string
}

// New opens a memory-mode heap under a generated temp directory, removed
// on Close.
func New() (*Heap, error) {
	dir, err := os.MkdirTemp("", "fspq-itemheap-*")
	if err != nil {
		return nil, ferrors.Standard("itemheap: create temp dir", err)
	}
	h, err := open(filepath.Join(dir, "items.db"), false)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return h, nil
}

// NewDurable opens a durable-mode heap rooted at dir/items.db.
func NewDurable(dir string) (*Heap, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ferrors.Standard("itemheap: create data dir", err)
	}
	return open(filepath.Join(dir, "items.db"), true)
}

func open(path string, durable bool) (*Heap, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{NoSync: !durable})
	if err != nil {
		return nil, ferrors.Standard("itemheap: open "+path, err)
	}
	return &Heap{db: db, durable: durable, path: path}, nil
}

func bucketName(bucket uint64) []byte {
	return []byte(strconv.FormatUint(bucket, 10))
}

func epochKey(epoch uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, epoch)
	return buf
}

// Push appends payload to bucket, ordered by epoch. epoch must be strictly
// greater than every epoch previously pushed to this bucket for FIFO order
// to hold — the queue facade guarantees this since epoch_step is
// monotonic.
func (h *Heap) Push(epoch, bucket uint64, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName(bucket))
		if err != nil {
			return err
		}
		return b.Put(epochKey(epoch), payload)
	})
	if err != nil {
		return ferrors.Standard("itemheap: push", err)
	}
	return nil
}

// Peek returns the lowest-epoch payload in bucket without removing it, or
// nil if the bucket is empty or unknown.
func (h *Heap) Peek(bucket uint64) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var payload []byte
	err := h.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(bucket))
		if b == nil {
			return nil
		}
		_, v := b.Cursor().First()
		if v != nil {
			payload = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, ferrors.Standard("itemheap: peek", err)
	}
	return payload, nil
}

// Pop removes and returns the lowest-epoch payload in bucket, or nil if the
// bucket is empty or unknown.
func (h *Heap) Pop(bucket uint64) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var payload []byte
	err := h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(bucket))
		if b == nil {
			return nil
		}
		k, v := b.Cursor().First()
		if k == nil {
			return nil
		}
		payload = append([]byte(nil), v...)
		return b.Delete(k)
	})
	if err != nil {
		return nil, ferrors.Standard("itemheap: pop", err)
	}
	return payload, nil
}

// Close releases the underlying bbolt handle, removing the backing
// directory in memory mode.
func (h *Heap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	dir := filepath.Dir(h.path)
	if err := h.db.Close(); err != nil {
		return ferrors.Standard("itemheap: close", err)
	}
	if !h.durable {
		return os.RemoveAll(dir)
	}
	return nil
}
