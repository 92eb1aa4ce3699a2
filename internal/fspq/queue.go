package fspq

import (
	"github.com/dreamware/fspq/internal/feature"
	"github.com/dreamware/fspq/internal/ferrors"
	"github.com/dreamware/fspq/internal/itemheap"
)

// Queue is C5: the fair sorting priority queue facade described by
// spec.md §4.5. It binds a feature.Scheduler (C4, the fairness state
// machine) to an itemheap.Heap (C3, the per-bucket FIFO payload store),
// enforces the queue's declared feature schema on every enqueue, and is
// the only type in this module a caller is expected to hold directly.
//
// Architecture:
//
//	Enqueue: validate schema -> scheduler.AddItem -> heap.Push -> scheduler.IncrementTotalItems
//	Dequeue: scheduler.UseNextLeaf -> heap.Pop -> scheduler.DecrementTotalItems
//	Peek:    scheduler.PeekNextLeaf -> heap.Peek
//
// Thread-safety: a Queue is not safe for concurrent use — same
// restriction as its Scheduler (spec.md §5). The service layer
// (internal/fspqd via internal/registry) is what wraps each Queue in a
// reader-writer lock; Enqueue/Dequeue take the exclusive side,
// Peek/Size/GetEpoch the shared side.
type Queue struct {
	names     []string
	scheduler *feature.Scheduler
	heap      *itemheap.Heap
}

// New constructs a memory-mode queue over the given ordered feature
// names. Both the scheduler and the item heap live under generated temp
// directories, removed when Close is called — nothing survives past the
// process.
func New(names []string) (*Queue, error) {
	scheduler, err := feature.New(names)
	if err != nil {
		return nil, err
	}
	heap, err := itemheap.New()
	if err != nil {
		scheduler.Close()
		return nil, err
	}
	return &Queue{names: names, scheduler: scheduler, heap: heap}, nil
}

// NewDurable constructs a durable-mode queue rooted at dir, reusing any
// prior state found there.
//
// Behavior: the scheduler and the item heap each open their own backing
// files under dir (metadata.db, node_has_leaves.db,
// node_items_at_index.db, node_child_index.db, node_child_seq.db,
// value_epoch.db, and the sharded item store items.db all live side by
// side).
// Every mutating operation on either flushes before returning. Reopening
// the same dir with a different feature-name schema than it was
// originally created with succeeds here (construction never rejects,
// per spec.md §4.4.1) but fails on the first Enqueue against the
// mismatched schema — see validate.
func NewDurable(names []string, dir string) (*Queue, error) {
	scheduler, err := feature.NewDurable(names, dir)
	if err != nil {
		return nil, err
	}
	heap, err := itemheap.NewDurable(dir)
	if err != nil {
		scheduler.Close()
		return nil, err
	}
	return &Queue{names: names, scheduler: scheduler, heap: heap}, nil
}

// Close releases the underlying scheduler and item heap. In memory mode
// this also removes both of their generated temp directories; in
// durable mode the data directory is left intact for a future reopen.
func (q *Queue) Close() error {
	schedErr := q.scheduler.Close()
	heapErr := q.heap.Close()
	if schedErr != nil {
		return schedErr
	}
	return heapErr
}

// validate enforces spec.md §4.5's enqueue contract: values must carry
// exactly one FeatureValue per declared name, in the same order, and
// the ordered name sequence must hash to the same feature_names_hash
// this queue was (or, on durable reopen, previously was) constructed
// with. The per-name loop below exists to give a precise mismatch
// location in the error message; the hash comparison is what actually
// catches a durable reopen under a changed schema, since q.names alone
// would otherwise look self-consistent.
func (q *Queue) validate(values []feature.Value) error {
	if len(values) != len(q.names) {
		return ferrors.Standardf("fspq: expected %d feature values, got %d", len(q.names), len(values))
	}
	for i, v := range values {
		if v.Name != q.names[i] {
			return ferrors.Standardf("fspq: feature %d: expected name %q, got %q", i, q.names[i], v.Name)
		}
	}
	persistedHash, err := q.scheduler.FeatureNamesHash()
	if err != nil {
		return err
	}
	if feature.HashNames(q.names) != persistedHash {
		return ferrors.Standardf("fspq: feature names %v disagree with this queue's persisted schema", q.names)
	}
	return nil
}

// Enqueue inserts payload under the given ordered feature values. values
// must match this queue's schema exactly: same length, same names, in the
// same order. It returns the resulting epoch_step (spec.md §4.5).
func (q *Queue) Enqueue(values []feature.Value, payload []byte) (uint64, error) {
	if err := q.validate(values); err != nil {
		return 0, err
	}

	leaf := feature.HashPrefix(values)
	epoch, err := q.scheduler.AddItem(values, leaf)
	if err != nil {
		return 0, err
	}
	if err := q.heap.Push(epoch, leaf, payload); err != nil {
		return 0, err
	}
	if err := q.scheduler.IncrementTotalItems(); err != nil {
		return 0, err
	}
	return epoch, nil
}

// Dequeue removes and returns the next fairly-selected payload, or
// found=false if the queue is empty.
//
// Behavior: the scheduler's UseNextLeaf call both selects the bucket and
// advances every piece of fairness state (items_at_index,
// last_used_epoch, epoch_step) before the heap pop even runs; a
// dequeue that finds the queue empty leaves epoch_step untouched
// (spec.md §9, pinned by TestDequeueOnEmptyDoesNotAdvanceEpoch).
//
// Returns the payload, true, nil on success; nil, false, nil if the
// queue holds no items; or nil, false, err if any underlying store
// operation failed.
func (q *Queue) Dequeue() (payload []byte, found bool, err error) {
	leaf, found, err := q.scheduler.UseNextLeaf()
	if err != nil || !found {
		return nil, false, err
	}
	payload, err = q.heap.Pop(leaf)
	if err != nil {
		return nil, false, err
	}
	if err := q.scheduler.DecrementTotalItems(); err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// Peek returns the next fairly-selected payload without removing it, or
// found=false if the queue is empty.
//
// Thread-safety note for callers composing Peek with Dequeue: Peek
// alone never mutates scheduler state, but nothing stops a concurrent
// Dequeue (on another Queue handle or goroutine) from invalidating the
// answer between the two calls — the non-blocking reader-writer lock
// that serializes this is internal/registry's job, not this method's.
// Two back-to-back Peek calls with no intervening mutation always agree
// (spec.md §8 property 5).
func (q *Queue) Peek() (payload []byte, found bool, err error) {
	leaf, found, err := q.scheduler.PeekNextLeaf()
	if err != nil || !found {
		return nil, false, err
	}
	payload, err = q.heap.Peek(leaf)
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// Size returns the number of items currently enqueued.
func (q *Queue) Size() (uint64, error) {
	return q.scheduler.TotalItems()
}

// GetEpoch returns the queue's current monotonic epoch_step.
func (q *Queue) GetEpoch() (uint64, error) {
	return q.scheduler.GetEpoch()
}

// FeatureNames returns the queue's declared, ordered feature names.
func (q *Queue) FeatureNames() []string {
	return append([]string(nil), q.names...)
}
