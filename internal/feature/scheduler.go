// Package feature implements C4, the feature-tree scheduler: the fairness
// state machine that selects, at every dequeue, which feature-value path
// (and hence which leaf bucket) is served next.
//
// # Architecture
//
//	┌────────────────────────── Scheduler ───────────────────────────┐
//	│  metadata (bytestore[uint64]):                                  │
//	│    feature_names_hash, epoch_step, total_items, dimension,      │
//	│    root_index                                                   │
//	│                                                                  │
//	│  value_epoch (bytestore[uint64]): value_hash -> last_used_epoch │
//	│  (global — shared by every node, not per-node — this is what    │
//	│  gives cross-path fairness)                                     │
//	│                                                                  │
//	│  has_leaves (bytestore[bool]): node_id -> bool                  │
//	│  items_at_index (prefixstore): (node_id,value_hash) -> count    │
//	│  child_index    (prefixstore): (node_id,value_hash) -> child id │
//	│  child_seq      (prefixstore): (node_id,value_hash) -> order    │
//	└──────────────────────────────────────────────────────────────────┘
//
// There is no pointer graph: a "node" is nothing but an id (a hash of the
// value prefix that reaches it) used as a lookup key into the four tables
// above — this replaces any reference/pointer structure with a flat
// hash-to-record mapping.
//
// child_seq resolves the tree's tie-breaking choice: the first child ever
// registered at a node wins ties on last_used_epoch, applied identically
// by Peek and UseNextLeaf. Because items_at_index/child_index iterate in
// ascending value-hash order (an artifact of the prefix store's key
// layout) rather than registration order, child_seq is the mechanism that
// actually recovers "first registered" — it is not optional plumbing.
package feature

import (
	"github.com/dreamware/fspq/internal/bytestore"
	"github.com/dreamware/fspq/internal/ferrors"
	"github.com/dreamware/fspq/internal/prefixstore"
)

const (
	metaFeatureNamesHash uint64 = iota
	metaEpochStep
	metaTotalItems
	metaDimension
	metaRootIndex
	metaNextSeq
)

// Scheduler is C4: the feature-tree fairness state machine described by
// spec.md §4.4. It owns every piece of state that decides, on each
// dequeue, which leaf bucket is served next — the metadata map, the
// global per-value epoch map, and the three prefix-indexed tables that
// together encode the feature tree as a flat hash-to-record mapping
// rather than a pointer graph.
//
// Concurrency: a Scheduler is not safe for concurrent use. Every method
// reads and writes several underlying stores without any cross-call
// atomicity of its own; spec.md §5 pushes serialization up to the
// caller (internal/fspqd's registry wraps each queue in a
// reader-writer lock). Calling AddItem and UseNextLeaf from different
// goroutines on the same Scheduler without external synchronization can
// interleave a partially-updated tree into PeekNextLeaf's read path.
//
// Failure semantics: a Scheduler method returns a Standard error for any
// storage I/O failure. It panics — not returns an error — when the
// tree's own invariants are violated (items_at_index positive but
// child_index missing, or a non-root layer finding no eligible child);
// spec.md §4.4.7 calls these fatal, not recoverable.
type Scheduler struct {
	names []string

	metadata     *bytestore.Store[uint64]
	hasLeaves    *bytestore.Store[bool]
	valueEpoch   *bytestore.Store[uint64]
	itemsAtIndex *prefixstore.Store
	childIndex   *prefixstore.Store
	childSeq     *prefixstore.Store
}

// New constructs a memory-mode scheduler for the given ordered feature
// names.
//
// Behavior: every backing store is created under a freshly generated
// temp directory (one per store, per spec.md §4.1) and removed when
// Close is called — there is no reopen for memory mode, since nothing
// survives the process.
//
// Parameters:
//   - names: the ordered, possibly-empty feature-name schema. Order is
//     significant — it determines both feature_names_hash and the
//     layer each name occupies during insertion and selection.
//
// Returns a ready-to-use Scheduler with epoch_step=0, total_items=0,
// and no root_index (set lazily by the first AddItem), or an error if
// any backing store failed to initialize.
func New(names []string) (*Scheduler, error) {
	metadata, err := bytestore.New("metadata", bytestore.U64Codec)
	if err != nil {
		return nil, err
	}
	hasLeaves, err := bytestore.New("node_has_leaves", bytestore.BoolCodec)
	if err != nil {
		return nil, err
	}
	valueEpoch, err := bytestore.New("value_epoch", bytestore.U64Codec)
	if err != nil {
		return nil, err
	}
	itemsAtIndex, err := prefixstore.New("node_items_at_index")
	if err != nil {
		return nil, err
	}
	childIndex, err := prefixstore.New("node_child_index")
	if err != nil {
		return nil, err
	}
	childSeq, err := prefixstore.New("node_child_seq")
	if err != nil {
		return nil, err
	}
	return newScheduler(names, metadata, hasLeaves, valueEpoch, itemsAtIndex, childIndex, childSeq)
}

// NewDurable constructs a durable-mode scheduler rooted at dir, reusing
// any prior state found there.
//
// Reopen semantics: construction never rejects a schema mismatch
// between names and whatever feature_names_hash was already persisted
// at dir — every metadata field is written with PutIfAbsent, so a
// prior value always wins (spec.md §4.4.1). This lets an empty durable
// queue be reopened under a different schema without error; the
// facade (internal/fspq.Queue) is what rejects the mismatch, and only
// once an enqueue is actually attempted against it.
//
// Parameters:
//   - names: the schema this caller intends to use against dir.
//   - dir: the queue's data root. Every mutating operation flushes to
//     this directory before returning (spec.md §5's crash-consistency
//     contract); nothing here is removed on Close.
//
// Returns a Scheduler over dir's existing state (epoch_step,
// total_items, root_index, and every feature node and per-value epoch
// already on disk), or an error if any backing store failed to open.
func NewDurable(names []string, dir string) (*Scheduler, error) {
	metadata, err := bytestore.NewDurable(dir, "metadata", bytestore.U64Codec)
	if err != nil {
		return nil, err
	}
	hasLeaves, err := bytestore.NewDurable(dir, "node_has_leaves", bytestore.BoolCodec)
	if err != nil {
		return nil, err
	}
	valueEpoch, err := bytestore.NewDurable(dir, "value_epoch", bytestore.U64Codec)
	if err != nil {
		return nil, err
	}
	itemsAtIndex, err := prefixstore.NewDurable(dir, "node_items_at_index")
	if err != nil {
		return nil, err
	}
	childIndex, err := prefixstore.NewDurable(dir, "node_child_index")
	if err != nil {
		return nil, err
	}
	childSeq, err := prefixstore.NewDurable(dir, "node_child_seq")
	if err != nil {
		return nil, err
	}
	return newScheduler(names, metadata, hasLeaves, valueEpoch, itemsAtIndex, childIndex, childSeq)
}

func newScheduler(
	names []string,
	metadata *bytestore.Store[uint64],
	hasLeaves *bytestore.Store[bool],
	valueEpoch *bytestore.Store[uint64],
	itemsAtIndex, childIndex, childSeq *prefixstore.Store,
) (*Scheduler, error) {
	s := &Scheduler{
		names:        names,
		metadata:     metadata,
		hasLeaves:    hasLeaves,
		valueEpoch:   valueEpoch,
		itemsAtIndex: itemsAtIndex,
		childIndex:   childIndex,
		childSeq:     childSeq,
	}

	namesHash := HashNames(names)
	if _, err := metadata.PutIfAbsent(metaFeatureNamesHash, namesHash); err != nil {
		return nil, err
	}
	if _, err := metadata.PutIfAbsent(metaEpochStep, 0); err != nil {
		return nil, err
	}
	if _, err := metadata.PutIfAbsent(metaTotalItems, 0); err != nil {
		return nil, err
	}
	if _, err := metadata.PutIfAbsent(metaDimension, uint64(len(names))); err != nil {
		return nil, err
	}
	if _, err := metadata.PutIfAbsent(metaNextSeq, 0); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases every underlying store.
func (s *Scheduler) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{
		s.metadata, s.hasLeaves, s.valueEpoch, s.itemsAtIndex, s.childIndex, s.childSeq,
	} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FeatureNamesHash returns the schema fingerprint fixed at construction.
func (s *Scheduler) FeatureNamesHash() (uint64, error) {
	return s.metadata.Get(metaFeatureNamesHash)
}

// Dimension returns the number of declared feature names, fixed at
// construction.
func (s *Scheduler) Dimension() (uint64, error) {
	return s.metadata.Get(metaDimension)
}

// GetEpoch returns the current monotonic epoch_step.
func (s *Scheduler) GetEpoch() (uint64, error) {
	return s.metadata.Get(metaEpochStep)
}

// TotalItems returns the number of items currently enqueued.
func (s *Scheduler) TotalItems() (uint64, error) {
	return s.metadata.Get(metaTotalItems)
}

// IncrementTotalItems is called by the queue facade after a successful
// push to the item heap.
func (s *Scheduler) IncrementTotalItems() error {
	_, err := s.metadata.Update(metaTotalItems, func(v uint64) uint64 { return v + 1 })
	return err
}

// DecrementTotalItems is called by the queue facade after a successful pop
// from the item heap.
func (s *Scheduler) DecrementTotalItems() error {
	_, err := s.metadata.Update(metaTotalItems, func(v uint64) uint64 { return v - 1 })
	return err
}

func (s *Scheduler) rootIndex() (uint64, bool, error) {
	v, err := s.metadata.Get(metaRootIndex)
	if err != nil {
		if ferrors.IsEmpty(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return v, true, nil
}

func (s *Scheduler) nextSeq() (uint64, error) {
	return s.metadata.Update(metaNextSeq, func(v uint64) uint64 { return v + 1 })
}

// candidate is one value at a node under consideration during selection.
type candidate struct {
	valueHash uint64
	lastUsed  uint64
	seq       uint64
}

// selectChild picks, among the children of nodeID with pending items, the
// one with the lowest last_used_epoch, breaking ties by the lowest
// registration sequence (first-registered wins). It is the single
// selection rule shared by PeekNextLeaf and UseNextLeaf — spec.md §9
// requires both traversals to apply the exact same tie-break, and
// factoring it into one unexported method is what guarantees that.
//
// found is false only when nodeID currently has no child with
// items_at_index > 0; that is a normal, non-error condition at layer 0
// (empty queue) and a fatal invariant violation at any deeper layer,
// which the caller (not selectChild) is responsible for distinguishing.
func (s *Scheduler) selectChild(nodeID uint64) (valueHash uint64, childID uint64, found bool, err error) {
	present, err := s.itemsAtIndex.FilterKeysByPrefix(nodeID, func(count uint64) bool { return count > 0 })
	if err != nil {
		return 0, 0, false, err
	}
	if len(present) == 0 {
		return 0, 0, false, nil
	}

	var best *candidate
	for _, vh := range present {
		lastUsed, err := s.valueEpoch.Get(vh)
		if err != nil {
			return 0, 0, false, ferrors.Standard("feature: missing epoch memory for registered value", err)
		}
		seq, err := s.childSeq.Get(nodeID, vh)
		if err != nil {
			return 0, 0, false, ferrors.Standard("feature: missing registration order for registered value", err)
		}
		c := candidate{valueHash: vh, lastUsed: lastUsed, seq: seq}
		if best == nil || c.lastUsed < best.lastUsed || (c.lastUsed == best.lastUsed && c.seq < best.seq) {
			best = &c
		}
	}

	child, err := s.childIndex.Get(nodeID, best.valueHash)
	if err != nil {
		if ferrors.IsEmpty(err) {
			panic("fspq: feature tree invariant violated: items_at_index positive but child_index missing")
		}
		return 0, 0, false, err
	}
	return best.valueHash, child, true, nil
}

// PeekNextLeaf performs the non-destructive traversal described by
// spec.md §4.4.3: it returns the leaf bucket hash that UseNextLeaf would
// currently select, without mutating any state.
//
// Behavior: descends from root_index one layer per declared feature
// name, calling selectChild at each layer and stopping at the first
// node with has_leaves=true. Calling PeekNextLeaf any number of times in
// a row without an intervening AddItem or UseNextLeaf returns the same
// answer every time (spec.md §8 property 5).
//
// Returns found=false if the queue holds no items (including when it has
// never accepted one and has no root_index yet); otherwise the leaf
// bucket hash to pass to the item heap's Peek/Pop.
func (s *Scheduler) PeekNextLeaf() (uint64, bool, error) {
	nodeID, ok, err := s.rootIndex()
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}

	dimension, err := s.Dimension()
	if err != nil {
		return 0, false, err
	}

	for layer := uint64(0); layer < dimension; layer++ {
		_, childID, found, err := s.selectChild(nodeID)
		if err != nil {
			return 0, false, err
		}
		if !found {
			if layer != 0 {
				panic("fspq: feature tree invariant violated: node expected to hold items holds none")
			}
			return 0, false, nil
		}

		leaf, err := s.hasLeaves.Get(nodeID)
		if err != nil {
			return 0, false, ferrors.Standard("feature: missing has_leaves for visited node", err)
		}
		if leaf {
			return childID, true, nil
		}
		nodeID = childID
	}
	return 0, false, nil
}

// UseNextLeaf performs the destructive traversal described by spec.md
// §4.4.4: it selects one leaf, decrements items_at_index and bumps
// last_used_epoch at every visited layer, and advances epoch_step
// exactly once — only when a leaf was actually selected.
//
// Epoch discipline: a call that finds the queue empty (found=false)
// touches nothing, including epoch_step. This is the historically
// divergent behavior spec.md §9 calls out by name and mandates
// explicitly; TestUseNextLeafOnEmptyDoesNotAdvanceEpoch pins it.
//
// Returns found=false with epoch_step unchanged if the queue is empty;
// otherwise the selected leaf bucket hash, true, and no error. The
// caller (internal/fspq.Queue) pops the bucket's head payload only
// after this call succeeds.
func (s *Scheduler) UseNextLeaf() (uint64, bool, error) {
	nodeID, ok, err := s.rootIndex()
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}

	dimension, err := s.Dimension()
	if err != nil {
		return 0, false, err
	}
	currentEpoch, err := s.GetEpoch()
	if err != nil {
		return 0, false, err
	}
	nextEpoch := currentEpoch + 1

	for layer := uint64(0); layer < dimension; layer++ {
		valueHash, childID, found, err := s.selectChild(nodeID)
		if err != nil {
			return 0, false, err
		}
		if !found {
			if layer != 0 {
				panic("fspq: feature tree invariant violated: node expected to hold items holds none")
			}
			return 0, false, nil
		}

		if _, err := s.itemsAtIndex.Update(nodeID, valueHash, func(v uint64) uint64 { return v - 1 }); err != nil {
			return 0, false, err
		}
		if err := s.valueEpoch.Put(valueHash, nextEpoch); err != nil {
			return 0, false, err
		}

		leaf, err := s.hasLeaves.Get(nodeID)
		if err != nil {
			return 0, false, ferrors.Standard("feature: missing has_leaves for visited node", err)
		}
		if leaf {
			if err := s.metadata.Put(metaEpochStep, nextEpoch); err != nil {
				return 0, false, err
			}
			return childID, true, nil
		}
		nodeID = childID
	}
	return 0, false, nil
}

// AddItem inserts a full feature-value path ending at leaf bucket leafID,
// bottom-up as spec.md §4.4.5 prescribes: it walks values from innermost
// to outermost, creating any node that does not yet exist and recording
// its parent's reference to it, so that each parent can record its
// newly created child's id in the same pass rather than needing a
// second, top-down fixup.
//
// Newly registered feature values start at last_used_epoch=0 (maximally
// preferred the next time they are eligible), and a newly created node's
// child_seq is stamped from a single monotonically increasing counter
// shared by the whole scheduler, which is what lets selectChild recover
// "first registered wins" deterministically.
//
// Parameters:
//   - values: the full ordered feature-value path, one per declared
//     name, same order as the schema. Length must equal Dimension().
//   - leafID: the bucket hash the caller will push payload(s) under;
//     spec.md's worked hash convention requires this to already equal
//     HashPrefix(values) so the leaf node's recorded child_index agrees
//     with the bucket the queue facade computes independently.
//
// epoch_step is bumped exactly once, after every layer has been
// updated; total_items is left to the caller — internal/fspq.Queue
// increments it only once the payload has also been durably pushed to
// the item heap, mirroring how the two stores are kept mutually
// consistent without a cross-store transaction.
//
// Returns the resulting epoch_step, or an error if values' length
// disagrees with the schema's dimension or a backing store write fails.
func (s *Scheduler) AddItem(values []Value, leafID uint64) (uint64, error) {
	dimension, err := s.Dimension()
	if err != nil {
		return 0, err
	}
	if uint64(len(values)) != dimension {
		return 0, ferrors.Standardf("feature: expected %d feature values, got %d", dimension, len(values))
	}

	currentEpoch, err := s.GetEpoch()
	if err != nil {
		return 0, err
	}
	currentlyEmpty := currentEpoch == 0

	if currentlyEmpty {
		rootID := HashNames(s.names)
		inserted, err := s.metadata.PutIfAbsent(metaRootIndex, rootID)
		if err != nil {
			return 0, err
		}
		if !inserted {
			return 0, ferrors.Standardf("feature: root already set on an empty-epoch queue")
		}
	}

	childID := leafID
	height := uint64(1)
	for i := len(values) - 1; i >= 0; i-- {
		value := values[i]

		var nodeID uint64
		if i == 0 {
			nodeID, err = s.metadata.Get(metaRootIndex)
			if err != nil {
				return 0, err
			}
		} else {
			nodeID = HashPrefix(values[:i])
		}

		valueHash := HashValue(value)

		if _, err := s.childIndex.Get(nodeID, valueHash); err == nil {
			if _, err := s.itemsAtIndex.Update(nodeID, valueHash, func(v uint64) uint64 { return v + 1 }); err != nil {
				return 0, err
			}
		} else if ferrors.IsEmpty(err) {
			if _, err := s.itemsAtIndex.PutIfAbsent(nodeID, valueHash, 1); err != nil {
				return 0, err
			}
			if _, err := s.valueEpoch.PutIfAbsent(valueHash, 0); err != nil {
				return 0, err
			}
			if _, err := s.childIndex.PutIfAbsent(nodeID, valueHash, childID); err != nil {
				return 0, err
			}
			if err := s.hasLeaves.Put(nodeID, height == 1); err != nil {
				return 0, err
			}
			seq, err := s.nextSeq()
			if err != nil {
				return 0, err
			}
			if _, err := s.childSeq.PutIfAbsent(nodeID, valueHash, seq); err != nil {
				return 0, err
			}
		} else {
			return 0, err
		}

		childID = nodeID
		height++
	}

	newEpoch, err := s.metadata.Update(metaEpochStep, func(v uint64) uint64 { return v + 1 })
	if err != nil {
		return 0, err
	}
	return newEpoch, nil
}
