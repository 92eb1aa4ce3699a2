// Package registry maps queue names to live FSPQ instances and enforces
// the single-writer-per-queue concurrency discipline spec'd for the RPC
// layer (spec.md §5): readers (Peek/Size/GetEpoch) take a shared lock,
// writers (Enqueue/Dequeue) take an exclusive lock, and neither blocks on
// contention — a caller that cannot acquire its lock immediately gets
// ErrBusy back so the RPC layer can surface UNAVAILABLE instead of
// stalling.
//
// Architecture:
//
//	┌───────────────────────── Registry ─────────────────────────┐
//	│  queues: map[name]*entry                                    │
//	│  mu: RWMutex guarding the map itself (not individual queues) │
//	├───────────────────────────────────────────────────────────── │
//	│  entry{ mu sync.RWMutex; queue *fspq.Queue }                 │
//	│    RLock  -> Peek, Size, GetEpoch                            │
//	│    Lock   -> Enqueue, Dequeue                                │
//	└───────────────────────────────────────────────────────────── │
//
// Modeled on the teacher's internal/coordinator.ShardRegistry: a
// RWMutex-guarded map and copy-out accessors. Lookups release the
// registry's own lock before a queue is used; Create (which opens the new
// queue's durable stores) and CloseAll (which closes every queue) do their
// disk I/O while holding it.
package registry
