// Package fspq implements C5, the queue facade: it binds the feature-tree
// scheduler (C4) to the sharded item heap (C3) behind a single API that
// speaks in payloads and feature values rather than hashes and buckets.
//
//	Enqueue(values, payload):
//	  leaf  := feature.HashPrefix(values)
//	  epoch := scheduler.AddItem(values, leaf)
//	  heap.Push(epoch, leaf, payload)
//	  scheduler.IncrementTotalItems()
//
//	Dequeue():
//	  leaf, ok := scheduler.UseNextLeaf()
//	  if !ok { return none }
//	  payload := heap.Pop(leaf)
//	  scheduler.DecrementTotalItems()
//	  return payload
//
// Queue performs no locking of its own: each exported method is a short,
// fixed sequence of calls into the scheduler and the heap, neither of
// which is atomic across the pair, so a caller serving concurrent
// requests against the same Queue must serialize access to it (the
// registry does this — see internal/registry).
package fspq
