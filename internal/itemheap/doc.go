// Package itemheap implements C3, the sharded item heap: a bucket hash
// (uint64) to ordered sequence of opaque byte payloads, FIFO by the epoch
// at which each payload was pushed.
//
// The original Rust implementation gives each bucket its own RocksDB
// column family, named by the decimal string of the bucket hash, and pops
// the column family's first entry under IteratorMode::Start. bbolt has no
// column families, so each bucket instead gets its own top-level bucket
// inside a single bbolt file, keyed by the decimal string of the bucket
// hash, with item keys
// being the big-endian push epoch — bbolt's natural key ordering then
// gives the same "lowest epoch first" FIFO pop that RocksDB's sequential
// iterator gave the original.
//
// peek/pop on an unknown bucket return none in both memory and durable
// mode —
// unlike the Rust original, which treats it as an error ("No shard for
// key"); this port deliberately overrides that behavior.
package itemheap
