// Package bytestore implements a key(uint64)-to-typed-value persistent
// mapping, the byte-value store that every other FSPQ storage layer is
// built on top of.
//
// # Architecture
//
//	┌───────────────────────────────────────┐
//	│              Store[V]                  │
//	│  Get / Put / PutIfAbsent / Update       │
//	└──────────────────┬─────────────────────┘
//	                    │
//	        ┌───────────┴────────────┐
//	        ▼                        ▼
//	┌───────────────┐        ┌───────────────┐
//	│ memory mode   │        │ durable mode  │
//	│ tmp-dir bbolt │        │ caller's dir  │
//	│ removed on    │        │ kept on       │
//	│ Close         │        │ Close, flush  │
//	│               │        │ every mutate  │
//	└───────────────┘        └───────────────┘
//
// Both modes are backed by the same engine (go.etcd.io/bbolt): a B+tree
// file with a single top-level bucket. Memory mode differs in where the
// file lives, in skipping the fsync on each commit, and in what happens to
// it on Close — this mirrors the
// original Rust implementation, which opens a real RocksDB at a generated
// /tmp path for its "memory" mode and destroys the directory on drop.
//
// Values are opaque to the store: callers supply a Codec[V] pair of
// encode/decode functions. U64Codec and BoolCodec provide canonical
// big-endian encodings for the two concrete value types the scheduler
// needs, so that files are portable across host byte order.
package bytestore
