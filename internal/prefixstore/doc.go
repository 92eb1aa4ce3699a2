// Package prefixstore implements the (prefix uint64, key uint64) -> uint64
// mapping used by the feature tree to hold per-node child data:
// items_at_index and child_index.
//
// The physical key is the 16-byte big-endian concatenation prefix‖key, so
// that all entries sharing a prefix sort contiguously. bbolt's Cursor.Seek
// lands on the first key >= a given byte string, which combined with a
// defensive has-this-prefix check on each visited entry gives the prefix
// iteration the feature tree needs (bbolt has no dedicated fixed-prefix
// extractor the way RocksDB does, so the re-check isn't optional — it's
// the whole mechanism).
package prefixstore
