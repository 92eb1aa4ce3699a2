package feature

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Value is a single (name, value) pair, the unit of fairness.
type Value struct {
	Name  string
	Value uint64
}

// HashValue computes the stable 64-bit hash of a single feature value,
// derived from (value, name) order. This hash is the key of the global
// per-value epoch map and the second half of every (node_id, value_hash)
// pair stored in the prefix stores.
func HashValue(v Value) uint64 {
	h := xxhash.New()
	writeU64(h, v.Value)
	h.Write([]byte(v.Name))
	return h.Sum64()
}

// HashNames computes the root node's id: the hash of the ordered sequence
// of feature names only. It is also the schema's feature_names_hash.
func HashNames(names []string) uint64 {
	h := xxhash.New()
	for _, n := range names {
		h.Write([]byte(n))
	}
	return h.Sum64()
}

// HashPrefix computes an inner node's id: the hash of the ordered sequence
// of (name, value) pairs covering the prefix it represents. Applied to a
// full-dimension path, it is also the leaf bucket hash. Both uses share
// this one formula so that a leaf's child_index, computed bottom-up during
// insertion, always agrees with the bucket hash the queue facade computes
// independently for the same path.
func HashPrefix(values []Value) uint64 {
	h := xxhash.New()
	for _, v := range values {
		h.Write([]byte(v.Name))
		writeU64(h, v.Value)
	}
	return h.Sum64()
}

func writeU64(h *xxhash.Digest, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}
