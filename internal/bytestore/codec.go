package bytestore

import (
	"encoding/binary"

	"github.com/dreamware/fspq/internal/ferrors"
)

// Codec describes how to turn a typed value into bytes and back. Both
// functions must round-trip exactly: Decode(Encode(v)) == v.
type Codec[V any] struct {
	Encode func(V) ([]byte, error)
	Decode func([]byte) (V, error)
}

// U64Codec is the canonical big-endian encoding for uint64 values, used for
// the scheduler's metadata (feature_names_hash, epoch_step, total_items,
// dimension, root_index), for last_used_epoch, and for this package's keys.
// The prefix store encodes items_at_index and child_index on its own.
var U64Codec = Codec[uint64]{
	Encode: func(v uint64) ([]byte, error) {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, v)
		return buf, nil
	},
	Decode: func(b []byte) (uint64, error) {
		if len(b) != 8 {
			return 0, ferrors.Standardf("u64 codec: expected 8 bytes, got %d", len(b))
		}
		return binary.BigEndian.Uint64(b), nil
	},
}

// BoolCodec encodes a boolean as a single 0/1 byte, used for has_leaves.
var BoolCodec = Codec[bool]{
	Encode: func(v bool) ([]byte, error) {
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	},
	Decode: func(b []byte) (bool, error) {
		if len(b) != 1 {
			return false, ferrors.Standardf("bool codec: expected 1 byte, got %d", len(b))
		}
		return b[0] != 0, nil
	},
}
