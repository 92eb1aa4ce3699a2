package itemheap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPopPeekUnknownBucketReturnsNone(t *testing.T) {
	h, err := New()
	require.NoError(t, err)
	defer h.Close()

	v, err := h.Peek(12345)
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = h.Pop(12345)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestFIFOOrderByEpoch(t *testing.T) {
	h, err := New()
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Push(3, 1, []byte("third")))
	require.NoError(t, h.Push(1, 1, []byte("first")))
	require.NoError(t, h.Push(2, 1, []byte("second")))

	for _, want := range []string{"first", "second", "third"} {
		got, err := h.Pop(1)
		require.NoError(t, err)
		require.Equal(t, want, string(got))
	}

	v, err := h.Pop(1)
	require.NoError(t, err)
	require.Nil(t, v, "bucket drained to empty returns none, not an error")
}

func TestPeekDoesNotRemove(t *testing.T) {
	h, err := New()
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Push(1, 7, []byte("a")))

	v1, err := h.Peek(7)
	require.NoError(t, err)
	v2, err := h.Peek(7)
	require.NoError(t, err)
	require.Equal(t, v1, v2)

	popped, err := h.Pop(7)
	require.NoError(t, err)
	require.Equal(t, v1, popped)
}

func TestBucketsAreIndependent(t *testing.T) {
	h, err := New()
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Push(1, 1, []byte("bucket-one")))
	require.NoError(t, h.Push(1, 2, []byte("bucket-two")))

	v, err := h.Pop(2)
	require.NoError(t, err)
	require.Equal(t, "bucket-two", string(v))

	v, err = h.Peek(1)
	require.NoError(t, err)
	require.Equal(t, "bucket-one", string(v))
}

func TestDurableReopen(t *testing.T) {
	dir := t.TempDir()

	h, err := NewDurable(dir)
	require.NoError(t, err)
	require.NoError(t, h.Push(1, 9, []byte("payload")))
	require.NoError(t, h.Close())

	reopened, err := NewDurable(dir)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Pop(9)
	require.NoError(t, err)
	require.Equal(t, "payload", string(v))
}
