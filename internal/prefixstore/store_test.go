package prefixstore

import (
	"sort"
	"testing"

	"github.com/dreamware/fspq/internal/ferrors"
	"github.com/stretchr/testify/require"
)

func TestGetEmpty(t *testing.T) {
	s, err := New("items")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(1, 2)
	require.True(t, ferrors.IsEmpty(err))
}

func TestPutGetUpdate(t *testing.T) {
	s, err := New("items")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(10, 20, 1))
	v, err := s.Get(10, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, v)

	next, err := s.Update(10, 20, func(v uint64) uint64 { return v + 1 })
	require.NoError(t, err)
	require.EqualValues(t, 2, next)

	inserted, err := s.PutIfAbsent(10, 20, 99)
	require.NoError(t, err)
	require.False(t, inserted)

	v, err = s.Get(10, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, v, "put-if-absent must not overwrite")
}

func TestPrefixIsolation(t *testing.T) {
	s, err := New("items")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(1, 100, 11))
	require.NoError(t, s.Put(1, 200, 12))
	require.NoError(t, s.Put(2, 100, 21))

	has, err := s.HasPrefix(1)
	require.NoError(t, err)
	require.True(t, has)

	has, err = s.HasPrefix(3)
	require.NoError(t, err)
	require.False(t, has)

	values, err := s.GetAtPrefix(1)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{11, 12}, values)

	values, err = s.GetAtPrefix(2)
	require.NoError(t, err)
	require.Equal(t, []uint64{21}, values)
}

func TestFilterKeysByPrefix(t *testing.T) {
	s, err := New("items")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(5, 1, 0))
	require.NoError(t, s.Put(5, 2, 4))
	require.NoError(t, s.Put(5, 3, 9))
	require.NoError(t, s.Put(6, 1, 9))

	keys, err := s.FilterKeysByPrefix(5, func(v uint64) bool { return v > 1 })
	require.NoError(t, err)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	require.Equal(t, []uint64{2, 3}, keys)
}

func TestDurableReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewDurable(dir, "items")
	require.NoError(t, err)
	require.NoError(t, s.Put(1, 2, 3))
	require.NoError(t, s.Close())

	reopened, err := NewDurable(dir, "items")
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, v)
}
