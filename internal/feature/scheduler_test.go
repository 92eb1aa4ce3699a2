package feature

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func leaf(names []string, values ...uint64) uint64 {
	vs := make([]Value, len(names))
	for i, n := range names {
		vs[i] = Value{Name: n, Value: values[i]}
	}
	return HashPrefix(vs)
}

// TestLeafBalanceSingleDimension ports the "S1" acceptance scenario: two
// payloads share one feature value, a third sits on another; dequeue must
// interleave them instead of draining the first value's backlog first.
func TestLeafBalanceSingleDimension(t *testing.T) {
	names := []string{"L"}
	s, err := New(names)
	require.NoError(t, err)
	defer s.Close()

	l1 := leaf(names, 1)
	l2 := leaf(names, 2)

	_, err = s.AddItem([]Value{{Name: "L", Value: 1}}, l1)
	require.NoError(t, err)
	_, err = s.AddItem([]Value{{Name: "L", Value: 1}}, l1)
	require.NoError(t, err)
	_, err = s.AddItem([]Value{{Name: "L", Value: 2}}, l2)
	require.NoError(t, err)

	want := []uint64{l1, l2, l1}
	for i, w := range want {
		got, found, err := s.UseNextLeaf()
		require.NoError(t, err)
		require.True(t, found, "dequeue %d", i)
		require.Equal(t, w, got, "dequeue %d", i)
	}

	_, found, err := s.UseNextLeaf()
	require.NoError(t, err)
	require.False(t, found)
}

// TestHierarchicalBalance ports "S2": a two-level schema where the first
// feature value is reused across two payloads and a second root value
// holds a single payload.
func TestHierarchicalBalance(t *testing.T) {
	names := []string{"R", "L"}
	s, err := New(names)
	require.NoError(t, err)
	defer s.Close()

	r1l1 := leaf(names, 1, 1)
	r2l1 := leaf(names, 2, 1)

	_, err = s.AddItem([]Value{{Name: "R", Value: 1}, {Name: "L", Value: 1}}, r1l1)
	require.NoError(t, err)
	_, err = s.AddItem([]Value{{Name: "R", Value: 1}, {Name: "L", Value: 1}}, r1l1)
	require.NoError(t, err)
	_, err = s.AddItem([]Value{{Name: "R", Value: 2}, {Name: "L", Value: 1}}, r2l1)
	require.NoError(t, err)

	for i, w := range []uint64{r1l1, r2l1, r1l1} {
		got, found, err := s.UseNextLeaf()
		require.NoError(t, err)
		require.True(t, found, "dequeue %d", i)
		require.Equal(t, w, got, "dequeue %d", i)
	}
}

// TestDrainHierarchy ports "S3": the two root values alternate while both
// hold items, and once the other root value is exhausted the deeper
// backlog under R=1 drains to empty.
func TestDrainHierarchy(t *testing.T) {
	names := []string{"R", "L"}
	s, err := New(names)
	require.NoError(t, err)
	defer s.Close()

	r1l1 := leaf(names, 1, 1)
	r2l1 := leaf(names, 2, 1)

	for i := 0; i < 3; i++ {
		_, err := s.AddItem([]Value{{Name: "R", Value: 1}, {Name: "L", Value: 1}}, r1l1)
		require.NoError(t, err)
	}
	_, err = s.AddItem([]Value{{Name: "R", Value: 2}, {Name: "L", Value: 1}}, r2l1)
	require.NoError(t, err)

	for i, w := range []uint64{r1l1, r2l1, r1l1, r1l1} {
		got, found, err := s.UseNextLeaf()
		require.NoError(t, err)
		require.True(t, found, "dequeue %d", i)
		require.Equal(t, w, got, "dequeue %d", i)
	}

	_, found, err := s.UseNextLeaf()
	require.NoError(t, err)
	require.False(t, found)
}

// TestCrossPathFairness ports "S4": the global per-value epoch map shares
// L=1's last-used epoch across both root values, so L=2 under R=2 wins
// against L=1 under R=2 only because L=1 was already spent under R=1.
func TestCrossPathFairness(t *testing.T) {
	names := []string{"R", "L"}
	s, err := New(names)
	require.NoError(t, err)
	defer s.Close()

	r1l1 := leaf(names, 1, 1)
	r2l1 := leaf(names, 2, 1)
	r2l2 := leaf(names, 2, 2)

	_, err = s.AddItem([]Value{{Name: "R", Value: 1}, {Name: "L", Value: 1}}, r1l1)
	require.NoError(t, err)
	_, err = s.AddItem([]Value{{Name: "R", Value: 2}, {Name: "L", Value: 1}}, r2l1)
	require.NoError(t, err)
	_, err = s.AddItem([]Value{{Name: "R", Value: 2}, {Name: "L", Value: 2}}, r2l2)
	require.NoError(t, err)

	for i, w := range []uint64{r1l1, r2l2, r2l1} {
		got, found, err := s.UseNextLeaf()
		require.NoError(t, err)
		require.True(t, found, "dequeue %d", i)
		require.Equal(t, w, got, "dequeue %d", i)
	}
}

// TestRefillAfterDrain ports "S5": draining to empty and then adding a new
// item must not resurrect a stale root or leave behind phantom children.
func TestRefillAfterDrain(t *testing.T) {
	names := []string{"L"}
	s, err := New(names)
	require.NoError(t, err)
	defer s.Close()

	l4 := leaf(names, 4)
	_, err = s.AddItem([]Value{{Name: "L", Value: 4}}, l4)
	require.NoError(t, err)

	got, found, err := s.UseNextLeaf()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, l4, got)

	_, found, err = s.UseNextLeaf()
	require.NoError(t, err)
	require.False(t, found)

	l2 := leaf(names, 2)
	_, err = s.AddItem([]Value{{Name: "L", Value: 2}}, l2)
	require.NoError(t, err)

	got, found, err = s.UseNextLeaf()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, l2, got)

	_, found, err = s.UseNextLeaf()
	require.NoError(t, err)
	require.False(t, found)
}

// TestDurableReopen ports "S6": feature-value epoch state, not only the
// tree shape, must survive a close/reopen cycle at the same directory.
func TestDurableReopen(t *testing.T) {
	dir := t.TempDir()
	names := []string{"R", "L"}

	r1l1 := leaf(names, 1, 1)
	r2l1 := leaf(names, 2, 1)

	s, err := NewDurable(names, dir)
	require.NoError(t, err)
	_, err = s.AddItem([]Value{{Name: "R", Value: 1}, {Name: "L", Value: 1}}, r1l1)
	require.NoError(t, err)
	got, found, err := s.UseNextLeaf()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, r1l1, got)
	require.NoError(t, s.Close())

	reopened, err := NewDurable(names, dir)
	require.NoError(t, err)
	defer reopened.Close()

	_, err = reopened.AddItem([]Value{{Name: "R", Value: 1}, {Name: "L", Value: 1}}, r1l1)
	require.NoError(t, err)
	_, err = reopened.AddItem([]Value{{Name: "R", Value: 2}, {Name: "L", Value: 1}}, r2l1)
	require.NoError(t, err)

	for i, w := range []uint64{r2l1, r1l1} {
		got, found, err := reopened.UseNextLeaf()
		require.NoError(t, err)
		require.True(t, found, "dequeue %d", i)
		require.Equal(t, w, got, "dequeue %d", i)
	}
}

func TestPeekIsNonDestructive(t *testing.T) {
	names := []string{"L"}
	s, err := New(names)
	require.NoError(t, err)
	defer s.Close()

	l1 := leaf(names, 1)
	_, err = s.AddItem([]Value{{Name: "L", Value: 1}}, l1)
	require.NoError(t, err)

	p1, found, err := s.PeekNextLeaf()
	require.NoError(t, err)
	require.True(t, found)
	p2, found, err := s.PeekNextLeaf()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, p1, p2)

	got, found, err := s.UseNextLeaf()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, p1, got)
}

func TestPeekOnEmptyReturnsNone(t *testing.T) {
	s, err := New([]string{"L"})
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.PeekNextLeaf()
	require.NoError(t, err)
	require.False(t, found)
}

// TestUseNextLeafOnEmptyDoesNotAdvanceEpoch pins the ambiguity spec.md §9
// calls out by name: "whether dequeue returning none after a prior
// successful dequeue should advance the epoch." spec.md's answer is no —
// epoch_step only moves on a descent that actually selects a leaf.
func TestUseNextLeafOnEmptyDoesNotAdvanceEpoch(t *testing.T) {
	names := []string{"L"}
	s, err := New(names)
	require.NoError(t, err)
	defer s.Close()

	epoch0, err := s.GetEpoch()
	require.NoError(t, err)
	require.EqualValues(t, 0, epoch0)

	_, found, err := s.UseNextLeaf()
	require.NoError(t, err)
	require.False(t, found)

	epochAfterEmpty, err := s.GetEpoch()
	require.NoError(t, err)
	require.Equal(t, epoch0, epochAfterEmpty)

	l1 := leaf(names, 1)
	_, err = s.AddItem([]Value{{Name: "L", Value: 1}}, l1)
	require.NoError(t, err)

	got, found, err := s.UseNextLeaf()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, l1, got)

	epochAfterDrain, err := s.GetEpoch()
	require.NoError(t, err)
	require.NotZero(t, epochAfterDrain)

	for i := 0; i < 2; i++ {
		_, found, err := s.UseNextLeaf()
		require.NoError(t, err)
		require.False(t, found, "iteration %d", i)

		epochNow, err := s.GetEpoch()
		require.NoError(t, err)
		require.Equal(t, epochAfterDrain, epochNow, "iteration %d", i)
	}
}
