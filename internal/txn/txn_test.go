package txn

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func snapshot[K comparable, V any](m *Map[K, V]) map[K]V {
	out := make(map[K]V)
	m.Each(func(k K, v V) { out[k] = v })
	return out
}

// TestMapRevertRestoresExactSnapshot exercises spec §8 property 6 ("shadow
// isolation"): a shadow's writes must vanish without a trace on Revert,
// verified by deep structural equality rather than a handful of spot
// checks (go-cmp.Diff over the flattened key/value snapshot).
func TestMapRevertRestoresExactSnapshot(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	before := snapshot(m)

	shadow := m.Shadow()
	shadow.Set("b", 99)
	shadow.Set("c", 3)
	shadow.Delete("a")

	require.Empty(t, cmp.Diff(map[string]int{"b": 99, "c": 3}, snapshot(shadow)))

	shadow.Revert()
	require.Empty(t, cmp.Diff(before, snapshot(m)), "parent must be byte-for-byte unchanged after a reverted shadow")
}

// TestMapCommitFlattensShadowIntoParent exercises the commit half of the
// same property: a committed shadow's view becomes the parent's new view,
// exactly (no stray deleted-then-restored keys, no partial writes).
func TestMapCommitFlattensShadowIntoParent(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)

	shadow := m.Shadow()
	shadow.Set("b", 99)
	shadow.Delete("a")
	shadow.Set("c", 3)
	want := snapshot(shadow)

	shadow.Commit()
	require.Empty(t, cmp.Diff(want, snapshot(m)))
}

func TestStackShadowRevert(t *testing.T) {
	s := NewStack[int]()
	s.Push(1)
	s.Push(2)

	shadow := s.Shadow()
	shadow.Push(3)
	v, ok := shadow.Pop()
	require.True(t, ok)
	require.Equal(t, 3, v)

	shadow.Revert()
	require.Equal(t, 2, s.Len())
}

func TestCellShadowCommit(t *testing.T) {
	c := NewCell(1)
	shadow := c.Shadow()
	shadow.Set(42)
	shadow.Commit()
	require.Equal(t, 42, c.Get())
}
