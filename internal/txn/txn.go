// Package txn implements the shadow/commit/revert protocol that every
// mutable container in the solver participates in (spec §4.H). A shadow's
// reads fall through to its parent and its writes are local until Commit
// flattens them back or Revert discards them; while a shadow is live its
// parent is locked and any direct write to the parent is a bug, reported
// as a panic (the "diagnostic" spec §4.H calls for in debug builds -- this
// implementation has no release/debug split, so the check is unconditional).
package txn

import "fmt"

type lockState struct {
	locked bool
}

// ErrLockedWrite is the panic value used when code writes directly to a
// container that currently has a live shadow.
type ErrLockedWrite struct{ Container string }

func (e ErrLockedWrite) Error() string {
	return fmt.Sprintf("txn: write to %s while a shadow is live (parent is locked)", e.Container)
}

// Map is a shadowable persistent map. Reads fall through to the parent;
// writes are local until Commit or Revert. Used for the solver's edge
// indices and node interning table, and the elaborator's infer/check/
// evaluate memos.
type Map[K comparable, V any] struct {
	parent  *Map[K, V]
	own     map[K]V
	deleted map[K]struct{}
	lock    *lockState
	dead    bool
}

// NewMap creates a fresh, parentless Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{own: make(map[K]V), deleted: make(map[K]struct{}), lock: &lockState{}}
}

// Get looks up k, falling through to the parent chain if not found locally.
func (m *Map[K, V]) Get(k K) (V, bool) {
	if v, ok := m.own[k]; ok {
		return v, true
	}
	if _, gone := m.deleted[k]; gone {
		var zero V
		return zero, false
	}
	if m.parent != nil {
		return m.parent.Get(k)
	}
	var zero V
	return zero, false
}

// Set writes k -> v locally.
func (m *Map[K, V]) Set(k K, v V) {
	m.mustWrite()
	delete(m.deleted, k)
	m.own[k] = v
}

// Delete hides k from this view without touching the parent.
func (m *Map[K, V]) Delete(k K) {
	m.mustWrite()
	delete(m.own, k)
	m.deleted[k] = struct{}{}
}

func (m *Map[K, V]) mustWrite() {
	if m.dead {
		panic("txn: write to an invalidated (committed/reverted) Map")
	}
	if m.lock.locked {
		panic(ErrLockedWrite{Container: "Map"})
	}
}

// Each calls fn for every visible (k, v) pair, own entries first, then the
// parent's entries not overwritten or deleted in this view. Order over the map itself is unspecified, as
// with any Go map range.
func (m *Map[K, V]) Each(fn func(K, V)) {
	seen := make(map[K]struct{})
	m.each(fn, seen)
}

func (m *Map[K, V]) each(fn func(K, V), seen map[K]struct{}) {
	for k, v := range m.own {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		fn(k, v)
	}
	for k := range m.deleted {
		seen[k] = struct{}{}
	}
	if m.parent != nil {
		m.parent.each(fn, seen)
	}
}

// Shadow returns a new Map layered on top of m. m is locked for direct
// writes until the shadow Commits or Reverts.
func (m *Map[K, V]) Shadow() *Map[K, V] {
	m.lock.locked = true
	return &Map[K, V]{parent: m, own: make(map[K]V), deleted: make(map[K]struct{}), lock: &lockState{}}
}

// Commit flattens this shadow's local writes into its parent and
// invalidates the shadow.
func (m *Map[K, V]) Commit() {
	if m.parent == nil {
		panic("txn: Commit on a root Map (no parent to commit into)")
	}
	p := m.parent
	p.lock.locked = false
	for k := range m.deleted {
		p.Delete(k)
	}
	for k, v := range m.own {
		p.Set(k, v)
	}
	m.invalidate()
}

// Revert discards this shadow's local writes and invalidates the shadow.
func (m *Map[K, V]) Revert() {
	if m.parent == nil {
		panic("txn: Revert on a root Map (no parent to revert to)")
	}
	m.parent.lock.locked = false
	m.invalidate()
}

func (m *Map[K, V]) invalidate() {
	m.parent = nil
	m.own = nil
	m.deleted = nil
	m.dead = true
}

// Stack is a shadowable LIFO container -- the solver's work queue (spec §5:
// "strictly LIFO so that composition-derived sub-obligations are
// discharged near the edge that created them"). Like rtctx.Runtime, a
// shadow's own state is layered on a read-only view of its parent: Pop
// never mutates the parent, it only grows a local "items popped from
// parent" counter, so a reverted shadow leaves the parent's stack exactly
// as it was.
type Stack[T any] struct {
	parent           *Stack[T]
	pushed           []T // locally pushed items, oldest first (top = last)
	poppedFromParent int // how many of the parent's top items this shadow has consumed
	lock             *lockState
	dead             bool
}

// NewStack creates a fresh, parentless Stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{lock: &lockState{}}
}

// Len returns the number of items currently visible in this view.
func (s *Stack[T]) Len() int {
	return s.base() + len(s.pushed)
}

// base is the number of the parent's (recursively-visible) items that
// remain after this shadow's pops are accounted for.
func (s *Stack[T]) base() int {
	if s.parent == nil {
		return 0
	}
	b := s.parent.Len() - s.poppedFromParent
	if b < 0 {
		return 0
	}
	return b
}

// Push adds an item to the top.
func (s *Stack[T]) Push(v T) {
	s.mustWrite()
	s.pushed = append(s.pushed, v)
}

// Pop removes and returns the top item, or ok=false if empty.
func (s *Stack[T]) Pop() (v T, ok bool) {
	s.mustWrite()
	n := s.Len()
	if n == 0 {
		return v, false
	}
	v = s.at(n)
	if len(s.pushed) > 0 {
		s.pushed = s.pushed[:len(s.pushed)-1]
	} else {
		s.poppedFromParent++
	}
	return v, true
}

// at returns the i-th item (1-based, counting from the bottom) of the
// logical sequence this view currently presents.
func (s *Stack[T]) at(i int) T {
	b := s.base()
	if i <= b {
		return s.parent.at(i)
	}
	return s.pushed[i-b-1]
}

func (s *Stack[T]) mustWrite() {
	if s.dead {
		panic("txn: write to an invalidated (committed/reverted) Stack")
	}
	if s.lock.locked {
		panic(ErrLockedWrite{Container: "Stack"})
	}
}

// Shadow returns a new Stack layered on top of s, locking s for direct
// writes.
func (s *Stack[T]) Shadow() *Stack[T] {
	s.lock.locked = true
	return &Stack[T]{parent: s, lock: &lockState{}}
}

// Commit replays this shadow's pops and pushes into its parent, in order,
// and invalidates the shadow.
func (s *Stack[T]) Commit() {
	if s.parent == nil {
		panic("txn: Commit on a root Stack (no parent to commit into)")
	}
	p := s.parent
	p.lock.locked = false
	for i := 0; i < s.poppedFromParent; i++ {
		p.Pop()
	}
	for _, v := range s.pushed {
		p.Push(v)
	}
	s.invalidate()
}

// Revert discards this shadow's pops and pushes and invalidates it.
func (s *Stack[T]) Revert() {
	if s.parent == nil {
		panic("txn: Revert on a root Stack (no parent to revert to)")
	}
	s.parent.lock.locked = false
	s.invalidate()
}

func (s *Stack[T]) invalidate() {
	s.parent = nil
	s.pushed = nil
	s.dead = true
}

// Cell is a shadowable single mutable value, used for scalar state such as
// the solver's current block level.
type Cell[T any] struct {
	parent *Cell[T]
	value  T
	set    bool
	lock   *lockState
	dead   bool
}

// NewCell creates a fresh, parentless Cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v, set: true, lock: &lockState{}}
}

// Get returns the current value, falling through to the parent if this
// view has not overwritten it.
func (c *Cell[T]) Get() T {
	if c.set {
		return c.value
	}
	return c.parent.Get()
}

// Set overwrites the value in this view.
func (c *Cell[T]) Set(v T) {
	if c.dead {
		panic("txn: write to an invalidated (committed/reverted) Cell")
	}
	if c.lock.locked {
		panic(ErrLockedWrite{Container: "Cell"})
	}
	c.value = v
	c.set = true
}

// Shadow returns a new Cell layered on top of c, locking c for direct
// writes.
func (c *Cell[T]) Shadow() *Cell[T] {
	c.lock.locked = true
	return &Cell[T]{parent: c, lock: &lockState{}}
}

// Commit writes this shadow's value (if set) back into its parent and
// invalidates the shadow.
func (c *Cell[T]) Commit() {
	if c.parent == nil {
		panic("txn: Commit on a root Cell (no parent to commit into)")
	}
	c.parent.lock.locked = false
	if c.set {
		c.parent.Set(c.value)
	}
	c.invalidate()
}

// Revert discards this shadow's value and invalidates it.
func (c *Cell[T]) Revert() {
	if c.parent == nil {
		panic("txn: Revert on a root Cell (no parent to revert to)")
	}
	c.parent.lock.locked = false
	c.invalidate()
}

func (c *Cell[T]) invalidate() {
	c.parent = nil
	c.set = false
	c.dead = true
}
