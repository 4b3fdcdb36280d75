package solver

import "github.com/corelang/corec/internal/txn"

// indexMap is a thin typed wrapper over txn.Map, used for the solver's
// node-interning table and edge indices. It exists only to give those call
// sites a shorter, domain-specific name than the generic container.
type indexMap[K comparable, V any] struct{ m *txn.Map[K, V] }

func newIndexMap[K comparable, V any]() *indexMap[K, V] {
	return &indexMap[K, V]{m: txn.NewMap[K, V]()}
}

func (im *indexMap[K, V]) get(k K) (V, bool)  { return im.m.Get(k) }
func (im *indexMap[K, V]) set(k K, v V)       { im.m.Set(k, v) }
func (im *indexMap[K, V]) del(k K)            { im.m.Delete(k) }
func (im *indexMap[K, V]) each(fn func(K, V)) { im.m.Each(fn) }

func (im *indexMap[K, V]) shadow() *indexMap[K, V] { return &indexMap[K, V]{m: im.m.Shadow()} }
func (im *indexMap[K, V]) commit()                 { im.m.Commit() }
func (im *indexMap[K, V]) revert()                 { im.m.Revert() }

// multiIndex maps one key to a growing slice of values, used by the edge
// stores' from/to/between indices (spec §4.G "indexed by from-endpoint,
// to-endpoint, and between-both").
type multiIndex[K comparable, V any] struct{ im *indexMap[K, []V] }

func newMultiIndex[K comparable, V any]() *multiIndex[K, V] {
	return &multiIndex[K, V]{im: newIndexMap[K, []V]()}
}

func (mi *multiIndex[K, V]) add(k K, v V) {
	cur, _ := mi.im.get(k)
	mi.im.set(k, append(append([]V(nil), cur...), v))
}

func (mi *multiIndex[K, V]) get(k K) []V {
	v, _ := mi.im.get(k)
	return v
}

func (mi *multiIndex[K, V]) shadow() *multiIndex[K, V] { return &multiIndex[K, V]{im: mi.im.shadow()} }
func (mi *multiIndex[K, V]) commit()                   { mi.im.commit() }
func (mi *multiIndex[K, V]) revert()                   { mi.im.revert() }

// counter is a shadowable monotonic id source, used by the node table and
// edge stores for fresh integer ids.
type counter struct{ c *txn.Cell[int] }

func newCounter(start int) *counter { return &counter{c: txn.NewCell(start)} }

func (c *counter) next() int {
	v := c.c.Get()
	c.c.Set(v + 1)
	return v
}

func (c *counter) shadow() *counter { return &counter{c: c.c.Shadow()} }
func (c *counter) commit()          { c.c.Commit() }
func (c *counter) revert()          { c.c.Revert() }
