package solver

import (
	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/relation"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
)

// EdgeID identifies one edge within a single edge family. IDs from
// different families are not comparable to each other.
type EdgeID int

// ConstrainEdge records L <=Rel R (spec §3.5): L's value must be an
// acceptable substitute wherever R is expected.
type ConstrainEdge struct {
	ID    EdgeID
	L, R  NodeID
	LVal  term.Flex // the original value passed to Queue, even when L.IsMeta() (then it is a *term.MetaStuck)
	RVal  term.Flex // the original value passed to Queue, even when R.IsMeta()
	LCtx  *rtctx.Runtime
	RCtx  *rtctx.Runtime
	Rel   relation.Relation
	Block int
	Cause cause.Cause
}

// LeftCallEdge records (L Arg) <=Rel R: the stuck or not-yet-resolved
// function at L, applied to Arg, must produce something acceptable where R
// is expected.
type LeftCallEdge struct {
	ID     EdgeID
	L      NodeID
	LVal   term.Flex
	LCtx   *rtctx.Runtime
	Arg    term.Flex
	ArgCtx *rtctx.Runtime
	Rel    relation.Relation
	R      NodeID
	RVal   term.Flex
	RCtx   *rtctx.Runtime
	Block  int
	Cause  cause.Cause
}

// RightCallEdge records L <=Rel (R Arg): symmetric to LeftCallEdge, with the
// application on the right (upper) side.
type RightCallEdge struct {
	ID     EdgeID
	L      NodeID
	LVal   term.Flex
	LCtx   *rtctx.Runtime
	Rel    relation.Relation
	R      NodeID
	RVal   term.Flex
	RCtx   *rtctx.Runtime
	Arg    term.Flex
	ArgCtx *rtctx.Runtime
	Block  int
	Cause  cause.Cause
}

// edgeStore is an indexed collection with three views -- from-endpoint,
// to-endpoint, and between-both (spec §4.G) -- shared in shape across all
// three edge families via Go generics.
type edgeStore[E any] struct {
	byID    *indexMap[EdgeID, E]
	fromIdx *multiIndex[NodeID, EdgeID]
	toIdx   *multiIndex[NodeID, EdgeID]
	between *multiIndex[[2]NodeID, EdgeID]
	nextID  *counter
}

func newEdgeStore[E any]() *edgeStore[E] {
	return &edgeStore[E]{
		byID:    newIndexMap[EdgeID, E](),
		fromIdx: newMultiIndex[NodeID, EdgeID](),
		toIdx:   newMultiIndex[NodeID, EdgeID](),
		between: newMultiIndex[[2]NodeID, EdgeID](),
		nextID:  newCounter(1),
	}
}

// insert records a new edge between from and to, unless dup reports that an
// existing edge with the same endpoints already satisfies the same
// obligation (spec §3.5 "inserting a duplicate edge is a no-op").
func (es *edgeStore[E]) insert(from, to NodeID, mk func(EdgeID) E, dup func(existing E) bool) (EdgeID, bool) {
	for _, id := range es.between.get([2]NodeID{from, to}) {
		existing, _ := es.byID.get(id)
		if dup(existing) {
			return id, false
		}
	}
	id := EdgeID(es.nextID.next())
	es.byID.set(id, mk(id))
	es.fromIdx.add(from, id)
	es.toIdx.add(to, id)
	es.between.add([2]NodeID{from, to}, id)
	return id, true
}

func (es *edgeStore[E]) get(id EdgeID) (E, bool) { return es.byID.get(id) }
func (es *edgeStore[E]) from(n NodeID) []E       { return es.resolve(es.fromIdx.get(n)) }
func (es *edgeStore[E]) to(n NodeID) []E         { return es.resolve(es.toIdx.get(n)) }

func (es *edgeStore[E]) resolve(ids []EdgeID) []E {
	out := make([]E, 0, len(ids))
	for _, id := range ids {
		if e, ok := es.byID.get(id); ok {
			out = append(out, e)
		}
	}
	return out
}

func (es *edgeStore[E]) shadow() *edgeStore[E] {
	return &edgeStore[E]{
		byID:    es.byID.shadow(),
		fromIdx: es.fromIdx.shadow(),
		toIdx:   es.toIdx.shadow(),
		between: es.between.shadow(),
		nextID:  es.nextID.shadow(),
	}
}

func (es *edgeStore[E]) commit() {
	es.byID.commit()
	es.fromIdx.commit()
	es.toIdx.commit()
	es.between.commit()
	es.nextID.commit()
}

func (es *edgeStore[E]) revert() {
	es.byID.revert()
	es.fromIdx.revert()
	es.toIdx.revert()
	es.between.revert()
	es.nextID.revert()
}
