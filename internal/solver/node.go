package solver

import (
	"strconv"

	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/meta"
	"github.com/corelang/corec/internal/term"
)

// NodeID names a node in the constraint graph: either one of a
// metavariable's two distinct identities (spec §3.4) or an interned
// concrete value. The zero value is never a valid node.
type NodeID struct {
	Meta     meta.NodeID // Owner == 0 means "not a metavariable node"
	Interned int
}

// IsMeta reports whether this node is one of a metavariable's two graph
// identities.
func (n NodeID) IsMeta() bool { return n.Meta.Owner != 0 }

func (n NodeID) String() string {
	if n.IsMeta() {
		return n.Meta.String()
	}
	return "#" + strconv.Itoa(n.Interned)
}

// Side distinguishes which endpoint of a constrain/call a value occupies,
// because a metavariable resolves to a *different* node id depending on
// whether it is the lower (val) or upper (use) side of the obligation
// (spec §3.4): constraints flowing out of the value node are upper bounds
// on what the metavariable actually is; constraints flowing into the usage
// node are lower bounds on what it is expected to be.
type Side uint8

const (
	AsVal Side = iota
	AsUse
)

// metaSibling maps a metavariable node to its owner's node of the given
// kind, and leaves a concrete node untouched.
func metaSibling(n NodeID, kind meta.NodeKind) NodeID {
	if !n.IsMeta() {
		return n
	}
	return NodeID{Meta: meta.NodeID{Owner: n.Meta.Owner, Kind: kind}}
}

// nodeTable interns concrete (non-metavariable) values once per pointer
// identity, as spec §4.G's check_value requires ("interned once per
// (value, tag)" -- our Flex variants are always represented as pointers,
// so pointer identity already carries the tag).
type nodeTable struct {
	byValue *indexMap[term.Flex, int]
	byID    *indexMap[int, term.Flex]
	nextID  *counter
}

func newNodeTable() *nodeTable {
	return &nodeTable{
		byValue: newIndexMap[term.Flex, int](),
		byID:    newIndexMap[int, term.Flex](),
		nextID:  newCounter(1),
	}
}

func (t *nodeTable) intern(v term.Flex) NodeID {
	if id, ok := t.byValue.get(v); ok {
		return NodeID{Interned: id}
	}
	id := t.nextID.next()
	t.byValue.set(v, id)
	t.byID.set(id, v)
	return NodeID{Interned: id}
}

func (t *nodeTable) value(n NodeID) (term.Flex, bool) {
	if n.IsMeta() {
		return nil, false
	}
	return t.byID.get(n.Interned)
}

func (t *nodeTable) shadow() *nodeTable {
	return &nodeTable{byValue: t.byValue.shadow(), byID: t.byID.shadow(), nextID: t.nextID.shadow()}
}
func (t *nodeTable) commit() { t.byValue.commit(); t.byID.commit(); t.nextID.commit() }
func (t *nodeTable) revert() { t.byValue.revert(); t.byID.revert(); t.nextID.revert() }

// checkValue resolves v to a NodeID as the given Side of an obligation,
// interning it if it is not a metavariable. A *term.Range value is interned
// like any other node, and every one of its bounds is immediately queued as
// a sub-constraint against it (spec §4.G step 1), tagged cause.Lost per spec
// §7 since range-unpacking bypasses the edge's normal single-parent cause
// chain.
func (s *State) checkValue(v term.Flex, vctx any, side Side, why cause.Cause) NodeID {
	if ms, ok := v.(*term.MetaStuck); ok {
		if side == AsVal {
			return NodeID{Meta: ms.MV.ValueNodeID()}
		}
		return NodeID{Meta: ms.MV.UsageNodeID()}
	}
	id := s.nodes.intern(v)
	if rg, ok := v.(*term.Range); ok {
		lost := cause.Lost{Inner: why}
		for _, lo := range rg.Lower {
			s.Queue(lo, vctx, v, vctx, rg.Rel, lost)
		}
		for _, up := range rg.Upper {
			s.Queue(v, vctx, up, vctx, rg.Rel, lost)
		}
	}
	return id
}
