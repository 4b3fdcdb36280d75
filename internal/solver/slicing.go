package solver

import (
	"github.com/corelang/corec/internal/meta"
	"github.com/corelang/corec/internal/term"
)

// SliceConstraintsFor converts every edge touching mv's two graph
// identities into a term.ConstraintElem (spec §4.G), used when mv would
// otherwise escape the binder/speculative scope it was minted in: the
// elaborator wraps the result in a term.ConstrainedType so a fresh
// metavariable re-registers the same obligations once control returns to
// an enclosing scope. The edges themselves are left in the graph -- slicing
// reads a snapshot of the constraints, it does not retract them.
func SliceConstraintsFor(s *State, mv meta.Var) *term.ConstrainedType {
	valueNode := NodeID{Meta: mv.ValueNodeID()}
	usageNode := NodeID{Meta: mv.UsageNodeID()}
	cur := s.BlockLevel()
	var elems []term.ConstraintElem

	// An edge is sliceable only if its other endpoint survives the scope
	// exit: a concrete value, or a metavariable minted at a strictly
	// shallower block level. Edges to equally-deep metavariables die with
	// the scope along with those metavariables themselves.
	keep := func(other term.Flex) bool {
		ms, ok := other.(*term.MetaStuck)
		return !ok || ms.MV.BlockLevel < cur
	}

	for _, e := range s.constrain.from(valueNode) {
		if keep(e.RVal) {
			elems = append(elems, term.ConstraintElem{Kind: term.SlicedConstrain, Other: e.RVal, Rel: e.Rel, Why: e.Cause})
		}
	}
	for _, e := range s.constrain.to(usageNode) {
		if keep(e.LVal) {
			elems = append(elems, term.ConstraintElem{Kind: term.ConstrainSliced, Other: e.LVal, Rel: e.Rel, Why: e.Cause})
		}
	}
	for _, e := range s.leftCall.from(valueNode) {
		if keep(e.RVal) {
			elems = append(elems, term.ConstraintElem{Kind: term.SlicedLeftCall, Other: e.RVal, Rel: e.Rel, Arg: e.Arg, Why: e.Cause})
		}
	}
	for _, e := range s.leftCall.to(usageNode) {
		if keep(e.LVal) {
			elems = append(elems, term.ConstraintElem{Kind: term.LeftCallSliced, Other: e.LVal, Rel: e.Rel, Arg: e.Arg, Why: e.Cause})
		}
	}
	for _, e := range s.rightCall.from(valueNode) {
		if keep(e.RVal) {
			elems = append(elems, term.ConstraintElem{Kind: term.SlicedRightCall, Other: e.RVal, Rel: e.Rel, Arg: e.Arg, Why: e.Cause})
		}
	}
	for _, e := range s.rightCall.to(usageNode) {
		if keep(e.LVal) {
			elems = append(elems, term.ConstraintElem{Kind: term.RightCallSliced, Other: e.LVal, Rel: e.Rel, Arg: e.Arg, Why: e.Cause})
		}
	}

	return &term.ConstrainedType{Elems: elems}
}
