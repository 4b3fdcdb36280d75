// Package solver implements the constraint graph (spec §3.4-3.5, §4.G): a
// bipartite collection of Constrain/LeftCall/RightCall edges over interned
// value nodes and metavariable value/usage nodes, closed under
// transitivity, head checks, and call composition by a strictly-LIFO work
// queue. Every mutable piece of state -- the node table, the three edge
// stores, the work queue, and the metavariable minter -- participates in
// the shadow/commit/revert protocol (internal/txn) so Speculate can try an
// elaboration path and cleanly discard it on failure.
package solver

import (
	"fmt"

	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/diag"
	"github.com/corelang/corec/internal/eval"
	"github.com/corelang/corec/internal/meta"
	"github.com/corelang/corec/internal/relation"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
	"github.com/corelang/corec/internal/txn"
)

type edgeKind uint8

const (
	kindConstrain edgeKind = iota
	kindLeftCall
	kindRightCall
)

type workItem struct {
	kind edgeKind
	id   EdgeID
}

// EffectHandler implements one named effect's operations, registered by the
// surface layer before elaboration begins (spec §6 "register_effect_handler").
type EffectHandler func(op string, arg term.Flex) (term.Flex, error)

// State is the typechecker_state named in spec §6: the full mutable
// constraint-solving state, exposing flow/speculate/metavariable and the
// two registration hooks.
type State struct {
	nodes       *nodeTable
	constrain   *edgeStore[ConstrainEdge]
	leftCall    *edgeStore[LeftCallEdge]
	rightCall   *edgeStore[RightCallEdge]
	queue       *txn.Stack[workItem]
	blockLevel  *txn.Cell[int]
	minter      *meta.Minter
	uniqueCount *counter

	variances *relation.VarianceRegistry
	srels     map[string]relation.Relation
	effects   map[string]EffectHandler
}

// New creates an empty typechecker_state.
func New() *State {
	return &State{
		nodes:       newNodeTable(),
		constrain:   newEdgeStore[ConstrainEdge](),
		leftCall:    newEdgeStore[LeftCallEdge](),
		rightCall:   newEdgeStore[RightCallEdge](),
		queue:       txn.NewStack[workItem](),
		blockLevel:  txn.NewCell(0),
		minter:      meta.NewMinter(),
		uniqueCount: newCounter(1),
		variances:   relation.NewVarianceRegistry(),
		srels:       make(map[string]relation.Relation),
		effects:     make(map[string]EffectHandler),
	}
}

// BlockLevel reports the current speculative/binder scope depth.
func (s *State) BlockLevel() int { return s.blockLevel.Get() }

// PushBlock enters a new binder/speculative scope, returning its level.
func (s *State) PushBlock() int {
	lvl := s.blockLevel.Get() + 1
	s.blockLevel.Set(lvl)
	return lvl
}

// PopBlock exits the current binder/speculative scope.
func (s *State) PopBlock() {
	s.blockLevel.Set(s.blockLevel.Get() - 1)
}

// Mint implements eval.Slicer: it mints a fresh metavariable at an
// explicitly given block level, used when discharging a constrained_type
// evaluated under a binder other than the solver's own current scope.
func (s *State) Mint(blockLevel int) meta.Var {
	return s.minter.Mint(blockLevel)
}

// Metavariable mints a fresh metavariable at the current block level (spec
// §6 "metavariable").
func (s *State) Metavariable() meta.Var {
	return s.Mint(s.blockLevel.Get())
}

// FreshUnique mints an opaque witness value, used to discharge dependent
// function/tuple/record comparisons (spec §4.F).
func (s *State) FreshUnique() term.Flex {
	tok := s.uniqueCount.next()
	return &term.Free{Kind: term.Unique, Token: uint64(tok)}
}

// RegisterHostSrel names a relation so a srel_type value can refer to it by
// name (spec §4.F "SrelType").
func (s *State) RegisterHostSrel(name string, rel relation.Relation) {
	s.srels[name] = rel
}

// LookupHostSrel resolves a name registered via RegisterHostSrel.
func (s *State) LookupHostSrel(name string) (relation.Relation, error) {
	r, ok := s.srels[name]
	if !ok {
		return nil, fmt.Errorf("solver: no host relation registered under %q", name)
	}
	return r, nil
}

// RegisterEffectHandler installs the handler for a named effect (spec §6
// "register_effect_handler"), consulted by internal/effects when a program
// performs that effect.
func (s *State) RegisterEffectHandler(effect string, h EffectHandler) {
	s.effects[effect] = h
}

// LookupEffectHandler resolves a handler registered via RegisterEffectHandler.
func (s *State) LookupEffectHandler(effect string) (EffectHandler, bool) {
	h, ok := s.effects[effect]
	return h, ok
}

// Variances exposes the host-type variance registry so the surface layer
// can declare host type families before elaboration begins.
func (s *State) Variances() *relation.VarianceRegistry { return s.variances }

func asRelation(rel term.RelationRef) (relation.Relation, error) {
	r, ok := rel.(relation.Relation)
	if !ok {
		return nil, diag.NewFatal(diag.SLVRelationMismatch, "relation %q does not implement the full comparer contract", rel.RelName())
	}
	return r, nil
}

// Queue implements term.QueueCtx for relation combinators and the
// metavariable-slicing re-registration in internal/eval: it records L
// <=Rel R as a pending ConstrainEdge and appends it to the work queue.
// Processing (transitivity, head check, induced calls) happens when Flow
// drains the queue, not here -- Queue may itself be called from inside
// that drain, and the single outer loop picks up whatever it appends.
func (s *State) Queue(left term.Flex, lctx any, right term.Flex, rctx any, rel term.RelationRef, why cause.Cause) error {
	r, err := asRelation(rel)
	if err != nil {
		return err
	}
	lc, _ := lctx.(*rtctx.Runtime)
	rc, _ := rctx.(*rtctx.Runtime)
	lnode := s.checkValue(left, lc, AsVal, why)
	rnode := s.checkValue(right, rc, AsUse, why)
	id, fresh := s.constrain.insert(lnode, rnode, func(id EdgeID) ConstrainEdge {
		return ConstrainEdge{ID: id, L: lnode, R: rnode, LVal: left, RVal: right, LCtx: lc, RCtx: rc, Rel: r, Block: s.BlockLevel(), Cause: why}
	}, func(e ConstrainEdge) bool { return e.Rel.RelName() == r.RelName() })
	if fresh {
		s.queue.Push(workItem{kind: kindConstrain, id: id})
	}
	return nil
}

// QueueLeftCall implements term.QueueCtx: records (fn arg) <=Rel result.
func (s *State) QueueLeftCall(fn, arg term.Flex, rel term.RelationRef, result term.Flex, ctx any, why cause.Cause) error {
	r, err := asRelation(rel)
	if err != nil {
		return err
	}
	c, _ := ctx.(*rtctx.Runtime)
	lnode := s.checkValue(fn, c, AsVal, why)
	rnode := s.checkValue(result, c, AsUse, why)
	id, fresh := s.leftCall.insert(lnode, rnode, func(id EdgeID) LeftCallEdge {
		return LeftCallEdge{ID: id, L: lnode, LVal: fn, LCtx: c, Arg: arg, ArgCtx: c, Rel: r, R: rnode, RVal: result, RCtx: c, Block: s.BlockLevel(), Cause: why}
	}, func(e LeftCallEdge) bool { return e.Rel.RelName() == r.RelName() && term.Equal(e.Arg, arg) })
	if fresh {
		s.queue.Push(workItem{kind: kindLeftCall, id: id})
	}
	return nil
}

// QueueRightCall implements term.QueueCtx: records left <=Rel (fn arg).
func (s *State) QueueRightCall(left term.Flex, rel term.RelationRef, fn, arg term.Flex, ctx any, why cause.Cause) error {
	r, err := asRelation(rel)
	if err != nil {
		return err
	}
	c, _ := ctx.(*rtctx.Runtime)
	lnode := s.checkValue(left, c, AsVal, why)
	rnode := s.checkValue(fn, c, AsUse, why)
	id, fresh := s.rightCall.insert(lnode, rnode, func(id EdgeID) RightCallEdge {
		return RightCallEdge{ID: id, L: lnode, LVal: left, LCtx: c, Rel: r, R: rnode, RVal: fn, RCtx: c, Arg: arg, ArgCtx: c, Block: s.BlockLevel(), Cause: why}
	}, func(e RightCallEdge) bool { return e.Rel.RelName() == r.RelName() && term.Equal(e.Arg, arg) })
	if fresh {
		s.queue.Push(workItem{kind: kindRightCall, id: id})
	}
	return nil
}

// Flow is the public entry point named "flow" in spec §6: queue val <=Rel
// use and drain the work queue, returning whether the obligation (and
// everything derived from it) held.
func (s *State) Flow(val term.Flex, lctx *rtctx.Runtime, use term.Flex, rctx *rtctx.Runtime, rel relation.Relation, why cause.Cause) (bool, error) {
	if err := s.Queue(val, lctx, use, rctx, rel, why); err != nil {
		return false, err
	}
	return s.drain()
}

// Drain processes queued work to quiescence. Callers that accumulate
// obligations through Queue/QueueLeftCall/QueueRightCall (the elaborator
// does, one per emitted subtype obligation) run the head checks by
// draining; Flow is Queue+Drain in one step.
func (s *State) Drain() (bool, error) { return s.drain() }

func (s *State) drain() (bool, error) {
	for {
		item, ok := s.queue.Pop()
		if !ok {
			return true, nil
		}
		var err error
		switch item.kind {
		case kindConstrain:
			err = s.processConstrain(item.id)
		case kindLeftCall:
			err = s.processLeftCall(item.id)
		case kindRightCall:
			err = s.processRightCall(item.id)
		}
		if err != nil {
			return false, err
		}
	}
}

func (s *State) processConstrain(id EdgeID) error {
	edge, ok := s.constrain.get(id)
	if !ok {
		return nil
	}

	// Transitivity: L<=R and R<=X gives L<=X; Y<=L and L<=R gives Y<=R.
	for _, e2 := range s.constrain.from(edge.R) {
		if e2.Rel.RelName() != edge.Rel.RelName() {
			continue
		}
		if err := s.Queue(edge.LVal, edge.LCtx, e2.RVal, e2.RCtx, edge.Rel, cause.Composed{Left: edge.Cause, Right: e2.Cause}); err != nil {
			return err
		}
	}
	for _, e2 := range s.constrain.to(edge.L) {
		if e2.Rel.RelName() != edge.Rel.RelName() {
			continue
		}
		if err := s.Queue(e2.LVal, e2.LCtx, edge.RVal, edge.RCtx, edge.Rel, cause.Composed{Left: e2.Cause, Right: edge.Cause}); err != nil {
			return err
		}
	}

	// Induced calls: a stuck application on either endpoint becomes a call
	// edge against the function it is stuck on, instead of a head check.
	if app, ok := edge.LVal.(*term.Application); ok {
		return s.QueueLeftCall(app.Fn, app.Arg, edge.Rel, edge.RVal, edge.RCtx, edge.Cause)
	}
	if app, ok := edge.RVal.(*term.Application); ok {
		return s.QueueRightCall(edge.LVal, edge.Rel, app.Fn, app.Arg, edge.LCtx, edge.Cause)
	}

	// Call composition through metavariable endpoints: L<=R plus a
	// left-call (R arg)<=R' gives (L arg)<=R', discharged by applying L
	// directly; symmetric for a right-call reaching L. A metavariable's
	// call edges hang off its value node (left calls) or usage node (right
	// calls) while the constrain endpoint here is the opposite node, so the
	// lookup goes through the sibling of the same owner.
	if edge.R.IsMeta() {
		for _, lc := range s.leftCall.from(metaSibling(edge.R, meta.ValueNode)) {
			if lc.Rel.RelName() != edge.Rel.RelName() {
				continue
			}
			applied, err := eval.Apply(edge.LVal, lc.Arg, s)
			if err != nil {
				return err
			}
			if err := s.Queue(applied, edge.LCtx, lc.RVal, lc.RCtx, edge.Rel, cause.Composed{Left: edge.Cause, Right: lc.Cause}); err != nil {
				return err
			}
		}
	}
	if edge.L.IsMeta() {
		for _, rc := range s.rightCall.to(metaSibling(edge.L, meta.UsageNode)) {
			if rc.Rel.RelName() != edge.Rel.RelName() {
				continue
			}
			applied, err := eval.Apply(edge.RVal, rc.Arg, s)
			if err != nil {
				return err
			}
			if err := s.Queue(rc.LVal, rc.LCtx, applied, edge.RCtx, edge.Rel, cause.Composed{Left: rc.Cause, Right: edge.Cause}); err != nil {
				return err
			}
		}
	}

	// Head check: both endpoints are concrete and neither is a metavariable.
	if edge.L.IsMeta() || edge.R.IsMeta() {
		return nil
	}
	ok2, err := edge.Rel.Constrain(s, edge.LCtx, edge.LVal, edge.RCtx, edge.RVal, edge.Cause)
	if err != nil {
		return err
	}
	if !ok2 {
		return &diag.ConstraintError{Desc: "subtype check failed", Left: edge.LVal, LCtx: edge.LCtx, Op: edge.Rel.RelName(), Right: edge.RVal, RCtx: edge.RCtx, Cause: edge.Cause}
	}
	return nil
}

func (s *State) processLeftCall(id EdgeID) error {
	edge, ok := s.leftCall.get(id)
	if !ok {
		return nil
	}

	// Direct discharge when the function side has resolved to a concrete
	// callable.
	switch fn := edge.LVal.(type) {
	case *term.Pi:
		result, err := eval.Apply(fn.ResultClosure, edge.Arg, s)
		if err != nil {
			return err
		}
		if err := s.Queue(result, edge.LCtx, edge.RVal, edge.RCtx, edge.Rel, edge.Cause); err != nil {
			return err
		}
	case *term.HostFunctionType:
		if len(fn.Params) != 1 {
			return fmt.Errorf("solver: left-call against a %d-ary host function is not supported", len(fn.Params))
		}
		if err := s.Queue(fn.Result, edge.LCtx, edge.RVal, edge.RCtx, edge.Rel, edge.Cause); err != nil {
			return err
		}
	}

	// Composition through supertypes: Y<=L and (L arg)<=R gives (Y arg)<=R.
	// Constrains into a metavariable land on its usage node.
	for _, e2 := range s.constrain.to(metaSibling(edge.L, meta.UsageNode)) {
		if e2.Rel.RelName() != edge.Rel.RelName() {
			continue
		}
		if err := s.QueueLeftCall(e2.LVal, edge.Arg, edge.Rel, edge.RVal, edge.RCtx, cause.Composed{Left: e2.Cause, Right: edge.Cause}); err != nil {
			return err
		}
	}

	// Meet: X<=(L arg) and (L arg)<=R gives X<=R directly. Right-call
	// edges on a metavariable function hang off its usage node.
	for _, rc := range s.rightCall.to(metaSibling(edge.L, meta.UsageNode)) {
		if rc.Rel.RelName() != edge.Rel.RelName() || !term.Equal(rc.Arg, edge.Arg) {
			continue
		}
		if err := s.Queue(rc.LVal, rc.LCtx, edge.RVal, edge.RCtx, edge.Rel, cause.Composed{Left: rc.Cause, Right: edge.Cause}); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) processRightCall(id EdgeID) error {
	edge, ok := s.rightCall.get(id)
	if !ok {
		return nil
	}

	switch fn := edge.RVal.(type) {
	case *term.Pi:
		result, err := eval.Apply(fn.ResultClosure, edge.Arg, s)
		if err != nil {
			return err
		}
		if err := s.Queue(edge.LVal, edge.LCtx, result, edge.RCtx, edge.Rel, edge.Cause); err != nil {
			return err
		}
	case *term.HostFunctionType:
		if len(fn.Params) != 1 {
			return fmt.Errorf("solver: right-call against a %d-ary host function is not supported", len(fn.Params))
		}
		if err := s.Queue(edge.LVal, edge.LCtx, fn.Result, edge.RCtx, edge.Rel, edge.Cause); err != nil {
			return err
		}
	}

	// Composition through supertypes: R<=Z and L<=(R arg) gives L<=(Z arg).
	// Constrains out of a metavariable leave from its value node.
	for _, e2 := range s.constrain.from(metaSibling(edge.R, meta.ValueNode)) {
		if e2.Rel.RelName() != edge.Rel.RelName() {
			continue
		}
		if err := s.QueueRightCall(edge.LVal, edge.Rel, e2.RVal, edge.Arg, edge.LCtx, cause.Composed{Left: edge.Cause, Right: e2.Cause}); err != nil {
			return err
		}
	}

	// Meet: L<=(R arg) and (R arg)<=Y gives L<=Y directly. Left-call edges
	// on a metavariable function hang off its value node.
	for _, lc := range s.leftCall.from(metaSibling(edge.R, meta.ValueNode)) {
		if lc.Rel.RelName() != edge.Rel.RelName() || !term.Equal(lc.Arg, edge.Arg) {
			continue
		}
		if err := s.Queue(edge.LVal, edge.LCtx, lc.RVal, lc.RCtx, edge.Rel, cause.Composed{Left: edge.Cause, Right: lc.Cause}); err != nil {
			return err
		}
	}
	return nil
}

// Speculate runs fn inside a fresh shadow layered over every piece of
// mutable state; it commits the shadow on success and reverts it on
// failure (spec §4.H). A panic carrying a *diag.Fatal is never recovered
// here -- the speculative shadow is simply abandoned along with everything
// else on the goroutine's stack, which is correct because a Fatal means an
// upstream invariant already broke and no further bookkeeping can help.
func (s *State) Speculate(fn func() (bool, error)) (bool, error) {
	snap := s.shadow()
	ok, err := fn()
	if ok && err == nil {
		snap.commit()
		return true, nil
	}
	snap.revert()
	return false, err
}

type snapshot struct {
	s          *State
	nodes      *nodeTable
	constrain  *edgeStore[ConstrainEdge]
	leftCall   *edgeStore[LeftCallEdge]
	rightCall  *edgeStore[RightCallEdge]
	queue      *txn.Stack[workItem]
	blockLevel *txn.Cell[int]
	minterAt   meta.ID
	uniqueAt   *counter
}

func (s *State) shadow() *snapshot {
	snap := &snapshot{
		s:          s,
		nodes:      s.nodes,
		constrain:  s.constrain,
		leftCall:   s.leftCall,
		rightCall:  s.rightCall,
		queue:      s.queue,
		blockLevel: s.blockLevel,
		minterAt:   s.minter.Snapshot(),
		uniqueAt:   s.uniqueCount,
	}
	s.nodes = s.nodes.shadow()
	s.constrain = s.constrain.shadow()
	s.leftCall = s.leftCall.shadow()
	s.rightCall = s.rightCall.shadow()
	s.queue = s.queue.Shadow()
	s.blockLevel = s.blockLevel.Shadow()
	s.uniqueCount = s.uniqueCount.shadow()
	return snap
}

func (snap *snapshot) commit() {
	snap.s.nodes.commit()
	snap.s.constrain.commit()
	snap.s.leftCall.commit()
	snap.s.rightCall.commit()
	snap.s.queue.Commit()
	snap.s.blockLevel.Commit()
	snap.s.uniqueCount.commit()
	snap.s.nodes = snap.nodes
	snap.s.constrain = snap.constrain
	snap.s.leftCall = snap.leftCall
	snap.s.rightCall = snap.rightCall
	snap.s.queue = snap.queue
	snap.s.blockLevel = snap.blockLevel
	snap.s.uniqueCount = snap.uniqueAt
}

func (snap *snapshot) revert() {
	snap.s.nodes.revert()
	snap.s.constrain.revert()
	snap.s.leftCall.revert()
	snap.s.rightCall.revert()
	snap.s.queue.Revert()
	snap.s.blockLevel.Revert()
	snap.s.uniqueCount.revert()
	snap.s.nodes = snap.nodes
	snap.s.constrain = snap.constrain
	snap.s.leftCall = snap.leftCall
	snap.s.rightCall = snap.rightCall
	snap.s.queue = snap.queue
	snap.s.blockLevel = snap.blockLevel
	snap.s.uniqueCount = snap.uniqueAt
	snap.s.minter.Restore(snap.minterAt)
}
