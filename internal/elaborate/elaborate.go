// Package elaborate implements the bidirectional elaborator (spec §4.E):
// infer synthesises a type for an Inferrable term, check verifies a
// Checkable term against a goal type, and both thread a per-binding usage
// vector and emit subtype obligations to internal/solver as they go. This
// is the piece that turns the already-built inferrable/checkable ASTs
// handed in by the parser/operative layer (spec §1, out of this core's
// scope) into internal/term.Typed trees the evaluator can run.
package elaborate

import (
	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/diag"
	"github.com/corelang/corec/internal/eval"
	"github.com/corelang/corec/internal/meta"
	"github.com/corelang/corec/internal/relation"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/solver"
	"github.com/corelang/corec/internal/subst"
	"github.com/corelang/corec/internal/term"
	"github.com/corelang/corec/internal/txn"
)

// Elaborator threads a single constraint-solving state and the memo tables
// for infer/check through a whole elaboration session. The memo tables are
// shadowable (internal/txn) exactly like every other piece of mutable
// solver state, so a Speculate that reverts also forgets memo entries
// recorded inside the speculative branch (spec §4.C "infer is memoised by
// (term, context); the memo participates in shadowing").
type Elaborator struct {
	St *solver.State

	inferMemo *txn.Map[inferKey, *inferResult]
	checkMemo *txn.Map[checkKey, *checkResult]
	evalMemo  *txn.Map[evalKey, *evalResult]
}

// New creates an Elaborator driving the given solver state.
func New(st *solver.State) *Elaborator {
	return &Elaborator{
		St:        st,
		inferMemo: txn.NewMap[inferKey, *inferResult](),
		checkMemo: txn.NewMap[checkKey, *checkResult](),
		evalMemo:  txn.NewMap[evalKey, *evalResult](),
	}
}

// Speculate runs fn inside a shadow of both the solver state and this
// elaborator's memo tables, committing on success and reverting on failure
// (spec §4.H); used by TupleElim's tuple_type/host_tuple_type dual-path
// attempt so neither failed branch pollutes the constraint graph or the
// memo tables with entries reachable after the speculation ends.
func (e *Elaborator) Speculate(fn func() (bool, error)) (bool, error) {
	inferShadow := e.inferMemo.Shadow()
	checkShadow := e.checkMemo.Shadow()
	evalShadow := e.evalMemo.Shadow()
	parentInfer, parentCheck, parentEval := e.inferMemo, e.checkMemo, e.evalMemo
	e.inferMemo, e.checkMemo, e.evalMemo = inferShadow, checkShadow, evalShadow

	ok, err := e.St.Speculate(fn)

	if ok && err == nil {
		inferShadow.Commit()
		checkShadow.Commit()
		evalShadow.Commit()
	} else {
		inferShadow.Revert()
		checkShadow.Revert()
		evalShadow.Revert()
	}
	e.inferMemo, e.checkMemo, e.evalMemo = parentInfer, parentCheck, parentEval
	return ok, err
}

type inferKey struct {
	term term.Inferrable
	tc   *rtctx.Typechecking
}

type inferResult struct {
	ok     bool
	typ    term.Flex
	usages []int
	typed  term.Typed
	err    error
}

type checkKey struct {
	term term.Checkable
	tc   *rtctx.Typechecking
	goal term.Flex
}

type checkResult struct {
	ok     bool
	usages []int
	typed  term.Typed
	err    error
}

type evalKey struct {
	term term.Typed
	ctx  *rtctx.Runtime
}

type evalResult struct {
	v   term.Flex
	err error
}

// newUsages returns a fresh, zeroed per-binding reference-count vector sized
// for a context of length n (1-based addressing, so index 0 is unused).
func newUsages(n int) []int { return make([]int, n+1) }

// mergeUsages adds b into a (pointwise), growing a if b is longer; used
// whenever infer/check must combine usages gathered from two or more
// subterms (spec §4.E "usages are accumulated additively").
func mergeUsages(a, b []int) []int {
	if len(b) > len(a) {
		grown := make([]int, len(b))
		copy(grown, a)
		a = grown
	}
	for i, n := range b {
		a[i] += n
	}
	return a
}

// dropUsage zeroes the entry for index in a copy of u, leaving u itself
// untouched (used by the lambda/let cases to
// strip the bound parameter's own usage count before returning the vector
// to an enclosing scope, spec §4.E "the lambda case drops the parameter's
// usage from the returned vector").
func dropUsage(u []int, index int) []int {
	if index < len(u) {
		u = append([]int(nil), u...)
		u[index] = 0
	}
	return u
}

func (e *Elaborator) relQueue(left term.Flex, lctx *rtctx.Runtime, right term.Flex, rctx *rtctx.Runtime, why cause.Cause) error {
	return e.St.Queue(left, lctx, right, rctx, relation.Omega, why)
}

// primitiveCause builds a leaf Cause tied to the debug info on any term
// (inferrable/checkable/typed all implement term.Debugged).
func primitiveCause(reason string, d term.Debugged) cause.Cause {
	return cause.Primitive{Reason: reason, At: d.Debug().Pos}
}

// freshMeta mints a metavariable at the solver's current block level
// (used for every invented metavariable, universe goals included),
// returning it together with the MetaRef typed term (for embedding in the elaborated
// tree) and the MetaStuck value (for use as a goal/type immediately).
func (e *Elaborator) freshMeta() (meta.Var, *term.MetaRef, *term.MetaStuck) {
	mv := e.St.Metavariable()
	return mv, &term.MetaRef{MV: mv}, &term.MetaStuck{MV: mv}
}

// evaluate is the Elaborator's narrow handle into internal/eval, always
// passing itself (via st) as the Slicer so a constrained_type produced by
// substitution/slicing mid-elaboration can mint its replacement
// metavariable against the *current* solver state. Results are memoised by
// (term, context) identity; the memo shadows with Speculate like the
// infer/check memos, so entries recorded in a reverted branch (including
// any minted metavariable a constrained_type registered there) are
// forgotten together with the solver state they referenced.
func (e *Elaborator) evaluate(t term.Typed, ctx *rtctx.Runtime) (term.Flex, error) {
	key := evalKey{term: t, ctx: ctx}
	if cached, ok := e.evalMemo.Get(key); ok {
		return cached.v, cached.err
	}
	v, err := eval.Evaluate(t, ctx, e.St)
	e.evalMemo.Set(key, &evalResult{v: v, err: err})
	return v, err
}

func (e *Elaborator) apply(fn, arg term.Flex) (term.Flex, error) {
	return eval.Apply(fn, arg, e.St)
}

// buildClosure performs closure construction (spec §4.D) for a lambda
// elaborated under tc, delegating to internal/subst.
func buildClosure(lam *term.Lambda, tc *rtctx.Typechecking) *term.LambdaExplicitCapture {
	return subst.BuildClosure(lam, tc)
}

// fatalIndexOutOfRange reports a CST001 structural error -- an Inferrable
// references a context index that does not exist, which can only happen if
// an upstream invariant (the term was built against a different context
// than the one it is being elaborated in) already broke.
func fatalIndexOutOfRange(index, n int) error {
	return diag.NewFatal(diag.CSTIndexOutOfRange, "index %d out of range [1,%d]", index, n)
}
