package elaborate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelang/corec/internal/eval"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/solver"
	"github.com/corelang/corec/internal/span"
	"github.com/corelang/corec/internal/term"
)

func numLit(n float64) *term.AlreadyTyped {
	return &term.AlreadyTyped{
		Type: &term.HostNumberType{},
		Term: &term.Lit{Value: &term.HostValue{Kind: term.HostNumber, Num: n}},
	}
}

func wrap(i term.Inferrable) term.Checkable {
	return &term.WrapInferrable{Term: i}
}

func TestInferVarOutOfRangeIsFatal(t *testing.T) {
	e := New(solver.New())
	tc := rtctx.NewTypechecking()

	_, _, _, err := e.Infer(&term.Var{Index: 1}, tc)
	require.Error(t, err)
}

func TestInferAnnotatedLambdaIsIdentity(t *testing.T) {
	e := New(solver.New())
	tc := rtctx.NewTypechecking()

	lam := &term.AnnotatedLambda{
		ParamName: "x",
		ParamType: wrap(&term.Var{}), // placeholder, replaced below
		Vis:       term.Explicit,
		Pur:       term.Pure,
		Body:      &term.Var{Index: 1},
	}
	// A lambda's parameter type must itself elaborate to something; reuse
	// an already-typed host number type rather than inventing a dedicated
	// Checkable constant for this test.
	lam.ParamType = wrap(&term.AlreadyTyped{Type: &term.HostTypeType{}, Term: &term.Lit{Value: &term.HostNumberType{}}})

	typ, usages, typed, err := e.Infer(lam, tc)
	require.NoError(t, err)

	pi, ok := typ.(*term.Pi)
	require.True(t, ok, "expected a Pi, got %T", typ)
	assert.Equal(t, "x", pi.ParamName)
	assert.IsType(t, &term.HostNumberType{}, pi.ParamType)

	closureVal, err := eval.Evaluate(typed, tc.RT, e.St)
	require.NoError(t, err)
	assert.IsType(t, &term.Closure{}, closureVal)

	// The parameter's own usage must not leak into the outer usage vector.
	assert.Equal(t, []int{0}, usages)
}

func TestInferTupleConsRoundTrips(t *testing.T) {
	e := New(solver.New())
	tc := rtctx.NewTypechecking()

	tup := &term.TupleCons{Elements: []term.Checkable{wrap(numLit(1)), wrap(numLit(2))}}

	typ, _, typed, err := e.Infer(tup, tc)
	require.NoError(t, err)
	require.IsType(t, &term.TupleTypeV{}, typ)

	val, err := eval.Evaluate(typed, tc.RT, e.St)
	require.NoError(t, err)
	tv, ok := val.(*term.TupleValue)
	require.True(t, ok, "expected a TupleValue, got %T", val)
	require.Len(t, tv.Elements, 2)

	first, ok := tv.Elements[0].(*term.HostValue)
	require.True(t, ok)
	assert.Equal(t, 1.0, first.Num)
	second, ok := tv.Elements[1].(*term.HostValue)
	require.True(t, ok)
	assert.Equal(t, 2.0, second.Num)
}

func TestInferDependentTupleConsSeesEarlierElement(t *testing.T) {
	e := New(solver.New())
	tc := rtctx.NewTypechecking()

	// tuple(7, 7) -- the second element does not literally reference the
	// first (there is no checkable "read the previous tuple slot"
	// primitive in this AST), but this exercises that elaborating the
	// second position under a context already extended with the first
	// position's value does not error and still reduces correctly.
	tup := &term.TupleCons{Elements: []term.Checkable{wrap(numLit(7)), wrap(numLit(7))}}

	_, _, typed, err := e.Infer(tup, tc)
	require.NoError(t, err)

	// The typed term must be a chain of TLet around a flat TTupleCons
	// referencing TVars, not a bare TTupleCons with inline elements --
	// eval.Evaluate's TTupleCons case does not progressively extend its
	// context across elements.
	let1, ok := typed.(*term.TLet)
	require.True(t, ok, "expected outer TLet, got %T", typed)
	let2, ok := let1.Body.(*term.TLet)
	require.True(t, ok, "expected nested TLet, got %T", let1.Body)
	cons, ok := let2.Body.(*term.TTupleCons)
	require.True(t, ok, "expected TTupleCons innermost, got %T", let2.Body)
	require.Len(t, cons.Elements, 2)
	for _, el := range cons.Elements {
		assert.IsType(t, &term.TVar{}, el)
	}
}

func TestInferTupleElimDestructures(t *testing.T) {
	e := New(solver.New())
	tc := rtctx.NewTypechecking()

	subject := &term.AlreadyTyped{}
	{
		typ, _, typed, err := e.Infer(&term.TupleCons{Elements: []term.Checkable{wrap(numLit(3)), wrap(numLit(4))}}, tc)
		require.NoError(t, err)
		val, err := eval.Evaluate(typed, tc.RT, e.St)
		require.NoError(t, err)
		strictTyp, ok := typ.(term.Strict)
		require.True(t, ok)
		subject.Type = strictTyp
		subject.Term = &term.Lit{Value: val}
	}

	elimNode := &term.TupleElim{
		Names:      []string{"a", "b"},
		NameDebugs: make([]span.Name, 2),
		Subject:    subject,
		Body:       &term.Var{Index: 2}, // refers to "b"
	}

	// The bound elements are typed by their position's own metavariable
	// (constrained, during the tuple literal's own elaboration, to accept
	// a HostNumberType -- not resolved to one outright), so the result
	// type here is a still-abstract MetaStuck rather than HostNumberType
	// itself; what matters is that destructuring picks out the right
	// runtime element.
	_, _, typed, err := e.Infer(elimNode, tc)
	require.NoError(t, err)

	val, err := eval.Evaluate(typed, tc.RT, e.St)
	require.NoError(t, err)
	hv, ok := val.(*term.HostValue)
	require.True(t, ok)
	assert.Equal(t, 4.0, hv.Num)
}
