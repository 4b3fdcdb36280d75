package elaborate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/eval"
	"github.com/corelang/corec/internal/relation"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/solver"
	"github.com/corelang/corec/internal/span"
	"github.com/corelang/corec/internal/term"
)

func starLit() term.Checkable {
	return wrap(&term.AlreadyTyped{Type: &term.Star{Level: 1}, Term: &term.Lit{Value: &term.Star{}}})
}

func numberTypeLit() term.Checkable {
	return wrap(&term.AlreadyTyped{Type: &term.HostTypeType{}, Term: &term.Lit{Value: &term.HostNumberType{}}})
}

// polyIdentity builds λ(A : star 0 0). λ(x : A). x.
func polyIdentity() term.Inferrable {
	inner := &term.AnnotatedLambda{
		ParamName: "x",
		ParamType: wrap(&term.Var{Index: 1}),
		Vis:       term.Explicit,
		Pur:       term.Pure,
		Body:      &term.Var{Index: 2},
	}
	return &term.AnnotatedLambda{
		ParamName: "A",
		ParamType: starLit(),
		Vis:       term.Explicit,
		Pur:       term.Pure,
		Body:      inner,
	}
}

func TestIdentityPolymorphism(t *testing.T) {
	e := New(solver.New())
	tc := rtctx.NewTypechecking()

	// (λ(A : star 0 0). λ(x : A). x) Number 3.0
	app := &term.App{
		Fn:  &term.App{Fn: polyIdentity(), Arg: numberTypeLit()},
		Arg: wrap(numLit(3)),
	}

	typ, _, typed, err := e.Infer(app, tc)
	require.NoError(t, err)
	assert.IsType(t, &term.HostNumberType{}, typ, "the whole expression infers at Number")

	v, err := eval.Evaluate(typed, tc.RT, e.St)
	require.NoError(t, err)
	assert.True(t, term.Equal(v, &term.HostValue{Kind: term.HostNumber, Num: 3}))
}

func TestImplicitInsertion(t *testing.T) {
	e := New(solver.New())
	tc := rtctx.NewTypechecking()

	// f : ∀{A : star 0 0}. A -> A, handed in as an already-elaborated
	// value-and-type pair the way the operative layer would deliver it.
	innerResult := &term.LambdaExplicitCapture{
		ParamName:     "x",
		CaptureExpr:   &term.TTupleCons{Elements: []term.Typed{&term.TVar{Index: 1}}},
		CaptureNames:  []string{"A"},
		CaptureDebugs: []span.Name{{Text: "A"}},
		Body:          &term.TVar{Index: 1},
	}
	innerPi := &term.TPi{ParamName: "x", ParamType: &term.TVar{Index: 1}, Result: innerResult}
	fType := &term.Pi{
		ParamName:     "A",
		ParamType:     &term.Star{},
		Vis:           term.Implicit,
		ResultClosure: &term.Closure{ParamName: "A", Body: innerPi},
	}
	// f's runtime value takes the type argument first, then behaves as the
	// identity on its second argument.
	fValue := &term.Closure{ParamName: "A", Body: &term.LambdaExplicitCapture{
		ParamName:    "v",
		CaptureExpr:  &term.TTupleCons{},
		CaptureNames: []string{},
		Body:         &term.TVar{Index: 1},
	}}
	f := &term.AlreadyTyped{Type: fType, Term: &term.Lit{Value: fValue}}

	typ, _, typed, err := e.Infer(&term.App{Fn: f, Arg: wrap(numLit(3))}, tc)
	require.NoError(t, err)

	// The implicit argument slot must have been filled by a metavariable,
	// and the result type is that metavariable (lower-bounded by Number).
	inner, ok := typed.(*term.TApp)
	require.True(t, ok)
	mvApp, ok := inner.Fn.(*term.TApp)
	require.True(t, ok)
	assert.IsType(t, &term.MetaRef{}, mvApp.Arg, "an implicit metavariable was inserted for A")
	assert.IsType(t, &term.MetaStuck{}, typ)

	v, err := eval.Evaluate(typed, tc.RT, e.St)
	require.NoError(t, err)
	assert.True(t, term.Equal(v, &term.HostValue{Kind: term.HostNumber, Num: 3}))
}

func TestTupleElimAcceptsHostTupleTypedSubject(t *testing.T) {
	e := New(solver.New())
	tc := rtctx.NewTypechecking()

	// The subject's declared type is a host tuple, so the tuple_type
	// speculation fails and the host_tuple_type fallback must take over
	// without leaving the graph poisoned by the failed branch.
	subjType := &term.HostTupleValue{Elements: []term.Flex{&term.HostNumberType{}, &term.HostNumberType{}}}
	subjValue := &term.TupleValue{Elements: []term.Flex{
		&term.HostValue{Kind: term.HostNumber, Num: 1},
		&term.HostValue{Kind: term.HostNumber, Num: 2},
	}}
	elim := &term.TupleElim{
		Names:      []string{"a", "b"},
		NameDebugs: make([]span.Name, 2),
		Subject:    &term.AlreadyTyped{Type: subjType, Term: &term.Lit{Value: subjValue}},
		Body:       &term.Var{Index: 1},
	}

	typ, _, typed, err := e.Infer(elim, tc)
	require.NoError(t, err)
	assert.IsType(t, &term.HostNumberType{}, typ)

	v, err := eval.Evaluate(typed, tc.RT, e.St)
	require.NoError(t, err)
	assert.True(t, term.Equal(v, &term.HostValue{Kind: term.HostNumber, Num: 1}))
}

func TestScopeEscapeSlicesAndReregisters(t *testing.T) {
	st := solver.New()
	number := &term.HostNumberType{}

	// Inside a deeper block, constrain M <= Number, then leave the block:
	// the sliced term must carry exactly that bound.
	st.PushBlock()
	mv := st.Metavariable()
	mvVal := &term.MetaStuck{MV: mv}
	require.NoError(t, st.Queue(mvVal, nil, number, nil, relation.Omega, cause.Primitive{Reason: "bound"}))
	_, err := st.Drain()
	require.NoError(t, err)
	st.PopBlock()

	ct := solver.SliceConstraintsFor(st, mv)
	require.Len(t, ct.Elems, 1)
	assert.Equal(t, term.SlicedConstrain, ct.Elems[0].Kind)
	assert.True(t, term.Equal(ct.Elems[0].Other, number))

	// Evaluating the sliced term mints a fresh metavariable in the outer
	// scope carrying the same upper bound.
	v, err := eval.Evaluate(ct, rtctx.Empty, st)
	require.NoError(t, err)
	fresh, ok := v.(*term.MetaStuck)
	require.True(t, ok)
	require.NotEqual(t, mv.ID, fresh.MV.ID)
	assert.Equal(t, 0, fresh.MV.BlockLevel)
	_, err = st.Drain()
	require.NoError(t, err)

	reSliced := solver.SliceConstraintsFor(st, fresh.MV)
	require.Len(t, reSliced.Elems, 1)
	assert.Equal(t, term.SlicedConstrain, reSliced.Elems[0].Kind)
	assert.True(t, term.Equal(reSliced.Elems[0].Other, number))
}

func TestQuotedPiSubstitutesAppliedArgument(t *testing.T) {
	e := New(solver.New())
	tc := rtctx.NewTypechecking()

	// Inferring just the polymorphic identity yields a pi whose result,
	// applied to a concrete type, is a pi over that type -- the dependent
	// result type substitutes rather than leaking the bound placeholder.
	typ, _, _, err := e.Infer(polyIdentity(), tc)
	require.NoError(t, err)
	outer, ok := typ.(*term.Pi)
	require.True(t, ok)

	applied, err := eval.Apply(outer.ResultClosure, &term.HostNumberType{}, e.St)
	require.NoError(t, err)
	innerPi, ok := applied.(*term.Pi)
	require.True(t, ok, "applying the result closure yields the inner pi, got %T", applied)
	assert.IsType(t, &term.HostNumberType{}, innerPi.ParamType, "A was substituted by Number")
}

func TestQuoteEvaluateRoundTripsClosedValues(t *testing.T) {
	e := New(solver.New())
	three := &term.HostValue{Kind: term.HostNumber, Num: 3}
	values := []term.Flex{
		three,
		&term.HostValue{Kind: term.HostString, Str: "s"},
		&term.TupleValue{Elements: []term.Flex{three, &term.HostValue{Kind: term.HostBool, Bool: true}}},
		&term.EnumValue{Variant: "some", Payload: three},
		&term.RecordValue{FieldNames: []string{"n"}, Fields: []term.Flex{three}},
		&term.Star{Level: 1, Depth: 2},
	}
	for _, v := range values {
		back, err := eval.Evaluate(e.quote(v), rtctx.Empty, e.St)
		require.NoError(t, err)
		assert.True(t, term.Equal(v, back), "round-trip changed %s into %s", v, back)
	}
}

func TestQuotePlaceholderResolvesUnderContext(t *testing.T) {
	e := New(solver.New())
	three := &term.HostValue{Kind: term.HostNumber, Num: 3}
	ph := &term.Free{Kind: term.Placeholder, Index: 1}

	ctx := rtctx.Empty.Append(three, "x", span.Name{})
	back, err := eval.Evaluate(e.quote(ph), ctx, e.St)
	require.NoError(t, err)
	assert.True(t, term.Equal(back, three), "a quoted placeholder is a var that re-resolves")
}
