package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelang/corec/internal/diag"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/span"
	"github.com/corelang/corec/internal/term"
)

func num(n float64) *term.HostValue { return &term.HostValue{Kind: term.HostNumber, Num: n} }
func numLit(n float64) *term.Lit    { return &term.Lit{Value: num(n)} }
func boolLit(b bool) *term.Lit {
	return &term.Lit{Value: &term.HostValue{Kind: term.HostBool, Bool: b}}
}

func TestEvaluateLitAndVar(t *testing.T) {
	ctx := rtctx.Empty.Append(num(7), "x", span.Name{})

	v, err := Evaluate(numLit(1), ctx, nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(v, num(1)))

	v, err = Evaluate(&term.TVar{Index: 1}, ctx, nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(v, num(7)))
}

func TestEvaluateVarDebugMismatchIsFatal(t *testing.T) {
	ctx := rtctx.Empty.Append(num(7), "x", span.Name{Text: "x"})
	bad := &term.TVar{Base: term.Base{At: span.Name{Text: "y"}}, Index: 1}

	defer func() {
		r := recover()
		require.NotNil(t, r, "a debug mismatch must panic")
		_, ok := r.(*diag.Fatal)
		assert.True(t, ok, "the panic payload must be a *diag.Fatal, got %T", r)
	}()
	_, _ = Evaluate(bad, ctx, nil)
}

func TestApplyClosureIsIsolatedFromCallerContext(t *testing.T) {
	// The closure's body reads index 1, which must resolve against the
	// capture-built context, not whatever the caller had bound there.
	clo := &term.Closure{
		ParamName: "x",
		Body:      &term.TVar{Index: 1},
	}
	got, err := Apply(clo, num(3), nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(got, num(3)))

	withCapture := &term.Closure{
		ParamName:    "x",
		Body:         &term.TVar{Index: 1},
		Capture:      []term.Flex{num(42)},
		CaptureDebug: []span.Name{{Text: "c"}},
	}
	got, err = Apply(withCapture, num(3), nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(got, num(42)), "index 1 is the capture, index 2 the parameter")
}

func TestApplyStuckFunctionBuildsApplication(t *testing.T) {
	fn := &term.Free{Kind: term.Unique, Token: 9}
	got, err := Apply(fn, num(1), nil)
	require.NoError(t, err)
	app, ok := got.(*term.Application)
	require.True(t, ok)
	assert.True(t, term.Equal(app.Fn, fn))
}

func TestHostIfConcreteSubjectPicksBranch(t *testing.T) {
	v, err := Evaluate(&term.HostIf{Subject: boolLit(true), Then: numLit(1), Else: numLit(2)}, rtctx.Empty, nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(v, num(1)))

	v, err = Evaluate(&term.HostIf{Subject: boolLit(false), Then: numLit(1), Else: numLit(2)}, rtctx.Empty, nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(v, num(2)))
}

func TestHostIfStuckSubjectRetainsBothBranches(t *testing.T) {
	stuckSubject := &term.Lit{Value: &term.Free{Kind: term.Unique, Token: 1}}
	v, err := Evaluate(&term.HostIf{Subject: stuckSubject, Then: numLit(1), Else: numLit(2)}, rtctx.Empty, nil)
	require.NoError(t, err)

	sif, ok := v.(*term.StuckHostIf)
	require.True(t, ok)
	assert.True(t, term.Equal(sif.Then, num(1)), "the unchosen branch's value stays observable")
	assert.True(t, term.Equal(sif.Else, num(2)))
}

func TestHostIntFoldIteratesCountTimes(t *testing.T) {
	// fun = \acc. acc is the identity; more usefully, fold add1 over acc.
	add1 := &term.OperativeValue{
		Name: "add1",
		Call: func(_ term.OperativeCallCtx, arg term.Flex) (term.Flex, error) {
			return num(arg.(*term.HostValue).Num + 1), nil
		},
	}
	fold := &term.HostIntFold{Count: numLit(4), Acc: numLit(0), Fun: &term.Lit{Value: add1}}
	v, err := Evaluate(fold, rtctx.Empty, nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(v, num(4)))
}

func TestHostIntFoldStuckCountSticks(t *testing.T) {
	stuckCount := &term.Lit{Value: &term.Free{Kind: term.Unique, Token: 2}}
	fold := &term.HostIntFold{Count: stuckCount, Acc: numLit(0), Fun: numLit(0)}
	v, err := Evaluate(fold, rtctx.Empty, nil)
	require.NoError(t, err)
	assert.IsType(t, &term.StuckHostIntFold{}, v)
}

func TestTupleElimBindsElementsInOrder(t *testing.T) {
	elim := &term.TTupleElim{
		Names:   []string{"a", "b"},
		Subject: &term.TTupleCons{Elements: []term.Typed{numLit(10), numLit(20)}},
		Body:    &term.TVar{Index: 2},
	}
	v, err := Evaluate(elim, rtctx.Empty, nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(v, num(20)))
}

func TestIndexTupleOnStuckSubjectSticks(t *testing.T) {
	stuck := &term.Free{Kind: term.Placeholder, Index: 1}
	v, err := IndexTuple(stuck, 1, term.Base{})
	require.NoError(t, err)
	acc, ok := v.(*term.StuckTupleElementAccess)
	require.True(t, ok)
	assert.Equal(t, 1, acc.Index)
}

func TestEnumCaseDispatchesOnVariant(t *testing.T) {
	cons := &term.TEnumCons{Variant: "some", Payload: numLit(5)}
	c := &term.TEnumCase{
		Subject: cons,
		Arms: []term.TEnumArm{
			{Variant: "none", ParamName: "_", Body: numLit(0)},
			{Variant: "some", ParamName: "v", Body: &term.TVar{Index: 1}},
		},
	}
	v, err := Evaluate(c, rtctx.Empty, nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(v, num(5)))
}

func TestIntrinsicCurriesAndComputes(t *testing.T) {
	src := &term.THostIntrinsic{Source: "add", Type: &term.Lit{Value: &term.HostNumberType{}}}
	addVal, err := Evaluate(src, rtctx.Empty, nil)
	require.NoError(t, err)

	partial, err := Apply(addVal, num(2), nil)
	require.NoError(t, err)
	got, err := Apply(partial, num(3), nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(got, num(5)))
}

func TestProgramSequenceSuspendsAndResumes(t *testing.T) {
	seq := &term.TProgramSequence{
		First: numLit(1),
		Name:  "r",
		Then:  &term.TVar{Index: 1},
	}
	v, err := Evaluate(seq, rtctx.Empty, nil)
	require.NoError(t, err)
	oe, ok := v.(*term.ObjectElim)
	require.True(t, ok)
	assert.True(t, term.Equal(oe.Subject, num(1)))

	resumed, err := Resume(oe.BodyRef, num(9), nil)
	require.NoError(t, err)
	assert.True(t, term.Equal(resumed, num(9)), "the continuation sees the handler's result bound under its name")
}
