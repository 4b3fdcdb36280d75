package subst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/span"
	"github.com/corelang/corec/internal/term"
)

func namedCtx(names ...string) *rtctx.Typechecking {
	tc := rtctx.NewTypechecking()
	for _, n := range names {
		tc = tc.Extend(&term.Star{}, &term.Star{}, n, span.Name{Text: n})
	}
	return tc
}

func TestBuildClosureDropsUnusedOuterBindings(t *testing.T) {
	tc := namedCtx("x", "y", "z") // indices 1,2,3
	// body: x + param (only captures index 1, ignores y and z)
	lam := &term.Lambda{
		ParamName: "p",
		Body: &term.TApp{
			Fn:  &term.TVar{Index: 1},
			Arg: &term.TVar{Index: 4}, // the lambda's own parameter
		},
	}

	closure := BuildClosure(lam, tc)

	require.Equal(t, []string{"x"}, closure.CaptureNames)
	cons, ok := closure.CaptureExpr.(*term.TTupleCons)
	require.True(t, ok)
	require.Len(t, cons.Elements, 1)
	assert.Equal(t, 1, cons.Elements[0].(*term.TVar).Index)

	app, ok := closure.Body.(*term.TApp)
	require.True(t, ok)
	// captured "x" is now at index 1 in the closure's own tuple-plus-param context
	assert.Equal(t, 1, app.Fn.(*term.TVar).Index)
	// the parameter, previously index 4 (len(ctx)+1), now follows the single capture
	assert.Equal(t, 2, app.Arg.(*term.TVar).Index)
}

func TestBuildClosureNoCaptures(t *testing.T) {
	tc := namedCtx("x", "y")
	lam := &term.Lambda{
		ParamName: "p",
		Body:      &term.TVar{Index: 3}, // only references its own parameter
	}

	closure := BuildClosure(lam, tc)

	assert.Empty(t, closure.CaptureNames)
	cons := closure.CaptureExpr.(*term.TTupleCons)
	assert.Empty(t, cons.Elements)

	v := closure.Body.(*term.TVar)
	assert.Equal(t, 1, v.Index)
}

func TestBuildClosurePreservesIndicesDeeperThanParameter(t *testing.T) {
	tc := namedCtx("x") // index 1, param will be index 2
	// body binds a TLet (index 3) whose body references the let (3), the
	// parameter (2), and the outer capture (1).
	lam := &term.Lambda{
		ParamName: "p",
		Body: &term.TLet{
			Name: "q",
			Expr: &term.TVar{Index: 2}, // the parameter
			Body: &term.TApp{
				Fn:  &term.TVar{Index: 1}, // outer capture x
				Arg: &term.TVar{Index: 3}, // the let binding itself
			},
		},
	}

	closure := BuildClosure(lam, tc)

	require.Equal(t, []string{"x"}, closure.CaptureNames)
	let := closure.Body.(*term.TLet)
	// parameter (was 2) now sits right after the single capture, at 2
	assert.Equal(t, 2, let.Expr.(*term.TVar).Index)
	app := let.Body.(*term.TApp)
	assert.Equal(t, 1, app.Fn.(*term.TVar).Index)  // capture, unchanged rank
	assert.Equal(t, 3, app.Arg.(*term.TVar).Index) // let binding, unchanged: no outer binding was dropped
}

func TestGatherUsagesWalksNestedBinders(t *testing.T) {
	body := &term.TTupleElim{
		Subject: &term.TVar{Index: 1},
		Body: &term.TRecordElim{
			Subject: &term.TVar{Index: 5},
			Body:    &term.TVar{Index: 2},
		},
	}
	used := gatherUsages(body)
	assert.Equal(t, map[int]bool{1: true, 5: true, 2: true}, used)
}

func TestRemapIndicesLeavesUnreachedNodesAlone(t *testing.T) {
	lit := &term.Lit{Value: &term.Star{}}
	out := remapIndices(lit, map[int]int{})
	assert.Same(t, lit, out)
}
