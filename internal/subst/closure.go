package subst

import (
	"sort"

	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/span"
	"github.com/corelang/corec/internal/term"
)

// BuildClosure performs closure construction (spec §4.D) for a Lambda
// elaborated under tc: it finds every outer binding the body actually
// reads, builds the tuple expression that gathers them in the defining
// context, and rewrites the body to address that tuple plus the parameter
// instead of the whole ambient context.
//
// Steps, named after the spec's procedures:
//  1. gather_usages -- collect every index the body references.
//  2. keep only indices <= tc.Len(), the ones that belong to the defining
//     context rather than to the parameter itself or a binder introduced
//     further inside the body.
//  3. build the capture tuple expression and the remap from old absolute
//     index to new position: captures first (sorted ascending), then the
//     parameter, then anything deeper shifted down by the number of
//     defining-context indices that were dropped.
//  4. substitute_inner -- rewrite the body through that remap.
func BuildClosure(lam *term.Lambda, tc *rtctx.Typechecking) *term.LambdaExplicitCapture {
	definingLen := tc.Len()
	paramIndex := definingLen + 1
	used := gatherUsages(lam.Body)

	var captured []int
	for idx := range used {
		if idx >= 1 && idx <= definingLen {
			captured = append(captured, idx)
		}
	}
	sort.Ints(captured)

	captureExpr := make([]term.Typed, len(captured))
	names := make([]string, len(captured))
	debugs := make([]span.Name, len(captured))
	remap := make(map[int]int, len(used))
	for pos, idx := range captured {
		debug := tc.RT.GetDebug(idx)
		captureExpr[pos] = &term.TVar{Base: term.Base{At: debug}, Index: idx}
		names[pos] = debug.Text
		debugs[pos] = debug
		remap[idx] = pos + 1
	}

	paramPos := len(captured) + 1
	remap[paramIndex] = paramPos
	dropped := definingLen - len(captured)
	for idx := range used {
		if idx > paramIndex {
			remap[idx] = idx - dropped
		}
	}

	return &term.LambdaExplicitCapture{
		Base:          lam.Base,
		ParamName:     lam.ParamName,
		ParamDebug:    lam.Base.At,
		CaptureExpr:   &term.TTupleCons{Elements: captureExpr},
		CaptureNames:  names,
		CaptureDebugs: debugs,
		Body:          remapIndices(lam.Body, remap),
	}
}
