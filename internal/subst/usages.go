package subst

import "github.com/corelang/corec/internal/term"

// gatherUsages collects every context index referenced anywhere in t (spec
// §4.D step 1, "gather_usages"). Indices in this term algebra are absolute
// positions in the defining rtctx.Runtime (de Bruijn levels, not distances),
// so a nested binder's own bindings simply continue numbering upward --
// walking into a nested Lambda/TLet/TTupleElim/etc. body never needs to
// track depth or shift anything, it only needs to keep recursing.
func gatherUsages(t term.Typed) map[int]bool {
	out := make(map[int]bool)
	walk(t, out)
	return out
}

func walk(t term.Typed, out map[int]bool) {
	if t == nil {
		return
	}
	switch t := t.(type) {
	case *term.TVar:
		out[t.Index] = true
	case *term.TApp:
		walk(t.Fn, out)
		walk(t.Arg, out)
	case *term.TLet:
		walk(t.Expr, out)
		walk(t.Body, out)
	case *term.Lambda:
		walk(t.Body, out)
	case *term.LambdaExplicitCapture:
		walk(t.CaptureExpr, out)
		walk(t.Body, out)
	case *term.TPi:
		walk(t.ParamType, out)
		walk(t.Result, out)
	case *term.TTupleCons:
		for _, e := range t.Elements {
			walk(e, out)
		}
	case *term.TupleElementAccess:
		walk(t.Subject, out)
	case *term.TTupleElim:
		walk(t.Subject, out)
		walk(t.Body, out)
	case *term.TTupleType:
		walk(t.Desc, out)
	case *term.TRecordCons:
		for _, f := range t.Fields {
			walk(f, out)
		}
	case *term.RecordFieldAccessT:
		walk(t.Subject, out)
	case *term.TRecordElim:
		walk(t.Subject, out)
		walk(t.Body, out)
	case *term.TEnumCons:
		walk(t.Payload, out)
	case *term.TEnumCase:
		walk(t.Subject, out)
		for _, arm := range t.Arms {
			walk(arm.Body, out)
		}
	case *term.EnumAbsurd:
		walk(t.Subject, out)
	case *term.TEnumType:
		for _, vt := range t.VariantTypes {
			walk(vt, out)
		}
	case *term.HostWrap:
		walk(t.Inner, out)
	case *term.HostUnwrap:
		walk(t.Inner, out)
	case *term.HostIntFold:
		walk(t.Count, out)
		walk(t.Acc, out)
		walk(t.Fun, out)
	case *term.HostIf:
		walk(t.Subject, out)
		walk(t.Then, out)
		walk(t.Else, out)
	case *term.THostIntrinsic:
		walk(t.Type, out)
	case *term.THostFunctionType:
		for _, p := range t.Params {
			walk(p, out)
		}
		walk(t.Result, out)
	case *term.TProgramSequence:
		walk(t.First, out)
		walk(t.Then, out)
	case *term.TProgramEnd:
		walk(t.Value, out)
	case *term.TProgramType:
		walk(t.Result, out)
		walk(t.Effects, out)
	case *term.Lit, *term.MetaRef, *term.UniqueTok:
		// no context references
	case *term.TSingleton:
		walk(t.Super, out)
		walk(t.Witness, out)
	case *term.TUnionType:
		for _, m := range t.Members {
			walk(m, out)
		}
	case *term.TIntersectionType:
		for _, m := range t.Members {
			walk(m, out)
		}
	case *term.ConstrainedType:
		// a ConstrainedType's Elems reference solver-side Flex values, not
		// Typed context indices; nothing to gather here.
	default:
		panic("subst: gatherUsages: unhandled typed term")
	}
}
