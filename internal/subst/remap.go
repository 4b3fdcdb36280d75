package subst

import "github.com/corelang/corec/internal/term"

// remapIndices rebuilds t with every TVar.Index rewritten through remap
// (spec §4.D step 4, "substitute_inner"). remap must have an entry for
// every index actually reachable in t -- gatherUsages guarantees this by
// construction, since BuildClosure derives remap from the same walk.
func remapIndices(t term.Typed, remap map[int]int) term.Typed {
	if t == nil {
		return nil
	}
	switch t := t.(type) {
	case *term.TVar:
		return &term.TVar{Base: t.Base, Index: remap[t.Index]}
	case *term.TApp:
		return &term.TApp{Base: t.Base, Fn: remapIndices(t.Fn, remap), Arg: remapIndices(t.Arg, remap)}
	case *term.TLet:
		return &term.TLet{Base: t.Base, Name: t.Name, Expr: remapIndices(t.Expr, remap), Body: remapIndices(t.Body, remap)}
	case *term.Lambda:
		return &term.Lambda{Base: t.Base, ParamName: t.ParamName, Body: remapIndices(t.Body, remap)}
	case *term.LambdaExplicitCapture:
		return &term.LambdaExplicitCapture{
			Base: t.Base, ParamName: t.ParamName, ParamDebug: t.ParamDebug,
			CaptureExpr: remapIndices(t.CaptureExpr, remap), CaptureNames: t.CaptureNames, CaptureDebugs: t.CaptureDebugs,
			Body: remapIndices(t.Body, remap),
		}
	case *term.TPi:
		return &term.TPi{
			Base: t.Base, ParamName: t.ParamName, ParamDebug: t.ParamDebug,
			ParamType: remapIndices(t.ParamType, remap), Vis: t.Vis, Pur: t.Pur,
			Result: remapIndices(t.Result, remap),
		}
	case *term.TTupleCons:
		elems := make([]term.Typed, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = remapIndices(e, remap)
		}
		return &term.TTupleCons{Base: t.Base, Elements: elems}
	case *term.TupleElementAccess:
		return &term.TupleElementAccess{Base: t.Base, Subject: remapIndices(t.Subject, remap), Index: t.Index}
	case *term.TTupleElim:
		return &term.TTupleElim{Base: t.Base, Names: t.Names, Subject: remapIndices(t.Subject, remap), Body: remapIndices(t.Body, remap)}
	case *term.TTupleType:
		return &term.TTupleType{Base: t.Base, Desc: remapIndices(t.Desc, remap)}
	case *term.TRecordCons:
		fields := make([]term.Typed, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = remapIndices(f, remap)
		}
		return &term.TRecordCons{Base: t.Base, FieldNames: t.FieldNames, Fields: fields}
	case *term.RecordFieldAccessT:
		return &term.RecordFieldAccessT{Base: t.Base, Subject: remapIndices(t.Subject, remap), Field: t.Field}
	case *term.TRecordElim:
		return &term.TRecordElim{Base: t.Base, FieldNames: t.FieldNames, Subject: remapIndices(t.Subject, remap), Body: remapIndices(t.Body, remap)}
	case *term.TEnumCons:
		return &term.TEnumCons{Base: t.Base, Variant: t.Variant, Payload: remapIndices(t.Payload, remap)}
	case *term.TEnumCase:
		arms := make([]term.TEnumArm, len(t.Arms))
		for i, a := range t.Arms {
			arms[i] = term.TEnumArm{Variant: a.Variant, ParamName: a.ParamName, Body: remapIndices(a.Body, remap)}
		}
		return &term.TEnumCase{Base: t.Base, Subject: remapIndices(t.Subject, remap), Arms: arms}
	case *term.EnumAbsurd:
		return &term.EnumAbsurd{Base: t.Base, Subject: remapIndices(t.Subject, remap)}
	case *term.TEnumType:
		types := make([]term.Typed, len(t.VariantTypes))
		for i, vt := range t.VariantTypes {
			types[i] = remapIndices(vt, remap)
		}
		return &term.TEnumType{Base: t.Base, VariantNames: t.VariantNames, VariantTypes: types}
	case *term.HostWrap:
		return &term.HostWrap{Base: t.Base, Inner: remapIndices(t.Inner, remap)}
	case *term.HostUnwrap:
		return &term.HostUnwrap{Base: t.Base, Inner: remapIndices(t.Inner, remap)}
	case *term.HostIntFold:
		return &term.HostIntFold{Base: t.Base, Count: remapIndices(t.Count, remap), Acc: remapIndices(t.Acc, remap), Fun: remapIndices(t.Fun, remap)}
	case *term.HostIf:
		return &term.HostIf{Base: t.Base, Subject: remapIndices(t.Subject, remap), Then: remapIndices(t.Then, remap), Else: remapIndices(t.Else, remap)}
	case *term.THostIntrinsic:
		return &term.THostIntrinsic{Base: t.Base, Source: t.Source, Type: remapIndices(t.Type, remap)}
	case *term.THostFunctionType:
		params := make([]term.Typed, len(t.Params))
		for i, p := range t.Params {
			params[i] = remapIndices(p, remap)
		}
		return &term.THostFunctionType{Base: t.Base, Params: params, Result: remapIndices(t.Result, remap)}
	case *term.TProgramSequence:
		return &term.TProgramSequence{Base: t.Base, First: remapIndices(t.First, remap), Name: t.Name, NameDebug: t.NameDebug, Then: remapIndices(t.Then, remap)}
	case *term.TProgramEnd:
		return &term.TProgramEnd{Base: t.Base, Value: remapIndices(t.Value, remap)}
	case *term.TProgramType:
		return &term.TProgramType{Base: t.Base, Result: remapIndices(t.Result, remap), Effects: remapIndices(t.Effects, remap)}
	case *term.Lit:
		return t
	case *term.MetaRef:
		return t
	case *term.UniqueTok:
		return t
	case *term.TSingleton:
		return &term.TSingleton{Base: t.Base, Super: remapIndices(t.Super, remap), Witness: remapIndices(t.Witness, remap)}
	case *term.TUnionType:
		members := make([]term.Typed, len(t.Members))
		for i, m := range t.Members {
			members[i] = remapIndices(m, remap)
		}
		return &term.TUnionType{Base: t.Base, Members: members}
	case *term.TIntersectionType:
		members := make([]term.Typed, len(t.Members))
		for i, m := range t.Members {
			members[i] = remapIndices(m, remap)
		}
		return &term.TIntersectionType{Base: t.Base, Members: members}
	case *term.ConstrainedType:
		return t
	default:
		panic("subst: remapIndices: unhandled typed term")
	}
}
