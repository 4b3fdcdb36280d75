package elaborate

import (
	"github.com/corelang/corec/internal/solver"
	"github.com/corelang/corec/internal/term"
)

// quote rebuilds a Typed term from an already-evaluated Flex value (spec
// §4.D's substitute_inner, applied to values rather than syntax): every
// Free placeholder becomes a TVar at the same absolute index, every
// MetaStuck becomes either a direct MetaRef (still within the scope it was
// minted in) or a constrained_type via internal/solver.SliceConstraintsFor
// (escaping the current block, spec §4.G). This is how the result type of
// an annotated_lambda -- itself a value computed by inferring the body --
// is turned back into the closure that internal/subst.BuildClosure expects.
//
// A pi quotes structurally into a TPi whose result is the quoted closure,
// so a dependent result type mentioning the variable being closed over is
// rebuilt with a TVar there and substitutes correctly when the enclosing
// closure is later applied. Tuple/record descriptors, whose closures arise
// only from constClosure and are therefore context-free, stay embedded via
// Lit.
func (e *Elaborator) quote(v term.Flex) term.Typed {
	switch v := v.(type) {
	case *term.Free:
		if v.Kind == term.Unique {
			return &term.UniqueTok{Base: v.Base, Token: v.Token}
		}
		return &term.TVar{Base: v.Base, Index: v.Index}

	case *term.MetaStuck:
		if v.MV.BlockLevel > e.St.BlockLevel() {
			sliced := solver.SliceConstraintsFor(e.St, v.MV)
			sliced.Base = v.Base
			return sliced
		}
		return &term.MetaRef{Base: v.Base, MV: v.MV}

	case *term.Pi:
		return &term.TPi{
			Base: v.Base, ParamName: v.ParamName,
			ParamType: e.quote(v.ParamType), Vis: v.Vis, Pur: v.Pur,
			Result: e.quoteClosure(v.ResultClosure),
		}

	case *term.Closure:
		return e.quoteClosure(v)

	case *term.Application:
		return &term.TApp{Base: v.Base, Fn: e.quote(v.Fn), Arg: e.quote(v.Arg)}

	case *term.StuckTupleElementAccess:
		return &term.TupleElementAccess{Base: v.Base, Subject: e.quote(v.Subject), Index: v.Index}

	case *term.StuckRecordFieldAccess:
		return &term.RecordFieldAccessT{Base: v.Base, Subject: e.quote(v.Subject), Field: v.Field}

	case *term.StuckHostWrap:
		return &term.HostWrap{Base: v.Base, Inner: e.quote(v.Inner)}

	case *term.StuckHostUnwrap:
		return &term.HostUnwrap{Base: v.Base, Inner: e.quote(v.Inner)}

	case *term.StuckHostIntFold:
		return &term.HostIntFold{Base: v.Base, Count: e.quote(v.Count), Acc: e.quote(v.Acc), Fun: e.quote(v.Fun)}

	case *term.StuckHostIf:
		return &term.HostIf{Base: v.Base, Subject: e.quote(v.Subject), Then: e.quote(v.Then), Else: e.quote(v.Else)}

	case *term.HostTuple:
		elems := make([]term.Typed, 0, len(v.Prefix)+1+len(v.Suffix))
		for _, h := range v.Prefix {
			elems = append(elems, &term.Lit{Base: h.Base, Value: h})
		}
		elems = append(elems, e.quote(v.Middle))
		for _, s := range v.Suffix {
			elems = append(elems, e.quote(s))
		}
		return &term.TTupleCons{Base: v.Base, Elements: elems}

	// HostApplication, ObjectElim, EnumElim, StuckHostIntrinsic have no
	// typed counterpart to rebuild into (a stuck host call, an eliminator
	// suspended on an opaque internal/eval body reference, or an intrinsic
	// whose source hasn't reduced to a string) -- embedded verbatim.
	case *term.HostApplication, *term.ObjectElim, *term.EnumElim, *term.StuckHostIntrinsic:
		return &term.Lit{Base: term.Base{At: v.Debug()}, Value: v}

	case *term.TupleValue:
		elems := make([]term.Typed, len(v.Elements))
		for i, el := range v.Elements {
			elems[i] = e.quote(el)
		}
		return &term.TTupleCons{Base: v.Base, Elements: elems}

	case *term.HostTupleValue:
		elems := make([]term.Typed, len(v.Elements))
		for i, el := range v.Elements {
			elems[i] = e.quote(el)
		}
		return &term.TTupleCons{Base: v.Base, Elements: elems}

	case *term.RecordValue:
		fields := make([]term.Typed, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = e.quote(f)
		}
		return &term.TRecordCons{Base: v.Base, FieldNames: v.FieldNames, Fields: fields}

	case *term.EnumValue:
		return &term.TEnumCons{Base: v.Base, Variant: v.Variant, Payload: e.quote(v.Payload)}
	}

	return e.quoteStructuralOrLit(v)
}

// quoteClosure rebuilds a Closure value as a LambdaExplicitCapture term:
// the captured values are quoted back into a capture-tuple expression
// (placeholders among them become TVars that re-resolve under whatever
// context the term is later evaluated in), while the body -- already in
// capture-relative numbering -- is reused verbatim.
func (e *Elaborator) quoteClosure(c *term.Closure) term.Typed {
	capElems := make([]term.Typed, len(c.Capture))
	names := make([]string, len(c.Capture))
	for i, cv := range c.Capture {
		capElems[i] = e.quote(cv)
		if i < len(c.CaptureDebug) {
			names[i] = c.CaptureDebug[i].Text
		}
	}
	return &term.LambdaExplicitCapture{
		Base:          c.Base,
		ParamName:     c.ParamName,
		ParamDebug:    c.ParamDebug,
		CaptureExpr:   &term.TTupleCons{Base: c.Base, Elements: capElems},
		CaptureNames:  names,
		CaptureDebugs: c.CaptureDebug,
		Body:          c.Body,
	}
}

// quoteStructuralOrLit handles the remaining strict formers: descriptor and
// scalar types that never hold a Closure recurse structurally (so a
// Free/MetaStuck nested inside, e.g. an enum variant's payload type, still
// gets rewritten); anything that holds a Closure (tuple_type,
// record_type) or is a genuinely opaque leaf (operative values, ranges,
// host scalars) is embedded via Lit.
func (e *Elaborator) quoteStructuralOrLit(v term.Flex) term.Typed {
	switch v := v.(type) {
	case *term.EnumDescType:
		types := make([]term.Typed, len(v.VariantTypes))
		for i, t := range v.VariantTypes {
			types[i] = e.quote(t)
		}
		return &term.TEnumType{Base: v.Base, VariantNames: v.VariantNames, VariantTypes: types}

	case *term.EnumTypeV:
		desc := e.quote(v.Desc)
		return &term.TEnumType{Base: v.Base, VariantNames: descVariantNames(desc), VariantTypes: descVariantTypes(desc)}

	case *term.UnionType:
		members := make([]term.Typed, len(v.Members))
		for i, m := range v.Members {
			members[i] = e.quote(m)
		}
		return &term.TUnionType{Base: v.Base, Members: members}

	case *term.IntersectionType:
		members := make([]term.Typed, len(v.Members))
		for i, m := range v.Members {
			members[i] = e.quote(m)
		}
		return &term.TIntersectionType{Base: v.Base, Members: members}

	case *term.Singleton:
		return &term.TSingleton{Base: v.Base, Super: e.quote(v.Super), Witness: e.quote(v.Witness)}

	case *term.HostWrappedType:
		return &term.Lit{Base: v.Base, Value: v}

	case *term.HostUserDefinedType:
		return &term.Lit{Base: v.Base, Value: v}

	default:
		return &term.Lit{Base: term.Base{At: v.Debug()}, Value: v}
	}
}

func descVariantNames(t term.Typed) []string {
	if et, ok := t.(*term.TEnumType); ok {
		return et.VariantNames
	}
	return nil
}

func descVariantTypes(t term.Typed) []term.Typed {
	if et, ok := t.(*term.TEnumType); ok {
		return et.VariantTypes
	}
	return nil
}
