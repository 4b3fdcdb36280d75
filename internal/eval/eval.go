package eval

import (
	"fmt"

	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/diag"
	"github.com/corelang/corec/internal/meta"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
)

// Slicer is the handle evaluation needs back into the constraint solver
// (internal/solver) purely to discharge a constrained_type at the moment it
// is evaluated (spec §4.G): mint a fresh metavariable and re-register each
// sliced constraint against it. Evaluate never consults the solver for any
// other reason.
type Slicer interface {
	term.QueueCtx
	Mint(blockLevel int) meta.Var
	BlockLevel() int
}

// Evaluate reduces t to a value under ctx. sl may be nil only when t is
// known not to contain a ConstrainedType (e.g. when re-evaluating a
// closure body that has already passed through elaboration and slicing);
// passing nil when a ConstrainedType is actually encountered panics.
func Evaluate(t term.Typed, ctx *rtctx.Runtime, sl Slicer) (term.Flex, error) {
	switch t := t.(type) {
	case *term.TVar:
		v, debug := ctx.Get(t.Index)
		if t.At.Text != "" && !t.At.Equal(debug) {
			panic(diag.NewFatal(diag.CSTDebugMismatch, "var[%d]: term debug %s disagrees with context debug %s", t.Index, t.At, debug))
		}
		return v, nil

	case *term.TApp:
		fn, err := Evaluate(t.Fn, ctx, sl)
		if err != nil {
			return nil, err
		}
		arg, err := Evaluate(t.Arg, ctx, sl)
		if err != nil {
			return nil, err
		}
		return Apply(fn, arg, sl)

	case *term.TLet:
		v, err := Evaluate(t.Expr, ctx, sl)
		if err != nil {
			return nil, err
		}
		return Evaluate(t.Body, ctx.Append(v, t.Name, t.At), sl)

	case *term.Lambda:
		// A bare Lambda only appears transiently inside the elaborator,
		// before internal/subst rewrites it into a LambdaExplicitCapture.
		return nil, fmt.Errorf("eval: Lambda reached evaluation without closure construction (%s)", t.ParamName)

	case *term.LambdaExplicitCapture:
		capVal, err := Evaluate(t.CaptureExpr, ctx, sl)
		if err != nil {
			return nil, err
		}
		captures, err := tupleElements(capVal, len(t.CaptureNames), t.Base)
		if err != nil {
			return nil, err
		}
		return &term.Closure{
			Base:         t.Base,
			ParamName:    t.ParamName,
			ParamDebug:   t.ParamDebug,
			Body:         t.Body,
			Capture:      captures,
			CaptureDebug: t.CaptureDebugs,
		}, nil

	case *term.TPi:
		paramType, err := Evaluate(t.ParamType, ctx, sl)
		if err != nil {
			return nil, err
		}
		resultVal, err := Evaluate(t.Result, ctx, sl)
		if err != nil {
			return nil, err
		}
		resultClosure, ok := resultVal.(*term.Closure)
		if !ok {
			panic(diag.NewFatal(diag.CSTNotAClosure, "pi result term evaluated to %T, not a closure", resultVal))
		}
		return &term.Pi{Base: t.Base, ParamName: t.ParamName, ParamType: paramType, Vis: t.Vis, Pur: t.Pur, ResultClosure: resultClosure}, nil

	case *term.TTupleCons:
		elems := make([]term.Flex, len(t.Elements))
		for i, e := range t.Elements {
			v, err := Evaluate(e, ctx, sl)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &term.TupleValue{Base: t.Base, Elements: elems}, nil

	case *term.TupleElementAccess:
		v, err := Evaluate(t.Subject, ctx, sl)
		if err != nil {
			return nil, err
		}
		return IndexTuple(v, t.Index, t.Base)

	case *term.TTupleElim:
		subj, err := Evaluate(t.Subject, ctx, sl)
		if err != nil {
			return nil, err
		}
		elems, err := tupleElements(subj, len(t.Names), t.Base)
		if err != nil {
			return nil, err
		}
		bodyCtx := ctx
		for i, name := range t.Names {
			bodyCtx = bodyCtx.Append(elems[i], name, t.At)
		}
		return Evaluate(t.Body, bodyCtx, sl)

	case *term.TTupleType:
		d, err := Evaluate(t.Desc, ctx, sl)
		if err != nil {
			return nil, err
		}
		return &term.TupleTypeV{Base: t.Base, Desc: d}, nil

	case *term.TRecordCons:
		fields := make([]term.Flex, len(t.Fields))
		for i, f := range t.Fields {
			v, err := Evaluate(f, ctx, sl)
			if err != nil {
				return nil, err
			}
			fields[i] = v
		}
		return &term.RecordValue{Base: t.Base, FieldNames: t.FieldNames, Fields: fields}, nil

	case *term.RecordFieldAccessT:
		v, err := Evaluate(t.Subject, ctx, sl)
		if err != nil {
			return nil, err
		}
		return IndexRecord(v, t.Field, t.Base)

	case *term.TRecordElim:
		subj, err := Evaluate(t.Subject, ctx, sl)
		if err != nil {
			return nil, err
		}
		bodyCtx := ctx
		for _, name := range t.FieldNames {
			v, err := IndexRecord(subj, name, t.Base)
			if err != nil {
				return nil, err
			}
			bodyCtx = bodyCtx.Append(v, name, t.At)
		}
		return Evaluate(t.Body, bodyCtx, sl)

	case *term.TEnumCons:
		v, err := Evaluate(t.Payload, ctx, sl)
		if err != nil {
			return nil, err
		}
		return &term.EnumValue{Base: t.Base, Variant: t.Variant, Payload: v}, nil

	case *term.TEnumCase:
		subj, err := Evaluate(t.Subject, ctx, sl)
		if err != nil {
			return nil, err
		}
		return evalEnumCase(subj, t, ctx, sl)

	case *term.EnumAbsurd:
		return nil, fmt.Errorf("eval: reached absurd arm evaluating %s", t.Subject)

	case *term.TEnumType:
		types := make([]term.Flex, len(t.VariantTypes))
		for i, vt := range t.VariantTypes {
			v, err := Evaluate(vt, ctx, sl)
			if err != nil {
				return nil, err
			}
			types[i] = v
		}
		return &term.EnumTypeV{Base: t.Base, Desc: &term.EnumDescType{VariantNames: t.VariantNames, VariantTypes: types}}, nil

	case *term.HostWrap:
		v, err := Evaluate(t.Inner, ctx, sl)
		if err != nil {
			return nil, err
		}
		if _, stuck := v.(term.Stuck); stuck {
			return &term.StuckHostWrap{Base: t.Base, Inner: v}, nil
		}
		return v, nil

	case *term.HostUnwrap:
		v, err := Evaluate(t.Inner, ctx, sl)
		if err != nil {
			return nil, err
		}
		if _, stuck := v.(term.Stuck); stuck {
			return &term.StuckHostUnwrap{Base: t.Base, Inner: v}, nil
		}
		return v, nil

	case *term.HostIntFold:
		return evalHostIntFold(t, ctx, sl)

	case *term.HostIf:
		return evalHostIf(t, ctx, sl)

	case *term.THostIntrinsic:
		typ, err := Evaluate(t.Type, ctx, sl)
		if err != nil {
			return nil, err
		}
		return resolveIntrinsic(t.Source, typ, t.Base)

	case *term.THostFunctionType:
		params := make([]term.Flex, len(t.Params))
		for i, p := range t.Params {
			v, err := Evaluate(p, ctx, sl)
			if err != nil {
				return nil, err
			}
			params[i] = v
		}
		result, err := Evaluate(t.Result, ctx, sl)
		if err != nil {
			return nil, err
		}
		return &term.HostFunctionType{Base: t.Base, Params: params, Result: result}, nil

	case *term.TProgramSequence:
		first, err := Evaluate(t.First, ctx, sl)
		if err != nil {
			return nil, err
		}
		ref := registerContinuation(t.Then, t.Name, t.NameDebug, ctx)
		return &term.ObjectElim{Base: t.Base, Subject: first, Names: []string{t.Name}, BodyRef: ref}, nil

	case *term.TProgramEnd:
		return Evaluate(t.Value, ctx, sl)

	case *term.TProgramType:
		result, err := Evaluate(t.Result, ctx, sl)
		if err != nil {
			return nil, err
		}
		effects, err := Evaluate(t.Effects, ctx, sl)
		if err != nil {
			return nil, err
		}
		return &term.ProgramTypeV{Base: t.Base, Result: result, Effects: effects}, nil

	case *term.Lit:
		return t.Value, nil

	case *term.MetaRef:
		return &term.MetaStuck{Base: t.Base, MV: t.MV}, nil

	case *term.UniqueTok:
		return &term.Free{Base: t.Base, Kind: term.Unique, Token: t.Token}, nil

	case *term.TSingleton:
		super, err := Evaluate(t.Super, ctx, sl)
		if err != nil {
			return nil, err
		}
		witness, err := Evaluate(t.Witness, ctx, sl)
		if err != nil {
			return nil, err
		}
		return &term.Singleton{Base: t.Base, Super: super, Witness: witness}, nil

	case *term.TUnionType:
		members := make([]term.Flex, len(t.Members))
		for i, m := range t.Members {
			v, err := Evaluate(m, ctx, sl)
			if err != nil {
				return nil, err
			}
			members[i] = v
		}
		return &term.UnionType{Base: t.Base, Members: members}, nil

	case *term.TIntersectionType:
		members := make([]term.Flex, len(t.Members))
		for i, m := range t.Members {
			v, err := Evaluate(m, ctx, sl)
			if err != nil {
				return nil, err
			}
			members[i] = v
		}
		return &term.IntersectionType{Base: t.Base, Members: members}, nil

	case *term.ConstrainedType:
		return evalConstrainedType(t, ctx, sl)

	default:
		return nil, fmt.Errorf("eval: unhandled typed term %T", t)
	}
}

func evalConstrainedType(t *term.ConstrainedType, ctx *rtctx.Runtime, sl Slicer) (term.Flex, error) {
	if sl == nil {
		panic("eval: constrained_type evaluated without a Slicer")
	}
	mv := sl.Mint(sl.BlockLevel())
	mvVal := &term.MetaStuck{Base: t.Base, MV: mv}
	for _, elem := range t.Elems {
		if err := registerSlicedElem(sl, ctx, mvVal, elem); err != nil {
			return nil, err
		}
	}
	return mvVal, nil
}

func registerSlicedElem(sl Slicer, ctx *rtctx.Runtime, mv term.Flex, elem term.ConstraintElem) error {
	why := cause.Lost{Inner: elem.Why}
	switch elem.Kind {
	case term.SlicedConstrain:
		return sl.Queue(mv, ctx, elem.Other, ctx, elem.Rel, why)
	case term.ConstrainSliced:
		return sl.Queue(elem.Other, ctx, mv, ctx, elem.Rel, why)
	case term.SlicedLeftCall:
		return sl.QueueLeftCall(mv, elem.Arg, elem.Rel, elem.Other, ctx, why)
	case term.LeftCallSliced:
		return sl.QueueLeftCall(elem.Other, elem.Arg, elem.Rel, mv, ctx, why)
	case term.SlicedRightCall:
		return sl.QueueRightCall(mv, elem.Rel, elem.Other, elem.Arg, ctx, why)
	case term.RightCallSliced:
		return sl.QueueRightCall(elem.Other, elem.Rel, mv, elem.Arg, ctx, why)
	default:
		return fmt.Errorf("eval: unknown constraint element kind %d", elem.Kind)
	}
}

func evalHostIntFold(t *term.HostIntFold, ctx *rtctx.Runtime, sl Slicer) (term.Flex, error) {
	count, err := Evaluate(t.Count, ctx, sl)
	if err != nil {
		return nil, err
	}
	acc, err := Evaluate(t.Acc, ctx, sl)
	if err != nil {
		return nil, err
	}
	fun, err := Evaluate(t.Fun, ctx, sl)
	if err != nil {
		return nil, err
	}
	n, ok := count.(*term.HostValue)
	if !ok || n.Kind != term.HostNumber {
		return &term.StuckHostIntFold{Base: t.Base, Count: count, Acc: acc, Fun: fun}, nil
	}
	for i := int(n.Num); i > 0; i-- {
		next, err := Apply(fun, acc, sl)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

func evalHostIf(t *term.HostIf, ctx *rtctx.Runtime, sl Slicer) (term.Flex, error) {
	subj, err := Evaluate(t.Subject, ctx, sl)
	if err != nil {
		return nil, err
	}
	then, err := Evaluate(t.Then, ctx, sl)
	if err != nil {
		return nil, err
	}
	els, err := Evaluate(t.Else, ctx, sl)
	if err != nil {
		return nil, err
	}
	b, ok := subj.(*term.HostValue)
	if !ok || b.Kind != term.HostBool {
		return &term.StuckHostIf{Base: t.Base, Subject: subj, Then: then, Else: els}, nil
	}
	if b.Bool {
		return then, nil
	}
	return els, nil
}

func evalEnumCase(subj term.Flex, t *term.TEnumCase, ctx *rtctx.Runtime, sl Slicer) (term.Flex, error) {
	ev, ok := subj.(*term.EnumValue)
	if !ok {
		names := make([]string, len(t.Arms))
		for i, a := range t.Arms {
			names[i] = a.Variant
		}
		return &term.EnumElim{Base: t.Base, Subject: subj, Arms: names}, nil
	}
	for _, arm := range t.Arms {
		if arm.Variant == ev.Variant {
			return Evaluate(arm.Body, ctx.Append(ev.Payload, arm.ParamName, t.At), sl)
		}
	}
	return nil, fmt.Errorf("eval: no arm for variant %q", ev.Variant)
}

func tupleElements(v term.Flex, n int, base term.Base) ([]term.Flex, error) {
	tv, ok := v.(*term.TupleValue)
	if !ok {
		out := make([]term.Flex, n)
		for i := range out {
			elem, err := IndexTuple(v, i, base)
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	}
	if len(tv.Elements) != n {
		return nil, fmt.Errorf("eval: tuple-elim expects %d elements, subject has %d", n, len(tv.Elements))
	}
	return tv.Elements, nil
}
