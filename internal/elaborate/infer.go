package elaborate

import (
	"fmt"

	"github.com/corelang/corec/internal/diag"
	"github.com/corelang/corec/internal/eval"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
)

// Infer is the exported entry point for synthesising a type for t under tc
// (spec §4.E). Recursive sub-elaboration inside the switch below always
// goes through the unexported, memoised infer so every subterm participates
// in the (term, context) memo (spec §4.C). The solver queue is drained on
// the way out, so every obligation the elaboration emitted has had its
// head check run before the caller sees a success.
func (e *Elaborator) Infer(t term.Inferrable, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	typ, usages, typed, err := e.infer(t, tc)
	if err != nil {
		return nil, nil, nil, err
	}
	if _, derr := e.St.Drain(); derr != nil {
		return nil, nil, nil, derr
	}
	return typ, usages, typed, nil
}

func (e *Elaborator) infer(t term.Inferrable, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	key := inferKey{term: t, tc: tc}
	if cached, ok := e.inferMemo.Get(key); ok {
		return cached.typ, cached.usages, cached.typed, cached.err
	}
	typ, usages, typed, err := e.inferSwitch(t, tc)
	e.inferMemo.Set(key, &inferResult{ok: err == nil, typ: typ, usages: usages, typed: typed, err: err})
	return typ, usages, typed, err
}

func (e *Elaborator) inferSwitch(t term.Inferrable, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	switch node := t.(type) {

	case *term.Var:
		if node.Index < 1 || node.Index > tc.Len() {
			return nil, nil, nil, fatalIndexOutOfRange(node.Index, tc.Len())
		}
		debug := tc.RT.GetDebug(node.Index)
		if node.At.Text != "" && !node.At.Equal(debug) {
			return nil, nil, nil, diag.NewFatal(diag.CSTDebugMismatch, "var[%d]: term debug %q disagrees with context debug %q", node.Index, node.At.Text, debug.Text)
		}
		usages := newUsages(tc.Len())
		usages[node.Index] = 1
		return tc.GetType(node.Index), usages, &term.TVar{Base: node.Base, Index: node.Index}, nil

	case *term.AnnotatedLambda:
		return e.inferAnnotatedLambda(node, tc)

	case *term.IPi:
		return e.inferPi(node, tc)

	case *term.App:
		return e.inferApp(node, tc)

	case *term.TupleCons:
		return e.inferTupleCons(node, tc)

	case *term.TupleElim:
		return e.inferTupleElim(node, tc)

	case *term.TupleType:
		_, _, mvVal := e.freshMeta()
		usages, typedDesc, err := e.check(node.Desc, tc, mvVal)
		if err != nil {
			return nil, nil, nil, err
		}
		return mvVal, usages, &term.TTupleType{Base: node.Base, Desc: typedDesc}, nil

	case *term.RecordCons:
		return e.inferRecordCons(node, tc)

	case *term.RecordElim:
		return e.inferRecordElim(node, tc)

	case *term.EnumCons:
		_, _, mvVal := e.freshMeta()
		usages, typedPayload, err := e.check(node.Payload, tc, mvVal)
		if err != nil {
			return nil, nil, nil, err
		}
		desc := &term.EnumDescType{Base: node.Base, VariantNames: []string{node.Variant}, VariantTypes: []term.Flex{mvVal}}
		typ := &term.EnumTypeV{Base: node.Base, Desc: desc}
		return typ, usages, &term.TEnumCons{Base: node.Base, Variant: node.Variant, Payload: typedPayload}, nil

	case *term.EnumCase:
		return e.inferEnumCase(node, tc)

	case *term.EnumType:
		_, _, mvVal := e.freshMeta()
		usages := newUsages(tc.Len())
		types := make([]term.Typed, len(node.VariantTypes))
		for i, vt := range node.VariantTypes {
			u, typedVT, err := e.check(vt, tc, mvVal)
			if err != nil {
				return nil, nil, nil, err
			}
			usages = mergeUsages(usages, u)
			types[i] = typedVT
		}
		return mvVal, usages, &term.TEnumType{Base: node.Base, VariantNames: node.VariantNames, VariantTypes: types}, nil

	case *term.HostIntrinsic:
		return e.inferHostIntrinsic(node, tc)

	case *term.IHostFunctionType:
		usages := newUsages(tc.Len())
		params := make([]term.Typed, len(node.Params))
		for i, p := range node.Params {
			_, u, typedP, err := e.infer(p, tc)
			if err != nil {
				return nil, nil, nil, err
			}
			usages = mergeUsages(usages, u)
			params[i] = typedP
		}
		_, uR, typedResult, err := e.infer(node.Result, tc)
		if err != nil {
			return nil, nil, nil, err
		}
		usages = mergeUsages(usages, uR)
		return &term.Star{Base: node.Base}, usages, &term.THostFunctionType{Base: node.Base, Params: params, Result: typedResult}, nil

	case *term.LevelOp:
		return e.inferLevelOp(node, tc)

	case *term.Let:
		exprTyp, usagesE, typedExpr, err := e.infer(node.Expr, tc)
		if err != nil {
			return nil, nil, nil, err
		}
		exprVal, err := e.evaluate(typedExpr, tc.RT)
		if err != nil {
			return nil, nil, nil, err
		}
		tc2 := tc.Extend(exprVal, exprTyp, node.Name, node.NameDebug)
		e.St.PushBlock()
		bodyTyp, usagesB, typedBody, err := e.infer(node.Body, tc2)
		e.St.PopBlock()
		if err != nil {
			return nil, nil, nil, err
		}
		usagesB = dropAndTrim(usagesB, tc.Len()+1)
		merged := mergeUsages(usagesE, usagesB)
		return bodyTyp, merged, &term.TLet{Base: node.Base, Name: node.Name, Expr: typedExpr, Body: typedBody}, nil

	case *term.ProgramSequence:
		return e.inferProgramSequence(node, tc)

	case *term.ProgramEnd:
		valTyp, usages, typedValue, err := e.infer(node.Value, tc)
		if err != nil {
			return nil, nil, nil, err
		}
		prog := &term.ProgramTypeV{Base: node.Base, Result: valTyp, Effects: &term.EffectRow{Base: node.Base}}
		return prog, usages, &term.TProgramEnd{Base: node.Base, Value: typedValue}, nil

	case *term.ProgramType:
		resultTyp, usagesR, typedResult, err := e.infer(node.Result, tc)
		if err != nil {
			return nil, nil, nil, err
		}
		_, usagesEf, typedEffects, err := e.infer(node.Effects, tc)
		if err != nil {
			return nil, nil, nil, err
		}
		merged := mergeUsages(usagesR, usagesEf)
		return combineUniverses(resultTyp, &term.Star{Base: node.Base}), merged, &term.TProgramType{Base: node.Base, Result: typedResult, Effects: typedEffects}, nil

	case *term.If:
		usagesS, typedSubj, err := e.check(node.Subject, tc, &term.HostBoolType{})
		if err != nil {
			return nil, nil, nil, err
		}
		_, _, joinMV := e.freshMeta()
		thenTyp, usagesT, typedThen, err := e.infer(node.Then, tc)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := e.relQueue(thenTyp, tc.RT, joinMV, tc.RT, primitiveCause("then branch joins the conditional's type", node)); err != nil {
			return nil, nil, nil, err
		}
		elseTyp, usagesE, typedElse, err := e.infer(node.Else, tc)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := e.relQueue(elseTyp, tc.RT, joinMV, tc.RT, primitiveCause("else branch joins the conditional's type", node)); err != nil {
			return nil, nil, nil, err
		}
		merged := mergeUsages(mergeUsages(usagesS, usagesT), usagesE)
		return joinMV, merged, &term.HostIf{Base: node.Base, Subject: typedSubj, Then: typedThen, Else: typedElse}, nil

	case *term.Annotated:
		_, usagesT, typedType, err := e.infer(node.Type, tc)
		if err != nil {
			return nil, nil, nil, err
		}
		typeVal, err := e.evaluate(typedType, tc.RT)
		if err != nil {
			return nil, nil, nil, err
		}
		usagesE, typedExpr, err := e.check(node.Expr, tc, typeVal)
		if err != nil {
			return nil, nil, nil, err
		}
		return typeVal, mergeUsages(usagesT, usagesE), typedExpr, nil

	case *term.AlreadyTyped:
		return node.Type, newUsages(tc.Len()), node.Term, nil
	}

	return nil, nil, nil, fmt.Errorf("elaborate: unhandled inferrable %T", t)
}

// dropAndTrim removes a synthetic binding's own usage entry (spec §4.E "the
// lambda case drops the parameter's usage from the returned vector") and
// discards any further entries beyond it -- used whenever a case extends tc
// by exactly one slot for the duration of a sub-elaboration.
func dropAndTrim(u []int, index int) []int {
	u = dropUsage(u, index)
	if len(u) > index {
		u = u[:index]
	}
	return u
}

// combineUniverses approximates the join of two universe classifications
// (spec §9 "no universe polymorphism beyond the explicit star(level,depth)
// lattice"): when both sides are concrete stars the join takes the pointwise
// max, otherwise Star{0,0} is a safe, deliberately coarse default.
func combineUniverses(a, b term.Flex) term.Flex {
	sa, ok1 := a.(*term.Star)
	sb, ok2 := b.(*term.Star)
	if !ok1 || !ok2 {
		return &term.Star{}
	}
	level, depth := sa.Level, sa.Depth
	if sb.Level > level {
		level = sb.Level
	}
	if sb.Depth > depth {
		depth = sb.Depth
	}
	return &term.Star{Level: level, Depth: depth}
}

// constClosure builds a closure that ignores its argument and always
// returns v -- used wherever a tuple/record descriptor position's type does
// not itself depend on the elements bound before it (spec §4.E "later
// elements may refer to the values of earlier ones" is satisfied through
// the ambient typechecking context during elaboration, not through the
// descriptor's own NextFn/FieldFn).
func constClosure(v term.Flex) *term.Closure {
	return &term.Closure{ParamName: "_", Body: &term.Lit{Value: v}}
}

// descNextFns flattens a canonical tuple descriptor chain (outermost cons is
// the last position) into the ordered, per-position list of element-type
// closures (spec glossary "Tuple descriptor").
func descNextFns(desc term.Flex) ([]*term.Closure, error) {
	var rev []*term.Closure
	for {
		switch d := desc.(type) {
		case *term.TupleDescEmpty:
			fns := make([]*term.Closure, len(rev))
			for i, fn := range rev {
				fns[len(rev)-1-i] = fn
			}
			return fns, nil
		case *term.TupleDescCons:
			rev = append(rev, d.NextFn)
			desc = d.Prev
		default:
			return nil, fmt.Errorf("elaborate: %T is not a tuple descriptor", desc)
		}
	}
}

func (e *Elaborator) inferAnnotatedLambda(node *term.AnnotatedLambda, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	_, _, univGoal := e.freshMeta()
	usagesPT, typedParamType, err := e.check(node.ParamType, tc, univGoal)
	if err != nil {
		return nil, nil, nil, err
	}
	paramTypeVal, err := e.evaluate(typedParamType, tc.RT)
	if err != nil {
		return nil, nil, nil, err
	}

	newIndex := tc.Len() + 1
	placeholder := &term.Free{Base: term.Base{At: node.ParamDebug}, Kind: term.Placeholder, Index: newIndex, Decl: paramTypeVal}
	tc2 := tc.Extend(placeholder, paramTypeVal, node.ParamName, node.ParamDebug)

	e.St.PushBlock()
	bodyTyp, usagesB, typedBody, err := e.infer(node.Body, tc2)
	e.St.PopBlock()
	if err != nil {
		return nil, nil, nil, err
	}

	// The body's inferred type is itself a *value* (possibly mentioning the
	// parameter placeholder); quote it back into a typed term so it can be
	// closed over the same way the body was (spec §4.D, internal/elaborate
	// quote.go).
	quotedBodyTyp := e.quote(bodyTyp)
	resultTypeLam := &term.Lambda{Base: node.Base, ParamName: node.ParamName, Body: quotedBodyTyp}
	resultClosureTyped := buildClosure(resultTypeLam, tc)
	resultClosureVal, err := e.evaluate(resultClosureTyped, tc.RT)
	if err != nil {
		return nil, nil, nil, err
	}
	resultClosure, ok := resultClosureVal.(*term.Closure)
	if !ok {
		return nil, nil, nil, diag.NewFatal(diag.CSTNotAClosure, "lambda result-type closure construction did not produce a closure")
	}
	piTyp := &term.Pi{Base: node.Base, ParamName: node.ParamName, ParamType: paramTypeVal, Vis: node.Vis, Pur: node.Pur, ResultClosure: resultClosure}

	bodyLam := &term.Lambda{Base: node.Base, ParamName: node.ParamName, Body: typedBody}
	bodyClosureTyped := buildClosure(bodyLam, tc)

	usagesB = dropAndTrim(usagesB, newIndex)
	merged := mergeUsages(usagesPT, usagesB)
	return piTyp, merged, bodyClosureTyped, nil
}

func (e *Elaborator) inferPi(node *term.IPi, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	paramUniv, usagesP, typedParamType, err := e.infer(node.ParamType, tc)
	if err != nil {
		return nil, nil, nil, err
	}
	paramTypeVal, err := e.evaluate(typedParamType, tc.RT)
	if err != nil {
		return nil, nil, nil, err
	}

	newIndex := tc.Len() + 1
	placeholder := &term.Free{Base: term.Base{At: node.ParamDebug}, Kind: term.Placeholder, Index: newIndex, Decl: paramTypeVal}
	tc2 := tc.Extend(placeholder, paramTypeVal, node.ParamName, node.ParamDebug)

	e.St.PushBlock()
	resultUniv, usagesR, typedResult, err := e.infer(node.Result, tc2)
	e.St.PopBlock()
	if err != nil {
		return nil, nil, nil, err
	}
	resultTypeVal, err := e.evaluate(typedResult, tc2.RT)
	if err != nil {
		return nil, nil, nil, err
	}

	quotedResult := e.quote(resultTypeVal)
	resultTypeLam := &term.Lambda{Base: node.Base, ParamName: node.ParamName, Body: quotedResult}
	resultClosureTyped := buildClosure(resultTypeLam, tc)
	resultClosureVal, err := e.evaluate(resultClosureTyped, tc.RT)
	if err != nil {
		return nil, nil, nil, err
	}
	resultClosure, ok := resultClosureVal.(*term.Closure)
	if !ok {
		return nil, nil, nil, diag.NewFatal(diag.CSTNotAClosure, "pi result-type closure construction did not produce a closure")
	}

	piVal := &term.Pi{Base: node.Base, ParamName: node.ParamName, ParamType: paramTypeVal, Vis: node.Vis, Pur: node.Pur, ResultClosure: resultClosure}
	usagesR = dropAndTrim(usagesR, newIndex)
	merged := mergeUsages(usagesP, usagesR)
	return combineUniverses(paramUniv, resultUniv), merged, &term.Lit{Base: node.Base, Value: piVal}, nil
}

func (e *Elaborator) inferApp(node *term.App, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	fnTyp, usages, curFn, err := e.infer(node.Fn, tc)
	if err != nil {
		return nil, nil, nil, err
	}
	curTyp := fnTyp

	for {
		pi, ok := curTyp.(*term.Pi)
		if !ok {
			return nil, nil, nil, diag.NewElaborationError(diag.ELBExpectedPi, "application head %s is not a function type", curTyp)
		}
		if pi.Vis != term.Implicit {
			usagesArg, typedArg, err := e.check(node.Arg, tc, pi.ParamType)
			if err != nil {
				return nil, nil, nil, err
			}
			argVal, err := e.evaluate(typedArg, tc.RT)
			if err != nil {
				return nil, nil, nil, err
			}
			resultVal, err := e.apply(pi.ResultClosure, argVal)
			if err != nil {
				return nil, nil, nil, err
			}
			merged := mergeUsages(usages, usagesArg)
			return resultVal, merged, &term.TApp{Base: node.Base, Fn: curFn, Arg: typedArg}, nil
		}

		_, mvTerm, mvVal := e.freshMeta()
		resultVal, err := e.apply(pi.ResultClosure, mvVal)
		if err != nil {
			return nil, nil, nil, err
		}
		curFn = &term.TApp{Base: node.Base, Fn: curFn, Arg: mvTerm}
		curTyp = resultVal
	}
}

func (e *Elaborator) inferTupleCons(node *term.TupleCons, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	runningTC := tc
	usages := newUsages(tc.Len())
	typedElems := make([]term.Typed, len(node.Elements))
	mvVals := make([]term.Flex, len(node.Elements))

	for i, elem := range node.Elements {
		_, _, mvVal := e.freshMeta()
		mvVals[i] = mvVal
		u, typedElem, err := e.check(elem, runningTC, mvVal)
		if err != nil {
			return nil, nil, nil, err
		}
		usages = mergeUsages(usages, u)
		typedElems[i] = typedElem
		elemVal, err := e.evaluate(typedElem, runningTC.RT)
		if err != nil {
			return nil, nil, nil, err
		}
		runningTC = runningTC.Extend(elemVal, mvVal, fmt.Sprintf("#%d", i+1), node.Base.At)
	}
	if len(usages) > tc.Len()+1 {
		usages = usages[:tc.Len()+1]
	}

	desc := term.Flex(&term.TupleDescEmpty{Base: node.Base})
	for i := range node.Elements {
		desc = &term.TupleDescCons{Base: node.Base, Prev: desc, NextFn: constClosure(mvVals[i])}
	}
	typ := &term.TupleTypeV{Base: node.Base, Desc: desc}

	// Cross-element dependency ("later elements may refer to the values of
	// earlier ones") was already resolved through runningTC above; the
	// typed term reconstructs that same left-to-right binding via nested
	// TLet so internal/eval.Evaluate's TTupleCons (which evaluates every
	// element under one shared context) sees the same indices.
	varRefs := make([]term.Typed, len(node.Elements))
	for i := range node.Elements {
		varRefs[i] = &term.TVar{Base: node.Base, Index: tc.Len() + 1 + i}
	}
	body := term.Typed(&term.TTupleCons{Base: node.Base, Elements: varRefs})
	for i := len(node.Elements) - 1; i >= 0; i-- {
		body = &term.TLet{Base: node.Base, Name: fmt.Sprintf("#%d", i+1), Expr: typedElems[i], Body: body}
	}
	return typ, usages, body, nil
}

func (e *Elaborator) inferTupleElim(node *term.TupleElim, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	subjTyp, usagesS, typedSubj, err := e.infer(node.Subject, tc)
	if err != nil {
		return nil, nil, nil, err
	}
	subjVal, err := e.evaluate(typedSubj, tc.RT)
	if err != nil {
		return nil, nil, nil, err
	}

	n := len(node.Names)
	var elemTypes []term.Flex
	var speculationErr error

	ok, _ := e.Speculate(func() (bool, error) {
		tt, isTT := subjTyp.(*term.TupleTypeV)
		if !isTT {
			return false, fmt.Errorf("elaborate: tuple_elim subject is not a tuple_type")
		}
		fns, ferr := descNextFns(tt.Desc)
		if ferr != nil {
			return false, ferr
		}
		if len(fns) != n {
			return false, diag.NewElaborationError(diag.ELBTupleArityMismatch, "tuple_elim expects %d elements, tuple_type has %d", n, len(fns))
		}
		types := make([]term.Flex, n)
		built := make([]term.Flex, 0, n)
		for i, fn := range fns {
			ty, aerr := e.apply(fn, &term.TupleValue{Base: node.Base, Elements: append([]term.Flex(nil), built...)})
			if aerr != nil {
				return false, aerr
			}
			types[i] = ty
			elem, ierr := eval.IndexTuple(subjVal, i, node.Base)
			if ierr != nil {
				return false, ierr
			}
			built = append(built, elem)
		}
		elemTypes = types
		// Drain inside the speculation so a branch whose obligations fail
		// their head checks reverts instead of committing.
		return e.St.Drain()
	})
	if !ok {
		ok2, err2 := e.Speculate(func() (bool, error) {
			ht, isHT := subjTyp.(*term.HostTupleValue)
			if !isHT {
				return false, fmt.Errorf("elaborate: tuple_elim subject is not a host_tuple_type")
			}
			if len(ht.Elements) != n {
				return false, diag.NewElaborationError(diag.ELBTupleArityMismatch, "tuple_elim expects %d elements, host tuple has %d", n, len(ht.Elements))
			}
			elemTypes = append([]term.Flex(nil), ht.Elements...)
			return e.St.Drain()
		})
		if !ok2 {
			speculationErr = err2
		}
	}
	if elemTypes == nil {
		if speculationErr == nil {
			speculationErr = fmt.Errorf("elaborate: tuple_elim subject is neither tuple_type nor host_tuple_type")
		}
		return nil, nil, nil, speculationErr
	}

	tc2 := tc
	for i, name := range node.Names {
		elem, ierr := eval.IndexTuple(subjVal, i, node.Base)
		if ierr != nil {
			return nil, nil, nil, ierr
		}
		tc2 = tc2.Extend(elem, elemTypes[i], name, node.NameDebugs[i])
	}

	e.St.PushBlock()
	bodyTyp, usagesB, typedBody, err := e.infer(node.Body, tc2)
	e.St.PopBlock()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(usagesB) > tc.Len()+n {
		usagesB = usagesB[:tc.Len()+n]
	}
	for i := 0; i < n; i++ {
		usagesB = dropUsage(usagesB, tc.Len()+1+i)
	}
	if len(usagesB) > tc.Len()+1 {
		usagesB = usagesB[:tc.Len()+1]
	}
	merged := mergeUsages(usagesS, usagesB)
	return bodyTyp, merged, &term.TTupleElim{Base: node.Base, Names: node.Names, Subject: typedSubj, Body: typedBody}, nil
}

func (e *Elaborator) inferRecordCons(node *term.RecordCons, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	runningTC := tc
	usages := newUsages(tc.Len())
	typedFields := make([]term.Typed, len(node.Fields))
	mvVals := make([]term.Flex, len(node.Fields))

	for i, f := range node.Fields {
		_, _, mvVal := e.freshMeta()
		mvVals[i] = mvVal
		u, typedField, err := e.check(f, runningTC, mvVal)
		if err != nil {
			return nil, nil, nil, err
		}
		usages = mergeUsages(usages, u)
		typedFields[i] = typedField
		fieldVal, err := e.evaluate(typedField, runningTC.RT)
		if err != nil {
			return nil, nil, nil, err
		}
		runningTC = runningTC.Extend(fieldVal, mvVal, node.FieldNames[i], node.Base.At)
	}
	if len(usages) > tc.Len()+1 {
		usages = usages[:tc.Len()+1]
	}

	fns := make([]*term.Closure, len(node.Fields))
	for i := range node.Fields {
		fns[i] = constClosure(mvVals[i])
	}
	desc := &term.RecordDescType{Base: node.Base, FieldNames: node.FieldNames, FieldFns: fns}
	typ := &term.RecordTypeV{Base: node.Base, Desc: desc}

	varRefs := make([]term.Typed, len(node.Fields))
	for i := range node.Fields {
		varRefs[i] = &term.TVar{Base: node.Base, Index: tc.Len() + 1 + i}
	}
	body := term.Typed(&term.TRecordCons{Base: node.Base, FieldNames: node.FieldNames, Fields: varRefs})
	for i := len(node.Fields) - 1; i >= 0; i-- {
		body = &term.TLet{Base: node.Base, Name: fmt.Sprintf("#%d", i+1), Expr: typedFields[i], Body: body}
	}
	return typ, usages, body, nil
}

func (e *Elaborator) inferRecordElim(node *term.RecordElim, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	subjTyp, usagesS, typedSubj, err := e.infer(node.Subject, tc)
	if err != nil {
		return nil, nil, nil, err
	}
	rt, ok := subjTyp.(*term.RecordTypeV)
	if !ok {
		return nil, nil, nil, diag.NewElaborationError(diag.ELBExpectedRecord, "record_elim subject %s is not a record_type", subjTyp)
	}
	desc, ok := rt.Desc.(*term.RecordDescType)
	if !ok {
		return nil, nil, nil, diag.NewElaborationError(diag.ELBExpectedRecord, "record_type descriptor is not resolved")
	}
	subjVal, err := e.evaluate(typedSubj, tc.RT)
	if err != nil {
		return nil, nil, nil, err
	}

	fieldTypes := make(map[string]term.Flex, len(desc.FieldNames))
	builtNames := make([]string, 0, len(desc.FieldNames))
	builtFields := make([]term.Flex, 0, len(desc.FieldNames))
	for i, fname := range desc.FieldNames {
		partial := &term.RecordValue{Base: node.Base, FieldNames: append([]string(nil), builtNames...), Fields: append([]term.Flex(nil), builtFields...)}
		ty, err := e.apply(desc.FieldFns[i], partial)
		if err != nil {
			return nil, nil, nil, err
		}
		fieldTypes[fname] = ty
		v, err := eval.IndexRecord(subjVal, fname, node.Base)
		if err != nil {
			return nil, nil, nil, err
		}
		builtNames = append(builtNames, fname)
		builtFields = append(builtFields, v)
	}

	tc2 := tc
	for i, fname := range node.FieldNames {
		ty, known := fieldTypes[fname]
		if !known {
			return nil, nil, nil, diag.NewElaborationError(diag.ELBExpectedRecord, "record_type has no field %q", fname)
		}
		v, err := eval.IndexRecord(subjVal, fname, node.Base)
		if err != nil {
			return nil, nil, nil, err
		}
		tc2 = tc2.Extend(v, ty, fname, node.NameDebugs[i])
	}

	e.St.PushBlock()
	bodyTyp, usagesB, typedBody, err := e.infer(node.Body, tc2)
	e.St.PopBlock()
	if err != nil {
		return nil, nil, nil, err
	}
	n := len(node.FieldNames)
	if len(usagesB) > tc.Len()+n {
		usagesB = usagesB[:tc.Len()+n]
	}
	for i := 0; i < n; i++ {
		usagesB = dropUsage(usagesB, tc.Len()+1+i)
	}
	if len(usagesB) > tc.Len()+1 {
		usagesB = usagesB[:tc.Len()+1]
	}
	merged := mergeUsages(usagesS, usagesB)
	return bodyTyp, merged, &term.TRecordElim{Base: node.Base, FieldNames: node.FieldNames, Subject: typedSubj, Body: typedBody}, nil
}

func (e *Elaborator) inferEnumCase(node *term.EnumCase, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	subjTyp, usagesS, typedSubj, err := e.infer(node.Subject, tc)
	if err != nil {
		return nil, nil, nil, err
	}

	usages := usagesS
	resultTypes := make([]term.Flex, len(node.Arms))
	variantNames := make([]string, len(node.Arms))
	variantTypes := make([]term.Flex, len(node.Arms))
	arms := make([]term.TEnumArm, len(node.Arms))

	for i, arm := range node.Arms {
		_, _, payloadMV := e.freshMeta()
		newIndex := tc.Len() + 1
		placeholder := &term.Free{Base: term.Base{At: arm.ParamDebug}, Kind: term.Placeholder, Index: newIndex, Decl: payloadMV}
		tc2 := tc.Extend(placeholder, payloadMV, arm.ParamName, arm.ParamDebug)

		e.St.PushBlock()
		armTyp, armUsages, typedArmBody, err := e.infer(arm.Body, tc2)
		e.St.PopBlock()
		if err != nil {
			return nil, nil, nil, err
		}
		armUsages = dropAndTrim(armUsages, newIndex)
		usages = mergeUsages(usages, armUsages)

		resultTypes[i] = armTyp
		variantNames[i] = arm.Variant
		variantTypes[i] = payloadMV
		arms[i] = term.TEnumArm{Variant: arm.Variant, ParamName: arm.ParamName, Body: typedArmBody}
	}

	goalEnum := &term.EnumTypeV{Base: node.Base, Desc: &term.EnumDescType{Base: node.Base, VariantNames: variantNames, VariantTypes: variantTypes}}
	if err := e.relQueue(subjTyp, tc.RT, goalEnum, tc.RT, primitiveCause("enum_case subject must match its arms", node)); err != nil {
		return nil, nil, nil, err
	}

	resultUnion := &term.UnionType{Base: node.Base, Members: resultTypes}
	return resultUnion, usages, &term.TEnumCase{Base: node.Base, Subject: typedSubj, Arms: arms}, nil
}

func (e *Elaborator) inferHostIntrinsic(node *term.HostIntrinsic, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	_, usagesT, typedTypeExpr, err := e.infer(node.TypeExpr, tc)
	if err != nil {
		return nil, nil, nil, err
	}
	typeExprVal, err := e.evaluate(typedTypeExpr, tc.RT)
	if err != nil {
		return nil, nil, nil, err
	}
	usagesS, typedSource, err := e.check(node.Source, tc, &term.HostStringType{})
	if err != nil {
		return nil, nil, nil, err
	}
	srcVal, err := e.evaluate(typedSource, tc.RT)
	if err != nil {
		return nil, nil, nil, err
	}
	hv, ok := srcVal.(*term.HostValue)
	if !ok || hv.Kind != term.HostString {
		return nil, nil, nil, fmt.Errorf("elaborate: host_intrinsic source did not reduce to a string literal")
	}
	merged := mergeUsages(usagesT, usagesS)
	return typeExprVal, merged, &term.THostIntrinsic{Base: node.Base, Source: hv.Str, Type: typedTypeExpr}, nil
}

func (e *Elaborator) inferLevelOp(node *term.LevelOp, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	usages := newUsages(tc.Len())
	nums := make([]int, len(node.Args))
	for i, a := range node.Args {
		_, u, typedA, err := e.infer(a, tc)
		if err != nil {
			return nil, nil, nil, err
		}
		usages = mergeUsages(usages, u)
		val, err := e.evaluate(typedA, tc.RT)
		if err != nil {
			return nil, nil, nil, err
		}
		lv, ok := val.(*term.Level)
		if !ok {
			return nil, nil, nil, fmt.Errorf("elaborate: level operation argument %s is not a level value", val)
		}
		nums[i] = lv.N
	}

	var result int
	switch node.Op {
	case "lit":
		result = node.Lit
	case "succ":
		if len(nums) != 1 {
			return nil, nil, nil, fmt.Errorf("elaborate: level.succ takes exactly one argument")
		}
		result = nums[0] + 1
	case "max":
		for _, n := range nums {
			if n > result {
				result = n
			}
		}
	default:
		return nil, nil, nil, fmt.Errorf("elaborate: unknown level operation %q", node.Op)
	}

	lv := &term.Level{Base: node.Base, N: result}
	return &term.Prop{Base: node.Base}, usages, &term.Lit{Base: node.Base, Value: lv}, nil
}

func (e *Elaborator) inferProgramSequence(node *term.ProgramSequence, tc *rtctx.Typechecking) (term.Flex, []int, term.Typed, error) {
	firstTyp, usagesF, typedFirst, err := e.infer(node.First, tc)
	if err != nil {
		return nil, nil, nil, err
	}
	pt, ok := firstTyp.(*term.ProgramTypeV)
	if !ok {
		return nil, nil, nil, diag.NewElaborationError(diag.ELBExpectedPi, "program_sequence: first step %s is not a program_type", firstTyp)
	}

	newIndex := tc.Len() + 1
	placeholder := &term.Free{Base: term.Base{At: node.NameDebug}, Kind: term.Placeholder, Index: newIndex, Decl: pt.Result}
	tc2 := tc.Extend(placeholder, pt.Result, node.Name, node.NameDebug)

	e.St.PushBlock()
	thenTyp, usagesT, typedThen, err := e.infer(node.Then, tc2)
	e.St.PopBlock()
	if err != nil {
		return nil, nil, nil, err
	}
	thenProg, ok := thenTyp.(*term.ProgramTypeV)
	if !ok {
		return nil, nil, nil, diag.NewElaborationError(diag.ELBExpectedPi, "program_sequence: continuation %s is not a program_type", thenTyp)
	}

	if err := e.relQueue(pt.Effects, tc.RT, thenProg.Effects, tc2.RT, primitiveCause("program_sequence effect accumulation", node)); err != nil {
		return nil, nil, nil, err
	}

	usagesT = dropAndTrim(usagesT, newIndex)
	merged := mergeUsages(usagesF, usagesT)
	resultProg := &term.ProgramTypeV{Base: node.Base, Result: thenProg.Result, Effects: thenProg.Effects}
	return resultProg, merged, &term.TProgramSequence{Base: node.Base, First: typedFirst, Name: node.Name, NameDebug: node.NameDebug, Then: typedThen}, nil
}
