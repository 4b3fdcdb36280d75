package elaborate

import (
	"fmt"

	"github.com/corelang/corec/internal/diag"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
)

// Check is the exported entry point for verifying t against goal under tc
// (spec §4.E). Like Infer, it drains the solver queue before returning.
func (e *Elaborator) Check(t term.Checkable, tc *rtctx.Typechecking, goal term.Flex) ([]int, term.Typed, error) {
	usages, typed, err := e.check(t, tc, goal)
	if err != nil {
		return nil, nil, err
	}
	if _, derr := e.St.Drain(); derr != nil {
		return nil, nil, derr
	}
	return usages, typed, nil
}

func (e *Elaborator) check(t term.Checkable, tc *rtctx.Typechecking, goal term.Flex) ([]int, term.Typed, error) {
	key := checkKey{term: t, tc: tc, goal: goal}
	if cached, ok := e.checkMemo.Get(key); ok {
		return cached.usages, cached.typed, cached.err
	}
	usages, typed, err := e.checkSwitch(t, tc, goal)
	e.checkMemo.Set(key, &checkResult{ok: err == nil, usages: usages, typed: typed, err: err})
	return usages, typed, err
}

func (e *Elaborator) checkSwitch(t term.Checkable, tc *rtctx.Typechecking, goal term.Flex) ([]int, term.Typed, error) {
	switch node := t.(type) {

	case *term.WrapInferrable:
		typ, usages, typed, err := e.infer(node.Term, tc)
		if err != nil {
			return nil, nil, err
		}
		if err := e.relQueue(typ, tc.RT, goal, tc.RT, primitiveCause("checked against goal", node)); err != nil {
			return nil, nil, err
		}
		return usages, typed, nil

	case *term.CTupleCons:
		return e.checkTupleCons(node, tc, goal)

	case *term.CHostTupleCons:
		return e.checkHostTupleCons(node, tc, goal)

	case *term.CLambda:
		return e.checkLambda(node, tc, goal)
	}

	return nil, nil, fmt.Errorf("elaborate: unhandled checkable %T", t)
}

func (e *Elaborator) checkTupleCons(node *term.CTupleCons, tc *rtctx.Typechecking, goal term.Flex) ([]int, term.Typed, error) {
	runningTC := tc
	usages := newUsages(tc.Len())
	typedElems := make([]term.Typed, len(node.Elements))
	mvVals := make([]term.Flex, len(node.Elements))

	for i, elem := range node.Elements {
		_, _, mvVal := e.freshMeta()
		mvVals[i] = mvVal
		u, typedElem, err := e.check(elem, runningTC, mvVal)
		if err != nil {
			return nil, nil, err
		}
		usages = mergeUsages(usages, u)
		typedElems[i] = typedElem
		elemVal, err := e.evaluate(typedElem, runningTC.RT)
		if err != nil {
			return nil, nil, err
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
	if err := e.relQueue(typ, tc.RT, goal, tc.RT, primitiveCause("tuple literal against goal", node)); err != nil {
		return nil, nil, err
	}

	varRefs := make([]term.Typed, len(node.Elements))
	for i := range node.Elements {
		varRefs[i] = &term.TVar{Base: node.Base, Index: tc.Len() + 1 + i}
	}
	body := term.Typed(&term.TTupleCons{Base: node.Base, Elements: varRefs})
	for i := len(node.Elements) - 1; i >= 0; i-- {
		body = &term.TLet{Base: node.Base, Name: fmt.Sprintf("#%d", i+1), Expr: typedElems[i], Body: body}
	}
	return usages, body, nil
}

// checkHostTupleCons elaborates a host tuple literal: unlike CTupleCons its
// elements are checked independently under the same outer context (host
// tuples are non-dependent), matching exactly how internal/eval.Evaluate's
// TTupleCons case evaluates every element under one shared context, so no
// TLet wrapping is required here.
func (e *Elaborator) checkHostTupleCons(node *term.CHostTupleCons, tc *rtctx.Typechecking, goal term.Flex) ([]int, term.Typed, error) {
	usages := newUsages(tc.Len())
	typedElems := make([]term.Typed, len(node.Elements))
	vals := make([]term.Flex, len(node.Elements))

	for i, elem := range node.Elements {
		_, _, mvVal := e.freshMeta()
		u, typedElem, err := e.check(elem, tc, mvVal)
		if err != nil {
			return nil, nil, err
		}
		usages = mergeUsages(usages, u)
		typedElems[i] = typedElem
		v, err := e.evaluate(typedElem, tc.RT)
		if err != nil {
			return nil, nil, err
		}
		vals[i] = v
	}

	// A host tuple's type is itself, structurally (relation/concrete.go
	// registers HeadHostTupleValue/HeadHostTupleValue under
	// structuralValueComparer): the synthesized value doubles as the type
	// flowed into the goal.
	hostVal := &term.HostTupleValue{Base: node.Base, Elements: vals}
	if err := e.relQueue(hostVal, tc.RT, goal, tc.RT, primitiveCause("host tuple literal against goal", node)); err != nil {
		return nil, nil, err
	}
	return usages, &term.TTupleCons{Base: node.Base, Elements: typedElems}, nil
}

func (e *Elaborator) checkLambda(node *term.CLambda, tc *rtctx.Typechecking, goal term.Flex) ([]int, term.Typed, error) {
	pi, ok := goal.(*term.Pi)
	if !ok {
		return nil, nil, diag.NewElaborationError(diag.ELBExpectedPi, "lambda checked against a non-pi goal %s", goal)
	}

	newIndex := tc.Len() + 1
	placeholder := &term.Free{Base: term.Base{At: node.ParamDebug}, Kind: term.Placeholder, Index: newIndex, Decl: pi.ParamType}
	tc2 := tc.Extend(placeholder, pi.ParamType, node.ParamName, node.ParamDebug)

	bodyGoal, err := e.apply(pi.ResultClosure, placeholder)
	if err != nil {
		return nil, nil, err
	}

	e.St.PushBlock()
	usagesB, typedBody, err := e.check(node.Body, tc2, bodyGoal)
	e.St.PopBlock()
	if err != nil {
		return nil, nil, err
	}

	bodyLam := &term.Lambda{Base: node.Base, ParamName: node.ParamName, Body: typedBody}
	bodyClosureTyped := buildClosure(bodyLam, tc)

	usagesB = dropAndTrim(usagesB, newIndex)
	return usagesB, bodyClosureTyped, nil
}
