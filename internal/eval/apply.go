package eval

import (
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
)

// Apply reduces fn applied to arg (spec §4.D "apply_value"): a Closure is
// run by rebuilding its context purely from its captures (spec §3.2
// isolation), an OperativeValue delegates to its Go callback, and anything
// else (a Free, a Pi used as a proof object, another stuck Application)
// builds a stuck term.Application for the solver to observe.
func Apply(fn, arg term.Flex, sl Slicer) (term.Flex, error) {
	switch fn := fn.(type) {
	case *term.Closure:
		bodyCtx := closureContext(fn).Append(arg, fn.ParamName, fn.ParamDebug)
		return Evaluate(fn.Body, bodyCtx, sl)
	case *term.OperativeValue:
		return fn.Call(operativeCtx{sl: sl}, arg)
	default:
		return &term.Application{Fn: fn, Arg: arg}, nil
	}
}

// operativeCtx lets an OperativeValue call back into Apply without the term
// package depending on this one (term.OperativeCallCtx, spec §1). Operatives
// are host-opaque macro transformers, not Core lambdas, so they are not
// expected to evaluate a constrained_type directly; sl is threaded through
// only so a re-entrant Apply on a Closure captured by the operative still
// has one available.
type operativeCtx struct{ sl Slicer }

func (o operativeCtx) Apply(fn, arg term.Flex) (term.Flex, error) { return Apply(fn, arg, o.sl) }

// closureContext rebuilds a Runtime purely from a Closure's captured values
// and debug names (spec §3.2, §4.D): the call site's own context is never
// consulted, which is exactly what guarantees closure isolation.
func closureContext(c *term.Closure) *rtctx.Runtime {
	names := make([]string, len(c.Capture))
	for i, d := range c.CaptureDebug {
		names[i] = d.Text
	}
	return rtctx.FromCaptures(c.Capture, names, c.CaptureDebug)
}

// IndexTuple projects element i (0-based) out of v, building a stuck
// StuckTupleElementAccess when v has not reduced to a concrete TupleValue.
func IndexTuple(v term.Flex, i int, base term.Base) (term.Flex, error) {
	if tv, ok := v.(*term.TupleValue); ok {
		if i < 0 || i >= len(tv.Elements) {
			panic("eval: tuple index out of range -- broken invariant upstream")
		}
		return tv.Elements[i], nil
	}
	return &term.StuckTupleElementAccess{Base: base, Subject: v, Index: i}, nil
}

// IndexRecord projects field out of v, building a stuck
// StuckRecordFieldAccess when v has not reduced to a concrete RecordValue.
func IndexRecord(v term.Flex, field string, base term.Base) (term.Flex, error) {
	if rv, ok := v.(*term.RecordValue); ok {
		for i, n := range rv.FieldNames {
			if n == field {
				return rv.Fields[i], nil
			}
		}
		panic("eval: record field " + field + " not found -- broken invariant upstream")
	}
	return &term.StuckRecordFieldAccess{Base: base, Subject: v, Field: field}, nil
}
