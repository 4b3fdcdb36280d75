package effects

import (
	"fmt"

	"github.com/corelang/corec/internal/eval"
	"github.com/corelang/corec/internal/solver"
	"github.com/corelang/corec/internal/term"
)

// Request is the canonical shape of one effect invocation inside a
// program: which effect, which of its operations, and the operation's
// argument. The surface layer (an operative, a host intrinsic) builds
// these; the core only routes them.
type Request struct {
	Effect string
	Op     string
	Arg    term.Flex
}

// PerformValue spells a Request as a value the evaluator can thread
// through a program_sequence: an enum value tagged with the effect name
// whose payload is host_tuple(op, arg).
func PerformValue(effect, op string, arg term.Flex) term.Flex {
	return &term.EnumValue{
		Variant: effect,
		Payload: &term.HostTupleValue{Elements: []term.Flex{
			&term.HostValue{Kind: term.HostString, Str: op},
			arg,
		}},
	}
}

func asRequest(v term.Flex) (Request, bool) {
	ev, ok := v.(*term.EnumValue)
	if !ok {
		return Request{}, false
	}
	ht, ok := ev.Payload.(*term.HostTupleValue)
	if !ok || len(ht.Elements) != 2 {
		return Request{}, false
	}
	op, ok := ht.Elements[0].(*term.HostValue)
	if !ok || op.Kind != term.HostString {
		return Request{}, false
	}
	return Request{Effect: ev.Variant, Op: op.Str, Arg: ht.Elements[1]}, true
}

// ExecuteProgram drives a suspended program value to completion (spec §4.C
// "execute_program"): each program_sequence step left suspended by the
// evaluator is inspected -- an effect Request is dispatched through the
// handler registered on st (gated by grant), a pure first step binds its
// own value -- and the step's continuation is resumed with the outcome via
// eval.Resume (spec's "invoke_continuation"). The loop ends when the value
// is no longer a suspended step.
func ExecuteProgram(st *solver.State, grant Grant, v term.Flex) (term.Flex, error) {
	for {
		oe, ok := v.(*term.ObjectElim)
		if !ok {
			return v, nil
		}
		result := oe.Subject
		if req, isReq := asRequest(oe.Subject); isReq {
			out, err := Invoke(st, grant, req.Effect, req.Op, req.Arg)
			if err != nil {
				return nil, err
			}
			result = out
		}
		next, err := eval.Resume(oe.BodyRef, result, st)
		if err != nil {
			return nil, fmt.Errorf("effects: resuming program continuation: %w", err)
		}
		v = next
	}
}
