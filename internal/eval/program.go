package eval

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/span"
	"github.com/corelang/corec/internal/term"
)

// continuation is the suspended remainder of a program_sequence: the typed
// Then term, the name/debug the bound result is given, and the context it
// closes over. term.ObjectElim cannot hold these directly (internal/term
// must not import internal/rtctx, spec §3.2 layering), so it carries an
// opaque BodyRef into this registry instead.
type continuation struct {
	Then  term.Typed
	Name  string
	Debug span.Name
	Ctx   *rtctx.Runtime
}

var (
	continuations sync.Map // int -> continuation
	nextBodyRef   int64
)

func registerContinuation(then term.Typed, name string, debug span.Name, ctx *rtctx.Runtime) int {
	ref := int(atomic.AddInt64(&nextBodyRef, 1))
	continuations.Store(ref, continuation{Then: then, Name: name, Debug: debug, Ctx: ctx})
	return ref
}

// Resume continues a suspended program_sequence (spec §4.E "ProgramSequence")
// once its first step's effect has produced result: it looks up the
// continuation stashed by BodyRef and evaluates Then with result bound
// under Name, exactly where the original program_sequence left off.
func Resume(ref int, result term.Flex, sl Slicer) (term.Flex, error) {
	v, ok := continuations.Load(ref)
	if !ok {
		return nil, fmt.Errorf("eval: program continuation %d not found", ref)
	}
	k := v.(continuation)
	return Evaluate(k.Then, k.Ctx.Append(result, k.Name, k.Debug), sl)
}
