package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelang/corec/internal/eval"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/solver"
	"github.com/corelang/corec/internal/term"
)

func num(n float64) *term.HostValue { return &term.HostValue{Kind: term.HostNumber, Num: n} }

func TestExecuteProgramDispatchesHandlerOnce(t *testing.T) {
	st := solver.New()
	calls := 0
	var seenOp string
	var seenArg term.Flex
	st.RegisterEffectHandler("Host", func(op string, arg term.Flex) (term.Flex, error) {
		calls++
		seenOp = op
		seenArg = arg
		return num(42), nil
	})

	// invoke Host.call(7) >>= \r. r
	prog := &term.TProgramSequence{
		First: &term.Lit{Value: PerformValue("Host", "call", num(7))},
		Name:  "r",
		Then:  &term.TVar{Index: 1},
	}
	suspended, err := eval.Evaluate(prog, rtctx.Empty, st)
	require.NoError(t, err)

	got, err := ExecuteProgram(st, NewGrant("Host"), suspended)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "the handler runs exactly once")
	assert.Equal(t, "call", seenOp)
	assert.True(t, term.Equal(seenArg, num(7)))
	assert.True(t, term.Equal(got, num(42)), "the handler's return value threads into the continuation")
}

func TestExecuteProgramThreadsPureSteps(t *testing.T) {
	st := solver.New()

	// 5 >>= \x. x: no effect request anywhere, the first step's own value
	// binds straight through.
	prog := &term.TProgramSequence{
		First: &term.Lit{Value: num(5)},
		Name:  "x",
		Then:  &term.TVar{Index: 1},
	}
	suspended, err := eval.Evaluate(prog, rtctx.Empty, st)
	require.NoError(t, err)

	got, err := ExecuteProgram(st, nil, suspended)
	require.NoError(t, err)
	assert.True(t, term.Equal(got, num(5)))
}

func TestExecuteProgramDeniesUngrantedEffect(t *testing.T) {
	st := solver.New()
	st.RegisterEffectHandler("Net", func(op string, arg term.Flex) (term.Flex, error) {
		t.Fatal("handler must not run without a grant")
		return nil, nil
	})

	prog := &term.TProgramSequence{
		First: &term.Lit{Value: PerformValue("Net", "get", &term.HostValue{Kind: term.HostString, Str: "http://example.com"})},
		Name:  "r",
		Then:  &term.TVar{Index: 1},
	}
	suspended, err := eval.Evaluate(prog, rtctx.Empty, st)
	require.NoError(t, err)

	_, err = ExecuteProgram(st, NewGrant("IO"), suspended)
	var denied *ErrCapabilityDenied
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "Net", denied.Effect)
}
