package fixtures

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corelang/corec/internal/elaborate"
	"github.com/corelang/corec/internal/eval"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/solver"
)

func TestRegistryFixturesElaborateAndEvaluate(t *testing.T) {
	for _, p := range Registry() {
		p := p
		t.Run(p.Name, func(t *testing.T) {
			e := elaborate.New(solver.New())
			tc := rtctx.NewTypechecking()

			_, _, typed, err := e.Infer(p.Term, tc)
			require.NoError(t, err)

			_, err = eval.Evaluate(typed, tc.RT, e.St)
			require.NoError(t, err)
		})
	}
}

func TestLookupUnknownFixture(t *testing.T) {
	_, ok := Lookup("nonexistent")
	require.False(t, ok)
}
