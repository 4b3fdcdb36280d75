package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/diag"
	"github.com/corelang/corec/internal/relation"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
)

// eqRelation is a minimal test double for relation.Relation: it accepts iff
// the two sides are term.Equal, and records every head check it performs.
type eqRelation struct {
	name string
	seen *[][2]term.Flex
}

func newEqRelation(name string) *eqRelation { return &eqRelation{name: name, seen: &[][2]term.Flex{}} }

func (r *eqRelation) RelName() string { return r.name }

func (r *eqRelation) Constrain(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause) (bool, error) {
	*r.seen = append(*r.seen, [2]term.Flex{val, use})
	return term.Equal(val, use), nil
}

func tok(n uint64) *term.Free { return &term.Free{Kind: term.Unique, Token: n} }

func TestFlowAcceptsEqualHostValues(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")
	a := tok(1)

	ok, err := s.Flow(a, nil, a, nil, rel, cause.Primitive{Reason: "t"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, *rel.seen, 1)
}

func TestFlowRejectsUnequalHostValues(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")

	_, err := s.Flow(tok(1), nil, tok(2), nil, rel, cause.Primitive{Reason: "t"})
	require.Error(t, err)
	var cerr *diag.ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "eq", cerr.Op)
}

func TestQueueIsIdempotentForDuplicateEdges(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")
	a := tok(1)

	require.NoError(t, s.Queue(a, nil, a, nil, rel, cause.Primitive{Reason: "first"}))
	require.NoError(t, s.Queue(a, nil, a, nil, rel, cause.Primitive{Reason: "second"}))

	node := s.nodes.byValue
	id, ok := node.get(a)
	require.True(t, ok)
	edges := s.constrain.from(NodeID{Interned: id})
	assert.Len(t, edges, 1, "a second Queue of the same obligation must not insert a new edge")
}

func TestTransitivityClosesOverConstrainChain(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")
	a, b, c := tok(1), tok(1), tok(1) // three distinct pointers, all term.Equal to each other

	require.NoError(t, s.Queue(a, nil, b, nil, rel, cause.Primitive{Reason: "a<=b"}))
	ok, err := s.Flow(b, nil, c, nil, rel, cause.Primitive{Reason: "b<=c"})
	require.NoError(t, err)
	require.True(t, ok)

	// transitivity should have queued and discharged a<=c too, via a third
	// head check beyond the two explicit Flow/Queue calls.
	assert.GreaterOrEqual(t, len(*rel.seen), 3)
}

func TestLeftCallDischargesThroughPi(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")
	arg := tok(1)
	result := tok(2)

	closure := &term.Closure{ParamName: "x", Body: &term.TVar{Index: 1}}
	pi := &term.Pi{ParamName: "x", ResultClosure: closure}

	// (pi arg) <=eq result, where evaluating the closure body (a TVar
	// referencing the sole parameter) just returns arg itself; so this
	// reduces to arg <=eq result, which fails since they are distinct tokens.
	_, err := s.Flow(&term.Application{Fn: pi, Arg: arg}, nil, result, nil, rel, cause.Primitive{Reason: "call"})
	require.Error(t, err)
	require.NotEmpty(t, *rel.seen)
	assert.True(t, term.Equal((*rel.seen)[0][0], arg))
	assert.True(t, term.Equal((*rel.seen)[0][1], result))
}

func TestSpeculateRevertsEdgesOnFailure(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")
	a, b := tok(1), tok(2)

	ok, err := s.Speculate(func() (bool, error) {
		if qerr := s.Queue(a, nil, b, nil, rel, cause.Primitive{Reason: "speculative"}); qerr != nil {
			return false, qerr
		}
		return false, nil
	})
	require.NoError(t, err)
	assert.False(t, ok)

	id, found := s.nodes.byValue.get(a)
	if found {
		assert.Empty(t, s.constrain.from(NodeID{Interned: id}), "edges queued during a reverted speculation must not survive")
	}
}

func TestSpeculateCommitsEdgesOnSuccess(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")
	a := tok(1)

	ok, err := s.Speculate(func() (bool, error) {
		return s.Flow(a, nil, a, nil, rel, cause.Primitive{Reason: "speculative"})
	})
	require.NoError(t, err)
	require.True(t, ok)

	id, found := s.nodes.byValue.get(a)
	require.True(t, found)
	assert.NotEmpty(t, s.constrain.from(NodeID{Interned: id}))
}

func TestFreshUniqueMintsDistinctTokens(t *testing.T) {
	s := New()
	a := s.FreshUnique()
	b := s.FreshUnique()
	assert.False(t, term.Equal(a, b))
}

func TestMetavariableMintsAtCurrentBlockLevel(t *testing.T) {
	s := New()
	s.PushBlock()
	mv := s.Metavariable()
	assert.Equal(t, 1, mv.BlockLevel)
	s.PopBlock()
	assert.Equal(t, 0, s.BlockLevel())
}

func TestMeetMaterializesDirectConstrain(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")
	mv := s.Metavariable()
	mvVal := &term.MetaStuck{MV: mv}
	arg := tok(5)
	x := tok(1)
	r := tok(1) // same token as x, so the met obligation x <=eq r holds

	// x <=eq (mv arg) meets (mv arg) <=eq r at mv's node: the solver must
	// connect x and r directly without ever resolving mv.
	require.NoError(t, s.QueueRightCall(x, rel, mvVal, arg, nil, cause.Primitive{Reason: "x<=call"}))
	require.NoError(t, s.QueueLeftCall(mvVal, arg, rel, r, nil, cause.Primitive{Reason: "call<=r"}))
	ok, err := s.drain()
	require.NoError(t, err)
	require.True(t, ok)

	require.NotEmpty(t, *rel.seen)
	assert.True(t, term.Equal((*rel.seen)[0][0], x))
	assert.True(t, term.Equal((*rel.seen)[0][1], r))
}

func TestMeetRequiresMatchingArgs(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")
	mv := s.Metavariable()
	mvVal := &term.MetaStuck{MV: mv}

	require.NoError(t, s.QueueRightCall(tok(1), rel, mvVal, tok(5), nil, cause.Primitive{Reason: "x<=call"}))
	require.NoError(t, s.QueueLeftCall(mvVal, tok(6), rel, tok(2), nil, cause.Primitive{Reason: "call<=r"}))
	ok, err := s.drain()
	require.NoError(t, err)
	require.True(t, ok)

	assert.Empty(t, *rel.seen, "calls on different arguments must not meet")
}

func TestConstrainComposesWithLeftCallOnMetavariable(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")
	mv := s.Metavariable()
	mvVal := &term.MetaStuck{MV: mv}
	arg := tok(1)
	result := tok(2)

	closure := &term.Closure{ParamName: "x", Body: &term.Lit{Value: result}}
	pi := &term.Pi{ParamName: "x", ResultClosure: closure}

	// (mv arg) <=eq result first, then pi <=eq mv: composition must apply
	// pi to arg and discharge result <=eq result.
	require.NoError(t, s.QueueLeftCall(mvVal, arg, rel, result, nil, cause.Primitive{Reason: "call"}))
	ok, err := s.Flow(pi, nil, mvVal, nil, rel, cause.Primitive{Reason: "pi<=mv"})
	require.NoError(t, err)
	require.True(t, ok)

	require.NotEmpty(t, *rel.seen)
	assert.True(t, term.Equal((*rel.seen)[0][0], result))
	assert.True(t, term.Equal((*rel.seen)[0][1], result))
}

func TestFlowIsReflexiveUnderOmega(t *testing.T) {
	num := &term.HostNumberType{}
	resClosure := &term.Closure{ParamName: "_", Body: &term.Lit{Value: num}}
	values := []term.Flex{
		num,
		&term.Star{Level: 1, Depth: 2},
		&term.EffectRow{Effects: []string{"IO"}},
		&term.Pi{ParamName: "x", ParamType: num, ResultClosure: resClosure},
		&term.ProgramTypeV{Result: num, Effects: &term.EffectRow{}},
	}
	for _, v := range values {
		s := New()
		ok, err := s.Flow(v, nil, v, nil, relation.Omega, cause.Primitive{Reason: "refl"})
		require.NoError(t, err, "reflexivity failed for %s", v)
		assert.True(t, ok)
	}
}

func TestFlowSingletonSubsumption(t *testing.T) {
	num := &term.HostNumberType{}
	three := &term.HostValue{Kind: term.HostNumber, Num: 3}
	sing := &term.Singleton{Super: num, Witness: three}

	s := New()
	ok, err := s.Flow(sing, nil, num, nil, relation.Omega, cause.Primitive{Reason: "sub"})
	require.NoError(t, err)
	assert.True(t, ok)

	s2 := New()
	_, err = s2.Flow(num, nil, sing, nil, relation.Omega, cause.Primitive{Reason: "rev"})
	require.Error(t, err, "a type does not flow into a singleton of itself")

	s3 := New()
	ok, err = s3.Flow(sing, nil, &term.Singleton{Super: num, Witness: three}, nil, relation.Omega, cause.Primitive{Reason: "same"})
	require.NoError(t, err)
	assert.True(t, ok)
}
