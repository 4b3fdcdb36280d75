package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/term"
)

// syncQueue is a QueueCtx test double that discharges every queued
// obligation immediately and records call edges instead of solving them,
// so a comparer's full recursive behavior can be observed without a
// solver.State.
type syncQueue struct {
	uniques    uint64
	leftCalls  int
	rightCalls int
}

func (q *syncQueue) Queue(left term.Flex, lctx any, right term.Flex, rctx any, rel term.RelationRef, why cause.Cause) error {
	r := rel.(Relation)
	ok, err := r.Constrain(q, nil, left, nil, right, why)
	if err != nil {
		return err
	}
	if !ok {
		return assert.AnError
	}
	return nil
}

func (q *syncQueue) QueueLeftCall(fn, arg term.Flex, rel term.RelationRef, result term.Flex, ctx any, why cause.Cause) error {
	q.leftCalls++
	return nil
}

func (q *syncQueue) QueueRightCall(left term.Flex, rel term.RelationRef, fn, arg term.Flex, ctx any, why cause.Cause) error {
	q.rightCalls++
	return nil
}

func (q *syncQueue) FreshUnique() term.Flex {
	q.uniques++
	return &term.Free{Kind: term.Unique, Token: q.uniques}
}

func omega(t *testing.T, val, use term.Flex) (bool, error) {
	t.Helper()
	return Omega.Constrain(&syncQueue{}, nil, val, nil, use, cause.Primitive{Reason: "test"})
}

func TestStarLattice(t *testing.T) {
	ok, err := omega(t, &term.Star{Level: 0, Depth: 1}, &term.Star{Level: 1, Depth: 0})
	require.NoError(t, err)
	assert.True(t, ok, "star(0,1) <= star(1,0): level up, depth down")

	ok, err = omega(t, &term.Star{Level: 2}, &term.Star{Level: 1})
	assert.False(t, ok && err == nil, "higher level must not flow into lower")

	ok, err = omega(t, &term.Star{Depth: 0}, &term.Star{Depth: 1})
	assert.False(t, ok && err == nil, "shallower depth must not flow into deeper")
}

func TestHostTypeTypeBelowStarDepthZero(t *testing.T) {
	ok, err := omega(t, &term.HostTypeType{}, &term.Star{Level: 3, Depth: 0})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = omega(t, &term.HostTypeType{}, &term.Star{Level: 3, Depth: 1})
	assert.False(t, ok && err == nil)
}

func TestEffectRowSupersetOnUseSide(t *testing.T) {
	pure := &term.EffectRow{}
	io := &term.EffectRow{Effects: []string{"IO"}}
	ioClock := &term.EffectRow{Effects: []string{"IO", "Clock"}}

	ok, err := EffectRowRelation{}.Constrain(&syncQueue{}, nil, pure, nil, io, cause.Primitive{Reason: "t"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EffectRowRelation{}.Constrain(&syncQueue{}, nil, io, nil, ioClock, cause.Primitive{Reason: "t"})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = EffectRowRelation{}.Constrain(&syncQueue{}, nil, ioClock, nil, io, cause.Primitive{Reason: "t"})
	require.Error(t, err, "a program performing Clock cannot flow where only IO is tolerated")
}

func TestEnumDescUseMayNameFewerVariants(t *testing.T) {
	num := &term.HostNumberType{}
	wide := &term.EnumDescType{VariantNames: []string{"a", "b"}, VariantTypes: []term.Flex{num, num}}
	narrow := &term.EnumDescType{VariantNames: []string{"a"}, VariantTypes: []term.Flex{num}}

	ok, err := EnumDescRelation{}.Constrain(&syncQueue{}, nil, wide, nil, narrow, cause.Primitive{Reason: "t"})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = EnumDescRelation{}.Constrain(&syncQueue{}, nil, narrow, nil, wide, cause.Primitive{Reason: "t"})
	require.Error(t, err, "the use side may not demand variants the value side lacks")
}

func TestRecordDescAsymmetryIsReversed(t *testing.T) {
	num := &term.HostNumberType{}
	fn := func() *term.Closure { return &term.Closure{ParamName: "_", Body: &term.Lit{Value: num}} }
	wide := &term.RecordDescType{FieldNames: []string{"x", "y"}, FieldFns: []*term.Closure{fn(), fn()}}
	narrow := &term.RecordDescType{FieldNames: []string{"x"}, FieldFns: []*term.Closure{fn()}}

	ok, err := RecordDescRelation{}.Constrain(&syncQueue{}, nil, wide, nil, narrow, cause.Primitive{Reason: "t"})
	require.NoError(t, err)
	assert.True(t, ok, "a record with more fields flows where fewer are required")

	_, err = RecordDescRelation{}.Constrain(&syncQueue{}, nil, narrow, nil, wide, cause.Primitive{Reason: "t"})
	require.Error(t, err)
}

func TestUnionDissolvesOnValueSide(t *testing.T) {
	num := &term.HostNumberType{}
	ok, err := omega(t, &term.UnionType{Members: []term.Flex{num, num}}, num)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIntersectionDissolvesOnUseSide(t *testing.T) {
	num := &term.HostNumberType{}
	ok, err := omega(t, num, &term.IntersectionType{Members: []term.Flex{num, num}})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSingletonFallsThroughToSupertype(t *testing.T) {
	num := &term.HostNumberType{}
	three := &term.HostValue{Kind: term.HostNumber, Num: 3}

	ok, err := omega(t, &term.Singleton{Super: num, Witness: three}, num)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = omega(t, num, &term.Singleton{Super: num, Witness: three})
	require.Error(t, err, "only the witness inhabits a singleton")

	ok, err = omega(t, three, &term.Singleton{Super: num, Witness: &term.HostValue{Kind: term.HostNumber, Num: 3}})
	require.NoError(t, err)
	assert.True(t, ok, "the witness itself flows into its singleton")
}

func TestSingletonVsSingletonComparesWitnesses(t *testing.T) {
	num := &term.HostNumberType{}
	three := &term.HostValue{Kind: term.HostNumber, Num: 3}
	four := &term.HostValue{Kind: term.HostNumber, Num: 4}

	ok, err := omega(t, &term.Singleton{Super: num, Witness: three}, &term.Singleton{Super: num, Witness: three})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = omega(t, &term.Singleton{Super: num, Witness: three}, &term.Singleton{Super: num, Witness: four})
	require.Error(t, err)
}

func TestEnumTypeAcceptedAsTupleDescType(t *testing.T) {
	emptyTuple := &term.TupleTypeV{Desc: &term.TupleDescEmpty{}}
	consTuple := &term.TupleTypeV{Desc: &term.TupleDescCons{
		Prev:   &term.TupleDescEmpty{},
		NextFn: &term.Closure{ParamName: "_", Body: &term.Lit{Value: &term.HostNumberType{}}},
	}}
	enum := &term.EnumTypeV{Desc: &term.EnumDescType{
		VariantNames: []string{"empty", "cons"},
		VariantTypes: []term.Flex{emptyTuple, consTuple},
	}}

	ok, err := omega(t, enum, &term.TupleDescTypeV{Target: &term.Star{}})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnumTypeWithWrongConstructorsRejectedAsTupleDescType(t *testing.T) {
	enum := &term.EnumTypeV{Desc: &term.EnumDescType{
		VariantNames: []string{"nil", "pair"},
		VariantTypes: []term.Flex{&term.HostNumberType{}, &term.HostNumberType{}},
	}}

	_, err := omega(t, enum, &term.TupleDescTypeV{Target: &term.Star{}})
	require.Error(t, err)
}

func TestStuckPlaceholderRevealsDeclaredType(t *testing.T) {
	num := &term.HostNumberType{}
	ph := &term.Free{Kind: term.Placeholder, Index: 1, Decl: num}

	ok, err := omega(t, ph, num)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStuckTupleAccessRevealsDescriptorComponent(t *testing.T) {
	num := &term.HostNumberType{}
	str := &term.HostStringType{}
	desc := term.Flex(&term.TupleDescEmpty{})
	for _, ty := range []term.Flex{num, str} {
		desc = &term.TupleDescCons{Prev: desc, NextFn: &term.Closure{ParamName: "_", Body: &term.Lit{Value: ty}}}
	}
	subject := &term.Free{Kind: term.Placeholder, Index: 1, Decl: &term.TupleTypeV{Desc: desc}}

	ok, err := omega(t, &term.StuckTupleElementAccess{Subject: subject, Index: 1}, str)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = omega(t, &term.StuckTupleElementAccess{Subject: subject, Index: 0}, str)
	require.Error(t, err, "position 0 is a Number, not a String")
}

func TestFunctionRelationChecksParamContravariantly(t *testing.T) {
	num := &term.HostNumberType{}
	str := &term.HostStringType{}
	res := func() *term.Closure { return &term.Closure{ParamName: "_", Body: &term.Lit{Value: num}} }

	same := FunctionRelation{ParamRel: Omega, ResultRel: Omega}
	ok, err := same.Constrain(&syncQueue{}, nil,
		&term.Pi{ParamName: "x", ParamType: num, ResultClosure: res()},
		nil,
		&term.Pi{ParamName: "x", ParamType: num, ResultClosure: res()},
		cause.Primitive{Reason: "t"})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = same.Constrain(&syncQueue{}, nil,
		&term.Pi{ParamName: "x", ParamType: num, ResultClosure: res()},
		nil,
		&term.Pi{ParamName: "x", ParamType: str, ResultClosure: res()},
		cause.Primitive{Reason: "t"})
	require.Error(t, err, "a Number-taking function cannot stand where a String-taking one is expected")
}

func TestFunctionRelationRequiresMatchingPurity(t *testing.T) {
	num := &term.HostNumberType{}
	res := func() *term.Closure { return &term.Closure{ParamName: "_", Body: &term.Lit{Value: num}} }
	rel := FunctionRelation{ParamRel: Omega, ResultRel: Omega}

	pure := &term.Pi{ParamName: "x", ParamType: num, Pur: term.Pure, ResultClosure: res()}
	effectful := &term.Pi{ParamName: "x", ParamType: num, Pur: term.Effectful, ResultClosure: res()}

	_, err := rel.Constrain(&syncQueue{}, nil, pure, nil, effectful, cause.Primitive{Reason: "t"})
	require.Error(t, err)
	_, err = rel.Constrain(&syncQueue{}, nil, effectful, nil, pure, cause.Primitive{Reason: "t"})
	require.Error(t, err)

	hostPure := &term.HostFunctionType{Params: []term.Flex{num}, Pur: term.Pure, Result: num}
	hostEffectful := &term.HostFunctionType{Params: []term.Flex{num}, Pur: term.Effectful, Result: num}
	_, err = rel.Constrain(&syncQueue{}, nil, hostPure, nil, hostEffectful, cause.Primitive{Reason: "t"})
	require.Error(t, err)
}

func TestFunctionRelationVisibilityImplicitLeftIsPermissive(t *testing.T) {
	num := &term.HostNumberType{}
	res := func() *term.Closure { return &term.Closure{ParamName: "_", Body: &term.Lit{Value: num}} }
	rel := FunctionRelation{ParamRel: Omega, ResultRel: Omega}

	explicit := &term.Pi{ParamName: "x", ParamType: num, Vis: term.Explicit, ResultClosure: res()}
	implicit := &term.Pi{ParamName: "x", ParamType: num, Vis: term.Implicit, ResultClosure: res()}

	ok, err := rel.Constrain(&syncQueue{}, nil, implicit, nil, explicit, cause.Primitive{Reason: "t"})
	require.NoError(t, err)
	assert.True(t, ok, "implicit on the value side stands in for an explicit expectation")

	_, err = rel.Constrain(&syncQueue{}, nil, explicit, nil, implicit, cause.Primitive{Reason: "t"})
	require.Error(t, err, "an explicit pi cannot stand where an implicit one is required")
}
