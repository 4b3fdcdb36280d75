package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/term"
)

func TestSliceConstraintsForCapturesBothSides(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")
	mv := s.Metavariable()
	mvVal := &term.MetaStuck{MV: mv}

	lower := tok(1) // lower <= mv
	upper := tok(2) // mv <= upper

	require.NoError(t, s.Queue(lower, nil, mvVal, nil, rel, cause.Primitive{Reason: "lower"}))
	require.NoError(t, s.Queue(mvVal, nil, upper, nil, rel, cause.Primitive{Reason: "upper"}))

	ct := SliceConstraintsFor(s, mv)
	require.Len(t, ct.Elems, 2)

	var sawLower, sawUpper bool
	for _, e := range ct.Elems {
		switch e.Kind {
		case term.ConstrainSliced:
			assert.True(t, term.Equal(e.Other, lower))
			sawLower = true
		case term.SlicedConstrain:
			assert.True(t, term.Equal(e.Other, upper))
			sawUpper = true
		default:
			t.Fatalf("unexpected constraint elem kind %v", e.Kind)
		}
	}
	assert.True(t, sawLower)
	assert.True(t, sawUpper)
}

func TestSliceConstraintsForLeftAndRightCalls(t *testing.T) {
	s := New()
	rel := newEqRelation("eq")
	mv := s.Metavariable()
	mvVal := &term.MetaStuck{MV: mv}
	arg := tok(1)
	other := tok(2)

	require.NoError(t, s.QueueLeftCall(mvVal, arg, rel, other, nil, cause.Primitive{Reason: "leftcall"}))
	require.NoError(t, s.QueueRightCall(other, rel, mvVal, arg, nil, cause.Primitive{Reason: "rightcall"}))

	ct := SliceConstraintsFor(s, mv)
	require.Len(t, ct.Elems, 2)

	var sawLeft, sawRight bool
	for _, e := range ct.Elems {
		switch e.Kind {
		case term.SlicedLeftCall:
			assert.True(t, term.Equal(e.Other, other))
			assert.True(t, term.Equal(e.Arg, arg))
			sawLeft = true
		case term.RightCallSliced:
			assert.True(t, term.Equal(e.Other, other))
			assert.True(t, term.Equal(e.Arg, arg))
			sawRight = true
		default:
			t.Fatalf("unexpected constraint elem kind %v", e.Kind)
		}
	}
	assert.True(t, sawLeft)
	assert.True(t, sawRight)
}

func TestSliceConstraintsForEmptyWhenUntouched(t *testing.T) {
	s := New()
	mv := s.Metavariable()
	ct := SliceConstraintsFor(s, mv)
	assert.Empty(t, ct.Elems)
}
