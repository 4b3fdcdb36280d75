// Package relation implements the concrete subtype comparers the solver's
// head check dispatches to (spec §4.F), plus the per-host-type variance
// registry (§4.F "host_user_defined_type ... looked up in a per-id variance
// declaration") in the style of the teacher's DictionaryRegistry.
package relation

import (
	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
)

// Relation is a concrete subtype comparer: given a value at val (under
// lctx) and a use at use (under rctx), decide whether val may flow where
// use is expected, queuing any further sub-obligations via qc.
type Relation interface {
	term.RelationRef
	Constrain(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause) (bool, error)
}

// Variance classifies how a type parameter's subtyping direction relates
// to its container's (spec §4.F).
type Variance uint8

const (
	Covariant Variance = iota
	Contravariant
	Invariant
)
