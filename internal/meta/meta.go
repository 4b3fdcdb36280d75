// Package meta defines the identity of a metavariable shared between the
// value/term algebra (internal/term) and the constraint
// solver (internal/solver), without either importing the other.
//
// A metavariable is not a mutable "current type" slot: it is two distinct
// graph node identities, Value and Usage (spec §3.4). Constraints flowing
// into Usage are lower bounds; constraints flowing out of Value are upper
// bounds. Keeping the two endpoints distinct is what encodes bivariance on
// the constraint graph itself instead of collapsing it after one constraint.
package meta

import "fmt"

// ID identifies a metavariable within a single typechecker_state. IDs are
// assigned by a counter (see Minter); reverting a speculation rewinds that
// counter, so IDs minted inside a reverted branch are handed out again.
type ID uint64

// NodeKind distinguishes the two graph nodes a single metavariable owns.
type NodeKind uint8

const (
	ValueNode NodeKind = iota
	UsageNode
)

func (k NodeKind) String() string {
	if k == ValueNode {
		return "value"
	}
	return "usage"
}

// Var is a metavariable: the pair of node identities plus the bookkeeping
// the solver needs to decide when it may be substituted away versus sliced
// into a constrained_type at scope exit (spec §3.4, §4.G).
type Var struct {
	ID         ID
	BlockLevel int // depth of the speculative/binder scope that created it
}

// ValueNodeID and UsageNodeID are the two distinct node identities a Var
// contributes to the constraint graph. They are derived deterministically
// from ID so no separate allocation is needed.
func (v Var) ValueNodeID() NodeID { return NodeID{Owner: v.ID, Kind: ValueNode} }
func (v Var) UsageNodeID() NodeID { return NodeID{Owner: v.ID, Kind: UsageNode} }

// NodeID is a fully-qualified reference to one of a metavariable's two graph
// nodes.
type NodeID struct {
	Owner ID
	Kind  NodeKind
}

func (n NodeID) String() string { return fmt.Sprintf("?%d.%s", n.Owner, n.Kind) }

func (v Var) String() string { return fmt.Sprintf("?%d@%d", v.ID, v.BlockLevel) }

// Minter hands out fresh metavariable IDs. Its counter is snapshotted and
// restored along with the rest of the solver's speculative state, so
// reverting a branch rewinds it and the IDs minted there are reused; because IDs minted during the reverted branch are never
// looked up again (their owning metavariables are discarded too), reuse is
// safe.
type Minter struct {
	next ID
}

// NewMinter creates a Minter starting at ID 1 (0 is reserved as the zero
// value / "no metavariable").
func NewMinter() *Minter { return &Minter{next: 1} }

// Mint allocates a fresh Var at the given block level.
func (m *Minter) Mint(blockLevel int) Var {
	id := m.next
	m.next++
	return Var{ID: id, BlockLevel: blockLevel}
}

// Snapshot and Restore let a shadow copy the counter cheaply (it is a value
// type) and let revert roll it back.
func (m *Minter) Snapshot() ID  { return m.next }
func (m *Minter) Restore(id ID) { m.next = id }
