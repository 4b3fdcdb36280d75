package term

// RelationRef is the minimal surface a subtype relation (internal/relation)
// exposes to the term algebra: just enough identity to be stored inside a
// constrained_type's sliced constraints and later handed back to the
// solver, without the term package importing internal/relation (which
// itself must import term for Flex/Strict/Stuck). Concrete relations
// implement this alongside their full internal/relation.Relation contract.
type RelationRef interface {
	// RelName is the relation's debug_name (spec §4.F).
	RelName() string
}
