// Package eval implements normalization-by-evaluation over the typed term
// algebra (spec §4.D): Evaluate reduces a term.Typed to a term.Flex value
// against a runtime context, and Apply reduces a function value applied to
// an argument, building a stuck term.Application when the function is not
// yet concrete. A metavariable reference evaluates to the term.MetaStuck
// value that names it. The only contact with the constraint solver is
// through the Slicer when a constrained_type is evaluated: a fresh
// metavariable is minted and every sliced constraint is queued against it.
package eval
