// Package diag provides the core's structured error type and error code
// taxonomy, modeled on the teacher's centralized error-code package: every
// error carries a stable code, a phase, and a human-readable message, and
// can round-trip through JSON for tooling.
package diag

// Error codes are namespaced by the phase that raises them (spec §7):
// structural invariant violations (CST###, fatal), elaboration failures
// (ELB###, returned through (ok, err)), and solver failures (SLV###, head
// checks return through (ok, err); relation mismatches are fatal bugs).
const (
	// CST### -- Structural: a broken invariant upstream. Fatal.
	CSTIndexOutOfRange  = "CST001" // a term references a context index that does not exist
	CSTDebugMismatch    = "CST002" // a bound variable's debug info disagrees with the context's
	CSTNotAClosure      = "CST003" // a variant field expected to be a closure was something else
	CSTMalformedHostTup = "CST004" // a host tuple has more than one stuck interior element

	// ELB### -- Elaboration: returned as (ok=false, err) from infer/check.
	ELBNoComparer         = "ELB001" // no subtype comparer registered for a (val,use) head pair
	ELBExpectedPi         = "ELB002" // a pi type was expected but something else was found
	ELBMissingVariant     = "ELB003" // an enum variant referenced in a case arm does not exist
	ELBTupleArityMismatch = "ELB004" // a tuple pattern/type has the wrong number of elements
	ELBExpectedRecord     = "ELB005" // a record_type was expected but something else was found
	ELBNotImplemented     = "ELB006" // an explicit not-implemented path named in spec §9

	// SLV### -- Solver: head check / graph invariant failures.
	SLVHeadCheckFailed  = "SLV001" // a concrete relation's constrain() rejected the pair
	SLVRelationMismatch = "SLV002" // two edges between the same endpoints disagree on relation (fatal bug)
	SLVLostCause        = "SLV003" // a range-unpacking constraint bypassed the normal cause chain
)
