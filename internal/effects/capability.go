// Package effects provides the default effect handlers corec registers
// with a solver.State (spec §6 "register_effect_handler") and the
// capability gate that guards invoking them -- adapted from the teacher's
// internal/effects, whose EffContext/Capability threading is replaced here
// by a grant set consulted at Invoke time rather than carried through
// every eval.Value call.
package effects

import "fmt"

// Grant is the set of effect names a caller is permitted to invoke, named
// after the teacher's Capability ("IO", "Clock", "FS", "Net").
type Grant map[string]bool

// NewGrant builds a Grant from a list of effect names.
func NewGrant(names ...string) Grant {
	g := make(Grant, len(names))
	for _, n := range names {
		g[n] = true
	}
	return g
}

// Allows reports whether effect is present in g.
func (g Grant) Allows(effect string) bool {
	return g != nil && g[effect]
}

// ErrCapabilityDenied mirrors the teacher's E_CAP_DENIED: the effect was
// invoked without its capability granted.
type ErrCapabilityDenied struct {
	Effect string
}

func (e *ErrCapabilityDenied) Error() string {
	return fmt.Sprintf("capability denied: %s effect not granted", e.Effect)
}
