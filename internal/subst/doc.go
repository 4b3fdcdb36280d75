// Package subst implements closure construction (spec §4.D): turning a
// term.Lambda, whose body was elaborated against the whole ambient
// definition-site context, into a term.LambdaExplicitCapture whose body
// only ever sees the handful of bindings it actually reads. This is what
// lets internal/eval reconstruct a closure's evaluation context purely
// from its own capture slice (spec §3.2 "Closure isolation") instead of
// threading the defining context through at call time.
package subst
