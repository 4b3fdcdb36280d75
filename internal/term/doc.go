// Package term is the term algebra: the closed set of tagged variants for
// inferrable terms (what the elaborator synthesises types for), checkable
// terms (consumed by check against a goal), typed terms (fully elaborated,
// directly executable), and the two value tiers produced by evaluation --
// strict values (fully evaluated) and stuck values (blocked on a free
// variable or metavariable). Strict and stuck values live in this package
// alongside terms, rather than in a separate values package, because a
// closure's body is itself a typed term and a typed term's Lit variant
// embeds an already-computed value: the two are mutually recursive by
// construction (spec §4.A).
//
// Every variant embeds Base, which carries the debug span.Name that spec
// §3.1 requires on every binder; synthetic terms may leave it as the zero
// value.
package term
