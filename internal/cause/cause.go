// Package cause implements the cause tree attached to every constraint edge
// (spec §3.5). Causes are human-readable only -- the solver never inspects
// them to make decisions, only error rendering walks them -- so the tree is
// intentionally a plain immutable value with no behaviour beyond rendering.
package cause

import (
	"fmt"

	"github.com/corelang/corec/internal/span"
)

// Cause is a tree of reasons: a primitive string with a source span, a
// cause nested inside a higher-level explanation, or the binary composition
// of two prior edges' causes (produced when the solver derives a new
// obligation from two existing ones, e.g. transitivity or call composition).
type Cause interface {
	Render() string
	isCause()
}

// Primitive is a leaf cause: a human-readable reason tied to a source span.
type Primitive struct {
	Reason string
	At     span.Span
}

func (Primitive) isCause() {}
func (p Primitive) Render() string {
	if p.At == span.Zero {
		return p.Reason
	}
	return fmt.Sprintf("%s (%s)", p.Reason, p.At)
}

// Nested wraps an inner cause with additional context, e.g. "while
// checking parameter 2" around a deeper Primitive.
type Nested struct {
	Context string
	Inner   Cause
}

func (Nested) isCause() {}
func (n Nested) Render() string {
	return fmt.Sprintf("%s\n  %s", n.Context, n.Inner.Render())
}

// Composed is produced when one edge's obligation is derived from two
// others (transitivity, left/right-call composition): the new edge's cause
// is the pair, not a summary, so error messages can walk back to both
// roots.
type Composed struct {
	Left, Right Cause
}

func (Composed) isCause() {}
func (c Composed) Render() string {
	return fmt.Sprintf("%s\nand\n%s", c.Left.Render(), c.Right.Render())
}

// Lost tags a cause that bypasses the edge's normal cause chain -- spec
// §7's "Lost" error kind, produced when range-unpacking constraints are
// queued without a natural single parent edge, and when evaluating a
// constrained_type re-registers its sliced constraints (internal/eval).
type Lost struct {
	Inner Cause
}

func (Lost) isCause() {}
func (l Lost) Render() string {
	return "[lost] " + l.Inner.Render()
}
