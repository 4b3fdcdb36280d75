// Package span provides source positions and the debug-name machinery that
// every binder in the core carries. It is the smallest possible stand-in for
// the surface parser's position tracking (out of scope for the core proper,
// per spec) while still letting every term/value pair its textual name with a
// byte-accurate source location for error rendering.
package span

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Anchor is a single point in a source file.
type Anchor struct {
	File   string
	Line   int
	Column int
}

func (a Anchor) String() string {
	return fmt.Sprintf("%s:%d:%d", a.File, a.Line, a.Column)
}

// Span is a half-open range between two Anchors.
type Span struct {
	Start Anchor
	End   Anchor
}

func (s Span) String() string {
	if s.Start.File == s.End.File && s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s:%d:%d-%d", s.Start.File, s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Zero is the span used for synthetic terms (metavariables, dictionary
// references) that were never written by a user.
var Zero = Span{}

// Name is the debug info attached to every binder: a textual name plus the
// span where it was introduced. Two Names are considered the same binding
// iff Equal reports true; lookups that disagree indicate a broken invariant
// upstream (spec §3.1, §4.C "debug mismatch").
type Name struct {
	Text string
	Pos  Span
}

// NormalizeName applies Unicode NFC normalization to the textual part of a
// Name so that two source identifiers that are visually and semantically
// identical, but encoded with different combining-character sequences,
// compare equal. Without this, a context round-tripped through a tool that
// re-encodes source text could report spurious debug mismatches.
func NormalizeName(n Name) Name {
	if norm.NFC.IsNormalString(n.Text) {
		return n
	}
	n.Text = norm.NFC.String(n.Text)
	return n
}

// Equal reports whether two Names refer to the same binding occurrence.
// Comparison is on the normalized text and the full span, matching spec
// §3.3's requirement that a context lookup must yield the *same* debug info.
func (n Name) Equal(other Name) bool {
	return NormalizeName(n).Text == NormalizeName(other).Text && n.Pos == other.Pos
}

func (n Name) String() string {
	return n.Text
}
