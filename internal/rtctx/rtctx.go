// Package rtctx implements the ordered binding lists that terms are
// evaluated and elaborated against (spec §3.3). A Runtime context pairs
// each binding's value with its debug name; a Typechecking context adds the
// parallel declared-type sequence. Both are immutable through shadow
// copies: append always yields a new context, and closures captured from
// one context are never mutated by later appends to a sibling (spec §3.2
// "Closure isolation").
package rtctx

import (
	"fmt"

	"github.com/corelang/corec/internal/span"
	"github.com/corelang/corec/internal/term"
)

// Binding is one (value, name, debug) triple in a Runtime context.
type Binding struct {
	Value term.Flex
	Name  string
	Debug span.Name
}

// Runtime is an ordered, 1-based-addressed sequence of Bindings. The zero
// value is the empty context. Runtime values are persistent: Append never
// mutates the receiver, so multiple contexts can share a common prefix
// (the structural-sharing requirement of spec §4.B).
type Runtime struct {
	parent *Runtime
	own    []Binding // indices len(parent)+1 .. len(parent)+len(own)
}

// Empty is the context with no bindings.
var Empty = &Runtime{}

// Append extends the context with one new binding and returns a *new*
// Runtime; the receiver is never mutated, so a speculative branch that
// appends cannot corrupt its parent (spec §4.B).
func (r *Runtime) Append(value term.Flex, name string, debug span.Name) *Runtime {
	return &Runtime{parent: r, own: append([]Binding(nil), Binding{value, name, debug})}
}

// AppendMany extends the context with several bindings at once, preserving
// order, in a single new Runtime node.
func (r *Runtime) AppendMany(bs []Binding) *Runtime {
	if len(bs) == 0 {
		return r
	}
	cp := append([]Binding(nil), bs...)
	return &Runtime{parent: r, own: cp}
}

// Len returns the number of bindings visible in this context.
func (r *Runtime) Len() int {
	if r == nil {
		return 0
	}
	return r.parent.Len() + len(r.own)
}

// Get returns the value and debug info at 1-based index i. It panics with a
// structural error if i is out of range -- an out-of-range index is a
// broken invariant upstream (spec §7 "Structural" errors), never a
// recoverable elaboration failure.
func (r *Runtime) Get(i int) (term.Flex, span.Name) {
	b := r.binding(i)
	return b.Value, b.Debug
}

// GetDebug returns only the debug info at index i, used by context
// consistency checks (spec §8 property 2) without materialising the value.
func (r *Runtime) GetDebug(i int) span.Name {
	return r.binding(i).Debug
}

func (r *Runtime) binding(i int) Binding {
	n := r.Len()
	if i < 1 || i > n {
		panic(fmt.Sprintf("rtctx: index %d out of range [1,%d]", i, n))
	}
	if r == nil {
		panic("rtctx: index out of range on nil context")
	}
	localBase := n - len(r.own)
	if i > localBase {
		return r.own[i-localBase-1]
	}
	return r.parent.binding(i)
}

// FormatNames renders the bound names in this context, outermost first, for
// diagnostics.
func (r *Runtime) FormatNames() string {
	if r == nil {
		return "[]"
	}
	names := make([]string, 0, r.Len())
	r.collectNames(&names)
	return fmt.Sprintf("%v", names)
}

func (r *Runtime) collectNames(out *[]string) {
	if r == nil {
		return
	}
	r.parent.collectNames(out)
	for _, b := range r.own {
		*out = append(*out, b.Name)
	}
}

// FromCaptures rebuilds a minimal Runtime purely from a closure's captured
// values and debug names -- this is how internal/eval turns a Closure's
// flat capture slice back into a context to evaluate its body in, without
// ever consulting the call site's context (spec §3.2 invariant, §4.D).
func FromCaptures(values []term.Flex, names []string, debugs []span.Name) *Runtime {
	bs := make([]Binding, len(values))
	for i := range values {
		bs[i] = Binding{Value: values[i], Name: names[i], Debug: debugs[i]}
	}
	return Empty.AppendMany(bs)
}

// Typechecking pairs a Runtime context with the parallel sequence of
// declared types and the set of names used for diagnostics (spec §3.3).
type Typechecking struct {
	RT    *Runtime
	Types []term.Flex // Types[i-1] is the declared type of binding i
}

// NewTypechecking creates an empty typechecking context.
func NewTypechecking() *Typechecking {
	return &Typechecking{RT: Empty}
}

// Extend appends one binding with both a value and a declared type, kept in
// lock-step, and returns a new Typechecking context.
func (tc *Typechecking) Extend(value, typ term.Flex, name string, debug span.Name) *Typechecking {
	return &Typechecking{
		RT:    tc.RT.Append(value, name, debug),
		Types: append(append([]term.Flex(nil), tc.Types...), typ),
	}
}

// GetType returns the declared type of binding i (1-based).
func (tc *Typechecking) GetType(i int) term.Flex {
	if i < 1 || i > len(tc.Types) {
		panic(fmt.Sprintf("rtctx: type index %d out of range [1,%d]", i, len(tc.Types)))
	}
	return tc.Types[i-1]
}

// Len returns the number of declared bindings.
func (tc *Typechecking) Len() int { return tc.RT.Len() }

// FormatNames delegates to the underlying Runtime context.
func (tc *Typechecking) FormatNames() string { return tc.RT.FormatNames() }
