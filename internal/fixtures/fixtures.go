// Package fixtures holds the named example programs cmd/corec's eval/check
// subcommands and internal/repl's :load command operate on. The surface
// parser is out of scope for this core (spec §1: "the core receives an
// already-built inferrable term"), so these are hand-built term.Inferrable
// trees rather than anything parsed from source text -- the same role the
// teacher's cmd/ailang/eval_suite.go fixtures play for its benchmark
// harness, narrowed here to exercising infer/check/evaluate directly.
package fixtures

import (
	"github.com/corelang/corec/internal/span"
	"github.com/corelang/corec/internal/term"
)

// Program names one fixture: a term to elaborate plus a human description
// shown by `corec list` / the repl's :list command.
type Program struct {
	Name        string
	Description string
	Term        term.Inferrable
}

func numLit(n float64) *term.AlreadyTyped {
	return &term.AlreadyTyped{
		Type: &term.HostNumberType{},
		Term: &term.Lit{Value: &term.HostValue{Kind: term.HostNumber, Num: n}},
	}
}

func wrap(i term.Inferrable) term.Checkable {
	return &term.WrapInferrable{Term: i}
}

func hostTypeLit(t term.Strict) *term.AlreadyTyped {
	return &term.AlreadyTyped{Type: &term.HostTypeType{}, Term: &term.Lit{Value: t}}
}

// identity is \x. x, annotated over the host number type.
func identity() term.Inferrable {
	return &term.AnnotatedLambda{
		ParamName: "x",
		ParamType: wrap(hostTypeLit(&term.HostNumberType{})),
		Vis:       term.Explicit,
		Pur:       term.Pure,
		Body:      &term.Var{Index: 1},
	}
}

// pair is tuple(1, 2), a flat non-dependent tuple literal.
func pair() term.Inferrable {
	return &term.TupleCons{Elements: []term.Checkable{wrap(numLit(1)), wrap(numLit(2))}}
}

// pairSecond destructures tuple(3, 4) and returns its second element.
func pairSecond() term.Inferrable {
	return &term.TupleElim{
		Names:      []string{"a", "b"},
		NameDebugs: make([]span.Name, 2),
		Subject:    &term.TupleCons{Elements: []term.Checkable{wrap(numLit(3)), wrap(numLit(4))}},
		Body:       &term.Var{Index: 2},
	}
}

// letBinding is `let x = 5 in x`.
func letBinding() term.Inferrable {
	return &term.Let{
		Name: "x",
		Expr: numLit(5),
		Body: &term.Var{Index: 1},
	}
}

// conditional is `if true then 10 else 20`.
func conditional() term.Inferrable {
	return &term.If{
		Subject: wrap(&term.AlreadyTyped{
			Type: &term.HostBoolType{},
			Term: &term.Lit{Value: &term.HostValue{Kind: term.HostBool, Bool: true}},
		}),
		Then: numLit(10),
		Else: numLit(20),
	}
}

// Registry lists every fixture by name, in definition order.
func Registry() []Program {
	return []Program{
		{Name: "identity", Description: "\\x. x, annotated over Number", Term: identity()},
		{Name: "pair", Description: "tuple(1, 2)", Term: pair()},
		{Name: "pair-second", Description: "let (a, b) = tuple(3, 4) in b", Term: pairSecond()},
		{Name: "let", Description: "let x = 5 in x", Term: letBinding()},
		{Name: "if", Description: "if true then 10 else 20", Term: conditional()},
	}
}

// Lookup finds a fixture by name.
func Lookup(name string) (Program, bool) {
	for _, p := range Registry() {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}
