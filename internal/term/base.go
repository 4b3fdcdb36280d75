package term

import "github.com/corelang/corec/internal/span"

// Base is embedded in every inferrable, checkable, typed, strict and stuck
// variant. At may be the zero value: synthetic terms built by fixtures,
// tests, the relation comparers and the solver carry no source span.
type Base struct {
	At span.Name
}

// Debugged is implemented by every variant; it is how error rendering and
// context-consistency checks (spec §8 property 2) recover a node's binder
// debug info without a type switch.
type Debugged interface {
	Debug() span.Name
}

func (b Base) Debug() span.Name { return b.At }

// Inferrable is the surface term the elaborator synthesises a type for.
type Inferrable interface {
	Debugged
	inferrable()
	String() string
}

// Checkable is consumed by check against a goal type.
type Checkable interface {
	Debugged
	checkable()
	String() string
}

// Typed is a fully elaborated term, directly executable by the evaluator.
type Typed interface {
	Debugged
	typed()
	String() string
}

// Flex is the universal value type: the sum of Strict and Stuck. Every
// interface between components speaks Flex (spec §3.2).
type Flex interface {
	Debugged
	flex()
	String() string
}

// Strict is a fully evaluated value.
type Strict interface {
	Flex
	Head() Head
	strict()
}

// Stuck is a value blocked on a free variable or metavariable.
type Stuck interface {
	Flex
	stuck()
}
