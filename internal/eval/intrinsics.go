package eval

import (
	"fmt"

	"github.com/corelang/corec/internal/term"
)

// intrinsic is a named host-level primitive operation, registered below in
// the style of the teacher's Builtins table (internal/eval/builtins*.go):
// one entry per primitive, keyed by name.
type intrinsic struct {
	name   string
	arity  int
	isPure bool
	impl   func(args []term.Flex) (term.Flex, error)
}

var intrinsics = map[string]*intrinsic{}

func registerIntrinsic(name string, arity int, pure bool, impl func(args []term.Flex) (term.Flex, error)) {
	intrinsics[name] = &intrinsic{name: name, arity: arity, isPure: pure, impl: impl}
}

func init() {
	registerArithmeticIntrinsics()
	registerComparisonIntrinsics()
	registerBooleanIntrinsics()
	registerStringIntrinsics()
}

func registerArithmeticIntrinsics() {
	registerIntrinsic("add", 2, true, numBinOp(func(a, b float64) float64 { return a + b }))
	registerIntrinsic("sub", 2, true, numBinOp(func(a, b float64) float64 { return a - b }))
	registerIntrinsic("mul", 2, true, numBinOp(func(a, b float64) float64 { return a * b }))
	registerIntrinsic("div", 2, true, func(args []term.Flex) (term.Flex, error) {
		a, b, err := twoNums(args)
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, fmt.Errorf("eval: division by zero")
		}
		return &term.HostValue{Kind: term.HostNumber, Num: a / b}, nil
	})
}

func registerComparisonIntrinsics() {
	registerIntrinsic("lt", 2, true, numCompare(func(a, b float64) bool { return a < b }))
	registerIntrinsic("lte", 2, true, numCompare(func(a, b float64) bool { return a <= b }))
	registerIntrinsic("gt", 2, true, numCompare(func(a, b float64) bool { return a > b }))
	registerIntrinsic("gte", 2, true, numCompare(func(a, b float64) bool { return a >= b }))
	registerIntrinsic("eq", 2, true, func(args []term.Flex) (term.Flex, error) {
		return &term.HostValue{Kind: term.HostBool, Bool: hostEqual(args[0], args[1])}, nil
	})
}

func registerBooleanIntrinsics() {
	registerIntrinsic("and", 2, true, boolBinOp(func(a, b bool) bool { return a && b }))
	registerIntrinsic("or", 2, true, boolBinOp(func(a, b bool) bool { return a || b }))
	registerIntrinsic("not", 1, true, func(args []term.Flex) (term.Flex, error) {
		b, ok := args[0].(*term.HostValue)
		if !ok || b.Kind != term.HostBool {
			return nil, fmt.Errorf("eval: not expects a Bool argument")
		}
		return &term.HostValue{Kind: term.HostBool, Bool: !b.Bool}, nil
	})
}

func registerStringIntrinsics() {
	registerIntrinsic("concat", 2, true, func(args []term.Flex) (term.Flex, error) {
		a, ok1 := args[0].(*term.HostValue)
		b, ok2 := args[1].(*term.HostValue)
		if !ok1 || !ok2 || a.Kind != term.HostString || b.Kind != term.HostString {
			return nil, fmt.Errorf("eval: concat expects two String arguments")
		}
		return &term.HostValue{Kind: term.HostString, Str: a.Str + b.Str}, nil
	})
}

func numBinOp(fn func(a, b float64) float64) func([]term.Flex) (term.Flex, error) {
	return func(args []term.Flex) (term.Flex, error) {
		a, b, err := twoNums(args)
		if err != nil {
			return nil, err
		}
		return &term.HostValue{Kind: term.HostNumber, Num: fn(a, b)}, nil
	}
}

func numCompare(fn func(a, b float64) bool) func([]term.Flex) (term.Flex, error) {
	return func(args []term.Flex) (term.Flex, error) {
		a, b, err := twoNums(args)
		if err != nil {
			return nil, err
		}
		return &term.HostValue{Kind: term.HostBool, Bool: fn(a, b)}, nil
	}
}

func boolBinOp(fn func(a, b bool) bool) func([]term.Flex) (term.Flex, error) {
	return func(args []term.Flex) (term.Flex, error) {
		a, ok1 := args[0].(*term.HostValue)
		b, ok2 := args[1].(*term.HostValue)
		if !ok1 || !ok2 || a.Kind != term.HostBool || b.Kind != term.HostBool {
			return nil, fmt.Errorf("eval: expected two Bool arguments")
		}
		return &term.HostValue{Kind: term.HostBool, Bool: fn(a.Bool, b.Bool)}, nil
	}
}

func twoNums(args []term.Flex) (float64, float64, error) {
	a, ok1 := args[0].(*term.HostValue)
	b, ok2 := args[1].(*term.HostValue)
	if !ok1 || !ok2 || a.Kind != term.HostNumber || b.Kind != term.HostNumber {
		return 0, 0, fmt.Errorf("eval: expected two Number arguments")
	}
	return a.Num, b.Num, nil
}

func hostEqual(a, b term.Flex) bool {
	av, aok := a.(*term.HostValue)
	bv, bok := b.(*term.HostValue)
	if !aok || !bok || av.Kind != bv.Kind {
		return false
	}
	switch av.Kind {
	case term.HostNumber:
		return av.Num == bv.Num
	case term.HostString:
		return av.Str == bv.Str
	default:
		return av.Bool == bv.Bool
	}
}

// resolveIntrinsic turns a host_intrinsic's source name into a callable
// value: a curried chain of OperativeValues that gathers the registry
// entry's arity arguments into a slice before invoking impl. typ, the
// intrinsic's declared type, is not consulted: the registry's arity alone
// decides how many arguments are gathered.
func resolveIntrinsic(source string, typ term.Flex, base term.Base) (term.Flex, error) {
	iv, ok := intrinsics[source]
	if !ok {
		return nil, fmt.Errorf("eval: unknown host intrinsic %q", source)
	}
	_ = typ
	return curriedIntrinsic(iv, nil, base), nil
}

func curriedIntrinsic(iv *intrinsic, collected []term.Flex, base term.Base) term.Flex {
	return &term.OperativeValue{
		Base: base,
		Name: iv.name,
		Call: func(ctx term.OperativeCallCtx, arg term.Flex) (term.Flex, error) {
			args := append(append([]term.Flex(nil), collected...), arg)
			if len(args) < iv.arity {
				return curriedIntrinsic(iv, args, base), nil
			}
			for _, a := range args {
				if _, stuck := a.(term.Stuck); stuck {
					return &term.HostApplication{Base: base, Fn: curriedIntrinsic(iv, collected, base), Arg: arg}, nil
				}
			}
			return iv.impl(args)
		},
	}
}
