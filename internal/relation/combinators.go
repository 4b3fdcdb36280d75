package relation

import (
	"fmt"

	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/eval"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
)

// Omega is the general-purpose relation used wherever "any two types" must
// be compared -- function parameter/result positions, tuple/record/enum
// descriptor element types, and as the default relation a fresh
// metavariable is constrained under. It delegates to checkConcrete.
var Omega = UniverseOmegaRelation{}

// UniverseOmegaRelation is the comparer of last resort: its Constrain
// dispatches on (val.Head(), use.Head()) through the comparerTable (spec
// §4.F).
type UniverseOmegaRelation struct{ Variances *VarianceRegistry }

func (UniverseOmegaRelation) RelName() string { return "universe_omega" }

func (u UniverseOmegaRelation) Constrain(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause) (bool, error) {
	return checkConcrete(qc, lctx, val, rctx, use, why, u.Variances)
}

// FunctionRelation compares two callable values: contravariantly in the
// parameter, covariantly in the result (spec §4.F). ParamRel and ResultRel
// are almost always Omega; they are fields rather than a hard-coded
// constant so a narrower comparer could be substituted for either position
// later.
type FunctionRelation struct{ ParamRel, ResultRel Relation }

func (FunctionRelation) RelName() string { return "function" }

func (f FunctionRelation) Constrain(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause) (bool, error) {
	switch val := val.(type) {
	case *term.Pi:
		use, ok := use.(*term.Pi)
		if !ok {
			return false, fmt.Errorf("relation: pi is not a subtype of %T", use)
		}
		if val.Pur != use.Pur {
			return false, fmt.Errorf("relation: pi purity mismatch")
		}
		// Visibility must match; an implicit parameter on the value side is
		// permissive (the elaborator can always fill it in).
		if val.Vis != use.Vis && val.Vis != term.Implicit {
			return false, fmt.Errorf("relation: pi visibility mismatch")
		}
		if err := qc.Queue(use.ParamType, rctx, val.ParamType, lctx, f.ParamRel, why); err != nil {
			return false, err
		}
		fresh := qc.FreshUnique()
		valResult, err := eval.Apply(val.ResultClosure, fresh, nil)
		if err != nil {
			return false, err
		}
		useResult, err := eval.Apply(use.ResultClosure, fresh, nil)
		if err != nil {
			return false, err
		}
		if err := qc.Queue(valResult, lctx, useResult, rctx, f.ResultRel, why); err != nil {
			return false, err
		}
		return true, nil

	case *term.HostFunctionType:
		use, ok := use.(*term.HostFunctionType)
		if !ok {
			return false, fmt.Errorf("relation: host_function_type is not a subtype of %T", use)
		}
		if val.Pur != use.Pur {
			return false, fmt.Errorf("relation: host function purity mismatch")
		}
		if len(val.Params) != len(use.Params) {
			return false, fmt.Errorf("relation: host function arity mismatch: %d vs %d", len(val.Params), len(use.Params))
		}
		for i := range val.Params {
			if err := qc.Queue(use.Params[i], rctx, val.Params[i], lctx, f.ParamRel, why); err != nil {
				return false, err
			}
		}
		return true, qc.Queue(val.Result, lctx, use.Result, rctx, f.ResultRel, why)

	default:
		return false, fmt.Errorf("relation: FunctionRelation given non-callable %T", val)
	}
}

// IndepTupleRelation compares two non-dependent tuples elementwise, each
// position according to its declared Variance.
type IndepTupleRelation struct {
	Variances []Variance
	ElemRel   Relation
}

func (IndepTupleRelation) RelName() string { return "indep_tuple" }

func elementsOf(v term.Flex) ([]term.Flex, bool) {
	switch v := v.(type) {
	case *term.TupleValue:
		return v.Elements, true
	case *term.HostTupleValue:
		return v.Elements, true
	default:
		return nil, false
	}
}

func (r IndepTupleRelation) Constrain(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause) (bool, error) {
	valEl, ok1 := elementsOf(val)
	useEl, ok2 := elementsOf(use)
	if !ok1 || !ok2 || len(valEl) != len(useEl) || len(valEl) != len(r.Variances) {
		return false, fmt.Errorf("relation: tuple shape mismatch for indep_tuple")
	}
	for i, v := range r.Variances {
		switch v {
		case Covariant:
			if err := qc.Queue(valEl[i], lctx, useEl[i], rctx, r.ElemRel, why); err != nil {
				return false, err
			}
		case Contravariant:
			if err := qc.Queue(useEl[i], rctx, valEl[i], lctx, r.ElemRel, why); err != nil {
				return false, err
			}
		default: // Invariant
			if err := qc.Queue(valEl[i], lctx, useEl[i], rctx, r.ElemRel, why); err != nil {
				return false, err
			}
			if err := qc.Queue(useEl[i], rctx, valEl[i], lctx, r.ElemRel, why); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// TupleDescRelation compares two canonical tuple descriptors (chains of
// TupleDescCons terminated by TupleDescEmpty). Each NextFn is applied to a
// fresh unique standing in for "whatever the previous elements turn out to
// be", mirroring FunctionRelation's dependent-result handling.
type TupleDescRelation struct{}

func (TupleDescRelation) RelName() string { return "tuple_desc" }

func (r TupleDescRelation) Constrain(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause) (bool, error) {
	_, valEmpty := val.(*term.TupleDescEmpty)
	_, useEmpty := use.(*term.TupleDescEmpty)
	if valEmpty && useEmpty {
		return true, nil
	}
	valCons, ok1 := val.(*term.TupleDescCons)
	useCons, ok2 := use.(*term.TupleDescCons)
	if !ok1 || !ok2 {
		return false, fmt.Errorf("relation: tuple descriptor length mismatch")
	}
	if err := qc.Queue(valCons.Prev, lctx, useCons.Prev, rctx, r, why); err != nil {
		return false, err
	}
	fresh := qc.FreshUnique()
	valNext, err := eval.Apply(valCons.NextFn, fresh, nil)
	if err != nil {
		return false, err
	}
	useNext, err := eval.Apply(useCons.NextFn, fresh, nil)
	if err != nil {
		return false, err
	}
	return true, qc.Queue(valNext, lctx, useNext, rctx, Omega, why)
}

// EnumDescRelation implements width-and-depth subtyping for enum
// descriptors: use may name a subset of val's variants (fewer cases to
// handle is fine for a consumer of the subtype), each common variant's
// payload type compared covariantly.
type EnumDescRelation struct{}

func (EnumDescRelation) RelName() string { return "enum_desc" }

func (r EnumDescRelation) Constrain(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause) (bool, error) {
	valD, ok1 := val.(*term.EnumDescType)
	useD, ok2 := use.(*term.EnumDescType)
	if !ok1 || !ok2 {
		return false, fmt.Errorf("relation: expected two enum descriptors")
	}
	valByName := make(map[string]term.Flex, len(valD.VariantNames))
	for i, n := range valD.VariantNames {
		valByName[n] = valD.VariantTypes[i]
	}
	for i, n := range useD.VariantNames {
		vt, ok := valByName[n]
		if !ok {
			return false, fmt.Errorf("relation: variant %q not present in supertype enum", n)
		}
		if err := qc.Queue(vt, lctx, useD.VariantTypes[i], rctx, Omega, why); err != nil {
			return false, err
		}
	}
	return true, nil
}

// RecordDescRelation implements width-and-depth subtyping for record
// descriptors: val must declare at least the fields use requires, each
// compared covariantly.
type RecordDescRelation struct{}

func (RecordDescRelation) RelName() string { return "record_desc" }

func (r RecordDescRelation) Constrain(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause) (bool, error) {
	valD, ok1 := val.(*term.RecordDescType)
	useD, ok2 := use.(*term.RecordDescType)
	if !ok1 || !ok2 {
		return false, fmt.Errorf("relation: expected two record descriptors")
	}
	valFns := make(map[string]*term.Closure, len(valD.FieldNames))
	for i, n := range valD.FieldNames {
		valFns[n] = valD.FieldFns[i]
	}
	fresh := qc.FreshUnique()
	for i, n := range useD.FieldNames {
		vfn, ok := valFns[n]
		if !ok {
			return false, fmt.Errorf("relation: field %q missing from supertype record", n)
		}
		valField, err := eval.Apply(vfn, fresh, nil)
		if err != nil {
			return false, err
		}
		useField, err := eval.Apply(useD.FieldFns[i], fresh, nil)
		if err != nil {
			return false, err
		}
		if err := qc.Queue(valField, lctx, useField, rctx, Omega, why); err != nil {
			return false, err
		}
	}
	return true, nil
}

// EffectRowRelation requires the use side's effect set to be a superset of
// the value side's (spec §4.F, term.EffectRow godoc): a program that
// performs fewer effects may stand in wherever more are tolerated.
type EffectRowRelation struct{}

func (EffectRowRelation) RelName() string { return "effect_row" }

func (EffectRowRelation) Constrain(_ term.QueueCtx, _ *rtctx.Runtime, val term.Flex, _ *rtctx.Runtime, use term.Flex, _ cause.Cause) (bool, error) {
	valRow, ok1 := val.(*term.EffectRow)
	useRow, ok2 := use.(*term.EffectRow)
	if !ok1 || !ok2 {
		return false, fmt.Errorf("relation: expected two effect rows")
	}
	allowed := make(map[string]struct{}, len(useRow.Effects))
	for _, e := range useRow.Effects {
		allowed[e] = struct{}{}
	}
	for _, e := range valRow.Effects {
		if _, ok := allowed[e]; !ok {
			return false, fmt.Errorf("relation: effect %q not permitted here", e)
		}
	}
	return true, nil
}
