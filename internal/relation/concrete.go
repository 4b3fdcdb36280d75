package relation

import (
	"fmt"

	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
)

type comparerFunc func(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, variances *VarianceRegistry) (bool, error)

func identity(name string) comparerFunc {
	return func(_ term.QueueCtx, _ *rtctx.Runtime, val term.Flex, _ *rtctx.Runtime, use term.Flex, _ cause.Cause, _ *VarianceRegistry) (bool, error) {
		if val.(term.Strict).Head() != use.(term.Strict).Head() {
			return false, fmt.Errorf("relation: %s mismatch", name)
		}
		return true, nil
	}
}

func delegate(r Relation) comparerFunc {
	return func(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, _ *VarianceRegistry) (bool, error) {
		return r.Constrain(qc, lctx, val, rctx, use, why)
	}
}

// comparerTable is keyed by (val.Head(), use.Head()) per spec §4.F's
// "per-head comparer table".
var comparerTable map[[2]term.Head]comparerFunc

func init() {
	funcRel := FunctionRelation{ParamRel: Omega, ResultRel: Omega}
	tupleDesc := TupleDescRelation{}
	enumDesc := EnumDescRelation{}
	recordDesc := RecordDescRelation{}
	effectRow := EffectRowRelation{}

	comparerTable = map[[2]term.Head]comparerFunc{
		{term.HeadPi, term.HeadPi}:                                   delegate(funcRel),
		{term.HeadHostFunctionType, term.HeadHostFunctionType}:       delegate(funcRel),
		{term.HeadTupleType, term.HeadTupleType}:                     tupleTypeComparer,
		{term.HeadTupleDesc, term.HeadTupleDesc}:                     delegate(tupleDesc),
		{term.HeadTupleDescType, term.HeadTupleDescType}:             tupleDescTypeComparer,
		{term.HeadEnumType, term.HeadTupleDescType}:                  enumTypeAsTupleDescType,
		{term.HeadEnumType, term.HeadEnumType}:                       enumTypeComparer,
		{term.HeadEnumDescType, term.HeadEnumDescType}:               delegate(enumDesc),
		{term.HeadEnumDescType, term.HeadTupleDesc}:                  enumSupertypeOfTupleDesc,
		{term.HeadRecordType, term.HeadRecordType}:                   recordTypeComparer,
		{term.HeadRecordDescType, term.HeadRecordDescType}:           delegate(recordDesc),
		{term.HeadProgramType, term.HeadProgramType}:                 programTypeComparer,
		{term.HeadEffectRow, term.HeadEffectRow}:                     delegate(effectRow),
		{term.HeadHostNumberType, term.HeadHostNumberType}:           identity("Number"),
		{term.HeadHostStringType, term.HeadHostStringType}:           identity("String"),
		{term.HeadHostBoolType, term.HeadHostBoolType}:               identity("Bool"),
		{term.HeadHostTypeType, term.HeadStar}:                       hostTypeTypeSubStar,
		{term.HeadStar, term.HeadStar}:                               starComparer,
		{term.HeadProp, term.HeadProp}:                               identity("Prop"),
		{term.HeadHostWrappedType, term.HeadHostWrappedType}:         hostWrappedComparer,
		{term.HeadSrelType, term.HeadSrelType}:                       srelComparer,
		{term.HeadVarianceType, term.HeadVarianceType}:               varianceTypeComparer,
		{term.HeadHostUserDefinedType, term.HeadHostUserDefinedType}: hostUserDefinedComparer,
		{term.HeadTupleValue, term.HeadTupleValue}:                   structuralValueComparer,
		{term.HeadHostTupleValue, term.HeadHostTupleValue}:           structuralValueComparer,
		{term.HeadRecordValue, term.HeadRecordValue}:                 structuralValueComparer,
		{term.HeadHostValue, term.HeadHostValue}:                     hostValueComparer,
	}
}

func tupleTypeComparer(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, v *VarianceRegistry) (bool, error) {
	valT, useT := val.(*term.TupleTypeV), use.(*term.TupleTypeV)
	return true, qc.Queue(valT.Desc, lctx, useT.Desc, rctx, TupleDescRelation{}, why)
}

func enumTypeComparer(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, v *VarianceRegistry) (bool, error) {
	valT, useT := val.(*term.EnumTypeV), use.(*term.EnumTypeV)
	return true, qc.Queue(valT.Desc, lctx, useT.Desc, rctx, EnumDescRelation{}, why)
}

func recordTypeComparer(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, v *VarianceRegistry) (bool, error) {
	valT, useT := val.(*term.RecordTypeV), use.(*term.RecordTypeV)
	return true, qc.Queue(valT.Desc, lctx, useT.Desc, rctx, RecordDescRelation{}, why)
}

func programTypeComparer(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, v *VarianceRegistry) (bool, error) {
	valP, useP := val.(*term.ProgramTypeV), use.(*term.ProgramTypeV)
	if err := qc.Queue(valP.Result, lctx, useP.Result, rctx, Omega, why); err != nil {
		return false, err
	}
	return true, qc.Queue(valP.Effects, lctx, useP.Effects, rctx, EffectRowRelation{}, why)
}

// tupleDescTypeComparer compares two tuple_desc_type values, covariant in
// the universe target (spec §4.F "tuple_desc_type ... covariant in target").
func tupleDescTypeComparer(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, v *VarianceRegistry) (bool, error) {
	valT, useT := val.(*term.TupleDescTypeV), use.(*term.TupleDescTypeV)
	return true, qc.Queue(valT.Target, lctx, useT.Target, rctx, Omega, why)
}

// enumTypeAsTupleDescType accepts an enum_type whose variants are exactly
// the canonical tuple-descriptor constructor set -- empty and cons -- where
// a tuple_desc_type is expected: a tuple descriptor IS an inductive enum
// over those two constructors, so such an enum classifies the same values.
// The variant payloads are not re-classified against the universe target
// here; payload/universe coherence is enforced where descriptors are
// constructed, and the source marks the deeper conversion "nyi".
func enumTypeAsTupleDescType(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, v *VarianceRegistry) (bool, error) {
	valE := val.(*term.EnumTypeV)
	desc, ok := valE.Desc.(*term.EnumDescType)
	if !ok {
		return false, fmt.Errorf("relation: enum_type descriptor has not resolved to an enum descriptor")
	}
	seen := map[string]bool{}
	for _, n := range desc.VariantNames {
		seen[n] = true
	}
	if len(desc.VariantNames) != 2 || !seen["empty"] || !seen["cons"] {
		return false, fmt.Errorf("relation: enum%v does not spell the tuple-descriptor constructor set", desc.VariantNames)
	}
	return true, nil
}

// enumSupertypeOfTupleDesc would desugar a positional tuple descriptor
// *value* into its enum-descriptor constructor spine. The source marks this
// conversion "nyi"; left as an explicit not-implemented path rather than a
// guess.
func enumSupertypeOfTupleDesc(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, v *VarianceRegistry) (bool, error) {
	return false, fmt.Errorf("relation: enum_desc_type <= tuple_desc is not implemented")
}

func hostTypeTypeSubStar(_ term.QueueCtx, _ *rtctx.Runtime, _ term.Flex, _ *rtctx.Runtime, use term.Flex, _ cause.Cause, _ *VarianceRegistry) (bool, error) {
	s, ok := use.(*term.Star)
	if !ok || s.Depth != 0 {
		return false, fmt.Errorf("relation: host_type_type is only a subtype of star(_,0)")
	}
	return true, nil
}

func starComparer(_ term.QueueCtx, _ *rtctx.Runtime, val term.Flex, _ *rtctx.Runtime, use term.Flex, _ cause.Cause, _ *VarianceRegistry) (bool, error) {
	v, u := val.(*term.Star), use.(*term.Star)
	if v.Level > u.Level || v.Depth < u.Depth {
		return false, fmt.Errorf("relation: star(%d,%d) is not a subtype of star(%d,%d)", v.Level, v.Depth, u.Level, u.Depth)
	}
	return true, nil
}

func hostWrappedComparer(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, v *VarianceRegistry) (bool, error) {
	valW, useW := val.(*term.HostWrappedType), use.(*term.HostWrappedType)
	return true, qc.Queue(valW.Inner, lctx, useW.Inner, rctx, Omega, why)
}

func srelComparer(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, v *VarianceRegistry) (bool, error) {
	valS, useS := val.(*term.SrelType), use.(*term.SrelType)
	return true, qc.Queue(valS.Target, lctx, useS.Target, rctx, Omega, why)
}

func varianceTypeComparer(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, v *VarianceRegistry) (bool, error) {
	valV, useV := val.(*term.VarianceType), use.(*term.VarianceType)
	return true, qc.Queue(valV.Target, lctx, useV.Target, rctx, Omega, why)
}

func hostUserDefinedComparer(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, variances *VarianceRegistry) (bool, error) {
	valH, useH := val.(*term.HostUserDefinedType), use.(*term.HostUserDefinedType)
	if valH.ID != useH.ID {
		return false, fmt.Errorf("relation: host types %q and %q are unrelated", valH.ID, useH.ID)
	}
	if len(valH.Args) != len(useH.Args) {
		return false, fmt.Errorf("relation: host type %q arity mismatch", valH.ID)
	}
	if variances == nil {
		return false, fmt.Errorf("relation: no variance registry available for host type %q", valH.ID)
	}
	vs, err := variances.Lookup(valH.ID)
	if err != nil {
		return false, err
	}
	if len(vs) != len(valH.Args) {
		return false, fmt.Errorf("relation: host type %q declares %d variances for %d arguments", valH.ID, len(vs), len(valH.Args))
	}
	for i, variance := range vs {
		switch variance {
		case Covariant:
			if err := qc.Queue(valH.Args[i], lctx, useH.Args[i], rctx, Omega, why); err != nil {
				return false, err
			}
		case Contravariant:
			if err := qc.Queue(useH.Args[i], rctx, valH.Args[i], lctx, Omega, why); err != nil {
				return false, err
			}
		default:
			if err := qc.Queue(valH.Args[i], lctx, useH.Args[i], rctx, Omega, why); err != nil {
				return false, err
			}
			if err := qc.Queue(useH.Args[i], rctx, valH.Args[i], lctx, Omega, why); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// structuralValueComparer handles the rare case where two fully-evaluated
// data values (rather than types) meet at a head check -- e.g. both sides
// of an obligation turned out to be concrete tuple/record values, as
// happens when a Singleton's witness is compared structurally.
func structuralValueComparer(_ term.QueueCtx, _ *rtctx.Runtime, val term.Flex, _ *rtctx.Runtime, use term.Flex, _ cause.Cause, _ *VarianceRegistry) (bool, error) {
	if term.Equal(val, use) {
		return true, nil
	}
	return false, fmt.Errorf("relation: values are not structurally equal")
}

func hostValueComparer(_ term.QueueCtx, _ *rtctx.Runtime, val term.Flex, _ *rtctx.Runtime, use term.Flex, _ cause.Cause, _ *VarianceRegistry) (bool, error) {
	if term.Equal(val, use) {
		return true, nil
	}
	return false, fmt.Errorf("relation: host values are not equal")
}

// reveal recovers the declared type behind a stuck value where one is
// knowable without the solver: a placeholder carries its binding's declared
// type directly, and a tuple-element access on a placeholder extracts the
// corresponding descriptor component from the placeholder's declared tuple
// type (applying each position's type function to the projections that
// precede it).
func reveal(v term.Flex) (term.Flex, bool) {
	switch v := v.(type) {
	case *term.Free:
		if v.Kind == term.Placeholder && v.Decl != nil {
			return v.Decl, true
		}
	case *term.StuckTupleElementAccess:
		subjTyp, ok := reveal(v.Subject)
		if !ok {
			return nil, false
		}
		tt, ok := subjTyp.(*term.TupleTypeV)
		if !ok {
			return nil, false
		}
		return descComponent(tt.Desc, v.Subject, v.Index)
	}
	return nil, false
}

// descComponent walks a canonical descriptor chain to position i and
// applies that position's type function to the tuple of projections
// preceding it on subject.
func descComponent(desc term.Flex, subject term.Flex, i int) (term.Flex, bool) {
	var fns []*term.Closure
	for {
		switch d := desc.(type) {
		case *term.TupleDescEmpty:
			n := len(fns)
			if i < 0 || i >= n {
				return nil, false
			}
			// fns is outermost-first (last position first); flip to positional order.
			fn := fns[n-1-i]
			prev := make([]term.Flex, i)
			for j := 0; j < i; j++ {
				prev[j] = &term.StuckTupleElementAccess{Subject: subject, Index: j}
			}
			out, err := eval.Apply(fn, &term.TupleValue{Elements: prev}, nil)
			if err != nil {
				return nil, false
			}
			return out, true
		case *term.TupleDescCons:
			fns = append(fns, d.NextFn)
			desc = d.Prev
		default:
			return nil, false
		}
	}
}

// checkConcrete implements spec §4.F's dispatch: dissolve unions on the
// value side and intersections on the use side, fall singletons through to
// their supertype, settle two structurally-equal stuck placeholders, and
// otherwise consult comparerTable by (val.Head(), use.Head()).
func checkConcrete(qc term.QueueCtx, lctx *rtctx.Runtime, val term.Flex, rctx *rtctx.Runtime, use term.Flex, why cause.Cause, variances *VarianceRegistry) (bool, error) {
	if u, ok := val.(*term.UnionType); ok {
		for _, m := range u.Members {
			if err := qc.Queue(m, lctx, use, rctx, Omega, why); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	if i, ok := use.(*term.IntersectionType); ok {
		for _, m := range i.Members {
			if err := qc.Queue(val, lctx, m, rctx, Omega, why); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	if vs, ok := val.(*term.Singleton); ok {
		if us, ok := use.(*term.Singleton); ok {
			if !term.Equal(vs.Witness, us.Witness) {
				return false, fmt.Errorf("relation: singleton witnesses %s and %s differ", vs.Witness, us.Witness)
			}
			return checkConcrete(qc, lctx, vs.Super, rctx, us.Super, why, variances)
		}
		return checkConcrete(qc, lctx, vs.Super, rctx, use, why, variances)
	}
	if us, ok := use.(*term.Singleton); ok {
		// A singleton contains exactly its witness: nothing but the witness
		// itself flows into it.
		if term.Equal(val, us.Witness) {
			return true, nil
		}
		return false, fmt.Errorf("relation: %s is not the witness of %s", val, us)
	}

	_, valStuck := val.(term.Stuck)
	_, useStuck := use.(term.Stuck)
	if valStuck || useStuck {
		if valStuck && useStuck && term.Equal(val, use) {
			return true, nil
		}
		// A stuck placeholder (or a projection out of one) still has a
		// declared type to fall back on: reveal it and retry the check
		// against the revealed type (spec §4.F check_concrete).
		if revealed, ok := reveal(val); ok {
			return checkConcrete(qc, lctx, revealed, rctx, use, why, variances)
		}
		if revealed, ok := reveal(use); ok {
			return checkConcrete(qc, lctx, val, rctx, revealed, why, variances)
		}
		return false, fmt.Errorf("relation: cannot compare stuck terms %s and %s", val, use)
	}

	valStrict, ok1 := val.(term.Strict)
	useStrict, ok2 := use.(term.Strict)
	if !ok1 || !ok2 {
		return false, fmt.Errorf("relation: %T and %T are not comparable strict values", val, use)
	}
	cmp, ok := comparerTable[[2]term.Head{valStrict.Head(), useStrict.Head()}]
	if !ok {
		return false, fmt.Errorf("relation: no comparer registered for (%s, %s)", valStrict.Head(), useStrict.Head())
	}
	return cmp(qc, lctx, val, rctx, use, why, variances)
}
