package term

import (
	"fmt"

	"github.com/corelang/corec/internal/span"
)

// Pi is a dependent function type value: ResultClosure is applied to the
// argument's value to compute the result type at each call site.
type Pi struct {
	Base
	ParamName     string
	ParamType     Flex
	Vis           Visibility
	Pur           Purity
	ResultClosure *Closure
}

func (*Pi) flex()      {}
func (*Pi) strict()    {}
func (*Pi) Head() Head { return HeadPi }
func (p *Pi) String() string {
	return fmt.Sprintf("(%s:%s) -> %s", p.ParamName, p.ParamType, p.ResultClosure)
}

// HostFunctionType is the non-dependent host function type value.
type HostFunctionType struct {
	Base
	Params []Flex
	Pur    Purity
	Result Flex
}

func (*HostFunctionType) flex()      {}
func (*HostFunctionType) strict()    {}
func (*HostFunctionType) Head() Head { return HeadHostFunctionType }
func (h *HostFunctionType) String() string {
	return fmt.Sprintf("host_fn%v -> %s", h.Params, h.Result)
}

// Closure captures only the bindings its body actually uses (built by
// internal/subst, never the caller's whole context -- spec §3.2 invariant).
type Closure struct {
	Base
	ParamName    string
	ParamDebug   span.Name
	Body         Typed
	Capture      []Flex
	CaptureDebug []span.Name
}

func (*Closure) flex()      {}
func (*Closure) strict()    {}
func (*Closure) Head() Head { return HeadClosure }
func (c *Closure) String() string {
	return fmt.Sprintf("closure[%d captures]λ%s. %s", len(c.Capture), c.ParamName, c.Body)
}

// TupleValue is a fully evaluated dependent tuple.
type TupleValue struct {
	Base
	Elements []Flex
}

func (*TupleValue) flex()            {}
func (*TupleValue) strict()          {}
func (*TupleValue) Head() Head       { return HeadTupleValue }
func (t *TupleValue) String() string { return fmt.Sprintf("tuple%v", t.Elements) }

// HostTupleValue is a fully evaluated host tuple (no stuck elements).
type HostTupleValue struct {
	Base
	Elements []Flex
}

func (*HostTupleValue) flex()            {}
func (*HostTupleValue) strict()          {}
func (*HostTupleValue) Head() Head       { return HeadHostTupleValue }
func (h *HostTupleValue) String() string { return fmt.Sprintf("host_tuple%v", h.Elements) }

// RecordValue is a fully evaluated record.
type RecordValue struct {
	Base
	FieldNames []string
	Fields     []Flex
}

func (*RecordValue) flex()            {}
func (*RecordValue) strict()          {}
func (*RecordValue) Head() Head       { return HeadRecordValue }
func (r *RecordValue) String() string { return fmt.Sprintf("record%v", r.FieldNames) }

// EnumValue is a fully evaluated enum value: one variant plus its payload.
type EnumValue struct {
	Base
	Variant string
	Payload Flex
}

func (*EnumValue) flex()            {}
func (*EnumValue) strict()          {}
func (*EnumValue) Head() Head       { return HeadEnumValue }
func (e *EnumValue) String() string { return fmt.Sprintf("%s(%s)", e.Variant, e.Payload) }

// OperativeValue is a first-class operative (macro-like transformer handed
// to the core from the parser/operative layer as an opaque callable; the
// core never inspects its definition, only applies it -- spec §1 "macro
// framework ... external collaborators").
type OperativeValue struct {
	Base
	Name string
	Call func(ctx OperativeCallCtx, arg Flex) (Flex, error)
}

// OperativeCallCtx is the minimal surface an operative needs back from the
// evaluator; kept as an interface so internal/term has no dependency on
// internal/eval.
type OperativeCallCtx interface {
	Apply(fn Flex, arg Flex) (Flex, error)
}

func (*OperativeValue) flex()            {}
func (*OperativeValue) strict()          {}
func (*OperativeValue) Head() Head       { return HeadOperativeValue }
func (o *OperativeValue) String() string { return fmt.Sprintf("<operative:%s>", o.Name) }

// OperativeType classifies operatives at the type level; left largely
// opaque per spec §9's note that operative subtype rules are an explicit
// not-implemented path.
type OperativeType struct {
	Base
	Name string
}

func (*OperativeType) flex()            {}
func (*OperativeType) strict()          {}
func (*OperativeType) Head() Head       { return HeadOperativeType }
func (o *OperativeType) String() string { return fmt.Sprintf("OperativeType(%s)", o.Name) }

// TupleTypeV is the value-level tuple type: a type whose witness is its
// descriptor.
type TupleTypeV struct {
	Base
	Desc Flex
}

func (*TupleTypeV) flex()            {}
func (*TupleTypeV) strict()          {}
func (*TupleTypeV) Head() Head       { return HeadTupleType }
func (t *TupleTypeV) String() string { return fmt.Sprintf("TupleType(%s)", t.Desc) }

// TupleDescEmpty and TupleDescCons together spell the canonical tuple
// descriptor: a chain of cons(prev_desc, next_element_type_fn) terminated
// by empty (glossary "Tuple descriptor").
type TupleDescEmpty struct{ Base }

func (*TupleDescEmpty) flex()          {}
func (*TupleDescEmpty) strict()        {}
func (*TupleDescEmpty) Head() Head     { return HeadTupleDesc }
func (*TupleDescEmpty) String() string { return "empty" }

type TupleDescCons struct {
	Base
	Prev   Flex     // previous descriptor
	NextFn *Closure // element type as a function of the previous elements' tuple value
}

func (*TupleDescCons) flex()            {}
func (*TupleDescCons) strict()          {}
func (*TupleDescCons) Head() Head       { return HeadTupleDesc }
func (t *TupleDescCons) String() string { return fmt.Sprintf("cons(%s, %s)", t.Prev, t.NextFn) }

// TupleDescTypeV is the type of canonical tuple descriptors whose element
// types live in Target; covariant in Target (spec §4.F).
type TupleDescTypeV struct {
	Base
	Target Flex
}

func (*TupleDescTypeV) flex()            {}
func (*TupleDescTypeV) strict()          {}
func (*TupleDescTypeV) Head() Head       { return HeadTupleDescType }
func (t *TupleDescTypeV) String() string { return fmt.Sprintf("TupleDescType(%s)", t.Target) }

// EnumTypeV is the value-level enum type.
type EnumTypeV struct {
	Base
	Desc Flex
}

func (*EnumTypeV) flex()            {}
func (*EnumTypeV) strict()          {}
func (*EnumTypeV) Head() Head       { return HeadEnumType }
func (e *EnumTypeV) String() string { return fmt.Sprintf("EnumType(%s)", e.Desc) }

// EnumDescType maps variant names to variant types (glossary "Enum
// descriptor").
type EnumDescType struct {
	Base
	VariantNames []string
	VariantTypes []Flex
}

func (*EnumDescType) flex()            {}
func (*EnumDescType) strict()          {}
func (*EnumDescType) Head() Head       { return HeadEnumDescType }
func (e *EnumDescType) String() string { return fmt.Sprintf("EnumDesc%v", e.VariantNames) }

// RecordTypeV is the value-level record type.
type RecordTypeV struct {
	Base
	Desc Flex
}

func (*RecordTypeV) flex()            {}
func (*RecordTypeV) strict()          {}
func (*RecordTypeV) Head() Head       { return HeadRecordType }
func (r *RecordTypeV) String() string { return fmt.Sprintf("RecordType(%s)", r.Desc) }

// RecordDescType maps field names to field type functions (each may depend
// on previously-bound fields).
type RecordDescType struct {
	Base
	FieldNames []string
	FieldFns   []*Closure
}

func (*RecordDescType) flex()            {}
func (*RecordDescType) strict()          {}
func (*RecordDescType) Head() Head       { return HeadRecordDescType }
func (r *RecordDescType) String() string { return fmt.Sprintf("RecordDesc%v", r.FieldNames) }

// HostTypeType is the type of host types themselves; subtype of star(_,0)
// per spec §4.F.
type HostTypeType struct{ Base }

func (*HostTypeType) flex()          {}
func (*HostTypeType) strict()        {}
func (*HostTypeType) Head() Head     { return HeadHostTypeType }
func (*HostTypeType) String() string { return "HostTypeType" }

// HostNumberType, HostStringType, HostBoolType are the built-in host
// primitive types, compared by identity in the comparer table.
type HostNumberType struct{ Base }

func (*HostNumberType) flex()          {}
func (*HostNumberType) strict()        {}
func (*HostNumberType) Head() Head     { return HeadHostNumberType }
func (*HostNumberType) String() string { return "Number" }

type HostStringType struct{ Base }

func (*HostStringType) flex()          {}
func (*HostStringType) strict()        {}
func (*HostStringType) Head() Head     { return HeadHostStringType }
func (*HostStringType) String() string { return "String" }

type HostBoolType struct{ Base }

func (*HostBoolType) flex()          {}
func (*HostBoolType) strict()        {}
func (*HostBoolType) Head() Head     { return HeadHostBoolType }
func (*HostBoolType) String() string { return "Bool" }

// HostUserDefinedType is a host type family identified by an id; its
// subtyping is looked up in a per-id variance declaration
// (internal/relation.VarianceRegistry, spec §4.F).
type HostUserDefinedType struct {
	Base
	ID   string
	Args []Flex
}

func (*HostUserDefinedType) flex()            {}
func (*HostUserDefinedType) strict()          {}
func (*HostUserDefinedType) Head() Head       { return HeadHostUserDefinedType }
func (h *HostUserDefinedType) String() string { return fmt.Sprintf("%s%v", h.ID, h.Args) }

// HostWrappedType is covariant in Inner (spec §4.F).
type HostWrappedType struct {
	Base
	Inner Flex
}

func (*HostWrappedType) flex()            {}
func (*HostWrappedType) strict()          {}
func (*HostWrappedType) Head() Head       { return HeadHostWrappedType }
func (h *HostWrappedType) String() string { return fmt.Sprintf("Wrapped(%s)", h.Inner) }

// SrelType, VarianceType are covariant in Target (spec §4.F); they
// describe a subtype relation and a variance declaration respectively as
// first-class values.
type SrelType struct {
	Base
	Target Flex
}

func (*SrelType) flex()            {}
func (*SrelType) strict()          {}
func (*SrelType) Head() Head       { return HeadSrelType }
func (s *SrelType) String() string { return fmt.Sprintf("Srel(%s)", s.Target) }

type VarianceType struct {
	Base
	Target Flex
}

func (*VarianceType) flex()            {}
func (*VarianceType) strict()          {}
func (*VarianceType) Head() Head       { return HeadVarianceType }
func (v *VarianceType) String() string { return fmt.Sprintf("Variance(%s)", v.Target) }

// UnionType dissolves on the value side of check_concrete (spec §4.F).
type UnionType struct {
	Base
	Members []Flex
}

func (*UnionType) flex()            {}
func (*UnionType) strict()          {}
func (*UnionType) Head() Head       { return HeadUnionType }
func (u *UnionType) String() string { return fmt.Sprintf("∪%v", u.Members) }

// IntersectionType dissolves on the use side of check_concrete.
type IntersectionType struct {
	Base
	Members []Flex
}

func (*IntersectionType) flex()            {}
func (*IntersectionType) strict()          {}
func (*IntersectionType) Head() Head       { return HeadIntersectionType }
func (i *IntersectionType) String() string { return fmt.Sprintf("∩%v", i.Members) }

// Singleton ⟨T, v⟩ is a subtype of T containing exactly the value v (spec
// §3.2).
type Singleton struct {
	Base
	Super   Flex
	Witness Flex
}

func (*Singleton) flex()            {}
func (*Singleton) strict()          {}
func (*Singleton) Head() Head       { return HeadSingleton }
func (s *Singleton) String() string { return fmt.Sprintf("⟨%s,%s⟩", s.Super, s.Witness) }

// Star is a universe `star(level, depth)` in the explicit star-level/depth
// lattice (spec §4.F, §9 "no universe polymorphism beyond this lattice").
type Star struct {
	Base
	Level int
	Depth int
}

func (*Star) flex()            {}
func (*Star) strict()          {}
func (*Star) Head() Head       { return HeadStar }
func (s *Star) String() string { return fmt.Sprintf("star(%d,%d)", s.Level, s.Depth) }

// Prop is the impredicative proposition universe.
type Prop struct{ Base }

func (*Prop) flex()          {}
func (*Prop) strict()        {}
func (*Prop) Head() Head     { return HeadProp }
func (*Prop) String() string { return "Prop" }

// Level is a first-class level value (the result of level arithmetic,
// spec inferrable "level operations").
type Level struct {
	Base
	N int
}

func (*Level) flex()            {}
func (*Level) strict()          {}
func (*Level) Head() Head       { return HeadLevel }
func (l *Level) String() string { return fmt.Sprintf("level(%d)", l.N) }

// ProgramTypeV is `program_type(result, effects)` at the value level,
// covariant in Result, with descriptors compared under EffectRowRelation
// (spec §4.F).
type ProgramTypeV struct {
	Base
	Result  Flex
	Effects Flex
}

func (*ProgramTypeV) flex()            {}
func (*ProgramTypeV) strict()          {}
func (*ProgramTypeV) Head() Head       { return HeadProgramType }
func (p *ProgramTypeV) String() string { return fmt.Sprintf("Program[%s;%s]", p.Result, p.Effects) }

// EffectRow is a set of effect ids; EffectRowRelation requires the use
// side's component set to be a superset of the value side's (spec §4.F).
type EffectRow struct {
	Base
	Effects []string
}

func (*EffectRow) flex()            {}
func (*EffectRow) strict()          {}
func (*EffectRow) Head() Head       { return HeadEffectRow }
func (e *EffectRow) String() string { return fmt.Sprintf("{%v}", e.Effects) }

// EffectElem is a single named effect, used as an element of an EffectRow
// when it must be manipulated independently (e.g. during row composition).
type EffectElem struct {
	Base
	Name string
}

func (*EffectElem) flex()            {}
func (*EffectElem) strict()          {}
func (*EffectElem) Head() Head       { return HeadEffectElem }
func (e *EffectElem) String() string { return e.Name }

// Range packages lower/upper bounds discovered while interning a node in
// the solver's node table (spec §4.G "check_value"); every bound is queued
// as a sub-constraint when the Range node itself is inserted.
type Range struct {
	Base
	Lower []Flex
	Upper []Flex
	Rel   RelationRef
}

func (*Range) flex()            {}
func (*Range) strict()          {}
func (*Range) Head() Head       { return HeadRange }
func (r *Range) String() string { return fmt.Sprintf("range[%d..%d]", len(r.Lower), len(r.Upper)) }

// HostValue wraps a concrete host-language value (number, string, bool,
// structured JSON-ish data) produced by host_intrinsic/builtin evaluation.
type HostValue struct {
	Base
	Kind HostValueKind
	Num  float64
	Str  string
	Bool bool
}

type HostValueKind uint8

const (
	HostNumber HostValueKind = iota
	HostString
	HostBool
)

func (*HostValue) flex()      {}
func (*HostValue) strict()    {}
func (*HostValue) Head() Head { return HeadHostValue }
func (h *HostValue) String() string {
	switch h.Kind {
	case HostNumber:
		return fmt.Sprintf("%g", h.Num)
	case HostString:
		return fmt.Sprintf("%q", h.Str)
	default:
		return fmt.Sprintf("%t", h.Bool)
	}
}
