package term

import (
	"fmt"

	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/meta"
	"github.com/corelang/corec/internal/span"
)

// TVar is a typed bound-variable occurrence.
type TVar struct {
	Base
	Index int
}

func (*TVar) typed()           {}
func (v *TVar) String() string { return fmt.Sprintf("var[%d:%s]", v.Index, v.At.Text) }

// TApp is typed function application.
type TApp struct {
	Base
	Fn  Typed
	Arg Typed
}

func (*TApp) typed()           {}
func (a *TApp) String() string { return fmt.Sprintf("%s(%s)", a.Fn, a.Arg) }

// TLet is a typed non-recursive let.
type TLet struct {
	Base
	Name string
	Expr Typed
	Body Typed
}

func (*TLet) typed()           {}
func (l *TLet) String() string { return fmt.Sprintf("let %s = %s in %s", l.Name, l.Expr, l.Body) }

// Lambda is a typed lambda whose body is evaluated against the *whole*
// ambient context at the definition site, before closure construction
// (internal/subst) rewrites it into a LambdaExplicitCapture. Surviving
// Lambda nodes (not yet passed through closure construction) are only ever
// produced transiently by the elaborator.
type Lambda struct {
	Base
	ParamName string
	Body      Typed
}

func (*Lambda) typed()           {}
func (l *Lambda) String() string { return fmt.Sprintf("λ%s. %s", l.ParamName, l.Body) }

// LambdaExplicitCapture is the sole mechanism by which closures hold onto
// bindings (spec §4.D): CaptureExpr computes, in the *defining* context,
// exactly the tuple of bindings the body actually uses; Body is the original
// body with its indices remapped so the captures occupy indices
// 1..len(CaptureNames) and the parameter the next index (no tuple-elim is
// emitted; evaluation rebuilds that context from the captured values).
type LambdaExplicitCapture struct {
	Base
	ParamName     string
	ParamDebug    span.Name
	CaptureExpr   Typed
	CaptureNames  []string
	CaptureDebugs []span.Name
	Body          Typed
}

func (*LambdaExplicitCapture) typed() {}
func (l *LambdaExplicitCapture) String() string {
	return fmt.Sprintf("λ[%v]%s. %s", l.CaptureNames, l.ParamName, l.Body)
}

// TPi is the typed spelling of a dependent function type: ParamType for
// the domain and Result, a closure-producing term (normally a
// LambdaExplicitCapture), for the codomain as a function of the argument.
// It exists so a pi value mentioning its enclosing binders can be quoted
// back to syntax and re-evaluated under a different context -- which is
// exactly what happens when a dependent result type is applied at a call
// site.
type TPi struct {
	Base
	ParamName  string
	ParamDebug span.Name
	ParamType  Typed
	Vis        Visibility
	Pur        Purity
	Result     Typed
}

func (*TPi) typed() {}
func (p *TPi) String() string {
	return fmt.Sprintf("(%s:%s) -> %s", p.ParamName, p.ParamType, p.Result)
}

// TTupleCons is a typed dependent tuple constructor.
type TTupleCons struct {
	Base
	Elements []Typed
}

func (*TTupleCons) typed()           {}
func (t *TTupleCons) String() string { return fmt.Sprintf("tuple%v", t.Elements) }

// TupleElementAccess projects element Index out of Subject.
type TupleElementAccess struct {
	Base
	Subject Typed
	Index   int
}

func (*TupleElementAccess) typed()           {}
func (t *TupleElementAccess) String() string { return fmt.Sprintf("%s.%d", t.Subject, t.Index) }

// TTupleElim destructures a tuple subject, binding Names in Body.
type TTupleElim struct {
	Base
	Names   []string
	Subject Typed
	Body    Typed
}

func (*TTupleElim) typed() {}
func (t *TTupleElim) String() string {
	return fmt.Sprintf("let %v = %s in %s", t.Names, t.Subject, t.Body)
}

// TTupleType is a typed tuple type expression (its value is the evaluated
// descriptor).
type TTupleType struct {
	Base
	Desc Typed
}

func (*TTupleType) typed()           {}
func (t *TTupleType) String() string { return fmt.Sprintf("TupleType(%s)", t.Desc) }

// TRecordCons is a typed record constructor.
type TRecordCons struct {
	Base
	FieldNames []string
	Fields     []Typed
}

func (*TRecordCons) typed()           {}
func (r *TRecordCons) String() string { return fmt.Sprintf("record%v", r.FieldNames) }

// RecordFieldAccessT projects a named field out of Subject.
type RecordFieldAccessT struct {
	Base
	Subject Typed
	Field   string
}

func (*RecordFieldAccessT) typed()           {}
func (r *RecordFieldAccessT) String() string { return fmt.Sprintf("%s.%s", r.Subject, r.Field) }

// TRecordElim destructures a record subject, binding the requested fields
// in Body.
type TRecordElim struct {
	Base
	FieldNames []string
	Subject    Typed
	Body       Typed
}

func (*TRecordElim) typed() {}
func (r *TRecordElim) String() string {
	return fmt.Sprintf("let {%v} = %s in %s", r.FieldNames, r.Subject, r.Body)
}

// TEnumCons is a typed enum constructor for a named variant.
type TEnumCons struct {
	Base
	Variant string
	Payload Typed
}

func (*TEnumCons) typed()           {}
func (e *TEnumCons) String() string { return fmt.Sprintf("%s(%s)", e.Variant, e.Payload) }

// TEnumCase is a typed enum eliminator.
type TEnumCase struct {
	Base
	Subject Typed
	Arms    []TEnumArm
}

type TEnumArm struct {
	Variant   string
	ParamName string
	Body      Typed
}

func (*TEnumCase) typed()           {}
func (e *TEnumCase) String() string { return fmt.Sprintf("case %s of %v", e.Subject, e.Arms) }

// EnumAbsurd discharges an enum_case arm for a variant statically known to
// be unreachable (the descriptor proves the variant set is empty at this
// point).
type EnumAbsurd struct {
	Base
	Subject Typed
}

func (*EnumAbsurd) typed()           {}
func (e *EnumAbsurd) String() string { return fmt.Sprintf("absurd(%s)", e.Subject) }

// TEnumType is a typed enum type expression.
type TEnumType struct {
	Base
	VariantNames []string
	VariantTypes []Typed
}

func (*TEnumType) typed()           {}
func (e *TEnumType) String() string { return fmt.Sprintf("EnumType%v", e.VariantNames) }

// HostWrap lifts a host value into its wrapped-type representation.
type HostWrap struct {
	Base
	Inner Typed
}

func (*HostWrap) typed()           {}
func (h *HostWrap) String() string { return fmt.Sprintf("wrap(%s)", h.Inner) }

// HostUnwrap extracts a host value from its wrapped-type representation.
type HostUnwrap struct {
	Base
	Inner Typed
}

func (*HostUnwrap) typed()           {}
func (h *HostUnwrap) String() string { return fmt.Sprintf("unwrap(%s)", h.Inner) }

// HostIntFold folds Fun from Count down to 1, threading Acc (spec §4.C).
type HostIntFold struct {
	Base
	Count Typed
	Acc   Typed
	Fun   Typed
}

func (*HostIntFold) typed() {}
func (h *HostIntFold) String() string {
	return fmt.Sprintf("int_fold(%s,%s,%s)", h.Count, h.Acc, h.Fun)
}

// HostIf evaluates both branches when Subject is stuck so the unchosen
// branch remains observable to the solver (spec §4.C).
type HostIf struct {
	Base
	Subject Typed
	Then    Typed
	Else    Typed
}

func (*HostIf) typed() {}
func (h *HostIf) String() string {
	return fmt.Sprintf("if %s then %s else %s", h.Subject, h.Then, h.Else)
}

// THostIntrinsic is the typed spelling of a compiled host intrinsic.
type THostIntrinsic struct {
	Base
	Source string
	Type   Typed
}

func (*THostIntrinsic) typed()           {}
func (h *THostIntrinsic) String() string { return fmt.Sprintf("host_intrinsic(%q)", h.Source) }

// THostFunctionType is the typed host function type expression.
type THostFunctionType struct {
	Base
	Params []Typed
	Result Typed
}

func (*THostFunctionType) typed() {}
func (h *THostFunctionType) String() string {
	return fmt.Sprintf("host_fn%v -> %s", h.Params, h.Result)
}

// TProgramSequence is the typed spelling of an effect-program bind step.
type TProgramSequence struct {
	Base
	First     Typed
	Name      string
	NameDebug span.Name
	Then      Typed
}

func (*TProgramSequence) typed() {}
func (p *TProgramSequence) String() string {
	return fmt.Sprintf("%s >>= \\%s. %s", p.First, p.Name, p.Then)
}

// TProgramEnd lifts a pure value into a program.
type TProgramEnd struct {
	Base
	Value Typed
}

func (*TProgramEnd) typed()           {}
func (p *TProgramEnd) String() string { return fmt.Sprintf("pure(%s)", p.Value) }

// TProgramType is the typed `program_type(result, effects)`.
type TProgramType struct {
	Base
	Result  Typed
	Effects Typed
}

func (*TProgramType) typed()           {}
func (p *TProgramType) String() string { return fmt.Sprintf("Program[%s;%s]", p.Result, p.Effects) }

// Lit embeds an already-computed value directly into a typed term. The
// elaborator produces it (quote, constant descriptor closures) when a value
// cannot be re-expressed structurally (e.g. a host number literal) and must
// simply be quoted back.
type Lit struct {
	Base
	Value Flex
}

func (*Lit) typed()           {}
func (l *Lit) String() string { return l.Value.String() }

// MetaRef is a direct reference to a metavariable (distinct from
// ConstrainedType, which carries a *set* of sliced constraints for a
// metavariable that is escaping its defining scope).
type MetaRef struct {
	Base
	MV meta.Var
}

func (*MetaRef) typed()           {}
func (m *MetaRef) String() string { return m.MV.String() }

// UniqueTok is the typed spelling of an opaque unique witness: quoting a
// Free of kind Unique produces it, and evaluating it gives back that Free
// with the same Token.
type UniqueTok struct {
	Base
	Token uint64
}

func (*UniqueTok) typed()           {}
func (u *UniqueTok) String() string { return fmt.Sprintf("unique#%d", u.Token) }

// TSingleton is the typed spelling of a singleton type ⟨T, v⟩.
type TSingleton struct {
	Base
	Super   Typed
	Witness Typed
}

func (*TSingleton) typed()           {}
func (s *TSingleton) String() string { return fmt.Sprintf("⟨%s,%s⟩", s.Super, s.Witness) }

// TUnionType is the typed spelling of a union type.
type TUnionType struct {
	Base
	Members []Typed
}

func (*TUnionType) typed()           {}
func (u *TUnionType) String() string { return fmt.Sprintf("∪%v", u.Members) }

// TIntersectionType is the typed spelling of an intersection type.
type TIntersectionType struct {
	Base
	Members []Typed
}

func (*TIntersectionType) typed()           {}
func (i *TIntersectionType) String() string { return fmt.Sprintf("∩%v", i.Members) }

// ConstraintElemKind distinguishes the six ways a sliced constraint can
// relate the escaping metavariable to its other endpoint (spec §4.G): the
// three edge families, crossed with which endpoint the escaping
// metavariable was.
type ConstraintElemKind uint8

const (
	SlicedConstrain ConstraintElemKind = iota // mv <=R other
	ConstrainSliced                           // other <=R mv
	SlicedLeftCall                            // (mv arg) <=R other
	LeftCallSliced                            // (other arg) <=R mv
	SlicedRightCall                           // mv <=R (other arg)
	RightCallSliced                           // other <=R (mv arg)
)

// ConstraintElem is one edge captured during metavariable slicing
// (internal/solver.SliceConstraintsFor), to be re-registered once the
// ConstrainedType term is evaluated against a freshly-allocated
// metavariable in the outer scope.
type ConstraintElem struct {
	Kind  ConstraintElemKind
	Other Flex
	Rel   RelationRef
	Arg   Flex // only meaningful for the *Call* kinds
	Why   cause.Cause
}

// ConstrainedType is a deferred metavariable: a fresh metavariable is
// minted when it is evaluated, and every Elem is re-registered as a real
// constraint against that fresh metavariable (spec §4.G).
type ConstrainedType struct {
	Base
	Elems []ConstraintElem
}

func (*ConstrainedType) typed() {}
func (c *ConstrainedType) String() string {
	return fmt.Sprintf("constrained_type(%d constraints)", len(c.Elems))
}
