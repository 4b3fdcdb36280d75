package term

import (
	"fmt"

	"github.com/corelang/corec/internal/span"
)

// Visibility marks a pi/lambda parameter as written by the user (Explicit)
// or eligible for implicit-argument elaboration (Implicit, spec §4.E).
type Visibility uint8

const (
	Explicit Visibility = iota
	Implicit
)

// Purity marks whether a function may run an effectful program when
// applied; it participates in the pi/pi subtype comparer (spec §4.F).
type Purity uint8

const (
	Pure Purity = iota
	Effectful
)

// Var is a bound-variable occurrence, resolved by index against the
// typechecking/runtime context.
type Var struct {
	Base
	Index int
}

func (*Var) inferrable()      {}
func (v *Var) String() string { return fmt.Sprintf("var[%d:%s]", v.Index, v.At.Text) }

// AnnotatedLambda is `λ(name : ParamType). Body` with an explicit parameter
// type annotation.
type AnnotatedLambda struct {
	Base
	ParamName  string
	ParamDebug span.Name
	ParamType  Checkable
	Vis        Visibility
	Pur        Purity
	Body       Inferrable
}

func (*AnnotatedLambda) inferrable() {}
func (l *AnnotatedLambda) String() string {
	return fmt.Sprintf("λ(%s:%s). %s", l.ParamName, l.ParamType, l.Body)
}

// IPi is a dependent function type `(name : ParamType) -> ResultType` where
// ResultType may refer to name.
type IPi struct {
	Base
	ParamName  string
	ParamDebug span.Name
	ParamType  Inferrable
	Vis        Visibility
	Pur        Purity
	Result     Inferrable
}

func (*IPi) inferrable()      {}
func (p *IPi) String() string { return fmt.Sprintf("(%s:%s) -> %s", p.ParamName, p.ParamType, p.Result) }

// App is function application; while the head's pi parameter is implicit
// the elaborator invents metavariables and reapplies (spec §4.E).
type App struct {
	Base
	Fn  Inferrable
	Arg Checkable
}

func (*App) inferrable()      {}
func (a *App) String() string { return fmt.Sprintf("%s(%s)", a.Fn, a.Arg) }

// TupleCons builds a dependent tuple; later elements may refer to the
// values of earlier ones.
type TupleCons struct {
	Base
	Elements []Checkable
}

func (*TupleCons) inferrable()      {}
func (t *TupleCons) String() string { return fmt.Sprintf("tuple%v", t.Elements) }

// TupleElim destructures a tuple subject, binding Names to its elements in
// Body. The subject's type is speculated as tuple_type, then host_tuple_type
// (spec §4.E "Tuple-elim dual path").
type TupleElim struct {
	Base
	Names      []string
	NameDebugs []span.Name
	Subject    Inferrable
	Body       Inferrable
}

func (*TupleElim) inferrable() {}
func (t *TupleElim) String() string {
	return fmt.Sprintf("let %v = %s in %s", t.Names, t.Subject, t.Body)
}

// TupleType is the inferrable spelling of a tuple type; its descriptor is
// checked against a fresh universe metavariable (spec §4.E).
type TupleType struct {
	Base
	Desc Checkable
}

func (*TupleType) inferrable()      {}
func (t *TupleType) String() string { return fmt.Sprintf("TupleType(%s)", t.Desc) }

// RecordCons builds a record value; fields are elaborated in declaration
// order.
type RecordCons struct {
	Base
	FieldNames []string
	Fields     []Checkable
}

func (*RecordCons) inferrable()      {}
func (r *RecordCons) String() string { return fmt.Sprintf("record%v", r.FieldNames) }

// RecordElim requires the subject's type to already be a record_type (no
// speculation, unlike TupleElim) and extends the context with each
// requested field.
type RecordElim struct {
	Base
	FieldNames []string
	NameDebugs []span.Name
	Subject    Inferrable
	Body       Inferrable
}

func (*RecordElim) inferrable() {}
func (r *RecordElim) String() string {
	return fmt.Sprintf("let {%v} = %s in %s", r.FieldNames, r.Subject, r.Body)
}

// EnumCons constructs an enum value for a named variant.
type EnumCons struct {
	Base
	Variant string
	Payload Checkable
}

func (*EnumCons) inferrable()      {}
func (e *EnumCons) String() string { return fmt.Sprintf("%s(%s)", e.Variant, e.Payload) }

// EnumCase elaborates an enum_type metavariable per variant, then joins arm
// result types with union_type (spec §4.E).
type EnumCase struct {
	Base
	Subject Inferrable
	Arms    []EnumArm
}

type EnumArm struct {
	Variant    string
	ParamName  string
	ParamDebug span.Name
	Body       Inferrable
}

func (*EnumCase) inferrable()      {}
func (e *EnumCase) String() string { return fmt.Sprintf("case %s of %v", e.Subject, e.Arms) }

// EnumType is the inferrable spelling of an enum type, keyed by a
// variant-name -> type-expression descriptor (spec §4.E).
type EnumType struct {
	Base
	VariantNames []string
	VariantTypes []Checkable
}

func (*EnumType) inferrable()      {}
func (e *EnumType) String() string { return fmt.Sprintf("EnumType%v", e.VariantNames) }

// HostIntrinsic compiles a host source string, memoised by source text
// (spec §4.C).
type HostIntrinsic struct {
	Base
	Source   Checkable
	TypeExpr Inferrable
}

func (*HostIntrinsic) inferrable()      {}
func (h *HostIntrinsic) String() string { return fmt.Sprintf("host_intrinsic(%s)", h.Source) }

// IHostFunctionType is the host analogue of IPi: a non-dependent function
// type over host values.
type IHostFunctionType struct {
	Base
	Params []Inferrable
	Pur    Purity
	Result Inferrable
}

func (*IHostFunctionType) inferrable()      {}
func (h *IHostFunctionType) String() string { return fmt.Sprintf("host_fn%v -> %s", h.Params, h.Result) }

// LevelOp represents level arithmetic: star-level and depth adjustments
// used by the universe lattice (spec §4.F "star(la,da) vs star(lb,db)").
type LevelOp struct {
	Base
	Op   string // "succ", "max", "lit"
	Args []Inferrable
	Lit  int
}

func (*LevelOp) inferrable()      {}
func (l *LevelOp) String() string { return fmt.Sprintf("level.%s%v", l.Op, l.Args) }

// Let is non-recursive: infer Expr, extend the context with its value and
// type, infer Body.
type Let struct {
	Base
	Name      string
	NameDebug span.Name
	Expr      Inferrable
	Body      Inferrable
}

func (*Let) inferrable()      {}
func (l *Let) String() string { return fmt.Sprintf("let %s = %s in %s", l.Name, l.Expr, l.Body) }

// ProgramSequence is one step of an effect program: bind the (possibly
// effectful) result of First under Name, then run Then.
type ProgramSequence struct {
	Base
	First     Inferrable
	Name      string
	NameDebug span.Name
	Then      Inferrable
}

func (*ProgramSequence) inferrable() {}
func (p *ProgramSequence) String() string {
	return fmt.Sprintf("%s >>= \\%s. %s", p.First, p.Name, p.Then)
}

// ProgramEnd lifts a pure value into a program.
type ProgramEnd struct {
	Base
	Value Inferrable
}

func (*ProgramEnd) inferrable()      {}
func (p *ProgramEnd) String() string { return fmt.Sprintf("pure(%s)", p.Value) }

// ProgramType is `program_type(result, effectRow)`.
type ProgramType struct {
	Base
	Result  Inferrable
	Effects Inferrable
}

func (*ProgramType) inferrable()      {}
func (p *ProgramType) String() string { return fmt.Sprintf("Program[%s;%s]", p.Result, p.Effects) }

// If is a host-boolean conditional: the subject is checked at the host
// bool type and both branches are inferred into one shared metavariable,
// which is the whole expression's type.
type If struct {
	Base
	Subject Checkable
	Then    Inferrable
	Else    Inferrable
}

func (*If) inferrable()      {}
func (i *If) String() string { return fmt.Sprintf("if %s then %s else %s", i.Subject, i.Then, i.Else) }

// Annotated is `(Expr : Type)`: infer Type, check Expr against it.
type Annotated struct {
	Base
	Expr Checkable
	Type Inferrable
}

func (*Annotated) inferrable()      {}
func (a *Annotated) String() string { return fmt.Sprintf("(%s : %s)", a.Expr, a.Type) }

// AlreadyTyped wraps a Typed term so it can flow back through infer without
// re-elaboration (used by the solver when re-registering sliced
// constraints, spec §4.G).
type AlreadyTyped struct {
	Base
	Type Strict
	Term Typed
}

func (*AlreadyTyped) inferrable()      {}
func (a *AlreadyTyped) String() string { return fmt.Sprintf("already_typed(%s)", a.Term) }
