package term

import (
	"fmt"

	"github.com/corelang/corec/internal/meta"
)

// FreeKind distinguishes the two identities a free variable can have
// (glossary "Placeholder" / "Unique").
type FreeKind uint8

const (
	Placeholder FreeKind = iota
	Unique
)

// Free is a computation blocked on an unresolved binding: either a
// placeholder (an index into a typechecking context) or a unique token (an
// opaque witness minted for parametric reasoning, e.g. by FunctionRelation).
type Free struct {
	Base
	Kind  FreeKind
	Index int    // meaningful iff Kind == Placeholder
	Token uint64 // meaningful iff Kind == Unique
	Decl  Flex   // the binding's declared type, set on placeholders so a head check can reveal it; ignored by Equal
}

func (*Free) flex()  {}
func (*Free) stuck() {}
func (f *Free) String() string {
	if f.Kind == Unique {
		return fmt.Sprintf("unique#%d", f.Token)
	}
	return fmt.Sprintf("free[%d:%s]", f.Index, f.At.Text)
}

// Application is a stuck function application `f x`.
type Application struct {
	Base
	Fn  Flex
	Arg Flex
}

func (*Application) flex()            {}
func (*Application) stuck()           {}
func (a *Application) String() string { return fmt.Sprintf("%s(%s)", a.Fn, a.Arg) }

// StuckTupleElementAccess projects a position out of a stuck tuple value.
type StuckTupleElementAccess struct {
	Base
	Subject Flex
	Index   int
}

func (*StuckTupleElementAccess) flex()            {}
func (*StuckTupleElementAccess) stuck()           {}
func (t *StuckTupleElementAccess) String() string { return fmt.Sprintf("%s.%d", t.Subject, t.Index) }

// StuckRecordFieldAccess projects a field out of a stuck record value.
type StuckRecordFieldAccess struct {
	Base
	Subject Flex
	Field   string
}

func (*StuckRecordFieldAccess) flex()            {}
func (*StuckRecordFieldAccess) stuck()           {}
func (r *StuckRecordFieldAccess) String() string { return fmt.Sprintf("%s.%s", r.Subject, r.Field) }

// HostApplication is a stuck application of a host function.
type HostApplication struct {
	Base
	Fn  Flex
	Arg Flex
}

func (*HostApplication) flex()            {}
func (*HostApplication) stuck()           {}
func (h *HostApplication) String() string { return fmt.Sprintf("host(%s)(%s)", h.Fn, h.Arg) }

// HostTuple is stuck iff exactly one interior element is stuck: everything
// in Prefix is a concrete host value, Middle is the stuck element, and
// everything in Suffix is flex (spec §3.2 invariant).
type HostTuple struct {
	Base
	Prefix []*HostValue
	Middle Flex
	Suffix []Flex
}

func (*HostTuple) flex()  {}
func (*HostTuple) stuck() {}
func (h *HostTuple) String() string {
	return fmt.Sprintf("host_tuple(%v, %s, %v)", h.Prefix, h.Middle, h.Suffix)
}

// StuckHostWrap/StuckHostUnwrap mirror HostWrap/HostUnwrap when their
// operand has not yet reduced to a concrete host value.
type StuckHostWrap struct {
	Base
	Inner Flex
}

func (*StuckHostWrap) flex()            {}
func (*StuckHostWrap) stuck()           {}
func (s *StuckHostWrap) String() string { return fmt.Sprintf("wrap(%s)", s.Inner) }

type StuckHostUnwrap struct {
	Base
	Inner Flex
}

func (*StuckHostUnwrap) flex()            {}
func (*StuckHostUnwrap) stuck()           {}
func (s *StuckHostUnwrap) String() string { return fmt.Sprintf("unwrap(%s)", s.Inner) }

// StuckHostIntFold is produced when host_int_fold's count has not reduced
// to a concrete integer (spec §4.C).
type StuckHostIntFold struct {
	Base
	Count Flex
	Acc   Flex
	Fun   Flex
}

func (*StuckHostIntFold) flex()  {}
func (*StuckHostIntFold) stuck() {}
func (s *StuckHostIntFold) String() string {
	return fmt.Sprintf("int_fold(%s,%s,%s)", s.Count, s.Acc, s.Fun)
}

// StuckHostIf is produced when host_if's subject is stuck; both branch
// values are retained so the solver can observe either one (spec §4.C).
type StuckHostIf struct {
	Base
	Subject Flex
	Then    Flex
	Else    Flex
}

func (*StuckHostIf) flex()  {}
func (*StuckHostIf) stuck() {}
func (s *StuckHostIf) String() string {
	return fmt.Sprintf("if %s then %s else %s", s.Subject, s.Then, s.Else)
}

// ObjectElim is a stuck tuple/record eliminator whose subject has not
// reduced far enough to know which shape it is.
type ObjectElim struct {
	Base
	Subject Flex
	Names   []string
	BodyRef int // opaque reference to a suspended typed body, resolved by internal/eval
}

func (*ObjectElim) flex()            {}
func (*ObjectElim) stuck()           {}
func (o *ObjectElim) String() string { return fmt.Sprintf("elim(%s)%v", o.Subject, o.Names) }

// EnumElim is a stuck enum eliminator.
type EnumElim struct {
	Base
	Subject Flex
	Arms    []string // variant names with arms, for error rendering only
	BodyRef int
}

func (*EnumElim) flex()            {}
func (*EnumElim) stuck()           {}
func (e *EnumElim) String() string { return fmt.Sprintf("case %s of %v", e.Subject, e.Arms) }

// StuckHostIntrinsic is produced when a host_intrinsic's source string has
// not yet reduced to a concrete string.
type StuckHostIntrinsic struct {
	Base
	Source Flex
	Type   Flex
}

func (*StuckHostIntrinsic) flex()            {}
func (*StuckHostIntrinsic) stuck()           {}
func (s *StuckHostIntrinsic) String() string { return fmt.Sprintf("host_intrinsic(%s)", s.Source) }

// MetaStuck is a value stuck on a metavariable: the result of evaluating a
// constrained_type term before the metavariable it minted has been
// resolved by the solver (spec §4.C "constrained_type ... its value is the
// metavariable itself").
type MetaStuck struct {
	Base
	MV meta.Var
}

func (*MetaStuck) flex()            {}
func (*MetaStuck) stuck()           {}
func (m *MetaStuck) String() string { return m.MV.String() }
