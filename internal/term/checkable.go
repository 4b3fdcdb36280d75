package term

import (
	"fmt"

	"github.com/corelang/corec/internal/span"
)

// WrapInferrable lifts an Inferrable into Checkable position: infer it,
// then flow the inferred type into the goal (spec §4.E).
type WrapInferrable struct {
	Base
	Term Inferrable
}

func (*WrapInferrable) checkable()       {}
func (w *WrapInferrable) String() string { return w.Term.String() }

// CTupleCons checks a tuple literal against a goal: a metavariable is
// invented per position, each element is checked against its position's
// metavariable, and the resulting descriptor flows into the goal.
type CTupleCons struct {
	Base
	Elements []Checkable
}

func (*CTupleCons) checkable()       {}
func (t *CTupleCons) String() string { return fmt.Sprintf("tuple%v", t.Elements) }

// CHostTupleCons is the host-tuple analogue of CTupleCons.
type CHostTupleCons struct {
	Base
	Elements []Checkable
}

func (*CHostTupleCons) checkable()       {}
func (t *CHostTupleCons) String() string { return fmt.Sprintf("host_tuple%v", t.Elements) }

// CLambda checks a parameter-annotation-free lambda against a goal, which
// must be a pi; the context is extended and the body recursively checked.
type CLambda struct {
	Base
	ParamName  string
	ParamDebug span.Name
	Body       Checkable
}

func (*CLambda) checkable()       {}
func (l *CLambda) String() string { return fmt.Sprintf("λ%s. %s", l.ParamName, l.Body) }
