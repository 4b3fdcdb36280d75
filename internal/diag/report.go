package diag

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/corelang/corec/internal/cause"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
)

// Report is the canonical structured diagnostic, modeled directly on the
// teacher's errors.Report: a stable code, the phase that raised it, a
// human message, optional structured data, and a JSON encoding usable by
// tooling.
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error so it survives errors.As
// unwrapping through ordinary Go error-handling code.
type ReportError struct{ Rep *Report }

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps r as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders r deterministically.
func (r *Report) ToJSON(compact bool) (string, error) {
	if compact {
		b, err := json.Marshal(r)
		return string(b), err
	}
	b, err := json.MarshalIndent(r, "", "  ")
	return string(b), err
}

// ConstraintError is the error every subtype obligation ultimately bottoms
// out in (spec §6): a description, the two endpoints (with the contexts
// needed to render any placeholders they contain), the relation's debug
// name, and the cause tree that explains why the obligation was ever
// queued.
type ConstraintError struct {
	Desc  string
	Left  term.Flex
	LCtx  *rtctx.Runtime
	Op    string // the relation's debug_name
	Right term.Flex
	RCtx  *rtctx.Runtime
	Cause cause.Cause
}

func (e *ConstraintError) Error() string {
	return e.Render(Default)
}

// Render walks the cause tree, rendering each endpoint via p.
func (e *ConstraintError) Render(p PrettyPrinter) string {
	if p == nil {
		p = Default
	}
	left := p.Pretty(e.Left, e.LCtx)
	right := p.Pretty(e.Right, e.RCtx)
	msg := fmt.Sprintf("%s: %s %s %s", e.Desc, left, e.Op, right)
	if e.Cause != nil {
		msg += "\n  because: " + e.Cause.Render()
	}
	return msg
}

// ToReport converts a ConstraintError into the structured Report
// representation, for tooling that wants JSON rather than text.
func (e *ConstraintError) ToReport(code string) *Report {
	data := map[string]any{
		"left":     e.Left.String(),
		"right":    e.Right.String(),
		"relation": e.Op,
	}
	if e.Cause != nil {
		data["cause"] = e.Cause.Render()
	}
	return &Report{
		Schema:  "corec.error/v1",
		Code:    code,
		Phase:   "solver",
		Message: e.Desc,
		Data:    data,
	}
}

// Fatal wraps an error that indicates a broken invariant upstream (spec §7
// "Structural" and "Solver fatal" errors): callers are expected to let it
// propagate (including past a speculate() boundary, which only swallows
// ordinary (ok, err) elaboration/solver failures, never a Fatal).
type Fatal struct {
	Code    string
	Message string
}

func (f *Fatal) Error() string { return f.Code + ": " + f.Message }

// NewFatal constructs a Fatal error for one of the CST###/SLV002 codes.
func NewFatal(code, format string, args ...any) *Fatal {
	return &Fatal{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewElaborationError constructs an ordinary ELB### error returned through
// (ok=false, err) from infer/check.
func NewElaborationError(code, format string, args ...any) error {
	return WrapReport(&Report{
		Schema:  "corec.error/v1",
		Code:    code,
		Phase:   "elaborate",
		Message: fmt.Sprintf(format, args...),
	})
}

// ErrNotImplemented marks one of the explicit not-implemented paths named
// in spec §9 (record elaboration under substitution, operative subtype
// rules, some tuple_desc_type/enum_type conversions, level arithmetic
// above OMEGA). Guessing the intended semantics of these paths was
// explicitly disallowed, so they fail loudly instead.
func ErrNotImplemented(what string) error {
	return NewElaborationError(ELBNotImplemented, "not implemented: %s", what)
}
