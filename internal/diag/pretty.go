package diag

import (
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/term"
)

// PrettyPrinter is the small contract error rendering consumes to turn a
// value into readable text (spec §1: pretty-printing proper is an external
// collaborator; the core only depends on this narrow interface). Default
// falls back to each variant's String().
type PrettyPrinter interface {
	Pretty(v term.Flex, ctx *rtctx.Runtime) string
}

// Default is the PrettyPrinter used when no richer printer (from the
// surface layer) has been installed.
var Default PrettyPrinter = defaultPrinter{}

type defaultPrinter struct{}

func (defaultPrinter) Pretty(v term.Flex, ctx *rtctx.Runtime) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
