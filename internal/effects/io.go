package effects

import (
	"bufio"
	"fmt"
	"io"

	"github.com/corelang/corec/internal/term"
)

// IO is grounded on the teacher's internal/effects/io.go (print/println/
// readLine), narrowed to the two operations corec's fixtures exercise.
type IO struct {
	Out io.Writer
	In  *bufio.Reader
}

func NewIO(out io.Writer, in io.Reader) *IO {
	return &IO{Out: out, In: bufio.NewReader(in)}
}

// Handler implements the "IO" solver.EffectHandler: op "print" writes a
// host string with no trailing newline; op "readLine" reads one line.
func (h *IO) Handler(op string, arg term.Flex) (term.Flex, error) {
	switch op {
	case "print":
		hv, ok := arg.(*term.HostValue)
		if !ok || hv.Kind != term.HostString {
			return nil, fmt.Errorf("effects: IO.print expects a host string, got %T", arg)
		}
		if _, err := fmt.Fprint(h.Out, hv.Str); err != nil {
			return nil, err
		}
		return &term.HostValue{Kind: term.HostBool, Bool: true}, nil

	case "readLine":
		line, err := h.In.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("effects: IO.readLine: %w", err)
		}
		for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		return &term.HostValue{Kind: term.HostString, Str: line}, nil

	default:
		return nil, fmt.Errorf("effects: IO has no operation %q", op)
	}
}
