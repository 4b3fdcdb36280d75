// Package repl is an interactive loop over internal/elaborate,
// internal/eval and internal/solver, modeled on the teacher's
// internal/repl.REPL: liner for line editing/history, fatih/color for
// output. The surface parser is out of scope for this core (spec §1), so
// there is no free-text expression syntax here -- the loop instead loads
// named internal/fixtures.Program values and runs them through
// infer/evaluate, which is as much of "read-eval-print" as a parser-less
// core can offer.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/corelang/corec/internal/effects"
	"github.com/corelang/corec/internal/elaborate"
	"github.com/corelang/corec/internal/eval"
	"github.com/corelang/corec/internal/fixtures"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/solver"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL is the loop's persistent state: one solver.State/Elaborator shared
// across every :load so metavariables and registered relations/effects
// accumulate the way a real session would.
type REPL struct {
	St      *solver.State
	Elab    *elaborate.Elaborator
	Grant   effects.Grant
	Version string
	loaded  string
}

func New(version string) *REPL {
	st := solver.New()
	effects.InstallDefaults(st)
	return &REPL{
		St:      st,
		Elab:    elaborate.New(st),
		Grant:   effects.NewGrant(),
		Version: version,
	}
}

func (r *REPL) prompt() string {
	if r.loaded == "" {
		return "corec> "
	}
	return fmt.Sprintf("corec[%s]> ", r.loaded)
}

// Start runs the loop until EOF or :quit.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), ".corec_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("corec"), bold(r.Version))
	fmt.Fprintln(out, dim("Type :help for commands, :quit to exit"))

	line.SetCompleter(func(in string) (c []string) {
		if !strings.HasPrefix(in, ":") {
			return nil
		}
		for _, cmd := range []string{":help", ":quit", ":list", ":load", ":infer", ":eval"} {
			if strings.HasPrefix(cmd, in) {
				c = append(c, cmd)
			}
		}
		return
	})

	for {
		input, err := line.Prompt(r.prompt())
		if err == io.EOF {
			fmt.Fprintln(out, green("goodbye"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if input == ":quit" || input == ":q" {
			fmt.Fprintln(out, green("goodbye"))
			break
		}
		r.handle(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func (r *REPL) handle(input string, out io.Writer) {
	fields := strings.Fields(input)
	cmd := fields[0]

	switch cmd {
	case ":help":
		fmt.Fprintln(out, "commands:")
		fmt.Fprintln(out, "  :list            list fixture programs")
		fmt.Fprintln(out, "  :load <name>     load a fixture as the active program")
		fmt.Fprintln(out, "  :infer           run infer on the active program, print its type")
		fmt.Fprintln(out, "  :eval            infer then evaluate the active program, print its value")
		fmt.Fprintln(out, "  :quit            exit")

	case ":list":
		for _, p := range fixtures.Registry() {
			fmt.Fprintf(out, "  %-14s %s\n", bold(p.Name), dim(p.Description))
		}

	case ":load":
		if len(fields) < 2 {
			fmt.Fprintf(out, "%s: usage: :load <name>\n", red("error"))
			return
		}
		if _, ok := fixtures.Lookup(fields[1]); !ok {
			fmt.Fprintf(out, "%s: no fixture named %q\n", red("error"), fields[1])
			return
		}
		r.loaded = fields[1]
		fmt.Fprintf(out, "loaded %s\n", green(r.loaded))

	case ":infer":
		p, ok := r.active(out)
		if !ok {
			return
		}
		typ, _, _, err := r.Elab.Infer(p.Term, rtctx.NewTypechecking())
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			return
		}
		fmt.Fprintf(out, "%s : %s\n", p.Name, yellow(typ.String()))

	case ":eval":
		p, ok := r.active(out)
		if !ok {
			return
		}
		tc := rtctx.NewTypechecking()
		_, _, typed, err := r.Elab.Infer(p.Term, tc)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			return
		}
		val, err := eval.Evaluate(typed, tc.RT, r.St)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			return
		}
		fmt.Fprintf(out, "%s => %s\n", p.Name, yellow(val.String()))

	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", red("error"), cmd)
	}
}

func (r *REPL) active(out io.Writer) (fixtures.Program, bool) {
	if r.loaded == "" {
		fmt.Fprintf(out, "%s: no program loaded, try :list then :load <name>\n", red("error"))
		return fixtures.Program{}, false
	}
	p, ok := fixtures.Lookup(r.loaded)
	if !ok {
		fmt.Fprintf(out, "%s: loaded fixture %q vanished\n", red("error"), r.loaded)
		return fixtures.Program{}, false
	}
	return p, true
}
