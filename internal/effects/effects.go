package effects

import (
	"fmt"
	"io"
	"os"

	"github.com/corelang/corec/internal/solver"
	"github.com/corelang/corec/internal/term"
)

// Defaults bundles the default handler instances so callers can reach into
// a specific one (e.g. to flip Clock to virtual time for a deterministic
// test run) without re-deriving them from the solver.State.
type Defaults struct {
	Clock *Clock
	IO    *IO
	FS    *FS
	Net   *Net
}

// Install registers the default Clock/IO/FS/Net handlers on st (spec §6
// "register_effect_handler"), mirroring the teacher's ops.go RegisterOp
// table but targeting solver.State.RegisterEffectHandler instead of a
// package-global op registry.
func Install(st *solver.State, out io.Writer, in io.Reader, fsRoot string, allowedHosts ...string) *Defaults {
	d := &Defaults{
		Clock: NewClock(),
		IO:    NewIO(out, in),
		FS:    NewFS(fsRoot),
		Net:   NewNet(allowedHosts...),
	}
	st.RegisterEffectHandler("Clock", d.Clock.Handler)
	st.RegisterEffectHandler("IO", d.IO.Handler)
	st.RegisterEffectHandler("FS", d.FS.Handler)
	st.RegisterEffectHandler("Net", d.Net.Handler)
	return d
}

// InstallDefaults is the convenience entry point `cmd/corec` uses: wall
// clock, stdio, a read-only temp-dir sandbox, no network hosts allowed.
func InstallDefaults(st *solver.State) *Defaults {
	return Install(st, os.Stdout, os.Stdin, os.TempDir())
}

// Invoke is the surface layer's hook for actually running an effect
// (spec §6 notes that register_effect_handler only installs handlers; the
// core's own evaluator never calls them -- invoking one is a host/surface
// responsibility). It checks grant before consulting st.LookupEffectHandler.
func Invoke(st *solver.State, grant Grant, effect, op string, arg term.Flex) (term.Flex, error) {
	if !grant.Allows(effect) {
		return nil, &ErrCapabilityDenied{Effect: effect}
	}
	h, ok := st.LookupEffectHandler(effect)
	if !ok {
		return nil, fmt.Errorf("effects: no handler registered for effect %q", effect)
	}
	return h(op, arg)
}
