package effects

import (
	"fmt"
	"time"

	"github.com/corelang/corec/internal/term"
)

// Clock is grounded on the teacher's internal/effects/clock.go: a
// deterministic-or-wallclock "now", gated the same way (AILANG_SEED there,
// an explicit virtual flag here so tests never depend on a real clock).
type Clock struct {
	start   time.Time
	virtual bool
	elapsed time.Duration
}

// NewClock builds a wall-clock Clock; NewVirtualClock builds one that never
// touches real time, advancing only via Sleep calls.
func NewClock() *Clock        { return &Clock{start: time.Now()} }
func NewVirtualClock() *Clock { return &Clock{virtual: true} }

// Handler implements the "Clock" solver.EffectHandler: op "now" takes no
// argument and returns milliseconds since start; op "sleep" takes a
// HostNumber of milliseconds, advances virtual time or sleeps for real.
func (c *Clock) Handler(op string, arg term.Flex) (term.Flex, error) {
	switch op {
	case "now":
		var ms float64
		if c.virtual {
			ms = float64(c.elapsed.Milliseconds())
		} else {
			ms = float64(time.Since(c.start).Milliseconds())
		}
		return &term.HostValue{Kind: term.HostNumber, Num: ms}, nil

	case "sleep":
		hv, ok := arg.(*term.HostValue)
		if !ok || hv.Kind != term.HostNumber {
			return nil, fmt.Errorf("effects: Clock.sleep expects a host number, got %T", arg)
		}
		d := time.Duration(hv.Num) * time.Millisecond
		if c.virtual {
			c.elapsed += d
		} else {
			time.Sleep(d)
		}
		return &term.HostValue{Kind: term.HostBool, Bool: true}, nil

	default:
		return nil, fmt.Errorf("effects: Clock has no operation %q", op)
	}
}
