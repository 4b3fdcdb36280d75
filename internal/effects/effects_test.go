package effects

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelang/corec/internal/solver"
	"github.com/corelang/corec/internal/term"
)

func TestClockVirtualSleepAdvances(t *testing.T) {
	c := NewVirtualClock()

	v, err := c.Handler("now", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.(*term.HostValue).Num)

	_, err = c.Handler("sleep", &term.HostValue{Kind: term.HostNumber, Num: 250})
	require.NoError(t, err)

	v, err = c.Handler("now", nil)
	require.NoError(t, err)
	assert.Equal(t, 250.0, v.(*term.HostValue).Num)
}

func TestIOPrintWritesToOut(t *testing.T) {
	var buf bytes.Buffer
	h := NewIO(&buf, strings.NewReader(""))

	_, err := h.Handler("print", &term.HostValue{Kind: term.HostString, Str: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", buf.String())
}

func TestIOReadLineStripsNewline(t *testing.T) {
	h := NewIO(&bytes.Buffer{}, strings.NewReader("hello\n"))

	v, err := h.Handler("readLine", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.(*term.HostValue).Str)
}

func TestNetGetRejectsUnlistedHost(t *testing.T) {
	n := NewNet("example.com")

	_, err := n.Handler("get", &term.HostValue{Kind: term.HostString, Str: "http://evil.test/"})
	require.Error(t, err)
}

func TestInvokeDeniesUngrantedEffect(t *testing.T) {
	st := solver.New()
	InstallDefaults(st)

	_, err := Invoke(st, NewGrant("IO"), "Net", "get", &term.HostValue{Kind: term.HostString, Str: "http://example.com"})
	require.Error(t, err)
	var denied *ErrCapabilityDenied
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "Net", denied.Effect)
}

func TestInvokeRunsGrantedEffect(t *testing.T) {
	st := solver.New()
	InstallDefaults(st)

	v, err := Invoke(st, NewGrant("Clock"), "Clock", "now", nil)
	require.NoError(t, err)
	assert.IsType(t, &term.HostValue{}, v)
}
