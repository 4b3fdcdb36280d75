package effects

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/corelang/corec/internal/term"
)

// Net is grounded on the teacher's internal/effects/net.go and
// net_security.go: an HTTP GET restricted to an allow-listed set of hosts,
// the same shape as the teacher's domain allow-list check but far smaller
// (corec has no DNS-rebinding/redirect-chasing policy to replicate).
type Net struct {
	Client      *http.Client
	AllowedHost map[string]bool
}

func NewNet(allowedHosts ...string) *Net {
	allowed := make(map[string]bool, len(allowedHosts))
	for _, h := range allowedHosts {
		allowed[strings.ToLower(h)] = true
	}
	return &Net{Client: &http.Client{Timeout: 10 * time.Second}, AllowedHost: allowed}
}

// Handler implements the "Net" solver.EffectHandler: op "get" fetches a
// URL whose host is on the allow-list and returns the body as a host
// string.
func (n *Net) Handler(op string, arg term.Flex) (term.Flex, error) {
	if op != "get" {
		return nil, fmt.Errorf("effects: Net has no operation %q", op)
	}
	hv, ok := arg.(*term.HostValue)
	if !ok || hv.Kind != term.HostString {
		return nil, fmt.Errorf("effects: Net.get expects a host string URL, got %T", arg)
	}
	u, err := url.Parse(hv.Str)
	if err != nil {
		return nil, fmt.Errorf("effects: Net.get: %w", err)
	}
	if !n.AllowedHost[strings.ToLower(u.Hostname())] {
		return nil, fmt.Errorf("effects: Net.get: host %q is not on the allow-list", u.Hostname())
	}

	resp, err := n.Client.Get(u.String())
	if err != nil {
		return nil, fmt.Errorf("effects: Net.get: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("effects: Net.get: %w", err)
	}
	return &term.HostValue{Kind: term.HostString, Str: string(body)}, nil
}
