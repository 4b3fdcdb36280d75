// Package manifestcfg loads the YAML manifest that tells cmd/corec which
// host subtype relations and effect handlers a run should install, modeled
// on the teacher's internal/manifest: a small declarative file read once at
// startup instead of recompiling a fixed Go program every time the set of
// installed host types/effects changes.
package manifestcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/corelang/corec/internal/effects"
	"github.com/corelang/corec/internal/relation"
	"github.com/corelang/corec/internal/solver"
)

// Manifest is the decoded YAML shape (spec §6 "register_host_srel",
// "register_effect_handler").
type Manifest struct {
	// HostRelations names built-in relation.Relation values to register
	// under solver.State.RegisterHostSrel, keyed by the srel name a
	// srel_type value will reference.
	HostRelations map[string]string `yaml:"host_relations"`

	// Effects names default effect handlers to install and the ones the
	// run is granted to invoke. A non-empty Install list installs all four
	// default handlers; its names are only checked for validity, not used
	// to choose among them.
	Effects struct {
		Install []string `yaml:"install"`
		Grant   []string `yaml:"grant"`
	} `yaml:"effects"`

	// FSRoot sandboxes the FS effect handler; AllowedHosts allow-lists the
	// Net effect handler.
	FSRoot       string   `yaml:"fs_root"`
	AllowedHosts []string `yaml:"allowed_hosts"`
}

// builtinRelations are the named relation.Relation values a manifest may
// reference by name; corec ships no plugin loader, so this is a closed set
// the way the teacher's manifest only ever names compiled-in modules.
var builtinRelations = map[string]relation.Relation{
	"function":    relation.FunctionRelation{},
	"indep_tuple": relation.IndepTupleRelation{},
}

// Load reads and decodes path.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifestcfg: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("manifestcfg: %s: %w", path, err)
	}
	return &m, nil
}

// Apply installs everything m names onto st, returning the Grant the
// surface layer should pass to effects.Invoke for the rest of the run.
func (m *Manifest) Apply(st *solver.State) (effects.Grant, error) {
	for srelName, relName := range m.HostRelations {
		rel, ok := builtinRelations[relName]
		if !ok {
			return nil, fmt.Errorf("manifestcfg: unknown host relation %q for srel %q", relName, srelName)
		}
		st.RegisterHostSrel(srelName, rel)
	}

	if len(m.Effects.Install) > 0 {
		hosts := m.AllowedHosts
		root := m.FSRoot
		if root == "" {
			root = os.TempDir()
		}
		d := effects.Install(st, os.Stdout, os.Stdin, root, hosts...)
		for _, name := range m.Effects.Install {
			switch name {
			case "Clock", "IO", "FS", "Net":
				// already registered by effects.Install above; named here
				// only so the manifest can selectively omit one later.
			default:
				return nil, fmt.Errorf("manifestcfg: unknown effect %q", name)
			}
		}
		_ = d
	}

	return effects.NewGrant(m.Effects.Grant...), nil
}

// Default returns the manifest cmd/corec falls back to when no --manifest
// flag is given: every built-in effect installed, none granted (a run must
// opt in explicitly, matching the teacher's REPL granting IO only when the
// user asks).
func Default() *Manifest {
	m := &Manifest{}
	m.Effects.Install = []string{"Clock", "IO", "FS", "Net"}
	return m
}
