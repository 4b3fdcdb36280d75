package manifestcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corelang/corec/internal/solver"
)

func TestLoadAndApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	content := `
host_relations:
  "Comparable.fn": function
effects:
  install: ["Clock", "IO"]
  grant: ["Clock"]
fs_root: ` + dir + `
allowed_hosts: ["example.com"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "function", m.HostRelations["Comparable.fn"])
	assert.Equal(t, []string{"example.com"}, m.AllowedHosts)

	st := solver.New()
	grant, err := m.Apply(st)
	require.NoError(t, err)
	assert.True(t, grant.Allows("Clock"))
	assert.False(t, grant.Allows("IO"))

	_, err = st.LookupHostSrel("Comparable.fn")
	require.NoError(t, err)
}

func TestApplyRejectsUnknownRelation(t *testing.T) {
	m := &Manifest{HostRelations: map[string]string{"x": "nonsense"}}
	_, err := m.Apply(solver.New())
	require.Error(t, err)
}
