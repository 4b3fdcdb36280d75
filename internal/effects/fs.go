package effects

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/corelang/corec/internal/term"
)

// FS is grounded on the teacher's internal/effects/fs.go, narrowed to
// read/exists and rooted under a single directory the way the teacher's
// sandbox root confines file access.
type FS struct {
	Root string
}

func NewFS(root string) *FS { return &FS{Root: root} }

func (f *FS) resolve(name string) (string, error) {
	p := filepath.Join(f.Root, filepath.Clean("/"+name))
	if f.Root != "" {
		rel, err := filepath.Rel(f.Root, p)
		if err != nil || rel == ".." || (len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("effects: FS path %q escapes sandbox root", name)
		}
	}
	return p, nil
}

// Handler implements the "FS" solver.EffectHandler: op "read" returns file
// contents as a host string; op "exists" returns a host bool.
func (f *FS) Handler(op string, arg term.Flex) (term.Flex, error) {
	hv, ok := arg.(*term.HostValue)
	if !ok || hv.Kind != term.HostString {
		return nil, fmt.Errorf("effects: FS.%s expects a host string path, got %T", op, arg)
	}
	path, err := f.resolve(hv.Str)
	if err != nil {
		return nil, err
	}

	switch op {
	case "read":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("effects: FS.read: %w", err)
		}
		return &term.HostValue{Kind: term.HostString, Str: string(b)}, nil

	case "exists":
		_, err := os.Stat(path)
		return &term.HostValue{Kind: term.HostBool, Bool: err == nil}, nil

	default:
		return nil, fmt.Errorf("effects: FS has no operation %q", op)
	}
}
