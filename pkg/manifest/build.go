package manifest

import (
	"path/filepath"
	"strings"

	"github.com/anass-b/samurai/pkg/platform"
	"github.com/pkg/errors"
)

// Runnable is a build script or command. An empty OS applies everywhere.
type Runnable struct {
	OS         platform.Platform `json:"os,omitempty"`
	Name       string            `json:"name"`
	Args       []string          `json:"args,omitempty"`
	WorkingDir string            `json:"workingDir"`
}

func (r *Runnable) Matches(p platform.Platform) bool {
	return r.OS == "" || r.OS == p
}

// Build lists the ways a package can be built.
type Build struct {
	Scripts  []Runnable `json:"scripts,omitempty"`
	Commands []Runnable `json:"commands,omitempty"`
}

// Select returns the first script matching p, otherwise the first matching
// command. script reports which list the entry came from. A nil entry means
// there is nothing to run on p.
func (b *Build) Select(p platform.Platform) (r *Runnable, script bool) {
	for i := range b.Scripts {
		if b.Scripts[i].Matches(p) {
			return &b.Scripts[i], true
		}
	}

	for i := range b.Commands {
		if b.Commands[i].Matches(p) {
			return &b.Commands[i], false
		}
	}

	return nil, false
}

// Invocation is a resolved program to run.
type Invocation struct {
	Program string
	Args    []string
	Dir     string
}

func (i *Invocation) String() string {
	return strings.Join(append([]string{i.Program}, i.Args...), " ")
}

// Invocation resolves the entry selected for p. Scripts are resolved against
// the invocation dir, commands are looked up by name. The working directory
// is joined to the package root pkgPath. Nothing to run yields nil, nil.
func (b *Build) Invocation(p platform.Platform, dir, pkgPath string) (*Invocation, error) {
	r, script := b.Select(p)
	if r == nil {
		return nil, nil
	}

	if r.Name == "" {
		return nil, errors.Wrapf(ErrMissingField, "build entry for %s has no name", p)
	}

	if r.WorkingDir == "" {
		return nil, errors.Wrapf(ErrMissingField, "build entry %s has no workingDir", r.Name)
	}

	if filepath.IsAbs(r.WorkingDir) || strings.HasPrefix(r.WorkingDir, "/") || strings.HasPrefix(r.WorkingDir, `\`) {
		return nil, errors.Wrapf(ErrInvalidPath, "build workingDir must be relative: %s", r.WorkingDir)
	}

	prog := r.Name
	if script {
		prog = absolute(dir, prog)
	}

	return &Invocation{
		Program: prog,
		Args:    r.Args,
		Dir:     filepath.Join(pkgPath, r.WorkingDir),
	}, nil
}

func (b *Build) normalize(p platform.Platform) {
	for i := range b.Scripts {
		s := &b.Scripts[i]
		if s.Matches(p) {
			s.Name = platform.Normalize(s.Name, p)
			s.WorkingDir = platform.Normalize(s.WorkingDir, p)
		}
	}

	for i := range b.Commands {
		c := &b.Commands[i]
		if c.Matches(p) {
			c.WorkingDir = platform.Normalize(c.WorkingDir, p)
		}
	}
}
