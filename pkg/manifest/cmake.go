package manifest

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anass-b/samurai/pkg/platform"
	"github.com/pkg/errors"
)

// OSVars are variables that only apply on one platform.
type OSVars struct {
	OS   platform.Platform `json:"os"`
	Vars Vars              `json:"vars"`
}

// Generator names the CMake generator to use on one platform.
type Generator struct {
	OS   platform.Platform `json:"os"`
	Name string            `json:"name"`
}

// CMake describes the configure step of a package.
type CMake struct {
	Args           []string            `json:"args,omitempty"`
	Vars           Vars                `json:"vars,omitempty"`
	OSSpecificVars []OSVars            `json:"osSpecificVars,omitempty"`
	Generator      string              `json:"generator,omitempty"`
	Generators     []Generator         `json:"generators,omitempty"`
	ExcludeOS      []platform.Platform `json:"excludeOS,omitempty"`
	WorkingDir     string              `json:"workingDir"`
	SrcDir         string              `json:"srcDir"`
}

// Excluded reports whether configure is skipped on p.
func (c *CMake) Excluded(p platform.Platform) bool {
	return p.In(c.ExcludeOS)
}

// MergedVars returns the default variables supplemented by every variable set
// declared for p. Defaults are never overridden.
func (c *CMake) MergedVars(p platform.Platform) Vars {
	vars := c.Vars

	for _, set := range c.OSSpecificVars {
		if set.OS == p {
			vars = vars.Merge(set.Vars)
		}
	}

	return vars
}

// ResolveGenerator returns the generator to pass to cmake on p. An explicit
// generator always wins; otherwise the first generator declared for p is
// used. No generator at all is valid and yields "".
func (c *CMake) ResolveGenerator(p platform.Platform) (string, error) {
	if c.Generator != "" {
		return c.Generator, nil
	}

	if len(c.Generators) == 0 {
		return "", nil
	}

	for _, g := range c.Generators {
		if g.OS == p {
			return g.Name, nil
		}
	}

	return "", errors.Wrapf(platform.ErrUnsupportedPlatform, "no cmake generator declared for %s", p)
}

// WorkingPath is the directory cmake runs in for a package rooted at root.
func (c *CMake) WorkingPath(root string) string {
	if filepath.IsAbs(c.WorkingDir) {
		return filepath.Clean(c.WorkingDir)
	}

	return filepath.Join(root, c.WorkingDir)
}

// Arguments assembles the cmake arguments for p. srcDir and workingDir are
// both required.
func (c *CMake) Arguments(p platform.Platform) (*Arguments, error) {
	if c.SrcDir == "" {
		return nil, errors.Wrapf(ErrMissingField, "cmake srcDir")
	}

	if c.WorkingDir == "" {
		return nil, errors.Wrapf(ErrMissingField, "cmake workingDir")
	}

	if filepath.IsAbs(c.SrcDir) || strings.HasPrefix(c.SrcDir, "/") || strings.HasPrefix(c.SrcDir, `\`) {
		return nil, errors.Wrapf(ErrInvalidPath, "cmake srcDir must be relative: %s", c.SrcDir)
	}

	gen, err := c.ResolveGenerator(p)
	if err != nil {
		return nil, err
	}

	return &Arguments{
		SrcDir:    c.SrcDir,
		Vars:      c.MergedVars(p),
		Extra:     c.Args,
		Generator: gen,
	}, nil
}

func (c *CMake) normalize(p platform.Platform) {
	c.SrcDir = platform.Normalize(c.SrcDir, p)
	c.WorkingDir = platform.Normalize(c.WorkingDir, p)
}

// Arguments are cmake arguments in the order they are passed: source dir,
// variables, free form arguments, generator.
type Arguments struct {
	SrcDir    string
	Vars      Vars
	Extra     []string
	Generator string
}

// Argv returns the arguments as handed to the process, without shell quoting.
func (a *Arguments) Argv() []string {
	var argv []string

	if a.SrcDir != "" {
		argv = append(argv, a.SrcDir)
	}

	for _, v := range a.Vars {
		argv = append(argv, "-D"+v.Name+"="+v.Value)
	}

	argv = append(argv, a.Extra...)

	if a.Generator != "" {
		argv = append(argv, "-G"+a.Generator)
	}

	return argv
}

// String renders the arguments as a command line, quoting variable values
// and the generator name.
func (a *Arguments) String() string {
	var parts []string

	if a.SrcDir != "" {
		parts = append(parts, a.SrcDir)
	}

	for _, v := range a.Vars {
		parts = append(parts, "-D"+v.Name+"="+strconv.Quote(v.Value))
	}

	parts = append(parts, a.Extra...)

	if a.Generator != "" {
		parts = append(parts, "-G"+strconv.Quote(a.Generator))
	}

	return strings.Join(parts, " ")
}
