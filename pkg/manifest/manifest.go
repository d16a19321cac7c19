// Package manifest holds the declarative model of a project: the packages it
// depends on, how each one is fetched, configured and built, and the project
// itself.
package manifest

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/anass-b/samurai/pkg/archive"
	"github.com/anass-b/samurai/pkg/platform"
	"github.com/pkg/errors"
)

// DefaultRoot is the install root used when the manifest names none,
// relative to the invocation directory.
const DefaultRoot = "vendor"

type document struct {
	InstallDir   string `json:"installDir,omitempty"`
	Dependencies []Spec `json:"dependencies"`
	Self         *Spec  `json:"self,omitempty"`
}

type Manifest struct {
	InstallDir   string
	Dependencies []*Package
	Self         *Package

	dir  string
	root string
}

// Parse decodes a manifest whose relative paths resolve against dir. The
// text must already have been substituted.
func Parse(data []byte, dir string) (*Manifest, error) {
	var doc document

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse manifest")
	}

	m := &Manifest{
		InstallDir: doc.InstallDir,
		dir:        dir,
	}

	if doc.InstallDir != "" {
		m.root = absolute(dir, doc.InstallDir)
	} else {
		m.root = filepath.Join(dir, DefaultRoot)
	}

	root := m.root
	base := func() string { return root }

	for _, spec := range doc.Dependencies {
		m.Dependencies = append(m.Dependencies, NewPackage(spec, dir, base))
	}

	if doc.Self != nil {
		m.Self = NewSelf(*doc.Self, dir)
	}

	return m, nil
}

// Root is the directory dependencies are placed under unless they set their
// own installDir.
func (m *Manifest) Root() string {
	return m.root
}

// Dir is the invocation directory.
func (m *Manifest) Dir() string {
	return m.dir
}

// Lookup finds a dependency by name, or the self package when name matches
// it.
func (m *Manifest) Lookup(name string) (*Package, bool) {
	for _, p := range m.Dependencies {
		if p.Name == name {
			return p, true
		}
	}

	if m.Self != nil && (m.Self.Name == name || name == "self") {
		return m.Self, true
	}

	return nil, false
}

// Validate checks the shape of every dependency. Errors returned here are
// fatal for the whole run.
func (m *Manifest) Validate() error {
	seen := map[string]struct{}{}

	for i, p := range m.Dependencies {
		if p.Name == "" {
			return errors.Wrapf(ErrMissingField, "dependency %d has no name", i)
		}

		err := validName(p.Name)
		if err != nil {
			return err
		}

		if _, ok := seen[p.Name]; ok {
			return errors.Errorf("dependency %s declared more than once", p.Name)
		}

		seen[p.Name] = struct{}{}

		if p.Source == nil {
			return errors.Wrapf(ErrMissingField, "dependency %s has no source", p.Name)
		}

		err = p.Source.Validate()
		if err != nil {
			return errors.Wrapf(err, "dependency %s", p.Name)
		}

		if p.Source.Type == Archive {
			_, err = archive.Extension(p.Source.URL)
			if err != nil {
				return errors.Wrapf(err, "dependency %s", p.Name)
			}
		}
	}

	if m.Self != nil && m.Self.Patch != "" {
		return errors.Errorf("self project cannot declare a patch: %s", m.Self.Patch)
	}

	return nil
}

// validName checks that name is a single path element, so the package path
// stays directly under its base path.
func validName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return errors.Wrapf(ErrInvalidPath, "dependency name %q must be a single path element", name)
	}

	return nil
}

// NormalizePaths rewrites every declared path to use the separator of p.
func (m *Manifest) NormalizePaths(p platform.Platform) {
	for _, pkg := range m.Dependencies {
		pkg.normalize(p)
	}

	if m.Self != nil {
		m.Self.normalize(p)
	}
}

// Packages returns the dependencies followed by the self package, if any.
func (m *Manifest) Packages() []*Package {
	out := append([]*Package{}, m.Dependencies...)

	if m.Self != nil {
		out = append(out, m.Self)
	}

	return out
}
