package manifest

import (
	"path/filepath"
	"sync"

	"github.com/anass-b/samurai/pkg/platform"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedSource = errors.New("unsupported source type")
	ErrInvalidPath       = errors.New("invalid path")
	ErrMissingField      = errors.New("missing required field")
)

type SourceKind string

const (
	Git     SourceKind = "git"
	Archive SourceKind = "archive"
	File    SourceKind = "file"
)

// Source describes where a remote package is fetched from.
type Source struct {
	Type SourceKind `json:"type"`
	URL  string     `json:"url"`

	// ArchiveHasRootDir applies to archives only. It indicates the archive
	// unpacks into a single top level folder that must not end up in the
	// package path.
	ArchiveHasRootDir bool `json:"archiveHasRootDir,omitempty"`
}

func (s *Source) Validate() error {
	switch s.Type {
	case Git, Archive, File:
	default:
		return errors.Wrapf(ErrUnsupportedSource, "type: %q", s.Type)
	}

	if s.URL == "" {
		return errors.Wrapf(ErrMissingField, "source url")
	}

	return nil
}

// Spec is the declarative part of a package, as written in the manifest.
type Spec struct {
	Name       string  `json:"name"`
	Version    string  `json:"version,omitempty"`
	Patch      string  `json:"patch,omitempty"`
	Source     *Source `json:"source,omitempty"`
	CMake      *CMake  `json:"cmake,omitempty"`
	Build      *Build  `json:"build,omitempty"`
	InstallDir string  `json:"installDir,omitempty"`
}

// BaseDir returns the directory packages are placed under when they do not
// set their own install directory.
type BaseDir func() string

// Package is a buildable unit. Remote packages carry a Source and live under a
// base path; the self package is the invocation directory itself.
type Package struct {
	Spec

	dir  string
	base BaseDir
	self bool

	once     sync.Once
	basePath string
	path     string
}

// NewPackage creates a remote package. dir is the invocation directory that
// relative paths are resolved against.
func NewPackage(spec Spec, dir string, base BaseDir) *Package {
	return &Package{
		Spec: spec,
		dir:  dir,
		base: base,
	}
}

// NewSelf creates the package for the project in dir.
func NewSelf(spec Spec, dir string) *Package {
	spec.Source = nil
	spec.Version = ""

	return &Package{
		Spec: spec,
		dir:  dir,
		self: true,
	}
}

func (p *Package) IsSelf() bool {
	return p.self
}

func (p *Package) HasVersion() bool {
	return p.Version != ""
}

// Label names the package in messages.
func (p *Package) Label() string {
	if p.Name != "" {
		return p.Name
	}

	if p.self {
		return "self"
	}

	return "<unnamed>"
}

// Dir is the invocation directory.
func (p *Package) Dir() string {
	return p.dir
}

func (p *Package) resolvePaths() {
	p.once.Do(func() {
		if p.self {
			p.basePath = p.dir
			p.path = p.dir
			return
		}

		switch {
		case p.InstallDir != "":
			p.basePath = absolute(p.dir, p.InstallDir)
		case p.base != nil:
			p.basePath = p.base()
		default:
			p.basePath = p.dir
		}

		p.path = filepath.Join(p.basePath, p.Name)
	})
}

// BasePath is the directory the package directory is created in.
func (p *Package) BasePath() string {
	p.resolvePaths()
	return p.basePath
}

// Path is the package root that patch, configure and build operate in.
func (p *Package) Path() string {
	p.resolvePaths()
	return p.path
}

// PatchPath resolves the patch file against the invocation directory.
func (p *Package) PatchPath() string {
	if p.Patch == "" {
		return ""
	}

	return absolute(p.dir, p.Patch)
}

func (p *Package) normalize(pl platform.Platform) {
	p.Patch = platform.Normalize(p.Patch, pl)

	if p.CMake != nil {
		p.CMake.normalize(pl)
	}

	if p.Build != nil {
		p.Build.normalize(pl)
	}
}

func absolute(dir, path string) string {
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}

	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(dir, path)
}
