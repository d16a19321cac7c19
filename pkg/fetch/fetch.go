// Package fetch retrieves package sources: git repositories, archives and
// single files.
package fetch

import (
	"context"

	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// Strategy fetches a package into its package path, which does not exist
// yet. A failed fetch must not leave the package path behind.
type Strategy interface {
	Fetch(ctx context.Context, pkg *manifest.Package) error
}

// Set maps source kinds to the strategy that handles them.
type Set map[manifest.SourceKind]Strategy

func (s Set) For(kind manifest.SourceKind) (Strategy, error) {
	st, ok := s[kind]
	if !ok {
		return nil, errors.Wrapf(manifest.ErrUnsupportedSource, "type: %q", kind)
	}

	return st, nil
}

// Options configure the default strategies.
type Options struct {
	Logger hclog.Logger

	// Downloader is shared by the archive and file strategies.
	Downloader *Downloader

	// Git receives clone progress, when set.
	Git GitProgress
}

// Default returns a strategy for every source kind.
func Default(opts Options) Set {
	d := opts.Downloader
	if d == nil {
		d = &Downloader{}
	}

	if opts.Logger != nil {
		d.SetLogger(opts.Logger)
	}

	g := &Git{Progress: opts.Git}
	a := &Archive{Downloader: d}
	f := &File{Downloader: d}

	if opts.Logger != nil {
		g.SetLogger(opts.Logger)
		a.SetLogger(opts.Logger)
		f.SetLogger(opts.Logger)
	}

	return Set{
		manifest.Git:     g,
		manifest.Archive: a,
		manifest.File:    f,
	}
}

type common struct {
	logger hclog.Logger
}

func (c *common) L() hclog.Logger {
	if c.logger != nil {
		return c.logger
	}

	c.logger = hclog.L()

	return c.logger
}

func (c *common) SetLogger(logger hclog.Logger) {
	c.logger = logger
}
