package ops

import (
	"context"
	"io"

	"github.com/anass-b/samurai/pkg/config"
	"github.com/anass-b/samurai/pkg/fetch"
	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/anass-b/samurai/pkg/platform"
	"github.com/anass-b/samurai/pkg/subst"
	"github.com/pkg/errors"
)

// ProjectLoad resolves the platform and loads the manifest of an invocation
// directory, producing a Controller ready to run.
type ProjectLoad struct {
	common

	// Resolver overrides platform detection.
	Resolver *platform.Resolver

	// Runner overrides the program runner.
	Runner Runner

	// Strategies overrides the fetch strategies.
	Strategies fetch.Set
}

type ProjectOptions struct {
	// Dir is the invocation directory. Defaults to the working directory.
	Dir string

	// Config is the manifest path.
	Config string

	// Vars is the semicolon separated NAME=VALUE list.
	Vars string

	RawVars bool
}

type Project struct {
	Locations *config.Locations
	Platform  platform.Platform
	Manifest  *manifest.Manifest

	Controller *Controller
}

func (p *ProjectLoad) resolvePlatform(ctx context.Context) (platform.Platform, error) {
	if p.Resolver != nil {
		return p.Resolver.Resolve(ctx)
	}

	return platform.Current(ctx)
}

// Load returns the project of opts. The errors it returns are fatal for the
// run.
func (p *ProjectLoad) Load(ctx context.Context, opts ProjectOptions) (*Project, error) {
	loc, err := config.Locate(opts.Dir, opts.Config)
	if err != nil {
		return nil, track(err)
	}

	pl, err := p.resolvePlatform(ctx)
	if err != nil {
		return nil, err
	}

	vars, err := subst.ParseVars(opts.Vars)
	if err != nil {
		return nil, err
	}

	p.L().Debug("loading manifest", "path", loc.Manifest, "platform", pl, "raw-vars", opts.RawVars)

	m, err := manifest.Load(manifest.LoadOptions{
		Path:     loc.Manifest,
		Dir:      loc.Dir,
		Vars:     vars,
		RawVars:  opts.RawVars,
		Platform: pl,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", loc.Manifest)
	}

	runner := p.Runner
	if runner == nil {
		er := &ExecRunner{}
		er.SetLogger(p.L())
		runner = er
	}

	strategies := p.Strategies
	if strategies == nil {
		ui := GetUI(ctx)

		strategies = fetch.Default(fetch.Options{
			Logger: p.L(),
			Git: func(pkg *manifest.Package) io.Writer {
				return ui.Prefixed(pkg.Name)
			},
		})
	}

	c := &Controller{
		Manifest:   m,
		Platform:   pl,
		Strategies: strategies,
		Runner:     runner,
	}

	c.SetLogger(p.L())

	return &Project{
		Locations:  loc,
		Platform:   pl,
		Manifest:   m,
		Controller: c,
	}, nil
}
