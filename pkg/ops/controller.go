package ops

import (
	"context"
	"os"

	"github.com/anass-b/samurai/pkg/fetch"
	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/anass-b/samurai/pkg/platform"
	"github.com/pkg/errors"
)

// Stage names one step of the package lifecycle.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StagePatch     Stage = "patch"
	StageConfigure Stage = "configure"
	StageBuild     Stage = "build"
)

// Controller drives the lifecycle of the packages of a manifest. Packages
// are processed one at a time in declaration order. A package failing a
// stage is reported and the remaining packages still run.
type Controller struct {
	common

	Manifest   *manifest.Manifest
	Platform   platform.Platform
	Strategies fetch.Set
	Runner     Runner

	// CMake is the configure program. Defaults to "cmake".
	CMake string

	// Git is used to apply patches. Defaults to "git".
	Git string
}

func (c *Controller) cmake() string {
	if c.CMake != "" {
		return c.CMake
	}

	return "cmake"
}

func (c *Controller) git() string {
	if c.Git != "" {
		return c.Git
	}

	return "git"
}

type stageFunc func(ctx context.Context, pkg *manifest.Package) error

func (c *Controller) stage(s Stage) stageFunc {
	switch s {
	case StageFetch:
		return c.FetchPackage
	case StagePatch:
		return c.PatchPackage
	case StageConfigure:
		return c.ConfigurePackage
	default:
		return c.BuildPackage
	}
}

// run applies stage s to pkgs, skipping the packages in skip, and records the
// packages that failed in skip.
func (c *Controller) run(ctx context.Context, s Stage, pkgs []*manifest.Package, skip map[*manifest.Package]error) error {
	ui := GetUI(ctx)
	f := c.stage(s)

	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if prev, ok := skip[pkg]; ok {
			c.L().Debug("skipping package after earlier failure", "package", pkg.Label(), "stage", s, "error", prev)
			ui.Info("Skipping %s %s, an earlier stage failed", s, pkg.Label())
			continue
		}

		err := f(ctx, pkg)
		if err != nil {
			c.L().Error("stage failed", "package", pkg.Label(), "stage", s, "error", err)
			ui.Failed(pkg.Label(), string(s), err)
			skip[pkg] = err
		}
	}

	return nil
}

func summarize(failed map[*manifest.Package]error, total int) error {
	if len(failed) == 0 {
		return nil
	}

	return errors.Wrapf(ErrPackagesFailed, "%d of %d", len(failed), total)
}

func (c *Controller) selection(self bool) []*manifest.Package {
	if self {
		if c.Manifest.Self == nil {
			return nil
		}

		return []*manifest.Package{c.Manifest.Self}
	}

	return c.Manifest.Dependencies
}

func (c *Controller) each(ctx context.Context, s Stage, pkgs []*manifest.Package) error {
	failed := map[*manifest.Package]error{}

	err := c.run(ctx, s, pkgs, failed)
	if err != nil {
		return err
	}

	return summarize(failed, len(pkgs))
}

// Fetch fetches every dependency that is not present yet.
func (c *Controller) Fetch(ctx context.Context) error {
	return c.each(ctx, StageFetch, c.Manifest.Dependencies)
}

// Patch applies the patch of every dependency declaring one.
func (c *Controller) Patch(ctx context.Context) error {
	return c.each(ctx, StagePatch, c.Manifest.Dependencies)
}

// Configure runs the configure step of the dependencies, or of the self
// package when self is set.
func (c *Controller) Configure(ctx context.Context, self bool) error {
	return c.each(ctx, StageConfigure, c.selection(self))
}

// Build runs the build step of the dependencies, or of the self package when
// self is set.
func (c *Controller) Build(ctx context.Context, self bool) error {
	return c.each(ctx, StageBuild, c.selection(self))
}

// All fetches, patches, configures and builds every dependency, then
// configures and builds the self package. Packages that fail a stage are
// skipped in the later ones.
func (c *Controller) All(ctx context.Context) error {
	failed := map[*manifest.Package]error{}
	deps := c.Manifest.Dependencies

	for _, s := range []Stage{StageFetch, StagePatch, StageConfigure, StageBuild} {
		err := c.run(ctx, s, deps, failed)
		if err != nil {
			return err
		}
	}

	total := len(deps)

	if self := c.selection(true); len(self) > 0 {
		total++

		for _, s := range []Stage{StageConfigure, StageBuild} {
			err := c.run(ctx, s, self, failed)
			if err != nil {
				return err
			}
		}
	}

	return summarize(failed, total)
}

// present reports an error unless the package path of a remote package
// exists.
func present(pkg *manifest.Package) error {
	if pkg.IsSelf() {
		return nil
	}

	_, err := os.Stat(pkg.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotFetched, "%s", pkg.Path())
		}

		return track(err)
	}

	return nil
}
