package ops

import (
	"context"
	"os"

	"github.com/anass-b/samurai/pkg/manifest"
)

// ConfigurePackage runs cmake for pkg in its working directory, creating the
// directory first. Platforms pkg excludes are skipped.
func (c *Controller) ConfigurePackage(ctx context.Context, pkg *manifest.Package) error {
	cm := pkg.CMake
	if cm == nil {
		return nil
	}

	if cm.Excluded(c.Platform) {
		c.L().Debug("configure excluded on platform", "package", pkg.Label(), "platform", c.Platform)
		return nil
	}

	err := present(pkg)
	if err != nil {
		return err
	}

	args, err := cm.Arguments(c.Platform)
	if err != nil {
		return err
	}

	dir := cm.WorkingPath(pkg.Path())

	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return track(err)
	}

	GetUI(ctx).Step("Configuring %s: cmake %s", pkg.Label(), args)

	return c.Runner.Run(ctx, pkg.Label(), &manifest.Invocation{
		Program: c.cmake(),
		Args:    args.Argv(),
		Dir:     dir,
	})
}
