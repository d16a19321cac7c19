package ops

import (
	"context"

	"github.com/anass-b/samurai/pkg/manifest"
)

// BuildPackage runs the build entry of pkg selected for the platform. When
// no entry matches nothing runs.
func (c *Controller) BuildPackage(ctx context.Context, pkg *manifest.Package) error {
	if pkg.Build == nil {
		return nil
	}

	err := present(pkg)
	if err != nil {
		return err
	}

	inv, err := pkg.Build.Invocation(c.Platform, pkg.Dir(), pkg.Path())
	if err != nil {
		return err
	}

	if inv == nil {
		c.L().Debug("no build entry for platform", "package", pkg.Label(), "platform", c.Platform)
		return nil
	}

	GetUI(ctx).Step("Building %s: %s", pkg.Label(), inv)

	return c.Runner.Run(ctx, pkg.Label(), inv)
}
