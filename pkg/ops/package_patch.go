package ops

import (
	"context"

	"github.com/anass-b/samurai/pkg/manifest"
)

// PatchPackage applies the patch file of pkg inside its package path.
func (c *Controller) PatchPackage(ctx context.Context, pkg *manifest.Package) error {
	if pkg.Patch == "" {
		return nil
	}

	err := present(pkg)
	if err != nil {
		return err
	}

	patch := pkg.PatchPath()

	GetUI(ctx).Step("Patching %s with %s", pkg.Label(), pkg.Patch)

	return c.Runner.Run(ctx, pkg.Label(), &manifest.Invocation{
		Program: c.git(),
		Args:    []string{"apply", patch},
		Dir:     pkg.Path(),
	})
}
