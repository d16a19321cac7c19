package ops

import (
	"context"
	"os"

	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/pkg/errors"
)

// FetchPackage fetches pkg unless its package path already exists.
func (c *Controller) FetchPackage(ctx context.Context, pkg *manifest.Package) error {
	if pkg.IsSelf() || pkg.Source == nil {
		return nil
	}

	path := pkg.Path()

	_, err := os.Stat(path)
	if err == nil {
		c.L().Debug("package already fetched", "package", pkg.Name, "dir", path)
		return nil
	}

	if !os.IsNotExist(err) {
		return track(err)
	}

	st, err := c.Strategies.For(pkg.Source.Type)
	if err != nil {
		return err
	}

	ui := GetUI(ctx)

	if pkg.HasVersion() {
		ui.Step("Fetching %s %s from %s", pkg.Name, pkg.Version, pkg.Source.URL)
	} else {
		ui.Step("Fetching %s from %s", pkg.Name, pkg.Source.URL)
	}

	err = os.MkdirAll(pkg.BasePath(), 0755)
	if err != nil {
		return track(err)
	}

	err = st.Fetch(ctx, pkg)
	if err != nil {
		return errors.Wrapf(err, "fetching %s", pkg.Name)
	}

	return nil
}
