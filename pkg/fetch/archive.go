package fetch

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/anass-b/samurai/pkg/archive"
	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/pkg/errors"
)

// Archive downloads an archive next to the package path and unpacks it.
// When the archive has a root folder, its content becomes the package path.
type Archive struct {
	common

	Downloader *Downloader
}

func (a *Archive) Fetch(ctx context.Context, pkg *manifest.Package) error {
	url := pkg.Source.URL

	ext, err := archive.Extension(url)
	if err != nil {
		return err
	}

	base := pkg.BasePath()

	tmp := filepath.Join(base, archive.TempName(url, ext))
	defer os.Remove(tmp)

	err = a.Downloader.Download(ctx, url, tmp)
	if err != nil {
		return err
	}

	a.L().Debug("extracting archive", "package", pkg.Name, "file", tmp)

	if pkg.Source.ArchiveHasRootDir {
		return a.extractRoot(tmp, base, pkg.Path())
	}

	err = archive.Extract(tmp, pkg.Path())
	if err != nil {
		os.RemoveAll(pkg.Path())
		return err
	}

	return nil
}

func (a *Archive) extractRoot(src, base, path string) error {
	staging, err := ioutil.TempDir(base, ".extract-")
	if err != nil {
		return err
	}

	defer os.RemoveAll(staging)

	err = archive.Extract(src, staging)
	if err != nil {
		return err
	}

	root, err := archive.SingleRoot(staging)
	if err != nil {
		return err
	}

	err = os.Rename(root, path)
	if err != nil {
		return errors.Wrapf(err, "unable to move archive root into place")
	}

	return nil
}
