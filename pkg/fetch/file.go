package fetch

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/pkg/errors"
)

// File downloads a single file into the package path, keeping the file name
// of the URL.
type File struct {
	common

	Downloader *Downloader
}

func (f *File) Fetch(ctx context.Context, pkg *manifest.Package) error {
	u, err := url.Parse(pkg.Source.URL)
	if err != nil {
		return errors.Wrapf(err, "invalid url %s", pkg.Source.URL)
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return errors.Errorf("url %s does not name a file", pkg.Source.URL)
	}

	dir := pkg.Path()

	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	err = f.Downloader.Download(ctx, pkg.Source.URL, filepath.Join(dir, name))
	if err != nil {
		os.RemoveAll(dir)
		return err
	}

	return nil
}
