package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// untar unpacks the uncompressed tar file at src into dst. Entries that
// would land outside dst are rejected.
func untar(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}

	defer f.Close()

	err = os.MkdirAll(dst, 0755)
	if err != nil {
		return err
	}

	root := filepath.Clean(dst)

	tr := tar.NewReader(f)

	for {
		hdr, err := tr.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}

			return errors.Wrapf(err, "reading %s", filepath.Base(src))
		}

		path := filepath.Join(root, hdr.Name)

		if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
			return errors.Errorf("entry %s is outside the destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			err = os.MkdirAll(path, 0755)
			if err != nil {
				return err
			}
		case tar.TypeReg:
			err = os.MkdirAll(filepath.Dir(path), 0755)
			if err != nil {
				return err
			}

			out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, hdr.FileInfo().Mode())
			if err != nil {
				return err
			}

			_, err = io.Copy(out, tr)
			if err != nil {
				out.Close()
				return err
			}

			err = out.Close()
			if err != nil {
				return err
			}
		case tar.TypeSymlink:
			err = os.MkdirAll(filepath.Dir(path), 0755)
			if err != nil {
				return err
			}

			err = os.Symlink(hdr.Linkname, path)
			if err != nil {
				return err
			}
		}
	}
}
