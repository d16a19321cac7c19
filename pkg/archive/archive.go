// Package archive detects and unpacks the archive formats a package source
// may point at.
package archive

import (
	"io/ioutil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

var ErrUnsupportedFormat = errors.New("archive format not supported")

// Supported maps file extensions to the go-getter decompressor that handles
// them. Plain tar files are unpacked with untar. Longer extensions are
// matched first.
var Supported = map[string]string{
	".tar.gz":  "tar.gz",
	".tgz":     "tgz",
	".tar.bz2": "tar.bz2",
	".tbz2":    "tbz2",
	".tar.xz":  "tar.xz",
	".txz":     "txz",
	".tar":     "tar",
	".zip":     "zip",
}

// Extension returns the supported extension that name ends with, compared
// case-insensitively. name may be a URL, in which case only its path is
// considered.
func Extension(name string) (string, error) {
	p := name

	if u, err := url.Parse(name); err == nil && u.Path != "" {
		p = u.Path
	}

	lower := strings.ToLower(p)

	var ext string
	for k := range Supported {
		if strings.HasSuffix(lower, k) && len(k) > len(ext) {
			ext = k
		}
	}

	if ext == "" {
		return "", errors.Wrapf(ErrUnsupportedFormat, "file: %s", path.Base(p))
	}

	return ext, nil
}

// TempName derives a stable, filesystem safe name for a download of rawurl.
func TempName(rawurl, ext string) string {
	sum := blake2b.Sum256([]byte(rawurl))
	return ".download-" + base58.Encode(sum[:])[:16] + ext
}

// Extract unpacks the archive at src into the directory dst, creating dst if
// needed. The format is taken from the extension of src.
func Extract(src, dst string) error {
	ext, err := Extension(src)
	if err != nil {
		return err
	}

	if ext == ".tar" {
		err = untar(src, dst)
		if err != nil {
			return errors.Wrapf(err, "unable to unpack %s", filepath.Base(src))
		}

		return nil
	}

	dec, ok := getter.Decompressors[Supported[ext]]
	if !ok {
		return errors.Wrapf(ErrUnsupportedFormat, "no decompressor for %s", ext)
	}

	err = dec.Decompress(dst, src, true, 0)
	if err != nil {
		return errors.Wrapf(err, "unable to decompress %s", filepath.Base(src))
	}

	return nil
}

// SingleRoot returns the only visible directory inside dir. Entries starting
// with a dot are ignored.
func SingleRoot(dir string) (string, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var (
		ent os.FileInfo
		cnt int
	)

	for _, e := range entries {
		if e.Name()[0] != '.' {
			cnt++
			ent = e
		}
	}

	if cnt != 1 || !ent.IsDir() {
		return "", errors.Errorf("expected a single root directory in archive, found %d entries", cnt)
	}

	return filepath.Join(dir, ent.Name()), nil
}
