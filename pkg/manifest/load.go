package manifest

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/anass-b/samurai/pkg/platform"
	"github.com/anass-b/samurai/pkg/subst"
	"github.com/pkg/errors"
)

// DefaultFile is the manifest read when no path is given.
const DefaultFile = "samurai.json"

var ErrManifestNotFound = errors.New("manifest not found")

type LoadOptions struct {
	// Path to the manifest, relative to Dir unless absolute. Defaults to
	// DefaultFile.
	Path string

	// Dir is the invocation directory.
	Dir string

	Vars []subst.Var

	// RawVars substitutes on the manifest text rather than on its string
	// values.
	RawVars bool

	// Lookup resolves @{NAME} tokens. Defaults to the process environment.
	Lookup subst.LookupFunc

	Platform platform.Platform
}

// Load reads, substitutes, parses, validates and normalizes a manifest.
func Load(opts LoadOptions) (*Manifest, error) {
	path := opts.Path
	if path == "" {
		path = DefaultFile
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.Dir, path)
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrManifestNotFound, "%s", path)
		}

		return nil, err
	}

	if opts.RawVars {
		data = subst.Text(data, opts.Vars, opts.Lookup)
	} else {
		data, err = subst.Values(data, opts.Vars, opts.Lookup)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to substitute variables in %s", path)
		}
	}

	m, err := Parse(data, opts.Dir)
	if err != nil {
		return nil, err
	}

	err = m.Validate()
	if err != nil {
		return nil, err
	}

	m.NormalizePaths(opts.Platform)

	return m, nil
}
