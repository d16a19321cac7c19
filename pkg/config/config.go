package config

import (
	"os"
	"path/filepath"

	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/mitchellh/go-homedir"
)

// DefaultLockFile guards an invocation directory against concurrent runs.
const DefaultLockFile = ".samurai-lock"

// Locations are the paths a run works with.
type Locations struct {
	// Dir is the invocation directory relative paths resolve against.
	Dir string

	// Manifest is the absolute path of the manifest file.
	Manifest string

	// Lock is the absolute path of the run lock.
	Lock string
}

// Locate derives the locations for a run in dir. manifestPath may be empty,
// in which case SAMURAI_CONFIG and then samurai.json are used. A leading ~
// is expanded.
func Locate(dir, manifestPath string) (*Locations, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}

		dir = wd
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	if manifestPath == "" {
		manifestPath = os.Getenv("SAMURAI_CONFIG")
	}

	if manifestPath == "" {
		manifestPath = manifest.DefaultFile
	}

	manifestPath, err = homedir.Expand(manifestPath)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(dir, manifestPath)
	}

	return &Locations{
		Dir:      dir,
		Manifest: manifestPath,
		Lock:     filepath.Join(dir, DefaultLockFile),
	}, nil
}
