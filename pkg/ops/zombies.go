package ops

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/anass-b/samurai/pkg/humanize"
	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/pkg/errors"
)

// Zombie is a directory in the install root that no dependency declares.
type Zombie struct {
	Name string
	Path string
	Size int64
}

// Zombies lists the undeclared directories in the install root of m. Hidden
// entries are ignored. A missing root has no zombies.
func Zombies(m *manifest.Manifest) ([]Zombie, error) {
	root := m.Root()

	entries, err := ioutil.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, track(err)
	}

	declared := map[string]struct{}{}

	for _, pkg := range m.Dependencies {
		if pkg.BasePath() == root {
			declared[pkg.Name] = struct{}{}
		}
	}

	var out []Zombie

	for _, e := range entries {
		if !e.IsDir() || e.Name()[0] == '.' {
			continue
		}

		if _, ok := declared[e.Name()]; ok {
			continue
		}

		path := filepath.Join(root, e.Name())

		size, err := dirSize(path)
		if err != nil {
			return nil, track(err)
		}

		out = append(out, Zombie{Name: e.Name(), Path: path, Size: size})
	}

	return out, nil
}

func dirSize(dir string) (int64, error) {
	var total int64

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.Mode().IsRegular() {
			total += info.Size()
		}

		return nil
	})

	return total, err
}

// ReportZombies prints the zombies of m and removes them when remove is set.
// Removal failures are reported and the remaining zombies are still
// removed.
func (c *Controller) ReportZombies(ctx context.Context, remove bool) ([]Zombie, error) {
	ui := GetUI(ctx)

	zombies, err := Zombies(c.Manifest)
	if err != nil {
		return nil, err
	}

	if len(zombies) == 0 {
		ui.Info("No zombies in %s", c.Manifest.Root())
		return nil, nil
	}

	var failed int

	for _, z := range zombies {
		ui.Info("%s\t%s", z.Name, humanize.Bytes(z.Size))

		if !remove {
			continue
		}

		c.L().Debug("removing zombie", "dir", z.Path)

		err := os.RemoveAll(z.Path)
		if err != nil {
			failed++
			ui.Failed(z.Name, "remove", err)
			continue
		}

		ui.Step("Removed %s", z.Name)
	}

	if failed > 0 {
		return zombies, errors.Wrapf(ErrPackagesFailed, "unable to remove %d of %d zombies", failed, len(zombies))
	}

	return zombies, nil
}
