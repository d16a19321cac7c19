package fetch

import (
	"context"
	"io"
	"os"

	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"
)

// GitProgress returns the writer clone progress of pkg is sent to. It may
// return nil.
type GitProgress func(pkg *manifest.Package) io.Writer

// Git clones a repository with its submodules and checks out the tag named
// by the package version.
type Git struct {
	common

	Progress GitProgress
}

func (g *Git) Fetch(ctx context.Context, pkg *manifest.Package) error {
	path := pkg.Path()

	opts := &git.CloneOptions{
		URL:               pkg.Source.URL,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}

	if g.Progress != nil {
		opts.Progress = g.Progress(pkg)

		if c, ok := opts.Progress.(io.Closer); ok {
			defer c.Close()
		}
	}

	g.L().Debug("cloning", "package", pkg.Name, "url", opts.URL, "dir", path)

	err := g.clone(ctx, path, opts, pkg.Version)
	if err != nil {
		os.RemoveAll(path)
		return err
	}

	return nil
}

func (g *Git) clone(ctx context.Context, path string, opts *git.CloneOptions, version string) error {
	repo, err := git.PlainCloneContext(ctx, path, false, opts)
	if err != nil {
		return errors.Wrapf(err, "unable to clone %s", opts.URL)
	}

	if version == "" {
		return nil
	}

	h, err := repo.ResolveRevision(plumbing.Revision(plumbing.NewTagReferenceName(version)))
	if err != nil {
		return errors.Wrapf(err, "unable to find tag %s", version)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return err
	}

	g.L().Debug("checking out tag", "tag", version, "commit", h.String())

	err = wt.Checkout(&git.CheckoutOptions{Hash: *h})
	if err != nil {
		return errors.Wrapf(err, "unable to checkout %s", version)
	}

	return nil
}
