package fetch

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	"github.com/go-git/go-git/v5/plumbing/transport/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Serve file:// clones in process so the tests do not need a git binary.
	client.InstallProtocol("file", server.DefaultServer)
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) plumbing.Hash {
	t.Helper()

	err := ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	_, err = wt.Add(name)
	require.NoError(t, err)

	h, err := wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return h
}

func TestGit(t *testing.T) {
	dir, err := ioutil.TempDir("", "fetch")
	require.NoError(t, err)

	defer os.RemoveAll(dir)

	upstream := filepath.Join(dir, "upstream")

	repo, err := git.PlainInit(upstream, false)
	require.NoError(t, err)

	v1 := commitFile(t, repo, upstream, "zlib.h", "#define ZLIB_VERSION \"1.2.11\"")

	_, err = repo.CreateTag("v1.2.11", v1, nil)
	require.NoError(t, err)

	commitFile(t, repo, upstream, "zlib.h", "#define ZLIB_VERSION \"1.2.12\"")

	url := filepath.Join(upstream, ".git")

	t.Run("clones the default branch", func(t *testing.T) {
		pkg := newPackage(dir, "zlib-head", &manifest.Source{Type: manifest.Git, URL: url})

		var out bytes.Buffer

		g := &Git{Progress: func(*manifest.Package) io.Writer { return &out }}

		err := g.Fetch(context.Background(), pkg)
		require.NoError(t, err)

		body, err := ioutil.ReadFile(filepath.Join(pkg.Path(), "zlib.h"))
		require.NoError(t, err)

		assert.Contains(t, string(body), "1.2.12")
	})

	t.Run("checks out the version tag", func(t *testing.T) {
		spec := manifest.Spec{
			Name:    "zlib",
			Version: "v1.2.11",
			Source:  &manifest.Source{Type: manifest.Git, URL: url},
		}

		base := filepath.Join(dir, "vendor")
		pkg := manifest.NewPackage(spec, dir, func() string { return base })

		g := &Git{}

		err := g.Fetch(context.Background(), pkg)
		require.NoError(t, err)

		body, err := ioutil.ReadFile(filepath.Join(pkg.Path(), "zlib.h"))
		require.NoError(t, err)

		assert.Contains(t, string(body), "1.2.11")
	})

	t.Run("removes the clone when the tag is missing", func(t *testing.T) {
		spec := manifest.Spec{
			Name:    "zlib-bad",
			Version: "v9.9.9",
			Source:  &manifest.Source{Type: manifest.Git, URL: url},
		}

		base := filepath.Join(dir, "vendor")
		pkg := manifest.NewPackage(spec, dir, func() string { return base })

		g := &Git{}

		err := g.Fetch(context.Background(), pkg)
		require.Error(t, err)

		_, err = os.Stat(pkg.Path())
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("fails on an unreachable repository", func(t *testing.T) {
		pkg := newPackage(dir, "nowhere", &manifest.Source{
			Type: manifest.Git,
			URL:  filepath.Join(dir, "does-not-exist"),
		})

		g := &Git{}

		err := g.Fetch(context.Background(), pkg)
		require.Error(t, err)

		_, err = os.Stat(pkg.Path())
		assert.True(t, os.IsNotExist(err))
	})
}
