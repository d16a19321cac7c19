package lockfile

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTake(t *testing.T) {
	dir, err := ioutil.TempDir("", "lockfile")
	require.NoError(t, err)

	defer os.RemoveAll(dir)

	path := filepath.Join(dir, ".samurai-lock")

	t.Run("creates and removes the lock", func(t *testing.T) {
		release, err := Take(context.Background(), path, nil)
		require.NoError(t, err)

		_, err = os.Stat(path)
		require.NoError(t, err)

		release()

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("waits while the lock is held", func(t *testing.T) {
		release, err := Take(context.Background(), path, nil)
		require.NoError(t, err)

		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		var waited bool

		_, err = Take(ctx, path, func() { waited = true })
		require.Error(t, err)

		assert.True(t, waited)
		assert.Equal(t, context.DeadlineExceeded, err)
	})
}
