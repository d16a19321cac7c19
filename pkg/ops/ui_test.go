package ops

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"runtime"
	"testing"

	"github.com/anass-b/samurai/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUI(t *testing.T) {
	t.Run("prefixes every line", func(t *testing.T) {
		var buf bytes.Buffer

		ui := &UI{Out: &buf, NoColor: true}

		w := ui.Prefixed("zlib")

		_, err := w.Write([]byte("one\ntwo\r\nthr"))
		require.NoError(t, err)

		_, err = w.Write([]byte("ee\n"))
		require.NoError(t, err)

		assert.Equal(t, "zlib │ one\nzlib │ two\nzlib │ three\n", buf.String())
	})

	t.Run("collapses redrawn progress lines", func(t *testing.T) {
		var buf bytes.Buffer

		ui := &UI{Out: &buf, NoColor: true}

		w := ui.Prefixed("zlib")

		_, err := w.Write([]byte("Counting objects:   1%\rCounting objects:  50%\rCounting objects: 100%, done.\n"))
		require.NoError(t, err)

		_, err = w.Write([]byte("Receiving objects:  10%\rReceiving objects: 100%\r"))
		require.NoError(t, err)

		require.NoError(t, w.(io.Closer).Close())

		assert.Equal(t, "zlib │ Counting objects: 100%, done.\nzlib │ Receiving objects: 100%\n", buf.String())
	})

	t.Run("colors only when asked", func(t *testing.T) {
		var buf bytes.Buffer

		ui := &UI{Out: &buf, NoColor: true}
		ui.Step("Fetching %s", "zlib")

		assert.Equal(t, "* Fetching zlib\n", buf.String())

		buf.Reset()

		ui.NoColor = false
		ui.Step("Fetching %s", "zlib")

		assert.Contains(t, buf.String(), "\x1b[")
		assert.Contains(t, buf.String(), "* Fetching zlib")
	})

	t.Run("a buffer is not a terminal", func(t *testing.T) {
		assert.True(t, NewUI(&bytes.Buffer{}).NoColor)
	})
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh available")
	}

	var buf bytes.Buffer

	ctx := WithUI(context.Background(), &UI{Out: &buf, NoColor: true})

	r := &ExecRunner{}

	err := r.Run(ctx, "zlib", &manifest.Invocation{
		Program: "sh",
		Args:    []string{"-c", "echo configured"},
		Dir:     ".",
	})
	require.NoError(t, err)

	assert.Equal(t, "zlib │ configured\n", buf.String())

	err = r.Run(ctx, "zlib", &manifest.Invocation{
		Program: "sh",
		Args:    []string{"-c", "exit 3"},
		Dir:     ".",
	})
	require.Error(t, err)
}
