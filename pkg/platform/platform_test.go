package platform

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(out string) Prober {
	return func(ctx context.Context) (string, error) {
		return out, nil
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("windows needs no probe", func(t *testing.T) {
		r := &Resolver{
			GOOS: "windows",
			Probe: func(ctx context.Context) (string, error) {
				t.Fatal("probe should not run")
				return "", nil
			},
		}

		p, err := r.Resolve(ctx)
		require.NoError(t, err)

		assert.Equal(t, Windows, p)
	})

	t.Run("probe output is trimmed and lower cased", func(t *testing.T) {
		cases := map[string]Platform{
			"Linux\n":     Linux,
			"Darwin\r\n":  MacOS,
			"\tFreeBSD\n": FreeBSD,
			"SunOS\n":     Unix,
		}

		for out, expected := range cases {
			r := &Resolver{GOOS: "linux", Probe: fixed(out)}

			p, err := r.Resolve(ctx)
			require.NoError(t, err)

			assert.Equal(t, expected, p, "uname output %q", out)
		}
	})

	t.Run("falls back to the runtime os when the probe fails", func(t *testing.T) {
		r := &Resolver{
			GOOS: "darwin",
			Probe: func(ctx context.Context) (string, error) {
				return "", fmt.Errorf("no uname")
			},
		}

		p, err := r.Resolve(ctx)
		require.NoError(t, err)

		assert.Equal(t, MacOS, p)
	})

	t.Run("rejects unknown systems", func(t *testing.T) {
		r := &Resolver{GOOS: "plan9"}

		_, err := r.Resolve(ctx)
		require.Error(t, err)

		assert.True(t, errors.Is(err, ErrUnsupportedPlatform))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("uses backslashes on windows", func(t *testing.T) {
		assert.Equal(t, `build\out\bin`, Normalize("build/out/bin", Windows))
	})

	t.Run("uses forward slashes elsewhere", func(t *testing.T) {
		for _, p := range []Platform{Linux, MacOS, FreeBSD, Unix} {
			assert.Equal(t, "build/out/bin", Normalize(`build\out\bin`, p))
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		inputs := []string{"", "a", `a\b/c`, `\\server\share`, "/abs/path/", `mixed/\sep`}

		for _, p := range All {
			for _, in := range inputs {
				once := Normalize(in, p)
				assert.Equal(t, once, Normalize(once, p))
			}
		}
	})
}

func TestPlatformSets(t *testing.T) {
	assert.True(t, Linux.In([]Platform{Windows, Linux}))
	assert.False(t, MacOS.In([]Platform{Windows, Linux}))
	assert.False(t, Linux.In(nil))

	assert.True(t, FreeBSD.Known())
	assert.False(t, Platform("android").Known())
}
