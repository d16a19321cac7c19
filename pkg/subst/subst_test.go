package subst

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestParseVars(t *testing.T) {
	t.Run("splits pairs on the first equals", func(t *testing.T) {
		vars, err := ParseVars("A=1;B=x=y;;C=")
		require.NoError(t, err)

		assert.Equal(t, []Var{
			{Name: "A", Value: "1"},
			{Name: "B", Value: "x=y"},
			{Name: "C", Value: ""},
		}, vars)
	})

	t.Run("empty input is no vars", func(t *testing.T) {
		vars, err := ParseVars("")
		require.NoError(t, err)

		assert.Empty(t, vars)
	})

	t.Run("rejects entries without a name", func(t *testing.T) {
		_, err := ParseVars("A=1;oops")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedVar))

		_, err = ParseVars("=1")
		require.Error(t, err)
	})
}

func TestText(t *testing.T) {
	t.Run("replaces every occurrence and doubles backslashes", func(t *testing.T) {
		in := `{"a": "${DIR}/x", "b": "${DIR}", "c": "${OTHER}"}`

		out := Text([]byte(in), []Var{{Name: "DIR", Value: `C:\deps`}}, env(nil))

		assert.Equal(t, `{"a": "C:\\deps/x", "b": "C:\\deps", "c": "${OTHER}"}`, string(out))

		var v map[string]string
		require.NoError(t, json.Unmarshal(out, &v))

		assert.Equal(t, `C:\deps/x`, v["a"])
	})

	t.Run("is idempotent once no tokens remain", func(t *testing.T) {
		vars := []Var{{Name: "V", Value: `a\b`}, {Name: "W", Value: "2"}}

		once := Text([]byte(`"${V}-${W}"`), vars, env(nil))
		twice := Text(once, vars, env(nil))

		assert.Equal(t, once, twice)
	})

	t.Run("replaces environment tokens", func(t *testing.T) {
		out := Text([]byte(`"@{HOME}/@{home}"`), nil, env(map[string]string{
			"HOME": `\root`,
			"home": "lower",
		}))

		assert.Equal(t, `"\\root/lower"`, string(out))
	})

	t.Run("leaves unset environment tokens verbatim", func(t *testing.T) {
		in := `"@{NOT_SET_ANYWHERE} and @{ALSO_NOT}"`

		out := Text([]byte(in), nil, env(nil))

		assert.Equal(t, in, string(out))
	})

	t.Run("matches environment tokens non-greedily", func(t *testing.T) {
		out := Text([]byte(`"@{A}}@{B}"`), nil, env(map[string]string{"A": "1", "B": "2"}))

		assert.Equal(t, `"1}2"`, string(out))
	})

	t.Run("command line vars run before the environment", func(t *testing.T) {
		out := Text([]byte(`"${V}"`), []Var{{Name: "V", Value: "@{E}"}}, env(map[string]string{"E": "env"}))

		assert.Equal(t, `"env"`, string(out))
	})

	t.Run("a value can inject structure", func(t *testing.T) {
		in := `{"name": "${N}"}`

		out := Text([]byte(in), []Var{{Name: "N", Value: `x", "injected": "yes`}}, env(nil))

		var v map[string]string
		require.NoError(t, json.Unmarshal(out, &v))

		assert.Equal(t, "x", v["name"])
		assert.Equal(t, "yes", v["injected"])
	})
}

func TestValues(t *testing.T) {
	t.Run("replaces string values only", func(t *testing.T) {
		in := `{"${K}": "${K}", "list": ["@{E}", 1.50, true, null], "n": {"x": "${K}"}}`

		out, err := Values([]byte(in), []Var{{Name: "K", Value: "v"}}, env(map[string]string{"E": "e"}))
		require.NoError(t, err)

		assert.Equal(t, `{"${K}":"v","list":["e",1.50,true,null],"n":{"x":"v"}}`, string(out))
	})

	t.Run("keeps member order", func(t *testing.T) {
		in := `{"z": "1", "a": "2", "m": "3"}`

		out, err := Values([]byte(in), nil, env(nil))
		require.NoError(t, err)

		assert.Equal(t, `{"z":"1","a":"2","m":"3"}`, string(out))
	})

	t.Run("does not need escaping", func(t *testing.T) {
		out, err := Values([]byte(`{"p": "${DIR}"}`), []Var{{Name: "DIR", Value: `C:\deps`}}, env(nil))
		require.NoError(t, err)

		var v map[string]string
		require.NoError(t, json.Unmarshal(out, &v))

		assert.Equal(t, `C:\deps`, v["p"])
	})

	t.Run("a value cannot inject structure", func(t *testing.T) {
		in := `{"name": "${N}"}`

		out, err := Values([]byte(in), []Var{{Name: "N", Value: `x", "injected": "yes`}}, env(nil))
		require.NoError(t, err)

		var v map[string]string
		require.NoError(t, json.Unmarshal(out, &v))

		assert.Equal(t, `x", "injected": "yes`, v["name"])
		assert.NotContains(t, v, "injected")
	})

	t.Run("reports malformed documents", func(t *testing.T) {
		_, err := Values([]byte(`{"a": }`), nil, env(nil))
		require.Error(t, err)
	})
}
