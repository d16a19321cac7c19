package cleanhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	var agent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	resp, err := DefaultClient.Get(srv.URL)
	require.NoError(t, err)

	resp.Body.Close()

	assert.Equal(t, UserAgent, agent)

	req, err := http.NewRequest("GET", srv.URL, nil)
	require.NoError(t, err)

	req.Header.Set("User-Agent", "custom")

	resp, err = DefaultClient.Do(req)
	require.NoError(t, err)

	resp.Body.Close()

	assert.Equal(t, "custom", agent)
}
