// Package cleanhttp provides the HTTP client used for package downloads.
package cleanhttp

import (
	"net"
	"net/http"
	"time"
)

// UserAgent is sent with every request made by DefaultClient.
const UserAgent = "samurai/0.1.0"

// Transport returns a transport that honors proxy settings from the
// environment. Compression is disabled so archives arrive byte for byte.
func Transport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DisableCompression:    true,
	}
}

type userAgent struct {
	next http.RoundTripper
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}

	return u.next.RoundTrip(req)
}

// NewClient returns a client over Transport that identifies itself with
// UserAgent.
func NewClient() *http.Client {
	return &http.Client{
		Transport: &userAgent{next: Transport()},
	}
}

var DefaultClient = NewClient()
