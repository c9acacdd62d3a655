package httpclient

import (
	"net"
	"net/http"
	"time"
)

type Options struct {
	// DisableKeepAlives forces a fresh connection per request so DNS and
	// connect phases are measured every time.
	DisableKeepAlives bool
	UserAgent         string
}

// NewHttpClient builds the client used for probing. It has no overall
// timeout; probes bound each request with a context deadline.
func NewHttpClient(opts Options) *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DisableKeepAlives:     opts.DisableKeepAlives,

		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}

	var rt http.RoundTripper = transport
	if opts.UserAgent != "" {
		rt = &userAgentTransport{next: transport, userAgent: opts.UserAgent}
	}

	return &http.Client{
		Transport: rt,
	}
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	cp := req.Clone(req.Context())
	cp.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(cp)
}
