package httpclient

import (
	"crypto/tls"
	"net/http"
	"time"
)

const DefaultTimeout = 10 * time.Second

type Options struct {
	Timeout time.Duration
	// MinTLSVersion is a crypto/tls version constant, e.g. tls.VersionTLS12.
	MinTLSVersion uint16
	UserAgent     string
}

// userAgentRoundTripper sets the User-Agent on every outgoing request.
type userAgentRoundTripper struct {
	wrapped   http.RoundTripper
	userAgent string
}

func (rt *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone request to avoid mutating the original
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", rt.userAgent)
	return rt.wrapped.RoundTrip(clone)
}

// New builds the one http.Client shared by the backend, the video feed and
// article extraction.
func New(opts Options) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MinTLSVersion == 0 {
		opts.MinTLSVersion = tls.VersionTLS12
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{MinVersion: opts.MinTLSVersion}

	var rt http.RoundTripper = transport
	if opts.UserAgent != "" {
		rt = &userAgentRoundTripper{wrapped: transport, userAgent: opts.UserAgent}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   opts.Timeout,
	}
}
