// Package httpclient provides a shared, pooled HTTP client factory for
// remote MCP sessions and analyzer API calls. Connection reuse matters
// here: a scan run can touch the same analyzer endpoint once per tool.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// Config holds HTTP client configuration options.
type Config struct {
	// Timeout is the total request timeout (default: 30s).
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification. Off by
	// default; scan targets are trusted registry entries, not hostile
	// endpoints under test.
	InsecureSkipVerify bool

	// BearerToken, when non-empty, is attached to every request as
	// `Authorization: Bearer <token>`.
	BearerToken string

	// MaxIdleConns is the maximum number of idle connections across all
	// hosts (default: 100).
	MaxIdleConns int

	// MaxConnsPerHost is the maximum connections per host (default: 10).
	MaxConnsPerHost int

	// IdleConnTimeout is how long idle connections stay pooled (default: 90s).
	IdleConnTimeout time.Duration

	// DialTimeout is the timeout for establishing connections (default: 10s).
	DialTimeout time.Duration
}

// DefaultConfig returns defaults sized for scan workloads.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxIdleConns:    100,
		MaxConnsPerHost: 10,
		IdleConnTimeout: 90 * time.Second,
		DialTimeout:     10 * time.Second,
	}
}

var (
	defaultClient *http.Client
	defaultOnce   sync.Once
)

// Default returns a shared, pre-configured HTTP client safe for
// concurrent use. Prefer Default() over creating per-call clients so
// connections are reused across a run.
func Default() *http.Client {
	defaultOnce.Do(func() {
		defaultClient = New(DefaultConfig())
	})
	return defaultClient
}

// New creates an HTTP client with the given configuration.
func New(cfg Config) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 10
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	var rt http.RoundTripper = &http.Transport{
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		DialContext:           dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	if cfg.BearerToken != "" {
		rt = &bearerTransport{base: rt, token: cfg.BearerToken}
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: rt,
	}
}

// bearerTransport injects a bearer credential into every outgoing request.
// The request is cloned first so the caller's request is never mutated.
type bearerTransport struct {
	base  http.RoundTripper
	token string
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(r)
}
