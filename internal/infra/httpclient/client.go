package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Config sizes the client for the handful of calls one CLI invocation makes
// (a single property PUT or GET), so there is no idle pool to tune.
type Config struct {
	// Timeout bounds the whole request, body read included.
	Timeout time.Duration

	DialTimeout    time.Duration
	TLSHandshake   time.Duration
	ResponseHeader time.Duration
}

// DefaultConfig spends the 30s upload budget mostly on waiting for Jira to answer.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		DialTimeout:    5 * time.Second,
		TLSHandshake:   5 * time.Second,
		ResponseHeader: 25 * time.Second,
	}
}

func New(cfg Config) *http.Client {
	dialer := &net.Dialer{Timeout: cfg.DialTimeout}

	tr := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DialContext:       dialer.DialContext,
		ForceAttemptHTTP2: true,

		// The process exits after one call; pooled connections would only linger.
		DisableKeepAlives: true,

		TLSHandshakeTimeout:   cfg.TLSHandshake,
		ResponseHeaderTimeout: cfg.ResponseHeader,
	}

	return &http.Client{
		Transport: tr,
		Timeout:   cfg.Timeout,
	}
}
