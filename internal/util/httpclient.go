// Package util provides logging, terminal styling and the shared HTTP client
package util

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

var (
	sharedClient     *http.Client
	sharedClientOnce sync.Once
)

// DefaultHTTPTimeout is used when the configuration does not set one
const DefaultHTTPTimeout = 30 * time.Second

type httpClientConfig struct {
	timeout             time.Duration
	maxIdleConns        int
	maxIdleConnsPerHost int
	idleConnTimeout     time.Duration
	tlsHandshakeTimeout time.Duration
	expectContinue      time.Duration
	keepAlive           time.Duration
	dialTimeout         time.Duration
}

// A single API host is talked to, so per-host pools are sized for it.
func defaultConfig(timeout time.Duration) httpClientConfig {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return httpClientConfig{
		timeout:             timeout,
		maxIdleConns:        32,
		maxIdleConnsPerHost: 16,
		idleConnTimeout:     90 * time.Second,
		tlsHandshakeTimeout: 5 * time.Second,
		expectContinue:      1 * time.Second,
		keepAlive:           30 * time.Second,
		dialTimeout:         5 * time.Second,
	}
}

func createTransport(cfg httpClientConfig) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.dialTimeout,
			KeepAlive: cfg.keepAlive,
		}).DialContext,
		MaxIdleConns:          cfg.maxIdleConns,
		MaxIdleConnsPerHost:   cfg.maxIdleConnsPerHost,
		IdleConnTimeout:       cfg.idleConnTimeout,
		TLSHandshakeTimeout:   cfg.tlsHandshakeTimeout,
		ExpectContinueTimeout: cfg.expectContinue,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// NewHTTPClient returns a pooled client with the given overall request timeout
func NewHTTPClient(timeout time.Duration) *http.Client {
	cfg := defaultConfig(timeout)
	return &http.Client{
		Transport: createTransport(cfg),
		Timeout:   cfg.timeout,
	}
}

// GetSharedClient returns the process-wide client with the default timeout.
// Used for calls outside the catalog API, such as the release check.
func GetSharedClient() *http.Client {
	sharedClientOnce.Do(func() {
		sharedClient = NewHTTPClient(DefaultHTTPTimeout)
	})
	return sharedClient
}
