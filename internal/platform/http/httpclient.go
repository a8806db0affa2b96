// Package http provides the outbound HTTP client shared by external integrations.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient creates a client for calls to external APIs such as the identity
// provider's key endpoint. http.DefaultClient has no timeout, so it is never used.
// Proxy settings come from the environment (HTTP_PROXY and friends).
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
