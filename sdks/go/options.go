package gatekeep

import (
	"log/slog"
	"net/http"
	"time"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithServerAddr sets the gatekeep admin server address.
// If not set, defaults to the GATEKEEP_ADMIN_ADDR environment variable.
func WithServerAddr(addr string) Option {
	return func(c *Client) {
		c.serverAddr = addr
	}
}

// WithAdminToken sets the bearer token presented on every admin API call.
// If not set, defaults to the GATEKEEP_ADMIN_TOKEN environment variable.
func WithAdminToken(token string) Option {
	return func(c *Client) {
		c.adminToken = token
	}
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to the GATEKEEP_TIMEOUT environment variable, or
// 5 seconds when that is unset or unparseable. Ignored when WithHTTPClient
// supplies the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom http.Client for making requests.
// This is useful for testing, proxying, or custom transport configurations.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for warnings (e.g. response decode
// failures on non-JSON error bodies).
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}
