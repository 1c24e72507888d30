// Package ratelimit provides sliding-window rate limiting domain types.
package ratelimit

import "time"

// Config defines the sliding-window rate limit parameters: admit at most
// MaxRequests events within any Window-length interval.
type Config struct {
	// MaxRequests is the maximum number of admitted requests within Window.
	MaxRequests int

	// Window is the sliding interval length.
	Window time.Duration
}

// Result contains the outcome of a Check call.
type Result struct {
	// Allowed indicates whether the request is admitted.
	Allowed bool

	// Remaining is the number of additional requests the caller may make
	// before the window is exhausted.
	Remaining int

	// RetryAfter is set when Allowed is false: the minimum duration until
	// the oldest timestamp in the window ages out and a slot frees up.
	RetryAfter time.Duration
}

// KeyType identifies the type of rate limit key.
type KeyType string

// KeyTypeIP is the only key type gatekeep uses: client IP.
const KeyTypeIP KeyType = "ip"

// keyPrefix is the base prefix for all rate limit keys.
const keyPrefix = "ratelimit"

// FormatKey returns a structured rate limit key, e.g.
// FormatKey(KeyTypeIP, "192.168.1.1") -> "ratelimit:ip:192.168.1.1".
func FormatKey(keyType KeyType, value string) string {
	return keyPrefix + ":" + string(keyType) + ":" + value
}
