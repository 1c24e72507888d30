// Package config provides configuration types for gatekeep.
//
// The configuration file is YAML, with six top-level sections: server,
// database, rate_limit, auth, admin, route_table, plus the top-level
// dev_mode flag. The gateway and admin
// binaries load the same document and run as independent processes.
package config

// Config is the top-level configuration for gatekeep.
type Config struct {
	// Server configures the two HTTP listeners and the upstream timeout.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Database configures the embedded relational store.
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// RateLimit configures the per-IP sliding-window rate limiter.
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// Auth configures API-key authentication for the data plane.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Admin configures the control plane's bearer-token gate.
	Admin AdminConfig `yaml:"admin" mapstructure:"admin"`

	// RouteTable configures how the gateway keeps its route table in
	// sync with the store.
	RouteTable RouteTableConfig `yaml:"route_table" mapstructure:"route_table"`

	// DevMode enables verbose logging and fills in a database URL, a fixed
	// dev admin token, and rate-limit values when the config would
	// otherwise be too sparse to boot with.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the gateway and admin HTTP listeners.
type ServerConfig struct {
	// GatewayPort is the port the data-plane proxy listens on.
	GatewayPort uint16 `yaml:"gateway_port" mapstructure:"gateway_port" validate:"required"`

	// AdminPort is the port the control-plane API listens on.
	AdminPort uint16 `yaml:"admin_port" mapstructure:"admin_port" validate:"required"`

	// TimeoutSeconds bounds the full upstream exchange for a forwarded
	// request. Defaults to 30 if not specified.
	TimeoutSeconds uint64 `yaml:"timeout_seconds" mapstructure:"timeout_seconds" validate:"omitempty,min=1"`

	// ShutdownTimeoutSecs bounds how long Run() waits for in-flight
	// requests to drain during a graceful shutdown before giving up.
	// Defaults to 10 if not specified.
	ShutdownTimeoutSecs uint64 `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs" validate:"omitempty,min=1"`

	// TraceEnabled turns on OpenTelemetry tracing for the gateway proxy
	// pipeline, exported via the stdout exporter. Off by default: the
	// gateway runs with the global no-op tracer.
	TraceEnabled bool `yaml:"trace_enabled" mapstructure:"trace_enabled"`

	// LogLevel sets the minimum log level.
	// Valid values: "debug", "info", "warn", "warning", "error".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// RouteTableConfig configures the gateway's in-memory route table.
type RouteTableConfig struct {
	// RefreshIntervalSecs polls the store for route changes at this
	// interval. 0 (the default) disables polling; the table is loaded
	// once at startup and only changes on restart.
	RefreshIntervalSecs uint64 `yaml:"refresh_interval_secs" mapstructure:"refresh_interval_secs"`
}

// DatabaseConfig configures the embedded relational store.
type DatabaseConfig struct {
	// URL is the store locator, e.g. "file:gatekeep.db" or ":memory:".
	URL string `yaml:"url" mapstructure:"url" validate:"required"`
}

// RateLimitConfig configures the sliding-window per-IP rate limiter.
type RateLimitConfig struct {
	// MaxRequests is the maximum number of requests a single client IP
	// may make within Window.
	MaxRequests uint64 `yaml:"max_requests" mapstructure:"max_requests" validate:"required,min=1"`

	// WindowSecs is the sliding window size in seconds.
	WindowSecs uint64 `yaml:"window_secs" mapstructure:"window_secs" validate:"required,min=1"`

	// Shards splits the limiter's buckets across this many independently
	// mutex-guarded shards, keyed by hash(ip) mod Shards. 0 or 1 (the
	// default) keeps the single-map limiter.
	Shards uint16 `yaml:"shards" mapstructure:"shards" validate:"omitempty,min=1"`
}

// AuthConfig configures data-plane API-key authentication.
type AuthConfig struct {
	// Enabled turns API-key auth on or off. When false, the gateway
	// forwards every request without checking for an API key.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// APIKeys seeds the auth validator's fingerprint set at startup,
	// unioned with whatever the store already holds.
	APIKeys []APIKeyConfig `yaml:"api_keys" mapstructure:"api_keys" validate:"omitempty,dive"`
}

// APIKeyConfig defines a config-embedded API key fingerprint.
type APIKeyConfig struct {
	// Name is a human-readable label for this key.
	Name string `yaml:"name" mapstructure:"name" validate:"required"`

	// KeyHash is the hex-encoded SHA-256 fingerprint of the cleartext key.
	KeyHash string `yaml:"key_hash" mapstructure:"key_hash" validate:"required,len=64,hexadecimal"`
}

// AdminConfig configures the control plane's bearer-token gate.
type AdminConfig struct {
	// Token is the cleartext bearer token compared against
	// "Authorization: Bearer <token>". Ignored when TokenHash is set.
	Token string `yaml:"token" mapstructure:"token"`

	// TokenHash is an Argon2id PHC-formatted hash of the bearer token,
	// checked instead of Token when set.
	TokenHash string `yaml:"token_hash" mapstructure:"token_hash"`
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.ShutdownTimeoutSecs == 0 {
		c.Server.ShutdownTimeoutSecs = 10
	}
}

// SetDevDefaults applies permissive defaults for development mode, so
// gatekeep can boot with a minimal config during local testing.
// Applied before validation so required fields are satisfied.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	if c.Database.URL == "" {
		c.Database.URL = ":memory:"
	}
	if c.Admin.Token == "" && c.Admin.TokenHash == "" {
		c.Admin.Token = "dev-admin-token"
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 100
	}
	if c.RateLimit.WindowSecs == 0 {
		c.RateLimit.WindowSecs = 60
	}
}
