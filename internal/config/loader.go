// Package config provides configuration loading for gatekeep.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches for gatekeep.yaml/.yml in
// standard locations. The search requires an explicit YAML extension to
// avoid matching the binary itself, which Viper's built-in SetConfigName
// would match (same base name, no extension).
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("gatekeep")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: GATEKEEP_SERVER_GATEWAY_PORT
	viper.SetEnvPrefix("GATEKEEP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a gatekeep config file
// with an explicit YAML extension (.yaml or .yml). This prevents Viper
// from matching the binary "gatekeep" (no extension) in the current
// directory.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".gatekeep"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "gatekeep"))
		}
	} else {
		paths = append(paths, "/etc/gatekeep")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for gatekeep.yaml
// or .yml. Returns the full path of the first match, or empty string if
// none found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "gatekeep"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds every config key for environment variable
// override support, e.g. GATEKEEP_SERVER_GATEWAY_PORT overrides
// server.gateway_port.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.gateway_port")
	_ = viper.BindEnv("server.admin_port")
	_ = viper.BindEnv("server.timeout_seconds")
	_ = viper.BindEnv("server.shutdown_timeout_secs")
	_ = viper.BindEnv("server.trace_enabled")
	_ = viper.BindEnv("server.log_level")

	_ = viper.BindEnv("database.url")

	_ = viper.BindEnv("route_table.refresh_interval_secs")

	_ = viper.BindEnv("rate_limit.max_requests")
	_ = viper.BindEnv("rate_limit.window_secs")
	_ = viper.BindEnv("rate_limit.shards")

	_ = viper.BindEnv("auth.enabled")
	// auth.api_keys is an array; users needing per-entry overrides should
	// use the config file.

	_ = viper.BindEnv("admin.token")
	_ = viper.BindEnv("admin.token_hash")

	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, and returns the validated Config. Callers should apply
// CLI flag overrides (e.g. --dev) between LoadConfigRaw and Validate if
// they need DevMode to affect required-field defaults; LoadConfig covers
// the common case where no such override is needed.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file found; continue with env vars only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	cfg.SetDevDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigRaw reads the configuration file and applies defaults, but
// does NOT apply dev defaults or validate. Use this when CLI flags may
// override DevMode before validation.
func LoadConfigRaw() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was
// loaded, or an empty string if none was found (env vars only mode).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
