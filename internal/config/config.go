// Package config loads CLI configuration from an optional ripple.toml
// file and the environment. Resolution order, later wins:
// defaults, TOML file, .env file, process environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variable names. A .env file in the working directory may
// provide them; real environment variables override it.
const (
	EnvDatabase = "RIPPLE_DB"
	EnvLogLevel = "RIPPLE_LOG_LEVEL"
	EnvMaxDepth = "RIPPLE_MAX_DEPTH"
)

// Config holds the settings shared by all CLI commands.
type Config struct {
	// Database is the world database path.
	Database string `toml:"database"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// MaxDepth bounds how far one event may bubble.
	MaxDepth int `toml:"max_depth"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: "ripple.db",
		LogLevel: "info",
		MaxDepth: 64,
	}
}

// Load resolves configuration. path names a TOML file; empty path means
// "ripple.toml if present". A missing file is not an error - defaults and
// the environment still apply.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = "ripple.toml"
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if explicit {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}

	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvMaxDepth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s=%q: %w", EnvMaxDepth, v, err)
		}
		cfg.MaxDepth = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects values no command could use.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.Database == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}
