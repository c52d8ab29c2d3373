// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Defaults used when neither the config file nor the environment set a value.
const (
	DefaultPort       = 8080
	DefaultSQLitePath = "uniadmit.db"
)

// Config represents the configuration that can be loaded from a JSON file and
// overridden by environment variables. All fields are optional.
type Config struct {
	// Server
	Port       int    `json:"port,omitempty" env:"UNIADMIT_PORT"`
	CORSOrigin string `json:"cors_origin,omitempty" env:"UNIADMIT_CORS_ORIGIN"`

	// Persistence
	StoreDriver string `json:"store_driver,omitempty" env:"UNIADMIT_STORE_DRIVER"` // memory, sqlite or postgres
	StoreDSN    string `json:"store_dsn,omitempty" env:"UNIADMIT_STORE_DSN"`       // SQLite path or PostgreSQL URL
	DatabaseURL string `json:"database_url,omitempty" env:"DATABASE_URL"`         // PostgreSQL fallback for StoreDSN

	// Seeding
	SeedFile string `json:"seed_file,omitempty" env:"UNIADMIT_SEED_FILE"`

	Verbose bool `json:"verbose,omitempty" env:"UNIADMIT_VERBOSE"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ParseEnv overlays environment variables onto target. Fields whose variable
// is unset keep their current value.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the optional config file at path, applies the environment
// overlay, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:        DefaultPort,
		StoreDriver: DriverSQLite,
		CORSOrigin:  "*",
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}

	switch strings.ToLower(c.StoreDriver) {
	case "", DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DSN() == "" {
			return fmt.Errorf("config error: postgres store requires 'store_dsn' or DATABASE_URL")
		}
	default:
		return fmt.Errorf("config error: unknown 'store_driver' %q", c.StoreDriver)
	}

	if c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: seed file not found: %s", c.SeedFile)
		}
	}

	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.StoreDSN != "" {
		return c.StoreDSN
	}
	switch strings.ToLower(c.StoreDriver) {
	case DriverPostgres:
		return c.DatabaseURL
	case DriverSQLite:
		return DefaultSQLitePath
	}
	return ""
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.CORSOrigin == "" {
		result.CORSOrigin = defaults.CORSOrigin
	}
	if result.StoreDriver == "" {
		result.StoreDriver = defaults.StoreDriver
	}
	if result.StoreDSN == "" {
		result.StoreDSN = defaults.StoreDSN
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SeedFile == "" {
		result.SeedFile = defaults.SeedFile
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}
