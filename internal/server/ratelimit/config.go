package ratelimit

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Rule limits one method on a route. A Prefix ending in "/" matches every
// path below it; otherwise the path must match exactly.
type Rule struct {
	Method string
	Prefix string
	Limit  int           // requests per Window
	Window time.Duration
	Burst  int // bucket size, Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT" envDefault:"600"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW" envDefault:"1m"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
	IdleTTL         time.Duration `env:"RATE_LIMIT_IDLE_TTL" envDefault:"1h"`
	Allowlist       []string      `env:"RATE_LIMIT_WHITELIST" envSeparator:","`
	Denylist        []string      `env:"RATE_LIMIT_BLACKLIST" envSeparator:","`
	Rules           []Rule        `env:"-"`
}

// LoadConfig reads the RATE_LIMIT_* environment variables and attaches the default rules.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse rate limit env: %w", err)
	}
	if cfg.DefaultLimit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_DEFAULT_LIMIT must be positive, got %d", cfg.DefaultLimit)
	}
	if cfg.DefaultWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_DEFAULT_WINDOW must be positive, got %s", cfg.DefaultWindow)
	}
	cfg.Rules = DefaultRules()
	return cfg, nil
}

// DefaultRules throttles sign-in and application creation hardest, then
// applicant and staff writes. Reads fall through to the default limit.
func DefaultRules() []Rule {
	return []Rule{
		{Method: "POST", Prefix: "/staff/login", Limit: 10, Window: time.Minute, Burst: 5},
		{Method: "POST", Prefix: "/applicants", Limit: 30, Window: time.Hour, Burst: 5},

		{Method: "POST", Prefix: "/applicants/", Limit: 120, Window: time.Minute, Burst: 20},
		{Method: "PUT", Prefix: "/applicants/", Limit: 120, Window: time.Minute, Burst: 20},
		{Method: "PATCH", Prefix: "/applicants/", Limit: 120, Window: time.Minute, Burst: 20},
		{Method: "DELETE", Prefix: "/applicants/", Limit: 60, Window: time.Minute, Burst: 10},

		{Method: "POST", Prefix: "/staff/publish", Limit: 6, Window: time.Minute, Burst: 2},
		{Method: "POST", Prefix: "/staff/reconcile", Limit: 6, Window: time.Minute, Burst: 2},
		{Method: "POST", Prefix: "/staff/", Limit: 300, Window: time.Minute, Burst: 50},
		{Method: "PUT", Prefix: "/staff/", Limit: 300, Window: time.Minute, Burst: 50},
		{Method: "DELETE", Prefix: "/staff/", Limit: 60, Window: time.Minute, Burst: 10},
	}
}
