// Package config loads the portal configuration from a YAML file with
// environment overrides for deployment-sensitive values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all cemsreg configuration.
type Config struct {
	Addr          string        `yaml:"addr"`
	DBPath        string        `yaml:"db_path"`
	LogLevel      string        `yaml:"log_level"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Admin     AdminConfig     `yaml:"admin"`
}

// RateLimitConfig controls the per-IP request limiter.
type RateLimitConfig struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// AdminConfig describes the administrator account seeded at startup when the
// admin table is empty.
type AdminConfig struct {
	Email           string `yaml:"email"`
	InitialPassword string `yaml:"initial_password"`
}

func (c *Config) defaults() {
	if c.Addr == "" {
		c.Addr = ":8090"
	}
	if c.DBPath == "" {
		c.DBPath = "data/cemsreg.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * 24 * time.Hour
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 64 * 1024
	}
	if c.RateLimit.MaxRequests <= 0 {
		c.RateLimit.MaxRequests = 60
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.Admin.Email == "" {
		c.Admin.Email = "admin@cemsreg.local"
	}
}

func (c *Config) env() {
	if v := os.Getenv("CEMSREG_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("CEMSREG_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("CEMSREG_ADMIN_EMAIL"); v != "" {
		c.Admin.Email = v
	}
	if v := os.Getenv("CEMSREG_ADMIN_PASSWORD"); v != "" {
		c.Admin.InitialPassword = v
	}
}

// Load reads the YAML file at path, applies environment overrides, then
// defaults. An empty path skips the file and uses overrides + defaults only.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.env()
	cfg.defaults()
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("config: session_secret (or SESSION_SECRET) is required")
	}
	return cfg, nil
}
