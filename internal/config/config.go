// Package config loads the service configuration from an optional YAML file
// and ELMS_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Timezone is the IANA zone that decides what "today" is for the
	// calendar and when the reminder job fires.
	Timezone string `yaml:"timezone"`

	// SessionTTL is how long a mock login stays valid.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// SeedDemo loads the demo catalogue on start.
	SeedDemo bool `yaml:"seed_demo"`

	// ReminderCron is the five-field schedule of the deadline digest.
	ReminderCron string `yaml:"reminder_cron"`

	// ReminderHorizonDays is how far ahead the digest looks.
	ReminderHorizonDays int `yaml:"reminder_horizon_days"`

	// LoginRateLimit is the number of login attempts allowed per client IP
	// per minute.
	LoginRateLimit int `yaml:"login_rate_limit"`

	// AllowedOrigins lists host patterns allowed to open the dashboard
	// websocket cross-origin, e.g. "localhost:5173".
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AdminPINHash is a bcrypt hash (see "elms hash-pin"). When set,
	// choosing the admin role at login requires the matching PIN as the
	// password. Empty keeps the open mock login.
	AdminPINHash string `yaml:"admin_pin_hash"`
}

func Default() *Config {
	return &Config{
		Listen:              ":8080",
		LogLevel:            "info",
		Timezone:            "UTC",
		SessionTTL:          24 * time.Hour,
		SeedDemo:            true,
		ReminderCron:        "0 7 * * *",
		ReminderHorizonDays: 7,
		LoginRateLimit:      10,
	}
}

// Normalize fills zero values with defaults so partial files still work.
func (c *Config) Normalize() {
	d := Default()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = d.LogLevel
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = d.SessionTTL
	}
	if strings.TrimSpace(c.ReminderCron) == "" {
		c.ReminderCron = d.ReminderCron
	}
	if c.ReminderHorizonDays <= 0 {
		c.ReminderHorizonDays = d.ReminderHorizonDays
	}
	if c.LoginRateLimit <= 0 {
		c.LoginRateLimit = d.LoginRateLimit
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads path (skipped when empty), applies environment overrides
// from getenv and normalizes the result.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.Normalize()

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("ELMS_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := getenv("ELMS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("ELMS_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := getenv("ELMS_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse ELMS_SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	if v := getenv("ELMS_SEED_DEMO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse ELMS_SEED_DEMO: %w", err)
		}
		c.SeedDemo = b
	}
	if v := getenv("ELMS_REMINDER_CRON"); v != "" {
		c.ReminderCron = v
	}
	if v := getenv("ELMS_REMINDER_HORIZON_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ELMS_REMINDER_HORIZON_DAYS: %w", err)
		}
		c.ReminderHorizonDays = n
	}
	if v := getenv("ELMS_LOGIN_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ELMS_LOGIN_RATE_LIMIT: %w", err)
		}
		c.LoginRateLimit = n
	}
	if v := getenv("ELMS_ADMIN_PIN_HASH"); v != "" {
		c.AdminPINHash = v
	}
	if v := getenv("ELMS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, o)
			}
		}
	}
	return nil
}

// LoadDotEnv exports the KEY=value pairs in path into the process
// environment. A missing file is not an error. Variables already set win.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
