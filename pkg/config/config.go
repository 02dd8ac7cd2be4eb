package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen   string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout  time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		PageSize int           `yaml:"page_size" json:"page_size" jsonschema:"default=50,description=Default entries page size"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:feedpulse.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule struct {
		TickInterval time.Duration `yaml:"tick_interval" json:"tick_interval" jsonschema:"default=1m,description=How often the scheduler checks for due feeds"`
		MaxWorkers   int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=8,description=Maximum concurrent fetch attempts"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Fetch FetchConfig `yaml:"fetch" json:"fetch" jsonschema:"description=Feed fetching configuration"`

	WebSub WebSubConfig `yaml:"websub" json:"websub" jsonschema:"description=Push subscription configuration"`
}

// FetchConfig holds per-attempt fetch settings and polling intervals
type FetchConfig struct {
	Timeout           time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Fetch attempt timeout including body read"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Feedpulse/1.0,description=User agent for feed requests"`
	MaxBodySize       int64         `yaml:"max_body_size" json:"max_body_size" jsonschema:"default=10485760,description=Maximum feed document size in bytes"`
	DefaultInterval   time.Duration `yaml:"default_interval" json:"default_interval" jsonschema:"default=1h,description=Polling interval when the origin gives no cache hints"`
	BaseRetryInterval time.Duration `yaml:"base_retry_interval" json:"base_retry_interval" jsonschema:"default=5m,description=First retry delay after a failure"`
	Jitter            float64       `yaml:"jitter" json:"jitter" jsonschema:"default=0.1,minimum=0,maximum=0.5,description=Random interval spread as a fraction"`
}

// WebSubConfig holds push subscription settings
type WebSubConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable push subscriptions"`
	CallbackBaseURL string        `yaml:"callback_base_url" json:"callback_base_url" jsonschema:"description=Public base URL for hub callbacks"`
	LeaseSeconds    int           `yaml:"lease_seconds" json:"lease_seconds" jsonschema:"default=86400,description=Requested lease duration in seconds"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Hub request timeout"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.PageSize == 0 {
		cfg.Server.PageSize = 50
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:feedpulse.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for schedule
	if cfg.Schedule.TickInterval == 0 {
		cfg.Schedule.TickInterval = time.Minute
	}
	if cfg.Schedule.MaxWorkers == 0 {
		cfg.Schedule.MaxWorkers = 8
	}

	// set defaults for fetch
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "Feedpulse/1.0"
	}
	if cfg.Fetch.MaxBodySize == 0 {
		cfg.Fetch.MaxBodySize = 10 * 1024 * 1024
	}
	if cfg.Fetch.DefaultInterval == 0 {
		cfg.Fetch.DefaultInterval = time.Hour
	}
	if cfg.Fetch.BaseRetryInterval == 0 {
		cfg.Fetch.BaseRetryInterval = 5 * time.Minute
	}
	if cfg.Fetch.Jitter == 0 {
		cfg.Fetch.Jitter = 0.1
	}

	// set defaults for websub
	if cfg.WebSub.LeaseSeconds == 0 {
		cfg.WebSub.LeaseSeconds = 86400
	}
	if cfg.WebSub.Timeout == 0 {
		cfg.WebSub.Timeout = 30 * time.Second
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	// validate fetch config
	if cfg.Fetch.Timeout < time.Second {
		return fmt.Errorf("fetch.timeout must be at least 1 second")
	}
	if cfg.Fetch.Jitter < 0 || cfg.Fetch.Jitter > 0.5 {
		return fmt.Errorf("fetch.jitter must be between 0 and 0.5")
	}
	if cfg.Fetch.BaseRetryInterval < time.Minute {
		return fmt.Errorf("fetch.base_retry_interval must be at least 1 minute")
	}
	if cfg.Fetch.DefaultInterval < time.Minute {
		return fmt.Errorf("fetch.default_interval must be at least 1 minute")
	}

	// validate websub config
	if cfg.WebSub.Enabled {
		if cfg.WebSub.CallbackBaseURL == "" {
			return fmt.Errorf("websub.callback_base_url is required when websub is enabled")
		}
		if cfg.WebSub.LeaseSeconds < 60 {
			return fmt.Errorf("websub.lease_seconds must be at least 60")
		}
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetFetchConfig returns feed fetching configuration
func (c *Config) GetFetchConfig() FetchConfig {
	return c.Fetch
}

// GetWebSubConfig returns push subscription configuration
func (c *Config) GetWebSubConfig() WebSubConfig {
	return c.WebSub
}
