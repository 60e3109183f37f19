// Package config loads settings from defaults, an optional YAML file,
// PURESEARCH_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/FranksOps/puresearch/internal/logging"
	"github.com/FranksOps/puresearch/internal/transport"
)

const (
	EnvPrefix = "PURESEARCH"
	// DefaultFile is looked up in the working directory when no path is given.
	DefaultFile = "puresearch.yaml"
)

// Journal backends.
const (
	JournalNone     = "none"
	JournalSQLite   = "sqlite"
	JournalPostgres = "postgres"
	JournalJSON     = "json"
	JournalCSV      = "csv"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Log     LogConfig     `mapstructure:"log"`
	Journal JournalConfig `mapstructure:"journal"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Search  SearchConfig  `mapstructure:"search"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Index   IndexConfig   `mapstructure:"index"`
}

type APIConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	TLSProfile         string        `mapstructure:"tls_profile"`
	UserAgent          string        `mapstructure:"user_agent"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// JournalConfig selects where API call records go. DSN is a file path for
// sqlite, json and csv, and a connection string for postgres.
type JournalConfig struct {
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
}

// MetricsConfig.Port 0 disables the /metrics server.
type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

type SearchConfig struct {
	PerPage int `mapstructure:"per_page"`
}

type CrawlConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	DefaultDepth int           `mapstructure:"default_depth"`
}

type IndexConfig struct {
	RespectRobots     bool    `mapstructure:"respect_robots"`
	Concurrency       int     `mapstructure:"concurrency"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Jitter            float64 `mapstructure:"jitter"`
	UserAgent         string  `mapstructure:"user_agent"`
}

var defaults = map[string]any{
	"api.base_url":              "http://localhost:8080/api/v1",
	"api.timeout":               "15s",
	"api.tls_profile":           "go",
	"api.user_agent":            "",
	"api.insecure_skip_verify":  false,
	"log.level":                 "info",
	"log.format":                "text",
	"journal.backend":           JournalNone,
	"journal.dsn":               "",
	"metrics.port":              0,
	"search.per_page":           10,
	"crawl.poll_interval":       "2s",
	"crawl.default_depth":       1,
	"index.respect_robots":      true,
	"index.concurrency":         4,
	"index.requests_per_second": 2.0,
	"index.jitter":              0.2,
	"index.user_agent":          "",
}

// Load reads configuration. path may be empty, in which case DefaultFile is
// used if present. flags maps config keys onto command line flags; a flag
// only overrides when set on the command line.
func Load(path string, flags map[string]*pflag.Flag) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, f := range flags {
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("context: bind flag %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("context: read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("context: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("context: api.base_url %q is not an http(s) url", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("context: api.timeout must not be negative")
	}
	if _, err := transport.ParseProfile(c.API.TLSProfile); err != nil {
		return fmt.Errorf("context: api.tls_profile: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("context: log.format must be text or json, got %q", c.Log.Format)
	}

	c.Journal.Backend = strings.ToLower(c.Journal.Backend)
	switch c.Journal.Backend {
	case "", JournalNone:
		c.Journal.Backend = JournalNone
	case JournalSQLite, JournalPostgres, JournalJSON, JournalCSV:
		if c.Journal.DSN == "" {
			return fmt.Errorf("context: journal.dsn is required for the %s backend", c.Journal.Backend)
		}
	default:
		return fmt.Errorf("context: unknown journal.backend %q", c.Journal.Backend)
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("context: metrics.port %d out of range", c.Metrics.Port)
	}
	if c.Search.PerPage < 1 {
		return fmt.Errorf("context: search.per_page must be positive")
	}
	if c.Crawl.PollInterval <= 0 {
		return fmt.Errorf("context: crawl.poll_interval must be positive")
	}
	if c.Crawl.DefaultDepth < 1 || c.Crawl.DefaultDepth > 3 {
		return fmt.Errorf("context: crawl.default_depth must be between 1 and 3")
	}
	if c.Index.Concurrency < 1 {
		return fmt.Errorf("context: index.concurrency must be positive")
	}
	if c.Index.Jitter < 0 || c.Index.Jitter > 1 {
		return fmt.Errorf("context: index.jitter must be between 0 and 1")
	}
	return nil
}
