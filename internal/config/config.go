package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is given explicitly
const DefaultPath = "config/config.yaml"

// Environment variables that override file values
const (
	EnvBaseURL   = "TMDB_API_BASE_URL"
	EnvAuthToken = "TMDB_API_AUTH_TOKEN"
)

// Config holds the application configuration
type Config struct {
	Environment Environment     `yaml:"environment"`
	Test        TestConfig      `yaml:"test"`
	Reporting   ReportingConfig `yaml:"reporting"`
	Archive     ArchiveConfig   `yaml:"archive"`
	Logging     LoggingConfig   `yaml:"logging"`
}

// Environment describes the gateway under test
type Environment struct {
	BaseURL string            `yaml:"base_url"`
	Auth    AuthConfig        `yaml:"auth"`
	Headers map[string]string `yaml:"headers"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Type  string `yaml:"type"`
	Token string `yaml:"token"`
}

// TestConfig holds test execution configuration
type TestConfig struct {
	// Timeout bounds every HTTP call, in seconds
	Timeout        int         `yaml:"timeout"`
	Catalog        string      `yaml:"catalog"`
	Only           []string    `yaml:"only"`
	Tags           []string    `yaml:"tags"`
	Cache          CacheConfig `yaml:"cache"`
	StrictAdvisory bool        `yaml:"strict_advisory"`
}

// CacheConfig holds defaults for timing contracts that do not set their own
type CacheConfig struct {
	Ratio   float64 `yaml:"ratio"`
	Samples int     `yaml:"samples"`
}

// ReportingConfig holds reporting configuration
type ReportingConfig struct {
	Format    []string `yaml:"format"`
	OutputDir string   `yaml:"output_dir"`
	Detailed  bool     `yaml:"detailed"`
	NoColor   bool     `yaml:"no_color"`
}

// ArchiveConfig selects an optional SQL sink for run history.
// DSN wins over the discrete connection fields when both are set.
type ArchiveConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Dir     string `yaml:"dir"`
	Verbose bool   `yaml:"verbose"`
}

// Report formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

var knownFormats = map[string]bool{FormatText: true, FormatJSON: true, FormatXLSX: true}

var knownDrivers = map[string]bool{"postgres": true, "mysql": true, "sqlserver": true, "sqlite3": true}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads the configuration from a YAML file and environment variables.
// An empty path reads DefaultPath if it exists and falls back to defaults otherwise.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	var config Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("config file not found at %s", path)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if baseURL := os.Getenv(EnvBaseURL); baseURL != "" {
		config.Environment.BaseURL = baseURL
	}
	if token := os.Getenv(EnvAuthToken); token != "" {
		config.Environment.Auth.Token = token
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Environment.BaseURL == "" {
		c.Environment.BaseURL = "http://localhost:3000/api"
	}
	c.Environment.BaseURL = strings.TrimRight(c.Environment.BaseURL, "/")
	if c.Environment.Auth.Token != "" && c.Environment.Auth.Type == "" {
		c.Environment.Auth.Type = "bearer"
	}
	if c.Test.Timeout == 0 {
		c.Test.Timeout = 30
	}
	if c.Test.Cache.Ratio == 0 {
		c.Test.Cache.Ratio = 0.5
	}
	if c.Test.Cache.Samples == 0 {
		c.Test.Cache.Samples = 2
	}
	if len(c.Reporting.Format) == 0 {
		c.Reporting.Format = []string{FormatText, FormatJSON}
	}
	if c.Reporting.OutputDir == "" {
		c.Reporting.OutputDir = filepath.Join("reports")
	}
}

// Validate checks the values a run depends on
func (c *Config) Validate() error {
	u, err := url.Parse(c.Environment.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL, got %q", c.Environment.BaseURL)
	}
	if c.Test.Timeout <= 0 {
		return fmt.Errorf("test.timeout must be positive")
	}
	if c.Test.Cache.Ratio <= 0 || c.Test.Cache.Ratio > 1 {
		return fmt.Errorf("test.cache.ratio must be in (0, 1], got %g", c.Test.Cache.Ratio)
	}
	if c.Test.Cache.Samples < 2 {
		return fmt.Errorf("test.cache.samples must be at least 2, got %d", c.Test.Cache.Samples)
	}
	for _, f := range c.Reporting.Format {
		if !knownFormats[f] {
			return fmt.Errorf("unsupported report format: %s", f)
		}
	}
	if c.Archive.Driver != "" && !knownDrivers[c.Archive.Driver] {
		return fmt.Errorf("unsupported archive driver: %s", c.Archive.Driver)
	}
	return nil
}

// RequestTimeout returns the per-call timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Test.Timeout) * time.Second
}

// Headers returns the configured request headers including authentication
func (c *Config) Headers() map[string]string {
	headers := make(map[string]string, len(c.Environment.Headers)+1)
	for k, v := range c.Environment.Headers {
		headers[k] = v
	}
	if token := c.Environment.Auth.Token; token != "" {
		switch strings.ToLower(c.Environment.Auth.Type) {
		case "header", "raw":
			headers["Authorization"] = token
		default:
			headers["Authorization"] = "Bearer " + token
		}
	}
	return headers
}

// HasFormat reports whether the report format f is enabled
func (c *Config) HasFormat(f string) bool {
	for _, v := range c.Reporting.Format {
		if v == f {
			return true
		}
	}
	return false
}
