package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultBaseURL = "https://assessment.ksensetech.com/api"

type Config struct {
	Env      string         `yaml:"env"`
	API      APIConfig      `yaml:"api"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Database DatabaseConfig `yaml:"database"`
	Report   ReportConfig   `yaml:"report"`
	Log      LogConfig      `yaml:"log"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

type FetchConfig struct {
	PageSize      int     `yaml:"page_size"`
	PageDelay     string  `yaml:"page_delay"`
	RetryDelay    string  `yaml:"retry_delay"`
	MaxRetryDelay string  `yaml:"max_retry_delay"`
	MaxAttempts   int     `yaml:"max_attempts"`
	Jitter        float64 `yaml:"jitter"`
}

// DatabaseConfig points at the optional MySQL settings table holding API
// credentials. Leave Host empty to skip it.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type ReportConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// APICredentials from the settings table
type APICredentials struct {
	BaseURL string
	APIKey  string
}

func (d *DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (a *APIConfig) GetTimeout() time.Duration {
	return parseDuration(a.Timeout, 15*time.Second)
}

func (f *FetchConfig) GetPageDelay() time.Duration {
	return parseDuration(f.PageDelay, 300*time.Millisecond)
}

func (f *FetchConfig) GetRetryDelay() time.Duration {
	return parseDuration(f.RetryDelay, 1500*time.Millisecond)
}

func (f *FetchConfig) GetMaxRetryDelay() time.Duration {
	return parseDuration(f.MaxRetryDelay, 30*time.Second)
}

func (f *FetchConfig) GetPageSize() int {
	if f.PageSize <= 0 {
		return 5
	}
	return f.PageSize
}

func (f *FetchConfig) GetMaxAttempts() int {
	if f.MaxAttempts <= 0 {
		return 8
	}
	return f.MaxAttempts
}

func (f *FetchConfig) GetJitter() float64 {
	if f.Jitter <= 0 || f.Jitter > 1 {
		return 0.2
	}
	return f.Jitter
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// Load reads the YAML file at path, then a .env file if one exists, then
// applies environment overrides. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// godotenv never overwrites variables already set in the process.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnv()

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = "./reports"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		c.API.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("REPORT_DIR"); v != "" {
		c.Report.Dir = v
	}
}

// MergeCredentials fills API fields left empty by the file and environment.
func (c *Config) MergeCredentials(creds *APICredentials) {
	if creds == nil {
		return
	}
	if c.API.APIKey == "" {
		c.API.APIKey = creds.APIKey
	}
	if (c.API.BaseURL == "" || c.API.BaseURL == DefaultBaseURL) && creds.BaseURL != "" {
		c.API.BaseURL = strings.TrimRight(creds.BaseURL, "/")
	}
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.APIKey == "" {
		return fmt.Errorf("api key is required (api.api_key, API_KEY or the settings table)")
	}
	return nil
}
