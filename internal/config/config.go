// Package config provides configuration loading for the snapshot commands.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/johan/snapshot-collector/internal/odds"
	"github.com/johan/snapshot-collector/internal/stubhub"
)

// Config represents the snapshot collector configuration.
type Config struct {
	// Logging settings
	Logging LoggingConfig `yaml:"logging"`

	// Event page settings
	StubHub StubHubConfig `yaml:"stubhub"`

	// Odds feed settings
	Odds OddsConfig `yaml:"odds"`

	// Remote input settings
	Fetch FetchConfig `yaml:"fetch"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level: debug, info, warn, error
	Level string `yaml:"level"`

	// Log format: text or json
	Format string `yaml:"format"`
}

// StubHubConfig contains event page parsing settings.
type StubHubConfig struct {
	// appName tag of the embedded script block holding the event payload
	AppName string `yaml:"app_name"`

	// Currency used when no listing carries one
	FallbackCurrency string `yaml:"fallback_currency"`

	// Value written to the "median method" column
	MedianMethod string `yaml:"median_method"`
}

// OddsConfig contains odds feed flattening settings.
type OddsConfig struct {
	// The only market key that produces rows
	MarketKey string `yaml:"market_key"`

	// Outcome name carrying the draw price
	DrawOutcome string `yaml:"draw_outcome"`
}

// FetchConfig contains settings for inputs given as http(s) URLs.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// StorageConfig contains storage settings.
type StorageConfig struct {
	// Storage type: "csv" or "none"
	Type string `yaml:"type"`

	// Optional SQLite database mirroring every appended row
	SQLitePath string `yaml:"sqlite_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		StubHub: StubHubConfig{
			AppName:          stubhub.DefaultAppName,
			FallbackCurrency: stubhub.DefaultCurrency,
			MedianMethod:     stubhub.MedianMethod,
		},
		Odds: OddsConfig{
			MarketKey:   odds.MarketH2H,
			DrawOutcome: odds.DrawOutcome,
		},
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		},
		Storage: StorageConfig{
			Type: "csv",
		},
	}
}

// Load loads configuration from a YAML file on top of the defaults.
//
// A sibling file named <name>.local.<ext> is merged over the base file when
// present, so machine specific overrides stay out of the shared config. Load
// returns an error satisfying os.IsNotExist only when neither file exists.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	found := false
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		found = true
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	localPath := LocalPath(path)
	data, err = os.ReadFile(localPath)
	switch {
	case err == nil:
		var override Config
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("parsing local config file: %w", err)
		}
		if err := mergo.Merge(config, override, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging local config file: %w", err)
		}
		slog.Debug("merged config with local overrides", "local", localPath)
		found = true
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading local config file: %w", err)
	}

	if !found {
		return nil, fmt.Errorf("reading config file: %w", os.ErrNotExist)
	}
	return config, nil
}

// LoadOrDefault is Load, falling back to DefaultConfig when no config file
// exists.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LocalPath returns the override path for a config file:
// "conf/config.yaml" becomes "conf/config.local.yaml".
func LocalPath(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+".local"+ext)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	if c.Storage.Type != "csv" && c.Storage.Type != "none" {
		return fmt.Errorf("invalid storage type: %s", c.Storage.Type)
	}
	if c.StubHub.AppName == "" {
		return fmt.Errorf("stubhub.app_name is required")
	}
	if c.Odds.MarketKey == "" {
		return fmt.Errorf("odds.market_key is required")
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout must not be negative")
	}
	return nil
}
