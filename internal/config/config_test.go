package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/johan/snapshot-collector/internal/odds"
	"github.com/johan/snapshot-collector/internal/stubhub"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "viagogo-event", cfg.StubHub.AppName)
	require.Equal(t, "USD", cfg.StubHub.FallbackCurrency)
	require.Equal(t, "histogram-weighted-midpoint", cfg.StubHub.MedianMethod)
	require.Equal(t, "h2h", cfg.Odds.MarketKey)
	require.Equal(t, "Draw", cfg.Odds.DrawOutcome)
}

func TestDefaultConfig_MatchesPackageDefaults(t *testing.T) {
	cfg := DefaultConfig()

	sh := stubhub.DefaultOptions()
	require.Equal(t, stubhub.DefaultAppName, cfg.StubHub.AppName)
	require.Equal(t, sh.FallbackCurrency, cfg.StubHub.FallbackCurrency)
	require.Equal(t, sh.MedianMethod, cfg.StubHub.MedianMethod)

	o := odds.DefaultOptions()
	require.Equal(t, o.MarketKey, cfg.Odds.MarketKey)
	require.Equal(t, o.DrawOutcome, cfg.Odds.DrawOutcome)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
logging:
  level: debug
fetch:
  timeout: 5s
odds:
  market_key: spreads
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
	require.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	require.Equal(t, "spreads", cfg.Odds.MarketKey)
	require.Equal(t, "Draw", cfg.Odds.DrawOutcome)
	require.Equal(t, "csv", cfg.Storage.Type)
}

func TestLoad_LocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
logging:
  level: warn
storage:
  type: csv
`)
	writeFile(t, filepath.Join(dir, "config.local.yaml"), `
storage:
  sqlite_path: /tmp/history.db
logging:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, "csv", cfg.Storage.Type)
	require.Equal(t, "/tmp/history.db", cfg.Storage.SQLitePath)
}

func TestLoad_OnlyLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, filepath.Join(dir, "config.local.yaml"), "stubhub:\n  fallback_currency: EUR\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "EUR", cfg.StubHub.FallbackCurrency)
	require.Equal(t, "viagogo-event", cfg.StubHub.AppName)
}

func TestLoad_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))

	cfg, err := LoadOrDefault(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "logging: [unterminated")

	_, err := Load(path)
	require.Error(t, err)
	require.False(t, errors.Is(err, os.ErrNotExist))

	_, err = LoadOrDefault(path)
	require.Error(t, err)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("conf", "config.local.yaml"), LocalPath(filepath.Join("conf", "config.yaml")))
	require.Equal(t, "settings.local", LocalPath("settings"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "json logging", mutate: func(c *Config) { c.Logging.Format = "json" }},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "none storage", mutate: func(c *Config) { c.Storage.Type = "none" }},
		{name: "bad storage", mutate: func(c *Config) { c.Storage.Type = "s3" }, wantErr: true},
		{name: "empty app name", mutate: func(c *Config) { c.StubHub.AppName = "" }, wantErr: true},
		{name: "empty market key", mutate: func(c *Config) { c.Odds.MarketKey = "" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Fetch.Timeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
