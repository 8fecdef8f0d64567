// Package logging builds the slog loggers used by the commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/johan/snapshot-collector/internal/config"
)

// ParseLevel maps a config level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
}

// New returns a logger writing to w. The text format uses tint, json uses the
// standard JSON handler. verbose forces the debug level.
func New(cfg config.LoggingConfig, w io.Writer, verbose bool) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	switch cfg.Format {
	case "", "text":
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}
	return slog.New(handler), nil
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(cfg config.LoggingConfig, w io.Writer, verbose bool) (*slog.Logger, error) {
	logger, err := New(cfg, w, verbose)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
