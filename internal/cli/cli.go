// Package cli holds the bootstrap shared by the snapshot commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/johan/snapshot-collector/internal/config"
	"github.com/johan/snapshot-collector/internal/logging"
)

// DefaultConfigPath is read when --config is not given. A missing file means
// defaults.
const DefaultConfigPath = "config.yaml"

// Setup loads and validates the configuration at path and installs the
// configured logger writing to w.
func Setup(path string, verbose bool, w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.Setup(cfg.Logging, w, verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up logging: %w", err)
	}
	return cfg, logger, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Execute runs cmd and exits non-zero with the error on stderr when it fails.
func Execute(cmd *cobra.Command) {
	ctx, cancel := SignalContext()
	err := cmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// MarkRequired marks flags as required, panicking on an unknown name.
func MarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
