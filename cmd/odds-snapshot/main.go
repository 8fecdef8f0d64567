// Command odds-snapshot reads a raw odds feed and appends one row per
// bookmaker head-to-head market to the odds CSV.
package main

import (
	"github.com/spf13/cobra"

	"github.com/johan/snapshot-collector/internal/cli"
	"github.com/johan/snapshot-collector/internal/collector"
)

type options struct {
	date      string
	timestamp string
	input     string
	csvPath   string

	configPath string
	sqlitePath string
	dryRun     bool
	verbose    bool
}

func main() {
	cli.Execute(newRootCmd())
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "odds-snapshot --date <YYYYMMDD> --timestamp <timestamp> --input-json <path|url> --csv <path>",
		Short:         "Reads raw odds JSON and appends tidy rows to a CSV.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.date, "date", "", "Snapshot date in YYYYMMDD (ET)")
	flags.StringVar(&opts.timestamp, "timestamp", "", "Run timestamp (example: 2026-02-23 04:00:00 EST)")
	flags.StringVar(&opts.input, "input-json", "", "Path or URL of the raw odds JSON")
	flags.StringVar(&opts.csvPath, "csv", "", "Output path for flattened odds CSV")
	flags.StringVar(&opts.configPath, "config", cli.DefaultConfigPath, "Path to configuration file")
	flags.StringVar(&opts.sqlitePath, "sqlite", "", "Also mirror rows into this SQLite database")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Parse and log the rows without writing them")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cli.MarkRequired(cmd, "date", "timestamp", "input-json", "csv")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	ctx := cmd.Context()

	cfg, logger, err := cli.Setup(opts.configPath, opts.verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if opts.sqlitePath != "" {
		cfg.Storage.SQLitePath = opts.sqlitePath
	}

	stor, err := collector.NewStorage(ctx, cfg.Storage, opts.csvPath, opts.dryRun)
	if err != nil {
		return err
	}

	svc := collector.NewService(cfg, stor, logger)
	defer svc.Close()

	_, err = svc.RunOddsSnapshot(ctx, collector.Request{
		SnapshotDate:      opts.date,
		SnapshotTimestamp: opts.timestamp,
		Input:             opts.input,
	})
	return err
}
