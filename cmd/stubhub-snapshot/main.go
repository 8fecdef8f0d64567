// Command stubhub-snapshot parses a StubHub event page and appends one row to
// the event history CSV.
package main

import (
	"github.com/spf13/cobra"

	"github.com/johan/snapshot-collector/internal/cli"
	"github.com/johan/snapshot-collector/internal/collector"
)

type options struct {
	date       string
	timestamp  string
	page       string
	historyCSV string

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
		Use:           "stubhub-snapshot --date <YYYYMMDD> --timestamp <timestamp> --stubhub-html <path|url> --history-csv <path>",
		Short:         "Parses a StubHub event page and appends one history row per run.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.date, "date", "", "Snapshot date in YYYYMMDD")
	flags.StringVar(&opts.timestamp, "timestamp", "", "Run timestamp (example: 2026-02-22 20:30:00 EST)")
	flags.StringVar(&opts.page, "stubhub-html", "", "Path or URL of the StubHub event page")
	flags.StringVar(&opts.historyCSV, "history-csv", "", "History CSV to append to")
	flags.StringVar(&opts.configPath, "config", cli.DefaultConfigPath, "Path to configuration file")
	flags.StringVar(&opts.sqlitePath, "sqlite", "", "Also mirror rows into this SQLite database")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Parse and log the snapshot without writing it")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cli.MarkRequired(cmd, "date", "timestamp", "stubhub-html", "history-csv")

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

	stor, err := collector.NewStorage(ctx, cfg.Storage, opts.historyCSV, opts.dryRun)
	if err != nil {
		return err
	}

	svc := collector.NewService(cfg, stor, logger)
	defer svc.Close()

	_, err = svc.RunEventSnapshot(ctx, collector.Request{
		SnapshotDate:      opts.date,
		SnapshotTimestamp: opts.timestamp,
		Input:             opts.page,
	})
	return err
}
