// Command probe-page is a CLI tool for exploring the JSON embedded in a StubHub
// event page.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/johan/snapshot-collector/internal/cli"
	"github.com/johan/snapshot-collector/internal/source"
	"github.com/johan/snapshot-collector/internal/stubhub"
)

type options struct {
	appName string
	event   bool
	output  string
	timeout time.Duration
}

// block summarizes one JSON script block.
type block struct {
	Index   int      `json:"index"`
	AppName string   `json:"appName,omitempty"`
	Bytes   int      `json:"bytes"`
	Keys    []string `json:"keys,omitempty"`
}

func main() {
	cli.Execute(newRootCmd())
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "probe-page <path|url>",
		Short: "Lists the JSON script blocks of an event page.",
		Example: `  probe-page data/event.html
  probe-page https://www.stubhub.com/event/104 --event
  probe-page data/event.html --output json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "table" && opts.output != "json" {
				return fmt.Errorf("invalid output format: %s", opts.output)
			}

			ctx := cmd.Context()
			page, err := source.NewReader(source.Options{Timeout: opts.timeout}).Read(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.event {
				snap, err := stubhub.ParseEventPage(ctx, page, opts.appName, "", "", stubhub.DefaultOptions())
				if err != nil {
					return err
				}
				return outputSnapshot(out, snap, opts.output)
			}

			raw, err := stubhub.ExtractScriptBlocks(ctx, page)
			if err != nil {
				return err
			}
			return outputBlocks(out, describe(raw), opts.output)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.appName, "app-name", stubhub.DefaultAppName, "appName tag of the event payload")
	flags.BoolVar(&opts.event, "event", false, "Show the parsed event snapshot instead of the block list")
	flags.StringVar(&opts.output, "output", "table", "Output format: table or json")
	flags.DurationVar(&opts.timeout, "timeout", source.DefaultTimeout, "Request timeout for URLs")

	return cmd
}

func describe(raw []json.RawMessage) []block {
	blocks := make([]block, 0, len(raw))
	for i, r := range raw {
		b := block{Index: i, Bytes: len(r)}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(r, &fields); err == nil {
			for k := range fields {
				b.Keys = append(b.Keys, k)
			}
			sort.Strings(b.Keys)
			_ = json.Unmarshal(fields["appName"], &b.AppName)
		}
		blocks = append(blocks, b)
	}
	return blocks
}

func outputBlocks(w io.Writer, blocks []block, format string) error {
	if format == "json" {
		return encodeJSON(w, blocks)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "App Name", "Bytes", "Keys"})
	for _, b := range blocks {
		t.AppendRow(table.Row{b.Index, b.AppName, b.Bytes, truncate(strings.Join(b.Keys, ","), 60)})
	}
	t.Render()
	fmt.Fprintf(w, "\nTotal: %d json blocks\n", len(blocks))
	return nil
}

func outputSnapshot(w io.Writer, snap stubhub.Snapshot, format string) error {
	row := snap.Row()
	if format == "json" {
		entry := make(map[string]string, len(row))
		for i, col := range stubhub.SnapshotSchema.Columns {
			entry[col] = row[i]
		}
		return encodeJSON(w, entry)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Column", "Value"})
	for i, col := range stubhub.SnapshotSchema.Columns {
		t.AppendRow(table.Row{col, row[i]})
	}
	t.Render()
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
