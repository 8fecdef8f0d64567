// Command probe-history is a CLI tool for inspecting snapshot history CSVs.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/johan/snapshot-collector/internal/cli"
)

type options struct {
	csvPath string
	tail    int
	output  string
}

func main() {
	cli.Execute(newRootCmd())
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "probe-history --csv <path> [--tail N] [--output table|json]",
		Short: "Shows the most recent rows of a snapshot history CSV.",
		Example: `  probe-history --csv data/session3_history.csv
  probe-history --csv data/wncaab_odds.csv --tail 25
  probe-history --csv data/wncaab_odds.csv --output json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "table" && opts.output != "json" {
				return fmt.Errorf("invalid output format: %s", opts.output)
			}
			if opts.tail < 0 {
				return fmt.Errorf("--tail must not be negative")
			}

			header, rows, err := readHistory(opts.csvPath)
			if err != nil {
				return err
			}
			total := len(rows)
			if opts.tail > 0 && len(rows) > opts.tail {
				rows = rows[len(rows)-opts.tail:]
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return outputJSON(out, header, rows)
			}
			outputTable(out, header, rows)
			if len(rows) < total {
				fmt.Fprintf(out, "\n... showing last %d of %d rows\n", len(rows), total)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.csvPath, "csv", "", "History CSV to inspect")
	flags.IntVar(&opts.tail, "tail", 10, "Number of most recent rows to show (0 for all)")
	flags.StringVar(&opts.output, "output", "table", "Output format: table or json")
	cli.MarkRequired(cmd, "csv")

	return cmd
}

// readHistory returns the header row and the data rows of a history file.
func readHistory(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 0

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading history file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("history file %s is empty", path)
	}
	return records[0], records[1:], nil
}

func outputTable(w io.Writer, header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = v
		}
		t.AppendRow(r)
	}
	t.Render()
}

func outputJSON(w io.Writer, header []string, rows [][]string) error {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		entry := make(map[string]string, len(header))
		for i, h := range header {
			entry[h] = row[i]
		}
		out = append(out, entry)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
