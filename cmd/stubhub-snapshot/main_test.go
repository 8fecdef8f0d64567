package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/johan/snapshot-collector/internal/stubhub"
)

const page = `<html><body>
<script type="application/json">{"appName":"viagogo-event","eventId":7,"eventName":"Session 3","totalListings":3,
"grid":{"minPrice":40,"maxPrice":95,"items":[{"buyerCurrencyCode":"CAD"}]},
"histogram":{"buckets":[{"startPrice":40,"endPrice":60,"frequency":1},{"startPrice":60,"endPrice":100,"frequency":2}]}}</script>
</body></html>`

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestRootCmd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "event.html")
	require.NoError(t, os.WriteFile(input, []byte(page), 0644))
	history := filepath.Join(dir, "data", "history.csv")

	err := execute(t,
		"--date", "20260222",
		"--timestamp", "2026-02-22 20:30:00 EST",
		"--stubhub-html", input,
		"--history-csv", history,
	)
	require.NoError(t, err)

	f, err := os.Open(history)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	require.Equal(t, stubhub.SnapshotSchema.Columns, rows[0])
	require.Equal(t, []string{
		"20260222", "2026-02-22 20:30:00 EST", "7", "Session 3", "", "",
		"3", "40.00", "80.00", "95.00", "CAD", "", "histogram-weighted-midpoint",
	}, rows[1])
}

func TestRootCmd_DryRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "event.html")
	require.NoError(t, os.WriteFile(input, []byte(page), 0644))
	history := filepath.Join(dir, "history.csv")

	err := execute(t,
		"--date", "d", "--timestamp", "t",
		"--stubhub-html", input, "--history-csv", history, "--dry-run",
	)
	require.NoError(t, err)

	_, err = os.Stat(history)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRootCmd_PayloadNotFound(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "event.html")
	require.NoError(t, os.WriteFile(input, []byte(`<html><script>{}</script></html>`), 0644))

	err := execute(t,
		"--date", "d", "--timestamp", "t",
		"--stubhub-html", input, "--history-csv", filepath.Join(dir, "history.csv"),
	)
	require.ErrorIs(t, err, stubhub.ErrPayloadNotFound)
}

func TestRootCmd_MissingFlags(t *testing.T) {
	err := execute(t, "--date", "20260222")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required flag")
}
