package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/johan/snapshot-collector/internal/types"
)

// CSVStorage appends rows to a CSV history file.
//
// The header is written once, when the file is created. Existing content is
// never read or rewritten: every append opens the file with O_APPEND.
type CSVStorage struct {
	path string

	mu          sync.Mutex
	rowCount    int64
	wroteHeader bool
}

// NewCSVStorage creates a CSV storage for path. The file and its parent
// directories are created on the first append.
func NewCSVStorage(path string) (*CSVStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("csv path required")
	}
	return &CSVStorage{path: path}, nil
}

// Append writes records to the end of the file, writing the schema header
// first if the file does not exist yet. Appending zero records still creates
// the file with its header.
func (s *CSVStorage) Append(ctx context.Context, schema types.Schema, records []types.Record) error {
	out, err := rows(schema, records)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	exists := true
	if _, err := os.Stat(s.path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking history file: %w", err)
		}
		exists = false
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}

	w := csv.NewWriter(f)
	// Match the line endings of files written by earlier tooling.
	w.UseCRLF = true

	if !exists {
		if err := w.Write(schema.Columns); err != nil {
			f.Close()
			return fmt.Errorf("writing header: %w", err)
		}
		s.wroteHeader = true
	}
	lines := make([][]string, len(out))
	for i, row := range out {
		lines[i] = make([]string, len(row))
		for j, cell := range row {
			lines[i][j] = normalizeLineBreaks(cell)
		}
	}
	if err := w.WriteAll(lines); err != nil {
		f.Close()
		return fmt.Errorf("writing rows: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing history file: %w", err)
	}

	s.rowCount += int64(len(out))
	return nil
}

// Close does nothing; the file is only held open during Append.
func (s *CSVStorage) Close() error {
	return nil
}

// normalizeLineBreaks turns "\r\n" and lone "\r" into "\n". The writer emits
// every "\n" inside a quoted cell as "\r\n" and drops a bare "\r".
func normalizeLineBreaks(cell string) string {
	if !strings.Contains(cell, "\r") {
		return cell
	}
	return strings.ReplaceAll(strings.ReplaceAll(cell, "\r\n", "\n"), "\r", "\n")
}

// RowCount returns the number of rows appended by this storage.
func (s *CSVStorage) RowCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowCount
}

// WroteHeader reports whether this storage created the file.
func (s *CSVStorage) WroteHeader() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wroteHeader
}
