package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/johan/snapshot-collector/internal/types"
)

// SQLiteStorage mirrors history rows into a SQLite database, one table per
// schema. Rows are only ever inserted.
type SQLiteStorage struct {
	db *sql.DB

	mu     sync.Mutex
	tables map[string]bool
}

// NewSQLiteStorage opens (creating if needed) the database at path.
func NewSQLiteStorage(ctx context.Context, path string) (*SQLiteStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		slog.Warn("failed to set WAL mode", "err", err)
	}

	return &SQLiteStorage{
		db:     db,
		tables: make(map[string]bool),
	}, nil
}

// DB exposes the underlying handle for read-side tooling.
func (s *SQLiteStorage) DB() *sql.DB {
	return s.db
}

// Append inserts records into the schema's table in a single transaction.
func (s *SQLiteStorage) Append(ctx context.Context, schema types.Schema, records []types.Record) error {
	out, err := rows(schema, records)
	if err != nil {
		return err
	}
	if schema.Name == "" {
		return fmt.Errorf("schema name required for sqlite storage")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureTable(ctx, schema); err != nil {
		return err
	}
	if len(out) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertQuery(schema))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, schema.Len())
	for _, row := range out {
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row into %s: %w", schema.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rows: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) ensureTable(ctx context.Context, schema types.Schema) error {
	if s.tables[schema.Name] {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, createTableQuery(schema)); err != nil {
		return fmt.Errorf("creating table %s: %w", schema.Name, err)
	}
	s.tables[schema.Name] = true
	return nil
}

func createTableQuery(schema types.Schema) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quoteIdent(schema.Name))
	b.WriteString(" (id INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, col := range schema.Columns {
		b.WriteString(", ")
		b.WriteString(quoteIdent(col))
		b.WriteString(" TEXT NOT NULL")
	}
	b.WriteString(")")
	return b.String()
}

func insertQuery(schema types.Schema) string {
	cols := make([]string, schema.Len())
	marks := make([]string, schema.Len())
	for i, col := range schema.Columns {
		cols[i] = quoteIdent(col)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(schema.Name), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// quoteIdent quotes a SQL identifier; history columns contain spaces.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
