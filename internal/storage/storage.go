// Package storage provides append-only backends for history rows.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/johan/snapshot-collector/internal/types"
)

// ErrColumnMismatch is returned when a record does not fit its schema.
var ErrColumnMismatch = errors.New("record does not match schema")

// Storage defines the interface for storing history rows.
type Storage interface {
	// Append writes records after any existing history. Prior rows are never
	// rewritten.
	Append(ctx context.Context, schema types.Schema, records []types.Record) error

	// Close closes the storage backend.
	Close() error
}

// rows renders records and checks every row against the schema before anything
// is written, so a bad record never leaves a half-written batch.
func rows(schema types.Schema, records []types.Record) ([][]string, error) {
	if schema.Len() == 0 {
		return nil, fmt.Errorf("schema %q has no columns", schema.Name)
	}
	out := make([][]string, 0, len(records))
	for i, r := range records {
		row := r.Row()
		if len(row) != schema.Len() {
			return nil, fmt.Errorf("record %d has %d values, schema %q has %d columns: %w",
				i, len(row), schema.Name, schema.Len(), ErrColumnMismatch)
		}
		out = append(out, row)
	}
	return out, nil
}

// NullStorage is a no-op storage that discards all data.
type NullStorage struct{}

// NewNullStorage creates a new null storage.
func NewNullStorage() *NullStorage {
	return &NullStorage{}
}

// Append does nothing.
func (s *NullStorage) Append(ctx context.Context, schema types.Schema, records []types.Record) error {
	return nil
}

// Close does nothing.
func (s *NullStorage) Close() error {
	return nil
}

// MultiStorage appends to several backends in order. The first failure stops
// the append; backends before it keep what they wrote.
type MultiStorage struct {
	backends []Storage
}

// NewMultiStorage creates a storage fanning out to backends.
func NewMultiStorage(backends ...Storage) *MultiStorage {
	return &MultiStorage{backends: backends}
}

// Append appends records to every backend.
func (m *MultiStorage) Append(ctx context.Context, schema types.Schema, records []types.Record) error {
	for _, b := range m.backends {
		if err := b.Append(ctx, schema, records); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every backend and joins their errors.
func (m *MultiStorage) Close() error {
	var errs []error
	for _, b := range m.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
