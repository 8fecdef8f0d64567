// Package types provides shared type definitions for the snapshot collector.
package types

// Row is one history line, one value per schema column.
type Row []string

// Schema describes the fixed column layout of a history file.
type Schema struct {
	// Name identifies the schema; it is also the table name of SQL mirrors.
	Name    string
	Columns []string
}

// Record is anything that can be rendered as a history row.
type Record interface {
	Row() Row
}

// Len returns the number of columns.
func (s Schema) Len() int {
	return len(s.Columns)
}
