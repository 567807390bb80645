package csv2pg

import (
	"errors"
	"fmt"
	"time"
)

// Confidence is the qualitative trust label attached to an inferred type.
// It is an ordinal label, not a probability.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// IsValid returns true if the Confidence is one of the defined levels.
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// CSVProperties describes the detected physical format of a CSV file.
type CSVProperties struct {
	// Delimiter is the detected column separator.
	Delimiter rune

	// Encoding is the detected character encoding (e.g. "utf-8", "latin-1").
	Encoding string

	// QuoteChar is the quote character. encoding/csv only supports '"'.
	QuoteChar rune

	// HasHeader indicates the first row carries column names.
	HasHeader bool

	// ColumnCount is the number of columns in the header row.
	ColumnCount int
}

// CSVSample is a bounded, in-memory sample of a CSV file. It is built once
// per inference run and treated as immutable afterward.
type CSVSample struct {
	// Path is the source CSV file path.
	Path string

	// Properties are the detected file properties.
	Properties CSVProperties

	// Headers are the raw column headers in file order.
	Headers []string

	// Rows are the sampled rows keyed by raw header. A nil value represents
	// a null (empty) cell.
	Rows []map[string]*string

	// SampleSize is the number of rows sampled.
	SampleSize int
}

// ColumnSample is one column's observed data within a CSVSample.
type ColumnSample struct {
	// Name is the raw header string.
	Name string

	// Values are the observed values in row order. Nil entries are nulls.
	Values []*string

	// NullCount is the number of null or blank values.
	NullCount int

	// TotalCount is the total number of sampled values.
	TotalCount int
}

// NullPercentage returns the percentage of null values in the sample,
// or 0 when the sample is empty.
func (c ColumnSample) NullPercentage() float64 {
	if c.TotalCount == 0 {
		return 0
	}
	return float64(c.NullCount) / float64(c.TotalCount) * 100
}

// ColumnChunk is a bounded group of columns processed together in one
// inference request.
type ColumnChunk struct {
	// ChunkID is the 0-based index of this chunk.
	ChunkID int

	// TotalChunks is the total number of chunks in the run.
	TotalChunks int

	// Columns are the raw header names assigned to this chunk.
	Columns []string

	// SampleData holds the sampled rows projected down to this chunk's
	// columns, capped at PreviewRows. Missing cells are omitted, not filled.
	SampleData []map[string]*string
}

// InferredType is a classifier's verdict for one column. Produced by either
// the heuristic classifier or an external provider; never mutated afterward.
type InferredType struct {
	// ColumnName is the sanitized column name.
	ColumnName string

	// PgType is the PostgreSQL type, possibly with a length modifier
	// (e.g. "varchar(120)").
	PgType string

	// Confidence is the qualitative trust level of this verdict.
	Confidence Confidence

	// Reasoning is a free-text explanation of the choice.
	Reasoning string

	// Nullable indicates the column may hold NULL.
	Nullable bool

	// Constraints are additional column constraints (e.g. "UNIQUE").
	Constraints []string

	// CastRule is a pgloader cast expression, set only when the source
	// value needs a transform before loading.
	CastRule string
}

// ColumnSchema is the final per-column contract in a TableSchema.
type ColumnSchema struct {
	Name        string
	PgType      string
	Nullable    bool
	Constraints []string
	CastRule    string
}

// NeedsCast reports whether the column requires a custom cast rule.
func (c ColumnSchema) NeedsCast() bool {
	return c.CastRule != ""
}

// TableSchema is the complete inferred schema for one table.
//
// Invariants: column names are unique; PrimaryKey, when non-empty, names an
// existing column.
type TableSchema struct {
	// TableName is the sanitized table name.
	TableName string

	// Columns are the per-column schemas.
	Columns []ColumnSchema

	// PrimaryKey is the selected primary key column name, or "" when no
	// candidate qualified.
	PrimaryKey string
}

// Column returns the column with the given name, or nil if absent.
func (t *TableSchema) Column(name string) *ColumnSchema {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Validate checks the TableSchema invariants. It returns a multi-error if
// multiple validation failures occur.
func (t *TableSchema) Validate() error {
	var errs []error

	if len(t.Columns) == 0 {
		errs = append(errs, fmt.Errorf("schema must have at least one column: %w", ErrInvalidConfig))
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		if seen[col.Name] {
			errs = append(errs, fmt.Errorf("duplicate column name %q: %w", col.Name, ErrInvalidConfig))
		}
		seen[col.Name] = true
	}

	if t.PrimaryKey != "" && !seen[t.PrimaryKey] {
		errs = append(errs, fmt.Errorf("primary key %q not found in columns: %w", t.PrimaryKey, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// InferenceConfig contains all parameters for one inference run.
type InferenceConfig struct {
	// ChunkSize is the maximum number of columns per inference request.
	ChunkSize int

	// SmartChunking groups related columns by naming prefix instead of
	// splitting at fixed offsets.
	SmartChunking bool

	// UseFallback reclassifies failed chunks with the heuristic classifier
	// instead of dropping their columns.
	UseFallback bool

	// Timeout is the per-chunk provider timeout. Zero means the provider's
	// default applies.
	Timeout time.Duration
}

// Validate checks if the InferenceConfig has valid values.
func (c *InferenceConfig) Validate() error {
	var errs []error

	if c.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("chunk size must be at least 1: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// GenerationResult holds the paths of all generated artifacts.
type GenerationResult struct {
	ConfigPath string
	ScriptPath string
	StatePath  string
	LogPath    string
}
