package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Loader errors. Callers match them with errors.Is.
var (
	// ErrFileNotFound is returned when the dataset path does not exist.
	ErrFileNotFound = errors.New("dataset file not found")

	// ErrSchemaMismatch is returned when the header row is not exactly the
	// agency column set. Unknown columns are rejected, never dropped.
	ErrSchemaMismatch = errors.New("dataset schema mismatch")

	// ErrEmptyFile is returned when the file has no header row at all.
	ErrEmptyFile = fmt.Errorf("%w: file has no header row", ErrSchemaMismatch)

	// ErrMalformedRow is returned when a data row cannot be turned into a record.
	ErrMalformedRow = errors.New("malformed dataset row")

	// ErrFieldCount is returned when a row is wider or narrower than the header.
	ErrFieldCount = errors.New("wrong number of fields")
)

// SchemaError describes how a header row differs from the expected columns.
type SchemaError struct {
	// Unexpected lists header names that are not agency columns.
	Unexpected []string
	// Missing lists agency columns absent from the header.
	Missing []string
	// Duplicate lists header names that appear more than once.
	Duplicate []string
}

// Error implements error.
func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected column(s) "+quoteJoin(e.Unexpected))
	}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing column(s) "+quoteJoin(e.Missing))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, "duplicate column(s) "+quoteJoin(e.Duplicate))
	}
	return ErrSchemaMismatch.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrSchemaMismatch.
func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

// RowError points at the offending line and column of a malformed row.
type RowError struct {
	// Line is the 1-based line number in the source file.
	Line int
	// Column is the header of the offending cell, empty for whole-row problems.
	Column string
	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s: line %d: %v", ErrMalformedRow, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: line %d, column %q: %v", ErrMalformedRow, e.Line, e.Column, e.Err)
}

// Unwrap lets errors.Is match both ErrMalformedRow and the cause.
func (e *RowError) Unwrap() []error {
	return []error{ErrMalformedRow, e.Err}
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
