package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound indicates the catalog path does not exist.
	ErrFileNotFound = errors.New("catalog: file not found")

	// ErrEmpty indicates a catalog without any rows.
	ErrEmpty = errors.New("catalog: no rows")

	// ErrNoHeader indicates the first row does not look like column names.
	ErrNoHeader = errors.New("catalog: file has no proper header")

	// ErrMissingColumn indicates a referenced column is absent from the header.
	ErrMissingColumn = errors.New("catalog: missing column")

	// ErrNotNumeric indicates a cell that does not hold a number.
	ErrNotNumeric = errors.New("catalog: non-numeric cell")
)

// RowError reports a structurally malformed row.
type RowError struct {
	Line    int
	Wrapped error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("catalog: line %d: %v", e.Line, e.Wrapped)
}

func (e *RowError) Unwrap() error {
	return e.Wrapped
}

// CellError reports a cell that could not be converted.
type CellError struct {
	Line   int
	Column string
	Value  string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("catalog: line %d, column %q: cannot parse %q as a number", e.Line, e.Column, e.Value)
}

func (e *CellError) Unwrap() error {
	return ErrNotNumeric
}
