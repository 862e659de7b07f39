// Package catalog reads delimited point catalogs with a header row, such
// as the CSV exports of survey databases.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	pstrconv "github.com/tdewolff/parse/v2/strconv"
)

const DefaultDelimiter = ','

type Table struct {
	Header  []string
	Records []Record
	index   map[string]int
}

// Record is one data row. Line is the 1-based line in the source.
type Record struct {
	Line   int
	Fields []string
	table  *Table
}

// Load reads the catalog file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	t, err := Read(f, DefaultDelimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Read parses a catalog. Every row must have as many fields as the header.
func Read(r io.Reader, delimiter rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	t := &Table{
		Header:  header,
		Records: make([]Record, 0),
		index:   make(map[string]int, len(header)),
	}
	for i, name := range header {
		t.index[name] = i
	}

	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			line := 0
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &RowError{Line: line, Wrapped: err}
		}
		line, _ := cr.FieldPos(0)
		if isBlank(fields) {
			continue
		}
		if len(fields) != len(header) {
			return nil, &RowError{
				Line:    line,
				Wrapped: fmt.Errorf("expected %d fields, got %d", len(header), len(fields)),
			}
		}
		t.Records = append(t.Records, Record{Line: line, Fields: fields, table: t})
	}

	return t, nil
}

// checkHeader rejects first rows that look like data: numeric, empty or
// repeated cells.
func checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		name = header[i]
		if name == "" {
			return fmt.Errorf("%w: empty column name at position %d", ErrNoHeader, i+1)
		}
		if _, ok := parseNumber(name); ok {
			return fmt.Errorf("%w: %q looks like a value", ErrNoHeader, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: column %q repeated", ErrNoHeader, name)
		}
		seen[name] = true
	}
	return nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Column returns the index of the named column.
func (t *Table) Column(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q (have %s)", ErrMissingColumn, name, strings.Join(t.Header, ", "))
	}
	return i, nil
}

// Require checks that every named column exists.
func (t *Table) Require(names ...string) error {
	for _, name := range names {
		if _, err := t.Column(name); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) Len() int { return len(t.Records) }

// Get returns the raw cell of the named column.
func (r Record) Get(column string) (string, error) {
	i, err := r.table.Column(column)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(r.Fields[i]), nil
}

// Float parses the named cell as a number.
func (r Record) Float(column string) (float64, error) {
	return r.float(column, false)
}

// FloatOrZero parses the named cell, treating an empty cell as zero.
func (r Record) FloatOrZero(column string) (float64, error) {
	return r.float(column, true)
}

func (r Record) float(column string, emptyIsZero bool) (float64, error) {
	s, err := r.Get(column)
	if err != nil {
		return 0, err
	}
	if s == "" && emptyIsZero {
		return 0, nil
	}
	v, ok := parseNumber(s)
	if !ok {
		return 0, &CellError{Line: r.Line, Column: column, Value: s}
	}
	return v, nil
}

// parseNumber accepts a cell only when the whole of it is a finite number.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	b := []byte(s)
	v, n := pstrconv.ParseFloat(b)
	if n == 0 || n != len(b) {
		return 0, false
	}
	if n == 1 && (b[0] == '-' || b[0] == '+' || b[0] == '.') {
		return 0, false
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
