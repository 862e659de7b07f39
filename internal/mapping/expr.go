package mapping

import (
	"fmt"
	"regexp"

	"github.com/san-kum/starstage/internal/catalog"
	"gopkg.in/Knetic/govaluate.v3"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Field reads one number from a record: either a plain column or an
// arithmetic expression over columns, such as "HRV * -1" or
// "[dist kpc] * 1000".
type Field struct {
	src     string
	column  string
	expr    *govaluate.EvaluableExpression
	columns []string
}

// ParseField compiles src. A bare identifier is a column reference.
func ParseField(src string) (*Field, error) {
	if src == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadField)
	}
	if identRe.MatchString(src) {
		return &Field{src: src, column: src, columns: []string{src}}, nil
	}
	expr, err := govaluate.NewEvaluableExpression(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadField, src, err)
	}
	seen := make(map[string]bool)
	cols := make([]string, 0)
	for _, v := range expr.Vars() {
		if !seen[v] {
			seen[v] = true
			cols = append(cols, v)
		}
	}
	return &Field{src: src, expr: expr, columns: cols}, nil
}

func (f *Field) String() string { return f.src }

// Columns lists the columns the field reads.
func (f *Field) Columns() []string { return f.columns }

// Eval computes the field for r. Columns in zeroIfEmpty read empty cells
// as 0.
func (f *Field) Eval(r catalog.Record, zeroIfEmpty map[string]bool) (float64, error) {
	if f.expr == nil {
		return readCell(r, f.column, zeroIfEmpty)
	}

	params := make(map[string]interface{}, len(f.columns))
	for _, c := range f.columns {
		v, err := readCell(r, c, zeroIfEmpty)
		if err != nil {
			return 0, err
		}
		params[c] = v
	}
	out, err := f.expr.Evaluate(params)
	if err != nil {
		return 0, fmt.Errorf("line %d: %q: %w", r.Line, f.src, err)
	}
	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: line %d: %q gave %v", ErrNotANumber, r.Line, f.src, out)
	}
	return v, nil
}

func readCell(r catalog.Record, column string, zeroIfEmpty map[string]bool) (float64, error) {
	if zeroIfEmpty[column] {
		return r.FloatOrZero(column)
	}
	return r.Float(column)
}
