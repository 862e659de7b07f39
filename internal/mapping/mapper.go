// Package mapping turns catalog rows into positioned, colored points.
package mapping

import (
	"fmt"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/starstage/internal/catalog"
	"gonum.org/v1/gonum/spatial/r3"
)

type Mode string

const (
	ModeGalactic  Mode = "galactic"
	ModeCartesian Mode = "cartesian"
)

// DefaultPosFactor scales catalog distances (kpc) into scene units.
const DefaultPosFactor = 1.8

// FieldMap names the columns, or expressions over columns, that feed each
// logical field. ID is optional; without it points are identified by line.
type FieldMap struct {
	Mode         Mode     `yaml:"mode"`
	Lon          string   `yaml:"lon,omitempty"`
	Lat          string   `yaml:"lat,omitempty"`
	Distance     string   `yaml:"distance,omitempty"`
	X            string   `yaml:"x,omitempty"`
	Y            string   `yaml:"y,omitempty"`
	Z            string   `yaml:"z,omitempty"`
	Value        string   `yaml:"value,omitempty"`
	ID           string   `yaml:"id,omitempty"`
	OptionalZero []string `yaml:"optional_zero,omitempty"`
}

// DefaultFieldMap matches the RAVE survey export.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		Mode:         ModeGalactic,
		Lon:          "Glon",
		Lat:          "Glat",
		Distance:     "dist",
		Value:        "HRV",
		ID:           "RAVE_OBS_ID",
		OptionalZero: []string{"dist", "HRV", "Teff_K"},
	}
}

type Point struct {
	ID         string
	Line       int
	Position   r3.Vec
	Value      float64
	ColorIndex int
	Color      colorful.Color
}

type Mapper struct {
	Fields    FieldMap
	PosFactor float64
	Scale     Scale

	axes  [3]*Field
	value *Field
	zero  map[string]bool
}

// NewMapper compiles the field map. A nil scale uses the velocity bins and
// a zero factor uses DefaultPosFactor.
func NewMapper(fm FieldMap, posFactor float64, scale Scale) (*Mapper, error) {
	if scale == nil {
		scale = VelocityBins()
	}
	if posFactor == 0 {
		posFactor = DefaultPosFactor
	}
	if v, ok := scale.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	if len(scale.Ramp()) == 0 {
		return nil, ErrEmptyRamp
	}

	var srcs [3]string
	switch fm.Mode {
	case ModeGalactic, "":
		fm.Mode = ModeGalactic
		srcs = [3]string{fm.Lon, fm.Lat, fm.Distance}
	case ModeCartesian:
		srcs = [3]string{fm.X, fm.Y, fm.Z}
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadMode, fm.Mode)
	}

	m := &Mapper{Fields: fm, PosFactor: posFactor, Scale: scale, zero: make(map[string]bool)}
	for i, src := range srcs {
		if src == "" {
			return nil, fmt.Errorf("%w: %s axis %d", ErrMissingAxis, fm.Mode, i)
		}
		f, err := ParseField(src)
		if err != nil {
			return nil, err
		}
		m.axes[i] = f
	}
	if fm.Value != "" {
		f, err := ParseField(fm.Value)
		if err != nil {
			return nil, err
		}
		m.value = f
	}
	for _, c := range fm.OptionalZero {
		m.zero[c] = true
	}
	return m, nil
}

// Columns lists every column the mapper reads.
func (m *Mapper) Columns() []string {
	seen := make(map[string]bool)
	cols := make([]string, 0)
	add := func(names ...string) {
		for _, n := range names {
			if n != "" && !seen[n] {
				seen[n] = true
				cols = append(cols, n)
			}
		}
	}
	for _, f := range m.axes {
		add(f.Columns()...)
	}
	if m.value != nil {
		add(m.value.Columns()...)
	}
	add(m.Fields.ID)
	return cols
}

// Map converts every record in order. The first bad row aborts the whole
// call and no points are returned.
func (m *Mapper) Map(t *catalog.Table) ([]Point, error) {
	if err := t.Require(m.Columns()...); err != nil {
		return nil, err
	}
	points := make([]Point, 0, t.Len())
	for _, r := range t.Records {
		p, err := m.MapRecord(r)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func (m *Mapper) MapRecord(r catalog.Record) (Point, error) {
	var c [3]float64
	for i, f := range m.axes {
		v, err := f.Eval(r, m.zero)
		if err != nil {
			return Point{}, err
		}
		c[i] = v
	}

	var pos r3.Vec
	if m.Fields.Mode == ModeCartesian {
		pos = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	} else {
		pos = GalacticToCartesian(c[0], c[1], c[2])
	}
	pos = r3.Scale(m.PosFactor, pos)

	p := Point{Line: r.Line, Position: pos}
	if m.value != nil {
		v, err := m.value.Eval(r, m.zero)
		if err != nil {
			return Point{}, err
		}
		p.Value = v
	}
	p.ColorIndex = m.Scale.Index(p.Value)
	p.Color = m.Scale.Color(p.Value)

	if m.Fields.ID != "" {
		id, err := r.Get(m.Fields.ID)
		if err != nil {
			return Point{}, err
		}
		p.ID = id
	} else {
		p.ID = strconv.Itoa(r.Line)
	}
	return p, nil
}
