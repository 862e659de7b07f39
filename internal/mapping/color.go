package mapping

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Stop is a named color in a ramp. Names end up in mesh and material names
// when points are split by color.
type Stop struct {
	Name  string         `yaml:"name"`
	Color colorful.Color `yaml:"-"`
	Hex   string         `yaml:"hex"`
}

// Ramp lists stops from the lowest to the highest value.
type Ramp []Stop

// VelocityRamp is the radial-velocity palette, approaching stars blue and
// receding stars red.
var VelocityRamp = Ramp{
	{Name: "blue", Color: colorful.Color{R: 0, G: 0, B: 1}},
	{Name: "cyan", Color: colorful.Color{R: 0, G: 1, B: 1}},
	{Name: "yellow", Color: colorful.Color{R: 1, G: 1, B: 0}},
	{Name: "orange", Color: colorful.Color{R: 1, G: 0.4, B: 0}},
	{Name: "red", Color: colorful.Color{R: 1, G: 0, B: 0}},
}

// VelocityThresholds are the bin edges for VelocityRamp in km/s.
var VelocityThresholds = []float64{-50, -10, 10, 50}

// ParseRamp builds a ramp from name/hex pairs.
func ParseRamp(stops []Stop) (Ramp, error) {
	if len(stops) == 0 {
		return nil, ErrEmptyRamp
	}
	out := make(Ramp, len(stops))
	seen := make(map[string]bool, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s.Hex)
		if err != nil {
			return nil, fmt.Errorf("ramp stop %d (%s): %w", i, s.Name, err)
		}
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("c%d", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStop, name)
		}
		seen[name] = true
		out[i] = Stop{Name: name, Color: c, Hex: c.Hex()}
	}
	return out, nil
}

func (r Ramp) Names() []string {
	names := make([]string, len(r))
	for i, s := range r {
		names[i] = s.Name
	}
	return names
}

// Scale assigns each value a stop of a ramp. Index must be non-decreasing
// in v.
type Scale interface {
	Index(v float64) int
	Color(v float64) colorful.Color
	Ramp() Ramp
}

// LinearScale normalizes values over [Min, Max], clamping outside.
// Smooth blends between neighbouring stops instead of snapping.
type LinearScale struct {
	Min, Max float64
	Stops    Ramp
	Smooth   bool
}

func (s LinearScale) Ramp() Ramp { return s.Stops }

// Normalize maps v to [0,1].
func (s LinearScale) Normalize(v float64) float64 {
	if s.Max <= s.Min {
		return 0
	}
	return clamp((v-s.Min)/(s.Max-s.Min), 0, 1)
}

func (s LinearScale) Index(v float64) int {
	n := len(s.Stops)
	if n == 0 {
		return 0
	}
	return int(math.Floor(s.Normalize(v)*float64(n-1) + 0.5))
}

func (s LinearScale) Color(v float64) colorful.Color {
	n := len(s.Stops)
	if n == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	if !s.Smooth || n == 1 {
		return s.Stops[s.Index(v)].Color
	}
	pos := s.Normalize(v) * float64(n-1)
	i := int(math.Floor(pos))
	if i >= n-1 {
		return s.Stops[n-1].Color
	}
	return s.Stops[i].Color.BlendLab(s.Stops[i+1].Color, pos-float64(i)).Clamped()
}

// BinScale picks stop i where i is the number of thresholds strictly below
// v. Thresholds must be ascending and one fewer than the stops.
type BinScale struct {
	Thresholds []float64
	Stops      Ramp
}

// VelocityBins reproduces the fixed radial-velocity binning:
// > 50 red, > 10 orange, > -10 yellow, > -50 cyan, else blue.
func VelocityBins() BinScale {
	return BinScale{Thresholds: VelocityThresholds, Stops: VelocityRamp}
}

func (s BinScale) Ramp() Ramp { return s.Stops }

func (s BinScale) Validate() error {
	if len(s.Stops) != len(s.Thresholds)+1 {
		return fmt.Errorf("%w: %d thresholds need %d stops, got %d",
			ErrBadScale, len(s.Thresholds), len(s.Thresholds)+1, len(s.Stops))
	}
	for i := 1; i < len(s.Thresholds); i++ {
		if s.Thresholds[i] <= s.Thresholds[i-1] {
			return fmt.Errorf("%w: thresholds not ascending at %d", ErrBadScale, i)
		}
	}
	return nil
}

func (s BinScale) Index(v float64) int {
	i := 0
	for _, t := range s.Thresholds {
		if v > t {
			i++
		}
	}
	if i >= len(s.Stops) {
		i = len(s.Stops) - 1
	}
	return i
}

func (s BinScale) Color(v float64) colorful.Color {
	if len(s.Stops) == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return s.Stops[s.Index(v)].Color
}
