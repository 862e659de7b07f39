package mapping

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lucasb-eyer/go-colorful"
)

func TestVelocityBins(t *testing.T) {
	s := VelocityBins()
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		hrv  float64
		want string
	}{
		{120, "red"},
		{50.1, "red"},
		{50, "orange"},
		{10.5, "orange"},
		{10, "yellow"},
		{0, "yellow"},
		{-10, "cyan"},
		{-49.9, "cyan"},
		{-50, "blue"},
		{-300, "blue"},
	}

	for _, tt := range tests {
		if got := s.Stops[s.Index(tt.hrv)].Name; got != tt.want {
			t.Errorf("HRV %v: got %s, want %s", tt.hrv, got, tt.want)
		}
	}
	if got := s.Color(20); got != (colorful.Color{R: 1, G: 0.4, B: 0}) {
		t.Errorf("color at 20 = %v", got)
	}
}

func TestScalesMonotonic(t *testing.T) {
	scales := map[string]Scale{
		"bins":   VelocityBins(),
		"linear": LinearScale{Min: -100, Max: 100, Stops: VelocityRamp},
	}
	for name, s := range scales {
		prev := -1
		for v := -500.0; v <= 500; v += 0.5 {
			i := s.Index(v)
			if i < prev {
				t.Fatalf("%s: index dropped from %d to %d at %v", name, prev, i, v)
			}
			prev = i
		}
	}
}

func TestLinearScaleClampsAndRounds(t *testing.T) {
	s := LinearScale{Min: 0, Max: 4, Stops: VelocityRamp}

	tests := []struct {
		v    float64
		want int
	}{
		{-10, 0},
		{99, 4},
		{2, 2},
		{0.5, 1},
		{0.49, 0},
	}
	for _, tt := range tests {
		if got := s.Index(tt.v); got != tt.want {
			t.Errorf("Index(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
	if got := (LinearScale{Min: 1, Max: 1, Stops: VelocityRamp}).Normalize(5); got != 0 {
		t.Errorf("empty range normalizes to %v", got)
	}
}

func TestLinearScaleSmooth(t *testing.T) {
	s := LinearScale{Min: 0, Max: 1, Stops: Ramp{
		{Name: "black", Color: colorful.Color{}},
		{Name: "white", Color: colorful.Color{R: 1, G: 1, B: 1}},
	}, Smooth: true}

	if lo := s.Color(0); math.Abs(lo.R+lo.G+lo.B) > 1e-6 {
		t.Errorf("low end should be black, got %v", lo)
	}
	if mid := s.Color(0.5); mid.R <= 0.1 || mid.R >= 0.9 {
		t.Errorf("midpoint not blended: %v", mid)
	}
}

func TestBinScaleValidate(t *testing.T) {
	bad := BinScale{Thresholds: []float64{0, 10}, Stops: VelocityRamp}
	if err := bad.Validate(); !errors.Is(err, ErrBadScale) {
		t.Errorf("threshold count: got %v", err)
	}

	unsorted := BinScale{Thresholds: []float64{10, 0}, Stops: VelocityRamp[:3]}
	if err := unsorted.Validate(); !errors.Is(err, ErrBadScale) {
		t.Errorf("unsorted thresholds: got %v", err)
	}
}

func TestParseRamp(t *testing.T) {
	r, err := ParseRamp([]Stop{{Name: "lo", Hex: "#000000"}, {Hex: "#ff0000"}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"lo", "c1"}, r.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if r[1].Color != (colorful.Color{R: 1}) {
		t.Errorf("second stop color = %v", r[1].Color)
	}

	if _, err := ParseRamp(nil); !errors.Is(err, ErrEmptyRamp) {
		t.Errorf("empty ramp: got %v", err)
	}
	if _, err := ParseRamp([]Stop{{Hex: "red"}}); err == nil {
		t.Error("expected an error for a bad hex color")
	}
	if _, err := ParseRamp([]Stop{{Name: "hot", Hex: "#ff0000"}, {Name: "hot", Hex: "#ffff00"}}); !errors.Is(err, ErrDuplicateStop) {
		t.Errorf("duplicate stop: got %v", err)
	}
}
