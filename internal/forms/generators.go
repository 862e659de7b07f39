package forms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultRadius    = 2
	DefaultMapWidth  = 7.5
	DefaultMapHeight = 4.5
)

// Generator derives a form from the basis positions.
type Generator interface {
	// Key is the name the form is recorded under.
	Key() string
	Generate(basis []mgl32.Vec3) []mgl32.Vec3
}

// Sphere projects every point onto a sphere of Radius around the origin.
type Sphere struct {
	Radius float32
}

func (Sphere) Key() string { return "KeySphere" }

func (s Sphere) Generate(basis []mgl32.Vec3) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(basis))
	for i, v := range basis {
		r := v.Len()
		if r == 0 {
			continue
		}
		out[i] = v.Mul(s.Radius / r)
	}
	return out
}

// Map unrolls the sky onto an equirectangular map of Width by Height
// standing in the x-z plane, longitude along -x and the north pole up.
type Map struct {
	Width, Height float32
}

func (Map) Key() string { return "KeyMap" }

func (m Map) Generate(basis []mgl32.Vec3) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(basis))
	for i, v := range basis {
		r := v.Len()
		if r == 0 {
			continue
		}
		phi := math32.Atan2(v.Y(), v.X())
		theta := math32.Acos(clamp(v.Z()/r, -1, 1))
		out[i] = mgl32.Vec3{
			-phi / (2 * math32.Pi) * m.Width,
			0,
			-(theta/math32.Pi*m.Height - 0.5*m.Height),
		}
	}
	return out
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// Params carries the generator settings used by Lookup.
type Params struct {
	Radius float32 `yaml:"radius"`
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

func DefaultParams() Params {
	return Params{Radius: DefaultRadius, Width: DefaultMapWidth, Height: DefaultMapHeight}
}

var registry = map[string]func(Params) Generator{
	"SPHERE": func(p Params) Generator { return Sphere{Radius: p.Radius} },
	"MAP":    func(p Params) Generator { return Map{Width: p.Width, Height: p.Height} },
}

// Lookup returns the generator for a form type such as "SPHERE" or "map".
func Lookup(kind string, p Params) (Generator, error) {
	mk, ok := registry[strings.ToUpper(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownForm, kind, strings.Join(Kinds(), ", "))
	}
	return mk(p), nil
}

// Kinds lists the registered form types.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
