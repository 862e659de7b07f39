package config

import (
	"sort"

	"github.com/san-kum/starstage/internal/mapping"
	"github.com/san-kum/starstage/internal/starmesh"
)

// Presets are complete job configurations derived from the defaults.
var Presets = map[string]func() *Config{
	// rave-demo reproduces the classic stars-by-velocity scene.
	"rave-demo": DefaultConfig,

	"sky-sphere": func() *Config {
		c := DefaultConfig()
		c.Mesh.Mode = starmesh.ModeSingle
		c.Forms.Pattern = c.Mesh.Name
		c.Forms.Types = []string{"SPHERE"}
		c.Forms.Transitions = c.Forms.Transitions[:1]
		c.Color = ColorConfig{
			Scale:  ScaleLinear,
			Min:    -80,
			Max:    80,
			Smooth: true,
			Ramp: []mapping.Stop{
				{Name: "approach", Hex: "#3a6bff"},
				{Name: "rest", Hex: "#f5f0e0"},
				{Name: "recede", Hex: "#ff4a2a"},
			},
		}
		return c
	},

	"orbit": func() *Config {
		c := DefaultConfig()
		c.Forms.Types = nil
		c.Forms.Transitions = nil
		c.Camera.Radius = 3
		c.Camera.PathLocation = [3]float32{0, 0, 0.5}
		c.Camera.Duration = 300
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	mk, ok := Presets[name]
	if !ok {
		return nil
	}
	return mk()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
