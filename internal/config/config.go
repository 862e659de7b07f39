package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/starstage/internal/camerapath"
	"github.com/san-kum/starstage/internal/forms"
	"github.com/san-kum/starstage/internal/keyframes"
	"github.com/san-kum/starstage/internal/mapping"
	"github.com/san-kum/starstage/internal/starmesh"
)

const (
	DefaultCatalog = "RAVE_DR4_sample.csv"
	DefaultPattern = "stars-*"

	ScaleBins   = "bins"
	ScaleLinear = "linear"
)

type Config struct {
	Catalog   CatalogConfig    `yaml:"catalog"`
	Fields    mapping.FieldMap `yaml:"fields"`
	PosFactor float64          `yaml:"pos_factor"`
	Color     ColorConfig      `yaml:"color"`
	Mesh      MeshConfig       `yaml:"mesh"`
	Forms     FormsConfig      `yaml:"forms"`
	Shift     ShiftConfig      `yaml:"shift"`
	Camera    CameraConfig     `yaml:"camera"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type ColorConfig struct {
	Scale      string         `yaml:"scale"`
	Min        float64        `yaml:"min"`
	Max        float64        `yaml:"max"`
	Thresholds []float64      `yaml:"thresholds,omitempty"`
	Ramp       []mapping.Stop `yaml:"ramp,omitempty"`
	Smooth     bool           `yaml:"smooth"`
}

type MeshConfig struct {
	Name       string        `yaml:"name"`
	Mode       starmesh.Mode `yaml:"mode"`
	HaloSize   float32       `yaml:"halo_size"`
	ColorLayer string        `yaml:"color_layer"`
	Replace    bool          `yaml:"replace"`
}

type FormsConfig struct {
	Pattern     string             `yaml:"pattern"`
	Types       []string           `yaml:"types"`
	Params      forms.Params       `yaml:"params"`
	Transitions []forms.Transition `yaml:"transitions"`
}

type ShiftConfig struct {
	Pattern   string              `yaml:"pattern"`
	Transform keyframes.Transform `yaml:",inline"`
}

type CameraConfig struct {
	Name           string     `yaml:"name"`
	Path           string     `yaml:"path"`
	Target         string     `yaml:"target"`
	Radius         float32    `yaml:"radius"`
	PathLocation   [3]float32 `yaml:"path_location,flow"`
	TargetLocation [3]float32 `yaml:"target_location,flow"`
	Start          float32    `yaml:"start"`
	Duration       float32    `yaml:"duration"`
}

func DefaultConfig() *Config {
	return &Config{
		Catalog:   CatalogConfig{Path: DefaultCatalog},
		Fields:    mapping.DefaultFieldMap(),
		PosFactor: mapping.DefaultPosFactor,
		Color:     ColorConfig{Scale: ScaleBins, Min: -100, Max: 100},
		Mesh: MeshConfig{
			Name:       starmesh.DefaultName,
			Mode:       starmesh.ModeSplit,
			HaloSize:   starmesh.DefaultHaloSize,
			ColorLayer: starmesh.DefaultColorLayer,
		},
		Forms: FormsConfig{
			Pattern:     DefaultPattern,
			Types:       []string{"SPHERE", "MAP"},
			Params:      forms.DefaultParams(),
			Transitions: forms.DefaultTransitions(),
		},
		Shift: ShiftConfig{
			Pattern:   "*",
			Transform: keyframes.DefaultTransform(),
		},
		Camera: CameraConfig{
			Name:           camerapath.DefaultCamera,
			Path:           camerapath.DefaultPath,
			Target:         camerapath.DefaultTarget,
			Radius:         camerapath.DefaultRadius,
			PathLocation:   camerapath.DefaultPathLocation,
			TargetLocation: [3]float32{},
			Start:          camerapath.DefaultStart,
			Duration:       camerapath.DefaultDuration,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ColorScale builds the configured scale. An empty ramp means the
// radial-velocity palette.
func (c *Config) ColorScale() (mapping.Scale, error) {
	ramp := mapping.VelocityRamp
	if len(c.Color.Ramp) > 0 {
		r, err := mapping.ParseRamp(c.Color.Ramp)
		if err != nil {
			return nil, err
		}
		ramp = r
	}

	switch c.Color.Scale {
	case ScaleBins, "":
		th := c.Color.Thresholds
		if len(th) == 0 {
			th = mapping.VelocityThresholds
		}
		s := mapping.BinScale{Thresholds: th, Stops: ramp}
		return s, s.Validate()
	case ScaleLinear:
		return mapping.LinearScale{Min: c.Color.Min, Max: c.Color.Max, Stops: ramp, Smooth: c.Color.Smooth}, nil
	}
	return nil, fmt.Errorf("%w: scale %q", mapping.ErrBadScale, c.Color.Scale)
}

func (c *Config) Mapper() (*mapping.Mapper, error) {
	scale, err := c.ColorScale()
	if err != nil {
		return nil, err
	}
	return mapping.NewMapper(c.Fields, c.PosFactor, scale)
}

func (c *Config) MeshOptions(ramp mapping.Ramp, logger *log.Logger) starmesh.Options {
	return starmesh.Options{
		Name:       c.Mesh.Name,
		Mode:       c.Mesh.Mode,
		HaloSize:   c.Mesh.HaloSize,
		ColorLayer: c.Mesh.ColorLayer,
		Replace:    c.Mesh.Replace,
		Ramp:       ramp,
		Logger:     logger,
	}
}

// Generators resolves the configured form types.
func (c *Config) Generators() ([]forms.Generator, error) {
	gens := make([]forms.Generator, 0, len(c.Forms.Types))
	for _, kind := range c.Forms.Types {
		g, err := forms.Lookup(kind, c.Forms.Params)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	return gens, nil
}

func (c CameraConfig) PathLoc() mgl32.Vec3   { return mgl32.Vec3(c.PathLocation) }
func (c CameraConfig) TargetLoc() mgl32.Vec3 { return mgl32.Vec3(c.TargetLocation) }
