// Package starmesh builds point-cloud meshes from mapped catalog points.
// Meshes carry vertices only; stars are drawn as halos by their material.
package starmesh

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/starstage/internal/catalog"
	"github.com/san-kum/starstage/internal/logging"
	"github.com/san-kum/starstage/internal/mapping"
	"github.com/san-kum/starstage/internal/scene"
)

type Mode string

const (
	// ModeSingle builds one mesh with a per-vertex color layer.
	ModeSingle Mode = "single"
	// ModeSplit builds one mesh per ramp stop, colored by its material.
	ModeSplit Mode = "split"
)

const (
	DefaultName       = "stars"
	DefaultHaloSize   = 0.015
	DefaultColorLayer = "Col"
	MaterialPrefix    = "Mesh-"

	progressEvery = 10000
)

type Options struct {
	Name       string
	Origin     mgl32.Vec3
	Mode       Mode
	HaloSize   float32
	ColorLayer string
	Ramp       mapping.Ramp
	Replace    bool
	Logger     *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.Mode == "" {
		o.Mode = ModeSingle
	}
	if o.HaloSize == 0 {
		o.HaloSize = DefaultHaloSize
	}
	if o.ColorLayer == "" {
		o.ColorLayer = DefaultColorLayer
	}
	if len(o.Ramp) == 0 {
		o.Ramp = mapping.VelocityRamp
	}
	o.Logger = logging.Or(o.Logger)
	return o
}

// Result names the objects created by a build.
type Result struct {
	Objects  []string
	Vertices int
}

type part struct {
	object   string
	material string
	color    mgl32.Vec3
	points   []mapping.Point
}

// Build adds the points to doc. Nothing is changed when an error is
// returned.
func Build(doc *scene.Document, points []mapping.Point, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	parts, err := plan(points, opts)
	if err != nil {
		return nil, err
	}
	if err := checkNames(doc, parts, opts); err != nil {
		return nil, err
	}

	if opts.Replace {
		removeOld(doc, opts)
	}

	res := &Result{Objects: make([]string, 0, len(parts))}
	for _, p := range parts {
		mesh := buildMesh(p, opts, res.Vertices)
		res.Vertices += len(p.points)

		mat := &scene.Material{
			Name:         p.material,
			Type:         scene.MaterialHalo,
			DiffuseColor: p.color,
			HaloSize:     opts.HaloSize,
		}
		obj := &scene.Object{
			Name:      p.object,
			Type:      scene.TypeMesh,
			Location:  opts.Origin,
			Data:      doc.AddMesh(mesh),
			Materials: []string{doc.AddMaterial(mat)},
		}
		if err := doc.AddObject(obj); err != nil {
			return nil, err
		}
		res.Objects = append(res.Objects, obj.Name)
		opts.Logger.Debug("mesh created", "object", obj.Name, "vertices", logging.Count(len(p.points)))
	}

	opts.Logger.Info("stars imported", "objects", len(res.Objects), "vertices", logging.Count(res.Vertices))
	return res, nil
}

func plan(points []mapping.Point, opts Options) ([]part, error) {
	switch opts.Mode {
	case ModeSingle:
		return []part{{
			object:   opts.Name,
			material: MaterialPrefix + opts.Name,
			color:    mgl32.Vec3{1, 1, 1},
			points:   points,
		}}, nil

	case ModeSplit:
		bins := make([][]mapping.Point, len(opts.Ramp))
		for _, p := range points {
			if p.ColorIndex < 0 || p.ColorIndex >= len(opts.Ramp) {
				return nil, fmt.Errorf("%w: point %s has index %d, ramp has %d stops",
					ErrColorIndex, p.ID, p.ColorIndex, len(opts.Ramp))
			}
			bins[p.ColorIndex] = append(bins[p.ColorIndex], p)
		}
		parts := make([]part, 0, len(bins))
		for i, stop := range opts.Ramp {
			if len(bins[i]) == 0 {
				continue
			}
			if stop.Name == "" {
				return nil, fmt.Errorf("%w: ramp stop %d", ErrNoName, i)
			}
			parts = append(parts, part{
				object:   opts.Name + "-" + stop.Name,
				material: MaterialPrefix + stop.Name,
				color:    vec3(stop.Color.R, stop.Color.G, stop.Color.B),
				points:   bins[i],
			})
		}
		return parts, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBadMode, opts.Mode)
}

// checkNames rejects parts that would collide with each other or, unless
// replacing, with objects already in doc.
func checkNames(doc *scene.Document, parts []part, opts Options) error {
	if strings.TrimSpace(opts.Name) == "" {
		return ErrNoName
	}
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		if seen[p.object] {
			return fmt.Errorf("%w: %q", ErrDuplicatePart, p.object)
		}
		seen[p.object] = true
		if _, ok := doc.Objects[p.object]; ok && !opts.Replace {
			return fmt.Errorf("%w: %q", ErrExists, p.object)
		}
	}
	return nil
}

// removeOld deletes earlier imports under the same name, then every mesh,
// material, curve and action left without users.
func removeOld(doc *scene.Document, opts Options) {
	old := make([]*scene.Object, 0)
	if obj, ok := doc.Objects[opts.Name]; ok {
		old = append(old, obj)
	}
	if split, err := doc.Match(opts.Name + "-*"); err == nil {
		old = append(old, split...)
	}
	n := doc.RemoveObjects(old...)
	meshes := doc.DeleteUnusedMeshes()
	mats := doc.DeleteUnusedMaterials()
	curves := doc.DeleteUnusedCurves()
	actions := doc.DeleteUnusedActions()
	if n > 0 {
		opts.Logger.Info("replaced previous import", "objects", n, "meshes", len(meshes),
			"materials", len(mats), "curves", len(curves), "actions", len(actions))
	}
}

func buildMesh(p part, opts Options, done int) *scene.Mesh {
	mesh := &scene.Mesh{
		Name:     p.object,
		Vertices: make([]mgl32.Vec3, len(p.points)),
	}
	var colors []mgl32.Vec4
	if opts.Mode == ModeSingle {
		colors = make([]mgl32.Vec4, len(p.points))
	}

	for i, pt := range p.points {
		mesh.Vertices[i] = vec3(pt.Position.X, pt.Position.Y, pt.Position.Z)
		if colors != nil {
			colors[i] = vec3(pt.Color.R, pt.Color.G, pt.Color.B).Vec4(1)
		}
		if n := done + i + 1; n%progressEvery == 0 {
			opts.Logger.Info("building", "vertices", logging.Count(n))
		}
	}
	if colors != nil {
		mesh.ColorLayers = []scene.ColorLayer{{Name: opts.ColorLayer, Colors: colors}}
	}
	return mesh
}

func vec3(x, y, z float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

// Import loads a catalog, maps it and builds the meshes. A bad row leaves
// doc untouched.
func Import(doc *scene.Document, path string, m *mapping.Mapper, opts Options) (*Result, error) {
	logger := logging.Or(opts.Logger)

	t, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog loaded", "path", path, "rows", logging.Count(t.Len()))

	points, err := m.Map(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(opts.Ramp) == 0 {
		opts.Ramp = m.Scale.Ramp()
	}
	return Build(doc, points, opts)
}
