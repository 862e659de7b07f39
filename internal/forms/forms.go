// Package forms records alternative vertex layouts of a mesh as shape keys
// and animates meshes between them.
package forms

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/starstage/internal/logging"
	"github.com/san-kum/starstage/internal/scene"
)

const BasisName = "Basis"

// Record snapshots the mesh vertices as the form name. The first form of a
// mesh is its basis. Recording an existing name replaces its points.
func Record(mesh *scene.Mesh, name string) {
	pts := make([]mgl32.Vec3, len(mesh.Vertices))
	copy(pts, mesh.Vertices)
	set(mesh, name, pts)
}

// RecordPoints stores pts as the form name.
func RecordPoints(mesh *scene.Mesh, name string, pts []mgl32.Vec3) error {
	if len(pts) != len(mesh.Vertices) {
		return fmt.Errorf("%w: form %q has %d points, mesh %q has %d vertices",
			ErrPointCount, name, len(pts), mesh.Name, len(mesh.Vertices))
	}
	set(mesh, name, pts)
	return nil
}

func set(mesh *scene.Mesh, name string, pts []mgl32.Vec3) {
	if i := mesh.ShapeKey(name); i >= 0 {
		mesh.ShapeKeys[i].Points = pts
		return
	}
	var value float32
	if len(mesh.ShapeKeys) == 0 {
		value = 1
	}
	mesh.ShapeKeys = append(mesh.ShapeKeys, scene.ShapeKey{Name: name, Value: value, Points: pts})
}

// Add records the basis if the mesh has none, then the form gen derives
// from it.
func Add(mesh *scene.Mesh, gen Generator) error {
	if len(mesh.ShapeKeys) == 0 {
		Record(mesh, BasisName)
	}
	return RecordPoints(mesh, gen.Key(), gen.Generate(mesh.ShapeKeys[0].Points))
}

// Names lists the forms of mesh, basis first.
func Names(mesh *scene.Mesh) []string {
	names := make([]string, len(mesh.ShapeKeys))
	for i, k := range mesh.ShapeKeys {
		names[i] = k.Name
	}
	return names
}

// Weight is the blend value of form i at frame.
func Weight(doc *scene.Document, mesh *scene.Mesh, i int, frame float32) float32 {
	k := mesh.ShapeKeys[i]
	return doc.Evaluate(mesh, scene.ShapeKeyPath(k.Name), 0, frame, k.Value)
}

// Active returns the form with the largest weight at frame. The basis
// wins ties.
func Active(doc *scene.Document, mesh *scene.Mesh, frame float32) (string, error) {
	if len(mesh.ShapeKeys) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoBasis, mesh.Name)
	}
	best, bestW := 0, Weight(doc, mesh, 0, frame)
	for i := 1; i < len(mesh.ShapeKeys); i++ {
		if w := Weight(doc, mesh, i, frame); w > bestW {
			best, bestW = i, w
		}
	}
	return mesh.ShapeKeys[best].Name, nil
}

// Positions mixes the forms at frame relative to the basis:
// basis + sum of weight_k * (form_k - basis).
func Positions(doc *scene.Document, mesh *scene.Mesh, frame float32) []mgl32.Vec3 {
	if len(mesh.ShapeKeys) == 0 {
		out := make([]mgl32.Vec3, len(mesh.Vertices))
		copy(out, mesh.Vertices)
		return out
	}
	basis := mesh.ShapeKeys[0].Points
	out := make([]mgl32.Vec3, len(basis))
	copy(out, basis)
	for i := 1; i < len(mesh.ShapeKeys); i++ {
		w := Weight(doc, mesh, i, frame)
		if w == 0 {
			continue
		}
		pts := mesh.ShapeKeys[i].Points
		for j := range out {
			if j < len(pts) {
				out[j] = out[j].Add(pts[j].Sub(basis[j]).Mul(w))
			}
		}
	}
	return out
}

// Deform animates mesh from the form active at frameStart to target at
// frameEnd. frameEnd may precede frameStart. Any other form weighted at
// either frame fades from its current weight to zero, so the mesh shows
// exactly target at frameEnd. Keys strictly between the two frames on the
// curves it writes are dropped. Deforming to the active form inserts nothing.
func Deform(doc *scene.Document, mesh *scene.Mesh, target string, frameStart, frameEnd float32) error {
	ti := mesh.ShapeKey(target)
	if ti < 0 {
		return fmt.Errorf("%w: %q on mesh %q", scene.ErrShapeKeyNotFound, target, mesh.Name)
	}
	if n := len(mesh.ShapeKeys[ti].Points); n != len(mesh.Vertices) {
		return fmt.Errorf("%w: form %q has %d points, mesh %q has %d vertices",
			ErrPointCount, target, n, mesh.Name, len(mesh.Vertices))
	}

	active, err := Active(doc, mesh, frameStart)
	if err != nil {
		return err
	}
	if active == target || samePoints(mesh.ShapeKeys[mesh.ShapeKey(active)].Points, mesh.ShapeKeys[ti].Points) {
		return nil
	}

	// weights are read before any key is written
	type fade struct {
		name string
		from float32
	}
	var fades []fade
	for i := 1; i < len(mesh.ShapeKeys); i++ {
		name := mesh.ShapeKeys[i].Name
		if i == ti || name == active {
			continue
		}
		w0, w1 := Weight(doc, mesh, i, frameStart), Weight(doc, mesh, i, frameEnd)
		if w0 != 0 || w1 != 0 {
			fades = append(fades, fade{name, w0})
		}
	}

	keyRange(doc, mesh, active, frameStart, frameEnd, 1, 0)
	keyRange(doc, mesh, target, frameStart, frameEnd, 0, 1)
	for _, f := range fades {
		keyRange(doc, mesh, f.name, frameStart, frameEnd, f.from, 0)
	}
	return nil
}

func keyRange(doc *scene.Document, mesh *scene.Mesh, form string, start, end, from, to float32) {
	path := scene.ShapeKeyPath(form)
	if a := doc.Action(mesh); a != nil {
		if fc := a.FCurve(path, 0); fc != nil {
			fc.RemoveBetween(min(start, end), max(start, end))
		}
	}
	doc.InsertKeyframe(mesh, path, 0, start, from)
	doc.InsertKeyframe(mesh, path, 0, end, to)
}

func samePoints(a, b []mgl32.Vec3) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clear removes every form of mesh and the curves animating them. The
// mesh action is dropped once it has no curves left.
func Clear(doc *scene.Document, mesh *scene.Mesh) int {
	n := len(mesh.ShapeKeys)
	mesh.ShapeKeys = nil

	a := doc.Action(mesh)
	if a == nil {
		return n
	}
	kept := a.FCurves[:0]
	for _, fc := range a.FCurves {
		if !strings.HasPrefix(fc.DataPath, "key_blocks[") {
			kept = append(kept, fc)
		}
	}
	a.FCurves = kept
	if len(a.FCurves) == 0 {
		mesh.Action = ""
		doc.DeleteUnusedActions()
	}
	return n
}

// Transition moves to Target between two frames.
type Transition struct {
	Target     string  `yaml:"target"`
	FrameStart float32 `yaml:"frame_start"`
	FrameEnd   float32 `yaml:"frame_end"`
}

// DefaultTransitions plays map, sphere, then the sky as cataloged, built
// backwards from the final layout.
func DefaultTransitions() []Transition {
	return []Transition{
		{Target: Sphere{}.Key(), FrameStart: 230, FrameEnd: 170},
		{Target: Map{}.Key(), FrameStart: 100, FrameEnd: 30},
	}
}

// meshes resolves the mesh objects matching pattern.
func meshes(doc *scene.Document, pattern string) ([]*scene.Object, []*scene.Mesh, error) {
	objs, err := doc.Match(pattern)
	if err != nil {
		return nil, nil, err
	}
	outObjs := make([]*scene.Object, 0, len(objs))
	outMeshes := make([]*scene.Mesh, 0, len(objs))
	for _, o := range objs {
		if o.Type != scene.TypeMesh {
			continue
		}
		m, err := doc.MeshOf(o)
		if err != nil {
			return nil, nil, err
		}
		outObjs = append(outObjs, o)
		outMeshes = append(outMeshes, m)
	}
	return outObjs, outMeshes, nil
}

// AddAll records the basis and every generated form on the meshes matching
// pattern. With replace set, existing forms are cleared first.
func AddAll(doc *scene.Document, pattern string, gens []Generator, replace bool, logger *log.Logger) (int, error) {
	logger = logging.Or(logger)
	objs, ms, err := meshes(doc, pattern)
	if err != nil {
		return 0, err
	}
	for i, m := range ms {
		if replace {
			Clear(doc, m)
		}
		for _, g := range gens {
			if err := Add(m, g); err != nil {
				return i, fmt.Errorf("%s: %w", objs[i].Name, err)
			}
		}
		logger.Debug("forms recorded", "object", objs[i].Name, "forms", strings.Join(Names(m), ","))
	}
	logger.Info("forms added", "meshes", len(ms), "pattern", pattern)
	return len(ms), nil
}

// Animate applies the transitions in order to every mesh matching pattern.
func Animate(doc *scene.Document, pattern string, transitions []Transition, logger *log.Logger) (int, error) {
	logger = logging.Or(logger)
	objs, ms, err := meshes(doc, pattern)
	if err != nil {
		return 0, err
	}
	for i, m := range ms {
		for _, tr := range transitions {
			if err := Deform(doc, m, tr.Target, tr.FrameStart, tr.FrameEnd); err != nil {
				return i, fmt.Errorf("%s: %w", objs[i].Name, err)
			}
		}
		logger.Debug("animated", "object", objs[i].Name, "transitions", len(transitions))
	}
	logger.Info("shape animation added", "meshes", len(ms), "transitions", len(transitions))
	return len(ms), nil
}
