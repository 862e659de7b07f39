package viz

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/starstage/internal/camerapath"
	"github.com/san-kum/starstage/internal/forms"
	"github.com/san-kum/starstage/internal/scene"
	"github.com/san-kum/starstage/internal/storage"
)

const pathSegments = 64

// Sprite is one evaluated star.
type Sprite struct {
	Object   string
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Size     float32
}

type Path struct {
	Object string
	Points []mgl32.Vec3
}

// Frame is a read-only snapshot of a document at one frame. Renderers only
// ever look at frames, never at the document.
type Frame struct {
	Number  float32
	Sprites []Sprite
	Paths   []Path

	// Camera is set when the document has a camera object.
	Camera     *camerapath.Pose
	CameraName string
}

// Snapshot evaluates shape keys, paths and the camera of doc at frame.
// Objects hidden from render are skipped.
func Snapshot(doc *scene.Document, frame float32) (*Frame, error) {
	f := &Frame{Number: frame}
	for _, name := range doc.ObjectNames() {
		obj := doc.Objects[name]
		if obj.HideRender {
			continue
		}
		switch obj.Type {
		case scene.TypeMesh:
			if err := f.addMesh(doc, obj); err != nil {
				return nil, err
			}
		case scene.TypeCurve:
			curve, err := doc.CurveOf(obj)
			if err != nil {
				return nil, err
			}
			f.Paths = append(f.Paths, Path{Object: name, Points: ring(obj.Location, curve.Radius)})
		case scene.TypeCamera:
			if f.Camera != nil {
				continue
			}
			pose, err := camerapath.Evaluate(doc, name, frame)
			if err != nil {
				return nil, err
			}
			f.Camera, f.CameraName = &pose, name
		}
	}
	return f, nil
}

func (f *Frame) addMesh(doc *scene.Document, obj *scene.Object) error {
	mesh, err := doc.MeshOf(obj)
	if err != nil {
		return err
	}
	size := float32(0)
	if mats, err := doc.MaterialsOf(obj); err == nil && len(mats) > 0 {
		size = mats[0].HaloSize
	}
	colors := storage.VertexColors(doc, obj, mesh)
	for i, p := range forms.Positions(doc, mesh, f.Number) {
		f.Sprites = append(f.Sprites, Sprite{
			Object:   obj.Name,
			Position: p.Add(obj.Location),
			Color:    colors[i],
			Size:     size,
		})
	}
	return nil
}

func ring(center mgl32.Vec3, radius float32) []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, pathSegments+1)
	for i := range pts {
		a := 2 * math32.Pi * float32(i) / pathSegments
		pts[i] = center.Add(mgl32.Vec3{radius * math32.Cos(a), radius * math32.Sin(a), 0})
	}
	return pts
}

// Bounds is the center and radius of a sphere around every sprite.
func (f *Frame) Bounds() (mgl32.Vec3, float32) {
	if len(f.Sprites) == 0 {
		return mgl32.Vec3{}, 1
	}
	lo, hi := f.Sprites[0].Position, f.Sprites[0].Position
	for _, s := range f.Sprites[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math32.Min(lo[k], s.Position[k])
			hi[k] = math32.Max(hi[k], s.Position[k])
		}
	}
	center := lo.Add(hi).Mul(0.5)
	radius := hi.Sub(center).Len()
	if radius < 1e-3 {
		radius = 1
	}
	return center, radius
}
