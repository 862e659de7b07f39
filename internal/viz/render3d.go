package viz

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/starstage/internal/camerapath"
)

// View is a perspective camera looking from Eye at Target.
type View struct {
	Eye, Target, Up mgl32.Vec3
	FOV, Near, Far  float32
}

var defaultFOV = mgl32.DegToRad(50)

// PoseView looks along a scene camera's pose.
func PoseView(p camerapath.Pose) View {
	return View{
		Eye:    p.Position,
		Target: p.Position.Add(p.Forward()),
		Up:     p.Rotation.Rotate(mgl32.Vec3{0, 1, 0}),
		FOV:    defaultFOV,
		Near:   0.01,
		Far:    1000,
	}
}

// Orbit is a free view circling a point, Z up.
type Orbit struct {
	Yaw, Pitch float32
	Zoom       float32
}

func NewOrbit() *Orbit { return &Orbit{Yaw: 0.6, Pitch: 0.4, Zoom: 1} }

func (o *Orbit) Rotate(yaw, pitch float32) {
	o.Yaw += yaw
	o.Pitch = math32.Max(-1.5, math32.Min(1.5, o.Pitch+pitch))
}

func (o *Orbit) ZoomIn()  { o.Zoom = math32.Min(20, o.Zoom*1.2) }
func (o *Orbit) ZoomOut() { o.Zoom = math32.Max(0.05, o.Zoom/1.2) }

// View frames a sphere of the given radius around center.
func (o *Orbit) View(center mgl32.Vec3, radius float32) View {
	dist := radius * 2.5 / o.Zoom
	dir := mgl32.Vec3{
		math32.Cos(o.Pitch) * math32.Cos(o.Yaw),
		math32.Cos(o.Pitch) * math32.Sin(o.Yaw),
		math32.Sin(o.Pitch),
	}
	return View{
		Eye:    center.Add(dir.Mul(dist)),
		Target: center,
		Up:     mgl32.Vec3{0, 0, 1},
		FOV:    defaultFOV,
		Near:   dist * 0.01,
		Far:    dist * 10,
	}
}

// Projector maps world points to pixels of a w x h image, y down.
type Projector struct {
	modelview, projection mgl32.Mat4
	w, h                  int
	near                  float32
}

func (v View) Projector(w, h int) Projector {
	aspect := float32(w) / float32(max(h, 1))
	return Projector{
		modelview:  mgl32.LookAtV(v.Eye, v.Target, v.Up),
		projection: mgl32.Perspective(v.FOV, aspect, v.Near, v.Far),
		w:          w,
		h:          h,
		near:       v.Near,
	}
}

// Project returns the pixel of p, its distance along the view axis and
// whether it lands on the image in front of the camera.
func (p Projector) Project(pt mgl32.Vec3) (x, y int, depth float32, ok bool) {
	depth = -p.modelview.Mul4x1(pt.Vec4(1)).Z()
	if depth < p.near {
		return 0, 0, depth, false
	}
	win := mgl32.Project(pt, p.modelview, p.projection, 0, 0, p.w, p.h)
	x, y = int(win.X()), p.h-1-int(win.Y())
	return x, y, depth, x >= 0 && x < p.w && y >= 0 && y < p.h
}

// Scale is the pixel size of one world unit at depth.
func (p Projector) Scale(depth float32) float32 {
	return p.projection.At(1, 1) * float32(p.h) / 2 / math32.Max(depth, p.near)
}

// Projected is a sprite placed on the image. Index points into Frame.Sprites.
type Projected struct {
	X, Y  int
	Depth float32
	Index int
}

// ProjectSprites returns the visible sprites of f farthest first.
func ProjectSprites(f *Frame, p Projector) []Projected {
	out := make([]Projected, 0, len(f.Sprites))
	for i, s := range f.Sprites {
		x, y, d, ok := p.Project(s.Position)
		if ok {
			out = append(out, Projected{x, y, d, i})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Depth > out[j].Depth })
	return out
}

// Hex is the clamped sRGB hex form of a linear 0..1 color.
func Hex(c mgl32.Vec3) string {
	return colorful.Color{R: float64(c.X()), G: float64(c.Y()), B: float64(c.Z())}.Clamped().Hex()
}

// Render draws f onto c and returns the number of sprites that landed on it.
func Render(c *Canvas, f *Frame, v View, pathColor string) int {
	if c == nil || f == nil {
		return 0
	}
	w, h := c.PixelSize()
	p := v.Projector(w, h)

	for _, path := range f.Paths {
		for i := 1; i < len(path.Points); i++ {
			x0, y0, _, ok0 := p.Project(path.Points[i-1])
			x1, y1, _, ok1 := p.Project(path.Points[i])
			if ok0 && ok1 {
				c.DrawLine(x0, y0, x1, y1, pathColor)
			}
		}
	}

	visible := ProjectSprites(f, p)
	for _, s := range visible {
		c.SetColor(s.X, s.Y, Hex(f.Sprites[s.Index].Color))
	}
	return len(visible)
}
