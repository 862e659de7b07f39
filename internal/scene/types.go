package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type ObjectType string

const (
	TypeMesh   ObjectType = "mesh"
	TypeCamera ObjectType = "camera"
	TypeCurve  ObjectType = "curve"
	TypeEmpty  ObjectType = "empty"
)

type MaterialType string

const (
	MaterialSurface MaterialType = "surface"
	MaterialHalo    MaterialType = "halo"
)

type CurveKind string

const (
	CurveBezierCircle CurveKind = "bezier_circle"
)

type ConstraintType string

const (
	ConstraintFollowPath ConstraintType = "follow_path"
	ConstraintTrackTo    ConstraintType = "track_to"
)

// Object is a named scene entity. Data names the mesh or curve datablock
// for mesh and curve objects and is empty otherwise.
type Object struct {
	Name        string       `json:"name"`
	Type        ObjectType   `json:"type"`
	Location    mgl32.Vec3   `json:"location"`
	Rotation    mgl32.Quat   `json:"rotation"`
	Data        string       `json:"data,omitempty"`
	Materials   []string     `json:"materials,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty"`
	Action      string       `json:"action,omitempty"`
	EmptySize   float32      `json:"empty_size,omitempty"`
	HideRender  bool         `json:"hide_render,omitempty"`
	HideSelect  bool         `json:"hide_select,omitempty"`
}

func (o *Object) ActionRef() *string { return &o.Action }
func (o *Object) ID() string         { return o.Name }

// Constraint returns the constraint with the given name, or nil.
func (o *Object) Constraint(name string) *Constraint {
	for i := range o.Constraints {
		if o.Constraints[i].Name == name {
			return &o.Constraints[i]
		}
	}
	return nil
}

// SetConstraint adds c, replacing a constraint of the same name.
func (o *Object) SetConstraint(c Constraint) {
	if existing := o.Constraint(c.Name); existing != nil {
		*existing = c
		return
	}
	o.Constraints = append(o.Constraints, c)
}

type Constraint struct {
	Name      string         `json:"name"`
	Type      ConstraintType `json:"type"`
	Target    string         `json:"target"`
	TrackAxis string         `json:"track_axis,omitempty"`
	UpAxis    string         `json:"up_axis,omitempty"`
}

type ColorLayer struct {
	Name   string       `json:"name"`
	Colors []mgl32.Vec4 `json:"colors"`
}

// ShapeKey is a named alternative set of vertex positions. Value is the
// static blend weight used when no animation drives it.
type ShapeKey struct {
	Name   string       `json:"name"`
	Value  float32      `json:"value"`
	Points []mgl32.Vec3 `json:"points"`
}

type Mesh struct {
	Name        string       `json:"name"`
	Vertices    []mgl32.Vec3 `json:"vertices"`
	ColorLayers []ColorLayer `json:"color_layers,omitempty"`
	ShapeKeys   []ShapeKey   `json:"shape_keys,omitempty"`
	Action      string       `json:"action,omitempty"`
}

func (m *Mesh) ActionRef() *string { return &m.Action }
func (m *Mesh) ID() string         { return m.Name }

// ColorLayer returns the named color layer, or nil.
func (m *Mesh) ColorLayer(name string) *ColorLayer {
	for i := range m.ColorLayers {
		if m.ColorLayers[i].Name == name {
			return &m.ColorLayers[i]
		}
	}
	return nil
}

// ShapeKey returns the index of the named shape key, or -1.
func (m *Mesh) ShapeKey(name string) int {
	for i := range m.ShapeKeys {
		if m.ShapeKeys[i].Name == name {
			return i
		}
	}
	return -1
}

type Material struct {
	Name         string       `json:"name"`
	Type         MaterialType `json:"type"`
	DiffuseColor mgl32.Vec3   `json:"diffuse_color"`
	HaloSize     float32      `json:"halo_size,omitempty"`
	Action       string       `json:"action,omitempty"`
}

func (m *Material) ActionRef() *string { return &m.Action }
func (m *Material) ID() string         { return m.Name }

// Curve is path data. PathDuration is the number of evaluation-time units
// covering the whole path; EvalTime is the static position along it.
type Curve struct {
	Name         string    `json:"name"`
	Kind         CurveKind `json:"kind"`
	Radius       float32   `json:"radius"`
	Reversed     bool      `json:"reversed,omitempty"`
	UsePath      bool      `json:"use_path,omitempty"`
	PathDuration float32   `json:"path_duration"`
	EvalTime     float32   `json:"eval_time"`
	Action       string    `json:"action,omitempty"`
}

func (c *Curve) ActionRef() *string { return &c.Action }
func (c *Curve) ID() string         { return c.Name }

// Animated is implemented by every datablock that can own an action.
type Animated interface {
	ActionRef() *string
	ID() string
}
