package scene

import (
	"fmt"
	"path"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultFrameStart = 1
	DefaultFrameEnd   = 250
)

type Document struct {
	Name       string               `json:"name"`
	FrameStart int                  `json:"frame_start"`
	FrameEnd   int                  `json:"frame_end"`
	Objects    map[string]*Object   `json:"objects"`
	Meshes     map[string]*Mesh     `json:"meshes"`
	Materials  map[string]*Material `json:"materials"`
	Curves     map[string]*Curve    `json:"curves"`
	Actions    map[string]*Action   `json:"actions"`
}

func New(name string) *Document {
	d := &Document{
		Name:       name,
		FrameStart: DefaultFrameStart,
		FrameEnd:   DefaultFrameEnd,
	}
	d.ensureMaps()
	return d
}

// ensureMaps allocates maps left nil by decoding an older document.
func (d *Document) ensureMaps() {
	if d.Objects == nil {
		d.Objects = make(map[string]*Object)
	}
	if d.Meshes == nil {
		d.Meshes = make(map[string]*Mesh)
	}
	if d.Materials == nil {
		d.Materials = make(map[string]*Material)
	}
	if d.Curves == nil {
		d.Curves = make(map[string]*Curve)
	}
	if d.Actions == nil {
		d.Actions = make(map[string]*Action)
	}
}

// Normalize prepares a decoded document for use.
func (d *Document) Normalize() {
	d.ensureMaps()
	if d.FrameEnd < d.FrameStart {
		d.FrameEnd = d.FrameStart
	}
}

// AddObject inserts obj. Object names are unique within a document.
func (d *Document) AddObject(obj *Object) error {
	if obj.Name == "" {
		return fmt.Errorf("%w: empty object name", ErrDuplicateName)
	}
	if _, ok := d.Objects[obj.Name]; ok {
		return fmt.Errorf("%w: object %q", ErrDuplicateName, obj.Name)
	}
	if obj.Rotation == (mgl32.Quat{}) {
		obj.Rotation = mgl32.QuatIdent()
	}
	d.Objects[obj.Name] = obj
	return nil
}

func (d *Document) Object(name string) (*Object, error) {
	obj, ok := d.Objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, name)
	}
	return obj, nil
}

// ObjectOfType looks up name and checks its type.
func (d *Document) ObjectOfType(name string, typ ObjectType) (*Object, error) {
	obj, err := d.Object(name)
	if err != nil {
		return nil, err
	}
	if obj.Type != typ {
		return nil, fmt.Errorf("%w: %q is a %s, want %s", ErrWrongType, name, obj.Type, typ)
	}
	return obj, nil
}

// Match returns the objects whose names match the shell pattern, sorted
// by name. Hidden and unselectable objects match as well.
func (d *Document) Match(pattern string) ([]*Object, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	names := make([]string, 0)
	for name := range d.Objects {
		if ok, _ := path.Match(pattern, name); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	objs := make([]*Object, len(names))
	for i, name := range names {
		objs[i] = d.Objects[name]
	}
	return objs, nil
}

// ObjectNames returns every object name in sorted order.
func (d *Document) ObjectNames() []string {
	names := make([]string, 0, len(d.Objects))
	for name := range d.Objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemoveObjects deletes the given objects. Their datablocks stay in the
// document until collected.
func (d *Document) RemoveObjects(objs ...*Object) int {
	n := 0
	for _, obj := range objs {
		if _, ok := d.Objects[obj.Name]; ok {
			delete(d.Objects, obj.Name)
			n++
		}
	}
	return n
}

func (d *Document) MeshOf(obj *Object) (*Mesh, error) {
	if obj.Type != TypeMesh {
		return nil, fmt.Errorf("%w: %q is a %s, want mesh", ErrWrongType, obj.Name, obj.Type)
	}
	m, ok := d.Meshes[obj.Data]
	if !ok {
		return nil, fmt.Errorf("%w: %q (object %q)", ErrMeshNotFound, obj.Data, obj.Name)
	}
	return m, nil
}

func (d *Document) CurveOf(obj *Object) (*Curve, error) {
	if obj.Type != TypeCurve {
		return nil, fmt.Errorf("%w: %q is a %s, want curve", ErrWrongType, obj.Name, obj.Type)
	}
	c, ok := d.Curves[obj.Data]
	if !ok {
		return nil, fmt.Errorf("%w: %q (object %q)", ErrCurveNotFound, obj.Data, obj.Name)
	}
	return c, nil
}

// MaterialsOf resolves the object's material slots.
func (d *Document) MaterialsOf(obj *Object) ([]*Material, error) {
	mats := make([]*Material, 0, len(obj.Materials))
	for _, name := range obj.Materials {
		m, ok := d.Materials[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q (object %q)", ErrMaterialNotFound, name, obj.Name)
		}
		mats = append(mats, m)
	}
	return mats, nil
}

// AddMesh stores m under a free name derived from m.Name and returns it.
func (d *Document) AddMesh(m *Mesh) string {
	m.Name = d.uniqueName(m.Name, func(n string) bool { _, ok := d.Meshes[n]; return ok })
	d.Meshes[m.Name] = m
	return m.Name
}

func (d *Document) AddMaterial(m *Material) string {
	m.Name = d.uniqueName(m.Name, func(n string) bool { _, ok := d.Materials[n]; return ok })
	d.Materials[m.Name] = m
	return m.Name
}

func (d *Document) AddCurve(c *Curve) string {
	c.Name = d.uniqueName(c.Name, func(n string) bool { _, ok := d.Curves[n]; return ok })
	d.Curves[c.Name] = c
	return c.Name
}

// uniqueName returns base, or base with the first free ".NNN" suffix.
func (d *Document) uniqueName(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s.%03d", base, i)
		if !taken(name) {
			return name
		}
	}
}

// DeleteUnusedMeshes removes meshes no object refers to and returns their
// names.
func (d *Document) DeleteUnusedMeshes() []string {
	used := make(map[string]bool)
	for _, obj := range d.Objects {
		if obj.Type == TypeMesh {
			used[obj.Data] = true
		}
	}
	return deleteUnused(d.Meshes, used)
}

// DeleteUnusedMaterials removes materials no object slot refers to.
func (d *Document) DeleteUnusedMaterials() []string {
	used := make(map[string]bool)
	for _, obj := range d.Objects {
		for _, name := range obj.Materials {
			used[name] = true
		}
	}
	return deleteUnused(d.Materials, used)
}

// DeleteUnusedCurves removes curves no object refers to.
func (d *Document) DeleteUnusedCurves() []string {
	used := make(map[string]bool)
	for _, obj := range d.Objects {
		if obj.Type == TypeCurve {
			used[obj.Data] = true
		}
	}
	return deleteUnused(d.Curves, used)
}

// DeleteUnusedActions removes actions no datablock owns.
func (d *Document) DeleteUnusedActions() []string {
	used := make(map[string]bool)
	for _, o := range d.Objects {
		used[o.Action] = true
	}
	for _, m := range d.Meshes {
		used[m.Action] = true
	}
	for _, m := range d.Materials {
		used[m.Action] = true
	}
	for _, c := range d.Curves {
		used[c.Action] = true
	}
	return deleteUnused(d.Actions, used)
}

func deleteUnused[T any](blocks map[string]*T, used map[string]bool) []string {
	removed := make([]string, 0)
	for name := range blocks {
		if !used[name] {
			delete(blocks, name)
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)
	return removed
}

// ExtendFrameEnd moves the scene end so that frame is inside the range.
func (d *Document) ExtendFrameEnd(frame int) {
	if d.FrameEnd < frame {
		d.FrameEnd = frame
	}
}
