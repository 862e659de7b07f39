package scene

import (
	"github.com/jinzhu/copier"
)

var deep = copier.Option{DeepCopy: true}

func (m *Mesh) Clone() (*Mesh, error) {
	c := &Mesh{}
	if err := copier.CopyWithOption(c, m, deep); err != nil {
		return nil, err
	}
	return c, nil
}

func (o *Object) Clone() (*Object, error) {
	c := &Object{}
	if err := copier.CopyWithOption(c, o, deep); err != nil {
		return nil, err
	}
	return c, nil
}

func (a *Action) Clone() (*Action, error) {
	c := &Action{}
	if err := copier.CopyWithOption(c, a, deep); err != nil {
		return nil, err
	}
	return c, nil
}

// Clone returns an independent copy of the whole document.
func (d *Document) Clone() (*Document, error) {
	c := New(d.Name)
	c.FrameStart, c.FrameEnd = d.FrameStart, d.FrameEnd

	for name, o := range d.Objects {
		oc, err := o.Clone()
		if err != nil {
			return nil, err
		}
		c.Objects[name] = oc
	}
	for name, m := range d.Meshes {
		mc, err := m.Clone()
		if err != nil {
			return nil, err
		}
		c.Meshes[name] = mc
	}
	for name, a := range d.Actions {
		ac, err := a.Clone()
		if err != nil {
			return nil, err
		}
		c.Actions[name] = ac
	}
	for name, m := range d.Materials {
		mc := *m
		c.Materials[name] = &mc
	}
	for name, cu := range d.Curves {
		cc := *cu
		c.Curves[name] = &cc
	}
	return c, nil
}
