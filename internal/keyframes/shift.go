// Package keyframes retimes the animation of scene objects by scaling and
// offsetting keyframe times.
package keyframes

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/starstage/internal/scene"
)

// ErrOverlap is returned under PolicyReject when a transform would make two
// keyframes of one curve collide or change order.
var ErrOverlap = errors.New("keyframes: shifted keyframes would overlap")

var ErrBadTransform = errors.New("keyframes: invalid transform")

type Policy string

const (
	// PolicyAllow applies the transform as is, even if keys end up
	// coinciding or out of order.
	PolicyAllow Policy = "allow"
	// PolicyReject checks every curve first and changes nothing on overlap.
	PolicyReject Policy = "reject"
)

const (
	DefaultFrameEnd = 1e6

	sameFrame = 1e-4
)

// Transform maps a frame t in [FrameStart, FrameEnd] to t*Factor + Offset.
type Transform struct {
	Factor     float32 `yaml:"factor"`
	Offset     float32 `yaml:"offset"`
	FrameStart float32 `yaml:"frame_start"`
	FrameEnd   float32 `yaml:"frame_end"`
	Policy     Policy  `yaml:"policy"`
}

func DefaultTransform() Transform {
	return Transform{Factor: 1, FrameEnd: DefaultFrameEnd, Policy: PolicyAllow}
}

func (t Transform) Validate() error {
	for _, v := range []float32{t.Factor, t.Offset, t.FrameStart, t.FrameEnd} {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: non-finite value", ErrBadTransform)
		}
	}
	if t.FrameEnd < t.FrameStart {
		return fmt.Errorf("%w: frame range [%g, %g] is empty", ErrBadTransform, t.FrameStart, t.FrameEnd)
	}
	switch t.Policy {
	case PolicyAllow, PolicyReject, "":
	default:
		return fmt.Errorf("%w: unknown policy %q", ErrBadTransform, t.Policy)
	}
	return nil
}

func (t Transform) InRange(frame float32) bool {
	return frame >= t.FrameStart && frame <= t.FrameEnd
}

func (t Transform) Apply(frame float32) float32 {
	return frame*t.Factor + t.Offset
}

// Report counts what a shift touched.
type Report struct {
	Actions   int
	Curves    int
	Keyframes int
}

// CollectActions returns the actions animating the objects matching
// pattern: their own, their materials', and their mesh or curve data's.
// Each action appears once.
func CollectActions(doc *scene.Document, pattern string) ([]*scene.Action, error) {
	objs, err := doc.Match(pattern)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	actions := make([]*scene.Action, 0)
	add := func(o scene.Animated) {
		a := doc.Action(o)
		if a == nil || seen[a.Name] {
			return
		}
		seen[a.Name] = true
		actions = append(actions, a)
	}

	for _, obj := range objs {
		add(obj)
		mats, err := doc.MaterialsOf(obj)
		if err != nil {
			return nil, err
		}
		for _, m := range mats {
			add(m)
		}
		switch obj.Type {
		case scene.TypeMesh:
			if m, err := doc.MeshOf(obj); err == nil {
				add(m)
			}
		case scene.TypeCurve:
			if c, err := doc.CurveOf(obj); err == nil {
				add(c)
			}
		}
	}
	return actions, nil
}

// Shift retimes every keyframe in range, moving both handles with it.
func Shift(actions []*scene.Action, t Transform) (Report, error) {
	if err := t.Validate(); err != nil {
		return Report{}, err
	}
	if t.Policy == PolicyReject {
		for _, a := range actions {
			for i := range a.FCurves {
				if err := checkOverlap(&a.FCurves[i], t); err != nil {
					return Report{}, fmt.Errorf("%s: %w", a.Name, err)
				}
			}
		}
	}

	var r Report
	for _, a := range actions {
		touched := false
		for i := range a.FCurves {
			n := shiftCurve(&a.FCurves[i], t)
			if n > 0 {
				r.Curves++
				r.Keyframes += n
				touched = true
			}
		}
		if touched {
			r.Actions++
		}
	}
	return r, nil
}

func shiftCurve(fc *scene.FCurve, t Transform) int {
	n := 0
	for i := range fc.Keyframes {
		k := &fc.Keyframes[i]
		if !t.InRange(k.Co[0]) {
			continue
		}
		k.Co[0] = t.Apply(k.Co[0])
		k.HandleLeft[0] = t.Apply(k.HandleLeft[0])
		k.HandleRight[0] = t.Apply(k.HandleRight[0])
		n++
	}
	return n
}

// checkOverlap verifies that the shifted frames keep their order with no
// two closer than sameFrame.
func checkOverlap(fc *scene.FCurve, t Transform) error {
	type pair struct{ before, after float32 }
	frames := make([]pair, len(fc.Keyframes))
	for i, k := range fc.Keyframes {
		f := k.Co[0]
		after := f
		if t.InRange(f) {
			after = t.Apply(f)
		}
		frames[i] = pair{f, after}
	}
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].before < frames[j].before })

	for i := 1; i < len(frames); i++ {
		prev, cur := frames[i-1], frames[i]
		if prev.before == prev.after && cur.before == cur.after {
			continue
		}
		if cur.after-prev.after < sameFrame {
			return fmt.Errorf("%w: %s[%d] keys at %g and %g would land on %g and %g",
				ErrOverlap, fc.DataPath, fc.ArrayIndex, prev.before, cur.before, prev.after, cur.after)
		}
	}
	return nil
}
