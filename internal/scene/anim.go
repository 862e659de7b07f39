package scene

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type Interpolation string

const (
	InterpBezier   Interpolation = "bezier"
	InterpLinear   Interpolation = "linear"
	InterpConstant Interpolation = "constant"
)

// frameEpsilon is the distance below which two frames count as the same.
const frameEpsilon = 1e-4

// Keyframe is a (frame, value) control point. The handles shape the bezier
// segments on either side; their X components are frames as well.
type Keyframe struct {
	Co            mgl32.Vec2    `json:"co"`
	HandleLeft    mgl32.Vec2    `json:"handle_left"`
	HandleRight   mgl32.Vec2    `json:"handle_right"`
	Interpolation Interpolation `json:"interpolation"`
}

func (k Keyframe) Frame() float32 { return k.Co[0] }
func (k Keyframe) Value() float32 { return k.Co[1] }

type FCurve struct {
	DataPath   string     `json:"data_path"`
	ArrayIndex int        `json:"array_index"`
	Keyframes  []Keyframe `json:"keyframes"`
}

type Action struct {
	Name    string   `json:"name"`
	FCurves []FCurve `json:"fcurves"`
}

// FCurve returns the curve for dataPath and index, or nil.
func (a *Action) FCurve(dataPath string, index int) *FCurve {
	for i := range a.FCurves {
		if a.FCurves[i].DataPath == dataPath && a.FCurves[i].ArrayIndex == index {
			return &a.FCurves[i]
		}
	}
	return nil
}

// RemoveFCurves drops every curve animating dataPath and returns how many
// were removed.
func (a *Action) RemoveFCurves(dataPath string) int {
	kept := a.FCurves[:0]
	removed := 0
	for _, fc := range a.FCurves {
		if fc.DataPath == dataPath {
			removed++
			continue
		}
		kept = append(kept, fc)
	}
	a.FCurves = kept
	return removed
}

// Insert adds a keyframe at frame, replacing one already there. Keyframes
// stay sorted by frame and handles are recomputed.
func (c *FCurve) Insert(frame, value float32, interp Interpolation) {
	if interp == "" {
		interp = InterpBezier
	}
	k := Keyframe{Co: mgl32.Vec2{frame, value}, Interpolation: interp}

	i := sort.Search(len(c.Keyframes), func(i int) bool {
		return c.Keyframes[i].Co[0] >= frame-frameEpsilon
	})
	switch {
	case i < len(c.Keyframes) && math32.Abs(c.Keyframes[i].Co[0]-frame) < frameEpsilon:
		c.Keyframes[i] = k
	default:
		c.Keyframes = append(c.Keyframes, Keyframe{})
		copy(c.Keyframes[i+1:], c.Keyframes[i:])
		c.Keyframes[i] = k
	}
	c.recalcHandles()
}

// RemoveBetween drops keyframes strictly between lo and hi and returns how
// many were removed.
func (c *FCurve) RemoveBetween(lo, hi float32) int {
	kept := c.Keyframes[:0]
	for _, k := range c.Keyframes {
		if k.Co[0] > lo+frameEpsilon && k.Co[0] < hi-frameEpsilon {
			continue
		}
		kept = append(kept, k)
	}
	n := len(c.Keyframes) - len(kept)
	c.Keyframes = kept
	if n > 0 {
		c.recalcHandles()
	}
	return n
}

// recalcHandles sets flat handles reaching a third of the way to each
// neighbour.
func (c *FCurve) recalcHandles() {
	n := len(c.Keyframes)
	for i := range c.Keyframes {
		k := &c.Keyframes[i]
		left, right := float32(1), float32(1)
		if i > 0 {
			left = (k.Co[0] - c.Keyframes[i-1].Co[0]) / 3
		}
		if i < n-1 {
			right = (c.Keyframes[i+1].Co[0] - k.Co[0]) / 3
		}
		if i == 0 && n > 1 {
			left = right
		}
		if i == n-1 && n > 1 {
			right = left
		}
		k.HandleLeft = mgl32.Vec2{k.Co[0] - left, k.Co[1]}
		k.HandleRight = mgl32.Vec2{k.Co[0] + right, k.Co[1]}
	}
}

// Evaluate returns the curve value at frame. Values are held constant
// before the first and after the last keyframe.
func (c *FCurve) Evaluate(frame float32) float32 {
	n := len(c.Keyframes)
	if n == 0 {
		return 0
	}
	first, last := c.Keyframes[0], c.Keyframes[n-1]
	if frame <= first.Co[0] {
		return first.Co[1]
	}
	if frame >= last.Co[0] {
		return last.Co[1]
	}

	for i := 0; i < n-1; i++ {
		k0, k1 := c.Keyframes[i], c.Keyframes[i+1]
		if frame < k0.Co[0] || frame > k1.Co[0] {
			continue
		}
		span := k1.Co[0] - k0.Co[0]
		if span <= frameEpsilon {
			return k1.Co[1]
		}
		switch k0.Interpolation {
		case InterpConstant:
			return k0.Co[1]
		case InterpLinear:
			t := (frame - k0.Co[0]) / span
			return k0.Co[1] + t*(k1.Co[1]-k0.Co[1])
		default:
			return evalBezier(k0.Co, k0.HandleRight, k1.HandleLeft, k1.Co, frame)
		}
	}
	return last.Co[1]
}

// evalBezier solves the segment's x(t) = frame by bisection and returns y(t).
func evalBezier(p0, p1, p2, p3 mgl32.Vec2, frame float32) float32 {
	lo, hi := float32(0), float32(1)
	var t float32
	for iter := 0; iter < 40; iter++ {
		t = (lo + hi) / 2
		x := cubic(p0[0], p1[0], p2[0], p3[0], t)
		if math32.Abs(x-frame) < 1e-5 {
			break
		}
		if x < frame {
			lo = t
		} else {
			hi = t
		}
	}
	return cubic(p0[1], p1[1], p2[1], p3[1], t)
}

func cubic(a, b, c, d, t float32) float32 {
	u := 1 - t
	return u*u*u*a + 3*u*u*t*b + 3*u*t*t*c + t*t*t*d
}

// Action returns the action owned by o, or nil when o is not animated.
func (d *Document) Action(o Animated) *Action {
	name := *o.ActionRef()
	if name == "" {
		return nil
	}
	return d.Actions[name]
}

// EnsureAction returns the action owned by o, creating it when needed.
func (d *Document) EnsureAction(o Animated) *Action {
	if a := d.Action(o); a != nil {
		return a
	}
	name := d.uniqueName(o.ID()+"Action", func(n string) bool {
		_, ok := d.Actions[n]
		return ok
	})
	a := &Action{Name: name}
	d.Actions[name] = a
	*o.ActionRef() = name
	return a
}

// InsertKeyframe keys value at frame on the owner's dataPath channel.
func (d *Document) InsertKeyframe(o Animated, dataPath string, index int, frame, value float32) {
	a := d.EnsureAction(o)
	fc := a.FCurve(dataPath, index)
	if fc == nil {
		a.FCurves = append(a.FCurves, FCurve{DataPath: dataPath, ArrayIndex: index})
		fc = &a.FCurves[len(a.FCurves)-1]
	}
	fc.Insert(frame, value, InterpBezier)
}

// Evaluate returns the animated value of dataPath at frame, or fallback
// when the channel is not animated.
func (d *Document) Evaluate(o Animated, dataPath string, index int, frame, fallback float32) float32 {
	a := d.Action(o)
	if a == nil {
		return fallback
	}
	fc := a.FCurve(dataPath, index)
	if fc == nil || len(fc.Keyframes) == 0 {
		return fallback
	}
	return fc.Evaluate(frame)
}

// ShapeKeyPath is the data path animating a shape key's value.
func ShapeKeyPath(name string) string {
	return fmt.Sprintf("key_blocks[%q].value", name)
}
