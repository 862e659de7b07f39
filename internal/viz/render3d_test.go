package viz

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/starstage/internal/camerapath"
	"github.com/san-kum/starstage/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frontView() View {
	return View{
		Eye:    mgl32.Vec3{0, 0, 10},
		Target: mgl32.Vec3{},
		Up:     mgl32.Vec3{0, 1, 0},
		FOV:    defaultFOV,
		Near:   0.1,
		Far:    100,
	}
}

func TestProjectCenterAndDirections(t *testing.T) {
	p := frontView().Projector(100, 100)

	x, y, depth, ok := p.Project(mgl32.Vec3{})
	require.True(t, ok)
	assert.Equal(t, 50, x)
	assert.Equal(t, 49, y)
	assert.InDelta(t, 10, depth, 1e-4)

	rx, _, _, ok := p.Project(mgl32.Vec3{1, 0, 0})
	require.True(t, ok)
	assert.Greater(t, rx, x)

	_, uy, _, ok := p.Project(mgl32.Vec3{0, 1, 0})
	require.True(t, ok)
	assert.Less(t, uy, y)

	_, _, _, ok = p.Project(mgl32.Vec3{0, 0, 20})
	assert.False(t, ok, "points behind the eye are not visible")

	_, _, _, ok = p.Project(mgl32.Vec3{100, 0, 0})
	assert.False(t, ok, "points outside the image are not visible")
}

func TestScaleShrinksWithDepth(t *testing.T) {
	p := frontView().Projector(100, 100)
	assert.Greater(t, p.Scale(1), p.Scale(10))
}

func TestOrbitLooksAtCenter(t *testing.T) {
	o := NewOrbit()
	center := mgl32.Vec3{3, -2, 1}
	v := o.View(center, 2)
	assert.Equal(t, center, v.Target)
	assert.InDelta(t, 5, v.Eye.Sub(center).Len(), 1e-4)

	o.ZoomIn()
	closer := o.View(center, 2)
	assert.Less(t, closer.Eye.Sub(center).Len(), v.Eye.Sub(center).Len())

	o.Rotate(0, 10)
	assert.InDelta(t, 1.5, o.Pitch, 1e-6)

	x, y, _, ok := o.View(center, 2).Projector(80, 40).Project(center)
	require.True(t, ok)
	assert.InDelta(t, 40, x, 1)
	assert.InDelta(t, 20, y, 1)
}

func TestPoseViewFacesTarget(t *testing.T) {
	doc := scene.New("test")
	_, err := camerapath.EnsureCamera(doc, camerapath.DefaultCamera)
	require.NoError(t, err)
	_, err = camerapath.AddPath(doc, camerapath.DefaultPath, 5, mgl32.Vec3{0, 0, 1})
	require.NoError(t, err)
	_, err = camerapath.AddTarget(doc, camerapath.DefaultTarget, mgl32.Vec3{})
	require.NoError(t, err)
	require.NoError(t, camerapath.Animate(doc, camerapath.DefaultCamera, camerapath.DefaultPath,
		camerapath.DefaultTarget, 0, 100, nil))

	for _, frame := range []float32{0, 25, 60} {
		pose, err := camerapath.Evaluate(doc, camerapath.DefaultCamera, frame)
		require.NoError(t, err)
		x, y, _, ok := PoseView(pose).Projector(100, 100).Project(mgl32.Vec3{})
		require.True(t, ok, "frame %v", frame)
		assert.InDelta(t, 50, x, 1, "frame %v", frame)
		assert.InDelta(t, 49, y, 1, "frame %v", frame)
	}
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#ff0000", Hex(mgl32.Vec3{1, 0, 0}))
	assert.Equal(t, "#ffffff", Hex(mgl32.Vec3{2, 2, 2}))
}
