package export

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/starstage/internal/camerapath"
	"github.com/san-kum/starstage/internal/scene"
	"github.com/san-kum/starstage/internal/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc(t *testing.T, withCamera bool) *scene.Document {
	t.Helper()
	doc := scene.New("render")
	mesh := &scene.Mesh{
		Name:     "stars",
		Vertices: []mgl32.Vec3{{0, 0, 0}, {0.5, 0, 0}, {0, 0.5, 0}},
	}
	mat := doc.AddMaterial(&scene.Material{
		Name: "Mesh-stars", Type: scene.MaterialHalo, HaloSize: 0.05, DiffuseColor: mgl32.Vec3{1, 0.5, 0},
	})
	require.NoError(t, doc.AddObject(&scene.Object{
		Name: "stars", Type: scene.TypeMesh, Data: doc.AddMesh(mesh), Materials: []string{mat},
	}))
	if withCamera {
		_, err := camerapath.EnsureCamera(doc, camerapath.DefaultCamera)
		require.NoError(t, err)
		_, err = camerapath.AddPath(doc, camerapath.DefaultPath, 3, mgl32.Vec3{0, 0, 1})
		require.NoError(t, err)
		_, err = camerapath.AddTarget(doc, camerapath.DefaultTarget, mgl32.Vec3{})
		require.NoError(t, err)
		require.NoError(t, camerapath.Animate(doc, camerapath.DefaultCamera, camerapath.DefaultPath,
			camerapath.DefaultTarget, 0, 40, nil))
	}
	return doc
}

func frontView() viz.View {
	return viz.View{
		Eye:    mgl32.Vec3{0, 0, 5},
		Target: mgl32.Vec3{},
		Up:     mgl32.Vec3{0, 1, 0},
		FOV:    mgl32.DegToRad(50),
		Near:   0.1,
		Far:    100,
	}
}

func TestSVG(t *testing.T) {
	doc := testDoc(t, true)
	f, err := viz.Snapshot(doc, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, f, frontView(), Options{Width: 200, Height: 100}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Equal(t, 1, strings.Count(out, "<polyline"))
	assert.Contains(t, out, `fill="#ff8000"`)
	assert.Contains(t, out, `width="200" height="100"`)
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestImageDrawsStarsWithGlow(t *testing.T) {
	doc := testDoc(t, false)
	f, err := viz.Snapshot(doc, 0)
	require.NoError(t, err)

	opts := Options{Width: 64, Height: 64, MinRadius: 2}
	sharp := Image(f, frontView(), opts)
	opts.Glow = 4
	glow := Image(f, frontView(), opts)

	center := sharp.RGBAAt(32, 31)
	assert.Equal(t, uint8(255), center.R)
	assert.Zero(t, center.B)

	// a pixel just outside the disc is dark without glow and lit with it
	off := sharp.RGBAAt(32, 36)
	lit := glow.RGBAAt(32, 36)
	assert.Zero(t, off.R)
	assert.Greater(t, lit.R, off.R)
}

func TestPNG(t *testing.T) {
	doc := testDoc(t, false)
	f, err := viz.Snapshot(doc, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, f, frontView(), Options{Width: 32, Height: 16}))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestFrames(t *testing.T) {
	doc := testDoc(t, true)
	dir := filepath.Join(t.TempDir(), "out")
	before, err := json.Marshal(doc)
	require.NoError(t, err)

	paths, err := Frames(context.Background(), doc, Range(0, 40, 10), dir, "frame_", FormatSVG,
		Options{Width: 80, Height: 60}, nil)
	require.NoError(t, err)

	want := []string{"frame_0000.svg", "frame_0010.svg", "frame_0020.svg", "frame_0030.svg", "frame_0040.svg"}
	got := make([]string, len(paths))
	for i, p := range paths {
		got[i] = filepath.Base(p)
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
	assert.Equal(t, want, got)

	after, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after), "rendering changed the document")
}

func TestFramesErrors(t *testing.T) {
	doc := testDoc(t, false)
	dir := t.TempDir()

	_, err := Frames(context.Background(), doc, nil, dir, "", FormatPNG, Options{}, nil)
	assert.ErrorIs(t, err, ErrNoFrames)

	_, err = Frames(context.Background(), doc, []int{1}, dir, "", Format("gif"), Options{}, nil)
	assert.ErrorIs(t, err, ErrBadFormat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Frames(ctx, doc, []int{1, 2}, dir, "", FormatPNG, Options{Width: 8, Height: 8}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	_, err = ParseFormat("jpeg")
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestRange(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, Range(1, 3, 0))
	assert.Equal(t, []int{0, 5}, Range(0, 9, 5))
	assert.Empty(t, Range(5, 1, 1))
}
