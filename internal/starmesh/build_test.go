package starmesh

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/starstage/internal/catalog"
	"github.com/san-kum/starstage/internal/mapping"
	"github.com/san-kum/starstage/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func makePoints(n int) []mapping.Point {
	bins := mapping.VelocityBins()
	pts := make([]mapping.Point, n)
	for i := range pts {
		v := float64(i*37%200 - 100)
		pts[i] = mapping.Point{
			ID:         fmt.Sprint(i),
			Position:   r3.Vec{X: float64(i), Y: float64(-i), Z: 0.5},
			Value:      v,
			ColorIndex: bins.Index(v),
			Color:      bins.Color(v),
		}
	}
	return pts
}

func TestBuildSingleKeepsOrder(t *testing.T) {
	doc := scene.New("test")
	pts := makePoints(25)

	res, err := Build(doc, pts, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"stars"}, res.Objects)
	assert.Equal(t, 25, res.Vertices)

	obj, err := doc.ObjectOfType("stars", scene.TypeMesh)
	require.NoError(t, err)
	mesh, err := doc.MeshOf(obj)
	require.NoError(t, err)

	require.Len(t, mesh.Vertices, 25)
	for i, v := range mesh.Vertices {
		assert.Equal(t, mgl32.Vec3{float32(i), float32(-i), 0.5}, v)
	}

	layer := mesh.ColorLayer(DefaultColorLayer)
	require.NotNil(t, layer)
	require.Len(t, layer.Colors, 25)
	c := pts[3].Color
	assert.Equal(t, mgl32.Vec4{float32(c.R), float32(c.G), float32(c.B), 1}, layer.Colors[3])

	mats, err := doc.MaterialsOf(obj)
	require.NoError(t, err)
	require.Len(t, mats, 1)
	assert.Equal(t, scene.MaterialHalo, mats[0].Type)
	assert.InDelta(t, DefaultHaloSize, mats[0].HaloSize, 1e-9)
}

func TestBuildSplitByColor(t *testing.T) {
	doc := scene.New("test")
	pts := makePoints(50)

	res, err := Build(doc, pts, Options{Mode: ModeSplit})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Vertices)

	total := 0
	for i, stop := range mapping.VelocityRamp {
		name := "stars-" + stop.Name
		obj, ok := doc.Objects[name]
		if !ok {
			continue
		}
		mesh, err := doc.MeshOf(obj)
		require.NoError(t, err)
		total += len(mesh.Vertices)

		// relative order inside a bin follows the input
		want := make([]mgl32.Vec3, 0)
		for _, p := range pts {
			if p.ColorIndex == i {
				want = append(want, mgl32.Vec3{float32(p.Position.X), float32(p.Position.Y), float32(p.Position.Z)})
			}
		}
		assert.Equal(t, want, mesh.Vertices, name)

		mats, err := doc.MaterialsOf(obj)
		require.NoError(t, err)
		assert.Equal(t, "Mesh-"+stop.Name, mats[0].Name)
		assert.Equal(t, mgl32.Vec3{float32(stop.Color.R), float32(stop.Color.G), float32(stop.Color.B)}, mats[0].DiffuseColor)
	}
	assert.Equal(t, 50, total)
}

func TestBuildExistingNameLeavesDocument(t *testing.T) {
	doc := scene.New("test")
	_, err := Build(doc, makePoints(3), Options{})
	require.NoError(t, err)

	_, err = Build(doc, makePoints(7), Options{})
	assert.ErrorIs(t, err, ErrExists)
	assert.Len(t, doc.Objects, 1)
	assert.Len(t, doc.Meshes, 1)
	assert.Len(t, doc.Meshes["stars"].Vertices, 3)
}

func TestBuildReplace(t *testing.T) {
	doc := scene.New("test")
	_, err := Build(doc, makePoints(30), Options{Mode: ModeSplit})
	require.NoError(t, err)

	_, err = Build(doc, makePoints(4), Options{Replace: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"stars"}, doc.ObjectNames())
	assert.Len(t, doc.Meshes, 1)
	assert.Len(t, doc.Materials, 1)
	assert.Contains(t, doc.Materials, "Mesh-stars")
}

func TestBuildSplitDuplicateStopsLeaveDocument(t *testing.T) {
	doc := scene.New("test")
	_, err := Build(doc, makePoints(6), Options{Mode: ModeSplit})
	require.NoError(t, err)
	objects, meshes, mats := doc.ObjectNames(), len(doc.Meshes), len(doc.Materials)

	ramp := mapping.Ramp{{Name: "hot"}, {Name: "hot"}}
	pts := makePoints(4)
	for i := range pts {
		pts[i].ColorIndex = i % 2
	}
	for _, replace := range []bool{false, true} {
		_, err = Build(doc, pts, Options{Mode: ModeSplit, Ramp: ramp, Replace: replace})
		assert.ErrorIs(t, err, ErrDuplicatePart)
		assert.Equal(t, objects, doc.ObjectNames())
		assert.Len(t, doc.Meshes, meshes)
		assert.Len(t, doc.Materials, mats)
	}
}

func TestBuildUnnamedStop(t *testing.T) {
	doc := scene.New("test")
	pts := makePoints(2)
	pts[0].ColorIndex, pts[1].ColorIndex = 0, 0

	_, err := Build(doc, pts, Options{Mode: ModeSplit, Ramp: mapping.Ramp{{}}})
	assert.ErrorIs(t, err, ErrNoName)
	assert.Empty(t, doc.Objects)

	_, err = Build(doc, pts, Options{Name: "  "})
	assert.ErrorIs(t, err, ErrNoName)
	assert.Empty(t, doc.Meshes)
}

func TestBuildReplaceDropsOrphanedAnimation(t *testing.T) {
	doc := scene.New("test")
	_, err := Build(doc, makePoints(5), Options{})
	require.NoError(t, err)
	doc.InsertKeyframe(doc.Meshes["stars"], scene.ShapeKeyPath("KeySphere"), 0, 1, 0)
	require.Len(t, doc.Actions, 1)

	_, err = Build(doc, makePoints(5), Options{Replace: true})
	require.NoError(t, err)
	assert.Empty(t, doc.Actions)
	assert.Empty(t, doc.Meshes["stars"].Action)
}

func TestBuildBadColorIndex(t *testing.T) {
	doc := scene.New("test")
	pts := makePoints(3)
	pts[1].ColorIndex = 9

	_, err := Build(doc, pts, Options{Mode: ModeSplit})
	assert.ErrorIs(t, err, ErrColorIndex)
	assert.Empty(t, doc.Objects)
}

func TestBuildBadMode(t *testing.T) {
	_, err := Build(scene.New("test"), makePoints(1), Options{Mode: "cloud"})
	assert.ErrorIs(t, err, ErrBadMode)
}

func writeCatalog(t *testing.T, rows int, bad int) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("RAVE_OBS_ID,Glon,Glat,dist,HRV\n")
	for i := 0; i < rows; i++ {
		if i == bad {
			fmt.Fprintf(&sb, "r%d,%d,10,oops,0\n", i, i)
			continue
		}
		fmt.Fprintf(&sb, "r%d,%d,10,1,%d\n", i, i, i-5)
	}
	path := filepath.Join(t.TempDir(), "stars.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
	return path
}

func TestImportRowsToVertices(t *testing.T) {
	m, err := mapping.NewMapper(mapping.DefaultFieldMap(), mapping.DefaultPosFactor, nil)
	require.NoError(t, err)

	doc := scene.New("test")
	res, err := Import(doc, writeCatalog(t, 12, -1), m, Options{})
	require.NoError(t, err)
	assert.Equal(t, 12, res.Vertices)

	mesh := doc.Meshes["stars"]
	require.Len(t, mesh.Vertices, 12)
	first := mapping.GalacticToCartesian(0, 10, 1)
	assert.InDelta(t, first.X*mapping.DefaultPosFactor, mesh.Vertices[0].X(), 1e-5)
	last := mapping.GalacticToCartesian(11, 10, 1)
	assert.InDelta(t, last.Y*mapping.DefaultPosFactor, mesh.Vertices[11].Y(), 1e-5)
}

func TestImportBadRowCreatesNothing(t *testing.T) {
	m, err := mapping.NewMapper(mapping.DefaultFieldMap(), mapping.DefaultPosFactor, nil)
	require.NoError(t, err)

	doc := scene.New("test")
	_, err = Import(doc, writeCatalog(t, 12, 6), m, Options{})
	assert.ErrorIs(t, err, catalog.ErrNotNumeric)
	assert.Empty(t, doc.Objects)
	assert.Empty(t, doc.Meshes)
	assert.Empty(t, doc.Materials)
}

func TestImportMissingFile(t *testing.T) {
	m, err := mapping.NewMapper(mapping.DefaultFieldMap(), 0, nil)
	require.NoError(t, err)
	_, err = Import(scene.New("test"), filepath.Join(t.TempDir(), "none.csv"), m, Options{})
	assert.ErrorIs(t, err, catalog.ErrFileNotFound)
}
