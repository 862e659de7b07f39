package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/starstage/internal/forms"
	"github.com/san-kum/starstage/internal/scene"
)

// ExportVertices writes one CSV row per vertex of the mesh objects matching
// pattern, with positions evaluated at frame.
func ExportVertices(w io.Writer, doc *scene.Document, pattern string, frame float32) (int, error) {
	objs, err := doc.Match(pattern)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"object", "index", "x", "y", "z", "r", "g", "b"}); err != nil {
		return 0, err
	}

	rows := 0
	for _, obj := range objs {
		if obj.Type != scene.TypeMesh {
			continue
		}
		mesh, err := doc.MeshOf(obj)
		if err != nil {
			return rows, err
		}
		colors := VertexColors(doc, obj, mesh)
		for i, p := range forms.Positions(doc, mesh, frame) {
			p = p.Add(obj.Location)
			c := colors[i]
			row := []string{
				obj.Name, strconv.Itoa(i),
				ff(p.X()), ff(p.Y()), ff(p.Z()),
				ff(c.X()), ff(c.Y()), ff(c.Z()),
			}
			if err := cw.Write(row); err != nil {
				return rows, err
			}
			rows++
		}
	}
	cw.Flush()
	return rows, cw.Error()
}

func ExportVerticesFile(path string, doc *scene.Document, pattern string, frame float32) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ExportVertices(f, doc, pattern, frame)
}

// VertexColors returns the first color layer of mesh, or the diffuse color
// of the object's first material for every vertex.
func VertexColors(doc *scene.Document, obj *scene.Object, mesh *scene.Mesh) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(mesh.Vertices))
	if len(mesh.ColorLayers) > 0 && len(mesh.ColorLayers[0].Colors) == len(mesh.Vertices) {
		for i, c := range mesh.ColorLayers[0].Colors {
			out[i] = c.Vec3()
		}
		return out
	}
	base := mgl32.Vec3{1, 1, 1}
	if mats, err := doc.MaterialsOf(obj); err == nil && len(mats) > 0 {
		base = mats[0].DiffuseColor
	}
	for i := range out {
		out[i] = base
	}
	return out
}

// WriteJSON dumps the whole document.
func WriteJSON(w io.Writer, doc *scene.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func ff(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 6, 32)
}
