package forms

import (
	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/starstage/internal/scene"
)

func expectClose(got, want []mgl32.Vec3) {
	GinkgoHelper()
	Expect(got).To(HaveLen(len(want)))
	for i := range want {
		for c := 0; c < 3; c++ {
			Expect(got[i][c]).To(BeNumerically("~", want[i][c], 1e-4), "point %d axis %d", i, c)
		}
	}
}

func starMesh(doc *scene.Document, name string) (*scene.Object, *scene.Mesh) {
	GinkgoHelper()
	mesh := &scene.Mesh{Name: name, Vertices: []mgl32.Vec3{
		{3, 0, 0},
		{0, 0.5, 0},
		{0, 0, 4},
		{0, 0, 0},
		{-1, -1, 1},
	}}
	obj := &scene.Object{Name: name, Type: scene.TypeMesh, Data: doc.AddMesh(mesh)}
	Expect(doc.AddObject(obj)).To(Succeed())
	return obj, mesh
}

var _ = Describe("Generators", func() {
	It("projects onto a sphere and leaves the origin alone", func() {
		out := Sphere{Radius: 2}.Generate([]mgl32.Vec3{{3, 0, 0}, {0, 0, 0}, {1, 1, 1}})
		Expect(out[0]).To(Equal(mgl32.Vec3{2, 0, 0}))
		Expect(out[1]).To(Equal(mgl32.Vec3{}))
		Expect(out[2].Len()).To(BeNumerically("~", 2, 1e-5))
	})

	It("flattens onto an equirectangular map in the x-z plane", func() {
		out := Map{Width: 7.5, Height: 4.5}.Generate([]mgl32.Vec3{
			{1, 0, 0},
			{0, 2, 0},
			{0, 0, 5},
			{0, 0, -1},
			{0, 0, 0},
		})
		expectClose(out, []mgl32.Vec3{
			{0, 0, 0},
			{-1.875, 0, 0},
			{0, 0, 2.25},
			{0, 0, -2.25},
			{0, 0, 0},
		})
	})

	It("looks up generators by type", func() {
		g, err := Lookup("sphere", DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(Equal(Sphere{Radius: DefaultRadius}))

		g, err = Lookup("MAP", DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Key()).To(Equal("KeyMap"))

		_, err = Lookup("CUBE", DefaultParams())
		Expect(err).To(MatchError(ErrUnknownForm))
		Expect(Kinds()).To(Equal([]string{"MAP", "SPHERE"}))
	})
})

var _ = Describe("Forms", func() {
	var (
		doc  *scene.Document
		mesh *scene.Mesh
	)

	BeforeEach(func() {
		doc = scene.New("test")
		_, mesh = starMesh(doc, "stars-red")
	})

	Describe("Record", func() {
		It("makes the first form the basis", func() {
			Record(mesh, "Basis")
			Record(mesh, "Copy")
			Expect(Names(mesh)).To(Equal([]string{"Basis", "Copy"}))
			Expect(mesh.ShapeKeys[0].Value).To(Equal(float32(1)))
			Expect(mesh.ShapeKeys[1].Value).To(BeZero())
		})

		It("replaces a form recorded twice", func() {
			Record(mesh, "Basis")
			mesh.Vertices[0] = mgl32.Vec3{9, 9, 9}
			Record(mesh, "Basis")
			Expect(mesh.ShapeKeys).To(HaveLen(1))
			Expect(mesh.ShapeKeys[0].Points[0]).To(Equal(mgl32.Vec3{9, 9, 9}))
		})

		It("does not alias the vertex slice", func() {
			Record(mesh, "Basis")
			mesh.Vertices[1] = mgl32.Vec3{7, 7, 7}
			Expect(mesh.ShapeKeys[0].Points[1]).To(Equal(mgl32.Vec3{0, 0.5, 0}))
		})

		It("rejects points of the wrong length", func() {
			err := RecordPoints(mesh, "Short", []mgl32.Vec3{{1, 2, 3}})
			Expect(err).To(MatchError(ErrPointCount))
		})
	})

	Describe("Deform", func() {
		BeforeEach(func() {
			Expect(Add(mesh, Sphere{Radius: 2})).To(Succeed())
			Expect(Add(mesh, Map{Width: 7.5, Height: 4.5})).To(Succeed())
			Expect(Names(mesh)).To(Equal([]string{"Basis", "KeySphere", "KeyMap"}))
		})

		It("shows the basis before any animation", func() {
			expectClose(Positions(doc, mesh, 50), mesh.Vertices)
			Expect(Active(doc, mesh, 50)).To(Equal("Basis"))
		})

		It("plays the default transitions", func() {
			for _, tr := range DefaultTransitions() {
				Expect(Deform(doc, mesh, tr.Target, tr.FrameStart, tr.FrameEnd)).To(Succeed())
			}
			sphere := mesh.ShapeKeys[1].Points
			flat := mesh.ShapeKeys[2].Points

			expectClose(Positions(doc, mesh, 0), flat)
			expectClose(Positions(doc, mesh, 30), flat)
			expectClose(Positions(doc, mesh, 100), sphere)
			expectClose(Positions(doc, mesh, 135), sphere)
			expectClose(Positions(doc, mesh, 170), sphere)
			expectClose(Positions(doc, mesh, 230), mesh.Vertices)
			expectClose(Positions(doc, mesh, 300), mesh.Vertices)

			Expect(Active(doc, mesh, 10)).To(Equal("KeyMap"))
			Expect(Active(doc, mesh, 150)).To(Equal("KeySphere"))
		})

		It("blends halfway between forms", func() {
			Expect(Deform(doc, mesh, "KeySphere", 0, 100)).To(Succeed())
			mid := Positions(doc, mesh, 50)
			basis, sphere := mesh.Vertices, mesh.ShapeKeys[1].Points
			for i := range mid {
				want := basis[i].Add(sphere[i]).Mul(0.5)
				Expect(mid[i].Sub(want).Len()).To(BeNumerically("<", 1e-3))
			}
		})

		It("is a no-op when the target is already active", func() {
			Expect(Deform(doc, mesh, "Basis", 0, 40)).To(Succeed())
			Expect(mesh.Action).To(BeEmpty())

			Expect(Deform(doc, mesh, "KeyMap", 0, 40)).To(Succeed())
			before, err := mesh.Clone()
			Expect(err).NotTo(HaveOccurred())
			action, err := doc.Action(mesh).Clone()
			Expect(err).NotTo(HaveOccurred())

			Expect(Deform(doc, mesh, "KeyMap", 60, 90)).To(Succeed())
			Expect(doc.Action(mesh)).To(Equal(action))
			for f := float32(0); f <= 120; f += 10 {
				expectClose(Positions(doc, mesh, f), Positions(doc, before, f))
			}
		})

		It("ends on the target after an overlapping transition", func() {
			Expect(Deform(doc, mesh, "KeySphere", 0, 100)).To(Succeed())
			Expect(Deform(doc, mesh, "KeyMap", 50, 150)).To(Succeed())

			flat := mesh.ShapeKeys[2].Points
			expectClose(Positions(doc, mesh, 150), flat)
			expectClose(Positions(doc, mesh, 200), flat)
			Expect(Weight(doc, mesh, 1, 150)).To(BeZero())
		})

		It("ends on the target when retargeting the same range", func() {
			Expect(Deform(doc, mesh, "KeySphere", 1, 30)).To(Succeed())
			Expect(Deform(doc, mesh, "KeyMap", 1, 30)).To(Succeed())

			expectClose(Positions(doc, mesh, 1), mesh.Vertices)
			expectClose(Positions(doc, mesh, 30), mesh.ShapeKeys[2].Points)
			Expect(Active(doc, mesh, 30)).To(Equal("KeyMap"))
		})

		It("rejects a form that no longer matches the mesh", func() {
			mesh.Vertices = append(mesh.Vertices, mgl32.Vec3{1, 1, 1})
			err := Deform(doc, mesh, "KeySphere", 0, 10)
			Expect(err).To(MatchError(ErrPointCount))
			Expect(mesh.Action).To(BeEmpty())
		})

		It("reports a missing form", func() {
			err := Deform(doc, mesh, "KeyCube", 0, 10)
			Expect(err).To(MatchError(scene.ErrShapeKeyNotFound))
		})
	})

	Describe("Clear", func() {
		It("drops forms and their curves", func() {
			Expect(Add(mesh, Sphere{Radius: 2})).To(Succeed())
			Expect(Deform(doc, mesh, "KeySphere", 0, 10)).To(Succeed())
			Expect(doc.Actions).To(HaveLen(1))

			Expect(Clear(doc, mesh)).To(Equal(2))
			Expect(mesh.ShapeKeys).To(BeEmpty())
			Expect(mesh.Action).To(BeEmpty())
			Expect(doc.Actions).To(BeEmpty())
		})

		It("keeps unrelated curves", func() {
			Expect(Add(mesh, Sphere{Radius: 2})).To(Succeed())
			Expect(Deform(doc, mesh, "KeySphere", 0, 10)).To(Succeed())
			doc.InsertKeyframe(mesh, "custom", 0, 1, 1)

			Clear(doc, mesh)
			Expect(doc.Action(mesh).FCurves).To(HaveLen(1))
		})
	})

	Describe("pattern operations", func() {
		BeforeEach(func() {
			starMesh(doc, "stars-blue")
			Expect(doc.AddObject(&scene.Object{Name: "stars-camera", Type: scene.TypeCamera})).To(Succeed())
		})

		It("adds and animates every matching mesh", func() {
			gens := []Generator{Sphere{Radius: 2}, Map{Width: 7.5, Height: 4.5}}
			n, err := AddAll(doc, "stars-*", gens, false, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))

			n, err = Animate(doc, "stars-*", DefaultTransitions(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))

			for _, name := range []string{"stars-red", "stars-blue"} {
				m := doc.Meshes[name]
				expectClose(Positions(doc, m, 0), m.ShapeKeys[2].Points)
			}
		})

		It("replaces existing forms when asked", func() {
			_, err := AddAll(doc, "stars-red", []Generator{Sphere{Radius: 2}}, false, nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = AddAll(doc, "stars-red", []Generator{Map{Width: 1, Height: 1}}, true, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(Names(mesh)).To(Equal([]string{"Basis", "KeyMap"}))
		})

		It("fails on a malformed pattern", func() {
			_, err := Animate(doc, "[", DefaultTransitions(), nil)
			Expect(err).To(MatchError(scene.ErrBadPattern))
		})
	})
})
