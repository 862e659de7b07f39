package pipeline

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/starstage/internal/camerapath"
	"github.com/san-kum/starstage/internal/config"
	"github.com/san-kum/starstage/internal/export"
	"github.com/san-kum/starstage/internal/forms"
	"github.com/san-kum/starstage/internal/scene"
	"github.com/san-kum/starstage/internal/starmesh"
)

const stars = `RAVE_OBS_ID,Glon,Glat,dist,HRV,Teff_K
a,10,5,0.4,70,5000
b,100,-20,1.1,-70,
c,200,40,,0,4100
d,300,10,2,25,6000
e,50,-60,0.7,-30,5400
`

const demoJob = `
name: demo
description: full scene
config:
  catalog:
    path: stars.csv
  camera:
    duration: 300
steps:
  - kind: import
  - kind: forms
  - kind: deform
  - kind: shift
    pattern: "stars-*"
    shift:
      factor: 2
      offset: 10
      frame_end: 1000000
  - kind: camera
  - kind: export
    output: out.csv
    frame: 0
`

func writeJob(dir, job string) string {
	GinkgoHelper()
	Expect(os.WriteFile(filepath.Join(dir, "stars.csv"), []byte(stars), 0644)).To(Succeed())
	path := filepath.Join(dir, "job.yaml")
	Expect(os.WriteFile(path, []byte(job), 0644)).To(Succeed())
	return path
}

var _ = Describe("ParseJob", func() {
	It("layers the config block over the defaults", func() {
		job, err := ParseJob([]byte(demoJob))
		Expect(err).NotTo(HaveOccurred())
		Expect(job.Name).To(Equal("demo"))
		Expect(job.Config.Catalog.Path).To(Equal("stars.csv"))
		Expect(job.Config.Camera.Duration).To(BeNumerically("==", 300))
		Expect(job.Config.Camera.Radius).To(BeNumerically("==", camerapath.DefaultRadius))
		Expect(job.Steps).To(HaveLen(6))
		Expect(job.Steps[3].Shift.Factor).To(BeNumerically("==", 2))
	})

	It("starts from a preset", func() {
		job, err := ParseJob([]byte("preset: sky-sphere\nsteps: [{kind: import}]\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(job.Config.Mesh.Mode).To(Equal(starmesh.ModeSingle))
	})

	It("rejects an unknown preset", func() {
		_, err := ParseJob([]byte("preset: nebula\n"))
		Expect(err).To(MatchError(ErrNoPreset))
	})
})

var _ = Describe("Run", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("builds the whole scene", func() {
		job, err := LoadJob(writeJob(dir, demoJob))
		Expect(err).NotTo(HaveOccurred())

		doc := scene.New("demo")
		results, err := Run(context.Background(), job, doc, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(6))

		Expect(doc.ObjectNames()).To(ContainElements(
			"stars-red", "stars-blue", "stars-yellow", "stars-orange", "stars-cyan",
			"Camera", "Camera-Path", "Camera-TrackTo",
		))

		red := doc.Meshes["stars-red"]
		Expect(forms.Names(red)).To(Equal([]string{"Basis", "KeySphere", "KeyMap"}))

		// transitions 230->170 and 100->30 doubled and offset by 10
		fc := doc.Action(red).FCurve(scene.ShapeKeyPath("KeyMap"), 0)
		Expect(fc).NotTo(BeNil())
		Expect(fc.Keyframes[0].Frame()).To(BeNumerically("~", 70, 1e-4))
		Expect(fc.Keyframes[1].Frame()).To(BeNumerically("~", 210, 1e-4))

		Expect(doc.FrameEnd).To(Equal(300))
		Expect(filepath.Join(dir, "out.csv")).To(BeAnExistingFile())
	})

	It("names the failing step", func() {
		job, err := ParseJob([]byte("steps: [{kind: import}, {kind: bake}]\n"))
		Expect(err).NotTo(HaveOccurred())
		job.Dir = dir
		writeJob(dir, "")
		job.Config.Catalog.Path = "stars.csv"

		results, err := Run(context.Background(), job, scene.New("x"), nil)
		Expect(err).To(MatchError(ErrUnknownStep))
		Expect(err.Error()).To(HavePrefix("step 2 (bake)"))
		Expect(results).To(HaveLen(1))
	})

	It("stops when the context is cancelled", func() {
		job, err := ParseJob([]byte("steps: [{kind: clear}]\n"))
		Expect(err).NotTo(HaveOccurred())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = Run(ctx, job, scene.New("x"), nil)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("renders frames after building", func() {
		job, err := LoadJob(writeJob(dir, `
steps:
  - kind: import
    catalog: stars.csv
  - kind: camera
    camera:
      name: Camera
      path: Camera-Path
      target: Camera-TrackTo
      radius: 4
      duration: 20
  - kind: render
    output: frames
    format: svg
    every: 10
`))
		Expect(err).NotTo(HaveOccurred())

		doc := scene.New("render")
		doc.FrameStart, doc.FrameEnd = 0, 0
		results, err := Run(context.Background(), job, doc, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[2].Summary).To(HavePrefix("3 svg frames"))
		Expect(filepath.Join(dir, "frames", "frame_0020.svg")).To(BeAnExistingFile())
	})

	It("rejects an unknown render format", func() {
		job, err := ParseJob([]byte("steps: [{kind: render, format: gif}]\n"))
		Expect(err).NotTo(HaveOccurred())
		job.Dir = dir
		_, err = Run(context.Background(), job, scene.New("x"), nil)
		Expect(err).To(MatchError(export.ErrBadFormat))
	})

	It("reuses an existing camera rig", func() {
		doc := scene.New("x")
		cfg := mustDefault()
		Expect(SetupCamera(doc, cfg.Camera, nil)).To(Succeed())
		Expect(SetupCamera(doc, cfg.Camera, nil)).To(Succeed())
		Expect(doc.Objects).To(HaveLen(3))
	})
})

func mustDefault() *config.Config {
	job, err := ParseJob([]byte("steps: []\n"))
	Expect(err).NotTo(HaveOccurred())
	return job.Config
}
