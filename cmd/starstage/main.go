package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/starstage/internal/config"
	"github.com/san-kum/starstage/internal/export"
	"github.com/san-kum/starstage/internal/forms"
	"github.com/san-kum/starstage/internal/keyframes"
	"github.com/san-kum/starstage/internal/logging"
	"github.com/san-kum/starstage/internal/pipeline"
	"github.com/san-kum/starstage/internal/scene"
	"github.com/san-kum/starstage/internal/starmesh"
	"github.com/san-kum/starstage/internal/storage"
	"github.com/san-kum/starstage/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	logger     *log.Logger

	// import
	meshName  string
	meshMode  string
	posFactor float64
	haloSize  float32
	replace   bool

	// forms, deform, shift
	pattern    string
	formTypes  []string
	radius     float32
	mapWidth   float32
	mapHeight  float32
	clearAll   bool
	frameStart float32
	frameEnd   float32
	deformFrom float32
	deformTo   float32
	factor     float32
	offset     float32
	policy     string

	// camera
	cameraName string
	pathName   string
	targetName string
	camStart   float32
	camLength  float32

	// new
	force    bool
	docStart int
	docEnd   int

	// run
	docOverride string

	// inspect, curves
	dump       bool
	objectName string
	samples    int

	// view, render, export-csv
	frame     int
	width     int
	height    int
	imgWidth  int
	imgHeight int
	csvGlob   string
	useCamera bool
	theme     string
	once      bool
	format    string
	outDir    string
	fromFrame int
	toFrame   int
	every     int
	glow      float64
	orbitView bool

	showPreset string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "starstage",
		Short:         "stage star catalogs as animated point clouds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".starstage", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	configFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
		c.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	}

	newCmd := &cobra.Command{
		Use:   "new [name]",
		Short: "create an empty document",
		Args:  cobra.ExactArgs(1),
		RunE:  newDocument,
	}
	newCmd.Flags().BoolVar(&force, "force", false, "replace an existing document")
	newCmd.Flags().IntVar(&docStart, "start", scene.DefaultFrameStart, "first frame")
	newCmd.Flags().IntVar(&docEnd, "end", scene.DefaultFrameEnd, "last frame")

	importCmd := &cobra.Command{
		Use:   "import [doc] [catalog]",
		Short: "build star meshes from a catalog",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  importCatalog,
	}
	configFlags(importCmd)
	importCmd.Flags().StringVar(&meshName, "name", "", "object name or prefix")
	importCmd.Flags().StringVar(&meshMode, "mode", "", "single or split")
	importCmd.Flags().Float64Var(&posFactor, "pos-factor", 0, "position scale factor")
	importCmd.Flags().Float32Var(&haloSize, "halo-size", 0, "halo size")
	importCmd.Flags().BoolVar(&replace, "replace", false, "replace existing star objects")

	formsCmd := &cobra.Command{
		Use:   "forms [doc]",
		Short: "record alternative forms on star meshes",
		Args:  cobra.ExactArgs(1),
		RunE:  addForms,
	}
	configFlags(formsCmd)
	formsCmd.Flags().StringVar(&pattern, "pattern", "", "object name pattern")
	formsCmd.Flags().StringSliceVar(&formTypes, "types", nil, "form types ("+strings.Join(forms.Kinds(), ", ")+")")
	formsCmd.Flags().Float32Var(&radius, "radius", 0, "sphere radius")
	formsCmd.Flags().Float32Var(&mapWidth, "map-width", 0, "map width")
	formsCmd.Flags().Float32Var(&mapHeight, "map-height", 0, "map height")
	formsCmd.Flags().BoolVar(&replace, "replace", false, "replace forms already recorded")
	formsCmd.Flags().BoolVar(&clearAll, "clear", false, "remove all forms instead")

	deformCmd := &cobra.Command{
		Use:   "deform [doc] [form]",
		Short: "animate star meshes between forms",
		Long:  "Without a form, plays the configured transitions. With one, deforms from the current form to it.",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  deform,
	}
	configFlags(deformCmd)
	deformCmd.Flags().StringVar(&pattern, "pattern", "", "object name pattern")
	deformCmd.Flags().Float32Var(&deformFrom, "from", 1, "frame the deformation starts")
	deformCmd.Flags().Float32Var(&deformTo, "to", 30, "frame the deformation ends")

	shiftCmd := &cobra.Command{
		Use:   "shift [doc]",
		Short: "scale and offset keyframes",
		Args:  cobra.ExactArgs(1),
		RunE:  shiftKeyframes,
	}
	configFlags(shiftCmd)
	shiftCmd.Flags().StringVar(&pattern, "pattern", "", "object name pattern")
	shiftCmd.Flags().Float32Var(&factor, "factor", 1, "time scale factor")
	shiftCmd.Flags().Float32Var(&offset, "offset", 0, "frame offset")
	shiftCmd.Flags().Float32Var(&frameStart, "from", 0, "first frame to move")
	shiftCmd.Flags().Float32Var(&frameEnd, "to", keyframes.DefaultFrameEnd, "last frame to move")
	shiftCmd.Flags().StringVar(&policy, "policy", "", "overlap policy (allow, reject)")

	cameraCmd := &cobra.Command{
		Use:   "camera [doc]",
		Short: "fly the camera along a circular path",
		Args:  cobra.ExactArgs(1),
		RunE:  animateCamera,
	}
	configFlags(cameraCmd)
	cameraCmd.Flags().StringVar(&cameraName, "camera", "", "camera object")
	cameraCmd.Flags().StringVar(&pathName, "path", "", "path object")
	cameraCmd.Flags().StringVar(&targetName, "target", "", "target object")
	cameraCmd.Flags().Float32Var(&radius, "radius", 0, "path radius")
	cameraCmd.Flags().Float32Var(&camStart, "start", 0, "first frame of the lap")
	cameraCmd.Flags().Float32Var(&camLength, "duration", 0, "frames per lap")

	runCmd := &cobra.Command{
		Use:   "run [job.yaml]",
		Short: "run a pipeline job",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
	runCmd.Flags().StringVar(&docOverride, "doc", "", "document to build (default from the job)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list documents",
		RunE:  listDocuments,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [doc]",
		Short: "delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.New(dataDir).Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [doc]",
		Short: "show the objects of a document",
		Args:  cobra.ExactArgs(1),
		RunE:  inspect,
	}
	inspectCmd.Flags().BoolVar(&dump, "dump", false, "dump the raw document structure")
	inspectCmd.Flags().StringVar(&objectName, "object", "", "only this object")

	curvesCmd := &cobra.Command{
		Use:   "curves [doc] [object]",
		Short: "plot the animation curves of an object",
		Args:  cobra.ExactArgs(2),
		RunE:  plotCurves,
	}
	curvesCmd.Flags().IntVar(&samples, "samples", 80, "samples per curve")

	viewCmd := &cobra.Command{
		Use:   "view [doc]",
		Short: "preview a document in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  view,
	}
	viewCmd.Flags().BoolVar(&once, "once", false, "print one frame and exit")
	viewCmd.Flags().IntVar(&frame, "frame", 0, "frame for --once (default first frame)")
	viewCmd.Flags().IntVar(&width, "width", 80, "columns for --once")
	viewCmd.Flags().IntVar(&height, "height", 24, "rows for --once")
	viewCmd.Flags().BoolVar(&useCamera, "camera", true, "look through the scene camera for --once")
	viewCmd.Flags().StringVar(&theme, "theme", "night", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	renderCmd := &cobra.Command{
		Use:   "render [doc]",
		Short: "render frames to SVG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  render,
	}
	renderCmd.Flags().StringVar(&format, "format", "png", "svg or png")
	renderCmd.Flags().StringVar(&outDir, "out", "frames", "output directory")
	renderCmd.Flags().IntVar(&fromFrame, "from", 0, "first frame (default document start)")
	renderCmd.Flags().IntVar(&toFrame, "to", 0, "last frame (default document end)")
	renderCmd.Flags().IntVar(&every, "every", 1, "render every n-th frame")
	renderCmd.Flags().IntVar(&imgWidth, "width", 960, "image width")
	renderCmd.Flags().IntVar(&imgHeight, "height", 540, "image height")
	renderCmd.Flags().Float64Var(&glow, "glow", 3, "halo glow radius (png)")
	renderCmd.Flags().BoolVar(&orbitView, "orbit", false, "ignore the scene camera")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [doc] [file]",
		Short: "export evaluated star positions and colors to CSV",
		Args:  cobra.ExactArgs(2),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().IntVar(&frame, "frame", 0, "frame to evaluate")
	exportCSVCmd.Flags().StringVar(&csvGlob, "pattern", "*", "object name pattern")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&showPreset, "show", "", "print the named preset as yaml")

	configCmd := &cobra.Command{
		Use:   "config [file]",
		Short: "write a config file to start from",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	configFlags(configCmd)

	rootCmd.AddCommand(newCmd, importCmd, formsCmd, deformCmd, shiftCmd, cameraCmd, runCmd, listCmd,
		deleteCmd, inspectCmd, curvesCmd, viewCmd, renderCmd, exportCSVCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = logging.Default()
		}
		logger.Error(err)
		os.Exit(1)
	}
}

// loadConfig resolves --preset then --config. A config file starts from the
// defaults, so it wins over a preset.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	if preset != "" {
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

func openDocument(name string) (*storage.Store, *scene.Document, error) {
	st := storage.New(dataDir)
	doc, err := st.Load(name)
	if err != nil {
		return nil, nil, err
	}
	return st, doc, nil
}

func saveDocument(st *storage.Store, doc *scene.Document) error {
	meta, err := st.Save(doc)
	if err != nil {
		return err
	}
	logger.Debug("document saved", "doc", meta.ID, "objects", meta.Objects, "vertices", meta.Vertices)
	return nil
}

func newDocument(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	if st.Exists(args[0]) && !force {
		return fmt.Errorf("document %q exists (use --force to replace it)", args[0])
	}
	doc := scene.New(args[0])
	doc.FrameStart, doc.FrameEnd = docStart, docEnd
	doc.Normalize()
	if err := saveDocument(st, doc); err != nil {
		return err
	}
	fmt.Printf("created %s (frames %d-%d)\n", doc.Name, doc.FrameStart, doc.FrameEnd)
	return nil
}

func importCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) > 1 {
		cfg.Catalog.Path = args[1]
	}
	if cmd.Flags().Changed("name") {
		cfg.Mesh.Name = meshName
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mesh.Mode = starmesh.Mode(meshMode)
	}
	if cmd.Flags().Changed("pos-factor") {
		cfg.PosFactor = posFactor
	}
	if cmd.Flags().Changed("halo-size") {
		cfg.Mesh.HaloSize = haloSize
	}
	if cmd.Flags().Changed("replace") {
		cfg.Mesh.Replace = replace
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	doc := scene.New(args[0])
	if st.Exists(args[0]) {
		if doc, err = st.Load(args[0]); err != nil {
			return err
		}
	}

	m, err := cfg.Mapper()
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := starmesh.Import(doc, cfg.Catalog.Path, m, cfg.MeshOptions(m.Scale.Ramp(), logger))
	if err != nil {
		return err
	}
	if err := saveDocument(st, doc); err != nil {
		return err
	}

	fmt.Printf("%s %s stars into %d objects in %v\n", viz.Title.Render("imported"),
		logging.Count(res.Vertices), len(res.Objects), time.Since(start).Round(time.Millisecond))
	for _, name := range res.Objects {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func addForms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("pattern") {
		cfg.Forms.Pattern = pattern
	}
	if cmd.Flags().Changed("types") {
		cfg.Forms.Types = formTypes
	}
	if cmd.Flags().Changed("radius") {
		cfg.Forms.Params.Radius = radius
	}
	if cmd.Flags().Changed("map-width") {
		cfg.Forms.Params.Width = mapWidth
	}
	if cmd.Flags().Changed("map-height") {
		cfg.Forms.Params.Height = mapHeight
	}

	st, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}

	if clearAll {
		objs, err := doc.Match(cfg.Forms.Pattern)
		if err != nil {
			return err
		}
		removed := 0
		for _, obj := range objs {
			if obj.Type != scene.TypeMesh {
				continue
			}
			mesh, err := doc.MeshOf(obj)
			if err != nil {
				return err
			}
			removed += forms.Clear(doc, mesh)
		}
		fmt.Printf("removed %d forms\n", removed)
		return saveDocument(st, doc)
	}

	gens, err := cfg.Generators()
	if err != nil {
		return err
	}
	n, err := forms.AddAll(doc, cfg.Forms.Pattern, gens, replace, logger)
	if err != nil {
		return err
	}
	if err := saveDocument(st, doc); err != nil {
		return err
	}
	fmt.Printf("recorded %s on %d meshes\n", strings.Join(cfg.Forms.Types, ", "), n)
	return nil
}

func deform(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("pattern") {
		cfg.Forms.Pattern = pattern
	}

	st, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		n, err := forms.Animate(doc, cfg.Forms.Pattern, cfg.Forms.Transitions, logger)
		if err != nil {
			return err
		}
		if err := saveDocument(st, doc); err != nil {
			return err
		}
		fmt.Printf("played %d transitions on %d meshes\n", len(cfg.Forms.Transitions), n)
		return nil
	}

	target := args[1]
	objs, err := doc.Match(cfg.Forms.Pattern)
	if err != nil {
		return err
	}
	n := 0
	for _, obj := range objs {
		if obj.Type != scene.TypeMesh {
			continue
		}
		mesh, err := doc.MeshOf(obj)
		if err != nil {
			return err
		}
		if err := forms.Deform(doc, mesh, target, deformFrom, deformTo); err != nil {
			return fmt.Errorf("%s: %w", obj.Name, err)
		}
		n++
	}
	if err := saveDocument(st, doc); err != nil {
		return err
	}
	fmt.Printf("deformed %d meshes to %s between frames %g and %g\n", n, target, deformFrom, deformTo)
	return nil
}

func shiftKeyframes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tr := cfg.Shift.Transform
	if cmd.Flags().Changed("pattern") {
		cfg.Shift.Pattern = pattern
	}
	if cmd.Flags().Changed("factor") {
		tr.Factor = factor
	}
	if cmd.Flags().Changed("offset") {
		tr.Offset = offset
	}
	if cmd.Flags().Changed("from") {
		tr.FrameStart = frameStart
	}
	if cmd.Flags().Changed("to") {
		tr.FrameEnd = frameEnd
	}
	if cmd.Flags().Changed("policy") {
		tr.Policy = keyframes.Policy(policy)
	}

	st, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	actions, err := keyframes.CollectActions(doc, cfg.Shift.Pattern)
	if err != nil {
		return err
	}
	r, err := keyframes.Shift(actions, tr)
	if err != nil {
		return err
	}
	if err := saveDocument(st, doc); err != nil {
		return err
	}
	fmt.Printf("moved %d keyframes in %d curves of %d actions\n", r.Keyframes, r.Curves, r.Actions)
	return nil
}

func animateCamera(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cc := cfg.Camera
	if cmd.Flags().Changed("camera") {
		cc.Name = cameraName
	}
	if cmd.Flags().Changed("path") {
		cc.Path = pathName
	}
	if cmd.Flags().Changed("target") {
		cc.Target = targetName
	}
	if cmd.Flags().Changed("radius") {
		cc.Radius = radius
	}
	if cmd.Flags().Changed("start") {
		cc.Start = camStart
	}
	if cmd.Flags().Changed("duration") {
		cc.Duration = camLength
	}

	st, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	if err := pipeline.SetupCamera(doc, cc, logger); err != nil {
		return err
	}
	if err := saveDocument(st, doc); err != nil {
		return err
	}
	fmt.Printf("%s follows %s around %s, frames %g-%g\n", cc.Name, cc.Path, cc.Target, cc.Start, cc.Start+cc.Duration)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	job, err := pipeline.LoadJob(args[0])
	if err != nil {
		return err
	}
	name := docOverride
	if name == "" {
		name = job.Document
	}
	if name == "" {
		name = job.Name
	}
	if name == "" {
		return fmt.Errorf("job has no document name (use --doc)")
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	doc := scene.New(name)
	if st.Exists(name) {
		if doc, err = st.Load(name); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := pipeline.Run(ctx, job, doc, logger)
	printResults(results)
	if err != nil {
		return err
	}
	if err := saveDocument(st, doc); err != nil {
		return err
	}
	fmt.Printf("\n%s %s\n", viz.Title.Render("saved"), doc.Name)
	return nil
}

func printResults(results []pipeline.StepResult) {
	if len(results) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tKIND\tTIME\tRESULT")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%v\t%s\n", r.Index, r.Kind, r.Elapsed.Round(time.Millisecond), r.Summary)
	}
	w.Flush()
}

func listDocuments(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	docs, err := st.List()
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("no documents found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tOBJECTS\tMESHES\tSTARS\tACTIONS\tFRAMES\tUPDATED")

	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%d-%d\t%s\n",
			d.ID,
			d.Objects,
			d.Meshes,
			logging.Count(d.Vertices),
			d.Actions,
			d.FrameStart, d.FrameEnd,
			d.Updated.Format("2006-01-02 15:04:05"),
		)
	}

	return w.Flush()
}

func inspect(cmd *cobra.Command, args []string) error {
	_, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}

	if dump {
		cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
		if objectName != "" {
			obj, err := doc.Object(objectName)
			if err != nil {
				return err
			}
			cfg.Fdump(os.Stdout, obj)
			return nil
		}
		cfg.Fdump(os.Stdout, doc)
		return nil
	}

	fmt.Printf("%s  frames %d-%d\n\n", viz.Title.Render(doc.Name), doc.FrameStart, doc.FrameEnd)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tDATA\tSTARS\tFORMS\tACTION")
	for _, name := range doc.ObjectNames() {
		if objectName != "" && name != objectName {
			continue
		}
		obj := doc.Objects[name]
		stars, shapes := "-", "-"
		if obj.Type == scene.TypeMesh {
			if mesh, err := doc.MeshOf(obj); err == nil {
				stars = logging.Count(len(mesh.Vertices))
				if names := forms.Names(mesh); len(names) > 0 {
					shapes = strings.Join(names, ",")
				}
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", name, obj.Type, dash(obj.Data), stars, shapes, dash(obj.Action))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plotCurves(cmd *cobra.Command, args []string) error {
	_, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	if _, err := doc.Object(args[1]); err != nil {
		return err
	}
	actions, err := keyframes.CollectActions(doc, args[1])
	if err != nil {
		return err
	}

	n := max(2, samples)
	plotted := 0
	for _, a := range actions {
		for i := range a.FCurves {
			fc := &a.FCurves[i]
			data := make([]float64, n)
			for s := range data {
				f := float32(doc.FrameStart) + float32(doc.FrameEnd-doc.FrameStart)*float32(s)/float32(n-1)
				data[s] = float64(fc.Evaluate(f))
			}
			fmt.Println(asciigraph.Plot(data,
				asciigraph.Height(8),
				asciigraph.Width(n),
				asciigraph.Caption(fmt.Sprintf("%s %s[%d], frames %d-%d, %d keys",
					a.Name, fc.DataPath, fc.ArrayIndex, doc.FrameStart, doc.FrameEnd, len(fc.Keyframes))),
			))
			fmt.Println()
			plotted++
		}
	}
	if plotted == 0 {
		fmt.Printf("%s is not animated\n", args[1])
	}
	return nil
}

func view(cmd *cobra.Command, args []string) error {
	_, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	if !once {
		return viz.Run(doc, theme)
	}
	f := doc.FrameStart
	if cmd.Flags().Changed("frame") {
		f = frame
	}
	out, err := viz.Preview(doc, f, width, height, useCamera)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func render(cmd *cobra.Command, args []string) error {
	fmtName, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	_, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}

	from, to := doc.FrameStart, doc.FrameEnd
	if cmd.Flags().Changed("from") {
		from = fromFrame
	}
	if cmd.Flags().Changed("to") {
		to = toFrame
	}
	opts := export.DefaultOptions()
	opts.Width, opts.Height, opts.Glow = imgWidth, imgHeight, glow
	opts.UseCamera = !orbitView

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	paths, err := export.Frames(ctx, doc, export.Range(from, to, every), outDir, "frame_", fmtName, opts, logger)
	if err != nil {
		return err
	}
	fmt.Printf("rendered %d frames to %s in %v\n", len(paths), outDir, time.Since(start).Round(time.Millisecond))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	n, err := storage.ExportVerticesFile(args[1], doc, csvGlob, float32(frame))
	if err != nil {
		return err
	}
	fmt.Printf("exported %s stars to %s\n", logging.Count(n), args[1])
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	if showPreset != "" {
		cfg := config.GetPreset(showPreset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", showPreset, config.ListPresets())
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	fmt.Println("presets:")
	for _, p := range config.ListPresets() {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
