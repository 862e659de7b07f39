package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/san-kum/starstage/internal/camerapath"
	"github.com/san-kum/starstage/internal/config"
	"github.com/san-kum/starstage/internal/export"
	"github.com/san-kum/starstage/internal/forms"
	"github.com/san-kum/starstage/internal/keyframes"
	"github.com/san-kum/starstage/internal/logging"
	"github.com/san-kum/starstage/internal/scene"
	"github.com/san-kum/starstage/internal/starmesh"
	"github.com/san-kum/starstage/internal/storage"
)

// Apply runs a single step against doc and returns a one-line summary.
func Apply(ctx context.Context, doc *scene.Document, cfg *config.Config, dir string, step Step, logger *log.Logger) (string, error) {
	logger = logging.Or(logger)

	switch step.Kind {
	case KindImport:
		return importStars(doc, cfg, resolve(dir, or(step.Catalog, cfg.Catalog.Path)), step.Replace, logger)

	case KindForms:
		c := *cfg
		if len(step.Types) > 0 {
			c.Forms.Types = step.Types
		}
		gens, err := c.Generators()
		if err != nil {
			return "", err
		}
		n, err := forms.AddAll(doc, or(step.Pattern, cfg.Forms.Pattern), gens, step.Replace, logger)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d forms on %d meshes", len(gens), n), nil

	case KindDeform:
		transitions := step.Transitions
		if len(transitions) == 0 {
			transitions = cfg.Forms.Transitions
		}
		n, err := forms.Animate(doc, or(step.Pattern, cfg.Forms.Pattern), transitions, logger)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d transitions on %d meshes", len(transitions), n), nil

	case KindClear:
		return clearForms(doc, or(step.Pattern, cfg.Forms.Pattern))

	case KindShift:
		tr := cfg.Shift.Transform
		if step.Shift != nil {
			tr = *step.Shift
		}
		return shift(doc, or(step.Pattern, cfg.Shift.Pattern), tr, logger)

	case KindCamera:
		cc := cfg.Camera
		if step.Camera != nil {
			cc = *step.Camera
		}
		if err := SetupCamera(doc, cc, logger); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s follows %s from frame %g for %g frames", cc.Name, cc.Path, cc.Start, cc.Duration), nil

	case KindExport:
		if step.Output == "" {
			return "", fmt.Errorf("export needs an output path")
		}
		out := resolve(dir, step.Output)
		n, err := storage.ExportVerticesFile(out, doc, or(step.Pattern, "*"), step.Frame)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s vertices written to %s", logging.Count(n), out), nil

	case KindRender:
		return render(ctx, doc, resolve(dir, or(step.Output, "frames")), step, logger)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStep, step.Kind)
}

func importStars(doc *scene.Document, cfg *config.Config, path string, replace bool, logger *log.Logger) (string, error) {
	m, err := cfg.Mapper()
	if err != nil {
		return "", err
	}
	opts := cfg.MeshOptions(m.Scale.Ramp(), logger)
	opts.Replace = opts.Replace || replace

	res, err := starmesh.Import(doc, path, m, opts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s stars in %d objects", logging.Count(res.Vertices), len(res.Objects)), nil
}

const defaultEvery = 10

func render(ctx context.Context, doc *scene.Document, out string, step Step, logger *log.Logger) (string, error) {
	format, err := export.ParseFormat(or(step.Format, string(export.FormatPNG)))
	if err != nil {
		return "", err
	}
	every := step.Every
	if every <= 0 {
		every = defaultEvery
	}
	paths, err := export.Frames(ctx, doc, export.Range(doc.FrameStart, doc.FrameEnd, every), out, "frame_",
		format, export.DefaultOptions(), logger)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %s frames in %s", len(paths), format, out), nil
}

func clearForms(doc *scene.Document, pattern string) (string, error) {
	objs, err := doc.Match(pattern)
	if err != nil {
		return "", err
	}
	total := 0
	for _, obj := range objs {
		if obj.Type != scene.TypeMesh {
			continue
		}
		mesh, err := doc.MeshOf(obj)
		if err != nil {
			return "", err
		}
		total += forms.Clear(doc, mesh)
	}
	return fmt.Sprintf("%d forms removed", total), nil
}

func shift(doc *scene.Document, pattern string, tr keyframes.Transform, logger *log.Logger) (string, error) {
	actions, err := keyframes.CollectActions(doc, pattern)
	if err != nil {
		return "", err
	}
	r, err := keyframes.Shift(actions, tr)
	if err != nil {
		return "", err
	}
	logger.Info("keyframes shifted", "actions", r.Actions, "curves", r.Curves, "keyframes", r.Keyframes)
	return fmt.Sprintf("%d keyframes in %d curves of %d actions", r.Keyframes, r.Curves, r.Actions), nil
}

// SetupCamera creates the camera, path and target when missing and
// animates the camera along the path.
func SetupCamera(doc *scene.Document, cc config.CameraConfig, logger *log.Logger) error {
	if _, err := camerapath.EnsureCamera(doc, cc.Name); err != nil {
		return err
	}
	if _, ok := doc.Objects[cc.Path]; !ok {
		if _, err := camerapath.AddPath(doc, cc.Path, cc.Radius, cc.PathLoc()); err != nil {
			return err
		}
	}
	if _, ok := doc.Objects[cc.Target]; !ok {
		if _, err := camerapath.AddTarget(doc, cc.Target, cc.TargetLoc()); err != nil {
			return err
		}
	}
	return camerapath.Animate(doc, cc.Name, cc.Path, cc.Target, cc.Start, cc.Duration, logger)
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func resolve(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
