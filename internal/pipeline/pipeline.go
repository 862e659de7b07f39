// Package pipeline runs scripted sequences of scene operations described in
// YAML: import, forms, deform, clear, shift, camera, export and render.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/starstage/internal/config"
	"github.com/san-kum/starstage/internal/forms"
	"github.com/san-kum/starstage/internal/keyframes"
	"github.com/san-kum/starstage/internal/logging"
	"github.com/san-kum/starstage/internal/scene"
)

var (
	ErrUnknownStep = errors.New("pipeline: unknown step kind")
	ErrNoPreset    = errors.New("pipeline: unknown preset")
)

const (
	KindImport = "import"
	KindForms  = "forms"
	KindDeform = "deform"
	KindClear  = "clear"
	KindShift  = "shift"
	KindCamera = "camera"
	KindExport = "export"
	KindRender = "render"
)

// Job is a named list of steps sharing one configuration.
type Job struct {
	Name        string
	Description string
	Document    string
	Config      *config.Config
	Steps       []Step

	// Dir resolves relative catalog and output paths.
	Dir string
}

// Step is one operation. Unset fields fall back to the job configuration.
type Step struct {
	Kind        string               `yaml:"kind"`
	Pattern     string               `yaml:"pattern,omitempty"`
	Catalog     string               `yaml:"catalog,omitempty"`
	Types       []string             `yaml:"types,omitempty"`
	Replace     bool                 `yaml:"replace,omitempty"`
	Transitions []forms.Transition   `yaml:"transitions,omitempty"`
	Shift       *keyframes.Transform `yaml:"shift,omitempty"`
	Camera      *config.CameraConfig `yaml:"camera,omitempty"`
	Output      string               `yaml:"output,omitempty"`
	Format      string               `yaml:"format,omitempty"`
	Every       int                  `yaml:"every,omitempty"`
	Frame       float32              `yaml:"frame,omitempty"`
}

type jobFile struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Document    string    `yaml:"document"`
	Preset      string    `yaml:"preset"`
	Config      yaml.Node `yaml:"config"`
	Steps       []Step    `yaml:"steps"`
}

// LoadJob reads a job file. The config block is applied on top of the
// named preset, or the defaults.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	job, err := ParseJob(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	job.Dir = filepath.Dir(path)
	return job, nil
}

func ParseJob(data []byte) (*Job, error) {
	var jf jobFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if jf.Preset != "" {
		cfg = config.GetPreset(jf.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: %q", ErrNoPreset, jf.Preset)
		}
	}
	if !jf.Config.IsZero() {
		if err := jf.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return &Job{
		Name:        jf.Name,
		Description: jf.Description,
		Document:    jf.Document,
		Config:      cfg,
		Steps:       jf.Steps,
	}, nil
}

// StepResult describes a finished step.
type StepResult struct {
	Index   int
	Kind    string
	Summary string
	Elapsed time.Duration
}

// Run applies the steps to doc in order and stops at the first failure.
func Run(ctx context.Context, job *Job, doc *scene.Document, logger *log.Logger) ([]StepResult, error) {
	logger = logging.Or(logger)
	results := make([]StepResult, 0, len(job.Steps))

	for i, step := range job.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		logger.Info("running step", "step", fmt.Sprintf("%d/%d", i+1, len(job.Steps)), "kind", step.Kind)

		start := time.Now()
		summary, err := Apply(ctx, doc, job.Config, job.Dir, step, logger)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Kind, err)
		}
		results = append(results, StepResult{
			Index:   i + 1,
			Kind:    step.Kind,
			Summary: summary,
			Elapsed: time.Since(start),
		})
	}
	return results, nil
}
