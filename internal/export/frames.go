// Package export renders document frames to SVG and PNG files.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/san-kum/starstage/internal/logging"
	"github.com/san-kum/starstage/internal/scene"
	"github.com/san-kum/starstage/internal/viz"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBadFormat = errors.New("export: unknown format")
	ErrNoFrames  = errors.New("export: no frames")
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatSVG, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadFormat, s)
}

type Options struct {
	Width, Height int
	Background    string
	PathColor     string
	MinRadius     float32
	// Glow is the gaussian blur radius of the PNG halo glow. Zero disables it.
	Glow float64
	// UseCamera renders through the scene camera when there is one.
	UseCamera bool
}

func DefaultOptions() Options {
	return Options{
		Width:      960,
		Height:     540,
		Background: "#000000",
		PathColor:  "#333344",
		MinRadius:  0.75,
		Glow:       3,
		UseCamera:  true,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Background == "" {
		o.Background = d.Background
	}
	if o.PathColor == "" {
		o.PathColor = d.PathColor
	}
	if o.MinRadius <= 0 {
		o.MinRadius = d.MinRadius
	}
	return o
}

// Range lists the frames from start to end inclusive, every step frames.
func Range(start, end, step int) []int {
	if step <= 0 {
		step = 1
	}
	var out []int
	for f := start; f <= end; f += step {
		out = append(out, f)
	}
	return out
}

// ViewFor picks the scene camera when asked for and present, else the
// given orbit view.
func ViewFor(f *viz.Frame, opts Options, orbit viz.View) viz.View {
	if opts.UseCamera && f.Camera != nil {
		return viz.PoseView(*f.Camera)
	}
	return orbit
}

// Frames renders each frame of doc into dir as <prefix><frame>.<format>
// and returns the written paths in frame order. Frames render in parallel
// from a copy of doc, so the caller may keep editing it.
func Frames(ctx context.Context, doc *scene.Document, frames []int, dir, prefix string, format Format, opts Options, logger *log.Logger) ([]string, error) {
	logger = logging.Or(logger)
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if format != FormatSVG && format != FormatPNG {
		return nil, fmt.Errorf("%w: %q", ErrBadFormat, format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	doc, err := doc.Clone()
	if err != nil {
		return nil, err
	}

	// every frame shares the orbit framing of the first one
	first, err := viz.Snapshot(doc, float32(frames[0]))
	if err != nil {
		return nil, err
	}
	center, radius := first.Bounds()
	orbit := viz.NewOrbit().View(center, radius)

	paths := make([]string, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, frame := range frames {
		i, frame := i, frame // per-iteration copies (go.mod targets Go 1.21 loop semantics)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			snap, err := viz.Snapshot(doc, float32(frame))
			if err != nil {
				return fmt.Errorf("frame %d: %w", frame, err)
			}
			path := filepath.Join(dir, fmt.Sprintf("%s%04d.%s", prefix, frame, format))
			if err := writeFrame(path, snap, ViewFor(snap, opts, orbit), format, opts); err != nil {
				return fmt.Errorf("frame %d: %w", frame, err)
			}
			paths[i] = path
			logger.Debug("frame rendered", "frame", frame, "path", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("frames rendered", "count", len(paths), "dir", dir, "format", format)
	return paths, nil
}

func writeFrame(path string, f *viz.Frame, v viz.View, format Format, opts Options) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatPNG:
		err = PNG(out, f, v, opts)
	default:
		err = SVG(out, f, v, opts)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
