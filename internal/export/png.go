package export

import (
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/chewxy/math32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/starstage/internal/viz"
)

// Image draws f with every star as a disc and a blurred copy of the discs
// added on top as a halo glow.
func Image(f *viz.Frame, v viz.View, opts Options) *image.RGBA {
	opts = opts.withDefaults()
	bounds := image.Rect(0, 0, opts.Width, opts.Height)
	p := v.Projector(opts.Width, opts.Height)

	bg := image.NewRGBA(bounds)
	draw.Draw(bg, bounds, &image.Uniform{C: parseColor(opts.Background)}, image.Point{}, draw.Src)

	pathColor := parseColor(opts.PathColor)
	for _, path := range f.Paths {
		for i := 1; i < len(path.Points); i++ {
			x0, y0, _, ok0 := p.Project(path.Points[i-1])
			x1, y1, _, ok1 := p.Project(path.Points[i])
			if ok0 && ok1 {
				line(bg, x0, y0, x1, y1, pathColor)
			}
		}
	}

	// stars sit on opaque black so the blurred copy keeps full alpha
	stars := image.NewRGBA(bounds)
	draw.Draw(stars, bounds, image.Black, image.Point{}, draw.Src)
	for _, s := range viz.ProjectSprites(f, p) {
		sp := f.Sprites[s.Index]
		r := math32.Max(opts.MinRadius, sp.Size*p.Scale(s.Depth))
		c := colorful.Color{R: float64(sp.Color.X()), G: float64(sp.Color.Y()), B: float64(sp.Color.Z())}.Clamped()
		disc(stars, s.X, s.Y, r, c)
	}

	out := blend.Add(bg, stars)
	if opts.Glow > 0 {
		out = blend.Add(out, blur.Gaussian(stars, opts.Glow))
	}
	return out
}

// PNG encodes Image(f, v, opts).
func PNG(w io.Writer, f *viz.Frame, v viz.View, opts Options) error {
	return imgio.PNGEncoder()(w, Image(f, v, opts))
}

func parseColor(hex string) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.Black
	}
	return c
}

func disc(img *image.RGBA, cx, cy int, r float32, c color.Color) {
	ri := int(math32.Ceil(r))
	for dy := -ri; dy <= ri; dy++ {
		for dx := -ri; dx <= ri; dx++ {
			if float32(dx*dx+dy*dy) <= r*r {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

func line(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
