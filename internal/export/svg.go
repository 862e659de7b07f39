package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/san-kum/starstage/internal/viz"
)

// SVG writes f as a point cloud: one circle per visible star, farthest
// first, and camera paths as polylines.
func SVG(w io.Writer, f *viz.Frame, v viz.View, opts Options) error {
	opts = opts.withDefaults()
	p := v.Projector(opts.Width, opts.Height)
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background)

	for _, path := range f.Paths {
		fmt.Fprintf(bw, `<polyline fill="none" stroke="%s" stroke-width="1" points="`, opts.PathColor)
		first := true
		for _, pt := range path.Points {
			x, y, _, ok := p.Project(pt)
			if !ok {
				continue
			}
			if !first {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, "%d,%d", x, y)
			first = false
		}
		bw.WriteString("\"/>\n")
	}

	bw.WriteString("<g>\n")
	for _, s := range viz.ProjectSprites(f, p) {
		sp := f.Sprites[s.Index]
		r := math32.Max(opts.MinRadius, sp.Size*p.Scale(s.Depth))
		fmt.Fprintf(bw, `<circle cx="%d" cy="%d" r="%.2f" fill="%s"/>
`, s.X, s.Y, r, viz.Hex(sp.Color))
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}
