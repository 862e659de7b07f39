package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/starstage/internal/forms"
	"github.com/san-kum/starstage/internal/scene"
)

const (
	timelineSamples = 40
	fps             = 24
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

type timeline struct {
	form   string
	values []float32
}

// Viewer scrubs through the frames of a document. It never writes to it.
type Viewer struct {
	doc        *scene.Document
	frame      int
	start, end int
	orbit      *Orbit
	useCamera  bool
	playing    bool
	theme      Theme
	width      int
	height     int
	snap       *Frame
	active     string
	timelines  []timeline
	err        error
}

func NewViewer(doc *scene.Document, theme string) Viewer {
	m := Viewer{
		doc:    doc,
		frame:  doc.FrameStart,
		start:  doc.FrameStart,
		end:    doc.FrameEnd,
		orbit:  NewOrbit(),
		theme:  GetTheme(theme),
		width:  80,
		height: 24,
	}
	m.timelines = formTimelines(doc, m.start, m.end)
	m.refresh()
	return m
}

// formTimelines samples the weight of every form of the first shaped mesh.
func formTimelines(doc *scene.Document, start, end int) []timeline {
	for _, name := range doc.ObjectNames() {
		obj := doc.Objects[name]
		if obj.Type != scene.TypeMesh {
			continue
		}
		mesh, err := doc.MeshOf(obj)
		if err != nil || len(mesh.ShapeKeys) < 2 {
			continue
		}
		out := make([]timeline, 0, len(mesh.ShapeKeys)-1)
		for i := 1; i < len(mesh.ShapeKeys); i++ {
			tl := timeline{form: mesh.ShapeKeys[i].Name, values: make([]float32, timelineSamples)}
			for s := range tl.values {
				f := float32(start) + float32(end-start)*float32(s)/float32(timelineSamples-1)
				tl.values[s] = forms.Weight(doc, mesh, i, f)
			}
			out = append(out, tl)
		}
		return out
	}
	return nil
}

func (m *Viewer) refresh() {
	m.snap, m.err = Snapshot(m.doc, float32(m.frame))
	m.active = ""
	if m.err != nil {
		return
	}
	for _, name := range m.doc.ObjectNames() {
		obj := m.doc.Objects[name]
		if obj.Type != scene.TypeMesh {
			continue
		}
		if mesh, err := m.doc.MeshOf(obj); err == nil && len(mesh.ShapeKeys) > 0 {
			m.active, _ = forms.Active(m.doc, mesh, float32(m.frame))
			return
		}
	}
}

func (m Viewer) Init() tea.Cmd { return nil }

func (m Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case TickMsg:
		if !m.playing {
			return m, nil
		}
		m.seek(m.frame + 1)
		if m.frame >= m.end {
			m.playing = false
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m Viewer) handleKey(msg tea.KeyMsg) (Viewer, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		m.playing = !m.playing
		if m.playing {
			if m.frame >= m.end {
				m.seek(m.start)
			}
			return m, tick()
		}
	case "right", ".":
		m.seek(m.frame + 1)
	case "left", ",":
		m.seek(m.frame - 1)
	case "]":
		m.seek(m.frame + 10)
	case "[":
		m.seek(m.frame - 10)
	case "home", "0":
		m.seek(m.start)
	case "end", "$":
		m.seek(m.end)
	case "h":
		m.orbit.Rotate(-0.1, 0)
	case "l":
		m.orbit.Rotate(0.1, 0)
	case "j":
		m.orbit.Rotate(0, -0.1)
	case "k":
		m.orbit.Rotate(0, 0.1)
	case "+", "=":
		m.orbit.ZoomIn()
	case "-":
		m.orbit.ZoomOut()
	case "c":
		m.useCamera = !m.useCamera
	case "t":
		m.theme = nextTheme(m.theme)
	}
	return m, nil
}

func (m *Viewer) seek(frame int) {
	frame = max(m.start, min(m.end, frame))
	if frame == m.frame && m.snap != nil {
		return
	}
	m.frame = frame
	m.refresh()
}

// view picks the scene camera when asked for and present, else the orbit.
func (m Viewer) view() (View, string) {
	if m.useCamera && m.snap.Camera != nil {
		return PoseView(*m.snap.Camera), m.snap.CameraName
	}
	center, radius := m.snap.Bounds()
	return m.orbit.View(center, radius), "orbit"
}

func (m Viewer) View() string {
	var b strings.Builder
	b.WriteString(GradientText("STARSTAGE", m.theme.Primary, m.theme.Accent))
	b.WriteString("  " + Subtle.Render(m.doc.Name) + "\n")

	if m.err != nil {
		b.WriteString(StatusError.Render("error: "+m.err.Error()) + "\n")
		b.WriteString(KeyHint.Render("q quit") + "\n")
		return b.String()
	}

	rows := max(4, m.height-6-len(m.timelines))
	c := NewCanvas(max(10, m.width-2), rows)
	v, mode := m.view()
	visible := Render(c, m.snap, v, string(m.theme.Path))
	b.WriteString(c.Render(m.theme.Star))

	status := StatusPaused.Render("paused")
	if m.playing {
		status = StatusPlaying.Render("playing")
	}
	pct := 0.0
	if m.end > m.start {
		pct = float64(m.frame-m.start) / float64(m.end-m.start)
	}
	b.WriteString(fmt.Sprintf("%s  %s  %s  %s  %s\n",
		status,
		KeyValue("frame", fmt.Sprintf("%d/%d", m.frame, m.end)),
		KeyValue("stars", fmt.Sprintf("%d/%d", visible, len(m.snap.Sprites))),
		KeyValue("view", mode),
		KeyValue("form", or(m.active, "-")),
	))
	b.WriteString(ProgressBar(pct, max(10, m.width-2)) + "\n")
	for _, tl := range m.timelines {
		b.WriteString(fmt.Sprintf("%-10s %s\n", MetricLabel.Render(tl.form), Sparkline(tl.values)))
	}
	b.WriteString(KeyHint.Render("space play  ←/→ frame  [/] ±10  h/j/k/l rotate  +/- zoom  c camera  t theme  q quit") + "\n")
	return b.String()
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Run opens the viewer full screen on a copy of doc.
func Run(doc *scene.Document, theme string) error {
	snap, err := doc.Clone()
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(NewViewer(snap, theme), tea.WithAltScreen()).Run()
	return err
}

// Preview renders one frame as colored braille text.
func Preview(doc *scene.Document, frame, width, height int, useCamera bool) (string, error) {
	snap, err := Snapshot(doc, float32(frame))
	if err != nil {
		return "", err
	}
	c := NewCanvas(width, height)
	var v View
	if useCamera && snap.Camera != nil {
		v = PoseView(*snap.Camera)
	} else {
		center, radius := snap.Bounds()
		v = NewOrbit().View(center, radius)
	}
	Render(c, snap, v, string(ThemeNight.Path))
	return c.Render(ThemeNight.Star), nil
}
