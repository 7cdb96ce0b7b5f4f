package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/assets"
	"github.com/opd-ai/go-trackdrive/pkg/engine"
)

const (
	roadGlyph  = '#'
	emptyGlyph = ' '
)

// TerminalRenderer draws a top-down ASCII map of the track and the car.
// Screen up is world +Z, screen right is world -X.
type TerminalRenderer struct {
	width       int
	height      int
	buffer      [][]rune
	scale       float64 // world metres per cell
	center      mgl64.Vec3
	hud         string
	out         io.Writer
	ClearScreen bool
}

// NewTerminalRenderer creates a new terminal renderer with the specified dimensions
func NewTerminalRenderer(width, height int, scale float64, out io.Writer) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	if scale <= 0 {
		scale = 1
	}
	return &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
		out:    out,
	}
}

// SetCenter sets the world position shown in the middle of the view.
func (r *TerminalRenderer) SetCenter(pos mgl64.Vec3) {
	r.center = pos
}

// Fit centres the view on meshes and picks a scale that shows all of them.
func (r *TerminalRenderer) Fit(meshes []assets.MeshInstance) {
	lo := mgl64.Vec3{math.Inf(1), 0, math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), 0, math.Inf(-1)}
	for _, m := range meshes {
		p := m.Geometry.Positions
		for i := 0; i+2 < len(p); i += 3 {
			lo[0], hi[0] = math.Min(lo[0], p[i]), math.Max(hi[0], p[i])
			lo[2], hi[2] = math.Min(lo[2], p[i+2]), math.Max(hi[2], p[i+2])
		}
	}
	if math.IsInf(lo[0], 0) || r.width == 0 || r.height == 0 {
		return
	}

	r.center = lo.Add(hi).Mul(0.5)
	r.scale = math.Max((hi[0]-lo[0])/float64(r.width), (hi[2]-lo[2])/float64(r.height))
	if r.scale <= 0 {
		r.scale = 1
	}
}

// worldToScreen converts world coordinates to screen coordinates
func (r *TerminalRenderer) worldToScreen(pos mgl64.Vec3) (int, int) {
	screenX := int(math.Floor(-(pos.X()-r.center.X())/r.scale + float64(r.width)/2))
	screenY := int(math.Floor(-(pos.Z()-r.center.Z())/r.scale + float64(r.height)/2))
	return screenX, screenY
}

// screenToWorld returns the world position at the centre of cell (x, y).
func (r *TerminalRenderer) screenToWorld(x, y int) (float64, float64) {
	wx := r.center.X() - (float64(x)+0.5-float64(r.width)/2)*r.scale
	wz := r.center.Z() - (float64(y)+0.5-float64(r.height)/2)*r.scale
	return wx, wz
}

func (r *TerminalRenderer) inBounds(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

// Clear implements Renderer.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = emptyGlyph
		}
	}
	r.hud = ""
}

// RenderTrack implements Renderer. A cell is road when its centre lies
// inside the top-down projection of any triangle.
func (r *TerminalRenderer) RenderTrack(meshes []assets.MeshInstance) {
	for _, m := range meshes {
		p, idx := m.Geometry.Positions, m.Geometry.Indices
		for i := 0; i+2 < len(idx); i += 3 {
			a := flatVertex(p, idx[i])
			b := flatVertex(p, idx[i+1])
			c := flatVertex(p, idx[i+2])
			if a == nil || b == nil || c == nil {
				continue
			}
			r.fillTriangle(a, b, c)
		}
	}
}

func (r *TerminalRenderer) fillTriangle(a, b, c []float64) {
	x0, y0 := r.worldToScreen(mgl64.Vec3{math.Max(a[0], math.Max(b[0], c[0])), 0, math.Max(a[1], math.Max(b[1], c[1]))})
	x1, y1 := r.worldToScreen(mgl64.Vec3{math.Min(a[0], math.Min(b[0], c[0])), 0, math.Min(a[1], math.Min(b[1], c[1]))})
	for y := max(y0, 0); y <= min(y1, r.height-1); y++ {
		for x := max(x0, 0); x <= min(x1, r.width-1); x++ {
			wx, wz := r.screenToWorld(x, y)
			if insideTriangle(wx, wz, a, b, c) {
				r.buffer[y][x] = roadGlyph
			}
		}
	}
}

// RenderVehicle implements Renderer. The glyph points along the heading.
func (r *TerminalRenderer) RenderVehicle(t engine.Telemetry) {
	x, y := r.worldToScreen(t.Position)
	if r.inBounds(x, y) {
		r.buffer[y][x] = headingGlyph(t.Heading)
	}
}

// RenderHUD implements Renderer.
func (r *TerminalRenderer) RenderHUD(t engine.Telemetry) {
	r.hud = t.String()
}

// Present implements Renderer.
func (r *TerminalRenderer) Present() {
	var sb strings.Builder
	if r.ClearScreen {
		sb.WriteString("\033[H\033[2J")
	}

	border := "+" + strings.Repeat("-", r.width) + "+\n"
	sb.WriteString(border)
	for y := range r.buffer {
		sb.WriteString("|")
		sb.WriteString(string(r.buffer[y]))
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	if r.hud != "" {
		sb.WriteString(r.hud)
		sb.WriteString("\n")
	}

	fmt.Fprint(r.out, sb.String())
}

// headingGlyph maps a heading about +Y to an arrow in screen space.
func headingGlyph(heading float64) rune {
	dx := -math.Sin(heading)
	dy := -math.Cos(heading)
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return '>'
		}
		return '<'
	}
	if dy > 0 {
		return 'v'
	}
	return '^'
}

// flatVertex returns the (x, z) of vertex i, or nil if it is out of range.
func flatVertex(positions []float64, i uint32) []float64 {
	j := int(i) * 3
	if j+2 >= len(positions) {
		return nil
	}
	return []float64{positions[j], positions[j+2]}
}

func insideTriangle(px, pz float64, a, b, c []float64) bool {
	d1 := edgeSide(px, pz, a, b)
	d2 := edgeSide(px, pz, b, c)
	d3 := edgeSide(px, pz, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func edgeSide(px, pz float64, a, b []float64) float64 {
	return (px-b[0])*(a[1]-b[1]) - (a[0]-b[0])*(pz-b[1])
}
