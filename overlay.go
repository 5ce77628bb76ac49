package billboard

import (
	"math"
	"strconv"
)

// Overlay draws the editing aids: stored quad outlines and the in-progress
// point buffer. Line widths and marker sizes follow the display width so the
// overlay looks the same at any window size.
type Overlay struct {
	Enabled bool

	Selected  Color
	Candidate Color
	Pending   Color
	Fill      Color
	Ink       Color
}

// NewOverlay returns an enabled overlay with the default colors.
func NewOverlay() *Overlay {
	return &Overlay{
		Enabled:   true,
		Selected:  ColorSelected,
		Candidate: ColorCandidate,
		Pending:   ColorPending,
		Fill:      ColorQuadFill,
		Ink:       ColorMarkerInk,
	}
}

// Draw renders outlines for every stored quad, highlighting selected, then
// the pending points with numbered markers.
func (o *Overlay) Draw(s Surface, l Layout, quads []Quad, selected int, pending []Vec2) {
	if o == nil || !o.Enabled {
		return
	}
	for i, q := range quads {
		c := o.Candidate
		if i == selected {
			c = o.Selected
		}
		o.outline(s, l, q.Points(), c)
	}
	if len(pending) > 0 {
		o.outline(s, l, pending, o.Pending)
		o.markers(s, l, pending, o.Pending)
	}
}

func (o *Overlay) outline(s Surface, l Layout, pts []Vec2, c Color) {
	if len(pts) < 2 {
		return
	}
	closed := len(pts) == 4
	if closed {
		s.FillPolygon(pts, o.Fill)
	}
	s.StrokePolyline(pts, closed, OutlineWidth(l), c)
}

func (o *Overlay) markers(s Surface, l Layout, pts []Vec2, c Color) {
	r := MarkerRadius(l)
	size := math.Max(12, l.DisplayWidth*0.02)
	for i, p := range pts {
		s.FillCircle(p, r, c)
		s.DrawText(strconv.Itoa(i+1), p.X-4, p.Y+4, size, o.Ink)
	}
}

// OutlineWidth is the quad outline stroke width in display units.
func OutlineWidth(l Layout) float64 {
	return math.Max(2, l.DisplayWidth*0.003)
}

// MarkerRadius is the point marker radius in display units.
func MarkerRadius(l Layout) float64 {
	return math.Max(6, l.DisplayWidth*0.008)
}
