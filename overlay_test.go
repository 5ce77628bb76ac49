package billboard

import (
	"image"
	"testing"
)

// callCounter records overlay draw calls without rasterizing.
type callCounter struct {
	SoftwareSurface
	polygons, strokes, circles int
	texts                      []string
	strokeWidth                float64
	strokeColors               []Color
}

func (c *callCounter) FillPolygon(pts []Vec2, col Color) { c.polygons++ }
func (c *callCounter) FillCircle(center Vec2, r float64, col Color) {
	c.circles++
}
func (c *callCounter) StrokePolyline(pts []Vec2, closed bool, w float64, col Color) {
	c.strokes++
	c.strokeWidth = w
	c.strokeColors = append(c.strokeColors, col)
}
func (c *callCounter) DrawText(s string, x, y, size float64, col Color) {
	c.texts = append(c.texts, s)
}
func (c *callCounter) DrawTriangle(img image.Image, m [6]float64, clip Triangle, alpha float64) {}

func TestOverlaySizes(t *testing.T) {
	small, _ := ComputeLayout(640, 360, 320, 1, Layout{}, false)
	assertNear(t, "small outline", OutlineWidth(small), 2)
	assertNear(t, "small marker", MarkerRadius(small), 6)

	large, _ := ComputeLayout(1920, 1080, 2000, 1, Layout{}, false)
	assertNear(t, "large outline", OutlineWidth(large), 6)
	assertNear(t, "large marker", MarkerRadius(large), 16)
}

func TestOverlayDraw(t *testing.T) {
	l := hd640(t)
	c := &callCounter{}
	o := NewOverlay()
	quads := []Quad{rectQuad(10, 10, 100, 50), rectQuad(200, 100, 400, 180)}
	pending := []Vec2{{5, 5}, {50, 5}}
	o.Draw(c, l, quads, 1, pending)

	if c.polygons != 2 {
		t.Errorf("fills = %d, want 2 (one per closed quad)", c.polygons)
	}
	if c.strokes != 3 {
		t.Errorf("strokes = %d, want 3", c.strokes)
	}
	if c.strokeColors[0] != o.Candidate || c.strokeColors[1] != o.Selected || c.strokeColors[2] != o.Pending {
		t.Errorf("stroke colors = %v", c.strokeColors)
	}
	if c.circles != 2 {
		t.Errorf("markers = %d, want 2", c.circles)
	}
	if len(c.texts) != 2 || c.texts[0] != "1" || c.texts[1] != "2" {
		t.Errorf("labels = %v, want [1 2]", c.texts)
	}
	assertNear(t, "stroke width", c.strokeWidth, 2)
}

func TestOverlaySinglePendingPoint(t *testing.T) {
	c := &callCounter{}
	NewOverlay().Draw(c, hd640(t), nil, -1, []Vec2{{5, 5}})
	if c.strokes != 0 {
		t.Errorf("strokes = %d, want 0 for a single point", c.strokes)
	}
	if c.circles != 1 {
		t.Errorf("markers = %d, want 1", c.circles)
	}
}

func TestOverlayDisabled(t *testing.T) {
	c := &callCounter{}
	o := NewOverlay()
	o.Enabled = false
	o.Draw(c, hd640(t), []Quad{unitSquare}, 0, []Vec2{{1, 1}})
	if c.polygons+c.strokes+c.circles+len(c.texts) != 0 {
		t.Error("disabled overlay drew")
	}
	var nilOverlay *Overlay
	nilOverlay.Draw(c, hd640(t), []Quad{unitSquare}, 0, nil)
}
