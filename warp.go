package billboard

import "image"

// Default warp grid. 20x6 cells (240 triangles) keeps affine seams invisible
// on typical billboard shapes at an acceptable per-frame cost.
const (
	DefaultGridCols = 20
	DefaultGridRows = 6
)

// WarpRenderer draws a rectangular image into an arbitrary quad with a
// piecewise-affine approximation of the perspective map. The quad is
// parameterized bilinearly over (u, v) in [0,1]² and cut into a Cols x Rows
// grid; each cell becomes two triangles, each drawn with the exact affine
// transform between its source and destination triangle.
type WarpRenderer struct {
	Cols, Rows int
}

// NewWarpRenderer returns a renderer with the default grid.
func NewWarpRenderer() *WarpRenderer {
	return &WarpRenderer{Cols: DefaultGridCols, Rows: DefaultGridRows}
}

// QuadPoint evaluates the bilinear parameterization of q at (u, v): the top
// edge and the bottom edge are interpolated at u, then the two results are
// interpolated at v.
func QuadPoint(q Quad, u, v float64) Vec2 {
	top := Vec2{
		X: q[TopLeft].X + (q[TopRight].X-q[TopLeft].X)*u,
		Y: q[TopLeft].Y + (q[TopRight].Y-q[TopLeft].Y)*u,
	}
	bottom := Vec2{
		X: q[BottomLeft].X + (q[BottomRight].X-q[BottomLeft].X)*u,
		Y: q[BottomLeft].Y + (q[BottomRight].Y-q[BottomLeft].Y)*u,
	}
	return Vec2{
		X: top.X + (bottom.X-top.X)*v,
		Y: top.Y + (bottom.Y-top.Y)*v,
	}
}

// TrianglePair is one source triangle (image pixels) and the destination
// triangle (display space) it is mapped onto.
type TrianglePair struct {
	Src, Dst Triangle
}

// Triangles returns the 2*Cols*Rows triangle pairs for drawing a w x h image
// into q, row-major, upper-right triangle first in each cell.
func (r *WarpRenderer) Triangles(q Quad, w, h float64) []TrianglePair {
	cols, rows := r.grid()
	out := make([]TrianglePair, 0, 2*cols*rows)
	for row := 0; row < rows; row++ {
		v0 := float64(row) / float64(rows)
		v1 := float64(row+1) / float64(rows)
		for col := 0; col < cols; col++ {
			u0 := float64(col) / float64(cols)
			u1 := float64(col+1) / float64(cols)

			p00 := QuadPoint(q, u0, v0)
			p10 := QuadPoint(q, u1, v0)
			p01 := QuadPoint(q, u0, v1)
			p11 := QuadPoint(q, u1, v1)

			sx0, sx1 := u0*w, u1*w
			sy0, sy1 := v0*h, v1*h

			out = append(out,
				TrianglePair{
					Src: Triangle{{sx0, sy0}, {sx1, sy0}, {sx1, sy1}},
					Dst: Triangle{p00, p10, p11},
				},
				TrianglePair{
					Src: Triangle{{sx0, sy0}, {sx1, sy1}, {sx0, sy1}},
					Dst: Triangle{p00, p11, p01},
				},
			)
		}
	}
	return out
}

func (r *WarpRenderer) grid() (cols, rows int) {
	cols, rows = r.Cols, r.Rows
	if cols <= 0 {
		cols = DefaultGridCols
	}
	if rows <= 0 {
		rows = DefaultGridRows
	}
	return cols, rows
}

// DrawWarped draws img into dst on s at the given opacity and returns the
// number of triangles actually drawn. Triangles whose source is degenerate
// are skipped; an empty image draws nothing.
func (r *WarpRenderer) DrawWarped(s Surface, img image.Image, dst Quad, alpha float64) int {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 0
	}
	drawn := 0
	for _, tp := range r.Triangles(dst, float64(b.Dx()), float64(b.Dy())) {
		if drawTexturedTriangle(s, img, tp.Src, tp.Dst, b.Min, alpha) {
			drawn++
		}
	}
	return drawn
}

// drawTexturedTriangle solves the affine map src→dst and draws img through
// it, clipped to dst. origin is img.Bounds().Min; source triangles are
// expressed relative to it.
func drawTexturedTriangle(s Surface, img image.Image, src, dst Triangle, origin image.Point, alpha float64) bool {
	m, ok := SolveTriangleAffine(src, dst)
	if !ok {
		return false
	}
	if triangleArea2(dst) == 0 {
		return false
	}
	if origin != (image.Point{}) {
		m = MultiplyAffine(m, [6]float64{1, 0, 0, 1, -float64(origin.X), -float64(origin.Y)})
	}
	s.DrawTriangle(img, m, dst, alpha)
	return true
}
