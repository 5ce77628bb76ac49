package billboard

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// scaleTransform returns a uniform scale matrix.
func scaleTransform(s float64) [6]float64 {
	return [6]float64{s, 0, 0, s, 0, 0}
}

// MultiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func MultiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// InvertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func InvertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// TransformPoint applies an affine matrix in [a, b, c, d, tx, ty] layout to p.
func TransformPoint(m [6]float64, p Vec2) Vec2 {
	x, y := transformPoint(m, p.X, p.Y)
	return Vec2{x, y}
}

// SolveTriangleAffine returns the affine matrix that maps the three source
// points onto the three destination points, in [a, b, c, d, tx, ty] layout.
//
// The six parameters are solved in closed form (Cramer's rule) over the
// determinant of the source triangle. ok is false when that determinant is
// exactly zero, i.e. the source points are colinear or coincident; callers
// skip the triangle in that case.
func SolveTriangleAffine(src, dst Triangle) (m [6]float64, ok bool) {
	sx0, sy0 := src[0].X, src[0].Y
	sx1, sy1 := src[1].X, src[1].Y
	sx2, sy2 := src[2].X, src[2].Y
	dx0, dy0 := dst[0].X, dst[0].Y
	dx1, dy1 := dst[1].X, dst[1].Y
	dx2, dy2 := dst[2].X, dst[2].Y

	det := sx0*(sy1-sy2) + sx1*(sy2-sy0) + sx2*(sy0-sy1)
	if det == 0 || math.IsNaN(det) {
		return identityTransform, false
	}

	a := (dx0*(sy1-sy2) + dx1*(sy2-sy0) + dx2*(sy0-sy1)) / det
	b := (dy0*(sy1-sy2) + dy1*(sy2-sy0) + dy2*(sy0-sy1)) / det
	c := (dx0*(sx2-sx1) + dx1*(sx0-sx2) + dx2*(sx1-sx0)) / det
	d := (dy0*(sx2-sx1) + dy1*(sx0-sx2) + dy2*(sx1-sx0)) / det
	tx := (dx0*(sx1*sy2-sx2*sy1) +
		dx1*(sx2*sy0-sx0*sy2) +
		dx2*(sx0*sy1-sx1*sy0)) / det
	ty := (dy0*(sx1*sy2-sx2*sy1) +
		dy1*(sx2*sy0-sx0*sy2) +
		dy2*(sx0*sy1-sx1*sy0)) / det

	return [6]float64{a, b, c, d, tx, ty}, true
}

// triangleArea2 returns twice the signed area of t.
func triangleArea2(t Triangle) float64 {
	return (t[1].X-t[0].X)*(t[2].Y-t[0].Y) - (t[2].X-t[0].X)*(t[1].Y-t[0].Y)
}

// triangleBounds returns the axis-aligned bounding box of t.
func triangleBounds(t Triangle) Rect {
	minX := math.Min(math.Min(t[0].X, t[1].X), t[2].X)
	minY := math.Min(math.Min(t[0].Y, t[1].Y), t[2].Y)
	maxX := math.Max(math.Max(t[0].X, t[1].X), t[2].X)
	maxY := math.Max(math.Max(t[0].Y, t[1].Y), t[2].Y)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// transformTriangle applies m to each vertex of t.
func transformTriangle(m [6]float64, t Triangle) Triangle {
	var out Triangle
	for i, p := range t {
		out[i] = TransformPoint(m, p)
	}
	return out
}
