package billboard

import (
	"math"
	"sort"
)

// Quad is a four-point target region in display space, in canonical order
// [top-left, top-right, bottom-right, bottom-left]. Quads are values: they
// are replaced wholesale, never edited in place.
type Quad [4]Vec2

// Corner indices into a normalized Quad.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// NormalizeQuad puts four points, in any order or handedness, into canonical
// [TL, TR, BR, BL] order.
//
// The points are first sorted by polar angle around their centroid so that
// ties below are broken by a fixed rotational order. Then TL has the minimal
// x+y, BR the maximal x+y, TR the minimal y-x and BL the maximal y-x.
// Convexity is not validated here; Score rejects non-convex quads.
func NormalizeQuad(pts [4]Vec2) Quad {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X / 4
		cy += p.Y / 4
	}
	sorted := pts
	sort.SliceStable(sorted[:], func(i, j int) bool {
		ai := math.Atan2(sorted[i].Y-cy, sorted[i].X-cx)
		aj := math.Atan2(sorted[j].Y-cy, sorted[j].X-cx)
		return ai < aj
	})

	sum := func(p Vec2) float64 { return p.X + p.Y }
	diff := func(p Vec2) float64 { return p.Y - p.X }

	tl, br, tr, bl := sorted[0], sorted[0], sorted[0], sorted[0]
	for _, p := range sorted[1:] {
		if sum(p) < sum(tl) {
			tl = p
		}
		if sum(p) > sum(br) {
			br = p
		}
		if diff(p) < diff(tr) {
			tr = p
		}
		if diff(p) > diff(bl) {
			bl = p
		}
	}
	return Quad{tl, tr, br, bl}
}

// Points returns the quad's corners as a slice.
func (q Quad) Points() []Vec2 {
	return q[:]
}

// Area returns the quad's area (shoelace formula).
func (q Quad) Area() float64 {
	return PolygonArea(q[:])
}

// IsConvex reports whether the quad is convex.
func (q Quad) IsConvex() bool {
	return IsConvex(q[:])
}

// Bounds returns the quad's bounding box with sides floored at 1.
func (q Quad) Bounds() Rect {
	return BoundingBox(q[:])
}

// Centroid returns the quad's area-weighted centroid.
func (q Quad) Centroid() Vec2 {
	return Centroid(q[:])
}

// EdgeLengths returns the lengths of the top, right, bottom and left edges.
func (q Quad) EdgeLengths() [4]float64 {
	var out [4]float64
	for i := range q {
		next := q[(i+1)%4]
		out[i] = math.Hypot(next.X-q[i].X, next.Y-q[i].Y)
	}
	return out
}

// PolygonArea returns the unsigned area of a simple polygon.
func PolygonArea(pts []Vec2) float64 {
	var sum float64
	n := len(pts)
	for i := 0; i < n; i++ {
		next := pts[(i+1)%n]
		sum += pts[i].X*next.Y - next.X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// IsConvex reports whether the polygon turns in one direction at every
// vertex. Colinear vertices (zero cross product) are ignored; polygons with
// fewer than four points are rejected.
func IsConvex(pts []Vec2) bool {
	n := len(pts)
	if n < 4 {
		return false
	}
	var sign float64
	for i := 0; i < n; i++ {
		p0 := pts[i]
		p1 := pts[(i+1)%n]
		p2 := pts[(i+2)%n]
		cross := (p1.X-p0.X)*(p2.Y-p1.Y) - (p1.Y-p0.Y)*(p2.X-p1.X)
		s := sign0(cross)
		if s == 0 {
			continue
		}
		if sign == 0 {
			sign = s
		} else if sign != s {
			return false
		}
	}
	return true
}

func sign0(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// BoundingBox returns the axis-aligned bounding box of pts. Width and height
// are floored at 1 so that aspect ratios stay finite.
func BoundingBox(pts []Vec2) Rect {
	if len(pts) == 0 {
		return Rect{Width: 1, Height: 1}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{
		X:      minX,
		Y:      minY,
		Width:  math.Max(1, maxX-minX),
		Height: math.Max(1, maxY-minY),
	}
}

// Centroid returns the area-weighted centroid of a simple polygon. A
// zero-area polygon is treated as having area 1.
func Centroid(pts []Vec2) Vec2 {
	area := PolygonArea(pts)
	if area == 0 {
		area = 1
	}
	var cx, cy, signed float64
	n := len(pts)
	for i := 0; i < n; i++ {
		next := pts[(i+1)%n]
		cross := pts[i].X*next.Y - next.X*pts[i].Y
		cx += (pts[i].X + next.X) * cross
		cy += (pts[i].Y + next.Y) * cross
		signed += cross
	}
	// The unsigned area flips the sign for counter-clockwise input.
	if signed < 0 {
		area = -area
	}
	return Vec2{X: cx / (6 * area), Y: cy / (6 * area)}
}

// --- QuadStore ---

// QuadStore is the ordered list of candidate quads. Insertion order is the
// tie-break priority for selection. It only grows by Add and shrinks by Pop
// or Clear.
type QuadStore struct {
	quads []Quad
}

// Add appends q.
func (s *QuadStore) Add(q Quad) {
	s.quads = append(s.quads, q)
}

// Pop removes and returns the most recently added quad.
func (s *QuadStore) Pop() (Quad, bool) {
	if len(s.quads) == 0 {
		return Quad{}, false
	}
	q := s.quads[len(s.quads)-1]
	s.quads = s.quads[:len(s.quads)-1]
	return q, true
}

// Clear removes every quad.
func (s *QuadStore) Clear() {
	s.quads = s.quads[:0]
}

// Len returns the number of stored quads.
func (s *QuadStore) Len() int {
	return len(s.quads)
}

// At returns the i-th quad in insertion order.
func (s *QuadStore) At(i int) Quad {
	return s.quads[i]
}

// All returns the stored quads in insertion order. The returned slice MUST
// NOT be mutated.
func (s *QuadStore) All() []Quad {
	return s.quads
}

// --- PointBuffer ---

// PointBuffer accumulates manually entered points until a quad is complete.
type PointBuffer struct {
	points []Vec2
}

// Push adds p. On the fourth point the buffer is cleared and the normalized
// quad is returned with ok set.
func (b *PointBuffer) Push(p Vec2) (q Quad, ok bool) {
	b.points = append(b.points, p)
	if len(b.points) < 4 {
		return Quad{}, false
	}
	q = NormalizeQuad([4]Vec2{b.points[0], b.points[1], b.points[2], b.points[3]})
	b.points = b.points[:0]
	return q, true
}

// Clear discards the pending points.
func (b *PointBuffer) Clear() {
	b.points = b.points[:0]
}

// Len returns the number of pending points.
func (b *PointBuffer) Len() int {
	return len(b.points)
}

// Points returns the pending points. The returned slice MUST NOT be mutated.
func (b *PointBuffer) Points() []Vec2 {
	return b.points
}
