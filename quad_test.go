package billboard

import "testing"

var unitSquare = Quad{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

func TestNormalizeQuadOrders(t *testing.T) {
	want := Quad{{100, 50}, {400, 60}, {390, 170}, {110, 160}}
	perms := [][4]int{
		{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}, {0, 3, 2, 1},
	}
	for _, p := range perms {
		in := [4]Vec2{want[p[0]], want[p[1]], want[p[2]], want[p[3]]}
		got := NormalizeQuad(in)
		if got != want {
			t.Errorf("NormalizeQuad(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeQuadIdempotent(t *testing.T) {
	q := NormalizeQuad([4]Vec2{{5, 90}, {220, 10}, {30, 20}, {210, 120}})
	if again := NormalizeQuad(q); again != q {
		t.Errorf("second normalization = %v, want %v", again, q)
	}
}

func TestQuadArea(t *testing.T) {
	assertNear(t, "square", unitSquare.Area(), 100)
	// Orientation does not change the unsigned area.
	ccw := Quad{{0, 0}, {0, 10}, {10, 10}, {10, 0}}
	assertNear(t, "ccw", ccw.Area(), 100)
	assertNear(t, "degenerate", Quad{{0, 0}, {1, 1}, {2, 2}, {3, 3}}.Area(), 0)
}

func TestIsConvex(t *testing.T) {
	tests := []struct {
		name string
		pts  []Vec2
		want bool
	}{
		{"square", unitSquare[:], true},
		{"ccw square", []Vec2{{0, 0}, {0, 10}, {10, 10}, {10, 0}}, true},
		{"trapezoid", []Vec2{{2, 0}, {8, 0}, {10, 5}, {0, 5}}, true},
		{"dart", []Vec2{{0, 0}, {10, 0}, {3, 3}, {0, 10}}, false},
		{"bowtie", []Vec2{{0, 0}, {10, 10}, {10, 0}, {0, 10}}, false},
		{"colinear vertex", []Vec2{{0, 0}, {5, 0}, {10, 0}, {5, 5}}, true},
		{"triangle", []Vec2{{0, 0}, {1, 0}, {0, 1}}, false},
	}
	for _, tt := range tests {
		if got := IsConvex(tt.pts); got != tt.want {
			t.Errorf("%s: IsConvex = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBoundingBoxFloor(t *testing.T) {
	r := BoundingBox([]Vec2{{5, 5}, {5, 5}, {5, 5}})
	assertNear(t, "Width", r.Width, 1)
	assertNear(t, "Height", r.Height, 1)

	r = unitSquare.Bounds()
	assertNear(t, "Width", r.Width, 10)
	assertNear(t, "Height", r.Height, 10)
}

func TestCentroid(t *testing.T) {
	assertVec(t, "cw", unitSquare.Centroid(), Vec2{5, 5})
	ccw := []Vec2{{0, 0}, {0, 10}, {10, 10}, {10, 0}}
	assertVec(t, "ccw", Centroid(ccw), Vec2{5, 5})
	// An L-ish trapezoid leans toward its wide base.
	c := Centroid([]Vec2{{4, 0}, {6, 0}, {10, 10}, {0, 10}})
	if c.Y <= 5 {
		t.Errorf("centroid Y = %v, want > 5", c.Y)
	}
}

func TestEdgeLengths(t *testing.T) {
	q := Quad{{0, 0}, {30, 0}, {30, 40}, {0, 40}}
	e := q.EdgeLengths()
	assertNear(t, "top", e[0], 30)
	assertNear(t, "right", e[1], 40)
	assertNear(t, "bottom", e[2], 30)
	assertNear(t, "left", e[3], 40)
}

func TestQuadStore(t *testing.T) {
	var s QuadStore
	if _, ok := s.Pop(); ok {
		t.Error("Pop on empty store succeeded")
	}
	a := unitSquare
	b := Quad{{1, 1}, {2, 1}, {2, 2}, {1, 2}}
	s.Add(a)
	s.Add(b)
	if s.Len() != 2 || s.At(0) != a || s.At(1) != b {
		t.Fatalf("store = %v, want [a b]", s.All())
	}
	q, ok := s.Pop()
	if !ok || q != b {
		t.Errorf("Pop = %v, %v; want b, true", q, ok)
	}
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d", s.Len())
	}
}

func TestPointBuffer(t *testing.T) {
	var b PointBuffer
	pts := []Vec2{{10, 10}, {0, 0}, {10, 0}}
	for _, p := range pts {
		if _, ok := b.Push(p); ok {
			t.Fatal("quad completed early")
		}
	}
	if b.Len() != 3 {
		t.Fatalf("Len = %d, want 3", b.Len())
	}
	q, ok := b.Push(Vec2{0, 10})
	if !ok {
		t.Fatal("fourth point did not complete a quad")
	}
	if q != unitSquare {
		t.Errorf("quad = %v, want %v", q, unitSquare)
	}
	if b.Len() != 0 {
		t.Errorf("buffer not cleared: %v", b.Points())
	}

	b.Push(Vec2{1, 1})
	b.Clear()
	if b.Len() != 0 {
		t.Error("Clear left points behind")
	}
}
