package billboard

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertNearTol(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, tol)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func assertVec(t *testing.T, name string, got, want Vec2) {
	t.Helper()
	if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// --- MultiplyAffine ---

func TestMultiplyAffineIdentity(t *testing.T) {
	m := [6]float64{2, 0, 0, 3, 10, 20}
	assertMatrix(t, "I*m", MultiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*I", MultiplyAffine(m, identityTransform), m)
}

func TestMultiplyAffineChildFirst(t *testing.T) {
	scale := [6]float64{2, 0, 0, 2, 0, 0}
	translate := [6]float64{1, 0, 0, 1, 5, 7}
	// scale * translate: translate first, then scale.
	got := MultiplyAffine(scale, translate)
	assertMatrix(t, "scale*translate", got, [6]float64{2, 0, 0, 2, 10, 14})
	p := TransformPoint(got, Vec2{1, 1})
	assertVec(t, "point", p, Vec2{12, 16})
}

// --- InvertAffine ---

func TestInvertAffineRoundTrip(t *testing.T) {
	m := [6]float64{1.5, 0.25, -0.5, 2, 30, -12}
	inv := InvertAffine(m)
	assertMatrix(t, "m*inv", MultiplyAffine(m, inv), identityTransform)
	assertMatrix(t, "inv*m", MultiplyAffine(inv, m), identityTransform)
}

func TestInvertAffineSingular(t *testing.T) {
	got := InvertAffine([6]float64{1, 2, 2, 4, 5, 5})
	assertMatrix(t, "singular", got, identityTransform)
}

// --- SolveTriangleAffine ---

func TestSolveTriangleAffineMapsVertices(t *testing.T) {
	src := Triangle{{0, 0}, {600, 0}, {600, 200}}
	dst := Triangle{{100, 50}, {400, 60}, {390, 170}}
	m, ok := SolveTriangleAffine(src, dst)
	if !ok {
		t.Fatal("expected solvable triangle")
	}
	for i := range src {
		assertVec(t, "vertex", TransformPoint(m, src[i]), dst[i])
	}
}

func TestSolveTriangleAffineIdentity(t *testing.T) {
	tri := Triangle{{3, 4}, {10, 4}, {3, 9}}
	m, ok := SolveTriangleAffine(tri, tri)
	if !ok {
		t.Fatal("expected solvable triangle")
	}
	assertMatrix(t, "identity", m, identityTransform)
}

func TestSolveTriangleAffineDegenerate(t *testing.T) {
	tests := []struct {
		name string
		src  Triangle
	}{
		{"colinear", Triangle{{0, 0}, {5, 5}, {10, 10}}},
		{"coincident", Triangle{{2, 2}, {2, 2}, {2, 2}}},
		{"two equal", Triangle{{0, 0}, {0, 0}, {4, 1}}},
	}
	dst := Triangle{{0, 0}, {1, 0}, {0, 1}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := SolveTriangleAffine(tt.src, dst)
			if ok {
				t.Errorf("ok = true, want false (m = %v)", m)
			}
		})
	}
}

func TestSolveTriangleAffineDegenerateDestination(t *testing.T) {
	// A zero-area destination is solvable; the warp skips it separately.
	src := Triangle{{0, 0}, {1, 0}, {0, 1}}
	dst := Triangle{{0, 0}, {2, 2}, {4, 4}}
	if _, ok := SolveTriangleAffine(src, dst); !ok {
		t.Error("ok = false, want true")
	}
	if triangleArea2(dst) != 0 {
		t.Errorf("triangleArea2 = %v, want 0", triangleArea2(dst))
	}
}

func TestTriangleBounds(t *testing.T) {
	r := triangleBounds(Triangle{{4, 9}, {-2, 3}, {7, 5}})
	assertNear(t, "X", r.X, -2)
	assertNear(t, "Y", r.Y, 3)
	assertNear(t, "Width", r.Width, 9)
	assertNear(t, "Height", r.Height, 6)
}
