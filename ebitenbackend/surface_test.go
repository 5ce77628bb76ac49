package ebitenbackend

import (
	"image"
	"math"
	"testing"

	"github.com/phanxgames/billboard"
)

func TestGeoMMatchesAffine(t *testing.T) {
	m := [6]float64{2, 0.5, -1, 3, 10, 20}
	g := geoM(m)
	for _, p := range []billboard.Vec2{{0, 0}, {1, 0}, {0, 1}, {3.5, -2}} {
		want := billboard.TransformPoint(m, p)
		x, y := g.Apply(p.X, p.Y)
		if math.Abs(x-want.X) > 1e-9 || math.Abs(y-want.Y) > 1e-9 {
			t.Errorf("Apply(%v) = (%v, %v), want %v", p, x, y, want)
		}
	}
}

func TestRGBAOf(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if rgbaOf(rgba) != rgba {
		t.Error("*image.RGBA not passed through")
	}
	fb := &billboard.FrameBuffer{RGBA: rgba}
	if rgbaOf(fb) != rgba {
		t.Error("FrameBuffer pixels not unwrapped")
	}
	if rgbaOf(image.NewNRGBA(image.Rect(0, 0, 2, 2))) != nil {
		t.Error("NRGBA should need a conversion")
	}
}
