package billboard

import (
	"image"
	"math"
)

// Surface is the drawing capability the compositor renders through. All
// coordinates passed to drawing calls are in display units and are mapped to
// physical pixels by the transform installed with SetTransform.
//
// Implementations: SoftwareSurface (headless, golang.org/x/image) and
// ebitenbackend.Surface (GPU, ebiten).
type Surface interface {
	// Resize reallocates the surface to w x h physical pixels, discarding
	// its contents.
	Resize(w, h int)
	// Size returns the physical size in pixels.
	Size() (w, h int)
	// SetTransform replaces the base transform ([a, b, c, d, tx, ty]).
	SetTransform(m [6]float64)
	// SetFilter selects the sampling filter for subsequent image draws.
	SetFilter(f FilterMode)
	// Clear fills the whole surface with the background color.
	Clear()

	// DrawImage draws the src rectangle of img scaled into dst.
	DrawImage(img image.Image, src image.Rectangle, dst Rect)
	// DrawTriangle clips to the clip triangle and draws the whole of img
	// through m composed with the base transform, at the given opacity.
	DrawTriangle(img image.Image, m [6]float64, clip Triangle, alpha float64)

	// FillRect fills an axis-aligned rectangle.
	FillRect(r Rect, c Color)
	// FillPolygon fills a simple polygon.
	FillPolygon(pts []Vec2, c Color)
	// StrokePolyline strokes the segments between consecutive points,
	// closing the loop when closed is set.
	StrokePolyline(pts []Vec2, closed bool, width float64, c Color)
	// FillCircle fills a circle.
	FillCircle(center Vec2, radius float64, c Color)
	// DrawText draws s with its baseline starting at (x, y).
	DrawText(s string, x, y, size float64, c Color)
	// MeasureText returns the advance width of s in display units.
	MeasureText(s string, size float64) float64
}

// generationer is implemented by images whose pixels change in place (the
// frame buffer). Backends that cache uploaded textures use it to detect
// stale copies.
type generationer interface {
	Generation() uint64
}

// ImageGeneration returns the content generation of img, or 0 if img does
// not track one.
func ImageGeneration(img image.Image) uint64 {
	if g, ok := img.(generationer); ok {
		return g.Generation()
	}
	return 0
}

// plainImage unwraps a *FrameBuffer to its *image.RGBA so that image/draw
// fast paths apply.
func plainImage(img image.Image) image.Image {
	if fb, ok := img.(*FrameBuffer); ok && fb.RGBA != nil {
		return fb.RGBA
	}
	return img
}

// StrokeQuads expands each segment of a polyline into a filled rectangle of
// the given width.
func StrokeQuads(pts []Vec2, closed bool, width float64) [][4]Vec2 {
	n := len(pts)
	if n < 2 {
		return nil
	}
	segs := n - 1
	if closed {
		segs = n
	}
	half := width / 2
	out := make([][4]Vec2, 0, segs)
	for i := 0; i < segs; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		ln := math.Hypot(dx, dy)
		if ln == 0 {
			continue
		}
		// Extend along the segment by half the width so corners overlap.
		ex, ey := dx/ln*half, dy/ln*half
		px, py := -ey, ex
		out = append(out, [4]Vec2{
			{a.X - ex + px, a.Y - ey + py},
			{b.X + ex + px, b.Y + ey + py},
			{b.X + ex - px, b.Y + ey - py},
			{a.X - ex - px, a.Y - ey - py},
		})
	}
	return out
}
