package billboard

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is handed to a Surface.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default outline color.
var ColorWhite = Color{1, 1, 1, 1}

// Overlay colors used by the debug outlines.
var (
	ColorSelected  = Color{0, 1, 120.0 / 255.0, 0.9}
	ColorCandidate = Color{180.0 / 255.0, 180.0 / 255.0, 180.0 / 255.0, 0.6}
	ColorPending   = Color{1, 200.0 / 255.0, 0, 0.9}
	ColorQuadFill  = Color{0, 1, 180.0 / 255.0, 0.12}
	ColorMarkerInk = Color{11.0 / 255.0, 13.0 / 255.0, 18.0 / 255.0, 1}
)

// Vec2 is a 2D point or vector. Whether it is in media space or display
// space is stated by the API that produces or consumes it; the two are never
// mixed without going through a Layout.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Triangle is three points in a single coordinate space.
type Triangle [3]Vec2

// FilterMode selects the sampling filter used when an image is scaled or warped.
type FilterMode uint8

const (
	FilterNearest FilterMode = iota // no smoothing; used when not minifying
	FilterSmooth                    // high-quality smoothing; used when minifying
)

func (f FilterMode) String() string {
	if f == FilterNearest {
		return "nearest"
	}
	return "smooth"
}

// ToRGBA converts c to a premultiplied color.RGBA.
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
