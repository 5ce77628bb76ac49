// Package contour finds a billboard-shaped quadrilateral in a video frame:
// greyscale, Gaussian blur, Canny edges, external contours, polygon
// approximation, then the largest convex four-corner polygon.
//
// The OpenCV implementation needs cgo and is only built with the gocv
// build tag; without it New returns ErrUnavailable.
package contour

import (
	"errors"
	"image"

	"github.com/phanxgames/billboard"
)

// ErrUnavailable is returned by New when the binary was built without OpenCV.
var ErrUnavailable = errors.New("contour: built without gocv")

// Config holds the edge and polygon parameters.
type Config struct {
	BlurKernel int     // odd Gaussian kernel size
	CannyLow   float32 // hysteresis thresholds
	CannyHigh  float32
	// Epsilon is the polygon approximation tolerance as a fraction of the
	// contour perimeter.
	Epsilon float64
}

// DefaultConfig returns the stock parameters.
func DefaultConfig() Config {
	return Config{
		BlurKernel: 5,
		CannyLow:   60,
		CannyHigh:  180,
		Epsilon:    0.02,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.BlurKernel <= 0 {
		c.BlurKernel = d.BlurKernel
	}
	if c.BlurKernel%2 == 0 {
		c.BlurKernel++
	}
	if c.CannyHigh <= 0 {
		c.CannyLow, c.CannyHigh = d.CannyLow, d.CannyHigh
	}
	if c.Epsilon <= 0 {
		c.Epsilon = d.Epsilon
	}
	return c
}

// bestQuad returns the convex four-point polygon with the largest area.
// Polygons with any other corner count are ignored. Ties keep the first.
func bestQuad(polys [][]image.Point) ([4]billboard.Vec2, bool) {
	var best [4]billboard.Vec2
	bestArea := 0.0
	for _, poly := range polys {
		if len(poly) != 4 {
			continue
		}
		pts := make([]billboard.Vec2, 4)
		for i, p := range poly {
			pts[i] = billboard.Vec2{X: float64(p.X), Y: float64(p.Y)}
		}
		if !billboard.IsConvex(pts) {
			continue
		}
		if a := billboard.PolygonArea(pts); a > bestArea {
			bestArea = a
			copy(best[:], pts)
		}
	}
	return best, bestArea > 0
}
