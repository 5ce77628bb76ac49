//go:build gocv

package contour

import (
	"context"
	"fmt"
	"image"

	"github.com/phanxgames/billboard"
	"gocv.io/x/gocv"
)

// Detector is the OpenCV contour detector. It is stateless and safe for
// concurrent use.
type Detector struct {
	cfg Config
}

// New creates a detector.
func New(cfg Config) (*Detector, error) {
	return &Detector{cfg: cfg.normalized()}, nil
}

// Detect implements billboard.Detector. Points are in frame pixels.
func (d *Detector) Detect(ctx context.Context, frame image.Image) ([4]billboard.Vec2, bool, error) {
	var zero [4]billboard.Vec2
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	src, err := gocv.ImageToMatRGBA(frame)
	if err != nil {
		return zero, false, fmt.Errorf("convert frame: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := d.cfg.BlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)

	edged := gocv.NewMat()
	defer edged.Close()
	gocv.Canny(blurred, &edged, d.cfg.CannyLow, d.cfg.CannyHigh)

	contours := gocv.FindContours(edged, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var polys [][]image.Point
	for i := 0; i < contours.Size(); i++ {
		if err := ctx.Err(); err != nil {
			return zero, false, err
		}
		contour := contours.At(i)
		peri := gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, d.cfg.Epsilon*peri, true)
		if approx.Size() == 4 {
			polys = append(polys, approx.ToPoints())
		}
		approx.Close()
	}

	pts, ok := bestQuad(polys)
	return pts, ok, nil
}
