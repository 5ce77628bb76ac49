//go:build !gocv

package contour

import (
	"context"
	"image"

	"github.com/phanxgames/billboard"
)

// Detector is a placeholder in builds without OpenCV.
type Detector struct{}

// New reports ErrUnavailable in builds without OpenCV.
func New(Config) (*Detector, error) {
	return nil, ErrUnavailable
}

// Detect always fails with ErrUnavailable.
func (d *Detector) Detect(context.Context, image.Image) ([4]billboard.Vec2, bool, error) {
	return [4]billboard.Vec2{}, false, ErrUnavailable
}
