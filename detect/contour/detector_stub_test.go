//go:build !gocv

package contour

import (
	"context"
	"errors"
	"image"
	"testing"
)

func TestNewUnavailable(t *testing.T) {
	d, err := New(DefaultConfig())
	if !errors.Is(err, ErrUnavailable) || d != nil {
		t.Fatalf("New = %v, %v; want nil, ErrUnavailable", d, err)
	}
	var stub Detector
	if _, found, err := stub.Detect(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4))); found || !errors.Is(err, ErrUnavailable) {
		t.Errorf("Detect = %v, %v", found, err)
	}
}
