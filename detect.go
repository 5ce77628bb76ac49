package billboard

import (
	"context"
	"errors"
	"image"
	"time"
)

// Detection defaults.
const (
	DefaultDetectorTimeout = 8 * time.Second
	detectorPollInterval   = 100 * time.Millisecond
)

var (
	// ErrMediaNotReady is returned when the media size is not known yet.
	ErrMediaNotReady = errors.New("billboard: media not ready")
	// ErrDetectorUnavailable is returned when no detector is configured or
	// it did not become ready in time.
	ErrDetectorUnavailable = errors.New("billboard: detector unavailable")
	// ErrNoQuad is returned when the detector found nothing.
	ErrNoQuad = errors.New("billboard: no quad found")
)

// Detector proposes at most one quadrilateral in a frame. Points are in
// media pixel coordinates, in any order. ok is false when nothing was found.
type Detector interface {
	Detect(ctx context.Context, frame image.Image) (pts [4]Vec2, ok bool, err error)
}

// ReadyDetector is implemented by detectors that load asynchronously.
type ReadyDetector interface {
	Detector
	Ready() bool
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, frame image.Image) ([4]Vec2, bool, error)

// Detect calls f.
func (f DetectorFunc) Detect(ctx context.Context, frame image.Image) ([4]Vec2, bool, error) {
	return f(ctx, frame)
}

// WaitReady polls d every interval until it reports ready, ctx is done or
// timeout elapses. Detectors that do not implement ReadyDetector are ready
// immediately; a nil detector never is.
func WaitReady(ctx context.Context, d Detector, timeout, interval time.Duration) bool {
	if d == nil {
		return false
	}
	rd, ok := d.(ReadyDetector)
	if !ok || rd.Ready() {
		return true
	}
	if interval <= 0 {
		interval = detectorPollInterval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return rd.Ready()
		case <-ticker.C:
			if rd.Ready() {
				return true
			}
		}
	}
}
