package billboard

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// --- Font cache ---

// Placeholder ads may be generated on a loader goroutine while the render
// goroutine draws text, so the cache is guarded.
var (
	fontMu    sync.Mutex
	boldFaces = map[float64]font.Face{}

	parseBold = sync.OnceValues(func() (*opentype.Font, error) {
		return opentype.Parse(gobold.TTF)
	})
)

// boldFace returns a cached Go Bold face at the given pixel size, or nil if
// the embedded font cannot be parsed.
func boldFace(size float64) font.Face {
	if size <= 0 {
		size = 12
	}
	fontMu.Lock()
	defer fontMu.Unlock()
	if f, ok := boldFaces[size]; ok {
		return f
	}
	face, err := newBoldFace(size)
	if err != nil {
		return nil
	}
	boldFaces[size] = face
	return face
}

// newBoldFace creates an uncached Go Bold face. Faces are not safe for
// concurrent use, so goroutines other than the render loop use their own.
func newBoldFace(size float64) (font.Face, error) {
	f, err := parseBold()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return face, nil
}

// measureString returns the advance of s in pixels for a face of the given size.
func measureString(s string, size float64) float64 {
	face := boldFace(size)
	if face == nil {
		return float64(len(s)) * size * 0.6
	}
	return fixedToFloat(font.MeasureString(face, s))
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
