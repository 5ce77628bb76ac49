package billboard

import "math"

// Layout is the letterboxed mapping between media pixel space and display
// space for one frame. It is derived state: ComputeLayout recomputes it only
// when one of its four inputs changes, and every space transform performed
// during a frame reads from the same Layout value.
type Layout struct {
	// PixelDensity is the number of physical surface pixels per display unit.
	PixelDensity float64
	// DisplayWidth and DisplayHeight are the drawing surface size in display units.
	DisplayWidth, DisplayHeight float64
	// OffsetX and OffsetY position the media rectangle inside the display.
	OffsetX, OffsetY float64
	// DrawWidth and DrawHeight are the media size after scaling.
	DrawWidth, DrawHeight float64
	// Scale converts media pixels to display units.
	Scale float64

	// Memoization keys: the inputs this layout was computed from.
	ContainerWidth float64
	MediaWidth     int
	MediaHeight    int
}

// Ready reports whether the layout has been computed from known media dimensions.
func (l Layout) Ready() bool {
	return l.MediaWidth > 0 && l.MediaHeight > 0
}

// ComputeLayout returns the aspect-fit layout for a media frame of
// mediaW x mediaH pixels shown in a container containerW display units wide
// on a surface with the given pixel density.
//
// When all four inputs equal the ones prev was computed from and force is
// false, prev is returned unchanged and changed is false. When the media
// dimensions are not known yet (zero), prev is also returned unchanged and
// the caller must not draw.
func ComputeLayout(mediaW, mediaH int, containerW, density float64, prev Layout, force bool) (l Layout, changed bool) {
	if mediaW <= 0 || mediaH <= 0 {
		return prev, false
	}
	if containerW <= 0 {
		containerW = float64(mediaW)
	}
	if density <= 0 {
		density = 1
	}
	if !force &&
		containerW == prev.ContainerWidth &&
		mediaW == prev.MediaWidth &&
		mediaH == prev.MediaHeight &&
		density == prev.PixelDensity {
		return prev, false
	}

	mw := float64(mediaW)
	mh := float64(mediaH)
	targetW := math.Max(1, containerW)
	targetH := math.Max(1, math.Round(targetW*mh/mw))
	scale := math.Min(targetW/mw, targetH/mh)

	l = Layout{
		PixelDensity:   density,
		DisplayWidth:   targetW,
		DisplayHeight:  targetH,
		Scale:          scale,
		DrawWidth:      mw * scale,
		DrawHeight:     mh * scale,
		ContainerWidth: containerW,
		MediaWidth:     mediaW,
		MediaHeight:    mediaH,
	}
	l.OffsetX = (targetW - l.DrawWidth) / 2
	l.OffsetY = (targetH - l.DrawHeight) / 2
	return l, true
}

// SurfaceSize returns the physical pixel size of the drawing surface.
func (l Layout) SurfaceSize() (w, h int) {
	return int(math.Round(l.DisplayWidth * l.PixelDensity)), int(math.Round(l.DisplayHeight * l.PixelDensity))
}

// BaseTransform returns the surface transform that lets drawing calls be
// issued in display units.
func (l Layout) BaseTransform() [6]float64 {
	return scaleTransform(l.PixelDensity)
}

// DrawRect returns the display-space rectangle the media frame occupies.
func (l Layout) DrawRect() Rect {
	return Rect{X: l.OffsetX, Y: l.OffsetY, Width: l.DrawWidth, Height: l.DrawHeight}
}

// DeviceDrawRect returns DrawRect in physical surface pixels.
func (l Layout) DeviceDrawRect() Rect {
	d := l.PixelDensity
	return Rect{X: l.OffsetX * d, Y: l.OffsetY * d, Width: l.DrawWidth * d, Height: l.DrawHeight * d}
}

// EffectiveScale returns the media-to-display scale actually applied to the
// frame, the smaller of the two axes.
func (l Layout) EffectiveScale() float64 {
	if !l.Ready() {
		return 1
	}
	return math.Min(l.DrawWidth/float64(l.MediaWidth), l.DrawHeight/float64(l.MediaHeight))
}

// Filter returns the sampling filter for the current scale: nearest-neighbor
// when the frame is not minified, smooth otherwise.
func (l Layout) Filter() FilterMode {
	if l.EffectiveScale() >= 1 {
		return FilterNearest
	}
	return FilterSmooth
}

// ApplyTo resizes s to the layout's physical size and resets its transform
// so that subsequent drawing happens in display units.
func (l Layout) ApplyTo(s Surface) {
	w, h := l.SurfaceSize()
	s.Resize(w, h)
	s.SetTransform(l.BaseTransform())
}

// MapMediaPointToDisplay converts a media-space point to display space.
func MapMediaPointToDisplay(p Vec2, l Layout) Vec2 {
	return Vec2{
		X: l.OffsetX + p.X*l.Scale,
		Y: l.OffsetY + p.Y*l.Scale,
	}
}

// MapDisplayPointToMedia converts a display-space point to media space.
// Returns the zero Vec2 if the layout is not ready.
func MapDisplayPointToMedia(p Vec2, l Layout) Vec2 {
	if l.Scale == 0 {
		return Vec2{}
	}
	return Vec2{
		X: (p.X - l.OffsetX) / l.Scale,
		Y: (p.Y - l.OffsetY) / l.Scale,
	}
}
