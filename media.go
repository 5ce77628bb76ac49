package billboard

import (
	"image"
	"image/draw"
	"time"
)

// Media is the video collaborator. The compositor never controls playback;
// it only reads these each frame.
type Media interface {
	// Size returns the native frame size, or zeros while metadata is unknown.
	Size() (w, h int)
	// Advancing reports whether playback is moving (not paused or ended).
	Advancing() bool
	// Snapshot draws the current frame into dst at native resolution.
	Snapshot(dst draw.Image)
}

// FrameNotifier is implemented by media that can call back once when the
// next frame is presented. The callback receives the presentation time.
// Registration is one-shot; the scheduler re-registers after every call.
type FrameNotifier interface {
	OnNextFrame(fn func(ts time.Duration))
}

// FrameBuffer is the compositor's copy of the most recently sampled media
// frame at native resolution. Both compositing and detection read from it,
// so they always see the same frame.
type FrameBuffer struct {
	*image.RGBA
	gen   uint64
	valid bool
}

// Generation increments every time the buffer's pixels are replaced.
func (f *FrameBuffer) Generation() uint64 {
	return f.gen
}

// Valid reports whether a frame has been captured.
func (f *FrameBuffer) Valid() bool {
	return f != nil && f.valid
}

// capture resizes the buffer to w x h if needed and snapshots m into it.
func (f *FrameBuffer) capture(m Media, w, h int) {
	if f.RGBA == nil || f.Rect.Dx() != w || f.Rect.Dy() != h {
		f.RGBA = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	m.Snapshot(f.RGBA)
	f.gen++
	f.valid = true
}
