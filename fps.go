package billboard

import "time"

// fpsWindow is the sampling window of FPSCounter.
const fpsWindow = 500 * time.Millisecond

// FPSCounter is a rolling frame-rate meter. Frames are counted and the rate
// is recomputed (and the count reset) once every 500ms window.
type FPSCounter struct {
	frames     int
	lastSample time.Duration
	started    bool
	fps        float64
}

// Tick records one frame presented at now and reports whether the rate was
// recomputed.
func (c *FPSCounter) Tick(now time.Duration) bool {
	if !c.started {
		c.started = true
		c.lastSample = now
	}
	c.frames++
	delta := now - c.lastSample
	if delta < fpsWindow {
		return false
	}
	c.fps = float64(c.frames) / delta.Seconds()
	c.frames = 0
	c.lastSample = now
	return true
}

// FPS returns the rate measured over the last completed window.
func (c *FPSCounter) FPS() float64 {
	return c.fps
}
