package billboard

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// ImageSequence is an in-memory Media that plays decoded frames at a fixed
// rate. The host drives it with Advance; it notifies a registered
// FrameNotifier callback whenever a new frame becomes current.
type ImageSequence struct {
	frames []image.Image
	fps    float64
	loop   bool

	w, h    int
	playing bool
	ended   bool
	origin  time.Duration // clock time at which frame 0 was presented
	pos     time.Duration // playback position while paused
	now     time.Duration
	current int

	pending func(time.Duration)
}

// NewImageSequence creates a sequence from frames played at fps. All frames
// are drawn at the size of the first one.
func NewImageSequence(frames []image.Image, fps float64, loop bool) *ImageSequence {
	if fps <= 0 {
		fps = 30
	}
	s := &ImageSequence{frames: frames, fps: fps, loop: loop, current: -1}
	if len(frames) > 0 {
		b := frames[0].Bounds()
		s.w, s.h = b.Dx(), b.Dy()
	}
	return s
}

// LoadImageSequence decodes every PNG or JPEG in dir, in lexical order.
func LoadImageSequence(dir string, fps float64, loop bool) (*ImageSequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("read frames %s: no images", dir)
	}
	frames := make([]image.Image, 0, len(names))
	for _, name := range names {
		img, err := imaging.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("decode frame %s: %w", name, err)
		}
		frames = append(frames, img)
	}
	return NewImageSequence(frames, fps, loop), nil
}

// Size returns the frame size.
func (s *ImageSequence) Size() (int, int) {
	return s.w, s.h
}

// Advancing reports whether the sequence is playing and not ended.
func (s *ImageSequence) Advancing() bool {
	return s.playing && !s.ended
}

// Play resumes playback at clock time now.
func (s *ImageSequence) Play(now time.Duration) {
	if s.playing {
		return
	}
	if s.ended {
		s.pos = 0
		s.ended = false
	}
	s.origin = now - s.pos
	s.playing = true
}

// Pause freezes the current frame.
func (s *ImageSequence) Pause() {
	if !s.playing {
		return
	}
	s.pos = s.now - s.origin
	s.playing = false
}

// Seek jumps to position pos.
func (s *ImageSequence) Seek(pos time.Duration) {
	s.pos = pos
	s.origin = s.now - pos
	s.ended = false
	s.current = s.indexAt(pos)
}

// Ended reports whether a non-looping sequence ran past its last frame.
func (s *ImageSequence) Ended() bool {
	return s.ended
}

// Frame returns the index of the current frame.
func (s *ImageSequence) Frame() int {
	return max(s.current, 0)
}

func (s *ImageSequence) indexAt(pos time.Duration) int {
	n := len(s.frames)
	if n == 0 {
		return 0
	}
	i := int(math.Floor(pos.Seconds() * s.fps))
	if i < 0 {
		i = 0
	}
	if s.loop {
		return i % n
	}
	return min(i, n-1)
}

// Advance moves the clock to now. When a new frame becomes current, a
// pending OnNextFrame callback fires once with now.
func (s *ImageSequence) Advance(now time.Duration) {
	s.now = now
	if !s.playing {
		return
	}
	pos := now - s.origin
	if !s.loop && len(s.frames) > 0 && pos.Seconds()*s.fps >= float64(len(s.frames)) {
		s.ended = true
		s.playing = false
		s.pos = pos
	}
	idx := s.indexAt(pos)
	if idx == s.current {
		return
	}
	s.current = idx
	if fn := s.pending; fn != nil {
		s.pending = nil
		fn(now)
	}
}

// OnNextFrame registers a one-shot callback for the next new frame.
func (s *ImageSequence) OnNextFrame(fn func(time.Duration)) {
	s.pending = fn
}

// Snapshot draws the current frame into dst.
func (s *ImageSequence) Snapshot(dst draw.Image) {
	if len(s.frames) == 0 {
		return
	}
	src := s.frames[s.Frame()]
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
}
