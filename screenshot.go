package billboard

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ImageReader is implemented by surfaces whose pixels can be read back.
type ImageReader interface {
	// ReadImage returns a straight-alpha copy of the surface pixels.
	ReadImage() *image.NRGBA
}

// Screenshot queues a labeled screenshot to be captured at the end of the
// next rendered frame. The resulting PNG is written to ScreenshotDir with a
// timestamped filename.
func (s *Session) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// Capture reads the composited surface back, if the surface supports it.
func (s *Session) Capture() (*image.NRGBA, bool) {
	r, ok := s.surface.(ImageReader)
	if !ok {
		return nil, false
	}
	return r.ReadImage(), true
}

// flushScreenshots captures the rendered frame for every queued label and
// writes each as a PNG file. Called at the end of renderFrame.
func (s *Session) flushScreenshots() {
	if len(s.screenshotQueue) == 0 {
		return
	}
	defer func() { s.screenshotQueue = s.screenshotQueue[:0] }()

	log := s.log.WithFields(logrus.Fields{
		"function": "flushScreenshots",
		"dir":      s.ScreenshotDir,
	})
	img, ok := s.Capture()
	if !ok {
		log.Warn("surface cannot be read back, dropping screenshots")
		return
	}
	if err := os.MkdirAll(s.ScreenshotDir, 0o755); err != nil {
		log.WithField("error", err.Error()).Error("screenshot mkdir failed")
		return
	}

	stamp := time.Now().Format("20060102_150405")
	for _, label := range s.screenshotQueue {
		path := filepath.Join(s.ScreenshotDir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			log.WithField("error", err.Error()).Error("screenshot write failed")
			continue
		}
		log.WithField("path", path).Info("screenshot saved")
	}
}

// UnpremultiplyPixels converts premultiplied RGBA pixels, as returned by
// image.RGBA or ebiten's ReadPixels, to straight-alpha NRGBA.
func UnpremultiplyPixels(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
