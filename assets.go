package billboard

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"
)

// Placeholder panel dimensions.
const (
	PlaceholderWidth  = 600
	PlaceholderHeight = 200
)

// AdSlot is one loaded advertisement image.
type AdSlot struct {
	Image       image.Image
	Loaded      bool
	Placeholder bool
	Name        string
}

// Size returns the pixel size of the slot image, or 0,0 when unloaded.
func (a AdSlot) Size() (int, int) {
	if a.Image == nil {
		return 0, 0
	}
	b := a.Image.Bounds()
	return b.Dx(), b.Dy()
}

// AdSpec describes where an ad comes from and how its placeholder looks.
type AdSpec struct {
	Path   string `yaml:"path"`
	Label  string `yaml:"label"`
	Accent string `yaml:"accent"`
}

// LoadAd decodes the image at path. Any failure substitutes a generated
// placeholder panel, so the returned slot is always drawable.
func LoadAd(path, label string, accent Color) AdSlot {
	if path != "" {
		img, err := imaging.Open(path)
		if err == nil {
			return AdSlot{Image: img, Loaded: true, Name: path}
		}
		logrus.WithFields(logrus.Fields{
			"function": "LoadAd",
			"path":     path,
			"error":    err.Error(),
		}).Warn("ad image failed to load, using placeholder")
	}
	return AdSlot{
		Image:       Placeholder(label, accent),
		Loaded:      true,
		Placeholder: true,
		Name:        label,
	}
}

// LoadAds loads every spec concurrently. The result has one slot per spec in
// the same order. Canceling ctx stops loads that have not started.
func LoadAds(ctx context.Context, specs []AdSpec) ([]AdSlot, error) {
	slots := make([]AdSlot, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			accent, err := ParseHexColor(spec.Accent)
			if err != nil {
				accent = ColorSelected
			}
			slots[i] = LoadAd(spec.Path, spec.Label, accent)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load ads: %w", err)
	}
	return slots, nil
}

// Placeholder renders a 600x200 panel: dark background, inset accent panel
// with a darker overlay, the label in bold and a small subtitle.
func Placeholder(label string, accent Color) *image.RGBA {
	s := NewSoftwareSurface(PlaceholderWidth, PlaceholderHeight)
	s.SetBackground(color.RGBA{R: 0x0f, G: 0x11, B: 0x15, A: 0xff})
	s.Clear()
	s.FillRect(Rect{X: 20, Y: 20, Width: 560, Height: 160}, accent)
	s.FillRect(Rect{X: 30, Y: 30, Width: 540, Height: 140}, Color{A: 0.25})

	img := s.Image()
	white := ColorWhite.ToRGBA()
	drawPlaceholderText(img, label, 46, 46, 120, white)
	drawPlaceholderText(img, "Procedural placeholder", 22, 46, 162,
		color.RGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xe6})
	return img
}

// drawPlaceholderText uses a private face so placeholders can be generated
// off the render goroutine.
func drawPlaceholderText(dst *image.RGBA, s string, size float64, x, y int, c color.RGBA) {
	face, err := newBoldFace(size)
	if err != nil {
		return
	}
	defer func() { _ = face.Close() }()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("parse color %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}
