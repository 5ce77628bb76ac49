// Package ebitenbackend renders a billboard session with Ebitengine: a GPU
// Surface built on DrawTriangles and a ready-made ebiten.Game host.
package ebitenbackend

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/phanxgames/billboard"
	"golang.org/x/image/font/gofont/gobold"
)

// DefaultTextureCacheSize is the number of distinct source images kept on
// the GPU: the frame buffer, two ads and some slack for replaced ads.
const DefaultTextureCacheSize = 8

// cachedTexture is an uploaded copy of a CPU image.
type cachedTexture struct {
	img *ebiten.Image
	gen uint64
}

// Surface is a billboard.Surface backed by an offscreen *ebiten.Image.
// CPU images are uploaded once and re-uploaded only when their generation
// changes. Not safe for concurrent use.
type Surface struct {
	target     *ebiten.Image
	w, h       int
	transform  [6]float64
	filter     billboard.FilterMode
	background color.Color

	textures *lru.Cache[image.Image, *cachedTexture]
	white    *ebiten.Image

	fontSource *text.GoTextFaceSource
	faces      map[float64]*text.GoTextFace

	verts []ebiten.Vertex
	inds  []uint16
}

// NewSurface creates a w x h surface.
func NewSurface(w, h int) (*Surface, error) {
	cache, err := lru.NewWithEvict[image.Image, *cachedTexture](DefaultTextureCacheSize,
		func(_ image.Image, t *cachedTexture) { t.img.Deallocate() })
	if err != nil {
		return nil, err
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	if err != nil {
		return nil, err
	}
	white := ebiten.NewImage(1, 1)
	white.Fill(color.White)
	s := &Surface{
		transform:  [6]float64{1, 0, 0, 1, 0, 0},
		background: color.Black,
		textures:   cache,
		white:      white,
		fontSource: src,
		faces:      map[float64]*text.GoTextFace{},
	}
	s.Resize(w, h)
	return s, nil
}

// Image returns the backing image. It is reallocated by Resize.
func (s *Surface) Image() *ebiten.Image { return s.target }

// SetBackground sets the color used by Clear.
func (s *Surface) SetBackground(c color.Color) { s.background = c }

// Resize reallocates the backing image.
func (s *Surface) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if s.target != nil {
		if s.w == w && s.h == h {
			s.Clear()
			return
		}
		s.target.Deallocate()
	}
	s.target = ebiten.NewImage(w, h)
	s.w, s.h = w, h
	s.Clear()
}

// Size returns the backing size in pixels.
func (s *Surface) Size() (int, int) { return s.w, s.h }

// SetTransform replaces the base transform.
func (s *Surface) SetTransform(m [6]float64) { s.transform = m }

// SetFilter selects the sampling filter for image draws.
func (s *Surface) SetFilter(f billboard.FilterMode) { s.filter = f }

// Clear fills the surface with the background color.
func (s *Surface) Clear() { s.target.Fill(s.background) }

func (s *Surface) ebitenFilter() ebiten.Filter {
	if s.filter == billboard.FilterNearest {
		return ebiten.FilterNearest
	}
	return ebiten.FilterLinear
}

// geoM converts an [a, b, c, d, tx, ty] matrix into an ebiten.GeoM.
func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// texture returns the GPU copy of img, uploading it when missing or stale.
func (s *Surface) texture(img image.Image) *ebiten.Image {
	if e, ok := img.(*ebiten.Image); ok {
		return e
	}
	gen := billboard.ImageGeneration(img)
	if t, ok := s.textures.Get(img); ok {
		if t.gen == gen {
			return t.img
		}
		if rgba := rgbaOf(img); rgba != nil && t.img.Bounds().Size() == rgba.Rect.Size() &&
			rgba.Stride == 4*rgba.Rect.Dx() {
			t.img.WritePixels(rgba.Pix)
			t.gen = gen
			return t.img
		}
		s.textures.Remove(img)
	}
	var up *ebiten.Image
	if rgba := rgbaOf(img); rgba != nil {
		up = ebiten.NewImageFromImage(rgba)
	} else {
		up = ebiten.NewImageFromImage(img)
	}
	s.textures.Add(img, &cachedTexture{img: up, gen: gen})
	return up
}

func rgbaOf(img image.Image) *image.RGBA {
	switch v := img.(type) {
	case *billboard.FrameBuffer:
		return v.RGBA
	case *image.RGBA:
		return v
	}
	return nil
}

// DrawImage draws the src rectangle of img scaled into dst.
func (s *Surface) DrawImage(img image.Image, src image.Rectangle, dst billboard.Rect) {
	if src.Empty() || dst.Width <= 0 || dst.Height <= 0 {
		return
	}
	tex := s.texture(img)
	origin := img.Bounds().Min
	sub := tex.SubImage(src.Sub(origin)).(*ebiten.Image)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(dst.Width/float64(src.Dx()), dst.Height/float64(src.Dy()))
	op.GeoM.Translate(dst.X, dst.Y)
	op.GeoM.Concat(geoM(s.transform))
	op.Filter = s.ebitenFilter()
	s.target.DrawImage(sub, op)
}

// DrawTriangle draws the part of img that m maps into clip. The clip
// triangle becomes the vertex positions and inverse(m) gives each vertex its
// texture coordinate, so only the clip triangle is ever rasterized.
func (s *Surface) DrawTriangle(img image.Image, m [6]float64, clip billboard.Triangle, alpha float64) {
	if alpha <= 0 || img.Bounds().Empty() {
		return
	}
	tex := s.texture(img)
	origin := img.Bounds().Min
	inv := billboard.InvertAffine(m)
	s.verts = s.verts[:0]
	for _, p := range clip {
		d := billboard.TransformPoint(s.transform, p)
		src := billboard.TransformPoint(inv, p)
		s.verts = append(s.verts, ebiten.Vertex{
			DstX: float32(d.X), DstY: float32(d.Y),
			SrcX: float32(src.X - float64(origin.X)), SrcY: float32(src.Y - float64(origin.Y)),
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: float32(alpha),
		})
	}
	s.inds = append(s.inds[:0], 0, 1, 2)
	var op ebiten.DrawTrianglesOptions
	op.Filter = s.ebitenFilter()
	op.Address = ebiten.AddressClampToZero
	s.target.DrawTriangles(s.verts, s.inds, tex, &op)
}

// fill draws a triangle fan over pts with the white pixel.
func (s *Surface) fill(pts []billboard.Vec2, c billboard.Color) {
	if len(pts) < 3 || c.A <= 0 {
		return
	}
	s.verts = s.verts[:0]
	s.inds = s.inds[:0]
	for _, p := range pts {
		d := billboard.TransformPoint(s.transform, p)
		s.verts = append(s.verts, ebiten.Vertex{
			DstX: float32(d.X), DstY: float32(d.Y),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: float32(c.R), ColorG: float32(c.G), ColorB: float32(c.B), ColorA: float32(c.A),
		})
	}
	for i := 1; i+1 < len(pts); i++ {
		s.inds = append(s.inds, 0, uint16(i), uint16(i+1))
	}
	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = true
	s.target.DrawTriangles(s.verts, s.inds, s.white, &op)
}

// FillRect fills r.
func (s *Surface) FillRect(r billboard.Rect, c billboard.Color) {
	s.fill([]billboard.Vec2{
		{X: r.X, Y: r.Y}, {X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height}, {X: r.X, Y: r.Y + r.Height},
	}, c)
}

// FillPolygon fills a convex polygon (fan triangulation).
func (s *Surface) FillPolygon(pts []billboard.Vec2, c billboard.Color) {
	s.fill(pts, c)
}

// StrokePolyline strokes pts with the given width.
func (s *Surface) StrokePolyline(pts []billboard.Vec2, closed bool, width float64, c billboard.Color) {
	for _, q := range billboard.StrokeQuads(pts, closed, width) {
		s.fill(q[:], c)
	}
}

// FillCircle fills a circle approximated by a 32-gon.
func (s *Surface) FillCircle(center billboard.Vec2, radius float64, c billboard.Color) {
	const segments = 32
	pts := make([]billboard.Vec2, segments)
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / segments)
		pts[i] = billboard.Vec2{X: center.X + cos*radius, Y: center.Y + sin*radius}
	}
	s.fill(pts, c)
}

func (s *Surface) face(size float64) *text.GoTextFace {
	if f, ok := s.faces[size]; ok {
		return f
	}
	f := &text.GoTextFace{Source: s.fontSource, Size: size}
	s.faces[size] = f
	return f
}

// DrawText draws str with its baseline starting at (x, y).
func (s *Surface) DrawText(str string, x, y, size float64, c billboard.Color) {
	f := s.face(size)
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y-f.Metrics().HAscent)
	op.GeoM.Concat(geoM(s.transform))
	op.ColorScale.Scale(float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A))
	op.Filter = ebiten.FilterLinear
	text.Draw(s.target, str, f, op)
}

// MeasureText returns the advance of str in display units.
func (s *Surface) MeasureText(str string, size float64) float64 {
	return text.Advance(str, s.face(size))
}

// ReadImage reads the backing image back from the GPU.
func (s *Surface) ReadImage() *image.NRGBA {
	pix := make([]byte, 4*s.w*s.h)
	s.target.ReadPixels(pix)
	return billboard.UnpremultiplyPixels(pix, s.w, s.h)
}

// Dispose releases GPU resources.
func (s *Surface) Dispose() {
	s.textures.Purge()
	if s.target != nil {
		s.target.Deallocate()
		s.target = nil
	}
}
