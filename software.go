package billboard

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// SoftwareSurface is a headless Surface that rasterizes into an *image.RGBA
// with golang.org/x/image. It is used by tests, the headless example and
// screenshot capture.
type SoftwareSurface struct {
	img        *image.RGBA
	transform  [6]float64
	filter     FilterMode
	background color.Color
	raster     *vector.Rasterizer
}

// NewSoftwareSurface creates a w x h surface with an opaque black background.
func NewSoftwareSurface(w, h int) *SoftwareSurface {
	s := &SoftwareSurface{
		transform:  identityTransform,
		background: color.Black,
		raster:     vector.NewRasterizer(1, 1),
	}
	s.Resize(w, h)
	return s
}

// SetBackground sets the color used by Clear.
func (s *SoftwareSurface) SetBackground(c color.Color) {
	s.background = c
}

// Image returns the backing image. It is reallocated by Resize.
func (s *SoftwareSurface) Image() *image.RGBA {
	return s.img
}

// ReadImage returns a straight-alpha copy of the backing image.
func (s *SoftwareSurface) ReadImage() *image.NRGBA {
	w, h := s.Size()
	return UnpremultiplyPixels(s.img.Pix, w, h)
}

// Resize reallocates the backing image.
func (s *SoftwareSurface) Resize(w, h int) {
	s.img = image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	s.Clear()
}

// Size returns the backing image size.
func (s *SoftwareSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// SetTransform replaces the base transform.
func (s *SoftwareSurface) SetTransform(m [6]float64) {
	s.transform = m
}

// Transform returns the base transform.
func (s *SoftwareSurface) Transform() [6]float64 {
	return s.transform
}

// SetFilter selects the interpolator for image draws.
func (s *SoftwareSurface) SetFilter(f FilterMode) {
	s.filter = f
}

// Filter returns the current filter.
func (s *SoftwareSurface) Filter() FilterMode {
	return s.filter
}

// Clear fills the surface with the background color.
func (s *SoftwareSurface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
}

func (s *SoftwareSurface) interpolator() draw.Interpolator {
	if s.filter == FilterNearest {
		return draw.NearestNeighbor
	}
	return draw.BiLinear
}

// aff3 converts an [a, b, c, d, tx, ty] matrix to x/image's row-major form.
func aff3(m [6]float64) f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}

// DrawImage draws the src rectangle of img scaled into dst.
func (s *SoftwareSurface) DrawImage(img image.Image, src image.Rectangle, dst Rect) {
	if src.Empty() || dst.Width <= 0 || dst.Height <= 0 {
		return
	}
	local := [6]float64{
		dst.Width / float64(src.Dx()), 0,
		0, dst.Height / float64(src.Dy()),
		dst.X - float64(src.Min.X)*dst.Width/float64(src.Dx()),
		dst.Y - float64(src.Min.Y)*dst.Height/float64(src.Dy()),
	}
	m := MultiplyAffine(s.transform, local)
	s.interpolator().Transform(s.img, aff3(m), plainImage(img), src, draw.Over, nil)
}

// DrawTriangle draws img through m, clipped to the clip triangle.
func (s *SoftwareSurface) DrawTriangle(img image.Image, m [6]float64, clip Triangle, alpha float64) {
	if alpha <= 0 || img.Bounds().Empty() {
		return
	}
	dev := transformTriangle(s.transform, clip)
	if triangleArea2(dev) == 0 {
		return
	}
	r := deviceBounds(triangleBounds(dev)).Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	mask := s.rasterize(dev[:], r, uint8(clamp01(alpha)*255))
	dst := s.img.SubImage(r).(*image.RGBA)
	full := MultiplyAffine(s.transform, m)
	src := plainImage(img)
	s.interpolator().Transform(dst, aff3(full), src, src.Bounds(), draw.Over, &draw.Options{
		DstMask: mask,
	})
}

// rasterize returns an alpha mask covering r in device coordinates with the
// polygon pts filled at the given coverage.
func (s *SoftwareSurface) rasterize(pts []Vec2, r image.Rectangle, coverage uint8) *image.Alpha {
	mask := image.NewAlpha(r)
	z := s.raster
	z.Reset(r.Dx(), r.Dy())
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()
	z.DrawOp = draw.Src
	z.Draw(mask, r, image.NewUniform(color.Alpha{A: coverage}), image.Point{})
	return mask
}

// fillDevice fills a device-space polygon with c.
func (s *SoftwareSurface) fillDevice(pts []Vec2, c Color) {
	if len(pts) < 3 || c.A <= 0 {
		return
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	r := deviceBounds(Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}).Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	mask := s.rasterize(pts, r, 255)
	draw.DrawMask(s.img, r, image.NewUniform(c.ToRGBA()), image.Point{}, mask, r.Min, draw.Over)
}

func (s *SoftwareSurface) toDevice(pts []Vec2) []Vec2 {
	out := make([]Vec2, len(pts))
	for i, p := range pts {
		out[i] = TransformPoint(s.transform, p)
	}
	return out
}

// FillRect fills r.
func (s *SoftwareSurface) FillRect(r Rect, c Color) {
	s.FillPolygon([]Vec2{
		{r.X, r.Y}, {r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height}, {r.X, r.Y + r.Height},
	}, c)
}

// FillPolygon fills pts.
func (s *SoftwareSurface) FillPolygon(pts []Vec2, c Color) {
	s.fillDevice(s.toDevice(pts), c)
}

// StrokePolyline strokes pts with the given width.
func (s *SoftwareSurface) StrokePolyline(pts []Vec2, closed bool, width float64, c Color) {
	for _, q := range StrokeQuads(pts, closed, width) {
		s.FillPolygon(q[:], c)
	}
}

// FillCircle fills a circle approximated by a 32-gon.
func (s *SoftwareSurface) FillCircle(center Vec2, radius float64, c Color) {
	const segments = 32
	pts := make([]Vec2, segments)
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / segments)
		pts[i] = Vec2{center.X + cos*radius, center.Y + sin*radius}
	}
	s.FillPolygon(pts, c)
}

// DrawText draws s with Go Bold at size display units.
func (s *SoftwareSurface) DrawText(str string, x, y, size float64, c Color) {
	scale := math.Hypot(s.transform[0], s.transform[1])
	face := boldFace(size * scale)
	if face == nil {
		return
	}
	p := TransformPoint(s.transform, Vec2{x, y})
	d := font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c.ToRGBA()),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(p.X * 64), Y: fixed.Int26_6(p.Y * 64)},
	}
	d.DrawString(str)
}

// MeasureText returns the advance of s in display units.
func (s *SoftwareSurface) MeasureText(str string, size float64) float64 {
	return measureString(str, size)
}

// deviceBounds rounds r outward to whole pixels.
func deviceBounds(r Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)), int(math.Ceil(r.Y+r.Height)),
	)
}
