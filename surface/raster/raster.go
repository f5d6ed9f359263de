// Package raster implements render.Surface on an in-memory RGBA image using
// the Go fonts. It backs the preview bitmap and the editor canvas.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/lvillar/invoicegen/model"
	"github.com/lvillar/invoicegen/render"
)

// DefaultDPI maps an 8.5in wide page onto 850 pixels.
const DefaultDPI = 100

const (
	lineFactor = 1.0
	ascent     = 0.8
	dashLen    = 4
	gapLen     = 3
)

type fontSet struct {
	regular, bold *opentype.Font
}

var loadFonts = sync.OnceValues(func() (fontSet, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fontSet{}, fmt.Errorf("raster: parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return fontSet{}, fmt.Errorf("raster: parse bold font: %w", err)
	}
	return fontSet{regular: regular, bold: bold}, nil
})

// Surface draws onto an *image.RGBA. Target units are pixels measured from
// the origin, which lets callers reserve a margin or a border around the
// page. A Surface is not safe for concurrent use.
type Surface struct {
	img    *image.RGBA
	origin model.Point
	dpi    float64
	bg     color.Color

	fonts fontSet
	font  render.Font
	faces map[render.Font]font.Face
	z     *vector.Rasterizer
}

// Option configures a Surface.
type Option func(*Surface)

// WithDPI sets the resolution used to convert font points to pixels.
func WithDPI(dpi float64) Option {
	return func(s *Surface) {
		if dpi > 0 {
			s.dpi = dpi
		}
	}
}

// WithOrigin offsets every drawing call by (x, y) pixels.
func WithOrigin(x, y float64) Option {
	return func(s *Surface) {
		s.origin = model.Point{X: x, Y: y}
	}
}

// WithBackground sets the color the image is cleared to.
func WithBackground(c color.Color) Option {
	return func(s *Surface) {
		s.bg = c
	}
}

// New returns a surface backed by a width×height image cleared to white.
func New(width, height int, opts ...Option) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid size %dx%d", width, height)
	}
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	s := &Surface{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		dpi:   DefaultDPI,
		bg:    color.White,
		fonts: fonts,
		faces: make(map[render.Font]font.Face),
		z:     vector.NewRasterizer(width, height),
	}
	for _, opt := range opts {
		opt(s)
	}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.bg), image.Point{}, draw.Src)
	s.SetFont(render.BodyFont)
	return s, nil
}

// RGBA returns the image drawn so far.
func (s *Surface) RGBA() *image.RGBA {
	return s.img
}

func (s *Surface) face(f render.Font) font.Face {
	if face, ok := s.faces[f]; ok {
		return face
	}
	otf := s.fonts.regular
	if f.Bold {
		otf = s.fonts.bold
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     s.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		// Sizes come from render's fixed font table; NewFace only fails on
		// non-positive sizes.
		face, _ = opentype.NewFace(otf, &opentype.FaceOptions{Size: 8, DPI: s.dpi})
	}
	s.faces[f] = face
	return face
}

// SetFont selects the font for subsequent text calls.
func (s *Surface) SetFont(f render.Font) {
	s.font = f
}

// px converts the current font size from points to pixels.
func (s *Surface) px() float64 {
	return s.font.Size * s.dpi / 72
}

// Text draws str with its baseline at (x, y).
func (s *Surface) Text(x, y float64, str string) {
	d := font.Drawer{
		Dst:  s.img,
		Src:  image.Black,
		Face: s.face(s.font),
		Dot:  point26(s.origin.X+x, s.origin.Y+y),
	}
	d.DrawString(str)
}

func point26(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))}
}

func (s *Surface) width(face font.Face, str string) float64 {
	return float64(font.MeasureString(face, str)) / 64
}

// wrap breaks str into lines no wider than w. Explicit newlines are kept and
// a single word wider than w gets a line of its own.
func (s *Surface) wrap(str string, w float64) []string {
	if str == "" {
		return nil
	}
	face := s.face(s.font)
	var lines []string
	for _, para := range strings.Split(str, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, word := range words[1:] {
			if next := cur + " " + word; s.width(face, next) <= w {
				cur = next
				continue
			}
			lines = append(lines, cur)
			cur = word
		}
		lines = append(lines, cur)
	}
	return lines
}

// TextBox word-wraps str inside r, top aligned, dropping lines that do not fit whole.
func (s *Surface) TextBox(r model.Rect, str string, align render.Align) {
	face := s.face(s.font)
	lh := s.px() * lineFactor
	for i, line := range s.wrap(str, r.W) {
		if float64(i+1)*lh > r.H+1e-6 {
			break
		}
		x := r.X
		switch align {
		case render.AlignCenter:
			x += (r.W - s.width(face, line)) / 2
		case render.AlignRight:
			x += r.W - s.width(face, line)
		}
		s.Text(x, r.Y+float64(i)*lh+ascent*s.px(), line)
	}
}

// MeasureWrappedHeight returns the height of str wrapped at width in the current font.
func (s *Surface) MeasureWrappedHeight(str string, width float64) float64 {
	return float64(len(s.wrap(str, width))) * s.px() * lineFactor
}

func (s *Surface) rect(r model.Rect) image.Rectangle {
	x0 := int(math.Round(s.origin.X + r.X))
	y0 := int(math.Round(s.origin.Y + r.Y))
	x1 := int(math.Round(s.origin.X + r.X + r.W))
	y1 := int(math.Round(s.origin.Y + r.Y + r.H))
	return image.Rect(x0, y0, x1, y1)
}

// FillRect paints r with c.
func (s *Surface) FillRect(r model.Rect, c model.Color) {
	draw.Draw(s.img, s.rect(r), image.NewUniform(c.RGBA()), image.Point{}, draw.Over)
}

// StrokeRect outlines r with c, dashed when asked.
func (s *Surface) StrokeRect(r model.Rect, c model.Color, width float64, dashed bool) {
	src := image.NewUniform(c.RGBA())
	edges := [][4]float64{
		{r.X, r.Y, r.X + r.W, r.Y},
		{r.X + r.W, r.Y, r.X + r.W, r.Y + r.H},
		{r.X + r.W, r.Y + r.H, r.X, r.Y + r.H},
		{r.X, r.Y + r.H, r.X, r.Y},
	}
	for _, e := range edges {
		if !dashed {
			s.stroke(e[0], e[1], e[2], e[3], width, src)
			continue
		}
		length := math.Hypot(e[2]-e[0], e[3]-e[1])
		if length == 0 {
			continue
		}
		ux, uy := (e[2]-e[0])/length, (e[3]-e[1])/length
		for t := 0.0; t < length; t += dashLen + gapLen {
			end := math.Min(t+dashLen, length)
			s.stroke(e[0]+ux*t, e[1]+uy*t, e[0]+ux*end, e[1]+uy*end, width, src)
		}
	}
}

// Line draws a black segment of the given width.
func (s *Surface) Line(x1, y1, x2, y2, width float64) {
	s.stroke(x1, y1, x2, y2, width, image.Black)
}

// stroke fills the quadrilateral covering a segment of the given width.
func (s *Surface) stroke(x1, y1, x2, y2, width float64, src image.Image) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	width = math.Max(width, 1)
	nx, ny := -dy/length*width/2, dx/length*width/2
	ox, oy := s.origin.X, s.origin.Y

	b := s.img.Bounds()
	s.z.Reset(b.Dx(), b.Dy())
	s.z.MoveTo(float32(ox+x1+nx), float32(oy+y1+ny))
	s.z.LineTo(float32(ox+x2+nx), float32(oy+y2+ny))
	s.z.LineTo(float32(ox+x2-nx), float32(oy+y2-ny))
	s.z.LineTo(float32(ox+x1-nx), float32(oy+y1-ny))
	s.z.ClosePath()
	s.z.Draw(s.img, b, src, image.Point{})
}

// Image scales img into r. Barcodes are scaled without interpolation so
// their modules stay sharp.
func (s *Surface) Image(key string, img image.Image, r model.Rect) {
	var scaler draw.Scaler = draw.CatmullRom
	if strings.HasPrefix(key, "barcode:") {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(s.img, s.rect(r), img, img.Bounds(), draw.Over, nil)
}
