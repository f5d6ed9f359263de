package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/lvillar/invoicegen/model"
	"github.com/lvillar/invoicegen/render"
)

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestNewRejectsEmptySize(t *testing.T) {
	if _, err := New(0, 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestFillRectWithOrigin(t *testing.T) {
	s, err := New(100, 100, WithOrigin(10, 20))
	if err != nil {
		t.Fatal(err)
	}
	s.FillRect(model.Rect{X: 0, Y: 0, W: 5, H: 5}, model.RGB(138, 43, 226))

	img := s.RGBA()
	if got := img.RGBAAt(12, 22); got != (color.RGBA{R: 138, G: 43, B: 226, A: 255}) {
		t.Errorf("pixel inside fill = %v", got)
	}
	if !isWhite(img.At(2, 2)) {
		t.Error("fill ignored the origin")
	}
}

func TestTextDrawsPixels(t *testing.T) {
	s, err := New(200, 50)
	if err != nil {
		t.Fatal(err)
	}
	s.SetFont(render.HeaderFont)
	s.Text(5, 30, "Order 1001")

	dark := 0
	b := s.RGBA().Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isWhite(s.RGBA().At(x, y)) {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatal("no pixels drawn")
	}
}

func TestMeasureWrappedHeight(t *testing.T) {
	s, err := New(10, 10, WithDPI(72))
	if err != nil {
		t.Fatal(err)
	}
	s.SetFont(render.BodyFont)

	if h := s.MeasureWrappedHeight("", 100); h != 0 {
		t.Errorf("empty height = %v", h)
	}
	if h := s.MeasureWrappedHeight("Goldenrod", 500); h != 8 {
		t.Errorf("one line at 72 dpi = %v, want 8", h)
	}
	if h := s.MeasureWrappedHeight("a\n\nb", 500); h != 24 {
		t.Errorf("three lines = %v, want 24", h)
	}
	long := "Huckleberry evergreen shrub in a one gallon pot, locally grown"
	if h := s.MeasureWrappedHeight(long, 60); h <= 8 {
		t.Errorf("long text at narrow width = %v, want several lines", h)
	}
}

func TestTextBoxClipsToWholeLines(t *testing.T) {
	s, err := New(300, 100, WithDPI(72))
	if err != nil {
		t.Fatal(err)
	}
	s.SetFont(render.BodyFont)
	// Room for one 8px line only; the second line must not be drawn.
	s.TextBox(model.Rect{X: 0, Y: 0, W: 300, H: 12}, "first\nsecond", render.AlignLeft)

	for y := 13; y < 100; y++ {
		for x := 0; x < 300; x++ {
			if !isWhite(s.RGBA().At(x, y)) {
				t.Fatalf("pixel drawn below the box at (%d,%d)", x, y)
			}
		}
	}
}

func TestImageAndLines(t *testing.T) {
	s, err := New(100, 100)
	if err != nil {
		t.Fatal(err)
	}
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, color.RGBA{B: 255, A: 255})
		}
	}
	s.Image("logo", src, model.Rect{X: 10, Y: 10, W: 20, H: 20})
	if got := s.RGBA().RGBAAt(20, 20); got.B < 200 || got.R > 50 {
		t.Errorf("scaled image pixel = %v", got)
	}

	s.Line(0, 50, 100, 50, 2)
	if isWhite(s.RGBA().At(50, 50)) {
		t.Error("line not drawn")
	}

	s.StrokeRect(model.Rect{X: 60, Y: 60, W: 30, H: 30}, model.Black, 1, true)
	if !isWhite(s.RGBA().At(75, 75)) {
		t.Error("stroke filled the interior")
	}
}
