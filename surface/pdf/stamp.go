package pdf

import (
	"fmt"

	"github.com/lvillar/invoicegen/model"
)

// Watermark is rotated text drawn across the middle of every page, under
// the invoice content.
type Watermark struct {
	Text     string
	FontSize float64     // points (default: 60)
	Color    model.Color // default: light gray
	Opacity  float64     // 0.0 to 1.0 (default: 0.3)
	Angle    float64     // degrees counter-clockwise (default: 45)
}

func (wm Watermark) withDefaults() Watermark {
	if wm.FontSize == 0 {
		wm.FontSize = 60
	}
	if wm.Opacity == 0 {
		wm.Opacity = 0.3
	}
	if wm.Angle == 0 {
		wm.Angle = 45
	}
	if wm.Color == (model.Color{}) {
		wm.Color = model.RGB(200, 200, 200)
	}
	return wm
}

// WithWatermark stamps wm on every page. An empty text disables it.
func WithWatermark(wm Watermark) Option {
	return func(s *Surface) {
		if wm.Text == "" {
			s.watermark = nil
			return
		}
		wm = wm.withDefaults()
		s.watermark = &wm
	}
}

func (s *Surface) drawWatermark() {
	wm := s.watermark
	if wm == nil {
		return
	}
	text := s.tr(wm.Text)
	s.pdf.SetFont(fontFamily, "B", wm.FontSize)
	s.pdf.SetTextColor(int(wm.Color.R), int(wm.Color.G), int(wm.Color.B))
	s.pdf.SetAlpha(wm.Opacity, "Normal")

	cx, cy := PageWidth/2, PageHeight/2
	s.pdf.TransformBegin()
	s.pdf.TransformRotate(wm.Angle, cx, cy)
	s.pdf.Text(cx-s.pdf.GetStringWidth(text)/2, cy+wm.FontSize/3, text)
	s.pdf.TransformEnd()

	s.pdf.SetAlpha(1.0, "Normal")
}

// pageNumberSize is the font size of page numbers, in points.
const pageNumberSize = 7

// PageNumber writes "Page n of total" centered in the bottom margin of the
// current page.
func (s *Surface) PageNumber(n, total int) {
	text := fmt.Sprintf("Page %d of %d", n, total)
	s.pdf.SetFont(fontFamily, "", pageNumberSize)
	s.pdf.SetTextColor(0, 0, 0)
	s.pdf.Text((PageWidth-s.pdf.GetStringWidth(text))/2, PageHeight-Margin/2, text)
	s.applyFont()
}
