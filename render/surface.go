// Package render paints invoice pages onto a drawing Surface.
//
// One routine, Page, serves every output: the PDF writer, the preview bitmap
// and the editor canvas. Callers pick a Surface and a target size; all
// geometry comes from a layout.Plan built for that size.
package render

import (
	"image"

	"github.com/lvillar/invoicegen/layout"
	"github.com/lvillar/invoicegen/model"
)

// Align is the horizontal alignment of text inside a box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Font selects the face used by subsequent text calls. Size is in points;
// surfaces convert it to their own units.
type Font struct {
	Size float64
	Bold bool
}

// Invoice fonts.
var (
	HeaderFont = Font{Size: 10, Bold: true}
	BodyFont   = Font{Size: 8}
	SmallFont  = Font{Size: 7}
)

// Surface is a 2D drawing target. Coordinates are target units with the
// origin at the top-left corner of the page content area.
type Surface interface {
	SetFont(f Font)
	// Text draws s with its baseline at y.
	Text(x, y float64, s string)
	// TextBox word-wraps s inside r, top aligned. Lines that do not fit
	// entirely inside r are not drawn.
	TextBox(r model.Rect, s string, align Align)
	FillRect(r model.Rect, c model.Color)
	StrokeRect(r model.Rect, c model.Color, width float64, dashed bool)
	Line(x1, y1, x2, y2, width float64)
	// Image draws img scaled into r. Key identifies the image so backends
	// can register it once.
	Image(key string, img image.Image, r model.Rect)
	// MeasureWrappedHeight returns the height of s word-wrapped at width
	// in the current font.
	MeasureWrappedHeight(s string, width float64) float64
}

// BodyMeasurer measures line-item descriptions on s with the body font.
func BodyMeasurer(s Surface) layout.Measurer {
	return layout.MeasureFunc(func(text string, width float64) float64 {
		s.SetFont(BodyFont)
		return s.MeasureWrappedHeight(text, width)
	})
}
