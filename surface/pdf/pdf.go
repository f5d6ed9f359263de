// Package pdf implements render.Surface on top of go-pdf/fpdf.
//
// Pages are US Letter in points with half-inch margins, so the drawable area
// is 540×720 target units. An optional letterhead PDF page is imported once
// and placed under every page.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	"go.uber.org/zap"

	"github.com/lvillar/invoicegen/model"
	"github.com/lvillar/invoicegen/render"
)

// Letter page geometry in points.
const (
	PageWidth  = 612.0
	PageHeight = 792.0
	Margin     = 36.0

	ContentWidth  = PageWidth - 2*Margin
	ContentHeight = PageHeight - 2*Margin
)

const (
	fontFamily = "Helvetica"
	// lineFactor is the distance between wrapped lines as a multiple of the
	// font size.
	lineFactor = 1.0
	ascent     = 0.8
)

// Surface draws invoice pages into a PDF document.
// A Surface is not safe for concurrent use.
type Surface struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	font   render.Font
	images map[string]bool

	letterheadPath string
	importer       *gofpdi.Importer
	letterhead     int
	watermark      *Watermark
	log            *zap.Logger
}

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the logger used for non-fatal problems.
func WithLogger(l *zap.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLetterhead places page 1 of the PDF at path under every page. An
// unreadable file is logged and ignored.
func WithLetterhead(path string) Option {
	return func(s *Surface) {
		s.letterheadPath = path
	}
}

// WithTitle sets the document title metadata.
func WithTitle(title string) Option {
	return func(s *Surface) {
		s.pdf.SetTitle(title, true)
	}
}

// New creates an empty document. Call AddPage before drawing.
func New(opts ...Option) *Surface {
	p := fpdf.New("P", "pt", "Letter", "")
	p.SetMargins(Margin, Margin, Margin)
	p.SetAutoPageBreak(false, 0)
	p.SetCreator("invoicegen", true)

	s := &Surface{
		pdf:        p,
		tr:         p.UnicodeTranslatorFromDescriptor(""),
		images:     make(map[string]bool),
		letterhead: -1,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.letterheadPath != "" {
		s.loadLetterhead(s.letterheadPath)
	}
	s.SetFont(render.BodyFont)
	return s
}

func (s *Surface) loadLetterhead(path string) {
	if _, err := os.Stat(path); err != nil {
		s.log.Warn("letterhead not readable", zap.String("path", path), zap.Error(err))
		return
	}
	defer func() {
		// gofpdi panics on malformed input.
		if r := recover(); r != nil {
			s.log.Warn("letterhead import failed", zap.String("path", path), zap.Any("panic", r))
			s.importer = nil
			s.letterhead = -1
		}
	}()
	s.importer = gofpdi.NewImporter()
	s.letterhead = s.importer.ImportPage(s.pdf, path, 1, "/MediaBox")
}

// Size returns the drawable area in target units.
func (s *Surface) Size() (w, h float64) {
	return ContentWidth, ContentHeight
}

// AddPage starts a new page and draws the letterhead and watermark under
// it.
func (s *Surface) AddPage() {
	s.pdf.AddPage()
	if s.importer != nil && s.letterhead >= 0 {
		s.importer.UseImportedTemplate(s.pdf, s.letterhead, 0, 0, PageWidth, PageHeight)
	}
	s.drawWatermark()
	s.applyFont()
}

// PageCount returns the number of pages added so far.
func (s *Surface) PageCount() int {
	return s.pdf.PageCount()
}

// Err returns the first error recorded by the PDF backend.
func (s *Surface) Err() error {
	if s.pdf.Err() {
		return s.pdf.Error()
	}
	return nil
}

// Output writes the finished document to w.
func (s *Surface) Output(w io.Writer) error {
	if err := s.Err(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	if err := s.pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: output: %w", err)
	}
	return nil
}

// SetFont selects the font for subsequent text calls.
func (s *Surface) SetFont(f render.Font) {
	s.font = f
	s.applyFont()
}

func (s *Surface) applyFont() {
	style := ""
	if s.font.Bold {
		style = "B"
	}
	s.pdf.SetFont(fontFamily, style, s.font.Size)
	s.pdf.SetTextColor(0, 0, 0)
}

// Text draws str with its baseline at (x, y).
func (s *Surface) Text(x, y float64, str string) {
	s.pdf.Text(Margin+x, Margin+y, s.tr(str))
}

func (s *Surface) lineHeight() float64 {
	return s.font.Size * lineFactor
}

func (s *Surface) wrap(str string, width float64) [][]byte {
	if str == "" {
		return nil
	}
	return s.pdf.SplitLines([]byte(s.tr(str)), width)
}

// TextBox word-wraps str inside r, top aligned, dropping lines that do not fit whole.
func (s *Surface) TextBox(r model.Rect, str string, align render.Align) {
	lh := s.lineHeight()
	for i, line := range s.wrap(str, r.W) {
		if float64(i+1)*lh > r.H+1e-6 {
			break
		}
		x := r.X
		switch align {
		case render.AlignCenter:
			x += (r.W - s.pdf.GetStringWidth(string(line))) / 2
		case render.AlignRight:
			x += r.W - s.pdf.GetStringWidth(string(line))
		}
		s.pdf.Text(Margin+x, Margin+r.Y+float64(i)*lh+ascent*s.font.Size, string(line))
	}
}

// MeasureWrappedHeight returns the height of str wrapped at width in the current font.
func (s *Surface) MeasureWrappedHeight(str string, width float64) float64 {
	return float64(len(s.wrap(str, width))) * s.lineHeight()
}

// FillRect paints r with c.
func (s *Surface) FillRect(r model.Rect, c model.Color) {
	s.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	s.pdf.Rect(Margin+r.X, Margin+r.Y, r.W, r.H, "F")
}

// StrokeRect outlines r with c, dashed when asked.
func (s *Surface) StrokeRect(r model.Rect, c model.Color, width float64, dashed bool) {
	s.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	s.pdf.SetLineWidth(width)
	if dashed {
		s.pdf.SetDashPattern([]float64{3, 2}, 0)
	}
	s.pdf.Rect(Margin+r.X, Margin+r.Y, r.W, r.H, "D")
	if dashed {
		s.pdf.SetDashPattern([]float64{}, 0)
	}
	s.pdf.SetDrawColor(0, 0, 0)
}

// Line draws a black segment of the given width.
func (s *Surface) Line(x1, y1, x2, y2, width float64) {
	s.pdf.SetDrawColor(0, 0, 0)
	s.pdf.SetLineWidth(width)
	s.pdf.Line(Margin+x1, Margin+y1, Margin+x2, Margin+y2)
}

// Image registers img under key on first use and places it in r.
func (s *Surface) Image(key string, img image.Image, r model.Rect) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	if !s.images[key] {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			s.log.Warn("image encode failed", zap.String("image", key), zap.Error(err))
			return
		}
		s.pdf.RegisterImageOptionsReader(key, opts, &buf)
		s.images[key] = true
	}
	s.pdf.ImageOptions(key, Margin+r.X, Margin+r.Y, r.W, r.H, false, opts, 0, "")
}
