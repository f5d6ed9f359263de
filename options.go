package invoicegen

import (
	"go.uber.org/zap"

	"github.com/lvillar/invoicegen/layout"
)

// Option is a functional option for configuring a Generator via New.
type Option func(*config)

type config struct {
	log         *zap.Logger
	mode        layout.Mode
	progress    func(done, total int)
	previewW    int
	previewH    int
	title       string
	watermark   string
	pageNumbers bool
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMode selects how orders are split into pages.
// Use layout.ModeAuto (default), layout.ModeSinglePage, layout.ModePaginate
// or layout.ModeEstimate.
func WithMode(m layout.Mode) Option {
	return func(c *config) {
		c.mode = m
	}
}

// WithProgress registers fn to be called after each order is rendered.
func WithProgress(fn func(done, total int)) Option {
	return func(c *config) {
		c.progress = fn
	}
}

// WithPreviewSize sets the size in pixels of Preview bitmaps.
// The default is 850×1100, a letter page at 100 dpi.
func WithPreviewSize(w, h int) Option {
	return func(c *config) {
		if w > 0 && h > 0 {
			c.previewW, c.previewH = w, h
		}
	}
}

// WithTitle sets the PDF title metadata.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithWatermark stamps text diagonally across every PDF page.
func WithWatermark(text string) Option {
	return func(c *config) {
		c.watermark = text
	}
}

// WithPageNumbers prints "Page n of m" under every page of invoices that
// span more than one page.
func WithPageNumbers(on bool) Option {
	return func(c *config) {
		c.pageNumbers = on
	}
}
