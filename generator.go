// Package invoicegen renders order invoices as PDF documents and preview
// bitmaps.
//
// A Generator owns the current template, its decoded logo and the highlight
// rules. Every order is laid out by the layout package and painted by
// render.Page, so the PDF, the preview and the template editor canvas all
// share one geometry.
//
// Example:
//
//	orders, _ := csvimport.ReadFile("orders.csv")
//	g := invoicegen.New(invoicegen.WithLogger(logger))
//	if err := g.GenerateFile(ctx, "invoices.pdf", orders); err != nil {
//	    log.Fatal(err)
//	}
package invoicegen

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lvillar/invoicegen/highlight"
	"github.com/lvillar/invoicegen/layout"
	"github.com/lvillar/invoicegen/model"
	"github.com/lvillar/invoicegen/render"
	"github.com/lvillar/invoicegen/surface/pdf"
	"github.com/lvillar/invoicegen/surface/raster"
)

// Default preview size: a letter page at 100 dpi.
const (
	DefaultPreviewWidth  = 850
	DefaultPreviewHeight = 1100
)

// Generator renders invoices. It is not safe for concurrent use; callers
// that share one must serialize SetTemplate and SetHighlightRules with the
// render calls.
type Generator struct {
	cfg   config
	log   *zap.Logger
	tpl   model.Template
	logo  image.Image
	rules []model.HighlightRule
}

// New returns a generator using the default template and highlight rules.
func New(opts ...Option) *Generator {
	cfg := config{
		log:      zap.NewNop(),
		mode:     layout.ModeAuto,
		previewW: DefaultPreviewWidth,
		previewH: DefaultPreviewHeight,
		title:    "Invoices",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Generator{
		cfg:   cfg,
		log:   cfg.log,
		tpl:   model.DefaultTemplate(),
		rules: highlight.DefaultRules(),
	}
}

// Template returns a snapshot of the current template.
func (g *Generator) Template() model.Template {
	return g.tpl
}

// SetTemplate replaces the template and loads its logo. A logo that cannot
// be read or decoded is logged and left out of every page; it is not an
// error.
func (g *Generator) SetTemplate(tpl model.Template) error {
	if err := validateTemplate(tpl); err != nil {
		return newError("SetTemplate", err)
	}
	g.tpl = tpl
	g.logo = nil
	if tpl.LogoPath == "" {
		return nil
	}
	img, err := render.LoadImage(tpl.LogoPath)
	if err != nil {
		g.log.Warn("logo not loaded", zap.String("path", tpl.LogoPath), zap.Error(err))
		return nil
	}
	g.logo = img
	return nil
}

func validateTemplate(tpl model.Template) error {
	switch {
	case tpl.RowHeight <= 0:
		return fmt.Errorf("%w: row height %v", ErrInvalidTemplate, tpl.RowHeight)
	case tpl.Logo.W < 0 || tpl.Logo.H < 0:
		return fmt.Errorf("%w: logo size %vx%v", ErrInvalidTemplate, tpl.Logo.W, tpl.Logo.H)
	case tpl.Columns.DescriptionWidth <= 0 || tpl.Columns.TableWidth <= 0:
		return fmt.Errorf("%w: table columns %+v", ErrInvalidTemplate, tpl.Columns)
	}
	switch tpl.Barcode.Kind {
	case model.BarcodeNone, model.BarcodeCode128, model.BarcodePDF417:
	default:
		return fmt.Errorf("%w: barcode %q", ErrInvalidTemplate, tpl.Barcode.Kind)
	}
	return nil
}

// SetHighlightRules replaces the highlight rules. The slice is copied; the
// new rules apply from the next render.
func (g *Generator) SetHighlightRules(rules []model.HighlightRule) {
	g.rules = append([]model.HighlightRule(nil), rules...)
}

// HighlightRules returns a copy of the current rules.
func (g *Generator) HighlightRules() []model.HighlightRule {
	return append([]model.HighlightRule(nil), g.rules...)
}

func (g *Generator) input(o model.Order, log *zap.Logger) render.Input {
	in := render.Input{
		Order:    o,
		Template: g.tpl,
		Rules:    g.rules,
		Logo:     g.logo,
	}
	if kind := g.tpl.Barcode.Kind; kind != model.BarcodeNone {
		img, err := render.EncodeBarcode(kind, o.ID)
		if err != nil {
			log.Warn("barcode not drawn", zap.String("order_id", o.ID), zap.Error(err))
		} else {
			in.Barcode = img
		}
	}
	return in
}

// Generate writes one PDF holding every order in the given order. Each
// order starts on a new page. Cancellation is checked between orders.
func (g *Generator) Generate(ctx context.Context, w io.Writer, orders []model.Order) error {
	if len(orders) == 0 {
		return newError("Generate", ErrNoOrders)
	}
	if w == nil {
		return newError("Generate", ErrNoSurface)
	}
	log := g.log.With(zap.String("run_id", uuid.NewString()))

	opts := []pdf.Option{pdf.WithLogger(log), pdf.WithTitle(g.cfg.title)}
	if g.tpl.LetterheadPath != "" {
		opts = append(opts, pdf.WithLetterhead(g.tpl.LetterheadPath))
	}
	if g.cfg.watermark != "" {
		opts = append(opts, pdf.WithWatermark(pdf.Watermark{Text: g.cfg.watermark}))
	}
	s := pdf.New(opts...)
	m := render.BodyMeasurer(s)

	for i, o := range orders {
		if err := ctx.Err(); err != nil {
			return newError("Generate", err)
		}
		plan := layout.PlanFor(o, g.tpl, pdf.ContentWidth, pdf.ContentHeight, m, g.cfg.mode)
		in := g.input(o, log)
		for p := range plan.Pages {
			s.AddPage()
			if err := render.Page(s, in, plan, p); err != nil {
				return newError("Generate", err)
			}
			if g.cfg.pageNumbers && len(plan.Pages) > 1 {
				s.PageNumber(p+1, len(plan.Pages))
			}
		}
		log.Debug("order rendered",
			zap.String("order_id", o.ID),
			zap.Int("pages", len(plan.Pages)),
			zap.Stringer("mode", plan.Mode),
		)
		if g.cfg.progress != nil {
			g.cfg.progress(i+1, len(orders))
		}
	}

	if err := s.Output(w); err != nil {
		return newError("Generate", err)
	}
	log.Info("invoices generated", zap.Int("orders", len(orders)), zap.Int("pages", s.PageCount()))
	return nil
}

// GenerateFile writes the PDF to path. The document is written to a
// temporary file in the same directory and renamed into place, so a failed
// run never leaves a partial file at path.
func (g *Generator) GenerateFile(ctx context.Context, path string, orders []model.Order) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".invoices-*.pdf")
	if err != nil {
		return newError("GenerateFile", fmt.Errorf("%w: %v", ErrNoSurface, err))
	}
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}

	if err := g.Generate(ctx, tmp, orders); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return newError("GenerateFile", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return newError("GenerateFile", err)
	}
	g.log.Info("invoices written", zap.String("path", path))
	return nil
}

// GenerateSplit writes one PDF per order into dir and returns the paths in
// order. Files are named invoice_<order id>.pdf with characters outside
// [A-Za-z0-9_-] replaced by underscores.
func (g *Generator) GenerateSplit(ctx context.Context, dir string, orders []model.Order) ([]string, error) {
	if len(orders) == 0 {
		return nil, newError("GenerateSplit", ErrNoOrders)
	}
	if info, err := os.Stat(dir); err != nil {
		return nil, newError("GenerateSplit", fmt.Errorf("%w: %v", ErrNoSurface, err))
	} else if !info.IsDir() {
		return nil, newError("GenerateSplit", fmt.Errorf("%w: %s is not a directory", ErrNoSurface, dir))
	}

	progress := g.cfg.progress
	g.cfg.progress = nil
	defer func() { g.cfg.progress = progress }()

	paths := make([]string, 0, len(orders))
	for i, o := range orders {
		if err := ctx.Err(); err != nil {
			return paths, newError("GenerateSplit", err)
		}
		path := filepath.Join(dir, InvoiceFileName(o.ID))
		if err := g.GenerateFile(ctx, path, []model.Order{o}); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		if progress != nil {
			progress(i+1, len(orders))
		}
	}
	return paths, nil
}

// InvoiceFileName returns the file name GenerateSplit uses for an order.
func InvoiceFileName(orderID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, orderID)
	return "invoice_" + safe + ".pdf"
}

// Preview renders the first page of o as a bitmap of the configured
// preview size.
func (g *Generator) Preview(o model.Order) (*image.RGBA, error) {
	return g.PreviewPage(o, 0)
}

// PreviewPage renders page index of o. The bitmap keeps the PDF margins, so
// a preview and the printed page line up.
func (g *Generator) PreviewPage(o model.Order, index int) (*image.RGBA, error) {
	w, h := g.cfg.previewW, g.cfg.previewH
	mx := float64(w) * pdf.Margin / pdf.PageWidth
	my := float64(h) * pdf.Margin / pdf.PageHeight
	cw, ch := float64(w)-2*mx, float64(h)-2*my

	s, err := raster.New(w, h, raster.WithOrigin(mx, my), raster.WithDPI(cw/pdf.ContentWidth*72))
	if err != nil {
		return nil, newError("Preview", fmt.Errorf("%w: %v", ErrNoSurface, err))
	}
	plan := layout.PlanFor(o, g.tpl, cw, ch, render.BodyMeasurer(s), g.cfg.mode)
	if err := render.Page(s, g.input(o, g.log), plan, index); err != nil {
		return nil, newError("Preview", err)
	}
	return s.RGBA(), nil
}

// PlanFor returns the plan Generate would use for o, expressed for a target
// of w×h units. Text is measured with the PDF fonts.
func (g *Generator) PlanFor(o model.Order, w, h float64) layout.Plan {
	m := render.BodyMeasurer(pdf.New())
	k := w / pdf.ContentWidth
	scaled := layout.MeasureFunc(func(text string, width float64) float64 {
		return m.MeasureWrappedHeight(text, width/k) * k
	})
	return layout.PlanFor(o, g.tpl, w, h, scaled, g.cfg.mode)
}
