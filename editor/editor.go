// Package editor is the interactive template editor model.
//
// It owns the working template, maps pointer positions on a canvas of any
// size to template elements, moves elements as they are dragged, and
// publishes an immutable template snapshot after every change. Canvas
// renders the page through the same routine the PDF writer uses.
//
// An Editor is not safe for concurrent use.
package editor

import (
	"fmt"
	"image"
	"math"

	"go.uber.org/zap"

	"github.com/lvillar/invoicegen/layout"
	"github.com/lvillar/invoicegen/model"
	"github.com/lvillar/invoicegen/render"
)

// Element names a draggable part of the template.
type Element string

const (
	ElementNone        Element = ""
	ElementLogo        Element = "logo"
	ElementBarcode     Element = "barcode"
	ElementOrderNumber Element = "orderNumber"
	ElementDate        Element = "date"
	ElementBilling     Element = "billing"
	ElementTable       Element = "table"
	ElementTotals      Element = "totals"
	ElementFooter      Element = "footer"
)

// Canvas geometry, logical units.
const (
	// PageOrigin is where the page's top-left corner sits on the canvas.
	PageOrigin = 10.0

	fitWidth  = 750.0
	fitHeight = 850.0
	fitMargin = 0.9
	minZoom   = 0.2

	// Sample rows assumed for hot zones when no preview order is set.
	sampleRows = 2
)

// Zoom returns the canvas scale for a widget of w×h pixels.
func Zoom(w, h float64) float64 {
	return math.Max(minZoom, math.Min(w/fitWidth, h/fitHeight)*fitMargin)
}

// Editor holds the working template and the pointer state of a drag.
type Editor struct {
	tpl     model.Template
	preview *model.Order
	rules   []model.HighlightRule

	zoom     float64
	selected Element
	dragging bool
	last     model.Point

	logo     image.Image
	logoPath string

	subs   []subscription
	nextID int

	log *zap.Logger
}

type subscription struct {
	id int
	fn func(model.Template)
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger used for logo load failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTemplate sets the initial template instead of the default one.
func WithTemplate(tpl model.Template) Option {
	return func(e *Editor) {
		e.tpl = tpl
	}
}

// WithSize sets the initial canvas size in pixels.
func WithSize(w, h int) Option {
	return func(e *Editor) {
		e.zoom = Zoom(float64(w), float64(h))
	}
}

// New returns an editor on the default template sized for a 750×850
// pixel canvas.
func New(opts ...Option) *Editor {
	e := &Editor{
		tpl:  model.DefaultTemplate(),
		zoom: Zoom(fitWidth, fitHeight),
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.loadLogo()
	return e
}

// Template returns a snapshot of the working template.
func (e *Editor) Template() model.Template {
	return e.tpl
}

// Subscribe registers fn to receive a snapshot after every template change.
// The returned function removes the subscription.
func (e *Editor) Subscribe(fn func(model.Template)) (unsubscribe func()) {
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

func (e *Editor) publish() {
	snap := e.tpl
	for _, s := range e.subs {
		s.fn(snap)
	}
}

// SetTemplate replaces the working template.
func (e *Editor) SetTemplate(tpl model.Template) {
	e.tpl = tpl
	e.loadLogo()
	e.publish()
}

// SetPreviewOrder sets the order drawn on the canvas and used to size the
// totals and footer hot zones. A nil order restores the sample order.
func (e *Editor) SetPreviewOrder(o *model.Order) {
	if o == nil {
		e.preview = nil
		return
	}
	c := o.Clone()
	e.preview = &c
}

// SetHighlightRules sets the rules used to color canvas rows.
func (e *Editor) SetHighlightRules(rules []model.HighlightRule) {
	e.rules = append([]model.HighlightRule(nil), rules...)
}

// Resize recomputes the zoom for a canvas of w×h pixels.
func (e *Editor) Resize(w, h int) {
	e.zoom = Zoom(float64(w), float64(h))
}

// Zoom returns the current canvas scale.
func (e *Editor) Zoom() float64 {
	return e.zoom
}

// Selected returns the element picked by the last Press.
func (e *Editor) Selected() Element {
	return e.selected
}

// ToLogical converts canvas pixels to template coordinates.
func (e *Editor) ToLogical(px, py float64) model.Point {
	return model.Point{X: px/e.zoom - PageOrigin, Y: py/e.zoom - PageOrigin}
}

// Press selects the element under the pointer and starts dragging it.
func (e *Editor) Press(px, py float64) Element {
	e.selected = e.HitTest(e.ToLogical(px, py))
	e.dragging = e.selected != ElementNone
	e.last = model.Point{X: px, Y: py}
	return e.selected
}

// Move drags the selected element by the pointer delta since the previous
// event.
func (e *Editor) Move(px, py float64) {
	if !e.dragging {
		return
	}
	d := model.Point{X: (px - e.last.X) / e.zoom, Y: (py - e.last.Y) / e.zoom}
	e.last = model.Point{X: px, Y: py}
	if d == (model.Point{}) {
		return
	}
	translate(&e.tpl, e.selected, d)
	e.publish()
}

// Release ends a drag. The selection is kept.
func (e *Editor) Release() {
	e.dragging = false
}

func translate(t *model.Template, el Element, d model.Point) {
	switch el {
	case ElementLogo:
		t.Logo = t.Logo.Translate(d)
	case ElementBarcode:
		t.Barcode.Rect = t.Barcode.Rect.Translate(d)
	case ElementOrderNumber:
		t.OrderNumber = t.OrderNumber.Add(d)
	case ElementDate:
		t.Date = t.Date.Add(d)
	case ElementBilling:
		t.Billing = t.Billing.Add(d)
	case ElementTable:
		t.TableStart = t.TableStart.Add(d)
	case ElementTotals:
		t.Subtotal = t.Subtotal.Add(d)
		t.Tax = t.Tax.Add(d)
		t.Total = t.Total.Add(d)
	case ElementFooter:
		t.ThankYou = t.ThankYou.Add(d)
		t.Policy = t.Policy.Add(d)
	}
}

// SetGeometry positions el from a properties panel. Only the logo and the
// barcode use the size; totals and footer groups move rigidly so that their
// first anchor lands on (r.X, r.Y).
func (e *Editor) SetGeometry(el Element, r model.Rect) error {
	before := e.tpl
	switch el {
	case ElementLogo:
		if r.Empty() {
			return fmt.Errorf("editor: logo size %vx%v", r.W, r.H)
		}
		e.tpl.Logo = r
	case ElementBarcode:
		if r.Empty() {
			return fmt.Errorf("editor: barcode size %vx%v", r.W, r.H)
		}
		e.tpl.Barcode.Rect = r
	case ElementOrderNumber, ElementDate, ElementBilling, ElementTable:
		anchor := anchorOf(e.tpl, el)
		translate(&e.tpl, el, model.Point{X: r.X - anchor.X, Y: r.Y - anchor.Y})
	case ElementTotals:
		translate(&e.tpl, el, model.Point{X: r.X - e.tpl.Subtotal.X, Y: r.Y - e.tpl.Subtotal.Y})
	case ElementFooter:
		translate(&e.tpl, el, model.Point{X: r.X - e.tpl.ThankYou.X, Y: r.Y - e.tpl.ThankYou.Y})
	default:
		return fmt.Errorf("editor: unknown element %q", el)
	}
	if e.tpl != before {
		e.publish()
	}
	return nil
}

func anchorOf(t model.Template, el Element) model.Point {
	switch el {
	case ElementOrderNumber:
		return t.OrderNumber
	case ElementDate:
		return t.Date
	case ElementBilling:
		return t.Billing
	case ElementTable:
		return t.TableStart
	}
	return model.Point{}
}

// SetLogoPath changes the logo file. A file that cannot be loaded leaves the
// canvas showing the logo placeholder.
func (e *Editor) SetLogoPath(path string) {
	if path == e.tpl.LogoPath {
		return
	}
	e.tpl.LogoPath = path
	e.loadLogo()
	e.publish()
}

// SetFooterText changes the thank-you and policy texts.
func (e *Editor) SetFooterText(thankYou, policy string) {
	if thankYou == e.tpl.ThankYouText && policy == e.tpl.PolicyText {
		return
	}
	e.tpl.ThankYouText = thankYou
	e.tpl.PolicyText = policy
	e.publish()
}

// Reset restores the default template, keeping the logo path.
func (e *Editor) Reset() {
	tpl := model.DefaultTemplate()
	tpl.LogoPath = e.tpl.LogoPath
	e.tpl = tpl
	e.selected = ElementNone
	e.dragging = false
	e.publish()
}

func (e *Editor) loadLogo() {
	if e.tpl.LogoPath == e.logoPath {
		return
	}
	e.logoPath = e.tpl.LogoPath
	e.logo = nil
	if e.logoPath == "" {
		return
	}
	img, err := render.LoadImage(e.logoPath)
	if err != nil {
		e.log.Warn("logo not loaded", zap.String("path", e.logoPath), zap.Error(err))
		return
	}
	e.logo = img
}

func (e *Editor) previewOrder() model.Order {
	if e.preview != nil {
		return *e.preview
	}
	return SampleOrder()
}

// HitRect returns the logical hot zone of el.
func (e *Editor) HitRect(el Element) model.Rect {
	t := e.tpl
	switch el {
	case ElementLogo:
		return t.Logo
	case ElementBarcode:
		return t.Barcode.Rect
	case ElementOrderNumber:
		return model.Rect{X: t.OrderNumber.X - 5, Y: t.OrderNumber.Y - 12, W: 150, H: 16}
	case ElementDate:
		return model.Rect{X: t.Date.X - 5, Y: t.Date.Y - 12, W: 120, H: 16}
	case ElementBilling:
		return model.Rect{X: t.Billing.X - 5, Y: t.Billing.Y - 12, W: 200, H: 60}
	case ElementTable:
		return model.Rect{X: t.TableStart.X - 5, Y: t.TableStart.Y - 12, W: 500, H: 16}
	case ElementTotals, ElementFooter:
		n := len(e.previewOrder().LineItems)
		if n == 0 {
			n = sampleRows
		}
		totals, footer := layout.EstimateTotals(t, n)
		if el == ElementFooter {
			return union(footer.ThankYou, footer.Policy)
		}
		left := math.Min(t.Subtotal.X, math.Min(t.Tax.X, t.Total.X)) - totalsLabelOffset
		right := math.Max(t.Subtotal.X, math.Max(t.Tax.X, t.Total.X)) + totalsValueWidth
		return model.Rect{X: left, Y: totals.SubtotalY, W: right - left, H: totals.End - totals.SubtotalY}
	}
	return model.Rect{}
}

// Offsets of the totals label and value boxes from a totals anchor.
const (
	totalsLabelOffset = 150
	totalsValueWidth  = 80
)

func union(a, b model.Rect) model.Rect {
	x0, y0 := math.Min(a.X, b.X), math.Min(a.Y, b.Y)
	x1, y1 := math.Max(a.X+a.W, b.X+b.W), math.Max(a.Y+a.H, b.Y+b.H)
	return model.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// hitOrder is the order elements are tested in; the first hit wins.
var hitOrder = []Element{
	ElementLogo,
	ElementBarcode,
	ElementOrderNumber,
	ElementDate,
	ElementBilling,
	ElementTable,
	ElementTotals,
	ElementFooter,
}

// HitTest returns the element whose hot zone contains the logical point p.
func (e *Editor) HitTest(p model.Point) Element {
	for _, el := range hitOrder {
		if el == ElementBarcode && e.tpl.Barcode.Kind == model.BarcodeNone {
			continue
		}
		if e.HitRect(el).Contains(p) {
			return el
		}
	}
	return ElementNone
}
