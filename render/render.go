package render

import (
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/lvillar/invoicegen/highlight"
	"github.com/lvillar/invoicegen/layout"
	"github.com/lvillar/invoicegen/model"
)

// Input is everything besides the plan that a page render needs. It is a
// snapshot: Page never modifies it.
type Input struct {
	Order    model.Order
	Template model.Template
	Rules    []model.HighlightRule
	Logo     image.Image // nil when there is no usable logo
	Barcode  image.Image // nil when the template has no barcode
}

// Column header labels.
const (
	labelQty         = "Qty"
	labelDescription = "Description"
	labelUnitPrice   = "Unit Price"
	labelLineTotal   = "Line Total"
)

// Billing block line offsets below the "Bill To:" baseline, logical units.
const (
	billingNameOffset    = 20
	billingAddressOffset = 35
	billingCityOffset    = 50
)

// Totals block geometry, logical units.
const (
	totalsLabelOffset = 150 // label box left edge, left of the value anchor
	totalsLabelWidth  = 130
	totalsValueWidth  = 80
	highlightInset    = 3
	ruleWidth         = 2
)

// Barcodes may be drawn up to this many times their pixel size.
const barcodeMaxZoom = 4

// Page paints page index of plan onto s. Drawing order is logo, barcode,
// order header, billing block (first page), column headers and rule, line
// items, then totals and footer (last page).
func Page(s Surface, in Input, plan layout.Plan, index int) error {
	if index < 0 || index >= len(plan.Pages) {
		return fmt.Errorf("render: page %d out of range [0,%d)", index, len(plan.Pages))
	}
	pg := plan.Pages[index]
	tpl := in.Template
	sx, sy := plan.ScaleX, plan.ScaleY

	if in.Logo != nil {
		r := scaleRect(tpl.Logo, sx, sy)
		b := in.Logo.Bounds()
		s.Image("logo", in.Logo, FitImage(b.Dx(), b.Dy(), r))
	}
	if in.Barcode != nil && tpl.Barcode.Kind != model.BarcodeNone && !tpl.Barcode.Rect.Empty() {
		r := scaleRect(tpl.Barcode.Rect, sx, sy)
		b := in.Barcode.Bounds()
		s.Image("barcode:"+in.Order.ID, in.Barcode, FitImage(b.Dx()*barcodeMaxZoom, b.Dy()*barcodeMaxZoom, r))
	}

	s.SetFont(HeaderFont)
	if pg.Continued {
		s.Text(tpl.OrderNumber.X*sx, pg.HeaderY, fmt.Sprintf("Order %s (continued)", in.Order.ID))
	} else {
		s.Text(tpl.OrderNumber.X*sx, pg.HeaderY, "Order "+in.Order.ID)
		if in.Order.HasDate() {
			s.Text(tpl.Date.X*sx, tpl.Date.Y*sy, "Date: "+in.Order.FormattedDate())
		}
		drawBilling(s, in.Order, tpl, sx, sy)
	}

	drawColumnHeaders(s, tpl, pg, sx, sy)
	drawRows(s, in, pg, sx, sy)

	if pg.Last {
		drawTotals(s, in.Order, tpl, pg.Totals, sx, sy)
		drawFooter(s, tpl, pg.Footer)
	}
	return nil
}

func drawBilling(s Surface, o model.Order, tpl model.Template, sx, sy float64) {
	x, y := tpl.Billing.X*sx, tpl.Billing.Y*sy
	s.SetFont(BodyFont)
	s.Text(x, y, "Bill To:")
	s.Text(x, y+billingNameOffset*sy, o.BillingName)
	s.Text(x, y+billingAddressOffset*sy, o.BillingAddress())
	s.Text(x, y+billingCityOffset*sy, o.CityStateZip())
}

type columns struct {
	table, qty, desc, price, total, descWidth, width float64
}

func columnsFor(tpl model.Template, sx float64) columns {
	x := tpl.TableStart.X * sx
	c := tpl.Columns
	return columns{
		table:     x,
		qty:       x + c.QuantityX*sx,
		desc:      x + c.DescriptionX*sx,
		price:     x + c.UnitPriceX*sx,
		total:     x + c.LineTotalX*sx,
		descWidth: c.DescriptionWidth * sx,
		width:     c.TableWidth * sx,
	}
}

func drawColumnHeaders(s Surface, tpl model.Template, pg layout.Page, sx, sy float64) {
	c := columnsFor(tpl, sx)
	s.SetFont(HeaderFont)
	s.Text(c.qty, pg.ColumnsY, labelQty)
	s.Text(c.desc, pg.ColumnsY, labelDescription)
	s.Text(c.price, pg.ColumnsY, labelUnitPrice)
	s.Text(c.total, pg.ColumnsY, labelLineTotal)
	s.Line(c.table, pg.RuleY, c.table+c.width, pg.RuleY, ruleWidth*sy)
}

func drawRows(s Surface, in Input, pg layout.Page, sx, sy float64) {
	c := columnsFor(in.Template, sx)
	s.SetFont(BodyFont)
	for _, row := range pg.Rows {
		li := in.Order.LineItems[row.Item]
		if bg, ok := highlight.Resolve(li.Description, in.Rules); ok {
			s.FillRect(model.Rect{X: c.table - highlightInset*sx, Y: row.Top, W: c.width, H: row.Height}, bg)
		}
		baseline := row.Top + row.Height/2
		s.Text(c.qty, baseline, strconv.Itoa(li.Quantity))
		s.Text(c.price, baseline, model.FormatMoney(li.UnitPrice))
		s.Text(c.total, baseline, model.FormatMoney(li.LineTotal()))
		s.TextBox(model.Rect{X: c.desc, Y: row.Top, W: c.descWidth, H: row.Height}, li.Description, AlignLeft)
	}
}

func drawTotals(s Surface, o model.Order, tpl model.Template, t layout.Totals, sx, sy float64) {
	line := func(anchor model.Point, y float64, label, value string) {
		valueX := anchor.X * sx
		labelX := valueX - totalsLabelOffset*sx
		s.TextBox(model.Rect{X: labelX, Y: y, W: totalsLabelWidth * sx, H: t.LineHeight}, label, AlignRight)
		s.TextBox(model.Rect{X: valueX, Y: y, W: totalsValueWidth * sx, H: t.LineHeight}, value, AlignCenter)
	}

	s.SetFont(BodyFont)
	line(tpl.Subtotal, t.SubtotalY, "Subtotal:", model.FormatMoney(o.Subtotal))
	line(tpl.Tax, t.TaxY, "Tax:", model.FormatMoney(o.Taxes))

	lx, vx := tpl.Total.X*sx-totalsLabelOffset*sx, tpl.Total.X*sx
	s.Line(lx, t.RuleY, vx+totalsValueWidth*sx, t.RuleY, ruleWidth*sy)

	s.SetFont(HeaderFont)
	line(tpl.Total, t.TotalY, "Total:", model.FormatMoney(o.Total))
}

func drawFooter(s Surface, tpl model.Template, f layout.Footer) {
	s.SetFont(BodyFont)
	s.TextBox(f.ThankYou, tpl.ThankYouText, AlignLeft)
	s.SetFont(SmallFont)
	s.TextBox(f.Policy, tpl.PolicyText, AlignLeft)
}

func scaleRect(r model.Rect, sx, sy float64) model.Rect {
	return model.Rect{X: r.X * sx, Y: r.Y * sy, W: r.W * sx, H: r.H * sy}
}

// FitImage returns the largest rectangle with the aspect ratio of a w×h
// image that fits inside r, centered in r. The result is never larger than
// w×h target units.
func FitImage(w, h int, r model.Rect) model.Rect {
	if w <= 0 || h <= 0 || r.Empty() {
		return model.Rect{X: r.X + r.W/2, Y: r.Y + r.H/2}
	}
	k := math.Min(r.W/float64(w), r.H/float64(h))
	k = math.Min(k, 1)
	fw, fh := float64(w)*k, float64(h)*k
	c := r.Center()
	return model.Rect{X: c.X - fw/2, Y: c.Y - fh/2, W: fw, H: fh}
}
