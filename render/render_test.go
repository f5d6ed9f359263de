package render

import (
	"fmt"
	"image"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lvillar/invoicegen/highlight"
	"github.com/lvillar/invoicegen/layout"
	"github.com/lvillar/invoicegen/model"
)

// op is one recorded drawing call.
type op struct {
	kind string // font, text, box, fill, stroke, line, image
	text string
	x, y float64
	rect model.Rect
	font Font
}

// recorder is a Surface that records calls and measures text as one
// lineHeight per "\n"-separated line.
type recorder struct {
	ops        []op
	font       Font
	lineHeight float64
}

func (r *recorder) SetFont(f Font) {
	r.font = f
	r.ops = append(r.ops, op{kind: "font", font: f})
}

func (r *recorder) Text(x, y float64, s string) {
	r.ops = append(r.ops, op{kind: "text", text: s, x: x, y: y, font: r.font})
}

func (r *recorder) TextBox(rect model.Rect, s string, _ Align) {
	r.ops = append(r.ops, op{kind: "box", text: s, rect: rect, font: r.font})
}

func (r *recorder) FillRect(rect model.Rect, c model.Color) {
	r.ops = append(r.ops, op{kind: "fill", text: c.Hex(), rect: rect})
}

func (r *recorder) StrokeRect(rect model.Rect, _ model.Color, _ float64, _ bool) {
	r.ops = append(r.ops, op{kind: "stroke", rect: rect})
}

func (r *recorder) Line(x1, y1, _, _, _ float64) {
	r.ops = append(r.ops, op{kind: "line", x: x1, y: y1})
}

func (r *recorder) Image(key string, _ image.Image, rect model.Rect) {
	r.ops = append(r.ops, op{kind: "image", text: key, rect: rect})
}

func (r *recorder) MeasureWrappedHeight(s string, _ float64) float64 {
	return float64(strings.Count(s, "\n")+1) * r.lineHeight
}

// index returns the position of the first op of kind whose text contains
// substr, or -1.
func (r *recorder) index(kind, substr string) int {
	for i, o := range r.ops {
		if o.kind == kind && strings.Contains(o.text, substr) {
			return i
		}
	}
	return -1
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, o := range r.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

func sampleOrder(n int) model.Order {
	o := model.Order{
		ID:              "250054",
		CreatedAt:       time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		BillingName:     "John Doe",
		BillingAddress1: "123 Main St",
		BillingCity:     "Anytown",
		BillingProvince: "BC",
		BillingZip:      "V1V 1V1",
		Subtotal:        decimal.RequireFromString("73.00"),
		Taxes:           decimal.RequireFromString("4.82"),
		Total:           decimal.RequireFromString("77.82"),
	}
	for i := 0; i < n; i++ {
		desc := fmt.Sprintf("Salal %d", i)
		if i%2 == 0 {
			desc = fmt.Sprintf("Goldenrod %d", i)
		}
		o.LineItems = append(o.LineItems, model.LineItem{
			Quantity:    i + 1,
			Description: desc,
			UnitPrice:   decimal.RequireFromString("12.50"),
		})
	}
	return o
}

func TestPageDrawOrder(t *testing.T) {
	in := Input{
		Order:    sampleOrder(2),
		Template: model.DefaultTemplate(),
		Rules:    highlight.DefaultRules(),
		Logo:     image.NewRGBA(image.Rect(0, 0, 200, 100)),
	}
	rec := &recorder{lineHeight: 8}
	plan := layout.PlanFor(in.Order, in.Template, model.PageWidth, model.PageHeight, BodyMeasurer(rec), layout.ModeAuto)
	rec.ops = nil

	if err := Page(rec, in, plan, 0); err != nil {
		t.Fatalf("Page: %v", err)
	}

	order := []int{
		rec.index("image", "logo"),
		rec.index("text", "Order 250054"),
		rec.index("text", "Bill To:"),
		rec.index("text", "Qty"),
		rec.index("fill", "#DAA520"),
		rec.index("box", "Goldenrod 0"),
		rec.index("box", "Subtotal:"),
		rec.index("box", "Thank you"),
	}
	for i, pos := range order {
		if pos < 0 {
			t.Fatalf("step %d not drawn", i)
		}
		if i > 0 && pos <= order[i-1] {
			t.Fatalf("step %d drawn at %d, before step %d at %d", i, pos, i-1, order[i-1])
		}
	}

	if got := rec.count("fill"); got != 1 {
		t.Errorf("got %d highlight fills, want 1", got)
	}
	if rec.index("text", "Date: 01/01/2024") < 0 {
		t.Error("date not drawn")
	}
	if rec.index("box", "$77.82") < 0 {
		t.Error("total not drawn")
	}
	if rec.index("text", "$25.00") < 0 {
		t.Error("line total for quantity 2 not drawn")
	}
}

func TestHighlightCoversRow(t *testing.T) {
	in := Input{Order: sampleOrder(1), Template: model.DefaultTemplate(), Rules: highlight.DefaultRules()}
	plan := layout.PlanSinglePage(in.Order, in.Template, model.PageWidth, model.PageHeight, nil)
	rec := &recorder{}
	if err := Page(rec, in, plan, 0); err != nil {
		t.Fatal(err)
	}
	fill := rec.ops[rec.index("fill", "")]
	row := plan.Pages[0].Rows[0]
	want := model.Rect{X: 47, Y: row.Top, W: 630, H: row.Height}
	if fill.rect != want {
		t.Errorf("highlight rect = %+v, want %+v", fill.rect, want)
	}
}

func TestMultiPageSections(t *testing.T) {
	in := Input{Order: sampleOrder(60), Template: model.DefaultTemplate()}
	plan := layout.PlanMultiPage(in.Order, in.Template, 540, 720, nil)
	if len(plan.Pages) < 2 {
		t.Fatalf("expected several pages, got %d", len(plan.Pages))
	}

	rows := 0
	for i := range plan.Pages {
		rec := &recorder{}
		if err := Page(rec, in, plan, i); err != nil {
			t.Fatalf("page %d: %v", i, err)
		}
		first, last := i == 0, i == len(plan.Pages)-1

		if got := rec.index("text", "Bill To:") >= 0; got != first {
			t.Errorf("page %d: billing drawn = %v", i, got)
		}
		if got := rec.index("text", "(continued)") >= 0; got == first {
			t.Errorf("page %d: continued header drawn = %v", i, got)
		}
		if rec.index("text", "Qty") < 0 {
			t.Errorf("page %d: column headers missing", i)
		}
		if got := rec.index("box", "Total:") >= 0; got != last {
			t.Errorf("page %d: totals drawn = %v", i, got)
		}
		if got := rec.index("box", "Thank you") >= 0; got != last {
			t.Errorf("page %d: footer drawn = %v", i, got)
		}
		for _, o := range rec.ops {
			if o.kind == "box" && (strings.HasPrefix(o.text, "Goldenrod") || strings.HasPrefix(o.text, "Salal")) {
				rows++
			}
		}
	}
	if rows != 60 {
		t.Errorf("drew %d descriptions, want 60", rows)
	}
}

func TestMissingLogoDrawsNoImage(t *testing.T) {
	in := Input{Order: sampleOrder(3), Template: model.DefaultTemplate()}
	plan := layout.PlanSinglePage(in.Order, in.Template, model.PageWidth, model.PageHeight, nil)
	rec := &recorder{}
	if err := Page(rec, in, plan, 0); err != nil {
		t.Fatal(err)
	}
	if n := rec.count("image"); n != 0 {
		t.Fatalf("drew %d images, want 0", n)
	}
}

func TestZeroItemsPage(t *testing.T) {
	in := Input{Order: sampleOrder(0), Template: model.DefaultTemplate()}
	plan := layout.PlanFor(in.Order, in.Template, 540, 720, nil, layout.ModeAuto)
	rec := &recorder{}
	if err := Page(rec, in, plan, 0); err != nil {
		t.Fatal(err)
	}
	if rec.index("text", "Bill To:") < 0 || rec.index("box", "Total:") < 0 || rec.index("box", "Thank you") < 0 {
		t.Fatal("header, totals or footer missing")
	}
	if n := rec.count("fill"); n != 0 {
		t.Errorf("drew %d fills for an order without items", n)
	}
}

func TestPageOutOfRange(t *testing.T) {
	in := Input{Order: sampleOrder(1), Template: model.DefaultTemplate()}
	plan := layout.PlanSinglePage(in.Order, in.Template, 540, 720, nil)
	if err := Page(&recorder{}, in, plan, 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestFitImage(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		r    model.Rect
		want model.Rect
	}{
		{"wide", 400, 100, model.Rect{X: 0, Y: 0, W: 100, H: 100}, model.Rect{X: 0, Y: 37.5, W: 100, H: 25}},
		{"tall", 50, 200, model.Rect{X: 10, Y: 10, W: 100, H: 100}, model.Rect{X: 47.5, Y: 10, W: 25, H: 100}},
		{"no upscale", 20, 10, model.Rect{X: 0, Y: 0, W: 100, H: 100}, model.Rect{X: 40, Y: 45, W: 20, H: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitImage(tt.w, tt.h, tt.r)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 ||
				math.Abs(got.W-tt.want.W) > 1e-9 || math.Abs(got.H-tt.want.H) > 1e-9 {
				t.Errorf("FitImage = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncodeBarcode(t *testing.T) {
	for _, kind := range []string{model.BarcodeCode128, model.BarcodePDF417} {
		img, err := EncodeBarcode(kind, "250054")
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
			t.Fatalf("%s: empty image", kind)
		}
	}
	if _, err := EncodeBarcode("qr", "x"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestBarcodeDrawn(t *testing.T) {
	tpl := model.DefaultTemplate()
	tpl.Barcode.Kind = model.BarcodeCode128
	img, err := EncodeBarcode(tpl.Barcode.Kind, "250054")
	if err != nil {
		t.Fatal(err)
	}
	in := Input{Order: sampleOrder(1), Template: tpl, Barcode: img}
	plan := layout.PlanSinglePage(in.Order, tpl, model.PageWidth, model.PageHeight, nil)
	rec := &recorder{}
	if err := Page(rec, in, plan, 0); err != nil {
		t.Fatal(err)
	}
	i := rec.index("image", "barcode:250054")
	if i < 0 {
		t.Fatal("barcode not drawn")
	}
	r := rec.ops[i].rect
	if !tpl.Barcode.Rect.Contains(r.Center()) || r.W > tpl.Barcode.Rect.W+1e-9 {
		t.Errorf("barcode at %+v outside %+v", r, tpl.Barcode.Rect)
	}
}
