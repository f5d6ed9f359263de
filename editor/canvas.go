package editor

import (
	"image"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lvillar/invoicegen/layout"
	"github.com/lvillar/invoicegen/model"
	"github.com/lvillar/invoicegen/render"
	"github.com/lvillar/invoicegen/surface/pdf"
	"github.com/lvillar/invoicegen/surface/raster"
)

var (
	borderColor    = model.Black
	selectionColor = model.RGB(0, 0, 255)
)

// SampleOrder is drawn on the canvas until a preview order is set.
func SampleOrder() model.Order {
	return model.Order{
		ID:              "250054",
		CreatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		BillingName:     "John Doe",
		BillingAddress1: "123 Main St",
		BillingCity:     "City",
		BillingProvince: "ST",
		BillingZip:      "12345",
		LineItems: []model.LineItem{
			{Quantity: 3, Description: "Canada Goldenrod - Solidago lepida, bundle of 5", UnitPrice: decimal.NewFromInt(10)},
			{Quantity: 1, Description: "Evergreen Huckleberry - Vaccinium ovatum, bundle of 5", UnitPrice: decimal.NewFromInt(43)},
		},
		Subtotal: decimal.RequireFromString("73.00"),
		Taxes:    decimal.RequireFromString("4.82"),
		Total:    decimal.RequireFromString("77.82"),
	}
}

// Canvas renders the editor view into a w×h image: the page at the current
// template, a page border, a placeholder where the logo would go when none
// is loaded, and an outline around the selected element. The zoom is
// recomputed for the given size.
func (e *Editor) Canvas(w, h int) (*image.RGBA, error) {
	e.Resize(w, h)
	z := e.zoom
	pageW, pageH := model.PageWidth*z, model.PageHeight*z

	s, err := raster.New(w, h,
		raster.WithOrigin(PageOrigin*z, PageOrigin*z),
		raster.WithDPI(pageW/pdf.ContentWidth*72),
	)
	if err != nil {
		return nil, err
	}

	o := e.previewOrder()
	in := render.Input{
		Order:    o,
		Template: e.tpl,
		Rules:    e.rules,
		Logo:     e.logo,
	}
	if kind := e.tpl.Barcode.Kind; kind != model.BarcodeNone {
		img, err := render.EncodeBarcode(kind, o.ID)
		if err != nil {
			e.log.Warn("barcode not drawn", zap.String("order_id", o.ID), zap.Error(err))
		}
		in.Barcode = img
	}

	plan := layout.PlanSinglePage(o, e.tpl, pageW, pageH, render.BodyMeasurer(s))
	if err := render.Page(s, in, plan, 0); err != nil {
		return nil, err
	}

	s.StrokeRect(model.Rect{W: pageW, H: pageH}, borderColor, 2, false)
	if e.logo == nil {
		r := scale(e.tpl.Logo, z)
		s.StrokeRect(r, borderColor, 1, true)
		s.SetFont(render.BodyFont)
		s.TextBox(model.Rect{X: r.X, Y: r.Y + r.H/2 - render.BodyFont.Size, W: r.W, H: r.H / 2}, "Logo", render.AlignCenter)
	}
	if e.selected != ElementNone {
		s.StrokeRect(scale(e.HitRect(e.selected), z), selectionColor, 2, false)
	}
	return s.RGBA(), nil
}

func scale(r model.Rect, z float64) model.Rect {
	return model.Rect{X: r.X * z, Y: r.Y * z, W: r.W * z, H: r.H * z}
}
