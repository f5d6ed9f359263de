package model

// Logical page size. Every coordinate in a Template lives in this space and
// every renderer scales it by (targetWidth/PageWidth, targetHeight/PageHeight).
const (
	PageWidth  = 700.0
	PageHeight = 776.0
)

// Point is a logical-page coordinate.
type Point struct {
	X, Y float64
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X < r.X+r.W && p.Y < r.Y+r.H
}

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Translate returns r moved by d, keeping its size.
func (r Rect) Translate(d Point) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Columns holds the line-item table geometry as offsets from the table start.
type Columns struct {
	QuantityX        float64
	DescriptionX     float64
	UnitPriceX       float64
	LineTotalX       float64
	DescriptionWidth float64
	TableWidth       float64
}

// Barcode symbologies supported for the optional order-id barcode.
const (
	BarcodeNone    = ""
	BarcodeCode128 = "code128"
	BarcodePDF417  = "pdf417"
)

// BarcodeSpec places an optional barcode encoding the order id.
type BarcodeSpec struct {
	Kind string
	Rect Rect
}

// Template is the set of anchor points and sizes that control where each
// invoice element is drawn.
type Template struct {
	LogoPath string
	Logo     Rect

	OrderNumber Point
	Date        Point
	Billing     Point

	TableStart Point
	RowHeight  float64
	Columns    Columns

	// Totals anchors. X places the value column; labels are drawn to its left.
	// The vertical position follows the line items.
	Subtotal Point
	Tax      Point
	Total    Point

	ThankYou     Point
	Policy       Point
	ThankYouText string
	PolicyText   string

	Barcode        BarcodeSpec
	LetterheadPath string
}

// Default footer texts.
const (
	DefaultThankYouText = "Thank you for your order.\nHappy planting!"
	DefaultPolicyText   = "We do not offer refunds once you have left the premises. All sales are final. " +
		"Please check the contents of your order carefully to make sure there are no errors. " +
		"Staff are available to assist and correct errors."
)

// DefaultTemplate returns the template every consumer starts from.
func DefaultTemplate() Template {
	return Template{
		Logo:        Rect{X: 590, Y: 20, W: 100, H: 100},
		OrderNumber: Point{X: 50, Y: 30},
		Date:        Point{X: 450, Y: 120},
		Billing:     Point{X: 50, Y: 70},
		TableStart:  Point{X: 50, Y: 140},
		RowHeight:   14,
		Columns: Columns{
			QuantityX:        15,
			DescriptionX:     60,
			UnitPriceX:       450,
			LineTotalX:       550,
			DescriptionWidth: 380,
			TableWidth:       630,
		},
		Subtotal:     Point{X: 600, Y: 480},
		Tax:          Point{X: 600, Y: 500},
		Total:        Point{X: 600, Y: 520},
		ThankYou:     Point{X: 50, Y: 680},
		Policy:       Point{X: 50, Y: 710},
		ThankYouText: DefaultThankYouText,
		PolicyText:   DefaultPolicyText,
		Barcode:      BarcodeSpec{Rect: Rect{X: 450, Y: 20, W: 120, H: 40}},
	}
}

// Scale returns the factors mapping logical coordinates onto a target of the
// given size. It is the single scaling rule shared by all renderers.
func Scale(width, height float64) (sx, sy float64) {
	return width / PageWidth, height / PageHeight
}
