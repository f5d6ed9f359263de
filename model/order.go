// Package model defines the plain value types shared by the importer, the
// layout engine, the renderer and the template editor.
//
// All types are values: copying an Order or a Template yields an independent
// snapshot that can be handed to a renderer without further synchronization.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the format used for order dates on printed invoices.
const DateLayout = "01/02/2006"

// LineItem is one product line within an order.
type LineItem struct {
	Quantity    int
	Description string
	UnitPrice   decimal.Decimal
	SKU         string
}

// LineTotal returns Quantity × UnitPrice.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is one customer purchase with billing information and line items.
// Subtotal, Shipping, Taxes and Total are taken from the import data as-is.
type Order struct {
	ID        string
	CreatedAt time.Time // zero when absent or unparseable

	BillingName     string
	BillingAddress1 string
	BillingAddress2 string
	BillingCity     string
	BillingProvince string
	BillingZip      string
	BillingCountry  string

	LineItems []LineItem

	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Taxes    decimal.Decimal
	Total    decimal.Decimal
}

// CalculateSubtotal sums the line totals. It is only used when a caller
// explicitly asks for a recomputed value; Subtotal is never overwritten.
func (o Order) CalculateSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range o.LineItems {
		sum = sum.Add(li.LineTotal())
	}
	return sum
}

// HasDate reports whether the order carries a valid creation timestamp.
func (o Order) HasDate() bool {
	return !o.CreatedAt.IsZero()
}

// FormattedDate returns the creation date as MM/DD/YYYY, or "" when absent.
func (o Order) FormattedDate() string {
	if !o.HasDate() {
		return ""
	}
	return o.CreatedAt.Format(DateLayout)
}

// BillingAddress joins both address lines with ", " when the second is set.
func (o Order) BillingAddress() string {
	if o.BillingAddress2 == "" {
		return o.BillingAddress1
	}
	return o.BillingAddress1 + ", " + o.BillingAddress2
}

// CityStateZip returns the "City, Province Zip" billing line.
func (o Order) CityStateZip() string {
	return fmt.Sprintf("%s, %s %s", o.BillingCity, o.BillingProvince, o.BillingZip)
}

// Clone returns a copy whose LineItems slice is not shared with o.
func (o Order) Clone() Order {
	c := o
	c.LineItems = append([]LineItem(nil), o.LineItems...)
	return c
}

// FormatMoney renders an amount the way invoices print it: "$" followed by
// two decimals. Negative amounts keep their sign after the currency symbol.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Summary is a one-line description used by order lists and tool output.
func (o Order) Summary() string {
	name := strings.TrimSpace(o.BillingName)
	return fmt.Sprintf("Order #%s - %s (%d items) - %s", o.ID, name, len(o.LineItems), FormatMoney(o.Total))
}
