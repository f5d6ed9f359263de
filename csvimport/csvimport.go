// Package csvimport reads order exports into model.Order values.
//
// The input is one row per line item. Rows sharing an order id are grouped
// into one order; the first row supplies the order header fields and every
// row with a line item name contributes one line item.
package csvimport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lvillar/invoicegen/model"
)

// Column names, matched after trimming and lowercasing the header row.
const (
	ColOrderID         = "order id"
	ColCreatedAt       = "created at"
	ColBillingName     = "billing name"
	ColBillingAddress1 = "billing address1"
	ColBillingAddress2 = "billing address2"
	ColBillingCity     = "billing city"
	ColBillingProvince = "billing province"
	ColBillingZip      = "billing zip"
	ColBillingCountry  = "billing country"
	ColSubtotal        = "subtotal"
	ColShipping        = "shipping"
	ColTaxes           = "taxes"
	ColTotal           = "total"
	ColItemName        = "lineitem name"
	ColItemQuantity    = "lineitem quantity"
	ColItemPrice       = "lineitem price"
	ColItemSKU         = "lineitem sku"
)

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const maxLine = 1 << 20

// ReadFile imports orders from the file at path.
func ReadFile(path string) ([]model.Order, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvimport: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read imports orders from r. Orders are returned in the order their id
// first appears. Missing columns and unparseable values leave the field at
// its zero value; they never abort the import. A read error returns no
// orders at all.
func Read(r io.Reader) ([]model.Order, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("csvimport: read header: %w", err)
		}
		return nil, nil
	}
	header := SplitLine(strings.TrimPrefix(sc.Text(), "\ufeff"))
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	var (
		orders []model.Order
		index  = make(map[string]int)
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		values := SplitLine(line)
		for len(values) < len(header) {
			values = append(values, "")
		}
		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(values) {
				return ""
			}
			return values[i]
		}

		id := get(ColOrderID)
		if id == "" {
			continue
		}
		at, ok := index[id]
		if !ok {
			at = len(orders)
			index[id] = at
			orders = append(orders, model.Order{
				ID:              id,
				CreatedAt:       ParseDate(get(ColCreatedAt)),
				BillingName:     get(ColBillingName),
				BillingAddress1: get(ColBillingAddress1),
				BillingAddress2: get(ColBillingAddress2),
				BillingCity:     get(ColBillingCity),
				BillingProvince: get(ColBillingProvince),
				BillingZip:      get(ColBillingZip),
				BillingCountry:  get(ColBillingCountry),
				Subtotal:        parseDecimal(get(ColSubtotal)),
				Shipping:        parseDecimal(get(ColShipping)),
				Taxes:           parseDecimal(get(ColTaxes)),
				Total:           parseDecimal(get(ColTotal)),
			})
		}

		if name := get(ColItemName); name != "" {
			orders[at].LineItems = append(orders[at].LineItems, model.LineItem{
				Quantity:    parseInt(get(ColItemQuantity)),
				Description: name,
				UnitPrice:   parseDecimal(get(ColItemPrice)),
				SKU:         get(ColItemSKU),
			})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("csvimport: %w", err)
	}
	return orders, nil
}

// SplitLine splits one CSV line on commas. A double quote toggles quoted
// mode, in which commas are kept; quotes themselves are dropped and there is
// no escaped-quote form. Fields are trimmed.
func SplitLine(line string) []string {
	var (
		fields []string
		cur    strings.Builder
		quoted bool
	)
	for _, c := range line {
		switch {
		case c == '"':
			quoted = !quoted
		case c == ',' && !quoted:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

// ParseDate returns the zero time when s matches none of the known layouts.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
