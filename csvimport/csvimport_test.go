package csvimport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const header = "Order ID,Created At,Billing Name,Billing Address1,Billing Address2,Billing City," +
	"Billing Province,Billing Zip,Billing Country,Subtotal,Shipping,Taxes,Total," +
	"Lineitem name,Lineitem quantity,Lineitem price,Lineitem sku\n"

func TestGroupByOrderID(t *testing.T) {
	in := header +
		`1001,3/7/2024 9:05,Jane Roe,"12 Oak St, Unit 4",,Victoria,BC,V8V 1A1,CA,25.00,0,1.25,26.25,Goldenrod 1 gal,2,12.50,GR-1` + "\n" +
		`1001,,,,,,,,,,,,,,,,` + "\n"

	orders, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	o := orders[0]
	if o.ID != "1001" || len(o.LineItems) != 1 {
		t.Fatalf("order = %s with %d items", o.ID, len(o.LineItems))
	}
	if o.BillingAddress1 != "12 Oak St, Unit 4" {
		t.Errorf("quoted address = %q", o.BillingAddress1)
	}
	if !o.Total.Equal(decimal.RequireFromString("26.25")) {
		t.Errorf("total = %s", o.Total)
	}
	want := time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC)
	if !o.CreatedAt.Equal(want) {
		t.Errorf("created = %v, want %v", o.CreatedAt, want)
	}
	li := o.LineItems[0]
	if li.Quantity != 2 || li.SKU != "GR-1" || !li.UnitPrice.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("line item = %+v", li)
	}
}

func TestFirstRowSetsHeaderFields(t *testing.T) {
	in := header +
		"1002,1/1/2024,First Name,,,,,,,10,0,0,10,A,1,10,\n" +
		"1002,1/2/2024,Second Name,,,,,,,99,0,0,99,B,1,5,\n"
	orders, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	o := orders[0]
	if o.BillingName != "First Name" || !o.Total.Equal(decimal.NewFromInt(10)) {
		t.Errorf("header fields came from a later row: %+v", o)
	}
	if len(o.LineItems) != 2 || o.LineItems[1].Description != "B" {
		t.Errorf("items = %+v", o.LineItems)
	}
}

func TestOrdersKeepFirstAppearance(t *testing.T) {
	in := header +
		"2003,,,,,,,,,,,,,C,1,1,\n" +
		"2001,,,,,,,,,,,,,A,1,1,\n" +
		"2003,,,,,,,,,,,,,C2,1,1,\n" +
		"2002,,,,,,,,,,,,,B,1,1,\n"
	orders, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	if got := strings.Join(ids, ","); got != "2003,2001,2002" {
		t.Errorf("order ids = %s", got)
	}
}

func TestMissingColumnsAndBadValues(t *testing.T) {
	in := "order id , LINEITEM NAME,Lineitem price\n" +
		"\n" +
		"3001,Fern,abc\n" +
		"  \n" +
		",Orphan,1\n" +
		"3002\n"
	orders, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	o := orders[0]
	if o.HasDate() || !o.Total.IsZero() || o.BillingName != "" {
		t.Errorf("missing columns should default: %+v", o)
	}
	li := o.LineItems[0]
	if li.Quantity != 0 || !li.UnitPrice.IsZero() {
		t.Errorf("line item = %+v, want zero quantity and price", li)
	}
	if len(orders[1].LineItems) != 0 {
		t.Errorf("short row produced items: %+v", orders[1].LineItems)
	}
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{` a , "b, c" ,d`, []string{"a", "b, c", "d"}},
		{`"x""y",z`, []string{"xy", "z"}},
		{"a,,", []string{"a", "", ""}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		got := SplitLine(tt.in)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) || len(got) != len(tt.want) {
			t.Errorf("SplitLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"3/7/2024 14:30", time.Date(2024, 3, 7, 14, 30, 0, 0, time.UTC)},
		{"12/31/2023", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"2024-02-01T08:00:00Z", time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)},
		{"2024-02-01", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-02-01 10:00:00 -0800", time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC)},
		{"yesterday", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		if got := ParseDate(tt.in); !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	data := "\ufeff" + header + "1001,,,,,,,,,,,,,Salal,3,4.00,\r\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	orders, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].LineItems[0].Quantity != 3 {
		t.Fatalf("orders = %+v", orders)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestEmptyInput(t *testing.T) {
	orders, err := Read(strings.NewReader(""))
	if err != nil || orders != nil {
		t.Fatalf("Read(empty) = %v, %v", orders, err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestReadErrorReturnsNothing(t *testing.T) {
	orders, err := Read(failingReader{})
	if err == nil || orders != nil {
		t.Fatalf("Read = %v, %v; want nil and an error", orders, err)
	}
}
