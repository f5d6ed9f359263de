package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLineTotal(t *testing.T) {
	li := LineItem{Quantity: 3, UnitPrice: decimal.RequireFromString("10.50")}
	if got := li.LineTotal(); !got.Equal(decimal.RequireFromString("31.50")) {
		t.Fatalf("LineTotal = %s, want 31.50", got)
	}

	neg := LineItem{Quantity: -2, UnitPrice: decimal.RequireFromString("4")}
	if got := FormatMoney(neg.LineTotal()); got != "$-8.00" {
		t.Fatalf("FormatMoney = %q, want $-8.00", got)
	}
}

func TestCalculateSubtotalDoesNotOverwrite(t *testing.T) {
	o := Order{
		Subtotal: decimal.RequireFromString("99"),
		LineItems: []LineItem{
			{Quantity: 1, UnitPrice: decimal.RequireFromString("10")},
			{Quantity: 2, UnitPrice: decimal.RequireFromString("2.25")},
		},
	}
	if got := o.CalculateSubtotal(); !got.Equal(decimal.RequireFromString("14.5")) {
		t.Fatalf("CalculateSubtotal = %s, want 14.5", got)
	}
	if !o.Subtotal.Equal(decimal.RequireFromString("99")) {
		t.Fatal("imported subtotal was modified")
	}
}

func TestOrderFormatting(t *testing.T) {
	o := Order{
		BillingAddress1: "123 Main St",
		BillingCity:     "Victoria",
		BillingProvince: "BC",
		BillingZip:      "V8V 1A1",
	}
	if o.FormattedDate() != "" {
		t.Errorf("absent date should format as empty, got %q", o.FormattedDate())
	}
	if got := o.BillingAddress(); got != "123 Main St" {
		t.Errorf("BillingAddress = %q", got)
	}
	o.BillingAddress2 = "Unit 4"
	if got := o.BillingAddress(); got != "123 Main St, Unit 4" {
		t.Errorf("BillingAddress = %q", got)
	}
	if got := o.CityStateZip(); got != "Victoria, BC V8V 1A1" {
		t.Errorf("CityStateZip = %q", got)
	}

	o.CreatedAt = time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC)
	if got := o.FormattedDate(); got != "03/07/2024" {
		t.Errorf("FormattedDate = %q", got)
	}
}

func TestCloneDoesNotShareItems(t *testing.T) {
	o := Order{LineItems: []LineItem{{Description: "a"}}}
	c := o.Clone()
	c.LineItems[0].Description = "b"
	if o.LineItems[0].Description != "a" {
		t.Fatal("clone shares line items with the original")
	}
}

func TestScale(t *testing.T) {
	sx, sy := Scale(1400, 388)
	if sx != 2 || sy != 0.5 {
		t.Fatalf("Scale = (%v, %v), want (2, 0.5)", sx, sy)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 5, H: 5}
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{10, 10}, true},
		{Point{14.9, 14.9}, true},
		{Point{15, 12}, false},
		{Point{9, 12}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestSortOrders(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	orders := []Order{
		{ID: "1003", BillingName: "carol", CreatedAt: d(1), Total: decimal.NewFromInt(5)},
		{ID: "1001", BillingName: "Bob", CreatedAt: d(3), Total: decimal.NewFromInt(50)},
		{ID: "1002", BillingName: "alice", CreatedAt: d(2), Total: decimal.NewFromInt(20)},
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortByID, []string{"1001", "1002", "1003"}},
		{SortByDate, []string{"1003", "1002", "1001"}},
		{SortByName, []string{"1002", "1001", "1003"}},
		{SortByTotal, []string{"1003", "1002", "1001"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := append([]Order(nil), orders...)
			SortOrders(got, tt.key)
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("position %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	if k, err := ParseSortKey(""); err != nil || k != SortByID {
		t.Fatalf("ParseSortKey(\"\") = %q, %v", k, err)
	}
	if k, err := ParseSortKey(" Total "); err != nil || k != SortByTotal {
		t.Fatalf("ParseSortKey(Total) = %q, %v", k, err)
	}
	if _, err := ParseSortKey("size"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
