package model

import (
	"fmt"
	"slices"
	"strings"
)

// SortKey selects the order list sort criterion.
type SortKey string

const (
	SortByID    SortKey = "id"
	SortByDate  SortKey = "date"
	SortByName  SortKey = "name"
	SortByTotal SortKey = "total"
)

// ParseSortKey validates a sort key name. The empty string means SortByID.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByID, nil
	case SortByID, SortByDate, SortByName, SortByTotal:
		return k, nil
	default:
		return "", fmt.Errorf("model: unknown sort key %q", s)
	}
}

// SortOrders sorts orders in place. The sort is stable so orders that compare
// equal keep their import order.
func SortOrders(orders []Order, key SortKey) {
	slices.SortStableFunc(orders, func(a, b Order) int {
		switch key {
		case SortByDate:
			return a.CreatedAt.Compare(b.CreatedAt)
		case SortByName:
			return strings.Compare(strings.ToLower(a.BillingName), strings.ToLower(b.BillingName))
		case SortByTotal:
			return a.Total.Cmp(b.Total)
		default:
			return strings.Compare(a.ID, b.ID)
		}
	})
}
