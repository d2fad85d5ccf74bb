package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFilter = errors.New("unknown filter")

// Filter restricts which coupons are displayed.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterCode    Filter = Filter(TypeCode)
	FilterSale    Filter = Filter(TypeSale)
	FilterApp     Filter = Filter(TypeApp)
	FilterStudent Filter = Filter(TypeStudent)
)

// FilterTab is the display data for one filter control.
type FilterTab struct {
	Filter Filter
	Label  string
	Icon   string
}

// Filters lists every filter in display order.
var Filters = []FilterTab{
	{Filter: FilterAll, Label: "All Coupons", Icon: "🎫"},
	{Filter: FilterCode, Label: "Promo Codes", Icon: "🏷️"},
	{Filter: FilterSale, Label: "Sales", Icon: "💰"},
	{Filter: FilterApp, Label: "App Deals", Icon: "📱"},
	{Filter: FilterStudent, Label: "Student", Icon: "🎓"},
}

// ParseFilter maps user input onto the closed set of filters.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range Filters {
		if t.Filter == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Matches reports whether a coupon belongs in this filter's view.
func (f Filter) Matches(c Coupon) bool {
	return f == FilterAll || Filter(c.Type) == f
}

func (f Filter) String() string { return string(f) }
