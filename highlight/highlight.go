// Package highlight resolves line-item background colors from an ordered list
// of text rules and loads those rules from a spreadsheet.
package highlight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lvillar/invoicegen/model"
)

// Resolve returns the color of the first rule whose TextMatch is a
// case-insensitive substring of description. Rule order decides overlaps:
// with rules "red" then "redwood", "redwood tree" resolves to the "red" color.
// A rule with an empty TextMatch never matches.
func Resolve(description string, rules []model.HighlightRule) (model.Color, bool) {
	lower := strings.ToLower(description)
	for _, r := range rules {
		if r.TextMatch == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(r.TextMatch)) {
			return r.Color, true
		}
	}
	return model.Color{}, false
}

// DefaultRules returns the rules used when none are configured.
func DefaultRules() []model.HighlightRule {
	return []model.HighlightRule{
		{TextMatch: "goldenrod", Color: model.RGB(218, 165, 32)},
		{TextMatch: "huckleberry", Color: model.RGB(138, 43, 226)},
	}
}

var namedColors = map[string]model.Color{
	"red":          model.RGB(0xFF, 0x00, 0x00),
	"green":        model.RGB(0x00, 0xFF, 0x00),
	"blue":         model.RGB(0x00, 0x00, 0xFF),
	"yellow":       model.RGB(0xFF, 0xFF, 0x00),
	"orange":       model.RGB(0xFF, 0xA5, 0x00),
	"purple":       model.RGB(0x80, 0x00, 0x80),
	"pink":         model.RGB(0xFF, 0xC0, 0xCB),
	"brown":        model.RGB(0xA5, 0x2A, 0x2A),
	"gray":         model.RGB(0x80, 0x80, 0x80),
	"grey":         model.RGB(0x80, 0x80, 0x80),
	"light blue":   model.RGB(0x87, 0xCE, 0xEB),
	"light green":  model.RGB(0x90, 0xEE, 0x90),
	"light yellow": model.RGB(0xFF, 0xFF, 0xE0),
	"light pink":   model.RGB(0xFF, 0xB6, 0xC1),
	"light gray":   model.RGB(0xD3, 0xD3, 0xD3),
	"light grey":   model.RGB(0xD3, 0xD3, 0xD3),
}

// IsColorName reports whether s is one of the named colors ParseColor accepts.
func IsColorName(s string) bool {
	_, ok := namedColors[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseColor accepts a color name ("light blue"), "#RRGGBB" or "RRGGBB".
func ParseColor(s string) (model.Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(v, "#")
	if len(hex) != 6 {
		return model.Color{}, fmt.Errorf("highlight: invalid color %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return model.Color{}, fmt.Errorf("highlight: invalid color %q: %w", s, err)
	}
	return model.RGB(uint8(n>>16), uint8(n>>8), uint8(n)), nil
}
