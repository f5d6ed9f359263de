package model

import (
	"fmt"
	"image/color"
)

// Color is an 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

// RGB is a convenience constructor.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Hex returns the color as "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// RGBA converts to the standard library color type.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

var (
	Black = Color{}
	White = Color{R: 0xff, G: 0xff, B: 0xff}
)

// HighlightRule colors every line item whose description contains TextMatch,
// compared case-insensitively. Rules form an ordered list; the first match
// wins.
type HighlightRule struct {
	TextMatch string
	Color     Color
}
