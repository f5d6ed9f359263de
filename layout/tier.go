// Package layout decides how an order's line items are placed on invoice
// pages: how many pages, which items go on each, and the height and spacing
// of every row.
//
// All measurements in a Plan are in target units. The logical template space
// is 700×776; a target of width W and height H is reached through
// model.Scale(W, H).
package layout

import (
	"fmt"
	"math"

	"github.com/lvillar/invoicegen/model"
)

// Measurer reports the height of text word-wrapped at the given width. Both
// values are in target units. Implementations measure with the body font.
type Measurer interface {
	MeasureWrappedHeight(text string, width float64) float64
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(text string, width float64) float64

// MeasureWrappedHeight calls f(text, width).
func (f MeasureFunc) MeasureWrappedHeight(text string, width float64) float64 {
	return f(text, width)
}

// Tier is a compaction setting. Spacing and Floor are logical units;
// Multiplier scales the template row height.
type Tier struct {
	Spacing    float64
	Multiplier float64
	Floor      float64
}

// Compaction tiers, from most compact to loosest.
var (
	TierOver40   = Tier{Spacing: 0, Multiplier: 0.5, Floor: 10}
	TierOver30   = Tier{Spacing: 1, Multiplier: 2.0 / 3.0, Floor: 12}
	TierOver20   = Tier{Spacing: 2, Multiplier: 0.75, Floor: 14}
	TierTight    = Tier{Spacing: 3, Multiplier: 1}
	TierComfort  = Tier{Spacing: 3, Multiplier: 1}
	TierSpacious = Tier{Spacing: 4, Multiplier: 1}
)

// SelectTier picks the compaction tier for n items. Overflow is checked
// first, then the item-count bucket; bucket bounds are exclusive below and
// inclusive above.
func SelectTier(n int, fits bool) Tier {
	if !fits {
		switch {
		case n > 40:
			return TierOver40
		case n > 30:
			return TierOver30
		case n > 20:
			return TierOver20
		default:
			return TierTight
		}
	}
	if n > 10 {
		return TierComfort
	}
	return TierSpacious
}

// RowHeight returns the tier row height in target units for a template row
// height r and vertical scale s. The result never exceeds r·s, so moving to
// a more compact tier never loosens rows.
func (t Tier) RowHeight(r, s float64) float64 {
	full := r * s
	h := math.Max(t.Floor*s, full*t.Multiplier)
	return math.Min(h, full)
}

func (t Tier) String() string {
	return fmt.Sprintf("spacing=%g height=%.3gx floor=%g", t.Spacing, t.Multiplier, t.Floor)
}

// Single-page estimate overheads, logical units.
const (
	headerOverhead = 120
	totalsOverhead = 80
	footerOverhead = 80
	safetyMargin   = 50
	itemPadding    = 4
)

// FitsSinglePage estimates whether n rows of the template row height fit on
// one page of height H without compaction. It is a heuristic that errs
// toward compaction.
func FitsSinglePage(n int, tpl model.Template, H float64) bool {
	s := H / model.PageHeight
	budget := H - (headerOverhead+totalsOverhead+footerOverhead+safetyMargin)*s
	item := tpl.RowHeight*s + itemPadding*s
	return float64(n)*item <= budget
}

// Multi-page estimate constants, logical units.
const (
	multiHeaderSpace = 250
	multiFooterSpace = 150
	multiSafety      = 50
	multiItemHeight  = 22
)

// NeedsMultiplePages is the paginating estimate: n rows of 22 units against
// a page with 250 units of header, 150 of totals and footer and 50 of
// safety margin. It deliberately differs from FitsSinglePage.
func NeedsMultiplePages(n int, H float64) bool {
	s := H / model.PageHeight
	available := H - (multiHeaderSpace+multiFooterSpace+multiSafety)*s
	return float64(n)*multiItemHeight*s > available
}

// Mode selects how Plan chooses between single-page and paginated layout.
type Mode int

const (
	// ModeAuto compacts onto one page and paginates only when the compacted
	// rows would push the totals block past its clamp.
	ModeAuto Mode = iota
	// ModeSinglePage always compacts onto one page.
	ModeSinglePage
	// ModePaginate always uses the multi-page layout.
	ModePaginate
	// ModeEstimate paginates iff NeedsMultiplePages reports so.
	ModeEstimate
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeSinglePage:
		return "single"
	case ModePaginate:
		return "paginate"
	case ModeEstimate:
		return "estimate"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name as produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "auto":
		return ModeAuto, nil
	case "single":
		return ModeSinglePage, nil
	case "paginate":
		return ModePaginate, nil
	case "estimate":
		return ModeEstimate, nil
	default:
		return 0, fmt.Errorf("layout: unknown mode %q", s)
	}
}
