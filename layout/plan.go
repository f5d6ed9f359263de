package layout

import (
	"math"

	"github.com/lvillar/invoicegen/model"
)

// Table geometry offsets, logical units.
const (
	ruleOffset     = 15 // column header baseline to rule
	firstRowOffset = 10 // rule to the first row reference line
	rowInset       = 5  // row reference line to row top
	wrapPadding    = 2  // added to measured text on a single page
	maxGrowth      = 3  // single-page rows grow to at most 3× the tier height

	reservedFooter = 100 // single page: bottom band kept for totals and footer
	totalsGap      = 20
	totalsReserve  = 80
	footerGap      = 10
	footerReserve  = 40

	firstBodyStart = 200 // paginated page 1: body below logo, header and billing
	contHeaderY    = 30
	contColumnsY   = 40
	contBodyStart  = 80
	bottomMargin   = 30
	lastPageSpace  = 120
	multiPadding   = 4
	multiSpacing   = 4
)

// Row places one line item.
type Row struct {
	Item   int // index into Order.LineItems
	Top    float64
	Height float64
}

// Totals holds the tops of the three totals lines.
type Totals struct {
	SubtotalY  float64
	TaxY       float64
	TotalY     float64
	RuleY      float64
	LineHeight float64
	End        float64
}

// Footer holds the text boxes for the thank-you and policy texts.
type Footer struct {
	ThankYou model.Rect
	Policy   model.Rect
}

// Page is the layout of one invoice page.
type Page struct {
	Number    int  // 1-based
	Continued bool // compact header, no billing block
	Last      bool // carries totals and footer

	HeaderY  float64 // order header baseline
	ColumnsY float64 // column header baseline
	RuleY    float64
	Rows     []Row
	ItemsEnd float64

	Totals Totals
	Footer Footer
}

// Plan is the complete layout decision for one order on one target size.
type Plan struct {
	Width, Height  float64
	ScaleX, ScaleY float64

	// Mode is ModeSinglePage or ModePaginate, whichever produced the plan.
	Mode Mode
	// Tier, RowHeight and Spacing describe single-page compaction. Paginated
	// plans use the fixed 22-unit row and 4-unit spacing.
	Tier      Tier
	RowHeight float64
	Spacing   float64
	// Clamped is set when a single-page plan had to pull the totals block
	// back above the reserved footer band.
	Clamped bool

	Pages []Page
}

// ItemIndexes returns the line item indexes of all rows in page order.
func (p Plan) ItemIndexes() []int {
	var out []int
	for _, pg := range p.Pages {
		for _, r := range pg.Rows {
			out = append(out, r.Item)
		}
	}
	return out
}

// PlanFor lays out order according to mode. A nil measurer treats every
// description as a single line at the minimum row height.
func PlanFor(o model.Order, tpl model.Template, W, H float64, m Measurer, mode Mode) Plan {
	n := len(o.LineItems)
	switch mode {
	case ModeSinglePage:
		return PlanSinglePage(o, tpl, W, H, m)
	case ModePaginate:
		return PlanMultiPage(o, tpl, W, H, m)
	case ModeEstimate:
		if NeedsMultiplePages(n, H) {
			return PlanMultiPage(o, tpl, W, H, m)
		}
		return PlanSinglePage(o, tpl, W, H, m)
	default:
		p := PlanSinglePage(o, tpl, W, H, m)
		if p.Clamped && n > 0 {
			return PlanMultiPage(o, tpl, W, H, m)
		}
		return p
	}
}

// PlanSinglePage compacts every line item onto one page. Rows use the tier
// height and grow to fit wrapped descriptions up to three times that height.
// Totals and footer follow the rows but are pulled back above the reserved
// band at the bottom of the page.
func PlanSinglePage(o model.Order, tpl model.Template, W, H float64, m Measurer) Plan {
	sx, sy := model.Scale(W, H)
	n := len(o.LineItems)
	tier := SelectTier(n, FitsSinglePage(n, tpl, H))

	p := Plan{
		Width: W, Height: H, ScaleX: sx, ScaleY: sy,
		Mode:      ModeSinglePage,
		Tier:      tier,
		RowHeight: tier.RowHeight(tpl.RowHeight, sy),
		Spacing:   tier.Spacing * sy,
	}

	pg := Page{
		Number:   1,
		Last:     true,
		HeaderY:  tpl.OrderNumber.Y * sy,
		ColumnsY: tpl.TableStart.Y * sy,
	}
	pg.RuleY = pg.ColumnsY + ruleOffset*sy

	descW := tpl.Columns.DescriptionWidth * sx
	y := pg.RuleY + firstRowOffset*sy
	for i, li := range o.LineItems {
		h := p.RowHeight
		if m != nil {
			measured := m.MeasureWrappedHeight(li.Description, descW) + wrapPadding*sy
			h = math.Max(p.RowHeight, math.Min(measured, maxGrowth*p.RowHeight))
		}
		pg.Rows = append(pg.Rows, Row{Item: i, Top: y - rowInset*sy, Height: h})
		y += h + p.Spacing
	}
	pg.ItemsEnd = y

	maxContent := H - reservedFooter*sy
	totalsY := y + totalsGap*sy
	if limit := maxContent - totalsReserve*sy; totalsY > limit {
		totalsY = limit
		p.Clamped = true
	}
	pg.Totals = totalsAt(totalsY, H, sy)
	footerY := math.Min(pg.Totals.End+footerGap*sy, maxContent-footerReserve*sy)
	pg.Footer = footerAt(footerY, tpl, H, sx, sy)

	p.Pages = []Page{pg}
	return p
}

// PlanMultiPage splits line items across pages at item boundaries. Rows are
// at least 22 units high and grow to fit their description. The page that
// would take the remaining items reserves 120 units for totals and footer
// and takes only what still fits. Every page takes at least one item.
func PlanMultiPage(o model.Order, tpl model.Template, W, H float64, m Measurer) Plan {
	sx, sy := model.Scale(W, H)
	n := len(o.LineItems)

	p := Plan{
		Width: W, Height: H, ScaleX: sx, ScaleY: sy,
		Mode:      ModePaginate,
		RowHeight: multiItemHeight * sy,
		Spacing:   multiSpacing * sy,
	}

	descW := tpl.Columns.DescriptionWidth * sx
	heights := make([]float64, n)
	for i, li := range o.LineItems {
		h := p.RowHeight
		if m != nil {
			h = math.Max(h, m.MeasureWrappedHeight(li.Description, descW)+multiPadding*sy)
		}
		heights[i] = h
	}

	// fit counts the items from start whose rows end at or above limit.
	fit := func(start int, y, limit float64) int {
		k := 0
		for i := start; i < n; i++ {
			if y-rowInset*sy+heights[i] > limit {
				break
			}
			y += heights[i] + p.Spacing
			k++
		}
		return k
	}

	bottom := H - bottomMargin*sy
	reserve := lastPageSpace * sy
	next := 0
	for number := 1; ; number++ {
		pg := Page{Number: number}
		var bodyStart float64
		if number == 1 {
			pg.HeaderY = tpl.OrderNumber.Y * sy
			pg.ColumnsY = tpl.TableStart.Y * sy
			pg.RuleY = pg.ColumnsY + ruleOffset*sy
			bodyStart = math.Max(firstBodyStart*sy, pg.RuleY)
		} else {
			pg.Continued = true
			pg.HeaderY = contHeaderY * sy
			pg.ColumnsY = contColumnsY * sy
			pg.RuleY = pg.ColumnsY + ruleOffset*sy
			bodyStart = contBodyStart * sy
		}
		y := bodyStart + firstRowOffset*sy

		k := fit(next, y, bottom)
		if next+k >= n {
			kr := fit(next, y, bottom-reserve)
			switch {
			case next+kr >= n:
				k = n - next
			case kr > 0:
				k = kr
			case k > 1:
				k--
			}
		}
		if k == 0 && next < n {
			k = 1
		}

		for i := next; i < next+k; i++ {
			pg.Rows = append(pg.Rows, Row{Item: i, Top: y - rowInset*sy, Height: heights[i]})
			y += heights[i] + p.Spacing
		}
		pg.ItemsEnd = y
		next += k

		if next >= n {
			pg.Last = true
			pg.Totals = totalsAt(y+totalsGap*sy, H, sy)
			pg.Footer = footerAt(pg.Totals.End+footerGap*sy, tpl, H, sx, sy)
			p.Pages = append(p.Pages, pg)
			return p
		}
		p.Pages = append(p.Pages, pg)
	}
}

func totalsAt(y, H, sy float64) Totals {
	lh := H * 0.025
	t := Totals{SubtotalY: y, LineHeight: lh}
	t.TaxY = t.SubtotalY + lh + 5*sy
	t.TotalY = t.TaxY + lh + 10*sy
	t.RuleY = t.TotalY - 5*sy
	t.End = t.TotalY + lh
	return t
}

// Footer text boxes sit in the left column at the level of the totals block
// and are pulled back when they would run into the bottom margin.
func footerAt(start float64, tpl model.Template, H, sx, sy float64) Footer {
	thankY := start - 60*sy
	if limit := H - 90*sy - 80*sy; thankY > limit {
		thankY = limit
	}
	policyY := thankY + 50*sy
	w := footerWidth * sx
	return Footer{
		ThankYou: model.Rect{X: tpl.ThankYou.X * sx, Y: thankY, W: w, H: 40 * sy},
		Policy:   model.Rect{X: tpl.Policy.X * sx, Y: policyY, W: w, H: 80 * sy},
	}
}

const footerWidth = 380

// EstimateTotals returns where a single-page plan for n single-line items
// would put the totals and footer, in logical units.
func EstimateTotals(tpl model.Template, n int) (Totals, Footer) {
	o := model.Order{LineItems: make([]model.LineItem, n)}
	p := PlanSinglePage(o, tpl, model.PageWidth, model.PageHeight, nil)
	pg := p.Pages[0]
	return pg.Totals, pg.Footer
}
