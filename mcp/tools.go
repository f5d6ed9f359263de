package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"os"

	"github.com/lvillar/invoicegen"
	"github.com/lvillar/invoicegen/csvimport"
	"github.com/lvillar/invoicegen/highlight"
	"github.com/lvillar/invoicegen/model"
	"github.com/lvillar/invoicegen/surface/pdf"
	"github.com/lvillar/invoicegen/tplstore"
)

// RegisterInvoiceTools adds the invoice tools to s. All tools share g, so a
// template or rule set loaded by one call applies to the calls that follow.
func RegisterInvoiceTools(s *Server, g *invoicegen.Generator) {
	t := &invoiceTools{g: g}
	s.AddTool(Tool{
		Name:        "import_orders",
		Description: "Import a Shopify-style order CSV export and list the orders with their totals.",
		InputSchema: objectSchema([]string{"path"}, map[string]any{
			"path": prop("string", "Path to the orders CSV file"),
			"sort": prop("string", "Sort key: id, date, name or total (default: id)"),
		}),
		Handler: t.importOrders,
	})
	s.AddTool(Tool{
		Name:        "plan_layout",
		Description: "Lay out one order and report the page count, compaction and the line items on each page.",
		InputSchema: objectSchema([]string{"path"}, map[string]any{
			"path":    prop("string", "Path to the orders CSV file"),
			"orderId": prop("string", "Order to plan (default: first order)"),
			"width":   prop("number", "Target width in points (default: 540)"),
			"height":  prop("number", "Target height in points (default: 720)"),
		}),
		Handler: t.planLayout,
	})
	s.AddTool(Tool{
		Name:        "generate_invoices",
		Description: "Render invoices for every order in a CSV file into one PDF, or one PDF per order when split is set.",
		InputSchema: objectSchema([]string{"path", "output"}, map[string]any{
			"path":   prop("string", "Path to the orders CSV file"),
			"output": prop("string", "Output PDF file, or an existing directory when split is set"),
			"sort":   prop("string", "Sort key: id, date, name or total (default: id)"),
			"split":  prop("boolean", "Write one PDF per order"),
		}),
		Handler: t.generateInvoices,
	})
	s.AddTool(Tool{
		Name:        "render_preview",
		Description: "Render a page of one order's invoice as a PNG image.",
		InputSchema: objectSchema([]string{"path"}, map[string]any{
			"path":    prop("string", "Path to the orders CSV file"),
			"orderId": prop("string", "Order to preview (default: first order)"),
			"page":    prop("number", "1-based page number (default: 1)"),
		}),
		Handler: t.renderPreview,
	})
	s.AddTool(Tool{
		Name:        "load_template",
		Description: "Load an invoice template JSON file and use it for subsequent calls.",
		InputSchema: objectSchema([]string{"path"}, map[string]any{
			"path": prop("string", "Path to the template JSON file"),
		}),
		Handler: t.loadTemplate,
	})
	s.AddTool(Tool{
		Name:        "load_highlights",
		Description: "Load highlight rules from an XLSX workbook and use them for subsequent calls.",
		InputSchema: objectSchema([]string{"path"}, map[string]any{
			"path": prop("string", "Path to the highlight rules workbook"),
		}),
		Handler: t.loadHighlights,
	})
}

func objectSchema(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func stringArg(args map[string]any, key string) (string, error) {
	s, ok := args[key].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("missing '%s' argument", key)
	}
	return s, nil
}

func optString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// JSON numbers decode as float64.
func optNumber(args map[string]any, key string, def float64) float64 {
	if n, ok := args[key].(float64); ok && n > 0 {
		return n
	}
	return def
}

type invoiceTools struct {
	g *invoicegen.Generator
}

func loadOrders(args map[string]any) ([]model.Order, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	key, err := model.ParseSortKey(optString(args, "sort"))
	if err != nil {
		return nil, err
	}
	orders, err := csvimport.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, invoicegen.ErrNoOrders
	}
	model.SortOrders(orders, key)
	return orders, nil
}

func findOrder(orders []model.Order, id string) (model.Order, error) {
	if id == "" {
		return orders[0], nil
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return model.Order{}, fmt.Errorf("order %q not found", id)
}

type orderInfo struct {
	ID       string `json:"id"`
	Date     string `json:"date,omitempty"`
	Billing  string `json:"billingName"`
	Items    int    `json:"items"`
	Subtotal string `json:"subtotal"`
	Taxes    string `json:"taxes"`
	Total    string `json:"total"`
}

func (t *invoiceTools) importOrders(_ context.Context, args map[string]any) (ToolResult, error) {
	orders, err := loadOrders(args)
	if err != nil {
		return ToolResult{}, err
	}
	out := make([]orderInfo, len(orders))
	for i, o := range orders {
		out[i] = orderInfo{
			ID:       o.ID,
			Date:     o.FormattedDate(),
			Billing:  o.BillingName,
			Items:    len(o.LineItems),
			Subtotal: model.FormatMoney(o.CalculateSubtotal()),
			Taxes:    model.FormatMoney(o.Taxes),
			Total:    model.FormatMoney(o.Total),
		}
	}
	return JSONResult(map[string]any{"count": len(out), "orders": out})
}

type pageInfo struct {
	Number    int   `json:"number"`
	Continued bool  `json:"continued"`
	Last      bool  `json:"last"`
	Items     []int `json:"items"`
}

func (t *invoiceTools) planLayout(_ context.Context, args map[string]any) (ToolResult, error) {
	orders, err := loadOrders(args)
	if err != nil {
		return ToolResult{}, err
	}
	o, err := findOrder(orders, optString(args, "orderId"))
	if err != nil {
		return ToolResult{}, err
	}
	w := optNumber(args, "width", pdf.ContentWidth)
	h := optNumber(args, "height", pdf.ContentHeight)

	plan := t.g.PlanFor(o, w, h)
	pages := make([]pageInfo, len(plan.Pages))
	for i, pg := range plan.Pages {
		items := make([]int, len(pg.Rows))
		for j, r := range pg.Rows {
			items[j] = r.Item
		}
		pages[i] = pageInfo{Number: pg.Number, Continued: pg.Continued, Last: pg.Last, Items: items}
	}
	return JSONResult(map[string]any{
		"orderId":   o.ID,
		"mode":      plan.Mode.String(),
		"rowHeight": plan.RowHeight,
		"spacing":   plan.Spacing,
		"clamped":   plan.Clamped,
		"pages":     pages,
	})
}

func (t *invoiceTools) generateInvoices(ctx context.Context, args map[string]any) (ToolResult, error) {
	orders, err := loadOrders(args)
	if err != nil {
		return ToolResult{}, err
	}
	output, err := stringArg(args, "output")
	if err != nil {
		return ToolResult{}, err
	}

	if split, _ := args["split"].(bool); split {
		paths, err := t.g.GenerateSplit(ctx, output, orders)
		if err != nil {
			return ToolResult{}, err
		}
		return JSONResult(map[string]any{"files": paths})
	}

	if err := t.g.GenerateFile(ctx, output, orders); err != nil {
		return ToolResult{}, err
	}
	info, err := os.Stat(output)
	if err != nil {
		return ToolResult{}, err
	}
	return TextResult(fmt.Sprintf("Generated %d invoices: %s (%d bytes)", len(orders), output, info.Size())), nil
}

func (t *invoiceTools) renderPreview(_ context.Context, args map[string]any) (ToolResult, error) {
	orders, err := loadOrders(args)
	if err != nil {
		return ToolResult{}, err
	}
	o, err := findOrder(orders, optString(args, "orderId"))
	if err != nil {
		return ToolResult{}, err
	}
	page := int(optNumber(args, "page", 1))

	img, err := t.g.PreviewPage(o, page-1)
	if err != nil {
		return ToolResult{}, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ToolResult{}, fmt.Errorf("encoding preview: %w", err)
	}
	return ToolResult{Content: []ContentBlock{
		{Type: "image", MIMEType: "image/png", Data: base64.StdEncoding.EncodeToString(buf.Bytes())},
		{Type: "text", Text: fmt.Sprintf("%s, page %d", o.Summary(), page)},
	}}, nil
}

func (t *invoiceTools) loadTemplate(_ context.Context, args map[string]any) (ToolResult, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return ToolResult{}, err
	}
	tpl, err := tplstore.LoadFile(path)
	if err != nil {
		return ToolResult{}, err
	}
	if err := t.g.SetTemplate(tpl); err != nil {
		return ToolResult{}, err
	}
	return TextResult("Template loaded: " + path), nil
}

func (t *invoiceTools) loadHighlights(_ context.Context, args map[string]any) (ToolResult, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return ToolResult{}, err
	}
	rules, err := highlight.LoadWorkbook(path)
	if err != nil {
		return ToolResult{}, err
	}
	t.g.SetHighlightRules(rules)
	return TextResult(fmt.Sprintf("Loaded %d highlight rules", len(rules))), nil
}
