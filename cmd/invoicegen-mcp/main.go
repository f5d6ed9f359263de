// Command invoicegen-mcp is an MCP (Model Context Protocol) server that lets
// AI assistants import orders, plan layouts, preview and generate invoices.
//
// # Installation
//
//	go install github.com/lvillar/invoicegen/cmd/invoicegen-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "invoicegen": {
//	      "command": "invoicegen-mcp",
//	      "args": ["--template", "/path/to/template.json"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - import_orders: List the orders of a CSV export
//   - plan_layout: Page count and item placement for one order
//   - generate_invoices: Render a PDF, or one PDF per order
//   - render_preview: PNG preview of an invoice page
//   - load_template: Switch to a template JSON file
//   - load_highlights: Switch to highlight rules from a workbook
//
// # Available Resources
//
//   - invoicegen://template : Current template
//   - invoicegen://template/default : Built-in template
//   - invoicegen://highlights : Current highlight rules
//
// Logs go to stderr; stdout carries only protocol messages.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/lvillar/invoicegen/config"
	"github.com/lvillar/invoicegen/mcp"
)

func main() {
	fs := config.Flags("invoicegen-mcp")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "invoicegen-mcp: %v\n", err)
		os.Exit(2)
	}
	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invoicegen-mcp: %v\n", err)
		os.Exit(2)
	}
	log, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invoicegen-mcp: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	g, err := cfg.Generator(log)
	if err != nil {
		log.Fatal("setting up generator", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer("invoicegen-mcp", mcp.WithLogger(log))
	mcp.RegisterInvoiceTools(server, g)
	mcp.RegisterInvoiceResources(server, g)

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped", zap.Error(err))
		stop()
		log.Sync()
		os.Exit(1)
	}
}
