// Command invoicegen renders invoices for a Shopify-style order CSV export.
//
// # Installation
//
//	go install github.com/lvillar/invoicegen/cmd/invoicegen@latest
//
// # Usage
//
//	invoicegen -i orders.csv -o invoices.pdf
//	invoicegen -i orders.csv -o out/ --split --sort date
//	invoicegen -i orders.csv --template shop.json --highlights rules.xlsx --preview first.png
//
// Every flag can also be set through an INVOICEGEN_* environment variable
// (INVOICEGEN_LOG_LEVEL=debug) or a config file passed with --config.
package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/lvillar/invoicegen"
	"github.com/lvillar/invoicegen/config"
	"github.com/lvillar/invoicegen/csvimport"
	"github.com/lvillar/invoicegen/model"
)

func main() {
	fs := config.Flags("invoicegen")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "invoicegen: %v\n", err)
		os.Exit(2)
	}
	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invoicegen: %v\n", err)
		os.Exit(2)
	}
	log, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invoicegen: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("invoicegen failed", zap.Error(err))
		stop()
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if err := cfg.RequireBatch(); err != nil {
		return err
	}
	orders, err := csvimport.ReadFile(cfg.Orders)
	if err != nil {
		return err
	}
	model.SortOrders(orders, cfg.Sort)
	log.Info("orders imported", zap.String("path", cfg.Orders), zap.Int("orders", len(orders)))

	g, err := cfg.Generator(log, invoicegen.WithProgress(func(done, total int) {
		log.Debug("progress", zap.Int("done", done), zap.Int("total", total))
	}))
	if err != nil {
		return err
	}

	if cfg.Preview != "" && len(orders) > 0 {
		if err := writePreview(g, orders[0], cfg.Preview); err != nil {
			return err
		}
		log.Info("preview written", zap.String("path", cfg.Preview), zap.String("order_id", orders[0].ID))
	}

	if cfg.Split {
		if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
			return err
		}
		paths, err := g.GenerateSplit(ctx, cfg.Output, orders)
		if err != nil {
			return err
		}
		log.Info("invoices split", zap.String("dir", cfg.Output), zap.Int("files", len(paths)))
		return nil
	}
	return g.GenerateFile(ctx, cfg.Output, orders)
}

func writePreview(g *invoicegen.Generator, o model.Order, path string) error {
	img, err := g.Preview(o)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding preview: %w", err)
	}
	return f.Close()
}
