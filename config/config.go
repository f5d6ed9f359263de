// Package config loads invoicegen settings from command-line flags,
// INVOICEGEN_* environment variables and an optional config file, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lvillar/invoicegen"
	"github.com/lvillar/invoicegen/highlight"
	"github.com/lvillar/invoicegen/layout"
	"github.com/lvillar/invoicegen/model"
	"github.com/lvillar/invoicegen/tplstore"
)

// EnvPrefix prefixes every environment variable, e.g. INVOICEGEN_LOG_LEVEL.
const EnvPrefix = "INVOICEGEN"

// Setting keys. Flags carry the same names.
const (
	KeyConfig      = "config"
	KeyOrders      = "orders"
	KeyOutput      = "output"
	KeyTemplate    = "template"
	KeyHighlights  = "highlights"
	KeyMode        = "mode"
	KeySort        = "sort"
	KeyPreview     = "preview"
	KeySplit       = "split"
	KeyTitle       = "title"
	KeyWatermark   = "watermark"
	KeyPageNumbers = "page-numbers"
	KeyLogLevel    = "log-level"
	KeyLogFormat   = "log-format"
)

// Config is the resolved application configuration.
type Config struct {
	Orders      string // CSV order export
	Output      string // PDF file, or a directory when Split is set
	Template    string // template JSON; empty means the default template
	Highlights  string // XLSX highlight rules; empty means the default rules
	Mode        layout.Mode
	Sort        model.SortKey
	Preview     string // PNG path for a preview of the first order
	Split       bool   // one PDF per order
	Title       string
	Watermark   string
	PageNumbers bool
	LogLevel    zapcore.Level
	LogFormat   string // json or console
}

// Flags returns the flag set understood by Load.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP(KeyConfig, "c", "", "config file (yaml, json or toml)")
	fs.StringP(KeyOrders, "i", "", "orders CSV file")
	fs.StringP(KeyOutput, "o", "invoices.pdf", "output PDF, or directory with --split")
	fs.StringP(KeyTemplate, "t", "", "template JSON file")
	fs.String(KeyHighlights, "", "highlight rules workbook (.xlsx)")
	fs.StringP(KeyMode, "m", layout.ModeAuto.String(), "pagination mode: auto, single, paginate or estimate")
	fs.StringP(KeySort, "s", string(model.SortByID), "order sort key: id, date, name or total")
	fs.String(KeyPreview, "", "write a PNG preview of the first order")
	fs.Bool(KeySplit, false, "write one PDF per order into the output directory")
	fs.String(KeyTitle, "Invoices", "PDF title")
	fs.String(KeyWatermark, "", "watermark text stamped on every page")
	fs.Bool(KeyPageNumbers, false, "number the pages of multi-page invoices")
	fs.String(KeyLogLevel, "info", "log level: debug, info, warn or error")
	fs.String(KeyLogFormat, "console", "log format: console or json")
	return fs
}

// Load resolves the configuration from fs, the environment and the config
// file named by --config. fs must already be parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}

	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	c := &Config{
		Orders:      v.GetString(KeyOrders),
		Output:      v.GetString(KeyOutput),
		Template:    v.GetString(KeyTemplate),
		Highlights:  v.GetString(KeyHighlights),
		Preview:     v.GetString(KeyPreview),
		Split:       v.GetBool(KeySplit),
		Title:       v.GetString(KeyTitle),
		Watermark:   v.GetString(KeyWatermark),
		PageNumbers: v.GetBool(KeyPageNumbers),
		LogFormat:   strings.ToLower(v.GetString(KeyLogFormat)),
	}

	var errs []error
	var err error
	if c.Mode, err = layout.ParseMode(v.GetString(KeyMode)); err != nil {
		errs = append(errs, err)
	}
	if c.Sort, err = model.ParseSortKey(v.GetString(KeySort)); err != nil {
		errs = append(errs, err)
	}
	if c.LogLevel, err = zapcore.ParseLevel(v.GetString(KeyLogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// RequireBatch reports whether the settings needed for a batch run are
// present.
func (c *Config) RequireBatch() error {
	switch {
	case c.Orders == "":
		return errors.New("config: orders file is required")
	case c.Output == "":
		return errors.New("config: output path is required")
	}
	return nil
}

// NewLogger builds the application logger. Console output uses the
// development encoder; json uses the production one.
func (c *Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}
	return l, nil
}

// Generator returns a generator set up from c: options, template file and
// highlight workbook. Without a template or workbook the defaults apply.
func (c *Config) Generator(log *zap.Logger, opts ...invoicegen.Option) (*invoicegen.Generator, error) {
	opts = append([]invoicegen.Option{
		invoicegen.WithLogger(log),
		invoicegen.WithMode(c.Mode),
		invoicegen.WithTitle(c.Title),
		invoicegen.WithWatermark(c.Watermark),
		invoicegen.WithPageNumbers(c.PageNumbers),
	}, opts...)
	g := invoicegen.New(opts...)

	if c.Template != "" {
		tpl, err := tplstore.LoadFile(c.Template)
		if err != nil {
			return nil, err
		}
		if err := g.SetTemplate(tpl); err != nil {
			return nil, err
		}
	}
	if c.Highlights != "" {
		rules, err := highlight.LoadWorkbook(c.Highlights)
		if err != nil {
			return nil, err
		}
		g.SetHighlightRules(rules)
	}
	return g, nil
}
