// Package tplstore persists invoice templates as a flat JSON object.
//
// Example JSON:
//
//	{
//	  "logoPath": "logo.png",
//	  "logoX": 590, "logoY": 20, "logoWidth": 100, "logoHeight": 100,
//	  "orderNumberX": 50, "orderNumberY": 30,
//	  "tableX": 50, "tableY": 140, "rowHeight": 14,
//	  "thankYouText": "Thank you for your order."
//	}
//
// Loading starts from model.DefaultTemplate and overlays every key that is
// present, so older documents that carry only the legacy keys still load.
package tplstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lvillar/invoicegen/model"
)

// field binds one document key to a template field. Exactly one of num or
// str is set.
type field struct {
	key    string
	legacy bool
	num    func(*model.Template) *float64
	str    func(*model.Template) *string
}

func num(key string, legacy bool, f func(*model.Template) *float64) field {
	return field{key: key, legacy: legacy, num: f}
}

func str(key string, legacy bool, f func(*model.Template) *string) field {
	return field{key: key, legacy: legacy, str: f}
}

// fields lists every persisted key. Legacy keys are the ones older documents
// carry.
var fields = []field{
	str("logoPath", true, func(t *model.Template) *string { return &t.LogoPath }),
	num("logoX", true, func(t *model.Template) *float64 { return &t.Logo.X }),
	num("logoY", true, func(t *model.Template) *float64 { return &t.Logo.Y }),
	num("logoWidth", true, func(t *model.Template) *float64 { return &t.Logo.W }),
	num("logoHeight", true, func(t *model.Template) *float64 { return &t.Logo.H }),
	num("orderNumberX", true, func(t *model.Template) *float64 { return &t.OrderNumber.X }),
	num("orderNumberY", true, func(t *model.Template) *float64 { return &t.OrderNumber.Y }),
	num("dateX", true, func(t *model.Template) *float64 { return &t.Date.X }),
	num("dateY", true, func(t *model.Template) *float64 { return &t.Date.Y }),
	num("billingX", true, func(t *model.Template) *float64 { return &t.Billing.X }),
	num("billingY", true, func(t *model.Template) *float64 { return &t.Billing.Y }),
	num("tableX", true, func(t *model.Template) *float64 { return &t.TableStart.X }),
	num("tableY", true, func(t *model.Template) *float64 { return &t.TableStart.Y }),
	num("rowHeight", true, func(t *model.Template) *float64 { return &t.RowHeight }),
	num("subtotalX", true, func(t *model.Template) *float64 { return &t.Subtotal.X }),
	num("subtotalY", true, func(t *model.Template) *float64 { return &t.Subtotal.Y }),

	num("taxX", false, func(t *model.Template) *float64 { return &t.Tax.X }),
	num("taxY", false, func(t *model.Template) *float64 { return &t.Tax.Y }),
	num("totalX", false, func(t *model.Template) *float64 { return &t.Total.X }),
	num("totalY", false, func(t *model.Template) *float64 { return &t.Total.Y }),
	num("thankYouX", false, func(t *model.Template) *float64 { return &t.ThankYou.X }),
	num("thankYouY", false, func(t *model.Template) *float64 { return &t.ThankYou.Y }),
	num("policyX", false, func(t *model.Template) *float64 { return &t.Policy.X }),
	num("policyY", false, func(t *model.Template) *float64 { return &t.Policy.Y }),
	str("thankYouText", false, func(t *model.Template) *string { return &t.ThankYouText }),
	str("policyText", false, func(t *model.Template) *string { return &t.PolicyText }),
	num("quantityX", false, func(t *model.Template) *float64 { return &t.Columns.QuantityX }),
	num("descriptionX", false, func(t *model.Template) *float64 { return &t.Columns.DescriptionX }),
	num("unitPriceX", false, func(t *model.Template) *float64 { return &t.Columns.UnitPriceX }),
	num("lineTotalX", false, func(t *model.Template) *float64 { return &t.Columns.LineTotalX }),
	num("descriptionWidth", false, func(t *model.Template) *float64 { return &t.Columns.DescriptionWidth }),
	num("tableWidth", false, func(t *model.Template) *float64 { return &t.Columns.TableWidth }),
	str("barcodeKind", false, func(t *model.Template) *string { return &t.Barcode.Kind }),
	num("barcodeX", false, func(t *model.Template) *float64 { return &t.Barcode.Rect.X }),
	num("barcodeY", false, func(t *model.Template) *float64 { return &t.Barcode.Rect.Y }),
	num("barcodeWidth", false, func(t *model.Template) *float64 { return &t.Barcode.Rect.W }),
	num("barcodeHeight", false, func(t *model.Template) *float64 { return &t.Barcode.Rect.H }),
	str("letterheadPath", false, func(t *model.Template) *string { return &t.LetterheadPath }),
}

// Keys returns the persisted document keys in declaration order. With legacy
// set only the keys of the legacy sixteen-field format are returned.
func Keys(legacy bool) []string {
	var keys []string
	for _, f := range fields {
		if !legacy || f.legacy {
			keys = append(keys, f.key)
		}
	}
	return keys
}

// Save writes every template field to w.
func Save(w io.Writer, tpl model.Template) error {
	return save(w, tpl, false)
}

// SaveLegacy writes only the legacy keys. Fields outside that set are lost
// and come back as defaults on the next Load.
func SaveLegacy(w io.Writer, tpl model.Template) error {
	return save(w, tpl, true)
}

func save(w io.Writer, tpl model.Template, legacy bool) error {
	doc := make(map[string]any, len(fields))
	for _, f := range fields {
		if legacy && !f.legacy {
			continue
		}
		if f.num != nil {
			doc[f.key] = *f.num(&tpl)
		} else {
			doc[f.key] = *f.str(&tpl)
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("tplstore: marshal: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("tplstore: write: %w", err)
	}
	return nil
}

// Load reads a template document. Keys that are missing, null or hold a
// value of the wrong type keep their default; unknown keys are ignored.
func Load(r io.Reader) (model.Template, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return model.Template{}, fmt.Errorf("tplstore: decode: %w", err)
	}

	tpl := model.DefaultTemplate()
	for _, f := range fields {
		raw, ok := doc[f.key]
		if !ok || string(raw) == "null" {
			continue
		}
		if f.num != nil {
			var v float64
			if json.Unmarshal(raw, &v) == nil {
				*f.num(&tpl) = v
			}
			continue
		}
		var v string
		if json.Unmarshal(raw, &v) == nil {
			*f.str(&tpl) = v
		}
	}
	return tpl, nil
}

// LoadFile reads the template stored at path.
func LoadFile(path string) (model.Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Template{}, fmt.Errorf("tplstore: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// SaveFile writes tpl to path, replacing the file only once the whole
// document has been written.
func SaveFile(path string, tpl model.Template) error {
	var buf bytes.Buffer
	if err := Save(&buf, tpl); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".template-*.json")
	if err != nil {
		return fmt.Errorf("tplstore: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("tplstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("tplstore: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("tplstore: %w", err)
	}
	return nil
}
