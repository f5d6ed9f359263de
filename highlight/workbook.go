package highlight

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lvillar/invoicegen/model"
)

// Sheet names searched for rules, in order.
var SheetNames = []string{"Highlighting", "Highlights"}

// ErrNoRulesSheet is returned when a workbook has none of SheetNames.
var ErrNoRulesSheet = errors.New("highlight: workbook has no Highlighting sheet")

var referenceLabels = map[string]bool{
	"standard colors:": true,
	"light colors:":    true,
	"custom hex:":      true,
}

// isReferenceRow reports whether a first-column value belongs to the color
// legend users keep on the rules sheet rather than to a rule.
func isReferenceRow(text string) bool {
	return strings.HasPrefix(text, "===") ||
		strings.HasPrefix(text, "•") ||
		strings.HasPrefix(text, "#") ||
		referenceLabels[strings.ToLower(text)] ||
		IsColorName(text)
}

// LoadWorkbook reads rules from an XLSX file. Rows start at 2; column A holds
// the text to match and column B the color. Legend rows and rows with an
// unknown color are skipped. When the same text appears twice (ignoring
// case) the rule keeps its first position and takes the last color.
func LoadWorkbook(path string) ([]model.HighlightRule, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("highlight: open %s: %w", path, err)
	}
	defer f.Close()

	sheet := ""
	for _, want := range SheetNames {
		if idx, err := f.GetSheetIndex(want); err == nil && idx >= 0 {
			sheet = want
			break
		}
	}
	if sheet == "" {
		return nil, ErrNoRulesSheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("highlight: read sheet %s: %w", sheet, err)
	}

	var rules []model.HighlightRule
	index := make(map[string]int)
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		text := strings.TrimSpace(row[0])
		if text == "" || isReferenceRow(text) {
			continue
		}
		var raw string
		if len(row) > 1 {
			raw = row[1]
		}
		c, err := ParseColor(raw)
		if err != nil {
			continue
		}
		key := strings.ToLower(text)
		if at, ok := index[key]; ok {
			rules[at].Color = c
			continue
		}
		index[key] = len(rules)
		rules = append(rules, model.HighlightRule{TextMatch: text, Color: c})
	}
	return rules, nil
}

// SaveWorkbook writes rules to a new XLSX file with a "Highlighting" sheet.
// Colors are written as "#RRGGBB".
func SaveWorkbook(path string, rules []model.HighlightRule) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetNames[0]
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("highlight: rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Text", "Color"}); err != nil {
		return fmt.Errorf("highlight: write header: %w", err)
	}
	for i, r := range rules {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("highlight: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{r.TextMatch, r.Color.Hex()}); err != nil {
			return fmt.Errorf("highlight: write rule %d: %w", i, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("highlight: save %s: %w", path, err)
	}
	return nil
}
