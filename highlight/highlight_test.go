package highlight

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/lvillar/invoicegen/model"
)

func TestResolveFirstMatchWins(t *testing.T) {
	r := model.RGB(255, 0, 0)
	g := model.RGB(0, 255, 0)
	rules := []model.HighlightRule{
		{TextMatch: "red", Color: r},
		{TextMatch: "redwood", Color: g},
	}

	c, ok := Resolve("redwood tree", rules)
	if !ok || c != r {
		t.Fatalf("Resolve = %v, %v; want %v", c, ok, r)
	}

	// Reversing the list changes the answer.
	rules[0], rules[1] = rules[1], rules[0]
	c, ok = Resolve("redwood tree", rules)
	if !ok || c != g {
		t.Fatalf("Resolve after reorder = %v, %v; want %v", c, ok, g)
	}
}

func TestResolve(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		desc string
		want bool
	}{
		{"Goldenrod 1 gal", true},
		{"HUCKLEBERRY, evergreen", true},
		{"Salal", false},
		{"", false},
	}
	for _, tt := range tests {
		if _, ok := Resolve(tt.desc, rules); ok != tt.want {
			t.Errorf("Resolve(%q) matched = %v, want %v", tt.desc, ok, tt.want)
		}
	}

	if _, ok := Resolve("anything", []model.HighlightRule{{TextMatch: ""}}); ok {
		t.Error("empty text match should never match")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Color
		wantErr bool
	}{
		{"red", model.RGB(255, 0, 0), false},
		{" Light Blue ", model.RGB(0x87, 0xCE, 0xEB), false},
		{"grey", model.RGB(0x80, 0x80, 0x80), false},
		{"#DAA520", model.RGB(218, 165, 32), false},
		{"8a2be2", model.RGB(138, 43, 226), false},
		{"teal", model.Color{}, true},
		{"#12345", model.Color{}, true},
		{"zzzzzz", model.Color{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.xlsx")

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Highlights"); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{
		{"Text", "Color"},
		{"Goldenrod", "yellow"},
		{"=== Reference ===", ""},
		{"Standard colors:", ""},
		{"red", "red"},
		{"• use any name below", ""},
		{"Salal", "teal"},
		{"Fern", "#90ee90"},
		{"goldenrod", "FFA500"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Highlights", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	rules, err := LoadWorkbook(path)
	if err != nil {
		t.Fatalf("LoadWorkbook: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2: %+v", len(rules), rules)
	}
	if rules[0].TextMatch != "Goldenrod" || rules[0].Color != model.RGB(0xFF, 0xA5, 0x00) {
		t.Errorf("rule 0 = %+v, want Goldenrod with the later orange color", rules[0])
	}
	if rules[1].TextMatch != "Fern" || rules[1].Color != model.RGB(0x90, 0xEE, 0x90) {
		t.Errorf("rule 1 = %+v", rules[1])
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.xlsx")
	in := append(DefaultRules(), model.HighlightRule{TextMatch: "Oregon grape", Color: model.RGB(1, 2, 3)})

	if err := SaveWorkbook(path, in); err != nil {
		t.Fatalf("SaveWorkbook: %v", err)
	}
	out, err := LoadWorkbook(path)
	if err != nil {
		t.Fatalf("LoadWorkbook: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d rules, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("rule %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestLoadWorkbookNoSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	f := excelize.NewFile()
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := LoadWorkbook(path); !errors.Is(err, ErrNoRulesSheet) {
		t.Fatalf("err = %v, want ErrNoRulesSheet", err)
	}
}

func ExampleResolve() {
	c, ok := Resolve("Huckleberry (evergreen)", DefaultRules())
	fmt.Println(c.Hex(), ok)
	// Output: #8A2BE2 true
}
