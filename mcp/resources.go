package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lvillar/invoicegen"
	"github.com/lvillar/invoicegen/model"
	"github.com/lvillar/invoicegen/tplstore"
)

// Resource URIs.
const (
	URITemplate        = "invoicegen://template"
	URIDefaultTemplate = "invoicegen://template/default"
	URIHighlights      = "invoicegen://highlights"
)

// RegisterInvoiceResources adds the template and highlight rule resources
// backed by g.
func RegisterInvoiceResources(s *Server, g *invoicegen.Generator) {
	s.AddResource(Resource{
		URI:         URITemplate,
		Name:        "Current Template",
		Description: "The invoice template in use, in the template JSON format accepted by load_template.",
		MIMEType:    "application/json",
		Handler: func(uri string) ([]ResourceContent, error) {
			return templateContent(uri, g.Template())
		},
	})
	s.AddResource(Resource{
		URI:         URIDefaultTemplate,
		Name:        "Default Template",
		Description: "The built-in invoice template.",
		MIMEType:    "application/json",
		Handler: func(uri string) ([]ResourceContent, error) {
			return templateContent(uri, model.DefaultTemplate())
		},
	})
	s.AddResource(Resource{
		URI:         URIHighlights,
		Name:        "Highlight Rules",
		Description: "Line item highlight rules in match order. The first rule whose text occurs in a description wins.",
		MIMEType:    "application/json",
		Handler: func(uri string) ([]ResourceContent, error) {
			return highlightContent(uri, g.HighlightRules())
		},
	})
}

func templateContent(uri string, tpl model.Template) ([]ResourceContent, error) {
	var buf bytes.Buffer
	if err := tplstore.Save(&buf, tpl); err != nil {
		return nil, err
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: buf.String()}}, nil
}

type ruleInfo struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

func highlightContent(uri string, rules []model.HighlightRule) ([]ResourceContent, error) {
	out := make([]ruleInfo, len(rules))
	for i, r := range rules {
		out[i] = ruleInfo{Text: r.TextMatch, Color: r.Color.Hex()}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding rules: %w", err)
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}, nil
}
