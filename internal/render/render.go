package render

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/gi8lino/jirasearch/internal/config"
	"github.com/gi8lino/jirasearch/internal/search"
	"github.com/gi8lino/jirasearch/internal/templates"

	"gopkg.in/yaml.v3"
)

// templateData is what text and custom templates see.
type templateData struct {
	Endpoint search.Endpoint
	Total    int
	Names    *search.FieldNames
	Issues   []search.Issue
}

// Renderer writes search results in one output format.
type Renderer struct {
	format string
	tmpl   *template.Template
}

// New returns a Renderer for format. text is only used by the template format.
func New(format, text string) (*Renderer, error) {
	r := &Renderer{format: format}
	switch format {
	case config.FormatJSON, config.FormatYAML:
		return r, nil
	case config.FormatText:
		text = templates.DefaultText
	case config.FormatTemplate:
		if text == "" {
			return nil, fmt.Errorf("template format requires a template")
		}
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}

	tmpl, err := templates.Parse(format, text)
	if err != nil {
		return nil, err
	}
	r.tmpl = tmpl
	return r, nil
}

// Render writes res to w.
func (r *Renderer) Render(w io.Writer, res search.Result) error {
	switch r.format {
	case config.FormatJSON:
		doc, err := NewDocument(res)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)

	case config.FormatYAML:
		doc, err := NewDocument(res)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()

	default:
		data := templateData{
			Endpoint: res.Endpoint,
			Total:    len(res.Issues),
			Issues:   res.Issues,
		}
		if len(res.Issues) > 0 {
			data.Names = res.Issues[0].Names
		}
		if err := r.tmpl.Execute(w, data); err != nil {
			return templates.NewRenderError("template", "execute "+r.format, err.Error())
		}
		return nil
	}
}
