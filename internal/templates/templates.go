package templates

import (
	"fmt"
	"text/template"
)

// DefaultText lists one issue per line with key and summary.
const DefaultText = `{{- range .Issues -}}
{{ .Key }}{{ with field . "summary" }}  {{ . }}{{ end }}
{{ end -}}`

// RenderError describes a failure while preparing or executing a template.
type RenderError struct {
	Type    string
	Message string
	Detail  string
}

// NewRenderError returns a RenderError.
func NewRenderError(typ, msg, detail string) *RenderError {
	return &RenderError{Type: typ, Message: msg, Detail: detail}
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
}

// Parse parses text as a named output template with FuncMap installed.
func Parse(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(FuncMap()).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, NewRenderError("template", "parse "+name, err.Error())
	}
	return tmpl, nil
}
