package templates

import (
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/gi8lino/jirasearch/internal/search"
)

// FuncMap returns all helper functions for output templates.
func FuncMap() template.FuncMap {
	fm := sprig.TxtFuncMap()
	fm["formatJiraDate"] = formatJiraDate
	fm["setany"] = setany
	fm["dig"] = templateDig
	fm["field"] = templateField
	fm["name"] = templateName
	return fm
}

// setany sets m[key] = val for map[string]any and returns the map.
func setany(m map[string]any, key string, val any) map[string]any {
	m[key] = val
	return m
}

// templateDig walks a dotted path through nested maps and returns the string
// found there. If m is itself a string, it is returned directly.
func templateDig(m any, path string) string {
	cur := m
	for key := range strings.SplitSeq(path, ".") {
		v, ok := cur.(map[string]any)
		if !ok {
			break
		}
		cur = v[key]
	}
	if s, ok := cur.(string); ok {
		return s
	}
	return ""
}

// templateField decodes field id of issue into a generic value.
// Missing or undecodable fields yield nil.
func templateField(issue search.Issue, id string) any {
	raw := issue.Field(id)
	if raw == nil {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// templateName returns the display name of field id, falling back to the id.
func templateName(issue search.Issue, id string) string {
	if name, ok := issue.Names.Lookup(id); ok {
		return name
	}
	return id
}

// formatJiraDate parses a Jira timestamp and returns it formatted using the provided layout.
// If parsing fails, the original string is returned.
func formatJiraDate(input, layout string) string {
	input = strings.Replace(input, "Z", "+0000", 1) // normalize timezone
	parsed, err := time.Parse("2006-01-02T15:04:05.000-0700", input)
	if err != nil {
		return input
	}
	return parsed.Format(layout)
}
