package render

import (
	"encoding/json"
	"fmt"

	"github.com/gi8lino/jirasearch/internal/search"
)

// Document is the JSON/YAML shape of a search result. The shared field-name
// map is emitted once at the top instead of per issue.
type Document struct {
	Endpoint search.Endpoint    `json:"endpoint" yaml:"endpoint"`
	Total    int                `json:"total" yaml:"total"`
	Names    *search.FieldNames `json:"names" yaml:"names"`
	Issues   []IssueDocument    `json:"issues" yaml:"issues"`
}

// IssueDocument is one issue with decoded field values.
type IssueDocument struct {
	ID     string         `json:"id" yaml:"id"`
	Key    string         `json:"key" yaml:"key"`
	Self   string         `json:"self,omitempty" yaml:"self,omitempty"`
	Fields map[string]any `json:"fields" yaml:"fields"`
}

// NewDocument converts res into a Document.
func NewDocument(res search.Result) (Document, error) {
	doc := Document{
		Endpoint: res.Endpoint,
		Total:    len(res.Issues),
		Names:    search.NewFieldNames(nil),
		Issues:   make([]IssueDocument, 0, len(res.Issues)),
	}
	if len(res.Issues) > 0 && res.Issues[0].Names != nil {
		doc.Names = res.Issues[0].Names
	}

	for _, issue := range res.Issues {
		fields := make(map[string]any, len(issue.Fields))
		for id, raw := range issue.Fields {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return Document{}, fmt.Errorf("decode field %q of %s: %w", id, issue.Key, err)
			}
			fields[id] = v
		}
		doc.Issues = append(doc.Issues, IssueDocument{
			ID:     issue.ID,
			Key:    issue.Key,
			Self:   issue.Self,
			Fields: fields,
		})
	}
	return doc, nil
}
