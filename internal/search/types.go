package search

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// DefaultMaxResults is the page-size cap used when a request does not set one.
const DefaultMaxResults = 1000

// Request describes one search call.
type Request struct {
	JQL        string   // query, passed through untouched
	Fields     []string // field ids to return; empty means the default set
	Expand     []string // expansion directives, e.g. "names"
	MaxResults int      // page-size cap
	StartAt    int      // offset; only honored by the legacy endpoint
}

// NewRequest returns a Request for jql with default paging.
func NewRequest(jql string) Request {
	return Request{
		JQL:        jql,
		MaxResults: DefaultMaxResults,
	}
}

// withDefaults returns a copy of r with out-of-range paging values replaced.
func (r Request) withDefaults() Request {
	if r.MaxResults <= 0 {
		r.MaxResults = DefaultMaxResults
	}
	if r.StartAt < 0 {
		r.StartAt = 0
	}
	return r
}

// Endpoint names the upstream endpoint that produced a result.
type Endpoint string

const (
	EndpointLegacy   Endpoint = "legacy"
	EndpointEnhanced Endpoint = "enhanced"
)

// FieldNames maps field ids to display names. It is immutable once built and
// shared by every issue of one response.
type FieldNames struct {
	names map[string]string
}

// NewFieldNames copies m into a new read-only FieldNames.
func NewFieldNames(m map[string]string) *FieldNames {
	cp := make(map[string]string, len(m))
	maps.Copy(cp, m)
	return &FieldNames{names: cp}
}

// DisplayName returns the display name of field id, or "" if unknown.
func (n *FieldNames) DisplayName(id string) string {
	if n == nil {
		return ""
	}
	return n.names[id]
}

// Lookup returns the display name of field id and whether it is known.
func (n *FieldNames) Lookup(id string) (string, bool) {
	if n == nil {
		return "", false
	}
	name, ok := n.names[id]
	return name, ok
}

// Len returns the number of known fields.
func (n *FieldNames) Len() int {
	if n == nil {
		return 0
	}
	return len(n.names)
}

// IDs returns the known field ids in sorted order.
func (n *FieldNames) IDs() []string {
	if n == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(n.names))
}

// Map returns a copy of the underlying mapping.
func (n *FieldNames) Map() map[string]string {
	out := make(map[string]string, n.Len())
	if n != nil {
		maps.Copy(out, n.names)
	}
	return out
}

// MarshalJSON encodes the names as a JSON object.
func (n *FieldNames) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Map())
}

// MarshalYAML encodes the names as a YAML mapping.
func (n *FieldNames) MarshalYAML() (any, error) {
	return n.Map(), nil
}

// RawIssue is an issue record as decoded from either endpoint.
type RawIssue struct {
	ID     string
	Key    string
	Self   string
	Fields map[string]json.RawMessage
}

// Page is the common shape of one upstream search response.
type Page struct {
	Issues []RawIssue
	Names  *FieldNames
}

// Issue is a normalized search hit.
type Issue struct {
	ID     string                     `json:"id"`
	Key    string                     `json:"key"`
	Self   string                     `json:"self"`
	Fields map[string]json.RawMessage `json:"fields"`
	Names  *FieldNames                `json:"names"`
}

// Field returns the raw JSON value of field id, or nil if absent.
func (i Issue) Field(id string) json.RawMessage {
	return i.Fields[id]
}

// DecodeField unmarshals field id into v.
func (i Issue) DecodeField(id string, v any) error {
	raw, ok := i.Fields[id]
	if !ok {
		return fmt.Errorf("field %q not present on %s", id, i.Key)
	}
	return json.Unmarshal(raw, v)
}

// Result is the ordered outcome of one search call.
type Result struct {
	Issues   []Issue
	Endpoint Endpoint
}
