package search

import (
	"context"
	"encoding/json"
	"strings"
)

const (
	legacyPath   = "search"
	enhancedPath = "search/jql"
)

// Transport performs one POST against the REST API and decodes the response into out.
type Transport interface {
	Post(ctx context.Context, path string, payload, out any) error
}

// Executor runs a single-page search against one endpoint.
type Executor interface {
	Execute(ctx context.Context, req Request) (Page, error)
}

// wireIssue is the per-issue shape shared by both endpoints.
type wireIssue struct {
	ID     string                     `json:"id"`
	Key    string                     `json:"key"`
	Self   string                     `json:"self"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// toPage maps wire issues and names into the common Page shape.
func toPage(issues []wireIssue, names map[string]string) Page {
	raw := make([]RawIssue, len(issues))
	for i, wi := range issues {
		raw[i] = RawIssue{
			ID:     wi.ID,
			Key:    wi.Key,
			Self:   wi.Self,
			Fields: wi.Fields,
		}
	}
	return Page{Issues: raw, Names: NewFieldNames(names)}
}

// legacyRequest is the body of POST search.
type legacyRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields,omitempty"`
	Expand     []string `json:"expand,omitempty"`
}

// legacyResponse is the offset-paginated search envelope.
type legacyResponse struct {
	StartAt    int               `json:"startAt"`
	MaxResults int               `json:"maxResults"`
	Total      int               `json:"total"`
	Issues     []wireIssue       `json:"issues"`
	Names      map[string]string `json:"names"`
}

// LegacyExecutor searches through the offset-paginated endpoint.
type LegacyExecutor struct {
	Transport Transport
}

// Execute posts req to the legacy endpoint. Transport errors are returned as-is.
func (e *LegacyExecutor) Execute(ctx context.Context, req Request) (Page, error) {
	body := legacyRequest{
		JQL:        req.JQL,
		StartAt:    req.StartAt,
		MaxResults: req.MaxResults,
		Fields:     req.Fields,
		Expand:     req.Expand,
	}

	var resp legacyResponse
	if err := e.Transport.Post(ctx, legacyPath, body, &resp); err != nil {
		return Page{}, err
	}
	return toPage(resp.Issues, resp.Names), nil
}

// navigableFields is what the legacy endpoint returns when no fields are requested.
const navigableFields = "*navigable"

// enhancedRequest is the body of POST search/jql.
type enhancedRequest struct {
	JQL        string   `json:"jql"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
	Expand     string   `json:"expand,omitempty"`
}

// enhancedResponse is the token-paginated search envelope.
type enhancedResponse struct {
	IsLast        bool              `json:"isLast"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
	Issues        []wireIssue       `json:"issues"`
	Names         map[string]string `json:"names"`
}

// EnhancedExecutor searches through the token-paginated endpoint.
// Only the first page is fetched; req.StartAt is not sent.
type EnhancedExecutor struct {
	Transport Transport
}

// Execute posts req to the enhanced endpoint. Transport errors are returned as-is.
func (e *EnhancedExecutor) Execute(ctx context.Context, req Request) (Page, error) {
	fields := req.Fields
	if len(fields) == 0 {
		fields = []string{navigableFields}
	}
	body := enhancedRequest{
		JQL:        req.JQL,
		MaxResults: req.MaxResults,
		Fields:     fields,
		Expand:     strings.Join(req.Expand, ","),
	}

	var resp enhancedResponse
	if err := e.Transport.Post(ctx, enhancedPath, body, &resp); err != nil {
		return Page{}, err
	}
	return toPage(resp.Issues, resp.Names), nil
}
