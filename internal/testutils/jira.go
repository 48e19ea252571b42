package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FakeIssue is one issue served by FakeJira.
type FakeIssue struct {
	Key    string
	Fields map[string]any
}

// FakeJiraConfig controls how FakeJira answers.
type FakeJiraConfig struct {
	DeploymentType  string // "Cloud" or "Server"; empty makes serverInfo fail
	Issues          []FakeIssue
	Names           map[string]string // returned when expand contains "names"
	LegacyStatus    int               // non-zero fails POST search with this status
	LegacyMessage   string
	EnhancedStatus  int // non-zero fails POST search/jql with this status
	EnhancedMessage string
}

// FakeJira is an in-process Jira REST API serving serverInfo, search and
// search/jql under /rest/api/{2,3,latest}/.
type FakeJira struct {
	Server *httptest.Server
	cfg    FakeJiraConfig

	mu     sync.Mutex
	calls  map[string]int
	bodies map[string]map[string]any
}

// NewFakeJira starts a FakeJira that is closed when the test ends.
func NewFakeJira(t *testing.T, cfg FakeJiraConfig) *FakeJira {
	t.Helper()

	f := &FakeJira{
		cfg:    cfg,
		calls:  map[string]int{},
		bodies: map[string]map[string]any{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/{version}/serverInfo", f.serverInfo)
	mux.HandleFunc("POST /rest/api/{version}/search", f.legacySearch)
	mux.HandleFunc("POST /rest/api/{version}/search/jql", f.enhancedSearch)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// APIURL returns the REST base for version, e.g. ".../rest/api/3".
func (f *FakeJira) APIURL(version string) string {
	return f.Server.URL + "/rest/api/" + version
}

// Calls returns how often endpoint ("serverInfo", "search", "search/jql") was hit.
func (f *FakeJira) Calls(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

// LastBody returns the last JSON body posted to endpoint.
func (f *FakeJira) LastBody(endpoint string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[endpoint]
}

// record counts the call and stores its decoded body.
func (f *FakeJira) record(endpoint string, r *http.Request) map[string]any {
	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[endpoint]++
	f.bodies[endpoint] = body
	return body
}

func (f *FakeJira) serverInfo(w http.ResponseWriter, r *http.Request) {
	f.record("serverInfo", r)
	if f.cfg.DeploymentType == "" {
		writeJiraError(w, http.StatusInternalServerError, "server info unavailable")
		return
	}
	writeJSON(w, map[string]any{
		"baseUrl":        "http://" + r.Host,
		"version":        "9.12.0",
		"deploymentType": f.cfg.DeploymentType,
	})
}

func (f *FakeJira) legacySearch(w http.ResponseWriter, r *http.Request) {
	body := f.record("search", r)
	if f.cfg.LegacyStatus != 0 {
		writeJiraError(w, f.cfg.LegacyStatus, f.cfg.LegacyMessage)
		return
	}

	startAt := intValue(body["startAt"], 0)
	maxResults := intValue(body["maxResults"], 50)
	issues := f.page(startAt, maxResults)

	resp := map[string]any{
		"startAt":    startAt,
		"maxResults": maxResults,
		"total":      len(f.cfg.Issues),
		"issues":     issues,
	}
	if expand, ok := body["expand"].([]any); ok && slices.Contains(expand, any("names")) {
		resp["names"] = f.cfg.Names
	}
	writeJSON(w, resp)
}

func (f *FakeJira) enhancedSearch(w http.ResponseWriter, r *http.Request) {
	body := f.record("search/jql", r)
	if f.cfg.EnhancedStatus != 0 {
		writeJiraError(w, f.cfg.EnhancedStatus, f.cfg.EnhancedMessage)
		return
	}

	maxResults := intValue(body["maxResults"], 50)
	issues := f.page(0, maxResults)

	resp := map[string]any{
		"isLast": len(issues) == len(f.cfg.Issues),
		"issues": issues,
	}
	if expand, ok := body["expand"].(string); ok && slices.Contains(strings.Split(expand, ","), "names") {
		resp["names"] = f.cfg.Names
	}
	writeJSON(w, resp)
}

// page returns the wire form of issues [start, start+limit).
func (f *FakeJira) page(start, limit int) []map[string]any {
	out := []map[string]any{}
	for i := start; i < len(f.cfg.Issues) && len(out) < limit; i++ {
		issue := f.cfg.Issues[i]
		id := strconv.Itoa(10000 + i)
		out = append(out, map[string]any{
			"id":     id,
			"key":    issue.Key,
			"self":   "https://jira.invalid/rest/api/2/issue/" + id,
			"fields": issue.Fields,
		})
	}
	return out
}

// intValue reads a JSON number, falling back to def.
func intValue(v any, def int) int {
	if n, ok := v.(float64); ok {
		return int(n)
	}
	return def
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) // nolint:errcheck
}

// writeJiraError writes the error body shape Jira uses.
func writeJiraError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{ // nolint:errcheck
		"errorMessages": []string{msg},
		"errors":        map[string]string{},
	})
}
