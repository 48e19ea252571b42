package search_test

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gi8lino/jirasearch/internal/search"
)

// fakeExecutor records calls and returns a fixed outcome.
type fakeExecutor struct {
	page  search.Page
	err   error
	calls int
	reqs  []search.Request
}

func (f *fakeExecutor) Execute(_ context.Context, req search.Request) (search.Page, error) {
	f.calls++
	f.reqs = append(f.reqs, req)
	return f.page, f.err
}

// fakeDetector returns a fixed deployment type and counts queries.
type fakeDetector struct {
	cloud bool
	calls int
}

func (f *fakeDetector) IsCloud(context.Context) bool {
	f.calls++
	return f.cloud
}

// restError mimics a transport error with an optional status code.
type restError struct {
	code int
	msg  string
}

func (e *restError) Error() string   { return e.msg }
func (e *restError) HTTPStatus() int { return e.code }

// fakeTransport answers every Post with body and records the request.
type fakeTransport struct {
	body    string
	err     error
	path    string
	payload map[string]any
}

func (f *fakeTransport) Post(_ context.Context, path string, payload, out any) error {
	f.path = path
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, &f.payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.body), out)
}

const legacyResponseJSON = `{
  "expand": "schema,names",
  "startAt": 0,
  "maxResults": 1000,
  "total": 3,
  "issues": [
    {
      "id": "3815086",
      "self": "https://jira.com/rest/api/latest/issue/3815086",
      "key": "SOME-44370",
      "fields": {"summary": "Update Android Gradle Plugin to 8.1", "customfield_18762": "a"}
    },
    {
      "id": "3759463",
      "self": "https://jira.com/rest/api/latest/issue/3759463",
      "key": "SOME-44407",
      "fields": {"summary": "Automate Xcode performance report", "customfield_18762": "b"}
    },
    {
      "id": "3881457",
      "self": "https://jira.com/rest/api/latest/issue/3881457",
      "key": "SOME-52193",
      "fields": {"summary": "Investigate CDN preconnect", "customfield_18762": "c"}
    }
  ],
  "names": {"summary": "Summary", "customfield_18762": "Parent Link"}
}`

const cloudResponseJSON = `{
  "isLast": true,
  "names": {"summary": "Summary", "customfield_18762": "Parent Link"},
  "issues": [
    {
      "id": "10002",
      "key": "ED-1",
      "self": "https://your-domain.atlassian.net/rest/api/3/issue/10002",
      "fields": {"summary": "Main order flow broken", "customfield_18762": "ED-2", "description": "Main order flow broken"}
    }
  ]
}`
