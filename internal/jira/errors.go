package jira

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// maxErrorBody caps how much of a non-JSON error body ends up in an Error.
const maxErrorBody = 2048

// Error is returned for failed REST calls. StatusCode is 0 when the request
// never produced a response; Err then holds the transport error.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("jira %s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("jira %s %s (%d): %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the response status code, or 0 if there was none.
func (e *Error) HTTPStatus() int {
	return e.StatusCode
}

// errorResponse is Jira's standard error envelope.
type errorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

// errorMessage extracts a readable message from an error response body.
func errorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && (len(er.ErrorMessages) > 0 || len(er.Errors) > 0) {
		msgs := slices.Clone(er.ErrorMessages)
		for _, field := range slices.Sorted(maps.Keys(er.Errors)) {
			msgs = append(msgs, field+": "+er.Errors[field])
		}
		return strings.Join(msgs, "; ")
	}
	return string(trim(body, maxErrorBody))
}

// trim returns at most n bytes from b.
func trim(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
