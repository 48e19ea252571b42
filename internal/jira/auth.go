package jira

import (
	"fmt"
	"net/http"
	"strings"
)

// AuthFunc applies authentication to an outgoing request.
type AuthFunc func(*http.Request)

// NewBasicAuth returns an AuthFunc using HTTP Basic auth (email + API token).
func NewBasicAuth(username, token string) AuthFunc {
	username = strings.TrimSpace(username)
	token = strings.TrimSpace(token)
	return func(r *http.Request) {
		r.SetBasicAuth(username, token)
	}
}

// NewBearerAuth returns an AuthFunc sending a Bearer token (personal access token).
func NewBearerAuth(token string) AuthFunc {
	token = strings.TrimSpace(token)
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// ResolveAuth returns the AuthFunc for the given credentials. A bearer token
// wins over basic credentials; blank values count as absent.
func ResolveAuth(bearerToken, email, token string) (auth AuthFunc, method string, err error) {
	bearerToken = strings.TrimSpace(bearerToken)
	email = strings.TrimSpace(email)
	token = strings.TrimSpace(token)

	switch {
	case bearerToken != "":
		return NewBearerAuth(bearerToken), "Bearer", nil
	case email != "" && token != "":
		return NewBasicAuth(email, token), "Basic", nil
	default:
		return nil, "", fmt.Errorf("no valid auth method configured: must provide either bearer token or email+token")
	}
}
