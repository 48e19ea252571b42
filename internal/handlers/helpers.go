package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gi8lino/jirasearch/internal/jira"
)

// errorResponse is the JSON body of every failed API call.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON encodes data as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("encode JSON response", "error", err)
	}
}

// writeError writes an errorResponse using the status text as error code.
func writeError(w http.ResponseWriter, status int, msg string, logger *slog.Logger) {
	writeJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: msg,
	}, logger)
}

// upstreamStatus maps a search failure to the status returned to the caller.
// Jira error statuses are passed through; failures without one are 502,
// deadlines and client timeouts are 504.
func upstreamStatus(err error) int {
	var je *jira.Error
	if errors.As(err, &je) && je.StatusCode >= 400 {
		return je.StatusCode
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
