package server

import (
	"log/slog"
	"net/http"

	"github.com/gi8lino/jirasearch/internal/handlers"
)

// NewRouter creates the HTTP router, optionally mounted under routePrefix.
func NewRouter(
	rs *handlers.ResultSource,
	routePrefix string,
	logger *slog.Logger,
	debug bool,
) http.Handler {
	root := http.NewServeMux()

	// Health checks (no logging)
	root.Handle("GET /healthz", handlers.Healthz())
	root.Handle("POST /healthz", handlers.Healthz())

	api := http.NewServeMux()
	api.Handle("GET /search", handlers.SearchHandler(rs, logger))
	api.Handle("GET /hash", handlers.HashHandler(rs, logger))

	var apiHandler http.Handler = api
	if debug {
		apiHandler = loggingMiddleware(api, logger)
	}

	// mount under /api/v1/
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", apiHandler))

	return mountUnderPrefix(root, NormalizeRoutePrefix(routePrefix))
}
