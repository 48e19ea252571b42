package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gi8lino/jirasearch/internal/cache"
	"github.com/gi8lino/jirasearch/internal/hash"
	"github.com/gi8lino/jirasearch/internal/render"
	"github.com/gi8lino/jirasearch/internal/search"
)

// Searcher runs one issue search.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (search.Result, error)
}

// Encoded is a rendered search result together with its content hash.
type Encoded struct {
	Body []byte
	Hash string
}

// ResultSource runs searches on behalf of HTTP requests and caches the
// encoded result per request for ttl.
type ResultSource struct {
	searcher Searcher
	defaults search.Request
	cache    *cache.MemCache[Encoded]
	ttl      time.Duration
}

// NewResultSource returns a ResultSource. Query parameters a caller omits
// are taken from defaults. A ttl <= 0 disables caching.
func NewResultSource(s Searcher, defaults search.Request, ttl time.Duration) *ResultSource {
	return &ResultSource{
		searcher: s,
		defaults: defaults,
		cache:    cache.NewMemCache[Encoded](),
		ttl:      ttl,
	}
}

// fetch returns the encoded result for req, from cache when fresh.
func (rs *ResultSource) fetch(ctx context.Context, req search.Request) (Encoded, error) {
	key, err := hash.Any(req)
	if err != nil {
		return Encoded{}, err
	}
	if enc, ok := rs.cache.Get(key); ok {
		return enc, nil
	}

	res, err := rs.searcher.Search(ctx, req)
	if err != nil {
		return Encoded{}, err
	}

	doc, err := render.NewDocument(res)
	if err != nil {
		return Encoded{}, err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return Encoded{}, fmt.Errorf("encode result: %w", err)
	}
	sum, err := hash.Any(doc)
	if err != nil {
		return Encoded{}, err
	}

	enc := Encoded{Body: body, Hash: sum}
	rs.cache.Set(key, enc, rs.ttl)
	return enc, nil
}

// parseRequest builds a search request from query parameters.
func (rs *ResultSource) parseRequest(q url.Values) (search.Request, error) {
	req := rs.defaults
	req.JQL = strings.TrimSpace(q.Get("jql"))
	if req.JQL == "" {
		return search.Request{}, fmt.Errorf("jql is required")
	}

	if q.Has("fields") {
		req.Fields = splitList(q.Get("fields"))
	}
	if q.Has("expand") {
		req.Expand = splitList(q.Get("expand"))
	}
	if v := q.Get("maxResults"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return search.Request{}, fmt.Errorf("maxResults must be a positive integer, got %q", v)
		}
		req.MaxResults = n
	}
	if v := q.Get("startAt"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return search.Request{}, fmt.Errorf("startAt must be a non-negative integer, got %q", v)
		}
		req.StartAt = n
	}
	return req, nil
}

// resolve parses r and fetches its result, writing an error response on failure.
func (rs *ResultSource) resolve(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (Encoded, bool) {
	req, err := rs.parseRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), logger)
		return Encoded{}, false
	}

	enc, err := rs.fetch(r.Context(), req)
	if err != nil {
		status := upstreamStatus(err)
		logger.Error("search failed", "jql", req.JQL, "status", status, "error", err)
		writeError(w, status, err.Error(), logger)
		return Encoded{}, false
	}
	return enc, true
}

// SearchHandler returns the JSON document of a search. The response carries
// the result hash as ETag and honors If-None-Match.
func SearchHandler(rs *ResultSource, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enc, ok := rs.resolve(w, r, logger)
		if !ok {
			return
		}

		etag := strconv.Quote(enc.Hash)
		w.Header().Set("ETag", etag)
		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(enc.Body) // nolint:errcheck
	}
}

// HashHandler responds with the hash of the current result of a search so
// pollers can detect changes without downloading the result.
func HashHandler(rs *ResultSource, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enc, ok := rs.resolve(w, r, logger)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(enc.Hash)) // nolint:errcheck
	}
}

// etagMatches reports whether an If-None-Match header matches etag using
// weak comparison. The header may be "*" or a comma-separated list.
func etagMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
