package dash

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/apidash/internal/catalog"
	"github.com/leapstack-labs/apidash/internal/client"
	"github.com/leapstack-labs/apidash/internal/insights"
	"github.com/leapstack-labs/apidash/internal/tabular"
)

// errorResponse is the JSON error envelope for all API failures.
type errorResponse struct {
	Error string `json:"error"`
}

// tableResponse is the JSON envelope for fetched tables.
type tableResponse struct {
	Resource  string           `json:"resource"`
	Count     int              `json:"count"`
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// insightResponse mirrors insights.Insight with JSON tags.
type insightResponse struct {
	Title   string           `json:"title"`
	Value   string           `json:"value,omitempty"`
	Buckets []bucketResponse `json:"buckets,omitempty"`
	Lines   []string         `json:"lines,omitempty"`
}

type bucketResponse struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

// handleResources lists the fixed resource catalog.
func (s *Server) handleResources(w http.ResponseWriter, _ *http.Request) {
	type entry struct {
		Name        string `json:"name"`
		Endpoint    string `json:"endpoint"`
		OwnerFilter bool   `json:"owner_filter"`
	}
	entries := make([]entry, 0, len(catalog.All()))
	for _, r := range catalog.All() {
		entries = append(entries, entry{
			Name:        r.Name,
			Endpoint:    "/api/" + r.Path,
			OwnerFilter: r.SupportsOwnerFilter(),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleSession reports what the caller's session currently holds.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	store := s.browserSession(w, r)
	state, ok := store.Current()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":     true,
		"resource":   state.Resource.Name,
		"count":      state.Table.Len(),
		"fetched_at": state.FetchedAt,
	})
}

// resolveRequest parses the {resource} path segment and id/user query
// parameters into a fetch request.
func resolveRequest(r *http.Request) (client.Request, error) {
	res, ok := catalog.Lookup(chi.URLParam(r, "resource"))
	if !ok {
		return client.Request{}, errUnknownResource
	}

	req := client.Request{Resource: res}
	if raw := r.URL.Query().Get("id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return client.Request{}, errBadFilter
		}
		req.ID = n
	}
	if raw := r.URL.Query().Get("user"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return client.Request{}, errBadFilter
		}
		req.UserID = n
	}
	return req, nil
}

var (
	errUnknownResource = &requestError{status: http.StatusNotFound, msg: "unknown resource"}
	errBadFilter       = &requestError{status: http.StatusBadRequest, msg: "id and user must be non-negative integers"}
)

type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func writeRequestError(w http.ResponseWriter, err error) {
	if re, ok := err.(*requestError); ok {
		writeError(w, re.status, re.msg)
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

// handleFetch fetches a resource, replaces the caller's session state and
// returns the normalized table.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	req, err := resolveRequest(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	store := s.browserSession(w, r)

	result, err := s.apiClient().Fetch(r.Context(), req)
	if err != nil {
		s.logger.Warn("fetch failed", "resource", req.Resource.Name, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if result.NoData() {
		writeError(w, http.StatusNotFound, "no data found for "+req.Resource.Name)
		return
	}

	state := store.Set(req.Resource, result.Payload, result.Raw)
	rows := state.Table.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, tableResponse{
		Resource:  state.Resource.Name,
		Count:     state.Table.Len(),
		Columns:   state.Table.Columns,
		Rows:      rows,
		FetchedAt: state.FetchedAt,
	})
}

// handleInsights fetches a resource and returns its derived summaries.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	req, err := resolveRequest(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	store := s.browserSession(w, r)

	result, err := s.apiClient().Fetch(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if result.NoData() {
		writeError(w, http.StatusNotFound, "no data found for "+req.Resource.Name)
		return
	}

	state := store.Set(req.Resource, result.Payload, result.Raw)

	list := insights.Compute(state.Resource, state.Table)
	out := make([]insightResponse, 0, len(list))
	for _, in := range list {
		ir := insightResponse{Title: in.Title, Value: in.Value, Lines: in.Lines}
		for _, b := range in.Buckets {
			ir.Buckets = append(ir.Buckets, bucketResponse{Label: b.Label, Count: b.Count})
		}
		out = append(out, ir)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"resource": state.Resource.Name,
		"insights": out,
	})
}

// handleExport fetches a resource and streams the table as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req, err := resolveRequest(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	store := s.browserSession(w, r)

	result, err := s.apiClient().Fetch(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if result.NoData() {
		writeError(w, http.StatusNotFound, "no data found for "+req.Resource.Name)
		return
	}

	state := store.Set(req.Resource, result.Payload, result.Raw)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+req.Resource.ExportFilename()+`"`)
	if err := tabular.WriteCSV(w, state.Table); err != nil {
		s.logger.Error("csv export failed", "resource", req.Resource.Name, "error", err)
	}
}

// indexPage is a minimal landing page pointing at the JSON API. The
// dashboard is API-first; richer frontends talk to /api directly.
const indexPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>apidash</title></head>
<body>
<h1>apidash</h1>
<p>JSON API endpoints:</p>
<ul>
<li><code>GET /api/resources</code></li>
<li><code>GET /api/{resource}?id=N&amp;user=N</code></li>
<li><code>GET /api/{resource}/insights</code></li>
<li><code>GET /api/{resource}/export</code></li>
<li><code>GET /api/session</code></li>
</ul>
</body>
</html>
`
