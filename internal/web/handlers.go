package web

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/hpungsan/snip/internal/config"
	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
// Every route is read-only; nothing here executes a snippet.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /snippets.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ops.ListInput{
		Tag:      ptrString(q.Get("tag")),
		Language: ptrString(q.Get("language")),
		Sort:     q.Get("sort"),
		Limit:    parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:   parseIntParam(r, "offset", 0),
	}

	result, err := ops.List(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Snippets",
			Version: h.renderer.version,
			Nav:     "snippets",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Tag:        q.Get("tag"),
		Language:   q.Get("language"),
		Sort:       result.Sort,
	})
}

// HandleSearch handles GET /snippets/search?q=.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")

	data := SearchPageData{
		PageData: PageData{
			Title:   "Search",
			Version: h.renderer.version,
			Nav:     "search",
		},
		Query:    query,
		Tag:      q.Get("tag"),
		Language: q.Get("language"),
		HasQuery: query != "",
	}

	if query != "" {
		result, err := ops.Search(r.Context(), h.db, ops.SearchInput{
			Query:    query,
			Tag:      ptrString(data.Tag),
			Language: ptrString(data.Language),
			Limit:    parseIntParam(r, "limit", ops.DefaultSearchLimit),
		})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		if wantsJSON(r) {
			renderJSON(w, http.StatusOK, result)
			return
		}
		data.Items = result.Items
		data.Total = result.Total
	}

	h.renderer.renderPage(w, r, "search", data)
}

// HandleDetail handles GET /snippets/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("snippet id is required"))
		return
	}

	s, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{Ref: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	inspect, err := ops.Inspect(r.Context(), h.db, h.cfg, ops.InspectInput{Ref: s.ID})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"snippet": s,
			"inspect": inspect,
		})
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   s.Name,
			Version: h.renderer.version,
			Nav:     "snippets",
		},
		Snippet:      s,
		Inspect:      inspect,
		RenderedHTML: renderCode(s.Content, s.Language),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// ptrString returns a pointer to s if non-empty, nil otherwise.
func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
