package series

import (
	"log/slog"
	"net/http"
	"strings"

	"bookshelf/internal/httpx"
)

type HTTPHandler struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

func NewHTTPHandler(fetcher *Fetcher, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{fetcher: fetcher, logger: logger}
}

// Get handles GET /lookup/series
// @Summary Catalog entries of a series
// @Tags lookup
// @Produce json
// @Param series query string true "Series name"
// @Param author query string true "Author name"
// @Router /lookup/series [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := strings.TrimSpace(query.Get("series"))
	author := strings.TrimSpace(query.Get("author"))
	if name == "" || author == "" {
		httpx.BadRequest(r, w, "series and author are required")
		return
	}

	res := h.fetcher.FetchResult(r.Context(), name, author)
	entries := res.Value
	if entries == nil {
		entries = []Entry{}
	}
	httpx.JSONSuccessWithRequest(r, w, entries, map[string]any{
		"total":  len(entries),
		"source": res.Source,
	})
}
