package cover

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/httpx"
	"bookshelf/internal/logging"
)

type HTTPHandler struct {
	resolver *Resolver
	patcher  *Patcher
	logger   *slog.Logger
}

func NewHTTPHandler(resolver *Resolver, patcher *Patcher, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{resolver: resolver, patcher: patcher, logger: logger}
}

type resolveResponse struct {
	CoverURL string `json:"cover_url"`
	Found    bool   `json:"found"`
}

// Resolve handles GET /lookup/cover
// @Summary Find a cover image
// @Tags lookup
// @Produce json
// @Param isbn query string false "ISBN"
// @Param title query string false "Title"
// @Param author query string false "Author"
// @Router /lookup/cover [get]
func (h *HTTPHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := Query{
		ISBN:   strings.TrimSpace(query.Get("isbn")),
		Title:  strings.TrimSpace(query.Get("title")),
		Author: strings.TrimSpace(query.Get("author")),
	}
	if q.ISBN == "" && q.Title == "" {
		httpx.BadRequest(r, w, "isbn or title is required")
		return
	}

	res := h.resolver.FindResult(r.Context(), q)
	httpx.JSONSuccessWithRequest(r, w, resolveResponse{CoverURL: res.Value, Found: res.OK()}, map[string]any{
		"source":   res.Source,
		"attempts": res.Attempts,
	})
}

// Patch handles POST /books/{id}/cover
func (h *HTTPHandler) Patch(w http.ResponseWriter, r *http.Request) {
	b, found, err := h.patcher.Patch(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, book.ErrNotFound):
		httpx.NotFound(r, w, "Book not found")
	case err != nil:
		h.logger.Error("cover patch failed", logging.Error(err))
		httpx.InternalError(r, w)
	case !found:
		httpx.NotFound(r, w, "No cover found for this book")
	default:
		httpx.JSONSuccessWithRequest(r, w, b, nil)
	}
}
