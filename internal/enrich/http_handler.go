package enrich

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"bookshelf/internal/httpx"
	"bookshelf/internal/logging"
)

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

func (h *HTTPHandler) upstreamFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Warn("lookup upstream failed", slog.String("op", op), logging.Error(err))
	httpx.JSONErrorWithRequest(r, w, http.StatusBadGateway, "UPSTREAM_ERROR", "Book lookup service unavailable", nil)
}

// Identify handles GET /lookup/isbn/{isbn}
// @Summary Identify a book by ISBN
// @Tags lookup
// @Produce json
// @Param isbn path string true "ISBN-10 or ISBN-13"
// @Router /lookup/isbn/{isbn} [get]
func (h *HTTPHandler) Identify(w http.ResponseWriter, r *http.Request) {
	isbn := r.PathValue("isbn")
	if !httpx.ValidISBN(isbn) {
		httpx.BadRequest(r, w, "Invalid ISBN")
		return
	}

	c, err := h.service.Identify(r.Context(), isbn)
	switch {
	case errors.Is(err, ErrNotIdentified):
		httpx.NotFound(r, w, "No book found for this ISBN")
	case err != nil:
		h.upstreamFailed(w, r, "identify", err)
	default:
		httpx.JSONSuccessWithRequest(r, w, c, nil)
	}
}

// Search handles GET /lookup/search
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		httpx.BadRequest(r, w, "q is required")
		return
	}

	candidates, err := h.service.Search(r.Context(), q)
	if err != nil {
		h.upstreamFailed(w, r, "search", err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, candidates, map[string]any{"total": len(candidates)})
}

// Enrich handles GET /lookup/enrich/{isbn}
// @Summary Genre and series for an ISBN
// @Tags lookup
// @Produce json
// @Param isbn path string true "ISBN"
// @Param hints query string false "Comma separated category hints"
// @Router /lookup/enrich/{isbn} [get]
func (h *HTTPHandler) Enrich(w http.ResponseWriter, r *http.Request) {
	var hints []string
	for _, hint := range strings.Split(r.URL.Query().Get("hints"), ",") {
		if hint = strings.TrimSpace(hint); hint != "" {
			hints = append(hints, hint)
		}
	}

	res := h.service.EnrichResult(r.Context(), r.PathValue("isbn"), hints)
	httpx.JSONSuccessWithRequest(r, w, res.Value, map[string]any{
		"source":  res.Source,
		"outcome": res.Status.String(),
	})
}
