package discovery

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/httpx"
	"bookshelf/internal/logging"
	"bookshelf/internal/series"
)

const (
	// RequestBudget keeps discovery requests inside the server write timeout.
	RequestBudget = 20 * time.Second

	defaultScanLimit = 25
	maxScanLimit     = 100
)

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
	budget  time.Duration
}

func NewHTTPHandler(service *Service, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger, budget: RequestBudget}
}

func (h *HTTPHandler) withBudget(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.budget)
}

type addMissingRequest struct {
	Series   string `json:"series" validate:"required,max=300"`
	Title    string `json:"title" validate:"required,max=500"`
	Author   string `json:"author" validate:"max=300"`
	CoverURL string `json:"cover_url" validate:"omitempty,url"`
	Key      string `json:"key"`
	Position int    `json:"series_number" validate:"gte=0"`
}

func (in addMissingRequest) entry() series.Entry {
	return series.Entry{
		Title:    strings.TrimSpace(in.Title),
		Author:   strings.TrimSpace(in.Author),
		CoverURL: in.CoverURL,
		Key:      in.Key,
		Position: in.Position,
	}
}

// Gaps handles GET /discovery/gaps
// @Summary Series with missing volumes
// @Tags discovery
// @Produce json
// @Router /discovery/gaps [get]
func (h *HTTPHandler) Gaps(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withBudget(r)
	defer cancel()

	gaps, err := h.service.Gaps(ctx)
	partial := errors.Is(err, context.DeadlineExceeded)
	if err != nil && !partial {
		h.logger.Error("series gaps failed", logging.Error(err))
		httpx.InternalError(r, w)
		return
	}
	if gaps == nil {
		gaps = []Gap{}
	}
	httpx.JSONSuccessWithRequest(r, w, gaps, map[string]any{"total": len(gaps), "partial": partial})
}

// Scan handles POST /discovery/scan?apply=&limit=&after=
// One call scans at most limit books; meta.next resumes the scan. The shelf
// scan command covers a whole collection in one run.
func (h *HTTPHandler) Scan(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := ScanOptions{Limit: defaultScanLimit, After: strings.TrimSpace(query.Get("after"))}
	if raw := query.Get("apply"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.BadRequest(r, w, "apply must be a boolean")
			return
		}
		opts.Apply = v
	}
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxScanLimit {
			httpx.BadRequest(r, w, "limit must be between 1 and 100")
			return
		}
		opts.Limit = n
	}

	ctx, cancel := h.withBudget(r)
	defer cancel()

	report, err := h.service.ScanUntagged(ctx, opts)
	partial := errors.Is(err, context.DeadlineExceeded)
	if err != nil && !partial {
		h.logger.Error("untagged scan failed", logging.Error(err))
		httpx.InternalError(r, w)
		return
	}
	if report.Hits == nil {
		report.Hits = []ScanHit{}
	}
	httpx.JSONSuccessWithRequest(r, w, report.Hits, map[string]any{
		"detected": len(report.Hits),
		"scanned":  report.Scanned,
		"applied":  opts.Apply,
		"next":     report.Next,
		"partial":  partial,
	})
}

// AddMissing handles POST /discovery/missing
// @Summary Add a missing series volume to the wishlist
// @Tags discovery
// @Accept json
// @Produce json
// @Router /discovery/missing [post]
func (h *HTTPHandler) AddMissing(w http.ResponseWriter, r *http.Request) {
	var input addMissingRequest
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(r, w, "Invalid request body")
		return
	}
	if details := httpx.ValidateStruct(input); len(details) > 0 {
		httpx.ValidationFailed(r, w, details)
		return
	}

	b, err := h.service.AddMissing(r.Context(), input.entry(), strings.TrimSpace(input.Series))
	if err != nil {
		if errors.Is(err, book.ErrDuplicateISBN) {
			httpx.JSONErrorWithRequest(r, w, http.StatusConflict, "DUPLICATE_ISBN", "A book with this ISBN is already on your shelves", nil)
			return
		}
		h.logger.Error("add missing failed", logging.Error(err))
		httpx.InternalError(r, w)
		return
	}
	httpx.JSONSuccessCreatedWithRequest(r, w, b)
}
