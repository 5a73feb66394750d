package book

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

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

type createBookRequest struct {
	Title       string     `json:"title" validate:"required,max=500"`
	Author      string     `json:"author" validate:"max=300"`
	Status      Status     `json:"status" validate:"omitempty,book_status"`
	ISBN        string     `json:"isbn" validate:"omitempty,isbn"`
	CoverURL    string     `json:"cover_url" validate:"omitempty,url"`
	Rating      *int       `json:"rating" validate:"omitempty,gte=0,lte=5"`
	PagesTotal  *int       `json:"pages_total" validate:"omitempty,gte=0"`
	PagesRead   *int       `json:"pages_read" validate:"omitempty,gte=0"`
	DateStarted *time.Time `json:"date_started"`
	DateRead    *time.Time `json:"date_read"`
	Genre       string     `json:"genre"`
	Series      string     `json:"series"`
	SeriesOrder *float64   `json:"series_order" validate:"omitempty,gte=0"`
	Edition     string     `json:"edition"`
	BookType    string     `json:"book_type"`
	Notes       string     `json:"notes"`
	Quotes      string     `json:"quotes"`
}

func (in createBookRequest) toBook() Book {
	return Book{
		Title: strings.TrimSpace(in.Title), Author: strings.TrimSpace(in.Author), Status: in.Status,
		ISBN: strings.TrimSpace(in.ISBN), CoverURL: in.CoverURL, Rating: in.Rating,
		PagesTotal: in.PagesTotal, PagesRead: in.PagesRead, DateStarted: in.DateStarted, DateRead: in.DateRead,
		Genre: in.Genre, Series: in.Series, SeriesOrder: in.SeriesOrder, Edition: in.Edition,
		BookType: in.BookType, Notes: in.Notes, Quotes: in.Quotes,
	}
}

func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(r, w, "Book not found")
	case errors.Is(err, ErrDuplicateISBN):
		httpx.JSONErrorWithRequest(r, w, http.StatusConflict, "DUPLICATE_ISBN", "A book with this ISBN is already on your shelves", nil)
	case errors.Is(err, ErrInvalidStatus):
		httpx.BadRequest(r, w, err.Error())
	default:
		h.logger.Error("book handler failed", slog.String("op", op), logging.Error(err))
		httpx.InternalError(r, w)
	}
}

// List handles GET /books
// @Summary List books
// @Tags books
// @Produce json
// @Param status query string false "tbr, reading, read or wishlist"
// @Param q query string false "Title, author or ISBN"
// @Param series query string false "Series name"
// @Success 200 {object} httpx.SuccessResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{
		Q:      strings.TrimSpace(query.Get("q")),
		Series: query.Get("series"),
	}
	if raw := query.Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			httpx.BadRequest(r, w, err.Error())
			return
		}
		params.Status = status
	}

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	params.Limit = pageSize
	params.Offset = (page - 1) * pageSize

	books, total, err := h.service.List(r.Context(), params)
	if err != nil {
		h.fail(w, r, "list", err)
		return
	}

	httpx.JSONSuccessWithRequest(r, w, books, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// Create handles POST /books
// @Summary Add a book
// @Tags books
// @Accept json
// @Produce json
// @Param force query bool false "Skip the duplicate ISBN check"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createBookRequest
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(r, w, "Invalid request body")
		return
	}
	if details := httpx.ValidateStruct(input); len(details) > 0 {
		httpx.ValidationFailed(r, w, details)
		return
	}

	b := input.toBook()
	force := r.URL.Query().Get("force") == "true"
	if err := h.service.Create(r.Context(), &b, force); err != nil {
		h.fail(w, r, "create", err)
		return
	}
	httpx.JSONSuccessCreatedWithRequest(r, w, b)
}

// Get handles GET /books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "get", err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, b, nil)
}

// Update handles PATCH /books/{id}
// @Summary Update a book
// @Description Moving to read stamps date_read, moving to reading stamps date_started.
// @Tags books
// @Accept json
// @Produce json
// @Router /books/{id} [patch]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.BadRequest(r, w, "Invalid request body")
		return
	}
	if details := httpx.ValidateStruct(patch); len(details) > 0 {
		httpx.ValidationFailed(r, w, details)
		return
	}

	b, err := h.service.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, b, nil)
}

// Delete handles DELETE /books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// Search handles GET /books/search
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, "search", err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, books, map[string]any{"total": len(books)})
}

// Shuffle handles GET /books/shuffle
func (h *HTTPHandler) Shuffle(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Shuffle(r.Context())
	if err != nil {
		h.fail(w, r, "shuffle", err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, b, nil)
}
