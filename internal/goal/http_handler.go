package goal

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

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

type setGoalRequest struct {
	Amount int `json:"amount" validate:"required,gte=1,lte=1000"`
}

func pathYear(r *http.Request) (int, bool) {
	year, err := strconv.Atoi(r.PathValue("year"))
	return year, err == nil
}

func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidYear), errors.Is(err, ErrInvalidAmount):
		httpx.BadRequest(r, w, err.Error())
	default:
		h.logger.Error("goal handler failed", logging.Error(err))
		httpx.InternalError(r, w)
	}
}

// Get handles GET /goals/{year}
// @Summary Reading goal progress
// @Tags goals
// @Produce json
// @Param year path int true "Calendar year"
// @Router /goals/{year} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	year, ok := pathYear(r)
	if !ok {
		httpx.BadRequest(r, w, "year must be a number")
		return
	}
	p, err := h.service.Progress(r.Context(), year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, p, nil)
}

// Set handles PUT /goals/{year}
func (h *HTTPHandler) Set(w http.ResponseWriter, r *http.Request) {
	year, ok := pathYear(r)
	if !ok {
		httpx.BadRequest(r, w, "year must be a number")
		return
	}

	var input setGoalRequest
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(r, w, "Invalid request body")
		return
	}
	if details := httpx.ValidateStruct(input); len(details) > 0 {
		httpx.ValidationFailed(r, w, details)
		return
	}

	g, err := h.service.Set(r.Context(), year, input.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, g, nil)
}
