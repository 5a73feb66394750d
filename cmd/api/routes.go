package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/cover"
	"bookshelf/internal/discovery"
	"bookshelf/internal/enrich"
	"bookshelf/internal/goal"
	"bookshelf/internal/httpx"
	"bookshelf/internal/series"
	"bookshelf/internal/stats"
)

const maxRequestBytes = 1 << 20

type pinger interface {
	Ping(ctx context.Context) error
}

type routeHandlers struct {
	books     *book.HTTPHandler
	covers    *cover.HTTPHandler
	lookup    *enrich.HTTPHandler
	series    *series.HTTPHandler
	goals     *goal.HTTPHandler
	stats     *stats.HTTPHandler
	discovery *discovery.HTTPHandler
}

func newRouter(h routeHandlers, db pinger) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /books", h.books.List)
	router.HandleFunc("POST /books", h.books.Create)
	router.HandleFunc("GET /books/search", h.books.Search)
	router.HandleFunc("GET /books/shuffle", h.books.Shuffle)
	router.HandleFunc("GET /books/{id}", h.books.Get)
	router.HandleFunc("PATCH /books/{id}", h.books.Update)
	router.HandleFunc("DELETE /books/{id}", h.books.Delete)
	router.HandleFunc("POST /books/{id}/cover", h.covers.Patch)

	router.HandleFunc("GET /lookup/isbn/{isbn}", h.lookup.Identify)
	router.HandleFunc("GET /lookup/search", h.lookup.Search)
	router.HandleFunc("GET /lookup/enrich/{isbn}", h.lookup.Enrich)
	router.HandleFunc("GET /lookup/cover", h.covers.Resolve)
	router.HandleFunc("GET /lookup/series", h.series.Get)

	router.HandleFunc("GET /goals/{year}", h.goals.Get)
	router.HandleFunc("PUT /goals/{year}", h.goals.Set)
	router.HandleFunc("GET /stats", h.stats.Get)

	router.HandleFunc("GET /discovery/gaps", h.discovery.Gaps)
	router.HandleFunc("POST /discovery/scan", h.discovery.Scan)
	router.HandleFunc("POST /discovery/missing", h.discovery.AddMissing)

	return router
}

// withMiddleware wraps h in the standard chain. The returned func stops the
// rate limiter's background sweep.
func withMiddleware(h http.Handler, cfg *config.Config, logger *slog.Logger) (http.Handler, func()) {
	limiter := httpx.NewRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	return httpx.Chain(h,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.CORSMiddleware(cfg.CORS.AllowedOrigins),
		httpx.SecurityHeadersMiddleware,
		httpx.RequestSizeLimitMiddleware(maxRequestBytes),
		limiter.Middleware,
	), limiter.Close
}
