package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/cover"
	"bookshelf/internal/discovery"
	"bookshelf/internal/enrich"
	"bookshelf/internal/genre"
	"bookshelf/internal/goal"
	"bookshelf/internal/kvcache"
	"bookshelf/internal/logging"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/itunes"
	"bookshelf/internal/platform/openlibrary"
	"bookshelf/internal/series"
	"bookshelf/internal/stats"

	"github.com/jackc/pgx/v5/pgxpool"
)

// writeTimeout must stay above discovery.RequestBudget.
const writeTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := openDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	logger.Info("database connection OK", slog.String("dsn", config.RedactDSN(cfg.DB.DSN)))

	cache, err := kvcache.OpenSQLite(ctx, cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer cache.Close()

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	olClient := openlibrary.NewClient(cfg.OpenLibrary.UserAgent, cfg.OpenLibrary.RPS, cfg.OpenLibrary.MaxRetries,
		openlibrary.WithHTTPClient(httpClient))
	gbClient := googlebooks.NewClient(googlebooks.WithAPIKey(cfg.GoogleBooks.APIKey), googlebooks.WithHTTPClient(httpClient))
	itClient := itunes.NewClient(itunes.WithHTTPClient(httpClient))

	bookService := book.NewService(book.NewPostgresRepo(dbPool, cfg.DB.Timeout))
	goalService := goal.NewService(goal.NewPostgresRepo(dbPool, cfg.DB.Timeout), bookService)
	statsService := stats.NewService(bookService)
	enrichService := enrich.NewService(olClient, gbClient, genre.Default(), logger)
	fetcher := series.NewFetcher(olClient, gbClient, cache, cfg.Cache.TTL, logger)
	resolver := cover.NewResolver(logger, cover.DefaultProviders(itClient, gbClient, olClient)...)
	discoveryService := discovery.NewService(bookService, fetcher, logger)

	mux := newRouter(routeHandlers{
		books:     book.NewHTTPHandler(bookService, logger),
		covers:    cover.NewHTTPHandler(resolver, cover.NewPatcher(bookService, resolver), logger),
		lookup:    enrich.NewHTTPHandler(enrichService, logger),
		series:    series.NewHTTPHandler(fetcher, logger),
		goals:     goal.NewHTTPHandler(goalService, logger),
		stats:     stats.NewHTTPHandler(statsService, logger),
		discovery: discovery.NewHTTPHandler(discoveryService, logger),
	}, dbPool)

	handler, stopMiddleware := withMiddleware(mux, cfg, logger)
	defer stopMiddleware()

	httpServer := &http.Server{
		Addr:         cfg.App.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", cfg.App.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", config.RedactDSN(dsn), err)
	}
	return pool, nil
}
