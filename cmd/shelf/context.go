package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/kvcache"
	"bookshelf/internal/logging"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/itunes"
	"bookshelf/internal/platform/openlibrary"

	"github.com/jackc/pgx/v5/pgxpool"
)

// endpoints overrides the public service URLs. Empty fields keep the
// client defaults.
type endpoints struct {
	openLibrary string
	covers      string
	googleBooks string
	itunes      string
}

type commandContext struct {
	configFlag string
	cacheFlag  string
	noColor    bool
	verbose    bool

	endpoints endpoints

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.configFlag)
		if path == "" {
			path = config.Path()
		}
		c.config, c.configErr = config.LoadFile(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	if !c.verbose {
		return logging.NewNop()
	}
	level, format := "debug", "text"
	if cfg, err := c.ensureConfig(); err == nil {
		format = cfg.Log.Format
	}
	logger, err := logging.New(logging.Options{Level: level, Format: format})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func (c *commandContext) cachePath() (string, error) {
	if p := strings.TrimSpace(c.cacheFlag); p != "" {
		return p, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Cache.Path, nil
}

func (c *commandContext) openCache(ctx context.Context) (*kvcache.SQLiteStore, error) {
	path, err := c.cachePath()
	if err != nil {
		return nil, err
	}
	return kvcache.OpenSQLite(ctx, path)
}

type clients struct {
	openLibrary *openlibrary.Client
	googleBooks *googlebooks.Client
	itunes      *itunes.Client
}

func (c *commandContext) clients() (*clients, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	hc := &http.Client{Timeout: cfg.HTTP.Timeout}

	olOpts := []openlibrary.Option{openlibrary.WithHTTPClient(hc)}
	if c.endpoints.openLibrary != "" {
		olOpts = append(olOpts, openlibrary.WithBaseURL(c.endpoints.openLibrary))
	}
	if c.endpoints.covers != "" {
		olOpts = append(olOpts, openlibrary.WithCoversURL(c.endpoints.covers))
	}
	gbOpts := []googlebooks.Option{googlebooks.WithHTTPClient(hc), googlebooks.WithAPIKey(cfg.GoogleBooks.APIKey)}
	if c.endpoints.googleBooks != "" {
		gbOpts = append(gbOpts, googlebooks.WithBaseURL(c.endpoints.googleBooks))
	}
	itOpts := []itunes.Option{itunes.WithHTTPClient(hc)}
	if c.endpoints.itunes != "" {
		itOpts = append(itOpts, itunes.WithBaseURL(c.endpoints.itunes))
	}

	return &clients{
		openLibrary: openlibrary.NewClient(cfg.OpenLibrary.UserAgent, cfg.OpenLibrary.RPS, cfg.OpenLibrary.MaxRetries, olOpts...),
		googleBooks: googlebooks.NewClient(gbOpts...),
		itunes:      itunes.NewClient(itOpts...),
	}, nil
}

// withBooks opens the collection database for the duration of fn.
func (c *commandContext) withBooks(ctx context.Context, fn func(*book.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", config.RedactDSN(cfg.DB.DSN), err)
	}
	defer pool.Close()
	return fn(book.NewService(book.NewPostgresRepo(pool, cfg.DB.Timeout)))
}
