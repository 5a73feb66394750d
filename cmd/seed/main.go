package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/goal"
	"bookshelf/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ptr[T any](v T) *T { return &v }

// demoBooks is a small collection covering every shelf, a partly owned
// series and an untagged series volume for the discovery scan.
func demoBooks() []book.Book {
	return []book.Book{
		{Title: "The Way of Kings", Author: "Brandon Sanderson", Status: book.StatusRead, ISBN: "9780765326355",
			Rating: ptr(5), PagesTotal: ptr(1007), PagesRead: ptr(1007), Genre: "Fantasy",
			Series: "The Stormlight Archive", SeriesOrder: ptr(1.0)},
		{Title: "Words of Radiance", Author: "Brandon Sanderson", Status: book.StatusReading, ISBN: "9780765326362",
			PagesTotal: ptr(1087), PagesRead: ptr(412), Genre: "Fantasy",
			Series: "The Stormlight Archive", SeriesOrder: ptr(2.0)},
		{Title: "Mistborn: The Final Empire", Author: "Brandon Sanderson", Status: book.StatusTBR, ISBN: "9780765311788", Genre: "Fantasy"},
		{Title: "Dune", Author: "Frank Herbert", Status: book.StatusRead, ISBN: "9780441172719",
			Rating: ptr(4), PagesTotal: ptr(617), PagesRead: ptr(617), Genre: "Science Fiction", Series: "Dune", SeriesOrder: ptr(1.0)},
		{Title: "Piranesi", Author: "Susanna Clarke", Status: book.StatusRead, ISBN: "9781635575637",
			Rating: ptr(5), PagesTotal: ptr(272), PagesRead: ptr(272), Genre: "Fantasy, Mystery"},
		{Title: "Salt, Fat, Acid, Heat", Author: "Samin Nosrat", Status: book.StatusTBR, ISBN: "9781476753836", Genre: "Cookbooks"},
		{Title: "Project Hail Mary", Author: "Andy Weir", Status: book.StatusWishlist, ISBN: "9780593135204", Genre: "Science Fiction"},
	}
}

func main() {
	logger, _ := logging.New(logging.Options{Level: "info"})
	if err := run(logger); err != nil {
		logger.Error("seed failed", logging.Error(err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	books := book.NewService(book.NewPostgresRepo(pool, cfg.DB.Timeout))
	inserted, skipped := 0, 0
	for _, b := range demoBooks() {
		b := b
		if b.Status == book.StatusRead {
			b.DateRead = ptr(time.Now().UTC().AddDate(0, -1, 0))
		}
		err := books.Create(ctx, &b, false)
		if errors.Is(err, book.ErrDuplicateISBN) {
			skipped++
			continue
		}
		if err != nil {
			return err
		}
		inserted++
	}
	logger.Info("books seeded", slog.Int("inserted", inserted), slog.Int("skipped", skipped))

	goals := goal.NewService(goal.NewPostgresRepo(pool, cfg.DB.Timeout), books)
	year := time.Now().Year()
	if _, err := goals.Set(ctx, year, 24); err != nil {
		return err
	}
	logger.Info("reading goal set", slog.Int("year", year), slog.Int("amount", 24))
	return nil
}
