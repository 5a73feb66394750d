package goal

import (
	"context"

	"bookshelf/internal/book"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=goal

// Repository stores one goal per year.
type Repository interface {
	Get(ctx context.Context, year int) (Goal, error)
	Upsert(ctx context.Context, g *Goal) error
}

// BookLister is the read side of the collection used for progress.
type BookLister interface {
	ListAll(ctx context.Context, q book.Query) ([]book.Book, error)
}
