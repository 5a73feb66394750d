package cover

import (
	"context"
	"fmt"

	"bookshelf/internal/book"
)

// BookStore is the slice of the collection the patcher needs.
type BookStore interface {
	Get(ctx context.Context, id string) (book.Book, error)
	Update(ctx context.Context, id string, p book.Patch) (book.Book, error)
}

// Patcher looks up a cover for a stored book and saves it.
type Patcher struct {
	books    BookStore
	resolver *Resolver
}

func NewPatcher(books BookStore, resolver *Resolver) *Patcher {
	return &Patcher{books: books, resolver: resolver}
}

// Patch resolves a cover for the book and stores it. It reports false and
// leaves the book untouched when no source has a cover.
func (p *Patcher) Patch(ctx context.Context, id string) (book.Book, bool, error) {
	b, err := p.books.Get(ctx, id)
	if err != nil {
		return book.Book{}, false, err
	}

	url := p.resolver.Find(ctx, Query{ISBN: b.ISBN, Title: b.Title, Author: b.Author})
	if url == "" {
		return b, false, nil
	}

	updated, err := p.books.Update(ctx, id, book.Patch{CoverURL: &url})
	if err != nil {
		return book.Book{}, false, fmt.Errorf("patch cover: %w", err)
	}
	return updated, true, nil
}
