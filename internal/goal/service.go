package goal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"bookshelf/internal/book"
)

type Service struct {
	repo  Repository
	books BookLister
	now   func() time.Time
}

func NewService(repo Repository, books BookLister) *Service {
	return &Service{repo: repo, books: books, now: time.Now}
}

// Get returns the goal for year, or the default goal when none is stored.
func (s *Service) Get(ctx context.Context, year int) (Goal, error) {
	if !validYear(year) {
		return Goal{}, ErrInvalidYear
	}
	g, err := s.repo.Get(ctx, year)
	if errors.Is(err, ErrNotFound) {
		return Goal{Year: year, Amount: DefaultAmount, IsDefault: true}, nil
	}
	if err != nil {
		return Goal{}, fmt.Errorf("get goal %d: %w", year, err)
	}
	return g, nil
}

// Set stores the goal for year, replacing any previous one.
func (s *Service) Set(ctx context.Context, year, amount int) (Goal, error) {
	if !validYear(year) {
		return Goal{}, ErrInvalidYear
	}
	if amount < MinAmount || amount > MaxAmount {
		return Goal{}, ErrInvalidAmount
	}
	now := s.now().UTC()
	g := Goal{Year: year, Amount: amount, UpdatedAt: &now}
	if err := s.repo.Upsert(ctx, &g); err != nil {
		return Goal{}, fmt.Errorf("set goal %d: %w", year, err)
	}
	return g, nil
}

// Progress counts the books finished in year against its goal.
func (s *Service) Progress(ctx context.Context, year int) (Progress, error) {
	g, err := s.Get(ctx, year)
	if err != nil {
		return Progress{}, err
	}
	read, err := s.books.ListAll(ctx, book.Query{Status: book.StatusRead})
	if err != nil {
		return Progress{}, fmt.Errorf("goal progress: %w", err)
	}

	p := Progress{Goal: g, Read: CountReadIn(read, year)}
	p.Remaining = max(g.Amount-p.Read, 0)
	p.Percent = min(int(math.Round(float64(p.Read)/float64(g.Amount)*100)), 100)
	return p, nil
}

// CountReadIn counts read books whose date_read falls in year.
func CountReadIn(books []book.Book, year int) int {
	n := 0
	for _, b := range books {
		if b.Status == book.StatusRead && b.DateRead != nil && b.DateRead.Year() == year {
			n++
		}
	}
	return n
}
