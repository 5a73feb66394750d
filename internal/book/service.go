package book

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service provides collection business logic.
type Service struct {
	repo Repository
	now  func() time.Time
	pick func(n int) int
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now, pick: rand.IntN}
}

func (s *Service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// List returns a page of books matching the query and the total match count.
func (s *Service) List(ctx context.Context, q Query) ([]Book, int, error) {
	return s.repo.List(ctx, q)
}

// ListAll returns every book matching the query.
func (s *Service) ListAll(ctx context.Context, q Query) ([]Book, error) {
	q.Limit, q.Offset = 0, 0
	books, _, err := s.repo.List(ctx, q)
	return books, err
}

// Get returns a book by id.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	return s.repo.Get(ctx, id)
}

// CheckDuplicate reports the stored book carrying isbn, if any. Empty and
// MANUAL placeholder ISBNs never collide.
func (s *Service) CheckDuplicate(ctx context.Context, isbn string) (Book, bool, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" || strings.HasPrefix(isbn, ManualISBNPrefix) {
		return Book{}, false, nil
	}
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if errors.Is(err, ErrNotFound) {
		return Book{}, false, nil
	}
	if err != nil {
		return Book{}, false, fmt.Errorf("check duplicate: %w", err)
	}
	return existing, true, nil
}

// Create stores a new book. Unless force is set, an ISBN already on the
// shelves is rejected with ErrDuplicateISBN.
func (s *Service) Create(ctx context.Context, b *Book, force bool) error {
	if b.Status == "" {
		b.Status = StatusTBR
	}
	if !b.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, b.Status)
	}
	if !force {
		if _, dup, err := s.CheckDuplicate(ctx, b.ISBN); err != nil {
			return err
		} else if dup {
			return ErrDuplicateISBN
		}
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := s.now().UTC()
	b.DateAdded = now
	b.UpdatedAt = now
	s.stampDates(b)

	if err := s.repo.Create(ctx, b); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// Update applies a partial patch. Moving a book to read stamps date_read and
// moving it to reading stamps date_started, when those are still empty.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Book, error) {
	if p.Status != nil && !p.Status.Valid() {
		return Book{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}

	p.Apply(&b)
	if p.Status != nil {
		s.stampDates(&b)
	}
	b.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, &b); err != nil {
		return Book{}, fmt.Errorf("update book: %w", err)
	}
	return b, nil
}

func (s *Service) stampDates(b *Book) {
	switch b.Status {
	case StatusRead:
		if b.DateRead == nil {
			d := s.today()
			b.DateRead = &d
		}
	case StatusReading:
		if b.DateStarted == nil {
			d := s.today()
			b.DateStarted = &d
		}
	}
}

// Delete removes a book.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Search is the library search: title or author match, or ISBN containment,
// across every shelf but the wishlist.
func (s *Service) Search(ctx context.Context, q string) ([]Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Book{}, nil
	}
	return s.ListAll(ctx, Query{Q: q, ExcludeStatus: StatusWishlist})
}

// Shuffle picks a random TBR book, falling back to any book.
func (s *Service) Shuffle(ctx context.Context) (Book, error) {
	pool, err := s.ListAll(ctx, Query{Status: StatusTBR})
	if err != nil {
		return Book{}, err
	}
	if len(pool) == 0 {
		if pool, err = s.ListAll(ctx, Query{}); err != nil {
			return Book{}, err
		}
	}
	if len(pool) == 0 {
		return Book{}, ErrNotFound
	}
	return pool[s.pick(len(pool))], nil
}
