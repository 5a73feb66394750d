// Package stats computes reading statistics over the collection.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/genre"
	"bookshelf/internal/httpx"
	"bookshelf/internal/logging"
)

// NoAuthor is reported as the top author of an empty library.
const NoAuthor = "None"

type Summary struct {
	TotalBooks     int            `json:"total_books"`
	ReadCount      int            `json:"read_count"`
	ReadingCount   int            `json:"reading_count"`
	TBRCount       int            `json:"tbr_count"`
	CompletionRate int            `json:"completion_rate"`
	UniqueAuthors  int            `json:"unique_authors"`
	TopAuthor      string         `json:"top_author"`
	TopAuthorCount int            `json:"top_author_count"`
	TotalPagesRead int            `json:"total_pages_read"`
	GenreBreakdown map[string]int `json:"genre_breakdown"`
}

// Compute summarizes the library. Wishlisted books are not part of the
// library and are ignored. The TBR count includes books in progress.
func Compute(books []book.Book) Summary {
	s := Summary{TopAuthor: NoAuthor, GenreBreakdown: map[string]int{}}

	authorCounts := map[string]int{}
	var authorOrder []string

	for _, b := range books {
		if b.Status == book.StatusWishlist {
			continue
		}
		s.TotalBooks++

		switch b.Status {
		case book.StatusRead:
			s.ReadCount++
			if b.PagesTotal != nil {
				s.TotalPagesRead += *b.PagesTotal
			}
		case book.StatusReading:
			s.ReadingCount++
			s.TBRCount++
		case book.StatusTBR:
			s.TBRCount++
		}

		if author := strings.TrimSpace(b.Author); author != "" {
			if _, seen := authorCounts[author]; !seen {
				authorOrder = append(authorOrder, author)
			}
			authorCounts[author]++
		}

		for _, label := range genre.Split(b.Genre) {
			s.GenreBreakdown[label]++
		}
	}

	if s.TotalBooks > 0 {
		s.CompletionRate = int(math.Round(float64(s.ReadCount) / float64(s.TotalBooks) * 100))
	}
	s.UniqueAuthors = len(authorOrder)
	for _, author := range authorOrder {
		if authorCounts[author] > s.TopAuthorCount {
			s.TopAuthor = author
			s.TopAuthorCount = authorCounts[author]
		}
	}
	return s
}

// BookLister is the read side of the collection.
type BookLister interface {
	ListAll(ctx context.Context, q book.Query) ([]book.Book, error)
}

type Service struct {
	books BookLister
}

func NewService(books BookLister) *Service {
	return &Service{books: books}
}

// Summary loads the whole collection and computes its statistics.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	books, err := s.books.ListAll(ctx, book.Query{ExcludeStatus: book.StatusWishlist})
	if err != nil {
		return Summary{}, fmt.Errorf("stats: %w", err)
	}
	return Compute(books), nil
}

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// Get handles GET /stats
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("stats failed", logging.Error(err))
		httpx.InternalError(r, w)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, summary, nil)
}
