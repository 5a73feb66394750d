// Package discovery finds series gaps in the collection and proposes the
// missing volumes as wishlist additions.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/logging"
	"bookshelf/internal/series"
)

// BookService is the slice of book.Service discovery works through.
type BookService interface {
	ListAll(ctx context.Context, q book.Query) ([]book.Book, error)
	Create(ctx context.Context, b *book.Book, force bool) error
	Update(ctx context.Context, id string, p book.Patch) (book.Book, error)
}

// SeriesSource fetches series catalogs and guesses the series of a title.
type SeriesSource interface {
	Fetch(ctx context.Context, seriesName, authorName string) []series.Entry
	DetectSeries(ctx context.Context, title, author string) (string, bool)
}

// Gap is one series of the collection with volumes the owner does not have.
type Gap struct {
	Series  string         `json:"series"`
	Author  string         `json:"author"`
	Owned   int            `json:"owned"`
	Missing []series.Entry `json:"missing"`
}

// ScanHit reports a series detected for an untagged book.
type ScanHit struct {
	BookID  string `json:"book_id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Series  string `json:"series"`
	Applied bool   `json:"applied"`
}

type Service struct {
	books  BookService
	series SeriesSource
	logger *slog.Logger
}

func NewService(books BookService, source SeriesSource, logger *slog.Logger) *Service {
	return &Service{
		books:  books,
		series: source,
		logger: logging.NewComponentLogger(logger, "discovery"),
	}
}

type seriesGroup struct {
	name   string
	author string
	books  []book.Book
}

// groupBySeries buckets books by their series name, sorted by name. The
// author of a group is the author of its first book.
func groupBySeries(books []book.Book) []seriesGroup {
	index := map[string]int{}
	var groups []seriesGroup
	for _, b := range books {
		name := strings.TrimSpace(b.Series)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, seriesGroup{name: name, author: b.Author})
		}
		groups[i].books = append(groups[i].books, b)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].name < groups[j].name })
	return groups
}

// Gaps lists the series with at least one catalog volume not in the
// collection. Every status counts as owned so wishlisted titles are not
// proposed twice. Series are fetched one after the other; when ctx ends
// early the gaps found so far are returned with the context error.
func (s *Service) Gaps(ctx context.Context) ([]Gap, error) {
	owned, err := s.books.ListAll(ctx, book.Query{})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	gaps := []Gap{}
	for _, g := range groupBySeries(owned) {
		if err := ctx.Err(); err != nil {
			return gaps, err
		}
		catalog := s.series.Fetch(ctx, g.name, g.author)
		if err := ctx.Err(); err != nil {
			// The fetch was cut short and may look empty.
			return gaps, err
		}
		missing := series.MissingFrom(owned, catalog)
		if len(missing) == 0 {
			continue
		}
		gaps = append(gaps, Gap{
			Series:  g.name,
			Author:  g.author,
			Owned:   len(g.books),
			Missing: missing,
		})
	}
	return gaps, nil
}

// ScanOptions bounds an untagged scan.
type ScanOptions struct {
	// Apply writes detected series back to the books.
	Apply bool
	// Limit caps the books looked up in one call. Zero scans everything.
	Limit int
	// After resumes a scan past the book with this ID.
	After string
}

// ScanReport is the outcome of one scan batch. Next is empty once every
// untagged book has been looked at.
type ScanReport struct {
	Hits    []ScanHit `json:"hits"`
	Scanned int       `json:"scanned"`
	Next    string    `json:"next,omitempty"`
}

// ScanUntagged runs series detection over books without a series in ID
// order, sequentially. Applied books leave the untagged set, so batches
// resume by ID rather than by offset.
func (s *Service) ScanUntagged(ctx context.Context, opts ScanOptions) (ScanReport, error) {
	untagged, err := s.books.ListAll(ctx, book.Query{Untagged: true})
	if err != nil {
		return ScanReport{}, fmt.Errorf("list untagged books: %w", err)
	}
	sort.SliceStable(untagged, func(i, j int) bool { return untagged[i].ID < untagged[j].ID })

	pending := make([]book.Book, 0, len(untagged))
	for _, b := range untagged {
		if opts.After == "" || b.ID > opts.After {
			pending = append(pending, b)
		}
	}

	report := ScanReport{Hits: []ScanHit{}}
	last := opts.After
	for i, b := range pending {
		if opts.Limit > 0 && i >= opts.Limit {
			report.Next = last
			break
		}
		name, ok := s.series.DetectSeries(ctx, b.Title, b.Author)
		if err := ctx.Err(); err != nil {
			// The lookup for b was cut short; resume from it.
			report.Next = last
			return report, err
		}
		report.Scanned++
		last = b.ID
		if !ok {
			continue
		}
		hit := ScanHit{BookID: b.ID, Title: b.Title, Author: b.Author, Series: name}
		if opts.Apply {
			if _, err := s.books.Update(ctx, b.ID, book.Patch{Series: &name}); err != nil {
				s.logger.Warn("series write back failed",
					slog.String("book_id", b.ID),
					slog.String("series", name),
					logging.Error(err))
			} else {
				hit.Applied = true
			}
		}
		report.Hits = append(report.Hits, hit)
	}

	s.logger.Info("untagged scan finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("detected", len(report.Hits)),
		slog.Bool("apply", opts.Apply),
		slog.String("next", report.Next))
	return report, nil
}

// Candidate turns a missing catalog entry into a wishlist book.
func Candidate(entry series.Entry, seriesName string) book.Book {
	b := book.Book{
		Title:    entry.Title,
		Author:   entry.Author,
		Status:   book.StatusWishlist,
		CoverURL: entry.CoverURL,
		Series:   seriesName,
	}
	if entry.Position > 0 {
		order := float64(entry.Position)
		b.SeriesOrder = &order
	}
	return b
}

// AddMissing stores the candidate for entry on the wishlist.
func (s *Service) AddMissing(ctx context.Context, entry series.Entry, seriesName string) (book.Book, error) {
	b := Candidate(entry, seriesName)
	if err := s.books.Create(ctx, &b, false); err != nil {
		return book.Book{}, fmt.Errorf("add missing entry: %w", err)
	}
	return b, nil
}
