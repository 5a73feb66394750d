// Package enrich fills in genre and series metadata for a book from public
// bibliographic sources.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/genre"
	"bookshelf/internal/logging"
	"bookshelf/internal/lookup"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/openlibrary"
)

const (
	seriesPrefix = "series:"
	searchLimit  = 20

	sourceOpenLibrary = "openlibrary"
)

// BookSource looks up a single bibliographic record by ISBN.
type BookSource interface {
	GetBookByISBN(ctx context.Context, isbn string) (openlibrary.BookDetails, bool, error)
}

// VolumeSearcher runs a Google Books volumes query.
type VolumeSearcher interface {
	Search(ctx context.Context, query string, maxResults int) (*googlebooks.VolumesResponse, error)
}

// Metadata is the enrichment outcome. Empty fields mean unknown.
type Metadata struct {
	Genre  string `json:"genre,omitempty"`
	Series string `json:"series,omitempty"`
}

func (m Metadata) IsZero() bool { return m.Genre == "" && m.Series == "" }

type Service struct {
	books      BookSource
	volumes    VolumeSearcher
	classifier *genre.Classifier
	logger     *slog.Logger
}

// NewService wires the enrichment sources. A nil classifier uses the embedded
// taxonomy.
func NewService(books BookSource, volumes VolumeSearcher, classifier *genre.Classifier, logger *slog.Logger) *Service {
	if classifier == nil {
		classifier = genre.Default()
	}
	return &Service{
		books:      books,
		volumes:    volumes,
		classifier: classifier,
		logger:     logging.NewComponentLogger(logger, "enrich"),
	}
}

// Enrich returns the genre and series known for isbn. Lookup failures and
// unknown ISBNs both produce empty metadata.
func (s *Service) Enrich(ctx context.Context, isbn string, hints []string) Metadata {
	return s.EnrichResult(ctx, isbn, hints).Value
}

func (s *Service) EnrichResult(ctx context.Context, isbn string, hints []string) lookup.Result[Metadata] {
	isbn = book.NormalizeISBN(isbn)
	if isbn == "" {
		return lookup.Empty[Metadata](sourceOpenLibrary)
	}

	details, ok, err := s.books.GetBookByISBN(ctx, isbn)
	if err != nil {
		s.logger.Warn("enrichment lookup failed", slog.String("isbn", isbn), logging.Error(err))
		return lookup.Failed[Metadata](sourceOpenLibrary, err)
	}
	if !ok {
		return lookup.Empty[Metadata](sourceOpenLibrary)
	}

	var md Metadata
	tags := append([]string{}, hints...)
	for _, subject := range details.Subjects {
		name := strings.TrimSpace(subject.Name)
		if hasSeriesPrefix(name) {
			if md.Series == "" {
				md.Series = seriesName(name)
			}
			continue
		}
		if isNoise(name) {
			continue
		}
		tags = append(tags, name)
	}
	md.Genre = genre.Join(s.classifier.Classify(tags))

	if md.IsZero() {
		return lookup.Empty[Metadata](sourceOpenLibrary)
	}
	return lookup.Found(sourceOpenLibrary, md)
}

func hasSeriesPrefix(subject string) bool {
	return len(subject) >= len(seriesPrefix) && strings.EqualFold(subject[:len(seriesPrefix)], seriesPrefix)
}

func seriesName(subject string) string {
	name := subject[len(seriesPrefix):]
	return strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
}

var (
	accessTags = []string{
		"accessible book",
		"protected daisy",
		"in library",
		"lending library",
		"overdrive",
		"large type books",
		"internet archive wishlist",
	}
	structuralTags = map[string]bool{
		"fiction":             true,
		"general":             true,
		"juvenile fiction":    true,
		"juvenile literature": true,
	}
	datePattern     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	keyValuePattern = regexp.MustCompile(`\w+=\S+`)
)

// isNoise reports subjects that carry no genre signal: access formats,
// structural labels, list tags, dates and key=value identifiers.
func isNoise(subject string) bool {
	lower := strings.ToLower(strings.TrimSpace(subject))
	if lower == "" || structuralTags[lower] || strings.HasPrefix(lower, "nyt:") {
		return true
	}
	for _, tag := range accessTags {
		if strings.Contains(lower, tag) {
			return true
		}
	}
	return datePattern.MatchString(lower) || keyValuePattern.MatchString(lower)
}

// CleanCategory splits a slash or comma delimited category path, drops empty
// parts and "general", and joins the rest with ", ".
func CleanCategory(category string) string {
	parts := strings.FieldsFunc(category, func(r rune) bool { return r == '/' || r == ',' })
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || strings.EqualFold(p, "general") {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ", ")
}

// ErrNotIdentified is returned when no source knows an ISBN.
var ErrNotIdentified = errors.New("isbn not identified")

// Candidate is a prospective book assembled from search metadata.
type Candidate struct {
	ISBN          string   `json:"isbn,omitempty"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	CoverURL      string   `json:"cover_url,omitempty"`
	Description   string   `json:"description,omitempty"`
	PageCount     int      `json:"pages_total,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Year          string   `json:"year,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Genre         string   `json:"genre,omitempty"`
	Series        string   `json:"series,omitempty"`
}

func candidateFrom(v googlebooks.VolumeInfo) Candidate {
	c := Candidate{
		ISBN:          v.ISBN(),
		Title:         v.Title,
		Author:        v.PrimaryAuthor(),
		CoverURL:      v.Thumbnail(),
		Description:   v.Description,
		PageCount:     v.PageCount,
		PublishedDate: v.PublishedDate,
		Categories:    v.Categories,
	}
	if c.Author == "" {
		c.Author = "Unknown"
	}
	if len(v.PublishedDate) >= 4 {
		c.Year = v.PublishedDate[:4]
	}
	return c
}

// Identify resolves an ISBN into a book candidate with genre and series
// filled in where known. It returns ErrNotIdentified when no volume matches.
func (s *Service) Identify(ctx context.Context, isbn string) (Candidate, error) {
	isbn = book.NormalizeISBN(isbn)
	resp, err := s.volumes.Search(ctx, googlebooks.ISBNQuery(isbn), 1)
	if err != nil {
		return Candidate{}, fmt.Errorf("identify %s: %w", isbn, err)
	}
	vol, ok := resp.First()
	if !ok {
		return Candidate{}, ErrNotIdentified
	}

	c := candidateFrom(vol.VolumeInfo)
	if c.ISBN == "" {
		c.ISBN = isbn
	}

	md := s.Enrich(ctx, isbn, c.Categories)
	c.Series = md.Series
	c.Genre = md.Genre
	if c.Genre == "" {
		c.Genre = s.classifyCategories(c.Categories)
	}
	return c, nil
}

func (s *Service) classifyCategories(categories []string) string {
	var parts []string
	for _, category := range categories {
		parts = append(parts, strings.Split(CleanCategory(category), ", ")...)
	}
	return genre.Join(s.classifier.Classify(parts))
}

// Search runs a free-text volume search and keeps only hits with a cover.
func (s *Service) Search(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Candidate{}, nil
	}
	resp, err := s.volumes.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	out := []Candidate{}
	for _, item := range resp.Items {
		if item.VolumeInfo.ImageLinks == nil || item.VolumeInfo.ImageLinks.Thumbnail == "" {
			continue
		}
		out = append(out, candidateFrom(item.VolumeInfo))
	}
	return out, nil
}
