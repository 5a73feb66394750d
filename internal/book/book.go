package book

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicateISBN is returned when another book already carries the ISBN.
	ErrDuplicateISBN = errors.New("book with this isbn already exists")
	// ErrInvalidStatus is returned for a status outside the four shelves.
	ErrInvalidStatus = errors.New("invalid book status")
)

// Status is the shelf a book sits on.
type Status string

const (
	StatusTBR      Status = "tbr"
	StatusReading  Status = "reading"
	StatusRead     Status = "read"
	StatusWishlist Status = "wishlist"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTBR, StatusReading, StatusRead, StatusWishlist:
		return true
	}
	return false
}

// ParseStatus accepts any casing of a known status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// ManualISBNPrefix marks placeholder identifiers for hand-entered books.
const ManualISBNPrefix = "MANUAL"

// Book represents a book in the personal collection.
type Book struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Author      string     `json:"author" yaml:"author"`
	Status      Status     `json:"status" yaml:"status"`
	ISBN        string     `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	Rating      *int       `json:"rating,omitempty" yaml:"rating,omitempty"`
	PagesTotal  *int       `json:"pages_total,omitempty" yaml:"pages_total,omitempty"`
	PagesRead   *int       `json:"pages_read,omitempty" yaml:"pages_read,omitempty"`
	DateStarted *time.Time `json:"date_started,omitempty" yaml:"date_started,omitempty"`
	DateRead    *time.Time `json:"date_read,omitempty" yaml:"date_read,omitempty"`
	DateAdded   time.Time  `json:"date_added" yaml:"date_added"`
	Genre       string     `json:"genre,omitempty" yaml:"genre,omitempty"`
	Series      string     `json:"series,omitempty" yaml:"series,omitempty"`
	SeriesOrder *float64   `json:"series_order,omitempty" yaml:"series_order,omitempty"`
	Edition     string     `json:"edition,omitempty" yaml:"edition,omitempty"`
	BookType    string     `json:"book_type,omitempty" yaml:"book_type,omitempty"`
	Notes       string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Quotes      string     `json:"quotes,omitempty" yaml:"quotes,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
}

// Query defines filters and pagination for listing books.
type Query struct {
	Status        Status
	ExcludeStatus Status
	// Q matches title or author case-insensitively, or ISBN containment.
	Q      string
	Series string
	// Untagged limits the result to books without a series.
	Untagged bool
	// Limit <= 0 returns every match.
	Limit  int
	Offset int
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=500"`
	Author      *string    `json:"author" validate:"omitempty,max=300"`
	Status      *Status    `json:"status" validate:"omitempty,book_status"`
	ISBN        *string    `json:"isbn" validate:"omitempty,isbn"`
	CoverURL    *string    `json:"cover_url" validate:"omitempty,url"`
	Rating      *int       `json:"rating" validate:"omitempty,gte=0,lte=5"`
	PagesTotal  *int       `json:"pages_total" validate:"omitempty,gte=0"`
	PagesRead   *int       `json:"pages_read" validate:"omitempty,gte=0"`
	DateStarted *time.Time `json:"date_started"`
	DateRead    *time.Time `json:"date_read"`
	Genre       *string    `json:"genre"`
	Series      *string    `json:"series"`
	SeriesOrder *float64   `json:"series_order" validate:"omitempty,gte=0"`
	Edition     *string    `json:"edition"`
	BookType    *string    `json:"book_type"`
	Notes       *string    `json:"notes"`
	Quotes      *string    `json:"quotes"`
}

// Apply copies the set fields onto b.
func (p Patch) Apply(b *Book) {
	setString(&b.Title, p.Title)
	setString(&b.Author, p.Author)
	if p.Status != nil {
		b.Status = *p.Status
	}
	setString(&b.ISBN, p.ISBN)
	setString(&b.CoverURL, p.CoverURL)
	if p.Rating != nil {
		b.Rating = p.Rating
	}
	if p.PagesTotal != nil {
		b.PagesTotal = p.PagesTotal
	}
	if p.PagesRead != nil {
		b.PagesRead = p.PagesRead
	}
	if p.DateStarted != nil {
		b.DateStarted = p.DateStarted
	}
	if p.DateRead != nil {
		b.DateRead = p.DateRead
	}
	setString(&b.Genre, p.Genre)
	setString(&b.Series, p.Series)
	if p.SeriesOrder != nil {
		b.SeriesOrder = p.SeriesOrder
	}
	setString(&b.Edition, p.Edition)
	setString(&b.BookType, p.BookType)
	setString(&b.Notes, p.Notes)
	setString(&b.Quotes, p.Quotes)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// NormalizeISBN strips hyphens and spaces and uppercases a check digit X.
// MANUAL placeholders are returned trimmed but otherwise untouched.
func NormalizeISBN(isbn string) string {
	isbn = strings.TrimSpace(isbn)
	if strings.HasPrefix(isbn, ManualISBNPrefix) {
		return isbn
	}
	isbn = strings.NewReplacer("-", "", " ", "").Replace(isbn)
	return strings.ToUpper(isbn)
}
