// Package cover resolves cover art for a book through an ordered chain of
// image sources.
package cover

import (
	"context"
	"log/slog"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/logging"
	"bookshelf/internal/lookup"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/itunes"
	"bookshelf/internal/platform/openlibrary"
)

// Query identifies the book whose cover is wanted. Title and Author are used
// only when ISBN is empty.
type Query struct {
	ISBN   string
	Title  string
	Author string
}

func (q Query) normalized() Query {
	isbn := book.NormalizeISBN(q.ISBN)
	if strings.HasPrefix(isbn, book.ManualISBNPrefix) {
		isbn = ""
	}
	return Query{
		ISBN:   isbn,
		Title:  strings.TrimSpace(q.Title),
		Author: strings.TrimSpace(q.Author),
	}
}

type ArtworkSource interface {
	LookupISBN(ctx context.Context, isbn string) (*itunes.LookupResponse, error)
}

type VolumeSearcher interface {
	Search(ctx context.Context, query string, maxResults int) (*googlebooks.VolumesResponse, error)
}

type CoverProbe interface {
	CoverURLByISBN(isbn string, size openlibrary.CoverSize) string
	Exists(ctx context.Context, rawURL string) (bool, error)
}

// Provider is one cover source in the chain.
type Provider = lookup.Provider[Query, string]

// ITunesProvider upscales store artwork found by ISBN.
func ITunesProvider(src ArtworkSource) Provider {
	return Provider{
		Name: "itunes",
		Lookup: func(ctx context.Context, q Query) (string, bool, error) {
			if q.ISBN == "" {
				return "", false, nil
			}
			resp, err := src.LookupISBN(ctx, q.ISBN)
			if err != nil {
				return "", false, err
			}
			art := resp.Artwork()
			return art, art != "", nil
		},
	}
}

// GoogleBooksProvider takes the largest image of the top volume, searching by
// ISBN when known and by title and author otherwise.
func GoogleBooksProvider(src VolumeSearcher) Provider {
	return Provider{
		Name: "googlebooks",
		Lookup: func(ctx context.Context, q Query) (string, bool, error) {
			query := googlebooks.ISBNQuery(q.ISBN)
			if q.ISBN == "" {
				if q.Title == "" {
					return "", false, nil
				}
				query = googlebooks.TitleAuthorQuery(q.Title, q.Author)
			}
			resp, err := src.Search(ctx, query, 0)
			if err != nil {
				return "", false, err
			}
			vol, ok := resp.First()
			if !ok {
				return "", false, nil
			}
			img := vol.VolumeInfo.BestImage()
			return img, img != "", nil
		},
	}
}

// OpenLibraryProvider trusts the templated ISBN cover URL only after a HEAD
// probe succeeds.
func OpenLibraryProvider(src CoverProbe) Provider {
	return Provider{
		Name: "openlibrary",
		Lookup: func(ctx context.Context, q Query) (string, bool, error) {
			if q.ISBN == "" {
				return "", false, nil
			}
			u := src.CoverURLByISBN(q.ISBN, openlibrary.CoverLarge)
			ok, err := src.Exists(ctx, u)
			if err != nil || !ok {
				return "", false, err
			}
			return u, true, nil
		},
	}
}

// DefaultProviders is the standard chain: store artwork, then Google Books,
// then the probed Open Library template.
func DefaultProviders(it ArtworkSource, google VolumeSearcher, ol CoverProbe) []Provider {
	return []Provider{
		ITunesProvider(it),
		GoogleBooksProvider(google),
		OpenLibraryProvider(ol),
	}
}

type Resolver struct {
	providers []Provider
	logger    *slog.Logger
}

func NewResolver(logger *slog.Logger, providers ...Provider) *Resolver {
	return &Resolver{providers: providers, logger: logging.NewComponentLogger(logger, "cover")}
}

// Find returns the first cover URL any provider yields, or "".
func (r *Resolver) Find(ctx context.Context, q Query) string {
	return r.FindResult(ctx, q).Value
}

// FindResult runs the chain and reports which provider answered along with
// every attempt.
func (r *Resolver) FindResult(ctx context.Context, q Query) lookup.Result[string] {
	q = q.normalized()
	res := lookup.FirstOf(ctx, q, r.providers...)
	for _, a := range res.Attempts {
		if a.Status == lookup.StatusFailed {
			r.logger.Warn("cover provider failed",
				slog.String("provider", a.Provider),
				slog.String("isbn", q.ISBN),
				slog.String("error", a.Error),
			)
		}
	}
	if !res.OK() {
		res.Value = ""
	}
	return res
}
