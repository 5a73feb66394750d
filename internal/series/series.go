// Package series builds ordered catalogs of the books in a series and diffs
// them against an owned collection.
package series

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"bookshelf/internal/kvcache"
	"bookshelf/internal/logging"
	"bookshelf/internal/lookup"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/platform/openlibrary"
	"bookshelf/internal/textmatch"
)

const (
	CacheKeyPrefix = "series_cache_"
	searchLimit    = 50

	// DefaultTTL is how long a cached catalog stays fresh.
	DefaultTTL = 7 * 24 * time.Hour

	sourceCache       = "cache"
	sourceOpenLibrary = "openlibrary"
)

// Entry is one book of a series catalog. Position 0 means unknown.
type Entry struct {
	Title            string `json:"title"`
	Author           string `json:"author"`
	CoverURL         string `json:"cover_url"`
	FirstPublishYear int    `json:"first_publish_year,omitempty"`
	Key              string `json:"key"`
	Position         int    `json:"series_number,omitempty"`
}

// Catalog is the series search source.
type Catalog interface {
	SearchSeries(ctx context.Context, series, author string, limit int) (*openlibrary.SearchResponse, error)
	SearchTitleAuthor(ctx context.Context, title, author string, limit int) (*openlibrary.SearchResponse, error)
	CoverURLByID(id int, size openlibrary.CoverSize) string
}

// VolumeSearcher backs the hydration pass.
type VolumeSearcher interface {
	Search(ctx context.Context, query string, maxResults int) (*googlebooks.VolumesResponse, error)
}

type cacheEntry struct {
	Timestamp int64   `json:"timestamp"`
	Data      []Entry `json:"data"`
}

type Fetcher struct {
	catalog  Catalog
	volumes  VolumeSearcher
	store    kvcache.Store
	ttl      time.Duration
	patterns *Patterns
	logger   *slog.Logger
	now      func() time.Time
}

// NewFetcher wires a fetcher. volumes may be nil, which skips hydration.
// ttl <= 0 uses DefaultTTL.
func NewFetcher(catalog Catalog, volumes VolumeSearcher, store kvcache.Store, ttl time.Duration, logger *slog.Logger) *Fetcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if store == nil {
		store = kvcache.NewMemoryStore()
	}
	return &Fetcher{
		catalog:  catalog,
		volumes:  volumes,
		store:    store,
		ttl:      ttl,
		patterns: DefaultPatterns(),
		logger:   logging.NewComponentLogger(logger, "series"),
		now:      time.Now,
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CacheKey normalizes a series and author into the cache key.
func CacheKey(seriesName, authorName string) string {
	raw := strings.ToLower(CacheKeyPrefix + seriesName + "_" + authorName)
	return whitespaceRun.ReplaceAllString(raw, "_")
}

// Fetch returns the ordered catalog for a series. Source failures and an
// unknown series both yield an empty list.
func (f *Fetcher) Fetch(ctx context.Context, seriesName, authorName string) []Entry {
	res := f.FetchResult(ctx, seriesName, authorName)
	if res.Value == nil {
		return []Entry{}
	}
	return res.Value
}

// FetchResult is Fetch with the outcome exposed. Source is "cache" when the
// answer came from a fresh cache entry.
func (f *Fetcher) FetchResult(ctx context.Context, seriesName, authorName string) lookup.Result[[]Entry] {
	key := CacheKey(seriesName, authorName)
	log := f.logger.With(slog.String("series", seriesName), slog.String("author", authorName))

	if cached, ok := f.readCache(ctx, key, log); ok {
		if len(cached) == 0 {
			return lookup.Empty[[]Entry](sourceCache)
		}
		return lookup.Found(sourceCache, cached)
	}

	resp, err := f.catalog.SearchSeries(ctx, seriesName, authorName, searchLimit)
	if err != nil {
		log.Warn("series search failed", logging.Error(err))
		return lookup.Failed[[]Entry](sourceOpenLibrary, err)
	}
	if resp == nil || len(resp.Docs) == 0 {
		return lookup.Empty[[]Entry](sourceOpenLibrary)
	}

	entries := f.filter(resp.Docs, authorName)
	entries = f.dedupe(entries)
	sortEntries(entries)
	f.hydrate(ctx, entries, log)

	f.writeCache(ctx, key, entries, log)

	if len(entries) == 0 {
		res := lookup.Empty[[]Entry](sourceOpenLibrary)
		res.Value = entries
		return res
	}
	return lookup.Found(sourceOpenLibrary, entries)
}

func (f *Fetcher) readCache(ctx context.Context, key string, log *slog.Logger) ([]Entry, bool) {
	raw, ok, err := f.store.Get(ctx, key)
	if err != nil {
		log.Warn("series cache read failed", slog.String("key", key), logging.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Warn("series cache entry corrupt", slog.String("key", key), logging.Error(err))
		return nil, false
	}
	age := f.now().Sub(time.UnixMilli(entry.Timestamp))
	if age >= f.ttl {
		return nil, false
	}
	if entry.Data == nil {
		entry.Data = []Entry{}
	}
	return entry.Data, true
}

func (f *Fetcher) writeCache(ctx context.Context, key string, entries []Entry, log *slog.Logger) {
	raw, err := json.Marshal(cacheEntry{Timestamp: f.now().UnixMilli(), Data: entries})
	if err != nil {
		log.Warn("series cache encode failed", logging.Error(err))
		return
	}
	if err := f.store.Set(ctx, key, raw); err != nil {
		log.Warn("series cache write failed", slog.String("key", key), logging.Error(err))
	}
}

func (f *Fetcher) filter(docs []openlibrary.Doc, authorName string) []Entry {
	out := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		if len(doc.AuthorNames) == 0 || !textmatch.AnyAuthorMatches(doc.AuthorNames, authorName) {
			continue
		}
		if f.patterns.IsOmnibus(doc.Title) {
			continue
		}

		e := Entry{
			Title:            doc.Title,
			Author:           doc.AuthorNames[0],
			FirstPublishYear: doc.FirstPublishYear,
			Key:              doc.Key,
			Position:         f.patterns.Position(doc.Title),
		}
		if doc.CoverID > 0 {
			e.CoverURL = f.catalog.CoverURLByID(doc.CoverID, openlibrary.CoverMedium)
		}
		out = append(out, e)
	}
	return out
}

// dedupe groups entries by position, or by normalized title when the position
// is unknown. Groups keep first-appearance order and prefer a covered entry.
func (f *Fetcher) dedupe(entries []Entry) []Entry {
	index := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		key := "t:" + textmatch.Normalize(e.Title)
		if e.Position > 0 {
			key = fmt.Sprintf("n:%d", e.Position)
		}
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, e)
			continue
		}
		if out[i].CoverURL == "" && e.CoverURL != "" {
			out[i] = e
		}
	}
	return out
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Position > 0 && b.Position > 0 {
			return a.Position < b.Position
		}
		return a.FirstPublishYear < b.FirstPublishYear
	})
}

// hydrate backfills missing covers and positions from a title+author search.
// Entries are hydrated one at a time and failures leave the entry as is.
func (f *Fetcher) hydrate(ctx context.Context, entries []Entry, log *slog.Logger) {
	if f.volumes == nil {
		return
	}
	for i := range entries {
		e := &entries[i]
		if e.CoverURL != "" && e.Position > 0 {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		resp, err := f.volumes.Search(ctx, googlebooks.TitleAuthorQuery(e.Title, e.Author), 1)
		if err != nil {
			log.Debug("hydration failed", slog.String("title", e.Title), logging.Error(err))
			continue
		}
		hit, ok := resp.First()
		if !ok {
			continue
		}
		if e.CoverURL == "" {
			e.CoverURL = hit.VolumeInfo.Thumbnail()
		}
		if e.Position == 0 {
			e.Position = f.patterns.HydratedPosition(hit.VolumeInfo.Title, hit.VolumeInfo.Description)
		}
	}
}

// DetectSeries looks a book up by title and author and returns the first
// series the catalog lists for it.
func (f *Fetcher) DetectSeries(ctx context.Context, title, author string) (string, bool) {
	res := f.DetectSeriesResult(ctx, title, author)
	return res.Value, res.OK()
}

func (f *Fetcher) DetectSeriesResult(ctx context.Context, title, author string) lookup.Result[string] {
	resp, err := f.catalog.SearchTitleAuthor(ctx, title, author, 1)
	if err != nil {
		f.logger.Warn("series detection failed", slog.String("title", title), logging.Error(err))
		return lookup.Failed[string](sourceOpenLibrary, err)
	}
	if resp == nil || len(resp.Docs) == 0 || len(resp.Docs[0].Series) == 0 {
		return lookup.Empty[string](sourceOpenLibrary)
	}
	return lookup.Found(sourceOpenLibrary, resp.Docs[0].Series[0])
}
