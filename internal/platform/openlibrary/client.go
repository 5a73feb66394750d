package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultCoversURL = "https://covers.openlibrary.org"

	searchFields = "key,title,author_name,author_key,isbn,first_publish_year,language,cover_i,series"
)

// CoverSize selects one of the covers API variants.
type CoverSize string

const (
	CoverSmall  CoverSize = "S"
	CoverMedium CoverSize = "M"
	CoverLarge  CoverSize = "L"
)

// StatusError is returned for non-2xx responses that are not retried.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	coversURL  string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithCoversURL(u string) Option {
	return func(c *Client) { c.coversURL = strings.TrimRight(u, "/") }
}

// WithBackoff sets the first retry delay. Later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// NewClient builds a client limited to rps requests per second. A non-positive
// rps disables the limiter.
func NewClient(userAgent string, rps int, maxRetries int, opts ...Option) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Every(time.Second / time.Duration(rps))
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    DefaultBaseURL,
		coversURL:  DefaultCoversURL,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: maxRetries,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Doc is one search.json hit.
type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	AuthorKeys       []string `json:"author_key"`
	ISBN             []string `json:"isbn"`
	FirstPublishYear int      `json:"first_publish_year"`
	Language         []string `json:"language"`
	CoverID          int      `json:"cover_i"`
	Series           []string `json:"series"`
}

// SearchResponse matches search.json
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

type Publisher struct {
	Name string `json:"name"`
}

type Subject struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// BookDetails matches api/books?jscmd=data
type BookDetails struct {
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Publishers  []Publisher `json:"publishers"`
	PublishDate string      `json:"publish_date"`
	Cover       struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"cover"`
	Authors []struct {
		URL  string `json:"url"`
		Name string `json:"name"`
	} `json:"authors"`
	Subjects      []Subject `json:"subjects"`
	NumberOfPages int       `json:"number_of_pages"`
	Notes         string    `json:"notes"`
}

// Search runs a free-text search.json query.
func (c *Client) Search(ctx context.Context, q string, limit int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("fields", searchFields)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	u := c.baseURL + "/search.json?" + params.Encode()

	var res SearchResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, fmt.Errorf("openlibrary search: %w", err)
	}
	return &res, nil
}

// SearchSeries finds works scoped to a series and an author.
func (c *Client) SearchSeries(ctx context.Context, series, author string, limit int) (*SearchResponse, error) {
	return c.Search(ctx, fieldQuery("series", series)+" "+fieldQuery("author", author), limit)
}

// SearchTitleAuthor finds works by title and author.
func (c *Client) SearchTitleAuthor(ctx context.Context, title, author string, limit int) (*SearchResponse, error) {
	return c.Search(ctx, fieldQuery("title", title)+" "+fieldQuery("author", author), limit)
}

// GetBooksByISBN returns api/books records keyed by "ISBN:<isbn>". ISBNs with
// no record are absent from the map.
func (c *Client) GetBooksByISBN(ctx context.Context, isbns []string) (map[string]BookDetails, error) {
	if len(isbns) == 0 {
		return nil, nil
	}

	bibkeys := make([]string, len(isbns))
	for i, isbn := range isbns {
		bibkeys[i] = "ISBN:" + isbn
	}

	params := url.Values{}
	params.Set("bibkeys", strings.Join(bibkeys, ","))
	params.Set("jscmd", "data")
	params.Set("format", "json")
	u := c.baseURL + "/api/books?" + params.Encode()

	var res map[string]BookDetails
	if err := c.get(ctx, u, &res); err != nil {
		return nil, fmt.Errorf("openlibrary books: %w", err)
	}
	return res, nil
}

// GetBookByISBN returns the single api/books record for isbn.
func (c *Client) GetBookByISBN(ctx context.Context, isbn string) (BookDetails, bool, error) {
	res, err := c.GetBooksByISBN(ctx, []string{isbn})
	if err != nil {
		return BookDetails{}, false, err
	}
	d, ok := res["ISBN:"+isbn]
	return d, ok, nil
}

// CoverURLByISBN templates a covers API URL. The image may not exist.
func (c *Client) CoverURLByISBN(isbn string, size CoverSize) string {
	return fmt.Sprintf("%s/b/isbn/%s-%s.jpg", c.coversURL, url.PathEscape(isbn), size)
}

// CoverURLByID templates a covers API URL from a search cover_i value.
func (c *Client) CoverURLByID(id int, size CoverSize) string {
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", c.coversURL, id, size)
}

// Exists probes rawURL with a HEAD request. Any 2xx counts as present.
func (c *Client) Exists(ctx context.Context, rawURL string) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := c.backoff * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.getOnce(ctx, url, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string, target any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := &StatusError{StatusCode: resp.StatusCode}
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retry, err
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}

// IsNotFound reports whether err carries a 404 from the API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// fieldQuery renders a scoped search term. Whitespace runs collapse to one
// space, which query encoding turns into '+'.
func fieldQuery(field, value string) string {
	return field + ":" + strings.Join(strings.Fields(value), " ")
}
