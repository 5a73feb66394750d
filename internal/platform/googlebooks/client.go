// Package googlebooks searches the Google Books volumes API for metadata
// and cover images.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// MaxResults is the largest page the volumes endpoint serves.
const MaxResults = 40

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
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

// WithAPIKey attaches a key. The endpoint works without one at a lower quota.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = strings.TrimSpace(key) }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Small          string `json:"small"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
	ExtraLarge     string `json:"extraLarge"`
}

type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type VolumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	ImageLinks          *ImageLinks          `json:"imageLinks"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
}

type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

type VolumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// ISBNQuery scopes a search to one ISBN.
func ISBNQuery(isbn string) string {
	return "isbn:" + strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
}

// TitleAuthorQuery scopes a search to a title and an author.
func TitleAuthorQuery(title, author string) string {
	return "intitle:" + strings.TrimSpace(title) + " inauthor:" + strings.TrimSpace(author)
}

// Search queries the volumes endpoint. maxResults <= 0 uses the API default.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (*VolumesResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	if maxResults > 0 {
		if maxResults > MaxResults {
			maxResults = MaxResults
		}
		params.Set("maxResults", strconv.Itoa(maxResults))
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google books search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books returned %d", resp.StatusCode)
	}

	var data VolumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("google books decode: %w", err)
	}
	return &data, nil
}

// First returns the top hit, if any.
func (r *VolumesResponse) First() (Volume, bool) {
	if r == nil || len(r.Items) == 0 {
		return Volume{}, false
	}
	return r.Items[0], true
}

// BestImage returns the largest image variant: extra large, large, medium,
// then thumbnail.
func (v VolumeInfo) BestImage() string {
	if v.ImageLinks == nil {
		return ""
	}
	for _, u := range []string{v.ImageLinks.ExtraLarge, v.ImageLinks.Large, v.ImageLinks.Medium, v.ImageLinks.Thumbnail} {
		if u != "" {
			return u
		}
	}
	return ""
}

// Thumbnail returns the thumbnail link upgraded to https.
func (v VolumeInfo) Thumbnail() string {
	if v.ImageLinks == nil {
		return ""
	}
	return SecureURL(v.ImageLinks.Thumbnail)
}

// PrimaryAuthor returns the first listed author.
func (v VolumeInfo) PrimaryAuthor() string {
	if len(v.Authors) == 0 {
		return ""
	}
	return v.Authors[0]
}

// ISBN prefers the ISBN-13 identifier over ISBN-10.
func (v VolumeInfo) ISBN() string {
	var isbn10 string
	for _, id := range v.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	return isbn10
}

// SecureURL rewrites a leading http: scheme to https:.
func SecureURL(u string) string {
	if strings.HasPrefix(u, "http:") {
		return "https:" + strings.TrimPrefix(u, "http:")
	}
	return u
}
