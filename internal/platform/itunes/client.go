// Package itunes looks up book artwork on the iTunes Search API.
package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://itunes.apple.com"

const (
	thumbnailToken = "100x100bb"
	highResToken   = "900x0w"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
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

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Result struct {
	TrackName     string `json:"trackName"`
	ArtistName    string `json:"artistName"`
	ArtworkURL100 string `json:"artworkUrl100"`
	ArtworkURL60  string `json:"artworkUrl60"`
}

type LookupResponse struct {
	ResultCount int      `json:"resultCount"`
	Results     []Result `json:"results"`
}

// LookupISBN queries the lookup endpoint for an ISBN.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (*LookupResponse, error) {
	params := url.Values{}
	params.Set("isbn", strings.TrimSpace(isbn))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/lookup?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("itunes lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("itunes returned %d", resp.StatusCode)
	}

	var data LookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("itunes decode: %w", err)
	}
	return &data, nil
}

// Artwork returns the high resolution artwork of the first result that has any.
func (r *LookupResponse) Artwork() string {
	if r == nil {
		return ""
	}
	for _, res := range r.Results {
		if res.ArtworkURL100 != "" {
			return HighRes(res.ArtworkURL100)
		}
	}
	return ""
}

// HighRes rewrites the 100px thumbnail token to request a 900px wide image.
func HighRes(artworkURL string) string {
	return strings.Replace(artworkURL, thumbnailToken, highResToken, 1)
}
