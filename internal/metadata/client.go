// Package metadata talks to the external book providers: a metadata search
// by title or keywords, and an ISBN lookup by title and authors.
//
// The two calls fail differently. SearchByTitleOrKeywords returns *APIError
// for any failure. LookupISBN never fails and returns "" instead, because a
// missing ISBN must not block an import.
package metadata

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrlokans/catalog/internal/config"
)

// Client queries the RapidAPI hosted book providers with a shared API key.
type Client struct {
	httpClient *http.Client
	apiKey     string
	searchURL  string
	isbnURL    string
	isbnDelay  time.Duration
}

// NewClient creates a client from the lookup settings. A zero timeout keeps
// the transport default.
func NewClient(cfg config.Lookup) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey:    cfg.APIKey,
		searchURL: strings.TrimRight(cfg.SearchURL, "/"),
		isbnURL:   strings.TrimRight(cfg.ISBNURL, "/"),
		isbnDelay: cfg.ISBNDelay,
	}
}

func (c *Client) setHeaders(req *http.Request, baseURL string) {
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", hostOf(baseURL))
	req.Header.Set("Accept", "application/json")
}

func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Host
}
