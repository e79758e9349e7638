package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type isbnSearchResponse struct {
	Results *[]struct {
		PublishedWorks []struct {
			ISBN flexString `json:"isbn"`
		} `json:"published_works"`
	} `json:"results"`
}

// LookupISBN returns the ISBN of the first published work of the first hit,
// or "" on any failure. Every call waits isbnDelay before the request to stay
// within the provider's one request per second limit.
func (c *Client) LookupISBN(ctx context.Context, title string, authors []string) string {
	if c.isbnDelay > 0 {
		timer := time.NewTimer(c.isbnDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ""
		}
	}

	isbn, err := c.fetchISBN(ctx, title, strings.Join(authors, ", "))
	if err != nil {
		log.Printf("ISBN lookup for %q failed: %v", title, err)
		return ""
	}
	return isbn
}

func (c *Client) fetchISBN(ctx context.Context, title, authorNames string) (string, error) {
	params := url.Values{}
	params.Set("title", title)
	params.Set("author", authorNames)
	params.Set("page", "1")

	lookupURL := fmt.Sprintf("%s/api/search?%s", c.isbnURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, c.isbnURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch isbn: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result isbnSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if result.Results == nil {
		return "", nil
	}
	results := *result.Results
	if len(results) == 0 {
		return "", fmt.Errorf("no results")
	}
	if len(results[0].PublishedWorks) == 0 {
		return "", fmt.Errorf("first result has no published works")
	}

	return string(results[0].PublishedWorks[0].ISBN), nil
}
