package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// SearchedBook is the first hit of a title or keyword search.
type SearchedBook struct {
	Title           string
	PublicationYear string
	Authors         []string
	Cover           string
	AdditionalInfo  string
	ISBN            string
}

// AuthorNames joins the authors the way the ISBN provider expects them.
func (b *SearchedBook) AuthorNames() string {
	return strings.Join(b.Authors, ", ")
}

type hapiBook struct {
	Name    *string    `json:"name"`
	Year    flexString `json:"year"`
	Authors authorList `json:"authors"`
	Cover   flexString `json:"cover"`
	URL     flexString `json:"url"`
}

var errNoResults = errors.New("search returned no results")

// SearchByTitleOrKeywords looks a book up by free text. When the provider
// answers with a list, only the first element is used.
func (c *Client) SearchByTitleOrKeywords(ctx context.Context, query string) (*SearchedBook, error) {
	path := url.PathEscape(strings.ReplaceAll(query, " ", "+"))
	searchURL := fmt.Sprintf("%s/search/%s", c.searchURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, unexpected(fmt.Errorf("create request: %w", err))
	}
	c.setHeaders(req, c.searchURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, requestFailed(fmt.Errorf("search books: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, requestFailed(fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, requestFailed(fmt.Errorf("read response: %w", err))
	}

	raw, err := firstResult(body)
	if errors.Is(err, errNoResults) {
		return nil, unexpected(err)
	}
	if err != nil {
		return nil, parseFailed(err)
	}

	var book hapiBook
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, parseFailed(fmt.Errorf("decode book: %w", err))
	}
	if book.Name == nil {
		return nil, parseFailed(errors.New("response has no name"))
	}

	return &SearchedBook{
		Title:           *book.Name,
		PublicationYear: string(book.Year),
		Authors:         book.Authors,
		Cover:           string(book.Cover),
		AdditionalInfo:  string(book.URL),
	}, nil
}

// firstResult returns the first element of a JSON array body, or the body
// itself when it is an object.
func firstResult(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}

	if trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, errors.New("response is not valid JSON")
		}
		return trimmed, nil
	}

	var results []json.RawMessage
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	if len(results) == 0 {
		return nil, errNoResults
	}
	return results[0], nil
}
