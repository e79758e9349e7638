package catalog

import (
	"context"
	"sort"

	"github.com/mrlokans/catalog/internal/entities"
)

// Sort keys accepted by SortResults.
const (
	SortByTitle           = "title"
	SortByAuthor          = "author"
	SortByPublicationYear = "publication_year"
)

// SearchCatalog returns every book joined to its author. A non-empty query
// keeps only pairs whose book title or author name contains it, ignoring case.
// The query is used as given, surrounding spaces included.
func (s *Service) SearchCatalog(ctx context.Context, query string) ([]entities.BookWithAuthor, error) {
	rows, err := s.store.SearchBooksWithAuthors(ctx, query)
	if err != nil {
		return nil, storageError("search catalog", err)
	}
	return rows, nil
}

// SortResults stable-sorts rows in place by key and returns them. Unknown keys
// leave the order untouched.
func SortResults(rows []entities.BookWithAuthor, key string) []entities.BookWithAuthor {
	var less func(a, b *entities.BookWithAuthor) bool

	switch key {
	case SortByTitle:
		less = func(a, b *entities.BookWithAuthor) bool { return a.Book.Title < b.Book.Title }
	case SortByAuthor:
		less = func(a, b *entities.BookWithAuthor) bool { return a.Author.Name < b.Author.Name }
	case SortByPublicationYear:
		less = func(a, b *entities.BookWithAuthor) bool { return a.Book.PublicationYear < b.Book.PublicationYear }
	default:
		return rows
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return less(&rows[i], &rows[j])
	})
	return rows
}
