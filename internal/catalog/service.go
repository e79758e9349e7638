// Package catalog implements the library catalog: searching and sorting books
// with their authors, and the author/book lifecycle rules.
//
// All operations return one of four error kinds: *ValidationError,
// *NotFoundError, *StorageError, or *metadata.APIError for failed external
// lookups. Use errors.Is with ErrValidation, ErrNotFound, ErrStorage, or
// metadata.ErrExternalService to branch, and ErrorNotice to build the user
// message.
//
// # Usage
//
//	svc := catalog.NewService(books.NewRepository(db.DB), lookupClient)
//	rows, err := svc.SearchCatalog(ctx, "tolkien")
//	rows = catalog.SortResults(rows, "title")
package catalog

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/entities"
	"github.com/mrlokans/catalog/internal/metadata"
)

// Store is the persistence port for authors and books. Lookups of a single
// record return gorm.ErrRecordNotFound when nothing matches.
type Store interface {
	CreateAuthor(ctx context.Context, author *entities.Author) error
	GetAuthor(ctx context.Context, id uint) (*entities.Author, error)
	FindAuthorByName(ctx context.Context, name string) (*entities.Author, error)
	ListAuthors(ctx context.Context) ([]entities.Author, error)
	SaveAuthor(ctx context.Context, author *entities.Author) error
	DeleteAuthor(ctx context.Context, id uint) error

	CreateBook(ctx context.Context, book *entities.Book) error
	GetBook(ctx context.Context, id uint) (*entities.Book, error)
	SaveBook(ctx context.Context, book *entities.Book) error
	SetISBN(ctx context.Context, bookID uint, isbn string) error
	DeleteBook(ctx context.Context, id uint) error
	DeleteBooksByAuthor(ctx context.Context, authorID uint) error
	CountBooksByAuthorExcluding(ctx context.Context, authorID, excludeBookID uint) (int64, error)
	BooksMissingISBN(ctx context.Context) ([]uint, error)

	// SearchBooksWithAuthors joins every book to its author. A non-empty query
	// keeps rows whose title or author name contains it, ignoring case.
	SearchBooksWithAuthors(ctx context.Context, query string) ([]entities.BookWithAuthor, error)

	// Transaction runs fn against a store bound to one transaction. A non-nil
	// return rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// BookLookup is the external metadata provider.
//
// SearchByTitleOrKeywords fails with *metadata.APIError. LookupISBN never
// fails: any problem degrades to an empty ISBN so that a missing ISBN never
// blocks an import.
type BookLookup interface {
	SearchByTitleOrKeywords(ctx context.Context, query string) (*metadata.SearchedBook, error)
	LookupISBN(ctx context.Context, title string, authors []string) string
}

// BackfillQueue schedules an out-of-band ISBN lookup for a book.
type BackfillQueue interface {
	EnqueueISBNBackfill(ctx context.Context, bookID uint) error
}

type Service struct {
	store    Store
	lookup   BookLookup
	backfill BackfillQueue
}

func NewService(store Store, lookup BookLookup) *Service {
	return &Service{store: store, lookup: lookup}
}

// SetBackfillQueue enables ISBN backfill for books imported without one.
func (s *Service) SetBackfillQueue(q BackfillQueue) {
	s.backfill = q
}

// GetBook returns a book together with its author.
func (s *Service) GetBook(ctx context.Context, id uint) (*entities.BookWithAuthor, error) {
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		return nil, lookupError("get book", "book", id, err)
	}

	row := &entities.BookWithAuthor{Book: *book}
	if book.Author != nil {
		row.Author = *book.Author
	}
	return row, nil
}

// ListAuthors returns every author ordered by name.
func (s *Service) ListAuthors(ctx context.Context) ([]entities.Author, error) {
	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, storageError("list authors", err)
	}
	return authors, nil
}

// LookupNewBook searches the external provider and then resolves the ISBN of
// the first hit. The ISBN is empty when that lookup degrades.
func (s *Service) LookupNewBook(ctx context.Context, query string) (*metadata.SearchedBook, error) {
	if query == "" {
		return nil, invalid("search_query", "Please provide a title or keywords to search for.")
	}

	found, err := s.lookup.SearchByTitleOrKeywords(ctx, query)
	if err != nil {
		return nil, err
	}

	found.ISBN = s.lookup.LookupISBN(ctx, found.Title, found.Authors)
	return found, nil
}

// BooksMissingISBN returns the ids of books without an ISBN.
func (s *Service) BooksMissingISBN(ctx context.Context) ([]uint, error) {
	ids, err := s.store.BooksMissingISBN(ctx)
	if err != nil {
		return nil, storageError("list books missing isbn", err)
	}
	return ids, nil
}

// BackfillISBN looks up and stores the ISBN of a book that has none. It
// reports whether an ISBN was stored. A failed lookup is not an error.
func (s *Service) BackfillISBN(ctx context.Context, bookID uint) (bool, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return false, lookupError("backfill isbn", "book", bookID, err)
	}
	if entities.StringValue(book.ISBN) != "" {
		return false, nil
	}

	var authors []string
	if book.Author != nil {
		authors = []string{book.Author.Name}
	}

	isbn := s.lookup.LookupISBN(ctx, book.Title, authors)
	if isbn == "" {
		log.Printf("No ISBN found for book %d (%q)", bookID, book.Title)
		return false, nil
	}

	if err := s.store.SetISBN(ctx, bookID, isbn); err != nil {
		return false, storageError("store isbn", err)
	}
	log.Printf("Backfilled ISBN %s for book %d", isbn, bookID)
	return true, nil
}

// lookupError turns a single-record read failure into NotFoundError or
// StorageError.
func lookupError(op, entity string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return storageError(op, err)
}
