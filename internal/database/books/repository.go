// Package books provides database operations for the catalog's books and
// authors.
//
// This package implements the Store interface defined in
// internal/catalog/service.go.
//
// # Interface Implementation
//
//	var _ catalog.Store = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	rows, err := repo.SearchBooksWithAuthors(ctx, "tolkien")
package books

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

// Repository handles all book and author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn with a repository bound to a single transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(tx catalog.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// CreateBook inserts a new book. The author must already exist.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(book).Error
}

// GetBook retrieves a book by ID with its author.
func (r *Repository) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Preload("Author").First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// SaveBook writes every column of the book, leaving its author untouched.
func (r *Repository) SaveBook(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(book).Error
}

// SetISBN stores the ISBN of a single book.
func (r *Repository) SetISBN(ctx context.Context, bookID uint, isbn string) error {
	return r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", bookID).Update("isbn", isbn).Error
}

// DeleteBook removes a single book.
func (r *Repository) DeleteBook(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entities.Book{}, id).Error
}

// DeleteBooksByAuthor removes every book of an author.
func (r *Repository) DeleteBooksByAuthor(ctx context.Context, authorID uint) error {
	return r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&entities.Book{}).Error
}

// CountBooksByAuthorExcluding counts an author's books other than excludeBookID.
func (r *Repository) CountBooksByAuthorExcluding(ctx context.Context, authorID, excludeBookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("author_id = ? AND id <> ?", authorID, excludeBookID).
		Count(&count).Error
	return count, err
}

// BooksMissingISBN returns the IDs of books with no ISBN, oldest first.
func (r *Repository) BooksMissingISBN(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("isbn IS NULL OR isbn = ''").
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// SearchBooksWithAuthors joins books to their authors. A non-empty query
// keeps rows where the title or the author name contains it, ignoring case.
// The match runs in Go because SQLite's LOWER only folds ASCII.
func (r *Repository) SearchBooksWithAuthors(ctx context.Context, query string) ([]entities.BookWithAuthor, error) {
	var books []entities.Book

	err := r.db.WithContext(ctx).
		InnerJoins("Author").
		Order("books.id ASC").
		Find(&books).Error
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	rows := make([]entities.BookWithAuthor, 0, len(books))
	for _, book := range books {
		row := entities.BookWithAuthor{Book: book}
		if book.Author != nil {
			row.Author = *book.Author
		}
		row.Book.Author = nil

		if query != "" && !containsFold(row.Book.Title, needle) && !containsFold(row.Author.Name, needle) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// containsFold reports whether lowerNeedle occurs in s after lowercasing s.
func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
