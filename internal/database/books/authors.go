package books

import (
	"context"

	"github.com/mrlokans/catalog/internal/entities"
)

// CreateAuthor inserts a new author.
func (r *Repository) CreateAuthor(ctx context.Context, author *entities.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

// GetAuthor retrieves an author by ID.
func (r *Repository) GetAuthor(ctx context.Context, id uint) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.WithContext(ctx).First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// FindAuthorByName retrieves the first author whose name matches exactly.
func (r *Repository) FindAuthorByName(ctx context.Context, name string) (*entities.Author, error) {
	var author entities.Author
	err := r.db.WithContext(ctx).Where("name = ?", name).Order("id ASC").First(&author).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// ListAuthors returns all authors ordered by name.
func (r *Repository) ListAuthors(ctx context.Context) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&authors).Error
	return authors, err
}

// SaveAuthor writes every column of the author.
func (r *Repository) SaveAuthor(ctx context.Context, author *entities.Author) error {
	return r.db.WithContext(ctx).Save(author).Error
}

// DeleteAuthor removes an author. Their books must be gone already.
func (r *Repository) DeleteAuthor(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entities.Author{}, id).Error
}
