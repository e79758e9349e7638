package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/entities"
)

// AuthorInput carries the add-author form fields.
type AuthorInput struct {
	Name        string
	BirthDate   string
	DateOfDeath string
}

// BookInput carries the add-book form fields.
type BookInput struct {
	ISBN            string
	Title           string
	PublicationYear string
	AuthorID        string
}

// ImportInput is a search result confirmed by the user for import.
type ImportInput struct {
	ISBN            string
	Title           string
	PublicationYear string
	AuthorName      string
	Cover           string
	AdditionalInfo  string
}

// UpdateInput replaces every editable field of a book and its author. Empty
// optional fields clear the stored value.
type UpdateInput struct {
	Title           string
	ISBN            string
	PublicationYear string
	Rating          string
	Cover           string
	AdditionalInfo  string
	AuthorName      string
	AuthorBirthDate string
	AuthorDeathDate string
}

const (
	msgInvalidBirthDate = "Invalid birth date format. Please use YYYY-MM-DD format for dates."
	msgInvalidDeathDate = "Invalid date of death format. Please use YYYY-MM-DD format for dates."
	msgInvalidYear      = "Invalid publication year format. Please provide a valid year."
)

// AddAuthor validates and stores a new author.
func (s *Service) AddAuthor(ctx context.Context, in AuthorInput) (*entities.Author, Notice, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.BirthDate == "" {
		return nil, Notice{}, invalid("name", "Please provide both name and birth date.")
	}

	birth, err := parseDate(in.BirthDate, "birth_date", msgInvalidBirthDate)
	if err != nil {
		return nil, Notice{}, err
	}
	death, err := parseDate(in.DateOfDeath, "date_of_death", msgInvalidDeathDate)
	if err != nil {
		return nil, Notice{}, err
	}

	author := &entities.Author{Name: name, BirthDate: birth, DateOfDeath: death}
	if err := s.store.CreateAuthor(ctx, author); err != nil {
		return nil, Notice{}, storageError("add author", err)
	}

	return author, Success("Author added successfully!"), nil
}

// AddBook validates and stores a new book for an existing author. A dangling
// author id is rejected by the store's foreign key.
func (s *Service) AddBook(ctx context.Context, in BookInput) (*entities.Book, Notice, error) {
	if in.ISBN == "" || in.Title == "" || in.PublicationYear == "" || in.AuthorID == "" {
		return nil, Notice{}, invalid("", "Please provide all required fields.")
	}
	if !isFourDigitYear(in.PublicationYear) {
		return nil, Notice{}, invalid("publication_year", msgInvalidYear)
	}
	year, _ := strconv.Atoi(in.PublicationYear)

	authorID, err := strconv.ParseUint(in.AuthorID, 10, 64)
	if err != nil || authorID == 0 {
		return nil, Notice{}, invalid("author_id", "Please select a valid author.")
	}

	book := &entities.Book{
		ISBN:            &in.ISBN,
		Title:           in.Title,
		PublicationYear: year,
		AuthorID:        uint(authorID),
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, Notice{}, storageError("add book", err)
	}

	return book, Success("Book added successfully!"), nil
}

// ImportSearchedBook stores a book found through the external search. The
// author is matched by exact name or created. Author and book are committed
// separately, so a failed book insert leaves a newly created author behind.
func (s *Service) ImportSearchedBook(ctx context.Context, in ImportInput) (*entities.Book, Notice, error) {
	title := strings.TrimSpace(in.Title)
	authorName := strings.TrimSpace(in.AuthorName)
	if title == "" || authorName == "" {
		return nil, Notice{}, invalid("", "Please provide both title and author.")
	}

	// Provider years may have fewer than four digits; signs are never valid
	yearText := strings.TrimSpace(in.PublicationYear)
	if !isDigits(yearText) {
		return nil, Notice{}, invalid("publication_year", msgInvalidYear)
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return nil, Notice{}, invalid("publication_year", msgInvalidYear)
	}

	author, err := s.store.FindAuthorByName(ctx, authorName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		author = &entities.Author{Name: authorName}
		if err := s.store.CreateAuthor(ctx, author); err != nil {
			return nil, Notice{}, storageError("import author", err)
		}
	} else if err != nil {
		return nil, Notice{}, storageError("find author", err)
	}

	book := &entities.Book{
		ISBN:            entities.OptionalString(strings.TrimSpace(in.ISBN)),
		Title:           title,
		PublicationYear: year,
		AuthorID:        author.ID,
		Cover:           entities.OptionalString(in.Cover),
		AdditionalInfo:  entities.OptionalString(in.AdditionalInfo),
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, Notice{}, storageError("import book", err)
	}

	if book.ISBN == nil && s.backfill != nil {
		if err := s.backfill.EnqueueISBNBackfill(ctx, book.ID); err != nil {
			log.Printf("Failed to queue ISBN backfill for book %d: %v", book.ID, err)
		}
	}

	return book, Success(fmt.Sprintf("The book \"%s\" has been successfully added to the library", title)), nil
}

// UpdateBook replaces the book's fields and its author's fields in one
// commit. Nothing is written when any field fails validation.
//
// The publication year is required but only checked for being numeric, so a
// numeric year of the wrong length is accepted here while AddBook rejects it.
func (s *Service) UpdateBook(ctx context.Context, bookID uint, in UpdateInput) (Notice, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return Notice{}, lookupError("get book", "book", bookID, err)
	}

	author := book.Author
	if author == nil {
		author, err = s.store.GetAuthor(ctx, book.AuthorID)
		if err != nil {
			return Notice{}, lookupError("get author", "author", book.AuthorID, err)
		}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Notice{}, invalid("title", "Please provide a title.")
	}
	authorName := strings.TrimSpace(in.AuthorName)
	if authorName == "" {
		return Notice{}, invalid("authors", "Please provide an author name.")
	}

	if in.PublicationYear == "" {
		return Notice{}, invalid("publication_year", "Publication year is required.")
	}
	if !isDigits(in.PublicationYear) {
		return Notice{}, invalid("publication_year", "Publication year must be numeric.")
	}
	year, err := strconv.Atoi(in.PublicationYear)
	if err != nil {
		return Notice{}, invalid("publication_year", "Publication year must be numeric.")
	}

	rating, err := parseRating(in.Rating)
	if err != nil {
		return Notice{}, err
	}
	birth, err := parseDate(in.AuthorBirthDate, "birth_date", msgInvalidBirthDate)
	if err != nil {
		return Notice{}, err
	}
	death, err := parseDate(in.AuthorDeathDate, "death_date", msgInvalidDeathDate)
	if err != nil {
		return Notice{}, err
	}

	book.Title = title
	book.ISBN = entities.OptionalString(in.ISBN)
	book.PublicationYear = year
	book.Rating = rating
	book.Cover = entities.OptionalString(in.Cover)
	book.AdditionalInfo = entities.OptionalString(in.AdditionalInfo)
	book.Author = nil

	author.Name = authorName
	author.BirthDate = birth
	author.DateOfDeath = death

	err = s.store.Transaction(ctx, func(tx Store) error {
		if err := tx.SaveAuthor(ctx, author); err != nil {
			return err
		}
		return tx.SaveBook(ctx, book)
	})
	if err != nil {
		return Notice{}, storageError("update book", err)
	}

	return Success("Book details have been updated successfully!"), nil
}

// DeleteBook removes a book, and its author when that was the author's last
// book.
func (s *Service) DeleteBook(ctx context.Context, bookID uint) (Notice, error) {
	var notice Notice

	err := s.store.Transaction(ctx, func(tx Store) error {
		book, err := tx.GetBook(ctx, bookID)
		if err != nil {
			return lookupError("get book", "book", bookID, err)
		}

		authorName := ""
		if book.Author != nil {
			authorName = book.Author.Name
		}

		if err := tx.DeleteBook(ctx, bookID); err != nil {
			return err
		}

		remaining, err := tx.CountBooksByAuthorExcluding(ctx, book.AuthorID, bookID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.DeleteAuthor(ctx, book.AuthorID); err != nil {
				return err
			}
		}

		notice = Success(fmt.Sprintf("The book \"%s\" by %s has been successfully deleted.", book.Title, authorName))
		return nil
	})
	if err != nil {
		return Notice{}, txError("delete book", err)
	}

	return notice, nil
}

// DeleteAuthor removes an author with all of their books.
func (s *Service) DeleteAuthor(ctx context.Context, authorID uint) (Notice, error) {
	var notice Notice

	err := s.store.Transaction(ctx, func(tx Store) error {
		author, err := tx.GetAuthor(ctx, authorID)
		if err != nil {
			return lookupError("get author", "author", authorID, err)
		}

		if err := tx.DeleteBooksByAuthor(ctx, authorID); err != nil {
			return err
		}
		if err := tx.DeleteAuthor(ctx, authorID); err != nil {
			return err
		}

		notice = Success(fmt.Sprintf("The author \"%s\" and all associated books have been successfully deleted.", author.Name))
		return nil
	})
	if err != nil {
		return Notice{}, txError("delete author", err)
	}

	return notice, nil
}

// txError passes classified errors through and wraps the rest, which come
// from the store or the commit itself.
func txError(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStorage) {
		return err
	}
	return storageError(op, err)
}
