package catalog

import (
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/catalog/internal/metadata"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
)

// ValidationError reports malformed or missing user input. Message is safe to
// show to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError wraps a persistence failure. The wrapped error is for logs only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageError(op string, err error) error {
	log.Printf("Storage failure during %s: %v", op, err)
	return &StorageError{Op: op, Err: err}
}

// ErrorNotice maps any error returned by the service to a user-facing notice.
// Storage and unexpected failures never expose their detail.
func ErrorNotice(err error) Notice {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var apiErr *metadata.APIError

	switch {
	case errors.As(err, &validationErr):
		return Failure(validationErr.Message)
	case errors.As(err, &notFoundErr):
		return Failure(notFoundMessage(notFoundErr.Entity))
	case errors.As(err, &apiErr):
		return Failure(apiErr.Message)
	case errors.Is(err, ErrStorage):
		return Failure("An unexpected error occurred while accessing the database. Please try again later.")
	default:
		return Failure("An unexpected error occurred while processing your request.")
	}
}

func notFoundMessage(entity string) string {
	switch entity {
	case "book":
		return "Book not found."
	case "author":
		return "Author not found."
	default:
		return "Not found."
	}
}
