package metadata

import "errors"

// ErrExternalService matches every *APIError.
var ErrExternalService = errors.New("external book service error")

// User-facing messages of APIError. They only distinguish the failure class.
const (
	MsgRequestFailed = "Error occurred while searching for the book using HAPI Books API."
	MsgParseFailed   = "Error occurred while parsing the response from HAPI Books API."
	MsgUnexpected    = "An unexpected error occurred while searching for the book."
)

// APIError is the single error kind returned by the book search. Message is
// one of the static messages above; Err keeps the cause for logs.
type APIError struct {
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) Is(target error) bool {
	return target == ErrExternalService
}

func requestFailed(err error) error {
	return &APIError{Message: MsgRequestFailed, Err: err}
}

func parseFailed(err error) error {
	return &APIError{Message: MsgParseFailed, Err: err}
}

func unexpected(err error) error {
	return &APIError{Message: MsgUnexpected, Err: err}
}
