package common

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("requested resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("resource conflict") // e.g., username already exists
	ErrValidation   = errors.New("validation failed")
)

// Error carries a client-facing message alongside one of the sentinel kinds
// above. errors.Is(err, ErrValidation) matches on the kind.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text safe to send to a client. Anything that is
// not a *Error (driver failures and the like) collapses to a generic message.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if HTTPStatusFromError(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
