// Package apperr defines the error kinds surfaced by the contract services
// and their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrExpired    = errors.New("expired")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")
	ErrRender     = errors.New("render failure")
)

// Error carries a kind, a message that is safe to show to clients and the
// optional underlying cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func NotFound(resource string) error {
	return &Error{Kind: ErrNotFound, Message: resource + " not found"}
}

func Expired(message string) error {
	return &Error{Kind: ErrExpired, Message: message}
}

func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

func Storage(message string, err error) error {
	return &Error{Kind: ErrStorage, Message: message, Err: err}
}

func Render(message string, err error) error {
	return &Error{Kind: ErrRender, Message: message, Err: err}
}

// HTTPStatus maps an error onto the status code used in the JSON envelope.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExpired):
		return http.StatusGone
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message to put in a response body. Server-side
// failures never leak their cause.
func PublicMessage(err error) string {
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return "Internal server error"
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
