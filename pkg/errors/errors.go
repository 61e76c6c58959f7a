// Package errors defines the platform's sentinel errors and the AppError
// type used to carry an HTTP status alongside a wrapped cause.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrCleanUnsupported = errors.New("store does not support cleaning")
	ErrResetUnsupported = errors.New("store does not support reset")
	ErrUnknownBackend   = errors.New("unknown store backend")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInternal         = errors.New("internal error")
	ErrTimeout          = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Is reports whether any error in err's chain matches target. It saves
// callers that import this package from also importing the standard one.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// HTTPStatusCode maps an error to the status code the API should answer with.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownBackend):
		return http.StatusBadRequest
	case errors.Is(err, ErrCleanUnsupported), errors.Is(err, ErrResetUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
