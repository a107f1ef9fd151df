// Package errors defines the sentinel errors shared by every stage of the
// term search pipeline and maps them to HTTP status codes for the invoke
// endpoint. All of them are fatal for the invocation that raised them.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMalformedEvent    = errors.New("malformed invocation event")
	ErrNotFound          = errors.New("object not found")
	ErrAccessDenied      = errors.New("object access denied")
	ErrKeyFormat         = errors.New("key does not match ocr/json/<workflow>/<remainder>.<ext>")
	ErrMalformedDocument = errors.New("malformed ocr document")
	ErrPersist           = errors.New("persisting match artifact failed")
	ErrInvalidCatalog    = errors.New("invalid term catalog")
	ErrInternal          = errors.New("internal error")
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

// Kind returns a short label for the sentinel wrapped by err, used as a
// metrics label and in dead-letter records.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPersist):
		return "persist"
	case errors.Is(err, ErrMalformedEvent):
		return "malformed_event"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrKeyFormat):
		return "key_format"
	case errors.Is(err, ErrMalformedDocument):
		return "malformed_document"
	case errors.Is(err, ErrInvalidCatalog):
		return "invalid_catalog"
	default:
		return "internal"
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// A persist failure wraps the store error, so it is checked first.
	switch {
	case errors.Is(err, ErrPersist):
		return http.StatusBadGateway
	case errors.Is(err, ErrMalformedEvent):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrKeyFormat), errors.Is(err, ErrMalformedDocument):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
