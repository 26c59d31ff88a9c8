package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrSourceUnreadable     = errors.New("corpus source unreadable")
	ErrEmptyCorpus          = errors.New("corpus is empty")
	ErrIndexSealed          = errors.New("index is sealed")
	ErrUnknownRankingMethod = errors.New("unknown ranking method")
	ErrMethodUnimplemented  = errors.New("ranking method not implemented")
	ErrInternal             = errors.New("internal error")
	ErrTimeout              = errors.New("operation timed out")
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

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownRankingMethod):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexSealed):
		return http.StatusConflict
	case errors.Is(err, ErrMethodUnimplemented):
		return http.StatusNotImplemented
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrSourceUnreadable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
