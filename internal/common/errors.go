package common

import (
	"errors"
	"fmt"
	"net/http"

	"codecamp/internal/platform/judge0"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound             = errors.New("requested resource not found")
	ErrUnauthorized         = errors.New("unauthorized access")
	ErrForbidden            = errors.New("forbidden access")
	ErrBadRequest           = errors.New("bad request")
	ErrConflict             = errors.New("resource conflict") // e.g., username already exists
	ErrInternalServer       = errors.New("internal server error")
	ErrValidation           = errors.New("validation failed")
	ErrServiceUnavailable   = errors.New("service unavailable") // e.g. judge not configured
	ErrSubmissionInProgress = errors.New("submission already in progress")
)

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
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) || errors.Is(err, judge0.ErrUnsupportedLanguage) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrSubmissionInProgress) || mongo.IsDuplicateKeyError(err) {
		return http.StatusConflict
	}
	var cfgErr *judge0.ConfigurationError
	if errors.Is(err, ErrServiceUnavailable) || errors.As(err, &cfgErr) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// PublicMessage hides internal error detail behind a generic message for 5xx responses.
func PublicMessage(err error) string {
	status := HTTPStatusFromError(err)
	if status == http.StatusInternalServerError {
		return "Server error"
	}
	return err.Error()
}

// RespondWithServiceError writes err with its mapped status and public message.
func RespondWithServiceError(w http.ResponseWriter, err error) {
	RespondWithError(w, HTTPStatusFromError(err), PublicMessage(err))
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
