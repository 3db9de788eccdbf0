package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/userstore/internal/domain"
	"github.com/phrazzld/userstore/internal/redact"
	"github.com/phrazzld/userstore/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error kind.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case store.IsNotFoundError(err):
		return http.StatusNotFound
	case store.IsDuplicateError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message sent to clients for err.
// Not-found, conflict and validation messages are returned as is; they only
// echo the username the client sent. Backend messages are redacted.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch MapErrorToStatusCode(err) {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict:
		return err.Error()
	}

	var se *store.Error
	if errors.As(err, &se) {
		return redact.String(se.Message)
	}
	return "An unexpected error occurred"
}
