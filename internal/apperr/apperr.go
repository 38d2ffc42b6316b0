// Package apperr defines the error taxonomy shared by the catalog, auth and
// HTTP layers. Callers wrap these sentinels with fmt.Errorf("...: %w") and
// match them with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrAuthenticationMissing covers an absent, malformed or tampered token.
	ErrAuthenticationMissing = errors.New("authentication required")
	// ErrAuthenticationExpired means the token was genuine but is past its expiry.
	ErrAuthenticationExpired = errors.New("authentication expired")
	// ErrAuthorizationDenied means the caller's role is insufficient.
	ErrAuthorizationDenied = errors.New("insufficient permissions")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	// ErrStorage wraps disk write/unlink failures.
	ErrStorage = errors.New("storage failure")
	// ErrPersistence wraps database failures.
	ErrPersistence = errors.New("persistence failure")
)

// Status maps an error onto its HTTP status code.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthenticationMissing):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthenticationExpired), errors.Is(err, ErrAuthorizationDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Internal reports whether err should be hidden from the client behind a
// failure id.
func Internal(err error) bool {
	return Status(err) == http.StatusInternalServerError
}
