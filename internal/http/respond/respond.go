// Package respond writes the JSON bodies shared by every handler.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/hongminglow/mediavault/internal/apperr"
	"github.com/hongminglow/mediavault/internal/logging"
)

// ErrorBody is the failure shape. FailureID is only set for internal errors
// and matches the id in the server log.
type ErrorBody struct {
	Error     string `json:"error"`
	FailureID string `json:"failureId,omitempty"`
	Success   bool   `json:"success"`
}

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes an explicit client-facing message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// Failure maps err onto a status via apperr. Internal errors are logged in
// full under a fresh failure id and the client only sees that id.
func Failure(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	status := apperr.Status(err)
	if status != http.StatusInternalServerError {
		Error(w, status, err.Error())
		return
	}

	failureID := uuid.NewString()
	logger.Error(r.Context(), "request failed",
		"failure_id", failureID,
		"method", r.Method,
		"path", r.URL.Path,
		"err", err,
	)
	JSON(w, status, ErrorBody{Error: "internal error", FailureID: failureID})
}
