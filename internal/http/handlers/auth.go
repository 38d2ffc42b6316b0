package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/hongminglow/mediavault/internal/auth"
	"github.com/hongminglow/mediavault/internal/http/respond"
	"github.com/hongminglow/mediavault/internal/logging"
	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/models/dto"
)

const maxLoginBody = 1 << 20

// Authenticator verifies credentials and reads back the session ledger.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (models.User, string, error)
	Sessions(ctx context.Context, userID int64, limit int) ([]models.Session, error)
}

// LoginObserver counts login outcomes.
type LoginObserver interface {
	LoginAttempt(outcome string)
}

// AuthHandler owns the login endpoint.
type AuthHandler struct {
	svc      Authenticator
	logger   logging.Logger
	observer LoginObserver
}

// NewAuthHandler constructs the handler. observer may be nil.
func NewAuthHandler(svc Authenticator, logger logging.Logger, observer LoginObserver) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger, observer: observer}
}

// Register attaches POST /login. limit, when non-nil, wraps the route
// (the server passes a per-IP rate limiter).
func (h *AuthHandler) Register(r *mux.Router, limit func(http.Handler) http.Handler) {
	var login http.Handler = http.HandlerFunc(h.handleLogin)
	if limit != nil {
		login = limit(login)
	}
	r.Handle("/login", login).Methods(http.MethodPost)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, token, err := h.svc.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.observe("rejected")
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.observe("error")
		respond.Failure(w, r, h.logger, err)
		return
	}

	h.observe("success")
	respond.JSON(w, http.StatusOK, dto.LoginResponse{User: user, Token: token, Success: true})
}

func (h *AuthHandler) observe(outcome string) {
	if h.observer != nil {
		h.observer.LoginAttempt(outcome)
	}
}
