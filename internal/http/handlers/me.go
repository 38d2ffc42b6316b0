package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hongminglow/mediavault/internal/auth"
	"github.com/hongminglow/mediavault/internal/http/middleware"
	"github.com/hongminglow/mediavault/internal/http/respond"
	"github.com/hongminglow/mediavault/internal/logging"
	"github.com/hongminglow/mediavault/internal/models/dto"
)

const (
	defaultSessionLimit = 20
	maxSessionLimit     = 100
)

// MeHandler answers questions about the calling user.
type MeHandler struct {
	svc    Authenticator
	logger logging.Logger
}

func NewMeHandler(svc Authenticator, logger logging.Logger) *MeHandler {
	return &MeHandler{svc: svc, logger: logger}
}

func (h *MeHandler) Register(r *mux.Router, gate *middleware.Gate) {
	r.Handle("/me/role", gate.RequireFunc(middleware.Authenticated, h.handleRole)).Methods(http.MethodGet)
	r.Handle("/me/sessions", gate.RequireFunc(middleware.Authenticated, h.handleSessions)).Methods(http.MethodGet)
}

func (h *MeHandler) handleRole(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	respond.JSON(w, http.StatusOK, dto.RoleResponse{
		Success:     true,
		UserID:      id.Claims.UserID,
		Role:        id.Claims.Role,
		Permissions: id.Permissions,
	})
}

func (h *MeHandler) handleSessions(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	limit := defaultSessionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respond.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSessionLimit)
	}

	sessions, err := h.svc.Sessions(r.Context(), id.Claims.UserID, limit)
	if err != nil {
		respond.Failure(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.SessionsResponse{Success: true, Data: sessions})
}
