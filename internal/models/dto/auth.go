package dto

import (
	"github.com/hongminglow/mediavault/internal/auth"
	"github.com/hongminglow/mediavault/internal/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse flattens the user fields next to the token.
type LoginResponse struct {
	models.User
	Token   string `json:"token"`
	Success bool   `json:"success"`
}

type RoleResponse struct {
	Success     bool               `json:"success"`
	UserID      int64              `json:"userId"`
	Role        models.Role        `json:"role"`
	Permissions auth.PermissionSet `json:"permissions"`
}

type SessionsResponse struct {
	Success bool             `json:"success"`
	Data    []models.Session `json:"data"`
}
