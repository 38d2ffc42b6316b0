package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/hongminglow/mediavault/internal/auth"
	"github.com/hongminglow/mediavault/internal/http/middleware"
	"github.com/hongminglow/mediavault/internal/logging"
	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/models/dto"
	"github.com/hongminglow/mediavault/internal/storage/postgres"
)

// TestAuthIntegration seeds a user in a live database, logs in over HTTP and
// reads the role back with the issued token.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := mustGetEnv(t, "DATABASE_URL")

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, dbURL, 4)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	username := fmt.Sprintf("apitest_%d", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := store.Users.UpsertUser(ctx, models.User{Username: username, PasswordHash: hash, Role: models.RoleModerator})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	tokens := auth.NewTokenManager(mustGetEnv(t, "JWT_SECRET"), "mediavault", auth.SessionTTL)
	svc := auth.NewService(auth.NewCredentialStore(store.Users), tokens, store.Sessions, logging.Nop{})
	gate := middleware.NewGate(tokens, auth.NewResolver(store.Users), logging.Nop{}, nil)

	r := mux.NewRouter()
	NewAuthHandler(svc, logging.Nop{}, nil).Register(r, nil)
	NewMeHandler(svc, logging.Nop{}).Register(r, gate)

	ts := httptest.NewServer(r)
	defer ts.Close()

	loggedIn := requestLogin(t, ts.URL, username, password)
	if loggedIn.ID != user.ID {
		t.Fatalf("login returned wrong user id: want %d got %d", user.ID, loggedIn.ID)
	}
	if strings.TrimSpace(loggedIn.Token) == "" {
		t.Fatal("login response missing token")
	}

	role := requestRole(t, ts.URL, loggedIn.Token)
	if role.Role != models.RoleModerator || !role.Permissions.CanUpload || role.Permissions.CanDelete {
		t.Fatalf("unexpected role response: %+v", role)
	}

	sessions, err := store.Sessions.ListByUser(ctx, user.ID, 5)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("want 1 ledger row, got %d", len(sessions))
	}

	t.Logf("seeded user %s (id=%d) and logged in via /login", username, user.ID)
}

func requestLogin(t *testing.T, baseURL, username, password string) dto.LoginResponse {
	t.Helper()
	body, err := json.Marshal(dto.LoginRequest{Username: username, Password: password})
	if err != nil {
		t.Fatalf("marshal login payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/login", baseURL), bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build login request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	var out dto.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return out
}

func requestRole(t *testing.T, baseURL, token string) dto.RoleResponse {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/me/role", baseURL), nil)
	if err != nil {
		t.Fatalf("build role request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("role request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("role status = %d", resp.StatusCode)
	}

	var out dto.RoleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode role response: %v", err)
	}
	return out
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
