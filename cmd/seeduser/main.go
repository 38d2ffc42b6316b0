// Command seeduser creates a user or resets an existing user's password
// and role. Accounts are only ever provisioned this way.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/mediavault/internal/auth"
	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	var (
		username = flag.String("username", "admin", "login name")
		password = flag.String("password", "", "plain-text password (required)")
		role     = flag.String("role", string(models.RoleAdmin), "admin, moderator or viewer")
		dbURL    = flag.String("database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	)
	flag.Parse()

	if err := seed(*dbURL, *username, *password, *role); err != nil {
		log.Fatalf("seeduser: %v", err)
	}
}

func seed(dbURL, username, password, roleName string) error {
	username = strings.TrimSpace(username)
	switch {
	case dbURL == "":
		return fmt.Errorf("DATABASE_URL or -database-url is required")
	case username == "" || password == "":
		return fmt.Errorf("username and password are required")
	}
	role := models.Role(strings.ToLower(strings.TrimSpace(roleName)))
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", roleName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := postgres.NewStore(ctx, dbURL, 1)
	if err != nil {
		return err
	}
	defer store.Close()

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user, err := store.Users.UpsertUser(ctx, models.User{Username: username, PasswordHash: hash, Role: role})
	if err != nil {
		return err
	}
	fmt.Printf("user %q (id=%d) saved with role %s\n", user.Username, user.ID, user.Role)
	return nil
}
