package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/mediavault/internal/apperr"
	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/storage"
)

// PasswordCost is the bcrypt work factor used for every stored hash.
const PasswordCost = 12

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPasswordMismatch = errors.New("password mismatch")
)

// CredentialStore verifies plaintext passwords against stored bcrypt hashes.
type CredentialStore struct {
	users storage.UserStore

	dummyOnce sync.Once
	dummyHash []byte
}

// NewCredentialStore constructs a verifier over the given user store.
func NewCredentialStore(users storage.UserStore) *CredentialStore {
	return &CredentialStore{users: users}
}

// Verify looks the user up by name and compares the password. An unknown
// user still pays for one bcrypt comparison so both failure paths cost the
// same.
func (c *CredentialStore) Verify(ctx context.Context, username, password string) (models.User, error) {
	user, err := c.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(c.dummy(), []byte(password))
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w: %w", apperr.ErrPersistence, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrPasswordMismatch
	}
	return user, nil
}

func (c *CredentialStore) dummy() []byte {
	c.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("mediavault-placeholder"), PasswordCost)
		if err == nil {
			c.dummyHash = hash
		}
	})
	return c.dummyHash
}

// HashPassword hashes a plaintext password at PasswordCost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
