package postgres

import (
	"context"

	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/storage"
)

var _ storage.UserStore = (*UserStore)(nil)

// UserStore reads and seeds user rows.
type UserStore struct {
	db DBTX
}

func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, password_hash, role, created_at`

// FindByUsername fetches a user by username.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, username))
}

// FindByID fetches a user by id. It is the authoritative role read.
func (s *UserStore) FindByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

// UpsertUser creates the user or replaces its hash and role.
func (s *UserStore) UpsertUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role
		RETURNING ` + userColumns
	row := s.db.QueryRowContext(ctx, query, user.Username, user.PasswordHash, user.Role.String())
	return scanUser(row)
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		user models.User
		role string
	)
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
		return models.User{}, translate(err)
	}
	user.Role = models.ParseRole(role)
	return user, nil
}
