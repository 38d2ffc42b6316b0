package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/mediavault/internal/apperr"
	"github.com/hongminglow/mediavault/internal/logging"
	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/storage"
)

// ErrInvalidCredentials is the only failure a client ever sees for a bad
// login, whether the username is unknown or the password is wrong.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperr.ErrAuthenticationMissing)

// Service runs the login flow: verify credentials, mint a token, append the
// session to the ledger.
type Service struct {
	credentials *CredentialStore
	tokens      *TokenManager
	ledger      storage.SessionLedger
	logger      logging.Logger
}

func NewService(credentials *CredentialStore, tokens *TokenManager, ledger storage.SessionLedger, logger logging.Logger) *Service {
	return &Service{
		credentials: credentials,
		tokens:      tokens,
		ledger:      ledger,
		logger:      logger.With("module", "auth"),
	}
}

// Login returns the authenticated user and a freshly signed token. A ledger
// failure is logged and does not fail the login.
func (s *Service) Login(ctx context.Context, username, password string) (models.User, string, error) {
	user, err := s.credentials.Verify(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrPasswordMismatch):
			s.logger.Info(ctx, "login rejected", "username", username, "reason", err.Error())
			return models.User{}, "", ErrInvalidCredentials
		default:
			return models.User{}, "", err
		}
	}

	user.Role = models.ParseRole(string(user.Role))
	token, err := s.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return models.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	if err := s.ledger.Record(ctx, user.ID, token); err != nil {
		s.logger.Warn(ctx, "session ledger append failed", "user_id", user.ID, "err", err)
	}

	s.logger.Info(ctx, "login succeeded", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

// Sessions lists the caller's own ledger rows, newest first.
func (s *Service) Sessions(ctx context.Context, userID int64, limit int) ([]models.Session, error) {
	sessions, err := s.ledger.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w: %w", apperr.ErrPersistence, err)
	}
	return sessions, nil
}
