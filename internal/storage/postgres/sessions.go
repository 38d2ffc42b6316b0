package postgres

import (
	"context"

	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/storage"
)

var _ storage.SessionLedger = (*SessionLedger)(nil)

// SessionLedger appends one row per issued token. Rows are never updated.
type SessionLedger struct {
	db DBTX
}

func NewSessionLedger(db DBTX) *SessionLedger {
	return &SessionLedger{db: db}
}

// Record appends a session row.
func (l *SessionLedger) Record(ctx context.Context, userID int64, token string) error {
	query := `
		INSERT INTO sessions (user_id, token)
		VALUES ($1, $2)
	`
	if _, err := l.db.ExecContext(ctx, query, userID, token); err != nil {
		return translate(err)
	}
	return nil
}

// ListByUser returns the user's most recent sessions, newest first.
func (l *SessionLedger) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Session, error) {
	query := `
		SELECT id, user_id, token, issued_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY issued_at DESC, id DESC
		LIMIT $2
	`
	rows, err := l.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Token, &s.IssuedAt); err != nil {
			return nil, translate(err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return sessions, nil
}
