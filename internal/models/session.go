package models

import "time"

// Session is one ledger row written per successful login.
type Session struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	Token    string    `json:"-"`
	IssuedAt time.Time `json:"issued_at"`
}

// Claims is the identity carried inside a bearer token.
type Claims struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
