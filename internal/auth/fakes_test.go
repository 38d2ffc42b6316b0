package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/mediavault/internal/logging"
	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/storage"
)

type fakeUsers struct {
	mu     sync.Mutex
	byName map[string]models.User
	err    error
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{byName: map[string]models.User{}}
	for _, u := range users {
		f.byName[u.Username] = u
	}
	return f
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.User{}, f.err
	}
	u, ok := f.byName[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.User{}, f.err
	}
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (f *fakeUsers) UpsertUser(_ context.Context, user models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byName[user.Username] = user
	return user, nil
}

func (f *fakeUsers) setRole(username string, role models.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byName[username]
	u.Role = role
	f.byName[username] = u
}

type fakeLedger struct {
	mu       sync.Mutex
	sessions []models.Session
	err      error
}

func (f *fakeLedger) Record(_ context.Context, userID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sessions = append(f.sessions, models.Session{ID: int64(len(f.sessions) + 1), UserID: userID, Token: token})
	return nil
}

func (f *fakeLedger) ListByUser(_ context.Context, userID int64, limit int) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Session
	for i := len(f.sessions) - 1; i >= 0 && len(out) < limit; i-- {
		if f.sessions[i].UserID == userID {
			out = append(out, f.sessions[i])
		}
	}
	return out, nil
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(context.Context, string, ...any) {}
func (l *recordingLogger) Info(context.Context, string, ...any)  {}
func (l *recordingLogger) Error(context.Context, string, ...any) {}
func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}
func (l *recordingLogger) With(...any) logging.Logger { return l }

var errBoom = errors.New("boom")

func mustHash(t interface{ Fatalf(string, ...any) }, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(hash)
}
