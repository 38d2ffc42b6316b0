// Package memory is an in-process implementation of the storage interfaces,
// used by handler and server tests. It follows the same ordering and
// filtering rules as the Postgres store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/storage"
)

var (
	_ storage.UserStore     = (*Store)(nil)
	_ storage.SessionLedger = (*Store)(nil)
	_ storage.AssetStore    = (*Store)(nil)
)

// Store holds users, sessions and assets in maps guarded by one mutex.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	users    map[int64]models.User
	sessions []models.Session
	assets   map[int64]models.Asset
	nextID   int64
}

func New() *Store {
	return &Store{
		now:    time.Now,
		users:  map[int64]models.User{},
		assets: map[int64]models.Asset{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) UpsertUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Username == user.Username {
			u.PasswordHash = user.PasswordHash
			u.Role = user.Role
			s.users[id] = u
			return u, nil
		}
	}
	user.ID = s.id()
	user.CreatedAt = s.now()
	s.users[user.ID] = user
	return user, nil
}

// DeleteUser removes a user. Only tests need it.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *Store) Record(_ context.Context, userID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, models.Session{ID: s.id(), UserID: userID, Token: token, IssuedAt: s.now()})
	return nil
}

func (s *Store) ListByUser(_ context.Context, userID int64, limit int) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Session, 0)
	for i := len(s.sessions) - 1; i >= 0 && len(out) < limit; i-- {
		if s.sessions[i].UserID == userID {
			out = append(out, s.sessions[i])
		}
	}
	return out, nil
}

func (s *Store) CreateAsset(_ context.Context, a models.Asset) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.assets {
		if existing.StoragePath == a.StoragePath {
			return models.Asset{}, storage.ErrAlreadyExists
		}
	}
	a.ID = s.id()
	a.CreatedAt = s.now()
	s.assets[a.ID] = a
	return a, nil
}

func (s *Store) GetAsset(_ context.Context, id int64) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return models.Asset{}, storage.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAssets(_ context.Context, filter models.AssetFilter, order models.SortOrder, page models.Page) ([]models.Asset, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		if matches(a, filter) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, less(matched, models.ParseSortOrder(string(order))))

	total := int64(len(matched))
	start := min(page.Offset(), len(matched))
	end := min(start+page.Size, len(matched))
	return append([]models.Asset(nil), matched[start:end]...), total, nil
}

func matches(a models.Asset, f models.AssetFilter) bool {
	if s := strings.TrimSpace(f.Search); s != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(s)) {
		return false
	}
	if f.Kind != "" && a.Kind != f.Kind {
		return false
	}
	if p := strings.TrimSpace(f.Program); p != "" && (a.Program == nil || *a.Program != p) {
		return false
	}
	if m := strings.ToLower(strings.TrimSpace(f.MimeType)); m != "" {
		if strings.HasSuffix(m, "/") {
			return strings.HasPrefix(a.MimeType, m)
		}
		return a.MimeType == m
	}
	return true
}

func less(items []models.Asset, order models.SortOrder) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := items[i], items[j]
		switch order {
		case models.SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		case models.SortNameAsc:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.ID < b.ID
		case models.SortNameDesc:
			if a.Name != b.Name {
				return a.Name > b.Name
			}
			return a.ID > b.ID
		case models.SortSizeDesc:
			if a.Size != b.Size {
				return a.Size > b.Size
			}
			return a.ID > b.ID
		case models.SortSizeAsc:
			if a.Size != b.Size {
				return a.Size < b.Size
			}
			return a.ID < b.ID
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
	}
}

func (s *Store) UpdateAsset(_ context.Context, id int64, p models.AssetPatch) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return models.Asset{}, storage.ErrNotFound
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Title != nil {
		a.Title = optional(*p.Title)
	}
	if p.Description != nil {
		a.Description = optional(*p.Description)
	}
	if p.Program != nil {
		a.Program = optional(*p.Program)
	}
	if p.Duration != nil {
		a.Duration = optional(*p.Duration)
	}
	if p.RecordingYear != nil {
		if *p.RecordingYear == 0 {
			a.RecordingYear = nil
		} else {
			y := *p.RecordingYear
			a.RecordingYear = &y
		}
	}
	s.assets[id] = a
	return a, nil
}

func (s *Store) DeleteAsset(_ context.Context, id int64) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return models.Asset{}, storage.ErrNotFound
	}
	delete(s.assets, id)
	return a, nil
}

func (s *Store) Stats(context.Context) (models.CatalogStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := models.CatalogStats{
		PerKind: map[models.Kind]int64{
			models.KindImage: 0, models.KindVideo: 0, models.KindAudio: 0,
			models.KindDocument: 0, models.KindOther: 0,
		},
		PerProgram: map[string]int64{},
	}
	for _, a := range s.assets {
		stats.Total++
		stats.StorageUsedBytes += a.Size
		stats.PerKind[a.Kind]++
		if a.Program != nil && *a.Program != "" {
			stats.PerProgram[*a.Program]++
		}
	}
	return stats, nil
}

func optional(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}
