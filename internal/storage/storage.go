package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/mediavault/internal/apperr"
	"github.com/hongminglow/mediavault/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = fmt.Errorf("record %w", apperr.ErrNotFound)

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures the user reads the auth layer needs, plus the upsert
// used by the out-of-band seed tool.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	UpsertUser(ctx context.Context, user models.User) (models.User, error)
}

// SessionLedger is the append-only audit trail of issued tokens. It is never
// consulted to authorize a request.
type SessionLedger interface {
	Record(ctx context.Context, userID int64, token string) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.Session, error)
}

// AssetStore persists catalog rows. It never touches the files themselves.
type AssetStore interface {
	CreateAsset(ctx context.Context, asset models.Asset) (models.Asset, error)
	GetAsset(ctx context.Context, id int64) (models.Asset, error)
	ListAssets(ctx context.Context, filter models.AssetFilter, sort models.SortOrder, page models.Page) ([]models.Asset, int64, error)
	UpdateAsset(ctx context.Context, id int64, patch models.AssetPatch) (models.Asset, error)
	// DeleteAsset removes the row and returns it so the caller can unlink the file.
	DeleteAsset(ctx context.Context, id int64) (models.Asset, error)
	Stats(ctx context.Context) (models.CatalogStats, error)
}
