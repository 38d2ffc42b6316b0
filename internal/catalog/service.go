// Package catalog coordinates the file placement on disk with the catalog
// rows in the database.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hongminglow/mediavault/internal/apperr"
	"github.com/hongminglow/mediavault/internal/logging"
	"github.com/hongminglow/mediavault/internal/media"
	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/storage"
)

// FileStore is the on-disk side of the catalog.
type FileStore interface {
	Place(ctx context.Context, src io.Reader, mimeType, originalName string) (media.Placement, error)
	Open(path string) (*os.File, error)
	Remove(path string) error
	DiskUsage(ctx context.Context) (int64, error)
}

// Observer receives catalog events for metrics.
type Observer interface {
	AssetStored(kind models.Kind, bytes int64)
	AssetDeleted(kind models.Kind)
	ReconciliationGap(op string)
}

type nopObserver struct{}

func (nopObserver) AssetStored(models.Kind, int64) {}
func (nopObserver) AssetDeleted(models.Kind)       {}
func (nopObserver) ReconciliationGap(string)       {}

// Service is the asset catalog.
type Service struct {
	assets   storage.AssetStore
	files    FileStore
	logger   logging.Logger
	observer Observer
}

// Option customizes a Service.
type Option func(*Service)

// WithObserver attaches an event observer.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

func NewService(assets storage.AssetStore, files FileStore, logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		assets:   assets,
		files:    files,
		logger:   logger.With("module", "catalog"),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadRequest is one incoming file plus its descriptive metadata.
type UploadRequest struct {
	File          io.Reader
	FileName      string
	MimeType      string
	Name          string
	Title         *string
	Description   *string
	Program       *string
	RecordingYear *int
	Duration      *string
}

// Upload places the file and then records it. If the insert fails the file
// stays on disk and the orphaned path is logged.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (models.Asset, error) {
	if req.File == nil || strings.TrimSpace(req.FileName) == "" {
		return models.Asset{}, fmt.Errorf("file is required: %w", apperr.ErrValidation)
	}
	if err := validateYear(req.RecordingYear); err != nil {
		return models.Asset{}, err
	}

	placement, err := s.files.Place(ctx, req.File, req.MimeType, req.FileName)
	if err != nil {
		return models.Asset{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(req.FileName)
	}
	asset := models.Asset{
		Name:          name,
		Kind:          placement.Kind,
		Extension:     placement.Extension,
		MimeType:      placement.MimeType,
		Title:         trimmed(req.Title),
		Description:   trimmed(req.Description),
		Program:       trimmed(req.Program),
		RecordingYear: req.RecordingYear,
		Duration:      trimmed(req.Duration),
		StoragePath:   placement.Path,
		Size:          placement.Size,
	}

	created, err := s.assets.CreateAsset(ctx, asset)
	if err != nil {
		s.logger.Error(ctx, "asset insert failed, file left orphaned", "path", placement.Path, "err", err)
		s.observer.ReconciliationGap("upload")
		return models.Asset{}, persistence("create asset", err)
	}

	s.observer.AssetStored(created.Kind, created.Size)
	s.logger.Info(ctx, "asset stored", "id", created.ID, "kind", created.Kind, "size", created.Size)
	return created, nil
}

// List returns one page of assets. Out-of-range page and size values are
// clamped, and an unknown sort falls back to newest.
func (s *Service) List(ctx context.Context, filter models.AssetFilter, sort models.SortOrder, page models.Page) (models.AssetList, error) {
	page = models.NewPage(page.Number, page.Size)
	sort = models.ParseSortOrder(string(sort))

	items, total, err := s.assets.ListAssets(ctx, filter, sort, page)
	if err != nil {
		return models.AssetList{}, persistence("list assets", err)
	}
	return models.AssetList{Items: items, Total: total, Page: page}, nil
}

// Get returns one asset.
func (s *Service) Get(ctx context.Context, id int64) (models.Asset, error) {
	asset, err := s.assets.GetAsset(ctx, id)
	if err != nil {
		return models.Asset{}, persistence("get asset", err)
	}
	return asset, nil
}

// Open returns the asset and its file, positioned at the start. The caller
// closes the file.
func (s *Service) Open(ctx context.Context, id int64) (models.Asset, *os.File, error) {
	asset, err := s.Get(ctx, id)
	if err != nil {
		return models.Asset{}, nil, err
	}
	f, err := s.files.Open(asset.StoragePath)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.logger.Warn(ctx, "catalog row without file", "id", id, "path", asset.StoragePath)
			s.observer.ReconciliationGap("download")
		}
		return models.Asset{}, nil, err
	}
	return asset, f, nil
}

// Update edits descriptive metadata. Kind, storage path and size never change.
func (s *Service) Update(ctx context.Context, id int64, patch models.AssetPatch) (models.Asset, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return models.Asset{}, fmt.Errorf("name must not be empty: %w", apperr.ErrValidation)
		}
		patch.Name = &name
	}
	if err := validateYear(patch.RecordingYear); err != nil {
		return models.Asset{}, err
	}
	patch.Title = trimmedOrEmpty(patch.Title)
	patch.Description = trimmedOrEmpty(patch.Description)
	patch.Program = trimmedOrEmpty(patch.Program)
	patch.Duration = trimmedOrEmpty(patch.Duration)

	asset, err := s.assets.UpdateAsset(ctx, id, patch)
	if err != nil {
		return models.Asset{}, persistence("update asset", err)
	}
	return asset, nil
}

// Delete removes the row and then the file. A file that cannot be removed
// once the row is gone is logged and does not fail the call.
func (s *Service) Delete(ctx context.Context, id int64) error {
	asset, err := s.assets.DeleteAsset(ctx, id)
	if err != nil {
		return persistence("delete asset", err)
	}
	s.observer.AssetDeleted(asset.Kind)

	if err := s.files.Remove(asset.StoragePath); err != nil {
		s.logger.Error(ctx, "asset row deleted but file remains", "id", id, "path", asset.StoragePath, "err", err)
		s.observer.ReconciliationGap("delete")
		return nil
	}
	s.logger.Info(ctx, "asset deleted", "id", id)
	return nil
}

// Stats combines the catalog aggregates with the measured on-disk usage.
type Stats struct {
	models.CatalogStats
	OnDiskBytes int64
	Formatted   string
}

// Stats aggregates the catalog. A failed disk measurement is logged and
// reported as zero.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	agg, err := s.assets.Stats(ctx)
	if err != nil {
		return Stats{}, persistence("catalog stats", err)
	}
	onDisk, err := s.files.DiskUsage(ctx)
	if err != nil {
		s.logger.Warn(ctx, "disk usage measurement failed", "err", err)
		onDisk = 0
	}
	return Stats{
		CatalogStats: agg,
		OnDiskBytes:  onDisk,
		Formatted:    FormatBytes(agg.StorageUsedBytes),
	}, nil
}

// persistence leaves not-found and validation errors as they are and marks
// everything else as a database failure.
func persistence(op string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrValidation) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrPersistence, err)
}

func validateYear(year *int) error {
	if year == nil || *year == 0 {
		return nil
	}
	if *year < 1800 || *year > 9999 {
		return fmt.Errorf("recording year %d out of range: %w", *year, apperr.ErrValidation)
	}
	return nil
}

// trimmed drops blank optional values.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// trimmedOrEmpty keeps a present-but-blank value so an update can clear it.
func trimmedOrEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
