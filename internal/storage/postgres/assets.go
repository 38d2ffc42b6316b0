package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/storage"
)

var _ storage.AssetStore = (*AssetStore)(nil)

// AssetStore persists catalog rows.
type AssetStore struct {
	db *sql.DB
}

func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

// CreateAsset inserts the row and returns it with id and created_at filled in.
func (s *AssetStore) CreateAsset(ctx context.Context, a models.Asset) (models.Asset, error) {
	query := `
		INSERT INTO assets (name, kind, extension, mime_type, title, description, program, recording_year, duration, storage_path, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + assetColumns
	row := s.db.QueryRowContext(ctx, query,
		a.Name, string(a.Kind), a.Extension, a.MimeType,
		nullString(a.Title), nullString(a.Description), nullString(a.Program),
		nullInt(a.RecordingYear), nullString(a.Duration),
		a.StoragePath, a.Size,
	)
	return one(row)
}

// GetAsset fetches one row by id.
func (s *AssetStore) GetAsset(ctx context.Context, id int64) (models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`
	return one(s.db.QueryRowContext(ctx, query, id))
}

// ListAssets returns one page plus the total matching the same filter. Both
// statements run in one read-only snapshot.
func (s *AssetStore) ListAssets(ctx context.Context, filter models.AssetFilter, sort models.SortOrder, page models.Page) ([]models.Asset, int64, error) {
	q := newAssetQuery(filter)
	var (
		items []models.Asset
		total int64
	)
	err := WithTx(ctx, s.db, snapshot, func(ctx context.Context, tx DBTX) error {
		countQuery, countArgs := q.countSQL()
		if err := tx.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return err
		}

		listQuery, listArgs := q.listSQL(sort, page)
		rows, err := tx.QueryContext(ctx, listQuery, listArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		items = make([]models.Asset, 0, page.Size)
		for rows.Next() {
			a, err := scanAsset(rows)
			if err != nil {
				return err
			}
			items = append(items, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

// UpdateAsset applies the non-nil patch fields. An empty string clears an
// optional text field and a zero year clears the year.
func (s *AssetStore) UpdateAsset(ctx context.Context, id int64, patch models.AssetPatch) (models.Asset, error) {
	if patch.Empty() {
		return s.GetAsset(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Title != nil {
		set("title", nullString(patch.Title))
	}
	if patch.Description != nil {
		set("description", nullString(patch.Description))
	}
	if patch.Program != nil {
		set("program", nullString(patch.Program))
	}
	if patch.RecordingYear != nil {
		set("recording_year", nullInt(patch.RecordingYear))
	}
	if patch.Duration != nil {
		set("duration", nullString(patch.Duration))
	}
	args = append(args, id)

	query := `UPDATE assets SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + assetColumns
	return one(s.db.QueryRowContext(ctx, query, args...))
}

// DeleteAsset removes the row and returns what was deleted.
func (s *AssetStore) DeleteAsset(ctx context.Context, id int64) (models.Asset, error) {
	query := `DELETE FROM assets WHERE id = $1 RETURNING ` + assetColumns
	return one(s.db.QueryRowContext(ctx, query, id))
}

// Stats aggregates counts and total size in one read-only snapshot.
func (s *AssetStore) Stats(ctx context.Context) (models.CatalogStats, error) {
	stats := models.CatalogStats{
		PerKind: map[models.Kind]int64{
			models.KindImage: 0, models.KindVideo: 0, models.KindAudio: 0,
			models.KindDocument: 0, models.KindOther: 0,
		},
		PerProgram: map[string]int64{},
	}

	err := WithTx(ctx, s.db, snapshot, func(ctx context.Context, tx DBTX) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*), COALESCE(SUM(size), 0) FROM assets`,
		).Scan(&stats.Total, &stats.StorageUsedBytes); err != nil {
			return err
		}

		if err := groupCounts(ctx, tx, `SELECT kind, COUNT(*) FROM assets GROUP BY kind`, func(key string, n int64) {
			stats.PerKind[models.Kind(key)] = n
		}); err != nil {
			return err
		}

		return groupCounts(ctx, tx,
			`SELECT program, COUNT(*) FROM assets WHERE program IS NOT NULL AND program <> '' GROUP BY program`,
			func(key string, n int64) { stats.PerProgram[key] = n },
		)
	})
	if err != nil {
		return models.CatalogStats{}, translate(err)
	}
	return stats, nil
}

func groupCounts(ctx context.Context, tx DBTX, query string, fn func(key string, n int64)) error {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			n   int64
		)
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		fn(key, n)
	}
	return rows.Err()
}

// one scans a single-row result, mapping no rows onto storage.ErrNotFound.
func one(row *sql.Row) (models.Asset, error) {
	a, err := scanAsset(row)
	if err != nil {
		return models.Asset{}, translate(err)
	}
	return a, nil
}

func scanAsset(row rowScanner) (models.Asset, error) {
	var (
		a                           models.Asset
		kind                        string
		title, description, program sql.NullString
		duration                    sql.NullString
		year                        sql.NullInt32
	)
	err := row.Scan(&a.ID, &a.Name, &kind, &a.Extension, &a.MimeType,
		&title, &description, &program, &year, &duration,
		&a.StoragePath, &a.Size, &a.CreatedAt)
	if err != nil {
		return models.Asset{}, err
	}
	a.Kind = models.Kind(kind)
	a.Title = stringPtr(title)
	a.Description = stringPtr(description)
	a.Program = stringPtr(program)
	a.Duration = stringPtr(duration)
	if year.Valid {
		y := int(year.Int32)
		a.RecordingYear = &y
	}
	return a, nil
}

func nullString(s *string) sql.NullString {
	if s == nil || strings.TrimSpace(*s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt32 {
	if n == nil || *n == 0 {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*n), Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
