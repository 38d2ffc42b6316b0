package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/storage"
)

var errBoom = errors.New("boom")

// memAssets is an in-memory AssetStore with the same ordering rules as the
// SQL implementation.
type memAssets struct {
	mu        sync.Mutex
	rows      map[int64]models.Asset
	nextID    int64
	createErr error
	listErr   error
}

func newMemAssets() *memAssets {
	return &memAssets{rows: map[int64]models.Asset{}}
}

func (m *memAssets) CreateAsset(_ context.Context, a models.Asset) (models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return models.Asset{}, m.createErr
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Unix(m.nextID, 0)
	m.rows[a.ID] = a
	return a, nil
}

func (m *memAssets) GetAsset(_ context.Context, id int64) (models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return models.Asset{}, storage.ErrNotFound
	}
	return a, nil
}

func (m *memAssets) ListAssets(_ context.Context, f models.AssetFilter, order models.SortOrder, page models.Page) ([]models.Asset, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var matched []models.Asset
	for _, a := range m.rows {
		if f.Kind != "" && a.Kind != f.Kind {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch order {
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
			return a.ID > b.ID
		}
	})
	total := int64(len(matched))
	start := min(page.Offset(), len(matched))
	end := min(start+page.Size, len(matched))
	return matched[start:end], total, nil
}

func (m *memAssets) UpdateAsset(_ context.Context, id int64, p models.AssetPatch) (models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return models.Asset{}, storage.ErrNotFound
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Title != nil {
		a.Title = blankToNil(*p.Title)
	}
	if p.Program != nil {
		a.Program = blankToNil(*p.Program)
	}
	if p.RecordingYear != nil {
		y := *p.RecordingYear
		a.RecordingYear = &y
	}
	m.rows[id] = a
	return a, nil
}

func (m *memAssets) DeleteAsset(_ context.Context, id int64) (models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return models.Asset{}, storage.ErrNotFound
	}
	delete(m.rows, id)
	return a, nil
}

func (m *memAssets) Stats(context.Context) (models.CatalogStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := models.CatalogStats{PerKind: map[models.Kind]int64{}, PerProgram: map[string]int64{}}
	for _, a := range m.rows {
		stats.Total++
		stats.StorageUsedBytes += a.Size
		stats.PerKind[a.Kind]++
		if a.Program != nil {
			stats.PerProgram[*a.Program]++
		}
	}
	return stats, nil
}

func blankToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type countingObserver struct {
	mu     sync.Mutex
	stored int
	gaps   []string
}

func (o *countingObserver) AssetStored(models.Kind, int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stored++
}
func (o *countingObserver) AssetDeleted(models.Kind) {}
func (o *countingObserver) ReconciliationGap(op string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gaps = append(o.gaps, op)
}
