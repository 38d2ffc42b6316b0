package models

import "strings"

// SortOrder selects one deterministic ordering for asset listings.
type SortOrder string

const (
	SortNewest   SortOrder = "newest"
	SortOldest   SortOrder = "oldest"
	SortNameAsc  SortOrder = "name-asc"
	SortNameDesc SortOrder = "name-desc"
	SortSizeDesc SortOrder = "size-desc"
	SortSizeAsc  SortOrder = "size-asc"
)

// ParseSortOrder falls back to SortNewest for empty or unknown values.
func ParseSortOrder(value string) SortOrder {
	switch s := SortOrder(strings.ToLower(strings.TrimSpace(value))); s {
	case SortNewest, SortOldest, SortNameAsc, SortNameDesc, SortSizeDesc, SortSizeAsc:
		return s
	default:
		return SortNewest
	}
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AssetFilter is an open conjunction; zero-valued fields impose no constraint.
type AssetFilter struct {
	Search   string
	Kind     Kind
	Program  string
	MimeType string
}

// Page is a 1-indexed page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number to >= 1 and size to [1, MaxPageSize], defaulting
// a non-positive size to DefaultPageSize.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pages returns ceil(total/size).
func (p Page) Pages(total int64) int64 {
	if total <= 0 || p.Size <= 0 {
		return 0
	}
	size := int64(p.Size)
	return (total + size - 1) / size
}

// AssetList is one page of listing results plus the unpaginated total.
type AssetList struct {
	Items []Asset
	Total int64
	Page  Page
}

// CatalogStats aggregates the catalog contents.
type CatalogStats struct {
	Total            int64            `json:"total"`
	PerKind          map[Kind]int64   `json:"perKind"`
	PerProgram       map[string]int64 `json:"perProgram"`
	StorageUsedBytes int64            `json:"storageUsedBytes"`
}
