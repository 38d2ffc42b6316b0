package dto

import "github.com/hongminglow/mediavault/internal/models"

type UploadResponse struct {
	Success bool  `json:"success"`
	AssetID int64 `json:"assetId"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type ListAssetsResponse struct {
	Success    bool           `json:"success"`
	Data       []models.Asset `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

type AssetResponse struct {
	Success bool         `json:"success"`
	Data    models.Asset `json:"data"`
}

// UpdateAssetRequest lists the only fields a metadata edit may touch.
type UpdateAssetRequest struct {
	Name          *string `json:"name"`
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Program       *string `json:"program"`
	RecordingYear *int    `json:"recordingYear"`
	Duration      *string `json:"duration"`
}

// Patch converts the request into the catalog's patch type.
func (r UpdateAssetRequest) Patch() models.AssetPatch {
	return models.AssetPatch{
		Name:          r.Name,
		Title:         r.Title,
		Description:   r.Description,
		Program:       r.Program,
		RecordingYear: r.RecordingYear,
		Duration:      r.Duration,
	}
}

type StorageUsage struct {
	Bytes       int64  `json:"bytes"`
	Formatted   string `json:"formatted"`
	OnDiskBytes int64  `json:"onDiskBytes"`
}

type StatsResponse struct {
	Success    bool                  `json:"success"`
	Total      int64                 `json:"total"`
	PerKind    map[models.Kind]int64 `json:"perKind"`
	PerProgram map[string]int64      `json:"perProgram"`
	Storage    StorageUsage          `json:"storage"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
