package models

import (
	"strings"
	"time"
)

// Kind is the coarse content classification of an asset.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
	KindOther    Kind = "other"
)

// ParseKind returns the Kind named by value and whether it was recognized.
func ParseKind(value string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(value))); k {
	case KindImage, KindVideo, KindAudio, KindDocument, KindOther:
		return k, true
	default:
		return "", false
	}
}

// Asset is a catalog row describing one stored media file.
type Asset struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Kind          Kind      `json:"kind"`
	Extension     string    `json:"extension"`
	MimeType      string    `json:"mimeType"`
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Program       *string   `json:"program,omitempty"`
	RecordingYear *int      `json:"recordingYear,omitempty"`
	Duration      *string   `json:"duration,omitempty"`
	StoragePath   string    `json:"-"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AssetPatch holds the editable metadata fields. Nil fields are left untouched.
type AssetPatch struct {
	Name          *string
	Title         *string
	Description   *string
	Program       *string
	RecordingYear *int
	Duration      *string
}

// Empty reports whether the patch changes nothing.
func (p AssetPatch) Empty() bool {
	return p.Name == nil && p.Title == nil && p.Description == nil &&
		p.Program == nil && p.RecordingYear == nil && p.Duration == nil
}
