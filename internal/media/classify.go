// Package media places uploaded files on disk: it classifies them by MIME
// type, picks a collision-free name inside the kind's directory and streams
// the bytes there.
package media

import (
	"strings"

	"github.com/hongminglow/mediavault/internal/models"
)

var documentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/rtf",
	"application/vnd.openxmlformats-officedocument.",
	"application/vnd.oasis.opendocument.",
	"application/vnd.ms-excel",
	"application/vnd.ms-powerpoint",
	"text/",
}

// Classify maps a MIME type onto a catalog kind. Prefixes are checked in
// the order image, video, audio; everything else is a document when it is a
// known document type and other otherwise.
func Classify(mimeType string) models.Kind {
	m := normalizeMIME(mimeType)
	switch {
	case strings.HasPrefix(m, "image/"):
		return models.KindImage
	case strings.HasPrefix(m, "video/"):
		return models.KindVideo
	case strings.HasPrefix(m, "audio/"):
		return models.KindAudio
	}
	for _, prefix := range documentTypes {
		if strings.HasPrefix(m, prefix) {
			return models.KindDocument
		}
	}
	return models.KindOther
}

// Directory is the subdirectory of the storage root that holds kind.
// Documents and other files share one bucket.
func Directory(kind models.Kind) string {
	switch kind {
	case models.KindImage:
		return "images"
	case models.KindVideo:
		return "videos"
	case models.KindAudio:
		return "audio"
	default:
		return "documents"
	}
}

func normalizeMIME(mimeType string) string {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	return m
}
