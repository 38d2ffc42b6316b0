package media

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hongminglow/mediavault/internal/models"
)

func TestClassify(t *testing.T) {
	cases := map[string]models.Kind{
		"image/png":                 models.KindImage,
		"IMAGE/JPEG":                models.KindImage,
		"video/mp4":                 models.KindVideo,
		"audio/mpeg":                models.KindAudio,
		"application/pdf":           models.KindDocument,
		"text/plain; charset=utf-8": models.KindDocument,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": models.KindDocument,
		"application/zip": models.KindOther,
		"":                models.KindOther,
	}
	for mime, want := range cases {
		assert.Equal(t, want, Classify(mime), mime)
	}
}

func TestDirectory(t *testing.T) {
	assert.Equal(t, "images", Directory(models.KindImage))
	assert.Equal(t, "videos", Directory(models.KindVideo))
	assert.Equal(t, "audio", Directory(models.KindAudio))
	assert.Equal(t, "documents", Directory(models.KindDocument))
	assert.Equal(t, "documents", Directory(models.KindOther))
}
