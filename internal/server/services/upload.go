package services

import (
	"io"
	"strings"

	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
)

// Upload is a file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	// Size is -1 when unknown.
	Size int64
	Body io.Reader
}

// MediaType picks video, audio or image from a declared content type.
func MediaType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "video/"):
		return models.MediaVideo
	case strings.HasPrefix(ct, "audio/"):
		return models.MediaAudio
	default:
		return models.MediaImage
	}
}
