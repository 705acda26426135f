package models

import "time"

// Media types.
const (
	MediaVideo = "video"
	MediaAudio = "audio"
	MediaImage = "image"
)

// Media sources.
const (
	SourceUpload   = "upload"
	SourceDownload = "download"
)

type Media struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	CloudURL    string    `json:"cloudUrl"`
	OriginalURL string    `json:"originalUrl,omitempty"`
	FileName    string    `json:"fileName"`
	Source      string    `json:"source"`
	StorageKey  string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}
