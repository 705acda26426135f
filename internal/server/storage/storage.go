// Package storage keeps uploaded media and profile pictures in an object
// store and hands out time-limited download links.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PresignTTL is how long history download links stay valid.
const PresignTTL = 15 * time.Minute

// Store is an object store for user uploads.
type Store interface {
	// Put stores body under key and returns the object's permanent URL.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// PresignGet returns a download URL for key valid for ttl.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Key builds the storage key uploads/<user>/<yyyy>/<mm>/<uuid>-<name>.
func Key(userID, fileName string, now time.Time) string {
	return fmt.Sprintf("uploads/%s/%04d/%02d/%s-%s",
		userID, now.Year(), int(now.Month()), uuid.NewString(), SanitizeName(fileName))
}

// SanitizeName strips directories and replaces characters that are awkward
// in object keys and URLs.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
