// Package media persists records of files a user uploaded or downloaded.
package media

import (
	"context"

	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.Media) (*models.Media, error)
	// ListByOwner returns the newest limit records of userID, newest first.
	ListByOwner(ctx context.Context, userID string, limit int) ([]*models.Media, error)
	DeleteByOwner(ctx context.Context, userID string) (int64, error)
}
