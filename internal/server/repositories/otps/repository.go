// Package otps persists one-time login codes, at most one per user.
package otps

import (
	"context"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
)

type Repository interface {
	// FindByOwner returns the stored code of userID or common.ErrorNotFound.
	// Expired rows are returned as they are; callers decide.
	FindByOwner(ctx context.Context, userID string) (*models.OneTimeCode, error)
	// UpsertByOwner atomically replaces the code of code.UserID.
	UpsertByOwner(ctx context.Context, code *models.OneTimeCode) error
	// DeleteByOwner removes the code of userID, if any.
	DeleteByOwner(ctx context.Context, userID string) error
	// ConsumeByOwner deletes the code of userID only if it still has
	// codeHash and is unexpired at now. Otherwise common.ErrorNotFound.
	ConsumeByOwner(ctx context.Context, userID, codeHash string, now time.Time) error
	// DeleteExpiredByOwner removes the code of userID only if it is expired
	// at now, so a code issued concurrently is never lost.
	DeleteExpiredByOwner(ctx context.Context, userID string, now time.Time) error
	// DeleteExpired removes every code expired at now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
