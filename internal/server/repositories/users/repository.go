// Package users persists accounts. Emails are stored normalized (see
// models.NormalizeEmail) and the reset token digest and its expiry are only
// ever written or cleared together.
package users

import (
	"context"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills ID and timestamps. A duplicate email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	// ConsumeResetToken sets a new password hash on the user holding an
	// unexpired tokenHash and clears the token in the same statement. It
	// returns the user id or common.ErrorNotFound.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (string, error)
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
	DeleteByID(ctx context.Context, id string) error
}
