package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/cryptox"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/repomanager"
)

const (
	// DefaultResetTTL is how long a password reset link stays valid.
	DefaultResetTTL = time.Hour

	resetTokenBytes = 32
)

// ResetTokenManager issues single-use password reset tokens. The user row
// keeps only the token digest and its expiry.
type ResetTokenManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ttl         time.Duration
	now         func() time.Time
	hasher      *cryptox.Hasher
}

func NewResetTokenManager(db *sql.DB, rm repomanager.RepositoryManager, ttl time.Duration, opts ...Option) *ResetTokenManager {
	o := buildOptions(opts)
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	return &ResetTokenManager{
		db:          db,
		repomanager: rm,
		ttl:         ttl,
		now:         o.now,
		hasher:      o.hasher,
	}
}

// Issue stores a new token for userID, replacing any earlier one, and
// returns the plaintext.
func (m *ResetTokenManager) Issue(ctx context.Context, userID string) (string, error) {
	token, err := cryptox.RandomSecret(resetTokenBytes)
	if err != nil {
		return "", common.Internal(err)
	}

	err = m.repomanager.Users(m.db).SetResetToken(ctx, userID, cryptox.Digest(token), m.now().Add(m.ttl))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrUserNotFound
		}
		return "", storageErr(err)
	}
	return token, nil
}

// Consume sets newPassword on the account holding an unexpired token and
// clears the token in one step. Wrong and expired tokens are not told apart.
func (m *ResetTokenManager) Consume(ctx context.Context, token, newPassword string) (string, error) {
	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		return "", common.Internal(err)
	}

	userID, err := m.repomanager.Users(m.db).ConsumeResetToken(ctx, cryptox.Digest(token), hash, m.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrResetInvalidOrExpired
		}
		return "", storageErr(err)
	}
	return userID, nil
}

// Revoke clears any pending token of userID.
func (m *ResetTokenManager) Revoke(ctx context.Context, userID string) error {
	if err := m.repomanager.Users(m.db).ClearResetToken(ctx, userID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return storageErr(err)
	}
	return nil
}

// SweepExpired clears every expired token pair.
func (m *ResetTokenManager) SweepExpired(ctx context.Context) (int64, error) {
	return m.repomanager.Users(m.db).ClearExpiredResetTokens(ctx, m.now())
}
