package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/cryptox"
	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/repomanager"
)

// DefaultOTPTTL is how long a login code stays valid.
const DefaultOTPTTL = 10 * time.Minute

// OTPManager issues and verifies the emailed login codes. Only the SHA-256
// digest of a code is stored and each user has at most one live code.
type OTPManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ttl         time.Duration
	now         func() time.Time
	log         logging.Logger
}

func NewOTPManager(db *sql.DB, rm repomanager.RepositoryManager, ttl time.Duration, opts ...Option) *OTPManager {
	o := buildOptions(opts)
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPManager{
		db:          db,
		repomanager: rm,
		ttl:         ttl,
		now:         o.now,
		log:         o.log.With("module", "otp"),
	}
}

// Issue generates a fresh code for userID, replacing any previous one, and
// returns it in plaintext.
func (m *OTPManager) Issue(ctx context.Context, userID string) (string, error) {
	code, err := cryptox.NumericCode(otpDigits)
	if err != nil {
		return "", common.Internal(err)
	}

	now := m.now()
	rec := &models.OneTimeCode{
		UserID:    userID,
		CodeHash:  cryptox.Digest(code),
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.repomanager.OTPs(m.db).UpsertByOwner(ctx, rec); err != nil {
		return "", storageErr(err)
	}
	return code, nil
}

// Verify checks code against the stored record of userID and consumes it on
// success. Expiry is decided here, whether or not the record has been swept.
func (m *OTPManager) Verify(ctx context.Context, userID, code string) error {
	repo := m.repomanager.OTPs(m.db)
	now := m.now()

	rec, err := repo.FindByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrOTPNotFound
		}
		return storageErr(err)
	}

	if rec.Expired(now) {
		// A login may have stored a fresh code since the read.
		if err := repo.DeleteExpiredByOwner(ctx, userID, now); err != nil {
			m.log.Warn(ctx, "failed to delete expired otp", "user_id", userID, "error", err)
		}
		return common.ErrOTPExpired
	}

	if !cryptox.CompareDigest(rec.CodeHash, code) {
		return common.ErrOTPMismatch
	}

	// A concurrent verify or a newer login may have replaced the row since
	// it was read; only one caller gets to delete it.
	if err := repo.ConsumeByOwner(ctx, userID, rec.CodeHash, now); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrOTPNotFound
		}
		return storageErr(err)
	}
	return nil
}

// Discard drops the code of userID, if any.
func (m *OTPManager) Discard(ctx context.Context, userID string) error {
	if err := m.repomanager.OTPs(m.db).DeleteByOwner(ctx, userID); err != nil {
		return storageErr(err)
	}
	return nil
}

// Sweep deletes every expired code.
func (m *OTPManager) Sweep(ctx context.Context) (int64, error) {
	return m.repomanager.OTPs(m.db).DeleteExpired(ctx, m.now())
}
