package otps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/dbx"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByOwner(ctx context.Context, userID string) (*models.OneTimeCode, error) {
	query :=
		`SELECT user_id, code_hash, expires_at, created_at FROM one_time_codes
		 WHERE user_id = $1`

	c := &models.OneTimeCode{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&c.UserID, &c.CodeHash, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) UpsertByOwner(ctx context.Context, code *models.OneTimeCode) error {
	query :=
		`INSERT INTO one_time_codes (user_id, code_hash, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at, created_at = now()`

	if _, err := r.db.ExecContext(ctx, query, code.UserID, code.CodeHash, code.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM one_time_codes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ConsumeByOwner(ctx context.Context, userID, codeHash string, now time.Time) error {
	query :=
		`DELETE FROM one_time_codes
		 WHERE user_id = $1 AND code_hash = $2 AND expires_at > $3`

	res, err := r.db.ExecContext(ctx, query, userID, codeHash, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteExpiredByOwner(ctx context.Context, userID string, now time.Time) error {
	query := `DELETE FROM one_time_codes WHERE user_id = $1 AND expires_at <= $2`
	if _, err := r.db.ExecContext(ctx, query, userID, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM one_time_codes WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
