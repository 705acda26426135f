package media

import (
	"context"
	"fmt"

	"github.com/Silas-Hakuzwimana/streamforge/internal/dbx"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Media) (*models.Media, error) {
	query :=
		`INSERT INTO media (user_id, type, cloud_url, original_url, file_name, source, storage_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		m.UserID, m.Type, m.CloudURL, m.OriginalURL, m.FileName, m.Source, m.StorageKey).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string, limit int) ([]*models.Media, error) {
	query :=
		`SELECT id, user_id, type, cloud_url, original_url, file_name, source, storage_key, created_at
		 FROM media
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Media, 0)
	for rows.Next() {
		m := &models.Media{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.Type, &m.CloudURL, &m.OriginalURL, &m.FileName, &m.Source, &m.StorageKey, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
