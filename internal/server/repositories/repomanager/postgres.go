// Package repomanager provides RepositoryManager implementations: PostgreSQL
// (optionally with one-time codes in Redis) and in-memory. The Postgres
// manager also owns schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Silas-Hakuzwimana/streamforge/internal/dbx"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/migrations"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/media"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/otps"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/redisotp"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct {
	redisOTPs *redisotp.Store
}

type Option func(*PostgresRepositoryManager)

// WithRedisOTPs stores one-time codes in Redis instead of the one_time_codes
// table.
func WithRedisOTPs(client redis.UniversalClient) Option {
	return func(m *PostgresRepositoryManager) {
		m.redisOTPs = redisotp.New(client)
	}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// OTPs returns the Redis store when configured, otherwise an
// otps.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) OTPs(db dbx.DBTX) otps.Repository {
	if m.redisOTPs != nil {
		return m.redisOTPs
	}
	return otps.NewPostgresRepository(db)
}

// Media returns a media.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Media(db dbx.DBTX) media.Repository {
	return media.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, db, nil, fn)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(opts ...Option) *PostgresRepositoryManager {
	m := &PostgresRepositoryManager{}
	for _, o := range opts {
		o(m)
	}
	return m
}
