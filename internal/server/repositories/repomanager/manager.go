package repomanager

import (
	"context"
	"database/sql"

	"github.com/Silas-Hakuzwimana/streamforge/internal/dbx"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/media"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/otps"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or transaction.
// Backends that have no SQL connection ignore the db arguments.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	OTPs(db dbx.DBTX) otps.Repository
	Media(db dbx.DBTX) media.Repository
	// WithTx runs fn inside a transaction where the backend has one.
	WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error
}
