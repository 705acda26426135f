package repomanager

import (
	"context"
	"database/sql"

	"github.com/Silas-Hakuzwimana/streamforge/internal/dbx"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/media"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/memory"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/otps"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/users"
)

// InMemoryRepositoryManager serves every repository from one memory.Store.
// WithTx runs fn directly: there is no rollback.
type InMemoryRepositoryManager struct {
	store *memory.Store
}

func NewInMemoryRepositoryManager(store *memory.Store) *InMemoryRepositoryManager {
	if store == nil {
		store = memory.NewStore()
	}
	return &InMemoryRepositoryManager{store: store}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.store.Users() }

func (m *InMemoryRepositoryManager) OTPs(dbx.DBTX) otps.Repository { return m.store.OTPs() }

func (m *InMemoryRepositoryManager) Media(dbx.DBTX) media.Repository { return m.store.Media() }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, _ *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}
