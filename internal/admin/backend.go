package admin

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/memory"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accounts/internal/server/services"
	"github.com/dmitrijs2005/accounts/internal/server/session"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Backend is the storage the commands operate on.
type Backend struct {
	Sessions services.Sessions
	Migrate  func(ctx context.Context) error
	Close    func() error
}

// Opener builds a Backend for cfg. Tests substitute an in-memory one.
type Opener func(ctx context.Context, cfg *config.Config) (*Backend, error)

// OpenBackend connects to the database named by cfg.DatabaseDSN.
func OpenBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg.DatabaseDSN == memory.DSN {
		return MemoryBackend(memory.NewStore()), nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db connect error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	return &Backend{
		Sessions: session.NewFactory(db, repos),
		Migrate:  func(ctx context.Context) error { return repos.RunMigrations(ctx, db) },
		Close:    db.Close,
	}, nil
}

// MemoryBackend wraps store; Migrate is a no-op.
func MemoryBackend(store *memory.Store) *Backend {
	return &Backend{
		Sessions: memory.NewSessions(store),
		Migrate:  func(context.Context) error { return nil },
		Close:    func() error { return nil },
	}
}
