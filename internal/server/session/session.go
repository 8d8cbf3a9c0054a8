// Package session scopes a unit of work around repository calls.
//
// A Manager hands fn a Scope whose repositories all share one database
// handle: a transaction for WithCommit, a dedicated connection for
// WithoutCommit. Only one scope may be open per Manager at a time; callers
// create a fresh Manager per request through a Factory.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/dbx"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/primarytokens"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/users"
)

// DB is what a Manager needs from the pool. *sql.DB satisfies it.
type DB interface {
	dbx.Beginner
	dbx.Connector
}

// Scope exposes repositories bound to the active session.
type Scope interface {
	Users() users.Repository
	PrimaryTokens() primarytokens.Repository
}

// UnitOfWork runs fn inside a session.
//
// WithCommit commits when fn returns nil and rolls back when it returns an
// error or panics; the original error (or panic) is passed through.
// WithoutCommit issues neither; it only releases the connection.
type UnitOfWork interface {
	WithCommit(ctx context.Context, fn func(ctx context.Context, s Scope) error) error
	WithoutCommit(ctx context.Context, fn func(ctx context.Context, s Scope) error) error
}

type scope struct {
	db    dbx.DBTX
	repos repomanager.RepositoryManager
}

func (s *scope) Users() users.Repository {
	return s.repos.Users(s.db)
}

func (s *scope) PrimaryTokens() primarytokens.Repository {
	return s.repos.PrimaryTokens(s.db)
}

// Manager is a UnitOfWork over a database pool.
type Manager struct {
	db    DB
	repos repomanager.RepositoryManager

	mu     sync.Mutex
	active bool
}

func NewManager(db DB, repos repomanager.RepositoryManager) *Manager {
	return &Manager{db: db, repos: repos}
}

func (m *Manager) WithCommit(ctx context.Context, fn func(ctx context.Context, s Scope) error) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &scope{db: tx, repos: m.repos})
	})
}

func (m *Manager) WithoutCommit(ctx context.Context, fn func(ctx context.Context, s Scope) error) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	return dbx.WithConn(ctx, m.db, func(ctx context.Context, conn dbx.DBTX) error {
		return fn(ctx, &scope{db: conn, repos: m.repos})
	})
}

func (m *Manager) acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return common.ErrorSessionActive
	}
	m.active = true
	return nil
}

func (m *Manager) release() {
	m.mu.Lock()
	m.active = false
	m.mu.Unlock()
}

// Factory creates one Manager per call.
type Factory struct {
	db    DB
	repos repomanager.RepositoryManager
}

func NewFactory(db DB, repos repomanager.RepositoryManager) *Factory {
	return &Factory{db: db, repos: repos}
}

func (f *Factory) New() UnitOfWork {
	return NewManager(f.db, f.repos)
}
