package memory

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/session"
)

// UnitOfWork runs scopes against a Store. WithCommit scopes are serialized
// and restore a snapshot when fn fails or panics.
type UnitOfWork struct {
	store *Store

	mu     sync.Mutex
	active bool
}

func (u *UnitOfWork) WithCommit(ctx context.Context, fn func(ctx context.Context, s session.Scope) error) (err error) {
	if err := u.acquire(); err != nil {
		return err
	}
	defer u.release()

	u.store.txMu.Lock()
	defer u.store.txMu.Unlock()

	snap := u.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			u.store.restore(snap)
			panic(p)
		}
		if err != nil {
			u.store.restore(snap)
		}
	}()

	return fn(ctx, u.store)
}

func (u *UnitOfWork) WithoutCommit(ctx context.Context, fn func(ctx context.Context, s session.Scope) error) error {
	if err := u.acquire(); err != nil {
		return err
	}
	defer u.release()

	return fn(ctx, u.store)
}

func (u *UnitOfWork) acquire() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active {
		return common.ErrorSessionActive
	}
	u.active = true
	return nil
}

func (u *UnitOfWork) release() {
	u.mu.Lock()
	u.active = false
	u.mu.Unlock()
}

// Sessions creates one UnitOfWork per call over a shared Store.
type Sessions struct {
	store *Store
}

func NewSessions(store *Store) *Sessions {
	return &Sessions{store: store}
}

func (s *Sessions) New() session.UnitOfWork {
	return &UnitOfWork{store: s.store}
}
