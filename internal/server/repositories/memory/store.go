// Package memory is an in-process store with the same repository and unit
// of work contracts as the PostgreSQL implementation. It backs the
// "memory://" DSN for local runs and the HTTP tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/primarytokens"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/users"
)

// DSN selects the in-memory store.
const DSN = "memory://"

type state struct {
	users       map[int64]models.User
	nextUserID  int64
	tokens      map[int64]models.PrimaryToken
	nextTokenID int64
}

func (s state) clone() state {
	c := state{
		users:       make(map[int64]models.User, len(s.users)),
		nextUserID:  s.nextUserID,
		tokens:      make(map[int64]models.PrimaryToken, len(s.tokens)),
		nextTokenID: s.nextTokenID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	return c
}

// Store holds users and primary tokens. Login and token values are unique.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	data  state
	clock func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: state{
			users:  map[int64]models.User{},
			tokens: map[int64]models.PrimaryToken{},
		},
		clock: time.Now,
	}
}

func (s *Store) snapshot() state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.clone()
}

func (s *Store) restore(st state) {
	s.mu.Lock()
	s.data = st
	s.mu.Unlock()
}

// Users returns a users.Repository over the store.
func (s *Store) Users() users.Repository {
	return &usersRepo{s: s}
}

// PrimaryTokens returns a primarytokens.Repository over the store.
func (s *Store) PrimaryTokens() primarytokens.Repository {
	return &tokensRepo{s: s}
}

func sortedUsers(m map[int64]models.User, keep func(models.User) bool) []*models.User {
	out := make([]*models.User, 0)
	for _, u := range m {
		if keep(u) {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type usersRepo struct {
	s *Store
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *usersRepo) GetAll(ctx context.Context) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedUsers(r.s.data.users, func(models.User) bool { return true }), nil
}

func (r *usersRepo) Save(ctx context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, other := range r.s.data.users {
		if id != u.ID && other.Login == u.Login {
			return nil, fmt.Errorf("%w: users_login_key", common.ErrorAlreadyExists)
		}
	}

	now := r.s.clock()
	if u.ID == 0 {
		r.s.data.nextUserID++
		u.ID = r.s.data.nextUserID
		u.CreatedAt = now
	} else {
		prev, ok := r.s.data.users[u.ID]
		if !ok {
			return nil, common.ErrorNotFound
		}
		u.CreatedAt = prev.CreatedAt
	}
	u.UpdatedAt = now
	r.s.data.users[u.ID] = *u
	return u, nil
}

func (r *usersRepo) SaveAll(ctx context.Context, list []*models.User) ([]*models.User, error) {
	for _, u := range list {
		if _, err := r.Save(ctx, u); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *usersRepo) DeleteByID(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.data.users, id)
	return nil
}

func (r *usersRepo) DeleteAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.data.users))
	r.s.data.users = map[int64]models.User{}
	return n, nil
}

func (r *usersRepo) FindByLoginAndPassword(ctx context.Context, login, hashedPassword string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := sortedUsers(r.s.data.users, func(u models.User) bool {
		return u.Login == login && u.HashedPassword == hashedPassword
	})
	if len(found) == 0 {
		return nil, common.ErrorNotFound
	}
	return found[0], nil
}

func (r *usersRepo) FindByLogin(ctx context.Context, login string) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedUsers(r.s.data.users, func(u models.User) bool { return u.Login == login }), nil
}

func (r *usersRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.GetByID(ctx, id)
}

type tokensRepo struct {
	s *Store
}

func (r *tokensRepo) GetByID(ctx context.Context, id int64) (*models.PrimaryToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.tokens[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *tokensRepo) GetAll(ctx context.Context) ([]*models.PrimaryToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.PrimaryToken, 0, len(r.s.data.tokens))
	for _, p := range r.s.data.tokens {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *tokensRepo) Save(ctx context.Context, p *models.PrimaryToken) (*models.PrimaryToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, other := range r.s.data.tokens {
		if id != p.ID && other.Token == p.Token {
			return nil, fmt.Errorf("%w: primary_tokens_token_key", common.ErrorAlreadyExists)
		}
	}

	if p.ID == 0 {
		r.s.data.nextTokenID++
		p.ID = r.s.data.nextTokenID
		p.CreatedAt = r.s.clock()
	} else {
		prev, ok := r.s.data.tokens[p.ID]
		if !ok {
			return nil, common.ErrorNotFound
		}
		p.CreatedAt = prev.CreatedAt
	}
	r.s.data.tokens[p.ID] = *p
	return p, nil
}

func (r *tokensRepo) SaveAll(ctx context.Context, list []*models.PrimaryToken) ([]*models.PrimaryToken, error) {
	for _, p := range list {
		if _, err := r.Save(ctx, p); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *tokensRepo) DeleteByID(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.tokens[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.data.tokens, id)
	return nil
}

func (r *tokensRepo) DeleteAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.data.tokens))
	r.s.data.tokens = map[int64]models.PrimaryToken{}
	return n, nil
}

func (r *tokensRepo) FindByToken(ctx context.Context, token string) (*models.PrimaryToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.data.tokens {
		if p.Token == token {
			p := p
			return &p, nil
		}
	}
	return nil, common.ErrorNotFound
}
