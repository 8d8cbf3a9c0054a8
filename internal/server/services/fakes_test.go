package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/dbx"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	primarytokensrepo "github.com/dmitrijs2005/accounts/internal/server/repositories/primarytokens"
	usersrepo "github.com/dmitrijs2005/accounts/internal/server/repositories/users"
	"github.com/dmitrijs2005/accounts/internal/server/session"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	s, err := auth.NewTokenService("k", "HS256", 15*time.Minute, 7*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}
	return s
}

func newHasher() *auth.BcryptHasher {
	return auth.NewBcryptHasher(bcrypt.MinCost)
}

// --- fake repositories ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	rows   map[int64]models.User
	nextID int64

	findErr error
	saveErr error
}

func newFakeUsersRepo(users ...models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{rows: map[int64]models.User{}}
	for _, u := range users {
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
		f.rows[u.ID] = u
	}
	return f
}

func (f *fakeUsersRepo) sorted() []*models.User {
	out := make([]*models.User, 0, len(f.rows))
	for _, u := range f.rows {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (f *fakeUsersRepo) GetAll(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.sorted(), nil
}

func (f *fakeUsersRepo) Save(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	now := time.Now()
	if u.ID == 0 {
		f.nextID++
		u.ID = f.nextID
		u.CreatedAt = now
	} else if _, ok := f.rows[u.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	u.UpdatedAt = now
	f.rows[u.ID] = *u
	return u, nil
}

func (f *fakeUsersRepo) SaveAll(ctx context.Context, users []*models.User) ([]*models.User, error) {
	for _, u := range users {
		if _, err := f.Save(ctx, u); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (f *fakeUsersRepo) DeleteByID(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeUsersRepo) DeleteAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.rows))
	f.rows = map[int64]models.User{}
	return n, nil
}

func (f *fakeUsersRepo) FindByLoginAndPassword(ctx context.Context, login, hashed string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.sorted() {
		if u.Login == login && u.HashedPassword == hashed {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) FindByLogin(ctx context.Context, login string) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]*models.User, 0)
	for _, u := range f.sorted() {
		if u.Login == login {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsersRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return f.GetByID(ctx, id)
}

type fakePrimaryTokensRepo struct {
	mu      sync.Mutex
	rows    []models.PrimaryToken
	findErr error
	saveErr error
}

func (f *fakePrimaryTokensRepo) GetByID(ctx context.Context, id int64) (*models.PrimaryToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakePrimaryTokensRepo) GetAll(ctx context.Context) ([]*models.PrimaryToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]*models.PrimaryToken, 0, len(f.rows))
	for _, p := range f.rows {
		p := p
		out = append(out, &p)
	}
	return out, nil
}

func (f *fakePrimaryTokensRepo) Save(ctx context.Context, p *models.PrimaryToken) (*models.PrimaryToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	p.ID = int64(len(f.rows) + 1)
	p.CreatedAt = time.Now()
	f.rows = append(f.rows, *p)
	return p, nil
}

func (f *fakePrimaryTokensRepo) SaveAll(ctx context.Context, ps []*models.PrimaryToken) ([]*models.PrimaryToken, error) {
	for _, p := range ps {
		if _, err := f.Save(ctx, p); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

func (f *fakePrimaryTokensRepo) DeleteByID(ctx context.Context, id int64) error {
	return common.ErrorNotFound
}

func (f *fakePrimaryTokensRepo) DeleteAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.rows))
	f.rows = nil
	return n, nil
}

func (f *fakePrimaryTokensRepo) FindByToken(ctx context.Context, token string) (*models.PrimaryToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, p := range f.rows {
		if p.Token == token {
			p := p
			return &p, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakePrimaryTokensRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) PrimaryTokens(db dbx.DBTX) primarytokensrepo.Repository {
	return m.p
}

func newSessions(db *sql.DB, rm *fakeRepoManager) Sessions {
	return session.NewFactory(db, rm)
}

// --- fake token issuer ---

type failingIssuer struct{}

func (failingIssuer) GenerateTokens(int64, map[string]any) (*models.Token, *models.Token, error) {
	return nil, nil, errBoom{}
}

func (failingIssuer) RefreshAccessToken(string, map[string]any) (*models.Token, error) {
	return nil, errBoom{}
}

var nopLog = logging.Nop()
