package users

import (
	"context"

	"github.com/dmitrijs2005/accounts/internal/dbx"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/crud"
)

var mapper = crud.Mapper[models.User]{
	Table:     "users",
	Columns:   []string{"login", "hashed_password", "first_name", "last_name", "second_name"},
	Generated: []string{"created_at", "updated_at"},
	OnUpdate:  []string{"updated_at = now()"},
	ID:        func(u *models.User) *int64 { return &u.ID },
	Values: func(u *models.User) []any {
		return []any{u.Login, u.HashedPassword, u.FirstName, u.LastName, u.SecondName}
	},
	Fields: func(u *models.User) []any {
		return []any{&u.ID, &u.Login, &u.HashedPassword, &u.FirstName, &u.LastName, &u.SecondName, &u.CreatedAt, &u.UpdatedAt}
	},
}

type PostgresRepository struct {
	*crud.Base[models.User]
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{Base: crud.New(db, mapper)}
}

// FindByLoginAndPassword matches the stored digest exactly. Salted digests
// differ per hash, so credential checks go through FindByLogin instead.
func (r *PostgresRepository) FindByLoginAndPassword(ctx context.Context, login, hashedPassword string) (*models.User, error) {
	return r.SelectOne(ctx, "WHERE login = $1 AND hashed_password = $2", login, hashedPassword)
}

func (r *PostgresRepository) FindByLogin(ctx context.Context, login string) ([]*models.User, error) {
	return r.Select(ctx, "WHERE login = $1 ORDER BY id", login)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.GetByID(ctx, id)
}
