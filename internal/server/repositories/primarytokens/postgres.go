package primarytokens

import (
	"context"

	"github.com/dmitrijs2005/accounts/internal/dbx"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/crud"
)

var mapper = crud.Mapper[models.PrimaryToken]{
	Table:     "primary_tokens",
	Columns:   []string{"token", "name"},
	Generated: []string{"created_at"},
	ID:        func(p *models.PrimaryToken) *int64 { return &p.ID },
	Values:    func(p *models.PrimaryToken) []any { return []any{p.Token, p.Name} },
	Fields: func(p *models.PrimaryToken) []any {
		return []any{&p.ID, &p.Token, &p.Name, &p.CreatedAt}
	},
}

type PostgresRepository struct {
	*crud.Base[models.PrimaryToken]
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{Base: crud.New(db, mapper)}
}

// FindByToken returns the token row or common.ErrorNotFound.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.PrimaryToken, error) {
	return r.SelectOne(ctx, "WHERE token = $1", token)
}
