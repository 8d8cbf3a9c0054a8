package primarytokens

import (
	"context"

	"github.com/dmitrijs2005/accounts/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*models.PrimaryToken, error)
	GetAll(ctx context.Context) ([]*models.PrimaryToken, error)
	Save(ctx context.Context, token *models.PrimaryToken) (*models.PrimaryToken, error)
	SaveAll(ctx context.Context, tokens []*models.PrimaryToken) ([]*models.PrimaryToken, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)

	FindByToken(ctx context.Context, token string) (*models.PrimaryToken, error)
}
