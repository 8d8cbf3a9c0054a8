package users

import (
	"context"

	"github.com/dmitrijs2005/accounts/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
	SaveAll(ctx context.Context, users []*models.User) ([]*models.User, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)

	FindByLoginAndPassword(ctx context.Context, login, hashedPassword string) (*models.User, error)
	FindByLogin(ctx context.Context, login string) ([]*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}
