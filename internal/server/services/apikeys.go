package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/session"
)

const primaryTokenBytes = 32

// APIKeyService validates and administers primary tokens.
type APIKeyService struct {
	sessions Sessions
	log      logging.Logger
}

func NewAPIKeyService(sessions Sessions, log logging.Logger) *APIKeyService {
	return &APIKeyService{sessions: sessions, log: log.With("service", "apikeys")}
}

// Check returns common.ErrorForbidden for an empty key and
// common.ErrorUnauthorized for an unknown one.
func (s *APIKeyService) Check(ctx context.Context, key string) error {
	if key == "" {
		return common.ErrorForbidden
	}

	err := s.sessions.New().WithoutCommit(ctx, func(ctx context.Context, sc session.Scope) error {
		_, err := sc.PrimaryTokens().FindByToken(ctx, key)
		return err
	})
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorUnauthorized
	}
	return err
}

// Create stores a new random primary token under name.
func (s *APIKeyService) Create(ctx context.Context, name string) (*models.PrimaryToken, error) {
	token, err := common.MakeRandHexString(primaryTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	var saved *models.PrimaryToken
	err = s.sessions.New().WithCommit(ctx, func(ctx context.Context, sc session.Scope) error {
		var err error
		saved, err = sc.PrimaryTokens().Save(ctx, &models.PrimaryToken{Token: token, Name: name})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "primary token created", "token_id", saved.ID, "name", name)
	return saved, nil
}

// List returns all primary tokens.
func (s *APIKeyService) List(ctx context.Context) ([]*models.PrimaryToken, error) {
	var list []*models.PrimaryToken
	err := s.sessions.New().WithoutCommit(ctx, func(ctx context.Context, sc session.Scope) error {
		var err error
		list, err = sc.PrimaryTokens().GetAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
