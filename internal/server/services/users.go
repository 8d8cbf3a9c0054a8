package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/session"
)

// NewUser is a registration request. Field lengths are validated upstream.
type NewUser struct {
	Login      string
	Password   string
	FirstName  string
	LastName   string
	SecondName string
}

// UserUpdate carries the fields to overwrite; empty strings are left alone.
type UserUpdate struct {
	Login      string
	FirstName  string
	LastName   string
	SecondName string
}

func (u UserUpdate) empty() bool {
	return u.Login == "" && u.FirstName == "" && u.LastName == "" && u.SecondName == ""
}

// CreatedUser is the stored user with its first token pair.
type CreatedUser struct {
	User *models.User
	TokenPair
}

type UserService struct {
	sessions Sessions
	hasher   PasswordHasher
	tokens   TokenIssuer
	log      logging.Logger
}

func NewUserService(sessions Sessions, hasher PasswordHasher, tokens TokenIssuer, log logging.Logger) *UserService {
	return &UserService{
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		log:      log.With("service", "users"),
	}
}

// Create registers a user and issues its tokens. The login check, the insert
// and token issuance run in one transaction.
func (s *UserService) Create(ctx context.Context, req NewUser) (*CreatedUser, error) {
	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	var created *CreatedUser

	err = s.sessions.New().WithCommit(ctx, func(ctx context.Context, sc session.Scope) error {
		existing, err := sc.Users().FindByLogin(ctx, req.Login)
		if err != nil {
			return fmt.Errorf("error searching user: %w", err)
		}
		if len(existing) > 0 {
			return common.ErrorAlreadyExists
		}

		user, err := sc.Users().Save(ctx, &models.User{
			Login:          req.Login,
			HashedPassword: hashed,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			SecondName:     req.SecondName,
		})
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}

		access, refresh, err := s.tokens.GenerateTokens(user.ID, nil)
		if err != nil {
			return fmt.Errorf("error generating tokens: %w", err)
		}

		created = &CreatedUser{User: user, TokenPair: TokenPair{AccessToken: access, RefreshToken: refresh}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user created", "user_id", created.User.ID)
	return created, nil
}

// Update overwrites the non-empty fields of u on user id.
func (s *UserService) Update(ctx context.Context, id int64, u UserUpdate) (*models.User, error) {
	if u.empty() {
		return nil, common.ErrorEmptyUpdate
	}

	var updated *models.User

	err := s.sessions.New().WithCommit(ctx, func(ctx context.Context, sc session.Scope) error {
		user, err := sc.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if u.Login != "" {
			user.Login = u.Login
		}
		if u.FirstName != "" {
			user.FirstName = u.FirstName
		}
		if u.LastName != "" {
			user.LastName = u.LastName
		}
		if u.SecondName != "" {
			user.SecondName = u.SecondName
		}

		updated, err = sc.Users().Save(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user updated", "user_id", id)
	return updated, nil
}

// Get returns one user or common.ErrorNotFound.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := s.sessions.New().WithoutCommit(ctx, func(ctx context.Context, sc session.Scope) error {
		var err error
		user, err = sc.Users().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List returns all users ordered by id.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	var list []*models.User
	err := s.sessions.New().WithoutCommit(ctx, func(ctx context.Context, sc session.Scope) error {
		var err error
		list, err = sc.Users().GetAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
