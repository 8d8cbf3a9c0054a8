package httpapi

import (
	"time"

	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/services"
)

type createUserRequest struct {
	Login      string `json:"login" jsonschema:"minLength=3,maxLength=50"`
	Password   string `json:"password" jsonschema:"minLength=6,maxLength=50"`
	FirstName  string `json:"first_name" jsonschema:"minLength=3,maxLength=50"`
	LastName   string `json:"last_name" jsonschema:"minLength=3,maxLength=50"`
	SecondName string `json:"second_name" jsonschema:"minLength=3,maxLength=50"`
}

type updateUserRequest struct {
	Login      *string `json:"login,omitempty" jsonschema:"minLength=3,maxLength=50"`
	FirstName  *string `json:"first_name,omitempty" jsonschema:"minLength=3,maxLength=50"`
	LastName   *string `json:"last_name,omitempty" jsonschema:"minLength=3,maxLength=50"`
	SecondName *string `json:"second_name,omitempty" jsonschema:"minLength=3,maxLength=50"`
}

func (u updateUserRequest) toUpdate() services.UserUpdate {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return services.UserUpdate{
		Login:      deref(u.Login),
		FirstName:  deref(u.FirstName),
		LastName:   deref(u.LastName),
		SecondName: deref(u.SecondName),
	}
}

type tokensRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiredAt time.Time `json:"expired_at"`
}

func toTokenResponse(t *models.Token) tokenResponse {
	return tokenResponse{Token: t.Token, ExpiredAt: t.ExpiredAt.UTC()}
}

type tokensResponse struct {
	AccessToken  tokenResponse `json:"access_token"`
	RefreshToken tokenResponse `json:"refresh_token"`
}

func toTokensResponse(p services.TokenPair) tokensResponse {
	return tokensResponse{
		AccessToken:  toTokenResponse(p.AccessToken),
		RefreshToken: toTokenResponse(p.RefreshToken),
	}
}

type userResponse struct {
	ID         int64  `json:"id"`
	Login      string `json:"login"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	SecondName string `json:"second_name"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Login:      u.Login,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		SecondName: u.SecondName,
	}
}

type createUserResponse struct {
	userResponse
	tokensResponse
}

type errorResponse struct {
	Detail string `json:"detail"`
}
