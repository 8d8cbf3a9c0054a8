package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/services"
)

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", common.ErrorValidation, r.PathValue("id"))
	}
	return id, nil
}

func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeValid(r, a.schemas.createUser, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	created, err := a.users.Create(r.Context(), services.NewUser{
		Login:      req.Login,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		SecondName: req.SecondName,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createUserResponse{
		userResponse:   toUserResponse(created.User),
		tokensResponse: toTokensResponse(created.TokenPair),
	})
}

func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := a.users.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	u, err := a.users.Get(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *API) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeValid(r, a.schemas.updateUser, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	u, err := a.users.Update(r.Context(), id, req.toUpdate())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *API) IssueTokens(w http.ResponseWriter, r *http.Request) {
	var req tokensRequest
	if err := decodeValid(r, a.schemas.tokens, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	pair, err := a.auth.IssueTokens(r.Context(), req.Login, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokensResponse(*pair))
}

func (a *API) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeValid(r, a.schemas.refresh, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	tok, err := a.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenResponse(tok))
}
