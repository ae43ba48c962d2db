package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/repository/api"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
)

// TokenCookie is the cookie the backend sets on login.
const TokenCookie = "token"

type API struct {
	client *api.Client
}

type AuthRepository interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*model.User, error)
}

func NewAuthRepository(client *api.Client) AuthRepository {
	return &API{client: client}
}

func (a *API) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	var user model.User
	if err := a.client.Do(ctx, http.MethodPost, "/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login accepts either {token, user} or a bare user object with the token in
// the "token" cookie.
func (a *API) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	resp, err := a.client.Send(ctx, http.MethodPost, "/auth/login", req)
	if err != nil {
		if errors.HasType(err, constant.ErrUnauthorize) {
			return nil, errors.SetCustomError(constant.ErrInvalidCredential)
		}
		return nil, err
	}

	var out model.LoginResponse
	if err := api.Decode(resp, &out); err != nil {
		return nil, err
	}
	if out.User.ID == 0 {
		if err := json.Unmarshal(resp.Body, &out.User); err != nil {
			return nil, errors.SetCustomError(constant.ErrMalformedPayload)
		}
	}
	if out.Token == "" {
		out.Token = resp.Cookie(TokenCookie)
	}
	if out.Token == "" || out.User.ID == 0 {
		return nil, errors.SetCustomError(constant.ErrMalformedPayload)
	}
	return &out, nil
}

func (a *API) Logout(ctx context.Context) error {
	return a.client.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (a *API) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := a.client.Do(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
