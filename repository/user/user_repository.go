package user

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/repository/api"
)

type API struct {
	client *api.Client
}

type UserRepository interface {
	Profile(ctx context.Context, username string) (*model.PublicProfile, error)
	Products(ctx context.Context, username string) ([]model.Product, error)
	UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Promote(ctx context.Context, userID uint64, req *model.PromoteRequest) (*model.User, error)
}

func NewUserRepository(client *api.Client) UserRepository {
	return &API{client: client}
}

func (a *API) Profile(ctx context.Context, username string) (*model.PublicProfile, error) {
	var p model.PublicProfile
	if err := a.client.Get(ctx, "/users/"+url.PathEscape(username), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *API) Products(ctx context.Context, username string) ([]model.Product, error) {
	items := make([]model.Product, 0)
	if err := a.client.Get(ctx, "/users/"+url.PathEscape(username)+"/products", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *API) UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) (*model.User, error) {
	var u model.User
	if err := a.client.Do(ctx, http.MethodPut, "/me", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *API) List(ctx context.Context) ([]model.User, error) {
	users := make([]model.User, 0)
	if err := a.client.Get(ctx, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *API) Promote(ctx context.Context, userID uint64, req *model.PromoteRequest) (*model.User, error) {
	var u model.User
	if err := a.client.Do(ctx, http.MethodPost, fmt.Sprintf("/admin/promote/%d", userID), req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
