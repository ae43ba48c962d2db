package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/repository/api"
)

type API struct {
	client *api.Client
}

type CartRepository interface {
	Get(ctx context.Context) (*model.Cart, error)
	AddItem(ctx context.Context, req *model.AddCartItemRequest) error
	UpdateItem(ctx context.Context, itemID uint64, req *model.UpdateCartItemRequest) error
	RemoveItem(ctx context.Context, itemID uint64) error
}

func NewCartRepository(client *api.Client) CartRepository {
	return &API{client: client}
}

func (a *API) Get(ctx context.Context) (*model.Cart, error) {
	var cart model.Cart
	if err := a.client.Do(ctx, http.MethodGet, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem, UpdateItem and RemoveItem ignore the response body; callers
// refetch the whole cart afterwards.
func (a *API) AddItem(ctx context.Context, req *model.AddCartItemRequest) error {
	return a.client.Do(ctx, http.MethodPost, "/cart/items", req, nil)
}

func (a *API) UpdateItem(ctx context.Context, itemID uint64, req *model.UpdateCartItemRequest) error {
	return a.client.Do(ctx, http.MethodPut, fmt.Sprintf("/cart/items/%d", itemID), req, nil)
}

func (a *API) RemoveItem(ctx context.Context, itemID uint64) error {
	return a.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", itemID), nil, nil)
}
