package order

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

type OrderRepository interface {
	List(ctx context.Context) ([]model.Order, error)
	Get(ctx context.Context, id uint64) (*model.Order, error)
	Checkout(ctx context.Context) (*model.CheckoutResponse, error)
}

func NewOrderRepository(client *api.Client) OrderRepository {
	return &API{client: client}
}

func (a *API) List(ctx context.Context) ([]model.Order, error) {
	orders := make([]model.Order, 0)
	if err := a.client.Get(ctx, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (a *API) Get(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	if err := a.client.Get(ctx, fmt.Sprintf("/orders/%d", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Checkout turns the server-side cart into a pending order and returns the
// payment token for it.
func (a *API) Checkout(ctx context.Context) (*model.CheckoutResponse, error) {
	var out model.CheckoutResponse
	if err := a.client.Do(ctx, http.MethodPost, "/checkout", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
