package product

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/repository/api"
)

type API struct {
	client *api.Client
}

type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	GetByID(ctx context.Context, id uint64) (*model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Mine(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, id uint64, req *model.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id uint64) error
}

func NewProductRepository(client *api.Client) ProductRepository {
	return &API{client: client}
}

type categoryEnvelope struct {
	Status string           `json:"status"`
	Data   []model.Category `json:"data"`
}

func (a *API) List(ctx context.Context) ([]model.Product, error) {
	items := make([]model.Product, 0)
	if err := a.client.Get(ctx, "/products", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *API) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var p model.Product
	if err := a.client.Get(ctx, "/products/"+url.PathEscape(slug), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID goes through the same route as GetBySlug; the backend resolves
// numeric parameters as ids.
func (a *API) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	var p model.Product
	if err := a.client.Get(ctx, "/products/"+strconv.FormatUint(id, 10), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *API) Categories(ctx context.Context) ([]model.Category, error) {
	var env categoryEnvelope
	if err := a.client.Get(ctx, "/categories", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []model.Category{}, nil
	}
	return env.Data, nil
}

func (a *API) Mine(ctx context.Context) ([]model.Product, error) {
	items := make([]model.Product, 0)
	if err := a.client.Get(ctx, "/me/products", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *API) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	var p model.Product
	if err := a.client.Do(ctx, http.MethodPost, "/products", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *API) Update(ctx context.Context, id uint64, req *model.ProductRequest) (*model.Product, error) {
	var p model.Product
	if err := a.client.Do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *API) Delete(ctx context.Context, id uint64) error {
	return a.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}
