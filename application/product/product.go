package product

import (
	"context"
	"sort"
	"strings"

	"github.com/akhdanrgya/teluhub-client/application/session"
	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	productRepo "github.com/akhdanrgya/teluhub-client/repository/product"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	validatorx "github.com/akhdanrgya/teluhub-client/utils/validator"
	"go.uber.org/zap"
)

type ProductApp interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, slug string) (*model.Product, error)
	GetProductByID(ctx context.Context, id uint64) (*model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)
	MyProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, req *model.ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint64, req *model.ProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint64) error
}

type productAppImpl struct {
	session     session.Session
	productRepo productRepo.ProductRepository
}

func NewProductApp(sess session.Session, productRepo productRepo.ProductRepository) ProductApp {
	return &productAppImpl{session: sess, productRepo: productRepo}
}

var sellerRoles = []constant.Role{constant.RoleSeller, constant.RoleAdmin}

func (s *productAppImpl) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	items, err := s.productRepo.List(ctx)
	if err != nil {
		logger.Error("[ListProducts] error productRepo.List", zap.String("error", err.Error()))
		return nil, err
	}
	return FilterProducts(items, filter), nil
}

func (s *productAppImpl) GetProduct(ctx context.Context, slug string) (*model.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, "slug is required")
	}

	result, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		logger.Error("[GetProduct] error productRepo.GetBySlug", zap.String("slug", slug), zap.String("error", err.Error()))
		return nil, err
	}
	return result, nil
}

func (s *productAppImpl) GetProductByID(ctx context.Context, id uint64) (*model.Product, error) {
	if id == 0 {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}

	result, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		logger.Error("[GetProductByID] error productRepo.GetByID", zap.Uint64("id", id), zap.String("error", err.Error()))
		return nil, err
	}
	return result, nil
}

func (s *productAppImpl) Categories(ctx context.Context) ([]model.Category, error) {
	result, err := s.productRepo.Categories(ctx)
	if err != nil {
		logger.Error("[Categories] error productRepo.Categories", zap.String("error", err.Error()))
		return nil, err
	}
	return result, nil
}

func (s *productAppImpl) MyProducts(ctx context.Context) ([]model.Product, error) {
	if _, err := session.RequireRole(s.session, sellerRoles...); err != nil {
		return nil, err
	}

	authCtx := s.session.WithToken(ctx)
	result, err := s.productRepo.Mine(authCtx)
	if err != nil {
		logger.Error("[MyProducts] error productRepo.Mine", zap.String("error", err.Error()))
		return nil, s.session.ExpireOnUnauthorized(authCtx, err)
	}
	return result, nil
}

func (s *productAppImpl) CreateProduct(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if _, err := session.RequireRole(s.session, sellerRoles...); err != nil {
		return nil, err
	}
	if err := validatorx.ValidateStruct(req); err != nil {
		return nil, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, validatorx.Describe(err))
	}

	authCtx := s.session.WithToken(ctx)
	result, err := s.productRepo.Create(authCtx, req)
	if err != nil {
		logger.Error("[CreateProduct] error productRepo.Create", zap.String("error", err.Error()))
		return nil, s.session.ExpireOnUnauthorized(authCtx, err)
	}
	return result, nil
}

func (s *productAppImpl) UpdateProduct(ctx context.Context, id uint64, req *model.ProductRequest) (*model.Product, error) {
	if _, err := session.RequireRole(s.session, sellerRoles...); err != nil {
		return nil, err
	}
	if err := validatorx.ValidateStruct(req); err != nil {
		return nil, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, validatorx.Describe(err))
	}

	authCtx := s.session.WithToken(ctx)
	result, err := s.productRepo.Update(authCtx, id, req)
	if err != nil {
		logger.Error("[UpdateProduct] error productRepo.Update", zap.Uint64("id", id), zap.String("error", err.Error()))
		return nil, s.session.ExpireOnUnauthorized(authCtx, err)
	}
	return result, nil
}

func (s *productAppImpl) DeleteProduct(ctx context.Context, id uint64) error {
	if _, err := session.RequireRole(s.session, sellerRoles...); err != nil {
		return err
	}

	authCtx := s.session.WithToken(ctx)
	if err := s.productRepo.Delete(authCtx, id); err != nil {
		logger.Error("[DeleteProduct] error productRepo.Delete", zap.Uint64("id", id), zap.String("error", err.Error()))
		return s.session.ExpireOnUnauthorized(authCtx, err)
	}
	return nil
}

// FilterProducts applies the shop filter: case-insensitive search in name and
// description, exact category slug, then the requested ordering. items is not
// modified.
func FilterProducts(items []model.Product, filter model.ProductFilter) []model.Product {
	query := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]model.Product, 0, len(items))
	for _, p := range items {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		if filter.Category != "" && (p.Category == nil || p.Category.Slug != filter.Category) {
			continue
		}
		out = append(out, p)
	}

	switch filter.Sort {
	case model.SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case model.SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case model.SortNameAZ:
		sort.SliceStable(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	default:
		// newest first; ids grow with creation
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}
	return out
}
