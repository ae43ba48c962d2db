package order

import (
	"context"

	"github.com/akhdanrgya/teluhub-client/application/session"
	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	orderrepo "github.com/akhdanrgya/teluhub-client/repository/order"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	"go.uber.org/zap"
)

type OrderApp interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, orderID uint64) (*model.Order, error)
	Checkout(ctx context.Context) (*model.CheckoutResponse, error)
}

// Cart is the part of the session store checkout needs.
type Cart interface {
	Cart() *model.Cart
	FetchCart(ctx context.Context) error
}

// EventPublisher receives successful checkouts. Optional.
type EventPublisher interface {
	PublishCheckout(ctx context.Context, userID uint64, resp model.CheckoutResponse) error
}

type orderAppImpl struct {
	session   session.Session
	cart      Cart
	orderRepo orderrepo.OrderRepository
	publisher EventPublisher
}

func NewOrderApp(sess session.Session, cart Cart, orderRepo orderrepo.OrderRepository, publisher EventPublisher) OrderApp {
	return &orderAppImpl{session: sess, cart: cart, orderRepo: orderRepo, publisher: publisher}
}

func (s *orderAppImpl) ListOrders(ctx context.Context) ([]model.Order, error) {
	if _, err := session.RequireRole(s.session); err != nil {
		return nil, err
	}

	authCtx := s.session.WithToken(ctx)
	orders, err := s.orderRepo.List(authCtx)
	if err != nil {
		logger.Error("[ListOrders] error orderRepo.List", zap.String("error", err.Error()))
		return nil, s.session.ExpireOnUnauthorized(authCtx, err)
	}
	return orders, nil
}

func (s *orderAppImpl) GetOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	if orderID == 0 {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}
	if _, err := session.RequireRole(s.session); err != nil {
		return nil, err
	}

	authCtx := s.session.WithToken(ctx)
	order, err := s.orderRepo.Get(authCtx, orderID)
	if err != nil {
		logger.Error("[GetOrder] error orderRepo.Get", zap.Uint64("order_id", orderID), zap.String("error", err.Error()))
		return nil, s.session.ExpireOnUnauthorized(authCtx, err)
	}
	return order, nil
}

// Checkout turns the server cart into a pending order. The payment itself
// happens outside the client with the returned snap token.
func (s *orderAppImpl) Checkout(ctx context.Context) (*model.CheckoutResponse, error) {
	user, err := session.RequireRole(s.session)
	if err != nil {
		return nil, err
	}
	if cart := s.cart.Cart(); cart == nil || len(cart.CartItems) == 0 {
		return nil, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, "cart is empty")
	}

	authCtx := s.session.WithToken(ctx)
	resp, err := s.orderRepo.Checkout(authCtx)
	if err != nil {
		logger.Error("[Checkout] error orderRepo.Checkout", zap.String("error", err.Error()))
		return nil, s.session.ExpireOnUnauthorized(authCtx, err)
	}
	logger.Info("[Checkout] order created", zap.Uint64("order_id", resp.OrderID), zap.Uint64("user_id", user.ID))

	// the backend empties the cart on checkout
	if err := s.cart.FetchCart(ctx); err != nil {
		logger.Warn("[Checkout] error FetchCart", zap.String("error", err.Error()))
	}

	if s.publisher != nil {
		if err := s.publisher.PublishCheckout(ctx, user.ID, *resp); err != nil {
			logger.Warn("[Checkout] error publisher.PublishCheckout", zap.String("error", err.Error()))
		}
	}
	return resp, nil
}
