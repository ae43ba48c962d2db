// Package session is the client-wide source of truth for the signed-in user,
// the bearer token and the cart snapshot. Only the Store writes them; every
// other component reads through it.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	authRepo "github.com/akhdanrgya/teluhub-client/repository/auth"
	cartRepo "github.com/akhdanrgya/teluhub-client/repository/cart"
	redisRepo "github.com/akhdanrgya/teluhub-client/repository/redis"
	ctxutil "github.com/akhdanrgya/teluhub-client/utils/context"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	"github.com/akhdanrgya/teluhub-client/utils/token"
	validatorx "github.com/akhdanrgya/teluhub-client/utils/validator"
	"go.uber.org/zap"
)

// Session is the read side of the Store handed to other components.
type Session interface {
	User() *model.User
	IsAuthenticated() bool
	WithToken(ctx context.Context) context.Context
	ExpireOnUnauthorized(ctx context.Context, err error) error
	OnAuthChange(fn func(authenticated bool)) (remove func())
}

type Store struct {
	authRepo  authRepo.AuthRepository
	cartRepo  cartRepo.CartRepository
	tokenRepo redisRepo.TokenRepository
	tokenTTL  time.Duration
	now       func() time.Time

	mu        sync.RWMutex
	token     string
	user      *model.User
	cart      *model.Cart
	lastErr   error
	listeners []listener
	nextID    int

	inflight atomic.Int32
}

func NewStore(authRepo authRepo.AuthRepository, cartRepo cartRepo.CartRepository, tokenRepo redisRepo.TokenRepository, tokenTTL time.Duration) *Store {
	return &Store{
		authRepo:  authRepo,
		cartRepo:  cartRepo,
		tokenRepo: tokenRepo,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Init restores a persisted token and, when one exists, the user and cart
// behind it. Failures leave the store anonymous.
func (s *Store) Init(ctx context.Context) {
	tok, err := s.tokenRepo.GetToken(ctx)
	if err != nil {
		logger.Warn("[Init] error tokenRepo.GetToken", zap.String("error", err.Error()))
		return
	}
	if tok == "" {
		return
	}

	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()

	if err := s.RefreshUser(ctx); err != nil {
		logger.Info("[Init] stored token not usable", zap.String("error", err.Error()))
		return
	}
	if err := s.FetchCart(ctx); err != nil {
		logger.Warn("[Init] error FetchCart", zap.String("error", err.Error()))
	}
}

// Login reports whether the credentials were accepted. On failure the session
// is cleared and the reason is kept in LastError.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	req := &model.LoginRequest{Email: email, Password: password}
	if err := validatorx.ValidateStruct(req); err != nil {
		s.failLogin(ctx, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, validatorx.Describe(err)))
		return false
	}

	resp, err := s.authRepo.Login(ctx, req)
	if err != nil {
		logger.Error("[Login] error authRepo.Login", zap.String("error", err.Error()))
		s.failLogin(ctx, err)
		return false
	}

	user := resp.User
	s.mu.Lock()
	was := s.authenticatedLocked()
	switched := was && s.user.ID != user.ID
	s.token = resp.Token
	s.user = &user
	s.cart = nil
	s.lastErr = nil
	s.mu.Unlock()

	if err := s.tokenRepo.SaveToken(ctx, resp.Token, s.tokenTTL); err != nil {
		logger.Warn("[Login] error tokenRepo.SaveToken", zap.String("error", err.Error()))
	}
	s.announce(was, switched)

	logger.Info("[Login] signed in", zap.Uint64("user_id", user.ID), zap.String("role", string(user.Role)))

	if err := s.FetchCart(ctx); err != nil {
		logger.Warn("[Login] error FetchCart", zap.String("error", err.Error()))
	}
	return true
}

func (s *Store) failLogin(ctx context.Context, err error) {
	s.clear(ctx)
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// Register creates an account. It does not sign in.
func (s *Store) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := validatorx.ValidateStruct(req); err != nil {
		return nil, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, validatorx.Describe(err))
	}

	user, err := s.authRepo.Register(ctx, req)
	if err != nil {
		logger.Error("[Register] error authRepo.Register", zap.String("error", err.Error()))
		return nil, err
	}
	return user, nil
}

// Logout tells the backend (best effort) and always drops local state.
func (s *Store) Logout(ctx context.Context) {
	if s.Token() != "" {
		if err := s.authRepo.Logout(s.WithToken(ctx)); err != nil {
			logger.Warn("[Logout] error authRepo.Logout", zap.String("error", err.Error()))
		}
	}
	s.clear(ctx)
}

// RefreshUser re-validates the token against the backend. An expired or
// rejected token clears the session; a transport failure does not.
func (s *Store) RefreshUser(ctx context.Context) error {
	tok := s.Token()
	if tok == "" {
		return errors.SetCustomError(constant.ErrUnauthorize)
	}
	if token.Expired(tok, s.now()) {
		logger.Info("[RefreshUser] token expired locally")
		s.clearToken(ctx, tok)
		return errors.SetCustomError(constant.ErrSessionExpired)
	}

	user, err := s.authRepo.Me(ctxutil.WithToken(ctx, tok))
	if err != nil {
		logger.Error("[RefreshUser] error authRepo.Me", zap.String("error", err.Error()))
		return s.ExpireOnUnauthorized(ctxutil.WithToken(ctx, tok), err)
	}

	s.mu.Lock()
	if s.token != tok {
		// logged out or replaced meanwhile
		s.mu.Unlock()
		return errors.SetCustomError(constant.ErrUnauthorize)
	}
	was := s.authenticatedLocked()
	switched := was && s.user.ID != user.ID
	s.user = user
	s.mu.Unlock()

	s.announce(was, switched)
	return nil
}

// FetchCart replaces the whole cart with the server snapshot.
func (s *Store) FetchCart(ctx context.Context) error {
	tok := s.Token()
	if tok == "" {
		return errors.SetCustomError(constant.ErrUnauthorize)
	}

	cart, err := s.cartRepo.Get(ctxutil.WithToken(ctx, tok))
	if err != nil {
		logger.Error("[FetchCart] error cartRepo.Get", zap.String("error", err.Error()))
		return s.ExpireOnUnauthorized(ctxutil.WithToken(ctx, tok), err)
	}

	s.mu.Lock()
	if s.token == tok {
		s.cart = cart
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) AddToCart(ctx context.Context, productID uint64, quantity int) error {
	req := &model.AddCartItemRequest{ProductID: productID, Quantity: quantity}
	if err := validatorx.ValidateStruct(req); err != nil {
		return errors.SetCustomErrorMessage(constant.ErrInvalidRequest, validatorx.Describe(err))
	}

	return s.mutateCart(ctx, "AddToCart", func(ctx context.Context) error {
		return s.cartRepo.AddItem(ctx, req)
	})
}

// UpdateCartQuantity with quantity <= 0 removes the item.
func (s *Store) UpdateCartQuantity(ctx context.Context, itemID uint64, quantity int) error {
	if quantity <= 0 {
		return s.RemoveCartItem(ctx, itemID)
	}

	req := &model.UpdateCartItemRequest{Quantity: quantity}
	return s.mutateCart(ctx, "UpdateCartQuantity", func(ctx context.Context) error {
		return s.cartRepo.UpdateItem(ctx, itemID, req)
	})
}

func (s *Store) RemoveCartItem(ctx context.Context, itemID uint64) error {
	return s.mutateCart(ctx, "RemoveCartItem", func(ctx context.Context) error {
		return s.cartRepo.RemoveItem(ctx, itemID)
	})
}

// mutateCart keeps the cart busy while call and the refetch after it run.
// The previous snapshot stays in place when call fails.
func (s *Store) mutateCart(ctx context.Context, op string, call func(ctx context.Context) error) error {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	if !s.IsAuthenticated() {
		return errors.SetCustomError(constant.ErrUnauthorize)
	}

	authCtx := s.WithToken(ctx)
	if err := call(authCtx); err != nil {
		logger.Error("["+op+"] error cartRepo", zap.String("error", err.Error()))
		return s.ExpireOnUnauthorized(authCtx, err)
	}
	return s.FetchCart(ctx)
}

// ExpireOnUnauthorized clears the session when err says the backend no longer
// accepts the token, and returns the error to show the user. ctx should be the
// one the failed call was made with: a rejection of a token that has since
// been replaced by a new login leaves the new session alone.
func (s *Store) ExpireOnUnauthorized(ctx context.Context, err error) error {
	if !errors.HasType(err, constant.ErrUnauthorize) {
		return err
	}

	used, ok := ctxutil.GetToken(ctx)
	s.mu.Lock()
	stale := ok && used != s.token
	s.mu.Unlock()
	if stale {
		logger.Debug("[ExpireOnUnauthorized] rejection of a replaced token ignored")
		return err
	}

	s.clearToken(ctx, used)
	return errors.SetCustomError(constant.ErrSessionExpired)
}

// OnAuthChange registers fn to run after every signed-in/anonymous
// transition. Switching accounts is reported as false then true. The
// returned func unregisters fn.
func (s *Store) OnAuthChange(fn func(authenticated bool)) (remove func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

type listener struct {
	id int
	fn func(bool)
}

func (s *Store) WithToken(ctx context.Context) context.Context {
	return ctxutil.WithToken(ctx, s.Token())
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Cart() *model.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *Store) CartTotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Total()
}

func (s *Store) CartBusy() bool {
	return s.inflight.Load() > 0
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked()
}

func (s *Store) HasRole(roles ...constant.Role) bool {
	_, err := RequireRole(s, roles...)
	return err == nil
}

// LastError is the reason of the last failed Login, nil after a success.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) authenticatedLocked() bool {
	return s.token != "" && s.user != nil
}

func (s *Store) clear(ctx context.Context) {
	s.clearToken(ctx, "")
}

// clearToken drops the session, only when it still runs on tok unless tok is
// empty.
func (s *Store) clearToken(ctx context.Context, tok string) {
	s.mu.Lock()
	if tok != "" && s.token != tok {
		s.mu.Unlock()
		return
	}
	was := s.authenticatedLocked()
	s.token = ""
	s.user = nil
	s.cart = nil
	s.mu.Unlock()

	if err := s.tokenRepo.DeleteToken(ctx); err != nil {
		logger.Warn("[clear] error tokenRepo.DeleteToken", zap.String("error", err.Error()))
	}
	if was {
		s.notify(false)
	}
}

// announce tells listeners about a sign-in that found the session in state
// was. Another account replacing the signed-in one is a sign-out first.
func (s *Store) announce(was, switched bool) {
	switch {
	case switched:
		s.notify(false)
		s.notify(true)
	case !was:
		s.notify(true)
	}
}

func (s *Store) notify(authenticated bool) {
	s.mu.RLock()
	listeners := append([]listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l.fn(authenticated)
	}
}

// RequireRole returns the signed-in user when it holds one of roles. No roles
// means any signed-in user.
func RequireRole(s Session, roles ...constant.Role) (*model.User, error) {
	user := s.User()
	if user == nil {
		return nil, errors.SetCustomError(constant.ErrUnauthorize)
	}
	if len(roles) == 0 {
		return user, nil
	}
	for _, r := range roles {
		if user.Role == r {
			return user, nil
		}
	}
	return nil, errors.SetCustomError(constant.ErrForbidden)
}
