package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akhdanrgya/teluhub-client/application/session"
	"github.com/akhdanrgya/teluhub-client/constant"
	authmocks "github.com/akhdanrgya/teluhub-client/mocks/repository/auth"
	cartmocks "github.com/akhdanrgya/teluhub-client/mocks/repository/cart"
	redismocks "github.com/akhdanrgya/teluhub-client/mocks/repository/redis"
	"github.com/akhdanrgya/teluhub-client/model"
	ctxutil "github.com/akhdanrgya/teluhub-client/utils/context"
	cerr "github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fields struct {
	authRepo  *authmocks.AuthRepository
	cartRepo  *cartmocks.CartRepository
	tokenRepo *redismocks.TokenRepository
}

func newFields(t *testing.T) fields {
	return fields{
		authRepo:  authmocks.NewAuthRepository(t),
		cartRepo:  cartmocks.NewCartRepository(t),
		tokenRepo: redismocks.NewTokenRepository(t),
	}
}

func (f fields) store() *session.Store {
	return session.NewStore(f.authRepo, f.cartRepo, f.tokenRepo, 72*time.Hour)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 3,
		"role":    "user",
		"exp":     exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func withToken(tok string) interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool {
		got, _ := ctxutil.GetToken(ctx)
		return got == tok
	})
}

func sampleCart() *model.Cart {
	return &model.Cart{
		ID:     1,
		UserID: 3,
		CartItems: []model.CartItem{
			{ID: 10, Quantity: 2, ProductID: 42, Product: model.CartProduct{ID: 42, Name: "Kopi Susu", Price: 15000}},
			{ID: 11, Quantity: 1, ProductID: 43, Product: model.CartProduct{ID: 43, Name: "Roti Bakar", Price: 12000}},
		},
	}
}

func errType(t *testing.T, err error) constant.ErrorType {
	t.Helper()
	var ce cerr.CustomError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want CustomError", err)
	}
	return ce.Type()
}

// signIn drives a successful Login and returns the token used.
func signIn(t *testing.T, f fields, s *session.Store) string {
	t.Helper()
	tok := signedToken(t, time.Now().Add(time.Hour))
	f.authRepo.
		On("Login", mock.Anything, &model.LoginRequest{Email: "sari@telu.ac.id", Password: "rahasia"}).
		Return(&model.LoginResponse{Token: tok, User: model.User{ID: 3, Username: "sari", Role: constant.RoleUser}}, nil).
		Once()
	f.tokenRepo.On("SaveToken", mock.Anything, tok, 72*time.Hour).Return(nil).Once()
	f.cartRepo.On("Get", withToken(tok)).Return(sampleCart(), nil).Once()

	require.True(t, s.Login(context.Background(), "sari@telu.ac.id", "rahasia"))
	return tok
}

func TestStore_Login(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		mockCall func(f fields)
		want     bool
		wantErr  constant.ErrorType
	}{
		{
			name:     "error: wrong credentials",
			email:    "sari@telu.ac.id",
			password: "salah",
			mockCall: func(f fields) {
				f.authRepo.
					On("Login", mock.Anything, mock.Anything).
					Return(nil, cerr.SetCustomError(constant.ErrInvalidCredential)).
					Once()
				f.tokenRepo.On("DeleteToken", mock.Anything).Return(nil).Once()
			},
			want:    false,
			wantErr: constant.ErrInvalidCredential,
		},
		{
			name:     "error: malformed email never reaches backend",
			email:    "not-an-email",
			password: "rahasia",
			mockCall: func(f fields) {
				f.tokenRepo.On("DeleteToken", mock.Anything).Return(nil).Once()
			},
			want:    false,
			wantErr: constant.ErrInvalidRequest,
		},
		{
			name:     "error: backend unreachable",
			email:    "sari@telu.ac.id",
			password: "rahasia",
			mockCall: func(f fields) {
				f.authRepo.
					On("Login", mock.Anything, mock.Anything).
					Return(nil, cerr.SetCustomError(constant.ErrNetwork)).
					Once()
				f.tokenRepo.On("DeleteToken", mock.Anything).Return(nil).Once()
			},
			want:    false,
			wantErr: constant.ErrNetwork,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFields(t)
			if tt.mockCall != nil {
				tt.mockCall(f)
			}
			s := f.store()

			got := s.Login(context.Background(), tt.email, tt.password)
			assert.Equal(t, tt.want, got)
			assert.False(t, s.IsAuthenticated())
			assert.Equal(t, "", s.Token())
			assert.Nil(t, s.User())
			assert.Equal(t, tt.wantErr, errType(t, s.LastError()))
		})
	}
}

func TestStore_LoginSuccess(t *testing.T) {
	f := newFields(t)
	s := f.store()

	var transitions []bool
	s.OnAuthChange(func(ok bool) { transitions = append(transitions, ok) })

	tok := signIn(t, f, s)

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, tok, s.Token())
	assert.Equal(t, "sari", s.User().Username)
	assert.Equal(t, int64(2*15000+12000), s.CartTotal())
	assert.Nil(t, s.LastError())
	assert.Equal(t, []bool{true}, transitions)
	assert.True(t, s.HasRole(constant.RoleUser))
	assert.False(t, s.HasRole(constant.RoleSeller, constant.RoleAdmin))
}

func TestStore_FailedLoginClearsExistingSession(t *testing.T) {
	f := newFields(t)
	s := f.store()
	signIn(t, f, s)

	f.authRepo.
		On("Login", mock.Anything, mock.Anything).
		Return(nil, cerr.SetCustomError(constant.ErrInvalidCredential)).
		Once()
	f.tokenRepo.On("DeleteToken", mock.Anything).Return(nil).Once()

	assert.False(t, s.Login(context.Background(), "other@telu.ac.id", "salah"))
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, "", s.Token())
	assert.Nil(t, s.Cart())
}

func TestStore_UpdateCartQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		mockCall func(f fields, tok string)
	}{
		{
			name:     "success: positive quantity updates",
			quantity: 5,
			mockCall: func(f fields, tok string) {
				f.cartRepo.
					On("UpdateItem", withToken(tok), uint64(10), &model.UpdateCartItemRequest{Quantity: 5}).
					Return(nil).
					Once()
			},
		},
		{
			name:     "success: zero quantity removes",
			quantity: 0,
			mockCall: func(f fields, tok string) {
				f.cartRepo.On("RemoveItem", withToken(tok), uint64(10)).Return(nil).Once()
			},
		},
		{
			name:     "success: negative quantity removes",
			quantity: -1,
			mockCall: func(f fields, tok string) {
				f.cartRepo.On("RemoveItem", withToken(tok), uint64(10)).Return(nil).Once()
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFields(t)
			s := f.store()
			tok := signIn(t, f, s)

			tt.mockCall(f, tok)
			refreshed := &model.Cart{ID: 1, UserID: 3, CartItems: []model.CartItem{}}
			f.cartRepo.On("Get", withToken(tok)).Return(refreshed, nil).Once()

			err := s.UpdateCartQuantity(context.Background(), 10, tt.quantity)
			require.NoError(t, err)
			assert.False(t, s.CartBusy())
			assert.Equal(t, refreshed, s.Cart())
		})
	}
}

func TestStore_CartBusyWhileMutating(t *testing.T) {
	f := newFields(t)
	s := f.store()
	tok := signIn(t, f, s)

	var busyDuringCall bool
	f.cartRepo.
		On("AddItem", withToken(tok), &model.AddCartItemRequest{ProductID: 42, Quantity: 1}).
		Run(func(args mock.Arguments) { busyDuringCall = s.CartBusy() }).
		Return(nil).
		Once()
	f.cartRepo.On("Get", withToken(tok)).Return(sampleCart(), nil).Once()

	require.NoError(t, s.AddToCart(context.Background(), 42, 1))
	assert.True(t, busyDuringCall)
	assert.False(t, s.CartBusy())
}

func TestStore_AddToCartRejectsNonPositiveQuantity(t *testing.T) {
	f := newFields(t)
	s := f.store()
	signIn(t, f, s)

	err := s.AddToCart(context.Background(), 42, 0)
	require.Error(t, err)
	assert.Equal(t, constant.ErrInvalidRequest, errType(t, err))
	assert.False(t, s.CartBusy())
}

func TestStore_MutationFailureKeepsCart(t *testing.T) {
	f := newFields(t)
	s := f.store()
	tok := signIn(t, f, s)
	before := s.Cart()

	f.cartRepo.
		On("UpdateItem", withToken(tok), uint64(10), mock.Anything).
		Return(cerr.SetCustomErrorMessage(constant.ErrInvalidRequest, "Stok tidak cukup!")).
		Once()

	err := s.UpdateCartQuantity(context.Background(), 10, 99)
	require.Error(t, err)
	assert.Equal(t, "Stok tidak cukup!", err.Error())
	assert.Equal(t, before, s.Cart())
	assert.False(t, s.CartBusy())
	assert.True(t, s.IsAuthenticated())
}

func TestStore_UnauthorizedMutationExpiresSession(t *testing.T) {
	f := newFields(t)
	s := f.store()
	tok := signIn(t, f, s)

	var transitions []bool
	s.OnAuthChange(func(ok bool) { transitions = append(transitions, ok) })

	f.cartRepo.
		On("RemoveItem", withToken(tok), uint64(11)).
		Return(cerr.SetCustomError(constant.ErrUnauthorize)).
		Once()
	f.tokenRepo.On("DeleteToken", mock.Anything).Return(nil).Once()

	err := s.RemoveCartItem(context.Background(), 11)
	require.Error(t, err)
	assert.Equal(t, constant.ErrSessionExpired, errType(t, err))
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.Cart())
	assert.Equal(t, []bool{false}, transitions)
	assert.False(t, s.CartBusy())
}

func TestStore_MutationWhileAnonymous(t *testing.T) {
	f := newFields(t)
	s := f.store()

	err := s.RemoveCartItem(context.Background(), 11)
	require.Error(t, err)
	assert.Equal(t, constant.ErrUnauthorize, errType(t, err))
	assert.False(t, s.CartBusy())
}

func TestStore_FetchCartReplacesState(t *testing.T) {
	f := newFields(t)
	s := f.store()
	tok := signIn(t, f, s)

	next := &model.Cart{ID: 1, UserID: 3, CartItems: []model.CartItem{
		{ID: 12, Quantity: 4, ProductID: 50, Product: model.CartProduct{ID: 50, Price: 1000}},
	}}
	f.cartRepo.On("Get", withToken(tok)).Return(next, nil).Once()

	require.NoError(t, s.FetchCart(context.Background()))
	assert.Equal(t, next, s.Cart())
	assert.Equal(t, int64(4000), s.CartTotal())
}

func TestStore_Init(t *testing.T) {
	tests := []struct {
		name     string
		mockCall func(f fields, tok string)
		wantAuth bool
	}{
		{
			name: "success: restores persisted session",
			mockCall: func(f fields, tok string) {
				f.tokenRepo.On("GetToken", mock.Anything).Return(tok, nil).Once()
				f.authRepo.On("Me", withToken(tok)).Return(&model.User{ID: 3, Username: "sari", Role: constant.RoleUser}, nil).Once()
				f.cartRepo.On("Get", withToken(tok)).Return(sampleCart(), nil).Once()
			},
			wantAuth: true,
		},
		{
			name: "success: nothing stored stays anonymous",
			mockCall: func(f fields, tok string) {
				f.tokenRepo.On("GetToken", mock.Anything).Return("", nil).Once()
			},
			wantAuth: false,
		},
		{
			name: "error: stored token rejected clears it",
			mockCall: func(f fields, tok string) {
				f.tokenRepo.On("GetToken", mock.Anything).Return(tok, nil).Once()
				f.authRepo.On("Me", withToken(tok)).Return(nil, cerr.SetCustomError(constant.ErrUnauthorize)).Once()
				f.tokenRepo.On("DeleteToken", mock.Anything).Return(nil).Once()
			},
			wantAuth: false,
		},
		{
			name: "error: token store unreachable",
			mockCall: func(f fields, tok string) {
				f.tokenRepo.On("GetToken", mock.Anything).Return("", errors.New("dial tcp: connection refused")).Once()
			},
			wantAuth: false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFields(t)
			tok := signedToken(t, time.Now().Add(time.Hour))
			tt.mockCall(f, tok)
			s := f.store()

			s.Init(context.Background())
			assert.Equal(t, tt.wantAuth, s.IsAuthenticated())
		})
	}
}

func TestStore_RefreshUser(t *testing.T) {
	t.Run("error: locally expired token clears without calling backend", func(t *testing.T) {
		f := newFields(t)
		expired := signedToken(t, time.Now().Add(-time.Minute))
		f.tokenRepo.On("GetToken", mock.Anything).Return(expired, nil).Once()
		f.tokenRepo.On("DeleteToken", mock.Anything).Return(nil).Once()
		s := f.store()

		s.Init(context.Background())
		assert.False(t, s.IsAuthenticated())
		assert.Equal(t, "", s.Token())
	})

	t.Run("error: network failure keeps session", func(t *testing.T) {
		f := newFields(t)
		s := f.store()
		tok := signIn(t, f, s)
		f.authRepo.On("Me", withToken(tok)).Return(nil, cerr.SetCustomError(constant.ErrNetwork)).Once()

		err := s.RefreshUser(context.Background())
		require.Error(t, err)
		assert.Equal(t, constant.ErrNetwork, errType(t, err))
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, tok, s.Token())
	})
}

func TestStore_Logout(t *testing.T) {
	f := newFields(t)
	s := f.store()
	tok := signIn(t, f, s)

	f.authRepo.On("Logout", withToken(tok)).Return(cerr.SetCustomError(constant.ErrNetwork)).Once()
	f.tokenRepo.On("DeleteToken", mock.Anything).Return(nil).Once()

	s.Logout(context.Background())
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, "", s.Token())
	assert.Nil(t, s.Cart())

	_, ok := ctxutil.GetToken(s.WithToken(context.Background()))
	assert.False(t, ok)
}

func TestStore_Register(t *testing.T) {
	f := newFields(t)
	s := f.store()

	_, err := s.Register(context.Background(), &model.RegisterRequest{Username: "ab", Email: "x@y.z", Password: "123456"})
	require.Error(t, err)
	assert.Equal(t, constant.ErrInvalidRequest, errType(t, err))

	req := &model.RegisterRequest{Username: "sari", Email: "sari@telu.ac.id", Password: "rahasia"}
	f.authRepo.On("Register", mock.Anything, req).Return(&model.User{ID: 3, Username: "sari"}, nil).Once()

	got, err := s.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.ID)
	assert.False(t, s.IsAuthenticated())
}

func TestRequireRole(t *testing.T) {
	f := newFields(t)
	s := f.store()

	_, err := session.RequireRole(s)
	assert.Equal(t, constant.ErrUnauthorize, errType(t, err))

	signIn(t, f, s)
	_, err = session.RequireRole(s, constant.RoleAdmin)
	assert.Equal(t, constant.ErrForbidden, errType(t, err))

	u, err := session.RequireRole(s)
	require.NoError(t, err)
	assert.Equal(t, "sari", u.Username)
}

func TestStore_LoginAsAnotherUserReportsSwitch(t *testing.T) {
	f := newFields(t)
	s := f.store()
	signIn(t, f, s)

	var transitions []bool
	s.OnAuthChange(func(ok bool) { transitions = append(transitions, ok) })

	tok := signedToken(t, time.Now().Add(2*time.Hour))
	f.authRepo.
		On("Login", mock.Anything, &model.LoginRequest{Email: "budi@telu.ac.id", Password: "rahasia"}).
		Return(&model.LoginResponse{Token: tok, User: model.User{ID: 9, Username: "budi", Role: constant.RoleSeller}}, nil).
		Once()
	f.tokenRepo.On("SaveToken", mock.Anything, tok, 72*time.Hour).Return(nil).Once()
	f.cartRepo.On("Get", withToken(tok)).Return(&model.Cart{ID: 2, UserID: 9}, nil).Once()

	require.True(t, s.Login(context.Background(), "budi@telu.ac.id", "rahasia"))
	assert.Equal(t, []bool{false, true}, transitions)
	assert.Equal(t, "budi", s.User().Username)
	assert.Equal(t, uint64(9), s.Cart().UserID)
}

func TestStore_LoginAgainAsSameUserIsSilent(t *testing.T) {
	f := newFields(t)
	s := f.store()
	signIn(t, f, s)

	var transitions []bool
	s.OnAuthChange(func(ok bool) { transitions = append(transitions, ok) })

	signIn(t, f, s)
	assert.Empty(t, transitions)
	assert.True(t, s.IsAuthenticated())
}

func TestStore_StaleUnauthorizedKeepsNewerLogin(t *testing.T) {
	f := newFields(t)
	s := f.store()
	old := signIn(t, f, s)

	var transitions []bool
	s.OnAuthChange(func(ok bool) { transitions = append(transitions, ok) })

	fresh := signedToken(t, time.Now().Add(2*time.Hour))
	f.cartRepo.
		On("AddItem", withToken(old), &model.AddCartItemRequest{ProductID: 42, Quantity: 1}).
		Run(func(args mock.Arguments) {
			f.authRepo.
				On("Login", mock.Anything, mock.Anything).
				Return(&model.LoginResponse{Token: fresh, User: model.User{ID: 3, Username: "sari", Role: constant.RoleUser}}, nil).
				Once()
			f.tokenRepo.On("SaveToken", mock.Anything, fresh, 72*time.Hour).Return(nil).Once()
			f.cartRepo.On("Get", withToken(fresh)).Return(sampleCart(), nil).Once()
			require.True(t, s.Login(context.Background(), "sari@telu.ac.id", "rahasia"))
		}).
		Return(cerr.SetCustomError(constant.ErrUnauthorize)).
		Once()

	err := s.AddToCart(context.Background(), 42, 1)
	require.Error(t, err)
	assert.Equal(t, constant.ErrUnauthorize, errType(t, err))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, fresh, s.Token())
	assert.NotNil(t, s.Cart())
	assert.Empty(t, transitions)
	f.tokenRepo.AssertNotCalled(t, "DeleteToken", mock.Anything)
}

func TestStore_ExpireOnUnauthorized(t *testing.T) {
	tests := []struct {
		name     string
		ctxToken func(current string) string
		err      error
		wantErr  constant.ErrorType
		wantAuth bool
		mockCall func(f fields)
	}{
		{
			name:     "success: other errors pass through",
			ctxToken: func(current string) string { return current },
			err:      cerr.SetCustomError(constant.ErrNetwork),
			wantErr:  constant.ErrNetwork,
			wantAuth: true,
		},
		{
			name:     "error: rejection of the current token expires the session",
			ctxToken: func(current string) string { return current },
			err:      cerr.SetCustomError(constant.ErrUnauthorize),
			wantErr:  constant.ErrSessionExpired,
			wantAuth: false,
			mockCall: func(f fields) {
				f.tokenRepo.On("DeleteToken", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:     "error: rejection of a replaced token is returned as is",
			ctxToken: func(string) string { return "replaced-token" },
			err:      cerr.SetCustomError(constant.ErrUnauthorize),
			wantErr:  constant.ErrUnauthorize,
			wantAuth: true,
		},
		{
			name:     "error: rejection without a token in ctx expires the session",
			ctxToken: func(string) string { return "" },
			err:      cerr.SetCustomError(constant.ErrUnauthorize),
			wantErr:  constant.ErrSessionExpired,
			wantAuth: false,
			mockCall: func(f fields) {
				f.tokenRepo.On("DeleteToken", mock.Anything).Return(nil).Once()
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFields(t)
			s := f.store()
			tok := signIn(t, f, s)
			if tt.mockCall != nil {
				tt.mockCall(f)
			}

			ctx := ctxutil.WithToken(context.Background(), tt.ctxToken(tok))
			err := s.ExpireOnUnauthorized(ctx, tt.err)
			assert.Equal(t, tt.wantErr, errType(t, err))
			assert.Equal(t, tt.wantAuth, s.IsAuthenticated())
		})
	}
}

func TestStore_OnAuthChangeRemove(t *testing.T) {
	f := newFields(t)
	s := f.store()

	var first, second []bool
	remove := s.OnAuthChange(func(ok bool) { first = append(first, ok) })
	s.OnAuthChange(func(ok bool) { second = append(second, ok) })

	signIn(t, f, s)
	remove()
	remove()

	f.authRepo.On("Logout", mock.Anything).Return(nil).Once()
	f.tokenRepo.On("DeleteToken", mock.Anything).Return(nil).Once()
	s.Logout(context.Background())

	assert.Equal(t, []bool{true}, first)
	assert.Equal(t, []bool{true, false}, second)
}
