package user_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	appuser "github.com/akhdanrgya/teluhub-client/application/user"
	"github.com/akhdanrgya/teluhub-client/constant"
	sessionmocks "github.com/akhdanrgya/teluhub-client/mocks/application/session"
	usermocks "github.com/akhdanrgya/teluhub-client/mocks/repository/user"
	"github.com/akhdanrgya/teluhub-client/model"
	cerr "github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/stretchr/testify/mock"
)

type refreshCounter struct{ calls int }

func (r *refreshCounter) RefreshUser(context.Context) error {
	r.calls++
	return nil
}

var (
	admin  = &model.User{ID: 1, Username: "root", Role: constant.RoleAdmin}
	member = &model.User{ID: 5, Username: "dina", Role: constant.RoleUser}
)

func assertErrCode(t *testing.T, err error, want constant.ErrorType) {
	t.Helper()
	var ce cerr.CustomError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want CustomError", err)
	}
	if ce.ErrorCode() != constant.ErrorTypeCode[want] {
		t.Fatalf("error code = %s, want %s", ce.ErrorCode(), constant.ErrorTypeCode[want])
	}
}

func TestUserApp_Promote(t *testing.T) {
	type fields struct {
		session  *sessionmocks.Session
		userRepo *usermocks.UserRepository
	}
	type args struct {
		userID uint64
		req    *model.PromoteRequest
	}
	tests := []struct {
		name     string
		fields   fields
		args     args
		mockCall func(f fields)
		want     *model.User
		wantErr  bool
		errCode  constant.ErrorType
	}{
		{
			name: "success: admin promotes user to seller",
			fields: fields{
				session:  sessionmocks.NewSession(t),
				userRepo: usermocks.NewUserRepository(t),
			},
			args: args{userID: 5, req: &model.PromoteRequest{Role: constant.RoleSeller}},
			mockCall: func(f fields) {
				f.session.On("User").Return(admin).Once()
				f.session.On("WithToken", mock.Anything).Return(context.Background()).Once()
				f.userRepo.
					On("Promote", mock.Anything, uint64(5), &model.PromoteRequest{Role: constant.RoleSeller}).
					Return(&model.User{ID: 5, Username: "dina", Role: constant.RoleSeller}, nil).
					Once()
			},
			want: &model.User{ID: 5, Username: "dina", Role: constant.RoleSeller},
		},
		{
			name: "error: non-admin is forbidden",
			fields: fields{
				session:  sessionmocks.NewSession(t),
				userRepo: usermocks.NewUserRepository(t),
			},
			args: args{userID: 6, req: &model.PromoteRequest{Role: constant.RoleAdmin}},
			mockCall: func(f fields) {
				f.session.On("User").Return(member).Once()
			},
			wantErr: true,
			errCode: constant.ErrForbidden,
		},
		{
			name: "error: unknown role",
			fields: fields{
				session:  sessionmocks.NewSession(t),
				userRepo: usermocks.NewUserRepository(t),
			},
			args: args{userID: 5, req: &model.PromoteRequest{Role: "owner"}},
			mockCall: func(f fields) {
				f.session.On("User").Return(admin).Once()
			},
			wantErr: true,
			errCode: constant.ErrInvalidRequest,
		},
		{
			name: "error: session expired on backend",
			fields: fields{
				session:  sessionmocks.NewSession(t),
				userRepo: usermocks.NewUserRepository(t),
			},
			args: args{userID: 5, req: &model.PromoteRequest{Role: constant.RoleSeller}},
			mockCall: func(f fields) {
				unauthorized := cerr.SetCustomError(constant.ErrUnauthorize)
				f.session.On("User").Return(admin).Once()
				f.session.On("WithToken", mock.Anything).Return(context.Background()).Once()
				f.userRepo.On("Promote", mock.Anything, uint64(5), mock.Anything).Return(nil, unauthorized).Once()
				f.session.
					On("ExpireOnUnauthorized", mock.Anything, unauthorized).
					Return(cerr.SetCustomError(constant.ErrSessionExpired)).
					Once()
			},
			wantErr: true,
			errCode: constant.ErrSessionExpired,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if tt.mockCall != nil {
				tt.mockCall(tt.fields)
			}
			app := appuser.NewUserApp(tt.fields.session, nil, tt.fields.userRepo)

			got, err := app.Promote(context.Background(), tt.args.userID, tt.args.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Promote() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				assertErrCode(t, err, tt.errCode)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Promote() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUserApp_UpdateProfile(t *testing.T) {
	sess := sessionmocks.NewSession(t)
	repo := usermocks.NewUserRepository(t)
	refresher := &refreshCounter{}
	req := &model.UpdateProfileRequest{Username: "dina_k"}

	sess.On("User").Return(member).Once()
	sess.On("WithToken", mock.Anything).Return(context.Background()).Once()
	repo.On("UpdateProfile", mock.Anything, req).
		Return(&model.User{ID: 5, Username: "dina_k", Role: constant.RoleUser}, nil).
		Once()

	app := appuser.NewUserApp(sess, refresher, repo)
	got, err := app.UpdateProfile(context.Background(), req)
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if got.Username != "dina_k" {
		t.Fatalf("UpdateProfile() username = %s, want dina_k", got.Username)
	}
	if refresher.calls != 1 {
		t.Fatalf("RefreshUser calls = %d, want 1", refresher.calls)
	}
}

func TestUserApp_UpdateProfile_InvalidImageURL(t *testing.T) {
	sess := sessionmocks.NewSession(t)
	repo := usermocks.NewUserRepository(t)
	sess.On("User").Return(member).Once()

	app := appuser.NewUserApp(sess, nil, repo)
	_, err := app.UpdateProfile(context.Background(), &model.UpdateProfileRequest{ProfileImageURL: "not a url"})
	if err == nil {
		t.Fatal("UpdateProfile() expected error")
	}
	assertErrCode(t, err, constant.ErrInvalidRequest)
}

func TestUserApp_Profile(t *testing.T) {
	type fields struct {
		userRepo *usermocks.UserRepository
	}
	tests := []struct {
		name         string
		fields       fields
		username     string
		mockCall     func(f fields)
		wantProducts int
		wantErr      bool
		errCode      constant.ErrorType
	}{
		{
			name:     "success: profile with products",
			fields:   fields{userRepo: usermocks.NewUserRepository(t)},
			username: "warung_budi",
			mockCall: func(f fields) {
				f.userRepo.On("Profile", mock.Anything, "warung_budi").
					Return(&model.PublicProfile{ID: 9, Username: "warung_budi", Role: constant.RoleSeller}, nil).
					Once()
				f.userRepo.On("Products", mock.Anything, "warung_budi").
					Return([]model.Product{{ID: 1, Name: "Kopi"}, {ID: 2, Name: "Teh"}}, nil).
					Once()
			},
			wantProducts: 2,
		},
		{
			name:     "error: unknown username",
			fields:   fields{userRepo: usermocks.NewUserRepository(t)},
			username: "ghost",
			mockCall: func(f fields) {
				f.userRepo.On("Profile", mock.Anything, "ghost").
					Return(nil, cerr.SetCustomError(constant.ErrNotFound)).
					Once()
			},
			wantErr: true,
			errCode: constant.ErrNotFound,
		},
		{
			name:     "error: blank username",
			fields:   fields{userRepo: usermocks.NewUserRepository(t)},
			username: "  ",
			wantErr:  true,
			errCode:  constant.ErrInvalidRequest,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if tt.mockCall != nil {
				tt.mockCall(tt.fields)
			}
			app := appuser.NewUserApp(sessionmocks.NewSession(t), nil, tt.fields.userRepo)

			profile, products, err := app.Profile(context.Background(), tt.username)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Profile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				assertErrCode(t, err, tt.errCode)
				return
			}
			if profile.Username != tt.username || len(products) != tt.wantProducts {
				t.Fatalf("Profile() = %+v with %d products", profile, len(products))
			}
		})
	}
}

func TestUserApp_ListUsers_RequiresAdmin(t *testing.T) {
	sess := sessionmocks.NewSession(t)
	sess.On("User").Return(nil).Once()

	app := appuser.NewUserApp(sess, nil, usermocks.NewUserRepository(t))
	_, err := app.ListUsers(context.Background())
	if err == nil {
		t.Fatal("ListUsers() expected error")
	}
	assertErrCode(t, err, constant.ErrUnauthorize)
}
