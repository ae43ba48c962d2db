package user

import (
	"context"
	"strings"

	"github.com/akhdanrgya/teluhub-client/application/session"
	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	userrepo "github.com/akhdanrgya/teluhub-client/repository/user"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	validatorx "github.com/akhdanrgya/teluhub-client/utils/validator"
	"go.uber.org/zap"
)

type UserApp interface {
	Profile(ctx context.Context, username string) (*model.PublicProfile, []model.Product, error)
	UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	Promote(ctx context.Context, userID uint64, req *model.PromoteRequest) (*model.User, error)
}

// Refresher reloads the signed-in user after a profile change.
type Refresher interface {
	RefreshUser(ctx context.Context) error
}

type UserAppImpl struct {
	session   session.Session
	refresher Refresher
	userRepo  userrepo.UserRepository
}

func NewUserApp(sess session.Session, refresher Refresher, userRepo userrepo.UserRepository) UserApp {
	return &UserAppImpl{
		session:   sess,
		refresher: refresher,
		userRepo:  userRepo,
	}
}

// Profile returns the public profile and listed products of username.
func (s *UserAppImpl) Profile(ctx context.Context, username string) (*model.PublicProfile, []model.Product, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, "username is required")
	}

	profile, err := s.userRepo.Profile(ctx, username)
	if err != nil {
		logger.Error("[Profile] err userRepo.Profile", zap.String("username", username), zap.String("error", err.Error()))
		return nil, nil, err
	}

	products, err := s.userRepo.Products(ctx, username)
	if err != nil {
		logger.Error("[Profile] err userRepo.Products", zap.String("username", username), zap.String("error", err.Error()))
		return nil, nil, err
	}
	return profile, products, nil
}

func (s *UserAppImpl) UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) (*model.User, error) {
	if _, err := session.RequireRole(s.session); err != nil {
		return nil, err
	}
	if err := validatorx.ValidateStruct(req); err != nil {
		return nil, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, validatorx.Describe(err))
	}

	authCtx := s.session.WithToken(ctx)
	updated, err := s.userRepo.UpdateProfile(authCtx, req)
	if err != nil {
		logger.Error("[UpdateProfile] err userRepo.UpdateProfile", zap.String("error", err.Error()))
		return nil, s.session.ExpireOnUnauthorized(authCtx, err)
	}

	if s.refresher != nil {
		if err := s.refresher.RefreshUser(ctx); err != nil {
			logger.Warn("[UpdateProfile] err RefreshUser", zap.String("error", err.Error()))
		}
	}
	return updated, nil
}

func (s *UserAppImpl) ListUsers(ctx context.Context) ([]model.User, error) {
	if _, err := session.RequireRole(s.session, constant.RoleAdmin); err != nil {
		return nil, err
	}

	authCtx := s.session.WithToken(ctx)
	users, err := s.userRepo.List(authCtx)
	if err != nil {
		logger.Error("[ListUsers] err userRepo.List", zap.String("error", err.Error()))
		return nil, s.session.ExpireOnUnauthorized(authCtx, err)
	}
	return users, nil
}

func (s *UserAppImpl) Promote(ctx context.Context, userID uint64, req *model.PromoteRequest) (*model.User, error) {
	admin, err := session.RequireRole(s.session, constant.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		return nil, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, "user id is required")
	}
	if err := validatorx.ValidateStruct(req); err != nil {
		return nil, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, validatorx.Describe(err))
	}

	authCtx := s.session.WithToken(ctx)
	promoted, err := s.userRepo.Promote(authCtx, userID, req)
	if err != nil {
		logger.Error("[Promote] err userRepo.Promote", zap.Uint64("user_id", userID), zap.String("error", err.Error()))
		return nil, s.session.ExpireOnUnauthorized(authCtx, err)
	}
	logger.Info("[Promote] role changed",
		zap.Uint64("admin_id", admin.ID),
		zap.Uint64("user_id", userID),
		zap.String("role", string(req.Role)),
	)
	return promoted, nil
}
