package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/shortcraft-backend/internal/data/repos"
	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/quota"
	"github.com/yungbote/shortcraft-backend/internal/platform/ctxutil"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(dbc dbctx.Context) (*types.User, error)
	// Account resolves the caller into the identity the quota limiter uses.
	Account(dbc dbctx.Context) (quota.Account, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	const op = "user.me"
	id := ctxutil.UserID(dbc.Ctx)
	if id == uuid.Nil {
		us.log.Warn("request data not set in context")
		return nil, pipeline.Unauthorized(op)
	}
	u, err := us.userRepo.GetByID(dbc, id)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.CodeInternal, op, err)
	}
	if u == nil {
		return nil, pipeline.Unauthorized(op)
	}
	return u, nil
}

func (us *userService) Account(dbc dbctx.Context) (quota.Account, error) {
	u, err := us.GetMe(dbc)
	if err != nil {
		return quota.Account{}, err
	}
	return quota.Account{UserID: u.ID, Email: u.Email, Plan: u.Plan}, nil
}
