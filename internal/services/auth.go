package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/shortcraft-backend/internal/data/aggregates"
	"github.com/yungbote/shortcraft-backend/internal/data/repos"
	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/ctxutil"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

const minPasswordLen = 8

var errInvalidCredentials = errors.New("invalid email or password")

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*types.User, error)
	// Login returns a signed access token for valid credentials.
	Login(ctx context.Context, email, password string) (string, *types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	tx           aggregates.TxRunner
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	return &authService{
		tx:           aggregates.NewGormTxRunner(db),
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func (as *authService) Register(ctx context.Context, email, password string) (*types.User, error) {
	const op = "auth.register"
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, pipeline.Validation(op, "invalid email")
	}
	if len(password) < minPasswordLen {
		return nil, pipeline.Validation(op, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.CodeInternal, op, err)
	}

	var created *types.User
	err = as.tx.InTx(ctx, func(dbc dbctx.Context) error {
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return err
		}
		if exists {
			return pipeline.NewError(pipeline.CodeConflict, op, "email already registered", nil)
		}
		created, err = as.userRepo.Create(dbc, &types.User{
			ID:       uuid.New(),
			Email:    email,
			Password: string(hash),
		})
		return err
	})
	if err != nil {
		if pipeline.CodeOf(err) != "" {
			return nil, err
		}
		as.log.Warn("register failed", "email", email, "error", err)
		return nil, pipeline.Wrap(pipeline.CodeInternal, op, err)
	}
	as.log.Info("user registered", "user_id", created.ID.String())
	return created, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	const op = "auth.login"
	u, err := as.userRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return "", nil, pipeline.Wrap(pipeline.CodeInternal, op, err)
	}
	if u == nil {
		return "", nil, pipeline.NewError(pipeline.CodeUnauthorized, op, errInvalidCredentials.Error(), errInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, pipeline.NewError(pipeline.CodeUnauthorized, op, errInvalidCredentials.Error(), errInvalidCredentials)
	}
	tok, err := as.generateAccessToken(u)
	if err != nil {
		return "", nil, pipeline.Wrap(pipeline.CodeInternal, op, err)
	}
	return tok, u, nil
}

func (as *authService) generateAccessToken(u *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
