package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Blurjp/pathavana/config"
	"github.com/Blurjp/pathavana/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service exposes registration, login and token lifecycle operations.
type Service interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.UserAuth, error)
	Login(ctx context.Context, email, password string) (*types.TokenPair, error)
	LoginWithProvider(ctx context.Context, provider string, providerUser goth.User) (*types.TokenPair, error)
	RefreshSession(ctx context.Context, refreshToken string) (*types.TokenPair, error)
	Logout(ctx context.Context, userID string) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	jwtCfg config.JWTConfig
}

func NewServiceImpl(repo Repository, jwtCfg config.JWTConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, req types.RegisterRequest) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()
	l := s.logger.With(slog.String("method", "Register"), slog.String("email", req.Email))

	user, err := s.repo.CreateUser(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "user creation failed")
		return nil, err
	}

	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID))
	span.SetAttributes(attribute.String("user.id", user.ID))
	return user, nil
}

func (s *ServiceImpl) Login(ctx context.Context, email, password string) (*types.TokenPair, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()
	l := s.logger.With(slog.String("method", "Login"), slog.String("email", email))

	user, err := s.repo.ValidateCredentials(ctx, email, password)
	if err != nil {
		l.WarnContext(ctx, "Credential validation failed", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, err
	}
	return s.issueTokenPair(ctx, user)
}

func (s *ServiceImpl) LoginWithProvider(ctx context.Context, provider string, providerUser goth.User) (*types.TokenPair, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "LoginWithProvider")
	defer span.End()
	l := s.logger.With(slog.String("method", "LoginWithProvider"), slog.String("provider", provider))

	user, err := s.repo.GetOrCreateUserFromProvider(ctx, provider, providerUser)
	if err != nil {
		l.ErrorContext(ctx, "Failed to resolve provider user", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}
	return s.issueTokenPair(ctx, user)
}

func (s *ServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (*types.TokenPair, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "RefreshSession")
	defer span.End()
	l := s.logger.With(slog.String("method", "RefreshSession"))

	userID, err := s.repo.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		l.WarnContext(ctx, "Refresh token rejected", slog.Any("error", err))
		span.SetStatus(codes.Error, "refresh rejected")
		return nil, err
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issueTokenPair(ctx, user)
}

func (s *ServiceImpl) Logout(ctx context.Context, userID string) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Logout")
	defer span.End()

	if err := s.repo.InvalidateAllUserRefreshTokens(ctx, userID); err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.InfoContext(ctx, "User logged out", slog.String("userID", userID))
	return nil
}

// issueTokenPair mints a short-lived HS256 access token and an opaque
// single-use refresh token persisted with its own TTL.
func (s *ServiceImpl) issueTokenPair(ctx context.Context, user *types.UserAuth) (*types.TokenPair, error) {
	now := time.Now()
	claims := types.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTTL)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken := uuid.NewString()
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, now.Add(s.jwtCfg.RefreshTTL)); err != nil {
		return nil, err
	}
	return &types.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
