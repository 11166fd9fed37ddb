package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/markbates/goth"
	"golang.org/x/crypto/bcrypt"

	"github.com/Blurjp/pathavana/internal/api"
	"github.com/Blurjp/pathavana/internal/types"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRefreshInvalid     = errors.New("refresh token invalid or expired")
)

var _ Repository = (*PostgresAuthRepo)(nil)

// Repository is the persistence contract for users and refresh tokens.
type Repository interface {
	CreateUser(ctx context.Context, username, email, password string) (*types.UserAuth, error)
	GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error)
	GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error)
	GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (*types.UserAuth, error)
	ValidateCredentials(ctx context.Context, email, password string) (*types.UserAuth, error)
	StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	ConsumeRefreshToken(ctx context.Context, token string) (string, error)
	InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool api.PgxPool
}

func NewPostgresAuthRepo(pgpool api.PgxPool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, username, email, password string) (*types.UserAuth, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var exists bool
	if err := r.pgpool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user := types.UserAuth{
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
		Role:     "user",
	}
	query := `
        INSERT INTO users (id, username, email, password_hash, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at
    `
	if err := r.pgpool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, string(hashed), user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	return r.getUser(ctx, "email", email)
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error) {
	return r.getUser(ctx, "id", userID)
}

func (r *PostgresAuthRepo) getUser(ctx context.Context, column, value string) (*types.UserAuth, error) {
	query := fmt.Sprintf(`
        SELECT id, username, email, password_hash, role, COALESCE(provider, ''), created_at, updated_at
        FROM users WHERE %s = $1
    `, column)
	var user types.UserAuth
	err := r.pgpool.QueryRow(ctx, query, value).Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.Role,
		&user.Provider, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// GetOrCreateUserFromProvider provisions an account for an OAuth login; the
// password column stays empty for provider accounts.
func (r *PostgresAuthRepo) GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (*types.UserAuth, error) {
	user, err := r.GetUserByEmail(ctx, providerUser.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	created := types.UserAuth{
		ID:       uuid.NewString(),
		Username: providerUser.NickName,
		Email:    providerUser.Email,
		Role:     "user",
		Provider: provider,
	}
	if created.Username == "" {
		created.Username = providerUser.Name
	}
	query := `
        INSERT INTO users (id, username, email, password_hash, role, provider)
        VALUES ($1, $2, $3, '', $4, $5)
        RETURNING created_at, updated_at
    `
	if err := r.pgpool.QueryRow(ctx, query,
		created.ID, created.Username, created.Email, created.Role, created.Provider,
	).Scan(&created.CreatedAt, &created.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to provision provider user: %w", err)
	}
	return &created, nil
}

func (r *PostgresAuthRepo) ValidateCredentials(ctx context.Context, email, password string) (*types.UserAuth, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (r *PostgresAuthRepo) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.pgpool.Exec(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)",
		userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// ConsumeRefreshToken validates a refresh token, deletes it (single use) and
// returns the owning user ID.
func (r *PostgresAuthRepo) ConsumeRefreshToken(ctx context.Context, token string) (string, error) {
	var userID string
	var expiresAt time.Time
	err := r.pgpool.QueryRow(ctx,
		"DELETE FROM refresh_tokens WHERE token = $1 RETURNING user_id, expires_at",
		token).Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrRefreshInvalid
		}
		return "", fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if time.Now().After(expiresAt) {
		return "", ErrRefreshInvalid
	}
	return userID, nil
}

func (r *PostgresAuthRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.pgpool.Exec(ctx, "DELETE FROM refresh_tokens WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to invalidate refresh tokens: %w", err)
	}
	return nil
}
