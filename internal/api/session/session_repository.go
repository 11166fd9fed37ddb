package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Blurjp/pathavana/internal/api"
	"github.com/Blurjp/pathavana/internal/types"
)

// ErrSessionNotFound is returned when a session ID resolves to nothing.
var ErrSessionNotFound = errors.New("travel session not found")

var _ Repository = (*PostgresRepository)(nil)

// Repository is the persistence contract for travel sessions and their turns.
type Repository interface {
	CreateSession(ctx context.Context, session types.TravelSession) error
	GetSession(ctx context.Context, sessionID uuid.UUID) (*types.TravelSession, error)
	AddTurn(ctx context.Context, sessionID uuid.UUID, turn types.ChatTurn) error
	UpdateState(ctx context.Context, sessionID uuid.UUID, state types.ConversationState) error
	ListUserSessions(ctx context.Context, userID uuid.UUID) ([]types.TravelSession, error)
	CloseSession(ctx context.Context, sessionID uuid.UUID) error
	ExpireSessions(ctx context.Context) (int64, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool api.PgxPool
}

func NewPostgresRepository(pgpool api.PgxPool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRepository) CreateSession(ctx context.Context, session types.TravelSession) error {
	query := `
        INSERT INTO travel_sessions (
            id, user_id, conversation_state, status, created_at, updated_at, expires_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.pgpool.Exec(ctx, query,
		session.ID, session.UserID, session.ConversationState, session.Status,
		session.CreatedAt, session.UpdatedAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert travel session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetSession(ctx context.Context, sessionID uuid.UUID) (*types.TravelSession, error) {
	query := `
        SELECT id, user_id, conversation_state, status, created_at, updated_at, expires_at
        FROM travel_sessions
        WHERE id = $1
    `
	var s types.TravelSession
	err := r.pgpool.QueryRow(ctx, query, sessionID).Scan(
		&s.ID, &s.UserID, &s.ConversationState, &s.Status,
		&s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find travel session: %w", err)
	}

	turns, err := r.sessionTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.ConversationHistory = turns
	return &s, nil
}

func (r *PostgresRepository) sessionTurns(ctx context.Context, sessionID uuid.UUID) ([]types.ChatTurn, error) {
	query := `
        SELECT id, role, content, created_at
        FROM session_turns
        WHERE session_id = $1
        ORDER BY created_at ASC, id ASC
    `
	rows, err := r.pgpool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session turns: %w", err)
	}
	defer rows.Close()

	var turns []types.ChatTurn
	for rows.Next() {
		var t types.ChatTurn
		if err := rows.Scan(&t.ID, &t.Role, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan session turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session turns: %w", err)
	}
	return turns, nil
}

func (r *PostgresRepository) AddTurn(ctx context.Context, sessionID uuid.UUID, turn types.ChatTurn) error {
	tx, err := r.pgpool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO session_turns (id, session_id, role, content, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	if _, err = tx.Exec(ctx, query, turn.ID, sessionID, turn.Role, turn.Content, turn.Timestamp); err != nil {
		return fmt.Errorf("failed to insert session turn: %w", err)
	}

	touch := `UPDATE travel_sessions SET updated_at = $2 WHERE id = $1`
	if _, err = tx.Exec(ctx, touch, sessionID, turn.Timestamp); err != nil {
		return fmt.Errorf("failed to touch travel session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateState(ctx context.Context, sessionID uuid.UUID, state types.ConversationState) error {
	query := `
        UPDATE travel_sessions
        SET conversation_state = $2, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query, sessionID, state)
	if err != nil {
		return fmt.Errorf("failed to update conversation state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *PostgresRepository) ListUserSessions(ctx context.Context, userID uuid.UUID) ([]types.TravelSession, error) {
	query := `
        SELECT id, user_id, conversation_state, status, created_at, updated_at, expires_at
        FROM travel_sessions
        WHERE user_id = $1 AND status = $2
        ORDER BY updated_at DESC
    `
	rows, err := r.pgpool.Query(ctx, query, userID, types.SessionActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query user sessions: %w", err)
	}
	defer rows.Close()

	var sessions []types.TravelSession
	for rows.Next() {
		var s types.TravelSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.ConversationState, &s.Status,
			&s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan travel session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user sessions: %w", err)
	}
	return sessions, nil
}

func (r *PostgresRepository) CloseSession(ctx context.Context, sessionID uuid.UUID) error {
	query := `
        UPDATE travel_sessions
        SET status = $2, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query, sessionID, types.SessionClosed)
	if err != nil {
		return fmt.Errorf("failed to close travel session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ExpireSessions marks active sessions past their expiry as expired and
// returns how many were affected. Run periodically from main.
func (r *PostgresRepository) ExpireSessions(ctx context.Context) (int64, error) {
	query := `
        UPDATE travel_sessions
        SET status = $1, updated_at = NOW()
        WHERE status = $2 AND expires_at < $3
    `
	tag, err := r.pgpool.Exec(ctx, query, types.SessionExpired, types.SessionActive, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire travel sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
