package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blurjp/pathavana/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewPostgresRepository(mockPool, slog.Default()), mockPool
}

func TestPostgresRepository_CreateSession(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	ctx := context.Background()
	now := time.Now()
	session := types.TravelSession{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		ConversationState: types.StateInitial,
		Status:            types.SessionActive,
		CreatedAt:         now,
		UpdatedAt:         now,
		ExpiresAt:         now.Add(24 * time.Hour),
	}

	mockPool.ExpectExec("INSERT INTO travel_sessions").
		WithArgs(session.ID, session.UserID, session.ConversationState, session.Status,
			session.CreatedAt, session.UpdatedAt, session.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.CreateSession(ctx, session))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_GetSession(t *testing.T) {
	ctx := context.Background()

	t.Run("FoundWithTurns", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		sessionID := uuid.New()
		userID := uuid.New()
		now := time.Now()
		turnID := uuid.New()

		mockPool.ExpectQuery("SELECT id, user_id, conversation_state, status").
			WithArgs(sessionID).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "user_id", "conversation_state", "status", "created_at", "updated_at", "expires_at",
			}).AddRow(sessionID, userID, types.StateDateSelection, types.SessionActive, now, now, now.Add(time.Hour)))

		mockPool.ExpectQuery("SELECT id, role, content, created_at").
			WithArgs(sessionID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "role", "content", "created_at"}).
				AddRow(turnID, types.RoleUser, "Let's go to Rome", now))

		session, err := repo.GetSession(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, types.StateDateSelection, session.ConversationState)
		require.Len(t, session.ConversationHistory, 1)
		assert.Equal(t, "Let's go to Rome", session.ConversationHistory[0].Content)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		sessionID := uuid.New()

		mockPool.ExpectQuery("SELECT id, user_id, conversation_state, status").
			WithArgs(sessionID).
			WillReturnError(pgx.ErrNoRows)

		session, err := repo.GetSession(ctx, sessionID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Nil(t, session)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresRepository_AddTurn(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	ctx := context.Background()
	sessionID := uuid.New()
	turn := types.ChatTurn{
		ID:        uuid.New(),
		Role:      types.RoleUser,
		Content:   "I want to plan a trip",
		Timestamp: time.Now(),
	}

	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO session_turns").
		WithArgs(turn.ID, sessionID, turn.Role, turn.Content, turn.Timestamp).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectExec("UPDATE travel_sessions SET updated_at").
		WithArgs(sessionID, turn.Timestamp).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectCommit()
	mockPool.ExpectRollback()

	assert.NoError(t, repo.AddTurn(ctx, sessionID, turn))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateState(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		sessionID := uuid.New()

		mockPool.ExpectExec("UPDATE travel_sessions").
			WithArgs(sessionID, types.StateHotelSearch).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateState(ctx, sessionID, types.StateHotelSearch))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("MissingSession", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		sessionID := uuid.New()

		mockPool.ExpectExec("UPDATE travel_sessions").
			WithArgs(sessionID, types.StateHotelSearch).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.UpdateState(ctx, sessionID, types.StateHotelSearch), ErrSessionNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresRepository_CloseSession(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	ctx := context.Background()
	sessionID := uuid.New()

	mockPool.ExpectExec("UPDATE travel_sessions").
		WithArgs(sessionID, types.SessionClosed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.CloseSession(ctx, sessionID))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_ExpireSessions(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	ctx := context.Background()

	mockPool.ExpectExec("UPDATE travel_sessions").
		WithArgs(types.SessionExpired, types.SessionActive, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	count, err := repo.ExpireSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
