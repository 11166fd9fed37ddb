package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Blurjp/pathavana/internal/api/hints"
	"github.com/Blurjp/pathavana/internal/types"
)

type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) CreateSession(ctx context.Context, session types.TravelSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepo) GetSession(ctx context.Context, sessionID uuid.UUID) (*types.TravelSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TravelSession), args.Error(1)
}

func (m *MockSessionRepo) AddTurn(ctx context.Context, sessionID uuid.UUID, turn types.ChatTurn) error {
	args := m.Called(ctx, sessionID, turn)
	return args.Error(0)
}

func (m *MockSessionRepo) UpdateState(ctx context.Context, sessionID uuid.UUID, state types.ConversationState) error {
	args := m.Called(ctx, sessionID, state)
	return args.Error(0)
}

func (m *MockSessionRepo) ListUserSessions(ctx context.Context, userID uuid.UUID) ([]types.TravelSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.TravelSession), args.Error(1)
}

func (m *MockSessionRepo) CloseSession(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepo) ExpireSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockAssistantClient struct {
	mock.Mock
}

func (m *MockAssistantClient) GenerateTripReply(ctx context.Context, history []types.ChatTurn, guidance types.Guidance) (string, error) {
	args := m.Called(ctx, history, guidance)
	return args.String(0), args.Error(1)
}

func newTestService(repo *MockSessionRepo, ai *MockAssistantClient) *ServiceImpl {
	logger := slog.Default()
	kb := hints.NewDestinationKB()
	pipeline := hints.NewPipeline(
		hints.NewEntityExtractor(kb, logger),
		hints.NewStateTracker(),
		hints.NewGenerator(kb, logger, 0, nil),
		logger,
	)
	return NewService(repo, pipeline, ai, nil, time.Hour, logger)
}

func TestStartSession(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockSessionRepo)
		mockAI := new(MockAssistantClient)
		service := newTestService(mockRepo, mockAI)

		mockRepo.On("CreateSession", mock.Anything, mock.AnythingOfType("types.TravelSession")).Return(nil).Once()
		mockRepo.On("AddTurn", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("types.ChatTurn")).Return(nil).Twice()
		mockRepo.On("UpdateState", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("types.ConversationState")).Return(nil).Maybe()
		mockAI.On("GenerateTripReply", mock.Anything, mock.Anything, mock.Anything).Return("Paris in June sounds lovely.", nil).Once()

		resp, err := service.StartSession(ctx, userID, "I want to plan a romantic trip to Paris in June")

		require.NoError(t, err)
		assert.True(t, resp.IsNewSession)
		assert.Equal(t, "Paris in June sounds lovely.", resp.Message)
		assert.False(t, resp.Fallback)
		assert.LessOrEqual(t, len(resp.Hints), hints.DefaultMaxHints)
		assert.Contains(t, types.ValidStates, resp.ConversationState)

		destinations := make([]string, 0, 1)
		for _, e := range resp.ExtractedEntities {
			if e.Type == types.EntityDestination {
				destinations = append(destinations, e.Value)
			}
		}
		assert.Equal(t, []string{"Paris"}, destinations)
		mockRepo.AssertExpectations(t)
		mockAI.AssertExpectations(t)
	})

	t.Run("CreateFails", func(t *testing.T) {
		mockRepo := new(MockSessionRepo)
		mockAI := new(MockAssistantClient)
		service := newTestService(mockRepo, mockAI)

		mockRepo.On("CreateSession", mock.Anything, mock.AnythingOfType("types.TravelSession")).Return(errors.New("db down")).Once()

		resp, err := service.StartSession(ctx, userID, "hello")
		assert.Error(t, err)
		assert.Nil(t, resp)
		mockRepo.AssertExpectations(t)
	})
}

func TestChat(t *testing.T) {
	ctx := context.Background()

	t.Run("LLMFailureFallsBackToTemplate", func(t *testing.T) {
		mockRepo := new(MockSessionRepo)
		mockAI := new(MockAssistantClient)
		service := newTestService(mockRepo, mockAI)
		sessionID := uuid.New()
		userID := uuid.New()
		session := &types.TravelSession{
			ID:                sessionID,
			UserID:            userID,
			ConversationState: types.StateInitial,
			Status:            types.SessionActive,
		}

		mockRepo.On("GetSession", mock.Anything, sessionID).Return(session, nil).Once()
		mockRepo.On("AddTurn", mock.Anything, sessionID, mock.AnythingOfType("types.ChatTurn")).Return(nil).Twice()
		mockRepo.On("UpdateState", mock.Anything, sessionID, mock.AnythingOfType("types.ConversationState")).Return(nil).Maybe()
		mockAI.On("GenerateTripReply", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("provider unavailable")).Once()

		resp, err := service.Chat(ctx, userID, sessionID, "I want to go to Tokyo")

		require.NoError(t, err)
		assert.True(t, resp.Fallback)
		assert.Equal(t, fallbackReplies[resp.ConversationState], resp.Message)
		mockRepo.AssertExpectations(t)
		mockAI.AssertExpectations(t)
	})

	t.Run("ClosedSessionRejected", func(t *testing.T) {
		mockRepo := new(MockSessionRepo)
		mockAI := new(MockAssistantClient)
		service := newTestService(mockRepo, mockAI)
		sessionID := uuid.New()
		userID := uuid.New()
		session := &types.TravelSession{
			ID:     sessionID,
			UserID: userID,
			Status: types.SessionClosed,
		}

		mockRepo.On("GetSession", mock.Anything, sessionID).Return(session, nil).Once()

		resp, err := service.Chat(ctx, userID, sessionID, "anyone there?")
		assert.ErrorIs(t, err, ErrSessionClosed)
		assert.Nil(t, resp)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownSession", func(t *testing.T) {
		mockRepo := new(MockSessionRepo)
		mockAI := new(MockAssistantClient)
		service := newTestService(mockRepo, mockAI)
		sessionID := uuid.New()

		mockRepo.On("GetSession", mock.Anything, sessionID).Return(nil, ErrSessionNotFound).Once()

		resp, err := service.Chat(ctx, uuid.New(), sessionID, "hello")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Nil(t, resp)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ForeignSessionHidden", func(t *testing.T) {
		mockRepo := new(MockSessionRepo)
		mockAI := new(MockAssistantClient)
		service := newTestService(mockRepo, mockAI)
		sessionID := uuid.New()
		session := &types.TravelSession{
			ID:     sessionID,
			UserID: uuid.New(),
			Status: types.SessionActive,
		}

		mockRepo.On("GetSession", mock.Anything, sessionID).Return(session, nil).Once()

		// A different authenticated user gets not-found, not the session.
		resp, err := service.Chat(ctx, uuid.New(), sessionID, "hello")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Nil(t, resp)
		mockRepo.AssertNotCalled(t, "AddTurn")
	})

	t.Run("StateAdvancesAcrossTurns", func(t *testing.T) {
		mockRepo := new(MockSessionRepo)
		mockAI := new(MockAssistantClient)
		service := newTestService(mockRepo, mockAI)
		sessionID := uuid.New()
		userID := uuid.New()
		session := &types.TravelSession{
			ID:                sessionID,
			UserID:            userID,
			ConversationState: types.StateInitial,
			Status:            types.SessionActive,
		}

		mockRepo.On("GetSession", mock.Anything, sessionID).Return(session, nil).Once()
		mockRepo.On("AddTurn", mock.Anything, sessionID, mock.AnythingOfType("types.ChatTurn")).Return(nil)
		mockRepo.On("UpdateState", mock.Anything, sessionID, mock.AnythingOfType("types.ConversationState")).Return(nil)
		mockAI.On("GenerateTripReply", mock.Anything, mock.Anything, mock.Anything).Return("Sure.", nil)

		// Destination without a date lands on date selection.
		resp, err := service.Chat(ctx, userID, sessionID, "Let's go to Rome")
		require.NoError(t, err)
		assert.Equal(t, types.StateDateSelection, resp.ConversationState)

		// Adding the date moves the planning flow forward.
		resp, err = service.Chat(ctx, userID, sessionID, "Sometime in October")
		require.NoError(t, err)
		assert.Equal(t, types.StateHotelSearch, resp.ConversationState)
	})

	t.Run("ConcurrentTurnsShareNoSessionState", func(t *testing.T) {
		mockRepo := new(MockSessionRepo)
		mockAI := new(MockAssistantClient)
		service := newTestService(mockRepo, mockAI)
		sessionID := uuid.New()
		userID := uuid.New()
		session := &types.TravelSession{
			ID:                sessionID,
			UserID:            userID,
			ConversationState: types.StateInitial,
			Status:            types.SessionActive,
		}

		mockRepo.On("GetSession", mock.Anything, sessionID).Return(session, nil)
		mockRepo.On("AddTurn", mock.Anything, sessionID, mock.AnythingOfType("types.ChatTurn")).Return(nil)
		mockRepo.On("UpdateState", mock.Anything, sessionID, mock.AnythingOfType("types.ConversationState")).Return(nil)
		mockAI.On("GenerateTripReply", mock.Anything, mock.Anything, mock.Anything).Return("Noted.", nil)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := service.Chat(ctx, userID, sessionID, "Let's go to Rome")
				assert.NoError(t, err)
				assert.NotNil(t, resp)
			}()
		}
		wg.Wait()

		// Each turn worked on its own copy; the struct handed out by the
		// repository stays untouched.
		assert.Empty(t, session.ConversationHistory)
		assert.Equal(t, types.StateInitial, session.ConversationState)
	})
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockSessionRepo)
		service := newTestService(mockRepo, new(MockAssistantClient))
		session := &types.TravelSession{ID: sessionID, UserID: userID, Status: types.SessionActive}

		mockRepo.On("GetSession", mock.Anything, sessionID).Return(session, nil).Once()
		mockRepo.On("CloseSession", mock.Anything, sessionID).Return(nil).Once()

		assert.NoError(t, service.EndSession(ctx, userID, sessionID))
		mockRepo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockSessionRepo)
		service := newTestService(mockRepo, new(MockAssistantClient))

		mockRepo.On("GetSession", mock.Anything, sessionID).Return(nil, ErrSessionNotFound).Once()

		assert.ErrorIs(t, service.EndSession(ctx, userID, sessionID), ErrSessionNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ForeignSessionHidden", func(t *testing.T) {
		mockRepo := new(MockSessionRepo)
		service := newTestService(mockRepo, new(MockAssistantClient))
		session := &types.TravelSession{ID: sessionID, UserID: uuid.New(), Status: types.SessionActive}

		mockRepo.On("GetSession", mock.Anything, sessionID).Return(session, nil).Once()

		assert.ErrorIs(t, service.EndSession(ctx, userID, sessionID), ErrSessionNotFound)
		mockRepo.AssertNotCalled(t, "CloseSession")
	})
}

func TestGetSessionUsesCache(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSessionRepo)
	service := newTestService(mockRepo, new(MockAssistantClient))
	sessionID := uuid.New()
	userID := uuid.New()
	session := &types.TravelSession{ID: sessionID, UserID: userID, Status: types.SessionActive}

	// Single repo hit; the second read is served from the hot cache.
	mockRepo.On("GetSession", mock.Anything, sessionID).Return(session, nil).Once()

	first, err := service.GetSession(ctx, userID, sessionID)
	require.NoError(t, err)
	second, err := service.GetSession(ctx, userID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	mockRepo.AssertExpectations(t)
}

func TestGetSessionHiddenFromOtherUsers(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSessionRepo)
	service := newTestService(mockRepo, new(MockAssistantClient))
	sessionID := uuid.New()
	session := &types.TravelSession{ID: sessionID, UserID: uuid.New(), Status: types.SessionActive}

	mockRepo.On("GetSession", mock.Anything, sessionID).Return(session, nil).Once()

	got, err := service.GetSession(ctx, uuid.New(), sessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, got)
}

func TestGetSessionReturnsPrivateCopy(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockSessionRepo)
	service := newTestService(mockRepo, new(MockAssistantClient))
	sessionID := uuid.New()
	userID := uuid.New()
	session := &types.TravelSession{
		ID:                  sessionID,
		UserID:              userID,
		ConversationState:   types.StateInitial,
		Status:              types.SessionActive,
		ConversationHistory: []types.ChatTurn{{ID: uuid.New(), Role: types.RoleUser, Content: "hi"}},
	}

	mockRepo.On("GetSession", mock.Anything, sessionID).Return(session, nil).Once()

	first, err := service.GetSession(ctx, userID, sessionID)
	require.NoError(t, err)

	// Mutating the returned struct must not leak into the cached copy.
	first.ConversationHistory = append(first.ConversationHistory, types.ChatTurn{Role: types.RoleAssistant, Content: "hello"})
	first.ConversationState = types.StateCompleted

	second, err := service.GetSession(ctx, userID, sessionID)
	require.NoError(t, err)
	assert.Len(t, second.ConversationHistory, 1)
	assert.Equal(t, types.StateInitial, second.ConversationState)
	mockRepo.AssertExpectations(t)
}
