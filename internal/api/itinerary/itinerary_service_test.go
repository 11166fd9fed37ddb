package itinerary

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Blurjp/pathavana/internal/api/session"
	"github.com/Blurjp/pathavana/internal/types"
)

type MockItineraryRepo struct {
	mock.Mock
}

func (m *MockItineraryRepo) CreateItem(ctx context.Context, item types.ItineraryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItineraryRepo) GetItem(ctx context.Context, itemID uuid.UUID) (*types.ItineraryItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ItineraryItem), args.Error(1)
}

func (m *MockItineraryRepo) ListSessionItems(ctx context.Context, sessionID uuid.UUID) ([]types.ItineraryItem, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ItineraryItem), args.Error(1)
}

func (m *MockItineraryRepo) ListSessionItemsByKind(ctx context.Context, sessionID uuid.UUID, kind types.ItineraryItemKind) ([]types.ItineraryItem, error) {
	args := m.Called(ctx, sessionID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ItineraryItem), args.Error(1)
}

func (m *MockItineraryRepo) UpdateItem(ctx context.Context, itemID uuid.UUID, params types.UpdateItineraryItemParams) error {
	args := m.Called(ctx, itemID, params)
	return args.Error(0)
}

func (m *MockItineraryRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

type MockSessionVerifier struct {
	mock.Mock
}

func (m *MockSessionVerifier) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.TravelSession, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TravelSession), args.Error(1)
}

func cost(v float64) *float64 { return &v }

// ownedSession wires a verifier that accepts the user/session pair.
func ownedSession(verifier *MockSessionVerifier, userID, sessionID uuid.UUID) {
	verifier.On("GetSession", mock.Anything, userID, sessionID).
		Return(&types.TravelSession{ID: sessionID, UserID: userID, Status: types.SessionActive}, nil)
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockItineraryRepo)
		verifier := new(MockSessionVerifier)
		service := NewService(mockRepo, verifier, slog.Default())
		ownedSession(verifier, userID, sessionID)

		mockRepo.On("CreateItem", mock.Anything, mock.AnythingOfType("types.ItineraryItem")).Return(nil).Once()

		item, err := service.AddItem(ctx, userID, sessionID, types.CreateItineraryItemRequest{
			Day:   2,
			Kind:  types.ItemHotel,
			Title: "Hotel Le Marais",
			Cost:  cost(180),
		})
		require.NoError(t, err)
		assert.Equal(t, sessionID, item.SessionID)
		assert.Equal(t, 2, item.Day)
		assert.NotEqual(t, uuid.Nil, item.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RejectsInvalidInput", func(t *testing.T) {
		mockRepo := new(MockItineraryRepo)
		verifier := new(MockSessionVerifier)
		service := NewService(mockRepo, verifier, slog.Default())

		cases := []types.CreateItineraryItemRequest{
			{Day: 1, Kind: types.ItemHotel},             // missing title
			{Day: 0, Kind: types.ItemHotel, Title: "x"}, // day out of range
			{Day: 1, Kind: "cruise", Title: "x"},        // unknown kind
		}
		for _, req := range cases {
			item, err := service.AddItem(ctx, userID, sessionID, req)
			assert.ErrorIs(t, err, ErrInvalidItem)
			assert.Nil(t, item)
		}
		mockRepo.AssertNotCalled(t, "CreateItem")
	})

	t.Run("RejectsInvertedTimeRange", func(t *testing.T) {
		mockRepo := new(MockItineraryRepo)
		verifier := new(MockSessionVerifier)
		service := NewService(mockRepo, verifier, slog.Default())

		start := time.Now()
		end := start.Add(-time.Hour)
		item, err := service.AddItem(ctx, userID, sessionID, types.CreateItineraryItemRequest{
			Day: 1, Kind: types.ItemActivity, Title: "Louvre", StartTime: &start, EndTime: &end,
		})
		assert.ErrorIs(t, err, ErrInvalidItem)
		assert.Nil(t, item)
	})

	t.Run("ForeignSessionHidden", func(t *testing.T) {
		mockRepo := new(MockItineraryRepo)
		verifier := new(MockSessionVerifier)
		service := NewService(mockRepo, verifier, slog.Default())

		verifier.On("GetSession", mock.Anything, userID, sessionID).Return(nil, session.ErrSessionNotFound).Once()

		item, err := service.AddItem(ctx, userID, sessionID, types.CreateItineraryItemRequest{
			Day: 1, Kind: types.ItemHotel, Title: "Hotel Le Marais",
		})
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		assert.Nil(t, item)
		mockRepo.AssertNotCalled(t, "CreateItem")
	})
}

func TestGetItinerary(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()
	userID := uuid.New()
	mockRepo := new(MockItineraryRepo)
	verifier := new(MockSessionVerifier)
	service := NewService(mockRepo, verifier, slog.Default())
	ownedSession(verifier, userID, sessionID)

	items := []types.ItineraryItem{
		{ID: uuid.New(), SessionID: sessionID, Day: 2, Kind: types.ItemActivity, Title: "Louvre"},
		{ID: uuid.New(), SessionID: sessionID, Day: 1, Kind: types.ItemFlight, Title: "Outbound flight"},
		{ID: uuid.New(), SessionID: sessionID, Day: 1, Kind: types.ItemHotel, Title: "Check in"},
	}
	mockRepo.On("ListSessionItems", mock.Anything, sessionID).Return(items, nil).Once()

	days, err := service.GetItinerary(ctx, userID, sessionID)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].Day)
	assert.Len(t, days[0].Items, 2)
	assert.Equal(t, 2, days[1].Day)
	assert.Len(t, days[1].Items, 1)
	mockRepo.AssertExpectations(t)
}

func TestGetSummary(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()
	userID := uuid.New()
	mockRepo := new(MockItineraryRepo)
	verifier := new(MockSessionVerifier)
	service := NewService(mockRepo, verifier, slog.Default())
	ownedSession(verifier, userID, sessionID)

	mockRepo.On("ListSessionItemsByKind", mock.Anything, sessionID, types.ItemFlight).
		Return([]types.ItineraryItem{{Cost: cost(420)}}, nil).Once()
	mockRepo.On("ListSessionItemsByKind", mock.Anything, sessionID, types.ItemHotel).
		Return([]types.ItineraryItem{{Cost: cost(180)}, {Cost: cost(180)}}, nil).Once()
	mockRepo.On("ListSessionItemsByKind", mock.Anything, sessionID, types.ItemActivity).
		Return([]types.ItineraryItem{{Cost: nil}}, nil).Once()

	summary, err := service.GetSummary(ctx, userID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Flights)
	assert.Equal(t, 2, summary.Hotels)
	assert.Equal(t, 1, summary.Activities)
	assert.InDelta(t, 780.0, summary.TotalCost, 0.001)
	mockRepo.AssertExpectations(t)
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()
	userID := uuid.New()
	itemID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockItineraryRepo)
		verifier := new(MockSessionVerifier)
		service := NewService(mockRepo, verifier, slog.Default())
		ownedSession(verifier, userID, sessionID)
		title := "Musee d'Orsay"
		params := types.UpdateItineraryItemParams{Title: &title}
		updated := &types.ItineraryItem{ID: itemID, SessionID: sessionID, Title: title}

		mockRepo.On("GetItem", mock.Anything, itemID).Return(updated, nil)
		mockRepo.On("UpdateItem", mock.Anything, itemID, params).Return(nil).Once()

		item, err := service.UpdateItem(ctx, userID, sessionID, itemID, params)
		require.NoError(t, err)
		assert.Equal(t, title, item.Title)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockItineraryRepo)
		verifier := new(MockSessionVerifier)
		service := NewService(mockRepo, verifier, slog.Default())
		ownedSession(verifier, userID, sessionID)
		title := "x"
		params := types.UpdateItineraryItemParams{Title: &title}

		mockRepo.On("GetItem", mock.Anything, itemID).Return(nil, ErrItemNotFound).Once()

		item, err := service.UpdateItem(ctx, userID, sessionID, itemID, params)
		assert.ErrorIs(t, err, ErrItemNotFound)
		assert.Nil(t, item)
		mockRepo.AssertNotCalled(t, "UpdateItem")
	})

	t.Run("ItemFromAnotherSessionHidden", func(t *testing.T) {
		mockRepo := new(MockItineraryRepo)
		verifier := new(MockSessionVerifier)
		service := NewService(mockRepo, verifier, slog.Default())
		ownedSession(verifier, userID, sessionID)
		title := "x"
		params := types.UpdateItineraryItemParams{Title: &title}
		foreign := &types.ItineraryItem{ID: itemID, SessionID: uuid.New(), Title: "theirs"}

		mockRepo.On("GetItem", mock.Anything, itemID).Return(foreign, nil).Once()

		item, err := service.UpdateItem(ctx, userID, sessionID, itemID, params)
		assert.ErrorIs(t, err, ErrItemNotFound)
		assert.Nil(t, item)
		mockRepo.AssertNotCalled(t, "UpdateItem")
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.New()
	userID := uuid.New()
	itemID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockItineraryRepo)
		verifier := new(MockSessionVerifier)
		service := NewService(mockRepo, verifier, slog.Default())
		ownedSession(verifier, userID, sessionID)

		mockRepo.On("GetItem", mock.Anything, itemID).
			Return(&types.ItineraryItem{ID: itemID, SessionID: sessionID}, nil).Once()
		mockRepo.On("DeleteItem", mock.Anything, itemID).Return(nil).Once()

		assert.NoError(t, service.RemoveItem(ctx, userID, sessionID, itemID))
		mockRepo.AssertExpectations(t)
	})

	t.Run("ItemFromAnotherSessionHidden", func(t *testing.T) {
		mockRepo := new(MockItineraryRepo)
		verifier := new(MockSessionVerifier)
		service := NewService(mockRepo, verifier, slog.Default())
		ownedSession(verifier, userID, sessionID)

		mockRepo.On("GetItem", mock.Anything, itemID).
			Return(&types.ItineraryItem{ID: itemID, SessionID: uuid.New()}, nil).Once()

		assert.ErrorIs(t, service.RemoveItem(ctx, userID, sessionID, itemID), ErrItemNotFound)
		mockRepo.AssertNotCalled(t, "DeleteItem")
	})
}
