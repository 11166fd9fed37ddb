package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Blurjp/pathavana/internal/types"
)

// ErrInvalidItem is returned for requests that fail validation.
var ErrInvalidItem = errors.New("invalid itinerary item")

var _ Service = (*ServiceImpl)(nil)

// SessionVerifier confirms a session exists and belongs to the requesting
// user before itinerary operations touch its plan. Satisfied by the session
// service; a foreign or unknown session surfaces as not-found.
type SessionVerifier interface {
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.TravelSession, error)
}

// Service is the business logic contract for session itineraries. Every
// operation is scoped to the authenticated owner of the session.
type Service interface {
	AddItem(ctx context.Context, userID, sessionID uuid.UUID, req types.CreateItineraryItemRequest) (*types.ItineraryItem, error)
	GetItinerary(ctx context.Context, userID, sessionID uuid.UUID) ([]types.ItineraryDay, error)
	GetSummary(ctx context.Context, userID, sessionID uuid.UUID) (*types.ItinerarySummary, error)
	UpdateItem(ctx context.Context, userID, sessionID, itemID uuid.UUID, params types.UpdateItineraryItemParams) (*types.ItineraryItem, error)
	RemoveItem(ctx context.Context, userID, sessionID, itemID uuid.UUID) error
}

type ServiceImpl struct {
	logger   *slog.Logger
	repo     Repository
	sessions SessionVerifier
}

func NewService(repo Repository, sessions SessionVerifier, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		sessions: sessions,
	}
}

var validKinds = map[types.ItineraryItemKind]struct{}{
	types.ItemFlight:   {},
	types.ItemHotel:    {},
	types.ItemActivity: {},
}

func (s *ServiceImpl) AddItem(ctx context.Context, userID, sessionID uuid.UUID, req types.CreateItineraryItemRequest) (*types.ItineraryItem, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "AddItem", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
		attribute.String("item.kind", string(req.Kind)),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "AddItem"), slog.String("sessionID", sessionID.String()))

	if req.Title == "" || req.Day < 1 {
		return nil, fmt.Errorf("%w: title required and day must be >= 1", ErrInvalidItem)
	}
	if _, ok := validKinds[req.Kind]; !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidItem, req.Kind)
	}
	if req.StartTime != nil && req.EndTime != nil && req.EndTime.Before(*req.StartTime) {
		return nil, fmt.Errorf("%w: end_time before start_time", ErrInvalidItem)
	}
	if err := s.verifySession(ctx, userID, sessionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session access denied")
		return nil, err
	}

	now := time.Now()
	item := types.ItineraryItem{
		ID:        uuid.New(),
		SessionID: sessionID,
		Day:       req.Day,
		Kind:      req.Kind,
		Title:     req.Title,
		Location:  req.Location,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Cost:      req.Cost,
		Currency:  req.Currency,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		l.ErrorContext(ctx, "Failed to add itinerary item", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to add itinerary item")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Itinerary item added")
	return &item, nil
}

// GetItinerary returns the session's plan grouped by day.
func (s *ServiceImpl) GetItinerary(ctx context.Context, userID, sessionID uuid.UUID) ([]types.ItineraryDay, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItinerary", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	if err := s.verifySession(ctx, userID, sessionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session access denied")
		return nil, err
	}

	items, err := s.repo.ListSessionItems(ctx, sessionID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list itinerary items", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list itinerary items")
		return nil, err
	}

	byDay := make(map[int][]types.ItineraryItem)
	for _, item := range items {
		byDay[item.Day] = append(byDay[item.Day], item)
	}
	days := make([]types.ItineraryDay, 0, len(byDay))
	for day, dayItems := range byDay {
		days = append(days, types.ItineraryDay{Day: day, Items: dayItems})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })

	span.SetStatus(codes.Ok, "Itinerary listed")
	return days, nil
}

// GetSummary aggregates per-kind counts and total cost. The three kind
// queries are independent and run concurrently.
func (s *ServiceImpl) GetSummary(ctx context.Context, userID, sessionID uuid.UUID) (*types.ItinerarySummary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetSummary", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	if err := s.verifySession(ctx, userID, sessionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session access denied")
		return nil, err
	}

	var flights, hotels, activities []types.ItineraryItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		flights, err = s.repo.ListSessionItemsByKind(gctx, sessionID, types.ItemFlight)
		return err
	})
	g.Go(func() error {
		var err error
		hotels, err = s.repo.ListSessionItemsByKind(gctx, sessionID, types.ItemHotel)
		return err
	})
	g.Go(func() error {
		var err error
		activities, err = s.repo.ListSessionItemsByKind(gctx, sessionID, types.ItemActivity)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to summarize itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to summarize itinerary")
		return nil, err
	}

	summary := types.ItinerarySummary{
		SessionID:  sessionID,
		Flights:    len(flights),
		Hotels:     len(hotels),
		Activities: len(activities),
	}
	for _, group := range [][]types.ItineraryItem{flights, hotels, activities} {
		for _, item := range group {
			if item.Cost != nil {
				summary.TotalCost += *item.Cost
			}
		}
	}
	span.SetStatus(codes.Ok, "Itinerary summarized")
	return &summary, nil
}

func (s *ServiceImpl) UpdateItem(ctx context.Context, userID, sessionID, itemID uuid.UUID, params types.UpdateItineraryItemParams) (*types.ItineraryItem, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "UpdateItem", trace.WithAttributes(
		attribute.String("item.id", itemID.String()),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "UpdateItem"), slog.String("itemID", itemID.String()))

	if params.Day != nil && *params.Day < 1 {
		return nil, fmt.Errorf("%w: day must be >= 1", ErrInvalidItem)
	}
	if err := s.ownedItem(ctx, userID, sessionID, itemID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Item access denied")
		return nil, err
	}
	if err := s.repo.UpdateItem(ctx, itemID, params); err != nil {
		l.ErrorContext(ctx, "Failed to update itinerary item", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update itinerary item")
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	span.SetStatus(codes.Ok, "Itinerary item updated")
	return item, nil
}

func (s *ServiceImpl) RemoveItem(ctx context.Context, userID, sessionID, itemID uuid.UUID) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "RemoveItem", trace.WithAttributes(
		attribute.String("item.id", itemID.String()),
	))
	defer span.End()

	if err := s.ownedItem(ctx, userID, sessionID, itemID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Item access denied")
		return err
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove itinerary item", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to remove itinerary item")
		return err
	}
	span.SetStatus(codes.Ok, "Itinerary item removed")
	return nil
}

// verifySession passes through the session service's owner scoping; foreign
// and unknown sessions both come back as session not-found.
func (s *ServiceImpl) verifySession(ctx context.Context, userID, sessionID uuid.UUID) error {
	_, err := s.sessions.GetSession(ctx, userID, sessionID)
	return err
}

// ownedItem checks the session's owner and that the item belongs to that
// session. An item addressed through someone else's session reports
// ErrItemNotFound rather than revealing it exists.
func (s *ServiceImpl) ownedItem(ctx context.Context, userID, sessionID, itemID uuid.UUID) error {
	if err := s.verifySession(ctx, userID, sessionID); err != nil {
		return err
	}
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.SessionID != sessionID {
		return ErrItemNotFound
	}
	return nil
}
