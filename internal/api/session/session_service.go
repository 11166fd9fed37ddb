package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Blurjp/pathavana/app/observability/metrics"
	generativeAI "github.com/Blurjp/pathavana/internal/api/generative_ai"
	"github.com/Blurjp/pathavana/internal/api/hints"
	"github.com/Blurjp/pathavana/internal/types"
)

// ErrSessionClosed is returned when chatting on a closed or expired session.
var ErrSessionClosed = errors.New("travel session is closed")

// DefaultSessionTTL bounds how long an idle session stays active.
const DefaultSessionTTL = 24 * time.Hour

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the business logic contract for travel sessions. Sessions are
// scoped to their owner; lookups by another user report not-found.
type Service interface {
	StartSession(ctx context.Context, userID uuid.UUID, message string) (*types.SessionChatResponse, error)
	Chat(ctx context.Context, userID, sessionID uuid.UUID, message string) (*types.SessionChatResponse, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.TravelSession, error)
	ListUserSessions(ctx context.Context, userID uuid.UUID) ([]types.TravelSession, error)
	EndSession(ctx context.Context, userID, sessionID uuid.UUID) error
}

// ServiceImpl drives one hint-pipeline pass and one assistant reply per chat
// turn. The pipeline result is authoritative for state; the LLM only writes
// prose, and its failures fall back to per-state templates so the chat
// endpoint never surfaces a provider error.
type ServiceImpl struct {
	logger     *slog.Logger
	repo       Repository
	pipeline   *hints.Pipeline
	aiClient   generativeAI.AssistantClient
	cache      *cache.Cache
	metrics    *metrics.AppMetrics
	sessionTTL time.Duration
}

func NewService(repo Repository, pipeline *hints.Pipeline, aiClient generativeAI.AssistantClient, appMetrics *metrics.AppMetrics, sessionTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &ServiceImpl{
		logger:     logger,
		repo:       repo,
		pipeline:   pipeline,
		aiClient:   aiClient,
		cache:      cache.New(15*time.Minute, 5*time.Minute),
		metrics:    appMetrics,
		sessionTTL: sessionTTL,
	}
}

// fallbackReplies are the deterministic template responses used when the LLM
// provider fails.
var fallbackReplies = map[types.ConversationState]string{
	types.StateInitial:              "Hi! Tell me about the trip you have in mind and I'll help you plan it.",
	types.StateDestinationSelection: "Where would you like to go? I can suggest destinations if you tell me what kind of trip you're after.",
	types.StateDateSelection:        "When are you thinking of traveling? Rough dates are fine to start with.",
	types.StateHotelSearch:          "Let's find you a place to stay. Any preferences on neighborhood or budget?",
	types.StateFlightSearch:         "Let's look at flights next. Where will you be flying from?",
	types.StateActivityPlanning:     "Let's fill out your days. Tell me what you enjoy and I'll suggest activities.",
	types.StateBudgetDiscussion:     "Tell me a rough daily budget and I'll shape the plan around it.",
	types.StateFinalization:         "Your plan is taking shape. Want to review the itinerary before booking?",
	types.StateCompleted:            "Your trip plan is complete. I'm here if you want to plan another one.",
}

// StartSession creates a session and processes the first message through the
// normal chat path.
func (s *ServiceImpl) StartSession(ctx context.Context, userID uuid.UUID, message string) (*types.SessionChatResponse, error) {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "StartSession", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "StartSession"), slog.String("userID", userID.String()))
	l.DebugContext(ctx, "Starting new travel session")

	now := time.Now()
	session := types.TravelSession{
		ID:                uuid.New(),
		UserID:            userID,
		ConversationState: types.StateInitial,
		Status:            types.SessionActive,
		CreatedAt:         now,
		UpdatedAt:         now,
		ExpiresAt:         now.Add(s.sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		l.ErrorContext(ctx, "Failed to create travel session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create travel session")
		return nil, fmt.Errorf("error creating travel session: %w", err)
	}
	s.cache.Set(session.ID.String(), cloneSession(&session), cache.DefaultExpiration)

	resp, err := s.processTurn(ctx, &session, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to process first turn")
		return nil, err
	}
	resp.IsNewSession = true

	l.InfoContext(ctx, "Travel session started", slog.String("sessionID", session.ID.String()))
	span.SetStatus(codes.Ok, "Travel session started")
	return resp, nil
}

// Chat appends a user turn to an existing session and produces the reply.
func (s *ServiceImpl) Chat(ctx context.Context, userID, sessionID uuid.UUID, message string) (*types.SessionChatResponse, error) {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "Chat", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Chat"), slog.String("sessionID", sessionID.String()))
	l.DebugContext(ctx, "Processing chat turn")

	session, err := s.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load travel session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load travel session")
		return nil, err
	}
	if session.Status != types.SessionActive {
		span.SetStatus(codes.Error, "Session closed")
		return nil, ErrSessionClosed
	}

	resp, err := s.processTurn(ctx, session, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to process chat turn")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Chat turn processed")
	return resp, nil
}

// processTurn is the shared per-message path: persist the user turn, run the
// hint pipeline, get (or synthesize) the assistant reply, persist it, and
// store the re-derived state.
func (s *ServiceImpl) processTurn(ctx context.Context, session *types.TravelSession, message string) (*types.SessionChatResponse, error) {
	l := s.logger.With(slog.String("method", "processTurn"), slog.String("sessionID", session.ID.String()))
	start := time.Now()

	userTurn := types.ChatTurn{
		ID:        uuid.New(),
		Role:      types.RoleUser,
		Content:   message,
		Timestamp: time.Now(),
	}
	session.ConversationHistory = append(session.ConversationHistory, userTurn)

	userTurns := 0
	for _, t := range session.ConversationHistory {
		if t.Role == types.RoleUser {
			userTurns++
		}
	}

	// Persisting the user turn and computing guidance + reply are
	// independent; run them concurrently.
	var (
		guidance types.Guidance
		reply    string
		fallback bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.repo.AddTurn(gctx, session.ID, userTurn)
	})
	g.Go(func() error {
		guidance = s.pipeline.Advance(gctx, session.ConversationHistory, session.ConversationState, userTurns)
		reply, fallback = s.assistantReply(gctx, session.ConversationHistory, guidance)
		return nil
	})
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Failed to persist user turn", slog.Any("error", err))
		return nil, fmt.Errorf("error persisting user turn: %w", err)
	}

	assistantTurn := types.ChatTurn{
		ID:        uuid.New(),
		Role:      types.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	}
	if err := s.repo.AddTurn(ctx, session.ID, assistantTurn); err != nil {
		l.ErrorContext(ctx, "Failed to persist assistant turn", slog.Any("error", err))
		return nil, fmt.Errorf("error persisting assistant turn: %w", err)
	}
	session.ConversationHistory = append(session.ConversationHistory, assistantTurn)

	if guidance.ConversationState != session.ConversationState {
		if err := s.repo.UpdateState(ctx, session.ID, guidance.ConversationState); err != nil {
			l.ErrorContext(ctx, "Failed to persist conversation state", slog.Any("error", err))
			return nil, fmt.Errorf("error persisting conversation state: %w", err)
		}
		session.ConversationState = guidance.ConversationState
	}
	s.cache.Set(session.ID.String(), cloneSession(session), cache.DefaultExpiration)

	if s.metrics != nil {
		s.metrics.ChatTurnsTotal.Add(ctx, 1)
		s.metrics.HintPipelineDurationSeconds.Record(ctx, time.Since(start).Seconds())
		s.metrics.EntitiesExtractedTotal.Add(ctx, int64(len(guidance.ExtractedEntities)))
		if fallback {
			s.metrics.LLMFallbacksTotal.Add(ctx, 1)
		}
	}

	return &types.SessionChatResponse{
		SessionID:         session.ID,
		Message:           reply,
		Hints:             guidance.Hints,
		ConversationState: guidance.ConversationState,
		ExtractedEntities: guidance.ExtractedEntities,
		NextSteps:         guidance.NextSteps,
		Fallback:          fallback,
	}, nil
}

// assistantReply asks the LLM for prose and falls back to the per-state
// template when the provider fails. Never returns an error.
func (s *ServiceImpl) assistantReply(ctx context.Context, history []types.ChatTurn, guidance types.Guidance) (string, bool) {
	reply, err := s.aiClient.GenerateTripReply(ctx, history, guidance)
	if err == nil {
		return reply, false
	}
	s.logger.WarnContext(ctx, "LLM reply failed, using template fallback", slog.Any("error", err))

	if tmpl, ok := fallbackReplies[guidance.ConversationState]; ok {
		return tmpl, true
	}
	return fallbackReplies[types.StateInitial], true
}

// GetSession returns a session with its full conversation history.
func (s *ServiceImpl) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.TravelSession, error) {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "GetSession", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	session, err := s.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load travel session")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Travel session loaded")
	return session, nil
}

func (s *ServiceImpl) ListUserSessions(ctx context.Context, userID uuid.UUID) ([]types.TravelSession, error) {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "ListUserSessions", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	sessions, err := s.repo.ListUserSessions(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list user sessions", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list user sessions")
		return nil, fmt.Errorf("error listing user sessions: %w", err)
	}
	span.SetStatus(codes.Ok, "User sessions listed")
	return sessions, nil
}

// EndSession closes a session; further chat turns return ErrSessionClosed.
func (s *ServiceImpl) EndSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	ctx, span := otel.Tracer("SessionService").Start(ctx, "EndSession", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	if _, err := s.loadOwnedSession(ctx, userID, sessionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load travel session")
		return err
	}
	if err := s.repo.CloseSession(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to end travel session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to end travel session")
		return fmt.Errorf("error ending travel session: %w", err)
	}
	s.cache.Delete(sessionID.String())
	span.SetStatus(codes.Ok, "Travel session ended")
	return nil
}

// loadOwnedSession loads a session and hides it from everyone but its owner.
func (s *ServiceImpl) loadOwnedSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.TravelSession, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// loadSession checks the hot cache before the database. Every caller gets
// its own copy; the cached struct itself is never handed out, so concurrent
// turns on one session cannot race on the shared history slice.
func (s *ServiceImpl) loadSession(ctx context.Context, sessionID uuid.UUID) (*types.TravelSession, error) {
	if cached, ok := s.cache.Get(sessionID.String()); ok {
		return cloneSession(cached.(*types.TravelSession)), nil
	}
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(sessionID.String(), session, cache.DefaultExpiration)
	return cloneSession(session), nil
}

// cloneSession snapshots a session with an independent history slice.
func cloneSession(session *types.TravelSession) *types.TravelSession {
	cp := *session
	cp.ConversationHistory = append([]types.ChatTurn(nil), session.ConversationHistory...)
	return &cp
}
