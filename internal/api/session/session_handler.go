package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Blurjp/pathavana/internal/api"
	"github.com/Blurjp/pathavana/internal/api/auth"
	"github.com/Blurjp/pathavana/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	StartSession(w http.ResponseWriter, r *http.Request)
	Chat(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	ListUserSessions(w http.ResponseWriter, r *http.Request)
	EndSession(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	sessionService Service
	logger         *slog.Logger
}

func NewHandlerImpl(sessionService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		sessionService: sessionService,
		logger:         logger,
	}
}

// StartSession godoc
// @Summary      Start Travel Session
// @Description  Creates a new travel-planning session and processes the opening message through the hint pipeline.
// @Tags         TravelSessions
// @Accept       json
// @Produce      json
// @Param        request body types.CreateSessionRequest true "Opening message"
// @Success      201 {object} types.SessionChatResponse "Session Created"
// @Failure      400 {object} api.Response "Invalid Request"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /travel/sessions [post]
func (h *HandlerImpl) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "StartSession"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req types.CreateSessionRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Message == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "message is required")
		return
	}

	resp, err := h.sessionService.StartSession(ctx, userID, req.Message)
	if err != nil {
		l.ErrorContext(ctx, "Failed to start session", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to start session")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, resp)
}

// Chat godoc
// @Summary      Send Chat Message
// @Description  Appends a user message to the session and returns the assistant reply with hints, state and extracted entities.
// @Tags         TravelSessions
// @Accept       json
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Param        request body types.SessionChatRequest true "User message"
// @Success      200 {object} types.SessionChatResponse "Assistant Turn"
// @Failure      400 {object} api.Response "Invalid Request"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "Session Not Found"
// @Failure      409 {object} api.Response "Session Closed"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /travel/sessions/{sessionID}/chat [post]
func (h *HandlerImpl) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Chat"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req types.SessionChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Message == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "message is required")
		return
	}

	resp, err := h.sessionService.Chat(ctx, userID, sessionID, req.Message)
	if err != nil {
		l.ErrorContext(ctx, "Chat turn failed", slog.String("sessionID", sessionID.String()), slog.Any("error", err))
		switch {
		case errors.Is(err, ErrSessionNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
		case errors.Is(err, ErrSessionClosed):
			api.ErrorResponse(w, r, http.StatusConflict, "Session is no longer active")
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to process message")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GetSession godoc
// @Summary      Get Travel Session
// @Description  Returns the session with its full conversation history.
// @Tags         TravelSessions
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Success      200 {object} types.TravelSession "Session"
// @Failure      400 {object} api.Response "Invalid Session ID"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "Session Not Found"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /travel/sessions/{sessionID} [get]
func (h *HandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetSession"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(ctx, userID, sessionID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch session", slog.String("sessionID", sessionID.String()), slog.Any("error", err))
		if errors.Is(err, ErrSessionNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch session")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, session)
}

// ListUserSessions godoc
// @Summary      List Travel Sessions
// @Description  Returns the authenticated user's sessions, newest first.
// @Tags         TravelSessions
// @Produce      json
// @Success      200 {array} types.TravelSession "Sessions"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /travel/sessions [get]
func (h *HandlerImpl) ListUserSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "ListUserSessions"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	sessions, err := h.sessionService.ListUserSessions(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list sessions", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, sessions)
}

// EndSession godoc
// @Summary      End Travel Session
// @Description  Closes the session; further chat turns are rejected.
// @Tags         TravelSessions
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Success      200 {object} api.Response "Session Closed"
// @Failure      400 {object} api.Response "Invalid Session ID"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "Session Not Found"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /travel/sessions/{sessionID}/end [post]
func (h *HandlerImpl) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "EndSession"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.sessionService.EndSession(ctx, userID, sessionID); err != nil {
		l.ErrorContext(ctx, "Failed to end session", slog.String("sessionID", sessionID.String()), slog.Any("error", err))
		if errors.Is(err, ErrSessionNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to end session")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Message: "session closed"})
}

func (h *HandlerImpl) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *HandlerImpl) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, false
	}
	return sessionID, true
}
