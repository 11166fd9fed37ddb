package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Blurjp/pathavana/internal/api"
	"github.com/Blurjp/pathavana/internal/api/auth"
	"github.com/Blurjp/pathavana/internal/api/session"
	"github.com/Blurjp/pathavana/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	AddItem(w http.ResponseWriter, r *http.Request)
	GetItinerary(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
	UpdateItem(w http.ResponseWriter, r *http.Request)
	RemoveItem(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	itineraryService Service
	logger           *slog.Logger
}

func NewHandlerImpl(itineraryService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

// AddItem godoc
// @Summary      Add Itinerary Item
// @Description  Adds a flight, hotel or activity to the session's day-indexed plan.
// @Tags         Itinerary
// @Accept       json
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Param        request body types.CreateItineraryItemRequest true "Item details"
// @Success      201 {object} types.ItineraryItem "Created Item"
// @Failure      400 {object} api.Response "Invalid Request"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "Session Not Found"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /travel/sessions/{sessionID}/itinerary [post]
func (h *HandlerImpl) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "AddItem"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(w, r, "sessionID")
	if !ok {
		return
	}

	var req types.CreateItineraryItemRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.itineraryService.AddItem(ctx, userID, sessionID, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to add itinerary item", slog.Any("error", err))
		switch {
		case errors.Is(err, ErrInvalidItem):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, session.ErrSessionNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to add itinerary item")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, item)
}

// GetItinerary godoc
// @Summary      Get Itinerary
// @Description  Returns the session's itinerary grouped by day.
// @Tags         Itinerary
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Success      200 {array} types.ItineraryDay "Itinerary Days"
// @Failure      400 {object} api.Response "Invalid Session ID"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "Session Not Found"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /travel/sessions/{sessionID}/itinerary [get]
func (h *HandlerImpl) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetItinerary"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(w, r, "sessionID")
	if !ok {
		return
	}

	days, err := h.itineraryService.GetItinerary(ctx, userID, sessionID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch itinerary", slog.Any("error", err))
		if errors.Is(err, session.ErrSessionNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch itinerary")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, days)
}

// GetSummary godoc
// @Summary      Get Itinerary Summary
// @Description  Returns per-kind counts and the total cost of the session's plan.
// @Tags         Itinerary
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Success      200 {object} types.ItinerarySummary "Summary"
// @Failure      400 {object} api.Response "Invalid Session ID"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "Session Not Found"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /travel/sessions/{sessionID}/itinerary/summary [get]
func (h *HandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetSummary"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(w, r, "sessionID")
	if !ok {
		return
	}

	summary, err := h.itineraryService.GetSummary(ctx, userID, sessionID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to summarize itinerary", slog.Any("error", err))
		if errors.Is(err, session.ErrSessionNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to summarize itinerary")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summary)
}

// UpdateItem godoc
// @Summary      Update Itinerary Item
// @Description  Applies a partial update to one itinerary item.
// @Tags         Itinerary
// @Accept       json
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Param        itemID path string true "Item ID"
// @Param        request body types.UpdateItineraryItemParams true "Fields to update"
// @Success      200 {object} types.ItineraryItem "Updated Item"
// @Failure      400 {object} api.Response "Invalid Request"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "Item Not Found"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /travel/sessions/{sessionID}/itinerary/{itemID} [patch]
func (h *HandlerImpl) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdateItem"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(w, r, "sessionID")
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}

	var params types.UpdateItineraryItemParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.itineraryService.UpdateItem(ctx, userID, sessionID, itemID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update itinerary item", slog.Any("error", err))
		switch {
		case errors.Is(err, ErrInvalidItem):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, session.ErrSessionNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
		case errors.Is(err, ErrItemNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary item not found")
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update itinerary item")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, item)
}

// RemoveItem godoc
// @Summary      Remove Itinerary Item
// @Description  Deletes one itinerary item from the session's plan.
// @Tags         Itinerary
// @Produce      json
// @Param        sessionID path string true "Session ID"
// @Param        itemID path string true "Item ID"
// @Success      204 "Removed"
// @Failure      400 {object} api.Response "Invalid Item ID"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      404 {object} api.Response "Item Not Found"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /travel/sessions/{sessionID}/itinerary/{itemID} [delete]
func (h *HandlerImpl) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "RemoveItem"))

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	sessionID, ok := h.pathID(w, r, "sessionID")
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}

	if err := h.itineraryService.RemoveItem(ctx, userID, sessionID, itemID); err != nil {
		l.ErrorContext(ctx, "Failed to remove itinerary item", slog.Any("error", err))
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
		case errors.Is(err, ErrItemNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary item not found")
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to remove itinerary item")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
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

func (h *HandlerImpl) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}
