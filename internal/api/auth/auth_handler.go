package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Blurjp/pathavana/internal/api"
	"github.com/Blurjp/pathavana/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	RefreshSession(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService Service
	logger      *slog.Logger
}

func NewHandlerImpl(authService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary      Register User
// @Description  Creates a new account from username, email and password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body types.RegisterRequest true "Registration details"
// @Success      201 {object} types.UserAuth "Created User"
// @Failure      400 {object} api.Response "Invalid Request"
// @Failure      409 {object} api.Response "Email Already Registered"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /auth/register [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "username, email and password are required")
		return
	}

	user, err := h.authService.Register(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
		if errors.Is(err, ErrEmailTaken) {
			api.ErrorResponse(w, r, http.StatusConflict, "Email already registered")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, user)
}

// Login godoc
// @Summary      Login
// @Description  Exchanges email and password for an access/refresh token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body types.LoginRequest true "Credentials"
// @Success      200 {object} types.TokenPair "Token Pair"
// @Failure      400 {object} api.Response "Invalid Request"
// @Failure      401 {object} api.Response "Invalid Credentials"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /auth/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		l.WarnContext(ctx, "Login failed", slog.String("email", req.Email), slog.Any("error", err))
		if errors.Is(err, ErrInvalidCredentials) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, tokens)
}

// RefreshSession godoc
// @Summary      Refresh Tokens
// @Description  Exchanges a valid refresh token for a fresh token pair. The refresh token is single use.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body refreshRequest true "Refresh token"
// @Success      200 {object} types.TokenPair "Token Pair"
// @Failure      400 {object} api.Response "Invalid Request"
// @Failure      401 {object} api.Response "Invalid Refresh Token"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Router       /auth/refresh [post]
func (h *HandlerImpl) RefreshSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "RefreshSession"))

	var req refreshRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.authService.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		l.WarnContext(ctx, "Refresh failed", slog.Any("error", err))
		if errors.Is(err, ErrRefreshInvalid) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Refresh token invalid or expired")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to refresh session")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, tokens)
}

// Logout godoc
// @Summary      Logout
// @Description  Invalidates all refresh tokens of the authenticated user.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} api.Response "Logged Out"
// @Failure      401 {object} api.Response "Unauthorized"
// @Failure      500 {object} api.Response "Internal Server Error"
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Logout"))

	userID, ok := GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.authService.Logout(ctx, userID); err != nil {
		l.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log out")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Message: "logged out"})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
