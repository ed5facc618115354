package http

import (
	"fmt"
	"net/http"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/core/services"
	"fluvid/internal/infrastructure/middleware"
	apperrors "fluvid/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	sessions    ports.SessionService
	authService services.AuthService
	permissions ports.PermissionService
}

func NewAuthHandler(sessions ports.SessionService, authService services.AuthService, permissions ports.PermissionService) *AuthHandler {
	return &AuthHandler{
		sessions:    sessions,
		authService: authService,
		permissions: permissions,
	}
}

// RegisterPublicRoutes mounts the endpoints reachable without a token.
func (h *AuthHandler) RegisterPublicRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.POST("/refresh", h.Refresh)
	}
}

func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required,max=2048"`
}

// SessionResponse is returned by login, register and refresh.
type SessionResponse struct {
	User        domain.User         `json:"user"`
	SessionID   domain.SessionID    `json:"sessionId"`
	ExpiresAt   time.Time           `json:"expiresAt"`
	Tokens      *services.TokenPair `json:"tokens"`
	Permissions []domain.Permission `json:"permissions"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.sessionResponse(c, session)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, resp,
		domain.SuccessToast(fmt.Sprintf("Welcome back, %s!", session.User.Name), ""))
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.sessions.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.sessionResponse(c, session)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusCreated, resp,
		domain.SuccessToast("Account created", fmt.Sprintf("Welcome to Fluvid, %s!", session.User.Name)))
}

// Refresh trades a refresh token for a new pair, as long as its session is still open.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	claims, err := h.authService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		_ = c.Error(apperrors.NewUnauthorizedError("Your session has expired. Please sign in again."))
		return
	}

	user, err := h.sessions.Current(c.Request.Context(), claims.SessionID)
	if err != nil || user.ID != claims.UserID {
		_ = c.Error(apperrors.NewUnauthorizedError("You have been signed out. Please sign in again."))
		return
	}

	tokens, err := h.authService.IssueTokens(&domain.Session{ID: claims.SessionID, User: *user})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), middleware.SessionIDFrom(c)); err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, nil, domain.SuccessToast("Signed out", "See you soon."))
}

func (h *AuthHandler) Me(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"user":        caller(c),
		"permissions": h.permissions.Granted(c.Request.Context()),
	})
}

func (h *AuthHandler) sessionResponse(c *gin.Context, session *domain.Session) (*SessionResponse, error) {
	tokens, err := h.authService.IssueTokens(session)
	if err != nil {
		return nil, err
	}

	ctx := domain.WithCaller(c.Request.Context(), &session.User)
	return &SessionResponse{
		User:        session.User,
		SessionID:   session.ID,
		ExpiresAt:   session.ExpiresAt,
		Tokens:      tokens,
		Permissions: h.permissions.Granted(ctx),
	}, nil
}
