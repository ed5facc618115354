package middleware

import (
	"errors"
	"strings"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/core/services"
	apperrors "fluvid/pkg/errors"
	"fluvid/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	callerKey    = "caller"
	sessionIDKey = "session_id"
)

// bearerToken reads the Authorization header, or the access_token query parameter
// that browsers use for WebSocket upgrades.
func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := c.Query("access_token"); token != "" {
		return token, true
	}
	return "", false
}

// AuthMiddleware accepts a request only if its access token is valid and the session it names is still open.
func AuthMiddleware(authService services.AuthService, sessions ports.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWith(c, apperrors.NewUnauthorizedError("Please sign in to continue."))
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			msg := "Your session is invalid. Please sign in again."
			if errors.Is(err, services.ErrExpiredToken) {
				msg = "Your session has expired. Please sign in again."
			}
			abortWith(c, apperrors.NewUnauthorizedError(msg))
			return
		}

		user, err := sessions.Current(c.Request.Context(), claims.SessionID)
		if err != nil || user.ID != claims.UserID {
			abortWith(c, apperrors.NewUnauthorizedError("You have been signed out. Please sign in again."))
			return
		}

		c.Set(callerKey, user)
		c.Set(sessionIDKey, claims.SessionID)

		ctx := domain.WithCaller(c.Request.Context(), user)
		ctx = logger.WithUserID(ctx, string(user.ID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePermission rejects callers whose role lacks perm.
func RequirePermission(permissions ports.PermissionService, perm domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !permissions.HasPermission(c.Request.Context(), perm) {
			abortWith(c, apperrors.NewForbiddenError("You don't have permission to do that.").
				WithContext("permission", string(perm)))
			return
		}
		c.Next()
	}
}

// CallerFrom returns the user set by AuthMiddleware, or nil.
func CallerFrom(c *gin.Context) *domain.User {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

func SessionIDFrom(c *gin.Context) domain.SessionID {
	v, _ := c.Get(sessionIDKey)
	id, _ := v.(domain.SessionID)
	return id
}

func abortWith(c *gin.Context, err *apperrors.AppError) {
	_ = c.Error(err)
	c.Abort()
}
