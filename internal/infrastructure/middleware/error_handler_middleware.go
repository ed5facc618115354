package middleware

import (
	"errors"
	"net/http"

	"fluvid/internal/core/domain"
	"fluvid/pkg/circuitbreaker"
	apperrors "fluvid/pkg/errors"
	"fluvid/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FromDomain maps service errors onto API errors. Unknown errors become 500s with the cause kept for logs.
func FromDomain(err error) *apperrors.AppError {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		return appErr
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return apperrors.NewInvalidInputError(vErr.Error()).WithContext("field", vErr.Field)
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return apperrors.NewNotFoundError("user")
	case errors.Is(err, domain.ErrVideoNotFound):
		return apperrors.NewNotFoundError("video")
	case errors.Is(err, domain.ErrChapterNotFound):
		return apperrors.NewNotFoundError("chapter")
	case errors.Is(err, domain.ErrSeriesNotFound):
		return apperrors.NewNotFoundError("series")
	case errors.Is(err, domain.ErrSeasonNotFound):
		return apperrors.NewNotFoundError("season")
	case errors.Is(err, domain.ErrEpisodeNotFound):
		return apperrors.NewNotFoundError("episode")
	case errors.Is(err, domain.ErrJobNotFound):
		return apperrors.NewNotFoundError("job")

	case errors.Is(err, domain.ErrInvalidCredentials):
		return apperrors.NewUnauthorizedError("Invalid email or password.").WithTitle("Login failed")
	case errors.Is(err, domain.ErrSessionNotFound):
		return apperrors.NewUnauthorizedError("You have been signed out. Please sign in again.")
	case errors.Is(err, domain.ErrForbidden):
		return apperrors.NewForbiddenError("You don't have permission to do that.")
	case errors.Is(err, domain.ErrEmailTaken):
		return apperrors.NewConflictError("An account with this email already exists.").WithTitle("Registration failed")

	case errors.Is(err, domain.ErrInvalidChapterTime),
		errors.Is(err, domain.ErrChapterPastEnd),
		errors.Is(err, domain.ErrDuplicateChapter),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidScheduleTime),
		errors.Is(err, domain.ErrInvalidPrice):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, domain.ErrVideoNotReady):
		return apperrors.NewConflictError(err.Error())
	case errors.Is(err, circuitbreaker.ErrOpen):
		return apperrors.NewServiceUnavailableError("Storage is temporarily unavailable. Try again shortly.")
	}

	return apperrors.WrapError(err, apperrors.ErrCodeInternal, "Internal server error", http.StatusInternalServerError)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Toast   domain.Toast           `json:"toast"`
}

// ErrorHandlerMiddleware renders the last error attached to the context with an error toast.
func ErrorHandlerMiddleware(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := FromDomain(c.Errors.Last().Err)
		fields := []interface{}{
			"code", appErr.Code,
			"status", appErr.HTTPStatus,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", logger.RequestIDFromContext(c.Request.Context()),
		}
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Errorw("request failed", append(fields, "error", c.Errors.Last().Err)...)
		} else {
			log.Debugw("request rejected", append(fields, "message", appErr.Message)...)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(appErr.HTTPStatus, ErrorResponse{
			Error:   string(appErr.Code),
			Message: appErr.Message,
			Details: appErr.Context,
			Toast:   domain.ErrorToast(appErr.Title, appErr.Message),
		})
	}
}

// RecoveryMiddleware turns panics into 500 responses.
func RecoveryMiddleware(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				appErr := apperrors.NewInternalError("Internal server error")
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   string(appErr.Code),
					Message: appErr.Message,
					Toast:   domain.ErrorToast(appErr.Title, appErr.Message),
				})
			}
		}()

		c.Next()
	}
}
