package http

import (
	"fluvid/internal/core/domain"
	"fluvid/internal/infrastructure/middleware"
	apperrors "fluvid/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Envelope wraps every successful response. Mutations carry a toast for the dashboard to show.
type Envelope struct {
	Data  interface{}   `json:"data"`
	Toast *domain.Toast `json:"toast,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Data: data})
}

func respondWithToast(c *gin.Context, status int, data interface{}, toast domain.Toast) {
	c.JSON(status, Envelope{Data: data, Toast: &toast})
}

// bindJSON decodes the body into req, recording a 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("invalid request body").WithContext("reason", err.Error()))
		return false
	}
	return true
}

// caller returns the authenticated user; routes using it sit behind AuthMiddleware.
func caller(c *gin.Context) *domain.User {
	return middleware.CallerFrom(c)
}
