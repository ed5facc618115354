package http

import (
	"net/http"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	permissions ports.PermissionService
}

func NewPermissionHandler(permissions ports.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

func (h *PermissionHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/permissions", h.List)
}

// PermissionsResponse carries the full role table and what the caller may do.
type PermissionsResponse struct {
	Table   map[domain.Permission][]domain.UserRole `json:"table"`
	Granted []domain.Permission                     `json:"granted"`
	Role    domain.UserRole                         `json:"role"`
}

func (h *PermissionHandler) List(c *gin.Context) {
	respond(c, http.StatusOK, PermissionsResponse{
		Table:   domain.PermissionTable,
		Granted: h.permissions.Granted(c.Request.Context()),
		Role:    caller(c).Role,
	})
}
