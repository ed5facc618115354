package http

import (
	"net/http"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboard   ports.DashboardService
	permissions ports.PermissionService
}

func NewDashboardHandler(dashboard ports.DashboardService, permissions ports.PermissionService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, permissions: permissions}
}

func (h *DashboardHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/dashboard", middleware.RequirePermission(h.permissions, domain.PermViewDashboard), h.Summary)
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context(), caller(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, summary)
}
