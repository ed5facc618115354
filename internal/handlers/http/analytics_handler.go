package http

import (
	"net/http"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analytics   ports.AnalyticsService
	permissions ports.PermissionService
}

func NewAnalyticsHandler(analytics ports.AnalyticsService, permissions ports.PermissionService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, permissions: permissions}
}

func (h *AnalyticsHandler) RegisterRoutes(api *gin.RouterGroup) {
	analytics := api.Group("/analytics", middleware.RequirePermission(h.permissions, domain.PermViewAnalytics))
	{
		analytics.GET("/overview", h.Overview)
		analytics.GET("/videos/:id", h.Video)
	}
}

func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := h.analytics.Overview(c.Request.Context(), caller(c), c.Query("range"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, overview)
}

func (h *AnalyticsHandler) Video(c *gin.Context) {
	stats, err := h.analytics.Video(c.Request.Context(), caller(c), domain.VideoID(c.Param("id")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, stats)
}
