package http

import (
	"net/http"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profile     ports.ProfileService
	sessions    ports.SessionService
	permissions ports.PermissionService
}

func NewProfileHandler(profile ports.ProfileService, sessions ports.SessionService, permissions ports.PermissionService) *ProfileHandler {
	return &ProfileHandler{profile: profile, sessions: sessions, permissions: permissions}
}

func (h *ProfileHandler) RegisterRoutes(api *gin.RouterGroup) {
	profile := api.Group("/profile", middleware.RequirePermission(h.permissions, domain.PermManageSettings))
	{
		profile.GET("", h.Get)
		profile.PATCH("", h.Update)

		monetization := profile.Group("/monetization", middleware.RequirePermission(h.permissions, domain.PermManageMonetization))
		monetization.GET("", h.Monetization)
		monetization.PUT("", h.UpdateMonetization)
		monetization.POST("/check", h.CheckMonetization)
	}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	user, err := h.profile.Get(c.Request.Context(), caller(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, user)
}

type UpdateProfileRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

// Update saves the profile and rewrites the caller's session so later requests see the new details.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.profile.Update(c.Request.Context(), caller(c), ports.ProfilePatch{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.sessions.Rewrite(c.Request.Context(), middleware.SessionIDFrom(c), user); err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, user, domain.SuccessToast("Profile updated", ""))
}

func (h *ProfileHandler) Monetization(c *gin.Context) {
	settings, err := h.profile.Monetization(c.Request.Context(), caller(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, settings)
}

func (h *ProfileHandler) UpdateMonetization(c *gin.Context) {
	var req domain.MonetizationSettings
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.profile.UpdateMonetization(c.Request.Context(), caller(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, settings, domain.SuccessToast("Monetization settings saved", ""))
}

func (h *ProfileHandler) CheckMonetization(c *gin.Context) {
	job, err := h.profile.CheckMonetization(c.Request.Context(), caller(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusAccepted, gin.H{"job": job},
		domain.InfoToast("Eligibility check started", "This takes a few seconds."))
}
