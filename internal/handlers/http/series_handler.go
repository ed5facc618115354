package http

import (
	"fmt"
	"net/http"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

type SeriesHandler struct {
	series      ports.SeriesService
	permissions ports.PermissionService
}

func NewSeriesHandler(series ports.SeriesService, permissions ports.PermissionService) *SeriesHandler {
	return &SeriesHandler{series: series, permissions: permissions}
}

func (h *SeriesHandler) RegisterRoutes(api *gin.RouterGroup) {
	series := api.Group("/series", middleware.RequirePermission(h.permissions, domain.PermManageSeries))
	{
		series.GET("", h.List)
		series.POST("", h.Create)
		series.GET("/:id", h.Get)
		series.PATCH("/:id", h.Update)
		series.DELETE("/:id", h.Delete)
		series.POST("/:id/seasons", h.AddSeason)
		series.POST("/:id/seasons/:seasonId/episodes", h.AddEpisode)
		series.PATCH("/:id/episodes/:episodeId", h.UpdateEpisode)
		series.DELETE("/:id/episodes/:episodeId", h.DeleteEpisode)
		series.POST("/:id/episodes/:episodeId/schedule", h.ScheduleRelease)
	}
}

func parseSeriesFilter(c *gin.Context) (domain.SeriesFilter, error) {
	filter := domain.SeriesFilter{
		OwnerID: domain.UserID(c.Query("owner")),
		Query:   c.Query("q"),
	}
	if v := c.Query("status"); v != "" {
		filter.Status = domain.ContentStatus(v)
		if !filter.Status.Valid() {
			return filter, domain.NewValidationError("status", fmt.Errorf("must be published, draft or scheduled"))
		}
	}
	if v := c.Query("monetization"); v != "" {
		filter.Monetization = domain.Monetization(v)
		if !filter.Monetization.Valid() {
			return filter, domain.NewValidationError("monetization", fmt.Errorf("must be free, subscription or pay-per-view"))
		}
	}
	return filter, nil
}

func (h *SeriesHandler) List(c *gin.Context) {
	filter, err := parseSeriesFilter(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	series, err := h.series.List(c.Request.Context(), caller(c), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, series)
}

func (h *SeriesHandler) Get(c *gin.Context) {
	series, err := h.series.Get(c.Request.Context(), caller(c), domain.SeriesID(c.Param("id")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, series)
}

type CreateSeriesRequest struct {
	Title        string               `json:"title" binding:"required"`
	Description  string               `json:"description"`
	Thumbnail    string               `json:"thumbnail"`
	Status       domain.ContentStatus `json:"status"`
	Monetization domain.Monetization  `json:"monetization"`
	Price        float64              `json:"price"`
}

func (h *SeriesHandler) Create(c *gin.Context) {
	var req CreateSeriesRequest
	if !bindJSON(c, &req) {
		return
	}

	series, err := h.series.Create(c.Request.Context(), caller(c), ports.SeriesInput{
		Title:        req.Title,
		Description:  req.Description,
		Thumbnail:    req.Thumbnail,
		Status:       req.Status,
		Monetization: req.Monetization,
		Price:        req.Price,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusCreated, series, domain.SuccessToast("Series created", series.Title))
}

type UpdateSeriesRequest struct {
	Title        *string               `json:"title"`
	Description  *string               `json:"description"`
	Thumbnail    *string               `json:"thumbnail"`
	Status       *domain.ContentStatus `json:"status"`
	Monetization *domain.Monetization  `json:"monetization"`
	Price        *float64              `json:"price"`
}

func (h *SeriesHandler) Update(c *gin.Context) {
	var req UpdateSeriesRequest
	if !bindJSON(c, &req) {
		return
	}

	series, err := h.series.Update(c.Request.Context(), caller(c), domain.SeriesID(c.Param("id")), domain.SeriesPatch{
		Title:        req.Title,
		Description:  req.Description,
		Thumbnail:    req.Thumbnail,
		Status:       req.Status,
		Monetization: req.Monetization,
		Price:        req.Price,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, series, domain.SuccessToast("Series saved", series.Title))
}

func (h *SeriesHandler) Delete(c *gin.Context) {
	if err := h.series.Delete(c.Request.Context(), caller(c), domain.SeriesID(c.Param("id"))); err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, nil, domain.SuccessToast("Series deleted", ""))
}

type SeasonRequest struct {
	Title string `json:"title"`
}

func (h *SeriesHandler) AddSeason(c *gin.Context) {
	var req SeasonRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	series, err := h.series.AddSeason(c.Request.Context(), caller(c), domain.SeriesID(c.Param("id")), req.Title)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusCreated, series, domain.SuccessToast("Season added", ""))
}

type EpisodeRequest struct {
	Title        string               `json:"title" binding:"required"`
	VideoID      domain.VideoID       `json:"videoId"`
	Duration     string               `json:"duration"`
	Status       domain.ContentStatus `json:"status"`
	Monetization domain.Monetization  `json:"monetization"`
}

func (h *SeriesHandler) AddEpisode(c *gin.Context) {
	var req EpisodeRequest
	if !bindJSON(c, &req) {
		return
	}

	series, err := h.series.AddEpisode(c.Request.Context(), caller(c),
		domain.SeriesID(c.Param("id")), domain.SeasonID(c.Param("seasonId")), ports.EpisodeInput{
			Title:        req.Title,
			VideoID:      req.VideoID,
			Duration:     req.Duration,
			Status:       req.Status,
			Monetization: req.Monetization,
		})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusCreated, series, domain.SuccessToast("Episode added", req.Title))
}

type UpdateEpisodeRequest struct {
	Title        *string               `json:"title"`
	VideoID      *domain.VideoID       `json:"videoId"`
	Duration     *string               `json:"duration"`
	Status       *domain.ContentStatus `json:"status"`
	Monetization *domain.Monetization  `json:"monetization"`
}

func (h *SeriesHandler) UpdateEpisode(c *gin.Context) {
	var req UpdateEpisodeRequest
	if !bindJSON(c, &req) {
		return
	}

	series, err := h.series.UpdateEpisode(c.Request.Context(), caller(c),
		domain.SeriesID(c.Param("id")), domain.EpisodeID(c.Param("episodeId")), domain.EpisodePatch{
			Title:        req.Title,
			VideoID:      req.VideoID,
			Duration:     req.Duration,
			Status:       req.Status,
			Monetization: req.Monetization,
		})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, series, domain.SuccessToast("Episode saved", ""))
}

func (h *SeriesHandler) DeleteEpisode(c *gin.Context) {
	series, err := h.series.DeleteEpisode(c.Request.Context(), caller(c),
		domain.SeriesID(c.Param("id")), domain.EpisodeID(c.Param("episodeId")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, series, domain.SuccessToast("Episode deleted", ""))
}

type ScheduleRequest struct {
	ReleaseAt time.Time `json:"releaseAt" binding:"required"`
}

func (h *SeriesHandler) ScheduleRelease(c *gin.Context) {
	var req ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	series, err := h.series.ScheduleRelease(c.Request.Context(), caller(c),
		domain.SeriesID(c.Param("id")), domain.EpisodeID(c.Param("episodeId")), req.ReleaseAt)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, series, domain.SuccessToast("Release scheduled",
		fmt.Sprintf("Goes live %s.", req.ReleaseAt.UTC().Format("Jan 2, 2006 15:04 MST"))))
}
