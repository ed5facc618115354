package http

import (
	"fmt"
	"net/http"
	"strconv"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

type VideoHandler struct {
	videos      ports.VideoService
	permissions ports.PermissionService
}

func NewVideoHandler(videos ports.VideoService, permissions ports.PermissionService) *VideoHandler {
	return &VideoHandler{videos: videos, permissions: permissions}
}

func (h *VideoHandler) RegisterRoutes(api *gin.RouterGroup) {
	can := func(perm domain.Permission) gin.HandlerFunc {
		return middleware.RequirePermission(h.permissions, perm)
	}

	videos := api.Group("/videos", can(domain.PermViewVideos))
	{
		videos.GET("", h.List)
		videos.POST("/upload", can(domain.PermUploadVideo), h.Upload)
		videos.POST("/import", can(domain.PermUploadVideo), h.Import)
		videos.GET("/:id", h.Get)
		videos.PATCH("/:id", can(domain.PermEditVideo), h.Update)
		videos.DELETE("/:id", can(domain.PermDeleteVideo), h.Delete)
		videos.POST("/:id/chapters", can(domain.PermEditVideo), h.AddChapter)
		videos.DELETE("/:id/chapters/:chapterId", can(domain.PermEditVideo), h.RemoveChapter)
		videos.POST("/:id/copyright-scan", can(domain.PermEditVideo), h.CopyrightScan)
	}
}

var videoSorts = map[domain.VideoSort]bool{
	domain.SortNewest: true,
	domain.SortOldest: true,
	domain.SortViews:  true,
	domain.SortLikes:  true,
	domain.SortTitle:  true,
}

// parseVideoFilter reads ?privacy=&status=&interactive=&tag=&q=&sort=&owner= from the query string.
func parseVideoFilter(c *gin.Context) (domain.VideoFilter, error) {
	filter := domain.VideoFilter{
		OwnerID: domain.UserID(c.Query("owner")),
		Tag:     c.Query("tag"),
		Query:   c.Query("q"),
	}

	if v := c.Query("privacy"); v != "" {
		filter.Privacy = domain.Privacy(v)
		if !filter.Privacy.Valid() {
			return filter, domain.NewValidationError("privacy", fmt.Errorf("must be public, unlisted or private"))
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = domain.VideoStatus(v)
		if filter.Status != domain.VideoReady && filter.Status != domain.VideoProcessing {
			return filter, domain.NewValidationError("status", fmt.Errorf("must be ready or processing"))
		}
	}
	if v := c.Query("interactive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, domain.NewValidationError("interactive", fmt.Errorf("must be true or false"))
		}
		filter.Interactive = &b
	}
	if v := c.Query("sort"); v != "" {
		filter.Sort = domain.VideoSort(v)
		if !videoSorts[filter.Sort] {
			return filter, domain.NewValidationError("sort", fmt.Errorf("must be newest, oldest, views, likes or title"))
		}
	}
	return filter, nil
}

func (h *VideoHandler) List(c *gin.Context) {
	filter, err := parseVideoFilter(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	videos, err := h.videos.List(c.Request.Context(), caller(c), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, videos)
}

func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.videos.Get(c.Request.Context(), caller(c), domain.VideoID(c.Param("id")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, video)
}

type UpdateVideoRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Thumbnail   *string         `json:"thumbnail"`
	Privacy     *domain.Privacy `json:"privacy"`
	Interactive *bool           `json:"interactive"`
	Tags        []string        `json:"tags"`
}

func (h *VideoHandler) Update(c *gin.Context) {
	var req UpdateVideoRequest
	if !bindJSON(c, &req) {
		return
	}

	video, err := h.videos.Update(c.Request.Context(), caller(c), domain.VideoID(c.Param("id")), domain.VideoPatch{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Privacy:     req.Privacy,
		Interactive: req.Interactive,
		Tags:        req.Tags,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, video, domain.SuccessToast("Video saved", video.Title))
}

func (h *VideoHandler) Delete(c *gin.Context) {
	if err := h.videos.Delete(c.Request.Context(), caller(c), domain.VideoID(c.Param("id"))); err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, nil, domain.SuccessToast("Video deleted", ""))
}

type UploadRequest struct {
	Title     string `json:"title"`
	FileName  string `json:"fileName" binding:"required"`
	SizeBytes int64  `json:"sizeBytes" binding:"required"`
}

func (h *VideoHandler) Upload(c *gin.Context) {
	var req UploadRequest
	if !bindJSON(c, &req) {
		return
	}

	video, job, err := h.videos.Upload(c.Request.Context(), caller(c), ports.UploadRequest{
		Title:     req.Title,
		FileName:  req.FileName,
		SizeBytes: req.SizeBytes,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusAccepted, gin.H{"video": video, "job": job},
		domain.InfoToast("Upload started", fmt.Sprintf("%q is being processed.", video.Title)))
}

type ImportRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *VideoHandler) Import(c *gin.Context) {
	var req ImportRequest
	if !bindJSON(c, &req) {
		return
	}

	job, err := h.videos.Import(c.Request.Context(), caller(c), req.URL)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusAccepted, gin.H{"job": job},
		domain.InfoToast("Import started", "We'll let you know when the video is ready."))
}

type ChapterRequest struct {
	Title string `json:"title" binding:"required"`
	Time  string `json:"time" binding:"required"`
}

func (h *VideoHandler) AddChapter(c *gin.Context) {
	var req ChapterRequest
	if !bindJSON(c, &req) {
		return
	}

	video, err := h.videos.AddChapter(c.Request.Context(), caller(c), domain.VideoID(c.Param("id")), req.Title, req.Time)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusCreated, video, domain.SuccessToast("Chapter added", req.Title))
}

func (h *VideoHandler) RemoveChapter(c *gin.Context) {
	video, err := h.videos.RemoveChapter(c.Request.Context(), caller(c),
		domain.VideoID(c.Param("id")), domain.ChapterID(c.Param("chapterId")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusOK, video, domain.SuccessToast("Chapter removed", ""))
}

func (h *VideoHandler) CopyrightScan(c *gin.Context) {
	job, err := h.videos.CopyrightScan(c.Request.Context(), caller(c), domain.VideoID(c.Param("id")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondWithToast(c, http.StatusAccepted, gin.H{"job": job},
		domain.InfoToast("Copyright scan started", ""))
}
