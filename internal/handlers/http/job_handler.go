package http

import (
	"net/http"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/infrastructure/signal"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobs   ports.JobRunner
	stream *signal.JobStreamServer
}

func NewJobHandler(jobs ports.JobRunner, stream *signal.JobStreamServer) *JobHandler {
	return &JobHandler{jobs: jobs, stream: stream}
}

func (h *JobHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/jobs", h.Active)
	api.GET("/jobs/:id", h.Get)
}

// RegisterStreamRoutes mounts the progress socket. The group must authenticate callers.
func (h *JobHandler) RegisterStreamRoutes(ws *gin.RouterGroup) {
	ws.GET("/jobs/:id", h.Stream)
}

func (h *JobHandler) Active(c *gin.Context) {
	jobs, err := h.jobs.Active(c.Request.Context(), caller(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, jobs)
}

func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), caller(c), domain.JobID(c.Param("id")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, job)
}

func (h *JobHandler) Stream(c *gin.Context) {
	id := domain.JobID(c.Param("id"))
	if _, err := h.jobs.Get(c.Request.Context(), caller(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	h.stream.Serve(c.Writer, c.Request, caller(c), id)
}
