package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/infrastructure/middleware"
	"fluvid/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_Records(t *testing.T) {
	collector := NewPrometheusCollector(prometheus.NewRegistry())

	collector.RecordLogin(true)
	collector.RecordLogin(false)
	collector.RecordLogin(false)
	collector.RecordRegistration()
	collector.RecordVideoMutation("upload")
	collector.RecordJob(domain.JobUpload, domain.JobCompleted, 3*time.Second)
	collector.RecordHTTPRequest(http.MethodGet, "/api/videos", http.StatusOK, 5*time.Millisecond)
	collector.WebSocketOpened()
	collector.WebSocketOpened()
	collector.WebSocketClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.loginsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.loginsTotal.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.registrationsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.videoMutations.WithLabelValues("upload")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.jobsTotal.WithLabelValues("upload", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("GET", "/api/videos", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.websocketConnections))
}

func TestPrometheusCollector_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPrometheusCollector(prometheus.NewRegistry())
		NewPrometheusCollector(prometheus.NewRegistry())
	})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	collector := NewPrometheusCollector(prometheus.NewRegistry())

	router := gin.New()
	router.Use(middleware.MetricsMiddleware(collector))
	router.GET("/api/videos/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"vid_001", "vid_002"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/videos/"+id, nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("GET", "/api/videos/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

type fakeStore struct{ err error }

func (f fakeStore) HealthCheck(context.Context) error { return f.err }

func TestHealthChecker_CheckAll(t *testing.T) {
	h := NewHealthChecker()
	h.AddStoreCheck(fakeStore{}, time.Second, time.Second)
	h.AddCatalogCheck(memory.NewSeededVideoRepository(), time.Second, time.Second)

	status := h.CheckAll(context.Background())
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, map[string]string{"store": StatusHealthy, "catalog": StatusHealthy}, status.Checks)
	assert.True(t, h.IsReady(context.Background()))
}

func TestHealthChecker_Failure(t *testing.T) {
	h := NewHealthChecker()
	h.AddStoreCheck(fakeStore{err: errors.New("redis: connection refused")}, time.Second, time.Second)
	h.AddCheck("flaky", func(context.Context) (bool, error) { return false, nil }, 0, 0)

	status := h.CheckAll(context.Background())
	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Equal(t, "redis: connection refused", status.Checks["store"])
	assert.Equal(t, "check failed", status.Checks["flaky"])
	assert.False(t, h.IsReady(context.Background()))
	assert.Equal(t, status.Checks, h.LastResults())
}

func TestHealthChecker_Timeout(t *testing.T) {
	h := NewHealthChecker()
	h.AddCheck("slow", func(ctx context.Context) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	}, 0, 10*time.Millisecond)

	status := h.CheckAll(context.Background())
	assert.Equal(t, context.DeadlineExceeded.Error(), status.Checks["slow"])
}

func TestHealthChecker_BackgroundChecks(t *testing.T) {
	h := NewHealthChecker()
	h.AddStoreCheck(fakeStore{}, 5*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.StartBackgroundChecks(ctx)

	require.Eventually(t, func() bool {
		return h.LastResults()["store"] == StatusHealthy
	}, time.Second, 5*time.Millisecond)
}
