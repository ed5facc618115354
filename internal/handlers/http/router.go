package http

import (
	"net/http"
	"time"

	"fluvid/internal/core/ports"
	"fluvid/internal/core/services"
	"fluvid/internal/infrastructure/middleware"
	"fluvid/internal/infrastructure/monitoring"
	"fluvid/pkg/config"
	"fluvid/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps is everything the HTTP surface needs. Metrics and Gatherer are optional.
type RouterDeps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Auth        services.AuthService
	Sessions    ports.SessionService
	Permissions ports.PermissionService
	Health      *monitoring.HealthChecker
	Metrics     *monitoring.PrometheusCollector
	Gatherer    prometheus.Gatherer

	AuthHandler *AuthHandler
	JobHandler  *JobHandler
	Handlers    []ports.RouteRegistrar
}

// NewRouter assembles the middleware chain and mounts every handler under /api/v1.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	sugar := deps.Logger.Sugar()

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(sugar))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(logger.NewContextLogger(deps.Logger)))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}
	if deps.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(deps.Metrics))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Auth.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.Server.Gzip {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{"^/ws/", "^/metrics"})))
	}
	router.Use(middleware.ErrorHandlerMiddleware(sugar))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": monitoring.StatusHealthy, "time": time.Now().UTC()})
	})
	if deps.Health != nil {
		router.GET("/ready", func(c *gin.Context) {
			status := deps.Health.CheckAll(c.Request.Context())
			code := http.StatusOK
			if status.Status != monitoring.StatusHealthy {
				code = http.StatusServiceUnavailable
			}
			c.JSON(code, status)
		})
	}
	if cfg.Monitoring.PrometheusEnabled && deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	authn := middleware.AuthMiddleware(deps.Auth, deps.Sessions)

	api := router.Group("/api/v1")
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublicRoutes(api)
	}

	protected := api.Group("", authn)
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(protected)
	}
	for _, h := range deps.Handlers {
		h.RegisterRoutes(protected)
	}

	if deps.JobHandler != nil {
		deps.JobHandler.RegisterRoutes(protected)
		deps.JobHandler.RegisterStreamRoutes(router.Group("/ws", authn))
	}

	return router
}
