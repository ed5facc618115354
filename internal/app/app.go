package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fluvid/internal/core/ports"
	"fluvid/internal/core/services"
	httphandlers "fluvid/internal/handlers/http"
	"fluvid/internal/infrastructure/distributed"
	"fluvid/internal/infrastructure/monitoring"
	"fluvid/internal/infrastructure/repositories"
	"fluvid/internal/infrastructure/signal"
	"fluvid/pkg/config"
	"fluvid/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// App owns every long-lived component of the dashboard backend.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	factory   *repositories.RepositoryFactory
	runner    *services.JobRunner
	analytics *services.CachedAnalyticsService
	scheduler *services.ReleaseScheduler
	bus       *distributed.EventBus
	stream    *signal.JobStreamServer
	health    *monitoring.HealthChecker
	tracer    *tracing.TracerProvider
	router    *gin.Engine

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type options struct {
	registry   *prometheus.Registry
	bcryptCost int
}

type Option func(*options)

// WithRegistry registers metrics on reg instead of the process-wide default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

// New wires repositories, services and the HTTP router. Nothing runs until Start.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	log := logger.Sugar()
	a := &App{cfg: cfg, logger: logger}

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "fluvid",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
		Version:     Version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	a.tracer = tp

	a.factory, err = repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository factory: %w", err)
	}

	users, err := a.factory.CreateUserRepository(o.bcryptCost)
	if err != nil {
		return nil, err
	}
	sessionRepo := a.factory.CreateSessionRepository()
	videoRepo := a.factory.CreateVideoRepository()
	seriesRepo := a.factory.CreateSeriesRepository()
	monetizationRepo := a.factory.CreateMonetizationRepository()

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if o.registry != nil {
		registerer, gatherer = o.registry, o.registry
	}
	collector := monitoring.NewPrometheusCollector(registerer)

	a.runner = services.NewJobRunner(a.factory.CreateJobRepository(), services.JobDelays{
		Upload:            cfg.Simulation.UploadStepDelay,
		Import:            cfg.Simulation.ImportStepDelay,
		CopyrightScan:     cfg.Simulation.ScanStepDelay,
		MonetizationCheck: cfg.Simulation.ScanStepDelay,
	}, collector, log)

	a.analytics = services.NewCachedAnalyticsService(
		services.NewAnalyticsService(videoRepo, a.factory.CreateAnalyticsRepository()),
		cfg.Cache.AnalyticsTTL,
	)

	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	sessionOpts := []services.SessionServiceOption{services.WithSessionMetrics(collector)}
	if o.bcryptCost != 0 {
		sessionOpts = append(sessionOpts, services.WithBcryptCost(o.bcryptCost))
	}
	sessions := services.NewSessionService(users, sessionRepo, cfg.Auth.SessionTTL, log, sessionOpts...)
	permissions := services.NewPermissionService()
	listeners := []services.VideoChangeListener{a.analytics}
	if a.bus = a.factory.CreateEventBus(uuid.NewString()); a.bus != nil {
		listeners = append(listeners, a.bus)
	}
	videos := services.NewVideoService(videoRepo, a.runner, collector, log, listeners...)
	series := services.NewSeriesService(seriesRepo, videoRepo, log)
	profile := services.NewProfileService(users, videoRepo, monetizationRepo, a.runner, log)
	dashboard := services.NewDashboardService(videos, series, a.runner)

	var schedulerOpts []services.ReleaseSchedulerOption
	if lock := a.factory.CreateLeaderLock("release-scheduler"); lock != nil {
		schedulerOpts = append(schedulerOpts, services.WithLeaderLock(lock))
	}
	a.scheduler = services.NewReleaseScheduler(series, cfg.Simulation.SchedulerInterval, log, schedulerOpts...)

	a.stream = signal.NewJobStreamServer(a.runner, signal.JobStreamConfig{
		PingInterval:   cfg.WebSocket.PingInterval,
		PongTimeout:    cfg.WebSocket.PongTimeout,
		WriteTimeout:   cfg.WebSocket.WriteTimeout,
		AllowedOrigins: cfg.Auth.AllowedOrigins,
	}, collector, log)

	a.health = monitoring.NewHealthChecker()
	a.health.AddStoreCheck(a.factory, 30*time.Second, 2*time.Second)
	a.health.AddCatalogCheck(videoRepo, 30*time.Second, 2*time.Second)

	a.router = httphandlers.NewRouter(httphandlers.RouterDeps{
		Config:      cfg,
		Logger:      logger,
		Auth:        authService,
		Sessions:    sessions,
		Permissions: permissions,
		Health:      a.health,
		Metrics:     collector,
		Gatherer:    gatherer,
		AuthHandler: httphandlers.NewAuthHandler(sessions, authService, permissions),
		JobHandler:  httphandlers.NewJobHandler(a.runner, a.stream),
		Handlers: []ports.RouteRegistrar{
			httphandlers.NewPermissionHandler(permissions),
			httphandlers.NewDashboardHandler(dashboard, permissions),
			httphandlers.NewVideoHandler(videos, permissions),
			httphandlers.NewSeriesHandler(series, permissions),
			httphandlers.NewAnalyticsHandler(a.analytics, permissions),
			httphandlers.NewProfileHandler(profile, sessions, permissions),
		},
	})

	return a, nil
}

func (a *App) Router() http.Handler {
	return a.router
}

// Start launches the release scheduler, background health checks and, with Redis, the change bus.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.scheduler.Start(ctx)
	a.health.StartBackgroundChecks(ctx)

	if a.bus != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			err := a.bus.Run(ctx, func(e distributed.Event) {
				if e.Type == distributed.EventVideosChanged {
					a.analytics.VideosChanged(e.Owner)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Sugar().Warnw("change bus stopped", "error", err)
			}
		}()
	}
}

// Serve listens on the configured address until ctx is cancelled, then drains connections.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.Server.Address,
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Sugar().Infow("starting fluvid server", "address", a.cfg.Server.Address, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	a.stream.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-serverErr
}

// Close stops background work and releases external connections.
func (a *App) Close(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	a.scheduler.Stop()
	a.wg.Wait()
	a.runner.Stop()
	a.stream.CloseAll()
	a.analytics.Stop()

	var errs []error
	if err := a.factory.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close repositories: %w", err))
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
	}
	return errors.Join(errs...)
}
