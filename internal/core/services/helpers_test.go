package services

import (
	"context"
	"testing"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/fixtures"
	"fluvid/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEnv struct {
	users        ports.UserRepository
	sessions     *memory.MemorySessionRepository
	videoRepo    *memory.MemoryVideoRepository
	seriesRepo   *memory.MemorySeriesRepository
	jobRepo      *memory.MemoryJobRepository
	monetization *memory.MemoryMonetizationRepository

	runner    *JobRunner
	analytics *CachedAnalyticsService
	session   ports.SessionService
	videos    ports.VideoService
	series    ports.SeriesService
	profile   ports.ProfileService
	dashboard ports.DashboardService

	logger *zap.SugaredLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users, err := memory.NewSeededUserRepository(bcrypt.MinCost)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t).Sugar()
	env := &testEnv{
		users:        users,
		sessions:     memory.NewMemorySessionRepository(),
		videoRepo:    memory.NewSeededVideoRepository(),
		seriesRepo:   memory.NewSeededSeriesRepository(),
		jobRepo:      memory.NewMemoryJobRepository(),
		monetization: memory.NewMemoryMonetizationRepository(),
		logger:       logger,
	}

	env.runner = NewJobRunner(env.jobRepo, JobDelays{}, nil, logger)
	env.analytics = NewCachedAnalyticsService(
		NewAnalyticsService(env.videoRepo, memory.NewFixtureAnalyticsRepository(nil)),
		time.Minute,
	)
	env.session = NewSessionService(env.users, env.sessions, time.Hour, logger, WithBcryptCost(bcrypt.MinCost))
	env.videos = NewVideoService(env.videoRepo, env.runner, nil, logger, env.analytics)
	env.series = NewSeriesService(env.seriesRepo, env.videoRepo, logger)
	env.profile = NewProfileService(env.users, env.videoRepo, env.monetization, env.runner, logger)
	env.dashboard = NewDashboardService(env.videos, env.series, env.runner)

	t.Cleanup(func() {
		env.runner.Stop()
		env.analytics.Stop()
	})
	return env
}

func (e *testEnv) user(t *testing.T, id domain.UserID) *domain.User {
	t.Helper()
	u, err := e.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (e *testEnv) admin(t *testing.T) *domain.User   { return e.user(t, fixtures.AdminID) }
func (e *testEnv) creator(t *testing.T) *domain.User { return e.user(t, fixtures.CreatorID) }
func (e *testEnv) viewer(t *testing.T) *domain.User  { return e.user(t, fixtures.ViewerID) }

// waitJob blocks until the job reaches a terminal state.
func (e *testEnv) waitJob(t *testing.T, id domain.JobID) *domain.Job {
	t.Helper()
	var job *domain.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = e.jobRepo.GetByID(context.Background(), id)
		return err == nil && job.Status.Terminal()
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func boolPtr(b bool) *bool        { return &b }
func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
