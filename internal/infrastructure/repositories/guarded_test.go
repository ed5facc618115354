package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/infrastructure/repositories/memory"
	"fluvid/pkg/circuitbreaker"
	"fluvid/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type flakySessions struct {
	*memory.MemorySessionRepository
	down bool
}

func (f *flakySessions) Get(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	if f.down {
		return nil, errors.New("dial tcp: connection refused")
	}
	return f.MemorySessionRepository.Get(ctx, id)
}

func testBreaker() *circuitbreaker.Breaker {
	cfg := circuitbreaker.DefaultConfig()
	cfg.FailureThreshold = 2
	cfg.Cooldown = time.Hour
	cfg.IsFailure = storeFailure
	return circuitbreaker.New("redis", cfg)
}

func TestGuardedSessionRepository_MissesDoNotTrip(t *testing.T) {
	breaker := testBreaker()
	repo := NewGuardedSessionRepository(memory.NewMemorySessionRepository(), breaker)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Get(ctx, "sess_missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	}
	assert.Equal(t, circuitbreaker.StateClosed, breaker.State())

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "sess_1", User: domain.User{ID: "usr_1"}}, time.Hour))
	got, err := repo.Get(ctx, "sess_1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("usr_1"), got.User.ID)
	require.NoError(t, repo.Delete(ctx, "sess_1"))
}

func TestGuardedSessionRepository_FailsFastWhenDown(t *testing.T) {
	breaker := testBreaker()
	inner := &flakySessions{MemorySessionRepository: memory.NewMemorySessionRepository(), down: true}
	repo := NewGuardedSessionRepository(inner, breaker)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := repo.Get(ctx, "sess_1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrOpen)
	}

	_, err := repo.Get(ctx, "sess_1")
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestGuardedMonetizationRepository(t *testing.T) {
	repo := NewGuardedMonetizationRepository(memory.NewMemoryMonetizationRepository(), testBreaker())
	ctx := context.Background()

	settings := &domain.MonetizationSettings{}
	require.NoError(t, repo.Save(ctx, "usr_1", settings))
	_, err := repo.Get(ctx, "usr_1")
	assert.NoError(t, err)
}

type flakyVideos struct {
	*memory.MemoryVideoRepository
	down bool
}

func (f *flakyVideos) Mutate(ctx context.Context, id domain.VideoID, fn func(*domain.Video) error) (*domain.Video, error) {
	if f.down {
		return nil, errors.New("dial tcp: connection refused")
	}
	return f.MemoryVideoRepository.Mutate(ctx, id, fn)
}

func TestGuardedVideoRepository_RejectedEditsDoNotTrip(t *testing.T) {
	breaker := testBreaker()
	repo := NewGuardedVideoRepository(memory.NewSeededVideoRepository(), breaker)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Mutate(ctx, "vid_001", func(*domain.Video) error {
			return domain.ErrDuplicateChapter
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateChapter)

		_, err = repo.Mutate(ctx, "vid_missing", func(*domain.Video) error { return nil })
		assert.ErrorIs(t, err, domain.ErrVideoNotFound)

		_, err = repo.GetByID(ctx, "vid_missing")
		assert.ErrorIs(t, err, domain.ErrVideoNotFound)
	}
	assert.Equal(t, circuitbreaker.StateClosed, breaker.State())

	updated, err := repo.Mutate(ctx, "vid_001", func(v *domain.Video) error {
		v.Title = "Renamed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestGuardedVideoRepository_FailsFastWhenDown(t *testing.T) {
	breaker := testBreaker()
	inner := &flakyVideos{MemoryVideoRepository: memory.NewSeededVideoRepository(), down: true}
	repo := NewGuardedVideoRepository(inner, breaker)
	ctx := context.Background()

	edit := func(*domain.Video) error { return nil }
	for i := 0; i < 2; i++ {
		_, err := repo.Mutate(ctx, "vid_001", edit)
		require.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrOpen)
	}

	_, err := repo.Mutate(ctx, "vid_001", edit)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	_, err = repo.List(ctx)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestGuardedSeriesRepository_RejectedEditsDoNotTrip(t *testing.T) {
	breaker := testBreaker()
	repo := NewGuardedSeriesRepository(memory.NewSeededSeriesRepository(), breaker)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Mutate(ctx, "ser_001", func(*domain.Series) error { return domain.ErrForbidden })
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.ErrorIs(t, repo.Delete(ctx, "ser_missing"), domain.ErrSeriesNotFound)
	}
	assert.Equal(t, circuitbreaker.StateClosed, breaker.State())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, all)
}

func TestGuardedUserRepository_ConflictsDoNotTrip(t *testing.T) {
	breaker := testBreaker()
	repo := NewGuardedUserRepository(memory.NewMemoryUserRepository(), breaker)
	ctx := context.Background()

	account := &domain.Account{User: domain.User{ID: "usr_1", Email: "a@fluvid.com"}}
	require.NoError(t, repo.Create(ctx, account))
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, repo.Create(ctx, account), domain.ErrEmailTaken)
		_, err := repo.GetByEmail(ctx, "nobody@fluvid.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	}
	assert.Equal(t, circuitbreaker.StateClosed, breaker.State())

	got, err := repo.GetByID(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, "a@fluvid.com", got.Email)
}

func TestRepositoryFactory_NoLeaderLockInMemory(t *testing.T) {
	factory, err := NewRepositoryFactory(config.DefaultConfig(), zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Nil(t, factory.CreateLeaderLock("release-scheduler"))
	assert.Equal(t, "fluvid:lock:release-scheduler", lockKey("release-scheduler"))
}
