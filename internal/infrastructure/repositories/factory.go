package repositories

import (
	"context"
	"fmt"
	"time"

	"fluvid/internal/core/ports"
	infradistributed "fluvid/internal/infrastructure/distributed"
	"fluvid/internal/infrastructure/repositories/memory"
	redisrepo "fluvid/internal/infrastructure/repositories/redis"
	"fluvid/pkg/circuitbreaker"
	"fluvid/pkg/config"
	"fluvid/pkg/distributed"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RepositoryFactory builds the repository set. When Redis is enabled and reachable, sessions, accounts,
// videos, series and monetization settings are shared there behind one circuit breaker. Jobs and the
// recorded analytics stay in memory.
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	breaker     *circuitbreaker.Breaker
	lockTTL     time.Duration
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		lockTTL:  cfg.Redis.LeaderLockTTL,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			factory.breaker = newStoreBreaker(cfg, logger)
			logger.Info("using Redis shared stores")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory stores")
	}

	return factory, nil
}

// UsingRedis reports whether the Redis-backed repositories are active.
func (f *RepositoryFactory) UsingRedis() bool {
	return f.useRedis && f.redisClient != nil
}

func (f *RepositoryFactory) CreateSessionRepository() ports.SessionRepository {
	if f.UsingRedis() {
		return NewGuardedSessionRepository(redisrepo.NewRedisSessionRepository(f.redisClient), f.breaker)
	}
	return memory.NewMemorySessionRepository()
}

func (f *RepositoryFactory) CreateMonetizationRepository() ports.MonetizationRepository {
	if f.UsingRedis() {
		return NewGuardedMonetizationRepository(redisrepo.NewRedisMonetizationRepository(f.redisClient), f.breaker)
	}
	return memory.NewMemoryMonetizationRepository()
}

// CreateUserRepository seeds the fixture accounts, hashing their passwords at cost (bcrypt.DefaultCost if zero).
func (f *RepositoryFactory) CreateUserRepository(cost int) (ports.UserRepository, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if f.UsingRedis() {
		ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
		defer cancel()
		repo, err := redisrepo.NewSeededRedisUserRepository(ctx, f.redisClient, cost)
		if err != nil {
			return nil, fmt.Errorf("failed to seed users: %w", err)
		}
		return NewGuardedUserRepository(repo, f.breaker), nil
	}
	repo, err := memory.NewSeededUserRepository(cost)
	if err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}
	return repo, nil
}

// CreateVideoRepository returns the shared library under Redis. Its fixtures are loaded by schema migration 3.
func (f *RepositoryFactory) CreateVideoRepository() ports.VideoRepository {
	if f.UsingRedis() {
		return NewGuardedVideoRepository(redisrepo.NewRedisVideoRepository(f.redisClient), f.breaker)
	}
	return memory.NewSeededVideoRepository()
}

func (f *RepositoryFactory) CreateSeriesRepository() ports.SeriesRepository {
	if f.UsingRedis() {
		return NewGuardedSeriesRepository(redisrepo.NewRedisSeriesRepository(f.redisClient), f.breaker)
	}
	return memory.NewSeededSeriesRepository()
}

func (f *RepositoryFactory) CreateJobRepository() ports.JobRepository {
	return memory.NewMemoryJobRepository()
}

func (f *RepositoryFactory) CreateAnalyticsRepository() ports.AnalyticsRepository {
	return memory.NewFixtureAnalyticsRepository(nil)
}

// CreateLeaderLock returns a Redis lease so only one instance runs the release scheduler,
// or nil when this instance is the only one that could.
func (f *RepositoryFactory) CreateLeaderLock(name string) ports.LeaderLock {
	if f.UsingRedis() {
		return distributed.NewLease(f.redisClient, lockKey(name), f.lockTTL)
	}
	return nil
}

// CreateEventBus returns the cross-instance change bus, or nil without Redis.
func (f *RepositoryFactory) CreateEventBus(instanceID string) *infradistributed.EventBus {
	if f.UsingRedis() {
		return infradistributed.NewEventBus(f.redisClient, instanceID, f.logger)
	}
	return nil
}

func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.UsingRedis() {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}

const seedTimeout = 30 * time.Second

func lockKey(name string) string {
	return redisrepo.KeyPrefix + "lock:" + name
}

func newStoreBreaker(cfg *config.Config, logger *zap.SugaredLogger) *circuitbreaker.Breaker {
	bcfg := circuitbreaker.DefaultConfig()
	bcfg.FailureThreshold = cfg.Redis.BreakerThreshold
	bcfg.Cooldown = cfg.Redis.BreakerCooldown
	bcfg.IsFailure = storeFailure

	breaker := circuitbreaker.New("redis", bcfg)
	breaker.OnStateChange(func(name string, from, to circuitbreaker.State) {
		logger.Warnw("store circuit breaker changed state",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	})
	return breaker
}
