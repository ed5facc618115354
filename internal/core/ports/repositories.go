package ports

import (
	"context"
	"time"

	"fluvid/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]*domain.User, error)
}

// SessionRepository persists session records as JSON. Save with ttl <= 0 keeps the record until Delete.
type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, id domain.SessionID) (*domain.Session, error)
	Delete(ctx context.Context, id domain.SessionID) error
}

// VideoRepository changes stored videos only through Mutate, which applies fn to the current copy atomically.
// fn must not call back into the repository.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error)
	Mutate(ctx context.Context, id domain.VideoID, fn func(*domain.Video) error) (*domain.Video, error)
	Delete(ctx context.Context, id domain.VideoID) error
	List(ctx context.Context) ([]*domain.Video, error)
}

// SeriesRepository follows the same Mutate contract as VideoRepository.
type SeriesRepository interface {
	Create(ctx context.Context, series *domain.Series) error
	GetByID(ctx context.Context, id domain.SeriesID) (*domain.Series, error)
	Mutate(ctx context.Context, id domain.SeriesID, fn func(*domain.Series) error) (*domain.Series, error)
	Delete(ctx context.Context, id domain.SeriesID) error
	List(ctx context.Context) ([]*domain.Series, error)
}

type JobRepository interface {
	Save(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id domain.JobID) (*domain.Job, error)
	ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Job, error)
}

// MonetizationRepository returns zero-value settings for users who never saved any.
type MonetizationRepository interface {
	Get(ctx context.Context, owner domain.UserID) (*domain.MonetizationSettings, error)
	Save(ctx context.Context, owner domain.UserID, settings *domain.MonetizationSettings) error
}

// AnalyticsRepository serves the recorded daily statistics and per-video retention.
type AnalyticsRepository interface {
	DailyStats(ctx context.Context, owner domain.UserID, days int) ([]domain.DailyStat, error)
	Retention(ctx context.Context, id domain.VideoID) (avgWatchSeconds int, retentionPct float64, err error)
}

// LeaderLock is a renewable lease shared by every instance. TryAcquire also renews a lease the caller already holds.
type LeaderLock interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}
