package repositories

import (
	"context"
	"errors"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/pkg/circuitbreaker"
	"fluvid/pkg/tracing"
)

// GuardedSessionRepository fails fast with circuitbreaker.ErrOpen while the backing store is down.
type GuardedSessionRepository struct {
	inner   ports.SessionRepository
	breaker *circuitbreaker.Breaker
}

func NewGuardedSessionRepository(inner ports.SessionRepository, breaker *circuitbreaker.Breaker) *GuardedSessionRepository {
	return &GuardedSessionRepository{inner: inner, breaker: breaker}
}

func (r *GuardedSessionRepository) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "session.save", r.breaker.Name())
	defer span.End()
	return r.breaker.Execute(func() error {
		return r.inner.Save(ctx, session, ttl)
	})
}

func (r *GuardedSessionRepository) Get(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "session.get", r.breaker.Name())
	defer span.End()
	return circuitbreaker.Do(r.breaker, func() (*domain.Session, error) {
		return r.inner.Get(ctx, id)
	})
}

func (r *GuardedSessionRepository) Delete(ctx context.Context, id domain.SessionID) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "session.delete", r.breaker.Name())
	defer span.End()
	return r.breaker.Execute(func() error {
		return r.inner.Delete(ctx, id)
	})
}

type GuardedMonetizationRepository struct {
	inner   ports.MonetizationRepository
	breaker *circuitbreaker.Breaker
}

func NewGuardedMonetizationRepository(inner ports.MonetizationRepository, breaker *circuitbreaker.Breaker) *GuardedMonetizationRepository {
	return &GuardedMonetizationRepository{inner: inner, breaker: breaker}
}

func (r *GuardedMonetizationRepository) Get(ctx context.Context, owner domain.UserID) (*domain.MonetizationSettings, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "monetization.get", r.breaker.Name())
	defer span.End()
	return circuitbreaker.Do(r.breaker, func() (*domain.MonetizationSettings, error) {
		return r.inner.Get(ctx, owner)
	})
}

func (r *GuardedMonetizationRepository) Save(ctx context.Context, owner domain.UserID, settings *domain.MonetizationSettings) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "monetization.save", r.breaker.Name())
	defer span.End()
	return r.breaker.Execute(func() error {
		return r.inner.Save(ctx, owner, settings)
	})
}

type GuardedVideoRepository struct {
	inner   ports.VideoRepository
	breaker *circuitbreaker.Breaker
}

func NewGuardedVideoRepository(inner ports.VideoRepository, breaker *circuitbreaker.Breaker) *GuardedVideoRepository {
	return &GuardedVideoRepository{inner: inner, breaker: breaker}
}

func (r *GuardedVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "video.create", r.breaker.Name())
	defer span.End()
	return r.breaker.Execute(func() error {
		return r.inner.Create(ctx, video)
	})
}

func (r *GuardedVideoRepository) GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "video.get", r.breaker.Name())
	defer span.End()
	return circuitbreaker.Do(r.breaker, func() (*domain.Video, error) {
		return r.inner.GetByID(ctx, id)
	})
}

func (r *GuardedVideoRepository) Mutate(ctx context.Context, id domain.VideoID, fn func(*domain.Video) error) (*domain.Video, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "video.mutate", r.breaker.Name())
	defer span.End()
	return guardedMutate(r.breaker, fn, func(fn func(*domain.Video) error) (*domain.Video, error) {
		return r.inner.Mutate(ctx, id, fn)
	})
}

func (r *GuardedVideoRepository) Delete(ctx context.Context, id domain.VideoID) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "video.delete", r.breaker.Name())
	defer span.End()
	return r.breaker.Execute(func() error {
		return r.inner.Delete(ctx, id)
	})
}

func (r *GuardedVideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "video.list", r.breaker.Name())
	defer span.End()
	return circuitbreaker.Do(r.breaker, func() ([]*domain.Video, error) {
		return r.inner.List(ctx)
	})
}

type GuardedSeriesRepository struct {
	inner   ports.SeriesRepository
	breaker *circuitbreaker.Breaker
}

func NewGuardedSeriesRepository(inner ports.SeriesRepository, breaker *circuitbreaker.Breaker) *GuardedSeriesRepository {
	return &GuardedSeriesRepository{inner: inner, breaker: breaker}
}

func (r *GuardedSeriesRepository) Create(ctx context.Context, series *domain.Series) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "series.create", r.breaker.Name())
	defer span.End()
	return r.breaker.Execute(func() error {
		return r.inner.Create(ctx, series)
	})
}

func (r *GuardedSeriesRepository) GetByID(ctx context.Context, id domain.SeriesID) (*domain.Series, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "series.get", r.breaker.Name())
	defer span.End()
	return circuitbreaker.Do(r.breaker, func() (*domain.Series, error) {
		return r.inner.GetByID(ctx, id)
	})
}

func (r *GuardedSeriesRepository) Mutate(ctx context.Context, id domain.SeriesID, fn func(*domain.Series) error) (*domain.Series, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "series.mutate", r.breaker.Name())
	defer span.End()
	return guardedMutate(r.breaker, fn, func(fn func(*domain.Series) error) (*domain.Series, error) {
		return r.inner.Mutate(ctx, id, fn)
	})
}

func (r *GuardedSeriesRepository) Delete(ctx context.Context, id domain.SeriesID) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "series.delete", r.breaker.Name())
	defer span.End()
	return r.breaker.Execute(func() error {
		return r.inner.Delete(ctx, id)
	})
}

func (r *GuardedSeriesRepository) List(ctx context.Context) ([]*domain.Series, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "series.list", r.breaker.Name())
	defer span.End()
	return circuitbreaker.Do(r.breaker, func() ([]*domain.Series, error) {
		return r.inner.List(ctx)
	})
}

// guardedMutate keeps errors returned by fn away from the breaker; a rejected edit says nothing about the store.
func guardedMutate[T any](breaker *circuitbreaker.Breaker, fn func(*T) error, mutate func(func(*T) error) (*T, error)) (*T, error) {
	var fnErr error
	out, err := circuitbreaker.Do(breaker, func() (*T, error) {
		out, err := mutate(func(doc *T) error {
			fnErr = fn(doc)
			return fnErr
		})
		if err != nil && fnErr != nil && errors.Is(err, fnErr) {
			return nil, nil
		}
		return out, err
	})
	if err != nil {
		return nil, err
	}
	if fnErr != nil {
		return nil, fnErr
	}
	return out, nil
}

type GuardedUserRepository struct {
	inner   ports.UserRepository
	breaker *circuitbreaker.Breaker
}

func NewGuardedUserRepository(inner ports.UserRepository, breaker *circuitbreaker.Breaker) *GuardedUserRepository {
	return &GuardedUserRepository{inner: inner, breaker: breaker}
}

func (r *GuardedUserRepository) Create(ctx context.Context, account *domain.Account) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "user.create", r.breaker.Name())
	defer span.End()
	return r.breaker.Execute(func() error {
		return r.inner.Create(ctx, account)
	})
}

func (r *GuardedUserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "user.get", r.breaker.Name())
	defer span.End()
	return circuitbreaker.Do(r.breaker, func() (*domain.User, error) {
		return r.inner.GetByID(ctx, id)
	})
}

func (r *GuardedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "user.get_by_email", r.breaker.Name())
	defer span.End()
	return circuitbreaker.Do(r.breaker, func() (*domain.Account, error) {
		return r.inner.GetByEmail(ctx, email)
	})
}

func (r *GuardedUserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "user.update", r.breaker.Name())
	defer span.End()
	return r.breaker.Execute(func() error {
		return r.inner.Update(ctx, user)
	})
}

func (r *GuardedUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "user.list", r.breaker.Name())
	defer span.End()
	return circuitbreaker.Do(r.breaker, func() ([]*domain.User, error) {
		return r.inner.List(ctx)
	})
}

// storeFailure counts only transport failures; misses and cancelled requests are not the store's fault.
func storeFailure(err error) bool {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrVideoNotFound),
		errors.Is(err, domain.ErrSeriesNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}
