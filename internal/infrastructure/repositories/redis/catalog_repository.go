package redis

import (
	"context"
	"errors"

	"fluvid/internal/core/domain"
	"fluvid/internal/fixtures"

	"github.com/redis/go-redis/v9"
)

const (
	videoKeyPrefix  = KeyPrefix + "video:"
	videoIndexKey   = KeyPrefix + "videos"
	seriesKeyPrefix = KeyPrefix + "series:"
	seriesIndexKey  = KeyPrefix + "series"
)

func newVideoStore(client *redis.Client) documentStore[domain.Video] {
	return documentStore[domain.Video]{client: client, prefix: videoKeyPrefix, index: videoIndexKey, notFound: domain.ErrVideoNotFound}
}

func newSeriesStore(client *redis.Client) documentStore[domain.Series] {
	return documentStore[domain.Series]{client: client, prefix: seriesKeyPrefix, index: seriesIndexKey, notFound: domain.ErrSeriesNotFound}
}

// RedisVideoRepository shares the video library between instances.
type RedisVideoRepository struct {
	store documentStore[domain.Video]
}

func NewRedisVideoRepository(client *redis.Client) *RedisVideoRepository {
	return &RedisVideoRepository{store: newVideoStore(client)}
}

func (r *RedisVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	return r.store.create(ctx, string(video.ID), video)
}

func (r *RedisVideoRepository) GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	return r.store.get(ctx, string(id))
}

func (r *RedisVideoRepository) Mutate(ctx context.Context, id domain.VideoID, fn func(*domain.Video) error) (*domain.Video, error) {
	return r.store.mutate(ctx, string(id), fn)
}

func (r *RedisVideoRepository) Delete(ctx context.Context, id domain.VideoID) error {
	return r.store.delete(ctx, string(id))
}

func (r *RedisVideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	return r.store.list(ctx)
}

// RedisSeriesRepository shares series so the elected release scheduler sees every instance's schedule.
type RedisSeriesRepository struct {
	store documentStore[domain.Series]
}

func NewRedisSeriesRepository(client *redis.Client) *RedisSeriesRepository {
	return &RedisSeriesRepository{store: newSeriesStore(client)}
}

func (r *RedisSeriesRepository) Create(ctx context.Context, series *domain.Series) error {
	return r.store.create(ctx, string(series.ID), series)
}

func (r *RedisSeriesRepository) GetByID(ctx context.Context, id domain.SeriesID) (*domain.Series, error) {
	return r.store.get(ctx, string(id))
}

func (r *RedisSeriesRepository) Mutate(ctx context.Context, id domain.SeriesID, fn func(*domain.Series) error) (*domain.Series, error) {
	return r.store.mutate(ctx, string(id), fn)
}

func (r *RedisSeriesRepository) Delete(ctx context.Context, id domain.SeriesID) error {
	return r.store.delete(ctx, string(id))
}

func (r *RedisSeriesRepository) List(ctx context.Context) ([]*domain.Series, error) {
	return r.store.list(ctx)
}

// seedCatalog writes the fixture videos and series that are not stored yet.
func seedCatalog(ctx context.Context, client *redis.Client) error {
	videos := newVideoStore(client)
	for _, v := range fixtures.Videos() {
		if err := videos.create(ctx, string(v.ID), v); err != nil && !errors.Is(err, errDocumentExists) {
			return err
		}
	}
	series := newSeriesStore(client)
	for _, s := range fixtures.Series() {
		if err := series.create(ctx, string(s.ID), s); err != nil && !errors.Is(err, errDocumentExists) {
			return err
		}
	}
	return nil
}
