package services

import (
	"context"
	"fmt"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/pkg/cache"
)

const (
	overviewKeyPrefix = "analytics:overview:"
	allOwnersKey      = "*"
)

// CachedAnalyticsService caches overviews per owner and range until the owner's library changes.
type CachedAnalyticsService struct {
	base  ports.AnalyticsService
	cache *cache.Cache[*domain.AnalyticsOverview]
}

func NewCachedAnalyticsService(base ports.AnalyticsService, ttl time.Duration) *CachedAnalyticsService {
	return &CachedAnalyticsService{
		base:  base,
		cache: cache.New[*domain.AnalyticsOverview](ttl),
	}
}

var (
	_ ports.AnalyticsService = (*CachedAnalyticsService)(nil)
	_ VideoChangeListener    = (*CachedAnalyticsService)(nil)
)

func overviewKey(owner domain.UserID, rangeKey string) string {
	scope := string(owner)
	if scope == "" {
		scope = allOwnersKey
	}
	return fmt.Sprintf("%s%s:%s", overviewKeyPrefix, scope, rangeKey)
}

func (s *CachedAnalyticsService) Overview(ctx context.Context, caller *domain.User, rangeKey string) (*domain.AnalyticsOverview, error) {
	if rangeKey == "" {
		rangeKey = DefaultAnalyticsRange
	}
	if _, ok := AnalyticsRanges[rangeKey]; !ok {
		return s.base.Overview(ctx, caller, rangeKey)
	}
	return s.cache.GetOrLoad(ctx, overviewKey(scopeOwner(caller), rangeKey), func(ctx context.Context) (*domain.AnalyticsOverview, error) {
		return s.base.Overview(ctx, caller, rangeKey)
	})
}

func (s *CachedAnalyticsService) Video(ctx context.Context, caller *domain.User, id domain.VideoID) (*domain.VideoAnalytics, error) {
	return s.base.Video(ctx, caller, id)
}

// VideosChanged drops the owner's overviews and the all-owners aggregate.
func (s *CachedAnalyticsService) VideosChanged(owner domain.UserID) {
	s.cache.InvalidatePrefix(overviewKeyPrefix + string(owner) + ":")
	s.cache.InvalidatePrefix(overviewKeyPrefix + allOwnersKey + ":")
}

func (s *CachedAnalyticsService) Stop() {
	s.cache.Stop()
}
