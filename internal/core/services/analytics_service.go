package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
)

// AnalyticsRanges maps the accepted range keys to days of history.
var AnalyticsRanges = map[string]int{
	"7d":  7,
	"28d": 28,
	"90d": 90,
}

const DefaultAnalyticsRange = "28d"

const topVideoCount = 5

type analyticsService struct {
	videos    ports.VideoRepository
	analytics ports.AnalyticsRepository
}

func NewAnalyticsService(videos ports.VideoRepository, analytics ports.AnalyticsRepository) ports.AnalyticsService {
	return &analyticsService{videos: videos, analytics: analytics}
}

// scopeOwner is the owner whose data caller sees; empty means every owner.
func scopeOwner(caller *domain.User) domain.UserID {
	if domain.RoleHasPermission(caller.Role, domain.PermViewAllContent) {
		return ""
	}
	return caller.ID
}

// EngagementRate is likes per hundred views, rounded to two decimals.
func EngagementRate(likes, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return math.Round(float64(likes)/float64(views)*100*100) / 100
}

func (s *analyticsService) Overview(ctx context.Context, caller *domain.User, rangeKey string) (*domain.AnalyticsOverview, error) {
	if rangeKey == "" {
		rangeKey = DefaultAnalyticsRange
	}
	days, ok := AnalyticsRanges[rangeKey]
	if !ok {
		return nil, domain.NewValidationError("range", fmt.Errorf("must be one of 7d, 28d, 90d"))
	}

	owner := scopeOwner(caller)
	all, err := s.videos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	videos := FilterVideos(all, domain.VideoFilter{OwnerID: owner})

	overview := &domain.AnalyticsOverview{
		Range:       rangeKey,
		TotalVideos: len(videos),
		TopVideos:   []domain.TopVideo{},
	}
	for _, v := range videos {
		overview.TotalViews += v.Views
		overview.TotalLikes += v.Likes
	}
	overview.EngagementRate = EngagementRate(overview.TotalLikes, overview.TotalViews)

	SortVideos(videos, domain.SortViews)
	for i := 0; i < len(videos) && i < topVideoCount; i++ {
		v := videos[i]
		overview.TopVideos = append(overview.TopVideos, domain.TopVideo{ID: v.ID, Title: v.Title, Views: v.Views, Likes: v.Likes})
	}

	overview.Daily, err = s.analytics.DailyStats(ctx, owner, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily stats: %w", err)
	}
	sort.Slice(overview.Daily, func(i, j int) bool { return overview.Daily[i].Date.Before(overview.Daily[j].Date) })
	return overview, nil
}

func (s *analyticsService) Video(ctx context.Context, caller *domain.User, id domain.VideoID) (*domain.VideoAnalytics, error) {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(caller, video.OwnerID) {
		return nil, domain.ErrVideoNotFound
	}

	avg, retention, err := s.analytics.Retention(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load retention: %w", err)
	}
	return &domain.VideoAnalytics{
		VideoID:         id,
		Views:           video.Views,
		Likes:           video.Likes,
		EngagementRate:  EngagementRate(video.Likes, video.Views),
		AvgWatchSeconds: avg,
		RetentionPct:    retention,
	}, nil
}
