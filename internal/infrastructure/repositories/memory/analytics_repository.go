package memory

import (
	"context"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/fixtures"
)

// FixtureAnalyticsRepository serves the recorded statistics from the fixture set.
type FixtureAnalyticsRepository struct {
	now func() time.Time
}

func NewFixtureAnalyticsRepository(now func() time.Time) *FixtureAnalyticsRepository {
	if now == nil {
		now = time.Now
	}
	return &FixtureAnalyticsRepository{now: now}
}

// DailyStats returns the last days of history. An empty owner sums every account.
func (r *FixtureAnalyticsRepository) DailyStats(ctx context.Context, owner domain.UserID, days int) ([]domain.DailyStat, error) {
	if days <= 0 || days > fixtures.HistoryDays {
		days = fixtures.HistoryDays
	}
	end := r.now()

	var stats []domain.DailyStat
	if owner != "" {
		stats = fixtures.DailyStats(owner, end)
	} else {
		for _, seed := range fixtures.Users() {
			s := fixtures.DailyStats(seed.User.ID, end)
			if stats == nil {
				stats = s
				continue
			}
			for i := range stats {
				stats[i].Views += s[i].Views
				stats[i].Likes += s[i].Likes
			}
		}
	}
	return stats[len(stats)-days:], nil
}

// Retention returns zero figures for videos with no recorded watch time.
func (r *FixtureAnalyticsRepository) Retention(ctx context.Context, id domain.VideoID) (int, float64, error) {
	figures, ok := fixtures.Retention[id]
	if !ok {
		return 0, 0, nil
	}
	return figures.AvgWatchSeconds, figures.RetentionPct, nil
}
