package fixtures

import (
	"hash/fnv"
	"math"
	"time"

	"fluvid/internal/core/domain"
)

// HistoryDays is the length of the recorded daily statistics.
const HistoryDays = 90

// DailyStats returns the recorded history for owner, oldest first, ending on the day of end.
// The curve is deterministic per owner: a weekly cycle on top of slow growth.
func DailyStats(owner domain.UserID, end time.Time) []domain.DailyStat {
	h := fnv.New32a()
	_, _ = h.Write([]byte(owner))
	seed := float64(h.Sum32()%500) + 300

	end = end.UTC().Truncate(24 * time.Hour)
	stats := make([]domain.DailyStat, HistoryDays)
	for i := 0; i < HistoryDays; i++ {
		growth := 1 + float64(i)/HistoryDays
		weekly := 1 + 0.25*math.Sin(float64(i)*2*math.Pi/7)
		views := int64(seed * growth * weekly)
		stats[i] = domain.DailyStat{
			Date:  end.AddDate(0, 0, i-HistoryDays+1),
			Views: views,
			Likes: views * 6 / 100,
		}
	}
	return stats
}
