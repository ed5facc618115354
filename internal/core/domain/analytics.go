package domain

import "time"

type DailyStat struct {
	Date  time.Time `json:"date"`
	Views int64     `json:"views"`
	Likes int64     `json:"likes"`
}

type TopVideo struct {
	ID    VideoID `json:"id"`
	Title string  `json:"title"`
	Views int64   `json:"views"`
	Likes int64   `json:"likes"`
}

type AnalyticsOverview struct {
	Range          string      `json:"range"`
	TotalVideos    int         `json:"totalVideos"`
	TotalViews     int64       `json:"totalViews"`
	TotalLikes     int64       `json:"totalLikes"`
	EngagementRate float64     `json:"engagementRate"` // likes per 100 views
	TopVideos      []TopVideo  `json:"topVideos"`
	Daily          []DailyStat `json:"daily"`
}

type VideoAnalytics struct {
	VideoID         VideoID `json:"videoId"`
	Views           int64   `json:"views"`
	Likes           int64   `json:"likes"`
	EngagementRate  float64 `json:"engagementRate"`
	AvgWatchSeconds int     `json:"avgWatchSeconds"`
	RetentionPct    float64 `json:"retentionPct"`
}

type Dashboard struct {
	VideoCount   int      `json:"videoCount"`
	SeriesCount  int      `json:"seriesCount"`
	TotalViews   int64    `json:"totalViews"`
	TotalLikes   int64    `json:"totalLikes"`
	RecentVideos []*Video `json:"recentVideos"`
	ActiveJobs   []*Job   `json:"activeJobs"`
}
