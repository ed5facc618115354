package fixtures

import (
	"time"

	"fluvid/internal/core/domain"
	"fluvid/pkg/utils"
)

func thumb(id string) string {
	return "https://picsum.photos/seed/" + id + "/640/360"
}

// Videos returns a fresh copy of the seed library.
func Videos() []*domain.Video {
	day := 24 * time.Hour
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	videos := []*domain.Video{
		{
			ID: "vid_001", OwnerID: CreatorID,
			Title:       "Getting Started with Fluvid",
			Description: "A walkthrough of the dashboard, uploads and the video editor.",
			Duration:    "12:34", Views: 15420, Likes: 892,
			Privacy: domain.PrivacyPublic, Tags: []string{"tutorial", "getting-started"},
			Chapters: []domain.Chapter{
				{ID: "ch_001", Title: "Intro", Start: "00:00", StartSeconds: 0},
				{ID: "ch_002", Title: "Uploading", Start: "02:15", StartSeconds: 135},
				{ID: "ch_003", Title: "Editing", Start: "07:40", StartSeconds: 460},
			},
			CreatedAt: base,
		},
		{
			ID: "vid_002", OwnerID: CreatorID,
			Title:       "Advanced Editing Techniques",
			Description: "Color grading, jump cuts and pacing for long-form video.",
			Duration:    "24:15", Views: 8930, Likes: 567,
			Privacy: domain.PrivacyPublic, Tags: []string{"editing", "advanced"},
			CreatedAt: base.Add(5 * day),
		},
		{
			ID: "vid_003", OwnerID: CreatorID,
			Title:       "Choose Your Path: Interactive Story",
			Description: "An interactive episode where viewers pick what happens next.",
			Duration:    "8:45", Views: 23100, Likes: 1840,
			Privacy: domain.PrivacyPublic, Interactive: true, Tags: []string{"interactive", "story"},
			CreatedAt: base.Add(11 * day),
		},
		{
			ID: "vid_004", OwnerID: CreatorID,
			Title:       "Behind the Scenes",
			Description: "Unlisted cut for channel members.",
			Duration:    "6:02", Views: 1204, Likes: 98,
			Privacy: domain.PrivacyUnlisted, Tags: []string{"bts"},
			CreatedAt: base.Add(17 * day),
		},
		{
			ID: "vid_005", OwnerID: CreatorID,
			Title:       "Draft: Product Review",
			Description: "",
			Duration:    "15:30", Views: 0, Likes: 0,
			Privacy: domain.PrivacyPrivate, Tags: []string{"review"},
			CreatedAt: base.Add(20 * day),
		},
		{
			ID: "vid_006", OwnerID: CreatorID,
			Title:       "Lighting on a Budget",
			Description: "Three-point lighting with hardware store lamps.",
			Duration:    "1:02:10", Views: 4410, Likes: 301,
			Privacy: domain.PrivacyPublic, Tags: []string{"tutorial", "lighting"},
			CreatedAt: base.Add(26 * day),
		},
		{
			ID: "vid_007", OwnerID: AdminID,
			Title:       "Platform Announcements",
			Description: "Monthly update from the Fluvid team.",
			Duration:    "4:20", Views: 51200, Likes: 2210,
			Privacy: domain.PrivacyPublic, Tags: []string{"news"},
			CreatedAt: base.Add(3 * day),
		},
		{
			ID: "vid_008", OwnerID: AdminID,
			Title:       "Community Guidelines Explained",
			Description: "What is and is not allowed on the platform.",
			Duration:    "9:58", Views: 12040, Likes: 640,
			Privacy: domain.PrivacyPublic, Interactive: true, Tags: []string{"policy", "interactive"},
			CreatedAt: base.Add(14 * day),
		},
	}

	for _, v := range videos {
		v.Status = domain.VideoReady
		v.Thumbnail = thumb(string(v.ID))
		v.UpdatedAt = v.CreatedAt
		if v.Chapters == nil {
			v.Chapters = []domain.Chapter{}
		}
	}
	return videos
}

// Retention holds the per-video watch figures shown on the analytics page.
var Retention = map[domain.VideoID]struct {
	AvgWatchSeconds int
	RetentionPct    float64
}{
	"vid_001": {AvgWatchSeconds: 412, RetentionPct: 54.6},
	"vid_002": {AvgWatchSeconds: 690, RetentionPct: 47.4},
	"vid_003": {AvgWatchSeconds: 402, RetentionPct: 76.6},
	"vid_004": {AvgWatchSeconds: 240, RetentionPct: 66.3},
	"vid_006": {AvgWatchSeconds: 1380, RetentionPct: 37.0},
	"vid_007": {AvgWatchSeconds: 221, RetentionPct: 85.0},
	"vid_008": {AvgWatchSeconds: 350, RetentionPct: 58.5},
}

// ImportedTitles are assigned to imported videos, picked by URL.
var ImportedTitles = []string{
	"Imported: Festival Highlights",
	"Imported: Studio Tour",
	"Imported: Q&A Livestream Replay",
	"Imported: Short Film",
}

// ImportedTitle picks a stable title for an import URL.
func ImportedTitle(url string) string {
	sum := 0
	for i := 0; i < len(url); i++ {
		sum += int(url[i])
	}
	return ImportedTitles[sum%len(ImportedTitles)]
}

// SimulatedDuration is the duration assigned to uploads and imports once processing finishes.
func SimulatedDuration(sizeBytes int64) string {
	// roughly 1 MB per second of footage, clamped to [0:30, 59:59]
	secs := sizeBytes / (1 << 20)
	if secs < 30 {
		secs = 30
	}
	if secs > 3599 {
		secs = 3599
	}
	return utils.FormatTimecode(int(secs))
}
