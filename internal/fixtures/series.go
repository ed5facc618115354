package fixtures

import (
	"time"

	"fluvid/internal/core/domain"
)

// Series returns a fresh copy of the seed series catalogue.
func Series() []*domain.Series {
	base := time.Date(2024, time.February, 12, 10, 0, 0, 0, time.UTC)
	release := time.Date(2030, time.January, 15, 18, 0, 0, 0, time.UTC)

	series := []*domain.Series{
		{
			ID: "ser_001", OwnerID: CreatorID,
			Title:        "Filmmaking 101",
			Description:  "A beginner course from camera basics to the final cut.",
			Status:       domain.StatusPublished,
			Monetization: domain.MonetizationFree,
			Seasons: []domain.Season{
				{
					ID: "sea_001", Number: 1, Title: "Foundations",
					Episodes: []domain.Episode{
						{ID: "ep_001", Number: 1, Title: "Cameras and Lenses", VideoID: "vid_001", Duration: "12:34", Status: domain.StatusPublished, Monetization: domain.MonetizationFree},
						{ID: "ep_002", Number: 2, Title: "Editing Basics", VideoID: "vid_002", Duration: "24:15", Status: domain.StatusPublished, Monetization: domain.MonetizationFree},
					},
				},
				{
					ID: "sea_002", Number: 2, Title: "Lighting",
					Episodes: []domain.Episode{
						{ID: "ep_003", Number: 1, Title: "Lighting on a Budget", VideoID: "vid_006", Duration: "1:02:10", Status: domain.StatusPublished, Monetization: domain.MonetizationFree},
						{ID: "ep_004", Number: 2, Title: "Night Exteriors", Duration: "18:00", Status: domain.StatusScheduled, Monetization: domain.MonetizationFree, ReleaseAt: &release},
					},
				},
			},
			CreatedAt: base,
		},
		{
			ID: "ser_002", OwnerID: CreatorID,
			Title:        "Choose Your Path",
			Description:  "Interactive mini-series for members.",
			Status:       domain.StatusPublished,
			Monetization: domain.MonetizationSubscription,
			Seasons: []domain.Season{
				{
					ID: "sea_003", Number: 1, Title: "Season One",
					Episodes: []domain.Episode{
						{ID: "ep_005", Number: 1, Title: "The Crossroads", VideoID: "vid_003", Duration: "8:45", Status: domain.StatusPublished, Monetization: domain.MonetizationSubscription},
						{ID: "ep_006", Number: 2, Title: "The Forest", Duration: "9:10", Status: domain.StatusDraft, Monetization: domain.MonetizationSubscription},
					},
				},
			},
			CreatedAt: base.Add(10 * 24 * time.Hour),
		},
		{
			ID: "ser_003", OwnerID: CreatorID,
			Title:        "Masterclass: Documentary",
			Description:  "Premium course, sold per view.",
			Status:       domain.StatusDraft,
			Monetization: domain.MonetizationPayPerView,
			Price:        4.99,
			Seasons:      []domain.Season{},
			CreatedAt:    base.Add(30 * 24 * time.Hour),
		},
		{
			ID: "ser_004", OwnerID: AdminID,
			Title:        "Platform Onboarding",
			Description:  "Official onboarding for new creators.",
			Status:       domain.StatusPublished,
			Monetization: domain.MonetizationFree,
			Seasons: []domain.Season{
				{
					ID: "sea_004", Number: 1, Title: "Welcome",
					Episodes: []domain.Episode{
						{ID: "ep_007", Number: 1, Title: "Platform Announcements", VideoID: "vid_007", Duration: "4:20", Status: domain.StatusPublished, Monetization: domain.MonetizationFree},
					},
				},
			},
			CreatedAt: base.Add(2 * 24 * time.Hour),
		},
	}

	for _, s := range series {
		s.Thumbnail = thumb(string(s.ID))
		s.UpdatedAt = s.CreatedAt
	}
	return series
}
