package domain

import "time"

type SeriesID string
type SeasonID string
type EpisodeID string

type ContentStatus string

const (
	StatusPublished ContentStatus = "published"
	StatusDraft     ContentStatus = "draft"
	StatusScheduled ContentStatus = "scheduled"
)

func (s ContentStatus) Valid() bool {
	switch s {
	case StatusPublished, StatusDraft, StatusScheduled:
		return true
	}
	return false
}

type Monetization string

const (
	MonetizationFree         Monetization = "free"
	MonetizationSubscription Monetization = "subscription"
	MonetizationPayPerView   Monetization = "pay-per-view"
)

func (m Monetization) Valid() bool {
	switch m {
	case MonetizationFree, MonetizationSubscription, MonetizationPayPerView:
		return true
	}
	return false
}

type Series struct {
	ID           SeriesID      `json:"id"`
	OwnerID      UserID        `json:"ownerId"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Thumbnail    string        `json:"thumbnail"`
	Status       ContentStatus `json:"status"`
	Monetization Monetization  `json:"monetization"`
	Price        float64       `json:"price"`
	Seasons      []Season      `json:"seasons"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type Season struct {
	ID       SeasonID  `json:"id"`
	Number   int       `json:"number"`
	Title    string    `json:"title"`
	Episodes []Episode `json:"episodes"`
}

type Episode struct {
	ID           EpisodeID     `json:"id"`
	Number       int           `json:"number"`
	Title        string        `json:"title"`
	VideoID      VideoID       `json:"videoId,omitempty"`
	Duration     string        `json:"duration"`
	Status       ContentStatus `json:"status"`
	Monetization Monetization  `json:"monetization"`
	ReleaseAt    *time.Time    `json:"releaseAt,omitempty"`
}

// EpisodeCount totals episodes across all seasons.
func (s *Series) EpisodeCount() int {
	n := 0
	for _, season := range s.Seasons {
		n += len(season.Episodes)
	}
	return n
}

// FindEpisode returns pointers into s so the caller can edit in place.
func (s *Series) FindEpisode(id EpisodeID) (*Season, *Episode) {
	for i := range s.Seasons {
		for j := range s.Seasons[i].Episodes {
			if s.Seasons[i].Episodes[j].ID == id {
				return &s.Seasons[i], &s.Seasons[i].Episodes[j]
			}
		}
	}
	return nil, nil
}

func (s *Series) FindSeason(id SeasonID) *Season {
	for i := range s.Seasons {
		if s.Seasons[i].ID == id {
			return &s.Seasons[i]
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s *Series) Clone() *Series {
	c := *s
	c.Seasons = make([]Season, len(s.Seasons))
	for i, season := range s.Seasons {
		season.Episodes = append([]Episode(nil), season.Episodes...)
		for j := range season.Episodes {
			if at := season.Episodes[j].ReleaseAt; at != nil {
				t := *at
				season.Episodes[j].ReleaseAt = &t
			}
		}
		c.Seasons[i] = season
	}
	return &c
}

type SeriesPatch struct {
	Title        *string
	Description  *string
	Thumbnail    *string
	Status       *ContentStatus
	Monetization *Monetization
	Price        *float64
}

type EpisodePatch struct {
	Title        *string
	VideoID      *VideoID
	Duration     *string
	Status       *ContentStatus
	Monetization *Monetization
}

// SeriesFilter selects a subset of series. Zero values match everything.
type SeriesFilter struct {
	OwnerID      UserID
	Status       ContentStatus
	Monetization Monetization
	Query        string
}
