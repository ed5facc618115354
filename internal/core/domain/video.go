package domain

import "time"

type VideoID string
type ChapterID string

type Privacy string

const (
	PrivacyPublic   Privacy = "public"
	PrivacyUnlisted Privacy = "unlisted"
	PrivacyPrivate  Privacy = "private"
)

func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyUnlisted, PrivacyPrivate:
		return true
	}
	return false
}

type VideoStatus string

const (
	VideoProcessing VideoStatus = "processing"
	VideoReady      VideoStatus = "ready"
)

type Video struct {
	ID          VideoID     `json:"id"`
	OwnerID     UserID      `json:"ownerId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Thumbnail   string      `json:"thumbnail"`
	Duration    string      `json:"duration"` // "M:SS" or "H:MM:SS"; empty while processing
	Views       int64       `json:"views"`
	Likes       int64       `json:"likes"`
	Privacy     Privacy     `json:"privacy"`
	Interactive bool        `json:"interactive"`
	Tags        []string    `json:"tags"`
	Status      VideoStatus `json:"status"`
	Chapters    []Chapter   `json:"chapters"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Chapter marks a named position in a video. Start is "MM:SS".
type Chapter struct {
	ID           ChapterID `json:"id"`
	Title        string    `json:"title"`
	Start        string    `json:"start"`
	StartSeconds int       `json:"startSeconds"`
}

// Clone returns a deep copy so callers cannot mutate repository state.
func (v *Video) Clone() *Video {
	c := *v
	c.Tags = append([]string(nil), v.Tags...)
	c.Chapters = append([]Chapter(nil), v.Chapters...)
	return &c
}

// HasTag reports whether the video carries tag (already normalized).
func (v *Video) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// VideoPatch holds the editable fields; nil means unchanged.
type VideoPatch struct {
	Title       *string
	Description *string
	Privacy     *Privacy
	Interactive *bool
	Tags        []string
	Thumbnail   *string
}

type VideoSort string

const (
	SortNewest VideoSort = "newest"
	SortOldest VideoSort = "oldest"
	SortViews  VideoSort = "views"
	SortLikes  VideoSort = "likes"
	SortTitle  VideoSort = "title"
)

// VideoFilter selects a subset of videos. Zero values match everything.
type VideoFilter struct {
	OwnerID     UserID
	Privacy     Privacy
	Status      VideoStatus
	Interactive *bool
	Tag         string
	Query       string
	Sort        VideoSort
}
