package ports

import (
	"context"
	"time"

	"fluvid/internal/core/domain"
)

type SessionService interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, name, email, password string) (*domain.Session, error)
	Logout(ctx context.Context, id domain.SessionID) error
	Current(ctx context.Context, id domain.SessionID) (*domain.User, error)
	// Rewrite replaces the user stored in an open session, keeping its expiry.
	Rewrite(ctx context.Context, id domain.SessionID, user *domain.User) error
}

type PermissionService interface {
	HasPermission(ctx context.Context, perm domain.Permission) bool
	Granted(ctx context.Context) []domain.Permission
}

type UploadRequest struct {
	Title     string
	FileName  string
	SizeBytes int64
}

type VideoService interface {
	List(ctx context.Context, caller *domain.User, filter domain.VideoFilter) ([]*domain.Video, error)
	Get(ctx context.Context, caller *domain.User, id domain.VideoID) (*domain.Video, error)
	Update(ctx context.Context, caller *domain.User, id domain.VideoID, patch domain.VideoPatch) (*domain.Video, error)
	Delete(ctx context.Context, caller *domain.User, id domain.VideoID) error
	Upload(ctx context.Context, caller *domain.User, req UploadRequest) (*domain.Video, *domain.Job, error)
	Import(ctx context.Context, caller *domain.User, url string) (*domain.Job, error)
	AddChapter(ctx context.Context, caller *domain.User, id domain.VideoID, title, start string) (*domain.Video, error)
	RemoveChapter(ctx context.Context, caller *domain.User, id domain.VideoID, chapterID domain.ChapterID) (*domain.Video, error)
	CopyrightScan(ctx context.Context, caller *domain.User, id domain.VideoID) (*domain.Job, error)
}

type SeriesInput struct {
	Title        string
	Description  string
	Thumbnail    string
	Status       domain.ContentStatus
	Monetization domain.Monetization
	Price        float64
}

type EpisodeInput struct {
	Title        string
	VideoID      domain.VideoID
	Duration     string
	Status       domain.ContentStatus
	Monetization domain.Monetization
}

type SeriesService interface {
	List(ctx context.Context, caller *domain.User, filter domain.SeriesFilter) ([]*domain.Series, error)
	Get(ctx context.Context, caller *domain.User, id domain.SeriesID) (*domain.Series, error)
	Create(ctx context.Context, caller *domain.User, in SeriesInput) (*domain.Series, error)
	Update(ctx context.Context, caller *domain.User, id domain.SeriesID, patch domain.SeriesPatch) (*domain.Series, error)
	Delete(ctx context.Context, caller *domain.User, id domain.SeriesID) error
	AddSeason(ctx context.Context, caller *domain.User, id domain.SeriesID, title string) (*domain.Series, error)
	AddEpisode(ctx context.Context, caller *domain.User, id domain.SeriesID, seasonID domain.SeasonID, in EpisodeInput) (*domain.Series, error)
	UpdateEpisode(ctx context.Context, caller *domain.User, id domain.SeriesID, episodeID domain.EpisodeID, patch domain.EpisodePatch) (*domain.Series, error)
	DeleteEpisode(ctx context.Context, caller *domain.User, id domain.SeriesID, episodeID domain.EpisodeID) (*domain.Series, error)
	ScheduleRelease(ctx context.Context, caller *domain.User, id domain.SeriesID, episodeID domain.EpisodeID, at time.Time) (*domain.Series, error)
	PublishDue(ctx context.Context, now time.Time) (int, error)
}

type AnalyticsService interface {
	Overview(ctx context.Context, caller *domain.User, rangeKey string) (*domain.AnalyticsOverview, error)
	Video(ctx context.Context, caller *domain.User, id domain.VideoID) (*domain.VideoAnalytics, error)
}

type DashboardService interface {
	Summary(ctx context.Context, caller *domain.User) (*domain.Dashboard, error)
}

type ProfilePatch struct {
	Name   *string
	Email  *string
	Avatar *string
}

type ProfileService interface {
	Get(ctx context.Context, caller *domain.User) (*domain.User, error)
	Update(ctx context.Context, caller *domain.User, patch ProfilePatch) (*domain.User, error)
	Monetization(ctx context.Context, caller *domain.User) (*domain.MonetizationSettings, error)
	UpdateMonetization(ctx context.Context, caller *domain.User, settings domain.MonetizationSettings) (*domain.MonetizationSettings, error)
	CheckMonetization(ctx context.Context, caller *domain.User) (*domain.Job, error)
}

// JobStep runs one simulated stage of a job.
type JobStep struct {
	Label string
}

// JobCompletion runs after the last step. A non-nil result is stored on the job as JSON;
// a non-nil error fails the job.
type JobCompletion func(ctx context.Context) (result interface{}, toast *domain.Toast, err error)

type JobRunner interface {
	Submit(ctx context.Context, kind domain.JobKind, owner domain.UserID, target string, steps []JobStep, onComplete JobCompletion) (*domain.Job, error)
	Get(ctx context.Context, caller *domain.User, id domain.JobID) (*domain.Job, error)
	Active(ctx context.Context, owner domain.UserID) ([]*domain.Job, error)
	Subscribe(id domain.JobID) (<-chan domain.JobEvent, func())
	Stop()
}

// MetricsRecorder receives business events for the metrics exporter.
type MetricsRecorder interface {
	RecordLogin(success bool)
	RecordRegistration()
	RecordJob(kind domain.JobKind, status domain.JobStatus, duration time.Duration)
	RecordVideoMutation(action string)
}
