package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/fixtures"
	"fluvid/pkg/utils"
	"fluvid/pkg/validation"

	"go.uber.org/zap"
)

// VideoChangeListener is told whenever an owner's library changes.
type VideoChangeListener interface {
	VideosChanged(owner domain.UserID)
}

var (
	uploadSteps = []ports.JobStep{{Label: "Uploading"}, {Label: "Processing"}, {Label: "Generating thumbnails"}, {Label: "Finalizing"}}
	importSteps = []ports.JobStep{{Label: "Fetching metadata"}, {Label: "Downloading"}, {Label: "Processing"}}
	scanSteps   = []ports.JobStep{{Label: "Fingerprinting audio"}, {Label: "Matching video"}, {Label: "Checking claims"}}
)

type videoService struct {
	videos    ports.VideoRepository
	jobs      ports.JobRunner
	listeners []VideoChangeListener
	metrics   ports.MetricsRecorder
	logger    *zap.SugaredLogger
}

func NewVideoService(
	videos ports.VideoRepository,
	jobs ports.JobRunner,
	metrics ports.MetricsRecorder,
	logger *zap.SugaredLogger,
	listeners ...VideoChangeListener,
) ports.VideoService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &videoService{
		videos:    videos,
		jobs:      jobs,
		listeners: listeners,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *videoService) changed(owner domain.UserID, action string) {
	s.metrics.RecordVideoMutation(action)
	for _, l := range s.listeners {
		l.VideosChanged(owner)
	}
}

// List returns the caller's videos, or everyone's for callers allowed to view all content.
func (s *videoService) List(ctx context.Context, caller *domain.User, filter domain.VideoFilter) ([]*domain.Video, error) {
	if caller == nil {
		return nil, domain.ErrUserNotFound
	}
	if !domain.RoleHasPermission(caller.Role, domain.PermViewAllContent) {
		filter.OwnerID = caller.ID
	}

	all, err := s.videos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	result := FilterVideos(all, filter)
	SortVideos(result, filter.Sort)
	return result, nil
}

func (s *videoService) Get(ctx context.Context, caller *domain.User, id domain.VideoID) (*domain.Video, error) {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(caller, video.OwnerID) {
		return nil, domain.ErrVideoNotFound
	}
	return video, nil
}

func (s *videoService) editable(ctx context.Context, caller *domain.User, id domain.VideoID, perm domain.Permission) (*domain.Video, error) {
	video, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !domain.RoleHasPermission(caller.Role, perm) {
		return nil, domain.ErrForbidden
	}
	return video, nil
}

// mutate applies fn under the repository lock once caller holds perm on the video.
func (s *videoService) mutate(ctx context.Context, caller *domain.User, id domain.VideoID, perm domain.Permission, fn func(*domain.Video) error) (*domain.Video, error) {
	return s.videos.Mutate(ctx, id, func(video *domain.Video) error {
		if !canAccess(caller, video.OwnerID) {
			return domain.ErrVideoNotFound
		}
		if !domain.RoleHasPermission(caller.Role, perm) {
			return domain.ErrForbidden
		}
		if err := fn(video); err != nil {
			return err
		}
		video.UpdatedAt = utils.Now().UTC()
		return nil
	})
}

func (s *videoService) Update(ctx context.Context, caller *domain.User, id domain.VideoID, patch domain.VideoPatch) (*domain.Video, error) {
	video, err := s.mutate(ctx, caller, id, domain.PermEditVideo, func(video *domain.Video) error {
		return applyVideoPatch(video, patch)
	})
	if err != nil {
		return nil, err
	}
	s.changed(video.OwnerID, "update")
	return video, nil
}

func applyVideoPatch(video *domain.Video, patch domain.VideoPatch) error {
	if patch.Title != nil {
		title := utils.SanitizeString(*patch.Title)
		if err := validation.ValidateTitle(title); err != nil {
			return domain.NewValidationError("title", err)
		}
		video.Title = title
	}
	if patch.Description != nil {
		if err := validation.ValidateDescription(*patch.Description); err != nil {
			return domain.NewValidationError("description", err)
		}
		video.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Privacy != nil {
		if !patch.Privacy.Valid() {
			return domain.NewValidationError("privacy", fmt.Errorf("must be public, unlisted or private"))
		}
		video.Privacy = *patch.Privacy
	}
	if patch.Interactive != nil {
		video.Interactive = *patch.Interactive
	}
	if patch.Tags != nil {
		if err := validation.ValidateTags(patch.Tags); err != nil {
			return domain.NewValidationError("tags", err)
		}
		video.Tags = utils.NormalizeTags(patch.Tags)
	}
	if patch.Thumbnail != nil {
		if err := validation.ValidateURL(*patch.Thumbnail); err != nil {
			return domain.NewValidationError("thumbnail", err)
		}
		video.Thumbnail = *patch.Thumbnail
	}
	return nil
}

func (s *videoService) Delete(ctx context.Context, caller *domain.User, id domain.VideoID) error {
	video, err := s.editable(ctx, caller, id, domain.PermDeleteVideo)
	if err != nil {
		return err
	}
	if err := s.videos.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(video.OwnerID, "delete")
	s.logger.Infow("video deleted", "video_id", id, "by", caller.ID)
	return nil
}

// Upload creates a processing video and the job that makes it ready.
func (s *videoService) Upload(ctx context.Context, caller *domain.User, req ports.UploadRequest) (*domain.Video, *domain.Job, error) {
	if !domain.RoleHasPermission(caller.Role, domain.PermUploadVideo) {
		return nil, nil, domain.ErrForbidden
	}

	title := utils.SanitizeString(req.Title)
	if title == "" {
		title = strings.TrimSuffix(req.FileName, filepath.Ext(req.FileName))
	}
	if err := validation.ValidateTitle(title); err != nil {
		return nil, nil, domain.NewValidationError("title", err)
	}
	if err := validation.ValidateUpload(req.FileName, req.SizeBytes); err != nil {
		return nil, nil, domain.NewValidationError("file", err)
	}

	now := utils.Now().UTC()
	video := &domain.Video{
		ID:        domain.VideoID(utils.NewVideoID()),
		OwnerID:   caller.ID,
		Title:     title,
		Privacy:   domain.PrivacyPrivate,
		Status:    domain.VideoProcessing,
		Tags:      []string{},
		Chapters:  []domain.Chapter{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	video.Thumbnail = "https://picsum.photos/seed/" + string(video.ID) + "/640/360"
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, nil, fmt.Errorf("failed to create video: %w", err)
	}
	s.changed(caller.ID, "upload")

	duration := fixtures.SimulatedDuration(req.SizeBytes)
	job, err := s.jobs.Submit(ctx, domain.JobUpload, caller.ID, string(video.ID), uploadSteps,
		func(ctx context.Context) (interface{}, *domain.Toast, error) {
			// Only the processing fields change; edits made while processing are kept.
			v, err := s.videos.Mutate(ctx, video.ID, func(v *domain.Video) error {
				v.Status = domain.VideoReady
				v.Duration = duration
				v.UpdatedAt = utils.Now().UTC()
				return nil
			})
			if err != nil {
				return nil, nil, err
			}
			s.changed(v.OwnerID, "processed")
			toast := domain.SuccessToast("Upload complete", fmt.Sprintf("%q is ready", v.Title))
			return map[string]string{"videoId": string(v.ID)}, &toast, nil
		})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Infow("upload started", "video_id", video.ID, "job_id", job.ID, "size_bytes", req.SizeBytes)
	return video, job, nil
}

// Import starts a job that adds a ready video for a YouTube or Vimeo link.
func (s *videoService) Import(ctx context.Context, caller *domain.User, url string) (*domain.Job, error) {
	if !domain.RoleHasPermission(caller.Role, domain.PermUploadVideo) {
		return nil, domain.ErrForbidden
	}
	url = strings.TrimSpace(url)
	if err := validation.ValidateImportURL(url); err != nil {
		return nil, domain.NewValidationError("url", err)
	}

	owner := caller.ID
	return s.jobs.Submit(ctx, domain.JobImport, owner, url, importSteps,
		func(ctx context.Context) (interface{}, *domain.Toast, error) {
			now := utils.Now().UTC()
			video := &domain.Video{
				ID:          domain.VideoID(utils.NewVideoID()),
				OwnerID:     owner,
				Title:       fixtures.ImportedTitle(url),
				Description: "Imported from " + url,
				Duration:    fixtures.SimulatedDuration(int64(len(url)) << 24),
				Privacy:     domain.PrivacyPrivate,
				Status:      domain.VideoReady,
				Tags:        []string{"imported"},
				Chapters:    []domain.Chapter{},
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			video.Thumbnail = "https://picsum.photos/seed/" + string(video.ID) + "/640/360"
			if err := s.videos.Create(ctx, video); err != nil {
				return nil, nil, err
			}
			s.changed(owner, "import")
			toast := domain.SuccessToast("Import complete", fmt.Sprintf("%q was added to your library", video.Title))
			return map[string]string{"videoId": string(video.ID)}, &toast, nil
		})
}

// AddChapter inserts a chapter keeping the list sorted with unique start times inside the video.
func (s *videoService) AddChapter(ctx context.Context, caller *domain.User, id domain.VideoID, title, start string) (*domain.Video, error) {
	return s.mutate(ctx, caller, id, domain.PermEditVideo, func(video *domain.Video) error {
		title := utils.SanitizeString(title)
		if err := validation.ValidateStringLength(title, 1, 100, "chapter title"); err != nil {
			return domain.NewValidationError("title", err)
		}

		start := strings.TrimSpace(start)
		if validation.ValidateChapterTime(start) != nil {
			return domain.ErrInvalidChapterTime
		}
		secs, err := utils.ParseTimecode(start)
		if err != nil {
			return domain.ErrInvalidChapterTime
		}

		if video.Status != domain.VideoReady {
			return domain.ErrVideoNotReady
		}
		length, err := utils.ParseTimecode(video.Duration)
		if err != nil {
			return domain.ErrInvalidDuration
		}
		if secs > length {
			return domain.ErrChapterPastEnd
		}
		for _, ch := range video.Chapters {
			if ch.StartSeconds == secs {
				return domain.ErrDuplicateChapter
			}
		}

		video.Chapters = append(video.Chapters, domain.Chapter{
			ID:           domain.ChapterID(utils.NewChapterID()),
			Title:        title,
			Start:        utils.FormatChapterTime(secs),
			StartSeconds: secs,
		})
		sort.Slice(video.Chapters, func(i, j int) bool {
			return video.Chapters[i].StartSeconds < video.Chapters[j].StartSeconds
		})
		return nil
	})
}

func (s *videoService) RemoveChapter(ctx context.Context, caller *domain.User, id domain.VideoID, chapterID domain.ChapterID) (*domain.Video, error) {
	return s.mutate(ctx, caller, id, domain.PermEditVideo, func(video *domain.Video) error {
		for i, ch := range video.Chapters {
			if ch.ID == chapterID {
				video.Chapters = append(video.Chapters[:i], video.Chapters[i+1:]...)
				return nil
			}
		}
		return domain.ErrChapterNotFound
	})
}

// CopyrightScan runs a simulated scan that always comes back clean.
func (s *videoService) CopyrightScan(ctx context.Context, caller *domain.User, id domain.VideoID) (*domain.Job, error) {
	video, err := s.editable(ctx, caller, id, domain.PermEditVideo)
	if err != nil {
		return nil, err
	}

	title := video.Title
	return s.jobs.Submit(ctx, domain.JobCopyrightScan, caller.ID, string(video.ID), scanSteps,
		func(ctx context.Context) (interface{}, *domain.Toast, error) {
			toast := domain.SuccessToast("Copyright scan complete", fmt.Sprintf("No issues found in %q", title))
			return map[string]interface{}{"issues": 0, "message": "no issues found"}, &toast, nil
		})
}
