package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/pkg/utils"
	"fluvid/pkg/validation"

	"go.uber.org/zap"
)

// MaxPrice is the highest price accepted for pay-per-view content and subscriptions.
const MaxPrice = 999.0

type seriesService struct {
	series ports.SeriesRepository
	videos ports.VideoRepository
	logger *zap.SugaredLogger
}

func NewSeriesService(series ports.SeriesRepository, videos ports.VideoRepository, logger *zap.SugaredLogger) ports.SeriesService {
	return &seriesService{
		series: series,
		videos: videos,
		logger: logger,
	}
}

func (s *seriesService) List(ctx context.Context, caller *domain.User, filter domain.SeriesFilter) ([]*domain.Series, error) {
	if caller == nil {
		return nil, domain.ErrUserNotFound
	}
	if !domain.RoleHasPermission(caller.Role, domain.PermViewAllContent) {
		filter.OwnerID = caller.ID
	}
	all, err := s.series.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	return FilterSeries(all, filter), nil
}

func (s *seriesService) Get(ctx context.Context, caller *domain.User, id domain.SeriesID) (*domain.Series, error) {
	series, err := s.series.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(caller, series.OwnerID) {
		return nil, domain.ErrSeriesNotFound
	}
	return series, nil
}

func (s *seriesService) editable(ctx context.Context, caller *domain.User, id domain.SeriesID) (*domain.Series, error) {
	series, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !domain.RoleHasPermission(caller.Role, domain.PermManageSeries) {
		return nil, domain.ErrForbidden
	}
	return series, nil
}

// mutate applies fn under the repository lock once caller may manage the series.
func (s *seriesService) mutate(ctx context.Context, caller *domain.User, id domain.SeriesID, fn func(*domain.Series) error) (*domain.Series, error) {
	return s.series.Mutate(ctx, id, func(series *domain.Series) error {
		if !canAccess(caller, series.OwnerID) {
			return domain.ErrSeriesNotFound
		}
		if !domain.RoleHasPermission(caller.Role, domain.PermManageSeries) {
			return domain.ErrForbidden
		}
		if err := fn(series); err != nil {
			return err
		}
		series.UpdatedAt = utils.Now().UTC()
		return nil
	})
}

// priceFor applies the monetization rule: pay-per-view needs a positive price, everything else is free of charge.
func priceFor(m domain.Monetization, price float64) (float64, error) {
	if m != domain.MonetizationPayPerView {
		return 0, nil
	}
	if price <= 0 {
		return 0, domain.ErrInvalidPrice
	}
	if err := validation.ValidatePrice(price, MaxPrice); err != nil {
		return 0, domain.NewValidationError("price", err)
	}
	return price, nil
}

func (s *seriesService) Create(ctx context.Context, caller *domain.User, in ports.SeriesInput) (*domain.Series, error) {
	if !domain.RoleHasPermission(caller.Role, domain.PermManageSeries) {
		return nil, domain.ErrForbidden
	}

	title := utils.SanitizeString(in.Title)
	if err := validation.ValidateTitle(title); err != nil {
		return nil, domain.NewValidationError("title", err)
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, domain.NewValidationError("description", err)
	}

	status := in.Status
	if status == "" {
		status = domain.StatusDraft
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Errorf("must be published, draft or scheduled"))
	}
	monetization := in.Monetization
	if monetization == "" {
		monetization = domain.MonetizationFree
	}
	if !monetization.Valid() {
		return nil, domain.NewValidationError("monetization", fmt.Errorf("must be free, subscription or pay-per-view"))
	}
	price, err := priceFor(monetization, in.Price)
	if err != nil {
		return nil, err
	}

	now := utils.Now().UTC()
	series := &domain.Series{
		ID:           domain.SeriesID(utils.NewSeriesID()),
		OwnerID:      caller.ID,
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Thumbnail:    in.Thumbnail,
		Status:       status,
		Monetization: monetization,
		Price:        price,
		Seasons:      []domain.Season{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if series.Thumbnail == "" {
		series.Thumbnail = "https://picsum.photos/seed/" + string(series.ID) + "/640/360"
	}
	if err := s.series.Create(ctx, series); err != nil {
		return nil, fmt.Errorf("failed to create series: %w", err)
	}

	s.logger.Infow("series created", "series_id", series.ID, "owner", caller.ID)
	return series, nil
}

func (s *seriesService) Update(ctx context.Context, caller *domain.User, id domain.SeriesID, patch domain.SeriesPatch) (*domain.Series, error) {
	return s.mutate(ctx, caller, id, func(series *domain.Series) error {
		return applySeriesPatch(series, patch)
	})
}

func applySeriesPatch(series *domain.Series, patch domain.SeriesPatch) error {
	if patch.Title != nil {
		title := utils.SanitizeString(*patch.Title)
		if err := validation.ValidateTitle(title); err != nil {
			return domain.NewValidationError("title", err)
		}
		series.Title = title
	}
	if patch.Description != nil {
		if err := validation.ValidateDescription(*patch.Description); err != nil {
			return domain.NewValidationError("description", err)
		}
		series.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Thumbnail != nil {
		if err := validation.ValidateURL(*patch.Thumbnail); err != nil {
			return domain.NewValidationError("thumbnail", err)
		}
		series.Thumbnail = *patch.Thumbnail
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return domain.NewValidationError("status", fmt.Errorf("must be published, draft or scheduled"))
		}
		series.Status = *patch.Status
	}
	if patch.Monetization != nil {
		if !patch.Monetization.Valid() {
			return domain.NewValidationError("monetization", fmt.Errorf("must be free, subscription or pay-per-view"))
		}
		series.Monetization = *patch.Monetization
	}

	price := series.Price
	if patch.Price != nil {
		price = *patch.Price
	}
	p, err := priceFor(series.Monetization, price)
	if err != nil {
		return err
	}
	series.Price = p
	return nil
}

func (s *seriesService) Delete(ctx context.Context, caller *domain.User, id domain.SeriesID) error {
	if _, err := s.editable(ctx, caller, id); err != nil {
		return err
	}
	if err := s.series.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("series deleted", "series_id", id, "by", caller.ID)
	return nil
}

// AddSeason appends a season numbered one past the current highest.
func (s *seriesService) AddSeason(ctx context.Context, caller *domain.User, id domain.SeriesID, title string) (*domain.Series, error) {
	return s.mutate(ctx, caller, id, func(series *domain.Series) error {
		number := 1
		for _, season := range series.Seasons {
			if season.Number >= number {
				number = season.Number + 1
			}
		}

		title := utils.SanitizeString(title)
		if title == "" {
			title = fmt.Sprintf("Season %d", number)
		}
		if err := validation.ValidateTitle(title); err != nil {
			return domain.NewValidationError("title", err)
		}

		series.Seasons = append(series.Seasons, domain.Season{
			ID:       domain.SeasonID(utils.NewSeasonID()),
			Number:   number,
			Title:    title,
			Episodes: []domain.Episode{},
		})
		return nil
	})
}

func (s *seriesService) AddEpisode(ctx context.Context, caller *domain.User, id domain.SeriesID, seasonID domain.SeasonID, in ports.EpisodeInput) (*domain.Series, error) {
	return s.mutate(ctx, caller, id, func(series *domain.Series) error {
		season := series.FindSeason(seasonID)
		if season == nil {
			return domain.ErrSeasonNotFound
		}

		title := utils.SanitizeString(in.Title)
		if err := validation.ValidateTitle(title); err != nil {
			return domain.NewValidationError("title", err)
		}

		status := in.Status
		if status == "" {
			status = domain.StatusDraft
		}
		if status != domain.StatusDraft && status != domain.StatusPublished {
			return domain.NewValidationError("status", fmt.Errorf("new episodes are draft or published; use the schedule action for a release date"))
		}

		monetization := in.Monetization
		if monetization == "" {
			monetization = series.Monetization
		}
		if !monetization.Valid() {
			return domain.NewValidationError("monetization", fmt.Errorf("must be free, subscription or pay-per-view"))
		}

		duration, err := s.episodeDuration(ctx, caller, in.VideoID, in.Duration)
		if err != nil {
			return err
		}

		number := 1
		for _, ep := range season.Episodes {
			if ep.Number >= number {
				number = ep.Number + 1
			}
		}

		season.Episodes = append(season.Episodes, domain.Episode{
			ID:           domain.EpisodeID(utils.NewEpisodeID()),
			Number:       number,
			Title:        title,
			VideoID:      in.VideoID,
			Duration:     duration,
			Status:       status,
			Monetization: monetization,
		})
		return nil
	})
}

// episodeDuration validates an explicit duration or borrows it from the linked video.
func (s *seriesService) episodeDuration(ctx context.Context, caller *domain.User, videoID domain.VideoID, duration string) (string, error) {
	duration = strings.TrimSpace(duration)
	if videoID != "" {
		video, err := s.videos.GetByID(ctx, videoID)
		if err != nil {
			return "", err
		}
		if !canAccess(caller, video.OwnerID) {
			return "", domain.ErrVideoNotFound
		}
		if duration == "" {
			duration = video.Duration
		}
	}
	if duration == "" {
		return "", nil
	}
	if validation.ValidateDuration(duration) != nil {
		return "", domain.ErrInvalidDuration
	}
	return duration, nil
}

func (s *seriesService) UpdateEpisode(ctx context.Context, caller *domain.User, id domain.SeriesID, episodeID domain.EpisodeID, patch domain.EpisodePatch) (*domain.Series, error) {
	return s.mutate(ctx, caller, id, func(series *domain.Series) error {
		_, ep := series.FindEpisode(episodeID)
		if ep == nil {
			return domain.ErrEpisodeNotFound
		}
		return s.applyEpisodePatch(ctx, caller, ep, patch)
	})
}

func (s *seriesService) applyEpisodePatch(ctx context.Context, caller *domain.User, ep *domain.Episode, patch domain.EpisodePatch) error {
	if patch.Title != nil {
		title := utils.SanitizeString(*patch.Title)
		if err := validation.ValidateTitle(title); err != nil {
			return domain.NewValidationError("title", err)
		}
		ep.Title = title
	}
	if patch.VideoID != nil || patch.Duration != nil {
		videoID := ep.VideoID
		if patch.VideoID != nil {
			videoID = *patch.VideoID
		}
		duration := ""
		if patch.Duration != nil {
			duration = *patch.Duration
		} else if patch.VideoID == nil {
			duration = ep.Duration
		}
		d, err := s.episodeDuration(ctx, caller, videoID, duration)
		if err != nil {
			return err
		}
		ep.VideoID = videoID
		ep.Duration = d
	}
	if patch.Status != nil {
		switch *patch.Status {
		case domain.StatusDraft, domain.StatusPublished:
			ep.Status = *patch.Status
			ep.ReleaseAt = nil
		case domain.StatusScheduled:
			return domain.NewValidationError("status", fmt.Errorf("use the schedule action to set a release date"))
		default:
			return domain.NewValidationError("status", fmt.Errorf("must be published, draft or scheduled"))
		}
	}
	if patch.Monetization != nil {
		if !patch.Monetization.Valid() {
			return domain.NewValidationError("monetization", fmt.Errorf("must be free, subscription or pay-per-view"))
		}
		ep.Monetization = *patch.Monetization
	}
	return nil
}

func (s *seriesService) DeleteEpisode(ctx context.Context, caller *domain.User, id domain.SeriesID, episodeID domain.EpisodeID) (*domain.Series, error) {
	return s.mutate(ctx, caller, id, func(series *domain.Series) error {
		season, _ := series.FindEpisode(episodeID)
		if season == nil {
			return domain.ErrEpisodeNotFound
		}
		for i := range season.Episodes {
			if season.Episodes[i].ID == episodeID {
				season.Episodes = append(season.Episodes[:i], season.Episodes[i+1:]...)
				break
			}
		}
		return nil
	})
}

// ScheduleRelease marks an episode scheduled for a future time.
func (s *seriesService) ScheduleRelease(ctx context.Context, caller *domain.User, id domain.SeriesID, episodeID domain.EpisodeID, at time.Time) (*domain.Series, error) {
	return s.mutate(ctx, caller, id, func(series *domain.Series) error {
		_, ep := series.FindEpisode(episodeID)
		if ep == nil {
			return domain.ErrEpisodeNotFound
		}
		if !at.After(utils.Now()) {
			return domain.ErrInvalidScheduleTime
		}

		releaseAt := at.UTC()
		ep.Status = domain.StatusScheduled
		ep.ReleaseAt = &releaseAt
		return nil
	})
}

// releaseDue publishes the episodes whose release time has passed and returns their ids.
func releaseDue(series *domain.Series, now time.Time) []domain.EpisodeID {
	var released []domain.EpisodeID
	for i := range series.Seasons {
		for j := range series.Seasons[i].Episodes {
			ep := &series.Seasons[i].Episodes[j]
			if ep.Status != domain.StatusScheduled || ep.ReleaseAt == nil || ep.ReleaseAt.After(now) {
				continue
			}
			ep.Status = domain.StatusPublished
			ep.ReleaseAt = nil
			released = append(released, ep.ID)
		}
	}
	return released
}

// PublishDue publishes every scheduled episode whose release time has passed.
// The listing only picks candidates; each series is re-checked inside Mutate against its current state.
func (s *seriesService) PublishDue(ctx context.Context, now time.Time) (int, error) {
	all, err := s.series.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list series: %w", err)
	}

	published := 0
	for _, candidate := range all {
		if len(releaseDue(candidate, now)) == 0 {
			continue
		}

		var released []domain.EpisodeID
		_, err := s.series.Mutate(ctx, candidate.ID, func(series *domain.Series) error {
			released = releaseDue(series, now)
			if len(released) > 0 {
				series.UpdatedAt = now.UTC()
			}
			return nil
		})
		if errors.Is(err, domain.ErrSeriesNotFound) {
			continue
		}
		if err != nil {
			return published, fmt.Errorf("failed to update series %s: %w", candidate.ID, err)
		}

		published += len(released)
		for _, id := range released {
			s.logger.Infow("episode released", "series_id", candidate.ID, "episode_id", id)
		}
	}
	return published, nil
}
