package services

import (
	"context"
	"fmt"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
)

const recentVideoCount = 5

type dashboardService struct {
	videos ports.VideoService
	series ports.SeriesService
	jobs   ports.JobRunner
}

func NewDashboardService(videos ports.VideoService, series ports.SeriesService, jobs ports.JobRunner) ports.DashboardService {
	return &dashboardService{videos: videos, series: series, jobs: jobs}
}

func (s *dashboardService) Summary(ctx context.Context, caller *domain.User) (*domain.Dashboard, error) {
	videos, err := s.videos.List(ctx, caller, domain.VideoFilter{Sort: domain.SortNewest})
	if err != nil {
		return nil, err
	}
	series, err := s.series.List(ctx, caller, domain.SeriesFilter{})
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.Active(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	d := &domain.Dashboard{
		VideoCount:  len(videos),
		SeriesCount: len(series),
		ActiveJobs:  jobs,
	}
	for _, v := range videos {
		d.TotalViews += v.Views
		d.TotalLikes += v.Likes
	}
	if len(videos) > recentVideoCount {
		videos = videos[:recentVideoCount]
	}
	d.RecentVideos = videos
	return d, nil
}
