package services

import (
	"sort"
	"strings"

	"fluvid/internal/core/domain"
	"fluvid/pkg/utils"
)

// FilterVideos keeps the videos matching every set predicate of f, in input order.
func FilterVideos(videos []*domain.Video, f domain.VideoFilter) []*domain.Video {
	tag := strings.ToLower(strings.TrimSpace(f.Tag))
	query := strings.TrimSpace(f.Query)

	out := make([]*domain.Video, 0, len(videos))
	for _, v := range videos {
		if f.OwnerID != "" && v.OwnerID != f.OwnerID {
			continue
		}
		if f.Privacy != "" && v.Privacy != f.Privacy {
			continue
		}
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.Interactive != nil && v.Interactive != *f.Interactive {
			continue
		}
		if tag != "" && !v.HasTag(tag) {
			continue
		}
		if query != "" && !videoMatches(v, query) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func videoMatches(v *domain.Video, query string) bool {
	if utils.ContainsFold(v.Title, query) || utils.ContainsFold(v.Description, query) {
		return true
	}
	for _, t := range v.Tags {
		if utils.ContainsFold(t, query) {
			return true
		}
	}
	return false
}

// SortVideos orders videos in place. Unknown orders fall back to newest first; ties break on id.
func SortVideos(videos []*domain.Video, order domain.VideoSort) {
	less := func(a, b *domain.Video) bool { return a.CreatedAt.After(b.CreatedAt) }
	switch order {
	case domain.SortOldest:
		less = func(a, b *domain.Video) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case domain.SortViews:
		less = func(a, b *domain.Video) bool { return a.Views > b.Views }
	case domain.SortLikes:
		less = func(a, b *domain.Video) bool { return a.Likes > b.Likes }
	case domain.SortTitle:
		less = func(a, b *domain.Video) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	}
	sort.SliceStable(videos, func(i, j int) bool {
		a, b := videos[i], videos[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID < b.ID
	})
}

// FilterSeries keeps the series matching every set predicate of f, newest first.
func FilterSeries(series []*domain.Series, f domain.SeriesFilter) []*domain.Series {
	query := strings.TrimSpace(f.Query)

	out := make([]*domain.Series, 0, len(series))
	for _, s := range series {
		if f.OwnerID != "" && s.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.Monetization != "" && s.Monetization != f.Monetization {
			continue
		}
		if query != "" && !utils.ContainsFold(s.Title, query) && !utils.ContainsFold(s.Description, query) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
