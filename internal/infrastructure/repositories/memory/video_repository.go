package memory

import (
	"context"
	"fmt"
	"sync"

	"fluvid/internal/core/domain"
	"fluvid/internal/fixtures"
)

// MemoryVideoRepository stores copies; callers never share a *Video with the map.
type MemoryVideoRepository struct {
	videos map[domain.VideoID]*domain.Video
	mu     sync.RWMutex
}

func NewMemoryVideoRepository(seed ...*domain.Video) *MemoryVideoRepository {
	r := &MemoryVideoRepository{
		videos: make(map[domain.VideoID]*domain.Video, len(seed)),
	}
	for _, v := range seed {
		r.videos[v.ID] = v.Clone()
	}
	return r
}

func NewSeededVideoRepository() *MemoryVideoRepository {
	return NewMemoryVideoRepository(fixtures.Videos()...)
}

func (r *MemoryVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[video.ID]; exists {
		return fmt.Errorf("video already exists: %s", video.ID)
	}
	r.videos[video.ID] = video.Clone()
	return nil
}

func (r *MemoryVideoRepository) GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	video, exists := r.videos[id]
	if !exists {
		return nil, domain.ErrVideoNotFound
	}
	return video.Clone(), nil
}

func (r *MemoryVideoRepository) Mutate(ctx context.Context, id domain.VideoID, fn func(*domain.Video) error) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.videos[id]
	if !exists {
		return nil, domain.ErrVideoNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.videos[id] = next
	return next.Clone(), nil
}

func (r *MemoryVideoRepository) Delete(ctx context.Context, id domain.VideoID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[id]; !exists {
		return domain.ErrVideoNotFound
	}
	delete(r.videos, id)
	return nil
}

func (r *MemoryVideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	videos := make([]*domain.Video, 0, len(r.videos))
	for _, v := range r.videos {
		videos = append(videos, v.Clone())
	}
	return videos, nil
}
