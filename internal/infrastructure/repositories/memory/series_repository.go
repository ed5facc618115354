package memory

import (
	"context"
	"fmt"
	"sync"

	"fluvid/internal/core/domain"
	"fluvid/internal/fixtures"
)

type MemorySeriesRepository struct {
	series map[domain.SeriesID]*domain.Series
	mu     sync.RWMutex
}

func NewMemorySeriesRepository(seed ...*domain.Series) *MemorySeriesRepository {
	r := &MemorySeriesRepository{
		series: make(map[domain.SeriesID]*domain.Series, len(seed)),
	}
	for _, s := range seed {
		r.series[s.ID] = s.Clone()
	}
	return r
}

func NewSeededSeriesRepository() *MemorySeriesRepository {
	return NewMemorySeriesRepository(fixtures.Series()...)
}

func (r *MemorySeriesRepository) Create(ctx context.Context, series *domain.Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.series[series.ID]; exists {
		return fmt.Errorf("series already exists: %s", series.ID)
	}
	r.series[series.ID] = series.Clone()
	return nil
}

func (r *MemorySeriesRepository) GetByID(ctx context.Context, id domain.SeriesID) (*domain.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	series, exists := r.series[id]
	if !exists {
		return nil, domain.ErrSeriesNotFound
	}
	return series.Clone(), nil
}

// Mutate edits a copy under the write lock and stores it only when fn succeeds.
func (r *MemorySeriesRepository) Mutate(ctx context.Context, id domain.SeriesID, fn func(*domain.Series) error) (*domain.Series, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.series[id]
	if !exists {
		return nil, domain.ErrSeriesNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.series[id] = next
	return next.Clone(), nil
}

func (r *MemorySeriesRepository) Delete(ctx context.Context, id domain.SeriesID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.series[id]; !exists {
		return domain.ErrSeriesNotFound
	}
	delete(r.series, id)
	return nil
}

func (r *MemorySeriesRepository) List(ctx context.Context) ([]*domain.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Series, 0, len(r.series))
	for _, s := range r.series {
		out = append(out, s.Clone())
	}
	return out, nil
}
