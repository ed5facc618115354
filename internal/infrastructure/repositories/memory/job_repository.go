package memory

import (
	"context"
	"sort"
	"sync"

	"fluvid/internal/core/domain"
)

type MemoryJobRepository struct {
	jobs map[domain.JobID]*domain.Job
	mu   sync.RWMutex
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{
		jobs: make(map[domain.JobID]*domain.Job),
	}
}

// Save inserts or replaces a job.
func (r *MemoryJobRepository) Save(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *MemoryJobRepository) GetByID(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[id]
	if !exists {
		return nil, domain.ErrJobNotFound
	}
	return job.Clone(), nil
}

func (r *MemoryJobRepository) ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var jobs []*domain.Job
	for _, job := range r.jobs {
		if job.OwnerID == owner {
			jobs = append(jobs, job.Clone())
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return jobs, nil
}
