package memory

import (
	"context"
	"sync"

	"fluvid/internal/core/domain"
)

type MemoryMonetizationRepository struct {
	settings map[domain.UserID]domain.MonetizationSettings
	mu       sync.RWMutex
}

func NewMemoryMonetizationRepository() *MemoryMonetizationRepository {
	return &MemoryMonetizationRepository{
		settings: make(map[domain.UserID]domain.MonetizationSettings),
	}
}

func (r *MemoryMonetizationRepository) Get(ctx context.Context, owner domain.UserID) (*domain.MonetizationSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := r.settings[owner]
	return &s, nil
}

func (r *MemoryMonetizationRepository) Save(ctx context.Context, owner domain.UserID, settings *domain.MonetizationSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[owner] = *settings
	return nil
}
