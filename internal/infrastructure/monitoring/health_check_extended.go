package monitoring

import (
	"context"
	"time"

	"fluvid/internal/core/ports"
)

// StoreProber is anything that can report whether its backing store answers.
type StoreProber interface {
	HealthCheck(ctx context.Context) error
}

// AddStoreCheck checks the session and settings store (Redis when configured).
func (h *HealthChecker) AddStoreCheck(store StoreProber, interval, timeout time.Duration) {
	h.AddCheck("store", func(ctx context.Context) (bool, error) {
		if err := store.HealthCheck(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, interval, timeout)
}

// AddCatalogCheck verifies the video catalog can be listed.
func (h *HealthChecker) AddCatalogCheck(videos ports.VideoRepository, interval, timeout time.Duration) {
	h.AddCheck("catalog", func(ctx context.Context) (bool, error) {
		if _, err := videos.List(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, interval, timeout)
}

// IsReady reports whether the service should receive traffic.
func (h *HealthChecker) IsReady(ctx context.Context) bool {
	return h.CheckAll(ctx).Status == StatusHealthy
}
