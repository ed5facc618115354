package services

import (
	"context"
	"sync"
	"time"

	"fluvid/internal/core/ports"
	"fluvid/pkg/utils"

	"go.uber.org/zap"
)

// ReleaseScheduler publishes due episodes on a fixed tick.
type ReleaseScheduler struct {
	series   ports.SeriesService
	interval time.Duration
	lock     ports.LeaderLock
	logger   *zap.SugaredLogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type ReleaseSchedulerOption func(*ReleaseScheduler)

// WithLeaderLock makes the scheduler tick only while it holds lock.
func WithLeaderLock(lock ports.LeaderLock) ReleaseSchedulerOption {
	return func(s *ReleaseScheduler) { s.lock = lock }
}

func NewReleaseScheduler(series ports.SeriesService, interval time.Duration, logger *zap.SugaredLogger, opts ...ReleaseSchedulerOption) *ReleaseScheduler {
	s := &ReleaseScheduler{
		series:   series,
		interval: interval,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReleaseScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	s.logger.Infow("release scheduler started", "interval", s.interval, "leader_lock", s.lock != nil)
}

func (s *ReleaseScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ReleaseScheduler) tick(ctx context.Context) {
	if s.lock != nil {
		held, err := s.lock.TryAcquire(ctx)
		if err != nil {
			s.logger.Warnw("release tick skipped, leader lock unavailable", "error", err)
			return
		}
		if !held {
			return
		}
	}

	n, err := s.series.PublishDue(ctx, utils.Now())
	if err != nil {
		s.logger.Errorw("release tick failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Infow("episodes released", "count", n)
	}
}

// Stop waits for the current tick and hands the leader lock to the next instance.
func (s *ReleaseScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	if s.lock != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.lock.Release(ctx); err != nil {
			s.logger.Warnw("failed to release leader lock", "error", err)
		}
	}
}
