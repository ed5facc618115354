package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/pkg/tracing"
	"fluvid/pkg/utils"

	"go.uber.org/zap"
)

// JobDelays is the fixed pause before each step of a job, per kind.
type JobDelays struct {
	Upload            time.Duration
	Import            time.Duration
	CopyrightScan     time.Duration
	MonetizationCheck time.Duration
}

func (d JobDelays) For(kind domain.JobKind) time.Duration {
	switch kind {
	case domain.JobUpload:
		return d.Upload
	case domain.JobImport:
		return d.Import
	case domain.JobCopyrightScan:
		return d.CopyrightScan
	case domain.JobMonetizationCheck:
		return d.MonetizationCheck
	}
	return d.CopyrightScan
}

const subscriberBuffer = 32

// JobRunner executes simulated jobs on background goroutines and fans progress out to subscribers.
type JobRunner struct {
	repo    ports.JobRepository
	delays  JobDelays
	metrics ports.MetricsRecorder
	logger  *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	subs    map[domain.JobID]map[int]chan domain.JobEvent
	nextSub int
	stopped bool
}

func NewJobRunner(repo ports.JobRepository, delays JobDelays, metrics ports.MetricsRecorder, logger *zap.SugaredLogger) *JobRunner {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &JobRunner{
		repo:    repo,
		delays:  delays,
		metrics: metrics,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		subs:    make(map[domain.JobID]map[int]chan domain.JobEvent),
	}
}

var _ ports.JobRunner = (*JobRunner)(nil)

// Submit stores a pending job and starts it. The job outlives the request that created it.
func (r *JobRunner) Submit(
	ctx context.Context,
	kind domain.JobKind,
	owner domain.UserID,
	target string,
	steps []ports.JobStep,
	onComplete ports.JobCompletion,
) (*domain.Job, error) {
	r.mu.Lock()
	stopped := r.stopped
	r.mu.Unlock()
	if stopped {
		return nil, fmt.Errorf("job runner stopped")
	}

	now := utils.Now().UTC()
	job := &domain.Job{
		ID:        domain.JobID(utils.NewJobID()),
		Kind:      kind,
		OwnerID:   owner,
		TargetID:  target,
		Status:    domain.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.repo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	r.wg.Add(1)
	go r.run(job.Clone(), steps, onComplete)

	r.logger.Debugw("job submitted", "job_id", job.ID, "kind", kind, "owner", owner, "target", target)
	return job, nil
}

func (r *JobRunner) run(job *domain.Job, steps []ports.JobStep, onComplete ports.JobCompletion) {
	defer r.wg.Done()
	start := time.Now()

	ctx, span := tracing.TraceJob(r.ctx, string(job.Kind), string(job.ID))
	defer span.End()
	defer tracing.MeasureDuration(ctx, start, "job")

	job.Status = domain.JobRunning
	r.update(job)

	delay := r.delays.For(job.Kind)
	for i, step := range steps {
		job.Step = step.Label
		r.update(job)

		if !r.wait(delay) {
			job.Status = domain.JobCancelled
			r.finish(job, start)
			return
		}

		job.Progress = (i + 1) * 100 / len(steps)
		r.update(job)
	}

	var (
		result interface{}
		toast  *domain.Toast
		err    error
	)
	if onComplete != nil {
		result, toast, err = onComplete(ctx)
	}

	switch {
	case err != nil:
		tracing.RecordError(ctx, err)
		job.Status = domain.JobFailed
		t := domain.ErrorToast("Job failed", err.Error())
		job.Toast = &t
		r.logger.Warnw("job failed", "job_id", job.ID, "kind", job.Kind, "error", err)
	default:
		if result != nil {
			raw, mErr := json.Marshal(result)
			if mErr != nil {
				r.logger.Errorw("failed to encode job result", "job_id", job.ID, "error", mErr)
			} else {
				job.Result = raw
			}
		}
		job.Status = domain.JobCompleted
		job.Progress = 100
		job.Toast = toast
	}
	r.finish(job, start)
}

func (r *JobRunner) wait(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-r.ctx.Done():
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.ctx.Done():
		return false
	}
}

func (r *JobRunner) update(job *domain.Job) {
	job.UpdatedAt = utils.Now().UTC()
	if err := r.repo.Save(context.Background(), job); err != nil {
		r.logger.Errorw("failed to save job", "job_id", job.ID, "error", err)
	}
	r.publish(job, false)
}

func (r *JobRunner) finish(job *domain.Job, start time.Time) {
	now := utils.Now().UTC()
	job.UpdatedAt = now
	job.CompletedAt = &now
	if err := r.repo.Save(context.Background(), job); err != nil {
		r.logger.Errorw("failed to save job", "job_id", job.ID, "error", err)
	}
	r.metrics.RecordJob(job.Kind, job.Status, time.Since(start))
	r.logger.Infow("job finished", "job_id", job.ID, "kind", job.Kind, "status", job.Status)
	r.publish(job, true)
}

func eventOf(job *domain.Job) domain.JobEvent {
	return domain.JobEvent{
		JobID:    job.ID,
		Status:   job.Status,
		Progress: job.Progress,
		Step:     job.Step,
		Toast:    job.Toast,
	}
}

// publish never blocks; a slow subscriber misses intermediate events but always gets the terminal one.
func (r *JobRunner) publish(job *domain.Job, terminal bool) {
	event := eventOf(job)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ch := range r.subs[job.ID] {
		if terminal {
			deliverFinal(ch, event)
			close(ch)
			continue
		}
		select {
		case ch <- event:
		default:
		}
	}
	if terminal {
		delete(r.subs, job.ID)
	}
}

func deliverFinal(ch chan domain.JobEvent, event domain.JobEvent) {
	for {
		select {
		case ch <- event:
			return
		default:
		}
		// drop the oldest queued event to make room
		select {
		case <-ch:
		default:
		}
	}
}

// Subscribe streams events for a job until it reaches a terminal state, then closes the channel.
// Subscribing to an already finished job yields its final event.
func (r *JobRunner) Subscribe(id domain.JobID) (<-chan domain.JobEvent, func()) {
	ch := make(chan domain.JobEvent, subscriberBuffer)

	r.mu.Lock()
	defer r.mu.Unlock()

	job, err := r.repo.GetByID(context.Background(), id)
	if err != nil || job.Status.Terminal() {
		if err == nil {
			ch <- eventOf(job)
		}
		close(ch)
		return ch, func() {}
	}

	if r.subs[id] == nil {
		r.subs[id] = make(map[int]chan domain.JobEvent)
	}
	key := r.nextSub
	r.nextSub++
	r.subs[id][key] = ch

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subs[id][key]; ok {
			delete(r.subs[id], key)
			close(c)
		}
	}
}

// Get returns a job visible to caller: their own, or any job for callers who can view all content.
func (r *JobRunner) Get(ctx context.Context, caller *domain.User, id domain.JobID) (*domain.Job, error) {
	job, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(caller, job.OwnerID) {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (r *JobRunner) Active(ctx context.Context, owner domain.UserID) ([]*domain.Job, error) {
	jobs, err := r.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	active := []*domain.Job{}
	for _, job := range jobs {
		if !job.Status.Terminal() {
			active = append(active, job)
		}
	}
	return active, nil
}

// Stop cancels in-flight jobs and waits for their goroutines to exit.
func (r *JobRunner) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}
