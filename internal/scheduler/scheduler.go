package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"vcompress/internal/config"
	"vcompress/internal/job"
	"vcompress/internal/logging"
)

var (
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("scheduler closed")
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("scheduler already started")
)

// Runner performs the two phases of a job. Prepare runs while the job is
// still queued and must call job.Prepare; Encode runs while it is running.
type Runner interface {
	Prepare(ctx context.Context, j *job.Job) error
	Encode(ctx context.Context, j *job.Job, progress func(float64)) (int64, error)
}

// Options configures capacity and the default retry policy.
type Options struct {
	Workers int
	Retry   RetryPolicy
}

// OptionsFromConfig maps the [scheduler] config section.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Workers: cfg.Scheduler.Workers,
		Retry: RetryPolicy{
			MaxAttempts: cfg.Scheduler.RetryAttempts + 1,
			Backoff:     time.Duration(cfg.Scheduler.RetryBackoffSecs) * time.Second,
		},
	}
}

type submission struct {
	job   *job.Job
	retry RetryPolicy
}

// Scheduler runs submitted jobs on a fixed pool of workers.
type Scheduler struct {
	opts   Options
	runner Runner
	logger *slog.Logger

	work   *fifo[*submission]
	events *fifo[Event]
	out    chan Event

	mu      sync.Mutex
	jobs    []*job.Job
	started bool
	closed  bool
	group   *errgroup.Group

	pending   sync.WaitGroup
	completed atomic.Int64
	total     atomic.Int64

	// emitMu keeps counters in the event stream non-decreasing.
	emitMu sync.Mutex
}

// New constructs a Scheduler. Workers below one are raised to one.
func New(opts Options, runner Runner, logger *slog.Logger) *Scheduler {
	opts.Workers = max(opts.Workers, 1)
	s := &Scheduler{
		opts:   opts,
		runner: runner,
		logger: logging.NewComponentLogger(logger, "scheduler"),
		work:   newFIFO[*submission](),
		events: newFIFO[Event](),
		out:    make(chan Event),
	}
	go s.dispatch()
	return s
}

// Start launches the workers. Cancelling ctx kills running encodes and fails
// every job that has not finished.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	var g errgroup.Group
	for id := range s.opts.Workers {
		g.Go(func() error {
			s.worker(ctx, id)
			return nil
		})
	}
	s.group = &g
	s.logger.Debug("scheduler started", logging.Int("workers", s.opts.Workers))
	return nil
}

// Submit enqueues j without blocking. Jobs are admitted in submission order.
func (s *Scheduler) Submit(j *job.Job, opts ...SubmitOption) error {
	if j == nil {
		return errors.New("submit: nil job")
	}
	if err := j.Mode.Validate(); err != nil {
		return fmt.Errorf("submit %s: %w", j.Input, err)
	}
	sub := &submission{job: j, retry: s.opts.Retry}
	for _, opt := range opts {
		opt(sub)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.jobs = append(s.jobs, j)
	s.total.Add(1)
	s.pending.Add(1)
	// Queue the event first so EventQueued always precedes EventStarted.
	s.emit(EventQueued, j)
	s.work.push(sub)
	s.mu.Unlock()
	return nil
}

// Counters returns how many jobs have reached a terminal state and how many
// were submitted.
func (s *Scheduler) Counters() (completed, total int) {
	return int(s.completed.Load()), int(s.total.Load())
}

// Jobs returns snapshots of every submitted job in submission order.
func (s *Scheduler) Jobs() []job.Snapshot {
	s.mu.Lock()
	jobs := append([]*job.Job(nil), s.jobs...)
	s.mu.Unlock()

	out := make([]job.Snapshot, len(jobs))
	for i, j := range jobs {
		out[i] = j.Snapshot()
	}
	return out
}

// Events returns the event stream. It is closed by Close once every worker
// has exited and all buffered events were delivered.
func (s *Scheduler) Events() <-chan Event {
	return s.out
}

// Wait blocks until every submitted job is terminal.
func (s *Scheduler) Wait() {
	s.pending.Wait()
}

// Close stops accepting jobs, waits for the queue to empty and the workers to
// exit, then closes the event stream.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	group := s.group
	s.mu.Unlock()

	s.work.close()
	var err error
	if group != nil {
		err = group.Wait()
	} else {
		for _, sub := range s.work.drain() {
			s.fail(sub.job, ErrClosed, "scheduler closed before start")
		}
	}
	s.events.close()
	return err
}

func (s *Scheduler) worker(ctx context.Context, id int) {
	logger := s.logger.With(logging.Int("worker", id))
	for {
		// Queued jobs keep flowing after cancellation so they are failed
		// instead of left queued.
		sub, ok := s.work.pop(context.Background())
		if !ok {
			return
		}
		s.run(ctx, logger, sub)
	}
}

func (s *Scheduler) run(ctx context.Context, logger *slog.Logger, sub *submission) {
	j := sub.job
	logger = logging.WithJob(logger, j.ID, j.Input)
	jobCtx := logging.ContextWithJobID(ctx, j.ID)

	if err := ctx.Err(); err != nil {
		s.fail(j, err, "canceled")
		return
	}
	if err := s.runner.Prepare(jobCtx, j); err != nil {
		s.failWithLog(logger, j, err)
		return
	}
	if err := j.Start(); err != nil {
		s.failWithLog(logger, j, err)
		return
	}
	s.emit(EventStarted, j)
	logger.Info("job started",
		logging.String(logging.FieldMode, j.Mode.Describe()),
		logging.String("output", j.Output),
	)

	attempts := sub.retry.attempts()
	for {
		attempt := j.BeginAttempt()
		size, err := s.runner.Encode(jobCtx, j, func(fraction float64) {
			j.SetProgress(fraction)
			s.emit(EventProgress, j)
		})
		if err == nil {
			if cerr := j.Complete(size); cerr != nil {
				s.failWithLog(logger, j, cerr)
				return
			}
			s.finish(EventCompleted, j)
			logger.Info("job completed",
				logging.String(logging.FieldState, job.StateCompleted.String()),
				logging.Int64("output_bytes", size),
				logging.Int("attempt", attempt),
			)
			return
		}
		if attempt >= attempts || ctx.Err() != nil || !errors.Is(err, job.ErrEncode) {
			s.failWithLog(logger, j, err)
			return
		}
		logging.WarnWithContext(logger, "encode failed; retrying", "encode_retry",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", attempts),
			logging.Duration("backoff", sub.retry.Backoff),
			logging.Error(err),
		)
		s.emit(EventRetrying, j)
		if !sleepCtx(ctx, sub.retry.Backoff) {
			s.fail(j, ctx.Err(), "canceled")
			return
		}
	}
}

func (s *Scheduler) failWithLog(logger *slog.Logger, j *job.Job, err error) {
	diagnostic := Diagnostic(err)
	if !s.fail(j, err, diagnostic) {
		return
	}
	if diagnostic == "canceled" {
		logger.Info("job canceled")
		return
	}
	logging.WarnWithContext(logger, "job failed", "job_failed",
		logging.String(logging.FieldState, job.StateFailed.String()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, errorHint(err)),
	)
}

// fail marks j failed and reports whether this call made the transition.
func (s *Scheduler) fail(j *job.Job, err error, diagnostic string) bool {
	if ferr := j.Fail(err, diagnostic); ferr != nil {
		return false
	}
	s.finish(EventFailed, j)
	return true
}

// finish runs exactly once per job, after its terminal transition.
func (s *Scheduler) finish(kind EventType, j *job.Job) {
	s.completed.Add(1)
	s.emit(kind, j)
	s.pending.Done()
}

func (s *Scheduler) emit(kind EventType, j *job.Job) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	completed, total := s.Counters()
	s.events.push(Event{Type: kind, Job: j.Snapshot(), Completed: completed, Total: total})
}

func (s *Scheduler) dispatch() {
	defer close(s.out)
	for {
		evt, ok := s.events.pop(context.Background())
		if !ok {
			return
		}
		s.out <- evt
	}
}

// Diagnostic renders err for display next to a failed job.
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	var diag interface{ Diagnostic() string }
	if errors.As(err, &diag) {
		return diag.Diagnostic()
	}
	return err.Error()
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, job.ErrProbe):
		return "check the input is a readable video file"
	case errors.Is(err, job.ErrInfeasible):
		return "raise --target or use quality mode"
	case errors.Is(err, job.ErrEncode):
		return "see the ffmpeg stderr tail in the job diagnostic"
	default:
		return "check logs for details"
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
