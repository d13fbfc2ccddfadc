// Package scheduler runs a job on a fixed interval with overlap
// protection: a tick that arrives while the previous run is still going
// is skipped, never queued.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/logger"
)

// Job is the unit of work a scheduler drives.
type Job func(ctx context.Context) error

// Stats is a snapshot of the scheduler's run history.
type Stats struct {
	TotalRuns      int64
	SuccessfulRuns int64
	FailedRuns     int64
	LastRunTime    time.Time
	NextRunTime    time.Time
	LastError      string
	Running        bool
}

type Scheduler struct {
	name     string
	interval time.Duration
	job      Job
	log      zerolog.Logger

	inFlight atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
	startMu  sync.Mutex

	mu      sync.Mutex
	total   int64
	success int64
	failed  int64
	lastRun time.Time
	nextRun time.Time
	lastErr string
}

func New(name string, interval time.Duration, job Job) *Scheduler {
	return &Scheduler{
		name:     name,
		interval: interval,
		job:      job,
		log:      logger.With("scheduler"),
	}
}

// Start launches the loop. The job runs once immediately, then on every
// interval tick. Start is a no-op if the scheduler is already running.
func (s *Scheduler) Start(ctx context.Context) {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.done != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.loop(ctx)
	s.log.Info().Str("name", s.name).Dur("interval", s.interval).Msg("Scheduler started")
}

// Stop cancels the loop and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.done == nil {
		return
	}

	s.cancel()
	<-s.done
	s.done = nil
	s.log.Info().Str("name", s.name).Msg("Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

// Trigger runs the job out of band, subject to the same overlap guard.
// Returns false when a run was already in flight.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	return s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Warn().Str("name", s.name).Msg("Previous run still in flight, skipping tick")
		return false
	}
	defer s.inFlight.Store(false)

	started := time.Now().UTC()
	err := s.job(ctx)

	s.mu.Lock()
	s.total++
	s.lastRun = started
	s.nextRun = started.Add(s.interval)
	if err != nil {
		s.failed++
		s.lastErr = err.Error()
	} else {
		s.success++
		s.lastErr = ""
	}
	s.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		s.log.Error().Str("name", s.name).Err(err).Msg("Scheduled run failed")
	}
	return true
}

// Stats returns a snapshot of run counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		TotalRuns:      s.total,
		SuccessfulRuns: s.success,
		FailedRuns:     s.failed,
		LastRunTime:    s.lastRun,
		NextRunTime:    s.nextRun,
		LastError:      s.lastErr,
		Running:        s.inFlight.Load(),
	}
}
