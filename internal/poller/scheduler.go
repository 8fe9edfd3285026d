package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Job is one refresh cycle. The cycle ID is unique per invocation and is
// meant for log correlation.
type Job func(ctx context.Context, cycleID string)

// Scheduler runs a [Job] once on start and then on every tick of a fixed
// interval until it is stopped or its context is cancelled.
//
// Cycles are not mutually exclusive unless the in-flight guard is enabled:
// every tick launches a new cycle even if the previous one has not finished,
// so with a slow job the last cycle to complete wins. With the guard enabled,
// ticks that arrive while a cycle is running are skipped.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	job      Job
	interval time.Duration
	guard    bool
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
	done    chan struct{}

	inFlight atomic.Int32
	launched atomic.Uint64
	skipped  atomic.Uint64
}

// NewScheduler creates a new [Scheduler].
//
// Parameters:
//   - job: The refresh cycle to run
//   - interval: Time between cycle launches
//   - guard: Skip ticks while a previous cycle is still running
//   - logger: Logger for scheduler events (panic recovery, skipped ticks)
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop].
func NewScheduler(job Job, interval time.Duration, guard bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		job:      job,
		interval: interval,
		guard:    guard,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins the refresh loop in a background goroutine.
//
// Start is non-blocking and returns immediately. The scheduler will:
//  1. Launch one cycle immediately
//  2. Launch another cycle on every tick of the interval
//  3. Continue until [Scheduler.Stop] is called or the context is cancelled
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	loopCtx := s.ctx // capture under lock to avoid race
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		s.launch(loopCtx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.launch(loopCtx)
			}
		}
	}()

	go func() {
		<-loopCtx.Done()
		s.wg.Wait()
		s.closeDone()
	}()
}

// Stop halts the scheduler and waits for in-flight cycles to return.
//
// Stop cancels the scheduler's context, which also cancels any in-flight
// fetch. Stop is idempotent and safe to call multiple times. Calling Stop
// before Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.closeDone()
}

// Done returns a channel that is closed once the scheduler has fully stopped.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Launched returns the number of cycles started so far.
func (s *Scheduler) Launched() uint64 {
	return s.launched.Load()
}

// Skipped returns the number of ticks dropped by the in-flight guard.
func (s *Scheduler) Skipped() uint64 {
	return s.skipped.Load()
}

func (s *Scheduler) closeDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// launch starts one cycle in its own goroutine. Called only from the loop
// goroutine, which holds a wg slot, so the Add below never races with Wait.
func (s *Scheduler) launch(ctx context.Context) {
	if s.guard && s.inFlight.Load() > 0 {
		s.skipped.Add(1)
		s.logger.Debug("refresh skipped, previous cycle still running")
		return
	}

	s.inFlight.Add(1)
	s.launched.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Add(-1)
		s.runSafe(ctx, uuid.NewString())
	}()
}

// runSafe calls the job with panic recovery. A panicking cycle is logged with
// its stack and does not stop the schedule.
func (s *Scheduler) runSafe(ctx context.Context, cycleID string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("refresh cycle panic",
				"cycle_id", cycleID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	s.job(ctx, cycleID)
}
