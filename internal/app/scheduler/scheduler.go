// scheduler drives feed generation cycles on a fixed interval and
// delays cycles after repeated failures.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sa6mwa/drpod/internal/app/retry"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
)

const (
	DefaultInterval   = 15 * time.Minute
	DefaultMaxBackoff = 60 * time.Minute
	// BackoffThreshold is the number of consecutive failed cycles from
	// which tick driven cycles are delayed.
	BackoffThreshold = 3
)

// CycleFunc runs one cycle and returns the number of feeds it
// produced. An error means the whole cycle failed.
type CycleFunc func(ctx context.Context) (feeds int, err error)

// Status is a snapshot of the scheduler.
type Status struct {
	Cycles              int
	ConsecutiveFailures int
	LastRun             time.Time
	LastSuccess         time.Time
	LastFeedCount       int
	LastError           error
}

type Option func(*Scheduler)

// WithMaxBackoff caps the extra delay after failures, default 60
// minutes.
func WithMaxBackoff(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.maxBackoff = d
		}
	}
}

// WithTrigger runs an extra cycle every time trigger receives.
func WithTrigger(trigger <-chan struct{}) Option {
	return func(s *Scheduler) {
		s.trigger = trigger
	}
}

// WithSleeper replaces how the backoff delay is waited out (tests).
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scheduler) {
		s.sleep = sleep
	}
}

// WithTicker replaces time.NewTicker (tests). stop is called when Run
// returns.
func WithTicker(newTicker func(d time.Duration) (c <-chan time.Time, stop func())) Option {
	return func(s *Scheduler) {
		s.newTicker = newTicker
	}
}

type Scheduler struct {
	cycle      CycleFunc
	interval   time.Duration
	maxBackoff time.Duration
	trigger    <-chan struct{}
	sleep      func(ctx context.Context, d time.Duration) error
	newTicker  func(d time.Duration) (<-chan time.Time, func())

	stop     chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	status Status
}

// New returns a Scheduler running cycle every interval (DefaultInterval
// if not positive).
func New(interval time.Duration, cycle CycleFunc, options ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		cycle:      cycle,
		interval:   interval,
		maxBackoff: DefaultMaxBackoff,
		sleep:      retry.Sleep,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
		stop: make(chan struct{}),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Run runs a cycle immediately and then one per interval until ctx is
// done or Stop is called. Cancellation interrupts a running cycle or
// backoff delay.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()
	l := logger.FromContext(ctx)
	l.Info("Scheduler started", "interval", s.interval, "maxBackoff", s.maxBackoff)

	s.runCycle(ctx)
	tick, stopTicker := s.newTicker(s.interval)
	defer stopTicker()
	for {
		select {
		case <-ctx.Done():
			l.Info("Scheduler stopped")
			return nil
		case <-tick:
			if d := s.Backoff(); d > 0 {
				l.Warn("Delaying cycle after repeated failures", "failures", s.ConsecutiveFailures(), "backoff", d)
				if err := s.sleep(ctx, d); err != nil {
					l.Info("Scheduler stopped")
					return nil
				}
			}
			s.runCycle(ctx)
		case _, ok := <-s.trigger:
			if !ok {
				s.trigger = nil
				continue
			}
			l.Info("Running triggered cycle")
			s.runCycle(ctx)
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *Scheduler) ConsecutiveFailures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.ConsecutiveFailures
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Backoff is the extra delay before the next tick driven cycle:
// min(interval * 2^(failures-2), max backoff) from BackoffThreshold
// consecutive failures, zero below it.
func (s *Scheduler) Backoff() time.Duration {
	return Backoff(s.ConsecutiveFailures(), s.interval, s.maxBackoff)
}

// Backoff computes min(interval * 2^(failures-2), ceiling) for
// failures >= BackoffThreshold and zero otherwise.
func Backoff(failures int, interval, ceiling time.Duration) time.Duration {
	if failures < BackoffThreshold || interval <= 0 {
		return 0
	}
	d := interval
	for i := 0; i < failures-2; i++ {
		if d >= ceiling/2 {
			return ceiling
		}
		d *= 2
	}
	if d > ceiling {
		return ceiling
	}
	return d
}

func (s *Scheduler) runCycle(ctx context.Context) {
	l := logger.FromContext(ctx)
	start := time.Now()
	feeds, err := s.cycle(ctx)
	if ctx.Err() != nil {
		l.Info("Cycle interrupted", "duration", time.Since(start))
		return
	}
	s.mu.Lock()
	s.status.Cycles++
	s.status.LastRun = start
	if err != nil {
		s.status.ConsecutiveFailures++
		s.status.LastError = err
	} else {
		s.status.ConsecutiveFailures = 0
		s.status.LastError = nil
		s.status.LastSuccess = start
		s.status.LastFeedCount = feeds
	}
	failures := s.status.ConsecutiveFailures
	s.mu.Unlock()
	if err != nil {
		l.Error("Cycle failed", "error", err, "failures", failures, "duration", time.Since(start))
		return
	}
	l.Info("Cycle completed", "feeds", feeds, "duration", time.Since(start))
}
