package scheduler

import (
	"context"
	"fmt"
	"math"
	"time"

	"btcprice-poller/internal/domain"

	"go.uber.org/zap"
)

// TickFunc is one unit of scheduled work. A non-nil error stops the scheduler.
type TickFunc func(ctx context.Context) error

// Scheduler fires at a minute-aligned start and then every Interval.
// Ticks run sequentially; a slow tick delays the next one instead of overlapping it.
// A zero Start means the first fire is aligned when Run begins.
type Scheduler struct {
	Interval time.Duration
	Start    time.Time
	Log      *zap.Logger

	now func() time.Time
}

// New validates the interval. The aligned first fire is computed when Run
// starts, so start-up work done in between does not shift the grid.
func New(intervalSec int64, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if intervalSec <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %d", domain.ErrScheduler, intervalSec)
	}
	if intervalSec > math.MaxInt64/int64(time.Second) {
		return nil, fmt.Errorf("%w: interval %ds overflows", domain.ErrScheduler, intervalSec)
	}
	return &Scheduler{
		Interval: time.Duration(intervalSec) * time.Second,
		Log:      log,
	}, nil
}

// AlignWait returns the whole seconds from second (0-59) until the next
// second that is a multiple of interval. The result is always in [0, 60).
func AlignWait(second, interval int64) int64 {
	return (interval - (second+interval)%interval) % 60
}

// FirstDelay returns how long to wait from now until the first aligned fire.
func FirstDelay(now time.Time, intervalSec int64) (time.Duration, error) {
	if intervalSec <= 0 {
		return 0, fmt.Errorf("%w: interval must be positive, got %d", domain.ErrScheduler, intervalSec)
	}
	utc := now.UTC()
	wait := AlignWait(int64(utc.Second()), intervalSec)
	if wait == 0 {
		// the current second is aligned but already under way
		wait = 60
	}
	return time.Duration(wait-1)*time.Second + time.Duration(int64(time.Second)-int64(utc.Nanosecond())), nil
}

// Run blocks until fn fails or ctx is done, returning that error.
// Fires stay on the grid Start + k*Interval. A tick that overruns its slot
// fires once immediately; the slots it missed are dropped.
func (s *Scheduler) Run(ctx context.Context, fn TickFunc) error {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := s.now
	if now == nil {
		now = time.Now
	}
	if s.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", domain.ErrScheduler)
	}

	next := s.Start
	if next.IsZero() {
		t := now()
		delay, err := FirstDelay(t, int64(s.Interval/time.Second))
		if err != nil {
			return err
		}
		next = t.Add(delay)
	}
	log.Info("scheduler.first_tick",
		zap.Time("at", next.UTC()),
		zap.Duration("interval", s.Interval),
	)
	timer := time.NewTimer(next.Sub(now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler.stopped")
			return ctx.Err()
		case <-timer.C:
		}

		if err := fn(ctx); err != nil {
			return err
		}

		next = next.Add(s.Interval)
		t := now()
		delay := next.Sub(t)
		if delay < 0 {
			log.Warn("scheduler.tick_late", zap.Duration("behind", -delay))
			// latest slot not after t; the one after it is back on the grid
			next = next.Add((-delay / s.Interval) * s.Interval)
			delay = 0
		}
		timer.Reset(delay)
	}
}
