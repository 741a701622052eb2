package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"btcprice-poller/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAlignWait_RangeAndAlignment(t *testing.T) {
	for interval := int64(1); interval <= 60; interval++ {
		for sec := int64(0); sec < 60; sec++ {
			wait := AlignWait(sec, interval)
			require.GreaterOrEqual(t, wait, int64(0))
			require.Less(t, wait, int64(60))
			if 60%interval == 0 {
				require.Zero(t, (sec+wait)%60%interval, "interval=%d sec=%d wait=%d", interval, sec, wait)
			}
		}
	}
}

func TestAlignWait_Examples(t *testing.T) {
	require.Equal(t, int64(20), AlignWait(10, 30))
	require.Equal(t, int64(30), AlignWait(0, 30))
	require.Equal(t, int64(1), AlignWait(29, 30))
	require.Equal(t, int64(5), AlignWait(55, 60))
	require.Equal(t, int64(0), AlignWait(0, 60))
	require.Equal(t, int64(1), AlignWait(59, 1))
}

func TestFirstDelay_LandsOnAlignedSecond(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, interval := range []int64{1, 2, 5, 10, 15, 20, 30, 60} {
		for sec := 0; sec < 60; sec += 7 {
			now := base.Add(time.Duration(sec)*time.Second + 250*time.Millisecond)
			d, err := FirstDelay(now, interval)
			require.NoError(t, err)
			require.Greater(t, d, time.Duration(0))
			require.LessOrEqual(t, d, 60*time.Second)

			fire := now.Add(d)
			require.Zero(t, fire.Nanosecond(), "interval=%d sec=%d", interval, sec)
			require.Zero(t, int64(fire.Second())%interval, "interval=%d sec=%d fire=%s", interval, sec, fire)
		}
	}
}

func TestFirstDelay_Example(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 10, 250_000_000, time.UTC)
	d, err := FirstDelay(now, 30)
	require.NoError(t, err)
	require.Equal(t, 19*time.Second+750*time.Millisecond, d)
}

func TestFirstDelay_AlignedSecondRollsToNextMinute(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 400_000_000, time.UTC)
	d, err := FirstDelay(now, 60)
	require.NoError(t, err)
	require.Equal(t, 59*time.Second+600*time.Millisecond, d)
	require.Equal(t, time.Date(2024, 3, 1, 12, 1, 0, 0, time.UTC), now.Add(d))
}

func TestFirstDelay_UsesUTCSeconds(t *testing.T) {
	// +05:30 shifts minutes, not seconds, so alignment is unaffected
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 3, 1, 17, 30, 40, 0, loc)
	d, err := FirstDelay(now, 15)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, d)
}

func TestNew_RejectsInvalidInterval(t *testing.T) {
	for _, iv := range []int64{0, -5, 1 << 62} {
		_, err := New(iv, zap.NewNop())
		require.ErrorIs(t, err, domain.ErrScheduler, "interval=%d", iv)
	}
}

func TestNew_AcceptsLongInterval(t *testing.T) {
	s, err := New(300, nil)
	require.NoError(t, err)
	require.Equal(t, 300*time.Second, s.Interval)
	require.True(t, s.Start.IsZero())
}

func TestRun_FiresRepeatedlyUntilError(t *testing.T) {
	stop := errors.New("stop")
	s := &Scheduler{Interval: 10 * time.Millisecond, Start: time.Now()}

	var n int32
	err := s.Run(context.Background(), func(context.Context) error {
		if atomic.AddInt32(&n, 1) == 3 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, int32(3), atomic.LoadInt32(&n))
}

func TestRun_WaitsForStart(t *testing.T) {
	start := time.Now().Add(50 * time.Millisecond)
	s := &Scheduler{Interval: time.Hour, Start: start}

	var firedAt time.Time
	err := s.Run(context.Background(), func(context.Context) error {
		firedAt = time.Now()
		return errors.New("done")
	})
	require.Error(t, err)
	require.False(t, firedAt.Before(start))
}

func TestRun_LateTickFiresOnceThenReturnsToGrid(t *testing.T) {
	const interval = 100 * time.Millisecond
	start := time.Now().Add(20 * time.Millisecond)
	s := &Scheduler{Interval: interval, Start: start}

	var running, overlapped int32
	var fires []time.Duration
	err := s.Run(context.Background(), func(context.Context) error {
		if !atomic.CompareAndSwapInt32(&running, 0, 1) {
			atomic.StoreInt32(&overlapped, 1)
		}
		defer atomic.StoreInt32(&running, 0)
		fires = append(fires, time.Since(start))
		if len(fires) == 1 {
			time.Sleep(150 * time.Millisecond)
		}
		if len(fires) == 5 {
			return errors.New("done")
		}
		return nil
	})
	require.Error(t, err)
	require.Zero(t, atomic.LoadInt32(&overlapped))
	require.Len(t, fires, 5)

	// the overdue tick runs as soon as the slow one returns
	require.GreaterOrEqual(t, fires[1], 150*time.Millisecond)
	require.Less(t, fires[1], 200*time.Millisecond)
	// the rest land on start + k*interval, with no burst for the skipped slot
	for i, want := range []time.Duration{200, 300, 400} {
		got := fires[i+2]
		require.GreaterOrEqual(t, got, want*time.Millisecond, "fire %d", i+2)
		require.Less(t, got-want*time.Millisecond, 30*time.Millisecond, "fire %d at %s", i+2, got)
	}
}

func TestRun_AlignsFirstFireWhenRunStarts(t *testing.T) {
	s, err := New(1, nil)
	require.NoError(t, err)

	// start-up work longer than the interval must not move the grid
	time.Sleep(1200 * time.Millisecond)

	var fires []time.Time
	err = s.Run(context.Background(), func(context.Context) error {
		fires = append(fires, time.Now().UTC())
		if len(fires) == 2 {
			return errors.New("done")
		}
		return nil
	})
	require.Error(t, err)
	for _, f := range fires {
		require.Less(t, f.Nanosecond(), int(50*time.Millisecond), "fire at %s is off the whole second", f.Format(time.RFC3339Nano))
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{Interval: time.Hour, Start: time.Now().Add(time.Hour)}
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := s.Run(ctx, func(context.Context) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}
