package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/flowlog/flowlog/internal/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(t0 time.Time) *manualClock { return &manualClock{now: t0} }

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var t0 = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newTestTimer(opts ...Option) (*Timer, *manualClock) {
	clk := newManualClock(t0)
	opts = append([]Option{WithClock(clk), WithLocation(time.UTC)}, opts...)
	return New(opts...), clk
}

func TestTimer_StartsStopped(t *testing.T) {
	tm, _ := newTestTimer()
	assert.Equal(t, Stopped, tm.State())
	assert.Zero(t, tm.ElapsedSeconds())
	assert.Zero(t, tm.CurrentDisplaySeconds())
	assert.True(t, tm.Snapshot().StartedAt.IsZero())
}

func TestTimer_ConservesTimeAcrossPauses(t *testing.T) {
	tm, clk := newTestTimer()

	require.NoError(t, tm.Start())
	clk.Advance(125 * time.Second)
	require.NoError(t, tm.Pause())

	clk.Advance(10 * time.Minute) // paused time is not counted
	require.NoError(t, tm.Resume())
	clk.Advance(75 * time.Second)

	for i := 0; i < 5; i++ {
		require.NoError(t, tm.Pause())
		clk.Advance(time.Minute)
		require.NoError(t, tm.Start())
		clk.Advance(3 * time.Second)
	}

	e, err := tm.Stop()
	require.NoError(t, err)
	assert.Equal(t, (125+75+15)/60, e.DurationMinutes)
	assert.Equal(t, Stopped, tm.State())
	assert.Zero(t, tm.ElapsedSeconds())
}

func TestTimer_SubSecondRemaindersAreKept(t *testing.T) {
	tm, clk := newTestTimer()
	for i := 0; i < 4; i++ {
		require.NoError(t, tm.Start())
		clk.Advance(1500 * time.Millisecond)
		require.NoError(t, tm.Pause())
	}
	assert.Equal(t, 6, tm.ElapsedSeconds())
}

func TestTimer_DoublePauseIsNoop(t *testing.T) {
	tm, clk := newTestTimer()
	require.NoError(t, tm.Start())
	clk.Advance(42 * time.Second)
	require.NoError(t, tm.Pause())

	clk.Advance(time.Hour)
	assert.ErrorIs(t, tm.Pause(), ErrNotRunning)
	assert.ErrorIs(t, tm.Pause(), ErrNotRunning)
	assert.Equal(t, 42, tm.ElapsedSeconds())
	assert.Equal(t, Paused, tm.State())
}

func TestTimer_InvalidTransitions(t *testing.T) {
	tm, _ := newTestTimer()

	assert.ErrorIs(t, tm.Pause(), ErrNotRunning)
	assert.ErrorIs(t, tm.Resume(), ErrNotPaused)
	_, err := tm.Stop()
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, tm.Start())
	assert.ErrorIs(t, tm.Start(), ErrAlreadyRunning)
	assert.ErrorIs(t, tm.Resume(), ErrNotPaused)
}

func TestTimer_DisplayIsReadOnlyProjection(t *testing.T) {
	tm, clk := newTestTimer()
	require.NoError(t, tm.Start())
	clk.Advance(30 * time.Second)
	require.NoError(t, tm.Pause())
	require.NoError(t, tm.Start())

	for i := 1; i <= 10; i++ {
		clk.Advance(time.Second)
		assert.Equal(t, 30+i, tm.CurrentDisplaySeconds())
		tm.Tick()
		assert.Equal(t, 30, tm.ElapsedSeconds(), "display must not commit")
	}

	require.NoError(t, tm.Pause())
	assert.Equal(t, 40, tm.ElapsedSeconds())
	assert.Equal(t, 40, tm.CurrentDisplaySeconds())
}

func TestTimer_StopWhileRunning(t *testing.T) {
	tm, clk := newTestTimer()
	tm.SetDetails(entry.Details{Description: "Client call", Category: "meeting", Billable: true, Rate: 90})
	require.NoError(t, tm.Start())
	clk.Advance(5400 * time.Second)

	e, err := tm.Stop()
	require.NoError(t, err)
	assert.Equal(t, 90, e.DurationMinutes)
	assert.Equal(t, "09:00", e.StartTime.String())
	assert.Equal(t, "10:30", e.EndTime.String())
	assert.Equal(t, "2026-10-19", e.Date)
	assert.Equal(t, "Client call", e.Description)
	assert.Equal(t, "meeting", e.Category)
	assert.True(t, e.Billable)
	assert.Equal(t, 90.0, e.Rate)
	assert.Equal(t, entry.SourceTimer, e.Source)

	assert.Equal(t, entry.Details{}, tm.Details(), "details reset on stop")
}

func TestTimer_StopWhilePaused(t *testing.T) {
	tm, clk := newTestTimer()
	require.NoError(t, tm.Start())
	clk.Advance(20 * time.Minute)
	require.NoError(t, tm.Pause())
	clk.Advance(40 * time.Minute)

	e, err := tm.Stop()
	require.NoError(t, err)
	assert.Equal(t, 20, e.DurationMinutes)
	assert.Equal(t, "09:40", e.StartTime.String(), "start is now minus active time")
	assert.Equal(t, "10:00", e.EndTime.String())
}

func TestTimer_DurationFloorsToMinutes(t *testing.T) {
	tm, clk := newTestTimer()
	require.NoError(t, tm.Start())
	clk.Advance(119 * time.Second)
	e, err := tm.Stop()
	require.NoError(t, err)
	assert.Equal(t, 1, e.DurationMinutes)
}

func TestTimer_EntryClockUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	tm, clk := newTestTimer(WithLocation(loc))
	require.NoError(t, tm.Start())
	clk.Advance(time.Hour)
	e, err := tm.Stop()
	require.NoError(t, err)
	assert.Equal(t, "11:00", e.StartTime.String())
	assert.Equal(t, "12:00", e.EndTime.String())
}

func TestTimer_MilestoneFiresOncePerHour(t *testing.T) {
	var got []Milestone
	tm, clk := newTestTimer(OnMilestone(func(m Milestone) { got = append(got, m) }))
	require.NoError(t, tm.Start())

	clk.Advance(3599 * time.Second)
	_, fired := tm.Tick()
	assert.False(t, fired)

	clk.Advance(2 * time.Second)
	m, fired := tm.Tick()
	require.True(t, fired)
	assert.Equal(t, 1, m.Hours)

	clk.Advance(time.Second)
	_, fired = tm.Tick()
	assert.False(t, fired, "same hour must not re-fire")

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Hours)
}

func TestTimer_MilestoneLargeJumpFiresOnce(t *testing.T) {
	var got []Milestone
	tm, clk := newTestTimer(OnMilestone(func(m Milestone) { got = append(got, m) }))
	require.NoError(t, tm.Start())

	clk.Advance(3*time.Hour + 5*time.Minute) // resumed from background
	m, fired := tm.Tick()
	require.True(t, fired)
	assert.Equal(t, 3, m.Hours)

	_, fired = tm.Tick()
	assert.False(t, fired)
	assert.Len(t, got, 1)

	clk.Advance(time.Hour)
	m, fired = tm.Tick()
	require.True(t, fired)
	assert.Equal(t, 4, m.Hours)
	assert.Len(t, got, 2)
}

func TestTimer_MilestoneSurvivesPauseAndResetsOnStop(t *testing.T) {
	tm, clk := newTestTimer()
	require.NoError(t, tm.Start())
	clk.Advance(time.Hour + time.Second)
	_, fired := tm.Tick()
	require.True(t, fired)

	require.NoError(t, tm.Pause())
	_, fired = tm.Tick()
	assert.False(t, fired, "no ticks while paused")

	require.NoError(t, tm.Resume())
	clk.Advance(time.Second)
	_, fired = tm.Tick()
	assert.False(t, fired, "hour 1 already announced")

	_, err := tm.Stop()
	require.NoError(t, err)

	require.NoError(t, tm.Start())
	clk.Advance(time.Hour)
	m, fired := tm.Tick()
	require.True(t, fired, "a new session announces hour 1 again")
	assert.Equal(t, 1, m.Hours)
}

func TestTimer_SnapshotRestore(t *testing.T) {
	tm, clk := newTestTimer()
	tm.SetDetails(entry.Details{Description: "Writing"})
	require.NoError(t, tm.Start())
	clk.Advance(90 * time.Minute)
	tm.Tick()
	snap := tm.Snapshot()

	restored, _ := newTestTimer(WithClock(clk))
	require.NoError(t, restored.Restore(snap))
	assert.Equal(t, Running, restored.State())
	assert.Equal(t, 5400, restored.CurrentDisplaySeconds())
	assert.Equal(t, "Writing", restored.Details().Description)

	clk.Advance(20 * time.Minute)
	_, fired := restored.Tick()
	assert.False(t, fired, "announced hour is carried over")
}

func TestSnapshot_SameSession(t *testing.T) {
	base := Snapshot{
		State:     Paused,
		Elapsed:   90*time.Minute + 250*time.Microsecond,
		Announced: 1,
		Details:   entry.Details{Description: "Writing"},
	}
	stored := base
	stored.Elapsed = 90 * time.Minute
	stored.Announced = 0
	assert.True(t, base.SameSession(stored), "sub-millisecond and announced differences are ignored")

	running := Snapshot{State: Running, StartedAt: t0}
	utc := Snapshot{State: Running, StartedAt: t0.In(time.FixedZone("IST", 19800))}
	assert.True(t, running.SameSession(utc))

	other := base
	other.Details.Category = "writing"
	assert.False(t, base.SameSession(other))
	assert.False(t, base.SameSession(Snapshot{State: Stopped}))
	assert.False(t, running.SameSession(Snapshot{State: Running, StartedAt: t0.Add(time.Second)}))
}

func TestTimer_RestoreRejectsIncoherentSnapshots(t *testing.T) {
	tm, _ := newTestTimer()
	bad := []Snapshot{
		{State: Running},
		{State: Paused, StartedAt: t0},
		{State: Stopped, Elapsed: time.Minute},
		{State: Paused, Elapsed: -time.Second},
		{State: State(9)},
	}
	for _, s := range bad {
		assert.ErrorIs(t, tm.Restore(s), ErrBadSnapshot, "%+v", s)
	}
	assert.Equal(t, Stopped, tm.State())
}

func TestTimer_WatchEndsWhenPaused(t *testing.T) {
	tm, clk := newTestTimer()
	require.NoError(t, tm.Start())

	var mu sync.Mutex
	ticks := 0
	done := make(chan error, 1)
	go func() {
		done <- tm.Watch(context.Background(), 5*time.Millisecond, func(int) {
			mu.Lock()
			ticks++
			n := ticks
			mu.Unlock()
			clk.Advance(time.Second)
			if n == 3 {
				_ = tm.Pause()
			}
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch kept ticking after pause")
	}
	mu.Lock()
	assert.Equal(t, 3, ticks)
	mu.Unlock()
	assert.Equal(t, 3, tm.ElapsedSeconds())
}

func TestTimer_WatchCancelled(t *testing.T) {
	tm, _ := newTestTimer()
	require.NoError(t, tm.Start())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tm.Watch(ctx, time.Hour, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Running, tm.State(), "cancelling the watch leaves the timer running")
}

func TestTimer_WatchRequiresRunning(t *testing.T) {
	tm, _ := newTestTimer()
	assert.ErrorIs(t, tm.Watch(context.Background(), time.Millisecond, nil), ErrNotRunning)
}

func TestParseState(t *testing.T) {
	for _, s := range []State{Stopped, Paused, Running} {
		got, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseState("bogus")
	assert.Error(t, err)
}
