package timer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/flowlog/flowlog/internal/entry"
)

// State is the lifecycle position of a Timer.
type State int

const (
	Stopped State = iota
	Paused
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Paused:
		return "paused"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	switch s {
	case "stopped":
		return Stopped, nil
	case "paused":
		return Paused, nil
	case "running":
		return Running, nil
	}
	return Stopped, fmt.Errorf("unknown timer state %q", s)
}

var (
	ErrAlreadyRunning = errors.New("timer is already running")
	ErrNotRunning     = errors.New("timer is not running")
	ErrNotPaused      = errors.New("timer is not paused")
	ErrNotStarted     = errors.New("timer has not been started")
	ErrBadSnapshot    = errors.New("inconsistent timer snapshot")
)

// Clock is the timer's source of "now".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Milestone is reported when the running display crosses a new whole hour.
type Milestone struct {
	Hours int
	At    time.Time
}

// MilestoneFunc receives milestones as they are reported by Tick.
type MilestoneFunc func(Milestone)

type Option func(*Timer)

func WithClock(c Clock) Option { return func(t *Timer) { t.clock = c } }

// WithLocation sets the zone used for the clock times of emitted entries.
func WithLocation(loc *time.Location) Option { return func(t *Timer) { t.loc = loc } }

func WithLogger(l *slog.Logger) Option { return func(t *Timer) { t.log = l } }

func OnMilestone(f MilestoneFunc) Option { return func(t *Timer) { t.onMilestone = f } }

// Timer accumulates active running time across pause/resume cycles.
//
// Committed time only changes on Pause and Stop. Everything that shows a live
// value goes through CurrentDisplaySeconds, which never writes.
type Timer struct {
	mu          sync.Mutex
	clock       Clock
	loc         *time.Location
	log         *slog.Logger
	onMilestone MilestoneFunc

	state     State
	startedAt time.Time // non-zero iff state == Running
	elapsed   time.Duration
	announced int // highest whole hour already reported
	details   entry.Details
}

// New returns a stopped timer with zero elapsed time.
func New(opts ...Option) *Timer {
	t := &Timer{
		clock: SystemClock{},
		loc:   time.Local,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Timer) Details() entry.Details {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.details
}

// SetDetails replaces the descriptive metadata. It has no effect on timing.
func (t *Timer) SetDetails(d entry.Details) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.details = d
}

// ElapsedSeconds is the committed elapsed time, excluding any in-flight run.
func (t *Timer) ElapsedSeconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.elapsed / time.Second)
}

// Start begins or resumes running. Valid from Stopped or Paused.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Running {
		return ErrAlreadyRunning
	}
	t.run()
	return nil
}

// Resume is Start restricted to the Paused state.
func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Paused {
		return ErrNotPaused
	}
	t.run()
	return nil
}

// run moves to Running from now. Caller holds mu.
func (t *Timer) run() {
	from := t.state
	t.state = Running
	t.startedAt = t.clock.Now()
	t.log.Debug("timer started", "from", from, "elapsed_s", int(t.elapsed/time.Second))
}

// Pause folds the running interval into the committed elapsed time.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Running {
		return ErrNotRunning
	}
	t.fold(t.clock.Now())
	t.state = Paused
	t.log.Debug("timer paused", "elapsed_s", int(t.elapsed/time.Second))
	return nil
}

// Stop commits any running interval, emits the finished entry and resets
// the timer to Stopped with zero elapsed time.
func (t *Timer) Stop() (entry.TimeEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Stopped {
		return entry.TimeEntry{}, ErrNotStarted
	}
	now := t.clock.Now()
	if t.state == Running {
		t.fold(now)
	}

	secs := int(t.elapsed / time.Second)
	end := now.In(t.loc)
	start := now.Add(-t.elapsed).In(t.loc)
	e := entry.New(t.details, start, end, secs/60, entry.SourceTimer)

	t.log.Debug("timer stopped", "elapsed_s", secs, "minutes", e.DurationMinutes)
	t.reset()
	return e, nil
}

// Discard drops the session without emitting an entry.
func (t *Timer) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset()
}

// CurrentDisplaySeconds is committed elapsed time plus the in-flight run.
func (t *Timer) CurrentDisplaySeconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.display(t.clock.Now()) / time.Second)
}

// Tick is the display-tick hook. While running it reports at most one
// milestone per call: the highest whole hour reached, if it has not been
// reported before. Hours skipped by a large jump are not reported
// individually.
func (t *Timer) Tick() (Milestone, bool) {
	t.mu.Lock()
	if t.state != Running {
		t.mu.Unlock()
		return Milestone{}, false
	}
	now := t.clock.Now()
	hours := int(t.display(now) / time.Hour)
	if hours <= t.announced {
		t.mu.Unlock()
		return Milestone{}, false
	}
	t.announced = hours
	m := Milestone{Hours: hours, At: now}
	cb := t.onMilestone
	t.mu.Unlock()

	t.log.Debug("timer milestone", "hours", hours)
	if cb != nil {
		cb(m)
	}
	return m, true
}

// Watch drives the display tick every interval until ctx is done or the
// timer leaves Running. onTick, if set, receives the display seconds after
// each Tick. It returns nil when the timer stopped running and ctx.Err()
// on cancellation.
func (t *Timer) Watch(ctx context.Context, interval time.Duration, onTick func(seconds int)) error {
	if t.State() != Running {
		return ErrNotRunning
	}
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			if t.State() != Running {
				return nil
			}
			t.Tick()
			if onTick != nil {
				onTick(t.CurrentDisplaySeconds())
			}
		}
	}
}

// Snapshot is the persisted form of a Timer.
type Snapshot struct {
	State     State
	StartedAt time.Time
	Elapsed   time.Duration
	Announced int
	Details   entry.Details
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		State:     t.state,
		StartedAt: t.startedAt,
		Elapsed:   t.elapsed,
		Announced: t.announced,
		Details:   t.details,
	}
}

// SameSession reports whether s and o describe the same session. Elapsed is
// compared at millisecond precision, the resolution it is stored at.
func (s Snapshot) SameSession(o Snapshot) bool {
	return s.State == o.State &&
		s.StartedAt.Equal(o.StartedAt) &&
		s.Elapsed.Truncate(time.Millisecond) == o.Elapsed.Truncate(time.Millisecond) &&
		s.Details == o.Details
}

// Restore replaces the timer's state with s after checking it is coherent.
func (t *Timer) Restore(s Snapshot) error {
	switch {
	case s.Elapsed < 0:
		return fmt.Errorf("%w: negative elapsed", ErrBadSnapshot)
	case s.State == Running && s.StartedAt.IsZero():
		return fmt.Errorf("%w: running without start time", ErrBadSnapshot)
	case s.State != Running && !s.StartedAt.IsZero():
		return fmt.Errorf("%w: %s with start time", ErrBadSnapshot, s.State)
	case s.State == Stopped && s.Elapsed != 0:
		return fmt.Errorf("%w: stopped with elapsed time", ErrBadSnapshot)
	case s.State < Stopped || s.State > Running:
		return fmt.Errorf("%w: unknown state", ErrBadSnapshot)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s.State
	t.startedAt = s.StartedAt
	t.elapsed = s.Elapsed
	t.announced = s.Announced
	t.details = s.Details
	return nil
}

// fold commits the running interval ending at now. Caller holds mu.
func (t *Timer) fold(now time.Time) {
	if d := now.Sub(t.startedAt); d > 0 {
		t.elapsed += d
	}
	t.startedAt = time.Time{}
}

// display projects elapsed time at now without writing. Caller holds mu.
func (t *Timer) display(now time.Time) time.Duration {
	if t.state != Running {
		return t.elapsed
	}
	if d := now.Sub(t.startedAt); d > 0 {
		return t.elapsed + d
	}
	return t.elapsed
}

func (t *Timer) reset() {
	t.state = Stopped
	t.startedAt = time.Time{}
	t.elapsed = 0
	t.announced = 0
	t.details = entry.Details{}
}
