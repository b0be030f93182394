package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/flowlog/flowlog/internal/config"
	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/entry"
	"github.com/flowlog/flowlog/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time          { return c.now }
func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type recorder struct{ titles []string }

func (r *recorder) Notify(title, _ string) error {
	r.titles = append(r.titles, title)
	return nil
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func newTestModel(t *testing.T) (Model, *manualClock, *recorder) {
	t.Helper()
	dbh, err := db.OpenPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })

	cfg := config.Default()
	cfg.Reminder.Timezone = "UTC"
	clk := &manualClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	tm := timer.New(timer.WithClock(clk), timer.WithLocation(time.UTC))
	m := New(Options{DB: dbh, Timer: tm, Config: cfg, Clock: clk, Notifier: rec})
	return m, clk, rec
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestStartSchedulesTickAndPersists(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, cmd := update(t, m, runes("s"))
	assert.Equal(t, timer.Running, m.t.State())
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.gen)

	snap, err := db.LoadTimer(context.Background(), m.dbh)
	require.NoError(t, err)
	assert.Equal(t, timer.Running, snap.State)
	assert.Equal(t, "work", snap.Details.Category)
}

func TestStaleTickIsDropped(t *testing.T) {
	m, clk, _ := newTestModel(t)
	m, _ = update(t, m, runes("s"))
	staleGen := m.gen

	clk.Advance(10 * time.Second)
	m, _ = update(t, m, runes("p"))
	assert.Equal(t, timer.Paused, m.t.State())
	assert.Equal(t, 10, m.seconds)

	clk.Advance(10 * time.Second)
	m, cmd := update(t, m, tickMsg{gen: staleGen})
	assert.Nil(t, cmd, "stale tick must not reschedule")
	assert.Equal(t, 10, m.seconds)

	// resume starts a new generation; the old one stays dead
	m, cmd = update(t, m, runes(" "))
	require.NotNil(t, cmd)
	assert.Equal(t, timer.Running, m.t.State())
	_, cmd = update(t, m, tickMsg{gen: staleGen})
	assert.Nil(t, cmd)
}

func TestTickAdvancesDisplayAndFiresMilestoneOnce(t *testing.T) {
	m, clk, rec := newTestModel(t)
	m, _ = update(t, m, runes("s"))

	clk.Advance(3599 * time.Second)
	m, cmd := update(t, m, tickMsg{gen: m.gen})
	assert.NotNil(t, cmd)
	assert.Equal(t, 3599, m.seconds)
	assert.Empty(t, m.toast)

	clk.Advance(2 * time.Second)
	m, _ = update(t, m, tickMsg{gen: m.gen})
	assert.Equal(t, 3601, m.seconds)
	assert.Equal(t, "1 hour tracked", m.toast)
	assert.Equal(t, []string{"1 hour tracked"}, rec.titles)

	clk.Advance(time.Second)
	m, _ = update(t, m, tickMsg{gen: m.gen})
	assert.Len(t, rec.titles, 1)

	clk.Advance(toastFor)
	m, _ = update(t, m, tickMsg{gen: m.gen})
	assert.Empty(t, m.toast)
}

func TestMilestoneNotificationsCanBeDisabled(t *testing.T) {
	m, clk, rec := newTestModel(t)
	m.cfg.Timer.Milestones = false
	m, _ = update(t, m, runes("s"))
	clk.Advance(2 * time.Hour)
	m, _ = update(t, m, tickMsg{gen: m.gen})
	assert.Equal(t, "2 hours tracked", m.toast)
	assert.Empty(t, rec.titles)
}

func TestStopCommitsEntry(t *testing.T) {
	m, clk, rec := newTestModel(t)
	m, _ = update(t, m, runes("s"))
	clk.Advance(5400 * time.Second)

	m, cmd := update(t, m, runes("x"))
	require.NotNil(t, cmd)
	assert.Equal(t, timer.Stopped, m.t.State())
	assert.Equal(t, 0, m.seconds)
	assert.Contains(t, m.status, "1h 30m (09:00–10:30)")
	assert.Len(t, rec.titles, 1)

	m, _ = update(t, m, cmd())
	require.Len(t, m.today, 1)
	assert.Equal(t, 90, m.today[0].DurationMinutes)
	assert.Equal(t, entry.Untitled, m.today[0].Description)
	view := m.View()
	assert.Contains(t, view, "Today")
	assert.Contains(t, view, "09:00–10:30")
}

func TestStopWhenStoppedShowsError(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, runes("x"))
	assert.ErrorIs(t, m.err, timer.ErrNotStarted)
}

func TestQuickEdit(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, runes("s"))

	m, _ = update(t, m, runes("e"))
	require.True(t, m.editing)
	m, _ = update(t, m, runes("Review PR"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, editCategory, m.field)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.editing)
	d := m.t.Details()
	assert.Equal(t, "Review PR", d.Description)
	assert.Equal(t, "work", d.Category)
	assert.Equal(t, timer.Running, m.t.State())
}

func TestQuickEditCancel(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, runes("s"))
	m, _ = update(t, m, runes("e"))
	m, _ = update(t, m, runes("nope"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.editing)
	assert.Empty(t, m.t.Details().Description)
}

func TestToggleClockFormat(t *testing.T) {
	m, _, _ := newTestModel(t)
	assert.False(t, m.use12)
	m, _ = update(t, m, runes("t"))
	assert.True(t, m.use12)
}

func TestQuitPersistsRunningTimer(t *testing.T) {
	m, clk, _ := newTestModel(t)
	m, _ = update(t, m, runes("s"))
	clk.Advance(time.Minute)
	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	snap, err := db.LoadTimer(context.Background(), m.dbh)
	require.NoError(t, err)
	assert.Equal(t, timer.Running, snap.State)
}

func TestFailedStopKeepsSession(t *testing.T) {
	m, clk, rec := newTestModel(t)
	m, _ = update(t, m, runes("s"))
	clk.Advance(45 * time.Minute)

	_, err := m.dbh.Exec(`ALTER TABLE time_entries RENAME TO time_entries_moved`)
	require.NoError(t, err)

	m, cmd := update(t, m, runes("x"))
	require.Error(t, m.err)
	assert.Equal(t, timer.Running, m.t.State())
	assert.Equal(t, 45*60, m.seconds)
	assert.NotNil(t, cmd, "ticking continues")
	assert.Empty(t, rec.titles)

	_, cmd = update(t, m, runes("q"))
	require.NotNil(t, cmd)
	snap, err := db.LoadTimer(context.Background(), m.dbh)
	require.NoError(t, err)
	assert.Equal(t, timer.Running, snap.State)
	assert.True(t, snap.StartedAt.Equal(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)))

	_, err = m.dbh.Exec(`ALTER TABLE time_entries_moved RENAME TO time_entries`)
	require.NoError(t, err)
	m, cmd = update(t, m, runes("x"))
	require.NoError(t, m.err)
	m, _ = update(t, m, cmd())
	require.Len(t, m.today, 1)
	assert.Equal(t, 45, m.today[0].DurationMinutes)
}

// stopElsewhere stops the stored session the way `flowlog stop` in another
// shell does.
func stopElsewhere(t *testing.T, m Model, clk *manualClock) {
	t.Helper()
	ctx := context.Background()
	stored, err := db.LoadTimer(ctx, m.dbh)
	require.NoError(t, err)
	other := timer.New(timer.WithClock(clk), timer.WithLocation(time.UTC))
	require.NoError(t, other.Restore(stored))
	e, err := other.Stop()
	require.NoError(t, err)
	require.NoError(t, db.CommitStop(ctx, m.dbh, e))
}

func TestQuitDoesNotRestoreSessionStoppedElsewhere(t *testing.T) {
	m, clk, _ := newTestModel(t)
	m, _ = update(t, m, runes("s"))
	clk.Advance(30 * time.Minute)
	stopElsewhere(t, m, clk)

	m, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, timer.Stopped, m.t.State())

	snap, err := db.LoadTimer(context.Background(), m.dbh)
	require.NoError(t, err)
	assert.Equal(t, timer.Stopped, snap.State)
	assert.True(t, snap.StartedAt.IsZero())

	es, err := db.ListDay(context.Background(), m.dbh, "2026-10-19")
	require.NoError(t, err)
	assert.Len(t, es, 1)
}

func TestTickAdoptsChangesFromOtherProcesses(t *testing.T) {
	m, clk, _ := newTestModel(t)
	m, _ = update(t, m, runes("s"))
	oldGen := m.gen
	clk.Advance(30 * time.Minute)
	stopElsewhere(t, m, clk)

	m, cmd := update(t, m, tickMsg{gen: oldGen})
	require.NotNil(t, cmd, "today's entries are reloaded")
	assert.Equal(t, timer.Stopped, m.t.State())
	assert.Equal(t, 0, m.seconds)
	assert.Greater(t, m.gen, oldGen)
	assert.Contains(t, m.status, "another flowlog")

	_, cmd = update(t, m, tickMsg{gen: oldGen})
	assert.Nil(t, cmd)
}

func TestKeyAfterOutsideChangeOnlyAdopts(t *testing.T) {
	m, clk, _ := newTestModel(t)
	m, _ = update(t, m, runes("s"))
	clk.Advance(10 * time.Minute)
	stopElsewhere(t, m, clk)

	m, _ = update(t, m, runes("x"))
	assert.NoError(t, m.err)
	assert.Equal(t, timer.Stopped, m.t.State())

	es, err := db.ListDay(context.Background(), m.dbh, "2026-10-19")
	require.NoError(t, err)
	assert.Len(t, es, 1, "session is logged once")
}
