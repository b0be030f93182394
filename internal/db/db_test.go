package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowlog/flowlog/internal/entry"
	"github.com/flowlog/flowlog/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbh, err := OpenPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

func manual(t *testing.T, day, from, to, desc string, opts ...func(*entry.ManualInput)) entry.TimeEntry {
	t.Helper()
	d, err := time.Parse(entry.DateLayout, day)
	require.NoError(t, err)
	in := entry.ManualInput{Date: d, Start: from, End: to, Details: entry.Details{Description: desc, Category: "dev"}}
	for _, o := range opts {
		o(&in)
	}
	e, err := entry.NewManual(in, d.Add(20*time.Hour))
	require.NoError(t, err)
	return e
}

func billable(rate float64) func(*entry.ManualInput) {
	return func(in *entry.ManualInput) {
		in.Billable = true
		in.Rate = rate
	}
}

func category(c string) func(*entry.ManualInput) {
	return func(in *entry.ManualInput) { in.Category = c }
}

func TestOpenPath_FileAndUpgradeIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "flowlog.db")
	dbh, err := OpenPath(path)
	require.NoError(t, err)
	require.NoError(t, dbh.Close())

	dbh, err = OpenPath(path)
	require.NoError(t, err)
	defer dbh.Close()
	require.NoError(t, EnsureEntryColumns(dbh))
}

func TestEntries_InsertGetUpdateDelete(t *testing.T) {
	dbh := newTestDB(t)
	ctx := context.Background()

	e := manual(t, "2026-10-19", "09:00", "10:30", "Code review", billable(100))
	require.NoError(t, InsertEntry(ctx, dbh, e))

	got, err := GetEntry(ctx, dbh, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Description, got.Description)
	assert.Equal(t, 90, got.DurationMinutes)
	assert.Equal(t, "09:00", got.StartTime.String())
	assert.Equal(t, "10:30", got.EndTime.String())
	assert.True(t, got.Billable)
	assert.Equal(t, 100.0, got.Rate)
	assert.Equal(t, entry.SourceManual, got.Source)
	assert.Nil(t, got.EditedAt)

	byPrefix, err := GetEntry(ctx, dbh, e.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, e.ID, byPrefix.ID)

	desc := "Code review (PR 42)"
	edited, err := got.QuickEdit(entry.Amendment{Description: &desc}, time.Now())
	require.NoError(t, err)
	require.NoError(t, UpdateEntry(ctx, dbh, edited))

	got, err = GetEntry(ctx, dbh, e.ID)
	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)
	require.NotNil(t, got.EditedAt)

	require.NoError(t, DeleteEntry(ctx, dbh, e.ID))
	_, err = GetEntry(ctx, dbh, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, DeleteEntry(ctx, dbh, e.ID), ErrNotFound)
}

func TestUpdateEntry_NotFound(t *testing.T) {
	dbh := newTestDB(t)
	err := UpdateEntry(context.Background(), dbh, entry.TimeEntry{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEntries_OrderAndFilters(t *testing.T) {
	dbh := newTestDB(t)
	ctx := context.Background()

	late := manual(t, "2026-10-19", "14:00", "15:00", "Afternoon sync", category("meeting"))
	early := manual(t, "2026-10-19", "08:30", "09:00", "Inbox")
	prev := manual(t, "2026-10-18", "10:00", "12:00", "Client work", billable(80))
	for _, e := range []entry.TimeEntry{late, early, prev} {
		require.NoError(t, InsertEntry(ctx, dbh, e))
	}

	all, err := ListEntries(ctx, dbh, EntryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{early.ID, late.ID, prev.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	day, err := ListDay(ctx, dbh, "2026-10-19")
	require.NoError(t, err)
	assert.Len(t, day, 2)

	yes := true
	bill, err := ListEntries(ctx, dbh, EntryFilter{Billable: &yes})
	require.NoError(t, err)
	require.Len(t, bill, 1)
	assert.Equal(t, prev.ID, bill[0].ID)

	meetings, err := ListEntries(ctx, dbh, EntryFilter{Category: "meeting"})
	require.NoError(t, err)
	require.Len(t, meetings, 1)

	found, err := ListEntries(ctx, dbh, EntryFilter{Query: "CLIENT"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, prev.ID, found[0].ID)

	page, err := ListEntries(ctx, dbh, EntryFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, late.ID, page[0].ID)

	n, err := CountEntries(ctx, dbh, EntryFilter{From: "2026-10-19"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTimerState_RoundTrip(t *testing.T) {
	dbh := newTestDB(t)
	ctx := context.Background()

	s, err := LoadTimer(ctx, dbh)
	require.NoError(t, err)
	assert.Equal(t, timer.Stopped, s.State)

	started := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	want := timer.Snapshot{
		State:     timer.Running,
		StartedAt: started,
		Elapsed:   90 * time.Second,
		Announced: 2,
		Details:   entry.Details{Description: "Deep work", Category: "dev", Project: "flowlog", Billable: true, Rate: 75},
	}
	require.NoError(t, SaveTimer(ctx, dbh, want))

	got, err := LoadTimer(ctx, dbh)
	require.NoError(t, err)
	assert.Equal(t, want.State, got.State)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, want.Elapsed, got.Elapsed)
	assert.Equal(t, want.Announced, got.Announced)
	assert.Equal(t, want.Details, got.Details)

	paused := timer.Snapshot{State: timer.Paused, Elapsed: time.Minute}
	require.NoError(t, SaveTimer(ctx, dbh, paused))
	got, err = LoadTimer(ctx, dbh)
	require.NoError(t, err)
	assert.Equal(t, timer.Paused, got.State)
	assert.True(t, got.StartedAt.IsZero())
}

func TestCommitStop(t *testing.T) {
	dbh := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, SaveTimer(ctx, dbh, timer.Snapshot{State: timer.Paused, Elapsed: time.Hour, Details: entry.Details{Description: "x"}}))
	e := manual(t, "2026-10-19", "09:00", "10:00", "x")
	require.NoError(t, CommitStop(ctx, dbh, e))

	s, err := LoadTimer(ctx, dbh)
	require.NoError(t, err)
	assert.Equal(t, timer.Stopped, s.State)
	assert.Zero(t, s.Elapsed)
	assert.Empty(t, s.Details.Description)

	_, err = GetEntry(ctx, dbh, e.ID)
	require.NoError(t, err)
}

func TestAnalytics(t *testing.T) {
	dbh := newTestDB(t)
	ctx := context.Background()

	for _, e := range []entry.TimeEntry{
		manual(t, "2026-10-17", "09:00", "10:00", "a", billable(60)),
		manual(t, "2026-10-18", "09:00", "11:00", "b", billable(90)),
		manual(t, "2026-10-18", "13:00", "13:30", "c", category("meeting")),
		manual(t, "2026-10-19", "09:00", "09:45", "d"),
	} {
		require.NoError(t, InsertEntry(ctx, dbh, e))
	}

	days, err := LoadDailyTotals(ctx, dbh, "2026-10-17", "2026-10-19")
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "2026-10-19", days[0].Date)
	assert.Equal(t, 150, days[1].Minutes)
	assert.Equal(t, 120, days[1].BillableMinutes)
	assert.InDelta(t, 180.0, days[1].Earnings, 0.001)
	assert.Equal(t, 2, days[1].EntryCount)

	cats, err := LoadCategoryTotals(ctx, dbh, "2026-10-17", "2026-10-19")
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "dev", cats[0].Category)
	assert.Equal(t, 225, cats[0].Minutes)

	b, err := LoadBillableSummary(ctx, dbh, "2026-10-17", "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, 180, b.BillableMinutes)
	assert.Equal(t, 75, b.NonBillableMinutes)
	assert.Equal(t, 2, b.BillableEntries)
	assert.InDelta(t, 240.0, b.Earnings, 0.001)
	assert.InDelta(t, 180.0/255.0, b.BillableShare(), 0.0001)

	empty, err := LoadBillableSummary(ctx, dbh, "2020-01-01", "2020-01-31")
	require.NoError(t, err)
	assert.Zero(t, empty.BillableShare())

	active, err := LoadActiveDays(ctx, dbh, "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-19", "2026-10-18", "2026-10-17"}, active)
}

func TestStreak(t *testing.T) {
	today := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, Streak(nil, today))
	assert.Equal(t, 3, Streak([]string{"2026-10-19", "2026-10-18", "2026-10-17", "2026-10-15"}, today))
	assert.Equal(t, 2, Streak([]string{"2026-10-18", "2026-10-17"}, today), "streak still alive until today ends")
	assert.Equal(t, 0, Streak([]string{"2026-10-16"}, today))
}

func TestSuggest(t *testing.T) {
	dbh := newTestDB(t)
	ctx := context.Background()
	for _, e := range []entry.TimeEntry{
		manual(t, "2026-10-19", "09:00", "10:00", "a", category("development")),
		manual(t, "2026-10-19", "10:00", "11:00", "b", category("design")),
		manual(t, "2026-10-19", "11:00", "12:00", "c", category("design")),
		manual(t, "2026-10-19", "13:00", "14:00", "d", category("meeting")),
	} {
		require.NoError(t, InsertEntry(ctx, dbh, e))
	}

	got, err := Suggest(ctx, dbh, SuggestCategory, "De", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"design", "development"}, got)

	got, err = Suggest(ctx, dbh, SuggestProject, "", 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Suggest(ctx, dbh, SuggestField("description; DROP TABLE time_entries"), "", 5)
	assert.Error(t, err)
}
