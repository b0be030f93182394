package schedule

import (
	"context"
	"strings"
	"time"

	"github.com/flowlog/flowlog/internal/config"
	"github.com/flowlog/flowlog/internal/duration"
)

const defaultReminder = duration.ClockTime(17 * 60)

// NextAt computes the next occurrence of the reminder time that is on a
// configured workday and not a holiday. With no workdays configured it
// returns the zero time.
func NextAt(now time.Time, cfg config.Config) time.Time {
	loc := cfg.Location()
	now = now.In(loc)

	at, err := duration.ParseClock(cfg.Reminder.Time)
	if err != nil {
		at = defaultReminder
	}
	workdays := map[string]bool{}
	for _, d := range cfg.Reminder.Workdays {
		d = strings.TrimSpace(d)
		if len(d) >= 3 {
			workdays[strings.ToLower(d[:3])] = true
		}
	}
	if len(workdays) == 0 {
		return time.Time{}
	}
	holidays := map[string]bool{}
	for _, h := range cfg.Reminder.Holidays {
		holidays[strings.TrimSpace(h)] = true
	}
	ok := func(t time.Time) bool {
		return workdays[strings.ToLower(t.Weekday().String()[:3])] && !holidays[t.Format("2006-01-02")]
	}

	// candidate today at hh:mm
	cand := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, loc)
	if !now.Before(cand) {
		cand = cand.AddDate(0, 0, 1)
	}
	// a year of holidays is the most that can stand in the way
	for i := 0; i < 366; i++ {
		if ok(cand) {
			return cand
		}
		cand = cand.AddDate(0, 0, 1)
	}
	return time.Time{}
}

// RunConfigured runs the reminder callback at the configured schedule until ctx is canceled.
func RunConfigured(ctx context.Context, cfg config.Config, f func()) {
	next := NextAt(time.Now(), cfg)
	if next.IsZero() {
		return
	}
	t := time.NewTimer(time.Until(next))
	for {
		select {
		case <-ctx.Done():
			if !t.Stop() {
				select {
				case <-t.C:
				default:
				}
			}
			return
		case <-t.C:
			f()
			next = NextAt(time.Now(), cfg)
			if next.IsZero() {
				return
			}
			t.Reset(time.Until(next))
		}
	}
}
