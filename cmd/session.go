package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/notify"
	"github.com/flowlog/flowlog/internal/timer"
)

// session is the persisted timer, opened for one command.
type session struct {
	dbh *sql.DB
	t   *timer.Timer
}

// openSession loads the stored timer. extra options apply after the defaults.
func openSession(ctx context.Context, extra ...timer.Option) (*session, error) {
	dbh, err := openDB()
	if err != nil {
		return nil, err
	}
	snap, err := db.LoadTimer(ctx, dbh)
	if err != nil {
		dbh.Close()
		return nil, err
	}
	t := newTimer(extra...)
	if err := t.Restore(snap); err != nil {
		dbh.Close()
		return nil, fmt.Errorf("restoring timer: %w", err)
	}
	return &session{dbh: dbh, t: t}, nil
}

func newTimer(extra ...timer.Option) *timer.Timer {
	var t *timer.Timer
	opts := []timer.Option{
		timer.WithClock(clock),
		timer.WithLocation(cfg.Location()),
		timer.WithLogger(logger),
		timer.OnMilestone(func(m timer.Milestone) {
			announceMilestone(m, t.Details().Description)
		}),
	}
	t = timer.New(append(opts, extra...)...)
	return t
}

func (s *session) save(ctx context.Context) error {
	return db.SaveTimer(ctx, s.dbh, s.t.Snapshot())
}

func (s *session) Close() error { return s.dbh.Close() }

func announceMilestone(m timer.Milestone, description string) {
	if !cfg.Timer.Milestones {
		return
	}
	title, msg := notify.FormatMilestone(m.Hours, description)
	if err := notifier.Notify(title, msg); err != nil {
		logger.Warn("milestone notification failed", "err", err)
	}
}
