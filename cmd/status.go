package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/duration"
	"github.com/flowlog/flowlog/internal/entry"
	"github.com/flowlog/flowlog/internal/timer"
	"github.com/spf13/cobra"
)

// statusCmd prints the live projection and announces any newly crossed hour.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the timer state and elapsed time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if _, fired := s.t.Tick(); fired {
			if err := s.save(ctx); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		state := s.t.State()
		fmt.Fprintf(out, "State:    %s\n", state)
		if state != timer.Stopped {
			fmt.Fprintf(out, "Elapsed:  %s\n", duration.FormatElapsed(s.t.CurrentDisplaySeconds()))
			fmt.Fprintf(out, "Task:     %s\n", describe(s.t.Details()))
		}

		today := clock.Now().In(cfg.Location()).Format(entry.DateLayout)
		totals, err := db.LoadDailyTotals(ctx, s.dbh, today, today)
		if err != nil {
			return err
		}
		logged := 0
		for _, d := range totals {
			logged += d.Minutes
		}
		line := duration.FormatDuration(logged)
		if goal := cfg.Profile.DailyGoalMinutes; goal > 0 {
			line += " of " + duration.FormatDuration(goal) + " goal"
		}
		fmt.Fprintf(out, "Today:    %s\n", line)
		return nil
	},
}

// watchCmd shows a live display in the foreground. Interrupting it leaves
// the timer running; pausing or stopping from another shell ends it.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live elapsed-time display for the running timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if s.t.State() != timer.Running {
			return fmt.Errorf("%w; start or resume it first", timer.ErrNotRunning)
		}
		startReminder(ctx, s.dbh)

		out := cmd.OutOrStdout()
		live := stdoutIsTerminal()
		label := describe(s.t.Details())
		err = s.t.Watch(ctx, time.Second, func(sec int) {
			if live {
				fmt.Fprintf(out, "\r%s  %s ", duration.FormatElapsed(sec), label)
			} else if sec%60 == 0 {
				fmt.Fprintf(out, "%s  %s\n", duration.FormatElapsed(sec), label)
			}
			syncWatched(ctx, s)
		})
		if live {
			fmt.Fprintln(out)
		}
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(out, "Timer still running; use `flowlog stop` to log it.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Timer is now %s.\n", s.t.State())
		return nil
	},
}

// syncWatched adopts changes other flowlog processes made to the stored
// timer and stores hours this process announced.
func syncWatched(ctx context.Context, s *session) {
	stored, err := db.LoadTimer(ctx, s.dbh)
	if err != nil {
		logger.Warn("watch: reading timer state failed", "err", err)
		return
	}
	cur := s.t.Snapshot()
	if !stored.SameSession(cur) {
		if err := s.t.Restore(stored); err != nil {
			logger.Warn("watch: stored timer state rejected", "err", err)
		}
		return
	}
	if cur.Announced > stored.Announced {
		if err := s.save(ctx); err != nil {
			logger.Warn("watch: saving timer state failed", "err", err)
		}
	}
}
