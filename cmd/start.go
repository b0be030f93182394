package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flowlog/flowlog/internal/duration"
	"github.com/flowlog/flowlog/internal/entry"
	"github.com/flowlog/flowlog/internal/timer"
	"github.com/spf13/cobra"
)

var (
	startCategory string
	startProject  string
	startBillable bool
	startRate     float64
)

// startCmd starts a new timer, or resumes a paused one. Only one timer exists.
var startCmd = &cobra.Command{
	Use:   "start [description]",
	Short: "Start (or resume) the timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if startRate < 0 {
			return fmt.Errorf("%w: rate must not be negative", entry.ErrInvalidEntry)
		}

		from := s.t.State()
		d := s.t.Details()
		if from == timer.Stopped {
			d = entry.Details{Category: cfg.Timer.Category, Billable: cfg.Timer.Billable, Rate: cfg.Timer.Rate}
		}
		if text := strings.TrimSpace(strings.Join(args, " ")); text != "" {
			d.Description = text
		}
		flags := cmd.Flags()
		if flags.Changed("category") {
			d.Category = startCategory
		}
		if flags.Changed("project") {
			d.Project = startProject
		}
		if flags.Changed("billable") {
			d.Billable = startBillable
		}
		if flags.Changed("rate") {
			d.Rate = startRate
		}

		if from == timer.Running {
			return fmt.Errorf("%w (%s); pause or stop it first", timer.ErrAlreadyRunning, describe(s.t.Details()))
		}
		s.t.SetDetails(d)
		if err := s.t.Start(); err != nil {
			return err
		}
		if err := s.save(ctx); err != nil {
			return err
		}

		at := duration.ClockOf(clock.Now().In(cfg.Location())).Display(cfg.Display.Use12Hour)
		out := cmd.OutOrStdout()
		if from == timer.Paused {
			fmt.Fprintf(out, "Resumed %s at %s (%s so far)\n", describe(d), at, duration.FormatElapsed(s.t.ElapsedSeconds()))
			return nil
		}
		fmt.Fprintf(out, "Started %s at %s\n", describe(d), at)
		return nil
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.t.Pause(); err != nil {
			return err
		}
		if err := s.save(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Paused at %s\n", duration.FormatElapsed(s.t.ElapsedSeconds()))
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the paused timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.t.Resume(); err != nil {
			if errors.Is(err, timer.ErrNotPaused) && s.t.State() == timer.Stopped {
				return fmt.Errorf("%w; use start", timer.ErrNotStarted)
			}
			return err
		}
		if err := s.save(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Resumed %s (%s so far)\n", describe(s.t.Details()), duration.FormatElapsed(s.t.ElapsedSeconds()))
		return nil
	},
}

// describe is a short label for timer details.
func describe(d entry.Details) string {
	label := d.Description
	if label == "" {
		label = "untitled"
	}
	if d.Category != "" {
		label += " [" + d.Category + "]"
	}
	return fmt.Sprintf("%q", label)
}

func init() {
	startCmd.Flags().StringVarP(&startCategory, "category", "c", "", "Category (default from timer.category)")
	startCmd.Flags().StringVarP(&startProject, "project", "p", "", "Project name")
	startCmd.Flags().BoolVarP(&startBillable, "billable", "b", false, "Mark the time as billable")
	startCmd.Flags().Float64Var(&startRate, "rate", 0, "Hourly rate for billable time")
}
