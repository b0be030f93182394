package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowlog/flowlog/internal/timer"
	"github.com/flowlog/flowlog/internal/ui"
	"github.com/spf13/cobra"
)

// tuiCmd launches the Bubble Tea timer dashboard.
var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"dash"},
	Short:   "Open the timer dashboard",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !stdoutIsTerminal() {
			return errors.New("the dashboard needs a terminal; use status or watch instead")
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		// the dashboard announces milestones itself
		s, err := openSession(ctx, timer.OnMilestone(nil))
		if err != nil {
			return err
		}
		defer s.Close()
		startReminder(ctx, s.dbh)

		return ui.Run(ui.Options{
			DB:       s.dbh,
			Timer:    s.t,
			Config:   cfg,
			Clock:    clock,
			Notifier: notifier,
			Logger:   logger,
		})
	},
}
