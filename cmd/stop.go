package cmd

import (
	"fmt"
	"strings"

	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/notify"
	"github.com/spf13/cobra"
)

var (
	stopNote    string
	stopDiscard bool
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the timer and log the tracked time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if stopDiscard {
			s.t.Discard()
			if err := s.save(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Timer discarded.")
			return nil
		}

		if note := strings.TrimSpace(stopNote); note != "" {
			d := s.t.Details()
			if d.Description == "" {
				d.Description = note
			} else {
				d.Description += "; " + note
			}
			s.t.SetDetails(d)
		}

		e, err := s.t.Stop()
		if err != nil {
			return err
		}
		if err := db.CommitStop(ctx, s.dbh, e); err != nil {
			return err
		}

		msg := notify.FormatStopped(e, cfg.Display.Use12Hour)
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		if e.DurationMinutes == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(under a minute; logged as 0m)")
		}
		if err := notifier.Notify("Flowlog", msg); err != nil {
			logger.Warn("stop notification failed", "err", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "id %s\n", e.ID)
		return nil
	},
}

func init() {
	stopCmd.Flags().StringVarP(&stopNote, "note", "n", "", "Note to append to the description")
	stopCmd.Flags().BoolVar(&stopDiscard, "discard", false, "Drop the session without logging it")
}
