package cmd

import (
	"fmt"
	"strings"

	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/duration"
	"github.com/spf13/cobra"
)

// configCmd prints the effective settings after file and environment overrides.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := db.DefaultPath()
		if err != nil {
			dbPath = "unavailable: " + err.Error()
		}
		src := cfgFile
		if src == "" {
			src = "~/.config/flowlog/config.yaml"
		}

		out := cmd.OutOrStdout()
		row := func(k string, v any) { fmt.Fprintf(out, "  %-26s %v\n", k, v) }

		fmt.Fprintf(out, "config file: %s\ndatabase:    %s\n\n", src, dbPath)
		fmt.Fprintln(out, "display")
		row("use12hour", cfg.Display.Use12Hour)
		row("theme", cfg.Display.Theme)
		fmt.Fprintln(out, "timer")
		row("category", cfg.Timer.Category)
		row("billable", cfg.Timer.Billable)
		row("rate", cfg.Timer.Rate)
		row("milestones", cfg.Timer.Milestones)
		fmt.Fprintln(out, "reminder")
		row("enabled", cfg.Reminder.Enabled)
		row("time", duration.FormatClockDisplay(cfg.Reminder.Time, cfg.Display.Use12Hour))
		row("workdays", strings.Join(cfg.Reminder.Workdays, ","))
		row("holidays", strings.Join(cfg.Reminder.Holidays, ","))
		row("timezone", cfg.Location())
		fmt.Fprintln(out, "profile")
		row("name", cfg.Profile.Name)
		row("daily_goal_minutes", fmt.Sprintf("%d (%s)", cfg.Profile.DailyGoalMinutes, duration.FormatDuration(cfg.Profile.DailyGoalMinutes)))
		fmt.Fprintln(out, "log")
		row("level", cfg.LogLevel())
		return nil
	},
}
