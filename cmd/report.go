package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/duration"
	"github.com/flowlog/flowlog/internal/entry"
	"github.com/flowlog/flowlog/internal/utils"
	"github.com/spf13/cobra"
)

var (
	reportPreset string
	reportJSON   bool
)

type report struct {
	From        string             `json:"from"`
	To          string             `json:"to"`
	Days        []db.DayTotal      `json:"days"`
	Categories  []db.CategoryTotal `json:"categories"`
	Billable    db.BillableSummary `json:"billable"`
	Streak      int                `json:"streak_days"`
	TodayMins   int                `json:"today_minutes"`
	GoalMinutes int                `json:"daily_goal_minutes"`
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Totals per day and category, billable share, streak and goal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := clock.Now().In(cfg.Location())
		from, to, err := utils.DateRange(reportPreset, now)
		if err != nil {
			return err
		}
		today := now.Format(entry.DateLayout)

		ctx := cmd.Context()
		dbh, err := openDB()
		if err != nil {
			return err
		}
		defer dbh.Close()

		r := report{From: from, To: to, GoalMinutes: cfg.Profile.DailyGoalMinutes}
		if r.Days, err = db.LoadDailyTotals(ctx, dbh, from, to); err != nil {
			return err
		}
		if r.Categories, err = db.LoadCategoryTotals(ctx, dbh, from, to); err != nil {
			return err
		}
		if r.Billable, err = db.LoadBillableSummary(ctx, dbh, from, to); err != nil {
			return err
		}
		active, err := db.LoadActiveDays(ctx, dbh, today)
		if err != nil {
			return err
		}
		r.Streak = db.Streak(active, now)
		todays, err := db.LoadDailyTotals(ctx, dbh, today, today)
		if err != nil {
			return err
		}
		for _, d := range todays {
			r.TodayMins += d.Minutes
		}

		if reportJSON {
			data, err := json.MarshalIndent(r, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), r.render(!noColor && stdoutIsTerminal()))
		return nil
	},
}

const barWidth = 24

func (r report) render(color bool) string {
	title := lipgloss.NewStyle().Bold(true)
	faint := lipgloss.NewStyle()
	bar := lipgloss.NewStyle()
	if color {
		title = title.Foreground(lipgloss.Color("#A6E3A1"))
		faint = faint.Faint(true)
		bar = bar.Foreground(lipgloss.Color("#89B4FA"))
	}

	var b strings.Builder
	total := 0
	for _, d := range r.Days {
		total += d.Minutes
	}
	fmt.Fprintf(&b, "%s  %s\n", title.Render(fmt.Sprintf("Report %s to %s", r.From, r.To)), faint.Render("total "+duration.FormatDuration(total)))

	b.WriteString("\n" + title.Render("By day") + "\n")
	if len(r.Days) == 0 {
		b.WriteString(faint.Render("  nothing logged") + "\n")
	}
	maxDay := 0
	for _, d := range r.Days {
		maxDay = max(maxDay, d.Minutes)
	}
	for _, d := range r.Days {
		fmt.Fprintf(&b, "  %s  %-8s %s %s\n", d.Date, duration.FormatDuration(d.Minutes),
			bar.Render(strings.Repeat("█", scaled(d.Minutes, maxDay))), faint.Render(fmt.Sprintf("%d entries", d.EntryCount)))
	}

	b.WriteString("\n" + title.Render("By category") + "\n")
	for _, c := range r.Categories {
		share := 0.0
		if total > 0 {
			share = float64(c.Minutes) / float64(total) * 100
		}
		name := c.Category
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(&b, "  %-14s %-8s %3.0f%%\n", name, duration.FormatDuration(c.Minutes), share)
	}

	b.WriteString("\n" + title.Render("Billable") + "\n")
	fmt.Fprintf(&b, "  %s billable, %s not (%.0f%%)\n",
		duration.FormatDuration(r.Billable.BillableMinutes), duration.FormatDuration(r.Billable.NonBillableMinutes),
		r.Billable.BillableShare()*100)
	fmt.Fprintf(&b, "  earnings %.2f\n", r.Billable.Earnings)

	b.WriteString("\n" + title.Render("Today") + "\n")
	if r.GoalMinutes > 0 {
		pct := float64(r.TodayMins) / float64(r.GoalMinutes) * 100
		fmt.Fprintf(&b, "  %s of %s goal (%.0f%%) %s\n", duration.FormatDuration(r.TodayMins), duration.FormatDuration(r.GoalMinutes),
			pct, bar.Render(strings.Repeat("█", scaled(min(r.TodayMins, r.GoalMinutes), r.GoalMinutes))))
	} else {
		fmt.Fprintf(&b, "  %s\n", duration.FormatDuration(r.TodayMins))
	}
	unit := "days"
	if r.Streak == 1 {
		unit = "day"
	}
	fmt.Fprintf(&b, "  streak %d %s\n", r.Streak, unit)
	return b.String()
}

func scaled(v, of int) int {
	if of <= 0 || v <= 0 {
		return 0
	}
	return max(1, v*barWidth/of)
}

func init() {
	reportCmd.Flags().StringVar(&reportPreset, "preset", "week", "Date preset: today, week, lastweek, month, year, last7days, last30days, last90days")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print the report as JSON")
	reportCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}
