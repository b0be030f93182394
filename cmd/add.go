package cmd

import (
	"fmt"
	"strings"

	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/duration"
	"github.com/flowlog/flowlog/internal/entry"
	"github.com/flowlog/flowlog/internal/utils"
	"github.com/spf13/cobra"
)

var (
	addDate     string
	addFrom     string
	addTo       string
	addDuration string
	addCategory string
	addProject  string
	addBillable bool
	addRate     float64
)

var addCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Log time by hand",
	Long: `Examples:
	flowlog add "Design review" --from 09:00 --to 10:30
	flowlog add "Call with Sam" --from 14:00 --duration 45m --category meeting
	flowlog add "Invoice prep" --date yesterday --from 16:00 --duration 1h --billable --rate 80`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		now := clock.Now().In(cfg.Location())
		day := now
		if addDate != "" {
			var err error
			if day, err = utils.ParseDay(addDate, now); err != nil {
				return fmt.Errorf("%w: --date: %w", entry.ErrInvalidEntry, err)
			}
		}

		category := addCategory
		if !cmd.Flags().Changed("category") {
			category = cfg.Timer.Category
		}
		rate := addRate
		if !cmd.Flags().Changed("rate") && addBillable {
			rate = cfg.Timer.Rate
		}

		e, err := entry.NewManual(entry.ManualInput{
			Date:     day,
			Start:    addFrom,
			End:      addTo,
			Duration: addDuration,
			Details: entry.Details{
				Description: strings.Join(args, " "),
				Category:    category,
				Project:     addProject,
				Billable:    addBillable,
				Rate:        rate,
			},
		}, now)
		if err != nil {
			return err
		}
		if e.EndTime < e.StartTime {
			logger.Info("entry crosses midnight", "start", e.StartTime, "end", e.EndTime)
		}

		dbh, err := openDB()
		if err != nil {
			return err
		}
		defer dbh.Close()
		if err := db.InsertEntry(cmd.Context(), dbh, e); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s (%s–%s): %s\nid %s\n",
			duration.FormatDuration(e.DurationMinutes), e.Date,
			e.StartTime.Display(cfg.Display.Use12Hour), e.EndTime.Display(cfg.Display.Use12Hour),
			e.Description, e.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "Day of the entry (today, yesterday, mon, 2026-01-31, ...)")
	addCmd.Flags().StringVar(&addFrom, "from", "", "Start time, HH:MM")
	addCmd.Flags().StringVar(&addTo, "to", "", "End time, HH:MM (past midnight wraps to the next day)")
	addCmd.Flags().StringVar(&addDuration, "duration", "", "Length instead of --to: 90, 45m, 1h30m")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category (default from timer.category)")
	addCmd.Flags().StringVarP(&addProject, "project", "p", "", "Project name")
	addCmd.Flags().BoolVarP(&addBillable, "billable", "b", false, "Mark the time as billable")
	addCmd.Flags().Float64Var(&addRate, "rate", 0, "Hourly rate (default from timer.rate when billable)")
	_ = addCmd.MarkFlagRequired("from")
}
