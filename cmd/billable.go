package cmd

import (
	"fmt"

	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/duration"
	"github.com/flowlog/flowlog/internal/utils"
	"github.com/spf13/cobra"
)

var billablePreset string

// billableCmd reviews billable work over a range with hours and earnings.
var billableCmd = &cobra.Command{
	Use:   "billable",
	Short: "Billable entries with total hours and earnings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := renderConfig()
		if err != nil {
			return err
		}
		from, to, err := utils.DateRange(billablePreset, clock.Now().In(cfg.Location()))
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		dbh, err := openDB()
		if err != nil {
			return err
		}
		defer dbh.Close()

		yes := true
		f := db.EntryFilter{From: from, To: to, Billable: &yes}
		entries, err := db.ListEntries(ctx, dbh, f)
		if err != nil {
			return err
		}
		sum, err := db.LoadBillableSummary(ctx, dbh, from, to)
		if err != nil {
			return err
		}

		if err := render(cmd, rc, &utils.EntryList{
			Title:   fmt.Sprintf("Billable %s to %s", from, to),
			Entries: entries,
			Total:   len(entries),
			Filters: filterMap(f),
		}); err != nil {
			return err
		}
		if rc.Format != utils.FormatDefault {
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nBillable:  %s (%.2fh) across %d entries\nEarnings:  %.2f\nShare:     %.0f%% of tracked time\n",
			duration.FormatDuration(sum.BillableMinutes), float64(sum.BillableMinutes)/60, sum.BillableEntries,
			sum.Earnings, sum.BillableShare()*100)
		return nil
	},
}

func init() {
	billableCmd.Flags().StringVar(&billablePreset, "preset", "month", "Date preset: today, week, lastweek, month, year, last30days, ...")
	addOutputFlags(billableCmd)
}
