package cmd

import (
	"fmt"

	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/duration"
	"github.com/flowlog/flowlog/internal/entry"
	"github.com/spf13/cobra"
)

// summaryCmd prints a per-category breakdown for today and totals.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Daily summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbh, err := openDB()
		if err != nil {
			return err
		}
		defer dbh.Close()

		today := clock.Now().In(cfg.Location()).Format(entry.DateLayout)
		cats, err := db.LoadCategoryTotals(cmd.Context(), dbh, today, today)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Today (%s):\n", today)
		var totalCount, totalMins int
		for _, c := range cats {
			name := c.Category
			if name == "" {
				name = "(none)"
			}
			fmt.Fprintf(out, "  %-10s %3d items, %8s\n", name, c.EntryCount, duration.FormatDuration(c.Minutes))
			totalCount += c.EntryCount
			totalMins += c.Minutes
		}
		fmt.Fprintf(out, "  %-10s %3d items, %8s\n", "TOTAL", totalCount, duration.FormatDuration(totalMins))
		return nil
	},
}
