package cmd

import (
	"fmt"
	"strings"

	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/entry"
	"github.com/flowlog/flowlog/internal/utils"
	"github.com/spf13/cobra"
)

var (
	searchSince string
	searchLimit int
	searchProj  string
)

// searchCmd matches entry descriptions, case-insensitively.
var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Find entries by description",
	Long: `Examples:
	flowlog search review                     # last 90 days
	flowlog search "standup" --since month    # combine with a start day
	flowlog search deploy --project api`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := renderConfig()
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")
		now := clock.Now().In(cfg.Location())

		f := db.EntryFilter{Query: query, Project: searchProj}
		if searchSince != "" {
			if from, _, perr := utils.DateRange(searchSince, now); perr == nil {
				f.From = from
			} else {
				d, err := utils.ParseDay(searchSince, now)
				if err != nil {
					return fmt.Errorf("invalid --since %q: %w", searchSince, err)
				}
				f.From = d.Format(entry.DateLayout)
			}
		} else {
			f.From, _, _ = utils.DateRange("last90days", now)
		}
		if searchLimit <= 0 || searchLimit > 1000 {
			searchLimit = 200
		}
		f.Limit = searchLimit

		ctx := cmd.Context()
		dbh, err := openDB()
		if err != nil {
			return err
		}
		defer dbh.Close()

		total, err := db.CountEntries(ctx, dbh, f)
		if err != nil {
			return err
		}
		entries, err := db.ListEntries(ctx, dbh, f)
		if err != nil {
			return err
		}
		return render(cmd, rc, &utils.EntryList{
			Entries: entries,
			Total:   total,
			Query:   query,
			Filters: filterMap(f),
		})
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchSince, "since", "", "First day or preset (default: 90 days ago)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 200, "Max results")
	searchCmd.Flags().StringVar(&searchProj, "project", "", "Filter by project")
	addOutputFlags(searchCmd)
}
