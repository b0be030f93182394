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
	since      string
	until      string
	preset     string
	limit      int
	page       int
	format     string
	noColor    bool
	categories string
	projects   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged entries, newest day first",
	Long: `Examples:
	flowlog list                                  # last 7 days
	flowlog list --since yesterday                # since yesterday
	flowlog list --preset month                   # this calendar month
	flowlog list --format csv --limit 500         # export
	flowlog list --project api --category dev     # filter`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := renderConfig()
		if err != nil {
			return err
		}

		now := clock.Now().In(cfg.Location())
		f := db.EntryFilter{Category: categories, Project: projects}
		switch {
		case preset != "":
			if f.From, f.To, err = utils.DateRange(preset, now); err != nil {
				return err
			}
		case since != "":
			d, err := utils.ParseDay(since, now)
			if err != nil {
				return fmt.Errorf("invalid --since date %q: %w", since, err)
			}
			f.From = d.Format(entry.DateLayout)
		default:
			f.From, _, _ = utils.DateRange("last7days", now)
		}
		if until != "" {
			d, err := utils.ParseDay(until, now)
			if err != nil {
				return fmt.Errorf("invalid --until date %q: %w", until, err)
			}
			f.To = d.Format(entry.DateLayout)
		}

		if limit <= 0 || limit > 1000 {
			limit = 50
		}

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
		p := utils.PageOf(total, limit, page)
		f.Limit, f.Offset = p.Size, p.Offset()
		entries, err := db.ListEntries(ctx, dbh, f)
		if err != nil {
			return err
		}

		title := "Entries since " + f.From
		if f.To != "" {
			title = fmt.Sprintf("Entries %s to %s", f.From, f.To)
		}
		return render(cmd, rc, &utils.EntryList{
			Title:      title,
			Entries:    entries,
			Total:      total,
			Page:       p.Number,
			PerPage:    p.Size,
			TotalPages: p.Count(),
			Filters:    filterMap(f),
		})
	},
}

// dayCmd is the calendar timeline for one day, in start order.
var dayCmd = &cobra.Command{
	Use:   "day [date]",
	Short: "Timeline of one day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := renderConfig()
		if err != nil {
			return err
		}
		rc.ShowDate = false

		now := clock.Now().In(cfg.Location())
		day := now
		if len(args) == 1 {
			if day, err = utils.ParseDay(args[0], now); err != nil {
				return err
			}
		}
		key := day.Format(entry.DateLayout)

		dbh, err := openDB()
		if err != nil {
			return err
		}
		defer dbh.Close()
		entries, err := db.ListDay(cmd.Context(), dbh, key)
		if err != nil {
			return err
		}
		return render(cmd, rc, &utils.EntryList{
			Title:   day.Format("Monday, 2 January 2006"),
			Entries: entries,
			Total:   len(entries),
		})
	},
}

func renderConfig() (*utils.RenderConfig, error) {
	rc := utils.DefaultRenderConfig()
	f, err := utils.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	rc.Format = f
	rc.Use12Hour = cfg.Display.Use12Hour
	rc.Color = !noColor && stdoutIsTerminal()
	rc.Now = clock.Now()
	return rc, nil
}

func render(cmd *cobra.Command, rc *utils.RenderConfig, list *utils.EntryList) error {
	out, err := utils.NewRenderer(rc).RenderEntryList(list)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func filterMap(f db.EntryFilter) map[string]string {
	m := map[string]string{}
	for k, v := range map[string]string{
		"from": f.From, "to": f.To, "category": f.Category, "project": f.Project, "query": f.Query,
	} {
		if v != "" {
			m[k] = v
		}
	}
	if f.Billable != nil {
		m["billable"] = fmt.Sprint(*f.Billable)
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// addOutputFlags registers the rendering flags shared by listing commands.
func addOutputFlags(c *cobra.Command) {
	c.Flags().StringVar(&format, "format", "default", "Output format: default, table, json, csv, compact, quiet")
	c.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func init() {
	listCmd.Flags().StringVar(&since, "since", "", "First day (yesterday, mon, 3d, 2026-01-15, ...)")
	listCmd.Flags().StringVar(&until, "until", "", "Last day, inclusive")
	listCmd.Flags().StringVar(&preset, "preset", "", "Date preset: today, yesterday, week, lastweek, month, year, last7days, last30days, last90days")
	listCmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries per page")
	listCmd.Flags().IntVar(&page, "page", 1, "Page number")
	listCmd.Flags().StringVar(&categories, "category", "", "Only this category")
	listCmd.Flags().StringVar(&projects, "project", "", "Only this project")
	addOutputFlags(listCmd)
	addOutputFlags(dayCmd)
}
