package cmd

import (
	"fmt"

	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/entry"
	"github.com/flowlog/flowlog/internal/utils"
	"github.com/spf13/cobra"
)

var (
	editDescription string
	editCategory    string
	editProject     string
	editBillable    bool
	editRate        float64
)

var editCmd = &cobra.Command{
	Use:   "edit <entry-id>",
	Short: "Quick-edit a logged entry",
	Long: `Changes the descriptive fields of an entry and stamps it as edited.
The id may be shortened to any unique prefix, as printed by list.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var a entry.Amendment
		flags := cmd.Flags()
		if flags.Changed("description") {
			a.Description = &editDescription
		}
		if flags.Changed("category") {
			a.Category = &editCategory
		}
		if flags.Changed("project") {
			a.Project = &editProject
		}
		if flags.Changed("billable") {
			a.Billable = &editBillable
		}
		if flags.Changed("rate") {
			a.Rate = &editRate
		}
		if a.Empty() {
			return fmt.Errorf("nothing to update - specify at least one field to edit")
		}

		ctx := cmd.Context()
		dbh, err := openDB()
		if err != nil {
			return err
		}
		defer dbh.Close()

		e, err := db.GetEntry(ctx, dbh, args[0])
		if err != nil {
			return err
		}
		updated, err := e.QuickEdit(a, clock.Now())
		if err != nil {
			return err
		}
		if err := db.UpdateEntry(ctx, dbh, updated); err != nil {
			return err
		}

		r := utils.NewRenderer(&utils.RenderConfig{
			Format: utils.FormatCompact, Width: 80, Use12Hour: cfg.Display.Use12Hour, Now: clock.Now(),
		})
		out, err := r.RenderEntryList(&utils.EntryList{Entries: []entry.TimeEntry{updated}, Total: 1})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entry %s updated.\n%s", updated.ID, out)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <entry-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a logged entry",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dbh, err := openDB()
		if err != nil {
			return err
		}
		defer dbh.Close()

		e, err := db.GetEntry(ctx, dbh, args[0])
		if err != nil {
			return err
		}
		if err := db.DeleteEntry(ctx, dbh, e.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s, %s).\n", e.ID, e.Date, e.Description)
		return nil
	},
}

func init() {
	editCmd.Flags().StringVarP(&editDescription, "description", "m", "", "New description")
	editCmd.Flags().StringVarP(&editCategory, "category", "c", "", "New category")
	editCmd.Flags().StringVarP(&editProject, "project", "p", "", "New project name (empty clears it)")
	editCmd.Flags().BoolVarP(&editBillable, "billable", "b", false, "Billable flag (--billable=false to clear)")
	editCmd.Flags().Float64Var(&editRate, "rate", 0, "New hourly rate")
}
