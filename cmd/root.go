package cmd

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/flowlog/flowlog/internal/config"
	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/entry"
	"github.com/flowlog/flowlog/internal/notify"
	"github.com/flowlog/flowlog/internal/schedule"
	"github.com/flowlog/flowlog/internal/timer"
	"github.com/flowlog/flowlog/internal/version"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	cfg    = config.Default()
	logger = slog.Default()

	// swapped out by tests
	openDB                   = db.Open
	clock    timer.Clock     = timer.SystemClock{}
	notifier notify.Notifier = notify.Desktop{}
)

var rootCmd = &cobra.Command{
	Use:           "flowlog",
	Short:         "Track focused work with a pausable timer",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFile(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}

		level := cfg.LogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() error {
	rootCmd.Version = version.GetVersion()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.config/flowlog/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")

	rootCmd.AddCommand(
		startCmd, pauseCmd, resumeCmd, stopCmd, statusCmd, watchCmd,
		addCmd, editCmd, deleteCmd,
		listCmd, dayCmd, searchCmd, billableCmd, reportCmd, summaryCmd,
		configCmd, versionCmd, tuiCmd,
	)
}

// startReminder runs the daily log reminder in the background of a
// long-lived command until ctx is done. FLOWLOG_NO_REMINDER=1 disables it.
func startReminder(ctx context.Context, dbh *sql.DB) {
	if !cfg.Reminder.Enabled || os.Getenv("FLOWLOG_NO_REMINDER") == "1" {
		return
	}
	go schedule.RunConfigured(ctx, cfg, func() {
		today := clock.Now().In(cfg.Location()).Format(entry.DateLayout)
		logged := 0
		totals, err := db.LoadDailyTotals(ctx, dbh, today, today)
		if err != nil {
			logger.Warn("reminder: loading today's total failed", "err", err)
		}
		for _, d := range totals {
			logged += d.Minutes
		}
		title, msg := notify.FormatDailyPrompt(logged, cfg.Profile.DailyGoalMinutes)
		if err := notifier.Notify(title, msg); err != nil {
			logger.Warn("reminder notification failed", "err", err)
		}
	})
}
