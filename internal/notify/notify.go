package notify

import (
	"fmt"

	"github.com/flowlog/flowlog/internal/duration"
	"github.com/flowlog/flowlog/internal/entry"
	"github.com/gen2brain/beeep"
)

// Notifier delivers a desktop notification.
type Notifier interface {
	Notify(title, message string) error
}

// Desktop sends notifications through the OS notification service.
type Desktop struct{}

func (Desktop) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(string, string) error { return nil }

// FormatMilestone is the title and body for an hour-crossed notification.
func FormatMilestone(hours int, description string) (string, string) {
	unit := "hours"
	if hours == 1 {
		unit = "hour"
	}
	title := fmt.Sprintf("%d %s tracked", hours, unit)
	msg := "Keep going, or take a short break."
	if description != "" {
		msg = fmt.Sprintf("%q has been running for %d %s.", description, hours, unit)
	}
	return title, msg
}

// FormatStopped summarises a finished timer entry.
func FormatStopped(e entry.TimeEntry, use12Hour bool) string {
	return fmt.Sprintf("Logged %s (%s–%s): %s",
		duration.FormatDuration(e.DurationMinutes),
		e.StartTime.Display(use12Hour), e.EndTime.Display(use12Hour),
		e.Description)
}

func FormatDailyPrompt(loggedMinutes, goalMinutes int) (string, string) {
	title := "Daily log reminder"
	if goalMinutes > 0 && loggedMinutes < goalMinutes {
		return title, fmt.Sprintf("You've logged %s of your %s goal today. Anything missing?",
			duration.FormatDuration(loggedMinutes), duration.FormatDuration(goalMinutes))
	}
	return title, fmt.Sprintf("You've logged %s today. Jot down anything missing?", duration.FormatDuration(loggedMinutes))
}
