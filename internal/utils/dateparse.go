package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/flowlog/flowlog/internal/entry"
)

var daysAgoRe = regexp.MustCompile(`^(\d+)\s*(d|day|days|w|week|weeks)(\s+ago)?$`)

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDay resolves a calendar day relative to now. It accepts "today",
// "yesterday", "tomorrow", weekday names (the most recent one, today
// included), "3d", "2 weeks ago" and a handful of absolute layouts.
func ParseDay(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date input")
	}
	today := midnight(now)

	// Handle natural language patterns
	switch input {
	case "today", "now":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if input == name || input == name[:3] {
			back := (int(today.Weekday()) - int(wd) + 7) % 7
			return today.AddDate(0, 0, -back), nil
		}
	}

	if m := daysAgoRe.FindStringSubmatch(input); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "w") {
			n *= 7
		}
		return today.AddDate(0, 0, -n), nil
	}

	formats := []string{
		entry.DateLayout,
		"2006/01/02",
		"Jan 2, 2006",
		"2 Jan 2006",
		"January 2, 2006",
		"2 January 2006",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, input, now.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", input)
}

// DateRange returns inclusive first and last days for a preset, as
// YYYY-MM-DD keys. Weeks start on Monday.
func DateRange(preset string, now time.Time) (string, string, error) {
	today := midnight(now)
	var start, end time.Time

	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "today", "":
		start, end = today, today
	case "yesterday":
		start = today.AddDate(0, 0, -1)
		end = start
	case "week":
		weekday := int(today.Weekday())
		if weekday == 0 { // Sunday
			weekday = 7
		}
		start = today.AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 6)
	case "lastweek", "last-week":
		weekday := int(today.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = today.AddDate(0, 0, -(weekday-1)-7)
		end = start.AddDate(0, 0, 6)
	case "month":
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		end = start.AddDate(0, 1, -1)
	case "year":
		start = time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())
		end = time.Date(today.Year(), 12, 31, 0, 0, 0, 0, today.Location())
	case "last7days", "last-7-days":
		start, end = today.AddDate(0, 0, -6), today
	case "last30days", "last-30-days":
		start, end = today.AddDate(0, 0, -29), today
	case "last90days", "last-90-days":
		start, end = today.AddDate(0, 0, -89), today
	default:
		return "", "", fmt.Errorf("unknown date preset: %s", preset)
	}
	return start.Format(entry.DateLayout), end.Format(entry.DateLayout), nil
}
