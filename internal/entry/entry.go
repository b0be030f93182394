package entry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flowlog/flowlog/internal/duration"
	"github.com/google/uuid"
)

// DateLayout is the calendar-day key used on entries.
const DateLayout = "2006-01-02"

// Untitled names entries whose timer never got a description.
const Untitled = "Untitled session"

// ErrInvalidEntry wraps every manual-entry validation failure.
var ErrInvalidEntry = errors.New("invalid entry")

// Source records how an entry came to exist.
type Source string

const (
	SourceTimer  Source = "timer"
	SourceManual Source = "manual"
)

// TimeEntry is a completed record of work. Values are treated as immutable;
// QuickEdit returns an amended copy.
type TimeEntry struct {
	ID              string             `json:"id"`
	Date            string             `json:"date"`
	Description     string             `json:"description"`
	DurationMinutes int                `json:"duration_minutes"`
	StartTime       duration.ClockTime `json:"start_time"`
	EndTime         duration.ClockTime `json:"end_time"`
	Billable        bool               `json:"billable"`
	Rate            float64            `json:"rate"`
	Category        string             `json:"category"`
	Project         string             `json:"project,omitempty"`
	Source          Source             `json:"source"`
	CreatedAt       time.Time          `json:"created_at"`
	EditedAt        *time.Time         `json:"edited_at,omitempty"`
}

// Details is the descriptive metadata carried by a timer into its entry.
type Details struct {
	Description string
	Category    string
	Project     string
	Billable    bool
	Rate        float64
}

// New builds an entry for a tracked span. start is the wall-clock start,
// end the wall-clock end. A blank description becomes Untitled.
func New(d Details, start, end time.Time, minutes int, src Source) TimeEntry {
	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		desc = Untitled
	}
	return TimeEntry{
		ID:              uuid.New().String(),
		Date:            start.Format(DateLayout),
		Description:     desc,
		DurationMinutes: minutes,
		StartTime:       duration.ClockOf(start),
		EndTime:         duration.ClockOf(end),
		Billable:        d.Billable,
		Rate:            d.Rate,
		Category:        d.Category,
		Project:         d.Project,
		Source:          src,
		CreatedAt:       end.UTC(),
	}
}

// ManualInput is raw user input for a hand-logged entry. Either End or
// Duration must be set alongside Start.
type ManualInput struct {
	Date     time.Time
	Start    string
	End      string
	Duration string
	Details
}

// NewManual validates user input and builds an entry from it.
func NewManual(in ManualInput, now time.Time) (TimeEntry, error) {
	if strings.TrimSpace(in.Description) == "" {
		return TimeEntry{}, fmt.Errorf("%w: description is required", ErrInvalidEntry)
	}
	if in.Rate < 0 {
		return TimeEntry{}, fmt.Errorf("%w: rate must not be negative", ErrInvalidEntry)
	}
	start, err := duration.ParseClock(in.Start)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("%w: start: %w", ErrInvalidEntry, err)
	}

	var minutes int
	var end duration.ClockTime
	switch {
	case in.End != "" && in.Duration != "":
		return TimeEntry{}, fmt.Errorf("%w: give either an end time or a duration, not both", ErrInvalidEntry)
	case in.End != "":
		end, err = duration.ParseClock(in.End)
		if err != nil {
			return TimeEntry{}, fmt.Errorf("%w: end: %w", ErrInvalidEntry, err)
		}
		if end == start {
			return TimeEntry{}, fmt.Errorf("%w: start and end are equal", ErrInvalidEntry)
		}
		minutes = duration.Span(start, end)
	case in.Duration != "":
		minutes, err = duration.ParseDuration(in.Duration)
		if err != nil {
			return TimeEntry{}, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
		}
		if minutes == 0 {
			return TimeEntry{}, fmt.Errorf("%w: duration must be positive", ErrInvalidEntry)
		}
		end = duration.Wrap(int(start) + minutes)
	default:
		return TimeEntry{}, fmt.Errorf("%w: an end time or a duration is required", ErrInvalidEntry)
	}

	day := in.Date
	if day.IsZero() {
		day = now
	}
	return TimeEntry{
		ID:              uuid.New().String(),
		Date:            day.Format(DateLayout),
		Description:     strings.TrimSpace(in.Description),
		DurationMinutes: minutes,
		StartTime:       start,
		EndTime:         end,
		Billable:        in.Billable,
		Rate:            in.Rate,
		Category:        in.Category,
		Project:         in.Project,
		Source:          SourceManual,
		CreatedAt:       now.UTC(),
	}, nil
}

// Amendment lists the fields a quick edit may change. Nil means unchanged.
type Amendment struct {
	Description *string
	Category    *string
	Project     *string
	Billable    *bool
	Rate        *float64
}

// Empty reports whether the amendment changes nothing.
func (a Amendment) Empty() bool {
	return a.Description == nil && a.Category == nil && a.Project == nil && a.Billable == nil && a.Rate == nil
}

// QuickEdit returns a copy of e with the amendment applied and EditedAt
// stamped. e itself is left untouched.
func (e TimeEntry) QuickEdit(a Amendment, now time.Time) (TimeEntry, error) {
	if a.Empty() {
		return e, fmt.Errorf("%w: nothing to update", ErrInvalidEntry)
	}
	out := e
	if a.Description != nil {
		d := strings.TrimSpace(*a.Description)
		if d == "" {
			return e, fmt.Errorf("%w: description is required", ErrInvalidEntry)
		}
		out.Description = d
	}
	if a.Category != nil {
		out.Category = *a.Category
	}
	if a.Project != nil {
		out.Project = *a.Project
	}
	if a.Billable != nil {
		out.Billable = *a.Billable
	}
	if a.Rate != nil {
		if *a.Rate < 0 {
			return e, fmt.Errorf("%w: rate must not be negative", ErrInvalidEntry)
		}
		out.Rate = *a.Rate
	}
	stamp := now.UTC()
	out.EditedAt = &stamp
	return out, nil
}

// Hours is the entry duration in fractional hours.
func (e TimeEntry) Hours() float64 {
	return float64(e.DurationMinutes) / 60
}

// Earnings is what a billable entry is worth at its rate.
func (e TimeEntry) Earnings() float64 {
	if !e.Billable {
		return 0
	}
	return e.Hours() * e.Rate
}

// Day parses Date in loc.
func (e TimeEntry) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, e.Date, loc)
}
