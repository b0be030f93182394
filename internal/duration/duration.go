package duration

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the size of the ClockTime domain.
const MinutesPerDay = 24 * 60

// ErrInvalidClock is returned for clock strings that are not H:MM or HH:MM.
var ErrInvalidClock = errors.New("invalid clock time")

// ErrInvalidDuration is returned for unparseable manual durations.
var ErrInvalidDuration = errors.New("invalid duration")

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ClockTime is a wall-clock time of day in minutes since midnight, [0, 1440).
type ClockTime int

// ParseClock validates and parses "HH:MM" (or "H:MM").
func ParseClock(s string) (ClockTime, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 23 || mm > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidClock, s)
	}
	return ClockTime(h*60 + mm), nil
}

// ClockOf returns the wall-clock time of t in t's location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// Wrap maps any minute count onto [0, 1440).
func Wrap(minutes int) ClockTime {
	m := minutes % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return ClockTime(m)
}

func (c ClockTime) Hour() int   { return int(Wrap(int(c))) / 60 }
func (c ClockTime) Minute() int { return int(Wrap(int(c))) % 60 }

// String renders the zero-padded 24-hour form.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Display renders c for humans, in "h:MM AM/PM" when use12Hour is set.
func (c ClockTime) Display(use12Hour bool) string {
	if !use12Hour {
		return c.String()
	}
	h := c.Hour()
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, c.Minute(), suffix)
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// TimeToMinutes converts "HH:MM" into minutes since midnight.
func TimeToMinutes(clock string) (int, error) {
	c, err := ParseClock(clock)
	if err != nil {
		return 0, err
	}
	return int(c), nil
}

// MinutesToTime is the inverse of TimeToMinutes. Input outside [0, 1440)
// wraps modulo one day, so -1 is "23:59" and 1440 is "00:00".
func MinutesToTime(minutes int) string {
	return Wrap(minutes).String()
}

// Span returns the minutes from start to end. An end at or before the start
// is taken to be on the following day.
func Span(start, end ClockTime) int {
	d := int(end) - int(start)
	if d <= 0 {
		d += MinutesPerDay
	}
	return d
}

// FormatDuration renders a minute count as "0m", "Xh", "Xm" or "Xh Ym".
func FormatDuration(totalMinutes int) string {
	if totalMinutes <= 0 {
		return "0m"
	}
	h, m := totalMinutes/60, totalMinutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// FormatElapsed renders seconds as "HH:MM:SS". Hours do not wrap at 24.
func FormatElapsed(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatClockDisplay converts a 24-hour clock string for display. Malformed
// input is returned as-is; validation belongs where user input is parsed.
func FormatClockDisplay(clock string, use12Hour bool) string {
	c, err := ParseClock(clock)
	if err != nil {
		return clock
	}
	return c.Display(use12Hour)
}

var durationPartRe = regexp.MustCompile(`^(?:(\d+)h)?\s*(?:(\d+)m)?$`)

// ParseDuration parses manual-entry durations ("90", "90m", "1h", "1h30m",
// "1h 30m") into whole minutes.
func ParseDuration(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: %q is negative", ErrInvalidDuration, s)
		}
		return n, nil
	}
	m := durationPartRe.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	var total int
	if m[1] != "" {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m[2] != "" {
		mm, _ := strconv.Atoi(m[2])
		total += mm
	}
	return total, nil
}
