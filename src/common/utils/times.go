package utils

import (
	"fmt"
	"strings"
	"time"
)

// Estimated-time sentinels published by the upstream feed instead of a clock
// time. OnTime means "as scheduled", i.e. zero delay.
const (
	TimeOnTime    = "On time"
	TimeCancelled = "Cancelled"
	TimeDelayed   = "Delayed"
)

// IsTimeSentinel reports whether the value is one of the feed's non-clock
// placeholders rather than an HHMM time.
func IsTimeSentinel(value string) bool {
	switch value {
	case TimeOnTime, TimeCancelled, TimeDelayed:
		return true
	}
	return false
}

// ParseBoardTime parses a departure board time in HHMM or HH:MM form into a
// clock time on the given date.
func ParseBoardTime(value string, date time.Time) (time.Time, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ":", "")
	if len(cleaned) != 4 {
		return time.Time{}, fmt.Errorf("not a board time: %q", value)
	}

	parsed, err := time.Parse("1504", cleaned)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a board time: %q", value)
	}

	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

// DelayMinutes is the difference in minutes between the booked and the
// real-time departure. An empty or "On time" estimate means zero delay.
func DelayMinutes(scheduled, estimated string) int {
	if estimated == "" || estimated == TimeOnTime {
		return 0
	}

	now := time.Now()
	booked, err := ParseBoardTime(scheduled, now)
	if err != nil {
		return 0
	}
	real, err := ParseBoardTime(estimated, now)
	if err != nil {
		return 0
	}

	return int(real.Sub(booked).Minutes())
}

// FormatBoardTime renders an HHMM time as HH:MM for display. Anything that is
// not four digits is passed through untouched.
func FormatBoardTime(value string) string {
	if len(value) == 4 && !strings.Contains(value, ":") {
		return value[:2] + ":" + value[2:]
	}
	return value
}

// FormatRunDate renders a date the way the service info endpoint expects it.
func FormatRunDate(date time.Time) string {
	return date.Format("2006-01-02")
}
