package services

import (
	"fmt"
	"time"
)

const isoDateLayout = "2006-01-02"

type Clock func() time.Time

func resolveClock(clock Clock) Clock {
	if clock == nil {
		return time.Now
	}
	return clock
}

func resolveLocation(location *time.Location) *time.Location {
	if location == nil {
		return time.Local
	}
	return location
}

// LocalDateString formats the calendar date of value as seen in location,
// never the UTC date.
func LocalDateString(value time.Time, location *time.Location) string {
	return value.In(resolveLocation(location)).Format(isoDateLayout)
}

func LocalTimeLabel(value time.Time, location *time.Location) string {
	return value.In(resolveLocation(location)).Format("3:04 PM")
}

// DaysBefore moves back whole calendar days in location, keeping the wall
// clock time.
func DaysBefore(now time.Time, days int, location *time.Location) time.Time {
	return now.In(resolveLocation(location)).AddDate(0, 0, -days)
}

func RelativeDayLabel(daysAgo int) string {
	switch daysAgo {
	case 0:
		return "today"
	case 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", daysAgo)
	}
}

func ParseISODate(value string) (time.Time, bool) {
	parsed, err := time.Parse(isoDateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func WeekdayOfISODate(value string) (time.Weekday, bool) {
	parsed, ok := ParseISODate(value)
	if !ok {
		return time.Sunday, false
	}
	return parsed.Weekday(), true
}
