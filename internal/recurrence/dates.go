// Package recurrence expands a weekly booking rule into concrete
// occurrence dates and decides which of them can still be handled by the
// scheduled batch. All arithmetic is done on calendar days in the
// institution's timezone; the host's booking window is defined in local
// time, not UTC.
package recurrence

import (
	"fmt"
	"time"
)

// DateLayout is the canonical date format used across the record store.
const DateLayout = "2006-01-02"

var dayIDs = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
}

// ValidDay reports whether id names a bookable weekday.
func ValidDay(id string) bool {
	_, ok := dayIDs[id]
	return ok
}

// Today returns the current calendar day at midnight in loc.
func Today(loc *time.Location) time.Time {
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}

// Next returns the first occurrence of the weekday strictly after today.
// When today is the requested weekday the occurrence rolls to next week;
// same-day bookings are no longer accepted by the host.
func Next(dayID string, today time.Time) (time.Time, error) {
	target, ok := dayIDs[dayID]
	if !ok {
		return time.Time{}, fmt.Errorf("invalid day id %q", dayID)
	}

	days := int(target - today.Weekday())
	if days <= 0 {
		days += 7
	}
	return today.AddDate(0, 0, days), nil
}

// Expand lists every occurrence of the weekday from the next one through
// endDate inclusive, one week apart.
func Expand(dayID string, today, endDate time.Time) ([]time.Time, error) {
	current, err := Next(dayID, today)
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	for !current.After(endDate) {
		dates = append(dates, current)
		current = current.AddDate(0, 0, 7)
	}
	return dates, nil
}

// SplitImmediate partitions occurrences around the batch lead time. The
// batch submits a date exactly leadDays ahead of it; any date closer than
// that has already missed its batch run and must be submitted
// synchronously at creation time, or it would never be submitted at all.
func SplitImmediate(dates []time.Time, today time.Time, leadDays int) (immediate, deferred []time.Time) {
	cutoff := today.AddDate(0, 0, leadDays)
	for _, d := range dates {
		if d.Before(cutoff) {
			immediate = append(immediate, d)
		} else {
			deferred = append(deferred, d)
		}
	}
	return immediate, deferred
}
