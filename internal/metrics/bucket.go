package metrics

import "strconv"

const (
	secondsPerDay  = 86400
	secondsPerHour = 3600
)

// DayID returns the calendar-day bucket id for a block timestamp.
func DayID(timestamp uint64) string {
	return strconv.FormatUint(timestamp/secondsPerDay, 10)
}

// HourID returns the hour bucket id for a block timestamp.
func HourID(timestamp uint64) string {
	return strconv.FormatUint(timestamp/secondsPerHour, 10)
}
