// Package traffic holds the weekday ordering used by traffic reports.
package traffic

import "time"

// Weekdays is the canonical display order, Monday first.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Busiest returns the weekday with the highest count. Ties go to the earliest
// day in Weekdays order. It returns false when every count is zero.
func Busiest(counts map[time.Weekday]int) (time.Weekday, bool) {
	best, top := time.Monday, 0
	for _, day := range Weekdays {
		if counts[day] > top {
			best, top = day, counts[day]
		}
	}
	return best, top > 0
}

// Max returns the highest count across all weekdays.
func Max(counts map[time.Weekday]int) int {
	top := 0
	for _, day := range Weekdays {
		if counts[day] > top {
			top = counts[day]
		}
	}
	return top
}
