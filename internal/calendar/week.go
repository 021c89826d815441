package calendar

import (
	"time"

	"github.com/ChefJodlak/prooptica-sub000/internal/portal"
)

// MondayOf returns midnight of the Monday starting t's week in t's location.
// Sunday is the seventh day of the week that began six days earlier.
func MondayOf(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	y, m, d := t.Date()
	return time.Date(y, m, d-(weekday-1), 0, 0, 0, 0, t.Location())
}

// IsCurrentWeek reports whether the first returned day is on or before this
// week's Monday. With no days it falls back to whether the caller asked for
// the default week.
func IsCurrentWeek(days []DaySchedule, q portal.WeekQuery, now time.Time) bool {
	if len(days) == 0 {
		return q.IsZero()
	}
	return days[0].Date <= MondayOf(now).Format(portal.DateLayout)
}

// currentWeekStart is the first returned date, or the best available cursor
// when the page had no days.
func currentWeekStart(days []DaySchedule, q portal.WeekQuery, now time.Time) string {
	if len(days) > 0 {
		return days[0].Date
	}
	if !q.IsZero() {
		return q.WeekStart
	}
	return MondayOf(now).Format(portal.DateLayout)
}
