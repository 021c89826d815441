// Package calendar turns upstream portal pages into the typed weekly
// schedule served at GET /calendar.
package calendar

import (
	"strconv"
	"strings"
)

// TimeSlot is a single bookable or taken time entry within a day.
type TimeSlot struct {
	Time       string  `json:"time"`
	Available  bool    `json:"available"`
	BookingURL *string `json:"bookingUrl,omitempty"`
}

// Minutes returns hour*60+minute, or -1 when Time is not HH:MM.
func (s TimeSlot) Minutes() int {
	return minutesOf(s.Time)
}

// Selectable reports whether the slot can be handed off to the portal.
func (s TimeSlot) Selectable() bool {
	return s.Available && s.BookingURL != nil && *s.BookingURL != ""
}

// DaySchedule is one column of the upstream week.
type DaySchedule struct {
	DayName string     `json:"dayName"`
	Date    string     `json:"date"`
	Slots   []TimeSlot `json:"slots"`
}

// HasAvailability reports whether any slot in the day is selectable.
func (d DaySchedule) HasAvailability() bool {
	for _, slot := range d.Slots {
		if slot.Selectable() {
			return true
		}
	}
	return false
}

// Slot returns the slot at the given time.
func (d DaySchedule) Slot(hhmm string) (TimeSlot, bool) {
	for _, slot := range d.Slots {
		if slot.Time == hhmm {
			return slot, true
		}
	}
	return TimeSlot{}, false
}

// CalendarData is the normalized response of the calendar adapter.
// It is built per request and never cached.
type CalendarData struct {
	SpecialistName   string        `json:"specialistName"`
	Location         string        `json:"location"`
	Address          string        `json:"address"`
	Phone            string        `json:"phone"`
	Days             []DaySchedule `json:"days"`
	PrevWeekStart    *string       `json:"prevWeekStart"`
	NextWeekStart    *string       `json:"nextWeekStart"`
	IsCurrentWeek    bool          `json:"isCurrentWeek"`
	CurrentWeekStart string        `json:"currentWeekStart"`
	SessionID        string        `json:"sessionId"`
}

// Day returns the schedule for an ISO date.
func (c *CalendarData) Day(date string) (DaySchedule, bool) {
	for _, day := range c.Days {
		if day.Date == date {
			return day, true
		}
	}
	return DaySchedule{}, false
}

func minutesOf(hhmm string) int {
	hh, mm, ok := strings.Cut(hhmm, ":")
	if !ok {
		return -1
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return -1
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return -1
	}
	return h*60 + m
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
