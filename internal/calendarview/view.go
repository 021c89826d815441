// Package calendarview is the consumer side of GET /calendar: week
// pagination, day auto-selection and slot picking for one specialist.
package calendarview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ChefJodlak/prooptica-sub000/internal/calendar"
	"github.com/ChefJodlak/prooptica-sub000/internal/portal"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

// Status of the view.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusLoading        Status = "loading"
	StatusReady          Status = "ready"
	StatusNoAvailability Status = "no_availability"
	StatusError          Status = "error"
)

// ErrorMessage is shown when a load fails.
const ErrorMessage = "could not load calendar, try again"

var (
	// ErrSuperseded is returned by a load whose response arrived after a
	// newer load started. Its result is discarded.
	ErrSuperseded = errors.New("calendarview: superseded by a newer request")

	// ErrNavigationDisabled is returned by Next or Prev when that control
	// is disabled.
	ErrNavigationDisabled = errors.New("calendarview: navigation disabled")

	// ErrNoSpecialist is returned when no specialist has been set.
	ErrNoSpecialist = errors.New("calendarview: no specialist")

	// ErrDayNotFound is returned when selecting a date outside the week.
	ErrDayNotFound = errors.New("calendarview: day not in current week")

	// ErrSlotNotSelectable is returned for taken or link-less slots.
	ErrSlotNotSelectable = errors.New("calendarview: slot not selectable")
)

// Fetcher loads calendar data.
type Fetcher interface {
	FetchCalendar(ctx context.Context, specialistID string, q portal.WeekQuery) (*calendar.CalendarData, error)
}

// SelectFunc receives the chosen slot and its date.
type SelectFunc func(slot calendar.TimeSlot, date string)

// State is a snapshot for rendering.
type State struct {
	Status       Status
	SpecialistID string
	Data         *calendar.CalendarData
	SelectedDate string
	SelectedSlot *calendar.TimeSlot
	CanPrev      bool
	CanNext      bool
	Err          error
}

// SelectedDay returns the schedule of the selected date.
func (s State) SelectedDay() (calendar.DaySchedule, bool) {
	if s.Data == nil || s.SelectedDate == "" {
		return calendar.DaySchedule{}, false
	}
	return s.Data.Day(s.SelectedDate)
}

// View holds the calendar state for one specialist at a time. Loads are not
// cancelled; a newer load makes older responses stale and they are dropped.
type View struct {
	fetcher  Fetcher
	logger   *logging.Logger
	onSelect SelectFunc

	mu           sync.Mutex
	generation   uint64
	specialistID string
	cursor       portal.WeekQuery
	status       Status
	data         *calendar.CalendarData
	selectedDate string
	selectedSlot *calendar.TimeSlot
	err          error
}

// NewView creates a view. onSelect may be nil.
func NewView(fetcher Fetcher, onSelect SelectFunc, logger *logging.Logger) *View {
	if logger == nil {
		logger = logging.Default()
	}
	return &View{
		fetcher:  fetcher,
		logger:   logger,
		onSelect: onSelect,
		status:   StatusIdle,
	}
}

// SetSpecialist switches to a specialist and loads their current week.
// Nothing is carried over from the previous specialist.
func (v *View) SetSpecialist(ctx context.Context, specialistID string) error {
	v.mu.Lock()
	v.specialistID = specialistID
	v.cursor = portal.WeekQuery{}
	v.data = nil
	v.selectedDate = ""
	v.selectedSlot = nil
	v.mu.Unlock()

	return v.load(ctx, portal.WeekQuery{}, false)
}

// Next loads the following week.
func (v *View) Next(ctx context.Context) error {
	v.mu.Lock()
	if !v.canNextLocked() {
		v.mu.Unlock()
		return ErrNavigationDisabled
	}
	q := portal.WeekQuery{WeekStart: *v.data.NextWeekStart, Direction: portal.DirectionNext}
	v.mu.Unlock()

	return v.load(ctx, q, false)
}

// Prev loads the preceding week.
func (v *View) Prev(ctx context.Context) error {
	v.mu.Lock()
	if !v.canPrevLocked() {
		v.mu.Unlock()
		return ErrNavigationDisabled
	}
	q := portal.WeekQuery{WeekStart: *v.data.PrevWeekStart, Direction: portal.DirectionPrev}
	v.mu.Unlock()

	return v.load(ctx, q, false)
}

// Retry repeats the last requested week with a fresh fetch.
func (v *View) Retry(ctx context.Context) error {
	v.mu.Lock()
	q := v.cursor
	v.mu.Unlock()
	return v.load(ctx, q, false)
}

// Refresh re-fetches the current week keeping the selection when it is
// still offered. A selected slot that is gone or taken is dropped.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	q := v.cursor
	v.mu.Unlock()
	return v.load(ctx, q, true)
}

func (v *View) load(ctx context.Context, q portal.WeekQuery, keepSelection bool) error {
	v.mu.Lock()
	if v.specialistID == "" {
		v.mu.Unlock()
		return ErrNoSpecialist
	}
	v.generation++
	gen := v.generation
	specialistID := v.specialistID
	v.cursor = q
	v.status = StatusLoading
	v.err = nil
	v.mu.Unlock()

	data, err := v.fetcher.FetchCalendar(ctx, specialistID, q)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		v.logger.Debug("discarding stale calendar response", "specialist_id", specialistID, "week_start", q.WeekStart)
		return ErrSuperseded
	}
	if err != nil {
		v.status = StatusError
		v.err = err
		v.logger.Warn("calendar load failed", "specialist_id", specialistID, "week_start", q.WeekStart, "error", err)
		return fmt.Errorf("calendarview: load: %w", err)
	}

	prevDate, prevSlot := v.selectedDate, v.selectedSlot
	v.data = data
	v.selectedDate = ""
	v.selectedSlot = nil

	if keepSelection && prevDate != "" {
		if day, ok := data.Day(prevDate); ok {
			v.selectedDate = prevDate
			if prevSlot != nil {
				if slot, ok := day.Slot(prevSlot.Time); ok && slot.Selectable() {
					v.selectedSlot = &slot
				}
			}
		}
	}
	if v.selectedDate == "" {
		v.selectedDate = firstAvailableDay(data)
	}

	if !hasAvailability(data) {
		v.status = StatusNoAvailability
	} else {
		v.status = StatusReady
	}
	return nil
}

// SelectDay selects a date of the loaded week.
func (v *View) SelectDay(date string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.data == nil {
		return ErrDayNotFound
	}
	if _, ok := v.data.Day(date); !ok {
		return fmt.Errorf("%w: %s", ErrDayNotFound, date)
	}
	if v.selectedDate != date {
		v.selectedSlot = nil
	}
	v.selectedDate = date
	return nil
}

// SelectSlot selects a slot and emits it. Only available slots with a
// booking URL can be selected.
func (v *View) SelectSlot(date, hhmm string) error {
	v.mu.Lock()
	if v.data == nil {
		v.mu.Unlock()
		return ErrDayNotFound
	}
	day, ok := v.data.Day(date)
	if !ok {
		v.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDayNotFound, date)
	}
	slot, ok := day.Slot(hhmm)
	if !ok || !slot.Selectable() {
		v.mu.Unlock()
		return fmt.Errorf("%w: %s %s", ErrSlotNotSelectable, date, hhmm)
	}
	v.selectedDate = date
	v.selectedSlot = &slot
	onSelect := v.onSelect
	v.mu.Unlock()

	if onSelect != nil {
		onSelect(slot, date)
	}
	return nil
}

// State returns a snapshot of the view.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		Status:       v.status,
		SpecialistID: v.specialistID,
		Data:         v.data,
		SelectedDate: v.selectedDate,
		SelectedSlot: v.selectedSlot,
		CanPrev:      v.canPrevLocked(),
		CanNext:      v.canNextLocked(),
		Err:          v.err,
	}
}

func (v *View) canPrevLocked() bool {
	if v.data == nil || v.status == StatusLoading {
		return false
	}
	return !v.data.IsCurrentWeek && v.data.PrevWeekStart != nil
}

func (v *View) canNextLocked() bool {
	if v.data == nil || v.status == StatusLoading {
		return false
	}
	return v.data.NextWeekStart != nil
}

func firstAvailableDay(data *calendar.CalendarData) string {
	for _, day := range data.Days {
		if day.HasAvailability() {
			return day.Date
		}
	}
	return ""
}

func hasAvailability(data *calendar.CalendarData) bool {
	return firstAvailableDay(data) != ""
}
