// Package wizard implements the five-step booking flow as a pure reducer
// over Selection. A field at step k is only ever set while every earlier
// field is set. Choosing at step k clears what comes after it; going back
// to step k keeps the choice made there so the screen can show it.
package wizard

import (
	"errors"

	"github.com/ChefJodlak/prooptica-sub000/internal/calendar"
	"github.com/ChefJodlak/prooptica-sub000/internal/catalog"
)

// Step numbers the wizard screens.
type Step int

const (
	StepSalon Step = iota + 1
	StepService
	StepSpecialist
	StepSlot
	StepContact
)

func (s Step) String() string {
	switch s {
	case StepSalon:
		return "salon"
	case StepService:
		return "service"
	case StepSpecialist:
		return "specialist"
	case StepSlot:
		return "slot"
	case StepContact:
		return "contact"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the five steps.
func (s Step) Valid() bool {
	return s >= StepSalon && s <= StepContact
}

// SlotSelection is the chosen time slot and the day it belongs to.
type SlotSelection struct {
	Date string            `json:"date"`
	Slot calendar.TimeSlot `json:"slot"`
}

// Selection is the wizard state.
type Selection struct {
	Step       Step                `json:"step"`
	Salon      *catalog.Salon      `json:"salon,omitempty"`
	Service    *catalog.Service    `json:"service,omitempty"`
	Specialist *catalog.Specialist `json:"specialist,omitempty"`
	Slot       *SlotSelection      `json:"slot,omitempty"`

	// Seeded is set once a deep-link salon has been considered, so seeding
	// never runs again for the same session.
	Seeded bool `json:"seeded,omitempty"`
}

// Initial returns the state of a fresh wizard.
func Initial() Selection {
	return Selection{Step: StepSalon}
}

// filled counts the set prefix fields.
func (s Selection) filled() int {
	switch {
	case s.Salon == nil:
		return 0
	case s.Service == nil:
		return 1
	case s.Specialist == nil:
		return 2
	case s.Slot == nil:
		return 3
	default:
		return 4
	}
}

// Consistent reports whether the prefix invariant holds and Step matches the
// set fields: either the first unset step, or the last set one after a back.
func (s Selection) Consistent() bool {
	n := s.filled()
	set := []bool{s.Salon != nil, s.Service != nil, s.Specialist != nil, s.Slot != nil}
	for i := n; i < len(set); i++ {
		if set[i] {
			return false
		}
	}
	return s.Step == Step(n+1) || (n > 0 && s.Step == Step(n))
}

// truncate keeps the fields chosen before step k and moves to k.
func (s Selection) truncate(k Step) Selection {
	out := Selection{Step: k, Seeded: s.Seeded}
	if k > StepSalon {
		out.Salon = s.Salon
	}
	if k > StepService {
		out.Service = s.Service
	}
	if k > StepSpecialist {
		out.Specialist = s.Specialist
	}
	if k > StepSlot {
		out.Slot = s.Slot
	}
	return out
}

// backTo keeps the choices up to and including step k and shows step k.
func (s Selection) backTo(k Step) Selection {
	out := s.truncate(k + 1)
	out.Step = k
	return out
}

// ActionType names a wizard transition.
type ActionType string

const (
	ActionSelectSalon      ActionType = "select_salon"
	ActionSelectService    ActionType = "select_service"
	ActionSelectSpecialist ActionType = "select_specialist"
	ActionSelectSlot       ActionType = "select_slot"
	ActionBack             ActionType = "back"
)

// Action is a user intent. ID names the salon, service or specialist; Step
// is the target of a back action; Date and Slot describe a chosen slot.
type Action struct {
	Type ActionType         `json:"type"`
	ID   string             `json:"id,omitempty"`
	Step Step               `json:"step,omitempty"`
	Date string             `json:"date,omitempty"`
	Slot *calendar.TimeSlot `json:"slot,omitempty"`
}

// step is the screen the action belongs to.
func (a Action) step() Step {
	switch a.Type {
	case ActionSelectSalon:
		return StepSalon
	case ActionSelectService:
		return StepService
	case ActionSelectSpecialist:
		return StepSpecialist
	case ActionSelectSlot:
		return StepSlot
	default:
		return 0
	}
}

var (
	// ErrUnknownAction is returned for unsupported action types.
	ErrUnknownAction = errors.New("wizard: unknown action")

	// ErrStepNotReached is returned when an action targets a step the
	// selection has not reached yet.
	ErrStepNotReached = errors.New("wizard: step not reached")

	// ErrNotFound is returned for unknown salon, service or specialist ids.
	ErrNotFound = errors.New("wizard: not found")

	// ErrIneligible is returned when a choice is not offered for the
	// current selection.
	ErrIneligible = errors.New("wizard: choice not eligible")

	// ErrPhoneBookingOnly is returned when selecting a slot for a service
	// booked by phone.
	ErrPhoneBookingOnly = errors.New("wizard: service is booked by phone")
)
