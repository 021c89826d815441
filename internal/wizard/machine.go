package wizard

import (
	"fmt"
	"time"

	"github.com/ChefJodlak/prooptica-sub000/internal/calendar"
	"github.com/ChefJodlak/prooptica-sub000/internal/catalog"
	"github.com/ChefJodlak/prooptica-sub000/internal/portal"
)

// SlotPolicy vets the booking URL of a slot before it is accepted.
type SlotPolicy func(specialistID, bookingURL string) error

// Machine applies actions to selections against the reference catalog.
// It is stateless and safe for concurrent use.
type Machine struct {
	catalog    *catalog.Catalog
	slotPolicy SlotPolicy
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithSlotPolicy installs a booking URL check for select_slot.
func WithSlotPolicy(p SlotPolicy) MachineOption {
	return func(m *Machine) {
		m.slotPolicy = p
	}
}

// NewMachine creates a Machine.
func NewMachine(c *catalog.Catalog, opts ...MachineOption) *Machine {
	m := &Machine{catalog: c}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the reference data the machine validates against.
func (m *Machine) Catalog() *catalog.Catalog {
	return m.catalog
}

// Reduce returns the state after applying a. Selecting at step k keeps the
// choices before k and clears everything from k on. On error the input is
// returned unchanged.
func (m *Machine) Reduce(sel Selection, a Action) (Selection, error) {
	cur, _ := m.Repair(sel)

	if a.Type == ActionBack {
		if !a.Step.Valid() || a.Step > cur.Step {
			return sel, fmt.Errorf("%w: cannot go back to step %d from %d", ErrStepNotReached, a.Step, cur.Step)
		}
		return cur.backTo(a.Step), nil
	}

	target := a.step()
	if target == 0 {
		return sel, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	if target > cur.Step {
		return sel, fmt.Errorf("%w: %s requires step %d, at %d", ErrStepNotReached, a.Type, target, cur.Step)
	}
	next := cur.truncate(target)

	switch a.Type {
	case ActionSelectSalon:
		salon, err := m.catalog.Salon(a.ID)
		if err != nil {
			return sel, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		next.Salon = &salon

	case ActionSelectService:
		svc, err := m.catalog.Service(a.ID)
		if err != nil {
			return sel, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		if !svc.AvailableIn(next.Salon.ID) {
			return sel, fmt.Errorf("%w: service %q is not offered in salon %q", ErrIneligible, svc.ID, next.Salon.ID)
		}
		next.Service = &svc

	case ActionSelectSpecialist:
		sp, err := m.catalog.Specialist(a.ID)
		if err != nil {
			return sel, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		if !m.catalog.IsEligible(next.Salon.ID, *next.Service, sp.ID) {
			return sel, fmt.Errorf("%w: specialist %q for service %q in salon %q", ErrIneligible, sp.ID, next.Service.ID, next.Salon.ID)
		}
		next.Specialist = &sp

	case ActionSelectSlot:
		if next.Service.RequiresPhoneBooking {
			return sel, ErrPhoneBookingOnly
		}
		if err := m.checkSlot(next.Specialist.ID, a.Date, a.Slot); err != nil {
			return sel, err
		}
		next.Slot = &SlotSelection{Date: a.Date, Slot: *a.Slot}
	}

	next.Step = target + 1
	return next, nil
}

func (m *Machine) checkSlot(specialistID, date string, slot *calendar.TimeSlot) error {
	if slot == nil {
		return fmt.Errorf("%w: slot missing", ErrIneligible)
	}
	if _, err := time.Parse(portal.DateLayout, date); err != nil {
		return fmt.Errorf("%w: invalid slot date %q", ErrIneligible, date)
	}
	if !slot.Selectable() {
		return fmt.Errorf("%w: slot %s on %s is not available", ErrIneligible, slot.Time, date)
	}
	if m.slotPolicy != nil {
		if err := m.slotPolicy(specialistID, *slot.BookingURL); err != nil {
			return fmt.Errorf("%w: %v", ErrIneligible, err)
		}
	}
	return nil
}

// Repair returns sel cut back to its earliest inconsistent step and whether
// anything changed. A selection is inconsistent when a later field is set
// without its prerequisites, when Step disagrees with the set fields, or
// when a choice is no longer valid against the catalog.
func (m *Machine) Repair(sel Selection) (Selection, bool) {
	n := sel.filled()
	var out Selection
	if sel.Step.Valid() && int(sel.Step) <= n {
		out = sel.backTo(sel.Step)
	} else {
		out = sel.truncate(Step(n + 1))
	}

	switch {
	case out.Salon != nil && !m.salonValid(out):
		out = out.truncate(StepSalon)
	case out.Service != nil && !m.serviceValid(out):
		out = out.truncate(StepService)
	case out.Specialist != nil && !m.specialistValid(out):
		out = out.truncate(StepSpecialist)
	case out.Slot != nil && !m.slotValid(out):
		out = out.truncate(StepSlot)
	}

	changed := out.Step != sel.Step || out.filled() != n || !sel.Consistent()
	return out, changed
}

func (m *Machine) salonValid(s Selection) bool {
	_, err := m.catalog.Salon(s.Salon.ID)
	return err == nil
}

func (m *Machine) serviceValid(s Selection) bool {
	if !m.salonValid(s) {
		return false
	}
	svc, err := m.catalog.Service(s.Service.ID)
	return err == nil && svc.AvailableIn(s.Salon.ID)
}

func (m *Machine) specialistValid(s Selection) bool {
	if !m.serviceValid(s) {
		return false
	}
	svc, _ := m.catalog.Service(s.Service.ID)
	return m.catalog.IsEligible(s.Salon.ID, svc, s.Specialist.ID)
}

func (m *Machine) slotValid(s Selection) bool {
	if !m.specialistValid(s) {
		return false
	}
	svc, _ := m.catalog.Service(s.Service.ID)
	if svc.RequiresPhoneBooking {
		return false
	}
	slot := s.Slot.Slot
	return m.checkSlot(s.Specialist.ID, s.Slot.Date, &slot) == nil
}

// Seed applies a deep-link salon to a fresh selection, moving it straight
// to the service step. It runs at most once per selection; later calls and
// unknown salons leave the state unchanged.
func (m *Machine) Seed(sel Selection, salonID string) (Selection, bool) {
	if sel.Seeded {
		return sel, false
	}
	sel.Seeded = true
	if salonID == "" || sel.Step != StepSalon || sel.Salon != nil {
		return sel, false
	}
	salon, err := m.catalog.Salon(salonID)
	if err != nil {
		return sel, false
	}
	return Selection{Step: StepService, Salon: &salon, Seeded: true}, true
}
