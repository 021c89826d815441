package wizard

import "github.com/ChefJodlak/prooptica-sub000/internal/catalog"

// View describes what the current step offers.
type View struct {
	Step      Step      `json:"step"`
	StepName  string    `json:"stepName"`
	Selection Selection `json:"selection"`
	CanGoBack bool      `json:"canGoBack"`

	Salons      []catalog.Salon      `json:"salons,omitempty"`
	Services    []catalog.Service    `json:"services,omitempty"`
	Specialists []catalog.Specialist `json:"specialists,omitempty"`

	Calendar     *CalendarPrompt `json:"calendar,omitempty"`
	PhoneBooking *PhoneBooking   `json:"phoneBooking,omitempty"`
	Empty        *EmptyState     `json:"empty,omitempty"`
}

// CalendarPrompt asks the client to render the calendar for a specialist.
type CalendarPrompt struct {
	SpecialistID string `json:"specialistId"`
}

// PhoneBooking replaces the calendar for services booked by phone. There
// is no slot to capture, so the wizard does not advance past it.
type PhoneBooking struct {
	SalonID string `json:"salonId"`
	Phone   string `json:"phone"`
}

// EmptyState is shown when a step has nothing to offer, with a way back.
type EmptyState struct {
	Reason string `json:"reason"`
	BackTo Step   `json:"backTo"`
}

// View builds the presentation of sel. Inconsistent selections are
// repaired first.
func (m *Machine) View(sel Selection) View {
	sel, _ = m.Repair(sel)
	v := View{
		Step:      sel.Step,
		StepName:  sel.Step.String(),
		Selection: sel,
		CanGoBack: sel.Step > StepSalon,
	}

	switch sel.Step {
	case StepSalon:
		v.Salons = m.catalog.Salons()
		if len(v.Salons) == 0 {
			v.Empty = &EmptyState{Reason: "no salons available", BackTo: StepSalon}
		}
	case StepService:
		v.Services = m.catalog.ServicesForSalon(sel.Salon.ID)
		if len(v.Services) == 0 {
			v.Empty = &EmptyState{Reason: "no services offered in this salon", BackTo: StepSalon}
		}
	case StepSpecialist:
		v.Specialists = m.catalog.EligibleSpecialists(sel.Salon.ID, *sel.Service)
		if len(v.Specialists) == 0 {
			v.Empty = &EmptyState{Reason: "no specialist offers this service in this salon", BackTo: StepService}
		}
	case StepSlot:
		if sel.Service.RequiresPhoneBooking {
			v.PhoneBooking = &PhoneBooking{SalonID: sel.Salon.ID, Phone: sel.Salon.Phone}
		} else {
			v.Calendar = &CalendarPrompt{SpecialistID: sel.Specialist.ID}
		}
	}
	return v
}
