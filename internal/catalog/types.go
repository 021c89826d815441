// Package catalog holds the static reference data behind the booking wizard:
// salons, the specialists working in them and the services they offer.
package catalog

import "slices"

// Salon is a physical location.
type Salon struct {
	ID      string `json:"id"`
	City    string `json:"city"`
	Address string `json:"address"`
	Postal  string `json:"postal"`
	Phone   string `json:"phone"`
}

// Specialist belongs to exactly one salon. RestrictedOnly specialists are
// offered only for services that list them explicitly.
type Specialist struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	SalonID        string `json:"salonId"`
	RestrictedOnly bool   `json:"restrictedOnly,omitempty"`
}

// Service is a bookable service. A nil SpecialistIDs means any specialist of
// the salon may perform it.
type Service struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	AvailableInSalons    []string `json:"availableInSalons"`
	RequiresPhoneBooking bool     `json:"requiresPhoneBooking"`
	SpecialistIDs        []string `json:"specialistIds,omitempty"`
}

// AvailableIn reports whether the service is offered in the salon.
func (s Service) AvailableIn(salonID string) bool {
	return slices.Contains(s.AvailableInSalons, salonID)
}

// Restricted reports whether the service declares its own specialist set.
func (s Service) Restricted() bool {
	return s.SpecialistIDs != nil
}

// Allows reports whether the specialist may perform the service, ignoring
// salon membership.
func (s Service) Allows(sp Specialist) bool {
	if s.Restricted() {
		return slices.Contains(s.SpecialistIDs, sp.ID)
	}
	return !sp.RestrictedOnly
}
