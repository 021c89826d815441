package bookingform

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ChefJodlak/prooptica-sub000/internal/calendar"
)

var (
	// ErrSlotNotSelectable is returned for taken slots or slots without a link.
	ErrSlotNotSelectable = errors.New("bookingform: slot is not selectable")

	// ErrHandoffURL is returned when the booking link is not an acceptable
	// absolute portal URL.
	ErrHandoffURL = errors.New("bookingform: booking url rejected")
)

// HostResolver returns the portal host serving a specialist.
type HostResolver interface {
	Host(specialistID string) (string, bool)
}

// CheckBookingURL verifies raw is an absolute http(s) URL on the
// specialist's portal host. A nil resolver only checks the shape.
func CheckBookingURL(hosts HostResolver, specialistID, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHandoffURL, err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("%w: not an absolute http(s) url", ErrHandoffURL)
	}
	if hosts == nil {
		return nil
	}
	want, ok := hosts.Host(specialistID)
	if !ok {
		return fmt.Errorf("%w: unknown specialist %q", ErrHandoffURL, specialistID)
	}
	if !strings.EqualFold(u.Host, want) {
		return fmt.Errorf("%w: host %q does not serve specialist %q", ErrHandoffURL, u.Host, specialistID)
	}
	return nil
}

// Handoff validates the form and returns the slot's booking URL to open in
// a new browsing context.
func Handoff(form Form, slot calendar.TimeSlot, hosts HostResolver, specialistID string) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}
	if !slot.Selectable() {
		return "", ErrSlotNotSelectable
	}
	if err := CheckBookingURL(hosts, specialistID, *slot.BookingURL); err != nil {
		return "", err
	}
	return strings.TrimSpace(*slot.BookingURL), nil
}
