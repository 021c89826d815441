package bookingform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChefJodlak/prooptica-sub000/internal/calendar"
)

type hostMap map[string]string

func (h hostMap) Host(id string) (string, bool) {
	v, ok := h[id]
	return v, ok
}

func strPtr(s string) *string { return &s }

func TestHandoff(t *testing.T) {
	hosts := hostMap{"anna-nowak": "kalendarz.optykonline.pl"}
	slot := calendar.TimeSlot{
		Time:       "09:00",
		Available:  true,
		BookingURL: strPtr("https://kalendarz.optykonline.pl/rezerwacja?termin=2026-10-19T09:00"),
	}

	got, err := Handoff(validForm(), slot, hosts, "anna-nowak")
	require.NoError(t, err)
	assert.Equal(t, "https://kalendarz.optykonline.pl/rezerwacja?termin=2026-10-19T09:00", got)
}

func TestHandoff_InvalidFormBlocksHandoff(t *testing.T) {
	slot := calendar.TimeSlot{Time: "09:00", Available: true, BookingURL: strPtr("https://kalendarz.optykonline.pl/r")}
	f := validForm()
	f.AcceptTerms = false

	_, err := Handoff(f, slot, nil, "anna-nowak")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestHandoff_RejectsUnselectableSlots(t *testing.T) {
	for _, slot := range []calendar.TimeSlot{
		{Time: "09:15", Available: false},
		{Time: "09:15", Available: true},
		{Time: "09:15", Available: true, BookingURL: strPtr("")},
	} {
		_, err := Handoff(validForm(), slot, nil, "anna-nowak")
		assert.ErrorIs(t, err, ErrSlotNotSelectable)
	}
}

func TestCheckBookingURL(t *testing.T) {
	hosts := hostMap{"anna-nowak": "kalendarz.optykonline.pl"}

	assert.NoError(t, CheckBookingURL(hosts, "anna-nowak", "https://KALENDARZ.optykonline.pl/r/1"))
	assert.ErrorIs(t, CheckBookingURL(hosts, "anna-nowak", "https://evil.example/r/1"), ErrHandoffURL)
	assert.ErrorIs(t, CheckBookingURL(hosts, "anna-nowak", "/rezerwacja/1"), ErrHandoffURL)
	assert.ErrorIs(t, CheckBookingURL(hosts, "anna-nowak", "javascript:alert(1)"), ErrHandoffURL)
	assert.ErrorIs(t, CheckBookingURL(hosts, "ghost", "https://kalendarz.optykonline.pl/r/1"), ErrHandoffURL)
	assert.NoError(t, CheckBookingURL(nil, "ghost", "https://anything.example/r/1"))
}
