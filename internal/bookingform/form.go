// Package bookingform validates the contact details collected at the last
// wizard step and produces the upstream handoff URL. It writes nothing
// itself; the portal is the system of record for reservations.
package bookingform

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Field names, shared with the JSON payload.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldPhone       = "phone"
	FieldEmail       = "email"
	FieldNotes       = "notes"
	FieldAcceptTerms = "acceptTerms"
	FieldAcceptSMS   = "acceptSms"
)

const minPhoneDigits = 9

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("bookingform: validation failed")

	// ErrUnknownField is returned when setting a field the form does not have.
	ErrUnknownField = errors.New("bookingform: unknown field")
)

// Form holds the contact details.
type Form struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Notes       string `json:"notes,omitempty"`
	AcceptTerms bool   `json:"acceptTerms"`
	AcceptSMS   bool   `json:"acceptSms"`
}

// Errors maps field names to messages.
type Errors map[string]string

// ValidationError carries field-level messages.
type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("bookingform: invalid fields: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validate returns nil when the form is complete.
func (f Form) Validate() error {
	errs := Errors{}
	for _, field := range []string{FieldFirstName, FieldLastName, FieldPhone, FieldEmail, FieldAcceptTerms} {
		if msg := f.check(field); msg != "" {
			errs[field] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

// check validates a single field and returns its message, or "" when valid.
func (f Form) check(field string) string {
	switch field {
	case FieldFirstName:
		if strings.TrimSpace(f.FirstName) == "" {
			return "first name is required"
		}
	case FieldLastName:
		if strings.TrimSpace(f.LastName) == "" {
			return "last name is required"
		}
	case FieldPhone:
		phone := strings.TrimSpace(f.Phone)
		if phone == "" {
			return "phone is required"
		}
		if !phonePattern.MatchString(phone) || countDigits(phone) < minPhoneDigits {
			return "invalid phone number"
		}
	case FieldEmail:
		email := strings.TrimSpace(f.Email)
		if email == "" {
			return "email is required"
		}
		if !emailPattern.MatchString(email) {
			return "invalid email address"
		}
	case FieldAcceptTerms:
		if !f.AcceptTerms {
			return "terms must be accepted"
		}
	}
	return ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// Editor tracks a form being filled in together with the errors of the last
// submit attempt. Changing a field clears only that field's error.
type Editor struct {
	Form   Form
	Errors Errors
}

// Set assigns a text field.
func (e *Editor) Set(field, value string) error {
	switch field {
	case FieldFirstName:
		e.Form.FirstName = value
	case FieldLastName:
		e.Form.LastName = value
	case FieldPhone:
		e.Form.Phone = value
	case FieldEmail:
		e.Form.Email = value
	case FieldNotes:
		e.Form.Notes = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	delete(e.Errors, field)
	return nil
}

// SetChecked assigns a consent checkbox.
func (e *Editor) SetChecked(field string, checked bool) error {
	switch field {
	case FieldAcceptTerms:
		e.Form.AcceptTerms = checked
	case FieldAcceptSMS:
		e.Form.AcceptSMS = checked
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	delete(e.Errors, field)
	return nil
}

// Submit validates the whole form and records its errors.
func (e *Editor) Submit() bool {
	err := e.Form.Validate()
	var verr *ValidationError
	if errors.As(err, &verr) {
		e.Errors = verr.Fields
		return false
	}
	e.Errors = nil
	return true
}
