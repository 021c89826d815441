package bookingform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		FirstName:   "Jan",
		LastName:    "Kowalski",
		Phone:       "+48 600 700 800",
		Email:       "jan.kowalski@example.pl",
		AcceptTerms: true,
	}
}

func fieldErrors(t *testing.T, err error) Errors {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr.Fields
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validForm().Validate())

	f := validForm()
	f.AcceptSMS = false
	f.Notes = ""
	assert.NoError(t, f.Validate(), "sms consent and notes are optional")
}

func TestValidate_Phone(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"600700800", true},
		{"+48 600-700-800", true},
		{"(12) 345 67 89", true},
		{"12 345 678", false},
		{"600 700 80a", false},
		{"+48 600.700.800", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			f := validForm()
			f.Phone = tt.phone
			err := f.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, fieldErrors(t, err), FieldPhone)
		})
	}
}

func TestValidate_Email(t *testing.T) {
	for _, email := range []string{"jan@", "jan@example", "jan kowalski@example.pl", "@example.pl", ""} {
		f := validForm()
		f.Email = email
		assert.Contains(t, fieldErrors(t, f.Validate()), FieldEmail, email)
	}
}

func TestValidate_AllErrorsAtOnce(t *testing.T) {
	errs := fieldErrors(t, Form{FirstName: "  "}.Validate())
	assert.Len(t, errs, 5)
	for _, field := range []string{FieldFirstName, FieldLastName, FieldPhone, FieldEmail, FieldAcceptTerms} {
		assert.Contains(t, errs, field)
	}
}

func TestEditor_SettingFieldClearsOnlyItsError(t *testing.T) {
	var e Editor
	require.NoError(t, e.Set(FieldFirstName, "Jan"))
	assert.False(t, e.Submit())
	require.Contains(t, e.Errors, FieldEmail)
	require.Contains(t, e.Errors, FieldPhone)

	require.NoError(t, e.Set(FieldEmail, "not-an-email"))
	assert.NotContains(t, e.Errors, FieldEmail, "editing clears the error until the next submit")
	assert.Contains(t, e.Errors, FieldPhone)
	assert.Contains(t, e.Errors, FieldLastName)

	require.NoError(t, e.SetChecked(FieldAcceptTerms, true))
	assert.NotContains(t, e.Errors, FieldAcceptTerms)

	require.NoError(t, e.Set(FieldLastName, "Kowalski"))
	require.NoError(t, e.Set(FieldPhone, "600 700 800"))
	assert.False(t, e.Submit())
	assert.Equal(t, Errors{FieldEmail: "invalid email address"}, e.Errors)

	require.NoError(t, e.Set(FieldEmail, "jan@example.pl"))
	assert.True(t, e.Submit())
	assert.Empty(t, e.Errors)
}

func TestEditor_UnknownField(t *testing.T) {
	var e Editor
	assert.ErrorIs(t, e.Set("age", "30"), ErrUnknownField)
	assert.ErrorIs(t, e.SetChecked(FieldEmail, true), ErrUnknownField)
}
