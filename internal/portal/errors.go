package portal

import "errors"

var (
	// ErrUnknownSpecialist is returned for ids outside the directory.
	ErrUnknownSpecialist = errors.New("portal: unknown specialist")

	// ErrNoSessionCookie is returned when priming did not set the session cookie.
	ErrNoSessionCookie = errors.New("portal: session cookie missing from priming response")

	// ErrUpstreamStatus is returned when the calendar fetch is not 2xx.
	ErrUpstreamStatus = errors.New("portal: upstream returned non-success status")
)
