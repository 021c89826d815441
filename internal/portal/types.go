// Package portal talks to the third-party booking portal that owns the
// specialists' calendars. Reads are a two-phase pipeline: a priming request
// that yields a SessionToken, then a calendar fetch carrying that token.
package portal

import (
	"fmt"
	"strings"
	"time"
)

// SessionToken is the upstream session cookie obtained by priming.
type SessionToken struct {
	Name  string
	Value string
}

// Cookie renders the token as a Cookie header value.
func (t SessionToken) Cookie() string {
	return t.Name + "=" + t.Value
}

// Direction is the week navigation direction understood by the portal.
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// ParseDirection accepts "next" or "prev" (case-insensitive).
func ParseDirection(raw string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case DirectionNext:
		return DirectionNext, nil
	case DirectionPrev:
		return DirectionPrev, nil
	default:
		return "", fmt.Errorf("portal: invalid direction %q", raw)
	}
}

// WeekQuery selects a week relative to a cursor. The zero value means the
// portal's default (current) week.
type WeekQuery struct {
	WeekStart string
	Direction Direction
}

// IsZero reports whether no week navigation is requested.
func (q WeekQuery) IsZero() bool {
	return q.WeekStart == "" && q.Direction == ""
}

// Validate checks that the cursor is an ISO date and comes with a direction.
func (q WeekQuery) Validate() error {
	if q.IsZero() {
		return nil
	}
	if q.WeekStart == "" || q.Direction == "" {
		return fmt.Errorf("portal: weekStart and direction must be given together")
	}
	if _, err := time.Parse(DateLayout, q.WeekStart); err != nil {
		return fmt.Errorf("portal: invalid weekStart %q", q.WeekStart)
	}
	if _, err := ParseDirection(string(q.Direction)); err != nil {
		return err
	}
	return nil
}

// DateLayout is the ISO date format used for week cursors and day dates.
const DateLayout = "2006-01-02"

// Page is a raw calendar document returned by the portal.
type Page struct {
	URL        string
	StatusCode int
	Body       string
}
