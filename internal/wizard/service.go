package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ChefJodlak/prooptica-sub000/internal/bookingform"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

// Transition outcomes passed to Recorder.RecordTransition.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// Recorder receives wizard signals.
type Recorder interface {
	RecordTransition(action, outcome string)
	RecordRepair()
}

// Service drives server-held wizard sessions.
type Service struct {
	machine  *Machine
	store    Store
	hosts    bookingform.HostResolver
	logger   *logging.Logger
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *logging.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithHostResolver restricts handoff URLs to the specialist's portal host.
func WithHostResolver(h bookingform.HostResolver) ServiceOption {
	return func(s *Service) {
		s.hosts = h
	}
}

// NewService creates a session service.
func NewService(machine *Machine, store Store, opts ...ServiceOption) *Service {
	s := &Service{
		machine: machine,
		store:   store,
		logger:  logging.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Machine exposes the reducer for building views.
func (s *Service) Machine() *Machine {
	return s.machine
}

// Create starts a session, seeding it with salonID when that salon exists.
func (s *Service) Create(ctx context.Context, salonID string) (*Session, error) {
	sel, seeded := s.machine.Seed(Initial(), salonID)
	now := s.now().UTC()
	session := &Session{
		ID:        s.newID(),
		Selection: sel,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("wizard: create session: %w", err)
	}
	s.logger.Info("wizard session created", "session_id", session.ID, "seeded", seeded, "salon_id", salonID)
	return session, nil
}

// Get loads a session and repairs an inconsistent selection in place.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	repaired, changed := s.machine.Repair(session.Selection)
	if !changed {
		return session, nil
	}

	s.logger.Warn("wizard selection repaired",
		"session_id", id,
		"from_step", int(session.Selection.Step),
		"to_step", int(repaired.Step),
	)
	if s.recorder != nil {
		s.recorder.RecordRepair()
	}
	session.Selection = repaired
	session.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("wizard: save repaired session: %w", err)
	}
	return session, nil
}

// Apply reduces the session's selection with a and stores the result.
func (s *Service) Apply(ctx context.Context, id string, a Action) (*Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := s.machine.Reduce(session.Selection, a)
	if err != nil {
		s.record(a.Type, OutcomeRejected)
		s.logger.Info("wizard action rejected", "session_id", id, "action", string(a.Type), "error", err)
		return nil, err
	}
	s.record(a.Type, OutcomeApplied)

	session.Selection = next
	session.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("wizard: save session: %w", err)
	}
	return session, nil
}

// Submit validates the contact form at the last step and returns the portal
// URL that finalizes the reservation.
func (s *Service) Submit(ctx context.Context, id string, form bookingform.Form) (string, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	sel := session.Selection
	if sel.Step != StepContact {
		return "", fmt.Errorf("%w: contact form requires step %d, at %d", ErrStepNotReached, StepContact, sel.Step)
	}

	url, err := bookingform.Handoff(form, sel.Slot.Slot, s.hosts, sel.Specialist.ID)
	if err != nil {
		if !errors.Is(err, bookingform.ErrValidation) {
			s.logger.Warn("wizard handoff rejected", "session_id", id, "error", err)
		}
		return "", err
	}
	s.logger.Info("wizard handoff",
		"session_id", id,
		"specialist_id", sel.Specialist.ID,
		"date", sel.Slot.Date,
		"time", sel.Slot.Slot.Time,
	)
	return url, nil
}

func (s *Service) record(action ActionType, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordTransition(string(action), outcome)
	}
}
